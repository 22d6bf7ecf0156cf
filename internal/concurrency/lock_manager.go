package concurrency

import (
	"strings"
	"sync"
)

// LockManager hands out one mutex per named key
type LockManager struct {
	locks sync.Map
}

// NewLockManager creates a new LockManager
func NewLockManager() *LockManager {
	return &LockManager{}
}

// Key joins parts into a lock name, e.g. Key(guild, member)
func Key(parts ...string) string {
	return strings.Join(parts, "\x00")
}

// GetLock returns a mutex for the given key
func (lm *LockManager) GetLock(key string) *sync.Mutex {
	lock, _ := lm.locks.LoadOrStore(key, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

// WithLock runs fn while holding the mutex of key
func (lm *LockManager) WithLock(key string, fn func() error) error {
	mu := lm.GetLock(key)
	mu.Lock()
	defer mu.Unlock()
	return fn()
}

// Forget drops the mutex of key. Callers must not hold it.
func (lm *LockManager) Forget(key string) {
	lm.locks.Delete(key)
}
