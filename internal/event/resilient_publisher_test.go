package event

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/WinLedger_Go/internal/domain"
)

// mockBus is a test double for event.Bus
type mockBus struct {
	mu         sync.Mutex
	calls      []Event
	shouldFail func(attempt int) bool
}

func (m *mockBus) Publish(ctx context.Context, event Event) error {
	m.mu.Lock()
	m.calls = append(m.calls, event)
	callCount := len(m.calls)
	m.mu.Unlock()

	if m.shouldFail != nil && m.shouldFail(callCount) {
		return errors.New("mock publish error")
	}
	return nil
}

func (m *mockBus) Subscribe(eventType Type, handler Handler) {}

func (m *mockBus) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func testMutation() Event {
	return NewLedgerMutatedEvent("g", "m", "register_win", domain.Delta{Points: 5, Wins: 1},
		domain.Counter{}, domain.Counter{Points: 5, Wins: 1})
}

func readDeadLetters(t *testing.T, path string) []DeadLetterEntry {
	t.Helper()
	entries, err := ReadDeadLetters(path)
	require.NoError(t, err)
	return entries
}

func TestResilientPublisher_SuccessfulPublish(t *testing.T) {
	tmpFile := t.TempDir() + "/deadletter.jsonl"
	bus := &mockBus{}

	rp, err := NewResilientPublisher(bus, 3, 10*time.Millisecond, tmpFile)
	require.NoError(t, err)

	assert.NoError(t, rp.Publish(context.Background(), testMutation()))
	require.NoError(t, rp.Shutdown(context.Background()))

	assert.Equal(t, 1, bus.CallCount())
	assert.Empty(t, readDeadLetters(t, tmpFile))
}

func TestResilientPublisher_RetrySuccess(t *testing.T) {
	tmpFile := t.TempDir() + "/deadletter.jsonl"
	bus := &mockBus{shouldFail: func(attempt int) bool { return attempt == 1 }}

	rp, err := NewResilientPublisher(bus, 3, 10*time.Millisecond, tmpFile)
	require.NoError(t, err)

	rp.PublishWithRetry(context.Background(), testMutation())
	assert.Eventually(t, func() bool { return bus.CallCount() == 2 }, time.Second, 5*time.Millisecond)
	require.NoError(t, rp.Shutdown(context.Background()))

	assert.Empty(t, readDeadLetters(t, tmpFile))
}

func TestResilientPublisher_RetryExhaustion(t *testing.T) {
	tmpFile := t.TempDir() + "/deadletter.jsonl"
	bus := &mockBus{shouldFail: func(int) bool { return true }}

	rp, err := NewResilientPublisher(bus, 3, 5*time.Millisecond, tmpFile)
	require.NoError(t, err)

	rp.PublishWithRetry(context.Background(), testMutation())
	// initial attempt plus three retries
	assert.Eventually(t, func() bool { return bus.CallCount() == 4 }, time.Second, 5*time.Millisecond)
	require.NoError(t, rp.Shutdown(context.Background()))

	entries := readDeadLetters(t, tmpFile)
	require.Len(t, entries, 1)
	assert.Equal(t, LedgerMutated, entries[0].Event.Type)
	assert.Equal(t, 4, entries[0].Attempts)
	assert.NotEmpty(t, entries[0].LastError)

	payload, err := DecodePayload[LedgerMutatedPayloadV1](entries[0].Event.Payload)
	require.NoError(t, err)
	assert.Equal(t, "m", payload.MemberID)
	assert.Equal(t, int64(5), payload.After.Points)
}

func TestResilientPublisher_ShutdownDeadLettersPending(t *testing.T) {
	tmpFile := t.TempDir() + "/deadletter.jsonl"
	bus := &mockBus{shouldFail: func(int) bool { return true }}

	rp, err := NewResilientPublisher(bus, 5, time.Hour, tmpFile)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		rp.PublishWithRetry(context.Background(), testMutation())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, rp.Shutdown(ctx))

	assert.Len(t, readDeadLetters(t, tmpFile), 3)
}

func TestResilientPublisher_ConcurrentPublishes(t *testing.T) {
	tmpFile := t.TempDir() + "/deadletter.jsonl"
	bus := &mockBus{}
	rp, err := NewResilientPublisher(bus, 3, 10*time.Millisecond, tmpFile)
	require.NoError(t, err)

	const numGoroutines = 10
	const eventsPerGoroutine = 5

	var wg sync.WaitGroup
	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < eventsPerGoroutine; j++ {
				rp.PublishWithRetry(context.Background(), testMutation())
			}
		}()
	}
	wg.Wait()
	require.NoError(t, rp.Shutdown(context.Background()))

	assert.Equal(t, numGoroutines*eventsPerGoroutine, bus.CallCount())
}

func TestCalculateRetryDelay(t *testing.T) {
	assert.Equal(t, 2*time.Second, CalculateRetryDelay(RetryInitialDelay, 1))
	assert.Equal(t, 8*time.Second, CalculateRetryDelay(RetryInitialDelay, 3))
	assert.Equal(t, 2*time.Second, CalculateRetryDelay(RetryInitialDelay, 0))
}

func TestReadDeadLetters(t *testing.T) {
	dir := t.TempDir()

	entries, err := ReadDeadLetters(filepath.Join(dir, "missing.jsonl"))
	require.NoError(t, err)
	assert.Empty(t, entries)

	path := filepath.Join(dir, "deadletter.jsonl")
	w, err := NewDeadLetterWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.Write(testMutation(), 4, errors.New("bus down")))
	require.NoError(t, w.Close())

	entries, err = ReadDeadLetters(path)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, DeadLetterSchemaVersion, entries[0].SchemaVersion)
	assert.Equal(t, 4, entries[0].Attempts)
	assert.Equal(t, "bus down", entries[0].LastError)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0)
	require.NoError(t, err)
	_, err = f.WriteString("{not json\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	entries, err = ReadDeadLetters(path)
	assert.ErrorContains(t, err, "line 2")
	assert.Len(t, entries, 1)
}
