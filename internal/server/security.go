package server

import (
	"crypto/subtle"
	"log/slog"
	"net"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/osse101/WinLedger_Go/internal/logger"
)

type middleware = func(http.Handler) http.Handler

// AuthMiddleware rejects requests whose X-API-Key does not match apiKey.
// Failures are counted per client on detector.
func AuthMiddleware(apiKey string, trustedProxies []string, detector *SuspiciousActivityDetector) middleware {
	want := []byte(apiKey)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get(HeaderAPIKey)
			if subtle.ConstantTimeCompare([]byte(got), want) == 1 {
				next.ServeHTTP(w, r)
				return
			}

			ip := extractIP(r, trustedProxies)
			detector.RecordFailedAuth(ip)
			logger.FromContext(r.Context()).Warn(LogMsgAuthFailed,
				"ip", ip,
				"path", r.URL.Path,
				"has_key", got != "")
			http.Error(w, ErrMsgUnauthorized, http.StatusUnauthorized)
		})
	}
}

// RateLimitMiddleware answers 429 once a client exceeds MaxRequestsPerWindow
func RateLimitMiddleware(trustedProxies []string, detector *SuspiciousActivityDetector) middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if detector.RecordRequest(extractIP(r, trustedProxies)) {
				next.ServeHTTP(w, r)
				return
			}
			http.Error(w, ErrMsgTooManyRequests, http.StatusTooManyRequests)
		})
	}
}

// RequestSizeLimitMiddleware caps request bodies at maxBytes
func RequestSizeLimitMiddleware(maxBytes int64) middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

// SecurityHeadersMiddleware sets the browser hardening headers on every response
func SecurityHeadersMiddleware() middleware {
	headers := [][2]string{
		{HeaderContentType, HeaderValueNoSniff},
		{HeaderFrameOptions, HeaderValueSameOrigin},
		{HeaderXSSProtection, HeaderValueXSSBlock},
		{HeaderReferrerPolicy, HeaderValueReferrerStrictOrigin},
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, h := range headers {
				w.Header().Set(h[0], h[1])
			}
			next.ServeHTTP(w, r)
		})
	}
}

type clientCounts struct {
	requests   int
	failedAuth int
}

// SuspiciousActivityDetector tracks per-client request and failed login
// counts. All counts are dropped when DetectorWindow has passed.
type SuspiciousActivityDetector struct {
	mu          sync.Mutex
	clients     map[string]*clientCounts
	windowStart time.Time
	now         func() time.Time
}

func NewSuspiciousActivityDetector() *SuspiciousActivityDetector {
	return &SuspiciousActivityDetector{
		clients:     make(map[string]*clientCounts),
		windowStart: time.Now(),
		now:         time.Now,
	}
}

// client returns the counts of ip, rolling the window first. Caller holds mu.
func (s *SuspiciousActivityDetector) client(ip string) *clientCounts {
	if now := s.now(); now.Sub(s.windowStart) > DetectorWindow {
		s.clients = make(map[string]*clientCounts)
		s.windowStart = now
	}
	c, ok := s.clients[ip]
	if !ok {
		c = &clientCounts{}
		s.clients[ip] = c
	}
	return c
}

func (s *SuspiciousActivityDetector) RecordFailedAuth(ip string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.client(ip)
	c.failedAuth++
	if c.failedAuth >= FailedAuthAlertCount {
		slog.Warn(SecurityAlertFailedAuth, "ip", ip, "count", c.failedAuth)
	}
}

// FailedAuthCount is the number of failed logins of ip in the current window
func (s *SuspiciousActivityDetector) FailedAuthCount(ip string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.client(ip).failedAuth
}

// RecordRequest counts one request and reports whether ip is still under the limit
func (s *SuspiciousActivityDetector) RecordRequest(ip string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.client(ip)
	c.requests++
	if c.requests <= MaxRequestsPerWindow {
		return true
	}
	if c.requests%HighRateLogEvery == 0 {
		slog.Warn(SecurityAlertHighRate, "ip", ip, "count_in_window", c.requests)
	}
	return false
}

// extractIP returns the peer address, or the last X-Forwarded-For hop when
// the peer is one of trustedProxies.
func extractIP(r *http.Request, trustedProxies []string) string {
	peer, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		peer = r.RemoteAddr
	}

	fwd := r.Header.Get(HeaderForwardedFor)
	if fwd == "" || !slices.Contains(trustedProxies, peer) {
		return peer
	}
	hops := strings.Split(fwd, ",")
	return strings.TrimSpace(hops[len(hops)-1])
}
