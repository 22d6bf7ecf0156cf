// Package server exposes the ledger over HTTP.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/osse101/WinLedger_Go/internal/eventlog"
	"github.com/osse101/WinLedger_Go/internal/guild"
	"github.com/osse101/WinLedger_Go/internal/handler"
	"github.com/osse101/WinLedger_Go/internal/ingest"
	"github.com/osse101/WinLedger_Go/internal/leaderboard"
	"github.com/osse101/WinLedger_Go/internal/ledger"
	"github.com/osse101/WinLedger_Go/internal/logger"
	"github.com/osse101/WinLedger_Go/internal/metrics"
	"github.com/osse101/WinLedger_Go/internal/multiplier"
)

// Config holds the HTTP settings of the server
type Config struct {
	Port           int
	APIKey         string
	TrustedProxies []string
	ServiceName    string
	Version        string
	// MaxRequestBytes defaults to DefaultMaxRequestBytes
	MaxRequestBytes int64
}

// Services are the application services served over HTTP. Ingest may be nil,
// in which case result submissions are answered with 503.
type Services struct {
	Ledger      ledger.Service
	Leaderboard leaderboard.Service
	Guilds      guild.Service
	Multipliers multiplier.Service
	Rewards     handler.RewardInspector
	Audit       eventlog.Service
	Ingest      ingest.Service
}

type Server struct {
	httpServer *http.Server
}

// NewServer creates a new Server instance. Every check must pass for /readyz.
func NewServer(cfg Config, svc Services, checks ...handler.ReadinessCheck) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           NewRouter(cfg, svc, checks...),
			ReadHeaderTimeout: ReadHeaderTimeout,
		},
	}
}

// NewRouter builds the route table. The results endpoint sits outside the
// API key group since submissions authenticate with a signed token.
func NewRouter(cfg Config, svc Services, checks ...handler.ReadinessCheck) http.Handler {
	maxBytes := cfg.MaxRequestBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxRequestBytes
	}
	detector := NewSuspiciousActivityDetector()

	r := chi.NewRouter()
	r.Use(SecurityHeadersMiddleware())
	r.Use(RateLimitMiddleware(cfg.TrustedProxies, detector))
	r.Use(RequestSizeLimitMiddleware(maxBytes))
	r.Use(metrics.Middleware)
	r.Use(loggingMiddleware)

	r.Get("/healthz", handler.HandleHealthz())
	r.Get("/readyz", handler.HandleReadyz(checks...))
	r.Get("/version", handler.HandleVersion(cfg.ServiceName, cfg.Version))
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	r.Route("/api/v1/guilds/{guild}", func(r chi.Router) {
		r.Post("/results", handler.HandleSubmitResult(svc.Ingest))

		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(cfg.APIKey, cfg.TrustedProxies, detector))

			r.Delete("/", handler.HandleRemoveGuild(svc.Guilds))
			r.Get("/leaderboard", handler.HandleGetLeaderboard(svc.Leaderboard))
			r.Get("/totals", handler.HandleGetGuildTotals(svc.Ledger))
			r.Get("/audit", handler.HandleGetAuditLog(svc.Audit))

			r.Get("/config", handler.HandleGetGuildConfig(svc.Guilds))
			r.Put("/rewards", handler.HandleSetRewards(svc.Guilds))
			r.Post("/rewards", handler.HandleAddReward(svc.Guilds))
			r.Delete("/rewards/{role}", handler.HandleRemoveReward(svc.Guilds))
			r.Put("/hierarchy", handler.HandleSetHierarchy(svc.Guilds))
			r.Put("/auto-points", handler.HandleSetAutoPoints(svc.Guilds))

			r.Route("/multiplier", func(r chi.Router) {
				r.Get("/", handler.HandleGetMultiplier(svc.Multipliers))
				r.Post("/", handler.HandleSetMultiplier(svc.Multipliers))
				r.Delete("/", handler.HandleClearMultiplier(svc.Multipliers))
				r.Put("/expiry", handler.HandleSetMultiplierExpiry(svc.Multipliers))
			})

			r.Route("/members/{member}", func(r chi.Router) {
				r.Get("/", handler.HandleGetMember(svc.Ledger, svc.Leaderboard))
				r.Delete("/", handler.HandleForgetMember(svc.Ledger))
				r.Get("/history", handler.HandleGetMemberHistory(svc.Ledger))
				r.Post("/adjust", handler.HandleAdjustMember(svc.Ledger))
				r.Post("/wins", handler.HandleRegisterWin(svc.Ledger, svc.Multipliers))
				r.Post("/wins/remove", handler.HandleRemoveWin(svc.Ledger, svc.Multipliers))
				if svc.Rewards != nil {
					r.Get("/progress", handler.HandleGetProgress(svc.Rewards))
					r.Post("/roles/refresh", handler.HandleRefreshRoles(svc.Rewards))
				}
			})
		})
	})

	return r
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, p := range quietPaths {
			if strings.HasPrefix(r.URL.Path, p) {
				next.ServeHTTP(w, r)
				return
			}
		}

		start := time.Now()
		ctx := logger.WithRequestID(r.Context(), logger.GenerateRequestID())
		r = r.WithContext(ctx)
		log := logger.FromContext(ctx)

		log.Info(LogMsgRequestStarted,
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"content_length", r.ContentLength,
			"user_agent", r.UserAgent())

		sanitized := make(http.Header, len(r.Header))
		for k, v := range r.Header {
			if strings.EqualFold(k, HeaderAPIKey) || strings.EqualFold(k, HeaderAuthorization) {
				sanitized[k] = []string{RedactedValue}
				continue
			}
			sanitized[k] = v
		}
		log.Debug(LogMsgRequestHeaders, "headers", sanitized)

		rw := newResponseWriter(w)
		next.ServeHTTP(rw, r)

		duration := time.Since(start)
		log.Info(LogMsgRequestCompleted,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds())
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	if !rw.written {
		rw.statusCode = statusCode
		rw.written = true
		rw.ResponseWriter.WriteHeader(statusCode)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

// Start serves until Stop is called. http.ErrServerClosed is returned after Stop.
func (s *Server) Start() error {
	slog.Default().Info(LogMsgServerStarting, "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Stop stops the server gracefully
func (s *Server) Stop(ctx context.Context) error {
	slog.Default().Info(LogMsgServerStopping)
	return s.httpServer.Shutdown(ctx)
}
