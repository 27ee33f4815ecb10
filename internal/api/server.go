// Package api exposes the HTTP interface for the push service.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/yhkim-dev/newsroom-push/internal/config"
	"github.com/yhkim-dev/newsroom-push/internal/notify"
)

// RunTrigger executes one notification run.
type RunTrigger interface {
	Run(ctx context.Context) (notify.RunReport, error)
}

// Server wires HTTP handlers to the runner and the subscriber store.
type Server struct {
	router      chi.Router
	runner      RunTrigger
	subscribers notify.SubscriberStore
	cfg         config.Config
	logger      *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(runner RunTrigger, subscribers notify.SubscriberStore, cfg config.Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		runner:      runner,
		subscribers: subscribers,
		cfg:         cfg,
		logger:      logger,
	}
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(logger))
	r.Use(recoverMiddleware(logger))
	r.Use(timeoutMiddleware(60 * time.Second))

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.With(cronSecretMiddleware(cfg.Auth.CronSecret)).
			Post("/notifications/run", s.runNotifications)
		r.Route("/subscribers/{device_id}", func(r chi.Router) {
			r.Get("/", s.getSubscriber)
			r.Put("/", s.putSubscriber)
			r.Delete("/", s.deleteSubscriber)
		})
	})

	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, s.logger)
}

func (s *Server) readyz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"}, s.logger)
}

type runResponse struct {
	Success       bool               `json:"success"`
	ProcessedNews int                `json:"processedNews"`
	KeywordSent   int                `json:"keywordSent"`
	CategorySent  int                `json:"categorySent"`
	Failed        int                `json:"failed"`
	Message       string             `json:"message,omitempty"`
	Error         string             `json:"error,omitempty"`
	ItemErrors    []notify.ItemError `json:"itemErrors,omitempty"`
}

// runNotifications is the scheduler entry point. Run failures are
// reported inside a 200 body with success=false; non-200 is reserved
// for auth and routing problems so the scheduler never interprets a
// delivery problem as an endpoint outage.
func (s *Server) runNotifications(w http.ResponseWriter, r *http.Request) {
	report, err := s.runner.Run(r.Context())
	resp := runResponse{
		Success:       err == nil,
		ProcessedNews: report.ProcessedNews,
		KeywordSent:   report.KeywordSent,
		CategorySent:  report.CategorySent,
		Failed:        report.Failed,
		ItemErrors:    report.ItemErrors,
	}
	if err != nil {
		resp.Error = err.Error()
	} else if report.ProcessedNews == 0 {
		resp.Message = "no new notifications"
	}
	writeJSON(w, http.StatusOK, resp, s.logger)
}

type subscriberRequest struct {
	Subscription *notify.PushSubscription `json:"push_subscription"`
	Enabled      bool                     `json:"enabled"`
	Categories   map[string]bool          `json:"categories"`
	Keywords     []string                 `json:"keywords"`
	Schedule     notify.Schedule          `json:"schedule"`
}

func (s *Server) putSubscriber(w http.ResponseWriter, r *http.Request) {
	deviceID := chi.URLParam(r, "device_id")
	var req subscriberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON", s.logger)
		return
	}
	sub := notify.Subscriber{
		DeviceID:     deviceID,
		Subscription: req.Subscription,
		Enabled:      req.Enabled,
		Categories:   req.Categories,
		Keywords:     req.Keywords,
		Schedule:     req.Schedule,
		UpdatedAt:    time.Now().UTC(),
	}
	if err := s.subscribers.Upsert(r.Context(), sub); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), s.logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"device_id": deviceID}, s.logger)
}

func (s *Server) getSubscriber(w http.ResponseWriter, r *http.Request) {
	deviceID := chi.URLParam(r, "device_id")
	sub, err := s.subscribers.Get(r.Context(), deviceID)
	if err != nil {
		if errors.Is(err, notify.ErrSubscriberNotFound) {
			writeError(w, http.StatusNotFound, "subscriber not found", s.logger)
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch subscriber", s.logger)
		return
	}
	writeJSON(w, http.StatusOK, sub, s.logger)
}

func (s *Server) deleteSubscriber(w http.ResponseWriter, r *http.Request) {
	deviceID := chi.URLParam(r, "device_id")
	if err := s.subscribers.Delete(r.Context(), deviceID); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete subscriber", s.logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"device_id": deviceID}, s.logger)
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func loggingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			logger.Info("request completed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.status),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
			)
		})
	}
}

func recoverMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic recovered", zap.Any("error", rec))
					writeError(w, http.StatusInternalServerError, "internal server error", logger)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func timeoutMiddleware(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, "request timed out")
	}
}

// cronSecretMiddleware gates the trigger endpoint on the shared secret
// carried by the external scheduler.
func cronSecretMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" || r.Header.Get("X-Cron-Secret") != secret {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"}, zap.NewNop())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

type requestIDKey struct{}

func writeJSON(w http.ResponseWriter, status int, payload any, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("write JSON failed", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string, logger *zap.Logger) {
	writeJSON(w, status, map[string]string{"error": msg}, logger)
}
