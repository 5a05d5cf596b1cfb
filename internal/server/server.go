package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/username/year-dots/internal/calendar"
	"github.com/username/year-dots/internal/daystate"
	"github.com/username/year-dots/internal/yeartracker"
	"go.uber.org/zap"
)

// Server exposes the tracked year over HTTP
type Server struct {
	manager *yeartracker.Manager
	logger  *zap.Logger
	now     func() time.Time
}

// New creates a new HTTP server for manager
func New(manager *yeartracker.Manager, logger *zap.Logger) *Server {
	return &Server{
		manager: manager,
		logger:  logger,
		now:     time.Now,
	}
}

// Handler returns the routed handler
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/days", s.HandleListDays)
	mux.HandleFunc("GET /api/days/{key}", s.HandleGetDay)
	mux.HandleFunc("POST /api/days/{key}/toggle", s.HandleToggleDay)
	mux.HandleFunc("PUT /api/days/{key}/journal", s.HandlePutJournal)
	mux.HandleFunc("DELETE /api/days/{key}/journal", s.HandleDeleteJournal)
	mux.HandleFunc("GET /api/counter", s.HandleCounter)
	mux.HandleFunc("GET /api/status", s.HandleStatus)

	mux.HandleFunc("GET /export.png", s.HandleExportPNG)
	mux.HandleFunc("GET /export.ics", s.HandleExportICS)

	return s.logRequests(mux)
}

// ListenAndServe serves on addr until ctx is done
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to serve: %w", err)
	case <-ctx.Done():
		s.logger.Info("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down: %w", err)
		}
		return nil
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("HTTP request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, calendar.ErrInvalidDateKey),
		errors.Is(err, calendar.ErrDayIndexOutOfRange),
		errors.Is(err, daystate.ErrInvalidJournal):
		return http.StatusBadRequest
	case errors.Is(err, yeartracker.ErrOutsideYear):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func jsonOK(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
