// Package server serves the dashboard page and the report API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jgoulah/powercurve/internal/dataset"
	"github.com/jgoulah/powercurve/internal/logger"
	"github.com/jgoulah/powercurve/internal/metrics"
)

// RefreshFunc checks the data source and returns a rebuilt store,
// or nil when nothing changed
type RefreshFunc func(ctx context.Context) (*dataset.Store, error)

// Options configures a Server
type Options struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	SourceURL    string
}

// Server holds the current data set and the HTTP handlers
type Server struct {
	opts  Options
	store atomic.Pointer[dataset.Store]
	mux   *http.ServeMux
}

// New creates a server serving store
func New(store *dataset.Store, opts Options) *Server {
	metrics.Init()

	s := &Server{opts: opts, mux: http.NewServeMux()}
	s.SetStore(store)

	s.mux.HandleFunc("/", s.handleIndex)
	s.mux.HandleFunc("/api/reports/", s.handleReport)
	s.mux.HandleFunc("/api/meta", s.handleMeta)
	s.mux.Handle("/metrics", promhttp.Handler())
	s.mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return s
}

// Store returns the data set currently served
func (s *Server) Store() *dataset.Store {
	return s.store.Load()
}

// SetStore swaps the served data set; in-flight requests keep the previous one
func (s *Server) SetStore(store *dataset.Store) {
	s.store.Store(store)
	metrics.ObserveStoreBuild(metrics.ResultSuccess, store.Len())
}

// Handler returns the root handler including request logging
func (s *Server) Handler() http.Handler {
	return loggingMiddleware(s.mux)
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.opts.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http listening on %s (%s records)", s.opts.Addr, humanize.Comma(int64(s.Store().Len())))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}

// RefreshLoop calls refresh every interval and swaps in any rebuilt store.
// Failures are logged and the current store keeps serving.
func (s *Server) RefreshLoop(ctx context.Context, interval time.Duration, refresh RefreshFunc) {
	if interval <= 0 || refresh == nil {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.refreshOnce(ctx, refresh)
		}
	}
}

func (s *Server) refreshOnce(ctx context.Context, refresh RefreshFunc) {
	store, err := refresh(ctx)
	if err != nil {
		metrics.ObserveStoreBuild(metrics.ResultError, 0)
		logger.Warn("refresh failed, keeping current data: %v", err)
		return
	}
	if store == nil {
		logger.Debug("refresh: data unchanged")
		return
	}
	s.SetStore(store)
	logger.Info("refresh: serving %s records up to %s",
		humanize.Comma(int64(store.Len())), store.Latest().Format(time.RFC3339))
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Debug("http %s %s %d %s", r.Method, r.URL.RequestURI(), resp.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
