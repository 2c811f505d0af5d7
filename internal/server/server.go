// Package server exposes the loaded recap dataset over a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/spektr-org/rekap/dataset"
	"github.com/spektr-org/rekap/internal/config"
)

// maxUploadBytes caps the body of a dataset upload.
const maxUploadBytes = 32 << 20

// Server is the HTTP API server.
type Server struct {
	store    *dataset.Store
	settings *config.Config
	logger   *slog.Logger
	loadOpts []dataset.Option
}

// Config holds the dependencies of a Server.
type Config struct {
	Store    *dataset.Store
	Settings *config.Config
	Logger   *slog.Logger
	// LoadOptions are applied to datasets uploaded through the API.
	LoadOptions []dataset.Option
}

// New creates a Server. A nil Settings uses config.Defaults.
func New(cfg Config) *Server {
	s := &Server{
		store:    cfg.Store,
		settings: cfg.Settings,
		logger:   cfg.Logger,
		loadOpts: cfg.LoadOptions,
	}
	if s.store == nil {
		s.store = dataset.NewStore(nil)
	}
	if s.settings == nil {
		s.settings = config.Defaults()
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	return s
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		s.requestLogger,
		middleware.Recoverer,
	)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/dataset", s.handleDataset)
		r.Post("/dataset", s.handleUpload)
		r.Get("/records", s.handleRecords)
		r.Get("/kpis", s.handleKPIs)
		r.Get("/summary", s.handleSummary)
		r.Get("/aggregates", s.handleAggregateKinds)
		r.Get("/aggregates/{kind}", s.handleAggregate)
		r.Post("/query", s.handleQuery)
		r.Get("/facets/{facet}", s.handleFacet)
		r.Route("/charts", func(r chi.Router) {
			r.Get("/customer-salesperson", s.handleStackedChart)
			r.Get("/customer-volume", s.handleVolumeChart)
			r.Get("/customer-conversion", s.handleConversionChart)
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, CodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, CodeMethodNotAllowed, "method not allowed")
	})
	return r
}

// Serve listens on addr and blocks until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, addr string) error {
	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg.Go(func() error {
		s.logger.Info("starting API server", "addr", addr, "records", s.store.Current().Len())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down API server")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
