package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"excelplotter/internal/config"
	"excelplotter/internal/logging"
	"excelplotter/internal/metrics"
	mw "excelplotter/internal/middleware"
	"excelplotter/internal/session"
)

const version = "1.0.0"

type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	sessions *session.Store
	metrics  *metrics.Metrics
	validate *validator.Validate
	uploads  *mw.RateLimiter
}

func newApp(cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) *app {
	return &app{
		cfg:      cfg,
		logger:   logger,
		sessions: session.NewStore(cfg.Session.TTL, logger),
		metrics:  m,
		validate: validator.New(),
		uploads:  mw.NewRateLimiter(cfg.Upload.RatePerSecond, cfg.Upload.RateBurst, logger),
	}
}

func (a *app) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(a.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/", a.uploadPageHandler)
	r.With(a.uploads.Handler).Post("/upload", a.uploadHandler)
	r.Get("/view", a.viewHandler)
	r.Route("/download", func(r chi.Router) {
		r.Get("/grouped", a.downloadGroupedHandler)
		r.Get("/entire", a.downloadEntireHandler)
		r.Get("/chart", a.downloadChartHandler)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Get("/health", a.healthHandler)
		r.With(a.uploads.Handler).Post("/validate", a.validateFileHandler)
		r.Get("/table", a.tableHandler)
		r.Get("/table/groups", a.groupsHandler)
		r.Get("/table/stats", a.statsHandler)
	})

	r.Method(http.MethodGet, "/metrics", a.metrics.Handler())
	return r
}

func (a *app) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			a.logger.InfoContext(r.Context(), "request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Int("bytes", ww.BytesWritten()),
				slog.Duration("duration", time.Since(start)),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)
		}()
		next.ServeHTTP(ww, r)
	})
}

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := logging.New(cfg.Logging, os.Stdout)
	a := newApp(cfg, logger, metrics.New())

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      a.routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server running", slog.String("addr", srv.Addr), slog.String("version", version))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
