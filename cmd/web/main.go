package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"sales-dashboard/internal/config"
	"sales-dashboard/internal/dataset"
	"sales-dashboard/internal/errors"
	"sales-dashboard/internal/middleware"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/observability"
	"sales-dashboard/internal/server"
	"sales-dashboard/internal/services"
	"sales-dashboard/internal/source"
	"sales-dashboard/internal/ui/templates"
)

const (
	renderTimeout = 10 * time.Second
	pageCache     = "no-cache"
)

// dashboardPage renders the full page for the unfiltered dataset.
func dashboardPage(analytics *services.Analytics, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
		defer cancel()

		dash, err := analytics.Snapshot(ctx, models.Filter{})
		if err != nil {
			errors.WriteError(w, logger, errors.InternalWrap(err, "Failed to compute dashboard"), observability.GetRequestID(ctx))
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", pageCache)
		if err := templates.Dashboard(dash).Render(ctx, w); err != nil {
			logger.Error("render dashboard", "error", err)
			http.Error(w, "render error", http.StatusInternalServerError)
		}
	}
}

// newSource picks the configured CSV location. A URL wins over a file path.
func newSource(cfg config.DataConfig) source.Source {
	var src source.Source
	if cfg.CSVURL != "" {
		src = source.NewHTTPSource(cfg.CSVURL, cfg.FetchTimeout)
	} else {
		src = source.NewFileSource(cfg.CSVFile)
	}
	return source.WithRetry(src, uint64(cfg.FetchRetries), cfg.RetryInterval)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logger)
	slog.SetDefault(logger)
	dataset.SetLogger(logger)

	logger.Info("starting application",
		"version", "1.0.0",
		"config", cfg,
	)

	analytics := services.NewAnalytics(
		services.WithLogger(logger),
		services.WithCacheDir(cfg.Data.CacheDir),
	)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Data.LoadTimeout)
	start := time.Now()
	if err := analytics.Load(ctx, newSource(cfg.Data)); err != nil {
		logger.Warn("serving sample data", "error", err)
	}
	cancel()
	logger.Info("sales data ready",
		"duration", time.Since(start),
		"records", len(analytics.Records()),
	)

	templateHandlers := &server.TemplateHandlers{
		Dashboard: dashboardPage(analytics, logger),
	}

	srv := server.NewServer(analytics, logger, templateHandlers)

	rateLimiter := middleware.NewRateLimiter(cfg.Security)

	middlewareChain := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Tracing(logger),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.Security),
		middleware.TrustedProxy(cfg.Security),
		middleware.RateLimit(rateLimiter, logger),
	)

	handler := middlewareChain(srv)

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	gracefulServer := server.NewGracefulServer(httpServer, logger, cfg.Server)

	gracefulServer.RegisterShutdownHook("analytics", func(ctx context.Context) error {
		logger.Info("shutting down analytics service", "stats", analytics.Stats())
		return nil
	})

	if err := gracefulServer.ListenAndServe(); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("application stopped gracefully")
}
