package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mbvera/pulse-data/internal/adapters/loader"
	"github.com/mbvera/pulse-data/internal/app"
	"github.com/mbvera/pulse-data/internal/config"
	"github.com/mbvera/pulse-data/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	// Disable default Go metrics collection to avoid duplicate metrics.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			os.Stderr.WriteString("failed to sync logger: " + err.Error() + "\n")
		}
	}()
	loggerInstance := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	if cfg.InputPath == "" {
		loggerInstance.Error(ctx, "input_path is required")
		os.Exit(1)
	}

	// Metrics and health endpoints.
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	go func() {
		loggerInstance.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
		}
	}()

	opts := []app.Option{
		app.WithLogger(loggerInstance),
		app.WithMetricTypes(cfg.MetricTypes),
		app.WithStateCode(cfg.StateCode),
		app.WithPersonFilter(cfg.PersonFilterIDs),
		app.WithCalculationEndMonth(cfg.CalculationEndMonth),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithQueueSize(cfg.QueueSize),
		app.WithJobDetails(cfg.Project, cfg.JobName, cfg.Region),
	}
	if cfg.PersonLevel {
		opts = append(opts, app.WithPersonLevel(cfg.ExternalIDType))
	}
	if cfg.MethodologyAll {
		opts = append(opts, app.WithMethodologyAll())
	}
	svc := app.New(opts...)

	source := loader.NewJSONLSource(cfg.InputPath, loader.WithCountyPath(cfg.CountyPath))

	summary, err := svc.Run(ctx, source)
	if err != nil {
		loggerInstance.Error(ctx, "pipeline run failed", logger.Error(err))
		os.Exit(1)
	}
	loggerInstance.Info(ctx, "pipeline finished",
		logger.String("jobID", summary.JobID),
		logger.Int("personsEnqueued", summary.PersonsEnqueued),
		logger.Int("buckets", summary.Buckets),
		logger.Any("recordsBuilt", summary.RecordsBuilt),
	)

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
	}
}
