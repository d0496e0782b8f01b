package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/crypticsea/dungeond/internal/adapters/comments"
	"github.com/crypticsea/dungeond/internal/adapters/http/api"
	"github.com/crypticsea/dungeond/internal/adapters/kv"
	app "github.com/crypticsea/dungeond/internal/app"
	"github.com/crypticsea/dungeond/internal/config"
	"github.com/crypticsea/dungeond/pkg/logger"
	"github.com/crypticsea/dungeond/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	kvPingTimeout             = 5 * time.Second
	systemMetricsInterval     = 10 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Disable default Go metrics collection to avoid duplicate metrics
	// We collect our own custom system metrics instead
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Initialize logging
	if err := logger.Init(); err != nil {
		// Logger isn't available yet
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	loggerInstance := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	// Pick the key-value backend
	backend, err := newBackend(ctx, cfg, loggerInstance)
	if err != nil {
		loggerInstance.Error(ctx, "kv backend unavailable", logger.Error(err))
		return
	}

	// Create and start the service with configuration options
	opts := []app.Option{
		app.WithLogger(loggerInstance),
		app.WithKV(backend),
		app.WithRetention(time.Duration(cfg.RetentionDays) * 24 * time.Hour),
		app.WithFetchLimit(cfg.CommentsLimit),
		app.WithDefaultMonster(cfg.DefaultMonster),
		app.WithDefaultModifier(cfg.DefaultModifier),
		app.WithRotationHour(cfg.RotationHourUTC),
		app.WithRotationEnabled(cfg.RotationEnabled),
		app.WithLeaderboardLimits(cfg.DefaultLeaderboardLimit, cfg.MaxLeaderboardLimit),
	}
	if cfg.CommentsBaseURL != "" {
		opts = append(opts, app.WithCommentsSource(comments.NewClient(cfg.CommentsBaseURL)))
	} else {
		loggerInstance.Warn(ctx, "no comments_base_url configured; rotation will find no submissions")
	}

	svc := app.New(opts...)
	if err := svc.Start(ctx); err != nil {
		loggerInstance.Error(ctx, "failed to start service", logger.Error(err))
		return
	}
	defer svc.Stop()

	// Start system metrics updater
	go startSystemMetricsUpdater(ctx)

	// HTTP mux and routes.
	mux := http.NewServeMux()

	// Register business API routes with the service dependency.
	apiServer := api.NewServer(svc, svc)
	apiServer.Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	// Start the HTTP server
	go func() {
		loggerInstance.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
			return
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	loggerInstance.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(ctx, "server stopped")
}

// newBackend constructs the configured key-value store and verifies it
// is reachable before the service starts serving traffic.
func newBackend(ctx context.Context, cfg *config.Config, log logger.Logger) (kv.Store, error) {
	if cfg.KVBackend == "memory" {
		log.Info(ctx, "using in-memory kv store")
		return kv.NewMemoryStore(), nil
	}

	store := kv.NewRedisStore(cfg.RedisAddr,
		kv.WithPassword(cfg.RedisPassword),
		kv.WithDB(cfg.RedisDB),
	)

	pingCtx, cancel := context.WithTimeout(ctx, kvPingTimeout)
	defer cancel()
	if err := store.Ping(pingCtx); err != nil {
		return nil, err
	}

	log.Info(ctx, "connected to redis", logger.String("addr", cfg.RedisAddr))
	return store, nil
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	// Update memory usage
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)

	// Update goroutine count
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	// Update GC pause time
	if m.NumGC > 0 {
		// Average pause over the process lifetime
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}
