package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mmrzaf/empgen/internal/api"
	"github.com/mmrzaf/empgen/internal/app"
	"github.com/mmrzaf/empgen/internal/config"
	"github.com/mmrzaf/empgen/internal/infra/repos/exports"
	"github.com/mmrzaf/empgen/internal/infra/repos/profiles"
	"github.com/mmrzaf/empgen/internal/logging"
	"github.com/mmrzaf/empgen/internal/metrics"
	"github.com/mmrzaf/empgen/internal/registry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	profilesDir := flag.String("profiles-dir", cfg.ProfilesDir, "Profiles directory")
	historyDB := flag.String("history-db", cfg.HistoryDB, "Export history DSN (SQLite path or postgres:// URL)")
	outputDir := flag.String("output-dir", cfg.OutputDir, "Directory exports are written under")
	bindAddr := flag.String("bind", cfg.BindAddr, "Bind address")
	logLevel := flag.String("log-level", cfg.LogLevel, "Log level")
	flag.Parse()

	logger := logging.NewLogger(*logLevel).WithComponent("api_main")

	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		logger.Errorw("startup.failed", map[string]any{"error": err.Error(), "stage": "output_dir"})
		os.Exit(1)
	}

	history, err := exports.Open(*historyDB)
	if err != nil {
		logger.Errorw("startup.failed", map[string]any{"error": err.Error(), "stage": "init_history_repo"})
		os.Exit(1)
	}
	defer history.Close()

	m := metrics.New()
	svc := app.NewExportService(
		profiles.NewFileRepository(*profilesDir),
		history,
		registry.DefaultProviderRegistry(),
		logger,
		app.ServiceOptions{MaxCount: cfg.MaxCount, DefaultProvider: cfg.NameProvider, Metrics: m},
	)
	handler := api.NewHandler(svc, *outputDir, logger)

	server := &http.Server{
		Addr:              *bindAddr,
		Handler:           loggingMiddleware(logger.WithComponent("http"), api.NewRouter(handler, m.Handler())),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, gctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		logger.Infow("startup.listening", map[string]any{"bind": *bindAddr, "output_dir": *outputDir})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		<-gctx.Done()
		logger.Infow("shutdown.started", map[string]any{"timeout": cfg.ShutdownTimeout.String()})
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		logger.Errorw("shutdown.failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	logger.Infow("shutdown.completed", nil)
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		fields := map[string]any{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      sw.status,
			"duration_ms": time.Since(started).Milliseconds(),
			"remote":      r.RemoteAddr,
		}
		if sw.status >= 500 {
			logger.Errorw("request.completed", fields)
			return
		}
		if sw.status >= 400 {
			logger.Warnw("request.completed", fields)
			return
		}
		logger.Infow("request.completed", fields)
	})
}
