package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"txview/internal/application"
	"txview/internal/config"
	"txview/internal/infrastructure/logging"
	"txview/internal/infrastructure/search"
	"txview/internal/infrastructure/telemetry"
	"txview/internal/interfaces/httpapi"
	"txview/internal/interfaces/page"
)

var (
	version   = "dev"
	commit    = "none"
	buildTime = "unknown"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		slog.Error("config error", "err", err)
		os.Exit(1)
	}

	logFile, err := logging.Init(logging.Config{
		Level:      cfg.LogLevel,
		Format:     cfg.LogFormat,
		File:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
	})
	if err != nil {
		slog.Error("logger init error", "err", err)
	} else if logFile != nil {
		defer logFile.Close()
	}

	shutdownTracing, err := telemetry.InitTracer(context.Background(), "txview-viewer", version, cfg.OtelEndpoint)
	if err != nil {
		slog.Warn("tracing init error", "err", err)
	} else {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownTracing(ctx); err != nil {
				slog.Warn("tracing shutdown error", "err", err)
			}
		}()
	}

	client, err := search.NewClient(search.Config{URL: cfg.SearchURL, Timeout: cfg.FetchTimeout})
	if err != nil {
		slog.Error("search client error", "err", err)
		os.Exit(1)
	}
	renderer, err := page.NewRenderer(cfg.ExplorerTxURL)
	if err != nil {
		slog.Error("renderer error", "err", err)
		os.Exit(1)
	}

	metrics := httpapi.NewMetrics()
	view, err := application.NewView(client, metrics)
	if err != nil {
		slog.Error("view error", "err", err)
		os.Exit(1)
	}

	httpServer, err := httpapi.NewServer(view, renderer, metrics, httpapi.BuildInfo{
		Version:   version,
		Commit:    commit,
		BuildTime: buildTime,
	})
	if err != nil {
		slog.Error("http server error", "err", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	view.Mount(ctx)
	defer view.Unmount()

	slog.Info("viewer started",
		"addr", cfg.HTTPAddr,
		"search", client.URL(),
		"fetch_timeout", cfg.FetchTimeout,
	)
	if err := httpServer.ListenAndServe(ctx, cfg.HTTPAddr); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("http server stopped", "err", err)
	}
}
