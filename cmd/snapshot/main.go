package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
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
	"txview/internal/interfaces/page"
)

var version = "dev"

func main() {
	envFile := flag.String("env", "", "dotenv file layered under the process environment")
	out := flag.String("out", "", "write the page here instead of SNAPSHOT_OUT or stdout")
	fragment := flag.Bool("fragment", false, "write only the transaction view without the HTML document")
	flag.Parse()

	if err := run(*envFile, *out, *fragment); err != nil {
		slog.Error("snapshot failed", "err", err)
		os.Exit(1)
	}
}

func run(envFile, out string, fragment bool) error {
	var (
		cfg config.Config
		err error
	)
	if envFile != "" {
		cfg, err = config.LoadFromFile(envFile)
	} else {
		cfg, err = config.LoadFromEnv()
	}
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if out == "" {
		out = cfg.SnapshotOut
	}

	// Logs go to stderr so the page can be piped from stdout.
	logFile, err := logging.Init(logging.Config{
		Level:      cfg.LogLevel,
		Format:     cfg.LogFormat,
		File:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		Stdout:     os.Stderr,
	})
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	if logFile != nil {
		defer logFile.Close()
	}

	shutdownTracing, err := telemetry.InitTracer(context.Background(), "txview-snapshot", version, cfg.OtelEndpoint)
	if err != nil {
		slog.Warn("tracing init error", "err", err)
	} else {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdownTracing(ctx)
		}()
	}

	client, err := search.NewClient(search.Config{URL: cfg.SearchURL, Timeout: cfg.FetchTimeout})
	if err != nil {
		return err
	}
	renderer, err := page.NewRenderer(cfg.ExplorerTxURL)
	if err != nil {
		return err
	}
	view, err := application.NewView(client, nil)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	view.Mount(ctx)
	select {
	case <-view.Done():
	case <-ctx.Done():
		view.Unmount()
		<-view.Done()
		return ctx.Err()
	}

	state := view.State()
	err = writeSnapshot(out, state, func(w io.Writer, state application.ViewState) error {
		if fragment {
			return renderer.RenderFragment(w, state)
		}
		return renderer.RenderPage(w, state)
	})
	if err != nil {
		return err
	}
	if state.Phase == application.PhaseFailed {
		return errors.New(state.Error)
	}
	return nil
}

func writeSnapshot(path string, state application.ViewState, render func(io.Writer, application.ViewState) error) error {
	if path == "" || path == "-" {
		return render(os.Stdout, state)
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := render(file, state); err != nil {
		_ = file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return err
	}
	slog.Info("snapshot written", "path", path, "phase", state.Phase)
	return nil
}
