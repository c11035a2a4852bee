package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/poolhttpd/server/internal/document"
	"github.com/poolhttpd/server/internal/infrastructure/config"
	"github.com/poolhttpd/server/internal/server"
	"github.com/poolhttpd/server/internal/store"
	"github.com/poolhttpd/server/internal/worker"
)

func main() {
	cfg := config.Load()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))

	// ── Dependencies ────────────────────────────────────────────────
	docs := document.NewOSSource(cfg.RootDocument, cfg.NotFoundDocument)
	if err := docs.Check(); err != nil {
		// not fatal: the affected routes answer 500 until the file appears
		logger.Warn("document missing", "error", err)
	}

	var (
		recorder  store.Recorder = store.Nop{}
		accessLog *store.SQLiteStore
	)
	if cfg.AccessLogDB != "" {
		db, err := store.NewSQLite(cfg.AccessLogDB)
		if err != nil {
			logger.Error("failed to open access log", "error", err)
			os.Exit(1)
		}
		accessLog = db
		recorder = db
	}

	handler := server.NewConnHandler(docs, logger,
		server.WithRecorder(recorder),
		server.WithSleepDelay(cfg.SleepDelay),
		server.WithMaxHeaderBytes(cfg.MaxHeaderBytes),
	)

	// ── Listener ────────────────────────────────────────────────────
	ln, err := server.Listen(cfg.ServerAddress)
	if err != nil {
		logger.Error("server failed to start", "error", err)
		os.Exit(1)
	}

	pool := worker.New(cfg.WorkerCount, logger)
	srv := server.New(pool, handler, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("starting server", "address", cfg.ServerAddress, "workers", pool.Size())
	if err := srv.Serve(ctx, ln); err != nil {
		logger.Error("accept loop stopped", "error", err)
	}

	// ── Drain ───────────────────────────────────────────────────────
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	drain(shutdownCtx, pool, accessLog, logger)
}

// drainer is the part of the worker pool drain needs.
type drainer interface {
	Pending() int
	ShutdownContext(ctx context.Context) error
}

// drain waits for the workers and then closes the access log. If the workers
// are still busy when ctx ends, the access log stays open so their Record
// calls keep working until the process exits.
func drain(ctx context.Context, pool drainer, accessLog *store.SQLiteStore, logger *slog.Logger) error {
	logger.Info("shutting down server", "pending", pool.Pending())

	if err := pool.ShutdownContext(ctx); err != nil {
		logger.Error("workers did not drain in time; leaving access log open", "error", err)
		return err
	}
	if accessLog == nil {
		return nil
	}

	n, err := accessLog.Count(context.Background())
	if err != nil {
		logger.Error("failed to count access log", "error", err)
	} else {
		logger.Info("access log closed", "requests", n)
	}
	if err := accessLog.Close(); err != nil {
		logger.Error("failed to close access log", "error", err)
		return err
	}
	return nil
}
