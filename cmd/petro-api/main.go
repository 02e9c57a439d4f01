package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"petrosmart/internal/api"
	"petrosmart/internal/config"
	"petrosmart/internal/content"
	"petrosmart/internal/game"
	"petrosmart/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadAPIFromEnv()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	st, closeStore, err := store.Open(ctx, cfg.Store)
	if err != nil {
		logger.Error("store open failed", "kind", cfg.Store.Kind, "err", err)
		os.Exit(1)
	}
	defer closeStore()

	catalog, err := content.Builtin()
	if err != nil {
		logger.Error("content catalog invalid", "err", err)
		os.Exit(1)
	}
	var provider game.ContentProvider = catalog
	if cfg.Content.URL != "" {
		provider = content.NewFallback(content.NewRemoteClient(cfg.Content.URL, cfg.Content.Timeout, cfg.Content.RPS), catalog, logger)
	}

	gameSvc := game.NewService(game.ServiceConfig{
		Language:       cfg.Language,
		ContentTimeout: cfg.Content.Timeout,
	}, st, provider, logger)
	if _, resumed := gameSvc.Resume(ctx); resumed {
		logger.Info("resumed saved game", "phase", gameSvc.Phase())
	}

	server := api.New(cfg, logger, gameSvc)
	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info("petrosmart api listening", "addr", cfg.Addr, "store", cfg.Store.Kind)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed", "err", err)
		os.Exit(1)
	}
}
