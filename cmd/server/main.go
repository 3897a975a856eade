package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/matchguru/match-rooms-backend/internal/auth"
	"github.com/matchguru/match-rooms-backend/internal/catalog"
	"github.com/matchguru/match-rooms-backend/internal/config"
	"github.com/matchguru/match-rooms-backend/internal/engine"
	"github.com/matchguru/match-rooms-backend/internal/httpapi"
	"github.com/matchguru/match-rooms-backend/internal/hub"
	"github.com/matchguru/match-rooms-backend/internal/logging"
)

func main() {
	// .env is optional; real env always wins
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Seed one actor per catalog room
	h := hub.NewHub(ctx, logger)
	var states []engine.State
	for _, r := range catalog.List() {
		states = append(states, catalog.SeedState(r))
	}
	h.Seed(states)

	api := httpapi.NewAPI(h, auth.NewGate(), logger)
	server := &http.Server{
		Addr:    cfg.Addr,
		Handler: httpapi.SetupRoutes(api),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", zap.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		h.Inbox() <- hub.ShutdownHub{}
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
