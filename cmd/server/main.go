package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/DoyleJ11/party-sync/internal/config"
	"github.com/DoyleJ11/party-sync/internal/httpapi"
	"github.com/DoyleJ11/party-sync/internal/hub"
	"github.com/DoyleJ11/party-sync/internal/ledger"
	"github.com/DoyleJ11/party-sync/internal/logging"
	"github.com/DoyleJ11/party-sync/internal/party"
	"github.com/DoyleJ11/party-sync/internal/session"
	"github.com/DoyleJ11/party-sync/internal/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}

	err = run(cfg, logger)
	if err != nil {
		logger.Error("server stopped", zap.Error(err))
	}
	_ = logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *zap.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	var recorder ledger.Recorder = ledger.Nop{}
	if cfg.DatabaseURL != "" {
		store, openErr := ledger.OpenPostgres(cfg.DatabaseURL, logger)
		if openErr != nil {
			return openErr
		}
		async := ledger.NewAsync(store, logger)
		defer func() { err = multierr.Append(err, async.Close()) }()
		g.Go(func() error { return async.Run(ctx) })
		recorder = async
	}

	registry := party.NewRegistry(
		party.WithMaxSize(cfg.MaxPartySize),
		party.WithCodeLength(cfg.CodeLength),
	)
	coord := session.New(registry,
		session.WithLogger(logger.Named("session")),
		session.WithLedger(recorder),
	)
	h := hub.NewHub(ctx, coord, logger)

	wsHandler := ws.NewHandler(h, logger, ws.Options{
		OriginPatterns: cfg.AllowedOrigins,
		OutboxLimit:    cfg.OutboxLimit,
	})
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           httpapi.SetupRoutes(h, wsHandler, logger.Named("http")),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		logger.Info("listening",
			zap.String("addr", srv.Addr),
			zap.Int("max_party_size", cfg.MaxPartySize),
			zap.Int("code_length", cfg.CodeLength),
			zap.Bool("ledger", cfg.DatabaseURL != ""))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return multierr.Append(srv.Shutdown(shutdownCtx), waitHub(shutdownCtx, h))
	})

	return g.Wait()
}

func waitHub(ctx context.Context, h *hub.Hub) error {
	h.Send(hub.ShutdownHub{})
	select {
	case <-h.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
