package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/openmun/delegation-api/internal/auth"
	"github.com/openmun/delegation-api/internal/config"
	"github.com/openmun/delegation-api/internal/domain/registration"
	"github.com/openmun/delegation-api/internal/logger"
	"github.com/openmun/delegation-api/internal/mailer"
	"github.com/openmun/delegation-api/internal/server"
	"github.com/openmun/delegation-api/internal/storage/objectstore"
	"github.com/openmun/delegation-api/internal/storage/postgres"
)

func main() {
	cfg := config.Load()

	logger.Initialize(cfg.LogLevel)
	log := logger.Get()

	log.Info("Starting Delegation API", "environment", cfg.Server.Environment)

	store, err := postgres.NewContainer(cfg)
	if err != nil {
		log.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer postgres.Close()

	logos, err := objectstore.New(context.Background(), cfg.ObjectStore)
	if err != nil {
		// Logo uploads fail until the bucket comes back; everything else
		// keeps working.
		log.Error("Object store unavailable, logo uploads disabled", "error", err)
		logos = nil
	}

	mail := mailer.New(cfg)
	hasher := auth.NewBcryptHasher(cfg.Auth.BcryptCost)
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	reg := registration.NewService(store, hasher, mail, registration.Config{
		VerificationTTL: cfg.Auth.VerificationTTL,
	})
	identity := auth.NewService(store, hasher, tokens, mail, reg, auth.Config{
		VerificationTTL: cfg.Auth.VerificationTTL,
		ResetTTL:        cfg.Auth.ResetTTL,
	})

	srv := server.New(cfg, store, reg, identity, tokens, logos)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("Server failed", "error", err)
			os.Exit(1)
		}
	case sig := <-quit:
		log.Info("Shutdown signal received", "signal", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Stop(ctx); err != nil {
		log.Error("Graceful shutdown failed", "error", err)
		os.Exit(1)
	}

	log.Info("Server stopped")
}
