package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"finclient/internal/cli"
	"finclient/internal/log"
	"finclient/internal/mockapi"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg, os.Stdout, log.ComponentMockAPI)

	backend := mockapi.New(mockapi.Config{
		Secret: []byte(cfg.MockAPISecret),
		Logger: logger.Slog(),
	})
	if cfg.MockAPIUser != "" {
		if err := backend.AddUser(cfg.MockAPIUser, cfg.MockAPIPassword); err != nil {
			logger.Error("Failed to seed demo user", log.FieldError, err, log.FieldUsername, cfg.MockAPIUser)
			os.Exit(1)
		}
		logger.Info("Seeded demo user", log.FieldUsername, cfg.MockAPIUser)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.MockAPIPort,
		Handler:           log.Middleware(logger)(backend.Handler()),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, done := cli.GracefulShutdown(logger, 10*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
	})

	logger.Info("Starting mock finance API", "port", cfg.MockAPIPort, log.FieldOperation, log.OpStartup)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err)
		os.Exit(1)
	}
	cli.WaitForShutdown(ctx, done)
}
