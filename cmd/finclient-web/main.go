package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"finclient/internal/cache"
	"finclient/internal/cli"
	apphttp "finclient/internal/http"
	"finclient/internal/log"
	"finclient/internal/services"
	"finclient/internal/session"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg, os.Stdout, log.ComponentApp)

	durable, err := cli.OpenDurableTier(context.Background(), logger.WithComponent(log.ComponentStorage), cfg)
	if err != nil {
		logger.Error("Failed to open durable session tier", log.FieldError, err, "backend", cfg.SessionBackend)
		os.Exit(1)
	}
	defer durable.Close()

	client := cli.NewAPIClient(cfg, logger)
	ephemeral := session.NewMemoryTier(cfg.SessionCacheSize, cfg.SessionEphemeralTTL)
	registry := session.NewRegistry(services.NewAuthService(client), ephemeral, durable, cfg.SessionCacheSize,
		logger.WithComponent(log.ComponentSession).Slog())

	srv, err := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Sessions:       registry,
		Transactions:   services.NewTransactionService(client),
		Categories:     services.NewCategoryService(client),
		PaymentMethods: services.NewPaymentMethodService(client),
		Ready:          durable.Ping,
		Logger:         logger,
		LoginRateLimit: cfg.LoginRateLimit,
		RememberFor:    cfg.SessionDurableTTL,
	})
	if err != nil {
		logger.Error("Failed to build HTTP server", log.FieldError, err)
		os.Exit(1)
	}

	cleaners := []cache.Cleaner{ephemeral}
	if c, ok := durable.(cache.Cleaner); ok {
		cleaners = append(cleaners, c)
	}
	janitorCtx, stopJanitor := context.WithCancel(context.Background())
	janitor := cache.NewJanitor(logger.WithComponent(log.ComponentSession).Slog(), cleaners...)
	janitor.Start(janitorCtx, 10*time.Minute)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err, log.FieldOperation, log.OpShutdown)
		}
		stopJanitor()
		janitor.Wait()
	})

	logger.Info("Starting finclient web server",
		"port", cfg.Port, "api_host", cfg.APIHost, "session_backend", cfg.SessionBackend, log.FieldOperation, log.OpStartup)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
