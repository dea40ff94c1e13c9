// Package cli provides the initialization shared by cmd/finclient,
// cmd/finclient-web and cmd/finclient-mockapi.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"finclient/internal/api"
	"finclient/internal/config"
	"finclient/internal/log"
	"finclient/internal/session"
	"finclient/internal/storage"
)

// DurableTier is a session tier that survives restarts and holds a
// connection.
type DurableTier interface {
	session.Tier
	Ping(ctx context.Context) error
	Close() error
}

// SetupLogger installs the default logger at the configured level, writing
// to out.
func SetupLogger(cfg *config.Config, out io.Writer, component string) *log.Logger {
	logger := log.New(log.Config{
		Level:     log.ParseLevel(cfg.LogLevel),
		Format:    cfg.LogFormat,
		Output:    out,
		Component: component,
	})
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads .env for local development. A missing file is fine.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads the configuration and exits on validation
// failure. The error goes to stderr since the logger depends on the config.
func LoadAndValidateConfig() *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	return cfg
}

// OpenDurableTier opens the durable session tier selected by
// SESSION_BACKEND.
func OpenDurableTier(ctx context.Context, logger *log.Logger, cfg *config.Config) (DurableTier, error) {
	switch cfg.SessionBackend {
	case config.BackendRedis:
		store, err := storage.NewRedisTokenStore(ctx, cfg.RedisURL, cfg.SessionDurableTTL)
		if err != nil {
			return nil, fmt.Errorf("open redis session store: %w", err)
		}
		logger.Info("Durable sessions in Redis")
		return store, nil
	default:
		store, err := storage.NewTokenStore(cfg.SQLiteDBPath, cfg.SessionDurableTTL)
		if err != nil {
			return nil, fmt.Errorf("open sqlite session store: %w", err)
		}
		logger.Info("Durable sessions in SQLite", log.FieldPath, cfg.SQLiteDBPath)
		return store, nil
	}
}

// NewAPIClient builds the backend client from the configuration.
func NewAPIClient(cfg *config.Config, logger *log.Logger) *api.Client {
	opts := []api.Option{api.WithLogger(logger.WithComponent(log.ComponentAPI).Slog())}
	if cfg.APITimeout > 0 {
		opts = append(opts, api.WithTimeout(cfg.APITimeout))
	}
	return api.NewClient(cfg.APIHost, opts...)
}

// GracefulShutdown returns a context cancelled on SIGINT or SIGTERM, after
// cleanup has run, and a channel closed once shutdown is over.
func GracefulShutdown(logger *log.Logger, timeout time.Duration, cleanup func(ctx context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		if cleanup != nil {
			cleanup(shutdownCtx)
		}
		cancel()

		if shutdownCtx.Err() != nil {
			logger.Warn("Shutdown timeout reached")
		} else {
			logger.Info("Shutdown complete")
		}
		close(done)
	}()

	return ctx, done
}

// WaitForShutdown blocks until the shutdown has completed.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
