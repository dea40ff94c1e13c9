package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"

	"finclient/internal/cli"
	"finclient/internal/commands"
	"finclient/internal/log"
	"finclient/internal/services"
	"finclient/internal/session"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg, stderr, log.ComponentCLI)
	ctx := context.Background()

	durable, err := cli.OpenDurableTier(ctx, logger.WithComponent(log.ComponentStorage), cfg)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer durable.Close()

	client := cli.NewAPIClient(cfg, logger)
	store := session.New(session.Config{
		Profile:   cfg.Profile,
		Auth:      services.NewAuthService(client),
		Ephemeral: session.NewMemoryTier(1, cfg.SessionEphemeralTTL),
		Durable:   durable,
		Logger:    logger.WithComponent(log.ComponentSession).Slog(),
	})
	if err := store.Restore(ctx); err != nil {
		logger.Warn("Starting logged out", log.FieldError, err)
	}

	app := &commands.App{
		Session:        store,
		Transactions:   services.NewTransactionService(client),
		Categories:     services.NewCategoryService(client),
		PaymentMethods: services.NewPaymentMethodService(client),
		Logger:         logger,
		Stdin:          stdin,
		Stdout:         stdout,
		Stderr:         stderr,
		Pretty:         commands.IsTerminal(stdout),
	}
	return int(commands.Run(ctx, app, path.Base(os.Args[0]), args))
}
