package main

import (
	"context"
	"errors"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/metocast/castctl/internal/api"
	"github.com/metocast/castctl/internal/auth"
	"github.com/metocast/castctl/internal/session"
	"github.com/metocast/castctl/internal/shared"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	sessions, err := session.NewStore(config.Session.Path)
	if err != nil {
		logger.Fatalf("failed to open session store: %v", err)
	}

	client := api.NewClient(config.API.BaseURL, sessions, nil, logger)
	service := auth.NewService(client, sessions, logger)
	controller := auth.NewSessionController(service)

	runner := NewRunner(RunnerOpts{
		Config:     config,
		Client:     client,
		Sessions:   sessions,
		Service:    service,
		Controller: controller,
		Logger:     logger,
	})

	app := &cli.Command{
		Name:     "castctl",
		Usage:    "Manage and publish the MetôCast podcast site",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		err_ := errors.Unwrap(err)
		if errors.Is(err_, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}
