// Command server runs the WatchWonders HTTP API.
//
// Configuration comes from environment variables (see internal/config);
// ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET are required.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/ganeswar07/WatchWonders-Backend/internal/config"
	"github.com/ganeswar07/WatchWonders-Backend/internal/logging"
	"github.com/ganeswar07/WatchWonders-Backend/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("loading configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	slog.SetDefault(logger)

	srv, err := server.New(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start blocks until the server is shut down (Ctrl+C or SIGTERM).
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
