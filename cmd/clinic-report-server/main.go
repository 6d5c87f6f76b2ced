package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"clinicreport/internal/app"
	"clinicreport/internal/config"
	"clinicreport/internal/infrastructure"
)

func main() {
	configPath := flag.String("config", "", "path to clinic-report.yaml (defaults to the well-known locations)")
	port := flag.Int("port", 0, "listen port (defaults to config)")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to load .env", "error", err)
	}

	cfg, err := config.LoadWithOverrides(*configPath, func(c *config.Config) {
		if *port > 0 {
			c.Server.Port = *port
		}
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer infrastructure.CloseLogFile()

	ctx := context.Background()
	providers, err := infrastructure.InitializeOTel(cfg.Telemetry, config.AppVersion, logger)
	if err != nil {
		logger.Error("failed to initialize telemetry", slog.String("error", err.Error()))
		os.Exit(1)
	}

	application, err := app.NewApplication(ctx, cfg, providers, logger)
	if err != nil {
		logger.Error("failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := application.Run(ctx); err != nil {
		logger.Error("server stopped with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
