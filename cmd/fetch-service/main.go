package main

import (
	"flag"
	"log/slog"
	"os"

	"google.golang.org/grpc"

	"github.com/shipsense/power-estimation/internal/config"
	"github.com/shipsense/power-estimation/internal/grpc/powerv1"
	"github.com/shipsense/power-estimation/internal/ingest"
	"github.com/shipsense/power-estimation/internal/services"
	"github.com/shipsense/power-estimation/internal/shell"
	"github.com/shipsense/power-estimation/internal/utils"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("path", configPath), slog.Any("error", err))
		os.Exit(1)
	}
	logger := utils.NewLogger(cfg.Logging.Level, cfg.Logging.JSON)

	svc := services.NewFetchService(logger, ingest.FileLoader{})
	err = shell.Run(cfg, shell.Stage{
		Name:    "fetch",
		Service: cfg.Services.Fetch,
		Register: func(s grpc.ServiceRegistrar) {
			powerv1.RegisterFetchDataServer(s, svc)
		},
	}, logger)
	if err != nil {
		logger.Error("fetch service failed", slog.Any("error", err))
		os.Exit(1)
	}
}
