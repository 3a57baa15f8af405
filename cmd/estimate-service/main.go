package main

import (
	"flag"
	"log/slog"
	"os"

	"google.golang.org/grpc"

	"github.com/shipsense/power-estimation/internal/cache"
	"github.com/shipsense/power-estimation/internal/config"
	"github.com/shipsense/power-estimation/internal/estimation"
	"github.com/shipsense/power-estimation/internal/export"
	"github.com/shipsense/power-estimation/internal/grpc/powerv1"
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

	var cacheProvider cache.Provider = cache.NoopProvider{}
	if cfg.Cache.Enabled && cfg.Cache.Addr != "" {
		provider, err := cache.NewRedisProvider(cache.RedisConfig{
			Addr:         cfg.Cache.Addr,
			Username:     cfg.Cache.Username,
			Password:     cfg.Cache.Password,
			DB:           cfg.Cache.DB,
			DialTimeout:  cfg.Cache.DialTimeout,
			ReadTimeout:  cfg.Cache.ReadTimeout,
			WriteTimeout: cfg.Cache.WriteTimeout,
			MaxRetries:   cfg.Cache.MaxRetries,
			TLS:          cfg.Cache.TLS,
			KeyPrefix:    "power:",
		})
		if err != nil {
			logger.Warn("redis artifact cache unavailable", slog.Any("error", err))
		} else {
			cacheProvider = provider
		}
	}
	defer cacheProvider.Close()

	store := estimation.NewArtifactStore(estimation.Selector{
		OpenWaterPath: cfg.Models.OpenWaterPath,
		IcePath:       cfg.Models.IcePath,
	}, cacheProvider, cfg.Cache.ArtifactTTL, logger)

	var emitter services.Emitter
	if cfg.Output.EmitPath != "" {
		emitter = export.NewWorkbook(cfg.Output.EmitPath)
		logger.Info("estimates will be written to workbook", slog.String("path", cfg.Output.EmitPath))
	}

	svc := services.NewEstimateService(logger, estimation.NewEngine(store), emitter)
	err = shell.Run(cfg, shell.Stage{
		Name:    "estimate",
		Service: cfg.Services.Estimate,
		Register: func(s grpc.ServiceRegistrar) {
			powerv1.RegisterEstimatePowerServer(s, svc)
		},
	}, logger)
	if err != nil {
		logger.Error("estimate service failed", slog.Any("error", err))
		cacheProvider.Close()
		os.Exit(1)
	}
}
