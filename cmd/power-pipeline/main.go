package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/shipsense/power-estimation/internal/client"
	"github.com/shipsense/power-estimation/internal/config"
	"github.com/shipsense/power-estimation/internal/estimation"
	"github.com/shipsense/power-estimation/internal/export"
	"github.com/shipsense/power-estimation/internal/utils"
)

func main() {
	var (
		configPath  string
		inputFile   string
		modelName   string
		outputPath  string
		callTimeout time.Duration
	)
	flag.StringVar(&configPath, "config", "", "Path to configuration file")
	flag.StringVar(&inputFile, "input", "TestData/CMU_2019_2020_openWater.xlsx", "Telemetry workbook, as seen by the fetch service")
	flag.StringVar(&modelName, "model", "openwater", "Model type: openwater or ice")
	flag.StringVar(&outputPath, "out", "", "Optional workbook to write estimates to")
	flag.DurationVar(&callTimeout, "timeout", client.DefaultCallTimeout, "Per-stage call timeout")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("path", configPath), slog.Any("error", err))
		os.Exit(1)
	}
	logger := utils.NewLogger(cfg.Logging.Level, cfg.Logging.JSON)

	conns, err := client.Connect(cfg, logger)
	if err != nil {
		logger.Error("failed to connect to services", slog.Any("error", err))
		os.Exit(1)
	}
	defer conns.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	code := modelCode(modelName)
	logger.Info("running power pipeline", slog.String("input", inputFile), slog.String("model", estimation.ModelName(code)))

	res, err := client.NewPipeline(conns.Stages(), callTimeout, logger).Run(ctx, inputFile, code)
	if err != nil {
		logger.Error("pipeline failed", slog.Any("error", err))
		conns.Close()
		os.Exit(1)
	}

	if outputPath != "" {
		if err := export.WriteEstimates(outputPath, res.Estimate); err != nil {
			logger.Error("failed to write estimates", slog.Any("error", err))
			conns.Close()
			os.Exit(1)
		}
		logger.Info("estimates written", slog.String("path", outputPath))
	}
	for stage, counter := range conns.Counters {
		logger.Info("stage calls", slog.String("stage", stage), slog.Int64("calls", counter.Calls()))
	}
}

func modelCode(name string) int32 {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "ice":
		return estimation.ModelIce
	case "openwater", "open-water", "open_water":
		return estimation.ModelOpenWater
	default:
		return estimation.ModelUnspecified
	}
}
