// Package shell runs one pipeline stage as a gRPC service: credentials, the metrics
// interceptor, the worker limiter, a /metrics side server and graceful shutdown.
package shell

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"

	"github.com/shipsense/power-estimation/internal/api"
	"github.com/shipsense/power-estimation/internal/config"
	"github.com/shipsense/power-estimation/internal/metrics"
)

// Stage describes the service a binary hosts.
type Stage struct {
	Name     string
	Service  config.ServiceConfig
	Register api.Registrar
}

// Run serves stage until SIGINT or SIGTERM. Startup failures are returned; metrics
// backend failures are logged and tolerated.
func Run(cfg *config.Config, stage Stage, logger *slog.Logger) error {
	logger = logger.With(slog.String("stage", stage.Name))
	address := stage.Service.Address()
	logger.Info("starting power service", slog.String("address", address), slog.Bool("tls", cfg.TLS.Enabled))

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	creds, err := api.ServerCredentials(cfg.TLS)
	if err != nil {
		return fmt.Errorf("load TLS material: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	interceptor := metrics.NewInterceptor(ctx, interceptorOptions(cfg, stage.Service.Job, logger))
	limiter := metrics.NewLimiter(cfg.Server.Workers)

	server, err := api.NewServer(address, cfg.Server, stage.Register,
		grpc.Creds(creds),
		grpc.ChainUnaryInterceptor(limiter.Unary(), interceptor.Unary()),
	)
	if err != nil {
		return err
	}

	var metricsServer *http.Server
	if stage.Service.MetricsAddress != "" {
		gatherers := prometheus.Gatherers{prometheus.DefaultGatherer, interceptor.Registry()}
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(gatherers, promhttp.HandlerOpts{}))
		metricsServer = &http.Server{
			Addr:         stage.Service.MetricsAddress,
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 15 * time.Second,
		}
		go func() {
			logger.Info("metrics server listening", slog.String("address", stage.Service.MetricsAddress))
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server exited", slog.Any("error", err))
				stop()
			}
		}()
	}

	go func() {
		logger.Info("gRPC server listening", slog.String("address", server.Address()),
			slog.Int("workers", limiter.Capacity()), slog.Float64("calls", interceptor.Count()))
		if serveErr := server.Start(); serveErr != nil {
			logger.Error("gRPC server exited", slog.Any("error", serveErr))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
	defer cancel()
	server.Shutdown(shutdownCtx)

	if metricsServer != nil {
		metricsCtx, cancelMetrics := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(metricsCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics server shutdown", slog.Any("error", err))
		}
		cancelMetrics()
	}

	logger.Info("power service stopped", slog.Float64("calls", interceptor.Count()))
	return nil
}

func interceptorOptions(cfg *config.Config, job string, logger *slog.Logger) metrics.Options {
	opts := metrics.Options{
		Job:         job,
		SeedTimeout: cfg.Prometheus.SeedTimeout,
		PushTimeout: cfg.Prometheus.PushTimeout,
		Logger:      logger,
	}
	if cfg.Prometheus.QueryURL != "" {
		querier, err := metrics.NewPromQuerier(cfg.Prometheus.QueryURL)
		if err != nil {
			logger.Warn("metrics backend query disabled", slog.Any("error", err))
		} else {
			opts.Querier = querier
		}
	}
	if cfg.Prometheus.PushURL != "" {
		opts.Pusher = metrics.NewGatewayPusher(cfg.Prometheus.PushURL, job,
			&http.Client{Timeout: cfg.Prometheus.PushTimeout})
	}
	return opts
}
