package services

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/shipsense/power-estimation/internal/api"
	"github.com/shipsense/power-estimation/internal/grpc/powerv1"
	"github.com/shipsense/power-estimation/internal/ingest"
	"github.com/shipsense/power-estimation/internal/utils"
)

// FetchService implements power.v1.FetchData.
type FetchService struct {
	logger    *slog.Logger
	loader    ingest.Loader
	latencies *utils.LatencyTracker
}

// NewFetchService constructs the fetch stage. A nil loader reads local files.
func NewFetchService(logger *slog.Logger, loader ingest.Loader) *FetchService {
	if logger == nil {
		logger = slog.Default()
	}
	if loader == nil {
		loader = ingest.FileLoader{}
	}
	return &FetchService{
		logger:    logger,
		loader:    loader,
		latencies: utils.NewLatencyTracker(1024),
	}
}

// FetchDataService imports the named tabular source as a full telemetry record.
func (s *FetchService) FetchDataService(ctx context.Context, req *powerv1.FetchDataRequest) (*powerv1.TelemetryRecord, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request cannot be nil")
	}
	path := req.GetInputFile()
	s.logger.Debug("FetchDataService called", slog.String("input_file", path))

	start := time.Now()
	rec, err := s.loader.Load(ctx, path)
	if err != nil {
		s.logger.Error("telemetry import failed", slog.String("input_file", path), slog.Any("error", err))
		return nil, toStatus(err)
	}
	observe(s.logger, s.latencies, "fetch", time.Since(start))

	s.logger.Debug("telemetry imported", slog.String("input_file", path), slog.Int("samples", rec.Len()))
	return api.ToProtoTelemetryRecord(rec), nil
}

// observe records a duration and periodically logs the p95.
func observe(logger *slog.Logger, latencies *utils.LatencyTracker, stage string, d time.Duration) {
	latencies.Observe(d)
	if count := latencies.Count(); count >= 20 && count%20 == 0 {
		logger.Info(stage+" latency", slog.Duration("p95", latencies.Percentile(95)), slog.Int("samples", count))
	}
}
