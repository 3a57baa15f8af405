package services

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/shipsense/power-estimation/internal/api"
	"github.com/shipsense/power-estimation/internal/features"
	"github.com/shipsense/power-estimation/internal/grpc/powerv1"
	"github.com/shipsense/power-estimation/internal/utils"
)

// PrepareService implements power.v1.PrepareData.
type PrepareService struct {
	logger    *slog.Logger
	latencies *utils.LatencyTracker
}

// NewPrepareService constructs the prepare stage.
func NewPrepareService(logger *slog.Logger) *PrepareService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PrepareService{logger: logger, latencies: utils.NewLatencyTracker(1024)}
}

// PrepareEstimateDataService min-max scales the ten feature channels of one batch.
func (s *PrepareService) PrepareEstimateDataService(_ context.Context, req *powerv1.PrepareRequest) (*powerv1.FeatureRecord, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request cannot be nil")
	}

	start := time.Now()
	rec, err := features.Normalize(api.FromProtoPrepareRequest(req))
	if err != nil {
		s.logger.Warn("feature normalization rejected", slog.Any("error", err))
		return nil, toStatus(err)
	}
	observe(s.logger, s.latencies, "prepare", time.Since(start))

	return api.ToProtoFeatureRecord(rec), nil
}
