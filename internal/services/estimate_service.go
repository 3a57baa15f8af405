package services

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/shipsense/power-estimation/internal/api"
	"github.com/shipsense/power-estimation/internal/estimation"
	"github.com/shipsense/power-estimation/internal/grpc/powerv1"
	"github.com/shipsense/power-estimation/internal/metrics"
	"github.com/shipsense/power-estimation/internal/models"
	"github.com/shipsense/power-estimation/internal/utils"
)

// Emitter persists a finished estimate outside the RPC response.
type Emitter interface {
	Emit(ctx context.Context, rec models.EstimateRecord) error
}

// EstimateService implements power.v1.EstimatePower.
type EstimateService struct {
	logger    *slog.Logger
	engine    *estimation.Engine
	emitter   Emitter
	latencies *utils.LatencyTracker
}

// NewEstimateService constructs the estimate stage. emitter may be nil.
func NewEstimateService(logger *slog.Logger, engine *estimation.Engine, emitter Emitter) *EstimateService {
	if logger == nil {
		logger = slog.Default()
	}
	return &EstimateService{
		logger:    logger,
		engine:    engine,
		emitter:   emitter,
		latencies: utils.NewLatencyTracker(1024),
	}
}

// EstimatePowerService predicts propulsion power with the model selected by the request's
// model type and reports it beside measured power.
func (s *EstimateService) EstimatePowerService(ctx context.Context, req *powerv1.EstimateRequest) (*powerv1.EstimateRecord, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request cannot be nil")
	}
	if s.engine == nil {
		return nil, status.Error(codes.FailedPrecondition, "estimation engine not configured")
	}

	in := api.FromProtoEstimateRequest(req)
	model := estimation.ModelName(in.ModelType)
	s.logger.Debug("EstimatePowerService called", slog.String("model", model))

	start := time.Now()
	res, err := s.engine.Estimate(ctx, in)
	if err != nil {
		s.logger.Error("estimate failed", slog.String("model", model), slog.Any("error", err))
		return nil, toStatus(err)
	}
	observe(s.logger, s.latencies, "estimate", time.Since(start))

	if res.EvalErr != nil {
		s.logger.Warn("model evaluation failed", slog.String("model", model), slog.Any("error", res.EvalErr))
	} else {
		metrics.ObserveEvaluation(model, res.Score.MetricName, res.Score.Loss, res.Score.Metric)
		s.logger.Info("model evaluated",
			slog.String("model", model),
			slog.Float64("loss", res.Score.Loss),
			slog.Float64(res.Score.MetricName, res.Score.Metric))
	}

	if s.emitter != nil {
		if err := s.emitter.Emit(ctx, res.Record); err != nil {
			s.logger.Warn("estimate emit failed", slog.Any("error", err))
		}
	}

	return api.ToProtoEstimateRecord(res.Record), nil
}
