package client

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/grpc"

	"github.com/shipsense/power-estimation/internal/api"
	"github.com/shipsense/power-estimation/internal/grpc/powerv1"
	"github.com/shipsense/power-estimation/internal/models"
)

// DefaultCallTimeout bounds each stage call made by the pipeline.
const DefaultCallTimeout = 5 * time.Second

// Stages are the connections the pipeline calls.
type Stages struct {
	Fetch    grpc.ClientConnInterface
	Prepare  grpc.ClientConnInterface
	Estimate grpc.ClientConnInterface
}

// Result carries the output of every stage.
type Result struct {
	Telemetry *models.TelemetryRecord
	Features  models.FeatureRecord
	Estimate  models.EstimateRecord
}

// Pipeline runs Fetch, then Prepare on the fetched feature channels, then Estimate on the
// prepared features with the fetched motor power and speed over ground.
type Pipeline struct {
	fetch       powerv1.FetchDataClient
	prepare     powerv1.PrepareDataClient
	estimate    powerv1.EstimatePowerClient
	callTimeout time.Duration
	logger      *slog.Logger
}

// NewPipeline builds a pipeline. A non-positive callTimeout uses DefaultCallTimeout.
func NewPipeline(stages Stages, callTimeout time.Duration, logger *slog.Logger) *Pipeline {
	if callTimeout <= 0 {
		callTimeout = DefaultCallTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		fetch:       powerv1.NewFetchDataClient(stages.Fetch),
		prepare:     powerv1.NewPrepareDataClient(stages.Prepare),
		estimate:    powerv1.NewEstimatePowerClient(stages.Estimate),
		callTimeout: callTimeout,
		logger:      logger,
	}
}

// Run executes the three stages for inputFile using the model selected by modelType.
func (p *Pipeline) Run(ctx context.Context, inputFile string, modelType int32) (*Result, error) {
	req := powerv1.NewFetchDataRequest()
	req.SetInputFile(inputFile)

	fetchCtx, cancel := context.WithTimeout(ctx, p.callTimeout)
	telemetryMsg, err := p.fetch.FetchDataService(fetchCtx, req)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", inputFile, err)
	}
	telemetry := api.FromProtoTelemetryRecord(telemetryMsg)
	p.logger.Info("telemetry fetched", slog.String("input_file", inputFile), slog.Int("samples", telemetry.Len()))

	prepareCtx, cancel := context.WithTimeout(ctx, p.callTimeout)
	featureMsg, err := p.prepare.PrepareEstimateDataService(prepareCtx, api.ToProtoPrepareRequest(telemetry.Features()))
	cancel()
	if err != nil {
		return nil, fmt.Errorf("prepare: %w", err)
	}
	features := api.FromProtoFeatureRecord(featureMsg)

	in := models.EstimateInput{
		ModelType:      modelType,
		Features:       features.FeatureSet,
		MotorPowerPort: telemetry.PortPropMotorPower,
		MotorPowerStbd: telemetry.StbdPropMotorPower,
		OriginalSOG:    telemetry.SOG,
	}
	estimateCtx, cancel := context.WithTimeout(ctx, p.callTimeout)
	estimateMsg, err := p.estimate.EstimatePowerService(estimateCtx, api.ToProtoEstimateRequest(in))
	cancel()
	if err != nil {
		return nil, fmt.Errorf("estimate: %w", err)
	}
	estimate := api.FromProtoEstimateRecord(estimateMsg)
	p.logger.Info("power estimated", slog.Int("samples", len(estimate.PowerEstimate)))

	return &Result{Telemetry: telemetry, Features: features, Estimate: estimate}, nil
}
