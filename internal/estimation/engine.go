package estimation

import (
	"context"
	"fmt"

	"github.com/shipsense/power-estimation/internal/models"
)

// Result is the outcome of one estimate.
type Result struct {
	Record models.EstimateRecord
	Score  Score
	// EvalErr is set when scoring failed. Record is still valid.
	EvalErr error
}

// Engine turns estimate inputs into estimate records using models from a Loader.
type Engine struct {
	loader Loader
}

// NewEngine constructs an Engine.
func NewEngine(loader Loader) *Engine {
	return &Engine{loader: loader}
}

// Estimate predicts power from the ten feature channels exactly as supplied (no scaling
// happens here) and derives actual power as the mean of the two motor power channels.
func (e *Engine) Estimate(ctx context.Context, in models.EstimateInput) (Result, error) {
	if _, err := in.Len(); err != nil {
		return Result{}, err
	}
	rows, err := in.Features.Matrix()
	if err != nil {
		return Result{}, err
	}

	model, err := e.loader.Load(ctx, in.ModelType)
	if err != nil {
		return Result{}, err
	}

	predicted, err := model.Predict(rows)
	if err != nil {
		return Result{}, fmt.Errorf("predict: %w", err)
	}

	actual, err := models.MeanPower(in.MotorPowerPort, in.MotorPowerStbd)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		Record: models.EstimateRecord{
			PowerEstimate:   predicted,
			PowerActual:     actual,
			SpeedOverGround: append([]float64(nil), in.OriginalSOG...),
		},
	}
	res.Score, res.EvalErr = model.Evaluate(rows, actual)
	return res, nil
}
