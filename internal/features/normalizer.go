// Package features turns raw telemetry channels into model-ready inputs.
package features

import (
	"math"

	"github.com/shipsense/power-estimation/internal/models"
)

// Normalize min-max scales each of the ten channels independently to [0,1] using the
// minimum and maximum of the batch it is given. No scaling state survives the call, so
// the same sample can scale differently in different batches.
func Normalize(in models.FeatureSet) (models.FeatureRecord, error) {
	if _, err := in.Len(); err != nil {
		return models.FeatureRecord{}, err
	}
	var scaled [models.FeatureCount][]float64
	for i, col := range in.Columns() {
		scaled[i] = MinMax(col)
	}
	return models.FeatureRecord{FeatureSet: models.FeatureSetFromColumns(scaled)}, nil
}

// MinMax rescales values to (v-min)/(max-min). NaN samples are ignored when fitting
// and stay NaN in the output. A channel with no range, including one with no finite
// samples, maps its non-NaN samples to zero.
func MinMax(values []float64) []float64 {
	out := make([]float64, len(values))

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	span := hi - lo
	for i, v := range values {
		switch {
		case math.IsNaN(v):
			out[i] = math.NaN()
		case span == 0 || math.IsNaN(span) || math.IsInf(span, 0):
			out[i] = 0
		default:
			out[i] = (v - lo) / span
		}
	}
	return out
}
