package models

import "fmt"

// EstimateInput is everything the estimate stage needs for one call.
type EstimateInput struct {
	ModelType      int32
	Features       FeatureSet
	MotorPowerPort []float64
	MotorPowerStbd []float64
	OriginalSOG    []float64
}

// Len validates the shape of the input and returns the sample count.
func (in EstimateInput) Len() (int, error) {
	n, err := in.Features.Len()
	if err != nil {
		return 0, err
	}
	for name, ch := range map[string][]float64{
		"motor_power_port": in.MotorPowerPort,
		"motor_power_stbd": in.MotorPowerStbd,
		"original_sog":     in.OriginalSOG,
	} {
		if len(ch) != n {
			return 0, fmt.Errorf("%w: %s has %d samples, features have %d", ErrShapeMismatch, name, len(ch), n)
		}
	}
	return n, nil
}

// EstimateRecord is the estimate stage output.
type EstimateRecord struct {
	PowerEstimate   []float64
	PowerActual     []float64
	SpeedOverGround []float64
}

// MeanPower averages port and starboard motor power sample by sample.
func MeanPower(port, stbd []float64) ([]float64, error) {
	if len(port) != len(stbd) {
		return nil, fmt.Errorf("%w: port power has %d samples, starboard has %d", ErrShapeMismatch, len(port), len(stbd))
	}
	out := make([]float64, len(port))
	for i := range port {
		out[i] = (port[i] + stbd[i]) / 2
	}
	return out, nil
}
