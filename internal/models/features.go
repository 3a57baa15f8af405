package models

import "fmt"

// FeatureCount is the width of the model input matrix.
const FeatureCount = 10

// FeatureFields lists the model input channels in matrix column order. Models consume
// columns positionally, so this order must never change.
var FeatureFields = [FeatureCount]string{
	"port_prop_motor_speed",
	"stbd_prop_motor_speed",
	"propeller_pitch_port",
	"propeller_pitch_stbd",
	"sog",
	"wind_direction_relative",
	"wind_speed",
	"beaufort_number",
	"wave_direction",
	"wave_length",
}

// FeatureSet carries the ten model input channels, raw or scaled.
type FeatureSet struct {
	PortPropMotorSpeed    []float64
	StbdPropMotorSpeed    []float64
	PropellerPitchPort    []float64
	PropellerPitchStbd    []float64
	SOG                   []float64
	WindDirectionRelative []float64
	WindSpeed             []float64
	BeaufortNumber        []float64
	WaveDirection         []float64
	WaveLength            []float64
}

// FeatureRecord is a FeatureSet whose channels were each min-max scaled to [0,1].
type FeatureRecord struct {
	FeatureSet
}

// Columns returns the channels in FeatureFields order.
func (f FeatureSet) Columns() [FeatureCount][]float64 {
	return [FeatureCount][]float64{
		f.PortPropMotorSpeed,
		f.StbdPropMotorSpeed,
		f.PropellerPitchPort,
		f.PropellerPitchStbd,
		f.SOG,
		f.WindDirectionRelative,
		f.WindSpeed,
		f.BeaufortNumber,
		f.WaveDirection,
		f.WaveLength,
	}
}

// FeatureSetFromColumns is the inverse of Columns.
func FeatureSetFromColumns(cols [FeatureCount][]float64) FeatureSet {
	return FeatureSet{
		PortPropMotorSpeed:    cols[0],
		StbdPropMotorSpeed:    cols[1],
		PropellerPitchPort:    cols[2],
		PropellerPitchStbd:    cols[3],
		SOG:                   cols[4],
		WindDirectionRelative: cols[5],
		WindSpeed:             cols[6],
		BeaufortNumber:        cols[7],
		WaveDirection:         cols[8],
		WaveLength:            cols[9],
	}
}

// Len validates that all channels agree in length and returns that length.
func (f FeatureSet) Len() (int, error) {
	cols := f.Columns()
	n := len(cols[0])
	for i, col := range cols[1:] {
		if len(col) != n {
			return 0, fmt.Errorf("%w: %s has %d samples, %s has %d",
				ErrShapeMismatch, FeatureFields[i+1], len(col), FeatureFields[0], n)
		}
	}
	return n, nil
}

// Matrix assembles a samples x FeatureCount matrix.
func (f FeatureSet) Matrix() ([][]float64, error) {
	n, err := f.Len()
	if err != nil {
		return nil, err
	}
	cols := f.Columns()
	rows := make([][]float64, n)
	for i := range rows {
		row := make([]float64, FeatureCount)
		for j := range cols {
			row[j] = cols[j][i]
		}
		rows[i] = row
	}
	return rows, nil
}
