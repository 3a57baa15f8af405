package models

import (
	"errors"
	"fmt"
)

var (
	// ErrShapeMismatch reports channels of a single record that disagree in length.
	ErrShapeMismatch = errors.New("channel length mismatch")
	// ErrDuplicateIndex reports two samples sharing an index value.
	ErrDuplicateIndex = errors.New("duplicate sample index")
)

// TelemetryRecord is one batch of ship and environment samples. Every channel holds one
// value per sample and channels are aligned by position.
type TelemetryRecord struct {
	IndexNumber []float64
	TimeAndDate []float64

	PortPropMotorCurrent []float64
	PortPropMotorPower   []float64
	PortPropMotorSpeed   []float64
	PortPropMotorVoltage []float64
	StbdPropMotorCurrent []float64
	StbdPropMotorPower   []float64
	StbdPropMotorSpeed   []float64
	StbdPropMotorVoltage []float64
	RudderOrderPort      []float64
	RudderOrderStbd      []float64
	RudderPositionPort   []float64
	RudderPositionStbd   []float64
	PropellerPitchPort   []float64
	PropellerPitchStbd   []float64
	ShaftRPMPort         []float64
	ShaftRPMStbd         []float64

	NavTime   []float64
	Latitude  []float64
	Longitude []float64
	SOG       []float64
	COG       []float64
	HDT       []float64

	WindDirectionRelative []float64
	WindSpeed             []float64
	Depth                 []float64
	EpochTime             []float64
	BrashIce              []float64
	RammingCount          []float64
	IceConcentration      []float64
	IceThickness          []float64
	FloeSize              []float64
	BeaufortNumber        []float64
	WaveDirection         []float64
	WaveHeightAve         []float64
	MaxSwellHeight        []float64
	WaveLength            []float64
	WavePeriodAve         []float64
	EncounterFrequencyAve []float64
}

// Channel binds a telemetry field to its wire name and its spreadsheet header.
type Channel struct {
	// Field is the snake_case wire field name.
	Field string
	// Header is the column title in the tabular source.
	Header string

	ref func(*TelemetryRecord) *[]float64
}

// Values returns the channel's samples within rec.
func (c Channel) Values(rec *TelemetryRecord) []float64 { return *c.ref(rec) }

// Set replaces the channel's samples within rec.
func (c Channel) Set(rec *TelemetryRecord, values []float64) { *c.ref(rec) = values }

// TelemetryChannels is the canonical column table. Its order is the wire field order.
var TelemetryChannels = []Channel{
	{"index_number", "index number", func(r *TelemetryRecord) *[]float64 { return &r.IndexNumber }},
	{"time_and_date", "time and date number", func(r *TelemetryRecord) *[]float64 { return &r.TimeAndDate }},
	{"port_prop_motor_current", "PortPropMotorCurrent", func(r *TelemetryRecord) *[]float64 { return &r.PortPropMotorCurrent }},
	{"port_prop_motor_power", "PortPropMotorPower", func(r *TelemetryRecord) *[]float64 { return &r.PortPropMotorPower }},
	{"port_prop_motor_speed", "PortPropMotorSpeed", func(r *TelemetryRecord) *[]float64 { return &r.PortPropMotorSpeed }},
	{"port_prop_motor_voltage", "PortPropMotorVoltage", func(r *TelemetryRecord) *[]float64 { return &r.PortPropMotorVoltage }},
	{"stbd_prop_motor_current", "StbdPropMotorCurrent", func(r *TelemetryRecord) *[]float64 { return &r.StbdPropMotorCurrent }},
	{"stbd_prop_motor_power", "StbdPropMotorPower", func(r *TelemetryRecord) *[]float64 { return &r.StbdPropMotorPower }},
	{"stbd_prop_motor_speed", "StbdPropMotorSpeed", func(r *TelemetryRecord) *[]float64 { return &r.StbdPropMotorSpeed }},
	{"stbd_prop_motor_voltage", "StbdPropMotorVoltage", func(r *TelemetryRecord) *[]float64 { return &r.StbdPropMotorVoltage }},
	{"rudder_order_port", "RudderOrderPort", func(r *TelemetryRecord) *[]float64 { return &r.RudderOrderPort }},
	{"rudder_order_stbd", "RudderOrderStbd", func(r *TelemetryRecord) *[]float64 { return &r.RudderOrderStbd }},
	{"rudder_position_port", "RudderPositionPort", func(r *TelemetryRecord) *[]float64 { return &r.RudderPositionPort }},
	{"rudder_position_stbd", "RudderPositionStbd", func(r *TelemetryRecord) *[]float64 { return &r.RudderPositionStbd }},
	{"propeller_pitch_port", "PropellerPitchPort", func(r *TelemetryRecord) *[]float64 { return &r.PropellerPitchPort }},
	{"propeller_pitch_stbd", "PropellerPitchStbd", func(r *TelemetryRecord) *[]float64 { return &r.PropellerPitchStbd }},
	{"shaft_rpm_indication_port", "ShaftRPMIndicationPort", func(r *TelemetryRecord) *[]float64 { return &r.ShaftRPMPort }},
	{"shaft_rpm_indication_stbd", "ShaftRPMIndicationStbd", func(r *TelemetryRecord) *[]float64 { return &r.ShaftRPMStbd }},
	{"nav_time", "NavTime", func(r *TelemetryRecord) *[]float64 { return &r.NavTime }},
	{"latitude", "Latitude", func(r *TelemetryRecord) *[]float64 { return &r.Latitude }},
	{"longitude", "Longitude", func(r *TelemetryRecord) *[]float64 { return &r.Longitude }},
	{"sog", "SOG", func(r *TelemetryRecord) *[]float64 { return &r.SOG }},
	{"cog", "COG", func(r *TelemetryRecord) *[]float64 { return &r.COG }},
	{"hdt", "HDT", func(r *TelemetryRecord) *[]float64 { return &r.HDT }},
	{"wind_direction_relative", "WindDirRel", func(r *TelemetryRecord) *[]float64 { return &r.WindDirectionRelative }},
	{"wind_speed", "WindSpeed", func(r *TelemetryRecord) *[]float64 { return &r.WindSpeed }},
	{"depth", "Depth", func(r *TelemetryRecord) *[]float64 { return &r.Depth }},
	{"epoch_time", "epoch time", func(r *TelemetryRecord) *[]float64 { return &r.EpochTime }},
	{"brash_ice", "Brash ice", func(r *TelemetryRecord) *[]float64 { return &r.BrashIce }},
	{"ramming_count", "Ramming count", func(r *TelemetryRecord) *[]float64 { return &r.RammingCount }},
	{"ice_concentration", "Ice concentration", func(r *TelemetryRecord) *[]float64 { return &r.IceConcentration }},
	{"ice_thickness", "Ice thickness", func(r *TelemetryRecord) *[]float64 { return &r.IceThickness }},
	{"flow_size", "Flow size", func(r *TelemetryRecord) *[]float64 { return &r.FloeSize }},
	{"beaufort_number", "Beaufort number", func(r *TelemetryRecord) *[]float64 { return &r.BeaufortNumber }},
	{"wave_direction", "Wave direction", func(r *TelemetryRecord) *[]float64 { return &r.WaveDirection }},
	{"wave_height_ave", "Wave height ave", func(r *TelemetryRecord) *[]float64 { return &r.WaveHeightAve }},
	{"max_swell_height", "Max swell height", func(r *TelemetryRecord) *[]float64 { return &r.MaxSwellHeight }},
	{"wave_length", "Wave length", func(r *TelemetryRecord) *[]float64 { return &r.WaveLength }},
	{"wave_period_ave", "Wave period ave", func(r *TelemetryRecord) *[]float64 { return &r.WavePeriodAve }},
	{"encounter_frequency_ave", "Encounter frequency ave", func(r *TelemetryRecord) *[]float64 { return &r.EncounterFrequencyAve }},
}

// Len returns the sample count, taken from the index channel.
func (r *TelemetryRecord) Len() int { return len(r.IndexNumber) }

// Validate checks that every channel has the same length and that index values are unique.
func (r *TelemetryRecord) Validate() error {
	n := r.Len()
	for _, ch := range TelemetryChannels {
		if got := len(ch.Values(r)); got != n {
			return fmt.Errorf("%w: %s has %d samples, index has %d", ErrShapeMismatch, ch.Field, got, n)
		}
	}
	seen := make(map[float64]int, n)
	for i, idx := range r.IndexNumber {
		if prev, dup := seen[idx]; dup {
			return fmt.Errorf("%w: %v at rows %d and %d", ErrDuplicateIndex, idx, prev, i)
		}
		seen[idx] = i
	}
	return nil
}

// Features projects the ten model input channels out of the record.
func (r *TelemetryRecord) Features() FeatureSet {
	return FeatureSet{
		PortPropMotorSpeed:    r.PortPropMotorSpeed,
		StbdPropMotorSpeed:    r.StbdPropMotorSpeed,
		PropellerPitchPort:    r.PropellerPitchPort,
		PropellerPitchStbd:    r.PropellerPitchStbd,
		SOG:                   r.SOG,
		WindDirectionRelative: r.WindDirectionRelative,
		WindSpeed:             r.WindSpeed,
		BeaufortNumber:        r.BeaufortNumber,
		WaveDirection:         r.WaveDirection,
		WaveLength:            r.WaveLength,
	}
}
