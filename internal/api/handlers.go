package api

import (
	"github.com/shipsense/power-estimation/internal/grpc/powerv1"
	"github.com/shipsense/power-estimation/internal/models"
)

// ToProtoTelemetryRecord converts a telemetry record into its wire form.
func ToProtoTelemetryRecord(rec *models.TelemetryRecord) *powerv1.TelemetryRecord {
	msg := powerv1.NewTelemetryRecord()
	for _, ch := range models.TelemetryChannels {
		msg.SetDoubles(ch.Field, ch.Values(rec))
	}
	return msg
}

// FromProtoTelemetryRecord converts a wire telemetry record into the domain struct.
func FromProtoTelemetryRecord(msg *powerv1.TelemetryRecord) *models.TelemetryRecord {
	rec := &models.TelemetryRecord{}
	for _, ch := range models.TelemetryChannels {
		ch.Set(rec, msg.Doubles(ch.Field))
	}
	return rec
}

// ToProtoPrepareRequest carries raw feature channels to the prepare stage.
func ToProtoPrepareRequest(fs models.FeatureSet) *powerv1.PrepareRequest {
	req := powerv1.NewPrepareRequest()
	setFeatures(req.Message, fs)
	return req
}

// FromProtoPrepareRequest extracts the raw feature channels.
func FromProtoPrepareRequest(req *powerv1.PrepareRequest) models.FeatureSet {
	return features(req.Message)
}

// ToProtoFeatureRecord converts scaled features into their wire form.
func ToProtoFeatureRecord(rec models.FeatureRecord) *powerv1.FeatureRecord {
	msg := powerv1.NewFeatureRecord()
	setFeatures(msg.Message, rec.FeatureSet)
	return msg
}

// FromProtoFeatureRecord converts a wire feature record into the domain struct.
func FromProtoFeatureRecord(msg *powerv1.FeatureRecord) models.FeatureRecord {
	return models.FeatureRecord{FeatureSet: features(msg.Message)}
}

// ToProtoEstimateRequest converts an estimate input into its wire form.
func ToProtoEstimateRequest(in models.EstimateInput) *powerv1.EstimateRequest {
	req := powerv1.NewEstimateRequest()
	req.SetModelType(in.ModelType)
	setFeatures(req.Message, in.Features)
	req.SetDoubles(powerv1.FieldMotorPowerPort, in.MotorPowerPort)
	req.SetDoubles(powerv1.FieldMotorPowerStbd, in.MotorPowerStbd)
	req.SetDoubles(powerv1.FieldOriginalSOG, in.OriginalSOG)
	return req
}

// FromProtoEstimateRequest maps the wire request into a domain EstimateInput.
func FromProtoEstimateRequest(req *powerv1.EstimateRequest) models.EstimateInput {
	return models.EstimateInput{
		ModelType:      req.GetModelType(),
		Features:       features(req.Message),
		MotorPowerPort: req.Doubles(powerv1.FieldMotorPowerPort),
		MotorPowerStbd: req.Doubles(powerv1.FieldMotorPowerStbd),
		OriginalSOG:    req.Doubles(powerv1.FieldOriginalSOG),
	}
}

// ToProtoEstimateRecord converts an estimate result into its wire form.
func ToProtoEstimateRecord(rec models.EstimateRecord) *powerv1.EstimateRecord {
	msg := powerv1.NewEstimateRecord()
	msg.SetDoubles(powerv1.FieldPowerEstimate, rec.PowerEstimate)
	msg.SetDoubles(powerv1.FieldPowerActual, rec.PowerActual)
	msg.SetDoubles(powerv1.FieldSpeedOverGround, rec.SpeedOverGround)
	return msg
}

// FromProtoEstimateRecord converts a wire estimate result into the domain struct.
func FromProtoEstimateRecord(msg *powerv1.EstimateRecord) models.EstimateRecord {
	return models.EstimateRecord{
		PowerEstimate:   msg.Doubles(powerv1.FieldPowerEstimate),
		PowerActual:     msg.Doubles(powerv1.FieldPowerActual),
		SpeedOverGround: msg.Doubles(powerv1.FieldSpeedOverGround),
	}
}

func setFeatures(msg powerv1.Message, fs models.FeatureSet) {
	cols := fs.Columns()
	for i, name := range models.FeatureFields {
		msg.SetDoubles(name, cols[i])
	}
}

func features(msg powerv1.Message) models.FeatureSet {
	var cols [models.FeatureCount][]float64
	for i, name := range models.FeatureFields {
		cols[i] = msg.Doubles(name)
	}
	return models.FeatureSetFromColumns(cols)
}
