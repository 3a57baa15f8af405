package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"

	"github.com/shipsense/power-estimation/internal/grpc/powerv1"
	"github.com/shipsense/power-estimation/internal/models"
)

func TestChannelTablesMatchSchema(t *testing.T) {
	require.Len(t, powerv1.TelemetryFields, len(models.TelemetryChannels))
	for i, ch := range models.TelemetryChannels {
		assert.Equal(t, powerv1.TelemetryFields[i], ch.Field, "channel %d", i)
	}
	assert.Equal(t, powerv1.FeatureFields, models.FeatureFields[:], "feature order")
}

func TestTelemetryRecordOverWire(t *testing.T) {
	rec := &models.TelemetryRecord{}
	for c, ch := range models.TelemetryChannels {
		ch.Set(rec, []float64{float64(c), float64(c) + 0.5})
	}

	data, err := proto.Marshal(ToProtoTelemetryRecord(rec))
	require.NoError(t, err)
	msg := powerv1.NewTelemetryRecord()
	require.NoError(t, proto.Unmarshal(data, msg))

	got := FromProtoTelemetryRecord(msg)
	assert.Equal(t, rec, got)
	assert.Equal(t, 15.0, got.PropellerPitchStbd[0], "starboard pitch comes from its own channel")
}

func TestEstimateRequestMapping(t *testing.T) {
	var cols [models.FeatureCount][]float64
	for j := range cols {
		cols[j] = []float64{float64(j), float64(j * 2)}
	}
	in := models.EstimateInput{
		ModelType:      2,
		Features:       models.FeatureSetFromColumns(cols),
		MotorPowerPort: []float64{100, 200},
		MotorPowerStbd: []float64{300, 400},
		OriginalSOG:    []float64{10, 11},
	}

	assert.Equal(t, in, FromProtoEstimateRequest(ToProtoEstimateRequest(in)))
}

func TestUnknownModelTypeSurvives(t *testing.T) {
	req := powerv1.NewEstimateRequest()
	req.SetModelType(42)
	assert.Equal(t, int32(42), FromProtoEstimateRequest(req).ModelType)
}

func TestFeatureAndEstimateRecords(t *testing.T) {
	var cols [models.FeatureCount][]float64
	for j := range cols {
		cols[j] = []float64{0, 1}
	}
	fr := models.FeatureRecord{FeatureSet: models.FeatureSetFromColumns(cols)}
	assert.Equal(t, fr, FromProtoFeatureRecord(ToProtoFeatureRecord(fr)))
	assert.Equal(t, fr.FeatureSet, FromProtoPrepareRequest(ToProtoPrepareRequest(fr.FeatureSet)))

	est := models.EstimateRecord{
		PowerEstimate:   []float64{1, 2},
		PowerActual:     []float64{3, 4},
		SpeedOverGround: []float64{5, 6},
	}
	assert.Equal(t, est, FromProtoEstimateRecord(ToProtoEstimateRecord(est)))
}
