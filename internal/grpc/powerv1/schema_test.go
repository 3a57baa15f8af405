package powerv1

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
)

func TestSchemaRegistered(t *testing.T) {
	fd, err := protoregistry.GlobalFiles.FindFileByPath(FilePath)
	require.NoError(t, err)
	assert.Equal(t, protoreflect.FullName(Package), fd.Package())

	cases := []struct {
		service, method, input, output string
	}{
		{"FetchData", "FetchDataService", "FetchDataRequest", "TelemetryRecord"},
		{"PrepareData", "PrepareEstimateDataService", "PrepareRequest", "FeatureRecord"},
		{"EstimatePower", "EstimatePowerService", "EstimateRequest", "EstimateRecord"},
	}
	for _, tc := range cases {
		svc := fd.Services().ByName(protoreflect.Name(tc.service))
		require.NotNil(t, svc, tc.service)
		m := svc.Methods().ByName(protoreflect.Name(tc.method))
		require.NotNil(t, m, tc.method)
		assert.Equal(t, protoreflect.Name(tc.input), m.Input().Name())
		assert.Equal(t, protoreflect.Name(tc.output), m.Output().Name())
	}
}

func TestServiceDescMatchesSchema(t *testing.T) {
	for _, desc := range []string{
		FetchData_FetchDataService_FullMethodName,
		PrepareData_PrepareEstimateDataService_FullMethodName,
		EstimatePower_EstimatePowerService_FullMethodName,
	} {
		name := protoreflect.FullName(strings.Replace(strings.TrimPrefix(desc, "/"), "/", ".", 1))
		d, err := protoregistry.GlobalFiles.FindDescriptorByName(name)
		require.NoError(t, err, desc)
		_, ok := d.(protoreflect.MethodDescriptor)
		assert.True(t, ok, desc)
	}
}

func TestTelemetryFieldsArePacked(t *testing.T) {
	fields := telemetryRecordDesc.Fields()
	require.Equal(t, len(TelemetryFields), fields.Len())
	for i, name := range TelemetryFields {
		fd := fields.ByName(protoreflect.Name(name))
		require.NotNil(t, fd, name)
		assert.Equal(t, protoreflect.FieldNumber(i+1), fd.Number())
		assert.True(t, fd.IsPacked(), name)
	}
}

func TestEstimateRequestWire(t *testing.T) {
	req := NewEstimateRequest()
	req.SetModelType(7)
	req.SetDoubles(FeatureFields[0], []float64{1.5, -2})
	req.SetDoubles(FieldOriginalSOG, []float64{12})

	data, err := proto.Marshal(req)
	require.NoError(t, err)

	got := NewEstimateRequest()
	require.NoError(t, proto.Unmarshal(data, got))
	assert.Equal(t, int32(7), got.GetModelType())
	assert.Equal(t, []float64{1.5, -2}, got.Doubles(FeatureFields[0]))
	assert.Equal(t, []float64{12}, got.Doubles(FieldOriginalSOG))
	assert.Empty(t, got.Doubles(FieldMotorPowerPort))
}

func TestSetDoublesReplaces(t *testing.T) {
	rec := NewEstimateRecord()
	rec.SetDoubles(FieldPowerActual, []float64{1, 2, 3})
	rec.SetDoubles(FieldPowerActual, []float64{4})
	assert.Equal(t, []float64{4}, rec.Doubles(FieldPowerActual))

	rec.SetDoubles(FieldPowerActual, nil)
	assert.Empty(t, rec.Doubles(FieldPowerActual))
}

func TestUnknownFieldPanics(t *testing.T) {
	assert.Panics(t, func() { NewFeatureRecord().Doubles("power_actual") })
}
