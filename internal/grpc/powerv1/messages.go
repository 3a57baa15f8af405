package powerv1

import (
	"fmt"

	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"
)

// Message is the base of every power.v1 message type. It embeds the dynamic message so
// values satisfy proto.Message and travel through the gRPC codec unchanged.
type Message struct {
	*dynamicpb.Message
}

func newMessage(desc protoreflect.MessageDescriptor) Message {
	return Message{dynamicpb.NewMessage(desc)}
}

func (m Message) field(name string) protoreflect.FieldDescriptor {
	fd := m.Descriptor().Fields().ByName(protoreflect.Name(name))
	if fd == nil {
		panic(fmt.Sprintf("powerv1: %s has no field %q", m.Descriptor().FullName(), name))
	}
	return fd
}

// Doubles returns a copy of a repeated double field.
func (m Message) Doubles(name string) []float64 {
	fd := m.field(name)
	if !m.Has(fd) {
		return []float64{}
	}
	list := m.Get(fd).List()
	out := make([]float64, list.Len())
	for i := range out {
		out[i] = list.Get(i).Float()
	}
	return out
}

// SetDoubles replaces a repeated double field.
func (m Message) SetDoubles(name string, values []float64) {
	fd := m.field(name)
	if len(values) == 0 {
		m.Clear(fd)
		return
	}
	list := m.NewField(fd).List()
	for _, v := range values {
		list.Append(protoreflect.ValueOfFloat64(v))
	}
	m.Set(fd, protoreflect.ValueOfList(list))
}

// FetchDataRequest names the tabular source to import.
type FetchDataRequest struct{ Message }

// NewFetchDataRequest returns an empty request.
func NewFetchDataRequest() *FetchDataRequest {
	return &FetchDataRequest{newMessage(fetchDataRequestDesc)}
}

// GetInputFile returns the source path.
func (r *FetchDataRequest) GetInputFile() string {
	return r.Get(r.field(FieldInputFile)).String()
}

// SetInputFile sets the source path.
func (r *FetchDataRequest) SetInputFile(path string) {
	r.Set(r.field(FieldInputFile), protoreflect.ValueOfString(path))
}

// TelemetryRecord carries every channel of an imported source.
type TelemetryRecord struct{ Message }

// NewTelemetryRecord returns an empty record.
func NewTelemetryRecord() *TelemetryRecord {
	return &TelemetryRecord{newMessage(telemetryRecordDesc)}
}

// PrepareRequest carries the ten raw feature channels.
type PrepareRequest struct{ Message }

// NewPrepareRequest returns an empty request.
func NewPrepareRequest() *PrepareRequest {
	return &PrepareRequest{newMessage(prepareRequestDesc)}
}

// FeatureRecord carries the ten scaled feature channels.
type FeatureRecord struct{ Message }

// NewFeatureRecord returns an empty record.
func NewFeatureRecord() *FeatureRecord {
	return &FeatureRecord{newMessage(featureRecordDesc)}
}

// EstimateRequest carries a model type code, ten feature channels, both motor power
// channels and the speed over ground to echo.
type EstimateRequest struct{ Message }

// NewEstimateRequest returns an empty request.
func NewEstimateRequest() *EstimateRequest {
	return &EstimateRequest{newMessage(estimateRequestDesc)}
}

// GetModelType returns the model type code.
func (r *EstimateRequest) GetModelType() int32 {
	return int32(r.Get(r.field(FieldModelType)).Int())
}

// SetModelType sets the model type code.
func (r *EstimateRequest) SetModelType(code int32) {
	r.Set(r.field(FieldModelType), protoreflect.ValueOfInt32(code))
}

// EstimateRecord is the estimate result.
type EstimateRecord struct{ Message }

// NewEstimateRecord returns an empty record.
func NewEstimateRecord() *EstimateRecord {
	return &EstimateRecord{newMessage(estimateRecordDesc)}
}
