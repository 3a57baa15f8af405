// Package powerv1 holds the power.v1 wire schema. The file descriptor is assembled at init
// and registered with the global registry so server reflection can serve it.
package powerv1

import (
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
)

const (
	// FilePath is the registered path of the schema file.
	FilePath = "power/v1/power.proto"
	// Package is the protobuf package name.
	Package = "power.v1"
)

// TelemetryFields lists TelemetryRecord fields in field number order.
var TelemetryFields = []string{
	"index_number",
	"time_and_date",
	"port_prop_motor_current",
	"port_prop_motor_power",
	"port_prop_motor_speed",
	"port_prop_motor_voltage",
	"stbd_prop_motor_current",
	"stbd_prop_motor_power",
	"stbd_prop_motor_speed",
	"stbd_prop_motor_voltage",
	"rudder_order_port",
	"rudder_order_stbd",
	"rudder_position_port",
	"rudder_position_stbd",
	"propeller_pitch_port",
	"propeller_pitch_stbd",
	"shaft_rpm_indication_port",
	"shaft_rpm_indication_stbd",
	"nav_time",
	"latitude",
	"longitude",
	"sog",
	"cog",
	"hdt",
	"wind_direction_relative",
	"wind_speed",
	"depth",
	"epoch_time",
	"brash_ice",
	"ramming_count",
	"ice_concentration",
	"ice_thickness",
	"flow_size",
	"beaufort_number",
	"wave_direction",
	"wave_height_ave",
	"max_swell_height",
	"wave_length",
	"wave_period_ave",
	"encounter_frequency_ave",
}

// FeatureFields lists the ten model input channels carried by PrepareRequest,
// FeatureRecord and EstimateRequest.
var FeatureFields = []string{
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

// Fields specific to the estimate messages.
const (
	FieldInputFile       = "input_file"
	FieldModelType       = "model_type"
	FieldMotorPowerPort  = "motor_power_port"
	FieldMotorPowerStbd  = "motor_power_stbd"
	FieldOriginalSOG     = "original_sog"
	FieldPowerEstimate   = "power_estimate"
	FieldPowerActual     = "power_actual"
	FieldSpeedOverGround = "speed_over_ground"
)

// File is the resolved power.v1 schema.
var File protoreflect.FileDescriptor

var (
	fetchDataRequestDesc protoreflect.MessageDescriptor
	telemetryRecordDesc  protoreflect.MessageDescriptor
	prepareRequestDesc   protoreflect.MessageDescriptor
	featureRecordDesc    protoreflect.MessageDescriptor
	estimateRequestDesc  protoreflect.MessageDescriptor
	estimateRecordDesc   protoreflect.MessageDescriptor
)

func init() {
	fd, err := protodesc.NewFile(fileDescriptorProto(), new(protoregistry.Files))
	if err != nil {
		panic(fmt.Sprintf("powerv1: build descriptor: %v", err))
	}
	if err := protoregistry.GlobalFiles.RegisterFile(fd); err != nil {
		panic(fmt.Sprintf("powerv1: register descriptor: %v", err))
	}
	File = fd

	msgs := fd.Messages()
	fetchDataRequestDesc = msgs.ByName("FetchDataRequest")
	telemetryRecordDesc = msgs.ByName("TelemetryRecord")
	prepareRequestDesc = msgs.ByName("PrepareRequest")
	featureRecordDesc = msgs.ByName("FeatureRecord")
	estimateRequestDesc = msgs.ByName("EstimateRequest")
	estimateRecordDesc = msgs.ByName("EstimateRecord")
}

func fileDescriptorProto() *descriptorpb.FileDescriptorProto {
	estimateFields := []*descriptorpb.FieldDescriptorProto{
		scalarField(FieldModelType, 1, descriptorpb.FieldDescriptorProto_TYPE_INT32),
	}
	estimateFields = append(estimateFields, doubleFields(2, FeatureFields...)...)
	estimateFields = append(estimateFields, doubleFields(int32(2+len(FeatureFields)),
		FieldMotorPowerPort, FieldMotorPowerStbd, FieldOriginalSOG)...)

	return &descriptorpb.FileDescriptorProto{
		Name:    proto.String(FilePath),
		Package: proto.String(Package),
		Syntax:  proto.String("proto3"),
		Options: &descriptorpb.FileOptions{
			GoPackage: proto.String("github.com/shipsense/power-estimation/internal/grpc/powerv1"),
		},
		MessageType: []*descriptorpb.DescriptorProto{
			{Name: proto.String("FetchDataRequest"), Field: []*descriptorpb.FieldDescriptorProto{
				scalarField(FieldInputFile, 1, descriptorpb.FieldDescriptorProto_TYPE_STRING),
			}},
			{Name: proto.String("TelemetryRecord"), Field: doubleFields(1, TelemetryFields...)},
			{Name: proto.String("PrepareRequest"), Field: doubleFields(1, FeatureFields...)},
			{Name: proto.String("FeatureRecord"), Field: doubleFields(1, FeatureFields...)},
			{Name: proto.String("EstimateRequest"), Field: estimateFields},
			{Name: proto.String("EstimateRecord"), Field: doubleFields(1,
				FieldPowerEstimate, FieldPowerActual, FieldSpeedOverGround)},
		},
		Service: []*descriptorpb.ServiceDescriptorProto{
			serviceProto("FetchData", "FetchDataService", "FetchDataRequest", "TelemetryRecord"),
			serviceProto("PrepareData", "PrepareEstimateDataService", "PrepareRequest", "FeatureRecord"),
			serviceProto("EstimatePower", "EstimatePowerService", "EstimateRequest", "EstimateRecord"),
		},
	}
}

func scalarField(name string, number int32, typ descriptorpb.FieldDescriptorProto_Type) *descriptorpb.FieldDescriptorProto {
	return &descriptorpb.FieldDescriptorProto{
		Name:   proto.String(name),
		Number: proto.Int32(number),
		Label:  descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
		Type:   typ.Enum(),
	}
}

func doubleFields(first int32, names ...string) []*descriptorpb.FieldDescriptorProto {
	out := make([]*descriptorpb.FieldDescriptorProto, len(names))
	for i, name := range names {
		out[i] = &descriptorpb.FieldDescriptorProto{
			Name:   proto.String(name),
			Number: proto.Int32(first + int32(i)),
			Label:  descriptorpb.FieldDescriptorProto_LABEL_REPEATED.Enum(),
			Type:   descriptorpb.FieldDescriptorProto_TYPE_DOUBLE.Enum(),
		}
	}
	return out
}

func serviceProto(service, method, input, output string) *descriptorpb.ServiceDescriptorProto {
	return &descriptorpb.ServiceDescriptorProto{
		Name: proto.String(service),
		Method: []*descriptorpb.MethodDescriptorProto{{
			Name:       proto.String(method),
			InputType:  proto.String("." + Package + "." + input),
			OutputType: proto.String("." + Package + "." + output),
		}},
	}
}
