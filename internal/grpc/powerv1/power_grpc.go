package powerv1

import (
	"context"

	"google.golang.org/grpc"
)

// Full method names.
const (
	FetchData_FetchDataService_FullMethodName             = "/power.v1.FetchData/FetchDataService"
	PrepareData_PrepareEstimateDataService_FullMethodName = "/power.v1.PrepareData/PrepareEstimateDataService"
	EstimatePower_EstimatePowerService_FullMethodName     = "/power.v1.EstimatePower/EstimatePowerService"
)

// FetchDataServer imports a tabular source.
type FetchDataServer interface {
	FetchDataService(context.Context, *FetchDataRequest) (*TelemetryRecord, error)
}

// PrepareDataServer normalizes feature channels.
type PrepareDataServer interface {
	PrepareEstimateDataService(context.Context, *PrepareRequest) (*FeatureRecord, error)
}

// EstimatePowerServer runs model estimation.
type EstimatePowerServer interface {
	EstimatePowerService(context.Context, *EstimateRequest) (*EstimateRecord, error)
}

// RegisterFetchDataServer registers srv on s.
func RegisterFetchDataServer(s grpc.ServiceRegistrar, srv FetchDataServer) {
	s.RegisterService(&FetchData_ServiceDesc, srv)
}

// RegisterPrepareDataServer registers srv on s.
func RegisterPrepareDataServer(s grpc.ServiceRegistrar, srv PrepareDataServer) {
	s.RegisterService(&PrepareData_ServiceDesc, srv)
}

// RegisterEstimatePowerServer registers srv on s.
func RegisterEstimatePowerServer(s grpc.ServiceRegistrar, srv EstimatePowerServer) {
	s.RegisterService(&EstimatePower_ServiceDesc, srv)
}

func _FetchData_FetchDataService_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := NewFetchDataRequest()
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FetchDataServer).FetchDataService(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: FetchData_FetchDataService_FullMethodName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(FetchDataServer).FetchDataService(ctx, req.(*FetchDataRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _PrepareData_PrepareEstimateDataService_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := NewPrepareRequest()
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PrepareDataServer).PrepareEstimateDataService(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: PrepareData_PrepareEstimateDataService_FullMethodName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(PrepareDataServer).PrepareEstimateDataService(ctx, req.(*PrepareRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _EstimatePower_EstimatePowerService_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := NewEstimateRequest()
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(EstimatePowerServer).EstimatePowerService(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: EstimatePower_EstimatePowerService_FullMethodName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(EstimatePowerServer).EstimatePowerService(ctx, req.(*EstimateRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// FetchData_ServiceDesc is the grpc.ServiceDesc for power.v1.FetchData.
var FetchData_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "power.v1.FetchData",
	HandlerType: (*FetchDataServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "FetchDataService", Handler: _FetchData_FetchDataService_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: FilePath,
}

// PrepareData_ServiceDesc is the grpc.ServiceDesc for power.v1.PrepareData.
var PrepareData_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "power.v1.PrepareData",
	HandlerType: (*PrepareDataServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "PrepareEstimateDataService", Handler: _PrepareData_PrepareEstimateDataService_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: FilePath,
}

// EstimatePower_ServiceDesc is the grpc.ServiceDesc for power.v1.EstimatePower.
var EstimatePower_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "power.v1.EstimatePower",
	HandlerType: (*EstimatePowerServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "EstimatePowerService", Handler: _EstimatePower_EstimatePowerService_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: FilePath,
}

// FetchDataClient is the client API for power.v1.FetchData.
type FetchDataClient interface {
	FetchDataService(ctx context.Context, in *FetchDataRequest, opts ...grpc.CallOption) (*TelemetryRecord, error)
}

type fetchDataClient struct {
	cc grpc.ClientConnInterface
}

// NewFetchDataClient wraps cc.
func NewFetchDataClient(cc grpc.ClientConnInterface) FetchDataClient {
	return &fetchDataClient{cc}
}

func (c *fetchDataClient) FetchDataService(ctx context.Context, in *FetchDataRequest, opts ...grpc.CallOption) (*TelemetryRecord, error) {
	out := NewTelemetryRecord()
	if err := c.cc.Invoke(ctx, FetchData_FetchDataService_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// PrepareDataClient is the client API for power.v1.PrepareData.
type PrepareDataClient interface {
	PrepareEstimateDataService(ctx context.Context, in *PrepareRequest, opts ...grpc.CallOption) (*FeatureRecord, error)
}

type prepareDataClient struct {
	cc grpc.ClientConnInterface
}

// NewPrepareDataClient wraps cc.
func NewPrepareDataClient(cc grpc.ClientConnInterface) PrepareDataClient {
	return &prepareDataClient{cc}
}

func (c *prepareDataClient) PrepareEstimateDataService(ctx context.Context, in *PrepareRequest, opts ...grpc.CallOption) (*FeatureRecord, error) {
	out := NewFeatureRecord()
	if err := c.cc.Invoke(ctx, PrepareData_PrepareEstimateDataService_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// EstimatePowerClient is the client API for power.v1.EstimatePower.
type EstimatePowerClient interface {
	EstimatePowerService(ctx context.Context, in *EstimateRequest, opts ...grpc.CallOption) (*EstimateRecord, error)
}

type estimatePowerClient struct {
	cc grpc.ClientConnInterface
}

// NewEstimatePowerClient wraps cc.
func NewEstimatePowerClient(cc grpc.ClientConnInterface) EstimatePowerClient {
	return &estimatePowerClient{cc}
}

func (c *estimatePowerClient) EstimatePowerService(ctx context.Context, in *EstimateRequest, opts ...grpc.CallOption) (*EstimateRecord, error) {
	out := NewEstimateRecord()
	if err := c.cc.Invoke(ctx, EstimatePower_EstimatePowerService_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
