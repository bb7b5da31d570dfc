package grpcapi

import (
	"context"
	"errors"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

const snapshotFullMethod = "/vitals.VitalsService/Snapshot"

// VitalsServiceClient defines the gRPC client interface for the vitals service.
type VitalsServiceClient interface {
	Snapshot(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.ListValue, error)
}

type vitalsServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewVitalsServiceClient creates a new VitalsService client.
func NewVitalsServiceClient(cc grpc.ClientConnInterface) VitalsServiceClient {
	return &vitalsServiceClient{cc: cc}
}

func (c *vitalsServiceClient) Snapshot(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.ListValue, error) {
	out := new(structpb.ListValue)
	if err := c.cc.Invoke(ctx, snapshotFullMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// VitalsServiceServer defines the gRPC interface for the vitals service.
type VitalsServiceServer interface {
	Snapshot(context.Context, *emptypb.Empty) (*structpb.ListValue, error)
}

// UnimplementedVitalsServiceServer can be embedded to provide default unimplemented behaviour.
type UnimplementedVitalsServiceServer struct{}

// Snapshot returns an unimplemented error by default.
func (UnimplementedVitalsServiceServer) Snapshot(context.Context, *emptypb.Empty) (*structpb.ListValue, error) {
	return nil, errors.New("method Snapshot not implemented")
}

// RegisterVitalsServiceServer registers the service implementation with the provided registrar.
func RegisterVitalsServiceServer(s grpc.ServiceRegistrar, srv VitalsServiceServer) {
	s.RegisterService(&VitalsService_ServiceDesc, srv)
}

// VitalsService_ServiceDesc describes the vitals service for the gRPC server.
var VitalsService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "vitals.VitalsService",
	HandlerType: (*VitalsServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Snapshot",
			Handler:    _VitalsService_Snapshot_Handler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "proto/vitals.proto",
}

func _VitalsService_Snapshot_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if dec != nil {
		if err := dec(in); err != nil {
			return nil, err
		}
	}
	if interceptor == nil {
		return srv.(VitalsServiceServer).Snapshot(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: snapshotFullMethod,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(VitalsServiceServer).Snapshot(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}
