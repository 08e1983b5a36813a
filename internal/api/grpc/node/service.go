package node

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	// ServiceName is the fully qualified gRPC service name.
	ServiceName = "alarmnode.v1.NodeService"

	// WriteMethod is the full method name of Write.
	WriteMethod = "/" + ServiceName + "/Write"
	// SnapshotMethod is the full method name of Snapshot.
	SnapshotMethod = "/" + ServiceName + "/Snapshot"
)

// NodeServiceServer is the server API of the node service.
type NodeServiceServer interface {
	// Write routes a parameter write and returns the resulting snapshot.
	Write(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	// Snapshot returns the current node state.
	Snapshot(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
}

// ServiceDesc describes the node service for grpc.Server.RegisterService.
//
//nolint:gochecknoglobals // Service descriptors are package level by convention.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*NodeServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Write",
			Handler:    writeHandler,
		},
		{
			MethodName: "Snapshot",
			Handler:    snapshotHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "alarmnode/v1/node.proto",
}

// RegisterNodeServiceServer registers srv on s.
func RegisterNodeServiceServer(s grpc.ServiceRegistrar, srv NodeServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func writeHandler(
	srv any,
	ctx context.Context, //nolint:revive // Signature is fixed by grpc.MethodHandler.
	dec func(any) error,
	interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}

	server, _ := srv.(NodeServiceServer)
	if interceptor == nil {
		return server.Write(ctx, in)
	}

	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: WriteMethod,
	}

	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		request, _ := req.(*structpb.Struct)

		return server.Write(ctx, request)
	})
}

func snapshotHandler(
	srv any,
	ctx context.Context, //nolint:revive // Signature is fixed by grpc.MethodHandler.
	dec func(any) error,
	interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}

	server, _ := srv.(NodeServiceServer)
	if interceptor == nil {
		return server.Snapshot(ctx, in)
	}

	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: SnapshotMethod,
	}

	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		request, _ := req.(*emptypb.Empty)

		return server.Snapshot(ctx, request)
	})
}

// NodeServiceClient calls the node service over a connection.
type NodeServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewNodeServiceClient creates a client over cc.
func NewNodeServiceClient(cc grpc.ClientConnInterface) *NodeServiceClient {
	return &NodeServiceClient{cc: cc}
}

// Write calls NodeService.Write.
func (c *NodeServiceClient) Write(
	ctx context.Context,
	in *structpb.Struct,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, WriteMethod, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

// Snapshot calls NodeService.Snapshot.
func (c *NodeServiceClient) Snapshot(
	ctx context.Context,
	in *emptypb.Empty,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, SnapshotMethod, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}
