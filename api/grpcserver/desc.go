package grpcserver

import (
	"context"

	"google.golang.org/grpc"

	"arbor/api/wire"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "arbor.Index"

// ServiceDesc mirrors what protoc-gen-go-grpc would generate for a
// three-method unary service.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*IndexServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Insert", Handler: insertHandler},
		{MethodName: "Search", Handler: searchHandler},
		{MethodName: "Snapshot", Handler: snapshotHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "arbor/index.proto",
}

func insertHandler(
	srv any,
	ctx context.Context,
	dec func(any) error,
	interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	in := new(wire.InsertRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(IndexServer).Insert(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/" + ServiceName + "/Insert",
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(IndexServer).Insert(ctx, req.(*wire.InsertRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func searchHandler(
	srv any,
	ctx context.Context,
	dec func(any) error,
	interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	in := new(wire.SearchRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(IndexServer).Search(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/" + ServiceName + "/Search",
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(IndexServer).Search(ctx, req.(*wire.SearchRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func snapshotHandler(
	srv any,
	ctx context.Context,
	dec func(any) error,
	interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	in := new(wire.SnapshotRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(IndexServer).Snapshot(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/" + ServiceName + "/Snapshot",
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(IndexServer).Snapshot(ctx, req.(*wire.SnapshotRequest))
	}
	return interceptor(ctx, in, info, handler)
}
