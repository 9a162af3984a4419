// Package v1 defines the audit.v1.AuditService gRPC contract. Requests and
// responses are google.protobuf.Struct documents with camelCase keys, so any
// gRPC client can call the service without generated stubs.
package v1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "audit.v1.AuditService"

const (
	AuditService_OpenSession_FullMethodName    = "/audit.v1.AuditService/OpenSession"
	AuditService_CloseSession_FullMethodName   = "/audit.v1.AuditService/CloseSession"
	AuditService_SelectLocation_FullMethodName = "/audit.v1.AuditService/SelectLocation"
	AuditService_RequestRefresh_FullMethodName = "/audit.v1.AuditService/RequestRefresh"
	AuditService_SetVisibility_FullMethodName  = "/audit.v1.AuditService/SetVisibility"
	AuditService_SetAutoRefresh_FullMethodName = "/audit.v1.AuditService/SetAutoRefresh"
	AuditService_GetAuditState_FullMethodName  = "/audit.v1.AuditService/GetAuditState"
	AuditService_ListAuditRuns_FullMethodName  = "/audit.v1.AuditService/ListAuditRuns"
)

// AuditServiceServer is the server API for AuditService.
type AuditServiceServer interface {
	// OpenSession {userId} -> audit state
	OpenSession(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// CloseSession {userId}
	CloseSession(context.Context, *structpb.Struct) (*emptypb.Empty, error)
	// SelectLocation {userId, locationId, profile?} -> audit state
	SelectLocation(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// RequestRefresh {userId, locationId?}
	RequestRefresh(context.Context, *structpb.Struct) (*emptypb.Empty, error)
	// SetVisibility {userId, visible}
	SetVisibility(context.Context, *structpb.Struct) (*emptypb.Empty, error)
	// SetAutoRefresh {userId, enabled}
	SetAutoRefresh(context.Context, *structpb.Struct) (*emptypb.Empty, error)
	// GetAuditState {userId} -> {currentScore, lastUpdatedAt, isRefreshing, status, ...}
	GetAuditState(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// ListAuditRuns {locationId, limit?} -> {runs: [...]}
	ListAuditRuns(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// UnimplementedAuditServiceServer must be embedded to have forward compatible implementations.
type UnimplementedAuditServiceServer struct{}

func (UnimplementedAuditServiceServer) OpenSession(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method OpenSession not implemented")
}
func (UnimplementedAuditServiceServer) CloseSession(context.Context, *structpb.Struct) (*emptypb.Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method CloseSession not implemented")
}
func (UnimplementedAuditServiceServer) SelectLocation(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method SelectLocation not implemented")
}
func (UnimplementedAuditServiceServer) RequestRefresh(context.Context, *structpb.Struct) (*emptypb.Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method RequestRefresh not implemented")
}
func (UnimplementedAuditServiceServer) SetVisibility(context.Context, *structpb.Struct) (*emptypb.Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method SetVisibility not implemented")
}
func (UnimplementedAuditServiceServer) SetAutoRefresh(context.Context, *structpb.Struct) (*emptypb.Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method SetAutoRefresh not implemented")
}
func (UnimplementedAuditServiceServer) GetAuditState(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method GetAuditState not implemented")
}
func (UnimplementedAuditServiceServer) ListAuditRuns(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method ListAuditRuns not implemented")
}

func RegisterAuditServiceServer(s grpc.ServiceRegistrar, srv AuditServiceServer) {
	s.RegisterService(&AuditService_ServiceDesc, srv)
}

func unaryHandler[R any](fullMethod string, call func(AuditServiceServer, context.Context, *structpb.Struct) (R, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(AuditServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(AuditServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// AuditService_ServiceDesc is the grpc.ServiceDesc for AuditService service.
var AuditService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AuditServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "OpenSession",
			Handler:    unaryHandler(AuditService_OpenSession_FullMethodName, AuditServiceServer.OpenSession),
		},
		{
			MethodName: "CloseSession",
			Handler:    unaryHandler(AuditService_CloseSession_FullMethodName, AuditServiceServer.CloseSession),
		},
		{
			MethodName: "SelectLocation",
			Handler:    unaryHandler(AuditService_SelectLocation_FullMethodName, AuditServiceServer.SelectLocation),
		},
		{
			MethodName: "RequestRefresh",
			Handler:    unaryHandler(AuditService_RequestRefresh_FullMethodName, AuditServiceServer.RequestRefresh),
		},
		{
			MethodName: "SetVisibility",
			Handler:    unaryHandler(AuditService_SetVisibility_FullMethodName, AuditServiceServer.SetVisibility),
		},
		{
			MethodName: "SetAutoRefresh",
			Handler:    unaryHandler(AuditService_SetAutoRefresh_FullMethodName, AuditServiceServer.SetAutoRefresh),
		},
		{
			MethodName: "GetAuditState",
			Handler:    unaryHandler(AuditService_GetAuditState_FullMethodName, AuditServiceServer.GetAuditState),
		},
		{
			MethodName: "ListAuditRuns",
			Handler:    unaryHandler(AuditService_ListAuditRuns_FullMethodName, AuditServiceServer.ListAuditRuns),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "audit/v1/audit_service.proto",
}

// AuditServiceClient is the client API for AuditService service.
type AuditServiceClient interface {
	OpenSession(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	CloseSession(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*emptypb.Empty, error)
	SelectLocation(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	RequestRefresh(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*emptypb.Empty, error)
	SetVisibility(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*emptypb.Empty, error)
	SetAutoRefresh(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*emptypb.Empty, error)
	GetAuditState(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	ListAuditRuns(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type auditServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewAuditServiceClient(cc grpc.ClientConnInterface) AuditServiceClient {
	return &auditServiceClient{cc}
}

func invokeStruct(ctx context.Context, cc grpc.ClientConnInterface, method string, in *structpb.Struct, opts []grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func invokeEmpty(ctx context.Context, cc grpc.ClientConnInterface, method string, in *structpb.Struct, opts []grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *auditServiceClient) OpenSession(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invokeStruct(ctx, c.cc, AuditService_OpenSession_FullMethodName, in, opts)
}

func (c *auditServiceClient) CloseSession(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	return invokeEmpty(ctx, c.cc, AuditService_CloseSession_FullMethodName, in, opts)
}

func (c *auditServiceClient) SelectLocation(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invokeStruct(ctx, c.cc, AuditService_SelectLocation_FullMethodName, in, opts)
}

func (c *auditServiceClient) RequestRefresh(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	return invokeEmpty(ctx, c.cc, AuditService_RequestRefresh_FullMethodName, in, opts)
}

func (c *auditServiceClient) SetVisibility(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	return invokeEmpty(ctx, c.cc, AuditService_SetVisibility_FullMethodName, in, opts)
}

func (c *auditServiceClient) SetAutoRefresh(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	return invokeEmpty(ctx, c.cc, AuditService_SetAutoRefresh_FullMethodName, in, opts)
}

func (c *auditServiceClient) GetAuditState(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invokeStruct(ctx, c.cc, AuditService_GetAuditState_FullMethodName, in, opts)
}

func (c *auditServiceClient) ListAuditRuns(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invokeStruct(ctx, c.cc, AuditService_ListAuditRuns_FullMethodName, in, opts)
}
