package proposalsv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	// ProposalService_ServiceName is the fully qualified service name.
	ProposalService_ServiceName = "proposals.v1.ProposalService"

	ProposalService_CreateProposal_FullMethodName = "/proposals.v1.ProposalService/CreateProposal"
	ProposalService_GetProposal_FullMethodName    = "/proposals.v1.ProposalService/GetProposal"
)

// ProposalServiceClient is the client API for ProposalService.
type ProposalServiceClient interface {
	CreateProposal(ctx context.Context, in *CreateProposalRequest, opts ...grpc.CallOption) (*CreateProposalResponse, error)
	GetProposal(ctx context.Context, in *GetProposalRequest, opts ...grpc.CallOption) (*GetProposalResponse, error)
}

type proposalServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewProposalServiceClient wraps a connection in a ProposalService client.
// The connection must select the json content subtype.
func NewProposalServiceClient(cc grpc.ClientConnInterface) ProposalServiceClient {
	return &proposalServiceClient{cc: cc}
}

func (c *proposalServiceClient) CreateProposal(ctx context.Context, in *CreateProposalRequest, opts ...grpc.CallOption) (*CreateProposalResponse, error) {
	out := new(CreateProposalResponse)
	if err := c.cc.Invoke(ctx, ProposalService_CreateProposal_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *proposalServiceClient) GetProposal(ctx context.Context, in *GetProposalRequest, opts ...grpc.CallOption) (*GetProposalResponse, error) {
	out := new(GetProposalResponse)
	if err := c.cc.Invoke(ctx, ProposalService_GetProposal_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// ProposalServiceServer is the server API for ProposalService.
type ProposalServiceServer interface {
	CreateProposal(context.Context, *CreateProposalRequest) (*CreateProposalResponse, error)
	GetProposal(context.Context, *GetProposalRequest) (*GetProposalResponse, error)
	mustEmbedUnimplementedProposalServiceServer()
}

// UnimplementedProposalServiceServer must be embedded by implementations.
type UnimplementedProposalServiceServer struct{}

func (UnimplementedProposalServiceServer) CreateProposal(context.Context, *CreateProposalRequest) (*CreateProposalResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CreateProposal not implemented")
}

func (UnimplementedProposalServiceServer) GetProposal(context.Context, *GetProposalRequest) (*GetProposalResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetProposal not implemented")
}

func (UnimplementedProposalServiceServer) mustEmbedUnimplementedProposalServiceServer() {}

// RegisterProposalServiceServer registers srv on s.
func RegisterProposalServiceServer(s grpc.ServiceRegistrar, srv ProposalServiceServer) {
	s.RegisterService(&ProposalService_ServiceDesc, srv)
}

func _ProposalService_CreateProposal_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(CreateProposalRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ProposalServiceServer).CreateProposal(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: ProposalService_CreateProposal_FullMethodName,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ProposalServiceServer).CreateProposal(ctx, req.(*CreateProposalRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _ProposalService_GetProposal_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetProposalRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ProposalServiceServer).GetProposal(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: ProposalService_GetProposal_FullMethodName,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ProposalServiceServer).GetProposal(ctx, req.(*GetProposalRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// ProposalService_ServiceDesc is the grpc.ServiceDesc for ProposalService.
var ProposalService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ProposalService_ServiceName,
	HandlerType: (*ProposalServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "CreateProposal",
			Handler:    _ProposalService_CreateProposal_Handler,
		},
		{
			MethodName: "GetProposal",
			Handler:    _ProposalService_GetProposal_Handler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "proposals/v1/proposals.proto",
}
