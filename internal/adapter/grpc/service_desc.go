package grpc

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName is the fully qualified gRPC service name
const ServiceName = "ledger.v1.LedgerService"

// LedgerServiceServer is the server API for ledger.v1.LedgerService
type LedgerServiceServer interface {
	CreateAccount(context.Context, *CreateAccountRequest) (*AccountResponse, error)
	GetAccount(context.Context, *GetAccountRequest) (*AccountResponse, error)
	ListAccounts(context.Context, *ListAccountsRequest) (*ListAccountsResponse, error)
	UpsertRecord(context.Context, *UpsertRecordRequest) (*AccountResponse, error)
	DeleteRecord(context.Context, *DeleteRecordRequest) (*AccountResponse, error)
	UpdateSettings(context.Context, *UpdateSettingsRequest) (*AccountResponse, error)
	GetSummary(context.Context, *GetSummaryRequest) (*GetSummaryResponse, error)
}

// unary adapts a typed server method to a grpc.MethodHandler
func unary[Req, Resp any](method string, call func(LedgerServiceServer, context.Context, *Req) (*Resp, error)) func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(LedgerServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: "/" + ServiceName + "/" + method,
		}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(LedgerServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// LedgerServiceDesc describes ledger.v1.LedgerService for grpc.Server.RegisterService
var LedgerServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*LedgerServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateAccount", Handler: unary("CreateAccount", LedgerServiceServer.CreateAccount)},
		{MethodName: "GetAccount", Handler: unary("GetAccount", LedgerServiceServer.GetAccount)},
		{MethodName: "ListAccounts", Handler: unary("ListAccounts", LedgerServiceServer.ListAccounts)},
		{MethodName: "UpsertRecord", Handler: unary("UpsertRecord", LedgerServiceServer.UpsertRecord)},
		{MethodName: "DeleteRecord", Handler: unary("DeleteRecord", LedgerServiceServer.DeleteRecord)},
		{MethodName: "UpdateSettings", Handler: unary("UpdateSettings", LedgerServiceServer.UpdateSettings)},
		{MethodName: "GetSummary", Handler: unary("GetSummary", LedgerServiceServer.GetSummary)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "ledger/v1/ledger.proto",
}

// RegisterLedgerServiceServer registers srv on s
func RegisterLedgerServiceServer(s grpc.ServiceRegistrar, srv LedgerServiceServer) {
	s.RegisterService(&LedgerServiceDesc, srv)
}

// Client calls ledger.v1.LedgerService using the JSON codec
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient creates a client on an established connection
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) invoke(ctx context.Context, method string, in, out interface{}, opts []grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	return c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...)
}

func (c *Client) CreateAccount(ctx context.Context, in *CreateAccountRequest, opts ...grpc.CallOption) (*AccountResponse, error) {
	out := new(AccountResponse)
	if err := c.invoke(ctx, "CreateAccount", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetAccount(ctx context.Context, in *GetAccountRequest, opts ...grpc.CallOption) (*AccountResponse, error) {
	out := new(AccountResponse)
	if err := c.invoke(ctx, "GetAccount", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListAccounts(ctx context.Context, in *ListAccountsRequest, opts ...grpc.CallOption) (*ListAccountsResponse, error) {
	out := new(ListAccountsResponse)
	if err := c.invoke(ctx, "ListAccounts", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) UpsertRecord(ctx context.Context, in *UpsertRecordRequest, opts ...grpc.CallOption) (*AccountResponse, error) {
	out := new(AccountResponse)
	if err := c.invoke(ctx, "UpsertRecord", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) DeleteRecord(ctx context.Context, in *DeleteRecordRequest, opts ...grpc.CallOption) (*AccountResponse, error) {
	out := new(AccountResponse)
	if err := c.invoke(ctx, "DeleteRecord", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) UpdateSettings(ctx context.Context, in *UpdateSettingsRequest, opts ...grpc.CallOption) (*AccountResponse, error) {
	out := new(AccountResponse)
	if err := c.invoke(ctx, "UpdateSettings", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetSummary(ctx context.Context, in *GetSummaryRequest, opts ...grpc.CallOption) (*GetSummaryResponse, error) {
	out := new(GetSummaryResponse)
	if err := c.invoke(ctx, "GetSummary", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}
