package grpcapi

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/xtding233/dicesim/internal/report"
)

// Client calls a remote dicesim.v1.Simulator.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) Play(ctx context.Context, req PlayRequest, opts ...grpc.CallOption) (report.Report, error) {
	var rep report.Report
	err := c.invoke(ctx, playMethod, req, &rep, opts...)
	return rep, err
}

func (c *Client) Trials(ctx context.Context, req TrialsRequest, opts ...grpc.CallOption) (TrialsResponse, error) {
	var resp TrialsResponse
	err := c.invoke(ctx, trialsMethod, req, &resp, opts...)
	return resp, err
}

func (c *Client) invoke(ctx context.Context, method string, req, resp any, opts ...grpc.CallOption) error {
	in, err := toStruct(req)
	if err != nil {
		return err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return err
	}
	return fromStruct(out, resp)
}
