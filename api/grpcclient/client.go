// Package grpcclient is the typed client for the arbor.Index service.
// It forces the wire codec on every call, so it only talks to servers
// registered through the grpcserver package.
package grpcclient

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"arbor/api/wire"
)

type Client struct {
	conn    *grpc.ClientConn
	ownConn bool
}

// Dial connects to addr without transport security. Intended for
// same-host tooling; production callers should use NewWithConn and
// bring their own credentials.
func Dial(addr string) (*Client, error) {
	conn, err := grpc.NewClient(addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.ForceCodec(wire.Codec{})),
	)
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn, ownConn: true}, nil
}

// NewWithConn wraps an existing connection. The caller keeps ownership
// and must configure the wire codec on it.
func NewWithConn(conn *grpc.ClientConn) *Client {
	return &Client{conn: conn}
}

func (c *Client) Insert(ctx context.Context, key int64) (*wire.InsertResponse, error) {
	out := new(wire.InsertResponse)
	err := c.conn.Invoke(ctx, "/arbor.Index/Insert", &wire.InsertRequest{Key: key}, out,
		grpc.ForceCodec(wire.Codec{}))
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Search(ctx context.Context, key int64) (*wire.SearchResponse, error) {
	out := new(wire.SearchResponse)
	err := c.conn.Invoke(ctx, "/arbor.Index/Search", &wire.SearchRequest{Key: key}, out,
		grpc.ForceCodec(wire.Codec{}))
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Snapshot(ctx context.Context) (*wire.SnapshotResponse, error) {
	out := new(wire.SnapshotResponse)
	err := c.conn.Invoke(ctx, "/arbor.Index/Snapshot", &wire.SnapshotRequest{}, out,
		grpc.ForceCodec(wire.Codec{}))
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Close() error {
	if !c.ownConn {
		return nil
	}
	return c.conn.Close()
}
