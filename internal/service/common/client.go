//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"

	api "github.com/oshokin/alarm-node/internal/api/grpc/node"
	"github.com/oshokin/alarm-node/internal/domain/home"
)

// DefaultCallTimeout bounds a call when no timeout option is given.
const DefaultCallTimeout = 5 * time.Second

// Client wraps the node gRPC client with convenience helpers.
type Client struct {
	// conn is the underlying gRPC connection to the node.
	conn *grpc.ClientConn
	// api is the node service client.
	api *api.NodeServiceClient

	// callTimeout is the default timeout for individual RPC calls.
	callTimeout time.Duration
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets a default timeout for service calls.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

var (
	// errAddressRequired is returned when a required address value is missing.
	errAddressRequired = errors.New("address must be provided")
	// errIdentityRequired is returned when a write names no device or parameter.
	errIdentityRequired = errors.New("device and param must be provided")
)

// Dial creates a gRPC client for the node API. The connection is established lazily.
// Note: this uses insecure transport credentials; the node API is meant for a trusted network.
func Dial(_ context.Context, address string, opts ...Option) (*Client, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	conn, err := grpc.NewClient(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial node: %w", err)
	}

	client := &Client{
		conn:        conn,
		api:         api.NewNodeServiceClient(conn),
		callTimeout: DefaultCallTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}

	return c.conn.Close()
}

// Snapshot retrieves the current node state.
func (c *Client) Snapshot(ctx context.Context) (home.Snapshot, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.Snapshot(callCtx, new(emptypb.Empty))
	if err != nil {
		return home.Snapshot{}, fmt.Errorf("get snapshot: %w", err)
	}

	return api.DecodeSnapshot(resp)
}

// Write sends a parameter write and returns the state after it was applied.
func (c *Client) Write(ctx context.Context, req *api.WriteRequest) (home.Snapshot, error) {
	if req == nil || req.Device == "" || req.Param == "" {
		return home.Snapshot{}, errIdentityRequired
	}

	doc, err := api.EncodeWrite(req)
	if err != nil {
		return home.Snapshot{}, err
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.Write(callCtx, doc)
	if err != nil {
		return home.Snapshot{}, fmt.Errorf("write %s/%s: %w", req.Device, req.Param, err)
	}

	return api.DecodeSnapshot(resp)
}

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}
