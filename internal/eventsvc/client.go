package eventsvc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/lotus-engine/internal/director"
	"github.com/danielpatrickdp/lotus-engine/internal/generator"
	"github.com/danielpatrickdp/lotus-engine/internal/state"
)

// #region client-struct

// Client wraps a connection to an EventService.
type Client struct {
	conn *grpc.ClientConn
	cc   grpc.ClientConnInterface
}

// #endregion client-struct

// #region constructor

// NewClient connects to the event service at addr.
func NewClient(addr string) (*Client, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return &Client{conn: conn, cc: conn}, nil
}

// NewClientWithConn creates a Client over an existing connection.
// Close is a no-op; the caller owns cc.
func NewClientWithConn(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// #endregion constructor

// #region close

// Close shuts down the gRPC connection.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// #endregion close

// #region generate

// Generate requests the next event for session. It returns an error wrapping
// director.ErrNoEvent when the service had nothing to serve.
func (c *Client) Generate(ctx context.Context, session string, seed uint64, player state.PlayerState) (*generator.GeneratedEvent, string, error) {
	in, err := toStruct(NewGenerateRequest(session, seed, player))
	if err != nil {
		return nil, "", err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, GenerateMethod, in, out); err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, "", fmt.Errorf("generate rpc: %w", director.ErrNoEvent)
		}
		return nil, "", fmt.Errorf("generate rpc: %w", err)
	}

	var resp GenerateResponse
	if err := fromStruct(out, &resp); err != nil {
		return nil, "", err
	}
	return resp.Event, resp.Source, nil
}

// #endregion generate

// #region record

// Record reports a resolved event. Pass an empty situationID for events that
// did not come from the library.
func (c *Client) Record(ctx context.Context, session, domain, situationID string) (uint64, error) {
	in, err := toStruct(RecordRequest{Session: session, Domain: domain, SituationID: situationID})
	if err != nil {
		return 0, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, RecordMethod, in, out); err != nil {
		return 0, fmt.Errorf("record rpc: %w", err)
	}

	var resp RecordResponse
	if err := fromStruct(out, &resp); err != nil {
		return 0, err
	}
	return resp.Counter, nil
}

// #endregion record
