package announcements

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// errAddressRequired is returned when a required address value is missing.
var errAddressRequired = errors.New("address must be provided")

// Client subscribes to a remote announcement stream.
type Client struct {
	// conn is the underlying gRPC connection to the announcer.
	conn *grpc.ClientConn
}

// Dial prepares a connection to the announcer at address. Extra dial options
// are appended after the default insecure transport credentials.
// Note: this uses insecure transport credentials; deploy on a trusted network.
func Dial(address string, opts ...grpc.DialOption) (*Client, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)

	conn, err := grpc.NewClient(address, opts...)
	if err != nil {
		return nil, fmt.Errorf("dial announcer: %w", err)
	}

	return &Client{conn: conn}, nil
}

// Close releases the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Subscription is an open announcement stream.
type Subscription struct {
	stream grpc.ServerStreamingClient[structpb.Struct]
}

// Subscribe opens the announcement stream. It ends when ctx is done.
func (c *Client) Subscribe(ctx context.Context) (*Subscription, error) {
	stream, err := c.conn.NewStream(ctx, &ServiceDesc.Streams[0], SubscribeMethod)
	if err != nil {
		return nil, fmt.Errorf("open stream: %w", err)
	}

	typed := &grpc.GenericClientStream[emptypb.Empty, structpb.Struct]{ClientStream: stream}

	if err = typed.SendMsg(new(emptypb.Empty)); err != nil {
		return nil, fmt.Errorf("send subscribe request: %w", err)
	}

	if err = typed.CloseSend(); err != nil {
		return nil, fmt.Errorf("close subscribe request: %w", err)
	}

	return &Subscription{stream: typed}, nil
}

// Recv blocks for the next announcement. It returns io.EOF when the server
// ends the stream.
func (s *Subscription) Recv() (*structpb.Struct, error) {
	return s.stream.Recv()
}
