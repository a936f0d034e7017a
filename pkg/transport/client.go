package transport

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/cuemby/dbtxn/pkg/clog"
)

// Conn is a dialed grpc connection to one database server. Network
// transport security is out of scope, so Dial always
// uses insecure.NewCredentials() rather than an mTLS dial option (see
// DESIGN.md for the dropped pkg/security).
type Conn struct {
	cc *grpc.ClientConn
}

// Dial opens a grpc connection to address (host:port).
func Dial(ctx context.Context, address string) (*Conn, error) {
	cc, err := grpc.NewClient(address,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(codecName)),
	)
	if err != nil {
		return nil, fmt.Errorf("transport: dial %s: %w", address, err)
	}
	clog.WithComponent("transport").Info().Str("address", address).Msg("dialed server")
	return &Conn{cc: cc}, nil
}

// Close closes the underlying grpc connection.
func (c *Conn) Close() error {
	return c.cc.Close()
}

// OpenSession opens one bidirectional Call stream. pkg/session opens one
// of these per session and keeps it for the session's lifetime, to
// preserve FIFO-per-session ordering.
func (c *Conn) OpenSession(ctx context.Context) (*ClientStream, error) {
	desc := &serviceDesc.Streams[0]
	s, err := c.cc.NewStream(ctx, desc, callFullMethod)
	if err != nil {
		return nil, fmt.Errorf("transport: open session stream: %w", err)
	}
	return &ClientStream{stream: s}, nil
}
