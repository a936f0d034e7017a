package transport

import (
	"google.golang.org/grpc"

	"github.com/cuemby/dbtxn/pkg/protocol"
)

// ServerStream wraps a grpc.ServerStream to send/receive protocol.Frame
// values instead of raw bytes, keeping pkg/protocol the only place that
// knows the envelope's field layout.
type ServerStream struct {
	stream grpc.ServerStream
}

// Recv reads the next Frame the client sent. Returns io.EOF when the
// client closes its send side.
func (s *ServerStream) Recv() (*protocol.Frame, error) {
	var m rawMessage
	if err := s.stream.RecvMsg(&m); err != nil {
		return nil, err
	}
	return protocol.Unmarshal(m)
}

// Send writes a Frame to the client.
func (s *ServerStream) Send(f *protocol.Frame) error {
	m := rawMessage(f.Marshal())
	return s.stream.SendMsg(&m)
}

// ClientStream is the client-side counterpart, opened per session so that
// "requests issued on a session are delivered and replied to in strict
// FIFO order" holds for free: one grpc stream per session serializes the
// session's own requests, while distinct sessions get distinct streams
// multiplexed over the same HTTP/2 connection.
type ClientStream struct {
	stream grpc.ClientStream
}

// Send writes a Frame to the server.
func (c *ClientStream) Send(f *protocol.Frame) error {
	m := rawMessage(f.Marshal())
	return c.stream.SendMsg(&m)
}

// Recv reads the next Frame the server sent.
func (c *ClientStream) Recv() (*protocol.Frame, error) {
	var m rawMessage
	if err := c.stream.RecvMsg(&m); err != nil {
		return nil, err
	}
	return protocol.Unmarshal(m)
}

// CloseSend half-closes the client's send direction.
func (c *ClientStream) CloseSend() error {
	return c.stream.CloseSend()
}
