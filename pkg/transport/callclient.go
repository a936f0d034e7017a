package transport

import (
	"fmt"
	"sync"

	"github.com/cuemby/dbtxn/pkg/protocol"
)

// CallClient turns a raw bidirectional ClientStream into a request/reply
// RPC client: Call sends a Frame with a fresh request id and, for ops that
// get a reply, blocks for the matching response; Send is the fire-and-
// forget variant used for no-reply ops such as set_interrupt. Requests
// on one session stream are delivered and replied to in strict FIFO
// order, so Call does not need to track multiple in-flight
// requests — it only verifies the reply it receives matches what it sent.
type CallClient struct {
	mu     sync.Mutex
	stream *ClientStream
	nextID uint64
}

// NewCallClient wraps stream for request/reply use.
func NewCallClient(stream *ClientStream) *CallClient {
	return &CallClient{stream: stream}
}

// Call sends op with arg/data and, unless op has no reply, waits for and
// returns the matching Frame.
func (c *CallClient) Call(op protocol.Op, arg []byte, data ...[]byte) (*protocol.Frame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextID
	c.nextID++
	req := &protocol.Frame{Op: op, RequestID: id, ArgRegion: arg, DataRegions: data}
	if err := c.stream.Send(req); err != nil {
		return nil, fmt.Errorf("transport: send %s: %w", op, err)
	}
	if protocol.ReplyKindOf(op) == protocol.ReplyNone {
		return nil, nil
	}
	reply, err := c.stream.Recv()
	if err != nil {
		return nil, fmt.Errorf("transport: recv reply to %s: %w", op, err)
	}
	if reply.RequestID != id {
		return nil, fmt.Errorf("transport: reply id mismatch for %s: got %d want %d", op, reply.RequestID, id)
	}
	return reply, nil
}

// Send issues a no-reply op and does not wait for any response.
func (c *CallClient) Send(op protocol.Op, arg []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextID
	c.nextID++
	if err := c.stream.Send(&protocol.Frame{Op: op, RequestID: id, ArgRegion: arg}); err != nil {
		return fmt.Errorf("transport: send %s: %w", op, err)
	}
	return nil
}
