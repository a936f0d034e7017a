// Package transport carries pkg/protocol Frames over a single multiplexed
// grpc bidirectional stream per session, reusing grpc's http2 stack for
// multiplexing and flow control rather than hand-rolling a
// second transport under the one pkg/wire already hand-rolls for payload
// encoding). The stream's message type is the raw bytes of a
// protocol.Frame; rawCodec below registers a passthrough grpc codec so no
// protoc-generated .pb.go is involved anywhere in this package.
package transport

import (
	"fmt"

	"google.golang.org/grpc/encoding"
)

const codecName = "dbtxn-raw-frame"

// rawMessage is the grpc message type exchanged on the Call stream: the
// already-marshaled bytes of a protocol.Frame.
type rawMessage []byte

type rawCodec struct{}

func (rawCodec) Marshal(v any) ([]byte, error) {
	m, ok := v.(*rawMessage)
	if !ok {
		return nil, fmt.Errorf("transport: rawCodec.Marshal: unexpected type %T", v)
	}
	return *m, nil
}

func (rawCodec) Unmarshal(data []byte, v any) error {
	m, ok := v.(*rawMessage)
	if !ok {
		return fmt.Errorf("transport: rawCodec.Unmarshal: unexpected type %T", v)
	}
	*m = append((*m)[:0], data...)
	return nil
}

func (rawCodec) Name() string { return codecName }

func init() {
	encoding.RegisterCodec(rawCodec{})
}
