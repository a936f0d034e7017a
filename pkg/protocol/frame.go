package protocol

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Frame is the envelope carried over pkg/transport's single multiplexed
// grpc stream: an op id, a fixed-layout arg region, zero or
// more variable-sized data regions, and — on a reply — a status word. It is
// hand-marshaled with protowire field numbers rather than a protoc-
// generated message: the payload bytes themselves are produced entirely by
// pkg/domain/pkg/wire's codec, so the envelope only needs to multiplex
// those opaque byte strings across one stream, not describe their
// structure to protobuf.
type Frame struct {
	Op          Op
	RequestID   uint64
	Status      int32 // reply only; 0 = success
	ArgRegion   []byte
	DataRegions [][]byte
}

const (
	fieldOp        = 1
	fieldRequestID = 2
	fieldStatus    = 3
	fieldArgRegion = 4
	fieldDataBlock = 5 // repeated
)

// Marshal encodes f using raw protowire field tags, avoiding a protoc-
// generated .pb.go for this envelope (see pkg/transport's package doc for
// why grpc's codec is still used for the underlying stream transport).
func (f *Frame) Marshal() []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldOp, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(f.Op))
	b = protowire.AppendTag(b, fieldRequestID, protowire.VarintType)
	b = protowire.AppendVarint(b, f.RequestID)
	b = protowire.AppendTag(b, fieldStatus, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(uint32(f.Status)))
	b = protowire.AppendTag(b, fieldArgRegion, protowire.BytesType)
	b = protowire.AppendBytes(b, f.ArgRegion)
	for _, d := range f.DataRegions {
		b = protowire.AppendTag(b, fieldDataBlock, protowire.BytesType)
		b = protowire.AppendBytes(b, d)
	}
	return b
}

// Unmarshal decodes a Frame from raw protowire-tagged bytes.
func Unmarshal(buf []byte) (*Frame, error) {
	f := &Frame{}
	for len(buf) > 0 {
		num, typ, n := protowire.ConsumeTag(buf)
		if n < 0 {
			return nil, fmt.Errorf("protocol: bad tag: %w", protowire.ParseError(n))
		}
		buf = buf[n:]
		switch num {
		case fieldOp:
			v, n := protowire.ConsumeVarint(buf)
			if n < 0 {
				return nil, fmt.Errorf("protocol: bad op varint")
			}
			f.Op = Op(v)
			buf = buf[n:]
		case fieldRequestID:
			v, n := protowire.ConsumeVarint(buf)
			if n < 0 {
				return nil, fmt.Errorf("protocol: bad request_id varint")
			}
			f.RequestID = v
			buf = buf[n:]
		case fieldStatus:
			v, n := protowire.ConsumeVarint(buf)
			if n < 0 {
				return nil, fmt.Errorf("protocol: bad status varint")
			}
			f.Status = int32(uint32(v))
			buf = buf[n:]
		case fieldArgRegion:
			v, n := protowire.ConsumeBytes(buf)
			if n < 0 {
				return nil, fmt.Errorf("protocol: bad arg_region bytes")
			}
			f.ArgRegion = append([]byte(nil), v...)
			buf = buf[n:]
		case fieldDataBlock:
			v, n := protowire.ConsumeBytes(buf)
			if n < 0 {
				return nil, fmt.Errorf("protocol: bad data block bytes")
			}
			f.DataRegions = append(f.DataRegions, append([]byte(nil), v...))
			buf = buf[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, buf)
			if n < 0 {
				return nil, fmt.Errorf("protocol: bad unknown field")
			}
			buf = buf[n:]
		}
	}
	return f, nil
}
