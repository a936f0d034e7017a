package wire

import (
	"encoding/binary"
	"errors"
	"math"
)

// ErrOverflow is returned whenever a put/get would cross the cursor's bound.
var ErrOverflow = errors.New("wire: buffer overflow")

// Cursor is a bounded read/write position over a byte slice. A Cursor created
// over an existing slice (NewReader) is used to decode a reply; a Cursor
// created with a fixed capacity (NewWriter) is used to encode a request. Both
// share the same bound-checked primitives so encode and decode paths cannot
// drift apart.
type Cursor struct {
	buf []byte
	pos int
}

// NewReader wraps buf for sequential decoding starting at position 0.
func NewReader(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// NewWriter allocates a fixed-capacity cursor for encoding. Callers compute
// the capacity up front (summing LengthVal/LengthMem across arguments, per
// the request-building contract) so that a well-formed caller never
// overflows; ErrOverflow signals a capacity-estimation bug, not normal flow.
func NewWriter(capacity int) *Cursor {
	return &Cursor{buf: make([]byte, capacity)}
}

// Pos returns the current cursor offset.
func (c *Cursor) Pos() int { return c.pos }

// Len returns the total capacity of the underlying buffer.
func (c *Cursor) Len() int { return len(c.buf) }

// Remaining returns the number of bytes left before the bound.
func (c *Cursor) Remaining() int { return len(c.buf) - c.pos }

// Bytes returns the portion of the buffer written (or read) so far.
func (c *Cursor) Bytes() []byte { return c.buf[:c.pos] }

// Reset rewinds the cursor to the start of its buffer, keeping the capacity.
func (c *Cursor) Reset() { c.pos = 0 }

func (c *Cursor) require(n int) error {
	if n < 0 || c.pos+n > len(c.buf) {
		return ErrOverflow
	}
	return nil
}

// PutBytes writes raw bytes with no length prefix or padding.
func (c *Cursor) PutBytes(b []byte) error {
	if err := c.require(len(b)); err != nil {
		return err
	}
	copy(c.buf[c.pos:], b)
	c.pos += len(b)
	return nil
}

// GetBytes reads n raw bytes with no interpretation.
func (c *Cursor) GetBytes(n int) ([]byte, error) {
	if err := c.require(n); err != nil {
		return nil, err
	}
	out := c.buf[c.pos : c.pos+n]
	c.pos += n
	return out, nil
}

// PutUint8/GetUint8

func (c *Cursor) PutUint8(v uint8) error {
	if err := c.require(1); err != nil {
		return err
	}
	c.buf[c.pos] = v
	c.pos++
	return nil
}

func (c *Cursor) GetUint8() (uint8, error) {
	if err := c.require(1); err != nil {
		return 0, err
	}
	v := c.buf[c.pos]
	c.pos++
	return v, nil
}

// PutInt16/GetInt16 (network byte order, i.e. big-endian)

func (c *Cursor) PutInt16(v int16) error { return c.PutUint16(uint16(v)) }
func (c *Cursor) GetInt16() (int16, error) {
	v, err := c.GetUint16()
	return int16(v), err
}

func (c *Cursor) PutUint16(v uint16) error {
	if err := c.require(2); err != nil {
		return err
	}
	binary.BigEndian.PutUint16(c.buf[c.pos:], v)
	c.pos += 2
	return nil
}

func (c *Cursor) GetUint16() (uint16, error) {
	if err := c.require(2); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint16(c.buf[c.pos:])
	c.pos += 2
	return v, nil
}

// PutInt32/GetInt32

func (c *Cursor) PutInt32(v int32) error { return c.PutUint32(uint32(v)) }
func (c *Cursor) GetInt32() (int32, error) {
	v, err := c.GetUint32()
	return int32(v), err
}

func (c *Cursor) PutUint32(v uint32) error {
	if err := c.require(4); err != nil {
		return err
	}
	binary.BigEndian.PutUint32(c.buf[c.pos:], v)
	c.pos += 4
	return nil
}

func (c *Cursor) GetUint32() (uint32, error) {
	if err := c.require(4); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint32(c.buf[c.pos:])
	c.pos += 4
	return v, nil
}

// PutInt64/GetInt64

func (c *Cursor) PutInt64(v int64) error { return c.PutUint64(uint64(v)) }
func (c *Cursor) GetInt64() (int64, error) {
	v, err := c.GetUint64()
	return int64(v), err
}

func (c *Cursor) PutUint64(v uint64) error {
	if err := c.require(8); err != nil {
		return err
	}
	binary.BigEndian.PutUint64(c.buf[c.pos:], v)
	c.pos += 8
	return nil
}

func (c *Cursor) GetUint64() (uint64, error) {
	if err := c.require(8); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint64(c.buf[c.pos:])
	c.pos += 8
	return v, nil
}

// PutFloat32/GetFloat32 and PutFloat64/GetFloat64 use the IEEE-754 bit
// pattern so the representation is platform-independent regardless of host
// float format.

func (c *Cursor) PutFloat32(v float32) error {
	return c.PutUint32(math.Float32bits(v))
}

func (c *Cursor) GetFloat32() (float32, error) {
	bits, err := c.GetUint32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(bits), nil
}

func (c *Cursor) PutFloat64(v float64) error {
	return c.PutUint64(math.Float64bits(v))
}

func (c *Cursor) GetFloat64() (float64, error) {
	bits, err := c.GetUint64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(bits), nil
}

// Align advances the cursor to the next boundary-byte multiple, writing or
// skipping zero padding. n must be 4 or 8 (the only alignments this wire
// format uses).
func (c *Cursor) Align(n int) error {
	pad := (n - (c.pos % n)) % n
	if pad == 0 {
		return nil
	}
	if err := c.require(pad); err != nil {
		return err
	}
	for i := 0; i < pad; i++ {
		c.buf[c.pos+i] = 0
	}
	c.pos += pad
	return nil
}

// SkipAlign advances a read cursor past alignment padding without requiring
// the skipped bytes to be zero (tolerant of historical non-zero padding).
func (c *Cursor) SkipAlign(n int) error {
	pad := (n - (c.pos % n)) % n
	if pad == 0 {
		return nil
	}
	if err := c.require(pad); err != nil {
		return err
	}
	c.pos += pad
	return nil
}
