package wire

// shortFormLimit is the largest payload length that fits the 1-byte
// length-prefix form; anything longer uses the sentinel + 4-byte form.
const (
	shortFormLimit  = 254
	longFormSentinel = 0xFF
)

// PutVarchar writes a length-prefixed, NUL-terminated, 4-byte-aligned byte
// string: a 1-byte length if len(payload) <= 254, otherwise a 0xFF sentinel
// byte followed by a 4-byte big-endian length; then the payload; then a
// single trailing NUL sentinel byte; then 0-3 zero pad bytes bringing the
// cursor to a 4-byte boundary.
func (c *Cursor) PutVarchar(payload []byte) error {
	if len(payload) <= shortFormLimit {
		if err := c.PutUint8(uint8(len(payload))); err != nil {
			return err
		}
	} else {
		if err := c.PutUint8(longFormSentinel); err != nil {
			return err
		}
		if err := c.PutUint32(uint32(len(payload))); err != nil {
			return err
		}
	}
	if err := c.PutBytes(payload); err != nil {
		return err
	}
	if err := c.PutUint8(0); err != nil { // NUL sentinel
		return err
	}
	return c.Align(4)
}

// GetVarchar is the inverse of PutVarchar. It returns the payload only; the
// trailing NUL sentinel and alignment padding are consumed but not returned.
func (c *Cursor) GetVarchar() ([]byte, error) {
	first, err := c.GetUint8()
	if err != nil {
		return nil, err
	}
	var n uint32
	if first == longFormSentinel {
		n, err = c.GetUint32()
		if err != nil {
			return nil, err
		}
	} else {
		n = uint32(first)
	}
	payload, err := c.GetBytes(int(n))
	if err != nil {
		return nil, err
	}
	if _, err := c.GetUint8(); err != nil { // NUL sentinel
		return nil, err
	}
	if err := c.SkipAlign(4); err != nil {
		return nil, err
	}
	return payload, nil
}

// PutVarbit writes a length-prefixed bit string: the prefix records the bit
// length (not the byte length); the payload is the ceil(bits/8) packed
// bytes, zero-padded in the final byte, followed by the same NUL sentinel
// and 4-byte alignment padding as PutVarchar.
func (c *Cursor) PutVarbit(payload []byte, bitLen int) error {
	if bitLen <= shortFormLimit {
		if err := c.PutUint8(uint8(bitLen)); err != nil {
			return err
		}
	} else {
		if err := c.PutUint8(longFormSentinel); err != nil {
			return err
		}
		if err := c.PutUint32(uint32(bitLen)); err != nil {
			return err
		}
	}
	if err := c.PutBytes(payload); err != nil {
		return err
	}
	if err := c.PutUint8(0); err != nil {
		return err
	}
	return c.Align(4)
}

// GetVarbit is the inverse of PutVarbit, returning the packed payload and
// the bit length separately (byte length is ceil(bitLen/8)).
func (c *Cursor) GetVarbit() (payload []byte, bitLen int, err error) {
	first, err := c.GetUint8()
	if err != nil {
		return nil, 0, err
	}
	var n uint32
	if first == longFormSentinel {
		n, err = c.GetUint32()
		if err != nil {
			return nil, 0, err
		}
	} else {
		n = uint32(first)
	}
	byteLen := (int(n) + 7) / 8
	payload, err = c.GetBytes(byteLen)
	if err != nil {
		return nil, 0, err
	}
	if _, err := c.GetUint8(); err != nil {
		return nil, 0, err
	}
	if err := c.SkipAlign(4); err != nil {
		return nil, 0, err
	}
	return payload, int(n), nil
}
