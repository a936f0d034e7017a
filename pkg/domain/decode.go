package domain

import (
	"github.com/cuemby/dbtxn/pkg/wire"
)

// ReadVal is the inverse of WriteVal. sizeHint mirrors the original
// readval contract: -1 derives length from the stream itself (fixed-width
// and self-describing variable-length types), 0 yields the null Value for
// d without consuming any bytes, and a positive value names the exact
// number of bytes the field occupies on the wire (used when the caller
// already knows the region length from an outer framing header): the
// cursor ends sizeHint bytes past where it started, and a value whose
// encoding is longer than that is a BufferOverflow error.
func ReadVal(cur *wire.Cursor, d *Domain, sizeHint int, mode ReadMode) (*Value, error) {
	if sizeHint == 0 {
		return NewNull(d), nil
	}
	if sizeHint > 0 {
		start := cur.Pos()
		v, err := ReadVal(cur, d, -1, mode)
		if err != nil {
			return nil, err
		}
		used := cur.Pos() - start
		if used > sizeHint {
			return nil, NewError(BufferOverflow, "decode.go", 0, "field longer than sizeHint", d.Type.String())
		}
		if _, err := cur.GetBytes(sizeHint - used); err != nil {
			return nil, err
		}
		return v, nil
	}
	switch d.Type {
	case Short:
		x, err := cur.GetInt16()
		if err != nil {
			return nil, err
		}
		return &Value{Domain: d, payload: shortVal(x)}, nil
	case Integer:
		x, err := cur.GetInt32()
		if err != nil {
			return nil, err
		}
		return &Value{Domain: d, payload: intVal(x)}, nil
	case Bigint:
		if err := cur.SkipAlign(8); err != nil {
			return nil, err
		}
		x, err := cur.GetInt64()
		if err != nil {
			return nil, err
		}
		return &Value{Domain: d, payload: bigintVal(x)}, nil
	case Float:
		x, err := cur.GetFloat32()
		if err != nil {
			return nil, err
		}
		return &Value{Domain: d, payload: floatVal(x)}, nil
	case Double:
		if err := cur.SkipAlign(8); err != nil {
			return nil, err
		}
		x, err := cur.GetFloat64()
		if err != nil {
			return nil, err
		}
		return &Value{Domain: d, payload: doubleVal(x)}, nil
	case Date:
		x, err := cur.GetInt32()
		if err != nil {
			return nil, err
		}
		return &Value{Domain: d, payload: dateVal(x)}, nil
	case Time:
		x, err := cur.GetInt32()
		if err != nil {
			return nil, err
		}
		return &Value{Domain: d, payload: timeVal(x)}, nil
	case Timestamp:
		if err := cur.SkipAlign(8); err != nil {
			return nil, err
		}
		x, err := cur.GetInt64()
		if err != nil {
			return nil, err
		}
		return &Value{Domain: d, payload: timestampVal(x)}, nil
	case Datetime:
		if err := cur.SkipAlign(8); err != nil {
			return nil, err
		}
		date, err := cur.GetInt32()
		if err != nil {
			return nil, err
		}
		tm, err := cur.GetInt32()
		if err != nil {
			return nil, err
		}
		return &Value{Domain: d, payload: DatetimeVal{Date: date, Time: tm}}, nil
	case Monetary:
		if err := cur.SkipAlign(8); err != nil {
			return nil, err
		}
		currency, err := cur.GetInt16()
		if err != nil {
			return nil, err
		}
		if err := cur.SkipAlign(8); err != nil {
			return nil, err
		}
		amount, err := cur.GetFloat64()
		if err != nil {
			return nil, err
		}
		return &Value{Domain: d, payload: MonetaryVal{Currency: currency, Amount: amount}}, nil
	case Numeric:
		return readNumeric(cur, d)
	case Character, NChar:
		return readFixedChar(cur, d)
	case VarChar, VarNChar:
		b, err := cur.GetVarchar()
		if err != nil {
			return nil, err
		}
		return &Value{Domain: d, payload: BytesVal{Data: b, BitLen: len(b) * 8}, NeedsClear: true}, nil
	case Bit:
		return readFixedBit(cur, d)
	case VarBit:
		payload, bitLen, err := cur.GetVarbit()
		if err != nil {
			return nil, err
		}
		return &Value{Domain: d, payload: BytesVal{Data: payload, BitLen: bitLen}, NeedsClear: true}, nil
	case OIDType, Object:
		return readOIDOrObject(cur, d, mode)
	case Set, Multiset, Sequence, Vobj:
		return readSet(cur, d, mode)
	case MidxKey:
		return readMidxKey(cur, d, mode)
	default:
		return nil, NewError(InvalidArgument, "decode.go", 0, "unsupported type in ReadVal", d.Type.String())
	}
}

func readOIDOrObject(cur *wire.Cursor, d *Domain, mode ReadMode) (*Value, error) {
	o, err := cur.GetOID()
	if err != nil {
		return nil, err
	}
	oid := OIDVal{Volume: o.Volume, Page: o.Page, Slot: o.Slot}
	if mode == OIDMode {
		return &Value{Domain: NewScalarDomain(OIDType, 0, 0), payload: oid}, nil
	}
	// ObjectMode: the result is the same OIDType value as in OIDMode.
	// ReadVal only decodes the wire triple; it does not promote it to an
	// Object value or a workspace handle.
	return &Value{Domain: NewScalarDomain(OIDType, 0, 0), payload: oid}, nil
}

func readFixedChar(cur *wire.Cursor, d *Domain) (*Value, error) {
	n := d.Precision
	if n < 0 {
		n = 0
	}
	raw, err := cur.GetBytes(n)
	if err != nil {
		return nil, err
	}
	trimmed := trimTrailing(raw, 0x20)
	if err := cur.Align(4); err != nil {
		return nil, err
	}
	data := make([]byte, len(trimmed))
	copy(data, trimmed)
	return &Value{Domain: d, payload: BytesVal{Data: data, BitLen: len(data) * 8}, NeedsClear: true}, nil
}

func readFixedBit(cur *wire.Cursor, d *Domain) (*Value, error) {
	byteLen := (d.Precision + 7) / 8
	raw, err := cur.GetBytes(byteLen)
	if err != nil {
		return nil, err
	}
	if err := cur.Align(4); err != nil {
		return nil, err
	}
	data := make([]byte, len(raw))
	copy(data, raw)
	return &Value{Domain: d, payload: BytesVal{Data: data, BitLen: d.Precision}, NeedsClear: true}, nil
}

func trimTrailing(b []byte, pad byte) []byte {
	i := len(b)
	for i > 0 && b[i-1] == pad {
		i--
	}
	return b[:i]
}

func readNumeric(cur *wire.Cursor, d *Domain) (*Value, error) {
	width := numericDiskWidth(d.Precision)
	sign, err := cur.GetUint8()
	if err != nil {
		return nil, err
	}
	digits, err := cur.GetBytes(width)
	if err != nil {
		return nil, err
	}
	if err := cur.Align(4); err != nil {
		return nil, err
	}
	cp := make([]byte, len(digits))
	copy(cp, digits)
	return &Value{
		Domain:     d,
		payload:    NumericVal{Negative: sign != 0, Digits: cp},
		NeedsClear: true,
	}, nil
}

func readSet(cur *wire.Cursor, d *Domain, mode ReadMode) (*Value, error) {
	count, err := cur.GetInt32()
	if err != nil {
		return nil, err
	}
	var elemDomain *Domain
	if len(d.SetDomain) == 1 {
		elemDomain = d.SetDomain[0]
	}
	elems := make([]*Value, 0, count)
	for i := int32(0); i < count; i++ {
		bound, err := cur.GetUint8()
		if err != nil {
			return nil, err
		}
		if bound == 0 {
			elems = append(elems, NewNull(elemDomain))
			continue
		}
		v, err := ReadVal(cur, elemDomain, -1, mode)
		if err != nil {
			return nil, err
		}
		elems = append(elems, v)
	}
	if err := cur.SkipAlign(4); err != nil {
		return nil, err
	}
	return &Value{Domain: d, payload: SetVal{Elements: elems}, NeedsClear: true}, nil
}

func readMidxKey(cur *wire.Cursor, d *Domain, mode ReadMode) (*Value, error) {
	ncol := len(d.SetDomain)
	bound := make([]bool, ncol)
	for i := 0; i < ncol; i++ {
		b, err := cur.GetUint8()
		if err != nil {
			return nil, err
		}
		bound[i] = b != 0
	}
	if err := cur.SkipAlign(4); err != nil {
		return nil, err
	}
	values := make([]*Value, ncol)
	for i, col := range d.SetDomain {
		if !bound[i] {
			values[i] = NewNull(col)
			continue
		}
		v, err := ReadVal(cur, col, -1, mode)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return &Value{Domain: d, payload: MidxKeyVal{Bound: bound, Values: values}, NeedsClear: true}, nil
}
