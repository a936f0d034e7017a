package domain

import (
	"github.com/cuemby/dbtxn/pkg/wire"
)

// WriteVal marshals v onto cur following the original writeval contract:
// fixed-width scalars at their natural offset and alignment, character-family
// types via wire's length-prefixed framing, collections via a recursive
// header-then-elements encoding. Unlike ReadVal it takes no ReadMode.
func WriteVal(cur *wire.Cursor, v *Value) error {
	if v == nil || v.IsNull {
		// A null value of any type writes as a zero-length field: the
		// caller's data_region framing records length 0, so WriteVal itself
		// writes nothing, the counterpart of ReadVal's null handling on decode.
		return nil
	}
	switch v.Domain.Type {
	case Short:
		x, _ := v.AsShort()
		return cur.PutInt16(x)
	case Integer:
		x, _ := v.AsInteger()
		return cur.PutInt32(x)
	case Bigint:
		if err := cur.Align(8); err != nil {
			return err
		}
		x, _ := v.AsBigint()
		return cur.PutInt64(x)
	case Float:
		x, _ := v.AsFloat()
		return cur.PutFloat32(x)
	case Double:
		if err := cur.Align(8); err != nil {
			return err
		}
		x, _ := v.AsDouble()
		return cur.PutFloat64(x)
	case Date:
		x, _ := v.payload.(dateVal)
		return cur.PutInt32(int32(x))
	case Time:
		x, _ := v.payload.(timeVal)
		return cur.PutInt32(int32(x))
	case Timestamp:
		x, _ := v.payload.(timestampVal)
		if err := cur.Align(8); err != nil {
			return err
		}
		return cur.PutInt64(int64(x))
	case Datetime:
		if err := cur.Align(8); err != nil {
			return err
		}
		dt, _ := v.AsDatetime()
		if err := cur.PutInt32(dt.Date); err != nil {
			return err
		}
		return cur.PutInt32(dt.Time)
	case Monetary:
		if err := cur.Align(8); err != nil {
			return err
		}
		m, _ := v.AsMonetary()
		if err := cur.PutInt16(m.Currency); err != nil {
			return err
		}
		if err := cur.Align(8); err != nil {
			return err
		}
		return cur.PutFloat64(m.Amount)
	case Numeric:
		n, _ := v.AsNumeric()
		return writeNumeric(cur, v.Domain, n)
	case Character, NChar:
		b, _ := v.AsBytes()
		return writeFixedChar(cur, v.Domain, b)
	case VarChar, VarNChar:
		b, _ := v.AsBytes()
		return cur.PutVarchar(b.Data)
	case Bit:
		b, _ := v.AsBytes()
		return writeFixedBit(cur, v.Domain, b)
	case VarBit:
		b, _ := v.AsBytes()
		return cur.PutVarbit(b.Data, b.BitLen)
	case OIDType, Object:
		return writeOIDOrObject(cur, v)
	case Set, Multiset, Sequence, Vobj:
		s, _ := v.AsSet()
		return writeSet(cur, v.Domain, s)
	case MidxKey:
		mk, _ := v.AsMidxKey()
		return writeMidxKey(cur, v.Domain, mk)
	default:
		return NewError(InvalidArgument, "codec.go", 0, "unsupported type in WriteVal", v.Domain.Type.String())
	}
}

func writeOIDOrObject(cur *wire.Cursor, v *Value) error {
	if o, ok := v.AsOID(); ok {
		return cur.PutOID(wire.OID{Volume: o.Volume, Page: o.Page, Slot: o.Slot})
	}
	// An Object handle carries no meaning on the wire; the workspace layer
	// resolves it to an OID before WriteVal is ever called on it. Reaching
	// this branch means a caller skipped that resolution step.
	return NewError(InvalidArgument, "codec.go", 0, "Object value must be resolved to OID before WriteVal")
}

func writeFixedChar(cur *wire.Cursor, d *Domain, b BytesVal) error {
	if d.Precision != FloatingPrecision && len(b.Data) > d.Precision {
		return NewError(DomainConflict, "codec.go", 0, "char length exceeds precision")
	}
	padChar := byte(0x20)
	if d.Type == NChar && d.Codeset > 1 {
		padChar = 0x20 // codeset-specific pad char resolution is left to the codeset table
	}
	if err := cur.PutBytes(b.Data); err != nil {
		return err
	}
	pad := d.Precision - len(b.Data)
	if pad < 0 {
		pad = 0
	}
	for i := 0; i < pad; i++ {
		if err := cur.PutUint8(padChar); err != nil {
			return err
		}
	}
	return cur.Align(4)
}

func writeFixedBit(cur *wire.Cursor, d *Domain, b BytesVal) error {
	if d.Precision != FloatingPrecision && b.BitLen > d.Precision {
		return NewError(DomainConflict, "codec.go", 0, "bit length exceeds precision")
	}
	if err := cur.PutBytes(b.Data); err != nil {
		return err
	}
	byteLen := (d.Precision + 7) / 8
	pad := byteLen - len(b.Data)
	for i := 0; i < pad; i++ {
		if err := cur.PutUint8(0x00); err != nil {
			return err
		}
	}
	return cur.Align(4)
}

func writeNumeric(cur *wire.Cursor, d *Domain, n NumericVal) error {
	width := numericDiskWidth(d.Precision)
	if len(n.Digits) > width {
		return NewError(DomainConflict, "codec.go", 0, "numeric digit count exceeds precision width")
	}
	sign := byte(0)
	if n.Negative {
		sign = 1
	}
	if err := cur.PutUint8(sign); err != nil {
		return err
	}
	if err := cur.PutBytes(n.Digits); err != nil {
		return err
	}
	for i := len(n.Digits); i < width; i++ {
		if err := cur.PutUint8(0); err != nil {
			return err
		}
	}
	return cur.Align(4)
}

// numericDiskWidth derives the packed-decimal byte width from precision:
// two decimal digits per byte, sign carried separately.
func numericDiskWidth(precision int) int {
	return (precision + 1) / 2
}

func writeSet(cur *wire.Cursor, d *Domain, s SetVal) error {
	if s.Packed != nil {
		// Bypass materialisation: copy the still-packed on-disk image
		// verbatim: the set-family write fast path.
		return cur.PutBytes(s.Packed)
	}
	if err := cur.PutInt32(int32(len(s.Elements))); err != nil {
		return err
	}
	for _, e := range s.Elements {
		bound := uint8(0)
		if !e.IsNull {
			bound = 1
		}
		if err := cur.PutUint8(bound); err != nil {
			return err
		}
		if err := WriteVal(cur, e); err != nil {
			return err
		}
	}
	return cur.Align(4)
}

func writeMidxKey(cur *wire.Cursor, d *Domain, mk MidxKeyVal) error {
	for _, b := range mk.Bound {
		v := uint8(0)
		if b {
			v = 1
		}
		if err := cur.PutUint8(v); err != nil {
			return err
		}
	}
	if err := cur.Align(4); err != nil {
		return err
	}
	for i, col := range d.SetDomain {
		if i < len(mk.Bound) && !mk.Bound[i] {
			continue
		}
		if i >= len(mk.Values) {
			continue
		}
		_ = col
		if err := WriteVal(cur, mk.Values[i]); err != nil {
			return err
		}
	}
	return nil
}
