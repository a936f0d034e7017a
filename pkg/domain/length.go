package domain

// LengthVal returns the on-disk byte size v would occupy if written via
// WriteVal, without actually encoding it — used by pkg/session
// (encodeFields) to size an object image buffer before allocating it. disk mirrors the original CUBRID
// lengthval(value, disk?) parameter; this client never needs the
// separate in-memory size (see DESIGN.md's note on InitMem/SetMem/GetMem),
// so disk is accepted for interface parity but always produces the disk
// size.
func LengthVal(v *Value, disk bool) int {
	if v == nil || v.IsNull {
		return 0
	}
	switch v.Domain.Type {
	case Short:
		return 2
	case Integer, Float, Date, Time:
		return 4
	case Bigint, Double, Timestamp:
		return 8 + 7 // worst-case alignment padding included
	case Datetime:
		return 8 + 7 + 8
	case Monetary:
		return 8 + 7 + 2 + 8 + 7
	case Numeric:
		return alignUp(1+numericDiskWidth(v.Domain.Precision), 4)
	case Character, NChar:
		return alignUp(v.Domain.Precision, 4)
	case VarChar, VarNChar:
		b, _ := v.AsBytes()
		return alignUp(varlenPrefixSize(len(b.Data))+len(b.Data)+1, 4)
	case Bit:
		return alignUp((v.Domain.Precision+7)/8, 4)
	case VarBit:
		b, _ := v.AsBytes()
		byteLen := (b.BitLen + 7) / 8
		return alignUp(varlenPrefixSize(b.BitLen)+byteLen+1, 4)
	case OIDType, Object:
		return 12
	case Set, Multiset, Sequence, Vobj:
		s, _ := v.AsSet()
		if s.Packed != nil {
			return len(s.Packed)
		}
		total := 4
		for _, e := range s.Elements {
			total += 1 + LengthVal(e, disk)
		}
		return alignUp(total, 4)
	case MidxKey:
		mk, _ := v.AsMidxKey()
		total := alignUp(len(mk.Bound), 4)
		for i, col := range v.Domain.SetDomain {
			if i < len(mk.Bound) && !mk.Bound[i] {
				continue
			}
			if i < len(mk.Values) {
				total += LengthVal(mk.Values[i], disk)
				_ = col
			}
		}
		return total
	default:
		return 0
	}
}

func varlenPrefixSize(n int) int {
	if n <= shortFormLimitExported {
		return 1
	}
	return 5
}

// shortFormLimitExported mirrors wire's unexported shortFormLimit constant;
// kept in sync manually since pkg/wire intentionally exposes no constant
// for it (callers are expected to go through Put/GetVarchar, not
// precompute framing size) — this is the one place that needs the number
// ahead of encoding, to size the request buffer.
const shortFormLimitExported = 254

func alignUp(n, align int) int {
	rem := n % align
	if rem == 0 {
		return n
	}
	return n + (align - rem)
}
