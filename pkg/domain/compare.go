package domain

import (
	"bytes"

	"github.com/cuemby/dbtxn/pkg/wire"
)

// CmpVal compares two already-decoded Values under opts, implementing the
// original cmpval contract.
func CmpVal(a, b *Value, opts CmpOptions) CmpResult {
	if a.Domain.Type == MidxKey || b.Domain.Type == MidxKey {
		return cmpMidxKey(a, b, opts)
	}
	if a.IsNull || b.IsNull {
		return cmpNulls(a.IsNull, b.IsNull, opts.TotalOrder)
	}
	if a.Domain.Type != b.Domain.Type && !opts.Coerce {
		return Unknown
	}
	var r CmpResult
	switch a.Domain.Type {
	case Short:
		x, _ := a.AsShort()
		y, _ := b.AsShort()
		r = cmpOrdered(x, y)
	case Integer:
		x, _ := a.AsInteger()
		y, _ := b.AsInteger()
		r = cmpOrdered(x, y)
	case Bigint:
		x, _ := a.AsBigint()
		y, _ := b.AsBigint()
		r = cmpOrdered(x, y)
	case Float:
		x, _ := a.AsFloat()
		y, _ := b.AsFloat()
		r = cmpOrdered(x, y)
	case Double:
		x, _ := a.AsDouble()
		y, _ := b.AsDouble()
		r = cmpOrdered(x, y)
	case Numeric:
		r = cmpNumeric(a, b)
	case Character, VarChar:
		r = cmpCharTrailingSpace(a, b)
	case NChar, VarNChar:
		r = cmpCharTrailingSpace(a, b)
	case Bit, VarBit:
		r = cmpBit(a, b)
	case OIDType, Object:
		r = cmpOID(a, b)
	case Sequence, Vobj:
		r = cmpSequence(a, b, opts)
	case Set, Multiset:
		r = cmpMultisetOrder(a, b, opts)
	default:
		r = Unknown
	}
	return applyOrdering(r, opts.Reverse, a.Domain.IsDesc)
}

// CmpDisk compares two still-encoded byte images of dom, implementing the
// original cmpdisk contract alongside CmpVal's cmpval contract — the two
// stay genuinely distinct operations here the same way they do in the
// original per-type comparator pairs (mr_cmpdisk_* vs mr_cmpval_*),
// including for MidxKey. For a MidxKey domain, CmpDisk walks columns left
// to right exactly as cmpMidxKey does, but reads each column's encoded
// width directly off the wire instead of requiring the whole row decoded
// into a Value first: a comparison that resolves at an early column never
// touches the bytes of the columns after it. For every other domain there
// is no column to skip ahead of, so it decodes the one value on each side
// and defers to CmpVal.
func CmpDisk(a, b []byte, dom *Domain, opts CmpOptions) CmpResult {
	if dom.Type == MidxKey {
		return cmpMidxKeyDisk(a, b, dom, opts)
	}
	va, err := ReadVal(wire.NewReader(a), dom, -1, ObjectMode)
	if err != nil {
		return Unknown
	}
	vb, err := ReadVal(wire.NewReader(b), dom, -1, ObjectMode)
	if err != nil {
		return Unknown
	}
	return CmpVal(va, vb, opts)
}

// cmpMidxKeyDisk is cmpMidxKey's column-walk algorithm run directly over
// encoded bytes: the bound bitmap is read from the wire header on each
// side, columns ordered before the start column are read past with skipVal
// (decoded and discarded, never compared), and only the columns from the
// start column on are compared.
func cmpMidxKeyDisk(a, b []byte, dom *Domain, opts CmpOptions) CmpResult {
	ra := wire.NewReader(a)
	rb := wire.NewReader(b)
	ncol := len(dom.SetDomain)

	boundA, err := readMidxBound(ra, ncol)
	if err != nil {
		return Unknown
	}
	boundB, err := readMidxBound(rb, ncol)
	if err != nil {
		return Unknown
	}

	start := 0
	if opts.StartCol != nil {
		start = *opts.StartCol
	}
	for c := 0; c < start && c < ncol; c++ {
		if boundA[c] {
			if err := skipVal(ra, dom.SetDomain[c]); err != nil {
				return Unknown
			}
		}
		if boundB[c] {
			if err := skipVal(rb, dom.SetDomain[c]); err != nil {
				return Unknown
			}
		}
	}

	for c := start; c < ncol; c++ {
		col := dom.SetDomain[c]
		va, err := readMidxColumn(ra, col, boundA[c])
		if err != nil {
			return Unknown
		}
		vb, err := readMidxColumn(rb, col, boundB[c])
		if err != nil {
			return Unknown
		}
		colOpts := opts
		colOpts.Reverse = false
		var r CmpResult
		if va.IsNull || vb.IsNull {
			r = cmpNulls(va.IsNull, vb.IsNull, opts.TotalOrder)
		} else {
			r = CmpVal(va, vb, colOpts)
		}
		isDesc := col != nil && col.IsDesc
		r = applyOrdering(r, opts.Reverse, isDesc)
		if r != Equal {
			if opts.StartCol != nil {
				*opts.StartCol = c
			}
			return r
		}
	}
	if opts.StartCol != nil {
		*opts.StartCol = ncol - 1
	}
	return Equal
}

func readMidxBound(cur *wire.Cursor, ncol int) ([]bool, error) {
	bound := make([]bool, ncol)
	for i := 0; i < ncol; i++ {
		x, err := cur.GetUint8()
		if err != nil {
			return nil, err
		}
		bound[i] = x != 0
	}
	if err := cur.SkipAlign(4); err != nil {
		return nil, err
	}
	return bound, nil
}

func readMidxColumn(cur *wire.Cursor, col *Domain, isBound bool) (*Value, error) {
	if !isBound {
		return NewNull(col), nil
	}
	return ReadVal(cur, col, -1, ObjectMode)
}

// skipVal advances cur past one encoded column without retaining its
// decoded form, used by cmpMidxKeyDisk to step over columns ordered
// before the comparison's start column.
func skipVal(cur *wire.Cursor, d *Domain) error {
	_, err := ReadVal(cur, d, -1, ObjectMode)
	return err
}

func cmpNulls(aNull, bNull, totalOrder bool) CmpResult {
	if !totalOrder {
		return Unknown
	}
	switch {
	case aNull && bNull:
		return Equal
	case aNull:
		return Less
	default:
		return Greater
	}
}

type ordered interface {
	~int16 | ~int32 | ~int64 | ~float32 | ~float64
}

func cmpOrdered[T ordered](x, y T) CmpResult {
	switch {
	case x < y:
		return Less
	case x > y:
		return Greater
	default:
		return Equal
	}
}

func cmpNumeric(a, b *Value) CmpResult {
	na, _ := a.AsNumeric()
	nb, _ := b.AsNumeric()
	if na.Negative != nb.Negative {
		if na.Negative {
			return Less
		}
		return Greater
	}
	c := bytes.Compare(na.Digits, nb.Digits)
	if na.Negative {
		c = -c
	}
	switch {
	case c < 0:
		return Less
	case c > 0:
		return Greater
	default:
		return Equal
	}
}

// cmpCharTrailingSpace implements unsigned-byte-lexicographic comparison
// with trailing-space equivalence.
func cmpCharTrailingSpace(a, b *Value) CmpResult {
	ba, _ := a.AsBytes()
	bb, _ := b.AsBytes()
	x := trimTrailing(ba.Data, 0x20)
	y := trimTrailing(bb.Data, 0x20)
	c := bytes.Compare(x, y)
	switch {
	case c < 0:
		return Less
	case c > 0:
		return Greater
	default:
		return Equal
	}
}

// cmpBit is unsigned-byte comparison with a bit-length tiebreak.
func cmpBit(a, b *Value) CmpResult {
	ba, _ := a.AsBytes()
	bb, _ := b.AsBytes()
	c := bytes.Compare(ba.Data, bb.Data)
	if c != 0 {
		if c < 0 {
			return Less
		}
		return Greater
	}
	return cmpOrdered(int32(ba.BitLen), int32(bb.BitLen))
}

func cmpOID(a, b *Value) CmpResult {
	oa, _ := a.AsOID()
	ob, _ := b.AsOID()
	if r := cmpOrdered(oa.Volume, ob.Volume); r != Equal {
		return r
	}
	if r := cmpOrdered(oa.Page, ob.Page); r != Equal {
		return r
	}
	return cmpOrdered(oa.Slot, ob.Slot)
}

// cmpSequence is a fixed-shape, order-sensitive comparison: Sequence and
// Vobj of the same elements in a different order compare non-Equal.
func cmpSequence(a, b *Value, opts CmpOptions) CmpResult {
	sa, _ := a.AsSet()
	sb, _ := b.AsSet()
	if len(sa.Elements) != len(sb.Elements) {
		return cmpOrdered(int32(len(sa.Elements)), int32(len(sb.Elements)))
	}
	for i := range sa.Elements {
		r := CmpVal(sa.Elements[i], sb.Elements[i], opts)
		if r != Equal {
			return r
		}
	}
	return Equal
}

// cmpMultisetOrder is order-insensitive: it sorts a canonical key for each
// side's elements and compares the sorted sequences, so Set/Multiset
// containing the same elements in a different order compare Equal.
func cmpMultisetOrder(a, b *Value, opts CmpOptions) CmpResult {
	sa, _ := a.AsSet()
	sb, _ := b.AsSet()
	if len(sa.Elements) != len(sb.Elements) {
		return Unknown
	}
	sortedA := sortedCopy(sa.Elements, opts)
	sortedB := sortedCopy(sb.Elements, opts)
	for i := range sortedA {
		if CmpVal(sortedA[i], sortedB[i], opts) != Equal {
			return Unknown
		}
	}
	return Equal
}

func sortedCopy(vs []*Value, opts CmpOptions) []*Value {
	out := make([]*Value, len(vs))
	copy(out, vs)
	o2 := opts
	o2.Reverse = false
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && CmpVal(out[j-1], out[j], o2) == Greater; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

// cmpMidxKey walks columns left to right starting at *opts.StartCol,
// respecting each column's is_desc, and stops at the first inequality,
// writing the column index back to *opts.StartCol. NULLs are handled
// per opts.TotalOrder at each column.
func cmpMidxKey(a, b *Value, opts CmpOptions) CmpResult {
	mka, okA := a.AsMidxKey()
	mkb, okB := b.AsMidxKey()
	if !okA || !okB {
		return Unknown
	}
	start := 0
	if opts.StartCol != nil {
		start = *opts.StartCol
	}
	ncol := len(a.Domain.SetDomain)
	for c := start; c < ncol && c < len(mka.Values) && c < len(mkb.Values); c++ {
		colOpts := opts
		colOpts.Reverse = false
		va, vb := mka.Values[c], mkb.Values[c]
		var r CmpResult
		if va.IsNull || vb.IsNull {
			r = cmpNulls(va.IsNull, vb.IsNull, opts.TotalOrder)
		} else {
			r = CmpVal(va, vb, colOpts)
		}
		isDesc := false
		if c < len(a.Domain.SetDomain) && a.Domain.SetDomain[c] != nil {
			isDesc = a.Domain.SetDomain[c].IsDesc
		}
		r = applyOrdering(r, opts.Reverse, isDesc)
		if r != Equal {
			if opts.StartCol != nil {
				*opts.StartCol = c
			}
			return r
		}
	}
	if opts.StartCol != nil {
		*opts.StartCol = ncol - 1
	}
	return Equal
}
