package domain

// Value is the tagged union carried through the domain/value system: a
// discriminated payload, an is-null flag, and a needs-clear flag marking
// whether the payload's heap allocation is owned by this Value. Go has no
// native union, so the payload is carried as a single `any` whose dynamic
// type is fixed by Domain.Type; accessors below narrow it back, matching
// an exhaustive-switch dispatch over a table-of-function-pointers one.
type Value struct {
	Domain     *Domain
	IsNull     bool
	NeedsClear bool

	payload any
}

// scalar payload kinds, keyed by the subset of TypeID that is fixed-width.
type (
	shortVal     int16
	intVal       int32
	bigintVal    int64
	floatVal     float32
	doubleVal    float64
	dateVal      int32 // days since epoch
	timeVal      int32 // seconds since midnight
	timestampVal int64
)

// DatetimeVal is the (date, millisecond-of-day) pair backing the Datetime
// type id.
type DatetimeVal struct {
	Date int32
	Time int32
}

// MonetaryVal is the (currency, amount) pair backing the Monetary type id.
type MonetaryVal struct {
	Currency int16
	Amount   float64
}

// NumericVal is a fixed-precision decimal: sign-magnitude packed digits
// plus the (precision, scale) recorded on the owning Domain.
type NumericVal struct {
	Negative bool
	Digits   []byte // packed BCD-like digit bytes, most significant first
}

// BytesVal backs every character/bit-family type (Character, VarChar,
// NChar, VarNChar, Bit, VarBit). BitLen is meaningful only for Bit/VarBit;
// for byte-oriented types it is len(Data)*8.
type BytesVal struct {
	Data   []byte
	BitLen int
}

// OIDVal backs the OID type id; ObjectVal backs the client-side Object
// handle (a workspace index rather than a raw triple).
type OIDVal struct {
	Volume, Page, Slot int32
}

// ObjectVal is a workspace-object handle: an opaque index into the
// session-owned object table: a weak reference into it, resolving the
// Value/Workspace-Object cyclic-reference problem without the two
// packages importing each other. Workspace is implemented in pkg/workspace.
type ObjectVal struct {
	Handle uint64
}

// SetVal backs Set, Multiset, Sequence and Vobj. It is a set reference: a
// materialised element slice, or (if Packed is non-nil) a still-packed
// on-disk image that write can copy verbatim without materialising.
type SetVal struct {
	Elements []*Value
	Packed   []byte
}

// MidxKeyVal backs MidxKey: an NCOL bound-bitmap plus per-column values.
type MidxKeyVal struct {
	Bound  []bool
	Values []*Value
}

func NewNull(d *Domain) *Value {
	return &Value{Domain: d, IsNull: true}
}

func NewShort(v int16) *Value     { return &Value{Domain: NewScalarDomain(Short, 0, 0), payload: shortVal(v)} }
func NewInteger(v int32) *Value   { return &Value{Domain: NewScalarDomain(Integer, 0, 0), payload: intVal(v)} }
func NewBigint(v int64) *Value    { return &Value{Domain: NewScalarDomain(Bigint, 0, 0), payload: bigintVal(v)} }
func NewFloat(v float32) *Value   { return &Value{Domain: NewScalarDomain(Float, 0, 0), payload: floatVal(v)} }
func NewDouble(v float64) *Value  { return &Value{Domain: NewScalarDomain(Double, 0, 0), payload: doubleVal(v)} }

func (v *Value) AsShort() (int16, bool)     { x, ok := v.payload.(shortVal); return int16(x), ok }
func (v *Value) AsInteger() (int32, bool)   { x, ok := v.payload.(intVal); return int32(x), ok }
func (v *Value) AsBigint() (int64, bool)    { x, ok := v.payload.(bigintVal); return int64(x), ok }
func (v *Value) AsFloat() (float32, bool)   { x, ok := v.payload.(floatVal); return float32(x), ok }
func (v *Value) AsDouble() (float64, bool)  { x, ok := v.payload.(doubleVal); return float64(x), ok }

func NewBytes(t TypeID, precision int, data []byte) *Value {
	return &Value{
		Domain:     NewScalarDomain(t, precision, 0),
		payload:    BytesVal{Data: data, BitLen: len(data) * 8},
		NeedsClear: true,
	}
}

func NewBits(t TypeID, precision int, data []byte, bitLen int) *Value {
	return &Value{
		Domain:     NewScalarDomain(t, precision, 0),
		payload:    BytesVal{Data: data, BitLen: bitLen},
		NeedsClear: true,
	}
}

func (v *Value) AsBytes() (BytesVal, bool) { x, ok := v.payload.(BytesVal); return x, ok }

func NewOID(volume, page, slot int32) *Value {
	return &Value{Domain: NewScalarDomain(OIDType, 0, 0), payload: OIDVal{volume, page, slot}}
}

func (v *Value) AsOID() (OIDVal, bool) { x, ok := v.payload.(OIDVal); return x, ok }

func NewObject(handle uint64) *Value {
	return &Value{Domain: NewScalarDomain(Object, 0, 0), payload: ObjectVal{Handle: handle}}
}

func (v *Value) AsObject() (ObjectVal, bool) { x, ok := v.payload.(ObjectVal); return x, ok }

func NewSet(t TypeID, elemDomain *Domain, elements []*Value) *Value {
	return &Value{
		Domain:     &Domain{Type: t, SetDomain: []*Domain{elemDomain}},
		payload:    SetVal{Elements: elements},
		NeedsClear: true,
	}
}

func (v *Value) AsSet() (SetVal, bool) { x, ok := v.payload.(SetVal); return x, ok }

func NewMidxKey(cols []*Domain, bound []bool, values []*Value) *Value {
	return &Value{
		Domain:     &Domain{Type: MidxKey, SetDomain: cols},
		payload:    MidxKeyVal{Bound: bound, Values: values},
		NeedsClear: true,
	}
}

func (v *Value) AsMidxKey() (MidxKeyVal, bool) { x, ok := v.payload.(MidxKeyVal); return x, ok }

func NewMonetary(currency int16, amount float64) *Value {
	return &Value{Domain: NewScalarDomain(Monetary, 0, 0), payload: MonetaryVal{currency, amount}}
}

func (v *Value) AsMonetary() (MonetaryVal, bool) { x, ok := v.payload.(MonetaryVal); return x, ok }

func NewDatetime(date, timeOfDay int32) *Value {
	return &Value{Domain: NewScalarDomain(Datetime, 0, 0), payload: DatetimeVal{date, timeOfDay}}
}

func (v *Value) AsDatetime() (DatetimeVal, bool) { x, ok := v.payload.(DatetimeVal); return x, ok }

func NewNumeric(precision, scale int, negative bool, digits []byte) *Value {
	return &Value{
		Domain:     NewScalarDomain(Numeric, precision, scale),
		payload:    NumericVal{Negative: negative, Digits: digits},
		NeedsClear: true,
	}
}

func (v *Value) AsNumeric() (NumericVal, bool) { x, ok := v.payload.(NumericVal); return x, ok }

// Free releases payload: the payload is dropped, the variant tag is
// cleared and the Value becomes null. Free is
// idempotent — calling it twice, or on a Value whose NeedsClear is false,
// is a no-op.
func (v *Value) Free() {
	if v == nil || !v.NeedsClear {
		return
	}
	v.payload = nil
	v.NeedsClear = false
	v.IsNull = true
}

// SetValue assigns src into dst. copyDeep=true forces a deep copy of any owned
// variable-length payload: a shallow clone operation is forbidden for
// owned variable-length payloads.
func SetValue(dst, src *Value, copyDeep bool) {
	dst.Free()
	dst.Domain = src.Domain
	dst.IsNull = src.IsNull
	if src.IsNull {
		dst.payload = nil
		dst.NeedsClear = false
		return
	}
	if !copyDeep {
		dst.payload = src.payload
		dst.NeedsClear = false
		return
	}
	switch p := src.payload.(type) {
	case BytesVal:
		cp := make([]byte, len(p.Data))
		copy(cp, p.Data)
		dst.payload = BytesVal{Data: cp, BitLen: p.BitLen}
		dst.NeedsClear = true
	case NumericVal:
		cp := make([]byte, len(p.Digits))
		copy(cp, p.Digits)
		dst.payload = NumericVal{Negative: p.Negative, Digits: cp}
		dst.NeedsClear = true
	case SetVal:
		elems := make([]*Value, len(p.Elements))
		for i, e := range p.Elements {
			ec := &Value{}
			SetValue(ec, e, true)
			elems[i] = ec
		}
		dst.payload = SetVal{Elements: elems}
		dst.NeedsClear = true
	case MidxKeyVal:
		vals := make([]*Value, len(p.Values))
		for i, e := range p.Values {
			vc := &Value{}
			SetValue(vc, e, true)
			vals[i] = vc
		}
		bound := make([]bool, len(p.Bound))
		copy(bound, p.Bound)
		dst.payload = MidxKeyVal{Bound: bound, Values: vals}
		dst.NeedsClear = true
	default:
		dst.payload = src.payload
		dst.NeedsClear = false
	}
}
