package domain

import (
	"testing"

	"github.com/cuemby/dbtxn/pkg/wire"
)

func roundTrip(t *testing.T, v *Value) *Value {
	t.Helper()
	cap := LengthVal(v, true)
	if cap == 0 {
		cap = 16
	}
	w := wire.NewWriter(cap)
	if err := WriteVal(w, v); err != nil {
		t.Fatalf("write: %v", err)
	}
	r := wire.NewReader(w.Bytes())
	got, err := ReadVal(r, v.Domain, -1, ObjectMode)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if r.Pos() != w.Pos() {
		t.Fatalf("read pos %d != write pos %d", r.Pos(), w.Pos())
	}
	if w.Pos()%4 != 0 {
		t.Fatalf("cursor not 4-byte aligned after writeval: pos=%d", w.Pos())
	}
	return got
}

func TestIntegerRoundTrip(t *testing.T) {
	v := NewInteger(42)
	got := roundTrip(t, v)
	x, ok := got.AsInteger()
	if !ok || x != 42 {
		t.Fatalf("got %v ok=%v, want 42", x, ok)
	}
}

func TestBigintRoundTripAndAlignment(t *testing.T) {
	v := NewBigint(1 << 40)
	got := roundTrip(t, v)
	x, ok := got.AsBigint()
	if !ok || x != 1<<40 {
		t.Fatalf("got %v, want %v", x, int64(1)<<40)
	}
}

func TestVarcharRoundTrip(t *testing.T) {
	v := NewBytes(VarChar, FloatingPrecision, []byte("hello, world"))
	got := roundTrip(t, v)
	b, ok := got.AsBytes()
	if !ok || string(b.Data) != "hello, world" {
		t.Fatalf("got %q", b.Data)
	}
}

func TestFixedCharPadAndTrim(t *testing.T) {
	v := NewBytes(Character, 10, []byte("abc"))
	got := roundTrip(t, v)
	b, _ := got.AsBytes()
	if string(b.Data) != "abc" {
		t.Fatalf("got %q, want abc (trailing pad trimmed)", b.Data)
	}
}

func TestNullPreservation(t *testing.T) {
	d := NewScalarDomain(Integer, 0, 0)
	v, err := ReadVal(wire.NewReader(nil), d, 0, ObjectMode)
	if err != nil {
		t.Fatalf("read null: %v", err)
	}
	if !v.IsNull {
		t.Fatal("expected IsNull true")
	}
	if v.Domain != d {
		t.Fatal("expected domain to be preserved on null read")
	}
}

func TestPrecisionEnforcement(t *testing.T) {
	v := NewBytes(Character, 4, []byte("abcdef"))
	w := wire.NewWriter(16)
	err := WriteVal(w, v)
	if err == nil {
		t.Fatal("expected DomainConflict for overlong CHAR(4)")
	}
	kind, ok := KindOf(err)
	if !ok || kind != DomainConflict {
		t.Fatalf("got err=%v, want DomainConflict", err)
	}
	if w.Pos() != 0 {
		t.Fatalf("destination must not be mutated on failure, pos=%d", w.Pos())
	}
}

func TestMidxKeyComparatorStopsAtFirstUnequalColumn(t *testing.T) {
	// K1 = (10, NULL, "abc"), K2 = (10, NULL, "abd"); columns 0 and 1 are
	// equal (10==10, both NULL), so the comparison resolves at column 2.
	cols := []*Domain{
		NewScalarDomain(Integer, 0, 0),
		NewScalarDomain(Integer, 0, 0),
		NewScalarDomain(VarChar, FloatingPrecision, 0),
	}
	k1 := NewMidxKey(cols,
		[]bool{true, false, true},
		[]*Value{NewInteger(10), NewNull(cols[1]), NewBytes(VarChar, FloatingPrecision, []byte("abc"))},
	)
	k2 := NewMidxKey(cols,
		[]bool{true, false, true},
		[]*Value{NewInteger(10), NewNull(cols[1]), NewBytes(VarChar, FloatingPrecision, []byte("abd"))},
	)
	startCol := 0
	opts := CmpOptions{TotalOrder: true, StartCol: &startCol}
	r := CmpVal(k1, k2, opts)
	if r != Less {
		t.Fatalf("got %v, want Less", r)
	}
	if startCol != 2 {
		t.Fatalf("got start_col=%d, want 2", startCol)
	}
}

func TestSetOrderInsensitivity(t *testing.T) {
	elemDomain := NewScalarDomain(Integer, 0, 0)
	a := NewSet(Multiset, elemDomain, []*Value{NewInteger(1), NewInteger(2), NewInteger(3)})
	b := NewSet(Multiset, elemDomain, []*Value{NewInteger(3), NewInteger(1), NewInteger(2)})
	if CmpVal(a, b, CmpOptions{}) != Equal {
		t.Fatal("multisets with same elements in different order should compare Equal")
	}

	sa := NewSet(Sequence, elemDomain, []*Value{NewInteger(1), NewInteger(2), NewInteger(3)})
	sb := NewSet(Sequence, elemDomain, []*Value{NewInteger(3), NewInteger(1), NewInteger(2)})
	if CmpVal(sa, sb, CmpOptions{}) == Equal {
		t.Fatal("sequences with same elements in different order should compare non-Equal")
	}
}

func TestSetRoundTrip(t *testing.T) {
	elemDomain := NewScalarDomain(Integer, 0, 0)
	v := NewSet(Sequence, elemDomain, []*Value{NewInteger(1), NewInteger(2), NewInteger(3)})
	got := roundTrip(t, v)
	s, ok := got.AsSet()
	if !ok || len(s.Elements) != 3 {
		t.Fatalf("got %+v", s)
	}
	for i, want := range []int32{1, 2, 3} {
		x, _ := s.Elements[i].AsInteger()
		if x != want {
			t.Fatalf("element %d = %d, want %d", i, x, want)
		}
	}
}

func TestOIDNullRoundTrip(t *testing.T) {
	v := NewOID(-1, -1, -1)
	got := roundTrip(t, v)
	o, _ := got.AsOID()
	if o.Volume != -1 || o.Page != -1 || o.Slot != -1 {
		t.Fatalf("got %+v, want null OID", o)
	}
}
