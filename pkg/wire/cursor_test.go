package wire

import "testing"

func TestPutGetUint32RoundTrip(t *testing.T) {
	// write(Integer(42)) -> 4 bytes [00 00 00 2A]; read -> 42.
	w := NewWriter(4)
	if err := w.PutInt32(42); err != nil {
		t.Fatalf("put: %v", err)
	}
	want := []byte{0x00, 0x00, 0x00, 0x2A}
	if string(w.Bytes()) != string(want) {
		t.Fatalf("bytes = % x, want % x", w.Bytes(), want)
	}

	r := NewReader(w.Bytes())
	got, err := r.GetInt32()
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != 42 {
		t.Fatalf("got %d, want 42", got)
	}
	if r.Pos() != w.Pos() {
		t.Fatalf("read pos %d != write pos %d", r.Pos(), w.Pos())
	}
}

func TestPutVarcharAlignment(t *testing.T) {
	// write(VarChar("hi")) -> [02][68 69][00] then pad to 4-byte boundary.
	w := NewWriter(8)
	if err := w.PutVarchar([]byte("hi")); err != nil {
		t.Fatalf("put: %v", err)
	}
	want := []byte{0x02, 'h', 'i', 0x00}
	if string(w.Bytes()) != string(want) {
		t.Fatalf("bytes = % x, want % x", w.Bytes(), want)
	}
	if w.Pos()%4 != 0 {
		t.Fatalf("cursor not 4-byte aligned after writeval: pos=%d", w.Pos())
	}

	r := NewReader(w.Bytes())
	got, err := r.GetVarchar()
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != "hi" {
		t.Fatalf("got %q, want hi", got)
	}
	if r.Pos() != w.Pos() {
		t.Fatalf("read pos %d != write pos %d", r.Pos(), w.Pos())
	}
}

func TestPutVarcharLongForm(t *testing.T) {
	payload := make([]byte, 300)
	for i := range payload {
		payload[i] = byte(i)
	}
	w := NewWriter(4 + 300 + 1 + 3)
	if err := w.PutVarchar(payload); err != nil {
		t.Fatalf("put: %v", err)
	}
	if w.Bytes()[0] != longFormSentinel {
		t.Fatalf("expected long-form sentinel, got %x", w.Bytes()[0])
	}

	r := NewReader(w.Bytes())
	got, err := r.GetVarchar()
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != string(payload) {
		t.Fatalf("payload mismatch")
	}
}

func TestOverflowSignalled(t *testing.T) {
	w := NewWriter(2)
	if err := w.PutInt32(1); err != ErrOverflow {
		t.Fatalf("expected ErrOverflow, got %v", err)
	}
}

func TestDoubleAlignment(t *testing.T) {
	w := NewWriter(20)
	if err := w.PutUint8(1); err != nil {
		t.Fatal(err)
	}
	l := LSA{PageID: 7, Offset: 3}
	if err := w.PutLSA(l); err != nil {
		t.Fatalf("put lsa: %v", err)
	}
	// pos 1 (uint8) pads up to 8 (LSA's own alignment), then +8 for
	// PageID and +4 for Offset lands at 20.
	if w.Pos() != 20 {
		t.Fatalf("pos = %d, want 20 (uint8 padded to 8-byte boundary, then LSA's 8+4 bytes)", w.Pos())
	}
	r := NewReader(w.Bytes())
	if _, err := r.GetUint8(); err != nil {
		t.Fatal(err)
	}
	got, err := r.GetLSA()
	if err != nil {
		t.Fatalf("get lsa: %v", err)
	}
	if got != l {
		t.Fatalf("got %+v, want %+v", got, l)
	}
}

func TestOIDNullSentinel(t *testing.T) {
	if !NullOID.IsNull() {
		t.Fatal("NullOID.IsNull() should be true")
	}
	w := NewWriter(12)
	if err := w.PutOID(NullOID); err != nil {
		t.Fatal(err)
	}
	r := NewReader(w.Bytes())
	got, err := r.GetOID()
	if err != nil {
		t.Fatal(err)
	}
	if got != NullOID {
		t.Fatalf("got %+v, want NullOID", got)
	}
}
