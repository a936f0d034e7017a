package protocol

import "github.com/cuemby/dbtxn/pkg/wire"

// ListIDKind distinguishes the server-side cursor shapes query_result.c
// (see _examples/original_source) multiplexes through a single query
// result handle.
type ListIDKind int32

const (
	ListIDEmpty ListIDKind = iota
	ListIDTempFile
	ListIDCursor
)

// QueryResult mirrors query_result.c's per-statement cursor state: a
// list-id identifying the server-side result set, the last fetched page,
// and a tuple cursor position within that page. It is a plain carrier:
// nothing in it issues RPCs, and AdvanceLocal leaves fetching the next
// page (OpQueryNextPage) to the caller.
type QueryResult struct {
	ListIDKind    ListIDKind
	QueryID       int64
	LastPageID    int32
	TupleCount    int32
	CurrentTuple  int32
	EOF           bool
}

// Encode packs the fixed-layout scalar fields (no variable-length data —
// the tuple rows themselves travel in a separate data region, decoded by
// the caller via pkg/domain against the statement's output domains).
func (qr *QueryResult) Encode() ([]byte, error) {
	w := wire.NewWriter(4 + 8 + 4 + 4 + 4 + 4)
	if err := w.PutInt32(int32(qr.ListIDKind)); err != nil {
		return nil, err
	}
	if err := w.Align(8); err != nil {
		return nil, err
	}
	if err := w.PutInt64(qr.QueryID); err != nil {
		return nil, err
	}
	if err := w.PutInt32(qr.LastPageID); err != nil {
		return nil, err
	}
	if err := w.PutInt32(qr.TupleCount); err != nil {
		return nil, err
	}
	if err := w.PutInt32(qr.CurrentTuple); err != nil {
		return nil, err
	}
	eof := int32(0)
	if qr.EOF {
		eof = 1
	}
	return append(w.Bytes(), byte(eof)), nil
}

// DecodeQueryResult is the inverse of Encode.
func DecodeQueryResult(buf []byte) (*QueryResult, error) {
	r := wire.NewReader(buf)
	qr := &QueryResult{}
	kind, err := r.GetInt32()
	if err != nil {
		return nil, err
	}
	qr.ListIDKind = ListIDKind(kind)
	if err := r.SkipAlign(8); err != nil {
		return nil, err
	}
	if qr.QueryID, err = r.GetInt64(); err != nil {
		return nil, err
	}
	if qr.LastPageID, err = r.GetInt32(); err != nil {
		return nil, err
	}
	if qr.TupleCount, err = r.GetInt32(); err != nil {
		return nil, err
	}
	if qr.CurrentTuple, err = r.GetInt32(); err != nil {
		return nil, err
	}
	eof, err := r.GetUint8()
	if err != nil {
		return nil, err
	}
	qr.EOF = eof != 0
	return qr, nil
}

// AdvanceLocal moves the tuple cursor forward by n rows within the already
// fetched page, returning false once the page is exhausted (the caller
// must then issue OpQueryNextPage).
func (qr *QueryResult) AdvanceLocal(n int32) bool {
	qr.CurrentTuple += n
	return qr.CurrentTuple < qr.TupleCount
}
