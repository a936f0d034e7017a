package session

import (
	"strconv"

	"github.com/cuemby/dbtxn/pkg/domain"
	"github.com/cuemby/dbtxn/pkg/events"
	"github.com/cuemby/dbtxn/pkg/protocol"
	"github.com/cuemby/dbtxn/pkg/wire"
	"github.com/cuemby/dbtxn/pkg/workspace"
)

// CreateObject stages a new instance of classOID with the given field
// values in the workspace cache, assigning it a temporary client-side OID.
// The temporary OID is resolved to a permanent one the next time the
// workspace flushes (Commit, Savepoint, or an explicit Flush call), via a
// locator_assign_oid round trip; CreateObject itself performs no RPC.
func (s *Session) CreateObject(classOID wire.OID, isRealClass bool, fields []*domain.Value) (wire.OID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateActive {
		return wire.OID{}, domain.NewError(domain.Aborted, "object.go", 0, "create")
	}
	image, err := encodeFields(fields)
	if err != nil {
		return wire.OID{}, err
	}
	s.tempSeq++
	oid := workspace.NewTempOID(s.tempSeq)
	if err := s.ws.MarkDirty(workspace.DirtyObject{
		OID:         oid,
		ClassOID:    classOID,
		Operation:   protocol.CopyOpInsert,
		Image:       image,
		IsRealClass: isRealClass,
	}); err != nil {
		return wire.OID{}, err
	}
	s.publishObjectDirty("create", oid)
	return oid, nil
}

// UpdateObject stages a field update for oid, an already-permanent object
// identity (one returned by a prior CreateObject's flush, or read back from
// the server). Like CreateObject it only marks the workspace cache dirty;
// nothing is sent to the server until the next flush.
func (s *Session) UpdateObject(oid, classOID wire.OID, isRealClass bool, fields []*domain.Value) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateActive {
		return domain.NewError(domain.Aborted, "object.go", 0, "update")
	}
	image, err := encodeFields(fields)
	if err != nil {
		return err
	}
	if err := s.ws.MarkDirty(workspace.DirtyObject{
		OID:         oid,
		ClassOID:    classOID,
		Operation:   protocol.CopyOpUpdate,
		Image:       image,
		IsRealClass: isRealClass,
	}); err != nil {
		return err
	}
	s.publishObjectDirty("update", oid)
	return nil
}

// Flush forces every dirty cached object out to the server now, rather than
// waiting for the next commit or savepoint to trigger it implicitly.
func (s *Session) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateActive {
		return domain.NewError(domain.Aborted, "object.go", 0, "flush")
	}
	return s.flush()
}

func (s *Session) publishObjectDirty(op string, oid wire.OID) {
	if s.events == nil {
		return
	}
	s.events.Publish(&events.Event{
		Type:    events.EventObjectDirty,
		Message: op,
		Metadata: map[string]string{
			"volume": strconv.Itoa(int(oid.Volume)),
			"page":   strconv.Itoa(int(oid.Page)),
			"slot":   strconv.Itoa(int(oid.Slot)),
		},
	})
}

// encodeFields writes each field through domain.WriteVal in order, sized up
// front via LengthVal so the resulting image matches the layout FlushAll's
// CopyArea packing expects per dirty object.
func encodeFields(fields []*domain.Value) ([]byte, error) {
	size := 0
	for _, f := range fields {
		size += domain.LengthVal(f, true)
	}
	w := wire.NewWriter(size)
	for _, f := range fields {
		if err := domain.WriteVal(w, f); err != nil {
			return nil, err
		}
	}
	return w.Bytes(), nil
}
