package session

import (
	"github.com/google/uuid"

	"github.com/cuemby/dbtxn/pkg/domain"
	"github.com/cuemby/dbtxn/pkg/events"
	"github.com/cuemby/dbtxn/pkg/protocol"
	"github.com/cuemby/dbtxn/pkg/wire"
)

// TwoPCStart assigns this transaction a global identifier and registers
// it with the server as a 2PC participant. The session stays ACTIVE;
// TwoPCPrepare moves it to UNACTIVE_2PC_PREPARE. The gtrid is
// client-generated; see DESIGN.md for why.
func (s *Session) TwoPCStart() (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateActive {
		return uuid.UUID{}, domain.NewError(domain.Aborted, "twopc.go", 0, "2pc_start")
	}

	gtrid := uuid.New()
	w := wire.NewWriter(16)
	if err := w.PutBytes(gtrid[:]); err != nil {
		return uuid.UUID{}, err
	}
	if _, err := s.call(protocol.OpTran2PCStart, w.Bytes()); err != nil {
		return uuid.UUID{}, err
	}
	s.hasGtrid = true
	s.gtrid = gtrid
	return gtrid, nil
}

// TwoPCPrepare votes to commit and transitions to the prepared state.
// From here the transaction survives a client disconnect; only
// TwoPCAttachGlobalTran, a coordinator-driven commit, or recovery can
// resolve it.
func (s *Session) TwoPCPrepare() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateActive {
		return domain.NewError(domain.Aborted, "twopc.go", 0, "2pc_prepare")
	}
	if !s.hasGtrid {
		return domain.NewError(domain.InvalidArgument, "twopc.go", 0, "2pc_prepare before 2pc_start")
	}
	if err := s.flush(); err != nil {
		return err
	}
	if _, err := s.call(protocol.OpTran2PCPrepare, nil); err != nil {
		return err
	}
	s.state = StateUnactive2PCPrepare
	if s.events != nil {
		s.events.Publish(&events.Event{Type: events.EventTransactionCommit, Message: "2pc_prepare"})
	}
	return nil
}

// TwoPCRecoveryPrepared asks the server for up to max gtrids left
// prepared by a crashed coordinator, for offline resolution.
func (s *Session) TwoPCRecoveryPrepared(max int32) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w := wire.NewWriter(4)
	if err := w.PutInt32(max); err != nil {
		return nil, err
	}
	reply, err := s.call(protocol.OpTran2PCRecoveryPrepared, w.Bytes())
	if err != nil {
		return nil, err
	}
	if reply == nil || len(reply.ArgRegion) == 0 {
		return nil, nil
	}
	r := wire.NewReader(reply.ArgRegion)
	count, err := r.GetInt32()
	if err != nil {
		return nil, err
	}
	out := make([]uuid.UUID, 0, count)
	for i := int32(0); i < count; i++ {
		raw, err := r.GetBytes(16)
		if err != nil {
			return nil, err
		}
		id, err := uuid.FromBytes(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

// TwoPCAttachGlobalTran reattaches this session to an already-prepared
// global transaction, resuming it as ACTIVE so the client can decide its
// outcome. Any transaction the session currently holds is aborted: its
// dirty workspace objects and savepoints are dropped before the session
// is rebound to gtrid.
func (s *Session) TwoPCAttachGlobalTran(gtrid uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateActive {
		if err := s.ws.AbortMops(false); err != nil {
			return err
		}
		s.savepoints = nil
	}

	w := wire.NewWriter(16)
	if err := w.PutBytes(gtrid[:]); err != nil {
		return err
	}
	if _, err := s.call(protocol.OpTran2PCAttachGlobalTran, w.Bytes()); err != nil {
		return err
	}
	s.state = StateActive
	s.hasGtrid = true
	s.gtrid = gtrid
	s.savepoints = nil
	return nil
}

// SetGlobalTranInfo stores coordinator-supplied bookkeeping data against
// this transaction's gtrid on the server, for later GetGlobalTranInfo
// after a recovery-driven attach.
func (s *Session) SetGlobalTranInfo(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.call(protocol.OpTranSetGlobalTranInfo, data); err != nil {
		return err
	}
	s.globalTranInfo = append([]byte(nil), data...)
	return nil
}

// GetGlobalTranInfo retrieves the bookkeeping data previously stored by
// SetGlobalTranInfo, from the server rather than the local cache, since
// this session may have just been attached via TwoPCAttachGlobalTran.
func (s *Session) GetGlobalTranInfo() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reply, err := s.call(protocol.OpTranGetGlobalTranInfo, nil)
	if err != nil {
		return nil, err
	}
	if reply == nil {
		return nil, nil
	}
	s.globalTranInfo = append([]byte(nil), reply.ArgRegion...)
	return s.globalTranInfo, nil
}

// Gtrid returns the global transaction identifier assigned by
// TwoPCStart or TwoPCAttachGlobalTran, and whether one has been assigned.
func (s *Session) Gtrid() (uuid.UUID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gtrid, s.hasGtrid
}
