package session

import (
	"github.com/cuemby/dbtxn/pkg/domain"
	"github.com/cuemby/dbtxn/pkg/events"
	"github.com/cuemby/dbtxn/pkg/looseend"
	"github.com/cuemby/dbtxn/pkg/metrics"
	"github.com/cuemby/dbtxn/pkg/protocol"
	"github.com/cuemby/dbtxn/pkg/wire"
)

// Reply-status result codes for tran_commit/tran_abort, distinct from the
// reserved transport-level protocol.Status* codes: these classify which
// branch of the transaction state diagram the server's decision took.
const (
	commitResultCommitted             int32 = 0
	commitResultCommittedWithPostpone int32 = 1
	commitResultAborted               int32 = 2
	commitResultAbortedWithLooseEnds  int32 = 3

	abortResultAborted          int32 = 0
	abortResultAbortedWithLoose int32 = 1
)

// Commit flushes the workspace, sends tran_commit, and drives the
// resulting state transition including any client postpone loose ends.
func (s *Session) Commit() (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateActive {
		return s.state, domain.NewError(domain.Aborted, "commit.go", 0, "commit")
	}
	if err := s.flush(); err != nil {
		return s.state, err
	}

	reply, err := s.call(protocol.OpTranCommit, nil)
	if err != nil {
		return s.state, err
	}

	resetOnCommit := false
	result := commitResultCommitted
	if reply != nil && len(reply.ArgRegion) > 0 {
		r := wire.NewReader(reply.ArgRegion)
		if v, err := r.GetInt32(); err == nil {
			result = v
		}
		if b, err := r.GetUint8(); err == nil {
			resetOnCommit = b != 0
		}
	}

	switch result {
	case commitResultCommitted:
		s.state = StateUnactiveCommitted
	case commitResultCommittedWithPostpone:
		s.state = StateUnactiveCommittedWithLooseEnds
		if _, err := looseend.RunPostpone(s.fetcher(), s.dispatch); err != nil {
			return s.state, err
		}
		s.state = StateUnactiveCommitted
		if s.events != nil {
			s.events.Publish(&events.Event{Type: events.EventLooseEndRun, Message: "postpone"})
		}
	case commitResultAborted:
		s.state = StateUnactiveAborted
		_ = s.ws.AbortMops(false)
	case commitResultAbortedWithLooseEnds:
		s.state = StateUnactiveAbortedWithLooseEnds
		if _, err := looseend.RunUndo(s.fetcher(), s.dispatch); err != nil {
			return s.state, err
		}
		s.state = StateUnactiveAborted
		_ = s.ws.AbortMops(false)
	}

	s.savepoints = nil
	_ = s.ws.ClearAllHints(false)
	metrics.TransactionOutcomesTotal.WithLabelValues(s.state.String()).Inc()
	if s.state == StateUnactiveCommitted {
		if s.events != nil {
			s.events.Publish(&events.Event{Type: events.EventTransactionCommit})
		}
	}
	if resetOnCommit {
		s.status = Reset
		if s.events != nil {
			s.events.Publish(&events.Event{Type: events.EventSessionReset, Message: "reset_on_commit"})
		}
	}
	return s.state, nil
}

// Abort rolls the whole transaction back, draining any server-handed undo
// loose ends.
func (s *Session) Abort() (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateActive {
		return s.state, domain.NewError(domain.Aborted, "commit.go", 0, "abort")
	}

	reply, err := s.call(protocol.OpTranAbort, nil)
	if err != nil {
		return s.state, err
	}

	result := abortResultAborted
	if reply != nil && len(reply.ArgRegion) > 0 {
		r := wire.NewReader(reply.ArgRegion)
		if v, err := r.GetInt32(); err == nil {
			result = v
		}
	}

	s.state = StateUnactiveAbortedWithLooseEnds
	if result == abortResultAbortedWithLoose {
		if _, err := looseend.RunUndo(s.fetcher(), s.dispatch); err != nil {
			return s.state, err
		}
	}
	s.state = StateUnactiveAborted
	_ = s.ws.AbortMops(false)
	s.savepoints = nil
	metrics.TransactionOutcomesTotal.WithLabelValues(s.state.String()).Inc()
	if s.events != nil {
		s.events.Publish(&events.Event{Type: events.EventTransactionAbort})
	}
	return s.state, nil
}

func (s *Session) fetcher() looseend.Fetcher {
	return &rpcFetcher{s: s}
}

// rpcFetcher implements looseend.Fetcher over the session's transport,
// pulling deferred actions one at a time via the log_client_get_first/next
// _postpone/_undo RPC pairs.
type rpcFetcher struct{ s *Session }

func (f *rpcFetcher) FirstPostpone() (*looseend.Action, bool, error) {
	return f.s.fetchAction(protocol.OpLogClientGetFirstPostpone, looseend.Postpone)
}

func (f *rpcFetcher) NextPostpone() (*looseend.Action, bool, error) {
	return f.s.fetchAction(protocol.OpLogClientGetNextPostpone, looseend.Postpone)
}

func (f *rpcFetcher) FinishPostpone() error {
	_, err := f.s.call(protocol.OpLogHasFinishedClientPostpone, nil)
	return err
}

func (f *rpcFetcher) FirstUndo() (*looseend.Action, bool, error) {
	return f.s.fetchAction(protocol.OpLogClientGetFirstUndo, looseend.Undo)
}

func (f *rpcFetcher) NextUndo() (*looseend.Action, bool, error) {
	return f.s.fetchAction(protocol.OpLogClientGetNextUndo, looseend.Undo)
}

func (f *rpcFetcher) FinishUndo() error {
	_, err := f.s.call(protocol.OpLogHasFinishedClientUndo, nil)
	return err
}

func (s *Session) fetchAction(op protocol.Op, kind looseend.Kind) (*looseend.Action, bool, error) {
	reply, err := s.call(op, nil)
	if err != nil {
		return nil, false, err
	}
	if reply == nil || len(reply.ArgRegion) == 0 {
		return nil, false, nil
	}
	r := wire.NewReader(reply.ArgRegion)
	has, err := r.GetUint8()
	if err != nil {
		return nil, false, err
	}
	if has == 0 {
		return nil, false, nil
	}
	typ, err := r.GetInt32()
	if err != nil {
		return nil, false, err
	}
	lsa, err := r.GetLSA()
	if err != nil {
		return nil, false, err
	}
	oid, err := r.GetOID()
	if err != nil {
		return nil, false, err
	}
	data, err := r.GetVarchar()
	if err != nil {
		return nil, false, err
	}
	return &looseend.Action{
		Kind: kind,
		Type: looseend.ActionType(typ),
		LSA:  lsa,
		OID:  oid,
		Data: data,
	}, true, nil
}
