package session

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/cuemby/dbtxn/pkg/dbconfig"
	"github.com/cuemby/dbtxn/pkg/domain"
	"github.com/cuemby/dbtxn/pkg/events"
	"github.com/cuemby/dbtxn/pkg/looseend"
	"github.com/cuemby/dbtxn/pkg/metrics"
	"github.com/cuemby/dbtxn/pkg/protocol"
	"github.com/cuemby/dbtxn/pkg/wire"
	"github.com/cuemby/dbtxn/pkg/workspace"
)

// Transport is the narrow RPC surface Session needs. *transport.CallClient
// satisfies it; tests supply a fake.
type Transport interface {
	Call(op protocol.Op, arg []byte, data ...[]byte) (*protocol.Frame, error)
	Send(op protocol.Op, arg []byte) error
}

// systemSavepointPrefix marks an internally generated savepoint name.
// System-internal savepoints never appear in, or mutate, the user-visible
// savepoint list.
const systemSavepointPrefix = "$sys$"

func isSystemSavepoint(name string) bool {
	return strings.HasPrefix(name, systemSavepointPrefix)
}

// Session tracks one client/server transaction and drives its
// commit/abort/savepoint/2PC state machine. The RPC-issuing methods (and
// IsActive and Gtrid) are guarded by an internal mutex; the plain
// accessors, Savepoints and DirtyObjectCount take no lock. Callers must not invoke methods
// on the same Session concurrently from multiple goroutines — the mutex
// only protects this struct's own bookkeeping, not transport-level
// reentrancy.
type Session struct {
	mu sync.Mutex

	id        int32
	transport Transport
	ws        *workspace.Workspace
	dispatch  *looseend.Dispatcher
	events    *events.Broker

	isolation      dbconfig.Isolation
	lockWaitMillis int32
	asyncWorkspace bool
	status         ConnectionStatus
	state          State

	savepoints []string // newest first, user-scoped only

	tempSeq int32 // counter handed to workspace.NewTempOID for each staged create

	hasGtrid       bool
	gtrid          uuid.UUID
	globalTranInfo []byte
}

// New constructs a Session bound to an already-established transport
// stream and a per-session workspace.
func New(id int32, t Transport, ws *workspace.Workspace, d *looseend.Dispatcher, b *events.Broker, iso dbconfig.Isolation, lockWaitSecs int32, asyncWS bool) *Session {
	s := &Session{
		id:             id,
		transport:      t,
		ws:             ws,
		dispatch:       d,
		events:         b,
		isolation:      iso,
		asyncWorkspace: asyncWS,
		status:         Connected,
		state:          StateActive,
	}
	s.lockWaitMillis = waitSecsToMillis(lockWaitSecs)
	return s
}

func waitSecsToMillis(secs int32) int32 {
	if secs < 0 {
		return -1
	}
	return secs * 1000
}

func (s *Session) ID() int32                     { return s.id }
func (s *Session) State() State                  { return s.state }
func (s *Session) Status() ConnectionStatus      { return s.status }
func (s *Session) Isolation() dbconfig.Isolation { return s.isolation }
func (s *Session) LockWaitMillis() int32         { return s.lockWaitMillis }
func (s *Session) AsyncWorkspace() bool          { return s.asyncWorkspace }

// Savepoints returns the current user savepoint list, newest first. The
// returned slice is a copy; callers must not mutate it.
func (s *Session) Savepoints() []string {
	out := make([]string, len(s.savepoints))
	copy(out, s.savepoints)
	return out
}

// IsActive reports whether the session currently has a transaction in
// progress. Satisfies pkg/metrics' SessionStats.
func (s *Session) IsActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateActive
}

// DirtyObjectCount reports the workspace's pending-flush object count.
// Satisfies pkg/metrics' SessionStats.
func (s *Session) DirtyObjectCount() int {
	n, err := s.ws.DirtyCount()
	if err != nil {
		return 0
	}
	return n
}

// call issues op through the transport and, on success, checks the reply
// for the reserved unilateral-abort status before returning it to the
// caller. Every RPC-issuing method in this package goes through call so
// a unilateral abort ("the first subsequent RPC on the session returns
// Aborted") is handled uniformly.
func (s *Session) call(op protocol.Op, arg []byte, data ...[]byte) (*protocol.Frame, error) {
	reply, err := s.transport.Call(op, arg, data...)
	if err != nil {
		if s.state == StateActive {
			s.handleUnilateralAbort()
			return nil, domain.NewError(domain.ServerDownUnilaterallyAborted, "session.go", 0, op.String())
		}
		return nil, domain.NewError(domain.NetworkFailure, "session.go", 0, op.String(), err.Error())
	}
	if reply != nil && reply.Status == protocol.StatusUnilateralAbort {
		s.handleUnilateralAbort()
		return nil, domain.NewError(domain.Aborted, "session.go", 0, op.String())
	}
	return reply, nil
}

// handleUnilateralAbort resets the session to a clean aborted state after
// detecting a server-originated abort.
func (s *Session) handleUnilateralAbort() {
	s.state = StateUnactiveAborted
	s.savepoints = nil
	_ = s.ws.AbortMops(false)
	metrics.UnilateralAbortsTotal.Inc()
	if s.events != nil {
		s.events.Publish(&events.Event{
			Type:     events.EventUnilateralAbort,
			Message:  fmt.Sprintf("session %d unilaterally aborted", s.id),
			Metadata: map[string]string{"session_id": fmt.Sprintf("%d", s.id)},
		})
	}
}

func putBoolByte(c *wire.Cursor, v bool) error {
	if v {
		return c.PutUint8(1)
	}
	return c.PutUint8(0)
}

func (s *Session) flush() error {
	needs, err := s.ws.NeedsFlush()
	if err != nil {
		return fmt.Errorf("session: checking flush state: %w", err)
	}
	if !needs {
		return nil
	}
	ca, err := s.ws.FlushAll(s.resolvePermanentOID)
	if err != nil {
		return fmt.Errorf("session: packing flush: %w", err)
	}
	if len(ca.Descriptors) == 0 {
		return nil
	}
	encoded, err := ca.Encode()
	if err != nil {
		return fmt.Errorf("session: encoding copy area: %w", err)
	}
	if _, err := s.call(protocol.OpLocatorForce, nil, encoded); err != nil {
		return err
	}
	return nil
}

// resolvePermanentOID is the NeedPermanentOID fixup FlushAll invokes while
// packing: it asks the server for a permanent OID for a client-assigned
// temporary one.
func (s *Session) resolvePermanentOID(temp wire.OID) (wire.OID, error) {
	w := wire.NewWriter(12)
	if err := w.PutOID(temp); err != nil {
		return wire.OID{}, err
	}
	reply, err := s.call(protocol.OpLocatorAssignOID, w.Bytes())
	if err != nil {
		return wire.OID{}, err
	}
	r := wire.NewReader(reply.ArgRegion)
	return r.GetOID()
}
