package session

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cuemby/dbtxn/pkg/dbconfig"
	"github.com/cuemby/dbtxn/pkg/events"
	"github.com/cuemby/dbtxn/pkg/looseend"
	"github.com/cuemby/dbtxn/pkg/protocol"
	"github.com/cuemby/dbtxn/pkg/wire"
	"github.com/cuemby/dbtxn/pkg/workspace"
)

// fakeTransport scripts per-op replies for session tests; unscripted ops
// get an empty success reply. data keeps the data regions of the most
// recent call of each op.
type fakeTransport struct {
	scripts map[protocol.Op][]func(arg []byte) (*protocol.Frame, error)
	sent    []protocol.Op
	data    map[protocol.Op][][]byte
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		scripts: make(map[protocol.Op][]func(arg []byte) (*protocol.Frame, error)),
		data:    make(map[protocol.Op][][]byte),
	}
}

func (f *fakeTransport) on(op protocol.Op, fn func(arg []byte) (*protocol.Frame, error)) {
	f.scripts[op] = append(f.scripts[op], fn)
}

func (f *fakeTransport) Call(op protocol.Op, arg []byte, data ...[]byte) (*protocol.Frame, error) {
	f.sent = append(f.sent, op)
	f.data[op] = data
	if q := f.scripts[op]; len(q) > 0 {
		fn := q[0]
		f.scripts[op] = q[1:]
		return fn(arg)
	}
	return &protocol.Frame{Op: op, Status: protocol.StatusOK}, nil
}

func (f *fakeTransport) Send(op protocol.Op, arg []byte) error {
	f.sent = append(f.sent, op)
	return nil
}

func newTestSession(t *testing.T, tr *fakeTransport) *Session {
	t.Helper()
	ws, err := workspace.Open(t.TempDir(), 1)
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close() })
	d := looseend.NewDispatcher()
	b := events.NewBroker()
	return New(1, tr, ws, d, b, dbconfig.IsolationRC, 30, false)
}

func encodeAction(t *testing.T, has bool, typ int32, lsa wire.LSA, oid wire.OID, data []byte) []byte {
	t.Helper()
	w := wire.NewWriter(64)
	var hv uint8
	if has {
		hv = 1
	}
	require.NoError(t, w.PutUint8(hv))
	if !has {
		return w.Bytes()
	}
	require.NoError(t, w.PutInt32(typ))
	require.NoError(t, w.PutLSA(lsa))
	require.NoError(t, w.PutOID(oid))
	require.NoError(t, w.PutVarchar(data))
	return w.Bytes()
}

// TestSavepointStackPartialAbort checks savepoint("sp1");
// savepoint("sp2"); partial_abort("sp1") must empty the user savepoint
// list and leave the session ACTIVE.
func TestSavepointStackPartialAbort(t *testing.T) {
	tr := newFakeTransport()
	s := newTestSession(t, tr)

	require.NoError(t, s.Savepoint("sp1"))
	require.NoError(t, s.Savepoint("sp2"))
	require.Equal(t, []string{"sp2", "sp1"}, s.Savepoints())

	require.NoError(t, s.PartialAbort("sp1"))
	require.Empty(t, s.Savepoints())
	require.Equal(t, StateActive, s.State())
}

// TestSavepointCaseInsensitiveNewest verifies that partial_abort matches
// names case-insensitively and addresses the newest entry with that name.
func TestSavepointCaseInsensitiveNewest(t *testing.T) {
	tr := newFakeTransport()
	s := newTestSession(t, tr)

	require.NoError(t, s.Savepoint("Alpha"))
	require.NoError(t, s.Savepoint("beta"))
	require.NoError(t, s.Savepoint("ALPHA"))

	// newest-first: ["ALPHA", "beta", "Alpha"]; partial_abort("alpha")
	// addresses the newest match (index 0) and drops it plus everything
	// newer, leaving the older entries intact.
	require.NoError(t, s.PartialAbort("alpha"))
	require.Equal(t, []string{"beta", "Alpha"}, s.Savepoints())
}

func TestSavepointUnknownNameRejected(t *testing.T) {
	tr := newFakeTransport()
	s := newTestSession(t, tr)

	require.NoError(t, s.Savepoint("sp1"))
	err := s.PartialAbort("nope")
	require.Error(t, err)
	require.Equal(t, []string{"sp1"}, s.Savepoints())
}

func TestSystemSavepointNeverJoinsUserList(t *testing.T) {
	tr := newFakeTransport()
	s := newTestSession(t, tr)

	require.NoError(t, s.Savepoint("$sys$internal1"))
	require.Empty(t, s.Savepoints())
}

// TestCommitWithPostponeDrainsLooseEnds exercises the
// UNACTIVE_COMMITTED_WITH_CLIENT_LOOSE_ENDS branch and confirms the
// dispatcher sees the server-handed postpone action.
func TestCommitWithPostponeDrainsLooseEnds(t *testing.T) {
	tr := newFakeTransport()
	s := newTestSession(t, tr)

	const actionType looseend.ActionType = 7
	var ran []looseend.Action
	s.dispatch.Register(actionType, func(a looseend.Action) error {
		ran = append(ran, a)
		return nil
	})

	w := wire.NewWriter(8)
	require.NoError(t, w.PutInt32(commitResultCommittedWithPostpone))
	require.NoError(t, w.PutUint8(0))
	tr.on(protocol.OpTranCommit, func(arg []byte) (*protocol.Frame, error) {
		return &protocol.Frame{ArgRegion: w.Bytes()}, nil
	})

	action := encodeAction(t, true, int32(actionType), wire.LSA{PageID: 10, Offset: 4}, wire.OID{Volume: 0, Page: 1, Slot: 2}, []byte("postponed-write"))
	done := encodeAction(t, false, 0, wire.LSA{}, wire.OID{}, nil)
	tr.on(protocol.OpLogClientGetFirstPostpone, func(arg []byte) (*protocol.Frame, error) {
		return &protocol.Frame{ArgRegion: action}, nil
	})
	tr.on(protocol.OpLogClientGetNextPostpone, func(arg []byte) (*protocol.Frame, error) {
		return &protocol.Frame{ArgRegion: done}, nil
	})

	state, err := s.Commit()
	require.NoError(t, err)
	require.Equal(t, StateUnactiveCommitted, state)
	require.Len(t, ran, 1)
	require.Equal(t, actionType, ran[0].Type)
	require.Equal(t, "postponed-write", string(ran[0].Data))
	require.Empty(t, s.Savepoints())
}

// TestCommitPlainSucceeds covers the ordinary commit path with no loose
// ends: the server replies with an empty arg region.
func TestCommitPlainSucceeds(t *testing.T) {
	tr := newFakeTransport()
	s := newTestSession(t, tr)
	require.NoError(t, s.Savepoint("sp1"))

	state, err := s.Commit()
	require.NoError(t, err)
	require.Equal(t, StateUnactiveCommitted, state)
	require.Empty(t, s.Savepoints())
}

// TestAbortWithLooseEndsDrainsUndo exercises Abort's undo-loose-end path.
func TestAbortWithLooseEndsDrainsUndo(t *testing.T) {
	tr := newFakeTransport()
	s := newTestSession(t, tr)

	const actionType looseend.ActionType = 3
	var ran []looseend.Action
	s.dispatch.Register(actionType, func(a looseend.Action) error {
		ran = append(ran, a)
		return nil
	})

	w := wire.NewWriter(8)
	require.NoError(t, w.PutInt32(abortResultAbortedWithLoose))
	tr.on(protocol.OpTranAbort, func(arg []byte) (*protocol.Frame, error) {
		return &protocol.Frame{ArgRegion: w.Bytes()}, nil
	})
	action := encodeAction(t, true, int32(actionType), wire.LSA{PageID: 1, Offset: 0}, wire.OID{Volume: 0, Page: 0, Slot: 0}, []byte("undo"))
	done := encodeAction(t, false, 0, wire.LSA{}, wire.OID{}, nil)
	tr.on(protocol.OpLogClientGetFirstUndo, func(arg []byte) (*protocol.Frame, error) {
		return &protocol.Frame{ArgRegion: action}, nil
	})
	tr.on(protocol.OpLogClientGetNextUndo, func(arg []byte) (*protocol.Frame, error) {
		return &protocol.Frame{ArgRegion: done}, nil
	})

	state, err := s.Abort()
	require.NoError(t, err)
	require.Equal(t, StateUnactiveAborted, state)
	require.Len(t, ran, 1)
}

// TestUnilateralAbortVisibleOnNextCall checks that once the
// transport reports a unilateral-abort status, the call that observes it
// returns Aborted, the session's state flips, and its savepoint list is
// emptied.
func TestUnilateralAbortVisibleOnNextCall(t *testing.T) {
	tr := newFakeTransport()
	s := newTestSession(t, tr)
	require.NoError(t, s.Savepoint("sp1"))

	tr.on(protocol.OpTranResetWaitSecs, func(arg []byte) (*protocol.Frame, error) {
		return &protocol.Frame{Status: protocol.StatusUnilateralAbort}, nil
	})

	err := s.ResetWaitTimes(5)
	require.Error(t, err)
	require.Equal(t, StateUnactiveAborted, s.State())
	require.Empty(t, s.Savepoints())
}

// TestTwoPCPrepareAndRecoveryAttach covers the 2PC participant path: start,
// prepare, then recovery-driven attach on a fresh session.
func TestTwoPCPrepareAndRecoveryAttach(t *testing.T) {
	tr := newFakeTransport()
	s := newTestSession(t, tr)

	gtrid, err := s.TwoPCStart()
	require.NoError(t, err)
	require.NoError(t, s.TwoPCPrepare())
	require.Equal(t, StateUnactive2PCPrepare, s.State())

	tr2 := newFakeTransport()
	s2 := newTestSession(t, tr2)
	require.NoError(t, s2.TwoPCAttachGlobalTran(gtrid))
	require.Equal(t, StateActive, s2.State())
	got, ok := s2.Gtrid()
	require.True(t, ok)
	require.Equal(t, gtrid, got)
}

func TestIsolationResetValidation(t *testing.T) {
	tr := newFakeTransport()
	s := newTestSession(t, tr)
	err := s.ResetIsolation(dbconfig.Isolation("bogus"), false)
	require.Error(t, err)
}
