package session

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cuemby/dbtxn/pkg/domain"
	"github.com/cuemby/dbtxn/pkg/protocol"
	"github.com/cuemby/dbtxn/pkg/wire"
	"github.com/cuemby/dbtxn/pkg/workspace"
)

// TestCreateObjectStagesDirtyAndAssignsTempOID checks that CreateObject
// returns a temporary OID and leaves exactly one object dirty in the
// workspace.
func TestCreateObjectStagesDirtyAndAssignsTempOID(t *testing.T) {
	tr := newFakeTransport()
	s := newTestSession(t, tr)

	oid, err := s.CreateObject(wire.OID{Volume: 1, Page: 2, Slot: 3}, false,
		[]*domain.Value{domain.NewBytes(domain.VarChar, domain.FloatingPrecision, []byte("hello"))})
	require.NoError(t, err)
	require.True(t, workspace.IsTemp(oid))

	n, err := s.ws.DirtyCount()
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

// TestUpdateObjectStagesDirty checks that UpdateObject marks an
// already-permanent OID dirty for the next flush.
func TestUpdateObjectStagesDirty(t *testing.T) {
	tr := newFakeTransport()
	s := newTestSession(t, tr)

	oid := wire.OID{Volume: 3, Page: 1, Slot: 1}
	require.NoError(t, s.UpdateObject(oid, wire.OID{Volume: 1, Page: 2, Slot: 3}, false,
		[]*domain.Value{domain.NewInteger(42)}))

	oids, err := s.ws.DirtyOIDs()
	require.NoError(t, err)
	require.Equal(t, []wire.OID{oid}, oids)
}

// TestFlushForcesDirtyObjectsAndClearsWorkspace checks that Flush issues a
// single locator_force call carrying every staged object and leaves the
// workspace with nothing pending.
func TestFlushForcesDirtyObjectsAndClearsWorkspace(t *testing.T) {
	tr := newFakeTransport()
	tr.on(protocol.OpLocatorForce, func(arg []byte) (*protocol.Frame, error) {
		return &protocol.Frame{Op: protocol.OpLocatorForce, Status: protocol.StatusOK}, nil
	})
	tr.on(protocol.OpLocatorAssignOID, func(arg []byte) (*protocol.Frame, error) {
		w := wire.NewWriter(12)
		require.NoError(t, w.PutOID(wire.OID{Volume: 1, Page: 99, Slot: 1}))
		return &protocol.Frame{Op: protocol.OpLocatorAssignOID, Status: protocol.StatusOK, ArgRegion: w.Bytes()}, nil
	})
	s := newTestSession(t, tr)

	_, err := s.CreateObject(wire.OID{Volume: 1, Page: 2, Slot: 3}, false,
		[]*domain.Value{domain.NewInteger(7)})
	require.NoError(t, err)

	require.NoError(t, s.Flush())
	// The copy area travels as the force call's data region, not its arg.
	forced := tr.data[protocol.OpLocatorForce]
	require.NotEmpty(t, forced)

	needs, err := s.ws.NeedsFlush()
	require.NoError(t, err)
	require.False(t, needs)
}

// TestCreateObjectRejectedWhenNotActive mirrors the other mutating
// Session methods: once the session is no longer ACTIVE, staging a new
// object is rejected rather than silently cached.
func TestCreateObjectRejectedWhenNotActive(t *testing.T) {
	tr := newFakeTransport()
	s := newTestSession(t, tr)
	s.state = StateUnactiveAborted

	_, err := s.CreateObject(wire.OID{Volume: 1, Page: 1, Slot: 1}, false, nil)
	require.Error(t, err)
}
