package workspace

import (
	"testing"

	"github.com/stretchr/testify/require"
	bolt "go.etcd.io/bbolt"

	"github.com/cuemby/dbtxn/pkg/protocol"
	"github.com/cuemby/dbtxn/pkg/wire"
)

func openTemp(t *testing.T) *Workspace {
	t.Helper()
	ws, err := Open(t.TempDir(), 1)
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close() })
	return ws
}

func TestNeedsFlushAndMarkDirty(t *testing.T) {
	ws := openTemp(t)

	needs, err := ws.NeedsFlush()
	require.NoError(t, err)
	require.False(t, needs)

	require.NoError(t, ws.MarkDirty(DirtyObject{
		OID:       wire.OID{Volume: tempVolume, Page: 1, Slot: 1},
		Operation: protocol.CopyOpInsert,
		Image:     []byte("row-image"),
	}))

	needs, err = ws.NeedsFlush()
	require.NoError(t, err)
	require.True(t, needs)

	n, err := ws.DirtyCount()
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestFlushAllResolvesTemporaryOIDs(t *testing.T) {
	ws := openTemp(t)

	temp := wire.OID{Volume: tempVolume, Page: 1, Slot: 1}
	permanent := wire.OID{Volume: 3, Page: 44, Slot: 2}
	require.NoError(t, ws.MarkDirty(DirtyObject{
		OID:       temp,
		ClassOID:  wire.OID{Volume: 0, Page: 1, Slot: 1},
		Operation: protocol.CopyOpInsert,
		Image:     []byte("abcd"),
	}))

	ca, err := ws.FlushAll(func(t wire.OID) (wire.OID, error) {
		return permanent, nil
	})
	require.NoError(t, err)
	require.Len(t, ca.Descriptors, 1)
	require.Equal(t, permanent, ca.Descriptors[0].OID)
	require.Equal(t, []byte("abcd"), ca.ObjectImage(0))

	needs, err := ws.NeedsFlush()
	require.NoError(t, err)
	require.False(t, needs, "flushed objects must be cleared from the dirty set")
}

func TestAbortMopsKeepNonRealClasses(t *testing.T) {
	ws := openTemp(t)

	classOID := wire.OID{Volume: 0, Page: 1, Slot: 1}
	instOID := wire.OID{Volume: 0, Page: 2, Slot: 1}
	require.NoError(t, ws.MarkDirty(DirtyObject{OID: classOID, IsRealClass: true, Image: []byte("c")}))
	require.NoError(t, ws.MarkDirty(DirtyObject{OID: instOID, Image: []byte("i")}))

	require.NoError(t, ws.AbortMops(true))

	needs, err := ws.NeedsFlush()
	require.NoError(t, err)
	require.False(t, needs, "all dirty entries are dropped on abort regardless of keepNonRealClasses")
}

func TestClearAllHintsRetainLock(t *testing.T) {
	ws := openTemp(t)
	locked := wire.OID{Volume: 0, Page: 1, Slot: 1}
	unlocked := wire.OID{Volume: 0, Page: 1, Slot: 2}
	require.NoError(t, ws.SetHint(locked, true))
	require.NoError(t, ws.SetHint(unlocked, false))

	require.NoError(t, ws.ClearAllHints(true))

	err := ws.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketHints)
		require.NotNil(t, b.Get(oidKey(locked)), "locked hint survives when retainLock is true")
		require.Nil(t, b.Get(oidKey(unlocked)), "unlocked hint is dropped")
		return nil
	})
	require.NoError(t, err)
}

func TestClearQueryResults(t *testing.T) {
	ws := openTemp(t)
	require.NoError(t, ws.StoreQueryResult(100, []byte("cursor-state")))
	require.NoError(t, ws.StoreQueryResult(101, []byte("cursor-state-2")))

	ids, err := ws.ClearQueryResults(true)
	require.NoError(t, err)
	require.ElementsMatch(t, []int64{100, 101}, ids)

	ids, err = ws.ClearQueryResults(true)
	require.NoError(t, err)
	require.Empty(t, ids)
}

func TestDecacheAllButRealClasses(t *testing.T) {
	ws := openTemp(t)
	classOID := wire.OID{Volume: 0, Page: 1, Slot: 1}
	instOID := wire.OID{Volume: 0, Page: 2, Slot: 1}
	require.NoError(t, ws.MarkDirty(DirtyObject{OID: classOID, IsRealClass: true, Image: []byte("c")}))
	require.NoError(t, ws.MarkDirty(DirtyObject{OID: instOID, Image: []byte("i")}))

	require.NoError(t, ws.DecacheAllButRealClasses())

	oids, err := ws.DirtyOIDs()
	require.NoError(t, err)
	require.Equal(t, []wire.OID{classOID}, oids)
}
