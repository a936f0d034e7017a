package workspace

import (
	"encoding/binary"
	"fmt"
	"path/filepath"

	bolt "go.etcd.io/bbolt"

	"github.com/cuemby/dbtxn/pkg/wire"
)

var (
	bucketDirty   = []byte("dirty")
	bucketHints   = []byte("hints")
	bucketQueries = []byte("queries")
	bucketClasses = []byte("classes")
)

// Workspace is the per-session object cache: dirty cached
// objects pending flush, per-object lock hints, open query cursors, and a
// record of which cached OIDs are class metadata (survives partial
// rollback invalidation).
type Workspace struct {
	db *bolt.DB
}

// Open creates or opens the workspace database for session sessionID under
// dataDir, creating its buckets if new. Adapted from a shared BoltDB
// store's NewBoltStore, one file per session rather than one shared
// cluster store.
func Open(dataDir string, sessionID int32) (*Workspace, error) {
	path := filepath.Join(dataDir, fmt.Sprintf("session-%d.db", sessionID))
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("workspace: open %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, b := range [][]byte{bucketDirty, bucketHints, bucketQueries, bucketClasses} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("workspace: create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Workspace{db: db}, nil
}

// Close closes the underlying database.
func (w *Workspace) Close() error {
	return w.db.Close()
}

// oidKey packs an OID into its bucket key: three big-endian int32s, so
// bolt's byte-lexicographic bucket ordering also orders by (volume, page,
// slot).
func oidKey(o wire.OID) []byte {
	var b [12]byte
	binary.BigEndian.PutUint32(b[0:4], uint32(o.Volume))
	binary.BigEndian.PutUint32(b[4:8], uint32(o.Page))
	binary.BigEndian.PutUint32(b[8:12], uint32(o.Slot))
	return b[:]
}

func keyOID(k []byte) wire.OID {
	return wire.OID{
		Volume: int32(binary.BigEndian.Uint32(k[0:4])),
		Page:   int32(binary.BigEndian.Uint32(k[4:8])),
		Slot:   int32(binary.BigEndian.Uint32(k[8:12])),
	}
}

// tempVolume marks an OID as client-assigned and not yet resolved to a
// permanent server OID. This is a simplification of the original's
// OID_ISTEMP (negative pageid with a reserved sentinel distinct from
// NULL_OID); see DESIGN.md.
const tempVolume = -2

// IsTemp reports whether o was assigned locally by MarkDirty's caller and
// has not yet been resolved to a permanent OID via flush.
func IsTemp(o wire.OID) bool { return o.Volume == tempVolume }

// NewTempOID builds a client-assigned temporary OID for a newly staged
// object: tagged so IsTemp recognizes it and FlushAll resolves it to a
// permanent OID via its NeedPermanentOID fixup before the force RPC goes
// out. seq only needs to be unique within the caller's own session.
func NewTempOID(seq int32) wire.OID {
	return wire.OID{Volume: tempVolume, Page: seq, Slot: 0}
}
