package workspace

import (
	"encoding/binary"

	bolt "go.etcd.io/bbolt"

	"github.com/cuemby/dbtxn/pkg/wire"
)

var hintLocked = []byte{1}
var hintUnlocked = []byte{0}

// SetHint records a per-object lock hint, consulted by ClearAllHints.
func (w *Workspace) SetHint(oid wire.OID, locked bool) error {
	v := hintUnlocked
	if locked {
		v = hintLocked
	}
	return w.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketHints).Put(oidKey(oid), v)
	})
}

// AbortMops invalidates every cached instance. All uncommitted dirty state
// is always dropped; when keepNonRealClasses is false the class-metadata
// cache markers are dropped too ("optionally preserve class metadata
// caches" — the parameter's literal CUBRID name,
// keep_non_realclasses, is honored as written even though it reads at odds
// with that prose — see DESIGN.md).
func (w *Workspace) AbortMops(keepNonRealClasses bool) error {
	return w.db.Update(func(tx *bolt.Tx) error {
		if err := clearBucket(tx, bucketDirty); err != nil {
			return err
		}
		if !keepNonRealClasses {
			return clearBucket(tx, bucketClasses)
		}
		return nil
	})
}

// ClearAllHints drops per-object lock hints after a commit. When
// retainLock is true, hints marked locked survive; only unlocked hints are
// dropped.
func (w *Workspace) ClearAllHints(retainLock bool) error {
	return w.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketHints)
		if !retainLock {
			return clearBucket(tx, bucketHints)
		}
		var toDelete [][]byte
		c := b.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			if len(v) == 0 || v[0] != hintLocked[0] {
				toDelete = append(toDelete, append([]byte(nil), k...))
			}
		}
		for _, k := range toDelete {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}

// StoreQueryResult records a query cursor's serialized state, keyed by
// query id, so ClearQueryResults can enumerate and release it.
func (w *Workspace) StoreQueryResult(queryID int64, data []byte) error {
	return w.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketQueries).Put(queryIDKey(queryID), data)
	})
}

// ClearQueryResults releases open cursor state, returning the query ids
// that were cleared so the caller can issue query_end for each one when
// closeCursors is set (releasing the server-side cursor too, not just the
// local cache of it).
func (w *Workspace) ClearQueryResults(closeCursors bool) ([]int64, error) {
	var ids []int64
	err := w.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketQueries)
		c := b.Cursor()
		var toDelete [][]byte
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			if closeCursors {
				ids = append(ids, keyQueryID(k))
			}
			toDelete = append(toDelete, append([]byte(nil), k...))
		}
		for _, k := range toDelete {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
	return ids, err
}

// DecacheAllButRealClasses invalidates every cached instance except those
// recorded as class metadata, for partial rollback when the set of
// rolled-back objects is unknown.
func (w *Workspace) DecacheAllButRealClasses() error {
	return w.db.Update(func(tx *bolt.Tx) error {
		dirty := tx.Bucket(bucketDirty)
		classes := tx.Bucket(bucketClasses)
		var toDelete [][]byte
		c := dirty.Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			if classes.Get(k) == nil {
				toDelete = append(toDelete, append([]byte(nil), k...))
			}
		}
		for _, k := range toDelete {
			if err := dirty.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}

func clearBucket(tx *bolt.Tx, name []byte) error {
	if err := tx.DeleteBucket(name); err != nil {
		return err
	}
	_, err := tx.CreateBucket(name)
	return err
}

func queryIDKey(id int64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(id))
	return b[:]
}

func keyQueryID(k []byte) int64 {
	return int64(binary.BigEndian.Uint64(k))
}
