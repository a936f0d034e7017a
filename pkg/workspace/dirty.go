package workspace

import (
	"encoding/json"
	"fmt"

	bolt "go.etcd.io/bbolt"

	"github.com/cuemby/dbtxn/pkg/protocol"
	"github.com/cuemby/dbtxn/pkg/wire"
)

// DirtyObject is one cached object pending flush to the server.
type DirtyObject struct {
	OID         wire.OID
	ClassOID    wire.OID
	Operation   protocol.CopyOperation
	Image       []byte
	IsRealClass bool
}

// MarkDirty records obj as dirty, upserting any previous entry for the same
// OID (CreateNode doubling as UpdateNode).
func (w *Workspace) MarkDirty(obj DirtyObject) error {
	return w.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(obj)
		if err != nil {
			return err
		}
		b := tx.Bucket(bucketDirty)
		if err := b.Put(oidKey(obj.OID), data); err != nil {
			return err
		}
		if obj.IsRealClass {
			return tx.Bucket(bucketClasses).Put(oidKey(obj.OID), []byte{1})
		}
		return nil
	})
}

// NeedsFlush reports whether any cached object is pending flush.
func (w *Workspace) NeedsFlush() (bool, error) {
	var needs bool
	err := w.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketDirty).Cursor()
		k, _ := c.First()
		needs = k != nil
		return nil
	})
	return needs, err
}

// DirtyCount returns the number of objects currently marked dirty.
// Satisfies pkg/metrics' SessionStats via pkg/session.
func (w *Workspace) DirtyCount() (int, error) {
	var n int
	err := w.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(bucketDirty).Stats().KeyN
		return nil
	})
	return n, err
}

// DirtyOIDs returns the OIDs of every currently dirty cached object.
func (w *Workspace) DirtyOIDs() ([]wire.OID, error) {
	var oids []wire.OID
	err := w.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketDirty).Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			oids = append(oids, keyOID(k))
		}
		return nil
	})
	return oids, err
}

// NeedPermanentOID is invoked once per dirty object during FlushAll to
// resolve a client-assigned temporary OID (workspace.IsTemp) to the
// permanent OID the server's force reply assigned it ("resolving
// temporary OIDs to permanent ones via a fixup callback
// invoked during packing").
type NeedPermanentOID func(temp wire.OID) (wire.OID, error)

// FlushAll packs every dirty cached object into a protocol.CopyArea ready
// for an LC_FORCE call, resolving temporary OIDs via fixup, then clears the
// dirty bucket. It does not itself perform the RPC; pkg/session owns the
// force call and passes the resulting permanent OIDs back through fixup.
func (w *Workspace) FlushAll(fixup NeedPermanentOID) (*protocol.CopyArea, error) {
	ca := &protocol.CopyArea{}
	err := w.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketDirty)
		var offset int32
		var toDelete [][]byte
		c := b.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var obj DirtyObject
			if err := json.Unmarshal(v, &obj); err != nil {
				return fmt.Errorf("workspace: decode dirty object: %w", err)
			}
			oid := obj.OID
			if IsTemp(oid) && fixup != nil {
				permanent, err := fixup(oid)
				if err != nil {
					return fmt.Errorf("workspace: resolve permanent oid: %w", err)
				}
				oid = permanent
			}
			ca.Descriptors = append(ca.Descriptors, protocol.CopyDescriptor{
				Operation: obj.Operation,
				OID:       oid,
				ClassOID:  obj.ClassOID,
				Length:    int32(len(obj.Image)),
				Offset:    offset,
			})
			ca.Content = append(ca.Content, obj.Image...)
			offset += int32(len(obj.Image))
			toDelete = append(toDelete, append([]byte(nil), k...))
		}
		for _, k := range toDelete {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ca, nil
}
