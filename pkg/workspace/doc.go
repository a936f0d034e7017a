// Package workspace implements the client-side object cache the
// Transaction Manager (pkg/session) consults before commit: which cached
// objects are dirty and must be flushed, which cursors and lock hints must
// be dropped on abort, and which class metadata survives a partial
// rollback. It is a bbolt-backed cache, one database file per session,
// directly adapted from a BoltDB-backed store.
package workspace
