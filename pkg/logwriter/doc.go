// Package logwriter implements the client-side Log-Writer: a passive
// follower that pulls log pages from a server for
// standby recovery, choosing sync/async/semi-sync fetch mode per
// configuration and catch-up state, and persisting pulled pages through
// a raft-boltdb-backed page store.
package logwriter
