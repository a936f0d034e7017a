// Package session implements the Transaction Manager: the
// per-connection commit/abort state machine, savepoint stack, two-phase
// commit participant duties, and unilateral-abort recovery, driving
// pkg/workspace (flush/invalidate) and pkg/looseend (deferred action
// drain) around a pkg/transport RPC stream.
package session
