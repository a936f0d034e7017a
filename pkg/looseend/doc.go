// Package looseend runs the client-side deferred log actions a server
// hands back after a commit-with-postpone or abort-with-undo decision
// pull one action at a time from the server, dispatch it
// through a statically keyed action table, and tell the server when the
// drain is done so it can close the log record.
package looseend
