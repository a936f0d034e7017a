/*
Package health implements liveness probing of a database server endpoint.

A TCPChecker dials the server's address and reports Result.Healthy based
on whether the connection succeeds. cmd/logpuller runs one before opening
its fetch stream (when the server later reports itself crashed, the daemon
marks the component unhealthy and stops, without probing again),
publishing the result through pkg/metrics' component health registry so
its /health and /ready endpoints reflect upstream reachability rather than
just the daemon's own process being alive. Status and Config exist for
callers that want to track consecutive failures across repeated checks
rather than a single probe.
*/
package health
