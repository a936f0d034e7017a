/*
Package metrics defines and registers the Prometheus metrics this client
exposes: RPC call counts/durations, transaction outcome counts and
active-transaction gauges, workspace flush duration and dirty-object
gauge, and log-writer lag/mode counters.

Metrics are package-level prometheus.Collector values registered at init
time via prometheus.MustRegister, following the same flat-variable pattern
used throughout this codebase rather than a per-caller registry — a single
process only ever runs one dbtxn client's metrics. Handler returns the
standard promhttp handler for a /metrics endpoint; Collector polls session
and log-writer state on a ticker to keep the gauges current between RPCs.

The health.go file in this package is unrelated to pkg/health's TCP liveness
probe: it is a small /health, /ready, /live JSON status endpoint for the
dbclient/logpuller daemons themselves (process-level readiness), not
server-reachability probing.
*/
package metrics
