package metrics

import "time"

// SessionStats is the subset of pkg/session.Session state the collector
// polls. Defined here (rather than importing pkg/session) so metrics has
// no dependency on the packages that depend on it.
type SessionStats interface {
	IsActive() bool
	DirtyObjectCount() int
}

// LogWriterStats is the subset of pkg/logwriter.Follower state the
// collector polls.
type LogWriterStats interface {
	LagPages() int64
}

// Collector periodically samples session and log-writer state into the
// gauges declared in metrics.go, mirroring a ticker-driven poll loop rather
// than pushing on every state transition (cheap to run alongside a CLI
// command that otherwise has no steady-state background work).
type Collector struct {
	sessions   func() []SessionStats
	logwriters func() []LogWriterStats
	stopCh     chan struct{}
}

// NewCollector creates a new metrics collector. sessions and logwriters are
// snapshot functions invoked on each tick.
func NewCollector(sessions func() []SessionStats, logwriters func() []LogWriterStats) *Collector {
	return &Collector{sessions: sessions, logwriters: logwriters, stopCh: make(chan struct{})}
}

// Start begins collecting metrics every 15 seconds.
func (c *Collector) Start() {
	ticker := time.NewTicker(15 * time.Second)
	go func() {
		c.collect()
		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop stops the collector.
func (c *Collector) Stop() {
	close(c.stopCh)
}

func (c *Collector) collect() {
	if c.sessions != nil {
		c.collectSessionMetrics()
	}
	if c.logwriters != nil {
		c.collectLogWriterMetrics()
	}
}

func (c *Collector) collectSessionMetrics() {
	sessions := c.sessions()
	active := 0
	dirty := 0
	for _, s := range sessions {
		if s.IsActive() {
			active++
		}
		dirty += s.DirtyObjectCount()
	}
	TransactionsActive.Set(float64(active))
	WorkspaceDirtyObjects.Set(float64(dirty))
}

func (c *Collector) collectLogWriterMetrics() {
	var maxLag int64
	for _, lw := range c.logwriters() {
		if lag := lw.LagPages(); lag > maxLag {
			maxLag = lag
		}
	}
	LogWriterLagPages.Set(float64(maxLag))
}
