package logwriter

import (
	"fmt"
	"sync"

	"github.com/cuemby/dbtxn/pkg/protocol"
	"github.com/cuemby/dbtxn/pkg/wire"
)

// Transport is the narrow RPC surface Follower needs to pull log pages.
type Transport interface {
	Call(op protocol.Op, arg []byte, data ...[]byte) (*protocol.Frame, error)
}

// Follower is the client-side Log-Writer Client: a
// single-threaded pull loop against one server, structured like
// raft.FSM.Apply/Snapshot/Restore — one page applied to the store at a
// time, periodically refreshing the header snapshot.
type Follower struct {
	mu sync.Mutex

	transport Transport
	store     *PageStore

	configuredMode Mode
	pending        PendingAction

	contacted      bool
	header         protocol.LogHeader
	lastRecvPageID int64
	archiveStart   int64
	shutdown       bool
}

// NewFollower constructs a Follower bound to a transport and a page
// store, using configuredMode whenever the client is caught up with the
// server (it is overridden to Async whenever behind).
func NewFollower(t Transport, store *PageStore, configuredMode Mode) *Follower {
	return &Follower{transport: t, store: store, configuredMode: configuredMode, lastRecvPageID: -1}
}

// Mode reports the mode the next Step would use.
func (f *Follower) Mode() Mode {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.effectiveMode()
}

func (f *Follower) effectiveMode() Mode {
	if f.contacted && f.lastRecvPageID < f.header.EOFPageID {
		return Async
	}
	return f.configuredMode
}

// Pending reports the current pending-action bit set.
func (f *Follower) Pending() PendingAction {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pending
}

// LastRecvPageID reports the last page id durably stored. Satisfies
// pkg/metrics' LogWriterStats indirectly through LagPages.
func (f *Follower) LastRecvPageID() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastRecvPageID
}

// LagPages reports how far behind the server's last known eof_lsa page
// this follower is. Satisfies pkg/metrics.LogWriterStats.
func (f *Follower) LagPages() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.contacted {
		return 0
	}
	lag := f.header.EOFPageID - f.lastRecvPageID
	if lag < 0 {
		return 0
	}
	return lag
}

// ShuttingDown reports whether the follower observed a server crash and
// has marked its header dead.
func (f *Follower) ShuttingDown() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.shutdown
}

// Step runs one fetch_log_pages round: computes the next page to
// request, picks a mode, issues the RPC, and applies the reply to the
// page store. It returns the number of pages stored this round.
func (f *Follower) Step() (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.shutdown {
		return 0, fmt.Errorf("logwriter: follower is shut down")
	}

	firstPage := f.lastRecvPageID + 1
	if !f.contacted {
		firstPage = protocol.HeaderPageID
	}
	mode := f.effectiveMode()

	arg, err := encodeFetchRequest(firstPage, mode)
	if err != nil {
		return 0, err
	}
	reply, err := f.transport.Call(protocol.OpLogWriterFetchLogPages, arg)
	if err != nil {
		return 0, fmt.Errorf("logwriter: fetch_log_pages: %w", err)
	}
	batch, err := protocol.DecodeLogPageBatch(reply)
	if err != nil {
		return 0, fmt.Errorf("logwriter: decoding log page batch: %w", err)
	}

	if batch.Header != nil {
		f.header = *batch.Header
		f.contacted = true
		f.archiveStart = batch.Header.NextArchivePhysicalPageID
	}

	if batch.ServerCrashed {
		if mode == SemiSync {
			f.pending.Set(ActionDelayedWrite)
		}
		f.header.HAServerState = protocol.HAServerDead
		f.pending.Set(ActionHdrWrite)
		f.shutdown = true
		return 0, nil
	}

	stored := 0
	for _, page := range batch.Pages {
		if err := f.store.StorePage(page); err != nil {
			return stored, err
		}
		f.lastRecvPageID = page.PageID
		stored++
		if f.archiveStart > 0 && page.PageID >= f.archiveStart {
			f.pending.Set(ActionArchiving)
		}
	}
	if stored > 0 {
		f.pending.Clear(ActionDelayedWrite)
	}
	return stored, nil
}

// RunUntil steps the follower until lastRecvPageID reaches target or
// maxRounds is exhausted, whichever comes first. Used to check that a
// lagging follower's last_recv_pageid eventually catches up to the
// server's eof_lsa page id.
func (f *Follower) RunUntil(target int64, maxRounds int) (int, error) {
	rounds := 0
	for rounds < maxRounds {
		if f.LastRecvPageID() >= target {
			return rounds, nil
		}
		if _, err := f.Step(); err != nil {
			return rounds, err
		}
		rounds++
		if f.ShuttingDown() {
			return rounds, fmt.Errorf("logwriter: server crashed before reaching page %d", target)
		}
	}
	return rounds, fmt.Errorf("logwriter: did not reach page %d within %d rounds", target, maxRounds)
}

func encodeFetchRequest(firstPage int64, mode Mode) ([]byte, error) {
	w := wire.NewWriter(16)
	if err := w.PutInt64(firstPage); err != nil {
		return nil, err
	}
	if err := w.PutUint8(uint8(mode)); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}
