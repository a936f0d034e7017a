package logwriter

import (
	"fmt"

	"github.com/hashicorp/raft"
	raftboltdb "github.com/hashicorp/raft-boltdb"

	"github.com/cuemby/dbtxn/pkg/protocol"
)

// PageStore persists pulled log pages keyed by page id, one raft.Log
// entry per page, through raft-boltdb's LogStore. Only the raft.Log/
// raft.LogStore types are used here — this client is a passive follower
// of a foreign server's log, not a Raft consensus participant, so
// raft.Raft itself is never instantiated (see DESIGN.md).
type PageStore struct {
	logs *raftboltdb.BoltStore
}

// OpenPageStore opens (creating if absent) a raft-boltdb log store at
// path, one per replica archive directory.
func OpenPageStore(path string) (*PageStore, error) {
	logs, err := raftboltdb.New(raftboltdb.Options{Path: path})
	if err != nil {
		return nil, fmt.Errorf("logwriter: opening page store: %w", err)
	}
	return &PageStore{logs: logs}, nil
}

func (s *PageStore) Close() error { return s.logs.Close() }

// StorePage persists one pulled page. Page ids are non-negative (the
// distinguished protocol.HeaderPageID sentinel is never stored).
func (s *PageStore) StorePage(p protocol.LogPage) error {
	if p.PageID < 0 {
		return fmt.Errorf("logwriter: refusing to store sentinel page id %d", p.PageID)
	}
	return s.logs.StoreLog(&raft.Log{
		Index: uint64(p.PageID),
		Data:  p.Data,
	})
}

// GetPage returns a previously stored page's bytes.
func (s *PageStore) GetPage(pageID int64) ([]byte, error) {
	var entry raft.Log
	if err := s.logs.GetLog(uint64(pageID), &entry); err != nil {
		return nil, fmt.Errorf("logwriter: reading page %d: %w", pageID, err)
	}
	return entry.Data, nil
}

// FirstPageID and LastPageID report the inclusive range of pages
// currently on disk. Both return (0, false) on an empty store.
func (s *PageStore) FirstPageID() (int64, bool, error) {
	first, err := s.logs.FirstIndex()
	if err != nil {
		return 0, false, err
	}
	if first == 0 {
		return 0, false, nil
	}
	return int64(first), true, nil
}

func (s *PageStore) LastPageID() (int64, bool, error) {
	last, err := s.logs.LastIndex()
	if err != nil {
		return 0, false, err
	}
	if last == 0 {
		return 0, false, nil
	}
	return int64(last), true, nil
}
