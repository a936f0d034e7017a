package session

import (
	"strings"

	"github.com/cuemby/dbtxn/pkg/domain"
	"github.com/cuemby/dbtxn/pkg/events"
	"github.com/cuemby/dbtxn/pkg/protocol"
	"github.com/cuemby/dbtxn/pkg/wire"
)

// Savepoint flushes the workspace, records an LSA on the server under
// name, then (unless name is system-internal) prepends name to the
// session's user savepoint list.
func (s *Session) Savepoint(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateActive {
		return domain.NewError(domain.Aborted, "savepoint.go", 0, name)
	}
	if name == "" {
		return domain.NewError(domain.InvalidArgument, "savepoint.go", 0, "empty savepoint name")
	}
	if err := s.flush(); err != nil {
		return err
	}

	w := wire.NewWriter(len(name) + 8)
	if err := w.PutVarchar([]byte(name)); err != nil {
		return err
	}
	if _, err := s.call(protocol.OpTranSavepoint, w.Bytes()); err != nil {
		return err
	}

	if !isSystemSavepoint(name) {
		s.savepoints = append([]string{name}, s.savepoints...)
	}
	if s.events != nil {
		s.events.Publish(&events.Event{Type: events.EventSavepointCreated, Message: name})
	}
	return nil
}

// PartialAbort truncates the user savepoint list from the named entry
// (inclusive) onward, invalidates the workspace (the set of undone
// objects is unknown to the client), and rolls the server's log back to
// the recorded LSA. Names are matched case-insensitively; only the most
// recently created savepoint with a given name is addressable.
// System-internal savepoints are rolled back on the server without
// touching the user list.
func (s *Session) PartialAbort(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateActive {
		return domain.NewError(domain.Aborted, "savepoint.go", 0, name)
	}

	if !isSystemSavepoint(name) {
		idx := indexOfSavepoint(s.savepoints, name)
		if idx < 0 {
			return domain.NewError(domain.InvalidArgument, "savepoint.go", 0, name)
		}
		s.savepoints = append([]string(nil), s.savepoints[idx+1:]...)
	}

	if err := s.ws.DecacheAllButRealClasses(); err != nil {
		return err
	}

	w := wire.NewWriter(len(name) + 8)
	if err := w.PutVarchar([]byte(name)); err != nil {
		return err
	}
	if _, err := s.call(protocol.OpTranAbortUptoSavepoint, w.Bytes()); err != nil {
		return err
	}
	if s.events != nil {
		s.events.Publish(&events.Event{Type: events.EventSavepointPartial, Message: name})
	}
	return nil
}

func indexOfSavepoint(list []string, name string) int {
	for i, n := range list {
		if strings.EqualFold(n, name) {
			return i
		}
	}
	return -1
}
