package session

import (
	"github.com/cuemby/dbtxn/pkg/dbconfig"
	"github.com/cuemby/dbtxn/pkg/domain"
	"github.com/cuemby/dbtxn/pkg/protocol"
	"github.com/cuemby/dbtxn/pkg/wire"
)

// ResetIsolation validates iso and forwards the change to the server; on
// success the new isolation level and async-workspace flag are cached
// locally.
func (s *Session) ResetIsolation(iso dbconfig.Isolation, asyncWS bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !iso.Valid() {
		return domain.NewError(domain.InvalidArgument, "settings.go", 0, string(iso))
	}

	w := wire.NewWriter(2)
	if err := w.PutBytes([]byte(isolationCode(iso))); err != nil {
		return err
	}
	if err := putBoolByte(w, asyncWS); err != nil {
		return err
	}
	if _, err := s.call(protocol.OpTranResetIsolation, w.Bytes()); err != nil {
		return err
	}
	s.isolation = iso
	s.asyncWorkspace = asyncWS
	return nil
}

// ResetWaitTimes converts secs to milliseconds (negative preserved
// verbatim as infinite) and forwards it to the server.
func (s *Session) ResetWaitTimes(secs int32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ms := waitSecsToMillis(secs)
	w := wire.NewWriter(4)
	if err := w.PutInt32(ms); err != nil {
		return err
	}
	if _, err := s.call(protocol.OpTranResetWaitSecs, w.Bytes()); err != nil {
		return err
	}
	s.lockWaitMillis = ms
	return nil
}

// SetInterrupt is a fire-and-forget request for the server to abort any
// long-running operation on this session's transaction. It
// may race with the reply to the operation it interrupts; callers must
// tolerate either outcome.
func (s *Session) SetInterrupt(flag bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	w := wire.NewWriter(1)
	if err := putBoolByte(w, flag); err != nil {
		return err
	}
	return s.transport.Send(protocol.OpTranSetInterrupt, w.Bytes())
}

// isolationCode is the one-byte wire code for iso, validated by the
// caller before this is reached.
func isolationCode(iso dbconfig.Isolation) []byte {
	switch iso {
	case dbconfig.IsolationRR:
		return []byte{0}
	case dbconfig.IsolationRC:
		return []byte{1}
	case dbconfig.IsolationRCSnapshot:
		return []byte{2}
	case dbconfig.IsolationRU:
		return []byte{3}
	case dbconfig.IsolationSerializable:
		return []byte{4}
	default:
		return []byte{0xff}
	}
}
