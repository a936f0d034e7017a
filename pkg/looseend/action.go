package looseend

import "github.com/cuemby/dbtxn/pkg/wire"

// Kind distinguishes a postpone (commit-side) action from an undo
// (abort-side) action. The two are pulled and finished through distinct
// RPC pairs but dispatched through the same action table.
type Kind int

const (
	Postpone Kind = iota
	Undo
)

func (k Kind) String() string {
	if k == Undo {
		return "undo"
	}
	return "postpone"
}

// ActionType is the statically keyed dispatch tag carried in a deferred
// log record ("dispatches each through a statically keyed action
// vector"). The concrete set of tags is database-schema-specific;
// this package only defines the dispatch mechanism.
type ActionType int32

// Action is one deferred log action pulled from the server.
type Action struct {
	Kind   Kind
	Type   ActionType
	LSA    wire.LSA
	OID    wire.OID
	Data   []byte
}
