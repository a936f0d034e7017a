package logwriter

// PendingAction is the Log-Writer State's pending-action bit set
// ("a pending-action bit set containing DelayedWrite, AsyncWrite,
// HdrWrite, and/or Archiving").
type PendingAction uint8

const (
	ActionNone         PendingAction = 0
	ActionDelayedWrite PendingAction = 0x01
	ActionAsyncWrite   PendingAction = 0x02
	ActionHdrWrite     PendingAction = 0x04
	ActionArchiving    PendingAction = 0x08
)

func (p PendingAction) Has(flag PendingAction) bool { return p&flag != 0 }

func (p *PendingAction) Set(flag PendingAction) { *p |= flag }

func (p *PendingAction) Clear(flag PendingAction) { *p &^= flag }
