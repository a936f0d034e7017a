package protocol

// Reply status codes carried in Frame.Status. Zero always means success;
// the negative values are the reserved subset of error kinds
// that a reply's status word alone can signal without a data region — the
// rest (DomainConflict, InvalidArgument, OutOfMemory, BufferOverflow) are
// detected client-side and never appear on the wire.
const (
	StatusOK                      int32 = 0
	StatusUnilateralAbort         int32 = -1
	StatusLockWaitTimeout         int32 = -2
	StatusPreparedRecoveryRequired int32 = -3
	StatusOnlyInStandalone        int32 = -4
	StatusNotInStandalone         int32 = -5
)
