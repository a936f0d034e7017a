// Package protocol defines the closed operation catalogue and wire framing
// ("every call carries a 4-byte operation id from a closed
// catalogue") that pkg/transport carries over a single
// multiplexed grpc stream, and the Copy Area / QueryResult carriers that
// ride inside request/reply data regions.
package protocol

// Op is the 4-byte operation id named on every request. The catalogue below
// is grounded directly in the ~176 `extern` declarations enumerated in
// _examples/original_source's network_interface_cl.h (locator_*, heap_*,
// disk_*, log_*, tran_*); not every one of the 176 is reproduced here, only
// the subset this client's components actually call.
type Op uint32

const (
	OpUnknown Op = iota

	// Locator / object fetch-force family.
	OpLocatorFetch
	OpLocatorGetClass
	OpLocatorFetchAll
	OpLocatorDoesExist
	OpLocatorForce
	OpLocatorFetchLockset
	OpLocatorFindClassOID
	OpLocatorAssignOID
	OpLocatorReserveClassNames

	// Heap family.
	OpHeapCreate
	OpHeapDestroy

	// Disk family.
	OpDiskTotalPages
	OpDiskFreePages

	// Query execution family.
	OpQueryExecute
	OpQueryNextPage
	OpQueryEndTransaction

	// Transaction control.
	OpTranCommit
	OpTranAbort
	OpTranSavepoint
	OpTranAbortUptoSavepoint
	OpTranResetIsolation
	OpTranResetWaitSecs
	OpTranSetInterrupt
	OpTran2PCStart
	OpTran2PCPrepare
	OpTran2PCRecoveryPrepared
	OpTran2PCAttachGlobalTran
	OpTranSetGlobalTranInfo
	OpTranGetGlobalTranInfo

	// Client loose-end drain.
	OpLogClientGetFirstPostpone
	OpLogClientGetNextPostpone
	OpLogClientGetFirstUndo
	OpLogClientGetNextUndo
	OpLogHasFinishedClientPostpone
	OpLogHasFinishedClientUndo

	// Log-writer pull.
	OpLogWriterFetchLogPages

	// Admin.
	OpChangeMode

	numOps
)

var opNames = map[Op]string{
	OpLocatorFetch:                  "locator_fetch",
	OpLocatorGetClass:               "locator_get_class",
	OpLocatorFetchAll:               "locator_fetch_all",
	OpLocatorDoesExist:              "locator_does_exist",
	OpLocatorForce:                  "locator_force",
	OpLocatorFetchLockset:           "locator_fetch_lockset",
	OpLocatorFindClassOID:           "locator_find_class_oid",
	OpLocatorAssignOID:              "locator_assign_oid",
	OpLocatorReserveClassNames:      "locator_reserve_class_names",
	OpHeapCreate:                    "heap_create",
	OpHeapDestroy:                   "heap_destroy",
	OpDiskTotalPages:                "disk_get_total_numpages",
	OpDiskFreePages:                 "disk_get_free_numpages",
	OpQueryExecute:                  "qp_execute",
	OpQueryNextPage:                 "qp_next_page",
	OpQueryEndTransaction:           "qp_end_transaction",
	OpTranCommit:                    "tran_commit",
	OpTranAbort:                     "tran_abort",
	OpTranSavepoint:                 "tran_savepoint",
	OpTranAbortUptoSavepoint:        "tran_abort_upto_savepoint",
	OpTranResetIsolation:            "log_reset_isolation",
	OpTranResetWaitSecs:             "log_reset_waitsecs",
	OpTranSetInterrupt:              "log_set_interrupt",
	OpTran2PCStart:                  "tran_2pc_start",
	OpTran2PCPrepare:                "tran_2pc_prepare",
	OpTran2PCRecoveryPrepared:       "tran_2pc_recovery_prepared",
	OpTran2PCAttachGlobalTran:       "tran_2pc_attach_global_tran",
	OpTranSetGlobalTranInfo:         "tran_set_global_tran_info",
	OpTranGetGlobalTranInfo:         "tran_get_global_tran_info",
	OpLogClientGetFirstPostpone:     "log_client_get_first_postpone",
	OpLogClientGetNextPostpone:      "log_client_get_next_postpone",
	OpLogClientGetFirstUndo:         "log_client_get_first_undo",
	OpLogClientGetNextUndo:          "log_client_get_next_undo",
	OpLogHasFinishedClientPostpone:  "log_has_finished_client_postpone",
	OpLogHasFinishedClientUndo:      "log_has_finished_client_undo",
	OpLogWriterFetchLogPages:        "logwr_get_log_pages",
	OpChangeMode:                    "css_changemode",
}

func (o Op) String() string {
	if s, ok := opNames[o]; ok {
		return s
	}
	return "unknown_op"
}

// ReplyKind classifies which reply shape an Op uses.
type ReplyKind uint8

const (
	ReplyNone ReplyKind = iota // fire-and-forget, no reply expected
	ReplyUnary
	ReplyWithOneDataBlock
	ReplyWithTwoDataBlocks
	ReplyWithCopyArea
	ReplyWithLogPages
	ReplyWithCallback
)

var opReplyKind = map[Op]ReplyKind{
	OpTranSetInterrupt:             ReplyNone,
	OpLogHasFinishedClientPostpone: ReplyNone,
	OpLogHasFinishedClientUndo:     ReplyNone,
	OpLocatorForce:                 ReplyWithCopyArea,
	OpLocatorFetch:                 ReplyWithCopyArea,
	OpLocatorFetchAll:              ReplyWithCopyArea,
	OpLocatorFetchLockset:          ReplyWithCopyArea,
	OpQueryExecute:                 ReplyWithTwoDataBlocks,
	OpQueryNextPage:                ReplyWithOneDataBlock,
	OpLogWriterFetchLogPages:       ReplyWithLogPages,
	OpTranCommit:                   ReplyWithCallback,
	OpTranAbort:                    ReplyWithCallback,
}

// ReplyKindOf reports the reply shape for op, defaulting to ReplyUnary.
func ReplyKindOf(op Op) ReplyKind {
	if k, ok := opReplyKind[op]; ok {
		return k
	}
	return ReplyUnary
}
