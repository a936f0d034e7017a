package looseend

// Fetcher is the client's view of the server's deferred-action stream:
// `log_client_get_first_postpone`/`_next_postpone` for commit loose ends,
// `_first_undo`/`_next_undo` for abort loose ends, and the matching
// `log_has_finished_client_postpone`/`_undo` to release the server-side
// log record once the drain completes.
type Fetcher interface {
	FirstPostpone() (*Action, bool, error)
	NextPostpone() (*Action, bool, error)
	FinishPostpone() error

	FirstUndo() (*Action, bool, error)
	NextUndo() (*Action, bool, error)
	FinishUndo() error
}

// RunPostpone drains every pending commit loose end through d, in the
// LSA order the server hands them back, and returns how many ran. Calling
// it against a fetcher with no pending actions is a no-op that still
// signals FinishPostpone: an idempotent re-drain.
func RunPostpone(f Fetcher, d *Dispatcher) (int, error) {
	return run(f.FirstPostpone, f.NextPostpone, f.FinishPostpone, d)
}

// RunUndo is RunPostpone's abort-side counterpart.
func RunUndo(f Fetcher, d *Dispatcher) (int, error) {
	return run(f.FirstUndo, f.NextUndo, f.FinishUndo, d)
}

func run(first, next func() (*Action, bool, error), finish func() error, d *Dispatcher) (int, error) {
	count := 0
	action, ok, err := first()
	for {
		if err != nil {
			return count, err
		}
		if !ok {
			break
		}
		if err := d.Dispatch(*action); err != nil {
			return count, err
		}
		count++
		action, ok, err = next()
	}
	if err := finish(); err != nil {
		return count, err
	}
	return count, nil
}
