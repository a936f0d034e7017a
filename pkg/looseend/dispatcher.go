package looseend

import "fmt"

// Handler executes one deferred action.
type Handler func(a Action) error

// Dispatcher is the "statically keyed action vector": a
// table from ActionType to the handler that knows how to replay it.
// Unregistered action types are an error rather than silently skipped,
// since a loose end that cannot be executed leaves the transaction's
// outcome only half-applied.
type Dispatcher struct {
	handlers map[ActionType]Handler
}

// NewDispatcher returns an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[ActionType]Handler)}
}

// Register binds t to h, replacing any previous handler for t.
func (d *Dispatcher) Register(t ActionType, h Handler) {
	d.handlers[t] = h
}

// Dispatch runs the handler registered for a.Type.
func (d *Dispatcher) Dispatch(a Action) error {
	h, ok := d.handlers[a.Type]
	if !ok {
		return fmt.Errorf("looseend: no handler registered for action type %d (%s)", a.Type, a.Kind)
	}
	return h(a)
}
