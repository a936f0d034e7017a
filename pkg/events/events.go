package events

import (
	"sync"
	"time"
)

// EventType is the closed catalogue of session-lifecycle notifications a
// caller can subscribe to.
type EventType string

const (
	EventSessionConnected    EventType = "session.connected"
	EventSessionReset        EventType = "session.reset"
	EventTransactionCommit   EventType = "transaction.committed"
	EventTransactionAbort    EventType = "transaction.aborted"
	EventUnilateralAbort     EventType = "transaction.unilaterally_aborted"
	EventSavepointCreated    EventType = "savepoint.created"
	EventSavepointPartial    EventType = "savepoint.partial_abort"
	EventLooseEndRun         EventType = "looseend.run"
	EventLogWriterModeChange EventType = "logwriter.mode_changed"
	EventLogWriterBehind     EventType = "logwriter.behind"
	EventObjectDirty         EventType = "object.dirty"
)

// Event is a single session-lifecycle notification.
type Event struct {
	ID        string
	Type      EventType
	Timestamp time.Time
	Message   string
	Metadata  map[string]string
}

// Subscriber is a channel that receives events.
type Subscriber chan *Event

// Broker fans out session events to any number of subscribers (log
// sinks, CLI progress reporters, metrics bridges) without coupling the
// transaction manager or log-writer client to any one of them.
type Broker struct {
	subscribers map[Subscriber]bool
	mu          sync.RWMutex
	eventCh     chan *Event
	stopCh      chan struct{}
}

// NewBroker creates a new event broker.
func NewBroker() *Broker {
	return &Broker{
		subscribers: make(map[Subscriber]bool),
		eventCh:     make(chan *Event, 100),
		stopCh:      make(chan struct{}),
	}
}

// Start begins the broker's event distribution loop.
func (b *Broker) Start() {
	go b.run()
}

// Stop stops the broker.
func (b *Broker) Stop() {
	close(b.stopCh)
}

// Subscribe creates a new subscription and returns a channel.
func (b *Broker) Subscribe() Subscriber {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := make(Subscriber, 50)
	b.subscribers[sub] = true
	return sub
}

// Unsubscribe removes a subscription.
func (b *Broker) Unsubscribe(sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.subscribers, sub)
	close(sub)
}

// Publish publishes an event to all subscribers.
func (b *Broker) Publish(event *Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	select {
	case b.eventCh <- event:
	case <-b.stopCh:
	}
}

func (b *Broker) run() {
	for {
		select {
		case event := <-b.eventCh:
			b.broadcast(event)
		case <-b.stopCh:
			return
		}
	}
}

func (b *Broker) broadcast(event *Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for sub := range b.subscribers {
		select {
		case sub <- event:
		default:
			// subscriber buffer full, drop rather than block the session
		}
	}
}

// SubscriberCount returns the number of active subscribers.
func (b *Broker) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
