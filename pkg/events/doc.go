/*
Package events provides an in-memory event broker for session-lifecycle
notifications: transaction commit/abort, savepoint creation and partial
abort, loose-end execution, and log-writer mode changes.

It is a topic-agnostic, non-blocking pub/sub bus: every published Event goes
to every subscriber's buffered channel, and a full subscriber buffer drops
the event rather than blocking the publisher (pkg/session must never stall
on a slow observer).

pkg/session is the only publisher in this module, and no package in it
subscribes; pkg/metrics counts transaction outcomes directly rather than
through the broker.
*/
package events
