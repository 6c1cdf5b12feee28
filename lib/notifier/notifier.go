package notifier

import "context"

// Handle wraps one live client connection registered into a topic.
// Outbound delivery goes through a bounded queue; inbound traffic is
// owned by whoever accepted the transport, never by the registry.
type Handle interface {
	// ID is unique per connection; topic membership is keyed by it.
	ID() string

	// TrySend enqueues a message for delivery. It never blocks: it
	// reports false when the queue is saturated or the handle is
	// already closed, and the message is dropped.
	TrySend(msg any) bool

	// Listen is the outbound queue, drained by the connection's
	// writer loop.
	Listen() <-chan any

	// Close marks the handle dead. Safe to call multiple times and
	// concurrently with TrySend.
	Close()

	// Done is closed when the handle is closed.
	Done() <-chan struct{}
}

// Registry is a concurrency-safe mapping from topic name to the set of
// subscribed handles. Operations on different topics do not contend.
type Registry interface {
	Join(topic string, h Handle)

	// Leave removes the handle from the topic. Removing a handle that
	// already left (or never joined) is a no-op. The last leave of a
	// topic releases the topic itself.
	Leave(topic string, h Handle)

	// Snapshot returns the current members of the topic. The returned
	// slice is a copy; membership changes after the call do not affect it.
	Snapshot(topic string) []Handle

	// Broadcast delivers msg to every current member of the topic,
	// best effort. A saturated or closing member drops the message;
	// the broadcast itself never blocks on any single member.
	Broadcast(topic string, msg any)
}

// Metric is implemented by registries that expose subscriber statistics.
type Metric interface {
	GetMetric() any
}

// WriteFunc pushes one message to the transport. It must honor ctx and
// return an error when the transport is gone.
type WriteFunc func(ctx context.Context, msg any) error

// KeepaliveFunc probes the transport for liveness.
type KeepaliveFunc func(ctx context.Context) error

// Session owns the registered lifetime of one connection: joined on
// creation, torn down exactly once.
type Session interface {
	Handle() Handle

	// Close deregisters the session. Idempotent.
	Close()

	// Run drains the outbound queue into write until the context is
	// cancelled, the handle is closed, or the transport fails. It
	// tears the session down on every exit path.
	Run(ctx context.Context, write WriteFunc, keepalive KeepaliveFunc) error
}
