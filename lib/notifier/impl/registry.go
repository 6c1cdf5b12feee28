package impl

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/desain-gratis/blog/lib/notifier"
)

var _ notifier.Registry = &registry{}
var _ notifier.Metric = &registry{}

// registry synchronizes per topic: the registry-level lock only guards
// the topic map itself, so join/leave/broadcast on one topic never
// block another topic.
type registry struct {
	mu     sync.Mutex
	topics map[string]*topic
}

type topic struct {
	mu      sync.Mutex
	members map[string]notifier.Handle

	// set when the topic has been garbage collected from the map;
	// a concurrent Join that still holds a reference must retry
	gone bool
}

func NewRegistry() *registry {
	return &registry{
		topics: make(map[string]*topic),
	}
}

func (r *registry) Join(name string, h notifier.Handle) {
	for {
		r.mu.Lock()
		t, ok := r.topics[name]
		if !ok {
			t = &topic{members: make(map[string]notifier.Handle)}
			r.topics[name] = t
		}
		r.mu.Unlock()

		t.mu.Lock()
		if t.gone {
			t.mu.Unlock()
			continue
		}
		t.members[h.ID()] = h
		t.mu.Unlock()
		return
	}
}

func (r *registry) Leave(name string, h notifier.Handle) {
	r.mu.Lock()
	t, ok := r.topics[name]
	r.mu.Unlock()
	if !ok {
		return
	}

	t.mu.Lock()
	delete(t.members, h.ID())
	empty := len(t.members) == 0
	if empty {
		t.gone = true
	}
	t.mu.Unlock()

	if !empty {
		return
	}

	// last member left; release the topic so an unbounded stream of
	// topic names cannot grow the map forever
	r.mu.Lock()
	if cur, ok := r.topics[name]; ok && cur == t {
		delete(r.topics, name)
	}
	r.mu.Unlock()
}

func (r *registry) Snapshot(name string) []notifier.Handle {
	r.mu.Lock()
	t, ok := r.topics[name]
	r.mu.Unlock()
	if !ok {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	result := make([]notifier.Handle, 0, len(t.members))
	for _, h := range t.members {
		result = append(result, h)
	}
	return result
}

func (r *registry) Broadcast(name string, msg any) {
	// deliver outside the membership lock so one slow member cannot
	// stall join/leave for the rest of the topic
	for _, h := range r.Snapshot(name) {
		if ok := h.TrySend(msg); !ok {
			log.Debug().Msgf("registry: dropped message for %v on %v", h.ID(), name)
		}
	}
}

func (r *registry) GetMetric() any {
	r.mu.Lock()
	topics := make([]*topic, 0, len(r.topics))
	for _, t := range r.topics {
		topics = append(topics, t)
	}
	r.mu.Unlock()

	var subscriberCount int
	for _, t := range topics {
		t.mu.Lock()
		subscriberCount += len(t.members)
		t.mu.Unlock()
	}

	return map[string]any{
		"n_topic":        len(topics),
		"n_subscription": subscriberCount,
	}
}
