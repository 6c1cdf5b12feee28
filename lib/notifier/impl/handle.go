package impl

import (
	"sync"

	"github.com/desain-gratis/blog/lib/notifier"
)

// DefaultQueueSize bounds the outbound queue of a handle. A consumer
// that falls further behind than this starts losing messages.
const DefaultQueueSize = 32

var _ notifier.Handle = &handle{}

type handle struct {
	id        string
	out       chan any
	done      chan struct{}
	closeOnce sync.Once
}

func NewHandle(id string, queueSize int) *handle {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &handle{
		id:   id,
		out:  make(chan any, queueSize),
		done: make(chan struct{}),
	}
}

func (h *handle) ID() string {
	return h.id
}

func (h *handle) TrySend(msg any) bool {
	select {
	case <-h.done:
		return false
	default:
	}

	select {
	case h.out <- msg:
		return true
	case <-h.done:
		return false
	default:
		// queue saturated; drop rather than block the publisher
		return false
	}
}

func (h *handle) Listen() <-chan any {
	return h.out
}

func (h *handle) Close() {
	h.closeOnce.Do(func() {
		close(h.done)
	})
}

func (h *handle) Done() <-chan struct{} {
	return h.done
}
