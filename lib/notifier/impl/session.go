package impl

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/desain-gratis/blog/lib/notifier"
)

// DefaultKeepalive is the interval between liveness probes on an idle
// connection. A transport that cannot take a probe is considered dead.
const DefaultKeepalive = 30 * time.Second

var _ notifier.Session = &Session{}

// Session owns the registered lifetime of one connection: it joins the
// handle to its topic on creation and guarantees that leave + handle
// close happen exactly once, no matter how many of client close, write
// error, and keepalive timeout fire.
type Session struct {
	registry  notifier.Registry
	topic     string
	handle    notifier.Handle
	keepalive time.Duration
	closeOnce sync.Once
}

func NewSession(registry notifier.Registry, topic string, h notifier.Handle, keepalive time.Duration) *Session {
	if keepalive <= 0 {
		keepalive = DefaultKeepalive
	}
	s := &Session{
		registry:  registry,
		topic:     topic,
		handle:    h,
		keepalive: keepalive,
	}
	registry.Join(topic, h)
	return s
}

func (s *Session) Handle() notifier.Handle {
	return s.handle
}

// Close deregisters the session. Idempotent; safe to call concurrently
// with an in-flight Broadcast on the same topic.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		// the handle must be dead before the leave completes: a
		// broadcast that snapshotted the topic earlier then finds a
		// closed handle and drops, instead of delivering after the
		// membership is gone
		s.handle.Close()
		s.registry.Leave(s.topic, s.handle)
		log.Debug().Msgf("session: closed %v on %v", s.handle.ID(), s.topic)
	})
}

// Run drains the outbound queue into write until the context is
// cancelled, the handle is closed, or the transport fails. It tears the
// session down on every exit path.
func (s *Session) Run(ctx context.Context, write notifier.WriteFunc, keepalive notifier.KeepaliveFunc) error {
	defer s.Close()

	ticker := time.NewTicker(s.keepalive)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.handle.Done():
			return nil
		case <-ticker.C:
			if err := keepalive(ctx); err != nil {
				log.Debug().Msgf("session: keepalive failed for %v: %v", s.handle.ID(), err)
				return err
			}
		case msg := <-s.handle.Listen():
			if err := write(ctx, msg); err != nil {
				return err
			}
		}
	}
}
