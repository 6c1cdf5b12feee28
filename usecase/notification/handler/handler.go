package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/desain-gratis/blog/lib/notifier"
	"github.com/desain-gratis/blog/types/entity"
	types "github.com/desain-gratis/blog/types/http"
	"github.com/desain-gratis/blog/usecase/notification"

	notifier_impl "github.com/desain-gratis/blog/lib/notifier/impl"
)

// the hub has exactly one topic
const topicPendingBlogs = "pending-blogs"

var _ notification.Usecase = &handler{}

type handler struct {
	registry  notifier.Registry
	keepalive time.Duration
	queueSize int
}

func New(registry notifier.Registry, keepalive time.Duration, queueSize int) *handler {
	return &handler{
		registry:  registry,
		keepalive: keepalive,
		queueSize: queueSize,
	}
}

func (h *handler) Subscribe(p entity.Principal) (notifier.Session, *types.CommonError) {
	if !p.CanModerate() {
		return nil, types.NewCommonError(http.StatusForbidden, "FORBIDDEN", "Moderator role required")
	}

	handle := notifier_impl.NewHandle(uuid.NewString(), h.queueSize)
	session := notifier_impl.NewSession(h.registry, topicPendingBlogs, handle, h.keepalive)

	log.Info().Msgf("notification: subscribed %v (%v)", p.UserID, handle.ID())
	return session, nil
}

func (h *handler) Publish(alert notification.PendingBlogAlert) {
	h.registry.Broadcast(topicPendingBlogs, alert)
}
