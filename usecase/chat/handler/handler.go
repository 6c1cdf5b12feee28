package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/desain-gratis/blog/lib/notifier"
	"github.com/desain-gratis/blog/repository/blog"
	"github.com/desain-gratis/blog/repository/comment"
	"github.com/desain-gratis/blog/types/entity"
	types "github.com/desain-gratis/blog/types/http"
	"github.com/desain-gratis/blog/usecase/chat"

	notifier_impl "github.com/desain-gratis/blog/lib/notifier/impl"
)

var _ chat.Usecase = &handler{}

type handler struct {
	registry  notifier.Registry
	blogs     blog.Repository
	comments  comment.Repository
	keepalive time.Duration
	queueSize int

	// collapses a stampede of concurrent existence checks for the
	// same blog into one storage query
	existsGroup singleflight.Group
}

func New(registry notifier.Registry, blogs blog.Repository, comments comment.Repository, keepalive time.Duration, queueSize int) *handler {
	return &handler{
		registry:  registry,
		blogs:     blogs,
		comments:  comments,
		keepalive: keepalive,
		queueSize: queueSize,
	}
}

func (h *handler) Join(ctx context.Context, blogID string, p entity.Principal) (notifier.Session, *types.CommonError) {
	exists, errUC := h.blogExists(ctx, blogID)
	if errUC != nil {
		return nil, errUC
	}
	if !exists {
		return nil, types.NewCommonError(http.StatusNotFound, "NOT_FOUND", "Blog not found")
	}

	handle := notifier_impl.NewHandle(uuid.NewString(), h.queueSize)
	session := notifier_impl.NewSession(h.registry, blogID, handle, h.keepalive)

	log.Info().Msgf("chat: %v joined room %v (%v)", p.UserID, blogID, handle.ID())
	return session, nil
}

func (h *handler) HandleInbound(ctx context.Context, blogID string, p entity.Principal, raw []byte) {
	var msg chat.InboundMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		// invalid JSON is dropped; the connection stays up
		return
	}
	if msg.Type != chat.MessageTypeComment {
		return
	}

	content := strings.TrimSpace(msg.Content)
	if content == "" {
		return
	}

	stored, errUC := h.comments.Append(ctx, entity.Comment{
		BlogID:   blogID,
		UserID:   p.UserID,
		Username: p.Username,
		Content:  content,
	})
	if errUC != nil {
		// without durable storage there is nothing to broadcast
		log.Err(errUC.Err()).Msgf("chat: failed to persist comment in room %v", blogID)
		return
	}

	h.registry.Broadcast(blogID, chat.CommentMessage{
		Type:      chat.MessageTypeComment,
		BlogID:    stored.BlogID,
		CommentID: stored.ID,
		Content:   stored.Content,
		UserID:    stored.UserID,
		Username:  stored.Username,
		CreatedAt: stored.CreatedAt.UTC().Format(time.RFC3339),
	})
}

func (h *handler) History(ctx context.Context, blogID string, limit, offset int) ([]entity.Comment, *types.CommonError) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	exists, errUC := h.blogExists(ctx, blogID)
	if errUC != nil {
		return nil, errUC
	}
	if !exists {
		return nil, types.NewCommonError(http.StatusNotFound, "NOT_FOUND", "Blog not found")
	}

	return h.comments.ListByBlog(ctx, blogID, limit, offset)
}

func (h *handler) blogExists(ctx context.Context, blogID string) (bool, *types.CommonError) {
	result, err, _ := h.existsGroup.Do(blogID, func() (any, error) {
		exists, errUC := h.blogs.Exists(ctx, blogID)
		if errUC != nil {
			return false, errUC.Err()
		}
		return exists, nil
	})
	if err != nil {
		return false, types.NewCommonError(http.StatusFailedDependency, "STORAGE_ERROR", "Failed to check blog")
	}
	return result.(bool), nil
}
