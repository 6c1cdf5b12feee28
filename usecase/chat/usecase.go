package chat

import (
	"context"

	"github.com/desain-gratis/blog/lib/notifier"
	"github.com/desain-gratis/blog/types/entity"
	types "github.com/desain-gratis/blog/types/http"
)

const MessageTypeComment = "comment"

// InboundMessage is what a room client may send. Anything that does not
// parse into this shape is ignored without feedback.
type InboundMessage struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// CommentMessage is the authoritative broadcast of a persisted comment,
// echoed to every room member including the sender.
type CommentMessage struct {
	Type      string `json:"type"`
	BlogID    string `json:"blog_id"`
	CommentID string `json:"comment_id"`
	Content   string `json:"content"`
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	CreatedAt string `json:"created_at"`
}

// Usecase is the per-blog chat hub. One topic per blog id, created on
// first join and released when the last member leaves.
type Usecase interface {
	// Join registers a connection into the blog's room, provided the
	// blog exists and is not deleted. The check happens once, here.
	Join(ctx context.Context, blogID string, p entity.Principal) (notifier.Session, *types.CommonError)

	// HandleInbound processes one raw client message. Malformed or
	// empty messages are dropped silently; a valid comment is
	// persisted first and broadcast only after it is durably stored.
	HandleInbound(ctx context.Context, blogID string, p entity.Principal, raw []byte)

	// History lists persisted comments of the blog in send order, so a
	// client joining late can backfill the room.
	History(ctx context.Context, blogID string, limit, offset int) ([]entity.Comment, *types.CommonError)
}
