package notification

import (
	"github.com/desain-gratis/blog/lib/notifier"
	"github.com/desain-gratis/blog/types/entity"
	types "github.com/desain-gratis/blog/types/http"
)

// PendingBlogAlert is fanned out to every subscribed moderator when a
// blog enters the pending state. Immutable once created.
type PendingBlogAlert struct {
	Type     string `json:"type"`
	BlogID   string `json:"blog_id"`
	Title    string `json:"title"`
	AuthorID string `json:"author_id"`
}

const AlertTypePendingBlog = "new_pending_blog"

func NewPendingBlogAlert(b entity.Blog) PendingBlogAlert {
	return PendingBlogAlert{
		Type:     AlertTypePendingBlog,
		BlogID:   b.ID,
		Title:    b.Title,
		AuthorID: b.AuthorID,
	}
}

// Usecase is the moderator alert hub: a single topic, restricted to
// principals that may moderate.
type Usecase interface {
	// Subscribe registers a new moderator connection and returns its
	// session. Non-moderator principals are refused before any state
	// is allocated.
	Subscribe(p entity.Principal) (notifier.Session, *types.CommonError)

	// Publish fans the alert out to all current subscribers. Zero
	// subscribers is not an error; the alert is simply lost.
	Publish(alert PendingBlogAlert)
}
