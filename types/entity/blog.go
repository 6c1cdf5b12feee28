package entity

import (
	"net/http"
	"strings"
	"time"

	types "github.com/desain-gratis/blog/types/http"
)

type BlogStatus string

const (
	BlogStatusPending  BlogStatus = "pending"
	BlogStatusApproved BlogStatus = "approved"
	BlogStatusRejected BlogStatus = "rejected"
)

const maxTitleLength = 500

type Blog struct {
	ID        string     `json:"id" db:"id"`
	Title     string     `json:"title" db:"title"`
	Content   string     `json:"content" db:"content"`
	Status    BlogStatus `json:"status" db:"status"`
	AuthorID  string     `json:"author_id" db:"author_id"`
	Images    []string   `json:"images,omitempty" db:"-"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`

	// Soft delete marker. A deleted blog is invisible everywhere,
	// including the per-blog chat room.
	DeletedAt *time.Time `json:"-" db:"deleted_at"`
}

func (b *Blog) Validate() *types.CommonError {
	if strings.TrimSpace(b.Title) == "" {
		return types.NewCommonError(http.StatusBadRequest, "BAD_REQUEST", "Title must not be empty")
	}
	if len(b.Title) > maxTitleLength {
		return types.NewCommonError(http.StatusBadRequest, "BAD_REQUEST", "Title too long")
	}
	if strings.TrimSpace(b.Content) == "" {
		return types.NewCommonError(http.StatusBadRequest, "BAD_REQUEST", "Content must not be empty")
	}
	return nil
}
