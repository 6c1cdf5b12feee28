package blog

import (
	"context"

	"github.com/desain-gratis/blog/types/entity"
	types "github.com/desain-gratis/blog/types/http"
)

type CreateRequest struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Images  []string `json:"images,omitempty"`
}

// UpdateRequest carries a partial update; nil fields are left untouched.
type UpdateRequest struct {
	Title   *string   `json:"title,omitempty"`
	Content *string   `json:"content,omitempty"`
	Images  *[]string `json:"images,omitempty"`
}

type ListResponse struct {
	Items  []entity.Blog `json:"items"`
	Total  int           `json:"total"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}

// Usecase implements the publishing workflow: every new blog starts
// pending, and only moderators move it to approved or rejected.
type Usecase interface {
	// Create stores the blog as pending and alerts moderators after
	// the blog is durably stored.
	Create(ctx context.Context, p entity.Principal, req CreateRequest) (entity.Blog, *types.CommonError)

	// Get applies the view rule: approved blogs are public, anything
	// else is visible to its author and to moderators only. Pass nil
	// for an anonymous reader.
	Get(ctx context.Context, p *entity.Principal, id string) (entity.Blog, *types.CommonError)

	ListApproved(ctx context.Context, limit, offset int) (ListResponse, *types.CommonError)

	// ListPending is the moderation queue.
	ListPending(ctx context.Context, p entity.Principal, limit, offset int) (ListResponse, *types.CommonError)

	// Update: admin may edit any blog, the author may edit their own
	// as long as it is not yet approved.
	Update(ctx context.Context, p entity.Principal, id string, req UpdateRequest) (entity.Blog, *types.CommonError)

	// Delete soft-deletes: admin any, the author their own.
	Delete(ctx context.Context, p entity.Principal, id string) *types.CommonError

	Approve(ctx context.Context, p entity.Principal, id string) (entity.Blog, *types.CommonError)

	Reject(ctx context.Context, p entity.Principal, id string) (entity.Blog, *types.CommonError)
}
