package comment

import (
	"context"

	"github.com/desain-gratis/blog/types/entity"
	types "github.com/desain-gratis/blog/types/http"
)

type Repository interface {
	// Append stores a new comment, assigning its id and timestamp.
	// Comments are append-only.
	Append(ctx context.Context, comment entity.Comment) (entity.Comment, *types.CommonError)

	// ListByBlog returns the comments of a blog, oldest first.
	ListByBlog(ctx context.Context, blogID string, limit, offset int) ([]entity.Comment, *types.CommonError)
}
