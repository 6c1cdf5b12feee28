package blog

import (
	"context"

	"github.com/desain-gratis/blog/types/entity"
	types "github.com/desain-gratis/blog/types/http"
)

type Repository interface {
	Create(ctx context.Context, blog entity.Blog) (entity.Blog, *types.CommonError)

	// Get returns a blog by id, excluding soft-deleted ones.
	Get(ctx context.Context, id string) (entity.Blog, *types.CommonError)

	// Exists reports whether a non-deleted blog with this id exists.
	Exists(ctx context.Context, id string) (bool, *types.CommonError)

	// ListByStatus returns non-deleted blogs with the given status,
	// newest first, plus the total count for pagination.
	ListByStatus(ctx context.Context, status entity.BlogStatus, limit, offset int) ([]entity.Blog, int, *types.CommonError)

	Update(ctx context.Context, blog entity.Blog) (entity.Blog, *types.CommonError)

	// SoftDelete marks the blog deleted. Deleting twice is an error
	// because the second lookup no longer sees the blog.
	SoftDelete(ctx context.Context, id string) *types.CommonError
}
