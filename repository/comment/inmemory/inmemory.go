package inmemory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/desain-gratis/blog/repository/comment"
	"github.com/desain-gratis/blog/types/entity"
	types "github.com/desain-gratis/blog/types/http"
)

var _ comment.Repository = &handler{}

// handler emulates the comment table for tests and local development.
type handler struct {
	mtx    *sync.Mutex
	byBlog map[string][]entity.Comment
}

func New() *handler {
	return &handler{
		mtx:    &sync.Mutex{},
		byBlog: make(map[string][]entity.Comment),
	}
}

func (h *handler) Append(ctx context.Context, c entity.Comment) (entity.Comment, *types.CommonError) {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	c.ID = uuid.NewString()
	c.CreatedAt = time.Now().UTC()
	h.byBlog[c.BlogID] = append(h.byBlog[c.BlogID], c)
	return c, nil
}

func (h *handler) ListByBlog(ctx context.Context, blogID string, limit, offset int) ([]entity.Comment, *types.CommonError) {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	all := h.byBlog[blogID]
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}

	result := make([]entity.Comment, len(all))
	copy(result, all)
	return result, nil
}
