package inmemory

import (
	"context"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/desain-gratis/blog/repository/blog"
	"github.com/desain-gratis/blog/types/entity"
	types "github.com/desain-gratis/blog/types/http"
)

var _ blog.Repository = &handler{}

// handler emulates the blog table for tests and local development.
type handler struct {
	mtx     *sync.Mutex
	counter int
	data    map[string]entity.Blog
}

func New() *handler {
	return &handler{
		mtx:  &sync.Mutex{},
		data: make(map[string]entity.Blog),
	}
}

func errNotFound() *types.CommonError {
	return types.NewCommonError(http.StatusNotFound, "NOT_FOUND", "Blog not found")
}

func (h *handler) Create(ctx context.Context, b entity.Blog) (entity.Blog, *types.CommonError) {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	h.counter++
	b.ID = strconv.Itoa(h.counter)
	now := time.Now().UTC()
	b.CreatedAt = now
	b.UpdatedAt = now
	b.DeletedAt = nil

	h.data[b.ID] = b
	return b, nil
}

func (h *handler) Get(ctx context.Context, id string) (entity.Blog, *types.CommonError) {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	b, ok := h.data[id]
	if !ok || b.DeletedAt != nil {
		return entity.Blog{}, errNotFound()
	}
	return b, nil
}

func (h *handler) Exists(ctx context.Context, id string) (bool, *types.CommonError) {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	b, ok := h.data[id]
	return ok && b.DeletedAt == nil, nil
}

func (h *handler) ListByStatus(ctx context.Context, status entity.BlogStatus, limit, offset int) ([]entity.Blog, int, *types.CommonError) {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	var all []entity.Blog
	for _, b := range h.data {
		if b.DeletedAt == nil && b.Status == status {
			all = append(all, b)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, total, nil
}

func (h *handler) Update(ctx context.Context, b entity.Blog) (entity.Blog, *types.CommonError) {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	cur, ok := h.data[b.ID]
	if !ok || cur.DeletedAt != nil {
		return entity.Blog{}, errNotFound()
	}

	b.CreatedAt = cur.CreatedAt
	b.UpdatedAt = time.Now().UTC()
	b.DeletedAt = nil
	h.data[b.ID] = b
	return b, nil
}

func (h *handler) SoftDelete(ctx context.Context, id string) *types.CommonError {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	b, ok := h.data[id]
	if !ok || b.DeletedAt != nil {
		return errNotFound()
	}

	now := time.Now().UTC()
	b.DeletedAt = &now
	h.data[id] = b
	return nil
}
