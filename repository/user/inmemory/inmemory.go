package inmemory

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/desain-gratis/blog/repository/user"
	"github.com/desain-gratis/blog/types/entity"
	types "github.com/desain-gratis/blog/types/http"
)

var _ user.Repository = &handler{}

// handler emulates the user table for tests and local development.
type handler struct {
	mtx     *sync.Mutex
	counter int

	byID    map[string]entity.User
	byEmail map[string]string
	byName  map[string]string
}

func New() *handler {
	return &handler{
		mtx:     &sync.Mutex{},
		byID:    make(map[string]entity.User),
		byEmail: make(map[string]string),
		byName:  make(map[string]string),
	}
}

func (h *handler) Create(ctx context.Context, u entity.User) (entity.User, *types.CommonError) {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	if _, ok := h.byEmail[u.Email]; ok {
		return entity.User{}, types.NewCommonError(http.StatusConflict, "ALREADY_EXISTS", "Email already registered")
	}
	if _, ok := h.byName[u.Username]; ok {
		return entity.User{}, types.NewCommonError(http.StatusConflict, "ALREADY_EXISTS", "Username already taken")
	}

	h.counter++
	u.ID = strconv.Itoa(h.counter)
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	h.byID[u.ID] = u
	h.byEmail[u.Email] = u.ID
	h.byName[u.Username] = u.ID

	return u, nil
}

func (h *handler) GetByID(ctx context.Context, id string) (entity.User, *types.CommonError) {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	u, ok := h.byID[id]
	if !ok {
		return entity.User{}, types.NewCommonError(http.StatusNotFound, "NOT_FOUND", "User not found")
	}
	return u, nil
}

func (h *handler) GetByEmail(ctx context.Context, email string) (entity.User, *types.CommonError) {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	id, ok := h.byEmail[email]
	if !ok {
		return entity.User{}, types.NewCommonError(http.StatusNotFound, "NOT_FOUND", "User not found")
	}
	return h.byID[id], nil
}
