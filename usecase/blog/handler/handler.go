package handler

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/desain-gratis/blog/types/entity"
	types "github.com/desain-gratis/blog/types/http"
	blog_uc "github.com/desain-gratis/blog/usecase/blog"
	"github.com/desain-gratis/blog/usecase/notification"

	blog_repo "github.com/desain-gratis/blog/repository/blog"
)

var _ blog_uc.Usecase = &handler{}

type handler struct {
	blogs  blog_repo.Repository
	alerts notification.Usecase
}

func New(blogs blog_repo.Repository, alerts notification.Usecase) *handler {
	return &handler{
		blogs:  blogs,
		alerts: alerts,
	}
}

func (h *handler) Create(ctx context.Context, p entity.Principal, req blog_uc.CreateRequest) (entity.Blog, *types.CommonError) {
	b := entity.Blog{
		Title:    req.Title,
		Content:  req.Content,
		Images:   req.Images,
		Status:   entity.BlogStatusPending,
		AuthorID: p.UserID,
	}
	if errUC := b.Validate(); errUC != nil {
		return entity.Blog{}, errUC
	}

	created, errUC := h.blogs.Create(ctx, b)
	if errUC != nil {
		return entity.Blog{}, errUC
	}

	// alert moderators only once the blog is durably pending
	h.alerts.Publish(notification.NewPendingBlogAlert(created))

	log.Info().Msgf("blog: created %v by %v", created.ID, p.UserID)
	return created, nil
}

func (h *handler) Get(ctx context.Context, p *entity.Principal, id string) (entity.Blog, *types.CommonError) {
	b, errUC := h.blogs.Get(ctx, id)
	if errUC != nil {
		return entity.Blog{}, errUC
	}

	if !canView(b, p) {
		// hide the blog's existence from readers who may not see it
		return entity.Blog{}, types.NewCommonError(http.StatusNotFound, "NOT_FOUND", "Blog not found")
	}
	return b, nil
}

func (h *handler) ListApproved(ctx context.Context, limit, offset int) (blog_uc.ListResponse, *types.CommonError) {
	return h.list(ctx, entity.BlogStatusApproved, limit, offset)
}

func (h *handler) ListPending(ctx context.Context, p entity.Principal, limit, offset int) (blog_uc.ListResponse, *types.CommonError) {
	if !p.CanModerate() {
		return blog_uc.ListResponse{}, errForbidden()
	}
	return h.list(ctx, entity.BlogStatusPending, limit, offset)
}

func (h *handler) list(ctx context.Context, status entity.BlogStatus, limit, offset int) (blog_uc.ListResponse, *types.CommonError) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	items, total, errUC := h.blogs.ListByStatus(ctx, status, limit, offset)
	if errUC != nil {
		return blog_uc.ListResponse{}, errUC
	}
	return blog_uc.ListResponse{
		Items:  items,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}, nil
}

func (h *handler) Update(ctx context.Context, p entity.Principal, id string, req blog_uc.UpdateRequest) (entity.Blog, *types.CommonError) {
	b, errUC := h.blogs.Get(ctx, id)
	if errUC != nil {
		return entity.Blog{}, errUC
	}

	if !canEdit(b, p) {
		return entity.Blog{}, errForbidden()
	}

	if req.Title != nil {
		b.Title = *req.Title
	}
	if req.Content != nil {
		b.Content = *req.Content
	}
	if req.Images != nil {
		b.Images = *req.Images
	}
	if errUC := b.Validate(); errUC != nil {
		return entity.Blog{}, errUC
	}

	return h.blogs.Update(ctx, b)
}

func (h *handler) Delete(ctx context.Context, p entity.Principal, id string) *types.CommonError {
	b, errUC := h.blogs.Get(ctx, id)
	if errUC != nil {
		return errUC
	}

	if !canDelete(b, p) {
		return errForbidden()
	}

	return h.blogs.SoftDelete(ctx, id)
}

func (h *handler) Approve(ctx context.Context, p entity.Principal, id string) (entity.Blog, *types.CommonError) {
	return h.transition(ctx, p, id, entity.BlogStatusApproved)
}

func (h *handler) Reject(ctx context.Context, p entity.Principal, id string) (entity.Blog, *types.CommonError) {
	return h.transition(ctx, p, id, entity.BlogStatusRejected)
}

func (h *handler) transition(ctx context.Context, p entity.Principal, id string, status entity.BlogStatus) (entity.Blog, *types.CommonError) {
	if !p.CanModerate() {
		return entity.Blog{}, errForbidden()
	}

	b, errUC := h.blogs.Get(ctx, id)
	if errUC != nil {
		return entity.Blog{}, errUC
	}

	b.Status = status
	updated, errUC := h.blogs.Update(ctx, b)
	if errUC != nil {
		return entity.Blog{}, errUC
	}

	log.Info().Msgf("blog: %v set to %v by %v", id, status, p.UserID)
	return updated, nil
}

func canView(b entity.Blog, p *entity.Principal) bool {
	if b.Status == entity.BlogStatusApproved {
		return true
	}
	if p == nil {
		return false
	}
	return p.UserID == b.AuthorID || p.CanModerate()
}

func canEdit(b entity.Blog, p entity.Principal) bool {
	if p.Role == entity.RoleAdmin {
		return true
	}
	return p.UserID == b.AuthorID && b.Status != entity.BlogStatusApproved
}

func canDelete(b entity.Blog, p entity.Principal) bool {
	if p.Role == entity.RoleAdmin {
		return true
	}
	return p.UserID == b.AuthorID
}

func errForbidden() *types.CommonError {
	return types.NewCommonError(http.StatusForbidden, "FORBIDDEN", "Not allowed")
}
