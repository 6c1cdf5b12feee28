package postgres

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/desain-gratis/blog/repository/blog"
	"github.com/desain-gratis/blog/types/entity"
	types "github.com/desain-gratis/blog/types/http"
)

var _ blog.Repository = &handler{}

type handler struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *handler {
	return &handler{db: db}
}

type row struct {
	ID        string         `db:"id"`
	Title     string         `db:"title"`
	Content   string         `db:"content"`
	Status    string         `db:"status"`
	AuthorID  string         `db:"author_id"`
	Images    pq.StringArray `db:"images"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
	DeletedAt *time.Time     `db:"deleted_at"`
}

func (r row) toEntity() entity.Blog {
	return entity.Blog{
		ID:        r.ID,
		Title:     r.Title,
		Content:   r.Content,
		Status:    entity.BlogStatus(r.Status),
		AuthorID:  r.AuthorID,
		Images:    r.Images,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
		DeletedAt: r.DeletedAt,
	}
}

func errNotFound() *types.CommonError {
	return types.NewCommonError(http.StatusNotFound, "NOT_FOUND", "Blog not found")
}

func errStorage(err error, what string) *types.CommonError {
	log.Err(err).Msgf("Failed to %v blog", what)
	return types.NewCommonError(http.StatusFailedDependency, "STORAGE_ERROR", "Failed to "+what+" blog")
}

func (h *handler) Create(ctx context.Context, b entity.Blog) (entity.Blog, *types.CommonError) {
	b.ID = uuid.NewString()
	now := time.Now().UTC()
	b.CreatedAt = now
	b.UpdatedAt = now
	b.DeletedAt = nil

	_, err := h.db.ExecContext(ctx,
		`INSERT INTO blogs (id, title, content, status, author_id, images, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		b.ID, b.Title, b.Content, b.Status, b.AuthorID, pq.StringArray(b.Images), b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return entity.Blog{}, errStorage(err, "store")
	}
	return b, nil
}

func (h *handler) Get(ctx context.Context, id string) (entity.Blog, *types.CommonError) {
	var r row
	err := h.db.GetContext(ctx, &r,
		`SELECT id, title, content, status, author_id, images, created_at, updated_at, deleted_at
		 FROM blogs WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.Blog{}, errNotFound()
		}
		return entity.Blog{}, errStorage(err, "query")
	}
	return r.toEntity(), nil
}

func (h *handler) Exists(ctx context.Context, id string) (bool, *types.CommonError) {
	var exists bool
	err := h.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM blogs WHERE id = $1 AND deleted_at IS NULL)`, id)
	if err != nil {
		return false, errStorage(err, "query")
	}
	return exists, nil
}

func (h *handler) ListByStatus(ctx context.Context, status entity.BlogStatus, limit, offset int) ([]entity.Blog, int, *types.CommonError) {
	var rows []row
	err := h.db.SelectContext(ctx, &rows,
		`SELECT id, title, content, status, author_id, images, created_at, updated_at, deleted_at
		 FROM blogs WHERE status = $1 AND deleted_at IS NULL
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		status, limit, offset)
	if err != nil {
		return nil, 0, errStorage(err, "list")
	}

	var total int
	err = h.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM blogs WHERE status = $1 AND deleted_at IS NULL`, status)
	if err != nil {
		return nil, 0, errStorage(err, "count")
	}

	result := make([]entity.Blog, 0, len(rows))
	for _, r := range rows {
		result = append(result, r.toEntity())
	}
	return result, total, nil
}

func (h *handler) Update(ctx context.Context, b entity.Blog) (entity.Blog, *types.CommonError) {
	b.UpdatedAt = time.Now().UTC()

	res, err := h.db.ExecContext(ctx,
		`UPDATE blogs SET title = $2, content = $3, status = $4, images = $5, updated_at = $6
		 WHERE id = $1 AND deleted_at IS NULL`,
		b.ID, b.Title, b.Content, b.Status, pq.StringArray(b.Images), b.UpdatedAt,
	)
	if err != nil {
		return entity.Blog{}, errStorage(err, "update")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return entity.Blog{}, errNotFound()
	}
	return h.Get(ctx, b.ID)
}

func (h *handler) SoftDelete(ctx context.Context, id string) *types.CommonError {
	res, err := h.db.ExecContext(ctx,
		`UPDATE blogs SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL`,
		id, time.Now().UTC(),
	)
	if err != nil {
		return errStorage(err, "delete")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errNotFound()
	}
	return nil
}
