package postgres

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/desain-gratis/blog/repository/comment"
	"github.com/desain-gratis/blog/types/entity"
	types "github.com/desain-gratis/blog/types/http"
)

var _ comment.Repository = &handler{}

type handler struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *handler {
	return &handler{db: db}
}

func (h *handler) Append(ctx context.Context, c entity.Comment) (entity.Comment, *types.CommonError) {
	c.ID = uuid.NewString()
	c.CreatedAt = time.Now().UTC()

	_, err := h.db.ExecContext(ctx,
		`INSERT INTO comments (id, blog_id, user_id, content, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		c.ID, c.BlogID, c.UserID, c.Content, c.CreatedAt,
	)
	if err != nil {
		log.Err(err).Msgf("Failed to insert comment")
		return entity.Comment{}, types.NewCommonError(http.StatusFailedDependency, "STORAGE_ERROR", "Failed to store comment")
	}
	return c, nil
}

func (h *handler) ListByBlog(ctx context.Context, blogID string, limit, offset int) ([]entity.Comment, *types.CommonError) {
	var result []entity.Comment
	err := h.db.SelectContext(ctx, &result,
		`SELECT c.id, c.blog_id, c.user_id, u.username, c.content, c.created_at
		 FROM comments c JOIN users u ON u.id = c.user_id
		 WHERE c.blog_id = $1
		 ORDER BY c.created_at ASC LIMIT $2 OFFSET $3`,
		blogID, limit, offset)
	if err != nil {
		log.Err(err).Msgf("Failed to list comments")
		return nil, types.NewCommonError(http.StatusFailedDependency, "STORAGE_ERROR", "Failed to list comments")
	}
	return result, nil
}
