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

	"github.com/desain-gratis/blog/repository/user"
	"github.com/desain-gratis/blog/types/entity"
	types "github.com/desain-gratis/blog/types/http"
)

var _ user.Repository = &handler{}

type handler struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *handler {
	return &handler{db: db}
}

func (h *handler) Create(ctx context.Context, u entity.User) (entity.User, *types.CommonError) {
	u.ID = uuid.NewString()
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	_, err := h.db.ExecContext(ctx,
		`INSERT INTO users (id, email, username, hashed_password, role, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		u.ID, u.Email, u.Username, u.HashedPassword, u.Role, u.IsActive, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return entity.User{}, types.NewCommonError(http.StatusConflict, "ALREADY_EXISTS", "Email or username already registered")
		}
		log.Err(err).Msgf("Failed to insert user")
		return entity.User{}, types.NewCommonError(http.StatusFailedDependency, "STORAGE_ERROR", "Failed to store user")
	}

	return u, nil
}

func (h *handler) GetByID(ctx context.Context, id string) (entity.User, *types.CommonError) {
	return h.getBy(ctx, `SELECT * FROM users WHERE id = $1`, id)
}

func (h *handler) GetByEmail(ctx context.Context, email string) (entity.User, *types.CommonError) {
	return h.getBy(ctx, `SELECT * FROM users WHERE email = $1`, email)
}

func (h *handler) getBy(ctx context.Context, query, arg string) (entity.User, *types.CommonError) {
	var u entity.User
	err := h.db.GetContext(ctx, &u, query, arg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.User{}, types.NewCommonError(http.StatusNotFound, "NOT_FOUND", "User not found")
		}
		log.Err(err).Msgf("Failed to query user")
		return entity.User{}, types.NewCommonError(http.StatusFailedDependency, "STORAGE_ERROR", "Failed to query user")
	}
	return u, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
