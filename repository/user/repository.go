package user

import (
	"context"

	"github.com/desain-gratis/blog/types/entity"
	types "github.com/desain-gratis/blog/types/http"
)

type Repository interface {
	// Create stores a new user. Email and username must be unique.
	Create(ctx context.Context, user entity.User) (entity.User, *types.CommonError)

	GetByID(ctx context.Context, id string) (entity.User, *types.CommonError)

	GetByEmail(ctx context.Context, email string) (entity.User, *types.CommonError)
}
