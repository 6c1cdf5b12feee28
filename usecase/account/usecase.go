package account

import (
	"context"

	"github.com/desain-gratis/blog/types/entity"
	types "github.com/desain-gratis/blog/types/http"
)

// Usecase is the identity collaborator: it registers users, exchanges
// credentials for tokens, and resolves a presented token into a
// verified principal. Everything downstream only ever sees Principal.
type Usecase interface {
	Register(ctx context.Context, req RegisterRequest) (entity.User, *types.CommonError)

	SignIn(ctx context.Context, email, password string) (TokenPair, *types.CommonError)

	// Refresh exchanges a valid refresh token for a new token pair.
	Refresh(ctx context.Context, refreshToken string) (TokenPair, *types.CommonError)

	// Verify validates an access token and returns its principal.
	Verify(ctx context.Context, accessToken string) (entity.Principal, *types.CommonError)

	Get(ctx context.Context, userID string) (entity.User, *types.CommonError)
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}
