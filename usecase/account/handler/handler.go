package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/desain-gratis/blog/repository/user"
	"github.com/desain-gratis/blog/types/entity"
	types "github.com/desain-gratis/blog/types/http"
	"github.com/desain-gratis/blog/usecase/account"
)

const minPasswordLength = 8

var _ account.Usecase = &handler{}

type handler struct {
	users  user.Repository
	signer *tokenSigner
}

func New(users user.Repository, issuer string, hmacKeys map[string]string, keyID string, accessExpiry, refreshExpiry time.Duration) *handler {
	return &handler{
		users:  users,
		signer: newTokenSigner(issuer, hmacKeys, keyID, accessExpiry, refreshExpiry),
	}
}

func (h *handler) Register(ctx context.Context, req account.RegisterRequest) (entity.User, *types.CommonError) {
	if len(req.Password) < minPasswordLength {
		return entity.User{}, types.NewCommonError(http.StatusBadRequest, "BAD_REQUEST", "Password must be at least 8 characters")
	}

	u := entity.User{
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		Username: strings.TrimSpace(req.Username),
		Role:     entity.RoleUser,
		IsActive: true,
	}
	if errUC := u.Validate(); errUC != nil {
		return entity.User{}, errUC
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Err(err).Msgf("Failed to hash password")
		return entity.User{}, types.NewCommonError(http.StatusInternalServerError, "SERVER_ERROR", "Failed to register")
	}
	u.HashedPassword = string(hashed)

	created, errUC := h.users.Create(ctx, u)
	if errUC != nil {
		return entity.User{}, errUC
	}

	log.Info().Msgf("account: registered %v", created.ID)
	return created, nil
}

func (h *handler) SignIn(ctx context.Context, email, password string) (account.TokenPair, *types.CommonError) {
	u, errUC := h.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errUC != nil {
		// do not leak which of email / password was wrong
		return account.TokenPair{}, errInvalidCredentials()
	}

	if !u.IsActive {
		return account.TokenPair{}, types.NewCommonError(http.StatusForbidden, "FORBIDDEN", "Account is deactivated")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.HashedPassword), []byte(password)); err != nil {
		return account.TokenPair{}, errInvalidCredentials()
	}

	return h.signer.IssuePair(u)
}

func (h *handler) Refresh(ctx context.Context, refreshToken string) (account.TokenPair, *types.CommonError) {
	principal, errUC := h.signer.Verify(refreshToken, tokenTypeRefresh)
	if errUC != nil {
		return account.TokenPair{}, errUC
	}

	// re-read the user: role changes and deactivation take effect at
	// the next refresh at the latest
	u, errUC := h.users.GetByID(ctx, principal.UserID)
	if errUC != nil {
		return account.TokenPair{}, errInvalidCredentials()
	}
	if !u.IsActive {
		return account.TokenPair{}, types.NewCommonError(http.StatusForbidden, "FORBIDDEN", "Account is deactivated")
	}

	return h.signer.IssuePair(u)
}

func (h *handler) Verify(ctx context.Context, accessToken string) (entity.Principal, *types.CommonError) {
	return h.signer.Verify(accessToken, tokenTypeAccess)
}

func (h *handler) Get(ctx context.Context, userID string) (entity.User, *types.CommonError) {
	return h.users.GetByID(ctx, userID)
}

func errInvalidCredentials() *types.CommonError {
	return types.NewCommonError(http.StatusUnauthorized, "UNAUTHORIZED", "Invalid credentials")
}
