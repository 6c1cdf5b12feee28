package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt"

	"github.com/desain-gratis/blog/types/entity"
	types "github.com/desain-gratis/blog/types/http"
	"github.com/desain-gratis/blog/usecase/account"
)

const kidHeader = "kid"

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

var (
	ErrInvalidSigningMethod  = errors.New("invalid signing method")
	ErrKeyIdentifierNotFound = errors.New("key identifier not found")
	ErrInvalidToken          = errors.New("invalid token")
)

type customClaim struct {
	jwt.StandardClaims
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	TokenType string `json:"token_type"`
}

// tokenSigner issues and verifies HMAC signed tokens. The kid header
// selects the key, so keys can rotate without invalidating every
// outstanding token.
type tokenSigner struct {
	issuer        string
	hmacKeys      map[string]string
	keyID         string
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

func newTokenSigner(issuer string, hmacKeys map[string]string, keyID string, accessExpiry, refreshExpiry time.Duration) *tokenSigner {
	return &tokenSigner{
		issuer:        issuer,
		hmacKeys:      hmacKeys,
		keyID:         keyID,
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
	}
}

func (s *tokenSigner) IssuePair(u entity.User) (account.TokenPair, *types.CommonError) {
	access, err := s.sign(u, tokenTypeAccess, s.accessExpiry)
	if err != nil {
		return account.TokenPair{}, errGenerateToken()
	}
	refresh, err := s.sign(u, tokenTypeRefresh, s.refreshExpiry)
	if err != nil {
		return account.TokenPair{}, errGenerateToken()
	}
	return account.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresIn:    int64(s.accessExpiry / time.Second),
	}, nil
}

func (s *tokenSigner) sign(u entity.User, tokenType string, expiry time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, customClaim{
		StandardClaims: jwt.StandardClaims{
			Issuer:    s.issuer,
			Subject:   u.ID,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(expiry).Unix(),
		},
		UserID:    u.ID,
		Username:  u.Username,
		Role:      string(u.Role),
		TokenType: tokenType,
	})
	token.Header[kidHeader] = s.keyID

	return token.SignedString([]byte(s.hmacKeys[s.keyID]))
}

func (s *tokenSigner) Verify(token, wantType string) (entity.Principal, *types.CommonError) {
	claims := &customClaim{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(parsed *jwt.Token) (interface{}, error) {
		if _, ok := parsed.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSigningMethod
		}
		kid, ok := parsed.Header[kidHeader].(string)
		if !ok {
			return nil, ErrKeyIdentifierNotFound
		}
		secret, ok := s.hmacKeys[kid]
		if !ok {
			return nil, ErrKeyIdentifierNotFound
		}
		return []byte(secret), nil
	})
	if err != nil || !parsed.Valid {
		return entity.Principal{}, errVerifyToken()
	}

	if claims.TokenType != wantType {
		return entity.Principal{}, errVerifyToken()
	}

	role, ok := entity.ParseRole(claims.Role)
	if !ok {
		return entity.Principal{}, errVerifyToken()
	}

	return entity.Principal{
		UserID:   claims.UserID,
		Username: claims.Username,
		Role:     role,
	}, nil
}

func errGenerateToken() *types.CommonError {
	return types.NewCommonError(http.StatusInternalServerError, "GENERATE_TOKEN_FAILED", "Failed to generate token")
}

func errVerifyToken() *types.CommonError {
	return types.NewCommonError(http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired token")
}
