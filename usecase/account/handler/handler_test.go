package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/desain-gratis/blog/types/entity"
	"github.com/desain-gratis/blog/usecase/account"

	user_inmemory "github.com/desain-gratis/blog/repository/user/inmemory"
)

func newTestUsecase() account.Usecase {
	return New(user_inmemory.New(), "test-issuer", map[string]string{
		"k1": "a-test-secret-that-is-long-enough",
	}, "k1", 15*time.Minute, 7*24*time.Hour)
}

func register(t *testing.T, uc account.Usecase) entity.User {
	t.Helper()
	u, errUC := uc.Register(context.Background(), account.RegisterRequest{
		Email:    "Alice@Example.com",
		Username: "alice",
		Password: "correct horse",
	})
	if errUC != nil {
		t.Fatalf("register failed: %+v", errUC)
	}
	return u
}

func TestRegisterValidation(t *testing.T) {
	testCases := []struct {
		Name     string
		Request  account.RegisterRequest
		HTTPCode int
	}{
		{
			Name: "short password",
			Request: account.RegisterRequest{
				Email:    "a@b.com",
				Username: "alice",
				Password: "short",
			},
			HTTPCode: http.StatusBadRequest,
		},
		{
			Name: "missing email",
			Request: account.RegisterRequest{
				Username: "alice",
				Password: "long enough",
			},
			HTTPCode: http.StatusBadRequest,
		},
		{
			Name: "missing username",
			Request: account.RegisterRequest{
				Email:    "a@b.com",
				Password: "long enough",
			},
			HTTPCode: http.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			uc := newTestUsecase()
			_, errUC := uc.Register(context.Background(), tc.Request)
			if errUC == nil {
				t.Fatal("expected validation error")
			}
			if errUC.Errors[0].HTTPCode != tc.HTTPCode {
				t.Errorf("expected %v, got %v", tc.HTTPCode, errUC.Errors[0].HTTPCode)
			}
		})
	}
}

func TestRegisterNormalizesAndHashes(t *testing.T) {
	uc := newTestUsecase()
	u := register(t, uc)

	if u.Email != "alice@example.com" {
		t.Errorf("expected lowercased email, got %v", u.Email)
	}
	if u.Role != entity.RoleUser {
		t.Errorf("expected role user, got %v", u.Role)
	}
	if u.HashedPassword == "correct horse" || u.HashedPassword == "" {
		t.Error("password must be stored hashed")
	}

	// duplicate email is refused
	_, errUC := uc.Register(context.Background(), account.RegisterRequest{
		Email:    "alice@example.com",
		Username: "alice2",
		Password: "correct horse",
	})
	if errUC == nil || errUC.Errors[0].HTTPCode != http.StatusConflict {
		t.Errorf("expected conflict, got %+v", errUC)
	}
}

func TestSignInAndVerify(t *testing.T) {
	uc := newTestUsecase()
	u := register(t, uc)

	pair, errUC := uc.SignIn(context.Background(), "alice@example.com", "correct horse")
	if errUC != nil {
		t.Fatalf("sign in failed: %+v", errUC)
	}
	if pair.TokenType != "bearer" || pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("unexpected token pair %+v", pair)
	}
	if pair.ExpiresIn != int64((15 * time.Minute).Seconds()) {
		t.Errorf("unexpected expires_in %v", pair.ExpiresIn)
	}

	principal, errUC := uc.Verify(context.Background(), pair.AccessToken)
	if errUC != nil {
		t.Fatalf("verify failed: %+v", errUC)
	}
	if principal.UserID != u.ID || principal.Username != "alice" || principal.Role != entity.RoleUser {
		t.Errorf("unexpected principal %+v", principal)
	}

	// a refresh token must not pass as an access token
	if _, errUC := uc.Verify(context.Background(), pair.RefreshToken); errUC == nil {
		t.Error("refresh token accepted as access token")
	}
}

func TestSignInRejections(t *testing.T) {
	uc := newTestUsecase()
	register(t, uc)

	testCases := []struct {
		Name     string
		Email    string
		Password string
	}{
		{
			Name:     "wrong password",
			Email:    "alice@example.com",
			Password: "wrong",
		},
		{
			Name:     "unknown email",
			Email:    "bob@example.com",
			Password: "correct horse",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			_, errUC := uc.SignIn(context.Background(), tc.Email, tc.Password)
			if errUC == nil {
				t.Fatal("expected refusal")
			}
			// same answer either way, no hint which field was wrong
			if errUC.Errors[0].HTTPCode != http.StatusUnauthorized {
				t.Errorf("expected 401, got %v", errUC.Errors[0].HTTPCode)
			}
		})
	}
}

func TestRefresh(t *testing.T) {
	uc := newTestUsecase()
	u := register(t, uc)

	pair, errUC := uc.SignIn(context.Background(), "alice@example.com", "correct horse")
	if errUC != nil {
		t.Fatalf("sign in failed: %+v", errUC)
	}

	renewed, errUC := uc.Refresh(context.Background(), pair.RefreshToken)
	if errUC != nil {
		t.Fatalf("refresh failed: %+v", errUC)
	}

	principal, errUC := uc.Verify(context.Background(), renewed.AccessToken)
	if errUC != nil {
		t.Fatalf("verify of renewed token failed: %+v", errUC)
	}
	if principal.UserID != u.ID {
		t.Errorf("expected user %v, got %v", u.ID, principal.UserID)
	}

	// an access token must not be exchangeable for a new pair
	if _, errUC := uc.Refresh(context.Background(), pair.AccessToken); errUC == nil {
		t.Error("access token accepted for refresh")
	}
}

func TestVerifyGarbage(t *testing.T) {
	uc := newTestUsecase()

	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		if _, errUC := uc.Verify(context.Background(), token); errUC == nil {
			t.Errorf("token %q accepted", token)
		}
	}
}

func TestVerifyWrongKey(t *testing.T) {
	uc := newTestUsecase()
	register(t, uc)

	pair, errUC := uc.SignIn(context.Background(), "alice@example.com", "correct horse")
	if errUC != nil {
		t.Fatalf("sign in failed: %+v", errUC)
	}

	other := New(user_inmemory.New(), "test-issuer", map[string]string{
		"k1": "a-different-secret-entirely-here",
	}, "k1", 15*time.Minute, 7*24*time.Hour)

	if _, errUC := other.Verify(context.Background(), pair.AccessToken); errUC == nil {
		t.Error("token signed with another key accepted")
	}
}
