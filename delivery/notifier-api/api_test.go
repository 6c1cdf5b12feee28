package notifierapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/desain-gratis/blog/types/entity"
	types "github.com/desain-gratis/blog/types/http"
	"github.com/desain-gratis/blog/usecase/account"

	notifier_impl "github.com/desain-gratis/blog/lib/notifier/impl"
	notification_handler "github.com/desain-gratis/blog/usecase/notification/handler"
)

var _ account.Usecase = &staticAccount{}

// staticAccount resolves fixed tokens to fixed principals.
type staticAccount struct {
	principals map[string]entity.Principal
}

func (s *staticAccount) Register(ctx context.Context, req account.RegisterRequest) (entity.User, *types.CommonError) {
	return entity.User{}, types.NewCommonError(http.StatusNotImplemented, "NOT_IMPLEMENTED", "Not implemented")
}

func (s *staticAccount) SignIn(ctx context.Context, email, password string) (account.TokenPair, *types.CommonError) {
	return account.TokenPair{}, types.NewCommonError(http.StatusNotImplemented, "NOT_IMPLEMENTED", "Not implemented")
}

func (s *staticAccount) Refresh(ctx context.Context, refreshToken string) (account.TokenPair, *types.CommonError) {
	return account.TokenPair{}, types.NewCommonError(http.StatusNotImplemented, "NOT_IMPLEMENTED", "Not implemented")
}

func (s *staticAccount) Verify(ctx context.Context, accessToken string) (entity.Principal, *types.CommonError) {
	p, ok := s.principals[accessToken]
	if !ok {
		return entity.Principal{}, types.NewCommonError(http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired token")
	}
	return p, nil
}

func (s *staticAccount) Get(ctx context.Context, userID string) (entity.User, *types.CommonError) {
	return entity.User{}, types.NewCommonError(http.StatusNotFound, "NOT_FOUND", "User not found")
}

func newTestService() *service {
	registry := notifier_impl.NewRegistry()
	accounts := &staticAccount{principals: map[string]entity.Principal{
		"user-token":     {UserID: "u1", Username: "alice", Role: entity.RoleUser},
		"approver-token": {UserID: "m1", Username: "carol", Role: entity.RoleApprover},
	}}
	uc := notification_handler.New(registry, time.Minute, 8)
	return New(uc, accounts, registry)
}

func TestMetricsAccess(t *testing.T) {
	testCases := []struct {
		Name     string
		Token    string
		HTTPCode int
	}{
		{
			Name:     "no credential",
			Token:    "",
			HTTPCode: http.StatusUnauthorized,
		},
		{
			Name:     "regular user",
			Token:    "user-token",
			HTTPCode: http.StatusForbidden,
		},
		{
			Name:     "approver",
			Token:    "approver-token",
			HTTPCode: http.StatusOK,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			svc := newTestService()

			r := httptest.NewRequest(http.MethodGet, "/api/notifications/metrics", nil)
			if tc.Token != "" {
				r.Header.Set("Authorization", "Bearer "+tc.Token)
			}
			w := httptest.NewRecorder()

			svc.Metrics(w, r, nil)

			if w.Code != tc.HTTPCode {
				t.Errorf("Metrics() = %v, want %v", w.Code, tc.HTTPCode)
			}
		})
	}
}

func TestSubscribeAccess(t *testing.T) {
	testCases := []struct {
		Name     string
		Token    string
		HTTPCode int
	}{
		{
			Name:     "no credential",
			Token:    "",
			HTTPCode: http.StatusUnauthorized,
		},
		{
			Name:     "regular user",
			Token:    "user-token",
			HTTPCode: http.StatusForbidden,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			svc := newTestService()

			r := httptest.NewRequest(http.MethodGet, "/api/notifications/sse", nil)
			if tc.Token != "" {
				r.Header.Set("Authorization", "Bearer "+tc.Token)
			}
			w := httptest.NewRecorder()

			svc.Subscribe(w, r, nil)

			if w.Code != tc.HTTPCode {
				t.Errorf("Subscribe() = %v, want %v", w.Code, tc.HTTPCode)
			}
		})
	}
}

func TestSubscribeStreamsConnectedEvent(t *testing.T) {
	svc := newTestService()

	// a pre-cancelled request context lets the stream open, emit the
	// handshake event, and terminate immediately
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := httptest.NewRequest(http.MethodGet, "/api/notifications/sse?token=approver-token", nil).WithContext(ctx)
	w := httptest.NewRecorder()

	svc.Subscribe(w, r, nil)

	if got := w.Header().Get("Content-Type"); got != "text/event-stream" {
		t.Errorf("Content-Type = %q, want text/event-stream", got)
	}
	if body := w.Body.String(); !strings.Contains(body, `data: {"type":"connected"}`) {
		t.Errorf("body missing connected event: %q", body)
	}
}
