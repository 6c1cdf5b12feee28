package authapi

import (
	"encoding/json"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog/log"

	"github.com/desain-gratis/blog/delivery/helper"
	"github.com/desain-gratis/blog/repository/limiter"
	types "github.com/desain-gratis/blog/types/http"
	"github.com/desain-gratis/blog/usecase/account"
)

const maximumRequestLength = 1 << 20

type service struct {
	uc         account.Usecase
	limiter    limiter.Repository
	rateLimit  int
	rateWindow time.Duration
}

func New(uc account.Usecase, rate limiter.Repository, rateLimit int, rateWindow time.Duration) *service {
	return &service{
		uc:         uc,
		limiter:    rate,
		rateLimit:  rateLimit,
		rateWindow: rateWindow,
	}
}

func (s *service) Register(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	if !s.allow(w, r, "register") {
		return
	}

	var req account.RegisterRequest
	if errUC := readJSON(w, r, &req); errUC != nil {
		helper.SetError(w, errUC)
		return
	}

	created, errUC := s.uc.Register(r.Context(), req)
	if errUC != nil {
		helper.SetError(w, errUC)
		return
	}

	writeSuccess(w, http.StatusCreated, created)
}

func (s *service) Login(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	if !s.allow(w, r, "login") {
		return
	}

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if errUC := readJSON(w, r, &req); errUC != nil {
		helper.SetError(w, errUC)
		return
	}

	pair, errUC := s.uc.SignIn(r.Context(), req.Email, req.Password)
	if errUC != nil {
		helper.SetError(w, errUC)
		return
	}

	writeSuccess(w, http.StatusOK, pair)
}

func (s *service) Refresh(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if errUC := readJSON(w, r, &req); errUC != nil {
		helper.SetError(w, errUC)
		return
	}

	pair, errUC := s.uc.Refresh(r.Context(), req.RefreshToken)
	if errUC != nil {
		helper.SetError(w, errUC)
		return
	}

	writeSuccess(w, http.StatusOK, pair)
}

func (s *service) Me(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	principal, errUC := helper.ParseAuthorizationToken(r.Context(), s.uc, r.Header.Get("Authorization"))
	if errUC != nil {
		helper.SetError(w, errUC)
		return
	}

	u, errUC := s.uc.Get(r.Context(), principal.UserID)
	if errUC != nil {
		helper.SetError(w, errUC)
		return
	}

	writeSuccess(w, http.StatusOK, u)
}

// allow applies a fixed window rate limit per client IP. Limiter
// failures are logged and fail open; the credential check is the
// actual security boundary here.
func (s *service) allow(w http.ResponseWriter, r *http.Request, action string) bool {
	if s.rateLimit <= 0 {
		return true
	}

	key := action + "|" + clientIP(r)

	counter, _, errUC := s.limiter.Get(r.Context(), key)
	if errUC != nil {
		log.Err(errUC.Err()).Msgf("Failed to query rate limiter")
		return true
	}
	if counter >= s.rateLimit {
		helper.SetError(w, types.NewCommonError(http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests, try again later"))
		return false
	}

	if errUC := s.limiter.Increment(r.Context(), key, s.rateWindow); errUC != nil {
		log.Err(errUC.Err()).Msgf("Failed to increment rate limiter")
	}
	return true
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func readJSON(w http.ResponseWriter, r *http.Request, into any) *types.CommonError {
	r.Body = http.MaxBytesReader(w, r.Body, maximumRequestLength)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		return types.NewCommonError(http.StatusBadRequest, "BAD_REQUEST", "Failed to read payload")
	}
	if err := json.Unmarshal(payload, into); err != nil {
		return types.NewCommonError(http.StatusBadRequest, "BAD_REQUEST", "Failed to parse body")
	}
	return nil
}

func writeSuccess(w http.ResponseWriter, code int, result any) {
	payload, err := json.Marshal(&types.CommonResponse{
		Success: result,
	})
	if err != nil {
		log.Err(err).Msgf("Failed to marshal payload as JSON")
		helper.SetError(w, types.NewCommonError(http.StatusInternalServerError, "SERVER_ERROR", "Failed to parse response"))
		return
	}
	helper.SetSuccess(w, code, payload)
}
