package blogapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog/log"

	"github.com/desain-gratis/blog/delivery/helper"
	"github.com/desain-gratis/blog/types/entity"
	types "github.com/desain-gratis/blog/types/http"
	"github.com/desain-gratis/blog/usecase/account"
	blog_uc "github.com/desain-gratis/blog/usecase/blog"
)

const maximumRequestLength = 1 << 20

type service struct {
	uc      blog_uc.Usecase
	account account.Usecase
}

func New(uc blog_uc.Usecase, account account.Usecase) *service {
	return &service{
		uc:      uc,
		account: account,
	}
}

func (s *service) Create(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	principal, errUC := s.authorize(r)
	if errUC != nil {
		helper.SetError(w, errUC)
		return
	}

	var req blog_uc.CreateRequest
	if errUC := readJSON(w, r, &req); errUC != nil {
		helper.SetError(w, errUC)
		return
	}

	created, errUC := s.uc.Create(r.Context(), principal, req)
	if errUC != nil {
		helper.SetError(w, errUC)
		return
	}

	writeSuccess(w, http.StatusCreated, created)
}

// Get works for anonymous readers too; the usecase decides visibility.
func (s *service) Get(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var principal *entity.Principal
	if r.Header.Get("Authorization") != "" {
		resolved, errUC := s.authorize(r)
		if errUC != nil {
			helper.SetError(w, errUC)
			return
		}
		principal = &resolved
	}

	b, errUC := s.uc.Get(r.Context(), principal, p.ByName("id"))
	if errUC != nil {
		helper.SetError(w, errUC)
		return
	}

	writeSuccess(w, http.StatusOK, b)
}

func (s *service) List(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	limit, offset := pagination(r)

	resp, errUC := s.uc.ListApproved(r.Context(), limit, offset)
	if errUC != nil {
		helper.SetError(w, errUC)
		return
	}

	writeSuccess(w, http.StatusOK, resp)
}

func (s *service) ListPending(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	principal, errUC := s.authorize(r)
	if errUC != nil {
		helper.SetError(w, errUC)
		return
	}

	limit, offset := pagination(r)

	resp, errUC := s.uc.ListPending(r.Context(), principal, limit, offset)
	if errUC != nil {
		helper.SetError(w, errUC)
		return
	}

	writeSuccess(w, http.StatusOK, resp)
}

func (s *service) Update(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	principal, errUC := s.authorize(r)
	if errUC != nil {
		helper.SetError(w, errUC)
		return
	}

	var req blog_uc.UpdateRequest
	if errUC := readJSON(w, r, &req); errUC != nil {
		helper.SetError(w, errUC)
		return
	}

	updated, errUC := s.uc.Update(r.Context(), principal, p.ByName("id"), req)
	if errUC != nil {
		helper.SetError(w, errUC)
		return
	}

	writeSuccess(w, http.StatusOK, updated)
}

func (s *service) Delete(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	principal, errUC := s.authorize(r)
	if errUC != nil {
		helper.SetError(w, errUC)
		return
	}

	if errUC := s.uc.Delete(r.Context(), principal, p.ByName("id")); errUC != nil {
		helper.SetError(w, errUC)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *service) Approve(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	s.transition(w, r, p, s.uc.Approve)
}

func (s *service) Reject(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	s.transition(w, r, p, s.uc.Reject)
}

func (s *service) transition(w http.ResponseWriter, r *http.Request, p httprouter.Params, apply func(context.Context, entity.Principal, string) (entity.Blog, *types.CommonError)) {
	principal, errUC := s.authorize(r)
	if errUC != nil {
		helper.SetError(w, errUC)
		return
	}

	updated, errUC := apply(r.Context(), principal, p.ByName("id"))
	if errUC != nil {
		helper.SetError(w, errUC)
		return
	}

	writeSuccess(w, http.StatusOK, updated)
}

func (s *service) authorize(r *http.Request) (entity.Principal, *types.CommonError) {
	return helper.ParseAuthorizationToken(r.Context(), s.account, r.Header.Get("Authorization"))
}

func pagination(r *http.Request) (limit, offset int) {
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))
	return limit, offset
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
