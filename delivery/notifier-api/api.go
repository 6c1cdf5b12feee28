package notifierapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog/log"

	"github.com/desain-gratis/blog/delivery/helper"
	"github.com/desain-gratis/blog/lib/notifier"
	"github.com/desain-gratis/blog/types/entity"
	types "github.com/desain-gratis/blog/types/http"
	"github.com/desain-gratis/blog/usecase/account"
	"github.com/desain-gratis/blog/usecase/notification"
)

type service struct {
	uc      notification.Usecase
	account account.Usecase
	metric  notifier.Metric
}

func New(uc notification.Usecase, account account.Usecase, metric notifier.Metric) *service {
	return &service{
		uc:      uc,
		account: account,
		metric:  metric,
	}
}

// Subscribe streams moderator alerts over server-sent events. EventSource
// cannot set headers, so the token may also arrive as a query parameter.
func (s *service) Subscribe(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		helper.SetError(w, types.NewCommonError(http.StatusInternalServerError, "STREAMING_UNSUPPORTED", "Streaming unsupported"))
		return
	}

	principal, errUC := s.authorize(r)
	if errUC != nil {
		helper.SetError(w, errUC)
		return
	}

	session, errUC := s.uc.Subscribe(principal)
	if errUC != nil {
		helper.SetError(w, errUC)
		return
	}
	defer session.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	fmt.Fprintf(w, "data: %v\n\n", `{"type":"connected"}`)
	flusher.Flush()

	err := session.Run(r.Context(),
		func(ctx context.Context, msg any) error {
			payload, err := json.Marshal(msg)
			if err != nil {
				log.Err(err).Msgf("sse: failed to marshal event for %v", principal.UserID)
				return nil
			}
			if _, err := fmt.Fprintf(w, "data: %v\n\n", string(payload)); err != nil {
				return err
			}
			flusher.Flush()
			return nil
		},
		func(ctx context.Context) error {
			if _, err := fmt.Fprint(w, ": heartbeat\n\n"); err != nil {
				return err
			}
			flusher.Flush()
			return nil
		},
	)
	if err != nil && err != context.Canceled {
		log.Debug().Msgf("sse: stream for %v ended: %v", principal.UserID, err)
	}
}

func (s *service) Metrics(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	principal, errUC := s.authorize(r)
	if errUC != nil {
		helper.SetError(w, errUC)
		return
	}
	if !principal.CanModerate() {
		helper.SetError(w, types.NewCommonError(http.StatusForbidden, "FORBIDDEN", "Moderator role required"))
		return
	}

	payload, err := json.Marshal(&types.CommonResponse{
		Success: s.metric.GetMetric(),
	})
	if err != nil {
		helper.SetError(w, types.NewCommonError(http.StatusInternalServerError, "SERVER_ERROR", "Failed to parse response"))
		return
	}
	helper.SetSuccess(w, http.StatusOK, payload)
}

func (s *service) authorize(r *http.Request) (entity.Principal, *types.CommonError) {
	authorization := r.Header.Get("Authorization")
	if authorization == "" {
		if token := r.URL.Query().Get("token"); token != "" {
			authorization = "Bearer " + token
		}
	}
	return helper.ParseAuthorizationToken(r.Context(), s.account, authorization)
}
