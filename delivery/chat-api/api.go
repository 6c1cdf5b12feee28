package chatapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog/log"

	"github.com/desain-gratis/blog/delivery/helper"
	"github.com/desain-gratis/blog/types/entity"
	types "github.com/desain-gratis/blog/types/http"
	"github.com/desain-gratis/blog/usecase/account"
	"github.com/desain-gratis/blog/usecase/chat"
)

const writeTimeout = 10 * time.Second

type service struct {
	uc             chat.Usecase
	account        account.Usecase
	originPatterns []string
}

func New(uc chat.Usecase, account account.Usecase, originPatterns []string) *service {
	return &service{
		uc:             uc,
		account:        account,
		originPatterns: originPatterns,
	}
}

// Room upgrades the request and attaches the client to the blog's chat
// room. The handshake is accepted before authentication so failures can
// be reported as a proper close frame instead of a dead HTTP error.
func (s *service) Room(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	blogID := p.ByName("id")

	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: s.originPatterns,
	})
	if err != nil {
		log.Debug().Msgf("chat: websocket accept failed for room %v: %v", blogID, err)
		return
	}
	defer c.CloseNow()

	principal, errUC := s.authorize(r)
	if errUC != nil {
		c.Close(websocket.StatusPolicyViolation, "authentication failed")
		return
	}

	session, errUC := s.uc.Join(r.Context(), blogID, principal)
	if errUC != nil {
		c.Close(websocket.StatusPolicyViolation, "blog not found")
		return
	}
	defer session.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// writer: outbound queue and liveness pings
	go func() {
		defer cancel()
		err := session.Run(ctx,
			func(ctx context.Context, msg any) error {
				wctx, wcancel := context.WithTimeout(ctx, writeTimeout)
				defer wcancel()
				return wsjson.Write(wctx, c, msg)
			},
			func(ctx context.Context) error {
				pctx, pcancel := context.WithTimeout(ctx, writeTimeout)
				defer pcancel()
				return c.Ping(pctx)
			},
		)
		if err != nil && err != context.Canceled {
			log.Debug().Msgf("chat: writer for %v in room %v ended: %v", principal.UserID, blogID, err)
		}
	}()

	// reader: every frame goes through the usecase, which decides what
	// is worth persisting and echoing
	for {
		_, raw, err := c.Read(ctx)
		if err != nil {
			break
		}
		s.uc.HandleInbound(ctx, blogID, principal, raw)
	}

	session.Close()
	c.Close(websocket.StatusNormalClosure, "")
}

// Comments serves the room's persisted history over plain HTTP.
func (s *service) Comments(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	comments, errUC := s.uc.History(r.Context(), p.ByName("id"), limit, offset)
	if errUC != nil {
		helper.SetError(w, errUC)
		return
	}

	payload, err := json.Marshal(&types.CommonResponse{
		Success: comments,
	})
	if err != nil {
		log.Err(err).Msgf("Failed to marshal payload as JSON")
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
