package helper

import (
	"context"
	"net/http"
	"strings"

	"github.com/desain-gratis/blog/types/entity"
	types "github.com/desain-gratis/blog/types/http"
	"github.com/desain-gratis/blog/usecase/account"
)

// ParseAuthorizationToken resolves a "Bearer <token>" header value into
// a verified principal.
func ParseAuthorizationToken(ctx context.Context, uc account.Usecase, authorizationToken string) (entity.Principal, *types.CommonError) {
	token := strings.Split(authorizationToken, " ")
	if len(token) < 2 || !strings.EqualFold(token[0], "Bearer") {
		return entity.Principal{}, &types.CommonError{
			Errors: []types.Error{
				{
					HTTPCode: http.StatusUnauthorized,
					Code:     "INVALID_OR_EMPTY_AUTHORIZATION",
					Message:  "Authorization header is not valid",
				},
			},
		}
	}

	return uc.Verify(ctx, token[1])
}

func SetError(w http.ResponseWriter, errUC *types.CommonError) {
	code := http.StatusInternalServerError
	if len(errUC.Errors) > 0 && errUC.Errors[0].HTTPCode != 0 {
		code = errUC.Errors[0].HTTPCode
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(types.SerializeError(errUC))
}

func SetSuccess(w http.ResponseWriter, code int, payload []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(payload)
}
