package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	goAccount "github.com/MrEthical07/goAccount"
	"github.com/MrEthical07/goAccount/internal/flows"
)

// Authenticator is satisfied by *goAccount.Engine.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*goAccount.Principal, error)
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Guard rejects requests without a valid, unexpired access token. The 401
// body's error code tells clients whether a reissue is worth trying.
func Guard(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if auth == nil {
				unauthorized(w, "invalid_access_token", "authentication unavailable")
				return
			}

			token, ok := flows.BearerToken(r.Header.Get("Authorization"))
			if !ok {
				unauthorized(w, "missing_access_token", goAccount.ErrMissingAccessToken.Error())
				return
			}

			principal, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				if errors.Is(err, goAccount.ErrExpiredAccessToken) {
					unauthorized(w, "expired_access_token", goAccount.ErrExpiredAccessToken.Error())
					return
				}
				unauthorized(w, "invalid_access_token", goAccount.ErrInvalidAccessToken.Error())
				return
			}

			next.ServeHTTP(w, r.WithContext(goAccount.WithPrincipal(r.Context(), principal)))
		})
	}
}

func unauthorized(w http.ResponseWriter, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(errorBody{Error: code, Message: message})
}
