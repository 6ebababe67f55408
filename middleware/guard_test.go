package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	goAccount "github.com/MrEthical07/goAccount"
)

type stubAuth struct {
	principal *goAccount.Principal
	err       error
	calls     int
}

func (s *stubAuth) Authenticate(_ context.Context, token string) (*goAccount.Principal, error) {
	s.calls++
	if token != "good" {
		return nil, s.err
	}
	return s.principal, nil
}

func serve(t *testing.T, auth Authenticator, header string) (*httptest.ResponseRecorder, *goAccount.Principal) {
	t.Helper()
	var seen *goAccount.Principal
	h := Guard(auth)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = goAccount.PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec, seen
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body errorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body.Error
}

func TestGuardPassesPrincipal(t *testing.T) {
	auth := &stubAuth{principal: &goAccount.Principal{ID: 1, Email: "a@x.com", Name: "A", Role: "ROLE_USER"}}

	rec, seen := serve(t, auth, "Bearer good")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if seen == nil || seen.Email != "a@x.com" {
		t.Fatalf("expected principal in context, got %+v", seen)
	}
}

func TestGuardMissingBearer(t *testing.T) {
	auth := &stubAuth{}
	for _, header := range []string{"", "good", "Basic good", "Bearer "} {
		rec, _ := serve(t, auth, header)
		if rec.Code != http.StatusUnauthorized || errorCode(t, rec) != "missing_access_token" {
			t.Fatalf("header %q: got %d %s", header, rec.Code, rec.Body.String())
		}
	}
	if auth.calls != 0 {
		t.Fatalf("authenticator must not be called, got %d calls", auth.calls)
	}
}

func TestGuardDistinguishesExpired(t *testing.T) {
	expired := &stubAuth{err: fmt.Errorf("%w: jwt: expired", goAccount.ErrExpiredAccessToken)}
	rec, _ := serve(t, expired, "Bearer old")
	if rec.Code != http.StatusUnauthorized || errorCode(t, rec) != "expired_access_token" {
		t.Fatalf("got %d %s", rec.Code, rec.Body.String())
	}

	invalid := &stubAuth{err: goAccount.ErrInvalidAccessToken}
	rec, _ = serve(t, invalid, "Bearer forged")
	if rec.Code != http.StatusUnauthorized || errorCode(t, rec) != "invalid_access_token" {
		t.Fatalf("got %d %s", rec.Code, rec.Body.String())
	}
}
