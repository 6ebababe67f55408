package cookie

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractRenewalCredential(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/auth/reissue", nil)
	req.AddCookie(&http.Cookie{Name: "other", Value: "x"})
	req.AddCookie(&http.Cookie{Name: RenewalCookieName, Value: "r1"})

	assert.Equal(t, "r1", ExtractRenewalCredential(req.Cookies(), ""))
	assert.Equal(t, "x", ExtractRenewalCredential(req.Cookies(), "other"))
}

func TestExtractRenewalCredentialMissingIsEmpty(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/auth/reissue", nil)
	assert.Equal(t, "", ExtractRenewalCredential(req.Cookies(), RenewalCookieName))
	assert.Equal(t, "", ExtractRenewalCredential(nil, RenewalCookieName))
}

func TestExtractRenewalCredentialLastWins(t *testing.T) {
	cookies := []*http.Cookie{
		{Name: RenewalCookieName, Value: "r1"},
		nil,
		{Name: RenewalCookieName, Value: "r2"},
	}
	assert.Equal(t, "r2", ExtractRenewalCredential(cookies, RenewalCookieName))
}

func TestBuildRenewalCookie(t *testing.T) {
	c, err := BuildRenewalCookie(Policy{Secure: true}, "r1", 7*24*time.Hour)
	require.NoError(t, err)

	assert.Equal(t, RenewalCookieName, c.Name)
	assert.Equal(t, "r1", c.Value)
	assert.Equal(t, "/", c.Path)
	assert.Equal(t, 604800, c.MaxAge)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)

	rec := httptest.NewRecorder()
	http.SetCookie(rec, c)
	header := rec.Header().Get("Set-Cookie")
	assert.Contains(t, header, "Max-Age=604800")
	assert.Contains(t, header, "HttpOnly")
}

func TestBuildRenewalCookieRejectsEmptyValue(t *testing.T) {
	_, err := BuildRenewalCookie(Policy{}, "", time.Hour)
	assert.True(t, errors.Is(err, ErrEmptyValue))

	_, err = BuildRenewalCookie(Policy{}, "r1", 0)
	assert.Error(t, err)
}

func TestClearRenewalCookie(t *testing.T) {
	c := ClearRenewalCookie(Policy{Name: "rt", Secure: false})
	assert.Equal(t, "rt", c.Name)
	assert.Equal(t, "", c.Value)
	assert.Equal(t, "/", c.Path)
	assert.Equal(t, -1, c.MaxAge)
}

type signupState struct {
	SocialID string `json:"socialId"`
	Type     string `json:"type"`
}

func TestSerializeDeserialize(t *testing.T) {
	raw, err := Serialize(signupState{SocialID: "s-1", Type: "kakao"})
	require.NoError(t, err)
	assert.NotContains(t, raw, "=")

	var got signupState
	require.NoError(t, Deserialize(raw, &got))
	assert.Equal(t, signupState{SocialID: "s-1", Type: "kakao"}, got)
}

func TestDeserializeRejectsGarbage(t *testing.T) {
	var got signupState
	assert.ErrorIs(t, Deserialize("", &got), ErrInvalidPayload)
	assert.ErrorIs(t, Deserialize("!!!", &got), ErrInvalidPayload)
	assert.ErrorIs(t, Deserialize("bm90LWpzb24", &got), ErrInvalidPayload)
}
