package cookie

import (
	"errors"
	"net/http"
	"time"
)

// RenewalCookieName is the default cookie carrying the renewal token.
const RenewalCookieName = "refreshToken"

// ErrEmptyValue is returned when a cookie would be written without a value.
var ErrEmptyValue = errors.New("cookie value must not be empty")

// Policy is the deployment-specific part of a cookie: its name, whether it
// requires TLS and its SameSite mode.
type Policy struct {
	Name     string
	Secure   bool
	SameSite http.SameSite
	Domain   string
}

func (p Policy) name() string {
	if p.Name == "" {
		return RenewalCookieName
	}
	return p.Name
}

func (p Policy) sameSite() http.SameSite {
	if p.SameSite == 0 {
		return http.SameSiteLaxMode
	}
	return p.SameSite
}

// ExtractRenewalCredential returns the value of the named cookie, or "" when
// no such cookie was sent. If the name appears more than once the last value
// wins.
func ExtractRenewalCredential(cookies []*http.Cookie, name string) string {
	if name == "" {
		name = RenewalCookieName
	}
	value := ""
	for _, c := range cookies {
		if c != nil && c.Name == name {
			value = c.Value
		}
	}
	return value
}

// BuildRenewalCookie returns an http-only cookie scoped to "/" whose max-age
// matches ttl.
func BuildRenewalCookie(p Policy, value string, ttl time.Duration) (*http.Cookie, error) {
	if value == "" {
		return nil, ErrEmptyValue
	}
	if ttl <= 0 {
		return nil, errors.New("cookie ttl must be positive")
	}
	return &http.Cookie{
		Name:     p.name(),
		Value:    value,
		Path:     "/",
		Domain:   p.Domain,
		MaxAge:   int(ttl / time.Second),
		HttpOnly: true,
		Secure:   p.Secure,
		SameSite: p.sameSite(),
	}, nil
}

// ClearRenewalCookie returns a cookie that makes the browser drop the
// renewal cookie.
func ClearRenewalCookie(p Policy) *http.Cookie {
	return &http.Cookie{
		Name:     p.name(),
		Value:    "",
		Path:     "/",
		Domain:   p.Domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   p.Secure,
		SameSite: p.sameSite(),
	}
}
