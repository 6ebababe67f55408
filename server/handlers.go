package server

import (
	"net/http"
	"strconv"
	"time"

	goAccount "github.com/MrEthical07/goAccount"
	"github.com/MrEthical07/goAccount/cookie"
	"github.com/MrEthical07/goAccount/user"
	"github.com/labstack/echo/v4"
)

const (
	socialSignupCookie = "socialSignup"
	socialSignupTTL    = 10 * time.Minute
)

type tokenResponse struct {
	AccessToken        string `json:"accessToken"`
	AccessTokenExpires string `json:"accessTokenExpires"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type socialLoginRequest struct {
	SocialID  string `json:"socialId"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// socialSignup is carried in a cookie between a social login miss and the
// registration that follows it.
type socialSignup struct {
	SocialID  string `json:"socialId"`
	Email     string `json:"email"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

type flagRequest struct {
	Value bool `json:"value"`
}

// writeTokens sets the renewal cookie and returns the access token body.
func (h *handlers) writeTokens(c echo.Context, status int, res *goAccount.TokenResult) error {
	ck, err := cookie.BuildRenewalCookie(h.policy, res.RenewalToken, time.Duration(res.RenewalTTL)*time.Second)
	if err != nil {
		return err
	}
	c.SetCookie(ck)
	return c.JSON(status, tokenResponse{
		AccessToken:        res.AccessToken,
		AccessTokenExpires: strconv.FormatInt(res.AccessTokenExpires, 10),
	})
}

func (h *handlers) renewalCredential(c echo.Context) string {
	return cookie.ExtractRenewalCredential(c.Request().Cookies(), h.policy.Name)
}

func (h *handlers) login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	res, err := h.engine.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return h.writeTokens(c, http.StatusOK, res)
}

func (h *handlers) socialLogin(c echo.Context) error {
	var req socialLoginRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if req.SocialID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "socialId required")
	}

	res, found, err := h.engine.LoginBySocialID(c.Request().Context(), req.SocialID)
	if err != nil {
		return err
	}
	if found {
		return h.writeTokens(c, http.StatusOK, res)
	}

	value, err := cookie.Serialize(socialSignup{
		SocialID:  req.SocialID,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "social profile too large")
	}
	c.SetCookie(&http.Cookie{
		Name:     socialSignupCookie,
		Value:    value,
		Path:     "/",
		Domain:   h.policy.Domain,
		MaxAge:   int(socialSignupTTL / time.Second),
		HttpOnly: true,
		Secure:   h.policy.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return c.JSON(http.StatusNotFound, errorBody{
		Error:   "social_account_not_linked",
		Message: "no account is linked to this social id",
	})
}

func (h *handlers) reissue(c echo.Context) error {
	res, err := h.engine.Reissue(
		c.Request().Context(),
		c.Request().Header.Get(echo.HeaderAuthorization),
		h.renewalCredential(c),
	)
	if err != nil {
		if statusFor(err).status == http.StatusUnauthorized {
			c.SetCookie(cookie.ClearRenewalCookie(h.policy))
		}
		return err
	}
	return h.writeTokens(c, http.StatusOK, res)
}

func (h *handlers) logout(c echo.Context) error {
	if err := h.engine.Logout(c.Request().Context(), h.renewalCredential(c)); err != nil {
		return err
	}
	c.SetCookie(cookie.ClearRenewalCookie(h.policy))
	return c.NoContent(http.StatusNoContent)
}

func (h *handlers) register(c echo.Context) error {
	var req goAccount.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	if ck, err := c.Cookie(socialSignupCookie); err == nil {
		var pending socialSignup
		if cookie.Deserialize(ck.Value, &pending) == nil && req.Type == user.TypeSocial {
			if req.SocialID == "" {
				req.SocialID = pending.SocialID
			}
			if req.Email == "" {
				req.Email = pending.Email
			}
			if req.FirstName == "" {
				req.FirstName = pending.FirstName
			}
			if req.LastName == "" {
				req.LastName = pending.LastName
			}
		}
	}

	id, err := h.engine.Register(c.Request().Context(), req)
	if err != nil {
		return err
	}
	c.SetCookie(&http.Cookie{Name: socialSignupCookie, Path: "/", Domain: h.policy.Domain, MaxAge: -1, HttpOnly: true})
	return c.JSON(http.StatusCreated, map[string]int64{"id": id})
}

func (h *handlers) exists(c echo.Context) error {
	email := c.QueryParam("email")
	accountType := c.QueryParam("type")
	if accountType == "" {
		accountType = user.TypeEmail
	}
	if email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email required")
	}
	n, err := h.engine.CountByEmailAndType(c.Request().Context(), email, accountType)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"count": n, "exists": n > 0})
}

func (h *handlers) listUsers(c echo.Context) error {
	var page, size int
	if err := echo.QueryParamsBinder(c).Int("page", &page).Int("size", &size).BindError(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "page and size must be integers")
	}
	res, err := h.engine.ListUsers(c.Request().Context(), page, size)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

func (h *handlers) me(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	return h.writeUser(c, p.ID)
}

func (h *handlers) getUser(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}
	return h.writeUser(c, id)
}

func (h *handlers) writeUser(c echo.Context, id int64) error {
	u, err := h.engine.GetUser(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, u)
}

func (h *handlers) updatePassword(c echo.Context) error {
	var req goAccount.UpdatePasswordRequest
	return h.updateSelf(c, &req, func(id int64) error {
		return h.engine.UpdatePassword(c.Request().Context(), id, req)
	})
}

func (h *handlers) updateAddress(c echo.Context) error {
	var req goAccount.UpdateAddressRequest
	return h.updateSelf(c, &req, func(id int64) error {
		return h.engine.UpdateAddress(c.Request().Context(), id, req)
	})
}

func (h *handlers) updateName(c echo.Context) error {
	var req goAccount.UpdateNameRequest
	return h.updateSelf(c, &req, func(id int64) error {
		return h.engine.UpdateName(c.Request().Context(), id, req)
	})
}

func (h *handlers) updateDrop(c echo.Context) error {
	var req flagRequest
	return h.updateSelf(c, &req, func(id int64) error {
		return h.engine.UpdateDropFlag(c.Request().Context(), id, req.Value)
	})
}

func (h *handlers) updateTemp(c echo.Context) error {
	var req flagRequest
	return h.updateSelf(c, &req, func(id int64) error {
		return h.engine.UpdateTempFlag(c.Request().Context(), id, req.Value)
	})
}

// updateSelf binds body and applies update to the caller's own account.
func (h *handlers) updateSelf(c echo.Context, body any, update func(id int64) error) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	if err := c.Bind(body); err != nil {
		return err
	}
	if err := update(p.ID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *handlers) health(c echo.Context) error {
	status := h.engine.Health(c.Request().Context())
	body := map[string]any{
		"redis":          status.RedisAvailable,
		"redisLatencyUs": status.RedisLatency,
	}
	if !status.RedisAvailable {
		return c.JSON(http.StatusServiceUnavailable, body)
	}
	return c.JSON(http.StatusOK, body)
}

func principal(c echo.Context) (*goAccount.Principal, error) {
	p, ok := goAccount.PrincipalFromContext(c.Request().Context())
	if !ok || p == nil {
		return nil, goAccount.ErrMissingAccessToken
	}
	return p, nil
}
