package server

import (
	"errors"
	"net/http"

	goAccount "github.com/MrEthical07/goAccount"
	"github.com/MrEthical07/goAccount/internal/validate"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

type errorBody struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

type statusMapping struct {
	target  error
	status  int
	code    string
	message string
}

// Messages are fixed so wrapped backend and parser errors never reach the
// client. Only invalid_request echoes the error, which carries field
// validation text.
var statusMappings = []statusMapping{
	{goAccount.ErrMissingAccessToken, http.StatusUnauthorized, "missing_access_token", "access token required"},
	{goAccount.ErrExpiredAccessToken, http.StatusUnauthorized, "expired_access_token", "access token expired"},
	{goAccount.ErrInvalidAccessToken, http.StatusUnauthorized, "invalid_access_token", "access token invalid"},
	{goAccount.ErrSessionExpiredOrLoggedOut, http.StatusUnauthorized, "session_expired", "session expired or logged out"},
	{goAccount.ErrTokenIdentityMismatch, http.StatusUnauthorized, "token_identity_mismatch", "credentials do not belong together"},
	{goAccount.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials", "invalid email or password"},
	{goAccount.ErrAccountDropped, http.StatusUnauthorized, "account_dropped", "account is closed"},
	{goAccount.ErrLoginRateLimited, http.StatusTooManyRequests, "login_rate_limited", "too many failed logins"},
	{goAccount.ErrInvalidRequest, http.StatusBadRequest, "invalid_request", ""},
	{goAccount.ErrAccountExists, http.StatusConflict, "account_exists", "account already exists"},
	{goAccount.ErrUserNotFound, http.StatusNotFound, "user_not_found", "user not found"},
	{goAccount.ErrUpstreamUnavailable, http.StatusServiceUnavailable, "upstream_unavailable", "service temporarily unavailable"},
	{goAccount.ErrEngineNotReady, http.StatusServiceUnavailable, "upstream_unavailable", "service temporarily unavailable"},
}

var internalMapping = statusMapping{status: http.StatusInternalServerError, code: "internal_error", message: "internal error"}

func statusFor(err error) statusMapping {
	for _, m := range statusMappings {
		if errors.Is(err, m.target) {
			return m
		}
	}
	return internalMapping
}

func errorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var body errorBody
		var status int

		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
			body.Error = httpErrorCode(he.Code)
			if msg, ok := he.Message.(string); ok {
				body.Message = msg
			} else {
				body.Message = http.StatusText(he.Code)
			}
		} else {
			m := statusFor(err)
			status, body.Error, body.Message = m.status, m.code, m.message
			if m.message == "" {
				body.Message = err.Error()
			}
			var ve *validate.ValidationError
			if errors.As(err, &ve) {
				body.Fields = ve.Fields
			}

			requestID := c.Response().Header().Get(echo.HeaderXRequestID)
			switch {
			case status == http.StatusInternalServerError:
				logger.Error().Err(err).Str("request_id", requestID).Str("path", c.Path()).Msg("unhandled error")
			case status >= http.StatusInternalServerError, status == http.StatusUnauthorized:
				logger.Warn().Err(err).Str("request_id", requestID).Str("code", m.code).Msg("request failed")
			}
		}

		if status == http.StatusUnauthorized {
			c.Response().Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(status)
		} else {
			writeErr = c.JSON(status, body)
		}
		if writeErr != nil {
			logger.Error().Err(writeErr).Msg("write error response")
		}
	}
}

func httpErrorCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "invalid_request"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusMethodNotAllowed:
		return "method_not_allowed"
	case http.StatusTooManyRequests:
		return "rate_limited"
	case http.StatusUnsupportedMediaType:
		return "unsupported_media_type"
	default:
		return "error"
	}
}
