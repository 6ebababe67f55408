package goAccount

import (
	"context"
	"errors"

	internalaudit "github.com/MrEthical07/goAccount/internal/audit"
)

const (
	auditEventLoginSuccess             = "login_success"
	auditEventLoginFailure             = "login_failure"
	auditEventSocialLoginSuccess       = "social_login_success"
	auditEventSocialLoginFailure       = "social_login_failure"
	auditEventLogout                   = "logout"
	auditEventReissueSuccess           = "reissue_success"
	auditEventReissueRejected          = "reissue_rejected"
	auditEventAccountCreationSuccess   = "account_creation_success"
	auditEventAccountCreationDuplicate = "account_creation_duplicate"
	auditEventPasswordChangeSuccess    = "password_change_success"
	auditEventPasswordChangeFailure    = "password_change_failure"
	auditEventProfileUpdate            = "profile_update"
	auditEventAccountDropFlag          = "account_drop_flag"
)

// AuditErrorCode is the stable error label written to audit events.
type AuditErrorCode string

const (
	auditErrInvalidCredentials AuditErrorCode = "invalid_credentials"
	auditErrRateLimited        AuditErrorCode = "rate_limited"
	auditErrMissingToken       AuditErrorCode = "missing_token"
	auditErrInvalidToken       AuditErrorCode = "invalid_token"
	auditErrSessionNotFound    AuditErrorCode = "session_not_found"
	auditErrIdentityMismatch   AuditErrorCode = "identity_mismatch"
	auditErrAccountDropped     AuditErrorCode = "account_dropped"
	auditErrUserNotFound       AuditErrorCode = "user_not_found"
	auditErrDuplicate          AuditErrorCode = "duplicate"
	auditErrInvalidRequest     AuditErrorCode = "invalid_request"
	auditErrUnavailable        AuditErrorCode = "backend_unavailable"
	auditErrInternal           AuditErrorCode = "internal_error"
)

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	userID string,
	email string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}
	if ua := userAgentFromContext(ctx); ua != "" {
		if metadata == nil {
			metadata = make(map[string]string, 1)
		}
		metadata["user_agent"] = ua
	}

	event := internalaudit.Event{
		Timestamp: e.now().UTC(),
		EventType: eventType,
		UserID:    userID,
		Email:     email,
		IP:        clientIPFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	e.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return auditErrInvalidCredentials
	case errors.Is(err, ErrLoginRateLimited):
		return auditErrRateLimited
	case errors.Is(err, ErrMissingAccessToken):
		return auditErrMissingToken
	case errors.Is(err, ErrInvalidAccessToken),
		errors.Is(err, ErrExpiredAccessToken):
		return auditErrInvalidToken
	case errors.Is(err, ErrSessionExpiredOrLoggedOut):
		return auditErrSessionNotFound
	case errors.Is(err, ErrTokenIdentityMismatch):
		return auditErrIdentityMismatch
	case errors.Is(err, ErrAccountDropped):
		return auditErrAccountDropped
	case errors.Is(err, ErrUserNotFound):
		return auditErrUserNotFound
	case errors.Is(err, ErrAccountExists):
		return auditErrDuplicate
	case errors.Is(err, ErrInvalidRequest):
		return auditErrInvalidRequest
	case errors.Is(err, ErrUpstreamUnavailable):
		return auditErrUnavailable
	default:
		return auditErrInternal
	}
}
