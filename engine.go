package goAccount

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/MrEthical07/goAccount/cookie"
	internalaudit "github.com/MrEthical07/goAccount/internal/audit"
	"github.com/MrEthical07/goAccount/internal/flows"
	"github.com/MrEthical07/goAccount/internal/rate"
	"github.com/MrEthical07/goAccount/internal/validate"
	"github.com/MrEthical07/goAccount/jwt"
	"github.com/MrEthical07/goAccount/password"
	"github.com/MrEthical07/goAccount/session"
	"github.com/MrEthical07/goAccount/user"
	"github.com/rs/zerolog"
)

// Engine runs account and session operations.
//
// Engine instances are immutable after Build and safe for concurrent use.
type Engine struct {
	config    Config
	jwt       *jwt.Manager
	sessions  *session.Store
	limiter   *rate.Limiter
	passwords *password.Chain
	directory user.Directory
	validator *validate.Validator
	audit     *internalaudit.Dispatcher
	metrics   *Metrics
	logger    zerolog.Logger
	now       func() time.Time
}

// Close flushes pending audit events.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.audit.Close()
}

// AuditDropped reports events discarded because the audit buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns the current counter values.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

// CookiePolicy returns the renewal cookie settings the HTTP layer must use.
func (e *Engine) CookiePolicy() cookie.Policy {
	return cookie.Policy{
		Name:     e.config.Cookie.Name,
		Domain:   e.config.Cookie.Domain,
		Secure:   e.config.Cookie.Secure,
		SameSite: e.config.Cookie.SameSite,
	}
}

// RenewalTTL is the lifetime of renewal cookies and session entries.
func (e *Engine) RenewalTTL() time.Duration { return e.jwt.RenewalTTL() }

// Health pings Redis.
func (e *Engine) Health(ctx context.Context) HealthStatus {
	if e == nil || e.sessions == nil {
		return HealthStatus{}
	}
	latency, err := e.sessions.Ping(ctx)
	return HealthStatus{
		RedisAvailable: err == nil,
		RedisLatency:   latency.Microseconds(),
	}
}

// Authenticate verifies an access token and returns its principal. Expired
// tokens fail with ErrExpiredAccessToken, every other decode failure with
// ErrInvalidAccessToken.
//
//	Performance: no Redis round-trip.
func (e *Engine) Authenticate(ctx context.Context, accessToken string) (*Principal, error) {
	if e == nil || e.jwt == nil {
		return nil, ErrEngineNotReady
	}
	start := time.Now()
	defer func() {
		if e.metrics.LatencyEnabled() {
			e.metrics.Observe(MetricAuthenticateLatency, time.Since(start))
		}
	}()

	claims, err := e.jwt.DecodeAccess(accessToken)
	if err != nil {
		e.metricInc(MetricAuthenticateFailure)
		if errors.Is(err, jwt.ErrExpired) {
			return nil, fmt.Errorf("%w: %v", ErrExpiredAccessToken, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidAccessToken, err)
	}
	e.metricInc(MetricAuthenticateSuccess)

	id := claims.Identity()
	return &Principal{ID: id.ID, Email: id.Email, Name: id.Name, Role: id.Role}, nil
}

// Login verifies email and password and opens a session for the renewal
// credential it returns.
//
//	Performance: 1 directory lookup, 1-2 Redis round-trips for the throttle, 1 SET.
func (e *Engine) Login(ctx context.Context, email, pass string) (*TokenResult, error) {
	if e == nil || e.jwt == nil {
		return nil, ErrEngineNotReady
	}

	res := flows.RunLogin(ctx, email, pass, e.loginDeps())
	if res.Failure != flows.LoginFailureNone {
		err := e.loginError(res)
		e.emitAudit(ctx, auditEventLoginFailure, false, userIDOf(res.User), email, err, func() map[string]string {
			return map[string]string{"reason": res.Reason}
		})
		return nil, err
	}

	e.metricInc(MetricLoginSuccess)
	e.metricInc(MetricSessionCreated)
	e.emitAudit(ctx, auditEventLoginSuccess, true, userIDOf(res.User), res.User.Email, nil, nil)
	return tokenResult(res.Pair), nil
}

// LoginBySocialID opens a session for the account linked to socialID. When
// no account is linked found is false and err is nil.
func (e *Engine) LoginBySocialID(ctx context.Context, socialID string) (*TokenResult, bool, error) {
	if e == nil || e.jwt == nil {
		return nil, false, ErrEngineNotReady
	}

	res := flows.RunSocialLogin(ctx, socialID, e.loginDeps())
	switch res.Failure {
	case flows.LoginFailureNone:
	case flows.LoginFailureSocialNotFound:
		e.metricInc(MetricSocialLoginMiss)
		return nil, false, nil
	default:
		err := e.loginError(res)
		e.emitAudit(ctx, auditEventSocialLoginFailure, false, userIDOf(res.User), "", err, func() map[string]string {
			return map[string]string{"reason": res.Reason}
		})
		return nil, false, err
	}

	e.metricInc(MetricSocialLoginSuccess)
	e.metricInc(MetricSessionCreated)
	e.emitAudit(ctx, auditEventSocialLoginSuccess, true, userIDOf(res.User), res.User.Email, nil, nil)
	return tokenResult(res.Pair), true, nil
}

// Logout tombstones the renewal credential. Unknown and empty credentials
// are not an error.
//
//	Performance: 1 Redis SET.
func (e *Engine) Logout(ctx context.Context, renewal string) error {
	if e == nil || e.sessions == nil {
		return ErrEngineNotReady
	}
	if renewal == "" {
		return nil
	}
	if err := e.sessions.Invalidate(ctx, renewal); err != nil {
		e.logger.Warn().Err(err).Msg("logout invalidate failed")
		return fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	e.metricInc(MetricLogout)
	e.emitAudit(ctx, auditEventLogout, true, "", "", nil, nil)
	return nil
}

// Reissue exchanges an access token and its renewal credential for a new
// pair. authorization is the raw Authorization header value.
//
// The access token may be expired but must carry a valid signature. Redis is
// only written when every check passed.
//
//	Performance: 1 Redis GET, then 1 MULTI/EXEC with 2 SETs on success.
func (e *Engine) Reissue(ctx context.Context, authorization, renewal string) (*TokenResult, error) {
	if e == nil || e.jwt == nil || e.sessions == nil {
		return nil, ErrEngineNotReady
	}

	res := flows.RunReissue(ctx, authorization, renewal, flows.ReissueDeps{
		DecodeAccess:    e.jwt.DecodeAccessAllowExpired,
		Issue:           e.jwt.Issue,
		RenewalTTL:      e.jwt.RenewalTTL,
		SessionStore:    e.sessions,
		SessionNotFound: session.ErrSessionNotFound,
	})
	if res.Failure == flows.ReissueFailureNone {
		e.metricInc(MetricReissueSuccess)
		e.metricInc(MetricSessionRotated)
		e.emitAudit(ctx, auditEventReissueSuccess, true, formatUserID(res.UserID), res.Email, nil, nil)
		return tokenResult(res.Pair), nil
	}

	err := reissueError(res)
	if errors.Is(err, ErrUpstreamUnavailable) {
		e.metricInc(MetricReissueUpstreamFailure)
		e.logger.Warn().Err(res.Err).Str("kind", res.Failure.String()).Msg("reissue upstream failure")
	} else {
		e.metricInc(MetricReissueRejected)
		e.logger.Debug().Str("kind", res.Failure.String()).Int("stage", int(res.Stage)).Msg("reissue rejected")
	}
	e.emitAudit(ctx, auditEventReissueRejected, false, formatUserID(res.UserID), res.Email, err, func() map[string]string {
		return map[string]string{"kind": res.Failure.String()}
	})
	return nil, err
}

func reissueError(res flows.ReissueResult) error {
	var sentinel error
	switch res.Failure {
	case flows.ReissueFailureMissingAccessToken:
		sentinel = ErrMissingAccessToken
	case flows.ReissueFailureInvalidAccessToken:
		sentinel = ErrInvalidAccessToken
	case flows.ReissueFailureSessionNotFound:
		return ErrSessionExpiredOrLoggedOut
	case flows.ReissueFailureIdentityMismatch:
		return ErrTokenIdentityMismatch
	case flows.ReissueFailureUpstream, flows.ReissueFailureIssue:
		sentinel = ErrUpstreamUnavailable
	default:
		return ErrEngineNotReady
	}
	if res.Err == nil {
		return sentinel
	}
	return fmt.Errorf("%w: %v", sentinel, res.Err)
}

func (e *Engine) loginDeps() flows.LoginDeps {
	deps := flows.LoginDeps{
		PasswordUpgradeOnLogin: e.config.Password.UpgradeOnLogin,
		ClientIPFromContext:    clientIPFromContext,
		RateLimited:            rate.ErrRateLimited,
		FindByEmail:            e.directory.FindByEmail,
		FindBySocialID:         e.directory.FindBySocialID,
		UserNotFound:           user.ErrNotFound,
		UpdatePasswordHash:     e.directory.UpdatePassword,
		VerifyPassword:         e.passwords.Verify,
		PasswordNeedsUpgrade:   e.passwords.NeedsUpgrade,
		HashPassword:           e.passwords.Hash,
		Issue:                  e.jwt.Issue,
		StoreSession: func(ctx context.Context, renewal, email string) error {
			return e.sessions.Put(ctx, renewal, email, e.jwt.RenewalTTL())
		},
		Warn: func(msg string, kv ...any) {
			e.logger.Warn().Fields(kv).Msg(msg)
		},
	}
	if e.limiter != nil {
		deps.Limiter = e.limiter
	}
	return deps
}

func (e *Engine) loginError(res flows.LoginResult) error {
	switch res.Failure {
	case flows.LoginFailureRateLimited:
		e.metricInc(MetricLoginRateLimited)
		return ErrLoginRateLimited
	case flows.LoginFailureInvalidCredentials:
		e.metricInc(MetricLoginFailure)
		return ErrInvalidCredentials
	case flows.LoginFailureDropped:
		e.metricInc(MetricLoginFailure)
		return ErrAccountDropped
	case flows.LoginFailureSocialNotFound:
		e.metricInc(MetricSocialLoginMiss)
		return ErrUserNotFound
	default:
		e.metricInc(MetricLoginFailure)
		e.logger.Warn().Err(res.Err).Msg("login upstream failure")
		if res.Err == nil {
			return ErrUpstreamUnavailable
		}
		return fmt.Errorf("%w: %v", ErrUpstreamUnavailable, res.Err)
	}
}

func tokenResult(p jwt.Pair) *TokenResult {
	return &TokenResult{
		AccessToken:        p.AccessToken,
		AccessTokenExpires: p.AccessExpiresIn,
		RenewalToken:       p.RenewalToken,
		RenewalTTL:         p.RenewalExpiresIn,
	}
}

func userIDOf(u *user.User) string {
	if u == nil {
		return ""
	}
	return formatUserID(u.ID)
}

func formatUserID(id int64) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}
