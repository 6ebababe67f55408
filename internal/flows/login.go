package flows

import (
	"context"
	"errors"
	"strconv"

	"github.com/MrEthical07/goAccount/jwt"
	"github.com/MrEthical07/goAccount/user"
)

// LoginFailureKind classifies login failures for root-level mapping.
type LoginFailureKind int

const (
	LoginFailureNone LoginFailureKind = iota
	LoginFailureRateLimited
	LoginFailureInvalidCredentials
	LoginFailureDropped
	LoginFailureSocialNotFound
	LoginFailureUpstream
	LoginFailureIssue
)

// LoginResult carries the authenticated account and its new pair, or failure
// metadata.
type LoginResult struct {
	Failure LoginFailureKind
	Err     error
	Reason  string
	User    *user.User
	Pair    jwt.Pair
}

// LoginLimiter is the failed-login throttle.
type LoginLimiter interface {
	CheckLogin(ctx context.Context, email, ip string) error
	IncrementLogin(ctx context.Context, email, ip string) error
	ResetLogin(ctx context.Context, email string) error
}

// LoginDeps captures password and social login dependencies.
type LoginDeps struct {
	PasswordUpgradeOnLogin bool

	ClientIPFromContext func(context.Context) string
	Limiter             LoginLimiter
	RateLimited         error

	FindByEmail        func(context.Context, string) (*user.User, error)
	FindBySocialID     func(context.Context, string) (*user.User, bool, error)
	UserNotFound       error
	UpdatePasswordHash func(context.Context, int64, string) error

	VerifyPassword       func(password, hash string) (bool, error)
	PasswordNeedsUpgrade func(hash string) (bool, error)
	HashPassword         func(password string) (string, error)

	Issue        func(jwt.Identity) (jwt.Pair, error)
	StoreSession func(ctx context.Context, renewal, email string) error

	Warn func(string, ...any)
}

func (d *LoginDeps) defaults() {
	if d.ClientIPFromContext == nil {
		d.ClientIPFromContext = func(context.Context) string { return "" }
	}
	if d.Warn == nil {
		d.Warn = func(string, ...any) {}
	}
}

// RunLogin authenticates email and password and opens a session.
func RunLogin(ctx context.Context, email, password string, deps LoginDeps) LoginResult {
	deps.defaults()
	ip := deps.ClientIPFromContext(ctx)

	if deps.Limiter != nil {
		if err := deps.Limiter.CheckLogin(ctx, email, ip); err != nil {
			if deps.RateLimited != nil && errors.Is(err, deps.RateLimited) {
				return LoginResult{Failure: LoginFailureRateLimited, Err: err}
			}
			return LoginResult{Failure: LoginFailureUpstream, Err: err}
		}
	}

	if password == "" {
		return loginFailed(ctx, email, ip, "empty_password", nil, deps)
	}

	u, err := deps.FindByEmail(ctx, email)
	if err != nil {
		if deps.UserNotFound != nil && errors.Is(err, deps.UserNotFound) {
			return loginFailed(ctx, email, ip, "user_not_found", nil, deps)
		}
		return LoginResult{Failure: LoginFailureUpstream, Err: err}
	}
	if u.PasswordHash == "" {
		return loginFailed(ctx, email, ip, "no_password", u, deps)
	}

	ok, err := deps.VerifyPassword(password, u.PasswordHash)
	if err != nil || !ok {
		return loginFailed(ctx, email, ip, "password_mismatch", u, deps)
	}
	if u.DropFlag {
		return LoginResult{Failure: LoginFailureDropped, Reason: "dropped", User: u}
	}

	if deps.PasswordUpgradeOnLogin && deps.PasswordNeedsUpgrade != nil {
		if needsUpgrade, err := deps.PasswordNeedsUpgrade(u.PasswordHash); err == nil && needsUpgrade {
			if upgraded, err := deps.HashPassword(password); err == nil {
				if err := deps.UpdatePasswordHash(ctx, u.ID, upgraded); err != nil {
					deps.Warn("password hash upgrade update failed", "user_id", strconv.FormatInt(u.ID, 10))
				}
			} else {
				deps.Warn("password hash upgrade generation failed")
			}
		}
	}

	if deps.Limiter != nil {
		if err := deps.Limiter.ResetLogin(ctx, email); err != nil {
			deps.Warn("login limiter reset failed", "error", err.Error())
		}
	}

	return openSession(ctx, u, deps)
}

// RunSocialLogin opens a session for the account linked to socialID. A miss is
// reported as LoginFailureSocialNotFound so the caller can start sign-up.
func RunSocialLogin(ctx context.Context, socialID string, deps LoginDeps) LoginResult {
	deps.defaults()

	if socialID == "" {
		return LoginResult{Failure: LoginFailureSocialNotFound, Reason: "empty_social_id"}
	}
	u, found, err := deps.FindBySocialID(ctx, socialID)
	if err != nil {
		return LoginResult{Failure: LoginFailureUpstream, Err: err}
	}
	if !found {
		return LoginResult{Failure: LoginFailureSocialNotFound, Reason: "social_not_linked"}
	}
	if u.DropFlag {
		return LoginResult{Failure: LoginFailureDropped, Reason: "dropped", User: u}
	}
	return openSession(ctx, u, deps)
}

func openSession(ctx context.Context, u *user.User, deps LoginDeps) LoginResult {
	pair, err := deps.Issue(jwt.Identity{
		ID:    u.ID,
		Email: u.Email,
		Name:  u.DisplayName(),
	})
	if err != nil {
		return LoginResult{Failure: LoginFailureIssue, Err: err, User: u}
	}
	if err := deps.StoreSession(ctx, pair.RenewalToken, u.Email); err != nil {
		return LoginResult{Failure: LoginFailureUpstream, Err: err, User: u}
	}
	return LoginResult{Failure: LoginFailureNone, User: u, Pair: pair}
}

func loginFailed(ctx context.Context, email, ip, reason string, u *user.User, deps LoginDeps) LoginResult {
	if deps.Limiter != nil {
		if err := deps.Limiter.IncrementLogin(ctx, email, ip); err != nil {
			if deps.RateLimited != nil && errors.Is(err, deps.RateLimited) {
				return LoginResult{Failure: LoginFailureRateLimited, Err: err, Reason: reason, User: u}
			}
			deps.Warn("login limiter increment failed", "error", err.Error())
		}
	}
	return LoginResult{Failure: LoginFailureInvalidCredentials, Reason: reason, User: u}
}
