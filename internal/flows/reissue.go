package flows

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/MrEthical07/goAccount/jwt"
)

const bearerPrefix = "Bearer "

// ReissueFailureKind classifies reissue failures for root-level mapping.
type ReissueFailureKind int

const (
	ReissueFailureNone ReissueFailureKind = iota
	ReissueFailureMissingAccessToken
	ReissueFailureInvalidAccessToken
	ReissueFailureSessionNotFound
	ReissueFailureIdentityMismatch
	ReissueFailureUpstream
	ReissueFailureIssue
)

func (k ReissueFailureKind) String() string {
	switch k {
	case ReissueFailureNone:
		return "none"
	case ReissueFailureMissingAccessToken:
		return "missing_access_token"
	case ReissueFailureInvalidAccessToken:
		return "invalid_access_token"
	case ReissueFailureSessionNotFound:
		return "session_not_found"
	case ReissueFailureIdentityMismatch:
		return "identity_mismatch"
	case ReissueFailureUpstream:
		return "upstream"
	case ReissueFailureIssue:
		return "issue"
	default:
		return "unknown"
	}
}

// ReissueStage is the last state a reissue request reached.
type ReissueStage int

const (
	StageStart ReissueStage = iota
	StageAccessTokenExtracted
	StageAuthenticationDecoded
	StageRenewalLookedUp
	StageValidated
	StageReissued
)

// ReissueResult carries either the new pair or failure metadata. Stage is the
// last gate passed before the outcome.
type ReissueResult struct {
	Failure ReissueFailureKind
	Stage   ReissueStage
	Err     error
	Email   string
	UserID  int64
	Pair    jwt.Pair
}

// ReissueSessionStore is the part of the session store the reissue flow uses.
type ReissueSessionStore interface {
	Get(ctx context.Context, key string) (string, error)
	Rotate(ctx context.Context, oldKey, newKey, value string, ttl time.Duration) error
}

// ReissueDeps captures reissue flow dependencies.
type ReissueDeps struct {
	DecodeAccess    func(string) (*jwt.AccessClaims, error)
	Issue           func(jwt.Identity) (jwt.Pair, error)
	RenewalTTL      func() time.Duration
	SessionStore    ReissueSessionStore
	SessionNotFound error
}

// BearerToken strips the "Bearer " prefix from an Authorization header value.
func BearerToken(header string) (string, bool) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	if token == "" {
		return "", false
	}
	return token, true
}

// RunReissue validates an access token and renewal credential together and
// rotates them. It performs no session writes unless every gate passed.
func RunReissue(ctx context.Context, authorization, renewal string, deps ReissueDeps) ReissueResult {
	token, ok := BearerToken(authorization)
	if !ok {
		return ReissueResult{
			Failure: ReissueFailureMissingAccessToken,
			Stage:   StageStart,
			Err:     errors.New("authorization header missing bearer token"),
		}
	}

	claims, err := deps.DecodeAccess(token)
	if err != nil {
		return ReissueResult{
			Failure: ReissueFailureInvalidAccessToken,
			Stage:   StageAccessTokenExtracted,
			Err:     err,
		}
	}
	result := ReissueResult{
		Stage:  StageAuthenticationDecoded,
		Email:  claims.Subject,
		UserID: claims.UserID,
	}

	// An empty renewal credential is looked up like any other; it never
	// matches a stored entry.
	stored, err := deps.SessionStore.Get(ctx, renewal)
	if err != nil {
		result.Err = err
		if deps.SessionNotFound != nil && errors.Is(err, deps.SessionNotFound) {
			result.Failure = ReissueFailureSessionNotFound
		} else {
			result.Failure = ReissueFailureUpstream
		}
		return result
	}
	if stored == "" {
		result.Failure = ReissueFailureSessionNotFound
		result.Err = errors.New("renewal credential revoked")
		return result
	}
	result.Stage = StageRenewalLookedUp

	if stored != claims.Subject {
		result.Failure = ReissueFailureIdentityMismatch
		result.Err = errors.New("renewal credential belongs to another identity")
		return result
	}
	result.Stage = StageValidated

	pair, err := deps.Issue(jwt.Identity{
		ID:    claims.UserID,
		Email: claims.Subject,
		Name:  claims.Name,
	})
	if err != nil {
		result.Failure = ReissueFailureIssue
		result.Err = err
		return result
	}

	if err := deps.SessionStore.Rotate(ctx, renewal, pair.RenewalToken, claims.Subject, deps.RenewalTTL()); err != nil {
		result.Failure = ReissueFailureUpstream
		result.Err = err
		return result
	}

	result.Stage = StageReissued
	result.Pair = pair
	return result
}
