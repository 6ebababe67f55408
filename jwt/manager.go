package jwt

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const minKeyBytes = 64

// DefaultRole is the single role string carried by every access token.
const DefaultRole = "ROLE_USER"

// Config defines the codec settings. Secret is the base64 encoding of the HS512
// key material.
type Config struct {
	Secret     string
	AccessTTL  time.Duration
	RenewalTTL time.Duration
	Issuer     string
	Now        func() time.Time
}

// Identity is the subject an access token is minted for.
type Identity struct {
	ID    int64
	Email string
	Name  string
	Role  string
}

// Pair is the result of a successful Issue. Expiry values are whole seconds.
type Pair struct {
	AccessToken      string
	AccessExpiresIn  int64
	RenewalToken     string
	RenewalExpiresIn int64
}

// AccessClaims is the fixed claim set of an access token. The subject is the
// account email.
type AccessClaims struct {
	UserID int64  `json:"id"`
	Name   string `json:"name,omitempty"`
	Role   string `json:"auth"`
	jwt.RegisteredClaims
}

// Identity rebuilds the identity the claims were issued for.
func (c *AccessClaims) Identity() Identity {
	return Identity{
		ID:    c.UserID,
		Email: c.Subject,
		Name:  c.Name,
		Role:  c.Role,
	}
}

// Manager signs and verifies access and renewal tokens with one HS512 key.
//
// A Manager is immutable after NewManager and safe for concurrent use.
type Manager struct {
	config Config
	key    []byte
	now    func() time.Time
}

// NewManager decodes the signing secret and validates lifetimes.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.AccessTTL <= 0 || cfg.RenewalTTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if cfg.AccessTTL >= cfg.RenewalTTL {
		return nil, errors.New("access TTL must be shorter than renewal TTL")
	}

	secret := strings.TrimSpace(cfg.Secret)
	if secret == "" {
		return nil, errors.New("signing secret required")
	}
	key, err := base64.StdEncoding.DecodeString(secret)
	if err != nil {
		return nil, fmt.Errorf("signing secret is not valid base64: %w", err)
	}
	if len(key) < minKeyBytes {
		return nil, fmt.Errorf("hs512 requires at least %d key bytes, got %d", minKeyBytes, len(key))
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Manager{config: cfg, key: key, now: now}, nil
}

// AccessTTL returns the configured access token lifetime.
func (m *Manager) AccessTTL() time.Duration { return m.config.AccessTTL }

// RenewalTTL returns the configured renewal token lifetime.
func (m *Manager) RenewalTTL() time.Duration { return m.config.RenewalTTL }

// Issue mints a new access/renewal pair for id.
func (m *Manager) Issue(id Identity) (Pair, error) {
	if id.Email == "" {
		return Pair{}, errors.New("identity email required")
	}
	role := id.Role
	if role == "" {
		role = DefaultRole
	}

	now := m.now()

	access := AccessClaims{
		UserID: id.ID,
		Name:   id.Name,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.Email,
			Issuer:    m.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.config.AccessTTL)),
			ID:        uuid.NewString(),
		},
	}
	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS512, access).SignedString(m.key)
	if err != nil {
		return Pair{}, err
	}

	// The renewal token is a bare expiry plus a random id; identity lives in the
	// session store only.
	renewal := jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.config.RenewalTTL)),
		ID:        uuid.NewString(),
	}
	renewalToken, err := jwt.NewWithClaims(jwt.SigningMethodHS512, renewal).SignedString(m.key)
	if err != nil {
		return Pair{}, err
	}

	return Pair{
		AccessToken:      accessToken,
		AccessExpiresIn:  int64(m.config.AccessTTL / time.Second),
		RenewalToken:     renewalToken,
		RenewalExpiresIn: int64(m.config.RenewalTTL / time.Second),
	}, nil
}

// DecodeAccess verifies signature, structure and expiry of an access token.
// Every failure is a *DecodeError.
func (m *Manager) DecodeAccess(tokenStr string) (*AccessClaims, error) {
	return m.decodeAccess(tokenStr, false)
}

// DecodeAccessAllowExpired verifies signature and structure but ignores the
// expiry claim. Only the reissue path may use it.
func (m *Manager) DecodeAccessAllowExpired(tokenStr string) (*AccessClaims, error) {
	return m.decodeAccess(tokenStr, true)
}

func (m *Manager) decodeAccess(tokenStr string, allowExpired bool) (*AccessClaims, error) {
	if tokenStr == "" {
		return nil, &DecodeError{Kind: KindMalformed, Err: jwt.ErrTokenMalformed}
	}

	options := []jwt.ParserOption{
		jwt.WithTimeFunc(m.now),
	}
	if allowExpired {
		options = append(options, jwt.WithoutClaimsValidation())
	} else {
		options = append(options, jwt.WithExpirationRequired())
	}
	if m.config.Issuer != "" && !allowExpired {
		options = append(options, jwt.WithIssuer(m.config.Issuer))
	}

	claims := &AccessClaims{}
	token, err := jwt.NewParser(options...).ParseWithClaims(tokenStr, claims, m.keyFunc)
	if err != nil {
		return nil, classify(err)
	}
	if !token.Valid {
		return nil, &DecodeError{Kind: KindMalformed, Err: jwt.ErrTokenInvalidClaims}
	}
	if claims.Subject == "" || claims.ExpiresAt == nil {
		return nil, &DecodeError{Kind: KindMalformed, Err: jwt.ErrTokenRequiredClaimMissing}
	}
	if allowExpired && m.config.Issuer != "" && claims.Issuer != m.config.Issuer {
		return nil, &DecodeError{Kind: KindMalformed, Err: jwt.ErrTokenInvalidIssuer}
	}

	return claims, nil
}

func (m *Manager) keyFunc(t *jwt.Token) (interface{}, error) {
	if t.Method.Alg() != jwt.SigningMethodHS512.Alg() {
		return nil, fmt.Errorf("unexpected signing algorithm: %s", t.Method.Alg())
	}
	return m.key, nil
}
