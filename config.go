package goAccount

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Config defines the engine settings.
//
// Config instances are intended to be configured during initialization and then treated as immutable.
type Config struct {
	JWT      JWTConfig
	Session  SessionConfig
	Cookie   CookieConfig
	Password PasswordConfig
	Security SecurityConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
	Paging   PagingConfig
}

/*
====================================
JWT CONFIG
====================================
*/

// JWTConfig holds the signing secret and credential lifetimes. Secret is the
// base64 encoding of at least 64 bytes of key material.
type JWTConfig struct {
	Secret     string
	Issuer     string
	AccessTTL  time.Duration
	RenewalTTL time.Duration
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig controls the Redis renewal-credential store.
type SessionConfig struct {
	RedisPrefix  string
	TombstoneTTL time.Duration
}

// CookieConfig controls the renewal credential cookie.
type CookieConfig struct {
	Name     string
	Domain   string
	Secure   bool
	SameSite http.SameSite
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig holds argon2id parameters for new hashes and the bcrypt cost
// accepted for legacy ones.
type PasswordConfig struct {
	Memory           uint32 // in KB
	Time             uint32
	Parallelism      uint8
	SaltLength       uint32
	KeyLength        uint32
	MaxPasswordBytes int
	LegacyBcryptCost int
	UpgradeOnLogin   bool
}

/*
====================================
SECURITY CONFIG
====================================
*/

// SecurityConfig holds the failed-login throttle.
type SecurityConfig struct {
	EnableLoginThrottle   bool
	EnableIPThrottle      bool
	MaxLoginAttempts      int
	LoginCooldownDuration time.Duration
}

// AuditConfig controls the asynchronous audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls in-process counters.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// PagingConfig bounds ListUsers page sizes.
type PagingConfig struct {
	DefaultPageSize int
	MaxPageSize     int
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns the production defaults. JWT.Secret is left empty and
// must be supplied.
func DefaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			AccessTTL:  1800 * time.Second,
			RenewalTTL: 604800 * time.Second,
		},
		Session: SessionConfig{
			RedisPrefix:  "rt",
			TombstoneTTL: 3 * time.Second,
		},
		Cookie: CookieConfig{
			Name:     "refreshToken",
			Secure:   true,
			SameSite: http.SameSiteLaxMode,
		},
		Password: PasswordConfig{
			Memory:           65536,
			Time:             3,
			Parallelism:      2,
			SaltLength:       16,
			KeyLength:        32,
			MaxPasswordBytes: 1024,
			LegacyBcryptCost: 10,
			UpgradeOnLogin:   true,
		},
		Security: SecurityConfig{
			EnableLoginThrottle:   true,
			EnableIPThrottle:      false,
			MaxLoginAttempts:      5,
			LoginCooldownDuration: 15 * time.Minute,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: false,
		},
		Paging: PagingConfig{
			DefaultPageSize: 20,
			MaxPageSize:     100,
		},
	}
}

/*
====================================
VALIDATION
====================================
*/

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	// JWT
	secret := strings.TrimSpace(c.JWT.Secret)
	if secret == "" {
		return errors.New("JWT Secret is required")
	}
	key, err := base64.StdEncoding.DecodeString(secret)
	if err != nil {
		return fmt.Errorf("JWT Secret must be base64: %w", err)
	}
	if len(key) < 64 {
		return errors.New("JWT Secret must decode to at least 64 bytes")
	}
	if c.JWT.AccessTTL <= 0 {
		return errors.New("JWT AccessTTL must be > 0")
	}
	if c.JWT.RenewalTTL <= 0 {
		return errors.New("JWT RenewalTTL must be > 0")
	}
	if c.JWT.AccessTTL >= c.JWT.RenewalTTL {
		return errors.New("JWT AccessTTL must be shorter than RenewalTTL")
	}

	// Session
	if c.Session.RedisPrefix == "" {
		return errors.New("Session RedisPrefix must not be empty")
	}
	if c.Session.TombstoneTTL <= 0 {
		return errors.New("Session TombstoneTTL must be > 0")
	}
	if c.Session.TombstoneTTL >= c.JWT.AccessTTL {
		return errors.New("Session TombstoneTTL must be shorter than JWT AccessTTL")
	}

	// Cookie
	if c.Cookie.Name == "" {
		return errors.New("Cookie Name must not be empty")
	}
	if c.Cookie.SameSite == http.SameSiteNoneMode && !c.Cookie.Secure {
		return errors.New("Cookie SameSite=None requires Secure")
	}

	// Password
	if c.Password.Memory < 8*1024 {
		return errors.New("Password Memory must be >= 8192 KB")
	}
	if c.Password.Time < 1 {
		return errors.New("Password Time must be >= 1")
	}
	if c.Password.Parallelism < 1 {
		return errors.New("Password Parallelism must be >= 1")
	}
	if c.Password.SaltLength < 16 {
		return errors.New("Password SaltLength must be >= 16")
	}
	if c.Password.KeyLength < 16 {
		return errors.New("Password KeyLength must be >= 16")
	}
	if c.Password.MaxPasswordBytes < 0 {
		return errors.New("Password MaxPasswordBytes must be >= 0")
	}
	if c.Password.LegacyBcryptCost < 0 || c.Password.LegacyBcryptCost > 31 {
		return errors.New("Password LegacyBcryptCost must be between 0 and 31")
	}

	// Security
	if c.Security.EnableLoginThrottle {
		if c.Security.MaxLoginAttempts <= 0 {
			return errors.New("Security MaxLoginAttempts must be > 0")
		}
		if c.Security.LoginCooldownDuration <= 0 {
			return errors.New("Security LoginCooldownDuration must be > 0")
		}
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when enabled")
	}

	// Paging
	if c.Paging.DefaultPageSize <= 0 || c.Paging.MaxPageSize <= 0 {
		return errors.New("Paging sizes must be > 0")
	}
	if c.Paging.DefaultPageSize > c.Paging.MaxPageSize {
		return errors.New("Paging DefaultPageSize must be <= MaxPageSize")
	}

	return nil
}
