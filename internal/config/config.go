// Package config loads process settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	goAccount "github.com/MrEthical07/goAccount"
)

// Config is the full process configuration.
type Config struct {
	HTTPAddr        string        `env:"GOACCOUNT_HTTP_ADDR" envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"GOACCOUNT_SHUTDOWN_TIMEOUT" envDefault:"15s"`
	CORSOrigins     []string      `env:"GOACCOUNT_CORS_ORIGINS" envSeparator:","`
	RequestsPerSec  float64       `env:"GOACCOUNT_RATE_LIMIT_RPS" envDefault:"20"`
	RequestBurst    int           `env:"GOACCOUNT_RATE_LIMIT_BURST" envDefault:"40"`

	LogLevel  string `env:"GOACCOUNT_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"GOACCOUNT_LOG_FORMAT" envDefault:"json"`

	RedisAddr     string        `env:"GOACCOUNT_REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string        `env:"GOACCOUNT_REDIS_PASSWORD"`
	RedisDB       int           `env:"GOACCOUNT_REDIS_DB" envDefault:"0"`
	RedisTimeout  time.Duration `env:"GOACCOUNT_REDIS_TIMEOUT" envDefault:"2s"`

	// DirectoryDriver is "postgres", "sqlite" or "memory".
	DirectoryDriver string `env:"GOACCOUNT_DIRECTORY_DRIVER" envDefault:"postgres"`
	DatabaseURL     string `env:"GOACCOUNT_DATABASE_URL"`
	SQLitePath      string `env:"GOACCOUNT_SQLITE_PATH" envDefault:"./data/goaccount.db"`

	JWTSecret  string        `env:"GOACCOUNT_JWT_SECRET,required"`
	JWTIssuer  string        `env:"GOACCOUNT_JWT_ISSUER"`
	AccessTTL  time.Duration `env:"GOACCOUNT_ACCESS_TTL" envDefault:"30m"`
	RenewalTTL time.Duration `env:"GOACCOUNT_RENEWAL_TTL" envDefault:"168h"`

	CookieDomain   string `env:"GOACCOUNT_COOKIE_DOMAIN"`
	CookieSecure   bool   `env:"GOACCOUNT_COOKIE_SECURE" envDefault:"true"`
	CookieSameSite string `env:"GOACCOUNT_COOKIE_SAMESITE" envDefault:"lax"`

	MaxLoginAttempts int           `env:"GOACCOUNT_MAX_LOGIN_ATTEMPTS" envDefault:"5"`
	LoginCooldown    time.Duration `env:"GOACCOUNT_LOGIN_COOLDOWN" envDefault:"15m"`
	IPThrottle       bool          `env:"GOACCOUNT_LOGIN_IP_THROTTLE" envDefault:"false"`

	AuditEnabled bool `env:"GOACCOUNT_AUDIT_ENABLED" envDefault:"true"`
}

// Load reads dotenvPath (when non-empty and present) into the environment
// without overriding existing variables, then parses Config.
func Load(dotenvPath string) (Config, error) {
	if dotenvPath != "" {
		if err := godotenv.Load(dotenvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", dotenvPath, err)
		}
	}
	return Parse()
}

// Parse reads Config from the current environment.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	switch cfg.DirectoryDriver {
	case "postgres":
		if cfg.DatabaseURL == "" {
			return Config{}, errors.New("GOACCOUNT_DATABASE_URL is required for the postgres driver")
		}
	case "sqlite", "memory":
	default:
		return Config{}, fmt.Errorf("unknown directory driver %q", cfg.DirectoryDriver)
	}
	if _, err := parseSameSite(cfg.CookieSameSite); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Engine converts the process settings into an engine Config on top of the
// engine defaults.
func (c Config) Engine() goAccount.Config {
	out := goAccount.DefaultConfig()
	out.JWT.Secret = c.JWTSecret
	out.JWT.Issuer = c.JWTIssuer
	out.JWT.AccessTTL = c.AccessTTL
	out.JWT.RenewalTTL = c.RenewalTTL

	out.Cookie.Domain = c.CookieDomain
	out.Cookie.Secure = c.CookieSecure
	out.Cookie.SameSite, _ = parseSameSite(c.CookieSameSite)

	out.Security.MaxLoginAttempts = c.MaxLoginAttempts
	out.Security.LoginCooldownDuration = c.LoginCooldown
	out.Security.EnableIPThrottle = c.IPThrottle

	out.Audit.Enabled = c.AuditEnabled
	return out
}

func parseSameSite(v string) (http.SameSite, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "lax":
		return http.SameSiteLaxMode, nil
	case "strict":
		return http.SameSiteStrictMode, nil
	case "none":
		return http.SameSiteNoneMode, nil
	default:
		return 0, fmt.Errorf("invalid cookie samesite %q", v)
	}
}
