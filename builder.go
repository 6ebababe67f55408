package goAccount

import (
	"errors"
	"fmt"
	"time"

	internalaudit "github.com/MrEthical07/goAccount/internal/audit"
	"github.com/MrEthical07/goAccount/internal/rate"
	"github.com/MrEthical07/goAccount/internal/validate"
	"github.com/MrEthical07/goAccount/jwt"
	"github.com/MrEthical07/goAccount/password"
	"github.com/MrEthical07/goAccount/session"
	"github.com/MrEthical07/goAccount/user"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Builder assembles an Engine. A Builder can be built once.
type Builder struct {
	config    Config
	redis     redis.UniversalClient
	directory user.Directory
	logger    zerolog.Logger
	auditSink AuditSink
	now       func() time.Time

	built bool
}

// New returns a Builder seeded with DefaultConfig.
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
		logger: zerolog.Nop(),
	}
}

// WithConfig replaces the default engine configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithRedis sets the client backing the session store and login throttle.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithDirectory sets the user directory. Build fails without one.
func (b *Builder) WithDirectory(d user.Directory) *Builder {
	b.directory = d
	return b
}

// WithLogger sets the engine logger. Defaults to zerolog.Nop().
func (b *Builder) WithLogger(l zerolog.Logger) *Builder {
	b.logger = l
	return b
}

// WithAuditSink sets the audit destination. Events are only emitted when
// Config.Audit.Enabled is true.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithClock overrides time.Now for token issuance and audit timestamps.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// Build validates the configuration and wires the engine.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}
	if b.redis == nil {
		return nil, errors.New("redis client is required")
	}
	if b.directory == nil {
		return nil, errors.New("user directory is required")
	}
	if err := b.config.Validate(); err != nil {
		return nil, err
	}

	cfg := b.config
	now := b.now
	if now == nil {
		now = time.Now
	}

	jwtManager, err := jwt.NewManager(jwt.Config{
		Secret:     cfg.JWT.Secret,
		Issuer:     cfg.JWT.Issuer,
		AccessTTL:  cfg.JWT.AccessTTL,
		RenewalTTL: cfg.JWT.RenewalTTL,
		Now:        now,
	})
	if err != nil {
		return nil, fmt.Errorf("jwt: %w", err)
	}

	argon, err := password.NewArgon2(password.Config{
		Memory:           cfg.Password.Memory,
		Time:             cfg.Password.Time,
		Parallelism:      cfg.Password.Parallelism,
		SaltLength:       cfg.Password.SaltLength,
		KeyLength:        cfg.Password.KeyLength,
		MaxPasswordBytes: cfg.Password.MaxPasswordBytes,
	})
	if err != nil {
		return nil, fmt.Errorf("password: %w", err)
	}
	var legacy *password.Bcrypt
	if cfg.Password.LegacyBcryptCost > 0 {
		legacy = password.NewBcrypt(cfg.Password.LegacyBcryptCost)
	}

	e := &Engine{
		config:    cfg,
		jwt:       jwtManager,
		sessions:  session.NewStore(b.redis, session.Config{Prefix: cfg.Session.RedisPrefix, TombstoneTTL: cfg.Session.TombstoneTTL}),
		passwords: password.NewChain(argon, legacy),
		directory: b.directory,
		validator: validate.New(),
		metrics:   NewMetrics(cfg.Metrics),
		logger:    b.logger,
		now:       now,
	}

	if cfg.Security.EnableLoginThrottle {
		e.limiter = rate.New(b.redis, rate.Config{
			EnableIPThrottle:      cfg.Security.EnableIPThrottle,
			MaxLoginAttempts:      cfg.Security.MaxLoginAttempts,
			LoginCooldownDuration: cfg.Security.LoginCooldownDuration,
		})
	}

	if cfg.Audit.Enabled {
		sink := b.auditSink
		if sink == nil {
			sink = internalaudit.NewZerologSink(b.logger)
		}
		e.audit = internalaudit.NewDispatcher(internalaudit.Config{
			Enabled:    true,
			BufferSize: cfg.Audit.BufferSize,
			DropIfFull: cfg.Audit.DropIfFull,
		}, sink)
	}

	b.built = true
	return e, nil
}
