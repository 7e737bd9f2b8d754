package authcore

import (
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/suntcamp/authcore/internal/audit"
	"github.com/suntcamp/authcore/internal/metrics"
	"github.com/suntcamp/authcore/internal/rate"
	"github.com/suntcamp/authcore/internal/stores"
	"github.com/suntcamp/authcore/password"
	"github.com/suntcamp/authcore/token"
)

// Builder assembles an Engine from configuration and collaborators. Redis
// and a UserStore are mandatory; the password hasher defaults to argon2id,
// the email sender is optional and only required for verification flows.
type Builder struct {
	config    Config
	hasConfig bool
	redis     redis.UniversalClient
	users     UserStore
	hasher    PasswordHasher
	mailer    EmailSender
	auditSink audit.Sink
}

// New returns an empty Builder.
func New() *Builder {
	return &Builder{}
}

// WithConfig sets the full configuration. Without it, Build uses defaults
// and will fail on the missing secret.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	b.hasConfig = true
	return b
}

// WithRedis sets the Redis client shared by sessions, revocations,
// verification codes, and throttling.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithUserStore sets the user-record backend.
func (b *Builder) WithUserStore(users UserStore) *Builder {
	b.users = users
	return b
}

// WithPasswordHasher overrides the default argon2id hasher.
func (b *Builder) WithPasswordHasher(hasher PasswordHasher) *Builder {
	b.hasher = hasher
	return b
}

// WithEmailSender sets the verification-code delivery channel.
func (b *Builder) WithEmailSender(mailer EmailSender) *Builder {
	b.mailer = mailer
	return b
}

// WithAuditSink sets the audit destination. Events only flow when
// Config.Audit.Enabled is true.
func (b *Builder) WithAuditSink(sink audit.Sink) *Builder {
	b.auditSink = sink
	return b
}

// Build validates the configuration, wires the stores, and returns a ready
// Engine. The builder can be discarded afterwards.
func (b *Builder) Build() (*Engine, error) {
	cfg := b.config
	if !b.hasConfig {
		cfg = defaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("authcore: %w", err)
	}
	if b.redis == nil {
		return nil, errors.New("authcore: redis client required")
	}
	if b.users == nil {
		return nil, errors.New("authcore: user store required")
	}

	hasher := b.hasher
	if hasher == nil {
		var err error
		hasher, err = password.NewArgon2(cfg.Password)
		if err != nil {
			return nil, fmt.Errorf("authcore: %w", err)
		}
	}

	codec, err := token.NewCodec(token.Config{
		Secret: cfg.Token.Secret,
		Issuer: cfg.Token.Issuer,
	})
	if err != nil {
		return nil, fmt.Errorf("authcore: %w", err)
	}

	// Hashed once up front so the unknown-email login path can burn a
	// comparison against it and stay timing-equivalent to the wrong-password
	// path.
	dummyHash, err := hasher.Hash("authcore-timing-equalization-dummy")
	if err != nil {
		return nil, fmt.Errorf("authcore: %w", err)
	}

	var limiter *rate.Limiter
	if cfg.Throttle.Enabled {
		limiter = rate.New(b.redis, rate.Config{
			MaxLoginAttempts: cfg.Throttle.MaxLoginAttempts,
			LoginCooldown:    cfg.Throttle.LoginCooldown,
			MaxCodeAttempts:  cfg.Throttle.MaxCodeAttempts,
			CodeCooldown:     cfg.Throttle.CodeCooldown,
		})
	}

	engine := &Engine{
		config: cfg,
		codec:  codec,
		users:  b.users,
		hasher: hasher,
		mailer: b.mailer,
		sessions: stores.NewSessionStore(
			b.redis, cfg.Keys.SessionPrefix,
		),
		revocations: stores.NewRevocationStore(
			b.redis, cfg.Keys.RevocationPrefix,
		),
		verifications: stores.NewVerificationStore(
			b.redis, cfg.Keys.VerificationPrefix,
			cfg.Verification.CodeTTL, cfg.Verification.VerifiedTTL,
		),
		limiter: limiter,
		audit: audit.NewDispatcher(audit.Config{
			Enabled:    cfg.Audit.Enabled,
			BufferSize: cfg.Audit.BufferSize,
			DropIfFull: cfg.Audit.DropIfFull,
		}, b.auditSink),
		metrics:   metrics.New(metrics.Config{Enabled: cfg.Metrics.Enabled}),
		dummyHash: dummyHash,
	}

	return engine, nil
}
