package authcore

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/suntcamp/authcore/password"
)

// Config is the engine's full configuration. Zero values are filled from
// defaultConfig by [Builder]; Validate runs at Build time, not before.
type Config struct {
	Token        TokenConfig
	Verification VerificationConfig
	Keys         RedisKeyConfig
	Password     password.Config
	Throttle     ThrottleConfig
	Audit        AuditConfig
	Metrics      MetricsConfig
}

// TokenConfig holds the signing secret and token lifetimes. Secret is loaded
// once at process start and treated as immutable.
type TokenConfig struct {
	Secret     []byte
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// VerificationConfig holds the two verification TTLs: the short window a
// pending code stays guessable, and the longer window a verified email has
// to complete registration.
type VerificationConfig struct {
	CodeTTL     time.Duration
	VerifiedTTL time.Duration
}

// RedisKeyConfig sets the Redis key namespaces of the three stores.
type RedisKeyConfig struct {
	SessionPrefix      string
	RevocationPrefix   string
	VerificationPrefix string
}

// ThrottleConfig enables fixed-window attempt limiting for logins and
// verification-code checks. Disabled by default.
type ThrottleConfig struct {
	Enabled          bool
	MaxLoginAttempts int
	LoginCooldown    time.Duration
	MaxCodeAttempts  int
	CodeCooldown     time.Duration
}

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls in-process counters.
type MetricsConfig struct {
	Enabled bool
}

func defaultConfig() Config {
	return Config{
		Token: TokenConfig{
			Issuer:     "authcore",
			AccessTTL:  15 * time.Minute,
			RefreshTTL: 14 * 24 * time.Hour,
		},
		Verification: VerificationConfig{
			CodeTTL:     5 * time.Minute,
			VerifiedTTL: 10 * time.Minute,
		},
		Keys: RedisKeyConfig{
			SessionPrefix:      "rt",
			RevocationPrefix:   "blacklist",
			VerificationPrefix: "email:verify",
		},
		Password: password.DefaultConfig(),
		Throttle: ThrottleConfig{
			MaxLoginAttempts: 10,
			LoginCooldown:    15 * time.Minute,
			MaxCodeAttempts:  5,
			CodeCooldown:     5 * time.Minute,
		},
		Audit: AuditConfig{
			BufferSize: 256,
			DropIfFull: true,
		},
	}
}

// Validate rejects configurations that would weaken the engine's guarantees.
func (c Config) Validate() error {
	if len(c.Token.Secret) < 32 {
		return errors.New("token secret must be at least 32 bytes")
	}
	if c.Token.Issuer == "" {
		return errors.New("token issuer required")
	}
	if c.Token.AccessTTL <= 0 || c.Token.RefreshTTL <= 0 {
		return errors.New("token TTLs must be positive")
	}
	if c.Token.RefreshTTL < c.Token.AccessTTL {
		return errors.New("refresh TTL must not be shorter than access TTL")
	}
	if c.Verification.CodeTTL <= 0 || c.Verification.VerifiedTTL <= 0 {
		return errors.New("verification TTLs must be positive")
	}
	if c.Verification.VerifiedTTL < c.Verification.CodeTTL {
		return errors.New("verified TTL must not be shorter than code TTL")
	}
	if c.Throttle.Enabled {
		if c.Throttle.MaxLoginAttempts <= 0 || c.Throttle.LoginCooldown <= 0 {
			return errors.New("throttle login parameters must be positive")
		}
		if c.Throttle.MaxCodeAttempts <= 0 || c.Throttle.CodeCooldown <= 0 {
			return errors.New("throttle code parameters must be positive")
		}
	}
	return nil
}

// ConfigWithSecret returns the default configuration carrying the given
// secret and issuer, validated.
func ConfigWithSecret(secret []byte, issuer string) (Config, error) {
	cfg := defaultConfig()
	cfg.Token.Secret = secret
	if issuer != "" {
		cfg.Token.Issuer = issuer
	}
	return cfg, cfg.Validate()
}

// ConfigFromEnv builds a Config from the environment, loading a local .env
// file first when one exists (missing files are fine). The secret is read
// base64-encoded from AUTHCORE_TOKEN_SECRET; duration variables use Go
// duration syntax (e.g. "15m").
func ConfigFromEnv() (Config, error) {
	_ = godotenv.Load()

	cfg := defaultConfig()

	rawSecret := os.Getenv("AUTHCORE_TOKEN_SECRET")
	if rawSecret == "" {
		return Config{}, errors.New("AUTHCORE_TOKEN_SECRET is required")
	}
	secret, err := base64.StdEncoding.DecodeString(rawSecret)
	if err != nil {
		return Config{}, fmt.Errorf("AUTHCORE_TOKEN_SECRET must be base64: %v", err)
	}
	cfg.Token.Secret = secret

	if issuer := os.Getenv("AUTHCORE_TOKEN_ISSUER"); issuer != "" {
		cfg.Token.Issuer = issuer
	}

	durations := []struct {
		name string
		dst  *time.Duration
	}{
		{"AUTHCORE_ACCESS_TTL", &cfg.Token.AccessTTL},
		{"AUTHCORE_REFRESH_TTL", &cfg.Token.RefreshTTL},
		{"AUTHCORE_CODE_TTL", &cfg.Verification.CodeTTL},
		{"AUTHCORE_VERIFIED_TTL", &cfg.Verification.VerifiedTTL},
	}
	for _, d := range durations {
		raw := os.Getenv(d.name)
		if raw == "" {
			continue
		}
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return Config{}, fmt.Errorf("%s: invalid duration %q", d.name, raw)
		}
		*d.dst = parsed
	}

	return cfg, cfg.Validate()
}
