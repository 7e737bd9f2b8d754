package token

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Kind discriminates access tokens from refresh tokens. A token's kind claim
// must match the operation it is presented for; the engine rejects a refresh
// token wherever an access token is expected and vice versa.
type Kind string

const (
	// KindAccess marks short-lived tokens authorizing API calls.
	KindAccess Kind = "access"
	// KindRefresh marks tokens used solely to mint a new pair.
	KindRefresh Kind = "refresh"
)

var (
	// ErrExpired is returned by Verify for a structurally valid, correctly
	// signed token past its expiry.
	ErrExpired = errors.New("token expired")
	// ErrInvalid is returned for a bad signature or rejected claims.
	ErrInvalid = errors.New("token invalid")
	// ErrMalformed is returned for input that is not a JWT at all.
	ErrMalformed = errors.New("token malformed")
	// ErrUnsupported is returned for an unexpected algorithm or token format.
	ErrUnsupported = errors.New("token unsupported")
)

const minSecretLen = 32

// Config fixes the codec's signing parameters. Secret is the process-wide
// HMAC key, loaded once at startup and never mutated afterwards.
type Config struct {
	Secret []byte
	Issuer string
}

// Claims is the decoded payload of a verified token.
type Claims struct {
	Email string `json:"email,omitempty"`
	Kind  Kind   `json:"kind"`
	jwt.RegisteredClaims
}

// PrincipalID decodes the subject claim into the numeric principal id.
func (c *Claims) PrincipalID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, ErrInvalid
	}
	return id, nil
}

// Codec mints and verifies signed bearer tokens over a fixed secret.
type Codec struct {
	config Config
}

// NewCodec validates the signing configuration and returns a Codec.
func NewCodec(cfg Config) (*Codec, error) {
	if len(cfg.Secret) < minSecretLen {
		return nil, errors.New("token secret must be at least 32 bytes")
	}
	if cfg.Issuer == "" {
		return nil, errors.New("token issuer required")
	}
	return &Codec{config: cfg}, nil
}

// Mint signs a token of the given kind for the principal, expiring after ttl.
// Email is embedded on access tokens only. Each token carries a random jti so
// that pairs minted within the same second remain distinct.
func (c *Codec) Mint(principalID int64, email string, kind Kind, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		return "", errors.New("token ttl must be positive")
	}
	now := time.Now()

	claims := Claims{
		Kind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.config.Issuer,
			Subject:   strconv.FormatInt(principalID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}
	if kind == KindAccess {
		claims.Email = email
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.config.Secret)
}

// Verify checks the signature first and only then the registered claims; an
// unparsable or badly signed token never reveals its payload. Failures map to
// exactly one of ErrExpired, ErrInvalid, ErrMalformed, ErrUnsupported.
func (c *Codec) Verify(tokenStr string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(c.config.Issuer),
		jwt.WithExpirationRequired(),
	)

	parsed, err := parser.ParseWithClaims(tokenStr, &Claims{}, c.keyFunc)
	if err != nil {
		return nil, mapParseError(err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalid
	}
	if claims.Kind != KindAccess && claims.Kind != KindRefresh {
		return nil, ErrInvalid
	}
	return claims, nil
}

// RemainingTTL returns how long the token stays naturally valid, clamped to
// zero once expired. It is used to size revocation entries, so an expired or
// unreadable token yields zero rather than an error.
func (c *Codec) RemainingTTL(tokenStr string) time.Duration {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	parsed, err := parser.ParseWithClaims(tokenStr, &Claims{}, c.keyFunc)
	if err != nil {
		return 0
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || claims.ExpiresAt == nil {
		return 0
	}

	remaining := time.Until(claims.ExpiresAt.Time)
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (c *Codec) keyFunc(t *jwt.Token) (interface{}, error) {
	if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
		return nil, ErrUnsupported
	}
	return c.config.Secret, nil
}

func mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformed
	case errors.Is(err, ErrUnsupported), errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrUnsupported
	default:
		return ErrInvalid
	}
}
