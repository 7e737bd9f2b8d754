package stores

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/suntcamp/authcore/internal"
)

var (
	// ErrNoPendingCode is returned when no code is pending for the email.
	// "Never issued" and "already promoted to verified" are deliberately
	// indistinguishable: the verified marker must not read as a live code.
	ErrNoPendingCode = errors.New("no pending verification code")
	// ErrCodeMismatch is returned when the submitted code is wrong.
	ErrCodeMismatch = errors.New("verification code mismatch")
	// ErrVerificationUnavailable wraps Redis failures from the verification store.
	ErrVerificationUnavailable = errors.New("verification redis unavailable")
)

// verifiedMarker replaces a consumed code under the same key. The key holds
// either a pending code or this marker, never both.
const verifiedMarker = "verified"

// promoteScript swaps a pending code for the verified marker in one step so
// no window exists where the key is empty or holds both states.
//
// KEYS[1] = verification key
// ARGV[1] = verified marker
// ARGV[2] = marker ttl in milliseconds
const promoteScript = `
redis.call("DEL", KEYS[1])
redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[2])
return 1
`

var promoteLua = redis.NewScript(promoteScript)

// consumeScript deletes the verified marker if and only if it is present,
// making registration's verification check single-use. A pending code under
// the key is left untouched.
//
// KEYS[1] = verification key
// ARGV[1] = verified marker
const consumeScript = `
local v = redis.call("GET", KEYS[1])
if v == ARGV[1] then
  redis.call("DEL", KEYS[1])
  return 1
end
return 0
`

var consumeLua = redis.NewScript(consumeScript)

// VerificationStore holds one-time email verification codes and the
// post-verification markers that gate registration.
type VerificationStore struct {
	redis       redis.UniversalClient
	prefix      string
	codeTTL     time.Duration
	verifiedTTL time.Duration
}

// NewVerificationStore creates a VerificationStore. codeTTL bounds the
// brute-force window on a pending code; verifiedTTL bounds how long a
// verified-but-unregistered email stays actionable.
func NewVerificationStore(redisClient redis.UniversalClient, prefix string, codeTTL, verifiedTTL time.Duration) *VerificationStore {
	if prefix == "" {
		prefix = "email:verify"
	}
	return &VerificationStore{
		redis:       redisClient,
		prefix:      prefix,
		codeTTL:     codeTTL,
		verifiedTTL: verifiedTTL,
	}
}

func (s *VerificationStore) key(email string) string {
	return s.prefix + ":" + email
}

// IssueCode generates a fresh six-digit code and stores it under the email
// with the short code TTL, overwriting any prior pending code or marker.
func (s *VerificationStore) IssueCode(ctx context.Context, email string) (string, error) {
	code, err := internal.NewVerificationCode()
	if err != nil {
		return "", err
	}
	if err := s.redis.Set(ctx, s.key(email), code, s.codeTTL).Err(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrVerificationUnavailable, err)
	}
	return code, nil
}

// CheckCode compares the submitted code against the pending one. It does not
// consume the code; promotion is the caller's next step on success.
func (s *VerificationStore) CheckCode(ctx context.Context, email, submitted string) error {
	stored, err := s.redis.Get(ctx, s.key(email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrNoPendingCode
		}
		return fmt.Errorf("%w: %v", ErrVerificationUnavailable, err)
	}
	if stored == verifiedMarker {
		return ErrNoPendingCode
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(submitted)) != 1 {
		return ErrCodeMismatch
	}
	return nil
}

// PromoteToVerified consumes the pending code and writes the verified marker
// with the longer TTL, the window in which registration must complete.
func (s *VerificationStore) PromoteToVerified(ctx context.Context, email string) error {
	err := promoteLua.Run(ctx, s.redis,
		[]string{s.key(email)},
		verifiedMarker,
		s.verifiedTTL.Milliseconds(),
	).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("%w: %v", ErrVerificationUnavailable, err)
	}
	return nil
}

// Consume reports whether the verified marker is present and deletes it on
// success; a marker admits exactly one registration.
func (s *VerificationStore) Consume(ctx context.Context, email string) (bool, error) {
	n, err := consumeLua.Run(ctx, s.redis,
		[]string{s.key(email)},
		verifiedMarker,
	).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return false, fmt.Errorf("%w: %v", ErrVerificationUnavailable, err)
	}
	return n == 1, nil
}
