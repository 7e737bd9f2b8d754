package stores

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrSessionNotFound is returned when no refresh session exists for the principal.
	ErrSessionNotFound = errors.New("refresh session not found")
	// ErrRefreshMismatch is returned when the presented refresh token is not
	// the principal's current one (stale or superseded).
	ErrRefreshMismatch = errors.New("refresh token mismatch")
	// ErrSessionUnavailable wraps Redis failures from the session store.
	ErrSessionUnavailable = errors.New("session redis unavailable")
)

const (
	rotateStatusNotFound int64 = 0
	rotateStatusMismatch int64 = 1
	rotateStatusRotated  int64 = 2
)

// deleteAllScript removes the forward entry and, if one existed, the reverse
// entry for whatever token it pointed at, in a single atomic step.
//
// KEYS[1] = forward key (principal -> token)
// ARGV[1] = reverse key prefix
const deleteAllScript = `
local token = redis.call("GET", KEYS[1])
if not token then
  return 0
end
redis.call("DEL", KEYS[1])
redis.call("DEL", ARGV[1] .. token)
return 1
`

var deleteAllLua = redis.NewScript(deleteAllScript)

// rotateScript is the compare-and-swap at the heart of refresh-token
// rotation. Exactly one of two racing callers can observe the stored token
// equal to the one it presented; the loser sees the winner's overwrite and
// gets a mismatch. Status codes mirror rotateStatus* above.
//
// KEYS[1] = forward key
// ARGV[1] = presented token
// ARGV[2] = next token
// ARGV[3] = principal id
// ARGV[4] = ttl in milliseconds
// ARGV[5] = reverse key prefix
const rotateScript = `
local current = redis.call("GET", KEYS[1])
if not current then
  return 0
end
if current ~= ARGV[1] then
  return 1
end
redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[4])
redis.call("DEL", ARGV[5] .. current)
redis.call("SET", ARGV[5] .. ARGV[2], ARGV[3], "PX", ARGV[4])
return 2
`

var rotateLua = redis.NewScript(rotateScript)

// SessionStore holds the single active refresh token per principal, plus the
// reverse token-to-principal index for O(1) ownership lookup. Both entries
// always share one TTL.
type SessionStore struct {
	redis  redis.UniversalClient
	prefix string
}

// NewSessionStore creates a SessionStore under the given key prefix.
func NewSessionStore(redisClient redis.UniversalClient, prefix string) *SessionStore {
	if prefix == "" {
		prefix = "rt"
	}
	return &SessionStore{redis: redisClient, prefix: prefix}
}

func (s *SessionStore) forwardKey(principalID int64) string {
	return s.prefix + ":user:" + strconv.FormatInt(principalID, 10)
}

func (s *SessionStore) reversePrefix() string {
	return s.prefix + ":token:"
}

// Put establishes the principal's new current session, implicitly
// invalidating any previous one via overwrite of the forward key. Forward and
// reverse entries are written inside one MULTI/EXEC so the pair lands
// together or not at all.
func (s *SessionStore) Put(ctx context.Context, principalID int64, refreshToken string, ttl time.Duration) error {
	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.forwardKey(principalID), refreshToken, ttl)
		pipe.Set(ctx, s.reversePrefix()+refreshToken, strconv.FormatInt(principalID, 10), ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSessionUnavailable, err)
	}
	return nil
}

// Get returns the principal's current refresh token, or ErrSessionNotFound.
func (s *SessionStore) Get(ctx context.Context, principalID int64) (string, error) {
	token, err := s.redis.Get(ctx, s.forwardKey(principalID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrSessionNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrSessionUnavailable, err)
	}
	return token, nil
}

// FindPrincipal resolves a refresh token to its owning principal through the
// reverse index.
func (s *SessionStore) FindPrincipal(ctx context.Context, refreshToken string) (int64, error) {
	raw, err := s.redis.Get(ctx, s.reversePrefix()+refreshToken).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrSessionNotFound
		}
		return 0, fmt.Errorf("%w: %v", ErrSessionUnavailable, err)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: corrupt reverse entry", ErrSessionUnavailable)
	}
	return id, nil
}

// DeleteAll removes the principal's current session, forward and reverse
// entries together. Deleting an absent session is not an error.
func (s *SessionStore) DeleteAll(ctx context.Context, principalID int64) error {
	err := deleteAllLua.Run(ctx, s.redis,
		[]string{s.forwardKey(principalID)},
		s.reversePrefix(),
	).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("%w: %v", ErrSessionUnavailable, err)
	}
	return nil
}

// Rotate atomically replaces the principal's session: it succeeds only when
// the stored token equals presented byte-for-byte, then installs next under a
// fresh ttl and repoints the reverse index. Under two concurrent calls with
// the same presented token, exactly one returns nil and the other
// ErrRefreshMismatch.
func (s *SessionStore) Rotate(ctx context.Context, principalID int64, presented, next string, ttl time.Duration) error {
	status, err := rotateLua.Run(ctx, s.redis,
		[]string{s.forwardKey(principalID)},
		presented,
		next,
		strconv.FormatInt(principalID, 10),
		ttl.Milliseconds(),
		s.reversePrefix(),
	).Int64()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSessionUnavailable, err)
	}

	switch status {
	case rotateStatusRotated:
		return nil
	case rotateStatusNotFound:
		return ErrSessionNotFound
	case rotateStatusMismatch:
		return ErrRefreshMismatch
	default:
		return fmt.Errorf("%w: unexpected rotate status %d", ErrSessionUnavailable, status)
	}
}
