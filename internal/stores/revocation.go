package stores

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrRevocationUnavailable wraps Redis failures from the revocation store.
// Callers must treat it as fatal for the operation: a dropped revoke is a
// security regression and an unanswerable check must not read as "not revoked".
var ErrRevocationUnavailable = errors.New("revocation redis unavailable")

const revokedValue = "logout"

// RevocationStore marks access tokens as revoked until their natural expiry.
type RevocationStore struct {
	redis  redis.UniversalClient
	prefix string
}

// NewRevocationStore creates a RevocationStore under the given key prefix.
func NewRevocationStore(redisClient redis.UniversalClient, prefix string) *RevocationStore {
	if prefix == "" {
		prefix = "blacklist"
	}
	return &RevocationStore{redis: redisClient, prefix: prefix}
}

func (s *RevocationStore) key(token string) string {
	return s.prefix + ":" + token
}

// Revoke inserts the token with a TTL equal to its remaining natural
// lifetime. Re-revoking overwrites the same entry and is a no-op, not an
// error. A non-positive TTL means the token is already expired and nothing
// needs to be written.
func (s *RevocationStore) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := s.redis.Set(ctx, s.key(token), revokedValue, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRevocationUnavailable, err)
	}
	return nil
}

// IsRevoked reports whether the token has been revoked. Store failures
// propagate so the caller fails closed.
func (s *RevocationStore) IsRevoked(ctx context.Context, token string) (bool, error) {
	n, err := s.redis.Exists(ctx, s.key(token)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrRevocationUnavailable, err)
	}
	return n > 0, nil
}
