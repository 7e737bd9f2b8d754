package authcore

import (
	"context"
	"strings"

	"github.com/suntcamp/authcore/internal/metrics"
	"github.com/suntcamp/authcore/token"
)

const bearerPrefix = "Bearer "

const eventLogout = "logout"

// Logout revokes the access token carried in the Authorization header value
// and tears down the principal's refresh session. Revocation lasts exactly
// as long as the token would have stayed valid; repeating a logout with the
// same token reports ErrAlreadyLoggedOut.
func (e *Engine) Logout(ctx context.Context, authorization string) error {
	if !strings.HasPrefix(authorization, bearerPrefix) {
		return ErrMissingToken
	}
	raw := strings.TrimPrefix(authorization, bearerPrefix)

	claims, err := e.codec.Verify(raw)
	if err != nil {
		return mapTokenErr(err)
	}
	if claims.Kind != token.KindAccess {
		return ErrInvalidTokenType
	}
	principalID, err := claims.PrincipalID()
	if err != nil {
		return ErrInvalidToken
	}

	revoked, err := e.revocations.IsRevoked(ctx, raw)
	if err != nil {
		return internalErr(err)
	}
	if revoked {
		return ErrAlreadyLoggedOut
	}

	// Revoke before deleting the session so a crash in between leaves the
	// token dead rather than the session dangling.
	if err := e.revocations.Revoke(ctx, raw, e.codec.RemainingTTL(raw)); err != nil {
		return internalErr(err)
	}
	if err := e.sessions.DeleteAll(ctx, principalID); err != nil {
		return internalErr(err)
	}

	e.metrics.Inc(metrics.MetricLogout)
	e.emit(ctx, eventLogout, principalID, claims.Email, nil)
	return nil
}
