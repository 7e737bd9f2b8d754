package authcore

import (
	"context"
	"errors"
	"log"

	"github.com/suntcamp/authcore/internal/metrics"
	"github.com/suntcamp/authcore/internal/stores"
	"github.com/suntcamp/authcore/token"
)

const eventRefresh = "refresh"

// Refresh exchanges a valid refresh token for a fresh pair. Rotation is a
// compare-and-swap against the principal's stored token, so of two
// concurrent calls presenting the same token exactly one wins; the loser
// gets ErrInvalidRefreshToken and the winner's new pair stays valid.
// oldAccessToken, when non-empty, is revoked best-effort for its remaining
// lifetime.
func (e *Engine) Refresh(ctx context.Context, refreshToken, oldAccessToken string) (*TokenPair, error) {
	claims, err := e.codec.Verify(refreshToken)
	if err != nil {
		return nil, e.refreshFailed(ctx, "", mapTokenErr(err))
	}
	if claims.Kind != token.KindRefresh {
		return nil, e.refreshFailed(ctx, "", ErrInvalidTokenType)
	}
	principalID, err := claims.PrincipalID()
	if err != nil {
		return nil, e.refreshFailed(ctx, "", ErrInvalidToken)
	}

	p, err := e.users.FindByID(ctx, principalID)
	if err != nil {
		return nil, internalErr(err)
	}
	if p == nil {
		return nil, e.refreshFailed(ctx, "", ErrUserNotFound)
	}

	nextRefresh, err := e.codec.Mint(p.ID, p.Email, token.KindRefresh, e.config.Token.RefreshTTL)
	if err != nil {
		return nil, internalErr(err)
	}

	err = e.sessions.Rotate(ctx, p.ID, refreshToken, nextRefresh, e.config.Token.RefreshTTL)
	switch {
	case err == nil:
	case errors.Is(err, stores.ErrSessionNotFound):
		return nil, e.refreshFailed(ctx, p.Email, ErrRefreshTokenNotFound)
	case errors.Is(err, stores.ErrRefreshMismatch):
		e.metrics.Inc(metrics.MetricRefreshReplayDetected)
		return nil, e.refreshFailed(ctx, p.Email, ErrInvalidRefreshToken)
	default:
		return nil, internalErr(err)
	}

	if oldAccessToken != "" {
		// Best effort: an expired or unreadable old access token needs no
		// entry, and a store hiccup here must not undo a completed rotation.
		if err := e.revocations.Revoke(ctx, oldAccessToken, e.codec.RemainingTTL(oldAccessToken)); err != nil {
			log.Printf("authcore: revoke on refresh failed: %v", err)
		}
	}

	nextAccess, err := e.codec.Mint(p.ID, p.Email, token.KindAccess, e.config.Token.AccessTTL)
	if err != nil {
		return nil, internalErr(err)
	}

	e.metrics.Inc(metrics.MetricRefreshSuccess)
	e.emit(ctx, eventRefresh, p.ID, p.Email, nil)
	return &TokenPair{AccessToken: nextAccess, RefreshToken: nextRefresh}, nil
}

func (e *Engine) refreshFailed(ctx context.Context, email string, cause error) error {
	e.metrics.Inc(metrics.MetricRefreshFailure)
	e.emit(ctx, eventRefresh, 0, email, cause)
	return cause
}
