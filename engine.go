package authcore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/suntcamp/authcore/internal/audit"
	"github.com/suntcamp/authcore/internal/metrics"
	"github.com/suntcamp/authcore/internal/rate"
	"github.com/suntcamp/authcore/internal/stores"
	"github.com/suntcamp/authcore/token"
)

// Engine is the session lifecycle core. It owns token minting and
// verification, the single-session refresh store, the revocation list, and
// the email verification gate. Construct it through [Builder]; all methods
// are safe for concurrent use.
type Engine struct {
	config        Config
	codec         *token.Codec
	users         UserStore
	hasher        PasswordHasher
	mailer        EmailSender
	sessions      *stores.SessionStore
	revocations   *stores.RevocationStore
	verifications *stores.VerificationStore
	limiter       *rate.Limiter
	audit         *audit.Dispatcher
	metrics       *metrics.Metrics
	dummyHash     string
}

// Authenticate verifies a raw access token for a protected request: kind
// claim must be access, signature and registered claims must hold, and the
// token must not have been revoked. A revocation-store failure fails closed.
func (e *Engine) Authenticate(ctx context.Context, accessToken string) (*token.Claims, error) {
	claims, err := e.codec.Verify(accessToken)
	if err != nil {
		e.metrics.Inc(metrics.MetricAuthenticateFailure)
		return nil, mapTokenErr(err)
	}
	if claims.Kind != token.KindAccess {
		e.metrics.Inc(metrics.MetricAuthenticateFailure)
		return nil, ErrInvalidTokenType
	}

	revoked, err := e.revocations.IsRevoked(ctx, accessToken)
	if err != nil {
		e.metrics.Inc(metrics.MetricAuthenticateFailure)
		return nil, internalErr(err)
	}
	if revoked {
		e.metrics.Inc(metrics.MetricAuthenticateFailure)
		return nil, ErrAlreadyLoggedOut
	}

	e.metrics.Inc(metrics.MetricAuthenticateSuccess)
	return claims, nil
}

// Me resolves a valid access token to its principal record.
func (e *Engine) Me(ctx context.Context, accessToken string) (*Principal, error) {
	claims, err := e.Authenticate(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	id, err := claims.PrincipalID()
	if err != nil {
		return nil, ErrInvalidToken
	}

	p, err := e.users.FindByID(ctx, id)
	if err != nil {
		return nil, internalErr(err)
	}
	if p == nil {
		return nil, ErrUserNotFound
	}
	return p, nil
}

// MetricsSnapshot returns a point-in-time copy of the engine's counters.
func (e *Engine) MetricsSnapshot() metrics.Snapshot {
	return e.metrics.Snapshot()
}

// AuditDropped reports how many audit events were discarded under
// backpressure.
func (e *Engine) AuditDropped() uint64 {
	return e.audit.Dropped()
}

// Close flushes and stops the audit dispatcher. The engine must not be used
// after Close.
func (e *Engine) Close() {
	e.audit.Close()
}

// issueTokens mints a fresh pair for the principal and installs the refresh
// token as the principal's single active session, displacing any prior one.
func (e *Engine) issueTokens(ctx context.Context, p *Principal) (TokenPair, error) {
	access, err := e.codec.Mint(p.ID, p.Email, token.KindAccess, e.config.Token.AccessTTL)
	if err != nil {
		return TokenPair{}, internalErr(err)
	}
	refresh, err := e.codec.Mint(p.ID, p.Email, token.KindRefresh, e.config.Token.RefreshTTL)
	if err != nil {
		return TokenPair{}, internalErr(err)
	}
	if err := e.sessions.Put(ctx, p.ID, refresh, e.config.Token.RefreshTTL); err != nil {
		return TokenPair{}, internalErr(err)
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (e *Engine) emit(ctx context.Context, eventType string, principalID int64, email string, opErr error) {
	event := audit.Event{
		Timestamp:   time.Now().UTC(),
		EventType:   eventType,
		PrincipalID: principalID,
		Email:       email,
		Success:     opErr == nil,
	}
	if opErr != nil {
		event.Error = opErr.Error()
	}
	e.audit.Emit(ctx, event)
}

// mapTokenErr translates codec sentinels into the engine's taxonomy. Every
// token failure crossing the engine boundary goes through here.
func mapTokenErr(err error) error {
	switch {
	case errors.Is(err, token.ErrExpired):
		return ErrExpiredToken
	case errors.Is(err, token.ErrMalformed):
		return ErrMalformedToken
	case errors.Is(err, token.ErrUnsupported):
		return ErrUnsupportedToken
	default:
		return ErrInvalidToken
	}
}

// internalErr wraps store and collaborator failures so backend details never
// leak through the engine's error surface.
func internalErr(err error) error {
	return fmt.Errorf("%w: %v", ErrInternal, err)
}

// mapLimitErr translates limiter sentinels; a limiter backend failure is an
// internal error, not a denial.
func mapLimitErr(err error) error {
	if errors.Is(err, rate.ErrRateLimited) {
		return ErrRateLimited
	}
	return internalErr(err)
}
