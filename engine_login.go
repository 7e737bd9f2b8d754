package authcore

import (
	"context"

	"github.com/suntcamp/authcore/internal/metrics"
)

const (
	eventLogin         = "login"
	eventLoginExternal = "login_external"
)

// Login authenticates an email/password pair and, on success, issues a fresh
// token pair, displacing any session the principal already had. Unknown
// email and wrong password return distinct errors, but the unknown-email
// path still performs a hash comparison so the two are not separable by
// response timing at the hashing layer.
func (e *Engine) Login(ctx context.Context, email, plaintext string) (*LoginResult, error) {
	if e.limiter != nil {
		if err := e.limiter.CheckLogin(ctx, email); err != nil {
			return nil, mapLimitErr(err)
		}
	}

	p, err := e.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, internalErr(err)
	}
	if p == nil {
		_, _ = e.hasher.Matches(plaintext, e.dummyHash)
		return nil, e.loginFailed(ctx, email, ErrEmailNotRegistered)
	}

	// Provider-linked accounts carry no password hash. The comparison still
	// runs so the branch stays timing-equivalent to a wrong password.
	if p.PasswordHash == "" {
		_, _ = e.hasher.Matches(plaintext, e.dummyHash)
		return nil, e.loginFailed(ctx, email, ErrInvalidPassword)
	}

	ok, err := e.hasher.Matches(plaintext, p.PasswordHash)
	if err != nil {
		return nil, internalErr(err)
	}
	if !ok {
		return nil, e.loginFailed(ctx, email, ErrInvalidPassword)
	}

	if e.limiter != nil {
		// Best effort; a stale counter only costs the user headroom.
		_ = e.limiter.ResetLogin(ctx, email)
	}

	pair, err := e.issueTokens(ctx, p)
	if err != nil {
		return nil, err
	}

	e.metrics.Inc(metrics.MetricLoginSuccess)
	e.emit(ctx, eventLogin, p.ID, p.Email, nil)

	return &LoginResult{PrincipalID: p.ID, Email: p.Email, TokenPair: pair}, nil
}

// LoginExternal authenticates a provider-verified identity, creating the
// principal on first sight and refreshing a changed display name on repeat
// logins. The provider payload must be complete; no password is involved.
func (e *Engine) LoginExternal(ctx context.Context, identity ExternalIdentity) (*LoginResult, error) {
	if !identity.Complete() {
		return nil, ErrExternalIdentityIncomplete
	}

	p, err := e.users.FindByExternalID(ctx, identity.ProviderID)
	if err != nil {
		return nil, internalErr(err)
	}

	switch {
	case p == nil:
		p, err = e.users.Save(ctx, &Principal{
			Email:      identity.Email,
			Username:   identity.Username,
			ExternalID: identity.ProviderID,
		})
		if err != nil {
			return nil, internalErr(err)
		}
	case p.Username != identity.Username:
		p.Username = identity.Username
		p, err = e.users.Save(ctx, p)
		if err != nil {
			return nil, internalErr(err)
		}
	}

	pair, err := e.issueTokens(ctx, p)
	if err != nil {
		return nil, err
	}

	e.metrics.Inc(metrics.MetricExternalLoginSuccess)
	e.emit(ctx, eventLoginExternal, p.ID, p.Email, nil)

	return &LoginResult{PrincipalID: p.ID, Email: p.Email, TokenPair: pair}, nil
}

func (e *Engine) loginFailed(ctx context.Context, email string, cause error) error {
	if e.limiter != nil {
		if err := e.limiter.RecordLoginFailure(ctx, email); err != nil {
			return mapLimitErr(err)
		}
	}
	e.metrics.Inc(metrics.MetricLoginFailure)
	e.emit(ctx, eventLogin, 0, email, cause)
	return cause
}
