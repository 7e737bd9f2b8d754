package authcore

import (
	"context"

	"github.com/suntcamp/authcore/internal/metrics"
)

const eventRegister = "register"

// Register creates a local principal for an email that holds a verified
// marker. The marker is consumed first and admits exactly one registration;
// uniqueness checks run only after the gate so an unverified caller learns
// nothing about existing emails or usernames.
func (e *Engine) Register(ctx context.Context, email, plaintext, username string) (*Principal, error) {
	verified, err := e.verifications.Consume(ctx, email)
	if err != nil {
		return nil, internalErr(err)
	}
	if !verified {
		return nil, e.registerFailed(ctx, email, ErrEmailNotVerified)
	}

	exists, err := e.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, internalErr(err)
	}
	if exists {
		return nil, e.registerFailed(ctx, email, ErrEmailAlreadyExists)
	}

	exists, err = e.users.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, internalErr(err)
	}
	if exists {
		return nil, e.registerFailed(ctx, email, ErrUsernameAlreadyExists)
	}

	hash, err := e.hasher.Hash(plaintext)
	if err != nil {
		return nil, internalErr(err)
	}

	p, err := e.users.Save(ctx, &Principal{
		Email:        email,
		Username:     username,
		PasswordHash: hash,
	})
	if err != nil {
		return nil, internalErr(err)
	}

	e.metrics.Inc(metrics.MetricRegisterSuccess)
	e.emit(ctx, eventRegister, p.ID, p.Email, nil)
	return p, nil
}

func (e *Engine) registerFailed(ctx context.Context, email string, cause error) error {
	e.metrics.Inc(metrics.MetricRegisterFailure)
	e.emit(ctx, eventRegister, 0, email, cause)
	return cause
}
