package authcore

import (
	"context"
	"errors"
	"fmt"

	"github.com/suntcamp/authcore/internal/metrics"
	"github.com/suntcamp/authcore/internal/stores"
)

const (
	eventVerificationSend  = "verification_send"
	eventVerificationCheck = "verification_check"
)

// SendVerificationCode issues a six-digit code for an email that is not yet
// registered and delivers it through the configured sender. Re-sending
// overwrites the pending code and restarts its TTL.
func (e *Engine) SendVerificationCode(ctx context.Context, email string) error {
	if e.mailer == nil {
		return ErrEngineNotReady
	}

	exists, err := e.users.ExistsByEmail(ctx, email)
	if err != nil {
		return internalErr(err)
	}
	if exists {
		e.emit(ctx, eventVerificationSend, 0, email, ErrEmailAlreadyExists)
		return ErrEmailAlreadyExists
	}

	code, err := e.verifications.IssueCode(ctx, email)
	if err != nil {
		return internalErr(err)
	}

	if err := e.mailer.Send(ctx, email, code); err != nil {
		e.emit(ctx, eventVerificationSend, 0, email, ErrEmailDeliveryFailed)
		return fmt.Errorf("%w: %v", ErrEmailDeliveryFailed, err)
	}

	e.metrics.Inc(metrics.MetricVerificationSent)
	e.emit(ctx, eventVerificationSend, 0, email, nil)
	return nil
}

// VerifyEmailCode checks a submitted code against the pending one and, on
// match, promotes the email to verified for the registration window. The
// comparison itself is constant-time; wrong guesses count against the code
// attempt budget when throttling is enabled.
func (e *Engine) VerifyEmailCode(ctx context.Context, email, code string) error {
	if e.limiter != nil {
		if err := e.limiter.CheckCode(ctx, email); err != nil {
			return mapLimitErr(err)
		}
	}

	err := e.verifications.CheckCode(ctx, email, code)
	switch {
	case err == nil:
	case errors.Is(err, stores.ErrNoPendingCode):
		return e.verifyFailed(ctx, email, ErrNoPendingCode)
	case errors.Is(err, stores.ErrCodeMismatch):
		if e.limiter != nil {
			if lerr := e.limiter.RecordCodeFailure(ctx, email); lerr != nil {
				return mapLimitErr(lerr)
			}
		}
		return e.verifyFailed(ctx, email, ErrCodeMismatch)
	default:
		return internalErr(err)
	}

	if err := e.verifications.PromoteToVerified(ctx, email); err != nil {
		return internalErr(err)
	}

	e.metrics.Inc(metrics.MetricVerificationSuccess)
	e.emit(ctx, eventVerificationCheck, 0, email, nil)
	return nil
}

func (e *Engine) verifyFailed(ctx context.Context, email string, cause error) error {
	e.metrics.Inc(metrics.MetricVerificationFailure)
	e.emit(ctx, eventVerificationCheck, 0, email, cause)
	return cause
}
