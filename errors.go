package authcore

import "errors"

var (
	// ErrEmailNotRegistered is returned by Login when no principal exists for the email.
	ErrEmailNotRegistered = errors.New("email not registered")
	// ErrInvalidPassword is returned by Login when the password does not match.
	ErrInvalidPassword = errors.New("invalid password")
	// ErrMissingToken is returned when the Authorization header is absent or lacks the Bearer prefix.
	ErrMissingToken = errors.New("missing bearer token")
	// ErrExpiredToken is returned when a presented token is past its expiry.
	ErrExpiredToken = errors.New("token expired")
	// ErrInvalidToken is returned when a token's signature or claims fail verification.
	ErrInvalidToken = errors.New("invalid token")
	// ErrMalformedToken is returned when a token is not structurally a JWT.
	ErrMalformedToken = errors.New("malformed token")
	// ErrUnsupportedToken is returned when a token uses an unsupported format or algorithm.
	ErrUnsupportedToken = errors.New("unsupported token")
	// ErrInvalidTokenType is returned when a token's kind claim does not match the operation.
	ErrInvalidTokenType = errors.New("invalid token type")
	// ErrAlreadyLoggedOut is returned when the access token has already been revoked.
	ErrAlreadyLoggedOut = errors.New("already logged out")
	// ErrEmailNotVerified is returned by Register when no verified marker exists for the email.
	ErrEmailNotVerified = errors.New("email not verified")
	// ErrEmailAlreadyExists is returned when the email already belongs to a principal.
	ErrEmailAlreadyExists = errors.New("email already exists")
	// ErrUsernameAlreadyExists is returned when the display name already belongs to a principal.
	ErrUsernameAlreadyExists = errors.New("username already exists")
	// ErrRefreshTokenNotFound is returned when no session exists for the token's principal.
	ErrRefreshTokenNotFound = errors.New("refresh token not found")
	// ErrInvalidRefreshToken is returned when the presented refresh token has been superseded.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	// ErrUserNotFound is returned when the principal referenced by a token no longer exists.
	ErrUserNotFound = errors.New("user not found")
	// ErrCodeMismatch is returned when the submitted verification code is wrong.
	ErrCodeMismatch = errors.New("verification code mismatch")
	// ErrNoPendingCode is returned when no verification code is pending for the email.
	ErrNoPendingCode = errors.New("no pending verification code")
	// ErrEmailDeliveryFailed is returned when the email channel rejects a verification code.
	ErrEmailDeliveryFailed = errors.New("email delivery failed")
	// ErrExternalIdentityIncomplete is returned when a provider payload lacks required attributes.
	ErrExternalIdentityIncomplete = errors.New("external identity incomplete")
	// ErrRateLimited is returned when an attempt budget is exhausted (throttling enabled only).
	ErrRateLimited = errors.New("too many attempts")
	// ErrEngineNotReady is returned when a required collaborator was not configured.
	ErrEngineNotReady = errors.New("engine not initialized")
	// ErrInternal wraps unexpected store or collaborator failures so that
	// backend details never cross the engine boundary.
	ErrInternal = errors.New("internal authentication error")
)
