package authcore

import (
	"context"
	"strings"
)

// Principal is the authenticated account record. Exactly one of PasswordHash
// and ExternalID may be empty: locally registered accounts carry a hash,
// provider-linked accounts carry the provider's identifier, and an account
// may carry both after linking. ID is assigned by the [UserStore] on first save.
type Principal struct {
	ID           int64
	Email        string
	Username     string
	PasswordHash string
	ExternalID   string
}

// TokenPair holds one signed access token and one signed refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// LoginResult is returned by [Engine.Login] and [Engine.LoginExternal].
type LoginResult struct {
	PrincipalID int64
	Email       string
	TokenPair
}

// UserStore is the user-record collaborator. Find methods return (nil, nil)
// when no record matches; a non-nil error always means a lookup failure, not
// absence. Save persists the principal and returns it with ID assigned.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*Principal, error)
	FindByUsername(ctx context.Context, username string) (*Principal, error)
	FindByID(ctx context.Context, id int64) (*Principal, error)
	FindByExternalID(ctx context.Context, externalID string) (*Principal, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	Save(ctx context.Context, p *Principal) (*Principal, error)
}

// PasswordHasher hashes and verifies login passwords. The default
// implementation is [github.com/suntcamp/authcore/password.Argon2].
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Matches(plaintext, encodedHash string) (bool, error)
}

// EmailSender delivers a one-time verification code to an address.
// Delivery is fire-and-forget from the engine's perspective; a returned
// error surfaces as [ErrEmailDeliveryFailed], distinct from store failures.
type EmailSender interface {
	Send(ctx context.Context, address, code string) error
}

// ExternalIdentity is the validated payload of a third-party identity
// provider login, constructed once at the boundary. ProviderID is the
// provider's stable account identifier.
type ExternalIdentity struct {
	ProviderID string
	Email      string
	Username   string
}

// Complete reports whether every attribute required to create or match a
// principal is present.
func (id ExternalIdentity) Complete() bool {
	return strings.TrimSpace(id.ProviderID) != "" &&
		strings.TrimSpace(id.Email) != "" &&
		strings.TrimSpace(id.Username) != ""
}
