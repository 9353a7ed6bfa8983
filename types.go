package tokengate

import (
	"context"
	"time"
)

// Identity is the concrete identity record supplied by the external
// user-management collaborator. Contact attributes are carried only for
// uniqueness checks elsewhere; within a request's lifetime an Identity is
// immutable once authenticated.
type Identity struct {
	Subject      string
	PasswordHash string
	Email        string
	Phone        string
}

// IdentityProvider is the interface callers implement to integrate tokengate
// with their user database. It covers credential lookup only; user CRUD and
// profile management stay on the caller's side.
type IdentityProvider interface {
	FindBySubject(ctx context.Context, subject string) (*Identity, error)
}

// PasswordHashUpdater is optionally implemented by an [IdentityProvider] to
// receive upgraded hashes when Password.UpgradeOnLogin is enabled.
type PasswordHashUpdater interface {
	UpdatePasswordHash(ctx context.Context, subject, newHash string) error
}

// TokenPair is returned by [Engine.Login] and [Engine.Refresh].
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// AuthResult is the verified identity attached to a request by the
// interceptor: the token's subject claim plus its temporal claims. It is
// created once per request, never partially populated, and discarded when
// the request completes.
type AuthResult struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
