package tokengate

import "errors"

var (
	// ErrInvalidCredentials is returned by Login when the subject is unknown
	// or the password does not match. Callers cannot distinguish the two.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrIdentityNotFound is returned by identity providers when no record
	// exists for a subject.
	ErrIdentityNotFound = errors.New("identity not found")
	// ErrTokenRevoked is returned by Authenticate in ModeStrict when the
	// subject has no live refresh session.
	ErrTokenRevoked = errors.New("token revoked")
	// ErrRefreshInvalid is returned by Refresh when the presented token has
	// no matching store entry.
	ErrRefreshInvalid = errors.New("invalid refresh token")
	// ErrRefreshReuse is returned by Refresh when the presented token was
	// valid once but has already been rotated away.
	ErrRefreshReuse = errors.New("refresh token reuse detected")
	// ErrStoreUnavailable is an infrastructure fault: the refresh store
	// could not be reached. Never conflated with token-validity errors.
	ErrStoreUnavailable = errors.New("token store unavailable")
	// ErrEngineNotReady is returned when an Engine method is called on a nil
	// or unbuilt engine.
	ErrEngineNotReady = errors.New("engine not initialized")
	// ErrInvalidMode is returned by Authenticate for an unknown per-route
	// validation mode override.
	ErrInvalidMode = errors.New("invalid validation mode")
)
