package tokengate

import (
	"errors"
	"time"
)

// Config defines a public type used by tokengate APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Token       TokenConfig
	Store       StoreConfig
	Password    PasswordConfig
	Interceptor InterceptorConfig
	Audit       AuditConfig
	Metrics     MetricsConfig
}

/*
====================================
TOKEN CONFIG
====================================
*/

// TokenConfig carries the process-wide signing configuration. SigningKey,
// AccessTTL, and RefreshTTL are required at build time; their absence is a
// startup-fatal misconfiguration, never a runtime default.
type TokenConfig struct {
	SigningKey []byte
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Leeway     time.Duration
}

/*
====================================
STORE CONFIG
====================================
*/

// StoreConfig defines a public type used by tokengate APIs.
//
// StoreConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type StoreConfig struct {
	KeyPrefix string
	// OpTimeout bounds every Redis round-trip, separately from the codec's
	// in-memory verification which takes no timeout at all.
	OpTimeout time.Duration
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig defines a public type used by tokengate APIs.
//
// PasswordConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type PasswordConfig struct {
	Memory         uint32 // in KB
	Time           uint32
	Parallelism    uint8
	SaltLength     uint32
	KeyLength      uint32
	UpgradeOnLogin bool
}

/*
====================================
INTERCEPTOR CONFIG
====================================
*/

// ValidationMode selects how Authenticate treats the refresh store.
// ModeTokenOnly trusts the token's cryptographic and temporal validity
// alone (no Redis round-trip); ModeStrict additionally requires a live
// refresh entry for the subject, trading one bounded store read per
// request for prompt revocation.
type ValidationMode int

// The zero value is deliberately not a valid mode: an uninitialized field
// must fail Validate instead of silently picking a behavior.
const (
	// ModeInherit defers to Config.Interceptor.Mode.
	ModeInherit ValidationMode = -1

	// ModeTokenOnly is an exported constant or variable used by the authentication engine.
	ModeTokenOnly ValidationMode = 1
	// ModeStrict is an exported constant or variable used by the authentication engine.
	ModeStrict ValidationMode = 2
)

// FailurePolicy decides what the interceptor does with an invalid
// (malformed, badly signed, or expired) token. An absent token is neither:
// it always proceeds anonymously.
type FailurePolicy int

// As with ValidationMode, the zero value is reserved and rejected by
// Validate.
const (
	// PolicyInherit defers to Config.Interceptor.OnInvalid.
	PolicyInherit FailurePolicy = -1

	// PolicyAnonymous proceeds unauthenticated, logging the failure.
	PolicyAnonymous FailurePolicy = 1
	// PolicyReject fails the request with an authentication error.
	PolicyReject FailurePolicy = 2
)

// InterceptorConfig defines a public type used by tokengate APIs.
//
// InterceptorConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type InterceptorConfig struct {
	Mode      ValidationMode
	OnInvalid FailurePolicy
}

/*
====================================
AUDIT / METRICS CONFIG
====================================
*/

// AuditConfig defines a public type used by tokengate APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig defines a public type used by tokengate APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns the baseline configuration. The signing key has no
// default: Build fails until the caller supplies one.
func DefaultConfig() Config {
	return Config{
		Token: TokenConfig{
			AccessTTL:  5 * time.Minute,
			RefreshTTL: 7 * 24 * time.Hour,
		},
		Store: StoreConfig{
			KeyPrefix: "tg",
			OpTimeout: 2 * time.Second,
		},
		Password: PasswordConfig{
			Memory:         65536,
			Time:           3,
			Parallelism:    2,
			SaltLength:     16,
			KeyLength:      32,
			UpgradeOnLogin: true,
		},
		Interceptor: InterceptorConfig{
			Mode:      ModeTokenOnly,
			OnInvalid: PolicyAnonymous,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Token.SigningKey = cloneBytes(cfg.Token.SigningKey)
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Config) Validate() error {
	// Token
	if len(c.Token.SigningKey) < 32 {
		return errors.New("Token SigningKey must be at least 32 bytes")
	}
	if c.Token.AccessTTL <= 0 {
		return errors.New("Token AccessTTL must be > 0")
	}
	if c.Token.RefreshTTL <= 0 {
		return errors.New("Token RefreshTTL must be > 0")
	}
	if c.Token.RefreshTTL < c.Token.AccessTTL {
		return errors.New("Token RefreshTTL must be >= AccessTTL")
	}
	if c.Token.Leeway < 0 || c.Token.Leeway > 2*time.Minute {
		return errors.New("Token Leeway must be between 0 and 2m")
	}

	// Store
	if c.Store.KeyPrefix == "" {
		return errors.New("Store KeyPrefix must not be empty")
	}
	if c.Store.OpTimeout <= 0 {
		return errors.New("Store OpTimeout must be > 0")
	}

	// Password
	if c.Password.Memory < 8*1024 {
		return errors.New("Password Memory must be >= 8192 KB")
	}
	if c.Password.Time < 1 {
		return errors.New("Password Time must be >= 1")
	}
	if c.Password.Parallelism < 1 {
		return errors.New("Password Parallelism must be >= 1")
	}
	if c.Password.SaltLength < 16 {
		return errors.New("Password SaltLength must be >= 16")
	}
	if c.Password.KeyLength < 16 {
		return errors.New("Password KeyLength must be >= 16")
	}

	// Interceptor
	switch c.Interceptor.Mode {
	case ModeTokenOnly, ModeStrict:
	default:
		return errors.New("Interceptor Mode must be ModeTokenOnly or ModeStrict")
	}
	switch c.Interceptor.OnInvalid {
	case PolicyAnonymous, PolicyReject:
	default:
		return errors.New("Interceptor OnInvalid must be PolicyAnonymous or PolicyReject")
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when audit is enabled")
	}

	return nil
}
