package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// FormatVersion is the current token format. Verify rejects every other
// value, so an algorithm or claim-layout change invalidates all previously
// issued tokens instead of silently accepting them.
const FormatVersion = 1

const minSigningKeyBytes = 32

var (
	// ErrNoToken marks the absence of a token. It is a state, not a fault:
	// the interceptor treats it as an anonymous request, never a rejection.
	ErrNoToken = errors.New("no token presented")
	// ErrMalformed is an exported constant or variable used by the token codec.
	ErrMalformed = errors.New("malformed token")
	// ErrBadSignature is an exported constant or variable used by the token codec.
	ErrBadSignature = errors.New("bad token signature")
	// ErrExpired is an exported constant or variable used by the token codec.
	ErrExpired = errors.New("expired token")
)

// Config defines a public type used by tokengate APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	SigningKey []byte
	Issuer     string
	Leeway     time.Duration
}

// Codec issues and verifies HS256-signed tokens. The signing key is fixed at
// construction; there is no runtime key mutation.
type Codec struct {
	config Config
}

// Claims is the decoded payload of a verified token.
type Claims struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type wireClaims struct {
	Version int `json:"tv"`
	jwt.RegisteredClaims
}

// NewCodec describes the newcodec operation and its observable behavior.
//
// NewCodec may return an error when input validation, dependency calls, or security checks fail.
// NewCodec does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewCodec(cfg Config) (*Codec, error) {
	if len(cfg.SigningKey) < minSigningKeyBytes {
		return nil, errors.New("signing key must be at least 32 bytes")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}

	return &Codec{config: cfg}, nil
}

// Issue produces a signed token embedding subject and absolute expiry
// (now + ttl). The jti nonce makes two issues at the same instant distinct;
// tokens are never compared as strings, only via Verify.
func (c *Codec) Issue(subject string, now time.Time, ttl time.Duration) (string, error) {
	if subject == "" {
		return "", errors.New("empty subject")
	}
	if ttl < 0 {
		return "", errors.New("negative ttl")
	}

	claims := wireClaims{
		Version: FormatVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}
	if c.config.Issuer != "" {
		claims.Issuer = c.config.Issuer
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.config.SigningKey)
}

// Verify checks structural validity, the HS256 signature, and expiry against
// the supplied clock. Failures are typed: [ErrNoToken], [ErrMalformed],
// [ErrBadSignature], [ErrExpired] — callers must be able to tell them apart.
func (c *Codec) Verify(raw string, now time.Time) (*Claims, error) {
	if raw == "" {
		return nil, ErrNoToken
	}

	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	}
	if c.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(c.config.Leeway))
	}
	if c.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(c.config.Issuer))
	}

	parser := jwt.NewParser(options...)
	parsed, err := parser.ParseWithClaims(raw, &wireClaims{}, func(t *jwt.Token) (interface{}, error) {
		return c.config.SigningKey, nil
	})
	if err != nil {
		return nil, mapParseError(err)
	}

	claims, ok := parsed.Claims.(*wireClaims)
	if !ok || !parsed.Valid {
		return nil, ErrMalformed
	}
	if claims.Version != FormatVersion {
		return nil, ErrMalformed
	}
	if claims.Subject == "" {
		return nil, ErrMalformed
	}
	// WithIssuedAt validates iat only when the claim is present, and the
	// expiry pointer is checked here too so a co-signer omitting either
	// claim surfaces as a typed failure, not a crash.
	if claims.IssuedAt == nil || claims.ExpiresAt == nil {
		return nil, ErrMalformed
	}

	return &Claims{
		Subject:   claims.Subject,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrBadSignature
	default:
		return ErrMalformed
	}
}
