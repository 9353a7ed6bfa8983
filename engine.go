package tokengate

import (
	"context"
	"errors"
	"fmt"
	"time"

	internalaudit "github.com/veilstack/tokengate/internal/audit"
	"github.com/veilstack/tokengate/password"
	"github.com/veilstack/tokengate/store"
	"github.com/veilstack/tokengate/token"
)

// refreshStore is the slice of [store.RefreshStore] the engine calls.
// Holding it as an interface lets tests interpose failures the real store
// cannot produce on demand, such as a delete failing right after a rotate.
type refreshStore interface {
	Put(ctx context.Context, subject, token string, ttl time.Duration) error
	Get(ctx context.Context, subject string) (string, error)
	Delete(ctx context.Context, subject string) error
	Rotate(ctx context.Context, subject, current, next string, ttl time.Duration) error
}

// Engine defines a public type used by tokengate APIs.
//
// Engine instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Engine struct {
	config    Config
	codec     *token.Codec
	store     refreshStore
	hasher    *password.Hasher
	audit     *internalaudit.Dispatcher
	metrics   *Metrics
	provider  IdentityProvider
	decoyHash string
}

// Close describes the close operation and its observable behavior.
//
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped reports how many audit events the dispatcher discarded under
// backpressure.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

// InterceptorDefaults returns the configured validation mode and failure
// policy, resolved by the middleware when a route passes ModeInherit or
// PolicyInherit.
func (e *Engine) InterceptorDefaults() (ValidationMode, FailurePolicy) {
	if e == nil {
		return ModeTokenOnly, PolicyReject
	}
	return e.config.Interceptor.Mode, e.config.Interceptor.OnInvalid
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) emitAudit(ctx context.Context, eventType, subject string, success bool, failure error) {
	if e == nil || e.audit == nil {
		return
	}

	event := AuditEvent{
		EventType: eventType,
		Subject:   subject,
		Success:   success,
	}
	if failure != nil {
		event.Error = failure.Error()
	}

	e.audit.Emit(ctx, event)
}

// Login confirms the subject's password against the stored credential hash,
// issues an access + refresh token pair, and persists the refresh token
// under the subject with the refresh TTL. An unknown subject and a wrong
// password are indistinguishable to the caller: both return
// [ErrInvalidCredentials].
func (e *Engine) Login(ctx context.Context, subject, pass string) (*TokenPair, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}

	identity, err := e.provider.FindBySubject(ctx, subject)
	if err != nil || identity == nil {
		if err != nil && !errors.Is(err, ErrIdentityNotFound) {
			e.metricInc(MetricLoginFailure)
			e.emitAudit(ctx, auditLogin, subject, false, err)
			return nil, fmt.Errorf("identity lookup: %w", err)
		}
		// Burn a hash verification anyway so unknown subjects cost the
		// same as wrong passwords.
		_, _ = e.hasher.Verify(pass, e.decoyHash)
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditLogin, subject, false, ErrInvalidCredentials)
		return nil, ErrInvalidCredentials
	}

	ok, err := e.hasher.Verify(pass, identity.PasswordHash)
	if err != nil || !ok {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditLogin, subject, false, ErrInvalidCredentials)
		return nil, ErrInvalidCredentials
	}

	e.maybeUpgradeHash(ctx, identity, pass)

	now := time.Now()

	access, err := e.codec.Issue(identity.Subject, now, e.config.Token.AccessTTL)
	if err != nil {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditLogin, subject, false, err)
		return nil, err
	}

	refresh, err := e.codec.Issue(identity.Subject, now, e.config.Token.RefreshTTL)
	if err != nil {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditLogin, subject, false, err)
		return nil, err
	}

	// Last writer wins: a concurrent login by the same subject overwrites
	// this entry and invalidates the pair we are about to return.
	if err := e.store.Put(ctx, identity.Subject, refresh, e.config.Token.RefreshTTL); err != nil {
		mapped := mapStoreError(err)
		e.metricInc(MetricLoginFailure)
		if errors.Is(mapped, ErrStoreUnavailable) {
			e.metricInc(MetricStoreUnavailable)
		}
		e.emitAudit(ctx, auditLogin, subject, false, mapped)
		return nil, mapped
	}

	e.metricInc(MetricLoginSuccess)
	e.emitAudit(ctx, auditLogin, subject, true, nil)

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Authenticate verifies a raw bearer token and returns the embedded
// identity. Identity is derived solely from the token's subject claim; in
// [ModeStrict] the subject must also hold a live refresh entry, which costs
// one store read bounded by Store.OpTimeout.
//
// Failures keep their class: [token.ErrNoToken], [token.ErrMalformed],
// [token.ErrBadSignature], [token.ErrExpired], [ErrTokenRevoked], and
// [ErrStoreUnavailable] are all distinguishable with errors.Is.
func (e *Engine) Authenticate(ctx context.Context, raw string, mode ValidationMode) (*AuthResult, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}

	resolved, err := e.resolveMode(mode)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	defer func() {
		if e.metrics != nil {
			e.metrics.Observe(MetricAuthenticateLatency, time.Since(start))
		}
	}()

	claims, err := e.codec.Verify(raw, start)
	if err != nil {
		e.countVerifyFailure(err)
		if !errors.Is(err, token.ErrNoToken) {
			e.emitAudit(ctx, auditAuthenticate, "", false, err)
		}
		return nil, err
	}

	if resolved == ModeStrict {
		if _, err := e.store.Get(ctx, claims.Subject); err != nil {
			mapped := mapStrictError(err)
			if errors.Is(mapped, ErrStoreUnavailable) {
				e.metricInc(MetricStoreUnavailable)
			} else {
				e.metricInc(MetricAuthRevoked)
			}
			e.emitAudit(ctx, auditAuthenticate, claims.Subject, false, mapped)
			return nil, mapped
		}
	}

	e.metricInc(MetricAuthSuccess)

	return &AuthResult{
		Subject:   claims.Subject,
		IssuedAt:  claims.IssuedAt,
		ExpiresAt: claims.ExpiresAt,
	}, nil
}

// Refresh exchanges a live refresh token for a new access + refresh pair,
// rotating the store entry atomically. A cryptographically valid token that
// is no longer the live entry means the token was already spent:
// [ErrRefreshReuse], and the subject's session is torn down.
func (e *Engine) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}

	now := time.Now()

	claims, err := e.codec.Verify(refreshToken, now)
	if err != nil {
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditRefresh, "", false, err)
		return nil, ErrRefreshInvalid
	}

	access, err := e.codec.Issue(claims.Subject, now, e.config.Token.AccessTTL)
	if err != nil {
		e.metricInc(MetricRefreshFailure)
		return nil, err
	}

	next, err := e.codec.Issue(claims.Subject, now, e.config.Token.RefreshTTL)
	if err != nil {
		e.metricInc(MetricRefreshFailure)
		return nil, err
	}

	err = e.store.Rotate(ctx, claims.Subject, refreshToken, next, e.config.Token.RefreshTTL)
	switch {
	case err == nil:
	case errors.Is(err, store.ErrTokenMismatch):
		// Reuse of a rotated-away token: kill the live session too, since
		// either the presented or the live token has leaked.
		reason := error(ErrRefreshReuse)
		if delErr := e.store.Delete(ctx, claims.Subject); delErr != nil {
			// A failed teardown means the live session survives until its
			// TTL; operators need to see that in the audit trail.
			e.metricInc(MetricStoreUnavailable)
			reason = fmt.Errorf("%w: session teardown failed: %v", ErrRefreshReuse, delErr)
		}
		e.metricInc(MetricRefreshReuseDetected)
		e.emitAudit(ctx, auditRefresh, claims.Subject, false, reason)
		return nil, ErrRefreshReuse
	case errors.Is(err, store.ErrNotFound):
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditRefresh, claims.Subject, false, ErrRefreshInvalid)
		return nil, ErrRefreshInvalid
	default:
		mapped := mapStoreError(err)
		e.metricInc(MetricRefreshFailure)
		e.metricInc(MetricStoreUnavailable)
		e.emitAudit(ctx, auditRefresh, claims.Subject, false, mapped)
		return nil, mapped
	}

	e.metricInc(MetricRefreshSuccess)
	e.emitAudit(ctx, auditRefresh, claims.Subject, true, nil)

	return &TokenPair{AccessToken: access, RefreshToken: next}, nil
}

// Logout deletes the subject's refresh token, revoking the refresh session.
// Logging out a subject with no live session is not an error.
func (e *Engine) Logout(ctx context.Context, subject string) error {
	if e == nil {
		return ErrEngineNotReady
	}

	if err := e.store.Delete(ctx, subject); err != nil {
		mapped := mapStoreError(err)
		e.metricInc(MetricStoreUnavailable)
		e.emitAudit(ctx, auditLogout, subject, false, mapped)
		return mapped
	}

	e.metricInc(MetricLogout)
	e.emitAudit(ctx, auditLogout, subject, true, nil)

	return nil
}

// HashPassword produces a stored credential hash for account-creation time.
// The user-management collaborator owns persistence of the result.
func (e *Engine) HashPassword(pass string) (string, error) {
	if e == nil {
		return "", ErrEngineNotReady
	}
	return e.hasher.Hash(pass)
}

func (e *Engine) maybeUpgradeHash(ctx context.Context, identity *Identity, pass string) {
	if !e.config.Password.UpgradeOnLogin {
		return
	}

	updater, ok := e.provider.(PasswordHashUpdater)
	if !ok {
		return
	}

	needs, err := e.hasher.NeedsRehash(identity.PasswordHash)
	if err != nil || !needs {
		return
	}

	newHash, err := e.hasher.Hash(pass)
	if err != nil {
		return
	}

	// Best effort: a failed write-back leaves the old hash valid.
	_ = updater.UpdatePasswordHash(ctx, identity.Subject, newHash)
}

func (e *Engine) resolveMode(mode ValidationMode) (ValidationMode, error) {
	if mode == ModeInherit {
		return e.config.Interceptor.Mode, nil
	}
	switch mode {
	case ModeTokenOnly, ModeStrict:
		return mode, nil
	default:
		return 0, ErrInvalidMode
	}
}

func (e *Engine) countVerifyFailure(err error) {
	switch {
	case errors.Is(err, token.ErrNoToken):
		e.metricInc(MetricAuthAnonymous)
	case errors.Is(err, token.ErrExpired):
		e.metricInc(MetricAuthExpired)
	case errors.Is(err, token.ErrBadSignature):
		e.metricInc(MetricAuthBadSignature)
	default:
		e.metricInc(MetricAuthMalformed)
	}
}

func mapStoreError(err error) error {
	if errors.Is(err, store.ErrUnavailable) {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return err
}

func mapStrictError(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrTokenRevoked
	}
	return mapStoreError(err)
}
