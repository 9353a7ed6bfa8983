// Package middleware exposes net/http interceptors that translate bearer
// tokens into engine authentication results, with configurable handling of
// invalid tokens.
//
// # Interceptors
//
//   - [Intercept] — explicit validation mode and failure policy per route.
//   - [Require] — mandatory authentication, 401 on any failure.
//   - [RequireStrict] — mandatory authentication plus live-session check.
//   - [AllowAnonymous] — optional authentication, never rejects a token failure.
//
// Each interceptor reads the Authorization header, calls
// Engine.Authenticate, and injects the result into the request context for
// retrieval with [FromContext].
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does NOT
// implement authentication logic itself — all decisions are delegated to
// Engine.Authenticate.
//
// # What this package must NOT do
//
//   - Parse or create tokens directly (delegates to Engine).
//   - Access Redis (Engine handles I/O).
//   - Make authorization decisions beyond pass/reject from Engine.Authenticate.
package middleware
