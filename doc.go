// Package tokengate provides short-lived JWT access tokens, Redis-backed
// revocable refresh tokens, and an HTTP request interceptor that turns a
// bearer token into a per-request authenticated identity.
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// tokengate is the public surface. It exposes [Engine], [Builder], [Config],
// and value types (TokenPair, AuthResult, MetricsSnapshot). Token
// encode/decode lives in token/, refresh persistence in store/, credential
// hashing in password/, and the HTTP gate in middleware/. Audit dispatch
// lives under internal/; exporters under metrics/export/.
//
// # What this package must NOT do
//
//   - Expose Redis clients or token wire format details in its public API.
//   - Perform I/O outside of Engine methods (construction via Builder is
//     allocation-only until Build).
//   - Import any sub-package that re-imports tokengate (no import cycles).
//
// # Performance contract
//
// Authenticate is the hot path. In ModeTokenOnly it completes without Redis
// round-trips; ModeStrict is allowed exactly one Redis round-trip bounded by
// Config.Store.OpTimeout. Login and Refresh are allowed one round-trip each.
package tokengate
