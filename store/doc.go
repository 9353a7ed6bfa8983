// Package store implements Redis-backed refresh-token persistence keyed by
// subject, with entry expiry delegated to Redis TTL.
//
// # Design
//
// One key per subject (prefix:rt:subject). Put is a plain SET with PX expiry
// (last-writer-wins), Rotate is a Lua compare-and-swap so token rotation and
// reuse detection stay atomic under concurrent refresh attempts. Every
// operation is bounded by a per-op timeout distinct from in-memory token
// verification.
//
// # What this package must NOT do
//
//   - Inspect or validate token contents (that is the token codec's job).
//   - Sweep expired entries cooperatively; Redis TTL owns expiry.
//   - Import tokengate or any sibling package.
package store
