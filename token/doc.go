// Package token implements the signed-token codec: issuance and verification
// of HS256 JWTs carrying {sub, iat, exp, jti, tv} claims.
//
// # Token format
//
// Compact JWS with a fixed HS256 algorithm and an integer "tv" format-version
// claim. The parser allow-lists HS256 only and rejects any tv other than the
// current [FormatVersion], so algorithm changes never silently accept old or
// unsigned formats.
//
// # Architecture boundaries
//
// This package owns encoding, decoding, and cryptographic + temporal
// validation. Refresh persistence, revocation, and request interception live
// elsewhere.
//
// # What this package must NOT do
//
//   - Access Redis or perform any I/O.
//   - Import tokengate, store, or middleware.
//   - Read the wall clock: callers inject "now".
package token
