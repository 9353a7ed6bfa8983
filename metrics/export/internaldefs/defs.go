package internaldefs

import (
	tokengate "github.com/veilstack/tokengate"
)

// CounterDef defines a public type used by tokengate APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   tokengate.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by tokengate APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   tokengate.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the authentication engine.
var CounterDefs = []CounterDef{
	{ID: tokengate.MetricLoginSuccess, Name: "tokengate_login_success_total", Help: "Successful login attempts."},
	{ID: tokengate.MetricLoginFailure, Name: "tokengate_login_failure_total", Help: "Failed login attempts."},
	{ID: tokengate.MetricAuthSuccess, Name: "tokengate_authenticate_success_total", Help: "Successful token authentications."},
	{ID: tokengate.MetricAuthAnonymous, Name: "tokengate_authenticate_anonymous_total", Help: "Authenticate calls with no bearer token presented."},
	{ID: tokengate.MetricAuthMalformed, Name: "tokengate_authenticate_malformed_total", Help: "Tokens rejected as malformed."},
	{ID: tokengate.MetricAuthBadSignature, Name: "tokengate_authenticate_bad_signature_total", Help: "Tokens rejected for signature mismatch."},
	{ID: tokengate.MetricAuthExpired, Name: "tokengate_authenticate_expired_total", Help: "Tokens rejected as expired."},
	{ID: tokengate.MetricAuthRevoked, Name: "tokengate_authenticate_revoked_total", Help: "Strict-mode tokens rejected for missing live session."},
	{ID: tokengate.MetricRefreshSuccess, Name: "tokengate_refresh_success_total", Help: "Successful refresh rotations."},
	{ID: tokengate.MetricRefreshFailure, Name: "tokengate_refresh_failure_total", Help: "Failed refresh attempts."},
	{ID: tokengate.MetricRefreshReuseDetected, Name: "tokengate_refresh_reuse_detected_total", Help: "Detected refresh token reuses."},
	{ID: tokengate.MetricStoreUnavailable, Name: "tokengate_store_unavailable_total", Help: "Operations failed by refresh store outage."},
	{ID: tokengate.MetricLogout, Name: "tokengate_logout_total", Help: "Logout operations."},
}

// HistogramDefs is an exported constant or variable used by the authentication engine.
var HistogramDefs = []HistogramDef{
	{ID: tokengate.MetricAuthenticateLatency, Name: "tokengate_authenticate_latency_seconds", Help: "Authenticate latency histogram."},
}

// HistogramBounds is an exported constant or variable used by the authentication engine.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix is an exported constant or variable used by the authentication engine.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets copies a raw bucket slice into the fixed 8-slot layout,
// truncating or zero-padding as needed.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into the cumulative form
// expected by histogram exposition formats.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
