package middleware

import (
	"net/http"

	tokengate "github.com/veilstack/tokengate"
)

// AllowAnonymous returns middleware that attaches an authentication result
// when a valid bearer token is presented but never rejects the request:
// missing or invalid tokens pass through unauthenticated. Handlers decide
// per-request via [FromContext]. Store outages still fail with 503 so a
// degraded backend cannot silently widen access.
func AllowAnonymous(engine *tokengate.Engine) func(http.Handler) http.Handler {
	return Intercept(engine, tokengate.ModeInherit, tokengate.PolicyAnonymous)
}
