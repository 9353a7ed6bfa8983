package middleware

import (
	"net/http"

	tokengate "github.com/veilstack/tokengate"
)

// Require returns middleware that rejects requests whose bearer token is
// missing or fails validation with 401, using the engine's configured
// validation mode.
func Require(engine *tokengate.Engine) func(http.Handler) http.Handler {
	return mandatory(Intercept(engine, tokengate.ModeInherit, tokengate.PolicyReject))
}

// RequireStrict is [Require] with the validation mode forced to
// [tokengate.ModeStrict]: the token's subject must also hold a live refresh
// session in the store.
func RequireStrict(engine *tokengate.Engine) func(http.Handler) http.Handler {
	return mandatory(Intercept(engine, tokengate.ModeStrict, tokengate.PolicyReject))
}

// mandatory upgrades an interceptor chain so a missing bearer token is a
// 401 instead of an anonymous pass-through.
func mandatory(base func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		guarded := base(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := bearerToken(r.Header.Get("Authorization")); !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			guarded.ServeHTTP(w, r)
		})
	}
}
