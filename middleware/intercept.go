package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	tokengate "github.com/veilstack/tokengate"
	"github.com/veilstack/tokengate/token"
)

type authResultContextKey struct{}

// FromContext returns the authentication result attached to ctx by
// [Intercept], if any. A false second return means the request was not
// authenticated (anonymous pass-through or no interceptor in the chain).
func FromContext(ctx context.Context) (*tokengate.AuthResult, bool) {
	res, ok := ctx.Value(authResultContextKey{}).(*tokengate.AuthResult)
	return res, ok
}

// Intercept returns middleware that extracts a bearer token from the
// Authorization header, validates it through engine.Authenticate, and
// attaches the resulting [tokengate.AuthResult] to the request context.
//
// mode and policy may be [tokengate.ModeInherit] / [tokengate.PolicyInherit]
// to defer to the engine's configured defaults. A request without a bearer
// token always proceeds anonymously regardless of policy; only a token that
// is present and fails validation is subject to policy.
func Intercept(engine *tokengate.Engine, mode tokengate.ValidationMode, policy tokengate.FailurePolicy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			raw, _ := bearerToken(r.Header.Get("Authorization"))

			res, err := engine.Authenticate(r.Context(), raw, mode)
			if err == nil {
				ctx := context.WithValue(r.Context(), authResultContextKey{}, res)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			if errors.Is(err, token.ErrNoToken) {
				next.ServeHTTP(w, r)
				return
			}

			if errors.Is(err, tokengate.ErrStoreUnavailable) {
				http.Error(w, "authentication backend unavailable", http.StatusServiceUnavailable)
				return
			}

			switch resolvePolicy(engine, policy) {
			case tokengate.PolicyAnonymous:
				log.Printf("tokengate: anonymous pass-through after token failure: %v", err)
				next.ServeHTTP(w, r)
			default:
				http.Error(w, "unauthorized", http.StatusUnauthorized)
			}
		})
	}
}

func resolvePolicy(engine *tokengate.Engine, policy tokengate.FailurePolicy) tokengate.FailurePolicy {
	if policy != tokengate.PolicyInherit {
		return policy
	}

	_, def := engine.InterceptorDefaults()
	return def
}

// bearerToken splits an Authorization header value into its token part.
// The scheme keyword is matched case-insensitively and must be separated
// from the token by exactly one space.
func bearerToken(value string) (string, bool) {
	scheme, token, found := strings.Cut(value, " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}

	if token == "" || strings.HasPrefix(token, " ") {
		return "", false
	}

	return token, true
}
