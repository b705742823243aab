package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/stepauth/stepauth"
)

type accessContextKey struct{}

// AccessFromContext returns the verified access view a guard injected.
func AccessFromContext(ctx context.Context) (*stepauth.Access, bool) {
	a, ok := ctx.Value(accessContextKey{}).(*stepauth.Access)
	return a, ok
}

// RequireAccess admits only full-access tokens of at least the given trust
// level. MFA-pending tokens and lower levels get 403.
func RequireAccess(engine *stepauth.Engine, minLevel stepauth.TrustLevel) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			access, ok := verify(engine, w, r)
			if !ok {
				return
			}
			if access.Kind != stepauth.KindFullAccess || !access.Level.AtLeast(minLevel) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			ctx := context.WithValue(r.Context(), accessContextKey{}, access)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AllowPending admits any verified token, including MFA-pending ones. Meant
// for the MFA completion endpoint itself.
func AllowPending(engine *stepauth.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			access, ok := verify(engine, w, r)
			if !ok {
				return
			}
			ctx := context.WithValue(r.Context(), accessContextKey{}, access)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func verify(engine *stepauth.Engine, w http.ResponseWriter, r *http.Request) (*stepauth.Access, bool) {
	if engine == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return nil, false
	}
	token, ok := bearerToken(r.Header.Get("Authorization"))
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return nil, false
	}
	access, err := engine.VerifyAccess(token)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return nil, false
	}
	return access, true
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}
	token := value[len(bearer):]
	if token == "" {
		return "", false
	}
	return token, true
}
