package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/suntcamp/authcore"
	"github.com/suntcamp/authcore/token"
)

type claimsContextKey struct{}

// ClaimsFromContext returns the access-token claims a Guard stored for the
// request, if any.
func ClaimsFromContext(ctx context.Context) (*token.Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey{}).(*token.Claims)
	return claims, ok
}

// Guard rejects requests without a valid, unrevoked access token and stores
// the verified claims in the request context for downstream handlers.
func Guard(engine *authcore.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			raw, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			claims, err := engine.Authenticate(r.Context(), raw)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), claimsContextKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	raw := value[len(bearer):]
	if raw == "" {
		return "", false
	}

	return raw, true
}
