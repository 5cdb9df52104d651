package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"platform-registry/internal/domain"
)

// IdentityResolver maps bearer credentials to an authenticated principal.
type IdentityResolver interface {
	ResolveBearer(ctx context.Context, token string) (*domain.AuthPrincipal, error)
	ResolveUsername(ctx context.Context, username string) (*domain.AuthPrincipal, error)
}

// Auth authenticates requests via the locally issued Bearer token, falling
// back to an OIDC validator when one is configured. The resolved principal
// lands in the request context; everything else gets a 401.
func Auth(resolver IdentityResolver, oidcValidator JWTValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				writeUnauthorized(w)
				return
			}
			token := strings.TrimPrefix(auth, "Bearer ")

			principal, err := resolver.ResolveBearer(r.Context(), token)
			if err != nil && oidcValidator != nil {
				// Tokens minted by an external IdP carry the username in the
				// subject claim.
				if claims, oerr := oidcValidator.Validate(r.Context(), token); oerr == nil && claims.Subject != "" {
					principal, err = resolver.ResolveUsername(r.Context(), claims.Subject)
				}
			}
			if err != nil || principal == nil {
				writeUnauthorized(w)
				return
			}

			cp := domain.ContextPrincipal{
				ID:       principal.ID,
				Username: principal.Username,
				Kind:     principal.Kind(),
			}
			if principal.PlatformID != nil {
				cp.PlatformID = *principal.PlatformID
			}
			ctx := domain.WithPrincipal(r.Context(), cp)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"code":    http.StatusUnauthorized,
		"message": "unauthorized: provide a valid bearer token",
	})
}
