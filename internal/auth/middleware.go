package auth

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/render"

	"github.com/spotterai/spotter/internal/errresponse"
)

type ctxKey int8

const (
	ctxKeyClaims ctxKey = iota
)

// ClaimsFromContext returns the access-token claims the Authenticator
// stored, or nil outside an authenticated route.
func ClaimsFromContext(ctx context.Context) *Claims {
	c, _ := ctx.Value(ctxKeyClaims).(*Claims)

	return c
}

// Authenticator verifies the Bearer access token and puts its claims on
// the request context. Requests without a valid token get a 401.
func (rs *Resource) Authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := bearerToken(r)
		if raw == "" {
			err := render.Render(w, r, errresponse.ErrUnauthorized)
			if err != nil {
				log.Println(err)
			}

			return
		}

		claims, err := rs.Tokens.Parse(raw, TokenAccess)
		if err != nil {
			err = render.Render(w, r, errresponse.ErrUnauthorized)
			if err != nil {
				log.Println(err)
			}

			return
		}

		ctx := context.WithValue(r.Context(), ctxKeyClaims, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireDriver rejects accounts that are not drivers. HOS status and
// trip tracking only make sense for drivers.
func RequireDriver(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := ClaimsFromContext(r.Context())
		if claims == nil || !claims.IsDriver {
			err := render.Render(w, r, errresponse.ErrForbidden)
			if err != nil {
				log.Println(err)
			}

			return
		}

		next.ServeHTTP(w, r)
	})
}

// AdminOnly middleware restricts access to just administrators.
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := ClaimsFromContext(r.Context())
		if claims == nil || !claims.IsAdmin {
			err := render.Render(w, r, errresponse.ErrForbidden)
			if err != nil {
				log.Println(err)
			}

			return
		}

		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")

	const prefix = "Bearer "
	if !strings.HasPrefix(h, prefix) {
		return ""
	}

	return strings.TrimSpace(strings.TrimPrefix(h, prefix))
}
