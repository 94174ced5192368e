// Package authn carries a verified token's claims through the request
// context. Route handlers read them back with ClaimsFromContext.
package authn

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	resp "rencar/internal/lib/api/response"
	sl "rencar/internal/lib/logger"
	"rencar/internal/lib/token"
	"rencar/internal/models"

	"github.com/go-chi/render"
)

type ctxKey struct{}

const bearerPrefix = "Bearer "

// New rejects requests without a valid bearer token. Tampered and expired
// tokens get the same 401 body; the reason is only logged.
func New(log *slog.Logger, codec token.Codec) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middleware.authn.New"

			raw, ok := bearerToken(r)
			if !ok {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, resp.Error("authorization header missing or malformed"))

				return
			}

			claims, err := codec.Verify(raw)
			if err != nil {
				log.Info("token verification failed", slog.String("op", op), sl.Err(err))

				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, resp.Error("invalid or expired token"))

				return
			}

			next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
		})
	}
}

// Optional verifies a bearer token when one is present but never blocks the
// request. An invalid token is logged and the request proceeds anonymous.
func Optional(log *slog.Logger, codec token.Codec) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middleware.authn.Optional"

			raw, ok := bearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := codec.Verify(raw)
			if err != nil {
				log.Info("optional auth failed", slog.String("op", op), sl.Err(err))

				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
		})
	}
}

// RequireRole gates a route on the authenticated role. Runs after New:
// missing claims are a 401, a role mismatch is a 403.
func RequireRole(role models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, resp.Error("authentication required"))

				return
			}

			if claims.Role != role {
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, resp.Error(string(role)+" access required"))

				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func ClaimsFromContext(ctx context.Context) (token.Claims, bool) {
	claims, ok := ctx.Value(ctxKey{}).(token.Claims)
	return claims, ok
}

func withClaims(ctx context.Context, claims token.Claims) context.Context {
	return context.WithValue(ctx, ctxKey{}, claims)
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", false
	}

	raw := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
	if raw == "" {
		return "", false
	}

	return raw, true
}
