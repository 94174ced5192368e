package authn_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"rencar/internal/lib/token"
	"rencar/internal/middleware/authn"
	"rencar/internal/models"

	"github.com/stretchr/testify/require"
)

func testCodec(t *testing.T) token.Codec {
	t.Helper()

	key, err := token.LoadKey("", true)
	require.NoError(t, err)

	codec, err := token.New(token.CodecPaseto, key)
	require.NoError(t, err)

	return codec
}

func issue(t *testing.T, codec token.Codec, role models.Role) string {
	t.Helper()

	raw, err := codec.Issue(token.Claims{
		Subject:  "user-1",
		Username: "budi",
		Role:     role,
	}, time.Hour)
	require.NoError(t, err)

	return raw
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNew(t *testing.T) {
	codec := testCodec(t)

	var seen token.Claims
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := authn.ClaimsFromContext(r.Context())
		require.True(t, ok)
		seen = claims

		w.WriteHeader(http.StatusOK)
	})

	handler := authn.New(discardLogger(), codec)(next)

	t.Run("valid token proceeds with claims", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/auth/profile", nil)
		req.Header.Set("Authorization", "Bearer "+issue(t, codec, models.RoleUser))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "user-1", seen.Subject)
		require.Equal(t, models.RoleUser, seen.Role)
	})

	t.Run("missing header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/auth/profile", nil)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Contains(t, rec.Body.String(), "authorization header missing or malformed")
	})

	t.Run("wrong scheme", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/auth/profile", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/auth/profile", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Contains(t, rec.Body.String(), "invalid or expired token")
	})
}

func TestOptional(t *testing.T) {
	codec := testCodec(t)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := authn.ClaimsFromContext(r.Context()); ok {
			w.WriteHeader(http.StatusOK)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	})

	handler := authn.Optional(discardLogger(), codec)(next)

	t.Run("no token proceeds anonymous", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/banners", nil)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("bad token proceeds anonymous", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/banners", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("valid token attaches claims", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/banners", nil)
		req.Header.Set("Authorization", "Bearer "+issue(t, codec, models.RoleUser))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestRequireRole(t *testing.T) {
	codec := testCodec(t)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	handler := authn.New(discardLogger(), codec)(authn.RequireRole(models.RoleAdmin)(next))

	t.Run("admin passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/api/cars/1", nil)
		req.Header.Set("Authorization", "Bearer "+issue(t, codec, models.RoleAdmin))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("user role is forbidden", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/api/cars/1", nil)
		req.Header.Set("Authorization", "Bearer "+issue(t, codec, models.RoleUser))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusForbidden, rec.Code)
		require.Contains(t, rec.Body.String(), "admin access required")
	})

	t.Run("no claims is unauthorized", func(t *testing.T) {
		bare := authn.RequireRole(models.RoleAdmin)(next)

		req := httptest.NewRequest(http.MethodDelete, "/api/cars/1", nil)

		rec := httptest.NewRecorder()
		bare.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Contains(t, rec.Body.String(), "authentication required")
	})
}
