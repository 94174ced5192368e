package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"rencar/internal/auth"
	"rencar/internal/chat"
	"rencar/internal/config"
	"rencar/internal/lib/token"
	"rencar/internal/media"
	"rencar/internal/models"
	"rencar/internal/storage"

	"github.com/stretchr/testify/require"
)

// routerStore satisfies every interface setupRouter needs so the route
// table can be exercised without a database.
type routerStore struct{}

func (routerStore) Cars(context.Context) ([]models.Car, error)       { return []models.Car{}, nil }
func (routerStore) Banners(context.Context) ([]models.Banner, error) { return []models.Banner{}, nil }
func (routerStore) Posters(context.Context) ([]models.Poster, error) { return []models.Poster{}, nil }
func (routerStore) Packages(context.Context) ([]models.Package, error) {
	return []models.Package{}, nil
}

func (routerStore) CarByID(context.Context, string) (models.Car, error) {
	return models.Car{}, storage.ErrNotFound
}

func (routerStore) BannerByID(context.Context, string) (models.Banner, error) {
	return models.Banner{}, storage.ErrNotFound
}

func (routerStore) PosterByID(context.Context, string) (models.Poster, error) {
	return models.Poster{}, storage.ErrNotFound
}

func (routerStore) PackageByID(context.Context, string) (models.Package, error) {
	return models.Package{}, storage.ErrNotFound
}

func (routerStore) CreateCar(_ context.Context, c models.Car) (models.Car, error) { return c, nil }

func (routerStore) CreateBanner(_ context.Context, b models.Banner) (models.Banner, error) {
	return b, nil
}

func (routerStore) CreatePoster(_ context.Context, p models.Poster) (models.Poster, error) {
	return p, nil
}

func (routerStore) CreatePackage(_ context.Context, p models.Package) (models.Package, error) {
	return p, nil
}

func (routerStore) UpdateCar(_ context.Context, c models.Car) (models.Car, error) { return c, nil }

func (routerStore) UpdateBanner(_ context.Context, b models.Banner) (models.Banner, error) {
	return b, nil
}

func (routerStore) UpdatePoster(_ context.Context, p models.Poster) (models.Poster, error) {
	return p, nil
}

func (routerStore) UpdatePackage(_ context.Context, p models.Package) (models.Package, error) {
	return p, nil
}

func (routerStore) DeleteCar(context.Context, string) error     { return nil }
func (routerStore) DeleteBanner(context.Context, string) error  { return nil }
func (routerStore) DeletePoster(context.Context, string) error  { return nil }
func (routerStore) DeletePackage(context.Context, string) error { return nil }

func (routerStore) UserByUsername(context.Context, string) (models.User, error) {
	return models.User{}, storage.ErrUserNotFound
}

func (routerStore) UserByEmail(context.Context, string) (models.User, error) {
	return models.User{}, storage.ErrUserNotFound
}

func (routerStore) UserByID(context.Context, string) (models.User, error) {
	return models.User{}, storage.ErrUserNotFound
}

func (routerStore) SaveUser(_ context.Context, u models.User) (models.User, error) { return u, nil }
func (routerStore) UpdateLastLogin(context.Context, string) error                  { return nil }

func (routerStore) UpdateGoogleProfile(context.Context, string, string, string, string) error {
	return nil
}

type stubVerifier struct{}

func (stubVerifier) Verify(context.Context, string) (auth.GoogleIdentity, error) {
	return auth.GoogleIdentity{}, nil
}

func newTestRouter(t *testing.T) (http.Handler, token.Codec) {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := routerStore{}

	key, err := token.LoadKey("", true)
	require.NoError(t, err)

	codec, err := token.New(token.CodecPaseto, key)
	require.NoError(t, err)

	authService := auth.New(log, store, store, stubVerifier{}, codec, nil, time.Hour)
	chatService := chat.New(log, "", "", "", store)

	router := setupRouter(log, &config.Config{}, authService, chatService, store, media.Disabled{}, codec)

	return router, codec
}

func serve(t *testing.T, router http.Handler, method, path, bearer string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	return rec
}

func TestSetupRouter(t *testing.T) {
	router, codec := newTestRouter(t)

	userToken, err := codec.Issue(token.Claims{
		Subject:  "user-1",
		Username: "crew",
		Role:     models.RoleUser,
	}, time.Hour)
	require.NoError(t, err)

	t.Run("health is public", func(t *testing.T) {
		rec := serve(t, router, http.MethodGet, "/health", "")
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("banner and package lists are public", func(t *testing.T) {
		for _, path := range []string{"/api/banners", "/api/packages"} {
			rec := serve(t, router, http.MethodGet, path, "")
			require.Equal(t, http.StatusOK, rec.Code, path)
			require.Contains(t, rec.Body.String(), `"status":"OK"`, path)
		}
	})

	t.Run("mutations require a token", func(t *testing.T) {
		for _, path := range []string{"/api/banners", "/api/packages"} {
			rec := serve(t, router, http.MethodPost, path, "")
			require.Equal(t, http.StatusUnauthorized, rec.Code, path)
		}
	})

	t.Run("car list requires a token", func(t *testing.T) {
		rec := serve(t, router, http.MethodGet, "/api/cars", "")
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("delete is admin only", func(t *testing.T) {
		rec := serve(t, router, http.MethodDelete, "/api/banners/banner-1", userToken)
		require.Equal(t, http.StatusForbidden, rec.Code)
		require.Contains(t, rec.Body.String(), "admin access required")
	})

	t.Run("unknown route", func(t *testing.T) {
		rec := serve(t, router, http.MethodGet, "/api/unknown", "")
		require.Equal(t, http.StatusNotFound, rec.Code)
		require.Contains(t, rec.Body.String(), "endpoint not found")
	})
}
