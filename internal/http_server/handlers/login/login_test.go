package login_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"rencar/internal/auth"
	"rencar/internal/http_server/handlers/login"
	"rencar/internal/lib/token"
	"rencar/internal/models"
	"rencar/internal/storage"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeStore struct {
	user models.User
	err  error
}

func (s *fakeStore) UserByUsername(_ context.Context, username string) (models.User, error) {
	if s.err != nil {
		return models.User{}, s.err
	}

	if s.user.Username != username {
		return models.User{}, storage.ErrUserNotFound
	}

	return s.user, nil
}

func (s *fakeStore) UserByEmail(context.Context, string) (models.User, error) {
	return models.User{}, storage.ErrUserNotFound
}

func (s *fakeStore) UserByID(context.Context, string) (models.User, error) {
	return models.User{}, storage.ErrUserNotFound
}

func (s *fakeStore) SaveUser(_ context.Context, u models.User) (models.User, error) {
	return u, nil
}

func (s *fakeStore) UpdateLastLogin(context.Context, string) error { return nil }

func (s *fakeStore) UpdateGoogleProfile(context.Context, string, string, string, string) error {
	return nil
}

type fakeVerifier struct{}

func (fakeVerifier) Verify(context.Context, string) (auth.GoogleIdentity, error) {
	return auth.GoogleIdentity{}, nil
}

func newHandler(t *testing.T, storeErr error) (http.HandlerFunc, token.Codec) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	require.NoError(t, err)

	store := &fakeStore{user: models.User{
		ID:       "user-1",
		Username: "admin",
		Email:    "admin@sena-rencar.com",
		Role:     models.RoleAdmin,
		PassHash: hash,
	}, err: storeErr}

	key, err := token.LoadKey("", true)
	require.NoError(t, err)

	codec, err := token.New(token.CodecPaseto, key)
	require.NoError(t, err)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	authService := auth.New(log, store, store, fakeVerifier{}, codec, nil, time.Hour)

	return login.New(log, validator.New(), authService), codec
}

func post(t *testing.T, handler http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	return rec
}

func TestLoginHandler(t *testing.T) {
	handler, codec := newHandler(t, nil)

	t.Run("valid credentials", func(t *testing.T) {
		rec := post(t, handler, `{"username": "admin", "password": "secret"}`)

		require.Equal(t, http.StatusOK, rec.Code)

		var body login.Response
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

		require.Equal(t, "OK", body.Status)
		require.NotEmpty(t, body.Token)
		require.Equal(t, "admin", body.Profile.Username)
		require.Equal(t, models.RoleAdmin, body.Profile.Role)

		claims, err := codec.Verify(body.Token)
		require.NoError(t, err)
		require.Equal(t, "user-1", claims.Subject)
	})

	t.Run("missing fields", func(t *testing.T) {
		rec := post(t, handler, `{"username": "admin"}`)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Contains(t, rec.Body.String(), "field Password is required")
	})

	t.Run("malformed body", func(t *testing.T) {
		rec := post(t, handler, `{"username": `)

		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("store unavailable", func(t *testing.T) {
		down, _ := newHandler(t, fmt.Errorf("connect: %w", storage.ErrUnavailable))

		rec := post(t, down, `{"username": "admin", "password": "secret"}`)

		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
		require.Contains(t, rec.Body.String(), "service temporarily unavailable")
	})

	t.Run("store failure", func(t *testing.T) {
		down, _ := newHandler(t, errors.New("syntax error"))

		rec := post(t, down, `{"username": "admin", "password": "secret"}`)

		require.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("unknown user and wrong password share one body", func(t *testing.T) {
		unknown := post(t, handler, `{"username": "nobody", "password": "secret"}`)
		wrong := post(t, handler, `{"username": "admin", "password": "nope"}`)

		require.Equal(t, http.StatusUnauthorized, unknown.Code)
		require.Equal(t, http.StatusUnauthorized, wrong.Code)
		require.JSONEq(t, unknown.Body.String(), wrong.Body.String())
	})
}
