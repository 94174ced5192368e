package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	sl "rencar/internal/lib/logger"
	"rencar/internal/lib/token"
	"rencar/internal/models"
	"rencar/internal/storage"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials covers unknown username, OAuth-only account and
	// wrong password alike, so the response never reveals which one it was.
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrIdentityVerification = errors.New("identity verification failed")
)

type Auth struct {
	log         *slog.Logger
	usrProvider UserProvider
	usrSaver    UserSaver
	identity    IdentityVerifier
	codec       token.Codec
	notifier    Notifier
	tokenTTL    time.Duration
}

type UserProvider interface {
	UserByUsername(ctx context.Context, username string) (models.User, error)
	UserByEmail(ctx context.Context, email string) (models.User, error)
	UserByID(ctx context.Context, id string) (models.User, error)
}

type UserSaver interface {
	SaveUser(ctx context.Context, u models.User) (models.User, error)
	UpdateLastLogin(ctx context.Context, id string) error
	UpdateGoogleProfile(ctx context.Context, id, name, picture, googleID string) error
}

// IdentityVerifier checks a third-party identity assertion against the
// issuer's public keys and this service's client id.
type IdentityVerifier interface {
	Verify(ctx context.Context, rawToken string) (GoogleIdentity, error)
}

type Notifier interface {
	Publish(ctx context.Context, ev models.AuthEvent) error
}

func New(
	log *slog.Logger,
	userProvider UserProvider,
	userSaver UserSaver,
	identity IdentityVerifier,
	codec token.Codec,
	notifier Notifier,
	tokenTTL time.Duration,
) *Auth {
	return &Auth{
		log:         log,
		usrProvider: userProvider,
		usrSaver:    userSaver,
		identity:    identity,
		codec:       codec,
		notifier:    notifier,
		tokenTTL:    tokenTTL,
	}
}

// Login verifies a username/password pair and returns a session token plus
// the account it belongs to.
func (a *Auth) Login(ctx context.Context, username, password string) (string, models.User, error) {
	const op = "auth.Login"

	log := a.log.With(slog.String("op", op))

	user, err := a.usrProvider.UserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Info("user not found")
			return "", models.User{}, ErrInvalidCredentials
		}

		log.Error("failed to get user", sl.Err(err))
		return "", models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	// An account without a password hash is OAuth-only; same error as a
	// wrong password so the login path cannot be probed.
	if len(user.PassHash) == 0 {
		log.Info("account has no password set")
		return "", models.User{}, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword(user.PassHash, []byte(password)); err != nil {
		log.Info("invalid credentials", sl.Err(err))
		return "", models.User{}, ErrInvalidCredentials
	}

	if err := a.usrSaver.UpdateLastLogin(ctx, user.ID); err != nil {
		log.Warn("failed to update last login", sl.Err(err))
	}

	accessToken, err := a.issueFor(user)
	if err != nil {
		log.Error("failed to generate access token", sl.Err(err))
		return "", models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	a.notify(ctx, models.EventUserLogin, user)

	log.Info("user logged in successfully", slog.String("uid", user.ID))

	return accessToken, user, nil
}

// LoginWithGoogle verifies a Google ID token, creates or refreshes the
// matching account and returns a session token for it.
func (a *Auth) LoginWithGoogle(ctx context.Context, idToken string) (string, models.User, error) {
	const op = "auth.LoginWithGoogle"

	log := a.log.With(slog.String("op", op))

	identity, err := a.identity.Verify(ctx, idToken)
	if err != nil {
		log.Info("google token verification failed", sl.Err(err))
		return "", models.User{}, ErrIdentityVerification
	}

	if !identity.EmailVerified {
		log.Info("google account email not verified")
		return "", models.User{}, ErrIdentityVerification
	}

	user, err := a.usrProvider.UserByEmail(ctx, identity.Email)
	switch {
	case errors.Is(err, storage.ErrUserNotFound):
		user, err = a.usrSaver.SaveUser(ctx, models.User{
			Email:    identity.Email,
			Name:     identity.Name,
			Picture:  identity.Picture,
			GoogleID: identity.GoogleID,
			Role:     models.RoleUser,
		})
		if err != nil {
			log.Error("failed to create user", sl.Err(err))
			return "", models.User{}, fmt.Errorf("%s: %w", op, err)
		}

		a.notify(ctx, models.EventUserCreated, user)

		log.Info("user created from google login", slog.String("uid", user.ID))
	case err != nil:
		log.Error("failed to get user", sl.Err(err))
		return "", models.User{}, fmt.Errorf("%s: %w", op, err)
	default:
		if err := a.usrSaver.UpdateGoogleProfile(ctx, user.ID, identity.Name, identity.Picture, identity.GoogleID); err != nil {
			log.Warn("failed to refresh google profile", sl.Err(err))
		} else {
			user.Name = identity.Name
			user.Picture = identity.Picture
			user.GoogleID = identity.GoogleID
		}

		a.notify(ctx, models.EventUserLogin, user)
	}

	accessToken, err := a.issueFor(user)
	if err != nil {
		log.Error("failed to generate access token", sl.Err(err))
		return "", models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("google login successful", slog.String("uid", user.ID))

	return accessToken, user, nil
}

// Profile resolves the subject of an already verified token to its account.
func (a *Auth) Profile(ctx context.Context, userID string) (models.User, error) {
	const op = "auth.Profile"

	user, err := a.usrProvider.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return models.User{}, storage.ErrUserNotFound
		}

		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

// Refresh re-issues a token for the holder of a still-valid one. Tokens are
// stateless, so this is a plain re-issue from the current account state.
func (a *Auth) Refresh(ctx context.Context, userID string) (string, models.User, error) {
	const op = "auth.Refresh"

	user, err := a.usrProvider.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return "", models.User{}, storage.ErrUserNotFound
		}

		return "", models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	accessToken, err := a.issueFor(user)
	if err != nil {
		return "", models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	return accessToken, user, nil
}

func (a *Auth) issueFor(user models.User) (string, error) {
	return a.codec.Issue(token.Claims{
		Subject:  user.ID,
		Username: user.Username,
		Email:    user.Email,
		Name:     user.Name,
		Role:     user.Role,
	}, a.tokenTTL)
}

func (a *Auth) notify(ctx context.Context, eventType string, user models.User) {
	if a.notifier == nil {
		return
	}

	ev := models.AuthEvent{
		Type:   eventType,
		UserID: user.ID,
		Email:  user.Email,
		At:     time.Now().UTC(),
	}

	if err := a.notifier.Publish(ctx, ev); err != nil {
		a.log.Warn("failed to publish auth event", sl.Err(err))
	}
}
