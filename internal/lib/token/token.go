// Package token issues and verifies the session tokens handed out on login.
//
// Two wire formats live behind the one Codec interface: PASETO v4.local
// (authenticated encryption, the default) and HS256 JWT. Both run under the
// same 32-byte symmetric key, and callers never see which one is in use.
package token

import (
	"errors"
	"fmt"
	"time"

	"rencar/internal/models"
)

// Issuer tags every token minted by this service.
const Issuer = "sena-rencar-api"

var (
	ErrTokenTampered = errors.New("token authentication failed")
	ErrTokenExpired  = errors.New("token expired")
)

// Claims is the payload embedded in a session token. Subject is the account
// id; the display fields ride along so handlers can answer without a store
// round trip.
type Claims struct {
	Subject   string
	Username  string
	Email     string
	Name      string
	Role      models.Role
	Issuer    string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type Codec interface {
	// Issue stamps issued-at and expiry, sets the issuer and returns the
	// encoded token. The TTL must be positive.
	Issue(claims Claims, ttl time.Duration) (string, error)

	// Verify authenticates the token and returns its claims. Authentication
	// is checked before any field is trusted, so a token that is both
	// tampered and expired reports ErrTokenTampered.
	Verify(token string) (Claims, error)
}

const (
	CodecPaseto = "paseto"
	CodecJWT    = "jwt"
)

func New(codec string, key []byte) (Codec, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: got %d bytes", ErrInvalidKey, len(key))
	}

	switch codec {
	case CodecPaseto:
		return newPasetoCodec(key)
	case CodecJWT:
		return newJWTCodec(key), nil
	}

	return nil, fmt.Errorf("unknown token codec %q", codec)
}
