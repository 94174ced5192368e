package token

import (
	"errors"
	"fmt"
	"time"

	"rencar/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// jwtCodec signs claims with HS256 under the shared symmetric key. Claims are
// readable by anyone holding the token; pick the paseto codec when they must
// stay confidential.
type jwtCodec struct {
	key []byte
	now func() time.Time
}

type jwtClaims struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Name     string `json:"name,omitempty"`
	Role     string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

func newJWTCodec(key []byte) *jwtCodec {
	return &jwtCodec{
		key: key,
		now: time.Now,
	}
}

func (c *jwtCodec) Issue(claims Claims, ttl time.Duration) (string, error) {
	const op = "token.jwt.Issue"

	if ttl <= 0 {
		return "", fmt.Errorf("%s: %w: ttl must be positive", op, ErrInvalidDuration)
	}

	now := c.now().Truncate(time.Second)

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwtClaims{
		Username: claims.Username,
		Email:    claims.Email,
		Name:     claims.Name,
		Role:     string(claims.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.Subject,
			Issuer:    Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})

	signed, err := t.SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return signed, nil
}

func (c *jwtCodec) Verify(tokenStr string) (Claims, error) {
	var parsed jwtClaims

	// The parser checks the signature before validating claims, so a token
	// that is both tampered and expired reports tampering.
	_, err := jwt.ParseWithClaims(tokenStr, &parsed, func(t *jwt.Token) (interface{}, error) {
		return c.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(c.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}

		return Claims{}, ErrTokenTampered
	}

	role, err := models.ParseRole(parsed.Role)
	if err != nil {
		return Claims{}, ErrTokenTampered
	}

	if parsed.ExpiresAt == nil || parsed.IssuedAt == nil {
		return Claims{}, ErrTokenTampered
	}

	return Claims{
		Subject:   parsed.Subject,
		Username:  parsed.Username,
		Email:     parsed.Email,
		Name:      parsed.Name,
		Role:      role,
		Issuer:    parsed.RegisteredClaims.Issuer,
		IssuedAt:  parsed.IssuedAt.Time,
		ExpiresAt: parsed.ExpiresAt.Time,
	}, nil
}
