package auth

import (
	"context"
	"fmt"

	"google.golang.org/api/idtoken"
)

// GoogleIdentity is the subset of a verified Google ID token this service
// cares about.
type GoogleIdentity struct {
	GoogleID      string
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
}

// GoogleVerifier validates ID tokens against Google's public keys and the
// registered OAuth client id.
type GoogleVerifier struct {
	clientID string
}

func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{clientID: clientID}
}

func (v *GoogleVerifier) Verify(ctx context.Context, rawToken string) (GoogleIdentity, error) {
	const op = "auth.GoogleVerifier.Verify"

	if v.clientID == "" {
		return GoogleIdentity{}, fmt.Errorf("%s: google client id is not configured", op)
	}

	payload, err := idtoken.Validate(ctx, rawToken, v.clientID)
	if err != nil {
		return GoogleIdentity{}, fmt.Errorf("%s: %w", op, err)
	}

	emailVerified, _ := payload.Claims["email_verified"].(bool)

	return GoogleIdentity{
		GoogleID:      payload.Subject,
		Email:         claimString(payload.Claims, "email"),
		EmailVerified: emailVerified,
		Name:          claimString(payload.Claims, "name"),
		Picture:       claimString(payload.Claims, "picture"),
	}, nil
}

func claimString(claims map[string]interface{}, key string) string {
	s, _ := claims[key].(string)
	return s
}
