package token

import (
	"strings"
	"testing"
	"time"

	"rencar/internal/models"

	"github.com/stretchr/testify/require"
)

func testKey(t *testing.T) []byte {
	t.Helper()

	key := make([]byte, KeySize)
	for i := range key {
		key[i] = byte(i)
	}

	return key
}

func testClaims() Claims {
	return Claims{
		Subject:  "8d5a9f2e-1c3b-4a6d-9e7f-0b2c4d6e8f0a",
		Username: "admin",
		Email:    "admin@sena-rencar.com",
		Name:     "Administrator",
		Role:     models.RoleAdmin,
	}
}

// tamper swaps one character somewhere past the token header for another
// character from the same alphabet.
func tamper(token string, offset int) string {
	idx := len(token) - 1 - offset

	replacement := byte('A')
	if token[idx] == 'A' {
		replacement = 'B'
	}

	return token[:idx] + string(replacement) + token[idx+1:]
}

func newCodecs(t *testing.T, key []byte) map[string]Codec {
	t.Helper()

	pasetoCodec, err := New(CodecPaseto, key)
	require.NoError(t, err)

	jwtCodec, err := New(CodecJWT, key)
	require.NoError(t, err)

	return map[string]Codec{
		CodecPaseto: pasetoCodec,
		CodecJWT:    jwtCodec,
	}
}

func TestCodec_RoundTrip(t *testing.T) {
	issued := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ttl := 8 * time.Hour

	for name, codec := range newCodecs(t, testKey(t)) {
		t.Run(name, func(t *testing.T) {
			setNow(t, codec, func() time.Time { return issued })

			raw, err := codec.Issue(testClaims(), ttl)
			require.NoError(t, err)
			require.NotEmpty(t, raw)

			claims, err := codec.Verify(raw)
			require.NoError(t, err)

			require.Equal(t, "8d5a9f2e-1c3b-4a6d-9e7f-0b2c4d6e8f0a", claims.Subject)
			require.Equal(t, "admin", claims.Username)
			require.Equal(t, "admin@sena-rencar.com", claims.Email)
			require.Equal(t, "Administrator", claims.Name)
			require.Equal(t, models.RoleAdmin, claims.Role)
			require.Equal(t, Issuer, claims.Issuer)
			require.True(t, claims.IssuedAt.Equal(issued))
			require.True(t, claims.ExpiresAt.Equal(issued.Add(ttl)))
		})
	}
}

func TestCodec_Tampered(t *testing.T) {
	for name, codec := range newCodecs(t, testKey(t)) {
		t.Run(name, func(t *testing.T) {
			raw, err := codec.Issue(testClaims(), time.Hour)
			require.NoError(t, err)

			// Flip characters across the whole payload and signature.
			for offset := 0; offset < len(raw)-len("v4.local."); offset += 7 {
				mangled := tamper(raw, offset)
				if mangled == raw {
					continue
				}

				_, err := codec.Verify(mangled)
				require.ErrorIs(t, err, ErrTokenTampered, "offset %d", offset)
			}
		})
	}
}

func TestCodec_Expired(t *testing.T) {
	issued := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for name, codec := range newCodecs(t, testKey(t)) {
		t.Run(name, func(t *testing.T) {
			setNow(t, codec, func() time.Time { return issued })

			raw, err := codec.Issue(testClaims(), time.Hour)
			require.NoError(t, err)

			setNow(t, codec, func() time.Time { return issued.Add(2 * time.Hour) })

			_, err = codec.Verify(raw)
			require.ErrorIs(t, err, ErrTokenExpired)
		})
	}
}

// A token that is both expired and tampered must fail authentication, not
// report expiry: the expiry field of an unauthenticated token means nothing.
func TestCodec_TamperedAndExpired(t *testing.T) {
	issued := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for name, codec := range newCodecs(t, testKey(t)) {
		t.Run(name, func(t *testing.T) {
			setNow(t, codec, func() time.Time { return issued })

			raw, err := codec.Issue(testClaims(), time.Hour)
			require.NoError(t, err)

			setNow(t, codec, func() time.Time { return issued.Add(2 * time.Hour) })

			_, err = codec.Verify(tamper(raw, 3))
			require.ErrorIs(t, err, ErrTokenTampered)
		})
	}
}

func TestCodec_WrongKey(t *testing.T) {
	key := testKey(t)

	otherKey := make([]byte, KeySize)
	copy(otherKey, key)
	otherKey[0] ^= 0xff

	issuers := newCodecs(t, key)
	verifiers := newCodecs(t, otherKey)

	for name, issuer := range issuers {
		t.Run(name, func(t *testing.T) {
			raw, err := issuer.Issue(testClaims(), time.Hour)
			require.NoError(t, err)

			_, err = verifiers[name].Verify(raw)
			require.ErrorIs(t, err, ErrTokenTampered)
		})
	}
}

func TestCodec_NonPositiveTTL(t *testing.T) {
	for name, codec := range newCodecs(t, testKey(t)) {
		t.Run(name, func(t *testing.T) {
			_, err := codec.Issue(testClaims(), 0)
			require.ErrorIs(t, err, ErrInvalidDuration)

			_, err = codec.Issue(testClaims(), -time.Minute)
			require.ErrorIs(t, err, ErrInvalidDuration)
		})
	}
}

func TestNew(t *testing.T) {
	t.Run("unknown codec", func(t *testing.T) {
		_, err := New("macaroon", testKey(t))
		require.Error(t, err)
		require.Contains(t, err.Error(), "unknown token codec")
	})

	t.Run("short key", func(t *testing.T) {
		_, err := New(CodecPaseto, []byte("too short"))
		require.ErrorIs(t, err, ErrInvalidKey)
	})
}

func TestLoadKey(t *testing.T) {
	validHex := strings.Repeat("ab", KeySize)

	tests := []struct {
		name     string
		hexKey   string
		fallback bool
		wantErr  error
	}{
		{name: "valid hex", hexKey: validHex},
		{name: "empty with fallback", hexKey: "", fallback: true},
		{name: "empty without fallback", hexKey: "", wantErr: ErrInvalidKey},
		{name: "not hex", hexKey: strings.Repeat("zz", KeySize), wantErr: ErrInvalidKey},
		{name: "too short", hexKey: "abcd", wantErr: ErrInvalidKey},
		{name: "too long", hexKey: validHex + "ab", wantErr: ErrInvalidKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := LoadKey(tt.hexKey, tt.fallback)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			require.Len(t, key, KeySize)
		})
	}

	t.Run("fallback key is deterministic", func(t *testing.T) {
		first, err := LoadKey("", true)
		require.NoError(t, err)

		second, err := LoadKey("", true)
		require.NoError(t, err)

		require.Equal(t, first, second)
	})
}

func TestParseTTL(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{in: "30s", want: 30 * time.Second},
		{in: "5m", want: 5 * time.Minute},
		{in: "8h", want: 8 * time.Hour},
		{in: "7d", want: 7 * 24 * time.Hour},
		{in: "1d", want: 24 * time.Hour},
		{in: "8", wantErr: true},
		{in: "h8", wantErr: true},
		{in: "", wantErr: true},
		{in: "8h30m", wantErr: true},
		{in: "-5m", wantErr: true},
		{in: "5 m", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTTL(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidDuration)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func setNow(t *testing.T, codec Codec, now func() time.Time) {
	t.Helper()

	switch c := codec.(type) {
	case *pasetoCodec:
		c.now = now
	case *jwtCodec:
		c.now = now
	default:
		t.Fatalf("unexpected codec type %T", codec)
	}
}
