package token

import (
	"encoding/hex"
	"errors"
	"fmt"
)

// KeySize is the required symmetric key length in bytes.
const KeySize = 32

var ErrInvalidKey = errors.New("token key must decode to exactly 32 bytes")

// devKeyPassphrase backs the local-only fallback key. It must never be
// reachable outside env=local.
const devKeyPassphrase = "rencar-local-dev-key"

// LoadKey decodes the PRKEY value (64 hex characters) into the 32-byte
// symmetric key. A missing or malformed key is a fatal configuration error;
// the caller decides that by not recovering. The dev fallback is only handed
// out when allowDevFallback is set.
func LoadKey(hexKey string, allowDevFallback bool) ([]byte, error) {
	if hexKey == "" {
		if allowDevFallback {
			return devKey(), nil
		}

		return nil, fmt.Errorf("%w: PRKEY is not set", ErrInvalidKey)
	}

	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("%w: not valid hex", ErrInvalidKey)
	}

	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: got %d bytes", ErrInvalidKey, len(key))
	}

	return key, nil
}

func devKey() []byte {
	key := make([]byte, KeySize)
	copy(key, devKeyPassphrase)

	return key
}
