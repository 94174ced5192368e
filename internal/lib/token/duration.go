package token

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var ErrInvalidDuration = errors.New("invalid duration format")

var ttlPattern = regexp.MustCompile(`^(\d+)([smhd])$`)

// ParseTTL parses the compact TTL grammar: an integer followed by one of
// s, m, h or d. time.ParseDuration is not used because it has no day unit
// and accepts shapes this grammar rejects.
func ParseTTL(s string) (time.Duration, error) {
	match := ttlPattern.FindStringSubmatch(s)
	if match == nil {
		return 0, fmt.Errorf("%w: %q, want e.g. 30s, 5m, 8h or 7d", ErrInvalidDuration, s)
	}

	value, err := strconv.ParseInt(match[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
	}

	var unit time.Duration
	switch match[2] {
	case "s":
		unit = time.Second
	case "m":
		unit = time.Minute
	case "h":
		unit = time.Hour
	case "d":
		unit = 24 * time.Hour
	}

	return time.Duration(value) * unit, nil
}
