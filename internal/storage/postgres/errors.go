package postgres

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"rencar/internal/storage"

	"github.com/jackc/pgx/v5/pgconn"
)

// tagUnavailable marks connection-level failures as storage.ErrUnavailable so
// handlers can answer 503 instead of 500. Everything else passes through
// untouched.
func tagUnavailable(err error) error {
	if err == nil || !isUnavailable(err) {
		return err
	}

	return fmt.Errorf("%w: %v", storage.ErrUnavailable, err)
}

func isUnavailable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}

	// Class 08: connection exceptions.
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return strings.HasPrefix(pgErr.Code, "08")
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}
