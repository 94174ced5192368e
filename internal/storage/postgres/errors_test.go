package postgres

import (
	"context"
	"errors"
	"net"
	"testing"

	"rencar/internal/storage"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestTagUnavailable(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		unavailable bool
	}{
		{name: "deadline exceeded", err: context.DeadlineExceeded, unavailable: true},
		{name: "canceled", err: context.Canceled, unavailable: true},
		{name: "wrapped deadline", err: errors.Join(errors.New("acquire"), context.DeadlineExceeded), unavailable: true},
		{name: "dial failure", err: &net.OpError{Op: "dial", Err: errors.New("connection refused")}, unavailable: true},
		{name: "connection exception", err: &pgconn.PgError{Code: "08006"}, unavailable: true},
		{name: "connection does not exist", err: &pgconn.PgError{Code: "08003"}, unavailable: true},
		{name: "unique violation", err: &pgconn.PgError{Code: "23505"}},
		{name: "no rows", err: pgx.ErrNoRows},
		{name: "plain error", err: errors.New("syntax error")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tagUnavailable(tt.err)

			if tt.unavailable {
				require.ErrorIs(t, got, storage.ErrUnavailable)
				return
			}

			require.NotErrorIs(t, got, storage.ErrUnavailable)
			require.Equal(t, tt.err, got)
		})
	}

	t.Run("nil stays nil", func(t *testing.T) {
		require.NoError(t, tagUnavailable(nil))
	})
}
