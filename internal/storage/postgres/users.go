package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rencar/internal/models"
	"rencar/internal/storage"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const userColumns = `id, email, name, picture, google_id, role, username, password_hash, last_login_at, created_at, updated_at`

func (r *PostgresRepo) SaveUser(ctx context.Context, u models.User) (models.User, error) {
	const op = "storage.postgres.SaveUser"

	if u.ID == "" {
		u.ID = uuid.NewString()
	}

	query := `
		INSERT INTO users (id, email, name, picture, google_id, role, username, password_hash)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), $6, NULLIF($7, ''), $8)
		RETURNING ` + userColumns + `;
	`

	var passHash *string
	if len(u.PassHash) > 0 {
		s := string(u.PassHash)
		passHash = &s
	}

	row := r.pool.QueryRow(ctx, query,
		u.ID, u.Email, u.Name, u.Picture, u.GoogleID, string(u.Role), u.Username, passHash,
	)

	saved, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return models.User{}, storage.ErrUserExists
		}

		return models.User{}, fmt.Errorf("%s: failed to save user: %w", op, tagUnavailable(err))
	}

	return saved, nil
}

func (r *PostgresRepo) UserByUsername(ctx context.Context, username string) (models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1;`

	return r.userBy(ctx, query, username)
}

func (r *PostgresRepo) UserByEmail(ctx context.Context, email string) (models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1;`

	return r.userBy(ctx, query, email)
}

func (r *PostgresRepo) UserByID(ctx context.Context, id string) (models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1;`

	return r.userBy(ctx, query, id)
}

func (r *PostgresRepo) userBy(ctx context.Context, query string, arg any) (models.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, storage.ErrUserNotFound
		}

		return models.User{}, tagUnavailable(err)
	}

	return u, nil
}

func (r *PostgresRepo) UpdateLastLogin(ctx context.Context, id string) error {
	query := `UPDATE users SET last_login_at = now(), updated_at = now() WHERE id = $1;`

	_, err := r.pool.Exec(ctx, query, id)

	return tagUnavailable(err)
}

// UpdateGoogleProfile refreshes the display fields asserted by Google and
// stamps the login time.
func (r *PostgresRepo) UpdateGoogleProfile(ctx context.Context, id, name, picture, googleID string) error {
	query := `
		UPDATE users
		SET name = NULLIF($2, ''),
		    picture = NULLIF($3, ''),
		    google_id = NULLIF($4, ''),
		    last_login_at = now(),
		    updated_at = now()
		WHERE id = $1;
	`

	_, err := r.pool.Exec(ctx, query, id, name, picture, googleID)

	return tagUnavailable(err)
}

func (r *PostgresRepo) HasAdmin(ctx context.Context) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE role = 'admin');`

	var exists bool
	if err := r.pool.QueryRow(ctx, query).Scan(&exists); err != nil {
		return false, tagUnavailable(err)
	}

	return exists, nil
}

func scanUser(row pgx.Row) (models.User, error) {
	var (
		u         models.User
		rawRole   string
		name      *string
		picture   *string
		googleID  *string
		username  *string
		passHash  *string
		lastLogin *time.Time
	)

	err := row.Scan(
		&u.ID, &u.Email, &name, &picture, &googleID, &rawRole,
		&username, &passHash, &lastLogin, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return models.User{}, err
	}

	role, err := models.ParseRole(rawRole)
	if err != nil {
		return models.User{}, err
	}
	u.Role = role

	if name != nil {
		u.Name = *name
	}
	if picture != nil {
		u.Picture = *picture
	}
	if googleID != nil {
		u.GoogleID = *googleID
	}
	if username != nil {
		u.Username = *username
	}
	if passHash != nil {
		u.PassHash = []byte(*passHash)
	}
	u.LastLoginAt = lastLogin

	return u, nil
}
