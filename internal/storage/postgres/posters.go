package postgres

import (
	"context"
	"errors"
	"fmt"

	"rencar/internal/models"
	"rencar/internal/storage"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const posterColumns = `id, title, channel, format, url, tone, image, description, created_at, updated_at`

func (r *PostgresRepo) Posters(ctx context.Context) ([]models.Poster, error) {
	const op = "storage.postgres.Posters"

	query := `SELECT ` + posterColumns + ` FROM posters ORDER BY updated_at DESC;`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, tagUnavailable(err))
	}
	defer rows.Close()

	posters := []models.Poster{}
	for rows.Next() {
		var p models.Poster
		if err := scanPoster(rows, &p); err != nil {
			return nil, fmt.Errorf("%s: %w", op, tagUnavailable(err))
		}

		posters = append(posters, p)
	}

	return posters, tagUnavailable(rows.Err())
}

func (r *PostgresRepo) PosterByID(ctx context.Context, id string) (models.Poster, error) {
	query := `SELECT ` + posterColumns + ` FROM posters WHERE id = $1;`

	var p models.Poster
	if err := scanPoster(r.pool.QueryRow(ctx, query, id), &p); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Poster{}, storage.ErrNotFound
		}

		return models.Poster{}, tagUnavailable(err)
	}

	return p, nil
}

func (r *PostgresRepo) CreatePoster(ctx context.Context, poster models.Poster) (models.Poster, error) {
	const op = "storage.postgres.CreatePoster"

	poster.ID = uuid.NewString()

	query := `
		INSERT INTO posters (id, title, channel, format, url, tone, image, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + posterColumns + `;
	`

	var saved models.Poster
	err := scanPoster(r.pool.QueryRow(ctx, query,
		poster.ID, poster.Title, poster.Channel, poster.Format, poster.URL,
		poster.Tone, poster.Image, poster.Description,
	), &saved)
	if err != nil {
		return models.Poster{}, fmt.Errorf("%s: %w", op, tagUnavailable(err))
	}

	return saved, nil
}

func (r *PostgresRepo) UpdatePoster(ctx context.Context, poster models.Poster) (models.Poster, error) {
	const op = "storage.postgres.UpdatePoster"

	query := `
		UPDATE posters
		SET title = $2, channel = $3, format = $4, url = $5, tone = $6,
		    image = $7, description = $8, updated_at = now()
		WHERE id = $1
		RETURNING ` + posterColumns + `;
	`

	var saved models.Poster
	err := scanPoster(r.pool.QueryRow(ctx, query,
		poster.ID, poster.Title, poster.Channel, poster.Format, poster.URL,
		poster.Tone, poster.Image, poster.Description,
	), &saved)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Poster{}, storage.ErrNotFound
		}

		return models.Poster{}, fmt.Errorf("%s: %w", op, tagUnavailable(err))
	}

	return saved, nil
}

func (r *PostgresRepo) DeletePoster(ctx context.Context, id string) error {
	query := `DELETE FROM posters WHERE id = $1;`

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return tagUnavailable(err)
	}

	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}

	return nil
}

func scanPoster(row pgx.Row, p *models.Poster) error {
	return row.Scan(
		&p.ID, &p.Title, &p.Channel, &p.Format, &p.URL, &p.Tone,
		&p.Image, &p.Description, &p.CreatedAt, &p.UpdatedAt,
	)
}
