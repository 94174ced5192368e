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

const bannerColumns = `id, title, channel, format, url, tone, image, description, created_at, updated_at`

func (r *PostgresRepo) Banners(ctx context.Context) ([]models.Banner, error) {
	const op = "storage.postgres.Banners"

	query := `SELECT ` + bannerColumns + ` FROM banners ORDER BY updated_at DESC;`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, tagUnavailable(err))
	}
	defer rows.Close()

	banners := []models.Banner{}
	for rows.Next() {
		var b models.Banner
		if err := scanBanner(rows, &b); err != nil {
			return nil, fmt.Errorf("%s: %w", op, tagUnavailable(err))
		}

		banners = append(banners, b)
	}

	return banners, tagUnavailable(rows.Err())
}

func (r *PostgresRepo) BannerByID(ctx context.Context, id string) (models.Banner, error) {
	query := `SELECT ` + bannerColumns + ` FROM banners WHERE id = $1;`

	var b models.Banner
	if err := scanBanner(r.pool.QueryRow(ctx, query, id), &b); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Banner{}, storage.ErrNotFound
		}

		return models.Banner{}, tagUnavailable(err)
	}

	return b, nil
}

func (r *PostgresRepo) CreateBanner(ctx context.Context, banner models.Banner) (models.Banner, error) {
	const op = "storage.postgres.CreateBanner"

	banner.ID = uuid.NewString()

	query := `
		INSERT INTO banners (id, title, channel, format, url, tone, image, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + bannerColumns + `;
	`

	var saved models.Banner
	err := scanBanner(r.pool.QueryRow(ctx, query,
		banner.ID, banner.Title, banner.Channel, banner.Format, banner.URL,
		banner.Tone, banner.Image, banner.Description,
	), &saved)
	if err != nil {
		return models.Banner{}, fmt.Errorf("%s: %w", op, tagUnavailable(err))
	}

	return saved, nil
}

func (r *PostgresRepo) UpdateBanner(ctx context.Context, banner models.Banner) (models.Banner, error) {
	const op = "storage.postgres.UpdateBanner"

	query := `
		UPDATE banners
		SET title = $2, channel = $3, format = $4, url = $5, tone = $6,
		    image = $7, description = $8, updated_at = now()
		WHERE id = $1
		RETURNING ` + bannerColumns + `;
	`

	var saved models.Banner
	err := scanBanner(r.pool.QueryRow(ctx, query,
		banner.ID, banner.Title, banner.Channel, banner.Format, banner.URL,
		banner.Tone, banner.Image, banner.Description,
	), &saved)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Banner{}, storage.ErrNotFound
		}

		return models.Banner{}, fmt.Errorf("%s: %w", op, tagUnavailable(err))
	}

	return saved, nil
}

func (r *PostgresRepo) DeleteBanner(ctx context.Context, id string) error {
	query := `DELETE FROM banners WHERE id = $1;`

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return tagUnavailable(err)
	}

	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}

	return nil
}

func scanBanner(row pgx.Row, b *models.Banner) error {
	return row.Scan(
		&b.ID, &b.Title, &b.Channel, &b.Format, &b.URL, &b.Tone,
		&b.Image, &b.Description, &b.CreatedAt, &b.UpdatedAt,
	)
}
