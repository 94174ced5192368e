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

const packageColumns = `id, name, duration, description, price, category, image, features, created_at, updated_at`

func (r *PostgresRepo) Packages(ctx context.Context) ([]models.Package, error) {
	const op = "storage.postgres.Packages"

	query := `SELECT ` + packageColumns + ` FROM packages ORDER BY created_at DESC;`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, tagUnavailable(err))
	}
	defer rows.Close()

	packages := []models.Package{}
	for rows.Next() {
		pkg, err := scanPackage(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, tagUnavailable(err))
		}

		packages = append(packages, pkg)
	}

	return packages, tagUnavailable(rows.Err())
}

func (r *PostgresRepo) PackageByID(ctx context.Context, id string) (models.Package, error) {
	query := `SELECT ` + packageColumns + ` FROM packages WHERE id = $1;`

	pkg, err := scanPackage(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Package{}, storage.ErrNotFound
		}

		return models.Package{}, tagUnavailable(err)
	}

	return pkg, nil
}

func (r *PostgresRepo) CreatePackage(ctx context.Context, pkg models.Package) (models.Package, error) {
	const op = "storage.postgres.CreatePackage"

	pkg.ID = uuid.NewString()

	query := `
		INSERT INTO packages (id, name, duration, description, price, category, image, features)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + packageColumns + `;
	`

	saved, err := scanPackage(r.pool.QueryRow(ctx, query,
		pkg.ID, pkg.Name, pkg.Duration, pkg.Description, pkg.Price,
		pkg.Category, pkg.Image, pkg.Features,
	))
	if err != nil {
		return models.Package{}, fmt.Errorf("%s: %w", op, tagUnavailable(err))
	}

	return saved, nil
}

func (r *PostgresRepo) UpdatePackage(ctx context.Context, pkg models.Package) (models.Package, error) {
	const op = "storage.postgres.UpdatePackage"

	query := `
		UPDATE packages
		SET name = $2, duration = $3, description = $4, price = $5,
		    category = $6, image = $7, features = $8, updated_at = now()
		WHERE id = $1
		RETURNING ` + packageColumns + `;
	`

	saved, err := scanPackage(r.pool.QueryRow(ctx, query,
		pkg.ID, pkg.Name, pkg.Duration, pkg.Description, pkg.Price,
		pkg.Category, pkg.Image, pkg.Features,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Package{}, storage.ErrNotFound
		}

		return models.Package{}, fmt.Errorf("%s: %w", op, tagUnavailable(err))
	}

	return saved, nil
}

func (r *PostgresRepo) DeletePackage(ctx context.Context, id string) error {
	query := `DELETE FROM packages WHERE id = $1;`

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return tagUnavailable(err)
	}

	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}

	return nil
}

func scanPackage(row pgx.Row) (models.Package, error) {
	var pkg models.Package

	err := row.Scan(
		&pkg.ID, &pkg.Name, &pkg.Duration, &pkg.Description, &pkg.Price,
		&pkg.Category, &pkg.Image, &pkg.Features, &pkg.CreatedAt, &pkg.UpdatedAt,
	)
	if err != nil {
		return models.Package{}, err
	}

	if pkg.Features == nil {
		pkg.Features = []string{}
	}

	return pkg, nil
}
