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

const carColumns = `id, name, category, seats, luggage, price, driver_included, image, highlight, description, created_at, updated_at`

func (r *PostgresRepo) Cars(ctx context.Context) ([]models.Car, error) {
	const op = "storage.postgres.Cars"

	query := `SELECT ` + carColumns + ` FROM cars ORDER BY created_at DESC;`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, tagUnavailable(err))
	}
	defer rows.Close()

	cars := []models.Car{}
	for rows.Next() {
		car, err := scanCar(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, tagUnavailable(err))
		}

		cars = append(cars, car)
	}

	return cars, tagUnavailable(rows.Err())
}

func (r *PostgresRepo) CarByID(ctx context.Context, id string) (models.Car, error) {
	query := `SELECT ` + carColumns + ` FROM cars WHERE id = $1;`

	car, err := scanCar(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Car{}, storage.ErrNotFound
		}

		return models.Car{}, tagUnavailable(err)
	}

	return car, nil
}

func (r *PostgresRepo) CreateCar(ctx context.Context, car models.Car) (models.Car, error) {
	const op = "storage.postgres.CreateCar"

	car.ID = uuid.NewString()

	query := `
		INSERT INTO cars (id, name, category, seats, luggage, price, driver_included, image, highlight, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + carColumns + `;
	`

	saved, err := scanCar(r.pool.QueryRow(ctx, query,
		car.ID, car.Name, car.Category, car.Seats, car.Luggage, car.Price,
		car.DriverIncluded, car.Image, car.Highlight, car.Description,
	))
	if err != nil {
		return models.Car{}, fmt.Errorf("%s: %w", op, tagUnavailable(err))
	}

	return saved, nil
}

func (r *PostgresRepo) UpdateCar(ctx context.Context, car models.Car) (models.Car, error) {
	const op = "storage.postgres.UpdateCar"

	query := `
		UPDATE cars
		SET name = $2, category = $3, seats = $4, luggage = $5, price = $6,
		    driver_included = $7, image = $8, highlight = $9, description = $10,
		    updated_at = now()
		WHERE id = $1
		RETURNING ` + carColumns + `;
	`

	saved, err := scanCar(r.pool.QueryRow(ctx, query,
		car.ID, car.Name, car.Category, car.Seats, car.Luggage, car.Price,
		car.DriverIncluded, car.Image, car.Highlight, car.Description,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Car{}, storage.ErrNotFound
		}

		return models.Car{}, fmt.Errorf("%s: %w", op, tagUnavailable(err))
	}

	return saved, nil
}

func (r *PostgresRepo) DeleteCar(ctx context.Context, id string) error {
	query := `DELETE FROM cars WHERE id = $1;`

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return tagUnavailable(err)
	}

	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}

	return nil
}

func scanCar(row pgx.Row) (models.Car, error) {
	var car models.Car

	err := row.Scan(
		&car.ID, &car.Name, &car.Category, &car.Seats, &car.Luggage, &car.Price,
		&car.DriverIncluded, &car.Image, &car.Highlight, &car.Description,
		&car.CreatedAt, &car.UpdatedAt,
	)
	if err != nil {
		return models.Car{}, err
	}

	if car.Highlight == nil {
		car.Highlight = []string{}
	}

	return car, nil
}
