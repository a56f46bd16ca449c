package alert

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL alert repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const alertColumns = `id, kind, species, pet_name, description, lat, lon, radius_km, photo_url, reporter_id, status, created_at, updated_at`

// Get retrieves an alert by ID.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*Alert, error) {
	query := `
		SELECT ` + alertColumns + `
		FROM alerts
		WHERE id = $1
	`

	var a Alert
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&a.ID,
		&a.Kind,
		&a.Species,
		&a.PetName,
		&a.Description,
		&a.Lat,
		&a.Lon,
		&a.RadiusKm,
		&a.PhotoURL,
		&a.ReporterID,
		&a.Status,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAlertNotFound
		}
		return nil, err
	}

	return &a, nil
}

// Create creates a new alert.
func (r *PostgresRepository) Create(ctx context.Context, a *Alert) error {
	query := `
		INSERT INTO alerts (id, kind, species, pet_name, description, lat, lon, radius_km, photo_url, reporter_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.pool.Exec(ctx, query,
		a.ID,
		a.Kind,
		a.Species,
		a.PetName,
		a.Description,
		a.Lat,
		a.Lon,
		a.RadiusKm,
		a.PhotoURL,
		a.ReporterID,
		a.Status,
		a.CreatedAt,
		a.UpdatedAt,
	)
	return err
}

// ListActive retrieves all active alerts, newest first.
func (r *PostgresRepository) ListActive(ctx context.Context) ([]*Alert, error) {
	query := `
		SELECT ` + alertColumns + `
		FROM alerts
		WHERE status = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, StatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alerts []*Alert
	for rows.Next() {
		var a Alert
		err := rows.Scan(
			&a.ID,
			&a.Kind,
			&a.Species,
			&a.PetName,
			&a.Description,
			&a.Lat,
			&a.Lon,
			&a.RadiusKm,
			&a.PhotoURL,
			&a.ReporterID,
			&a.Status,
			&a.CreatedAt,
			&a.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, &a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return alerts, nil
}

// UpdateStatus transitions an alert's status.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id string, status Status) error {
	query := `
		UPDATE alerts
		SET status = $2, updated_at = $3
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, id, status, time.Now())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAlertNotFound
	}

	return nil
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
