package claim

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

// NewPostgresRepository creates a new PostgreSQL claim repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const claimColumns = `id, alert_id, claimant_id, message, status, created_at, updated_at`

// Get retrieves a claim by ID.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*Claim, error) {
	query := `
		SELECT ` + claimColumns + `
		FROM claims
		WHERE id = $1
	`

	var c Claim
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&c.ID,
		&c.AlertID,
		&c.ClaimantID,
		&c.Message,
		&c.Status,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrClaimNotFound
		}
		return nil, err
	}

	return &c, nil
}

// Create creates a new claim.
func (r *PostgresRepository) Create(ctx context.Context, c *Claim) error {
	query := `
		INSERT INTO claims (id, alert_id, claimant_id, message, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, query,
		c.ID,
		c.AlertID,
		c.ClaimantID,
		c.Message,
		c.Status,
		c.CreatedAt,
		c.UpdatedAt,
	)
	return err
}

// ListByAlert retrieves all claims on an alert, newest first.
func (r *PostgresRepository) ListByAlert(ctx context.Context, alertID string) ([]*Claim, error) {
	query := `
		SELECT ` + claimColumns + `
		FROM claims
		WHERE alert_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, alertID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var claims []*Claim
	for rows.Next() {
		var c Claim
		err := rows.Scan(
			&c.ID,
			&c.AlertID,
			&c.ClaimantID,
			&c.Message,
			&c.Status,
			&c.CreatedAt,
			&c.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		claims = append(claims, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return claims, nil
}

// UpdateStatus transitions a claim's status.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id string, status Status) error {
	query := `
		UPDATE claims
		SET status = $2, updated_at = $3
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, id, status, time.Now())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrClaimNotFound
	}

	return nil
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
