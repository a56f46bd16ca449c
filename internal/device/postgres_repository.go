package device

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL endpoint repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const endpointColumns = `token, user_id, device_id, platform, family, created_at, updated_at`

// GetByToken retrieves an endpoint by token.
func (r *PostgresRepository) GetByToken(ctx context.Context, token string) (*Endpoint, error) {
	query := `
		SELECT ` + endpointColumns + `
		FROM device_endpoints
		WHERE token = $1
	`

	var e Endpoint
	err := r.pool.QueryRow(ctx, query, token).Scan(
		&e.Token,
		&e.UserID,
		&e.DeviceID,
		&e.Platform,
		&e.Family,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEndpointNotFound
		}
		return nil, err
	}

	return &e, nil
}

// ListByUser retrieves all endpoints for a user.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*Endpoint, error) {
	query := `
		SELECT ` + endpointColumns + `
		FROM device_endpoints
		WHERE user_id = $1
		ORDER BY updated_at DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEndpoints(rows)
}

// ListByUsers retrieves all endpoints for a set of users.
func (r *PostgresRepository) ListByUsers(ctx context.Context, userIDs []string) ([]*Endpoint, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT ` + endpointColumns + `
		FROM device_endpoints
		WHERE user_id = ANY($1)
	`

	rows, err := r.pool.Query(ctx, query, userIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEndpoints(rows)
}

func scanEndpoints(rows pgx.Rows) ([]*Endpoint, error) {
	var endpoints []*Endpoint
	for rows.Next() {
		var e Endpoint
		err := rows.Scan(
			&e.Token,
			&e.UserID,
			&e.DeviceID,
			&e.Platform,
			&e.Family,
			&e.CreatedAt,
			&e.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		endpoints = append(endpoints, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return endpoints, nil
}

// Upsert creates or updates an endpoint keyed by token.
// A conflicting token is reassigned to the new owner, so a device that
// re-logs-in as a different user supersedes the previous registration.
func (r *PostgresRepository) Upsert(ctx context.Context, endpoint *Endpoint) (bool, error) {
	query := `
		INSERT INTO device_endpoints (token, user_id, device_id, platform, family, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (token) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			device_id = EXCLUDED.device_id,
			platform = EXCLUDED.platform,
			family = EXCLUDED.family,
			updated_at = EXCLUDED.updated_at
		RETURNING (xmax = 0) AS inserted
	`

	var inserted bool
	err := r.pool.QueryRow(ctx, query,
		endpoint.Token,
		endpoint.UserID,
		endpoint.DeviceID,
		endpoint.Platform,
		endpoint.Family,
		endpoint.CreatedAt,
		endpoint.UpdatedAt,
	).Scan(&inserted)

	if err != nil {
		return false, err
	}

	return inserted, nil
}

// DeleteOwned deletes a token only if it belongs to userID. A missing or
// foreign token is a no-op, not an error.
func (r *PostgresRepository) DeleteOwned(ctx context.Context, token, userID string) error {
	query := `DELETE FROM device_endpoints WHERE token = $1 AND user_id = $2`

	_, err := r.pool.Exec(ctx, query, token, userID)
	return err
}

// Delete unconditionally removes a token.
func (r *PostgresRepository) Delete(ctx context.Context, token string) error {
	query := `DELETE FROM device_endpoints WHERE token = $1`

	_, err := r.pool.Exec(ctx, query, token)
	return err
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
