package user

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

// NewPostgresRepository creates a new PostgreSQL user repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const userColumns = `id, display_name, lat, lon, created_at, updated_at`

// Get retrieves a user by ID.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = $1
	`

	var u User
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&u.ID,
		&u.DisplayName,
		&u.Lat,
		&u.Lon,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return &u, nil
}

// Create creates a new user.
func (r *PostgresRepository) Create(ctx context.Context, u *User) error {
	query := `
		INSERT INTO users (id, display_name, lat, lon, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(ctx, query,
		u.ID,
		u.DisplayName,
		u.Lat,
		u.Lon,
		u.CreatedAt,
		u.UpdatedAt,
	)
	return err
}

// UpdateLocation sets or clears a user's home coordinates.
func (r *PostgresRepository) UpdateLocation(ctx context.Context, id string, lat, lon *float64) error {
	query := `
		UPDATE users
		SET lat = $2, lon = $3, updated_at = $4
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, id, lat, lon, time.Now())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

// ListGeotargetable retrieves all users carrying coordinates.
func (r *PostgresRepository) ListGeotargetable(ctx context.Context) ([]*User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE lat IS NOT NULL AND lon IS NOT NULL
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		var u User
		err := rows.Scan(
			&u.ID,
			&u.DisplayName,
			&u.Lat,
			&u.Lon,
			&u.CreatedAt,
			&u.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		users = append(users, &u)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

// Follow records follower -> followee. Idempotent.
func (r *PostgresRepository) Follow(ctx context.Context, followerID, followeeID string) error {
	query := `
		INSERT INTO follows (follower_id, followee_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (follower_id, followee_id) DO NOTHING
	`

	_, err := r.pool.Exec(ctx, query, followerID, followeeID, time.Now())
	return err
}

// Unfollow removes follower -> followee. Idempotent.
func (r *PostgresRepository) Unfollow(ctx context.Context, followerID, followeeID string) error {
	query := `DELETE FROM follows WHERE follower_id = $1 AND followee_id = $2`

	_, err := r.pool.Exec(ctx, query, followerID, followeeID)
	return err
}

// ListFollowers retrieves the IDs of users following followeeID.
func (r *PostgresRepository) ListFollowers(ctx context.Context, followeeID string) ([]string, error) {
	query := `
		SELECT follower_id
		FROM follows
		WHERE followee_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, followeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var followers []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		followers = append(followers, id)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return followers, nil
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
