package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mapme/mapme/internal/model"
)

// PostgresStore implements Store on PostgreSQL.
// Schema lives in migrations/000001_init.up.sql.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a PostgresStore with a connection pool and
// verifies connectivity.
func NewPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	// Connection pool settings
	config.MaxConns = 10
	config.MinConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// GetProfile retrieves a profile by user ID.
func (s *PostgresStore) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	query := `
		SELECT user_id, email, name, avatar_url, created_at, updated_at
		FROM user_profiles
		WHERE user_id = $1
	`

	var p model.Profile
	err := s.pool.QueryRow(ctx, query, userID).Scan(
		&p.UserID,
		&p.Email,
		&p.Name,
		&p.AvatarURL,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return &p, nil
}

// PutProfile writes the full record, overwriting an existing row.
// The handler is responsible for carrying created_at forward.
func (s *PostgresStore) PutProfile(ctx context.Context, profile *model.Profile) error {
	query := `
		INSERT INTO user_profiles (user_id, email, name, avatar_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE SET
			email = EXCLUDED.email,
			name = EXCLUDED.name,
			avatar_url = EXCLUDED.avatar_url,
			created_at = EXCLUDED.created_at,
			updated_at = EXCLUDED.updated_at
	`

	_, err := s.pool.Exec(ctx, query,
		profile.UserID,
		profile.Email,
		profile.Name,
		profile.AvatarURL,
		profile.CreatedAt,
		profile.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to write profile: %w", err)
	}

	return nil
}

// ListSearches returns up to limit entries, most recent first.
func (s *PostgresStore) ListSearches(ctx context.Context, userID string, limit int) ([]*model.SearchEntry, error) {
	query := `
		SELECT user_id, entry_id, created_at, query
		FROM search_entries
		WHERE user_id = $1
		ORDER BY created_at DESC, entry_id DESC
		LIMIT $2
	`

	rows, err := s.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list search entries: %w", err)
	}
	defer rows.Close()

	var entries []*model.SearchEntry
	for rows.Next() {
		var entry model.SearchEntry
		var createdAt int64
		if err := rows.Scan(&entry.UserID, &entry.EntryID, &createdAt, &entry.Query); err != nil {
			return nil, fmt.Errorf("failed to scan search entry: %w", err)
		}
		entry.CreatedAt = strconv.FormatInt(createdAt, 10)
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate search entries: %w", err)
	}

	return entries, nil
}

// PutSearch inserts a new entry. The ULID entry ID keeps two entries
// from the same second from colliding.
func (s *PostgresStore) PutSearch(ctx context.Context, entry *model.SearchEntry) error {
	query := `
		INSERT INTO search_entries (user_id, entry_id, created_at, query)
		VALUES ($1, $2, $3, $4)
	`

	_, err := s.pool.Exec(ctx, query,
		entry.UserID,
		entry.EntryID,
		entry.CreatedAtUnix(),
		entry.Query,
	)
	if err != nil {
		return fmt.Errorf("failed to write search entry: %w", err)
	}

	return nil
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes the connection pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// Pool returns the underlying connection pool.
// Use sparingly - prefer adding methods to PostgresStore.
func (s *PostgresStore) Pool() *pgxpool.Pool {
	return s.pool
}
