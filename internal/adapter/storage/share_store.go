// internal/adapter/storage/share_store.go

package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"poidash/internal/domain/dashboard"
)

// ErrNotFound is returned when a share does not exist
var ErrNotFound = dashboard.ErrShareNotFound

const schema = `
	CREATE TABLE IF NOT EXISTS dashboard_shares (
		id         UUID PRIMARY KEY,
		query      TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)
`

// ShareStore implements dashboard.ShareStore on Postgres
type ShareStore struct {
	db *pgxpool.Pool
}

// NewShareStore creates a new share store
func NewShareStore(db *pgxpool.Pool) *ShareStore {
	return &ShareStore{
		db: db,
	}
}

// EnsureSchema creates the shares table if it is missing
func (s *ShareStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("error creating shares table: %w", err)
	}
	return nil
}

// SaveShare stores the normalized persisted query under a new ID
func (s *ShareStore) SaveShare(ctx context.Context, query string) (*dashboard.Share, error) {
	share := newShare(query)

	_, err := s.db.Exec(
		ctx,
		`INSERT INTO dashboard_shares (id, query, created_at) VALUES ($1, $2, $3)`,
		share.ID,
		share.Query,
		share.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("error saving share: %w", err)
	}

	return share, nil
}

// GetShare retrieves a share by ID
func (s *ShareStore) GetShare(ctx context.Context, id string) (*dashboard.Share, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	var share dashboard.Share
	err := s.db.QueryRow(
		ctx,
		`SELECT id::text, query, created_at FROM dashboard_shares WHERE id = $1`,
		id,
	).Scan(&share.ID, &share.Query, &share.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error querying share: %w", err)
	}

	return &share, nil
}

// newShare normalizes the query so equivalent filters share one form
func newShare(query string) *dashboard.Share {
	filter, _ := dashboard.ParseQuery(query)
	return &dashboard.Share{
		ID:        uuid.New().String(),
		Query:     filter.Encode(),
		CreatedAt: time.Now().UTC(),
	}
}

var _ dashboard.ShareStore = (*ShareStore)(nil)
