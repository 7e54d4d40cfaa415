package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// BlobRepository keeps the store's serialized collections in storage_blobs.
// It implements store.Storage.
type BlobRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewBlobRepository creates a new repository instance
func NewBlobRepository(db *sqlx.DB) *BlobRepository {
	return &BlobRepository{db: db, now: time.Now}
}

// Load returns the blob stored under key
func (r *BlobRepository) Load(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := r.db.GetContext(ctx, &value, r.db.Rebind("SELECT value FROM storage_blobs WHERE key = ?"), key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to load blob %s: %w", key, err)
	}
	return value, true, nil
}

// Save inserts or overwrites the blob stored under key
func (r *BlobRepository) Save(ctx context.Context, key string, blob []byte) error {
	query := r.db.Rebind(`
		INSERT INTO storage_blobs (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`)
	if _, err := r.db.ExecContext(ctx, query, key, blob, r.now().UTC()); err != nil {
		return fmt.Errorf("failed to save blob %s: %w", key, err)
	}
	return nil
}

// UpdatedAt returns when key was last written
func (r *BlobRepository) UpdatedAt(ctx context.Context, key string) (time.Time, bool, error) {
	var updated time.Time
	err := r.db.GetContext(ctx, &updated, r.db.Rebind("SELECT updated_at FROM storage_blobs WHERE key = ?"), key)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to read blob timestamp %s: %w", key, err)
	}
	return updated, true, nil
}
