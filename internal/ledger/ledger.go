// Package ledger keeps a record of every blob the upload gateway created, so
// images orphaned by a failed record save can be found later.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Entry is one uploaded blob.
type Entry struct {
	ID           int64     `json:"id"`
	BlobKey      string    `json:"blobKey"`
	URL          string    `json:"url"`
	OriginalName string    `json:"originalName"`
	ContentType  string    `json:"contentType"`
	SizeBytes    int64     `json:"sizeBytes"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Repository handles ledger persistence.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Repository with the given connection pool.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Record inserts e and returns it with its id and timestamp filled in.
func (r *Repository) Record(ctx context.Context, e Entry) (*Entry, error) {
	err := r.db.QueryRow(ctx,
		`INSERT INTO uploads (blob_key, url, original_name, content_type, size_bytes)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		e.BlobKey, e.URL, e.OriginalName, e.ContentType, e.SizeBytes,
	).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert upload: %w", err)
	}
	return &e, nil
}

// Recent returns up to limit entries, newest first.
func (r *Repository) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, blob_key, url, original_name, content_type, size_bytes, created_at
		 FROM uploads
		 ORDER BY created_at DESC, id DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query uploads: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.BlobKey, &e.URL, &e.OriginalName, &e.ContentType, &e.SizeBytes, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan upload: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate uploads: %w", err)
	}
	return entries, nil
}
