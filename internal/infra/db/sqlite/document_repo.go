package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	domain "github.com/bryanwahyu/docmind/internal/domain/documents"
)

type DocumentRepository struct {
	db *sql.DB
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Save inserts a document record
func (r *DocumentRepository) Save(ctx context.Context, d *domain.Document) error {
	const q = `
INSERT INTO documents (id, user_id, filename, storage_key, created_at)
VALUES (?,?,?,?,?);`
	createdAt := d.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx, q, d.ID, stringOrDash(d.UserID), d.Filename, d.StorageKey, createdAt.UTC())
	return err
}

// Get returns (nil, nil) when the document does not exist.
func (r *DocumentRepository) Get(ctx context.Context, id domain.DocumentID) (*domain.Document, error) {
	const q = `
SELECT id, user_id, filename, storage_key, created_at
FROM documents WHERE id=? LIMIT 1;`
	var d domain.Document
	err := r.db.QueryRowContext(ctx, q, id).Scan(&d.ID, &d.UserID, &d.Filename, &d.StorageKey, &d.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// ListByUser returns the user's documents newest first.
func (r *DocumentRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.Document, error) {
	if limit <= 0 {
		limit = 50
	}
	const q = `
SELECT id, user_id, filename, storage_key, created_at
FROM documents WHERE user_id=?
ORDER BY created_at DESC, id DESC
LIMIT ?;`
	rows, err := r.db.QueryContext(ctx, q, stringOrDash(userID), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Document
	for rows.Next() {
		var d domain.Document
		if err := rows.Scan(&d.ID, &d.UserID, &d.Filename, &d.StorageKey, &d.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &d)
	}
	return out, rows.Err()
}

func (r *DocumentRepository) Delete(ctx context.Context, id domain.DocumentID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE id=?;`, id)
	return err
}
