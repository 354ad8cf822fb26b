package sqlite

import (
	"context"
	"database/sql"
	"time"

	domain "github.com/bryanwahyu/docmind/internal/domain/results"
)

type ResultRepository struct {
	db *sql.DB
}

func NewResultRepository(db *sql.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

// Create appends a result row. Results are never updated in place.
func (r *ResultRepository) Create(ctx context.Context, res *domain.Result) error {
	const q = `
INSERT INTO results (id, document_id, analysis_type, content, created_at)
VALUES (?,?,?,?,?);`
	createdAt := res.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, q, res.ID, res.DocumentID, string(res.AnalysisType), res.Content, createdAt.UTC()); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// ListByDocument returns results newest first; insertion order breaks ties.
func (r *ResultRepository) ListByDocument(ctx context.Context, documentID string) ([]*domain.Result, error) {
	const q = `
SELECT id, document_id, analysis_type, content, created_at
FROM results WHERE document_id=?
ORDER BY created_at DESC, seq DESC;`
	rows, err := r.db.QueryContext(ctx, q, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Result
	for rows.Next() {
		var res domain.Result
		var typ string
		if err := rows.Scan(&res.ID, &res.DocumentID, &typ, &res.Content, &res.CreatedAt); err != nil {
			return nil, err
		}
		res.AnalysisType = domain.AnalysisType(typ)
		out = append(out, &res)
	}
	return out, rows.Err()
}

func (r *ResultRepository) DeleteByDocument(ctx context.Context, documentID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM results WHERE document_id=?;`, documentID)
	return err
}
