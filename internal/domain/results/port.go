package results

import "context"

// Repository port for persisting and querying results
type Repository interface {
	Create(ctx context.Context, r *Result) error
	// ListByDocument returns results newest first.
	ListByDocument(ctx context.Context, documentID string) ([]*Result, error)
	DeleteByDocument(ctx context.Context, documentID string) error
}
