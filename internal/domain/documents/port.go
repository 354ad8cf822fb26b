package documents

import (
	"context"
	"io"
)

// Repository port for document metadata. Get returns (nil, nil) when the id is unknown.
type Repository interface {
	Save(ctx context.Context, d *Document) error
	Get(ctx context.Context, id DocumentID) (*Document, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]*Document, error)
	// Delete removes the document row. Callers delete its results first.
	Delete(ctx context.Context, id DocumentID) error
}

// ByteStore holds the raw document bytes.
// Open fails with ai.ErrSourceNotFound when nothing is stored under key.
type ByteStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Remove(ctx context.Context, key string) error
}
