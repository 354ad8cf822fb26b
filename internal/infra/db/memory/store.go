package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/bryanwahyu/docmind/internal/domain/ai"
	"github.com/bryanwahyu/docmind/internal/domain/documents"
	"github.com/bryanwahyu/docmind/internal/domain/results"
)

// Store keeps documents and results in process memory. Nothing survives a
// restart; it backs the "memory" database driver and the service tests.
type Store struct {
	mu      sync.RWMutex
	docs    map[documents.DocumentID]documents.Document
	results []storedResult
	seq     int64
}

type storedResult struct {
	seq int64
	r   results.Result
}

func New() *Store {
	return &Store{docs: make(map[documents.DocumentID]documents.Document)}
}

// Documents returns the document repository view of s.
func (s *Store) Documents() documents.Repository { return documentRepo{s} }

// Results returns the result repository view of s.
func (s *Store) Results() results.Repository { return resultRepo{s} }

type documentRepo struct{ s *Store }

func (r documentRepo) Save(_ context.Context, d *documents.Document) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.docs[d.ID] = *d
	return nil
}

func (r documentRepo) Get(_ context.Context, id documents.DocumentID) (*documents.Document, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	d, ok := r.s.docs[id]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (r documentRepo) ListByUser(_ context.Context, userID string, limit int) ([]*documents.Document, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []*documents.Document{}
	for _, d := range r.s.docs {
		if d.UserID != userID {
			continue
		}
		d := d
		out = append(out, &d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r documentRepo) Delete(_ context.Context, id documents.DocumentID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.docs, id)
	kept := r.s.results[:0]
	for _, sr := range r.s.results {
		if sr.r.DocumentID != string(id) {
			kept = append(kept, sr)
		}
	}
	r.s.results = kept
	return nil
}

type resultRepo struct{ s *Store }

// Create rejects results whose document does not exist, as the SQL foreign keys do.
func (r resultRepo) Create(_ context.Context, res *results.Result) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.docs[documents.DocumentID(res.DocumentID)]; !ok {
		return fmt.Errorf("%w: %s", ai.ErrDocumentNotFound, res.DocumentID)
	}
	r.s.seq++
	r.s.results = append(r.s.results, storedResult{seq: r.s.seq, r: *res})
	return nil
}

// ListByDocument returns newest first; equal timestamps fall back to insertion order.
func (r resultRepo) ListByDocument(_ context.Context, documentID string) ([]*results.Result, error) {
	r.s.mu.RLock()
	matched := make([]storedResult, 0)
	for _, sr := range r.s.results {
		if sr.r.DocumentID == documentID {
			matched = append(matched, sr)
		}
	}
	r.s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if a.r.CreatedAt.Equal(b.r.CreatedAt) {
			return a.seq > b.seq
		}
		return a.r.CreatedAt.After(b.r.CreatedAt)
	})
	out := make([]*results.Result, len(matched))
	for i := range matched {
		res := matched[i].r
		out[i] = &res
	}
	return out, nil
}

func (r resultRepo) DeleteByDocument(_ context.Context, documentID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := r.s.results[:0]
	for _, sr := range r.s.results {
		if sr.r.DocumentID != documentID {
			kept = append(kept, sr)
		}
	}
	r.s.results = kept
	return nil
}
