package documents

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bryanwahyu/docmind/internal/application"
	"github.com/bryanwahyu/docmind/internal/domain/ai"
	"github.com/bryanwahyu/docmind/internal/domain/documents"
	"github.com/bryanwahyu/docmind/internal/domain/results"
	"github.com/bryanwahyu/docmind/internal/pkg/logger"
)

// FormatChecker reports whether a filename's extension can be extracted.
type FormatChecker interface {
	Supports(filename string) bool
}

// Service manages uploaded documents and their stored bytes.
type Service struct {
	Docs    documents.Repository
	Results results.Repository
	Store   documents.ByteStore
	Formats FormatChecker
	Clock   application.Clock
	Log     *logger.Logger
}

var unsafeChars = regexp.MustCompile(`[^\w\s\-.]`)

// SafeName strips everything but word characters, whitespace, '-' and '.'.
// An empty result becomes "document".
func SafeName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	name = strings.TrimSpace(unsafeChars.ReplaceAllString(name, ""))
	if name == "" || name == "." || name == ".." {
		return "document"
	}
	return name
}

// StorageKey builds the unique storage name for an upload.
func StorageKey(filename string) string {
	return strings.ReplaceAll(uuid.New().String(), "-", "") + "_" + SafeName(filename)
}

// Upload stores the bytes and records the document. No row is written when storing fails.
func (s *Service) Upload(ctx context.Context, userID, filename string, r io.Reader, size int64) (*documents.Document, error) {
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return nil, fmt.Errorf("%w: empty filename", ai.ErrUnsupportedFormat)
	}
	if s.Formats != nil && !s.Formats.Supports(filename) {
		return nil, fmt.Errorf("%w: %s", ai.ErrUnsupportedFormat, filepath.Ext(filename))
	}

	key := StorageKey(filename)
	if err := s.Store.Put(ctx, key, r, size); err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}

	doc := &documents.Document{
		ID:         documents.DocumentID(uuid.New().String()),
		UserID:     userID,
		Filename:   filename,
		StorageKey: key,
		CreatedAt:  s.now(),
	}
	log := logger.OrNop(s.Log)
	if err := s.Docs.Save(ctx, doc); err != nil {
		if rmErr := s.Store.Remove(ctx, key); rmErr != nil {
			log.Warn("remove orphaned upload", "storage_key", key, "error", rmErr)
		}
		return nil, fmt.Errorf("save document: %w", err)
	}
	log.Info("document uploaded", "document_id", doc.ID, "user_id", userID, "filename", filename)
	return doc, nil
}

func (s *Service) Get(ctx context.Context, id string) (*documents.Document, error) {
	doc, err := s.Docs.Get(ctx, documents.DocumentID(id))
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: %s", ai.ErrDocumentNotFound, id)
	}
	return doc, nil
}

// ListByUser returns the user's documents, newest first.
func (s *Service) ListByUser(ctx context.Context, userID string, limit int) ([]*documents.Document, error) {
	list, err := s.Docs.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []*documents.Document{}
	}
	return list, nil
}

// Delete removes the results, then the document row, then the stored bytes.
// Failing to remove the bytes is logged and otherwise ignored.
func (s *Service) Delete(ctx context.Context, id string) error {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Results.DeleteByDocument(ctx, id); err != nil {
		return fmt.Errorf("delete results: %w", err)
	}
	if err := s.Docs.Delete(ctx, doc.ID); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	log := logger.OrNop(s.Log).With("document_id", id)
	if err := s.Store.Remove(ctx, doc.StorageKey); err != nil && !errors.Is(err, ai.ErrSourceNotFound) {
		log.Warn("remove document bytes", "storage_key", doc.StorageKey, "error", err)
	}
	log.Info("document deleted")
	return nil
}

func (s *Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now()
}
