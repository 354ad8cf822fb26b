package analysis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bryanwahyu/docmind/internal/application"
	"github.com/bryanwahyu/docmind/internal/domain/ai"
	"github.com/bryanwahyu/docmind/internal/domain/documents"
	"github.com/bryanwahyu/docmind/internal/domain/results"
	"github.com/bryanwahyu/docmind/internal/pkg/logger"
)

// TextExtractor turns a stored document into plain text.
type TextExtractor interface {
	ExtractStored(ctx context.Context, store documents.ByteStore, key, filename string) (string, error)
}

// Service runs a single analysis type against a single document.
// Concurrent runs for the same (document, type) are not deduplicated: each
// one makes its own backend call and appends its own Result.
type Service struct {
	Docs      documents.Repository
	Results   results.Repository
	Store     documents.ByteStore
	Extractor TextExtractor
	Prompts   ai.PromptSource
	LLM       ai.Completer
	Clock     application.Clock
	Log       *logger.Logger
}

// Run validates the type, loads and extracts the document, calls the model once
// and appends a new Result. Nothing is persisted when any step fails.
func (s *Service) Run(ctx context.Context, documentID string, analysisType string) (*results.Result, error) {
	if !s.Prompts.Has(analysisType) {
		return nil, fmt.Errorf("%w: %q (allowed: %s)", ai.ErrUnknownAnalysisType, analysisType, strings.Join(s.Prompts.Types(), ", "))
	}

	doc, err := s.document(ctx, documentID)
	if err != nil {
		return nil, err
	}

	text, err := s.extract(ctx, doc)
	if err != nil {
		return nil, err
	}

	system, err := s.Prompts.SystemPrompt(analysisType)
	if err != nil {
		return nil, err
	}
	user, err := s.Prompts.UserContent(analysisType, text)
	if err != nil {
		return nil, err
	}

	log := logger.OrNop(s.Log).With("document_id", documentID, "analysis_type", analysisType)
	start := time.Now()
	content, err := s.LLM.Complete(ctx, system, user, "")
	if err != nil {
		log.Warn("analysis failed", "duration_ms", time.Since(start).Milliseconds(), "error", err)
		return nil, err
	}

	res := &results.Result{
		ID:           results.ResultID(uuid.New().String()),
		DocumentID:   string(doc.ID),
		AnalysisType: results.AnalysisType(analysisType),
		Content:      content,
		CreatedAt:    s.now(),
	}
	if err := s.Results.Create(ctx, res); err != nil {
		return nil, fmt.Errorf("save result: %w", err)
	}
	log.Info("analysis completed", "result_id", res.ID, "duration_ms", time.Since(start).Milliseconds(), "chars", len(content))
	return res, nil
}

// ListResults returns the document's results, newest first.
func (s *Service) ListResults(ctx context.Context, documentID string) ([]*results.Result, error) {
	if _, err := s.document(ctx, documentID); err != nil {
		return nil, err
	}
	list, err := s.Results.ListByDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []*results.Result{}
	}
	return list, nil
}

// AnalysisTypes lists the registered analysis types.
func (s *Service) AnalysisTypes() []string {
	return s.Prompts.Types()
}

func (s *Service) document(ctx context.Context, id string) (*documents.Document, error) {
	doc, err := s.Docs.Get(ctx, documents.DocumentID(id))
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: %s", ai.ErrDocumentNotFound, id)
	}
	return doc, nil
}

func (s *Service) extract(ctx context.Context, doc *documents.Document) (string, error) {
	return s.Extractor.ExtractStored(ctx, s.Store, doc.StorageKey, doc.Filename)
}

func (s *Service) now() time.Time {
	if s.Clock == nil {
		return time.Now()
	}
	return s.Clock.Now()
}
