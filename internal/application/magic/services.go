package magic

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bryanwahyu/docmind/internal/domain/ai"
	"github.com/bryanwahyu/docmind/internal/domain/documents"
	"github.com/bryanwahyu/docmind/internal/domain/results"
	"github.com/bryanwahyu/docmind/internal/infra/budget"
	"github.com/bryanwahyu/docmind/internal/pkg/logger"
)

// Placeholders substituted into the consolidated request when an input is unavailable.
const (
	SourceMissingText = "[Document text unavailable: the source file was not found. The saved analyses are listed below.]"
	UnreadableText    = "[Document text unavailable. The saved analyses are listed below.]"
	EmptyText         = "[Document text is empty or could not be extracted.]"
	NoResultsText     = "[No saved analyses for this document yet. Run an analysis first.]"

	documentHeader = "Original document:\n\n"
	analysisHeader = "Structured analysis (extracted by the system):\n\n"
)

var audienceLabels = map[string]string{
	"business": "business stakeholders",
	"legal":    "legal counsel",
	"manager":  "executive management",
	"student":  "students",
}

// AudienceLabel maps a known audience key to its display label. Unknown values
// come back unchanged.
func AudienceLabel(audience string) string {
	if label, ok := audienceLabels[strings.ToLower(strings.TrimSpace(audience))]; ok {
		return label
	}
	return strings.TrimSpace(audience)
}

type TextExtractor interface {
	ExtractStored(ctx context.Context, store documents.ByteStore, key, filename string) (string, error)
}

// Service builds the consolidated "AI Magic" report from a document and its saved analyses.
// Reports are returned to the caller and never stored.
type Service struct {
	Docs      documents.Repository
	Results   results.Repository
	Store     documents.ByteStore
	Extractor TextExtractor
	Master    ai.MasterPromptSource
	LLM       ai.Completer
	// Zero values fall back to budget.DefaultDocumentChars and budget.DefaultResultChars.
	DocumentBudget budget.Budget
	ResultBudget   budget.Budget
	Log            *logger.Logger
}

// Synthesize makes exactly one backend call. A missing or unreadable source
// degrades to a placeholder instead of failing.
func (s *Service) Synthesize(ctx context.Context, documentID string, audience string) (string, error) {
	doc, err := s.Docs.Get(ctx, documents.DocumentID(documentID))
	if err != nil {
		return "", err
	}
	if doc == nil {
		return "", fmt.Errorf("%w: %s", ai.ErrDocumentNotFound, documentID)
	}

	system, err := s.Master.Load()
	if err != nil {
		return "", err
	}

	log := logger.OrNop(s.Log).With("document_id", documentID)
	docText := s.documentBlock(ctx, doc, log)
	analysisText, err := s.analysisBlock(ctx, documentID)
	if err != nil {
		return "", err
	}

	user := UserContent(docText, analysisText, audience)

	start := time.Now()
	out, err := s.LLM.Complete(ctx, system, user, "")
	if err != nil {
		log.Warn("magic report failed", "duration_ms", time.Since(start).Milliseconds(), "error", err)
		return "", err
	}
	log.Info("magic report generated", "audience", audience, "duration_ms", time.Since(start).Milliseconds(), "chars", len(out))
	return out, nil
}

// UserContent joins the two blocks under their headers and appends the audience
// sentence when audience is not blank.
func UserContent(docText, analysisText, audience string) string {
	var b strings.Builder
	b.WriteString(documentHeader)
	b.WriteString(docText)
	b.WriteString("\n\n")
	b.WriteString(analysisHeader)
	b.WriteString(analysisText)
	if strings.TrimSpace(audience) != "" {
		fmt.Fprintf(&b, "\n\nThe report is intended for the audience: %s. Adapt the tone and wording accordingly.", AudienceLabel(audience))
	}
	return b.String()
}

func (s *Service) documentBlock(ctx context.Context, doc *documents.Document, log *logger.Logger) string {
	text, err := s.Extractor.ExtractStored(ctx, s.Store, doc.StorageKey, doc.Filename)
	if err != nil {
		if errors.Is(err, ai.ErrSourceNotFound) {
			log.Warn("document source missing, using placeholder", "storage_key", doc.StorageKey)
			return SourceMissingText
		}
		log.Warn("document source unreadable, using placeholder", "error", err)
		return UnreadableText
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return EmptyText
	}
	return s.docBudget().Truncate(text)
}

func (s *Service) analysisBlock(ctx context.Context, documentID string) (string, error) {
	list, err := s.Results.ListByDocument(ctx, documentID)
	if err != nil {
		return "", err
	}
	if len(list) == 0 {
		return NoResultsText, nil
	}
	rb := s.resBudget()
	parts := make([]string, 0, len(list))
	for _, r := range list {
		content := rb.Truncate(strings.TrimSpace(r.Content))
		parts = append(parts, fmt.Sprintf("--- %s ---\n%s", r.AnalysisType, content))
	}
	return strings.Join(parts, "\n\n"), nil
}

func (s *Service) docBudget() budget.Budget {
	if s.DocumentBudget.Max <= 0 {
		return budget.Document(0)
	}
	return s.DocumentBudget
}

func (s *Service) resBudget() budget.Budget {
	if s.ResultBudget.Max <= 0 {
		return budget.Result(0)
	}
	return s.ResultBudget
}
