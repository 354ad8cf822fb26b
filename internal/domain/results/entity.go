package results

import "time"

// ResultID identifier type
type ResultID string

// AnalysisType tag, e.g. summary, action_items, risks, explain_simple.
// The valid set is owned by the prompt registry.
type AnalysisType string

// Result is one persisted outcome of running an AnalysisType against a Document.
// Results are append-only.
type Result struct {
	ID           ResultID     `json:"id"`
	DocumentID   string       `json:"document_id"`
	AnalysisType AnalysisType `json:"analysis_type"`
	Content      string       `json:"content"`
	CreatedAt    time.Time    `json:"created_at"`
}
