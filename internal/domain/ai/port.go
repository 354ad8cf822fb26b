package ai

import "context"

// Completer sends one system+user exchange to a chat-completion backend.
// An empty model selects the backend default.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userContent, model string) (string, error)
}

// PromptSource resolves analysis types to their prompt pair.
type PromptSource interface {
	Has(analysisType string) bool
	SystemPrompt(analysisType string) (string, error)
	UserContent(analysisType, text string) (string, error)
	Types() []string
}

// MasterPromptSource returns the consolidated-report system prompt. Implementations
// must not cache: the asset is editable while the service runs.
type MasterPromptSource interface {
	Load() (string, error)
}
