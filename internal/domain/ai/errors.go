package ai

import (
	"errors"
	"fmt"
	"net/http"
)

// Validation and lookup failures. All are terminal for the current call.
var (
	ErrUnknownAnalysisType = errors.New("unknown analysis type")
	ErrDocumentNotFound    = errors.New("document not found")
	ErrSourceNotFound      = errors.New("document source not found")
	ErrUnsupportedFormat   = errors.New("unsupported document format")
	ErrPromptAssetMissing  = errors.New("master prompt asset missing")
	ErrMissingCredential   = errors.New("llm backend credential is not set")
)

// ErrQuotaExceeded indicates the AI provider returned a quota/limit error (HTTP 429 or similar).
var ErrQuotaExceeded = errors.New("ai quota exceeded")

// maxPublicMessage caps error text surfaced to API callers.
const maxPublicMessage = 300

// BackendError wraps any failure of the chat-completion backend: transport errors,
// timeouts, quota exhaustion, malformed responses. It is never retried internally.
type BackendError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *BackendError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("llm backend %s failed (status %d): %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("llm backend %s failed: %v", e.Op, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

// Is reports quota errors as ErrQuotaExceeded so callers can map them to 429.
func (e *BackendError) Is(target error) bool {
	return target == ErrQuotaExceeded && e.StatusCode == http.StatusTooManyRequests
}

// IsBackendError reports whether err carries a *BackendError.
func IsBackendError(err error) bool {
	var be *BackendError
	return errors.As(err, &be)
}

// PublicMessage returns err's message capped for display to a caller.
func PublicMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := []rune(err.Error())
	if len(msg) <= maxPublicMessage {
		return string(msg)
	}
	return string(msg[:maxPublicMessage]) + "..."
}
