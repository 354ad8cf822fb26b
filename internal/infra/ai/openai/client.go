package openai

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/bryanwahyu/docmind/internal/domain/ai"
)

const (
	// DefaultBaseURL is OpenRouter's OpenAI-compatible endpoint.
	DefaultBaseURL = "https://openrouter.ai/api/v1"
	DefaultModel   = "openai/gpt-4o"

	DefaultMaxTokens = 1200
	maxTokensCeiling = 32000

	EnvAPIKey    = "OPENROUTER_API_KEY"
	EnvModel     = "OPENROUTER_MODEL"
	EnvMaxTokens = "OPENROUTER_MAX_TOKENS"
)

// Client is the gateway to the chat-completion backend. The credential, model
// and response cap are read from the environment on every call so a rotated
// key takes effect without a restart.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	// Getenv defaults to os.Getenv.
	Getenv func(string) string
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	hc := &http.Client{}
	if timeout > 0 {
		hc.Timeout = timeout
	}
	return &Client{BaseURL: baseURL, HTTPClient: hc}
}

// Complete sends exactly one request with a system and a user message and
// returns the trimmed assistant text. It does not retry.
func (c *Client) Complete(ctx context.Context, systemPrompt, userContent, model string) (string, error) {
	apiKey := strings.TrimSpace(c.getenv(EnvAPIKey))
	if apiKey == "" {
		return "", ai.ErrMissingCredential
	}
	if model == "" {
		model = strings.TrimSpace(c.getenv(EnvModel))
	}
	if model == "" {
		model = DefaultModel
	}

	cfg := openai.DefaultConfig(apiKey)
	if c.BaseURL != "" {
		cfg.BaseURL = c.BaseURL
	}
	if c.HTTPClient != nil {
		cfg.HTTPClient = c.HTTPClient
	}
	cli := openai.NewClientWithConfig(cfg)

	req := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userContent},
		},
	}
	maxTokens := MaxTokens(c.getenv(EnvMaxTokens))
	// reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens instead of MaxTokens
	if isReasoningModel(model) {
		req.MaxCompletionTokens = maxTokens
	} else {
		req.MaxTokens = maxTokens
	}

	resp, err := cli.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", &ai.BackendError{Op: "chat completion", StatusCode: statusCode(err), Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// MaxTokens parses the configured response cap. Blank, malformed or
// out-of-range values yield DefaultMaxTokens.
func MaxTokens(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultMaxTokens
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 || n > maxTokensCeiling {
		return DefaultMaxTokens
	}
	return n
}

func (c *Client) getenv(key string) string {
	if c.Getenv != nil {
		return c.Getenv(key)
	}
	return os.Getenv(key)
}

func isReasoningModel(model string) bool {
	m := strings.TrimPrefix(strings.ToLower(model), "openai/")
	for _, p := range []string{"o1", "o3", "o4", "gpt-5"} {
		if strings.HasPrefix(m, p) {
			return true
		}
	}
	return false
}

func statusCode(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}
