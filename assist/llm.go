package assist

import "context"

// LLMClient abstracts the language-model backend so it can be swapped or
// mocked.
type LLMClient interface {
	Complete(ctx context.Context, req Request) (Result, error)
}

// Message is one entry of a chat-style request.
type Message struct {
	Role    string // "system", "user" or "assistant"
	Content string
}

// Request is a single generation call.
type Request struct {
	Model       string
	Messages    []Message
	Temperature float64
	MaxTokens   int64
}

// Usage reports token consumption of one call, when the backend provides it.
type Usage struct {
	PromptTokens     int64 `json:"prompt_tokens"`
	CompletionTokens int64 `json:"completion_tokens"`
	TotalTokens      int64 `json:"total_tokens"`
}

// Result is the raw outcome of one generation call.
type Result struct {
	Text  string
	Usage *Usage
}

// LLMSettings carries the provider configuration for concrete clients.
type LLMSettings struct {
	Provider string
	APIKey   string
	BaseURL  string
}

// UpstreamError wraps a non-success response from the model backend. The
// raw detail is surfaced for diagnosis; the call is not retried here.
type UpstreamError struct {
	Detail string
}

func (e *UpstreamError) Error() string {
	return "model backend: " + e.Detail
}

// ModelConfig names the models available per tier.
type ModelConfig struct {
	Default string
	Power   string
}

// Select picks the higher-capability model only for premium users that
// explicitly opted in; everything else gets the default.
func (m ModelConfig) Select(premium, power bool) string {
	if premium && power && m.Power != "" {
		return m.Power
	}
	return m.Default
}
