package assist

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

const (
	defaultTemperature = 0.7
	defaultMaxTokens   = 2048
)

// Assistant turns a composed prompt into a model reply under the tier's
// model selection policy.
type Assistant struct {
	llm         LLMClient
	models      ModelConfig
	logger      *zap.Logger
	temperature float64
	maxTokens   int64
}

func NewAssistant(llm LLMClient, models ModelConfig, logger *zap.Logger) (*Assistant, error) {
	if llm == nil {
		return nil, errors.New("llm client is required")
	}
	if models.Default == "" {
		return nil, errors.New("default model is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assistant{
		llm:         llm,
		models:      models,
		logger:      logger,
		temperature: defaultTemperature,
		maxTokens:   defaultMaxTokens,
	}, nil
}

// GenResult is one raw model reply plus the metadata the caller reports back
// to the user.
type GenResult struct {
	Text  string
	Model string
	Usage *Usage
}

// Generate sends the composed request to the backend. Any backend failure
// comes back as an *UpstreamError; retrying is the caller's decision.
func (a *Assistant) Generate(ctx context.Context, c Composed, premium, power bool) (GenResult, error) {
	model := a.models.Select(premium, power)

	msgs := []Message{{Role: "system", Content: c.System}}
	if c.Context != "" {
		msgs = append(msgs, Message{Role: "user", Content: "Context:\n" + c.Context})
	}
	msgs = append(msgs, Message{Role: "user", Content: c.Prompt})

	res, err := a.llm.Complete(ctx, Request{
		Model:       model,
		Messages:    msgs,
		Temperature: a.temperature,
		MaxTokens:   a.maxTokens,
	})
	if err != nil {
		return GenResult{}, &UpstreamError{Detail: err.Error()}
	}
	a.logger.Debug("model reply",
		zap.String("feature", c.Feature),
		zap.String("model", model),
		zap.Int("prompt_chars", len(c.Prompt)),
		zap.Int("context_chars", len(c.Context)),
		zap.Int("reply_chars", len(res.Text)))
	return GenResult{Text: res.Text, Model: model, Usage: res.Usage}, nil
}
