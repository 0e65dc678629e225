package llm

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/coach-directory/internal/resilience"
	"github.com/sells-group/coach-directory/pkg/anthropic"
)

// Default Anthropic settings.
const (
	DefaultAnthropicModel = "claude-haiku-4-5-20251001"
	DefaultMaxTokens      = 4096
)

// AnthropicGenerator runs extraction prompts against the Messages API.
type AnthropicGenerator struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	system    string
	phase     string
}

// AnthropicOption configures an AnthropicGenerator.
type AnthropicOption func(*AnthropicGenerator)

// WithModel overrides the model ID.
func WithModel(model string) AnthropicOption {
	return func(g *AnthropicGenerator) {
		if model != "" {
			g.model = model
		}
	}
}

// WithMaxTokens overrides the output token limit.
func WithMaxTokens(n int64) AnthropicOption {
	return func(g *AnthropicGenerator) {
		if n > 0 {
			g.maxTokens = n
		}
	}
}

// WithSystemPrompt replaces the extraction system prompt.
func WithSystemPrompt(system string) AnthropicOption {
	return func(g *AnthropicGenerator) {
		g.system = system
	}
}

// NewAnthropicGenerator wraps client.
func NewAnthropicGenerator(client anthropic.Client, opts ...AnthropicOption) *AnthropicGenerator {
	g := &AnthropicGenerator{
		client:    client,
		model:     DefaultAnthropicModel,
		maxTokens: DefaultMaxTokens,
		system:    ExtractionSystemPrompt,
		phase:     "extract",
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate sends prompt as a single user turn. HTTP failures are mapped onto
// the resilience taxonomy so callers can tell credential errors apart.
func (g *AnthropicGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	temp := 0.1
	req := anthropic.MessageRequest{
		Model:       g.model,
		MaxTokens:   g.maxTokens,
		Messages:    []anthropic.Message{{Role: "user", Content: prompt}},
		Temperature: &temp,
	}
	if g.system != "" {
		req.System = anthropic.BuildCachedSystemBlocks(g.system, "5m")
	}

	resp, err := g.client.CreateMessage(ctx, req)
	if err != nil {
		if code, ok := anthropic.StatusCode(err); ok {
			return "", resilience.ClassifyStatus("anthropic", code, err)
		}
		return "", eris.Wrap(err, "llm: anthropic generate")
	}

	resp.Usage.LogCost(g.model, g.phase)
	return resp.Text(), nil
}
