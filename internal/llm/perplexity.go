package llm

import (
	"context"
	"errors"

	"github.com/rotisserie/eris"

	"github.com/sells-group/coach-directory/internal/resilience"
	"github.com/sells-group/coach-directory/pkg/perplexity"
)

// PerplexityGenerator runs prompts against a search-backed chat model.
type PerplexityGenerator struct {
	client perplexity.Client
	model  string
}

// NewPerplexityGenerator wraps client. An empty model defers to the
// client's configured default.
func NewPerplexityGenerator(client perplexity.Client, model string) *PerplexityGenerator {
	return &PerplexityGenerator{client: client, model: model}
}

// Generate returns only the answer text.
func (g *PerplexityGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	res, err := g.Search(ctx, prompt)
	if err != nil {
		return "", err
	}
	return res.Text, nil
}

// Search returns the answer text and the citation URLs.
func (g *PerplexityGenerator) Search(ctx context.Context, prompt string) (*SearchResult, error) {
	temp := 0.1
	resp, err := g.client.ChatCompletion(ctx, perplexity.ChatCompletionRequest{
		Model:       g.model,
		Messages:    []perplexity.Message{{Role: "user", Content: prompt}},
		Temperature: &temp,
	})
	if err != nil {
		var apiErr *perplexity.APIError
		if errors.As(err, &apiErr) {
			return nil, resilience.ClassifyStatus("perplexity", apiErr.StatusCode, err)
		}
		return nil, eris.Wrap(err, "llm: perplexity search")
	}
	return &SearchResult{Text: resp.Text(), Citations: resp.Citations}, nil
}
