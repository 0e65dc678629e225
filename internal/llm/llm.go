// Package llm adapts the Anthropic and Perplexity clients to the
// text-generation contract used by extraction and discovery.
package llm

import "context"

// Generator produces a free-form completion for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// SearchResult is a web-grounded completion plus the pages it cited.
type SearchResult struct {
	Text      string
	Citations []string
}

// Searcher is a Generator backed by live web search.
type Searcher interface {
	Generator
	Search(ctx context.Context, prompt string) (*SearchResult, error)
}
