package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/coach-directory/internal/model"
	"github.com/sells-group/coach-directory/internal/resilience"
	"github.com/sells-group/coach-directory/pkg/anthropic"
	"github.com/sells-group/coach-directory/pkg/perplexity"
)

func TestAnthropicGenerator_Generate(t *testing.T) {
	client := &mockAnthropicClient{}
	client.On("CreateMessage", mock.Anything, mock.MatchedBy(func(req anthropic.MessageRequest) bool {
		return req.Model == DefaultAnthropicModel &&
			req.MaxTokens == DefaultMaxTokens &&
			len(req.System) == 1 &&
			req.System[0].CacheControl != nil &&
			len(req.Messages) == 1 &&
			req.Messages[0].Role == "user" &&
			req.Messages[0].Content == "list coaches"
	})).Return(&anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: `{"coaches":[]}`}},
		Usage:   anthropic.TokenUsage{InputTokens: 100, OutputTokens: 10},
	}, nil)

	g := NewAnthropicGenerator(client)
	out, err := g.Generate(context.Background(), "list coaches")

	require.NoError(t, err)
	assert.Equal(t, `{"coaches":[]}`, out)
	client.AssertExpectations(t)
}

func TestAnthropicGenerator_Options(t *testing.T) {
	client := &mockAnthropicClient{}
	client.On("CreateMessage", mock.Anything, mock.MatchedBy(func(req anthropic.MessageRequest) bool {
		return req.Model == "claude-sonnet-4-5-20250929" && req.MaxTokens == 1024 && len(req.System) == 0
	})).Return(&anthropic.MessageResponse{}, nil)

	g := NewAnthropicGenerator(client,
		WithModel("claude-sonnet-4-5-20250929"),
		WithMaxTokens(1024),
		WithSystemPrompt(""),
	)
	_, err := g.Generate(context.Background(), "p")

	require.NoError(t, err)
	client.AssertExpectations(t)
}

func TestAnthropicGenerator_CredentialError(t *testing.T) {
	client := &mockAnthropicClient{}
	client.On("CreateMessage", mock.Anything, mock.Anything).Return(nil, &sdk.Error{StatusCode: 401})

	_, err := NewAnthropicGenerator(client).Generate(context.Background(), "p")

	require.Error(t, err)
	assert.True(t, resilience.IsCredential(err))
}

func TestAnthropicGenerator_NetworkError(t *testing.T) {
	client := &mockAnthropicClient{}
	client.On("CreateMessage", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))

	_, err := NewAnthropicGenerator(client).Generate(context.Background(), "p")

	require.Error(t, err)
	assert.False(t, resilience.IsCredential(err))
	assert.Contains(t, err.Error(), "llm: anthropic generate")
}

func TestPerplexityGenerator_Search(t *testing.T) {
	client := &mockPerplexityClient{}
	client.On("ChatCompletion", mock.Anything, mock.MatchedBy(func(req perplexity.ChatCompletionRequest) bool {
		return req.Model == "sonar-pro" && len(req.Messages) == 1 && req.Messages[0].Content == "find staff"
	})).Return(&perplexity.ChatCompletionResponse{
		Choices:   []perplexity.Choice{{Message: perplexity.Message{Role: "assistant", Content: "https://gostate.example.edu/coaches"}}},
		Citations: []string{"https://gostate.example.edu/sports/football/coaches"},
	}, nil)

	g := NewPerplexityGenerator(client, "sonar-pro")
	res, err := g.Search(context.Background(), "find staff")

	require.NoError(t, err)
	assert.Equal(t, "https://gostate.example.edu/coaches", res.Text)
	assert.Equal(t, []string{"https://gostate.example.edu/sports/football/coaches"}, res.Citations)
}

func TestPerplexityGenerator_Generate(t *testing.T) {
	client := &mockPerplexityClient{}
	client.On("ChatCompletion", mock.Anything, mock.Anything).Return(&perplexity.ChatCompletionResponse{
		Choices: []perplexity.Choice{{Message: perplexity.Message{Content: "NAME: Jane Doe"}}},
	}, nil)

	out, err := NewPerplexityGenerator(client, "").Generate(context.Background(), "visit")

	require.NoError(t, err)
	assert.Equal(t, "NAME: Jane Doe", out)
}

func TestPerplexityGenerator_ClassifiesStatus(t *testing.T) {
	tests := []struct {
		name   string
		status int
		check  func(error) bool
	}{
		{"unauthorized", 401, resilience.IsCredential},
		{"rate limited", 429, resilience.IsRateLimit},
		{"server error", 503, resilience.IsTransient},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &mockPerplexityClient{}
			client.On("ChatCompletion", mock.Anything, mock.Anything).
				Return(nil, &perplexity.APIError{StatusCode: tt.status, Body: "{}"})

			_, err := NewPerplexityGenerator(client, "").Generate(context.Background(), "p")

			require.Error(t, err)
			assert.True(t, tt.check(err))
		})
	}
}

func TestExtractionPrompt_Truncates(t *testing.T) {
	content := strings.Repeat("a", MaxPromptContent+500)
	p := ExtractionPrompt("https://gostate.example.edu/staff", content)

	assert.True(t, strings.HasPrefix(p, "Source URL: https://gostate.example.edu/staff\n"))
	assert.Len(t, p, len(ExtractionPrompt("https://gostate.example.edu/staff", ""))+MaxPromptContent)
}

func TestDiscoveryPrompt(t *testing.T) {
	p := DiscoveryPrompt(model.Query{School: "Duke University", Sport: "Football"})
	assert.Contains(t, p, "Duke University Football")
	assert.Contains(t, p, "3-5 directory page URLs")
}

func TestVisitPrompt(t *testing.T) {
	p := VisitPrompt("https://gostanford.com/sports/wsoc/coaches")
	assert.Contains(t, p, "https://gostanford.com/sports/wsoc/coaches")
	assert.Contains(t, p, "NAME:")
	assert.Contains(t, p, "---")
}
