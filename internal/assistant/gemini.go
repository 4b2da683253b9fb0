package assistant

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"reikningar/internal/core"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-2.5-flash"

// GeminiCompleter sends the prompt to Gemini as a single user message.
type GeminiCompleter struct {
	client *genai.Client
	model  string
}

// NewGeminiCompleter creates a Gemini client. An empty apiKey falls back to
// the GOOGLE_API_KEY / GEMINI_API_KEY environment handled by genai.
func NewGeminiCompleter(ctx context.Context, apiKey, model string) (*GeminiCompleter, error) {
	if model == "" {
		model = DefaultGeminiModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create genai client: %v", core.ErrExternalService, err)
	}
	return &GeminiCompleter{client: client, model: model}, nil
}

func (g *GeminiCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	if g.client == nil {
		return "", errors.New("gemini client not initialized")
	}
	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: prompt}},
		},
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("%w: generate content: %v", core.ErrExternalService, err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("%w: empty response from model", core.ErrExternalService)
	}
	return text, nil
}
