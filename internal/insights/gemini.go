// Package insights generates coaching text with the Gemini API
package insights

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/genai"
)

const DefaultModel = "gemini-3-flash-preview"

// ErrNoAPIKey is returned when the client has no key configured
var ErrNoAPIKey = errors.New("gemini api key not configured")

// GeminiClient sends single-turn prompts to one Gemini model
type GeminiClient struct {
	apiKey  string
	model   string
	baseURL string

	once   sync.Once
	client *genai.Client
	err    error
}

// NewGeminiClient creates a client. An empty model selects DefaultModel.
func NewGeminiClient(apiKey, model string) *GeminiClient {
	if model == "" {
		model = DefaultModel
	}
	return &GeminiClient{apiKey: apiKey, model: model}
}

// WithBaseURL points the client at another endpoint
func (c *GeminiClient) WithBaseURL(baseURL string) *GeminiClient {
	c.baseURL = baseURL
	return c
}

// Configured reports whether an API key is set
func (c *GeminiClient) Configured() bool {
	return c != nil && c.apiKey != ""
}

func (c *GeminiClient) genaiClient(ctx context.Context) (*genai.Client, error) {
	c.once.Do(func() {
		c.client, c.err = genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:      c.apiKey,
			Backend:     genai.BackendGeminiAPI,
			HTTPOptions: genai.HTTPOptions{BaseURL: c.baseURL},
		})
	})
	return c.client, c.err
}

// Generate sends a single-turn prompt and returns the concatenated text
func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	if !c.Configured() {
		return "", ErrNoAPIKey
	}
	client, err := c.genaiClient(ctx)
	if err != nil {
		return "", fmt.Errorf("gemini client: %w", err)
	}

	result, err := client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ThinkingConfig: &genai.ThinkingConfig{ThinkingBudget: genai.Ptr[int32](0)},
	})
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return "", errors.New("gemini returned no candidates")
	}

	var sb strings.Builder
	for _, p := range result.Candidates[0].Content.Parts {
		if p != nil && !p.Thought {
			sb.WriteString(p.Text)
		}
	}
	return sb.String(), nil
}
