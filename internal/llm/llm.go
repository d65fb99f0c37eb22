// Package llm is the boundary to the hosted language model.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// ModelName is the hosted model used for both extraction and analysis.
const ModelName = "gemini-2.5-pro"

var (
	ErrMissingAPIKey = errors.New("llm: api key is not configured")
	ErrEmptyResponse = errors.New("llm: model returned no text")
)

// Model sends a single prompt and returns the text of the reply.
type Model interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ModelFunc adapts a function to Model.
type ModelFunc func(ctx context.Context, prompt string) (string, error)

func (f ModelFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

type GeminiModel struct {
	client *genai.Client
	name   string
}

// NewGeminiModel builds a client for the Gemini API. The key is required and
// never read implicitly from the environment here.
func NewGeminiModel(ctx context.Context, apiKey string) (*GeminiModel, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingAPIKey
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("initialize gemini client: %w", err)
	}
	return &GeminiModel{client: client, name: ModelName}, nil
}

func (m *GeminiModel) Name() string {
	return m.name
}

func (m *GeminiModel) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := m.client.Models.GenerateContent(ctx, m.name, genai.Text(prompt), nil)
	if err != nil {
		return "", err
	}
	text := resp.Text()
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
