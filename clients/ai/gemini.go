package ai

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// DefaultGeminiModel модель по умолчанию
const DefaultGeminiModel = "gemini-2.5-flash"

// GeminiBackend генерация через Gemini API
type GeminiBackend struct {
	client *genai.Client
	model  string
}

// NewGeminiBackend создаёт клиента Gemini
func NewGeminiBackend(ctx context.Context, apiKey, model string) (*GeminiBackend, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY не задан")
	}
	if model == "" {
		model = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка создания клиента Gemini: %w", err)
	}
	return &GeminiBackend{client: client, model: model}, nil
}

// Model имя модели
func (g *GeminiBackend) Model() string {
	return g.model
}

func (g *GeminiBackend) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(userPrompt), &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemPrompt}}},
	})
	if err != nil {
		return "", fmt.Errorf("ошибка Gemini: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", ErrEmpty
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", ErrEmpty
	}
	return text, nil
}
