package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	GroqAPIURL       = "https://api.groq.com/openai/v1/chat/completions"
	OpenRouterAPIURL = "https://openrouter.ai/api/v1/chat/completions"

	DefaultGroqModel       = "llama-3.3-70b-versatile"
	DefaultOpenRouterModel = "google/gemini-2.5-flash"
	DefaultOllamaModel     = "qwen2.5:7b"
	DefaultOllamaURL       = "http://localhost:11434"
)

var (
	ErrUnauthorized = errors.New("ai: не авторизован")
	ErrRateLimited  = errors.New("ai: превышен лимит запросов")
	ErrUnavailable  = errors.New("ai: сервис недоступен")
	ErrEmpty        = errors.New("ai: пустой ответ")
)

// Message - сообщение для чата
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest - запрос к API
type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

// ChatResponse - ответ от API
type ChatResponse struct {
	Choices []struct {
		Message      Message `json:"message"`
		FinishReason string  `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// ChatBackend клиент OpenAI-совместимого chat/completions (Groq, OpenRouter, Ollama)
type ChatBackend struct {
	url        string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewChatBackend создаёт клиент; apiKey может быть пустым (Ollama)
func NewChatBackend(url, apiKey, model string) *ChatBackend {
	return &ChatBackend{
		url:    url,
		apiKey: apiKey,
		model:  model,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Model имя модели
func (c *ChatBackend) Model() string {
	return c.model
}

// Generate отправляет системный и пользовательский промпт, возвращает текст ответа
func (c *ChatBackend) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	req := ChatRequest{
		Model: c.model,
		Messages: []Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: 0.2,
		MaxTokens:   4096,
	}

	jsonData, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("ошибка сериализации: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("ошибка создания запроса: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("ошибка запроса: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", ErrUnauthorized
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", ErrRateLimited
	case resp.StatusCode >= 500:
		return "", ErrUnavailable
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("ошибка чтения ответа: %w", err)
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("ошибка парсинга ответа (HTTP %d): %w", resp.StatusCode, err)
	}

	if chatResp.Error != nil {
		return "", fmt.Errorf("ошибка API: %s", chatResp.Error.Message)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("ошибка API: HTTP %d", resp.StatusCode)
	}

	if len(chatResp.Choices) == 0 || strings.TrimSpace(chatResp.Choices[0].Message.Content) == "" {
		return "", ErrEmpty
	}

	return chatResp.Choices[0].Message.Content, nil
}

// ollamaChatURL OpenAI-совместимый эндпоинт Ollama
func ollamaChatURL(base string) string {
	if base == "" {
		base = DefaultOllamaURL
	}
	return strings.TrimRight(base, "/") + "/v1/chat/completions"
}
