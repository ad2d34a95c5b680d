package ai

import (
	"context"
	"fmt"
	"strings"
)

// Provider тип AI провайдера
type Provider string

const (
	ProviderGemini     Provider = "gemini"
	ProviderGroq       Provider = "groq"
	ProviderOpenRouter Provider = "openrouter"
	ProviderOllama     Provider = "ollama"
	// ProviderRules без модели, разбор регулярными выражениями
	ProviderRules Provider = "rules"
)

// Backend генеративная модель
type Backend interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	Model() string
}

// ProviderConfig конфигурация провайдера
type ProviderConfig struct {
	Provider         Provider
	GeminiAPIKey     string
	GeminiModel      string
	GroqAPIKey       string
	OpenRouterAPIKey string
	OllamaURL        string
	OllamaModel      string
}

// ParseProvider разбирает имя провайдера; пустое значение - gemini
func ParseProvider(s string) (Provider, error) {
	switch p := Provider(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return ProviderGemini, nil
	case ProviderGemini, ProviderGroq, ProviderOpenRouter, ProviderOllama, ProviderRules:
		return p, nil
	default:
		return "", fmt.Errorf("неизвестный AI_PROVIDER %q", s)
	}
}

// NewBackend создаёт бэкенд по конфигурации. Для ProviderRules возвращает nil без ошибки.
func NewBackend(ctx context.Context, cfg ProviderConfig) (Backend, error) {
	switch cfg.Provider {
	case ProviderGemini, "":
		g, err := NewGeminiBackend(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, err
		}
		return g, nil
	case ProviderGroq:
		if cfg.GroqAPIKey == "" {
			return nil, fmt.Errorf("GROQ_API_KEY не задан")
		}
		return NewChatBackend(GroqAPIURL, cfg.GroqAPIKey, DefaultGroqModel), nil
	case ProviderOpenRouter:
		if cfg.OpenRouterAPIKey == "" {
			return nil, fmt.Errorf("OPENROUTER_API_KEY не задан")
		}
		return NewChatBackend(OpenRouterAPIURL, cfg.OpenRouterAPIKey, DefaultOpenRouterModel), nil
	case ProviderOllama:
		model := cfg.OllamaModel
		if model == "" {
			model = DefaultOllamaModel
		}
		return NewChatBackend(ollamaChatURL(cfg.OllamaURL), "", model), nil
	case ProviderRules:
		return nil, nil
	default:
		return nil, fmt.Errorf("неизвестный провайдер %q", cfg.Provider)
	}
}

// GetProviderName возвращает название провайдера
func GetProviderName(p Provider) string {
	switch p {
	case ProviderGemini, "":
		return "Google Gemini"
	case ProviderGroq:
		return "Groq"
	case ProviderOpenRouter:
		return "OpenRouter"
	case ProviderOllama:
		return "Ollama (локальный)"
	case ProviderRules:
		return "Правила (без модели)"
	default:
		return string(p)
	}
}
