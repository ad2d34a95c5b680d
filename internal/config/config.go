package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"routinebot/clients/ai"
	"routinebot/clients/chatwoot"
)

// Config содержит конфигурацию приложения
type Config struct {
	AppName string
	Version string
	LogMode string // prod - JSON, иначе консоль

	// Telegram
	BotToken   string
	WebhookURL string // пусто - long polling

	// Генеративная модель
	AIProvider       ai.Provider
	GeminiAPIKey     string
	GeminiModel      string
	GroqAPIKey       string
	OpenRouterAPIKey string
	OllamaURL        string
	OllamaModel      string

	// Google Slides
	GoogleCredentials      string // JSON ключа или путь к файлу
	GoogleTokenPath        string // OAuth-токен пользователя; пусто - сервисный аккаунт
	TemplatePresentationID string
	RoutineLayoutID        string
	LayoutConfigPath       string

	// HTTP API
	HTTPAddr string

	// Сессии
	PendingTTL time.Duration

	// Chatwoot (необязательно)
	Chatwoot chatwoot.Config
}

// Load загружает конфигурацию из переменных окружения или .env файла
func Load() (*Config, error) {
	return LoadFile(".env")
}

// LoadFile как Load, но с явным путём к .env. Переменные окружения важнее файла.
func LoadFile(envPath string) (*Config, error) {
	cfg, err := read(envPath)
	if err != nil {
		return nil, err
	}
	if cfg.BotToken == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN не задан")
	}
	return cfg, nil
}

// LoadOffline конфигурация для утилит без Telegram: токен бота не обязателен
func LoadOffline(envPath string) (*Config, error) {
	return read(envPath)
}

func read(envPath string) (*Config, error) {
	env, err := loadEnvFile(envPath)
	if err != nil {
		env = make(map[string]string)
	}

	getEnv := func(key, defaultValue string) string {
		if value := os.Getenv(key); value != "" {
			return value
		}
		if value, ok := env[key]; ok && value != "" {
			return value
		}
		return defaultValue
	}

	provider, err := ai.ParseProvider(getEnv("AI_PROVIDER", string(ai.ProviderGemini)))
	if err != nil {
		return nil, err
	}

	ttl, err := time.ParseDuration(getEnv("PENDING_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("PENDING_TTL: %w", err)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("PENDING_TTL должен быть положительным")
	}

	cfg := &Config{
		AppName: getEnv("APP_NAME", "Rutina Bot"),
		Version: getEnv("APP_VERSION", "2.0.0"),
		LogMode: getEnv("LOG_MODE", "dev"),

		BotToken:   getEnv("TELEGRAM_BOT_TOKEN", ""),
		WebhookURL: getEnv("WEBHOOK_URL", ""),

		AIProvider:       provider,
		GeminiAPIKey:     getEnv("GEMINI_API_KEY", ""),
		GeminiModel:      getEnv("GEMINI_MODEL", ai.DefaultGeminiModel),
		GroqAPIKey:       getEnv("GROQ_API_KEY", ""),
		OpenRouterAPIKey: getEnv("OPENROUTER_API_KEY", ""),
		OllamaURL:        getEnv("OLLAMA_URL", ai.DefaultOllamaURL),
		OllamaModel:      getEnv("OLLAMA_MODEL", ai.DefaultOllamaModel),

		GoogleCredentials:      getEnv("GOOGLE_CREDENTIALS", "credentials.json"),
		GoogleTokenPath:        getEnv("GOOGLE_TOKEN_PATH", ""),
		TemplatePresentationID: getEnv("TEMPLATE_PRESENTATION_ID", ""),
		RoutineLayoutID:        getEnv("ROUTINE_LAYOUT_ID", ""),
		LayoutConfigPath:       getEnv("LAYOUT_CONFIG_PATH", "layout.yaml"),

		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),

		PendingTTL: ttl,

		Chatwoot: chatwoot.Config{
			BaseURL:   getEnv("CHATWOOT_URL", ""),
			AccountID: getEnv("CHATWOOT_ACCOUNT_ID", ""),
			InboxID:   getEnv("CHATWOOT_INBOX_ID", ""),
			APIToken:  getEnv("CHATWOOT_API_TOKEN", ""),
		},
	}

	return cfg, nil
}

// ProviderConfig параметры для ai.NewBackend
func (c *Config) ProviderConfig() ai.ProviderConfig {
	return ai.ProviderConfig{
		Provider:         c.AIProvider,
		GeminiAPIKey:     c.GeminiAPIKey,
		GeminiModel:      c.GeminiModel,
		GroqAPIKey:       c.GroqAPIKey,
		OpenRouterAPIKey: c.OpenRouterAPIKey,
		OllamaURL:        c.OllamaURL,
		OllamaModel:      c.OllamaModel,
	}
}

// UseWebhook true, если задан публичный адрес вебхука
func (c *Config) UseWebhook() bool {
	return c.WebhookURL != ""
}

// loadEnvFile читает .env файл
func loadEnvFile(filename string) (map[string]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	env := make(map[string]string)
	scanner := bufio.NewScanner(file)
	// ключ сервисного аккаунта в одну строку длиннее буфера по умолчанию
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		value = strings.Trim(value, `"'`)

		env[key] = value
	}

	return env, scanner.Err()
}
