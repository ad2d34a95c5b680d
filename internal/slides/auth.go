package slides

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	gslides "google.golang.org/api/slides/v1"
)

// Scopes права доступа для копирования шаблона и редактирования слайдов
var Scopes = []string{gslides.PresentationsScope, drive.DriveScope}

// HTTPClient авторизованный клиент Google.
// Без tokenPath - JWT сервисного аккаунта, иначе OAuth-клиент с сохранённым токеном
// (токен обновляется автоматически по refresh_token).
func HTTPClient(ctx context.Context, credentials, tokenPath string) (*http.Client, error) {
	data, err := LoadCredentials(credentials)
	if err != nil {
		return nil, err
	}

	if tokenPath == "" {
		config, err := google.JWTConfigFromJSON(data, Scopes...)
		if err != nil {
			return nil, fmt.Errorf("ошибка конфигурации: %w", err)
		}
		return config.Client(ctx), nil
	}

	config, err := google.ConfigFromJSON(data, Scopes...)
	if err != nil {
		return nil, fmt.Errorf("ошибка парсинга OAuth credentials: %w", err)
	}
	token, err := ReadToken(tokenPath)
	if err != nil {
		return nil, err
	}
	return config.Client(ctx, token), nil
}

// OAuthConfig конфигурация OAuth для получения токена пользователя
func OAuthConfig(credentials, redirectURL string) (*oauth2.Config, error) {
	data, err := LoadCredentials(credentials)
	if err != nil {
		return nil, err
	}
	config, err := google.ConfigFromJSON(data, Scopes...)
	if err != nil {
		return nil, fmt.Errorf("ошибка парсинга OAuth credentials: %w", err)
	}
	config.RedirectURL = redirectURL
	return config, nil
}

// ReadToken читает токен, сохранённый SaveToken
func ReadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("не удалось прочитать токен: %w", err)
	}
	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("ошибка парсинга токена: %w", err)
	}
	if token.RefreshToken == "" && token.AccessToken == "" {
		return nil, fmt.Errorf("токен %s пустой", path)
	}
	return &token, nil
}

// SaveToken сохраняет токен с правами 0600
func SaveToken(path string, token *oauth2.Token) error {
	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("ошибка записи токена: %w", err)
	}
	return nil
}

// LoadCredentials возвращает JSON ключа: значение как есть, если это JSON, иначе читает файл
func LoadCredentials(value string) ([]byte, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, fmt.Errorf("credentials не заданы")
	}
	if strings.HasPrefix(value, "{") {
		data := []byte(value)
		if !json.Valid(data) {
			return nil, fmt.Errorf("credentials: некорректный JSON")
		}
		return data, nil
	}
	data, err := os.ReadFile(value)
	if err != nil {
		return nil, fmt.Errorf("не удалось прочитать credentials: %w", err)
	}
	return data, nil
}
