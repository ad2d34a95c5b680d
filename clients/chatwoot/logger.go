package chatwoot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"routinebot/internal/logger"
)

// ConversationLogger дублирует переписку бота во внешний сервис.
// Ошибки не возвращаются: журнал переписки не должен ломать обработку.
type ConversationLogger interface {
	LogIncoming(ctx context.Context, sourceID, userName, content string)
	LogOutgoing(ctx context.Context, sourceID, content string)
	Enabled() bool
}

// Config параметры подключения к Chatwoot
type Config struct {
	BaseURL   string
	AccountID string
	InboxID   string
	APIToken  string
}

// Complete все ли параметры заданы
func (c Config) Complete() bool {
	return c.BaseURL != "" && c.AccountID != "" && c.InboxID != "" && c.APIToken != ""
}

// New возвращает Chatwoot логгер или пустой, если конфигурация неполная
func New(cfg Config, log *logger.Logger) ConversationLogger {
	if !cfg.Complete() {
		return Null{}
	}
	return NewClient(cfg, log)
}

// Null ничего не записывает
type Null struct{}

func (Null) LogIncoming(context.Context, string, string, string) {}
func (Null) LogOutgoing(context.Context, string, string)         {}
func (Null) Enabled() bool                                       { return false }

// Client пишет сообщения в Chatwoot через API v1
type Client struct {
	baseURL    string
	accountID  string
	inboxID    int
	apiToken   string
	httpClient *http.Client
	log        *logger.Logger

	mu            sync.Mutex
	conversations map[string]int // source_id -> conversation_id
	contacts      map[string]int // source_id -> contact_id
}

// NewClient создаёт клиента Chatwoot
func NewClient(cfg Config, log *logger.Logger) *Client {
	inboxID, _ := strconv.Atoi(cfg.InboxID)
	return &Client{
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		accountID:     cfg.AccountID,
		inboxID:       inboxID,
		apiToken:      cfg.APIToken,
		httpClient:    &http.Client{Timeout: 10 * time.Second},
		log:           log,
		conversations: make(map[string]int),
		contacts:      make(map[string]int),
	}
}

func (c *Client) Enabled() bool { return true }

// LogIncoming сообщение пользователя; при необходимости создаёт контакт и диалог
func (c *Client) LogIncoming(ctx context.Context, sourceID, userName, content string) {
	convID, err := c.conversation(ctx, sourceID, userName)
	if err != nil {
		c.log.Warn("Chatwoot: не удалось получить диалог", "source_id", sourceID, "error", err)
		return
	}
	if err := c.createMessage(ctx, convID, content, "incoming"); err != nil {
		c.log.Warn("Chatwoot: ошибка записи сообщения", "source_id", sourceID, "error", err)
	}
}

// LogOutgoing ответ бота; пишется только в уже известный диалог
func (c *Client) LogOutgoing(ctx context.Context, sourceID, content string) {
	c.mu.Lock()
	convID, ok := c.conversations[sourceID]
	c.mu.Unlock()
	if !ok {
		return
	}
	if err := c.createMessage(ctx, convID, content, "outgoing"); err != nil {
		c.log.Warn("Chatwoot: ошибка записи ответа", "source_id", sourceID, "error", err)
	}
}

func (c *Client) conversation(ctx context.Context, sourceID, userName string) (int, error) {
	c.mu.Lock()
	if id, ok := c.conversations[sourceID]; ok {
		c.mu.Unlock()
		return id, nil
	}
	c.mu.Unlock()

	contactID, err := c.contact(ctx, sourceID, userName)
	if err != nil {
		return 0, err
	}

	var resp struct {
		ID int `json:"id"`
	}
	err = c.do(ctx, http.MethodPost, c.accountURL("/conversations"), map[string]any{
		"source_id":  sourceID,
		"inbox_id":   c.inboxID,
		"contact_id": contactID,
	}, &resp)
	if err != nil {
		return 0, fmt.Errorf("создание диалога: %w", err)
	}

	c.mu.Lock()
	c.conversations[sourceID] = resp.ID
	c.mu.Unlock()
	return resp.ID, nil
}

type contactPayload struct {
	ID         int    `json:"id"`
	Identifier string `json:"identifier"`
}

func (c *Client) contact(ctx context.Context, sourceID, userName string) (int, error) {
	c.mu.Lock()
	if id, ok := c.contacts[sourceID]; ok {
		c.mu.Unlock()
		return id, nil
	}
	c.mu.Unlock()

	identifier := "telegram_" + sourceID

	var found struct {
		Payload []contactPayload `json:"payload"`
	}
	searchURL := c.accountURL("/contacts/search") + "?q=" + url.QueryEscape(identifier)
	if err := c.do(ctx, http.MethodGet, searchURL, nil, &found); err != nil {
		c.log.Debug("Chatwoot: поиск контакта не удался", "error", err)
	}
	for _, ct := range found.Payload {
		if ct.Identifier == identifier {
			c.remember(sourceID, ct.ID)
			return ct.ID, nil
		}
	}

	// ответ отличается между версиями Chatwoot: id на верхнем уровне или в payload.contact
	var created struct {
		ID      int `json:"id"`
		Payload struct {
			Contact contactPayload `json:"contact"`
		} `json:"payload"`
	}
	err := c.do(ctx, http.MethodPost, c.accountURL("/contacts"), map[string]any{
		"name":       userName,
		"identifier": identifier,
	}, &created)
	if err != nil {
		return 0, fmt.Errorf("создание контакта: %w", err)
	}
	id := created.ID
	if id == 0 {
		id = created.Payload.Contact.ID
	}
	if id == 0 {
		return 0, fmt.Errorf("создание контакта: пустой id")
	}
	c.remember(sourceID, id)
	return id, nil
}

func (c *Client) remember(sourceID string, contactID int) {
	c.mu.Lock()
	c.contacts[sourceID] = contactID
	c.mu.Unlock()
}

func (c *Client) createMessage(ctx context.Context, convID int, content, msgType string) error {
	return c.do(ctx, http.MethodPost, c.accountURL(fmt.Sprintf("/conversations/%d/messages", convID)), map[string]any{
		"content":      content,
		"message_type": msgType,
		"private":      false,
	}, nil)
}

func (c *Client) accountURL(path string) string {
	return c.baseURL + "/api/v1/accounts/" + c.accountID + path
}

func (c *Client) do(ctx context.Context, method, target string, body any, out any) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("ошибка сериализации: %w", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("ошибка создания запроса: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api_access_token", c.apiToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ошибка запроса: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("chatwoot: HTTP %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("ошибка парсинга ответа: %w", err)
	}
	return nil
}
