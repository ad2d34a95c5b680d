package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"routinebot/internal/logger"
)

// Bot транспорт Telegram: long polling или вебхук поверх Handler
type Bot struct {
	api     *tgbotapi.BotAPI
	handler *Handler
	log     *logger.Logger
}

// New создаёт бота
func New(api *tgbotapi.BotAPI, handler *Handler, log *logger.Logger) *Bot {
	return &Bot{api: api, handler: handler, log: log}
}

// Run читает обновления long polling до отмены ctx.
// Разные чаты обрабатываются параллельно, обновления одного чата строго в порядке поступления.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)

	b.log.Info("Бот запущен (long polling)", "username", b.api.Self.UserName)

	queue := newChatQueue(func(update Update) {
		status := b.handler.HandleUpdate(ctx, update)
		b.log.Debug("Обновление обработано", "chat_id", update.ChatID(), "status", status)
	})
	defer queue.Wait()

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case raw, ok := <-updates:
			if !ok {
				return nil
			}
			if update, ok := ConvertUpdate(raw); ok {
				queue.Push(update)
			}
		}
	}
}

// SetWebhook регистрирует адрес вебхука в Telegram
func (b *Bot) SetWebhook(url string) error {
	wh, err := tgbotapi.NewWebhook(url)
	if err != nil {
		return fmt.Errorf("ошибка адреса вебхука: %w", err)
	}
	if _, err := b.api.Request(wh); err != nil {
		return fmt.Errorf("ошибка установки вебхука: %w", err)
	}
	b.log.Info("Вебхук установлен", "url", url)
	return nil
}

// ConvertUpdate переводит обновление Telegram во внутреннее.
// false означает, что обновление не для бота (нет текста и нет нажатия кнопки).
func ConvertUpdate(u tgbotapi.Update) (Update, bool) {
	if cq := u.CallbackQuery; cq != nil {
		if cq.Message == nil || cq.Message.Chat == nil {
			return Update{}, false
		}
		cb := &Callback{
			ID:        cq.ID,
			ChatID:    cq.Message.Chat.ID,
			MessageID: cq.Message.MessageID,
			Action:    cq.Data,
		}
		if cq.From != nil {
			cb.LanguageCode = cq.From.LanguageCode
		}
		return Update{Callback: cb}, true
	}

	m := u.Message
	if m == nil || m.Chat == nil || strings.TrimSpace(m.Text) == "" {
		return Update{}, false
	}
	msg := &IncomingMessage{ChatID: m.Chat.ID, Text: m.Text}
	if m.From != nil {
		msg.LanguageCode = m.From.LanguageCode
		msg.UserName = displayName(m.From)
	}
	return Update{Message: msg}, true
}

func displayName(u *tgbotapi.User) string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		name = u.UserName
	}
	return name
}

// DecodeWebhook читает тело вебхука Telegram
func DecodeWebhook(r io.Reader) (Update, bool, error) {
	var raw tgbotapi.Update
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return Update{}, false, fmt.Errorf("ошибка разбора обновления: %w", err)
	}
	update, ok := ConvertUpdate(raw)
	return update, ok, nil
}
