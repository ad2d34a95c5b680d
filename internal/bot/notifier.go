package bot

import (
	"context"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"routinebot/clients/chatwoot"
	"routinebot/internal/logger"
)

// Notifier отправка сообщений пользователю
type Notifier interface {
	Send(ctx context.Context, chatID int64, text string) error
	SendWithChoices(ctx context.Context, chatID int64, text string, choices []Choice) error
	SendDocument(ctx context.Context, chatID int64, name string, data []byte, caption string) error
	AnswerCallback(ctx context.Context, callbackID string) error
	ClearChoices(ctx context.Context, chatID int64, messageID int) error
}

// telegramAPI часть tgbotapi.BotAPI, которой пользуется бот
type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// TelegramNotifier Notifier поверх Bot API
type TelegramNotifier struct {
	api telegramAPI
	log *logger.Logger
}

// NewTelegramNotifier создаёт отправителя; api обычно *tgbotapi.BotAPI
func NewTelegramNotifier(api telegramAPI, log *logger.Logger) *TelegramNotifier {
	return &TelegramNotifier{api: api, log: log}
}

func (n *TelegramNotifier) Send(ctx context.Context, chatID int64, text string) error {
	return n.sendMarkdown(tgbotapi.NewMessage(chatID, text))
}

func (n *TelegramNotifier) SendWithChoices(ctx context.Context, chatID int64, text string, choices []Choice) error {
	msg := tgbotapi.NewMessage(chatID, text)
	row := make([]tgbotapi.InlineKeyboardButton, 0, len(choices))
	for _, c := range choices {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(c.Label, c.Action))
	}
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(row)
	return n.sendMarkdown(msg)
}

// sendMarkdown отправляет с Markdown; если Telegram не разобрал разметку, повторяет без неё
func (n *TelegramNotifier) sendMarkdown(msg tgbotapi.MessageConfig) error {
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := n.api.Send(msg); err != nil {
		n.log.Warn("Markdown не принят, отправка без разметки", "chat_id", msg.ChatID, "error", err)
		msg.ParseMode = ""
		if _, err := n.api.Send(msg); err != nil {
			return fmt.Errorf("ошибка отправки сообщения: %w", err)
		}
	}
	return nil
}

func (n *TelegramNotifier) SendDocument(ctx context.Context, chatID int64, name string, data []byte, caption string) error {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  name,
		Bytes: data,
	})
	doc.Caption = caption
	if _, err := n.api.Send(doc); err != nil {
		return fmt.Errorf("ошибка отправки документа: %w", err)
	}
	return nil
}

func (n *TelegramNotifier) AnswerCallback(ctx context.Context, callbackID string) error {
	if _, err := n.api.Request(tgbotapi.NewCallback(callbackID, "")); err != nil {
		return fmt.Errorf("ошибка ответа на callback: %w", err)
	}
	return nil
}

func (n *TelegramNotifier) ClearChoices(ctx context.Context, chatID int64, messageID int) error {
	edit := tgbotapi.NewEditMessageReplyMarkup(chatID, messageID, tgbotapi.InlineKeyboardMarkup{
		InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{},
	})
	if _, err := n.api.Request(edit); err != nil {
		return fmt.Errorf("ошибка удаления кнопок: %w", err)
	}
	return nil
}

// loggedNotifier дублирует исходящие сообщения в журнал переписки
type loggedNotifier struct {
	Notifier
	conversations chatwoot.ConversationLogger
}

// WithConversationLog оборачивает Notifier записью ответов в ConversationLogger
func WithConversationLog(n Notifier, conversations chatwoot.ConversationLogger) Notifier {
	if conversations == nil || !conversations.Enabled() {
		return n
	}
	return &loggedNotifier{Notifier: n, conversations: conversations}
}

func (l *loggedNotifier) Send(ctx context.Context, chatID int64, text string) error {
	err := l.Notifier.Send(ctx, chatID, text)
	if err == nil {
		l.conversations.LogOutgoing(ctx, strconv.FormatInt(chatID, 10), text)
	}
	return err
}

func (l *loggedNotifier) SendWithChoices(ctx context.Context, chatID int64, text string, choices []Choice) error {
	err := l.Notifier.SendWithChoices(ctx, chatID, text, choices)
	if err == nil {
		l.conversations.LogOutgoing(ctx, strconv.FormatInt(chatID, 10), text)
	}
	return err
}
