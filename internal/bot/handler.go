package bot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strconv"
	"strings"

	"routinebot/clients/chatwoot"
	"routinebot/internal/excel"
	"routinebot/internal/i18n"
	"routinebot/internal/logger"
	"routinebot/internal/models"
	"routinebot/internal/session"
)

// previewLimit сколько упражнений дня показывать в превью
const previewLimit = 5

// Parser разбирает текст рутины в дни
type Parser interface {
	Parse(ctx context.Context, text string) (models.RoutineSet, error)
}

// PresentationCreator создаёт презентацию из дней
type PresentationCreator interface {
	Create(ctx context.Context, days []models.Day) (models.PresentationResult, error)
}

// Handler машина состояний чата: текст -> ожидание подтверждения -> презентация
type Handler struct {
	parser        Parser
	generator     PresentationCreator
	store         *session.Store
	notifier      Notifier
	conversations chatwoot.ConversationLogger
	log           *logger.Logger
}

// NewHandler создаёт обработчик. generator может быть nil, если Google не настроен.
func NewHandler(parser Parser, generator PresentationCreator, store *session.Store, notifier Notifier, log *logger.Logger) *Handler {
	return &Handler{
		parser:        parser,
		generator:     generator,
		store:         store,
		notifier:      notifier,
		conversations: chatwoot.Null{},
		log:           log,
	}
}

// WithConversations включает запись переписки
func (h *Handler) WithConversations(c chatwoot.ConversationLogger) *Handler {
	if c != nil {
		h.conversations = c
		h.notifier = WithConversationLog(h.notifier, c)
	}
	return h
}

// HandleUpdate обрабатывает одно обновление. Обновления одного чата выполняются по очереди.
// Паника внутри обработки превращается в StatusError.
func (h *Handler) HandleUpdate(ctx context.Context, u Update) (status Status) {
	defer func() {
		if r := recover(); r != nil {
			h.log.Error("Паника при обработке обновления", "panic", fmt.Sprint(r), "stack", string(debug.Stack()))
			status = StatusError
		}
	}()

	switch {
	case u.Callback != nil:
		return h.handleCallback(ctx, u.Callback)
	case u.Message != nil:
		return h.handleMessage(ctx, u.Message)
	default:
		return StatusOK
	}
}

func (h *Handler) handleMessage(ctx context.Context, m *IncomingMessage) Status {
	text := strings.TrimSpace(m.Text)
	if text == "" {
		return StatusEmpty
	}

	unlock := h.store.Lock(m.ChatID)
	defer unlock()

	h.conversations.LogIncoming(ctx, strconv.FormatInt(m.ChatID, 10), m.UserName, text)
	lang := i18n.ParseLanguage(m.LanguageCode)

	if strings.HasPrefix(text, "/") {
		return h.handleCommand(ctx, m.ChatID, commandName(text), lang)
	}
	return h.handleRoutine(ctx, m.ChatID, text, lang)
}

// commandName "/Ayuda@rutina_bot extra" -> "/ayuda"
func commandName(text string) string {
	cmd := strings.Fields(text)[0]
	if i := strings.Index(cmd, "@"); i > 0 {
		cmd = cmd[:i]
	}
	return strings.ToLower(cmd)
}

func (h *Handler) handleCommand(ctx context.Context, chatID int64, cmd string, lang i18n.Language) Status {
	switch cmd {
	case "/start", "/inicio":
		h.store.Cancel(chatID)
		h.send(ctx, chatID, i18n.T("welcome", lang))
		return StatusWelcome

	case "/ayuda", "/help":
		h.send(ctx, chatID, i18n.T("help", lang))
		return StatusHelp

	case "/cancelar", "/cancel":
		if h.store.Cancel(chatID) {
			h.log.Info("Рутина отменена", "chat_id", chatID, "state", session.Cancelled)
			h.send(ctx, chatID, i18n.T("cancelled", lang))
		} else {
			h.send(ctx, chatID, i18n.T("no_pending", lang))
		}
		return StatusCancelled

	case "/estado", "/status":
		if h.store.State(chatID) == session.Pending {
			h.send(ctx, chatID, i18n.T("state_pending", lang))
		} else {
			h.send(ctx, chatID, i18n.T("no_pending", lang))
		}
		return StatusState

	case "/exportar", "/export":
		return h.exportPending(ctx, chatID, lang)

	default:
		h.send(ctx, chatID, i18n.T("unknown_command", lang))
		return StatusUnknownCommand
	}
}

func (h *Handler) handleRoutine(ctx context.Context, chatID int64, text string, lang i18n.Language) Status {
	if h.store.State(chatID) == session.Pending {
		h.send(ctx, chatID, i18n.T("already_pending", lang))
		return StatusPending
	}

	h.send(ctx, chatID, i18n.T("processing", lang))

	days, err := h.parser.Parse(ctx, text)
	if err != nil {
		h.log.Warn("Рутина не разобрана", "chat_id", chatID, "error", err)
		h.send(ctx, chatID, i18n.T(MessageKey(err), lang))
		return StatusError
	}

	if err := h.store.Begin(chatID, days); err != nil {
		h.send(ctx, chatID, i18n.T("already_pending", lang))
		return StatusPending
	}
	h.log.Info("Рутина ожидает подтверждения", "chat_id", chatID, "days", len(days), "exercises", days.TotalExercises())

	choices := []Choice{
		{Label: i18n.T("button_confirm", lang), Action: ActionConfirm},
		{Label: i18n.T("button_cancel", lang), Action: ActionCancel},
	}
	if err := h.notifier.SendWithChoices(ctx, chatID, FormatPreview(days, lang), choices); err != nil {
		h.log.Error("Не удалось отправить превью", "chat_id", chatID, "error", err)
	}
	return StatusAwaiting
}

func (h *Handler) handleCallback(ctx context.Context, cb *Callback) Status {
	unlock := h.store.Lock(cb.ChatID)
	defer unlock()

	lang := i18n.ParseLanguage(cb.LanguageCode)

	if err := h.notifier.AnswerCallback(ctx, cb.ID); err != nil {
		h.log.Warn("Ошибка ответа на callback", "chat_id", cb.ChatID, "error", err)
	}
	if err := h.notifier.ClearChoices(ctx, cb.ChatID, cb.MessageID); err != nil {
		h.log.Warn("Ошибка удаления кнопок", "chat_id", cb.ChatID, "error", err)
	}

	switch cb.Action {
	case ActionConfirm:
		return h.confirm(ctx, cb.ChatID, lang)
	case ActionCancel:
		h.store.Cancel(cb.ChatID)
		h.send(ctx, cb.ChatID, i18n.T("cancelled", lang))
		return StatusCancelled
	default:
		return StatusUnknownCallback
	}
}

// confirm забирает ожидающую рутину и создаёт презентацию; чат возвращается в Idle при любом исходе
func (h *Handler) confirm(ctx context.Context, chatID int64, lang i18n.Language) Status {
	days, err := h.store.Confirm(chatID)
	if errors.Is(err, session.ErrNoPending) {
		h.send(ctx, chatID, i18n.T("no_pending", lang))
		return StatusNoPending
	}
	log := h.log.With("chat_id", chatID, "state", session.Confirmed)

	// рутина уже забрана из store: рендер и ответ доводятся до конца без отмены
	ctx = context.WithoutCancel(ctx)

	h.send(ctx, chatID, i18n.T("creating", lang))

	if h.generator == nil {
		log.Error("Генератор презентаций не настроен")
		h.send(ctx, chatID, i18n.T("error_slides", lang))
		return StatusError
	}

	result, err := h.generator.Create(ctx, days)
	if err != nil {
		log.Error("Ошибка создания презентации", "error", err)
		h.send(ctx, chatID, i18n.T(MessageKey(err), lang))
		return StatusError
	}

	log.Info("Презентация отправлена", "url", result.URL)
	h.send(ctx, chatID, i18n.Tf("success", lang, result.URL))
	return StatusSuccess
}

// exportPending отправляет xlsx ожидающей рутины, состояние не меняется
func (h *Handler) exportPending(ctx context.Context, chatID int64, lang i18n.Language) Status {
	days, ok := h.store.Peek(chatID)
	if !ok {
		h.send(ctx, chatID, i18n.T("no_pending", lang))
		return StatusNoPending
	}

	var buf bytes.Buffer
	if err := excel.WriteRoutine(&buf, days); err != nil {
		h.log.Error("Ошибка выгрузки xlsx", "chat_id", chatID, "error", err)
		h.send(ctx, chatID, i18n.T("error_export", lang))
		return StatusError
	}
	if err := h.notifier.SendDocument(ctx, chatID, excel.FileName, buf.Bytes(), i18n.T("export_caption", lang)); err != nil {
		h.log.Error("Ошибка отправки xlsx", "chat_id", chatID, "error", err)
		return StatusError
	}
	return StatusExported
}

func (h *Handler) send(ctx context.Context, chatID int64, text string) {
	if err := h.notifier.Send(ctx, chatID, text); err != nil {
		h.log.Error("Ошибка отправки сообщения", "chat_id", chatID, "error", err)
	}
}

// MessageKey ключ i18n для ошибки
func MessageKey(err error) string {
	var pe *models.PresentationError
	switch {
	case errors.Is(err, models.ErrEmptyInput):
		return "error_empty_input"
	case errors.Is(err, models.ErrEmptyRoutine):
		return "error_empty_routine"
	case errors.As(err, &pe):
		return "error_slides"
	case models.IsDomainError(err):
		return "error_parse"
	default:
		return "error_internal"
	}
}

// FormatPreview превью рутины: до пяти упражнений на день
func FormatPreview(days models.RoutineSet, lang i18n.Language) string {
	lines := []string{i18n.T("preview_title", lang), ""}

	for _, day := range days {
		lines = append(lines, i18n.Tf("preview_day", lang, day.Number, day.TotalExercises()))
		for i, ex := range day.Exercises {
			if i == previewLimit {
				break
			}
			lines = append(lines, fmt.Sprintf("• %s - %sx", ex.Name, ex.Sets))
		}
		if extra := day.TotalExercises() - previewLimit; extra > 0 {
			lines = append(lines, i18n.Tf("preview_more", lang, extra))
		}
		lines = append(lines, "")
	}

	lines = append(lines, i18n.T("preview_question", lang))
	return strings.Join(lines, "\n")
}
