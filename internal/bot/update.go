package bot

// Status итог обработки обновления; возвращается вебхуком и пишется в лог
type Status string

const (
	StatusOK              Status = "ok"
	StatusEmpty           Status = "empty"
	StatusWelcome         Status = "welcome"
	StatusHelp            Status = "help"
	StatusState           Status = "state"
	StatusCancelled       Status = "cancelled"
	StatusAwaiting        Status = "awaiting"
	StatusPending         Status = "pending"
	StatusError           Status = "error"
	StatusSuccess         Status = "success"
	StatusNoPending       Status = "no_pending"
	StatusExported        Status = "exported"
	StatusUnknownCommand  Status = "unknown_command"
	StatusUnknownCallback Status = "unknown_callback"
)

// Действия inline-кнопок
const (
	ActionConfirm = "confirm"
	ActionCancel  = "cancel"
)

// IncomingMessage текстовое сообщение пользователя
type IncomingMessage struct {
	ChatID       int64
	Text         string
	UserName     string
	LanguageCode string
}

// Callback нажатие inline-кнопки
type Callback struct {
	ID           string
	ChatID       int64
	MessageID    int
	Action       string
	LanguageCode string
}

// Update входящее обновление: либо сообщение, либо нажатие кнопки
type Update struct {
	Message  *IncomingMessage
	Callback *Callback
}

// ChatID чат обновления, 0 для пустого
func (u Update) ChatID() int64 {
	switch {
	case u.Callback != nil:
		return u.Callback.ChatID
	case u.Message != nil:
		return u.Message.ChatID
	default:
		return 0
	}
}

// Choice кнопка под сообщением
type Choice struct {
	Label  string
	Action string
}
