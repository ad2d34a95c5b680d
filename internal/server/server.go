package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"routinebot/internal/bot"
	"routinebot/internal/logger"
	"routinebot/internal/models"
)

// UpdateHandler обработчик обновлений Telegram
type UpdateHandler interface {
	HandleUpdate(ctx context.Context, u bot.Update) bot.Status
}

// WebhookSetter регистрирует вебхук в Telegram
type WebhookSetter interface {
	SetWebhook(url string) error
}

// Deps зависимости HTTP API. Generator, Updates и Webhook могут быть nil.
type Deps struct {
	Parser     bot.Parser
	Generator  bot.PresentationCreator
	Updates    UpdateHandler
	Webhook    WebhookSetter
	WebhookURL string
	AppName    string
	Version    string
}

// Server HTTP API бота
type Server struct {
	deps   Deps
	log    *logger.Logger
	router chi.Router
}

// New создаёт сервер со всеми маршрутами
func New(deps Deps, log *logger.Logger) *Server {
	s := &Server{
		deps:   deps,
		log:    log,
		router: chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestID)
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api/v1/routines", func(r chi.Router) {
		r.Post("/parse", s.handleParse)
		r.Post("/generate-slides", s.handleGenerateSlides)
		r.Post("/export-xlsx", s.handleExportXLSX)
	})

	s.router.Route("/api/v1/telegram", func(r chi.Router) {
		r.Post("/webhook", s.handleWebhook)
		r.Get("/set-webhook", s.handleSetWebhook)
	})
}

// ParseRequest тело /routines/parse
type ParseRequest struct {
	Text string `json:"text"`
}

// ParseResponse разобранная рутина
type ParseResponse struct {
	Days           models.RoutineSet `json:"days"`
	TotalDays      int               `json:"total_days"`
	TotalExercises int               `json:"total_exercises"`
}

// DaysRequest тело /routines/generate-slides и /routines/export-xlsx
type DaysRequest struct {
	Days models.RoutineSet `json:"days"`
}
