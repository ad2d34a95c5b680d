package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"routinebot/internal/bot"
	"routinebot/internal/excel"
	"routinebot/internal/models"
)

// maxBodyBytes ограничение тела запроса
const maxBodyBytes = 1 << 20

var errNotConfigured = errors.New("servicio no configurado")

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": s.deps.AppName,
		"version": s.deps.Version,
	})
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	var req ParseRequest
	if !decodeBody(w, r, &req) {
		return
	}

	days, err := s.deps.Parser.Parse(r.Context(), req.Text)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ParseResponse{
		Days:           days,
		TotalDays:      len(days),
		TotalExercises: days.TotalExercises(),
	})
}

func (s *Server) handleGenerateSlides(w http.ResponseWriter, r *http.Request) {
	if s.deps.Generator == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"detail": errNotConfigured.Error()})
		return
	}

	days, ok := s.decodeDays(w, r)
	if !ok {
		return
	}

	// презентация доделывается, даже если клиент отключился
	result, err := s.deps.Generator.Create(context.WithoutCancel(r.Context()), days)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	days, ok := s.decodeDays(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := excel.WriteRoutine(&buf, days); err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", excel.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+excel.FileName+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// handleWebhook всегда отвечает 200, иначе Telegram повторяет доставку
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if s.deps.Updates == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": string(bot.StatusOK)})
		return
	}

	update, ok, err := bot.DecodeWebhook(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.log.Warn("Некорректное обновление вебхука", "request_id", RequestIDFrom(r.Context()), "error", err)
		writeJSON(w, http.StatusOK, map[string]string{"status": string(bot.StatusError)})
		return
	}
	if !ok {
		writeJSON(w, http.StatusOK, map[string]string{"status": string(bot.StatusOK)})
		return
	}

	status := s.deps.Updates.HandleUpdate(r.Context(), update)
	writeJSON(w, http.StatusOK, map[string]string{"status": string(status)})
}

func (s *Server) handleSetWebhook(w http.ResponseWriter, r *http.Request) {
	if s.deps.Webhook == nil || s.deps.WebhookURL == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "WEBHOOK_URL no configurada"})
		return
	}
	if err := s.deps.Webhook.SetWebhook(s.deps.WebhookURL); err != nil {
		s.log.Error("Ошибка установки вебхука", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "webhook_url": s.deps.WebhookURL})
}

// writeError: доменные ошибки 400, остальные 500
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if models.IsDomainError(err) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": err.Error()})
		return
	}
	s.log.Error("Ошибка обработки запроса", "request_id", RequestIDFrom(r.Context()), "path", r.URL.Path, "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": err.Error()})
}

// decodeDays читает DaysRequest и прогоняет дни через models.NewRoutineSet
func (s *Server) decodeDays(w http.ResponseWriter, r *http.Request) (models.RoutineSet, bool) {
	var req DaysRequest
	if !decodeBody(w, r, &req) {
		return nil, false
	}
	days, err := models.NewRoutineSet(req.Days)
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	return days, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "JSON inválido: " + err.Error()})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
