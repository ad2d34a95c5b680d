package routine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"routinebot/internal/logger"
	"routinebot/internal/models"
)

// Structurer превращает один блок текста в упражнения
type Structurer interface {
	Structure(ctx context.Context, block string) ([]models.Exercise, error)
}

// Backend генеративная модель: один вызов на блок
type Backend interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// SystemPrompt системная инструкция для модели
const SystemPrompt = "Eres un asistente que estructura rutinas de entrenamiento en JSON."

const userPromptTemplate = `Estructura este texto en formato JSON con los campos:
- "ejercicio": Nombre del ejercicio (string, obligatorio).
- "series": Número de series (string, mínimo "1", no puede ser null).
- "repeticiones": Lista de repeticiones (obligatorio, si hay una sola repetición, debe ir en una lista).

Si un ejercicio no tiene repeticiones, coloca ["N/A"].
Si un ejercicio no tiene número de series, coloca "1".

Texto:
%s

Formato de respuesta:
[
    {"ejercicio": "Pull ups", "series": "4", "repeticiones": ["10"]},
    {"ejercicio": "Front touch", "series": "3", "repeticiones": ["N/A"]}
]

SOLO devuelve el JSON, sin explicaciones ni markdown.`

// UserPrompt промпт для одного блока
func UserPrompt(block string) string {
	return fmt.Sprintf(userPromptTemplate, block)
}

// LLMStructurer структурирует блок через генеративную модель
type LLMStructurer struct {
	backend Backend
	log     *logger.Logger
}

// NewLLMStructurer создаёт структуратор поверх бэкенда
func NewLLMStructurer(backend Backend, log *logger.Logger) *LLMStructurer {
	return &LLMStructurer{backend: backend, log: log}
}

// Structure делает ровно один вызов модели; ответ не перезапрашивается.
// Ошибки: *MalformedResponseError, *ValidationError или ошибка бэкенда.
func (s *LLMStructurer) Structure(ctx context.Context, block string) ([]models.Exercise, error) {
	raw, err := s.backend.Generate(ctx, SystemPrompt, UserPrompt(block))
	if err != nil {
		s.log.Error("Ошибка вызова модели", "error", err)
		return nil, fmt.Errorf("ошибка модели: %w", err)
	}

	exercises, err := DecodeExercises(raw)
	if err != nil {
		s.log.Warn("Ответ модели отклонён", "error", err, "raw_len", len(raw))
		return nil, err
	}
	return exercises, nil
}

var fencePattern = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*\\n?(.*?)\\n?\\s*```$")

// StripCodeFences убирает обёртку ```json ... ``` вокруг ответа модели
func StripCodeFences(raw string) string {
	raw = strings.TrimSpace(raw)
	if m := fencePattern.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[1])
	}
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	return strings.TrimSpace(raw)
}

// exerciseRecord запись в ответе модели
type exerciseRecord struct {
	Name string          `json:"ejercicio"`
	Sets json.RawMessage `json:"series"`
	Reps json.RawMessage `json:"repeticiones"`
}

// DecodeExercises читает ответ модели. Все записи проходят через NewExercise;
// первая некорректная запись отклоняет весь блок.
func DecodeExercises(raw string) ([]models.Exercise, error) {
	cleaned := StripCodeFences(raw)

	var records []exerciseRecord
	if err := json.Unmarshal([]byte(cleaned), &records); err != nil {
		return nil, &models.MalformedResponseError{Raw: raw, Err: err}
	}

	exercises := make([]models.Exercise, 0, len(records))
	for i, rec := range records {
		sets, err := scalarText(rec.Sets)
		if err != nil {
			return nil, &models.ValidationError{Index: i + 1, Field: "series", Message: fmt.Sprintf("\"series\" inválido: %v", err)}
		}
		reps, err := repsList(rec.Reps)
		if err != nil {
			return nil, &models.ValidationError{Index: i + 1, Field: "repeticiones", Message: fmt.Sprintf("\"repeticiones\" inválido: %v", err)}
		}
		ex, err := models.NewExercise(rec.Name, sets, reps)
		if err != nil {
			var ve *models.ValidationError
			if errors.As(err, &ve) {
				ve.Index = i + 1
			}
			return nil, err
		}
		exercises = append(exercises, ex)
	}
	return exercises, nil
}

// scalarText строка или число; null и отсутствие дают пустую строку
func scalarText(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&n); err == nil {
		return n.String(), nil
	}
	return "", fmt.Errorf("se esperaba texto o número, recibido %s", raw)
}

// repsList список строк/чисел или одиночное значение
func repsList(raw json.RawMessage) ([]string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	if raw[0] != '[' {
		s, err := scalarText(raw)
		if err != nil {
			return nil, err
		}
		return []string{s}, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	reps := make([]string, 0, len(items))
	for _, item := range items {
		s, err := scalarText(item)
		if err != nil {
			return nil, err
		}
		reps = append(reps, s)
	}
	return reps, nil
}
