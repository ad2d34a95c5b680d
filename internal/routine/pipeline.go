package routine

import (
	"context"
	"strings"

	"routinebot/internal/logger"
	"routinebot/internal/models"
)

// Pipeline разбирает сырой текст в дни: сегментация, затем структурирование по блокам
type Pipeline struct {
	structurer Structurer
	log        *logger.Logger
}

// NewPipeline создаёт конвейер поверх структуратора
func NewPipeline(structurer Structurer, log *logger.Logger) *Pipeline {
	return &Pipeline{structurer: structurer, log: log}
}

// Parse возвращает дни в порядке блоков, номера с 1.
// Ошибка любого блока прерывает разбор целиком.
func (p *Pipeline) Parse(ctx context.Context, text string) (models.RoutineSet, error) {
	if strings.TrimSpace(text) == "" {
		return nil, models.ErrEmptyInput
	}

	blocks := Segment(text)
	if len(blocks) == 0 {
		return nil, models.ErrEmptyRoutine
	}
	p.log.Debug("Текст разбит на блоки", "blocks", len(blocks))

	days := make(models.RoutineSet, 0, len(blocks))
	for i, block := range blocks {
		exercises, err := p.structurer.Structure(ctx, block)
		if err != nil {
			p.log.Warn("Ошибка разбора блока", "block", i+1, "error", err)
			return nil, &models.StructuringError{Block: i + 1, Err: err}
		}
		days = append(days, models.Day{Number: i + 1, Exercises: exercises})
	}

	total := days.TotalExercises()
	if total == 0 {
		return nil, models.ErrEmptyRoutine
	}

	p.log.Info("Рутина разобрана", "days", len(days), "exercises", total)
	return days, nil
}
