package slides

import (
	"context"
	"fmt"
	"sync/atomic"

	"routinebot/internal/logger"
	"routinebot/internal/models"
)

// DefaultPresentationName имя копии шаблона
const DefaultPresentationName = "Rutina de Entrenamiento"

// DocumentService удалённый сервис документов (Drive + Slides)
type DocumentService interface {
	// Copy копирует шаблон и возвращает ID копии
	Copy(ctx context.Context, templateID, name string) (string, error)
	// PageCount количество слайдов в документе
	PageCount(ctx context.Context, documentID string) (int, error)
	// BatchUpdate применяет операции одним пакетом, атомарно
	BatchUpdate(ctx context.Context, documentID string, ops []Operation) error
	// SetPermissions открывает документ на редактирование по ссылке
	SetPermissions(ctx context.Context, documentID string) error
}

// Stage именованный пакет операций
type Stage struct {
	Name string
	Ops  []Operation
}

// Plan упорядоченные пакеты для одного документа: содержимое, затем оформление.
// Оформление ссылается на объекты из содержимого, поэтому стадии строго последовательны.
type Plan struct {
	Stages []Stage
}

// NewPlan строит план для дней при existing слайдах в документе
func NewPlan(layout Layout, days []models.Day, existing int) Plan {
	ids := IDsForAll(len(days), existing)
	titleIDs := make([]string, len(ids))
	tableIDs := make([]string, len(ids))
	for i, id := range ids {
		titleIDs[i] = id.Title
		tableIDs[i] = id.Table
	}
	return Plan{Stages: []Stage{
		{Name: "content", Ops: layout.Render(days, existing)},
		{Name: "style", Ops: layout.Style(days, tableIDs, titleIDs)},
	}}
}

// Apply отправляет стадии по очереди; при ошибке следующие стадии не отправляются
func (p Plan) Apply(ctx context.Context, svc DocumentService, documentID string) error {
	for _, stage := range p.Stages {
		if len(stage.Ops) == 0 {
			continue
		}
		if err := svc.BatchUpdate(ctx, documentID, stage.Ops); err != nil {
			return &models.PresentationError{Step: stage.Name, Err: err}
		}
	}
	return nil
}

// Generator создаёт презентацию из рутины
type Generator struct {
	svc        DocumentService
	templateID string
	name       string
	layout     atomic.Pointer[Layout]
	log        *logger.Logger
}

// NewGenerator создаёт генератор поверх сервиса документов
func NewGenerator(svc DocumentService, templateID string, layout Layout, log *logger.Logger) *Generator {
	g := &Generator{
		svc:        svc,
		templateID: templateID,
		name:       DefaultPresentationName,
		log:        log,
	}
	g.SetLayout(layout)
	return g
}

// SetLayout заменяет раскладку; применяется к следующим презентациям
func (g *Generator) SetLayout(layout Layout) {
	g.layout.Store(&layout)
}

// Layout текущая раскладка
func (g *Generator) Layout() Layout {
	return *g.layout.Load()
}

// Create копирует шаблон, заполняет его днями и открывает доступ.
// Частично созданный документ при ошибке не удаляется.
func (g *Generator) Create(ctx context.Context, days []models.Day) (models.PresentationResult, error) {
	if len(days) == 0 {
		return models.PresentationResult{}, &models.PresentationError{Err: fmt.Errorf("la rutina no tiene días para generar")}
	}

	g.log.Info("Генерация презентации", "days", len(days))

	id, err := g.svc.Copy(ctx, g.templateID, g.name)
	if err != nil {
		return models.PresentationResult{}, &models.PresentationError{Step: "copy", Err: err}
	}
	log := g.log.With("presentation_id", id)

	existing, err := g.svc.PageCount(ctx, id)
	if err != nil {
		return models.PresentationResult{}, &models.PresentationError{Step: "get", Err: err}
	}

	plan := NewPlan(g.Layout(), days, existing)
	if err := plan.Apply(ctx, g.svc, id); err != nil {
		return models.PresentationResult{}, err
	}
	log.Info("Содержимое и оформление применены", "existing_slides", existing)

	if err := g.svc.SetPermissions(ctx, id); err != nil {
		return models.PresentationResult{}, &models.PresentationError{Step: "permissions", Err: err}
	}

	result := models.NewPresentationResult(id)
	log.Info("Презентация создана", "url", result.URL)
	return result, nil
}
