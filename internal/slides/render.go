package slides

import (
	"fmt"

	"routinebot/internal/models"
)

// Render строит операции содержимого: слайд, заголовок и таблица на каждый день.
// existing - количество слайдов, уже имеющихся в документе.
// Все операции одного слайда идут подряд, создание объекта всегда раньше вставки в него.
func (l Layout) Render(days []models.Day, existing int) []Operation {
	var ops []Operation
	for i, day := range days {
		ids := IDsFor(i, existing)
		ops = append(ops, CreateSlide{
			ObjectID:       ids.Slide,
			InsertionIndex: i + existing,
			LayoutID:       l.SlideLayoutID,
		})
		ops = append(ops, l.renderTitle(ids, day)...)
		ops = append(ops, l.renderTable(ids, day)...)
	}
	return ops
}

func (l Layout) renderTitle(ids PageIDs, day models.Day) []Operation {
	return []Operation{
		CreateShape{
			ObjectID:  ids.Title,
			PageID:    ids.Slide,
			ShapeType: ShapeTextBox,
			Size:      Size{Width: l.TitleWidth, Height: l.TitleHeight},
			Position:  Position{X: l.centerX(l.TitleWidth), Y: l.TitleTop},
		},
		InsertText{ObjectID: ids.Title, Text: fmt.Sprintf(l.TitleFormat, day.Number)},
	}
}

func (l Layout) renderTable(ids PageIDs, day models.Day) []Operation {
	rows := len(day.Exercises) + 1
	ops := []Operation{
		CreateTable{
			ObjectID: ids.Table,
			PageID:   ids.Slide,
			Rows:     rows,
			Columns:  tableColumns,
			Size:     Size{Width: l.TableWidth, Height: l.tableHeight(rows)},
			Position: Position{X: l.centerX(l.TableWidth), Y: l.TableTop},
		},
	}

	for col, header := range l.Headers {
		ops = appendCellText(ops, ids.Table, 0, col, header)
	}

	for i, ex := range day.Exercises {
		row := i + 1
		ops = appendCellText(ops, ids.Table, row, 0, ex.Name)
		ops = appendCellText(ops, ids.Table, row, 1, ex.Sets)
		ops = appendCellText(ops, ids.Table, row, 2, ex.RepsText())
	}
	return ops
}

// appendCellText пропускает пустой текст: Slides отклоняет insertText без текста
func appendCellText(ops []Operation, tableID string, row, col int, text string) []Operation {
	if text == "" {
		return ops
	}
	return append(ops, InsertText{
		ObjectID: tableID,
		Cell:     &CellLocation{Row: row, Column: col},
		Text:     text,
	})
}
