package slides

import "fmt"

// Operation одна мутация документа в пакетном запросе.
// Набор вариантов закрыт: реализации есть только в этом пакете.
type Operation interface {
	// Target идентификатор объекта, к которому относится операция
	Target() string
	operation()
}

// Size размер элемента в пунктах
type Size struct {
	Width  float64
	Height float64
}

// Position смещение левого верхнего угла элемента в пунктах
type Position struct {
	X float64
	Y float64
}

// CellLocation ячейка таблицы
type CellLocation struct {
	Row    int
	Column int
}

// TextStyle поля стиля текста; nil/false поля не меняются
type TextStyle struct {
	Bold       bool
	FontSize   float64
	Foreground *RGB
}

// ShapeTextBox тип фигуры для заголовка
const ShapeTextBox = "TEXT_BOX"

type CreateSlide struct {
	ObjectID       string
	InsertionIndex int
	LayoutID       string
}

type CreateShape struct {
	ObjectID  string
	PageID    string
	ShapeType string
	Size      Size
	Position  Position
}

type CreateTable struct {
	ObjectID string
	PageID   string
	Rows     int
	Columns  int
	Size     Size
	Position Position
}

// InsertText вставка текста в фигуру или, если Cell задан, в ячейку таблицы
type InsertText struct {
	ObjectID string
	Cell     *CellLocation
	Text     string
}

type UpdateTextStyle struct {
	ObjectID string
	Cell     *CellLocation
	Style    TextStyle
}

// UpdateShapeProperties сплошная заливка фона фигуры
type UpdateShapeProperties struct {
	ObjectID string
	Fill     RGB
}

// UpdateTableCellProperties заливка прямоугольного диапазона ячеек
type UpdateTableCellProperties struct {
	ObjectID   string
	Location   CellLocation
	RowSpan    int
	ColumnSpan int
	Fill       RGB
}

type UpdateTableColumnProperties struct {
	ObjectID    string
	ColumnIndex int
	Width       float64
}

func (o CreateSlide) Target() string                 { return o.ObjectID }
func (o CreateShape) Target() string                 { return o.ObjectID }
func (o CreateTable) Target() string                 { return o.ObjectID }
func (o InsertText) Target() string                  { return o.ObjectID }
func (o UpdateTextStyle) Target() string             { return o.ObjectID }
func (o UpdateShapeProperties) Target() string       { return o.ObjectID }
func (o UpdateTableCellProperties) Target() string   { return o.ObjectID }
func (o UpdateTableColumnProperties) Target() string { return o.ObjectID }

func (CreateSlide) operation()                 {}
func (CreateShape) operation()                 {}
func (CreateTable) operation()                 {}
func (InsertText) operation()                  {}
func (UpdateTextStyle) operation()             {}
func (UpdateShapeProperties) operation()       {}
func (UpdateTableCellProperties) operation()   {}
func (UpdateTableColumnProperties) operation() {}

// PageIDs идентификаторы объектов одного слайда
type PageIDs struct {
	Slide string
	Title string
	Table string
}

// IDsFor идентификаторы для дня с индексом index при existing уже имеющихся слайдах.
// Смещение на existing исключает пересечение с объектами шаблона.
func IDsFor(index, existing int) PageIDs {
	n := index + existing
	return PageIDs{
		Slide: fmt.Sprintf("slide_%d", n),
		Title: fmt.Sprintf("title_%d", n),
		Table: fmt.Sprintf("table_%d", n),
	}
}

// IDsForAll идентификаторы для count дней
func IDsForAll(count, existing int) []PageIDs {
	ids := make([]PageIDs, count)
	for i := range ids {
		ids[i] = IDsFor(i, existing)
	}
	return ids
}

// Count количество операций каждого типа, ключ - имя типа (для логов и тестов)
func Count(ops []Operation) map[string]int {
	counts := make(map[string]int)
	for _, op := range ops {
		counts[fmt.Sprintf("%T", op)]++
	}
	return counts
}
