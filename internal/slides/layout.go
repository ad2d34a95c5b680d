package slides

import (
	"fmt"
	"strconv"
	"strings"
)

// Layout геометрия и палитра слайда с рутиной. Все размеры в пунктах (PT).
// Значения читаются из layout.yaml поверх DefaultLayout.
type Layout struct {
	CanvasWidth   float64 `yaml:"canvas_width"`
	CanvasHeight  float64 `yaml:"canvas_height"`
	SlideLayoutID string  `yaml:"slide_layout_id"`

	TitleFormat   string  `yaml:"title_format"`
	TitleWidth    float64 `yaml:"title_width"`
	TitleHeight   float64 `yaml:"title_height"`
	TitleTop      float64 `yaml:"title_top"`
	TitleFontSize float64 `yaml:"title_font_size"`

	TableWidth     float64   `yaml:"table_width"`
	TableTop       float64   `yaml:"table_top"`
	RowHeight      float64   `yaml:"row_height"`
	MinTableHeight float64   `yaml:"min_table_height"`
	BottomMargin   float64   `yaml:"bottom_margin"`
	ColumnWeights  []float64 `yaml:"column_weights"`
	Headers        []string  `yaml:"headers"`

	Colors Palette `yaml:"colors"`
}

// Palette цвета в формате #RRGGBB. Пустой HeaderFill - заливка шаблона.
type Palette struct {
	Accent     string `yaml:"accent"`
	HeaderFill string `yaml:"header_fill"`
	EvenRow    string `yaml:"even_row"`
	OddRow     string `yaml:"odd_row"`
	Text       string `yaml:"text"`
}

// tableColumns количество колонок таблицы упражнений
const tableColumns = 3

// MinColumnWidth минимальная ширина колонки таблицы в Slides API
const MinColumnWidth = 32.0

// DefaultLayout раскладка по умолчанию: холст 960x540, заголовок и таблица по центру
func DefaultLayout() Layout {
	return Layout{
		CanvasWidth:  960,
		CanvasHeight: 540,

		TitleFormat:   "Día %d",
		TitleWidth:    600,
		TitleHeight:   50,
		TitleTop:      20,
		TitleFontSize: 24,

		TableWidth:     600,
		TableTop:       100,
		RowHeight:      30,
		MinTableHeight: 60,
		BottomMargin:   20,
		ColumnWeights:  []float64{3, 1, 2},
		Headers:        []string{"Ejercicio", "Series", "Repeticiones"},

		Colors: Palette{
			Accent:  "#0033CC",
			EvenRow: "#333333",
			OddRow:  "#454545",
			Text:    "#FFFFFF",
		},
	}
}

// Validate проверяет согласованность раскладки
func (l Layout) Validate() error {
	if l.CanvasWidth <= 0 || l.CanvasHeight <= 0 {
		return fmt.Errorf("canvas size must be positive")
	}
	if l.TitleWidth <= 0 || l.TitleHeight <= 0 || l.TitleWidth > l.CanvasWidth {
		return fmt.Errorf("title box must fit the canvas")
	}
	if l.TitleFontSize <= 0 {
		return fmt.Errorf("title_font_size must be positive")
	}
	if !strings.Contains(l.TitleFormat, "%d") {
		return fmt.Errorf("title_format must contain %%d")
	}
	if l.TableWidth <= 0 || l.TableWidth > l.CanvasWidth {
		return fmt.Errorf("table_width must fit the canvas")
	}
	if l.RowHeight <= 0 {
		return fmt.Errorf("row_height must be positive")
	}
	if l.TableTop+l.MinTableHeight+l.BottomMargin > l.CanvasHeight {
		return fmt.Errorf("table does not fit the canvas height")
	}
	if len(l.Headers) != tableColumns {
		return fmt.Errorf("headers must have %d entries", tableColumns)
	}
	if len(l.ColumnWeights) != tableColumns {
		return fmt.Errorf("column_weights must have %d entries", tableColumns)
	}
	for _, w := range l.ColumnWeights {
		if w <= 0 {
			return fmt.Errorf("column_weights must be positive")
		}
	}
	for i, w := range l.columnWidths() {
		if w < MinColumnWidth {
			return fmt.Errorf("column %d is %.1fpt wide, Slides requires at least %gpt", i+1, w, MinColumnWidth)
		}
	}
	for name, c := range map[string]string{
		"accent":   l.Colors.Accent,
		"even_row": l.Colors.EvenRow,
		"odd_row":  l.Colors.OddRow,
		"text":     l.Colors.Text,
	} {
		if _, err := ParseHexColor(c); err != nil {
			return fmt.Errorf("colors.%s: %w", name, err)
		}
	}
	if l.Colors.HeaderFill != "" {
		if _, err := ParseHexColor(l.Colors.HeaderFill); err != nil {
			return fmt.Errorf("colors.header_fill: %w", err)
		}
	}
	return nil
}

// centerX координата X для элемента ширины width по центру холста
func (l Layout) centerX(width float64) float64 {
	return (l.CanvasWidth - width) / 2
}

// tableHeight высота таблицы: по строкам, не меньше минимума и не выше холста
func (l Layout) tableHeight(rows int) float64 {
	h := l.RowHeight * float64(rows)
	if h < l.MinTableHeight {
		h = l.MinTableHeight
	}
	if limit := l.CanvasHeight - l.TableTop - l.BottomMargin; h > limit {
		h = limit
	}
	return h
}

// columnWidths ширины колонок пропорционально весам, в сумме дают ширину таблицы
func (l Layout) columnWidths() []float64 {
	var total float64
	for _, w := range l.ColumnWeights {
		total += w
	}
	widths := make([]float64, len(l.ColumnWeights))
	for i, w := range l.ColumnWeights {
		widths[i] = l.TableWidth * w / total
	}
	return widths
}

// RGB цвет с компонентами 0..1, как в Slides API
type RGB struct {
	Red   float64
	Green float64
	Blue  float64
}

// White белый цвет
var White = RGB{Red: 1, Green: 1, Blue: 1}

// ParseHexColor разбирает цвет вида #RRGGBB
func ParseHexColor(s string) (RGB, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 {
		return RGB{}, fmt.Errorf("invalid color %q", s)
	}
	var comps [3]float64
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseUint(hex[i*2:i*2+2], 16, 8)
		if err != nil {
			return RGB{}, fmt.Errorf("invalid color %q", s)
		}
		comps[i] = float64(v) / 255.0
	}
	return RGB{Red: comps[0], Green: comps[1], Blue: comps[2]}, nil
}

// mustColor цвет из палитры; палитра проверена Validate, ошибка даёт белый
func mustColor(s string) RGB {
	c, err := ParseHexColor(s)
	if err != nil {
		return White
	}
	return c
}
