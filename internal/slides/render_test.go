package slides

import (
	"fmt"
	"reflect"
	"testing"

	"routinebot/internal/models"
)

func testDays(t *testing.T, counts ...int) []models.Day {
	t.Helper()
	days := make([]models.Day, len(counts))
	for i, n := range counts {
		days[i].Number = i + 1
		for j := 0; j < n; j++ {
			ex, err := models.NewExercise(fmt.Sprintf("Ejercicio %d", j+1), "3", []string{"10", "8"})
			if err != nil {
				t.Fatalf("NewExercise() error = %v", err)
			}
			days[i].Exercises = append(days[i].Exercises, ex)
		}
	}
	return days
}

func TestRenderSlideIDsOffset(t *testing.T) {
	tests := []struct {
		name     string
		days     int
		existing int
	}{
		{"empty template", 3, 0},
		{"one existing slide", 2, 1},
		{"many existing slides", 4, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counts := make([]int, tt.days)
			for i := range counts {
				counts[i] = 2
			}
			ops := DefaultLayout().Render(testDays(t, counts...), tt.existing)

			var slides []CreateSlide
			for _, op := range ops {
				if s, ok := op.(CreateSlide); ok {
					slides = append(slides, s)
				}
			}
			if len(slides) != tt.days {
				t.Fatalf("CreateSlide count = %d, want %d", len(slides), tt.days)
			}
			for i, s := range slides {
				wantID := fmt.Sprintf("slide_%d", tt.existing+i)
				if s.ObjectID != wantID {
					t.Errorf("slide %d id = %q, want %q", i, s.ObjectID, wantID)
				}
				if s.InsertionIndex != tt.existing+i {
					t.Errorf("slide %d insertion index = %d, want %d", i, s.InsertionIndex, tt.existing+i)
				}
			}
		})
	}
}

func TestRenderSingleExerciseCounts(t *testing.T) {
	ex, err := models.NewExercise("Pull ups", "4", []string{"10"})
	if err != nil {
		t.Fatalf("NewExercise() error = %v", err)
	}
	days := []models.Day{{Number: 1, Exercises: []models.Exercise{ex}}}

	ops := DefaultLayout().Render(days, 0)
	counts := Count(ops)

	want := map[string]int{
		"slides.CreateSlide": 1,
		"slides.CreateShape": 1,
		"slides.CreateTable": 1,
		"slides.InsertText":  1 + 3 + 3,
	}
	if !reflect.DeepEqual(counts, want) {
		t.Errorf("Count() = %v, want %v", counts, want)
	}

	table, ok := ops[3].(CreateTable)
	if !ok {
		t.Fatalf("ops[3] = %T, want CreateTable", ops[3])
	}
	if table.Rows != 2 || table.Columns != 3 {
		t.Errorf("table = %dx%d, want 2x3", table.Rows, table.Columns)
	}

	title, ok := ops[2].(InsertText)
	if !ok || title.Text != "Día 1" || title.Cell != nil {
		t.Errorf("title insert = %+v", ops[2])
	}

	last := ops[len(ops)-1].(InsertText)
	if last.Text != "10" || last.Cell == nil || last.Cell.Row != 1 || last.Cell.Column != 2 {
		t.Errorf("last insert = %+v", last)
	}
}

func TestRenderCreateBeforeInsert(t *testing.T) {
	ops := DefaultLayout().Render(testDays(t, 3, 0, 5), 2)

	created := make(map[string]bool)
	currentSlide := ""
	for i, op := range ops {
		switch o := op.(type) {
		case CreateSlide:
			currentSlide = o.ObjectID
			created[o.ObjectID] = true
		case CreateShape:
			if o.PageID != currentSlide {
				t.Errorf("op %d: shape on %q while building %q", i, o.PageID, currentSlide)
			}
			created[o.ObjectID] = true
		case CreateTable:
			if o.PageID != currentSlide {
				t.Errorf("op %d: table on %q while building %q", i, o.PageID, currentSlide)
			}
			created[o.ObjectID] = true
		case InsertText:
			if !created[o.ObjectID] {
				t.Errorf("op %d: insert into %q before it is created", i, o.ObjectID)
			}
		default:
			t.Errorf("op %d: unexpected %T in content batch", i, op)
		}
	}
}

func TestRenderGeometry(t *testing.T) {
	layout := DefaultLayout()
	ops := layout.Render(testDays(t, 1, 40), 0)

	var shapes []CreateShape
	var tables []CreateTable
	for _, op := range ops {
		switch o := op.(type) {
		case CreateShape:
			shapes = append(shapes, o)
		case CreateTable:
			tables = append(tables, o)
		}
	}

	if got := shapes[0].Position.X; got != (layout.CanvasWidth-layout.TitleWidth)/2 {
		t.Errorf("title x = %v, want centered", got)
	}
	if got := tables[0].Position.X; got != (layout.CanvasWidth-layout.TableWidth)/2 {
		t.Errorf("table x = %v, want centered", got)
	}
	if got := tables[0].Size.Height; got != layout.MinTableHeight {
		t.Errorf("small table height = %v, want min %v", got, layout.MinTableHeight)
	}
	maxHeight := layout.CanvasHeight - layout.TableTop - layout.BottomMargin
	if got := tables[1].Size.Height; got != maxHeight {
		t.Errorf("large table height = %v, want clamp %v", got, maxHeight)
	}
}

func TestRenderEmptyDay(t *testing.T) {
	ops := DefaultLayout().Render([]models.Day{{Number: 1}}, 0)
	counts := Count(ops)
	if counts["slides.InsertText"] != 4 {
		t.Errorf("InsertText = %d, want title + 3 headers", counts["slides.InsertText"])
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	layout := DefaultLayout()
	days := testDays(t, 2, 3)
	if !reflect.DeepEqual(layout.Render(days, 1), layout.Render(days, 1)) {
		t.Error("Render() differs between calls with identical input")
	}
}
