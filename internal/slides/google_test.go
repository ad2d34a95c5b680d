package slides

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestToRequestCellIndicesSurviveJSON(t *testing.T) {
	req, err := toRequest(InsertText{ObjectID: "table_0", Cell: &CellLocation{Row: 0, Column: 0}, Text: "Ejercicio"})
	if err != nil {
		t.Fatalf("toRequest() error = %v", err)
	}
	data, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	for _, want := range []string{`"rowIndex":0`, `"columnIndex":0`, `"text":"Ejercicio"`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("request JSON %s missing %s", data, want)
		}
	}
}

func TestToRequestVariants(t *testing.T) {
	white := White
	ops := []Operation{
		CreateSlide{ObjectID: "slide_0", InsertionIndex: 0, LayoutID: "layout1"},
		CreateShape{ObjectID: "title_0", PageID: "slide_0", ShapeType: ShapeTextBox, Size: Size{600, 50}, Position: Position{180, 20}},
		CreateTable{ObjectID: "table_0", PageID: "slide_0", Rows: 2, Columns: 3},
		UpdateTextStyle{ObjectID: "title_0", Style: TextStyle{Bold: true, FontSize: 24, Foreground: &white}},
		UpdateShapeProperties{ObjectID: "title_0", Fill: RGB{0, 0.2, 0.8}},
		UpdateTableCellProperties{ObjectID: "table_0", Location: CellLocation{Row: 1}, RowSpan: 1, ColumnSpan: 1},
		UpdateTableColumnProperties{ObjectID: "table_0", ColumnIndex: 2, Width: 200},
	}

	requests, err := toRequests(ops)
	if err != nil {
		t.Fatalf("toRequests() error = %v", err)
	}
	if len(requests) != len(ops) {
		t.Fatalf("requests = %d, want %d", len(requests), len(ops))
	}

	if r := requests[0].CreateSlide; r == nil || r.SlideLayoutReference == nil || r.SlideLayoutReference.LayoutId != "layout1" {
		t.Errorf("createSlide = %+v", requests[0])
	}
	if r := requests[1].CreateShape; r == nil || r.ShapeType != "TEXT_BOX" || r.ElementProperties.Transform.TranslateX != 180 {
		t.Errorf("createShape = %+v", requests[1])
	}
	if r := requests[2].CreateTable; r == nil || r.Rows != 2 || r.Columns != 3 {
		t.Errorf("createTable = %+v", requests[2])
	}
	if r := requests[3].UpdateTextStyle; r == nil || r.Fields != "bold,fontSize,foregroundColor" {
		t.Errorf("updateTextStyle = %+v", requests[3])
	}
	if r := requests[4].UpdateShapeProperties; r == nil || r.ShapeProperties.ShapeBackgroundFill.SolidFill.Color.RgbColor.Blue != 0.8 {
		t.Errorf("updateShapeProperties = %+v", requests[4])
	}
	if r := requests[5].UpdateTableCellProperties; r == nil || r.TableRange.Location.RowIndex != 1 {
		t.Errorf("updateTableCellProperties = %+v", requests[5])
	}
	if r := requests[6].UpdateTableColumnProperties; r == nil || r.ColumnIndices[0] != 2 || r.TableColumnProperties.ColumnWidth.Magnitude != 200 {
		t.Errorf("updateTableColumnProperties = %+v", requests[6])
	}
}

func TestToRequestEmptyStyle(t *testing.T) {
	if _, err := toRequest(UpdateTextStyle{ObjectID: "x"}); err == nil {
		t.Error("toRequest() with empty style returned nil error")
	}
}

func TestLoadCredentials(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sa.json")
	if err := os.WriteFile(path, []byte(`{"type":"service_account"}`), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"inline json", `{"type":"service_account"}`, false},
		{"file path", path, false},
		{"broken json", `{"type":`, true},
		{"missing file", filepath.Join(dir, "nope.json"), true},
		{"empty", "  ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := LoadCredentials(tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("LoadCredentials() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !json.Valid(data) {
				t.Errorf("LoadCredentials() = %s, not JSON", data)
			}
		})
	}
}
