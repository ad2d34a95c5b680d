package excel

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"routinebot/internal/models"
)

// ContentType MIME-тип xlsx
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// FileName имя файла выгрузки рутины
const FileName = "rutina.xlsx"

var routineHeaders = []string{"Ejercicio", "Series", "Repeticiones"}

// SheetName имя листа дня
func SheetName(day models.Day) string {
	return fmt.Sprintf("Día %d", day.Number)
}

// ExportRoutine создаёт книгу: по листу на каждый день, таблица упражнений как на слайде
func ExportRoutine(days models.RoutineSet) (*excelize.File, error) {
	if len(days) == 0 {
		return nil, models.ErrEmptyRoutine
	}

	f := excelize.NewFile()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"0033CC"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка создания стиля: %w", err)
	}
	evenStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"D9D9D9"}, Pattern: 1},
	})
	oddStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"F2F2F2"}, Pattern: 1},
	})

	for i, day := range days {
		sheet := SheetName(day)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return nil, fmt.Errorf("ошибка переименования листа: %w", err)
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return nil, fmt.Errorf("ошибка создания листа %s: %w", sheet, err)
		}

		if err := f.SetSheetRow(sheet, "A1", &routineHeaders); err != nil {
			return nil, fmt.Errorf("ошибка записи заголовков: %w", err)
		}
		f.SetCellStyle(sheet, "A1", "C1", headerStyle)
		f.SetRowHeight(sheet, 1, 24)

		for r, ex := range day.Exercises {
			rowNum := r + 2
			cell, _ := excelize.CoordinatesToCellName(1, rowNum)
			row := []interface{}{ex.Name, ex.Sets, ex.RepsText()}
			if err := f.SetSheetRow(sheet, cell, &row); err != nil {
				return nil, fmt.Errorf("ошибка записи строки %d: %w", rowNum, err)
			}
			style := oddStyle
			if (r+1)%2 == 0 {
				style = evenStyle
			}
			f.SetCellStyle(sheet, fmt.Sprintf("A%d", rowNum), fmt.Sprintf("C%d", rowNum), style)
		}

		f.SetColWidth(sheet, "A", "A", 32)
		f.SetColWidth(sheet, "B", "B", 10)
		f.SetColWidth(sheet, "C", "C", 20)
	}

	f.SetActiveSheet(0)
	return f, nil
}

// WriteRoutine записывает xlsx рутины в w
func WriteRoutine(w io.Writer, days models.RoutineSet) error {
	f, err := ExportRoutine(days)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("ошибка записи xlsx: %w", err)
	}
	return nil
}
