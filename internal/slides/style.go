package slides

import "routinebot/internal/models"

// Style строит операции оформления для второго пакета.
// Ссылается на объекты, созданные пакетом содержимого, поэтому отправляется только после него.
// Цвет строки зависит только от чётности её номера, повторный вызов даёт тот же результат.
func (l Layout) Style(days []models.Day, tableIDs, titleIDs []string) []Operation {
	text := mustColor(l.Colors.Text)
	accent := mustColor(l.Colors.Accent)
	even := mustColor(l.Colors.EvenRow)
	odd := mustColor(l.Colors.OddRow)

	var ops []Operation
	for i, day := range days {
		if i < len(titleIDs) {
			ops = append(ops,
				UpdateTextStyle{
					ObjectID: titleIDs[i],
					Style:    TextStyle{Bold: true, FontSize: l.TitleFontSize, Foreground: &text},
				},
				UpdateShapeProperties{ObjectID: titleIDs[i], Fill: accent},
			)
		}
		if i >= len(tableIDs) {
			continue
		}
		tableID := tableIDs[i]

		for col := 0; col < tableColumns; col++ {
			ops = append(ops, UpdateTextStyle{
				ObjectID: tableID,
				Cell:     &CellLocation{Row: 0, Column: col},
				Style:    TextStyle{Bold: true, Foreground: &text},
			})
		}
		if l.Colors.HeaderFill != "" {
			ops = append(ops, UpdateTableCellProperties{
				ObjectID:   tableID,
				Location:   CellLocation{Row: 0, Column: 0},
				RowSpan:    1,
				ColumnSpan: tableColumns,
				Fill:       mustColor(l.Colors.HeaderFill),
			})
		}

		for row := 1; row <= len(day.Exercises); row++ {
			fill := odd
			if row%2 == 0 {
				fill = even
			}
			for col := 0; col < tableColumns; col++ {
				ops = append(ops,
					UpdateTextStyle{
						ObjectID: tableID,
						Cell:     &CellLocation{Row: row, Column: col},
						Style:    TextStyle{Foreground: &text},
					},
					UpdateTableCellProperties{
						ObjectID:   tableID,
						Location:   CellLocation{Row: row, Column: col},
						RowSpan:    1,
						ColumnSpan: 1,
						Fill:       fill,
					},
				)
			}
		}

		for col, width := range l.columnWidths() {
			ops = append(ops, UpdateTableColumnProperties{
				ObjectID:    tableID,
				ColumnIndex: col,
				Width:       width,
			})
		}
	}
	return ops
}
