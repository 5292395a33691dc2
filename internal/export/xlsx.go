// Package export renders plan and follow-up matrices as XLSX workbooks.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"fleet-maintenance-backend/internal/followup"
	"fleet-maintenance-backend/internal/parse"
)

// Fill colors by cell status.
var statusFills = map[followup.Status]string{
	followup.StatusPlanned:   "#DDEBF7",
	followup.StatusOverdue:   "#F8CBAD",
	followup.StatusRealized:  "#C6EFCE",
	followup.StatusOutOfPlan: "#FFEB9C",
}

const maxSheetName = 31

// CellText renders a matrix cell: level and scheduled day, plus the
// realization day when there is one.
func CellText(c *followup.Cell) string {
	if c == nil {
		return ""
	}
	text := fmt.Sprintf("%s %s", c.Level, parse.FormatDay(c.ScheduledDate))
	if c.Realized && c.RealizedDate != nil && !c.RealizedDate.Equal(c.ScheduledDate) {
		text += " / " + parse.FormatDay(*c.RealizedDate)
	}
	return text
}

// WriteMatrix writes page as a single sheet named title: one row per
// equipment month, one column per operation.
func WriteMatrix(w io.Writer, title string, page followup.MatrixPage) error {
	f := excelize.NewFile()
	defer f.Close()

	if len(title) > maxSheetName {
		title = title[:maxSheetName]
	}
	if err := f.SetSheetName("Sheet1", title); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := []interface{}{"Matricule", "Mois"}
	for _, h := range page.Headers {
		header = append(header, h)
	}
	if err := f.SetSheetRow(title, "A1", &header); err != nil {
		return err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "center"},
	})
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(title, "A1", last, headerStyle); err != nil {
		return err
	}

	styles := make(map[followup.Status]int, len(statusFills))
	for status, color := range statusFills {
		id, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}},
		})
		if err != nil {
			return err
		}
		styles[status] = id
	}

	for i, row := range page.Rows {
		r := i + 2
		values := []interface{}{row.Matricule, row.MonthName}
		for _, c := range row.Cells {
			values = append(values, CellText(c))
		}
		start, err := excelize.CoordinatesToCellName(1, r)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(title, start, &values); err != nil {
			return err
		}
		for col, c := range row.Cells {
			if c == nil {
				continue
			}
			name, err := excelize.CoordinatesToCellName(col+3, r)
			if err != nil {
				return err
			}
			if err := f.SetCellStyle(title, name, name, styles[c.Status]); err != nil {
				return err
			}
		}
	}

	lastCol, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return err
	}
	if err := f.SetColWidth(title, "A", "B", 14); err != nil {
		return err
	}
	if len(header) > 2 {
		if err := f.SetColWidth(title, "C", lastCol, 18); err != nil {
			return err
		}
	}
	if err := f.SetPanes(title, &excelize.Panes{
		Freeze:      true,
		XSplit:      2,
		YSplit:      1,
		TopLeftCell: "C2",
		ActivePane:  "bottomRight",
	}); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
