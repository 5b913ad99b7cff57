package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Quote"

// XLSX renders the summary as a single-sheet workbook and returns its bytes.
func XLSX(s Summary) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}

	columns := []string{"A", "B", "C", "D", "E", "F", "G"}
	lastCol := columns[len(columns)-1]
	widths := []float64{6, 44, 18, 8, 12, 16, 16}
	for i, col := range columns {
		if err := f.SetColWidth(sheetName, col, col, widths[i]); err != nil {
			return nil, fmt.Errorf("set col width %s: %w", col, err)
		}
	}

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 16},
	})
	if err != nil {
		return nil, fmt.Errorf("create title style: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#333333"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	moneyFormat := "#,##0.00"
	itemStyle, err := f.NewStyle(&excelize.Style{
		Font:         &excelize.Font{Size: 10},
		Border:       thinBorders(),
		CustomNumFmt: &moneyFormat,
	})
	if err != nil {
		return nil, fmt.Errorf("create item style: %w", err)
	}
	labelStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Alignment: &excelize.Alignment{Horizontal: "right"},
	})
	if err != nil {
		return nil, fmt.Errorf("create label style: %w", err)
	}
	valueStyle, err := f.NewStyle(&excelize.Style{
		Font:         &excelize.Font{Bold: true, Size: 11},
		CustomNumFmt: &moneyFormat,
	})
	if err != nil {
		return nil, fmt.Errorf("create value style: %w", err)
	}

	title := "Quote"
	if s.QuoteID > 0 {
		title = fmt.Sprintf("Quote #%d", s.QuoteID)
	}
	if err := f.MergeCell(sheetName, "A1", lastCol+"1"); err != nil {
		return nil, fmt.Errorf("merge title: %w", err)
	}
	f.SetCellValue(sheetName, "A1", title)
	f.SetCellStyle(sheetName, "A1", lastCol+"1", titleStyle)
	f.SetCellValue(sheetName, "A2", "Client: "+sanitizeExcelCell(s.Client.Name))
	f.SetCellValue(sheetName, "A3", "Date: "+s.Date)

	headers := []string{"#", "Description", "Size", "Qty", "Area (sq ft)", "Unit Price", "Final Price"}
	for i, h := range headers {
		f.SetCellValue(sheetName, columns[i]+"5", h)
	}
	f.SetCellStyle(sheetName, "A5", lastCol+"5", headerStyle)

	row := 6
	for _, l := range s.Lines {
		r := fmt.Sprint(row)
		f.SetCellValue(sheetName, "A"+r, l.Number)
		f.SetCellValue(sheetName, "B"+r, sanitizeExcelCell(l.Description))
		f.SetCellValue(sheetName, "C"+r, l.Size)
		f.SetCellValue(sheetName, "D"+r, l.Quantity)
		f.SetCellValue(sheetName, "E"+r, l.Area)
		f.SetCellValue(sheetName, "F"+r, l.UnitPrice)
		f.SetCellValue(sheetName, "G"+r, l.FinalPrice)
		f.SetCellStyle(sheetName, "A"+r, lastCol+r, itemStyle)
		row++
	}

	row++
	summary := func(label string, value float64) {
		r := fmt.Sprint(row)
		f.SetCellValue(sheetName, "F"+r, label)
		f.SetCellStyle(sheetName, "F"+r, "F"+r, labelStyle)
		f.SetCellValue(sheetName, "G"+r, value)
		f.SetCellStyle(sheetName, "G"+r, "G"+r, valueStyle)
		row++
	}
	for _, m := range s.ByType {
		summary(string(m.SystemType)+":", m.FinalTotal)
	}
	summary("Subtotal:", s.Totals.GrandTotal)
	if s.Tax > 0 {
		summary(fmt.Sprintf("Tax (%g%%):", s.TaxPercent), s.Tax)
	}
	summary("Total:", s.Total)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}
	return buf.Bytes(), nil
}

// sanitizeExcelCell prefixes values Excel would read as formulas.
func sanitizeExcelCell(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r', '|':
		return "'" + s
	}
	return s
}

func thinBorders() []excelize.Border {
	sides := []string{"left", "top", "bottom", "right"}
	borders := make([]excelize.Border, len(sides))
	for i, side := range sides {
		borders[i] = excelize.Border{Type: side, Color: "#000000", Style: 1}
	}
	return borders
}
