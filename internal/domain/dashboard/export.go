package dashboard

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Export arma un xlsx con una hoja de resumen y una por serie.
func (s *Service) Export(ctx context.Context, year int) ([]byte, error) {
	st, err := s.Stats(ctx, year)
	if err != nil {
		return nil, err
	}
	return buildWorkbook(st)
}

func buildWorkbook(st Stats) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	// "Sheet1" viene por defecto; la renombramos en vez de borrarla.
	if err := f.SetSheetName("Sheet1", "Summary"); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	summary := [][]any{
		{"Metric", "Value"},
		{"Year", st.Year},
		{"Total animals", st.TotalAnimals},
		{"Adopted animals", st.AdoptedAnimals},
		{"Pending abuse reports", st.PendingReports},
	}
	if err := writeRows(f, "Summary", summary, headerStyle); err != nil {
		return nil, err
	}

	sheets := []struct {
		name    string
		header  string
		buckets []Bucket
	}{
		{"Species", "Species", st.Species},
		{"Adoptions", "Month", st.AdoptionsPerMonth},
		{"Abuse reports", "Month", st.ReportsPerMonth},
	}
	for _, sh := range sheets {
		if _, err := f.NewSheet(sh.name); err != nil {
			return nil, fmt.Errorf("create sheet %s: %w", sh.name, err)
		}
		rows := [][]any{{sh.header, "Count"}}
		for _, b := range sh.buckets {
			rows = append(rows, []any{b.Label, b.Count})
		}
		if err := writeRows(f, sh.name, rows, headerStyle); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any, headerStyle int) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("convert coordinates: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("set row %s!%s: %w", sheet, cell, err)
		}
	}
	if err := f.SetCellStyle(sheet, "A1", "B1", headerStyle); err != nil {
		return fmt.Errorf("set header style: %w", err)
	}
	return f.SetColWidth(sheet, "A", "A", 24)
}
