package export

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/orchardcare/orchard-advisor/internal/domain/agronomy"
	"github.com/orchardcare/orchard-advisor/pkg/util"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// XLSX writes lab history as a single-sheet workbook, one row per sample.
type XLSX struct{}

// NewXLSX constructs the exporter.
func NewXLSX() *XLSX { return &XLSX{} }

func (*XLSX) ContentType() string { return xlsxContentType }
func (*XLSX) Extension() string   { return ".xlsx" }

// Export implements agronomy.HistoryExporter.
func (*XLSX) Export(family agronomy.Family, params []agronomy.Parameter, samples []agronomy.Sample) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := sheetName(family)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	header := []any{"Date", "Source"}
	for _, p := range params {
		header = append(header, columnTitle(p))
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	if err := f.SetRowStyle(sheet, 1, 1, bold); err != nil {
		return nil, err
	}

	for i, s := range samples {
		row := []any{s.RecordedDate.Format(util.DateLayout), string(s.Source)}
		for _, p := range params {
			if v := s.Value(p.Key); v != nil {
				row = append(row, *v)
			} else {
				row = append(row, nil)
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func sheetName(family agronomy.Family) string {
	name := string(family)
	if name == "" {
		return "History"
	}
	return strings.ToUpper(name[:1]) + name[1:] + " tests"
}

func columnTitle(p agronomy.Parameter) string {
	if p.Unit == "" {
		return p.Label
	}
	return p.Label + " (" + p.Unit + ")"
}

var _ agronomy.HistoryExporter = (*XLSX)(nil)
