package sink

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/geodados/municipio-data-etl/internal/domain"
	"github.com/geodados/municipio-data-etl/internal/stats"
)

const (
	dataSheet  = "Dados"
	statsSheet = "Estatisticas"
)

// ExcelSummarySink writes a two-sheet workbook: the joined municipality
// table and the statistics report. It exists for analysts who want a single
// file instead of the CSV pair.
type ExcelSummarySink struct {
	Path string
}

func (s *ExcelSummarySink) WriteSummary(records []domain.JoinedRecord, report stats.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", dataSheet); err != nil {
		return fmt.Errorf("rename data sheet: %w", err)
	}
	if _, err := f.NewSheet(statsSheet); err != nil {
		return fmt.Errorf("create stats sheet: %w", err)
	}

	header := make([]any, len(tableHeader))
	for i, h := range tableHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(dataSheet, "A1", &header); err != nil {
		return fmt.Errorf("write data header: %w", err)
	}
	for i, r := range records {
		var population any
		if r.Population != nil {
			population = *r.Population
		}
		row := []any{string(r.ID), r.Name, r.StateCode, r.StateName, r.RegionName, population}
		cellRef, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("data row %d: %w", i, err)
		}
		if err := f.SetSheetRow(dataSheet, cellRef, &row); err != nil {
			return fmt.Errorf("write data row %d: %w", i, err)
		}
	}

	if err := f.SetSheetRow(statsSheet, "A1", &[]any{"Metrica", "Valor"}); err != nil {
		return fmt.Errorf("write stats header: %w", err)
	}
	for i, m := range report.Metrics() {
		cellRef, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("stats row %d: %w", i, err)
		}
		if err := f.SetSheetRow(statsSheet, cellRef, &[]any{m.Name, m.FormatValue()}); err != nil {
			return fmt.Errorf("write stats row %d: %w", i, err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := f.SaveAs(s.Path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}
