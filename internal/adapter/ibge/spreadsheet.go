package ibge

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/geodados/municipio-data-etl/internal/domain"
)

// Column headers in the estimativas spreadsheet, matched case-insensitively
// after trimming. IBGE has shuffled punctuation between releases so the
// match is on stable fragments of each header, not the exact text. The code
// columns require the "cod" fragment too, otherwise "NOME DO MUNICÍPIO"
// would shadow "COD. MUNIC".
var (
	stateHeaderFragments      = []string{"cod", "uf"}
	municHeaderFragments      = []string{"cod", "munic"}
	populationHeaderFragments = []string{"popula"}
)

// ReadEstimates reads population rows from the estimates workbook. headerRow
// is 1-based; rows above it are title banners and are skipped.
func ReadEstimates(path, sheet string, headerRow int) ([]domain.PopulationRecord, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open estimates workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if headerRow < 1 || headerRow > len(rows) {
		return nil, fmt.Errorf("sheet %q has %d rows, header row %d out of range", sheet, len(rows), headerRow)
	}

	header := rows[headerRow-1]
	stateCol, err := findColumn(header, stateHeaderFragments)
	if err != nil {
		return nil, err
	}
	municCol, err := findColumn(header, municHeaderFragments)
	if err != nil {
		return nil, err
	}
	popCol, err := findColumn(header, populationHeaderFragments)
	if err != nil {
		return nil, err
	}

	records := make([]domain.PopulationRecord, 0, len(rows)-headerRow)
	for _, row := range rows[headerRow:] {
		state := cell(row, stateCol)
		munic := cell(row, municCol)
		pop := cell(row, popCol)
		// Footnote rows at the bottom of the sheet carry text in a single
		// column; a fully empty triple means nothing to keep.
		if state == "" && munic == "" && pop == "" {
			continue
		}
		records = append(records, domain.PopulationRecord{
			StateCodeRaw:        state,
			MunicipalityCodeRaw: munic,
			PopulationText:      pop,
			ID:                  domain.MakeCanonicalID(state, munic),
		})
	}
	return records, nil
}

func findColumn(header []string, fragments []string) (int, error) {
	for i, h := range header {
		lowered := strings.ToLower(strings.TrimSpace(h))
		matched := true
		for _, fragment := range fragments {
			if !strings.Contains(lowered, fragment) {
				matched = false
				break
			}
		}
		if matched {
			return i, nil
		}
	}
	return 0, fmt.Errorf("no header matching %v in %v", fragments, header)
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
