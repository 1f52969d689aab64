package geo

import (
	"slices"
	"strings"

	"github.com/geodados/municipio-data-etl/internal/domain"
)

// codeMarkers are the substrings that identify a municipal-code column across
// mesh vintages ("CD_MUN" in recent releases, "CODIGO"/"GEOCOD" variants in
// older ones).
var codeMarkers = []string{"cd_mun", "cod"}

// ResolveCodeColumn identifies the geometry source's municipal-code column by
// case-insensitive substring matching against codeMarkers. Exactly one column
// must match; zero or multiple matches return a *domain.ColumnResolutionError
// carrying the candidate list. A non-empty override bypasses discovery but
// must name an existing column.
func ResolveCodeColumn(columns []string, override string) (string, error) {
	if override != "" {
		if slices.Contains(columns, override) {
			return override, nil
		}
		return "", &domain.ColumnResolutionError{Columns: columns}
	}

	var candidates []string
	for _, col := range columns {
		lower := strings.ToLower(col)
		for _, marker := range codeMarkers {
			if strings.Contains(lower, marker) {
				candidates = append(candidates, col)
				break
			}
		}
	}

	if len(candidates) != 1 {
		return "", &domain.ColumnResolutionError{Candidates: candidates, Columns: columns}
	}
	return candidates[0], nil
}
