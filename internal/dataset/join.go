// Package dataset merges the municipal registry with population estimates
// under the canonical IBGE identifier.
package dataset

import (
	"sort"

	"github.com/geodados/municipio-data-etl/internal/domain"
)

// JoinStats summarizes the quality of one join so missing data is observable
// downstream instead of silently disappearing.
type JoinStats struct {
	LeftRows      int
	Matched       int
	Unmatched     int
	NullLeftKeys  int
	NullRightKeys int
	ParseFailures int
}

// Join performs a left-outer merge of the registry onto the population table
// on CanonicalID. Every left row appears exactly once in the output, in input
// order; rows without a match (or with unparseable population text) carry a
// nil population. Only the population value is carried from the right side.
//
// Duplicate non-null keys on the right are ambiguous and abort the join with
// a *domain.AmbiguousJoinError listing the offending keys. Null-keyed rows on
// either side never participate in matching.
func Join(left []domain.MunicipalityRecord, right []domain.PopulationRecord) ([]domain.JoinedRecord, JoinStats, error) {
	stats := JoinStats{LeftRows: len(left)}

	byID := make(map[domain.CanonicalID]string, len(right))
	var duplicates []domain.CanonicalID
	seen := make(map[domain.CanonicalID]bool)

	for _, rec := range right {
		if rec.ID.IsNull() {
			stats.NullRightKeys++
			continue
		}
		if _, exists := byID[rec.ID]; exists {
			if !seen[rec.ID] {
				duplicates = append(duplicates, rec.ID)
				seen[rec.ID] = true
			}
			continue
		}
		byID[rec.ID] = rec.PopulationText
	}

	if len(duplicates) > 0 {
		sort.Slice(duplicates, func(i, j int) bool { return duplicates[i] < duplicates[j] })
		return nil, stats, &domain.AmbiguousJoinError{Keys: duplicates}
	}

	out := make([]domain.JoinedRecord, 0, len(left))
	for _, mun := range left {
		joined := domain.JoinedRecord{MunicipalityRecord: mun}

		if mun.ID.IsNull() {
			stats.NullLeftKeys++
			stats.Unmatched++
			out = append(out, joined)
			continue
		}

		text, found := byID[mun.ID]
		if !found {
			stats.Unmatched++
			out = append(out, joined)
			continue
		}

		stats.Matched++
		if v, ok := domain.ParsePopulation(text); ok {
			joined.Population = &v
		} else {
			stats.ParseFailures++
		}
		out = append(out, joined)
	}

	return out, stats, nil
}
