package geo

import (
	"fmt"
	"sort"

	"github.com/peterstace/simplefeatures/geom"

	"github.com/geodados/municipio-data-etl/internal/domain"
)

// MergeStats summarizes a geometry merge: how many features matched a
// population and how many were dropped (no population, or no usable key).
type MergeStats struct {
	Features   int
	Matched    int
	Dropped    int
	NullKeys   int
	NoGeometry int
}

// MergePopulation joins the feature table with the joined dataset on
// CanonicalID, keeping only features with a non-null population. Unmatched
// geometries are dropped before rendering rather than kept as null-population
// polygons; the drop counts stay observable through MergeStats.
func MergePopulation(table FeatureTable, codeColumn string, joined []domain.JoinedRecord) ([]GeometryRecord, MergeStats) {
	stats := MergeStats{Features: len(table.Features)}

	populationByID := make(map[domain.CanonicalID]float64, len(joined))
	for _, rec := range joined {
		if rec.ID.IsNull() || rec.Population == nil {
			continue
		}
		populationByID[rec.ID] = *rec.Population
	}

	out := make([]GeometryRecord, 0, len(table.Features))
	for _, f := range table.Features {
		id := domain.NormalizeCanonicalID(f.Properties[codeColumn])
		if id.IsNull() {
			stats.NullKeys++
			stats.Dropped++
			continue
		}
		if f.Geometry.IsEmpty() {
			stats.NoGeometry++
			stats.Dropped++
			continue
		}

		population, ok := populationByID[id]
		if !ok {
			stats.Dropped++
			continue
		}

		stats.Matched++
		out = append(out, GeometryRecord{ID: id, Geometry: f.Geometry, Population: population})
	}

	return out, stats
}

// Dissolve groups records by key and unions each group's geometries into one
// boundary. A malformed member geometry never aborts the group: it is
// excluded and reported as a *domain.GeometryValidityError diagnostic. A
// group whose every member was excluded yields a diagnostic instead of an
// empty boundary. Output boundaries are sorted by key and own newly
// constructed geometries.
func Dissolve(records []GeometryRecord, key func(GeometryRecord) string) ([]BoundaryRecord, []error) {
	groups := make(map[string][]GeometryRecord)
	var order []string
	for _, rec := range records {
		k := key(rec)
		if _, seen := groups[k]; !seen {
			order = append(order, k)
		}
		groups[k] = append(groups[k], rec)
	}
	sort.Strings(order)

	var boundaries []BoundaryRecord
	var diagnostics []error

	for _, k := range order {
		var union geom.Geometry
		merged := 0

		for _, rec := range groups[k] {
			if err := rec.Geometry.Validate(); err != nil {
				diagnostics = append(diagnostics, &domain.GeometryValidityError{ID: rec.ID, Group: k, Reason: err})
				continue
			}

			if merged == 0 {
				union = rec.Geometry
				merged++
				continue
			}

			next, err := geom.Union(union, rec.Geometry)
			if err != nil {
				diagnostics = append(diagnostics, &domain.GeometryValidityError{ID: rec.ID, Group: k, Reason: err})
				continue
			}
			union = next
			merged++
		}

		if merged == 0 || union.IsEmpty() {
			diagnostics = append(diagnostics, fmt.Errorf("dissolve: group %s produced no geometry", k))
			continue
		}
		boundaries = append(boundaries, BoundaryRecord{Key: k, Geometry: union})
	}

	return boundaries, diagnostics
}
