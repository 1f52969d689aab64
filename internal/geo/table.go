// Package geo merges population values onto municipal geometries, derives
// state boundaries by geometric union, and prepares the color-scale
// normalization used by the renderer.
package geo

import (
	"github.com/peterstace/simplefeatures/geom"

	"github.com/geodados/municipio-data-etl/internal/domain"
)

// Feature is one geometry-source feature: its attribute row plus the decoded
// geometry. Property values are kept as strings; typing happens at the
// boundary when the code column is resolved.
type Feature struct {
	Properties map[string]string
	Geometry   geom.Geometry
}

// FeatureTable is the geometry source's attribute table with its features.
// Columns preserves the source's column names for code-column resolution.
type FeatureTable struct {
	Columns  []string
	Features []Feature
}

// GeometryRecord is a municipal geometry carrying its matched population.
// Records without population are dropped before rendering, so Population is
// always set on a surviving record.
type GeometryRecord struct {
	ID         domain.CanonicalID
	Geometry   geom.Geometry
	Population float64
}

// BoundaryRecord is one dissolved boundary: the geometric union of every
// member geometry sharing the grouping key. Its geometry is newly
// constructed and shares no topology with the source records.
type BoundaryRecord struct {
	Key      string
	Geometry geom.Geometry
}
