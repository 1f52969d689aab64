package ibge

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/peterstace/simplefeatures/geom"

	"github.com/geodados/municipio-data-etl/internal/geo"
)

type featureCollection struct {
	Type     string       `json:"type"`
	Features []geoFeature `json:"features"`
}

type geoFeature struct {
	Type       string          `json:"type"`
	Properties map[string]any  `json:"properties"`
	Geometry   json.RawMessage `json:"geometry"`
}

// ReadMesh decodes a GeoJSON FeatureCollection into a feature table.
// Geometries are loaded without validation; ring validity is checked later
// where an invalid polygon becomes a diagnostic instead of an ingest failure.
func ReadMesh(data []byte) (geo.FeatureTable, error) {
	var fc featureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return geo.FeatureTable{}, fmt.Errorf("decode feature collection: %w", err)
	}
	if fc.Type != "FeatureCollection" {
		return geo.FeatureTable{}, fmt.Errorf("expected FeatureCollection, got %q", fc.Type)
	}

	columns := map[string]struct{}{}
	features := make([]geo.Feature, 0, len(fc.Features))
	for i, f := range fc.Features {
		g, err := geom.UnmarshalGeoJSON(f.Geometry, geom.NoValidate{})
		if err != nil {
			return geo.FeatureTable{}, fmt.Errorf("feature %d: decode geometry: %w", i, err)
		}
		props := make(map[string]string, len(f.Properties))
		for k, v := range f.Properties {
			columns[k] = struct{}{}
			props[k] = stringify(v)
		}
		features = append(features, geo.Feature{Properties: props, Geometry: g})
	}

	names := make([]string, 0, len(columns))
	for name := range columns {
		names = append(names, name)
	}
	sort.Strings(names)

	return geo.FeatureTable{Columns: names, Features: features}, nil
}

// ReadMeshFile decodes a GeoJSON mesh from disk.
func ReadMeshFile(path string) (geo.FeatureTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return geo.FeatureTable{}, fmt.Errorf("read mesh file: %w", err)
	}
	table, err := ReadMesh(data)
	if err != nil {
		return geo.FeatureTable{}, fmt.Errorf("mesh file %s: %w", path, err)
	}
	return table, nil
}
