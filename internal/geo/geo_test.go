package geo

import (
	"fmt"
	"testing"

	"github.com/peterstace/simplefeatures/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geodados/municipio-data-etl/internal/domain"
)

func square(t *testing.T, x, y float64) geom.Geometry {
	t.Helper()
	wkt := fmt.Sprintf("POLYGON((%g %g,%g %g,%g %g,%g %g,%g %g))",
		x, y, x+1, y, x+1, y+1, x, y+1, x, y)
	g, err := geom.UnmarshalWKT(wkt)
	require.NoError(t, err)
	return g
}

func TestResolveCodeColumn(t *testing.T) {
	t.Run("single match", func(t *testing.T) {
		col, err := ResolveCodeColumn([]string{"CD_MUN", "NM_MUN", "SIGLA_UF"}, "")
		require.NoError(t, err)
		assert.Equal(t, "CD_MUN", col)
	})

	t.Run("case-insensitive substring", func(t *testing.T) {
		col, err := ResolveCodeColumn([]string{"GeoCodigo", "Nome"}, "")
		require.NoError(t, err)
		assert.Equal(t, "GeoCodigo", col)
	})

	t.Run("no match is fatal", func(t *testing.T) {
		_, err := ResolveCodeColumn([]string{"NM_MUN", "SIGLA_UF"}, "")
		var resolution *domain.ColumnResolutionError
		require.ErrorAs(t, err, &resolution)
		assert.Empty(t, resolution.Candidates)
		assert.Equal(t, []string{"NM_MUN", "SIGLA_UF"}, resolution.Columns)
	})

	t.Run("ambiguous match is fatal", func(t *testing.T) {
		_, err := ResolveCodeColumn([]string{"CD_MUN", "COD_UF"}, "")
		var resolution *domain.ColumnResolutionError
		require.ErrorAs(t, err, &resolution)
		assert.Equal(t, []string{"CD_MUN", "COD_UF"}, resolution.Candidates)
	})

	t.Run("override bypasses discovery", func(t *testing.T) {
		col, err := ResolveCodeColumn([]string{"CD_MUN", "COD_UF"}, "CD_MUN")
		require.NoError(t, err)
		assert.Equal(t, "CD_MUN", col)
	})

	t.Run("override must exist", func(t *testing.T) {
		_, err := ResolveCodeColumn([]string{"NM_MUN"}, "CD_MUN")
		var resolution *domain.ColumnResolutionError
		require.ErrorAs(t, err, &resolution)
	})
}

func joinedWithPopulation(id domain.CanonicalID, population float64) domain.JoinedRecord {
	return domain.JoinedRecord{
		MunicipalityRecord: domain.MunicipalityRecord{ID: id},
		Population:         &population,
	}
}

func TestMergePopulation(t *testing.T) {
	table := FeatureTable{
		Columns: []string{"CD_MUN", "NM_MUN"},
		Features: []Feature{
			{Properties: map[string]string{"CD_MUN": "1400027"}, Geometry: square(t, 0, 0)},
			{Properties: map[string]string{"CD_MUN": "1400050"}, Geometry: square(t, 1, 0)},
			{Properties: map[string]string{"CD_MUN": ""}, Geometry: square(t, 2, 0)},
		},
	}
	joined := []domain.JoinedRecord{
		joinedWithPopulation("1400027", 450000),
		{MunicipalityRecord: domain.MunicipalityRecord{ID: "1400050"}}, // nil population
	}

	records, mergeStats := MergePopulation(table, "CD_MUN", joined)

	// Only the feature with a real population survives; the nil-population
	// and null-key features are dropped before rendering.
	require.Len(t, records, 1)
	assert.Equal(t, domain.CanonicalID("1400027"), records[0].ID)
	assert.Equal(t, 450000.0, records[0].Population)

	assert.Equal(t, 3, mergeStats.Features)
	assert.Equal(t, 1, mergeStats.Matched)
	assert.Equal(t, 2, mergeStats.Dropped)
	assert.Equal(t, 1, mergeStats.NullKeys)
}

func stateKey(rec GeometryRecord) string { return rec.ID.StateCode() }

func TestDissolve(t *testing.T) {
	t.Run("unions members per group", func(t *testing.T) {
		records := []GeometryRecord{
			{ID: "1400027", Geometry: square(t, 0, 0), Population: 1},
			{ID: "1400050", Geometry: square(t, 1, 0), Population: 2},
			{ID: "3500001", Geometry: square(t, 5, 5), Population: 3},
		}

		boundaries, diags := Dissolve(records, stateKey)
		require.Empty(t, diags)
		require.Len(t, boundaries, 2)

		assert.Equal(t, "14", boundaries[0].Key)
		assert.InDelta(t, 2.0, boundaries[0].Geometry.Area(), 1e-9)
		assert.Equal(t, "35", boundaries[1].Key)
		assert.InDelta(t, 1.0, boundaries[1].Geometry.Area(), 1e-9)
	})

	t.Run("idempotent", func(t *testing.T) {
		records := []GeometryRecord{
			{ID: "1400027", Geometry: square(t, 0, 0), Population: 1},
			{ID: "1400050", Geometry: square(t, 1, 0), Population: 2},
		}

		once, diags := Dissolve(records, stateKey)
		require.Empty(t, diags)
		require.Len(t, once, 1)

		again, diags := Dissolve([]GeometryRecord{
			{ID: "1400000", Geometry: once[0].Geometry, Population: 3},
		}, stateKey)
		require.Empty(t, diags)
		require.Len(t, again, 1)
		assert.InDelta(t, once[0].Geometry.Area(), again[0].Geometry.Area(), 1e-9)
	})

	t.Run("invalid member excluded, not fatal", func(t *testing.T) {
		bowtie, err := geom.UnmarshalWKT("POLYGON((0 0,2 2,2 0,0 2,0 0))", geom.NoValidate{})
		require.NoError(t, err)

		records := []GeometryRecord{
			{ID: "1400027", Geometry: square(t, 0, 0), Population: 1},
			{ID: "1400050", Geometry: bowtie, Population: 2},
		}

		boundaries, diags := Dissolve(records, stateKey)
		require.Len(t, boundaries, 1)
		require.Len(t, diags, 1)

		var validity *domain.GeometryValidityError
		require.ErrorAs(t, diags[0], &validity)
		assert.Equal(t, domain.CanonicalID("1400050"), validity.ID)
		assert.Equal(t, "14", validity.Group)
	})

	t.Run("fully excluded group reported", func(t *testing.T) {
		bowtie, err := geom.UnmarshalWKT("POLYGON((0 0,2 2,2 0,0 2,0 0))", geom.NoValidate{})
		require.NoError(t, err)

		boundaries, diags := Dissolve([]GeometryRecord{
			{ID: "1400050", Geometry: bowtie, Population: 2},
		}, stateKey)

		assert.Empty(t, boundaries)
		require.Len(t, diags, 2) // validity error + empty-group report
		assert.Contains(t, diags[1].Error(), "produced no geometry")
	})
}

func TestScale(t *testing.T) {
	t.Run("log normalization", func(t *testing.T) {
		s, err := NewScale(ScaleLog, 10, 1000)
		require.NoError(t, err)

		assert.InDelta(t, 0, s.Normalize(10), 1e-9)
		assert.InDelta(t, 0.5, s.Normalize(100), 1e-9)
		assert.InDelta(t, 1, s.Normalize(1000), 1e-9)
	})

	t.Run("linear normalization", func(t *testing.T) {
		s, err := NewScale(ScaleLinear, 0, 200)
		require.NoError(t, err)

		assert.InDelta(t, 0.25, s.Normalize(50), 1e-9)
	})

	t.Run("clamps out-of-range values", func(t *testing.T) {
		s, err := NewScale(ScaleLinear, 0, 100)
		require.NoError(t, err)

		assert.Equal(t, 0.0, s.Normalize(-5))
		assert.Equal(t, 1.0, s.Normalize(500))
	})

	t.Run("log with nonpositive min falls back to linear", func(t *testing.T) {
		s, err := NewScale(ScaleLog, 0, 100)

		var degenerate *domain.DegenerateScaleError
		require.ErrorAs(t, err, &degenerate)
		assert.Equal(t, ScaleLinear, s.Mode)
		assert.InDelta(t, 0.5, s.Normalize(50), 1e-9)
	})

	t.Run("degenerate range maps to midpoint", func(t *testing.T) {
		s, err := NewScale(ScaleLinear, 42, 42)
		require.NoError(t, err)
		assert.Equal(t, 0.5, s.Normalize(42))
	})

	t.Run("scale for records", func(t *testing.T) {
		records := []GeometryRecord{
			{Population: 10}, {Population: 1000}, {Population: 200},
		}
		s, err := ScaleFor(ScaleLog, records)
		require.NoError(t, err)
		assert.Equal(t, 10.0, s.Min)
		assert.Equal(t, 1000.0, s.Max)
	})
}
