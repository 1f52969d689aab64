package render

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/peterstace/simplefeatures/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geodados/municipio-data-etl/internal/domain"
	geodata "github.com/geodados/municipio-data-etl/internal/geo"
)

func mustWKT(t *testing.T, wkt string) geom.Geometry {
	t.Helper()
	g, err := geom.UnmarshalWKT(wkt)
	require.NoError(t, err)
	return g
}

func assertPNG(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func joined(id domain.CanonicalID, name, uf string, population float64) domain.JoinedRecord {
	return domain.JoinedRecord{
		MunicipalityRecord: domain.MunicipalityRecord{ID: id, Name: name, StateCode: uf},
		Population:         &population,
	}
}

func TestChoropleth(t *testing.T) {
	records := []geodata.GeometryRecord{
		{ID: "1400027", Geometry: mustWKT(t, "POLYGON((0 0,1 0,1 1,0 1,0 0))"), Population: 1000},
		{ID: "1400050", Geometry: mustWKT(t, "MULTIPOLYGON(((1 0,2 0,2 1,1 1,1 0)),((3 0,4 0,4 1,3 1,3 0)))"), Population: 450000},
	}
	boundaries, diags := geodata.Dissolve(records, func(r geodata.GeometryRecord) string { return r.ID.StateCode() })
	require.Empty(t, diags)

	scale, err := geodata.ScaleFor(geodata.ScaleLog, records)
	require.NoError(t, err)

	dir := t.TempDir()
	path := filepath.Join(dir, "mapa.png")
	err = Choropleth(records, boundaries, scale, path, MapOptions{
		Title:           "Mapa de Teste",
		DPI:             96,
		BoundaryOverlay: true,
	})
	require.NoError(t, err)
	assertPNG(t, path)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "no temp files left behind")
	assert.Equal(t, "mapa.png", entries[0].Name())
}

func TestChoroplethUnknownScale(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mapa.png")
	err := Choropleth(nil, nil, geodata.Scale{}, path, MapOptions{ColorScale: "nope"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown color scale")
}

func TestPopulationByState(t *testing.T) {
	rows := []domain.JoinedRecord{
		joined("3500001", "A", "SP", 100),
		joined("3500002", "B", "SP", 200),
		joined("1400027", "C", "RR", 50),
		{MunicipalityRecord: domain.MunicipalityRecord{ID: "1400050", StateCode: "RR"}}, // no population
	}

	path := filepath.Join(t.TempDir(), "por_estado.png")
	require.NoError(t, PopulationByState(rows, path, 96))
	assertPNG(t, path)
}

func TestPopulationByRegion(t *testing.T) {
	region := func(rec domain.JoinedRecord, name string) domain.JoinedRecord {
		rec.RegionName = name
		return rec
	}
	rows := []domain.JoinedRecord{
		region(joined("3500001", "A", "SP", 100), "Sudeste"),
		region(joined("3300100", "B", "RJ", 200), "Sudeste"),
		region(joined("1400027", "C", "RR", 50), "Norte"),
		joined("3500002", "D", "SP", 75), // no region, skipped
	}

	path := filepath.Join(t.TempDir(), "por_regiao.png")
	require.NoError(t, PopulationByRegion(rows, path, 96))
	assertPNG(t, path)
}

func TestRenderCharts_WritesAllArtifacts(t *testing.T) {
	rows := []domain.JoinedRecord{
		joined("3500001", "A", "SP", 100),
		joined("1400027", "B", "RR", 50),
	}
	rows[0].RegionName = "Sudeste"
	rows[1].RegionName = "Norte"

	dir := t.TempDir()
	r := &ArtifactRenderer{ChartsDir: dir, DPI: 96, TopN: 2}

	count, err := r.RenderCharts(rows)
	require.NoError(t, err)
	assert.Equal(t, 4, count)

	for _, name := range []string{StateChartFile, RegionChartFile, LargestChartFile, SmallestChartFile} {
		assertPNG(t, filepath.Join(dir, name))
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 4, "no temp files left behind")
}

func TestTopMunicipalities(t *testing.T) {
	rows := []domain.JoinedRecord{
		joined("3500001", "Maior", "SP", 9000),
		joined("3500002", "Médio", "SP", 500),
		joined("1400027", "Menor", "RR", 10),
	}

	dir := t.TempDir()

	largest := filepath.Join(dir, "maiores.png")
	require.NoError(t, TopMunicipalities(rows, 2, true, largest, 96))
	assertPNG(t, largest)

	smallest := filepath.Join(dir, "menores.png")
	require.NoError(t, TopMunicipalities(rows, 2, false, smallest, 96))
	assertPNG(t, smallest)
}
