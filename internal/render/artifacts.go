package render

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/geodados/municipio-data-etl/internal/domain"
	geodata "github.com/geodados/municipio-data-etl/internal/geo"
)

// Chart artifact filenames under the charts directory.
const (
	MapFile           = "mapa_populacao.png"
	StateChartFile    = "populacao_por_uf.png"
	RegionChartFile   = "populacao_por_regiao.png"
	LargestChartFile  = "maiores_municipios.png"
	SmallestChartFile = "menores_municipios.png"
)

// ArtifactRenderer writes the full set of graphics for one run: the
// choropleth map plus the bar charts.
type ArtifactRenderer struct {
	ChartsDir       string
	Title           string
	ColorScale      string
	DPI             int
	BoundaryOverlay bool
	TopN            int
}

// RenderChoropleth draws the population map and returns how many map
// artifacts were written.
func (r *ArtifactRenderer) RenderChoropleth(records []geodata.GeometryRecord, boundaries []geodata.BoundaryRecord, scale geodata.Scale) (int, error) {
	if err := os.MkdirAll(r.ChartsDir, 0o755); err != nil {
		return 0, fmt.Errorf("create charts dir: %w", err)
	}
	opts := MapOptions{
		Title:           r.Title,
		ColorScale:      r.ColorScale,
		DPI:             r.DPI,
		BoundaryOverlay: r.BoundaryOverlay,
	}
	if err := Choropleth(records, boundaries, scale, filepath.Join(r.ChartsDir, MapFile), opts); err != nil {
		return 0, fmt.Errorf("render choropleth: %w", err)
	}
	return 1, nil
}

// RenderCharts draws the population-by-state chart and the largest and
// smallest municipality rankings.
func (r *ArtifactRenderer) RenderCharts(joined []domain.JoinedRecord) (int, error) {
	if err := os.MkdirAll(r.ChartsDir, 0o755); err != nil {
		return 0, fmt.Errorf("create charts dir: %w", err)
	}

	count := 0
	if err := PopulationByState(joined, filepath.Join(r.ChartsDir, StateChartFile), r.DPI); err != nil {
		return count, fmt.Errorf("render state chart: %w", err)
	}
	count++

	if err := PopulationByRegion(joined, filepath.Join(r.ChartsDir, RegionChartFile), r.DPI); err != nil {
		return count, fmt.Errorf("render region chart: %w", err)
	}
	count++

	if err := TopMunicipalities(joined, r.TopN, true, filepath.Join(r.ChartsDir, LargestChartFile), r.DPI); err != nil {
		return count, fmt.Errorf("render largest chart: %w", err)
	}
	count++

	if err := TopMunicipalities(joined, r.TopN, false, filepath.Join(r.ChartsDir, SmallestChartFile), r.DPI); err != nil {
		return count, fmt.Errorf("render smallest chart: %w", err)
	}
	count++

	return count, nil
}
