package render

import (
	"fmt"
	"image/color"
	"math"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/geodados/municipio-data-etl/internal/domain"
)

var barColor = color.RGBA{R: 70, G: 130, B: 180, A: 255}

// PopulationByState renders a bar chart of total population per state,
// descending. Rows without population are skipped.
func PopulationByState(joined []domain.JoinedRecord, path string, dpi int) error {
	totals := make(map[string]float64)
	for _, rec := range joined {
		if rec.Population == nil || rec.StateCode == "" {
			continue
		}
		totals[rec.StateCode] += *rec.Population
	}

	type stateTotal struct {
		state string
		total float64
	}
	rows := make([]stateTotal, 0, len(totals))
	for state, total := range totals {
		rows = append(rows, stateTotal{state, total})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].total != rows[j].total {
			return rows[i].total > rows[j].total
		}
		return rows[i].state < rows[j].state
	})

	values := make(plotter.Values, len(rows))
	labels := make([]string, len(rows))
	for i, row := range rows {
		values[i] = row.total
		labels[i] = row.state
	}

	return barChart("População Estimada por Estado (UF)", "Estado (UF)", "População Estimada",
		values, labels, path, dpi)
}

// PopulationByRegion renders a bar chart of total population per macro
// region, descending. Rows without population or region are skipped.
func PopulationByRegion(joined []domain.JoinedRecord, path string, dpi int) error {
	totals := make(map[string]float64)
	for _, rec := range joined {
		if rec.Population == nil || rec.RegionName == "" {
			continue
		}
		totals[rec.RegionName] += *rec.Population
	}

	type regionTotal struct {
		region string
		total  float64
	}
	rows := make([]regionTotal, 0, len(totals))
	for region, total := range totals {
		rows = append(rows, regionTotal{region, total})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].total != rows[j].total {
			return rows[i].total > rows[j].total
		}
		return rows[i].region < rows[j].region
	})

	values := make(plotter.Values, len(rows))
	labels := make([]string, len(rows))
	for i, row := range rows {
		values[i] = row.total
		labels[i] = row.region
	}

	return barChart("População Estimada por Região", "Região", "População Estimada",
		values, labels, path, dpi)
}

// TopMunicipalities renders a bar chart of the n most (largest=true) or least
// populous municipalities, labeled "Nome - UF".
func TopMunicipalities(joined []domain.JoinedRecord, n int, largest bool, path string, dpi int) error {
	withPopulation := make([]domain.JoinedRecord, 0, len(joined))
	for _, rec := range joined {
		if rec.Population != nil {
			withPopulation = append(withPopulation, rec)
		}
	}

	sort.Slice(withPopulation, func(i, j int) bool {
		a, b := *withPopulation[i].Population, *withPopulation[j].Population
		if a != b {
			if largest {
				return a > b
			}
			return a < b
		}
		return withPopulation[i].Name < withPopulation[j].Name
	})
	if len(withPopulation) > n {
		withPopulation = withPopulation[:n]
	}

	values := make(plotter.Values, len(withPopulation))
	labels := make([]string, len(withPopulation))
	for i, rec := range withPopulation {
		values[i] = *rec.Population
		labels[i] = fmt.Sprintf("%s - %s", rec.Name, rec.StateCode)
	}

	title := fmt.Sprintf("Top %d Municípios Mais Populosos", n)
	if !largest {
		title = fmt.Sprintf("Top %d Municípios Menos Populosos", n)
	}
	return barChart(title, "Município - UF", "População Estimada", values, labels, path, dpi)
}

func barChart(title, xLabel, yLabel string, values plotter.Values, labels []string, path string, dpi int) error {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel

	bars, err := plotter.NewBarChart(values, vg.Points(20))
	if err != nil {
		return fmt.Errorf("bar chart %q: %w", title, err)
	}
	bars.Color = barColor
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)

	p.NominalX(labels...)
	p.X.Tick.Label.Rotation = math.Pi / 3
	p.X.Tick.Label.YAlign = draw.YCenter
	p.X.Tick.Label.XAlign = draw.XRight

	return savePNG(p, path, 12*vg.Inch, 6*vg.Inch, dpi)
}
