// Command genfixtures writes deterministic synthetic versions of the three
// pipeline inputs: a localidades registry JSON, an estimates workbook, and a
// municipal mesh GeoJSON. The fixtures use the real source layouts, including
// the banner row above the spreadsheet header and Brazilian number formatting,
// so a local run exercises the same parsing paths as production data.
//
// Usage:
//
//	go run ./cmd/genfixtures -out data/fixtures
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

type municipality struct {
	id         int
	name       string
	uf         string
	ufName     string
	region     string
	population int
}

// Fixed roster spanning three states; populations picked so the largest one
// is an IQR outlier and one entry has no estimate at all.
var roster = []municipality{
	{3500105, "Adamantina", "SP", "São Paulo", "Sudeste", 33894},
	{3500204, "Adolfo", "SP", "São Paulo", "Sudeste", 3447},
	{3500303, "Aguaí", "SP", "São Paulo", "Sudeste", 36305},
	{3550308, "São Paulo", "SP", "São Paulo", "Sudeste", 11451245},
	{3300100, "Angra dos Reis", "RJ", "Rio de Janeiro", "Sudeste", 167434},
	{3300159, "Aperibé", "RJ", "Rio de Janeiro", "Sudeste", 11627},
	{3100104, "Abadia dos Dourados", "MG", "Minas Gerais", "Sudeste", 7014},
	{3100203, "Abaeté", "MG", "Minas Gerais", "Sudeste", 23237},
	{3100302, "Abre Campo", "MG", "Minas Gerais", "Sudeste", 0}, // sem estimativa
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "data/fixtures", "output directory for fixture files")
	flag.Parse()

	if err := os.MkdirAll(*out, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	if err := writeRegistry(filepath.Join(*out, "municipios.json")); err != nil {
		return err
	}
	if err := writeEstimates(filepath.Join(*out, "estimativas.xlsx")); err != nil {
		return err
	}
	if err := writeMesh(filepath.Join(*out, "malha.geojson")); err != nil {
		return err
	}

	log.Printf("wrote %d municipalities to %s", len(roster), *out)
	return nil
}

// writeRegistry emits the nested localidades hierarchy.
func writeRegistry(path string) error {
	items := make([]map[string]any, 0, len(roster))
	for _, m := range roster {
		items = append(items, map[string]any{
			"id":   m.id,
			"nome": m.name,
			"microrregiao": map[string]any{
				"mesorregiao": map[string]any{
					"UF": map[string]any{
						"sigla":  m.uf,
						"nome":   m.ufName,
						"regiao": map[string]any{"nome": m.region},
					},
				},
			},
		})
	}

	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal registry: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write registry: %w", err)
	}
	return nil
}

// writeEstimates emits the estimates workbook: a banner on row 1, the header
// on row 2, data rows below, and a trailing footnote row.
func writeEstimates(path string) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Municípios"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	rows := [][]any{
		{"ESTIMATIVAS DA POPULAÇÃO RESIDENTE - FIXTURE"},
		{"COD. UF", "COD. MUNIC", "NOME DO MUNICÍPIO", "POPULAÇÃO ESTIMADA"},
	}
	for _, m := range roster {
		id := fmt.Sprintf("%07d", m.id)
		population := formatBR(m.population)
		if m.population == 0 {
			population = "(1)" // annotation instead of a number
		}
		rows = append(rows, []any{id[:2], id[2:], m.name, population})
	}
	rows = append(rows, []any{"Nota: (1) estimativa indisponível."})

	for i, row := range rows {
		cellRef, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
		if err := f.SetSheetRow(sheet, cellRef, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

// writeMesh lays the municipalities out on a unit grid, one square each,
// keyed by the codarea property the real mesh uses.
func writeMesh(path string) error {
	features := make([]map[string]any, 0, len(roster))
	for i, m := range roster {
		x := float64(i % 3)
		y := float64(i / 3)
		features = append(features, map[string]any{
			"type":       "Feature",
			"properties": map[string]any{"codarea": fmt.Sprintf("%07d", m.id)},
			"geometry": map[string]any{
				"type": "Polygon",
				"coordinates": [][][]float64{{
					{x, y}, {x + 1, y}, {x + 1, y + 1}, {x, y + 1}, {x, y},
				}},
			},
		})
	}

	fc := map[string]any{"type": "FeatureCollection", "features": features}
	data, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal mesh: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write mesh: %w", err)
	}
	return nil
}

// formatBR renders an integer with dot thousands separators.
func formatBR(n int) string {
	s := fmt.Sprintf("%d", n)
	var groups []string
	for len(s) > 3 {
		groups = append([]string{s[len(s)-3:]}, groups...)
		s = s[:len(s)-3]
	}
	groups = append([]string{s}, groups...)
	return strings.Join(groups, ".")
}
