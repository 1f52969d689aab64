// Package sink writes the pipeline's final artifacts. All file writes go
// through a temp-file-and-rename so a failed run never leaves a truncated
// artifact at the destination path.
package sink

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/geodados/municipio-data-etl/internal/domain"
	"github.com/geodados/municipio-data-etl/internal/stats"
)

// tableHeader is the column order of the final municipality table.
var tableHeader = []string{"id_ibge", "nome", "uf_sigla", "uf_nome", "regiao", "POPULACAO_ESTIMADA"}

// CSVTableSink writes the joined municipality table. The id column is always
// quoted so downstream spreadsheet tools keep the leading zeros.
type CSVTableSink struct {
	Path string
}

func (s *CSVTableSink) WriteTable(records []domain.JoinedRecord) error {
	var b strings.Builder
	b.WriteString(strings.Join(tableHeader, ","))
	b.WriteByte('\n')

	for _, r := range records {
		population := ""
		if r.Population != nil {
			population = strconv.FormatFloat(*r.Population, 'f', -1, 64)
		}
		fields := []string{
			quote(string(r.ID)),
			escape(r.Name),
			escape(r.StateCode),
			escape(r.StateName),
			escape(r.RegionName),
			escape(population),
		}
		b.WriteString(strings.Join(fields, ","))
		b.WriteByte('\n')
	}

	return writeAtomic(s.Path, []byte(b.String()))
}

// CSVReportSink writes the statistics report as Metrica,Valor rows.
type CSVReportSink struct {
	Path string
}

func (s *CSVReportSink) WriteReport(report stats.Report) error {
	var b strings.Builder
	b.WriteString("Metrica,Valor\n")
	for _, m := range report.Metrics() {
		b.WriteString(escape(m.Name))
		b.WriteByte(',')
		b.WriteString(escape(m.FormatValue()))
		b.WriteByte('\n')
	}
	return writeAtomic(s.Path, []byte(b.String()))
}

// quote always wraps the field in double quotes.
func quote(field string) string {
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}

// escape quotes the field only when the CSV grammar requires it.
func escape(field string) string {
	if strings.ContainsAny(field, ",\"\n\r") {
		return quote(field)
	}
	return field
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("move %s into place: %w", path, err)
	}
	return nil
}
