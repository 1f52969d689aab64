// Command validate performs integrity checks across the pipeline's output
// artifacts: the final municipality table, the statistics report, and the
// optional summary workbook. It verifies ID shape, recomputes the statistics
// from the table, and checks cross-artifact consistency.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -table data/ready/pop_mun_final.csv \
//	  -report data/ready/relatorio_estatistico_pop.csv \
//	  -xlsx data/ready/resumo_municipios.xlsx
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/geodados/municipio-data-etl/internal/stats"
)

var tableHeader = []string{"id_ibge", "nome", "uf_sigla", "uf_nome", "regiao", "POPULACAO_ESTIMADA"}

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	tablePath := flag.String("table", "", "path to the final municipality CSV")
	reportPath := flag.String("report", "", "path to the statistics report CSV")
	xlsxPath := flag.String("xlsx", "", "optional path to the summary workbook")
	flag.Parse()

	if *tablePath == "" || *reportPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*tablePath, *reportPath, *xlsxPath); code != 0 {
		os.Exit(code)
	}
}

func run(tablePath, reportPath, xlsxPath string) int {
	fmt.Println("=== Validação dos Artefatos do Pipeline ===")
	fmt.Println()

	rows, err := loadTable(tablePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load table: %v\n", err)
		return 1
	}

	report, err := loadReport(reportPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load report: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateIDShape(rows),
		validateStatistics(rows, report),
	}
	if xlsxPath != "" {
		phases = append(phases, validateWorkbook(xlsxPath, rows))
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-46s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Linhas: %d no CSV final, %d métricas no relatório\n", len(rows), len(report))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nTodas as validações passaram.")
		return 0
	}
	fmt.Println("\nValidação FALHOU.")
	return 1
}

// ── Data loading ──

// tableRow is one parsed row of the final municipality table.
type tableRow struct {
	lineNum    int
	id         string
	population string
}

func loadTable(path string) ([]tableRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	all, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("empty file %s", path)
	}

	header := all[0]
	if len(header) != len(tableHeader) {
		return nil, fmt.Errorf("expected %d columns, got %d", len(tableHeader), len(header))
	}
	for i, h := range tableHeader {
		if header[i] != h {
			return nil, fmt.Errorf("column %d: expected %q, got %q", i, h, header[i])
		}
	}

	var rows []tableRow
	for i, row := range all[1:] {
		rows = append(rows, tableRow{lineNum: i + 2, id: row[0], population: row[5]})
	}
	return rows, nil
}

// loadReport returns the report's Metrica,Valor pairs in file order.
func loadReport(path string) ([][2]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	all, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(all) < 2 {
		return nil, fmt.Errorf("no metric rows in %s", path)
	}
	if all[0][0] != "Metrica" || all[0][1] != "Valor" {
		return nil, fmt.Errorf("unexpected report header %v", all[0])
	}

	var metrics [][2]string
	for _, row := range all[1:] {
		metrics = append(metrics, [2]string{row[0], row[1]})
	}
	return metrics, nil
}

// ── Phase 1: ID shape ──
// Every non-empty identifier must be exactly seven digits. Leading zeros are
// the usual casualty of spreadsheet round trips, so this is the first check.

func validateIDShape(rows []tableRow) *phase {
	p := &phase{name: "Fase 1: Formato dos identificadores"}

	seen := make(map[string]int, len(rows))
	for _, row := range rows {
		if row.id == "" {
			continue
		}
		if len(row.id) != 7 || !allDigits(row.id) {
			p.errorf("linha %d: id %q não tem 7 dígitos", row.lineNum, row.id)
			continue
		}
		if prev, dup := seen[row.id]; dup {
			p.errorf("linha %d: id %q duplicado (primeira ocorrência na linha %d)", row.lineNum, row.id, prev)
		}
		seen[row.id] = row.lineNum
	}
	return p
}

// ── Phase 2: Statistics ──
// Recompute the full report from the table's population column and compare
// with the persisted report, value by formatted value.

func validateStatistics(rows []tableRow, report [][2]string) *phase {
	p := &phase{name: "Fase 2: Estatísticas recomputadas"}

	values := make([]*float64, len(rows))
	for i, row := range rows {
		if row.population == "" {
			continue
		}
		v, err := strconv.ParseFloat(row.population, 64)
		if err != nil {
			p.errorf("linha %d: população %q não numérica", row.lineNum, row.population)
			continue
		}
		values[i] = &v
	}

	expected := stats.Analyze(values).Metrics()
	if len(report) != len(expected) {
		p.errorf("relatório tem %d métricas, esperado %d", len(report), len(expected))
		return p
	}

	for i, m := range expected {
		if report[i][0] != m.Name {
			p.errorf("métrica %d: esperado %q, encontrado %q", i, m.Name, report[i][0])
			continue
		}
		if report[i][1] != m.FormatValue() {
			p.errorf("%s: esperado %q, encontrado %q", m.Name, m.FormatValue(), report[i][1])
		}
	}
	return p
}

// ── Phase 3: Workbook consistency ──

func validateWorkbook(path string, rows []tableRow) *phase {
	p := &phase{name: "Fase 3: Consistência da planilha resumo"}

	f, err := excelize.OpenFile(path)
	if err != nil {
		p.errorf("abrir planilha: %v", err)
		return p
	}
	defer f.Close()

	dataRows, err := f.GetRows("Dados")
	if err != nil {
		p.errorf("ler aba Dados: %v", err)
		return p
	}
	if len(dataRows) != len(rows)+1 {
		p.errorf("aba Dados tem %d linhas de dados, CSV tem %d", len(dataRows)-1, len(rows))
	}

	for i, row := range dataRows[1:] {
		if i >= len(rows) {
			break
		}
		if len(row) == 0 || row[0] != rows[i].id {
			p.errorf("aba Dados linha %d: id divergente do CSV", i+2)
		}
	}

	statsRows, err := f.GetRows("Estatisticas")
	if err != nil {
		p.errorf("ler aba Estatisticas: %v", err)
		return p
	}
	if len(statsRows) < 2 {
		p.errorf("aba Estatisticas sem métricas")
	}
	return p
}

// ── Helpers ──

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
