package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptrs(values ...float64) []*float64 {
	out := make([]*float64, len(values))
	for i := range values {
		out[i] = &values[i]
	}
	return out
}

func TestAnalyzeEmpty(t *testing.T) {
	report := Analyze(nil)

	assert.Equal(t, 0, report.Count)
	assert.Equal(t, 0, report.Missing)
	assert.Equal(t, 0, report.OutlierCount)

	metrics := report.Metrics()
	require.Len(t, metrics, 10)
	assert.Equal(t, "0", metrics[0].FormatValue())
	assert.Equal(t, "", metrics[1].FormatValue()) // mean is null, not NaN
}

func TestAnalyzeAllMissing(t *testing.T) {
	report := Analyze([]*float64{nil, nil, nil})

	assert.Equal(t, 0, report.Count)
	assert.Equal(t, 3, report.Missing)
}

func TestAnalyzeSingleValue(t *testing.T) {
	report := Analyze(ptrs(100))

	assert.Equal(t, 1, report.Count)
	assert.Equal(t, 100.0, report.Mean)
	assert.Equal(t, 100.0, report.Median)
	assert.Equal(t, 0.0, report.StdDev)
	assert.Equal(t, 100.0, report.Q1)
	assert.Equal(t, 100.0, report.Q3)
	assert.Equal(t, 0, report.OutlierCount)
}

func TestAnalyzeIQROutliers(t *testing.T) {
	report := Analyze(ptrs(1, 2, 3, 4, 5, 100))

	assert.InDelta(t, 2.25, report.Q1, 1e-9)
	assert.InDelta(t, 4.75, report.Q3, 1e-9)
	assert.InDelta(t, -1.5, report.LowerBound, 1e-9)
	assert.InDelta(t, 8.5, report.UpperBound, 1e-9)

	require.Equal(t, 1, report.OutlierCount)
	assert.Equal(t, []int{5}, report.Outliers())
}

func TestAnalyzeOrderIndependence(t *testing.T) {
	a := Analyze(ptrs(1, 2, 3, 4, 5, 100))
	b := Analyze(ptrs(100, 5, 4, 3, 2, 1))

	assert.Equal(t, a.Mean, b.Mean)
	assert.Equal(t, a.Median, b.Median)
	assert.Equal(t, a.StdDev, b.StdDev)
	assert.Equal(t, a.Q1, b.Q1)
	assert.Equal(t, a.Q3, b.Q3)
	assert.Equal(t, a.OutlierCount, b.OutlierCount)
}

func TestAnalyzeMoments(t *testing.T) {
	report := Analyze(ptrs(2, 4, 4, 4, 5, 5, 7, 9))

	assert.InDelta(t, 5.0, report.Mean, 1e-9)
	assert.InDelta(t, 4.5, report.Median, 1e-9)
	// Sample standard deviation with denominator n−1.
	assert.InDelta(t, 2.138089935299395, report.StdDev, 1e-9)
	assert.Equal(t, 2.0, report.Min)
	assert.Equal(t, 9.0, report.Max)
}

func TestAnalyzeMixedMissing(t *testing.T) {
	values := []*float64{nil}
	values = append(values, ptrs(10, 20, 30)...)
	values = append(values, nil)

	report := Analyze(values)

	assert.Equal(t, 3, report.Count)
	assert.Equal(t, 2, report.Missing)
	assert.Equal(t, 20.0, report.Mean)
}

func TestMetricsFixedOrder(t *testing.T) {
	report := Analyze(ptrs(1, 2, 3))
	names := make([]string, 0, 10)
	for _, m := range report.Metrics() {
		names = append(names, m.Name)
	}

	assert.Equal(t, []string{
		"Total de Municípios",
		"População Média",
		"População Mediana",
		"Desvio Padrão",
		"Mínimo",
		"Máximo",
		"1º Quartil",
		"3º Quartil",
		"Valores Ausentes",
		"Outliers Detectados",
	}, names)
}

func TestMetricFormatValue(t *testing.T) {
	assert.Equal(t, "1234.50", Metric{Value: 1234.5}.FormatValue())
	assert.Equal(t, "42", Metric{Value: 42, Count: true}.FormatValue())
	assert.Equal(t, "", Metric{Value: 99, Null: true}.FormatValue())
}
