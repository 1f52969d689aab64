// Package stats computes the descriptive statistics report and IQR outlier
// detection over the joined population column.
package stats

import (
	"math"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/stat"
)

// outlierFactor is the conventional IQR multiplier: a value is an outlier iff
// it falls outside [Q1 − 1.5·IQR, Q3 + 1.5·IQR].
const outlierFactor = 1.5

// Metric is one (name, value) row of the statistics report. Null is true when
// the metric is undefined (e.g. mean of zero observations); Count marks
// integral metrics, which render without decimals.
type Metric struct {
	Name  string
	Value float64
	Count bool
	Null  bool
}

// FormatValue renders the metric for the report: integers for counts, two
// decimal places otherwise, empty string when null.
func (m Metric) FormatValue() string {
	if m.Null {
		return ""
	}
	if m.Count {
		return strconv.Itoa(int(m.Value))
	}
	return strconv.FormatFloat(m.Value, 'f', 2, 64)
}

// Report is the ordered statistics report plus the detected outlier set.
type Report struct {
	Count        int
	Mean         float64
	Median       float64
	StdDev       float64
	Min          float64
	Max          float64
	Q1           float64
	Q3           float64
	Missing      int
	OutlierCount int

	// LowerBound and UpperBound are the IQR outlier fences, valid when Count > 0.
	LowerBound float64
	UpperBound float64

	outlierIdx []int
}

// Outliers returns the indices (into the original input slice) of the values
// flagged as outliers.
func (r Report) Outliers() []int { return r.outlierIdx }

// Metrics returns the report rows in the fixed output order.
func (r Report) Metrics() []Metric {
	null := r.Count == 0
	return []Metric{
		{Name: "Total de Municípios", Value: float64(r.Count), Count: true},
		{Name: "População Média", Value: round2(r.Mean), Null: null},
		{Name: "População Mediana", Value: round2(r.Median), Null: null},
		{Name: "Desvio Padrão", Value: round2(r.StdDev), Null: null},
		{Name: "Mínimo", Value: round2(r.Min), Null: null},
		{Name: "Máximo", Value: round2(r.Max), Null: null},
		{Name: "1º Quartil", Value: round2(r.Q1), Null: null},
		{Name: "3º Quartil", Value: round2(r.Q3), Null: null},
		{Name: "Valores Ausentes", Value: float64(r.Missing), Count: true},
		{Name: "Outliers Detectados", Value: float64(r.OutlierCount), Count: true},
	}
}

// Analyze computes the descriptive report over a population column. Nil
// values are excluded from every computation and counted as missing. The
// result is deterministic and independent of input order; an all-nil or empty
// input produces a zero-count report without dividing by zero.
func Analyze(values []*float64) Report {
	var report Report

	observed := make([]float64, 0, len(values))
	observedIdx := make([]int, 0, len(values))
	for i, v := range values {
		if v == nil {
			report.Missing++
			continue
		}
		observed = append(observed, *v)
		observedIdx = append(observedIdx, i)
	}

	report.Count = len(observed)
	if report.Count == 0 {
		return report
	}

	sorted := make([]float64, len(observed))
	copy(sorted, observed)
	sort.Float64s(sorted)

	report.Mean = stat.Mean(sorted, nil)
	report.Median = quantile(sorted, 0.5)
	report.Min = sorted[0]
	report.Max = sorted[len(sorted)-1]
	report.Q1 = quantile(sorted, 0.25)
	report.Q3 = quantile(sorted, 0.75)

	// Sample standard deviation (n−1); undefined for a single observation.
	if report.Count > 1 {
		report.StdDev = stat.StdDev(sorted, nil)
	}

	iqr := report.Q3 - report.Q1
	report.LowerBound = report.Q1 - outlierFactor*iqr
	report.UpperBound = report.Q3 + outlierFactor*iqr

	for j, v := range observed {
		if v < report.LowerBound || v > report.UpperBound {
			report.outlierIdx = append(report.outlierIdx, observedIdx[j])
		}
	}
	report.OutlierCount = len(report.outlierIdx)

	return report
}

// quantile computes the p-quantile of sorted values by linear interpolation
// between closest ranks (the method behind the original report's quartiles).
// gonum's stat.Quantile CumulantKinds implement different estimators, so the
// interpolation lives here; gonum still provides the moments.
func quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}

	pos := p * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
