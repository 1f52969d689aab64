package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// reconciliation pipeline.
type Metrics struct {
	RegistryRows   prometheus.Counter
	PopulationRows prometheus.Counter
	JoinMatched    prometheus.Counter
	JoinUnmatched  prometheus.Counter
	NullKeys       prometheus.Counter
	ParseFailures  prometheus.Counter
	PipelineRuns   prometheus.Counter
	PipelineErrors prometheus.Counter
	PipelineActive prometheus.Gauge

	StageDuration *prometheus.HistogramVec // label: stage={fetch,join,stats,geo,render,sink}

	// Geometry stage metrics.
	GeometriesMerged   prometheus.Counter
	GeometriesDropped  prometheus.Counter
	GeometriesExcluded prometheus.Counter // invalid members excluded from dissolve

	// Source fetcher metrics.
	FetchRequests *prometheus.CounterVec   // labels: resource={municipios,estimativas,malha}, outcome={success,error}
	FetchDuration *prometheus.HistogramVec // label: resource
	MeshCache     *prometheus.CounterVec   // labels: result={hit,miss}
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.RegistryRows,
		m.PopulationRows,
		m.JoinMatched,
		m.JoinUnmatched,
		m.NullKeys,
		m.ParseFailures,
		m.PipelineRuns,
		m.PipelineErrors,
		m.PipelineActive,
		m.StageDuration,
		m.GeometriesMerged,
		m.GeometriesDropped,
		m.GeometriesExcluded,
		m.FetchRequests,
		m.FetchDuration,
		m.MeshCache,
	)

	return m
}

// NewMetricsForTesting creates Metrics without touching the default registry
// to avoid "already registered" panics across tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RegistryRows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "municipio_etl",
			Name:      "registry_rows_total",
			Help:      "Municipality registry rows ingested.",
		}),
		PopulationRows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "municipio_etl",
			Name:      "population_rows_total",
			Help:      "Population estimate rows ingested.",
		}),
		JoinMatched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "municipio_etl",
			Name:      "join_matched_total",
			Help:      "Registry rows matched to a population estimate.",
		}),
		JoinUnmatched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "municipio_etl",
			Name:      "join_unmatched_total",
			Help:      "Registry rows with no population match.",
		}),
		NullKeys: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "municipio_etl",
			Name:      "null_keys_total",
			Help:      "Rows whose canonical identifier could not be constructed.",
		}),
		ParseFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "municipio_etl",
			Name:      "parse_failures_total",
			Help:      "Population values that did not parse after cleaning.",
		}),
		PipelineRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "municipio_etl",
			Name:      "pipeline_runs_total",
			Help:      "Completed pipeline runs.",
		}),
		PipelineErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "municipio_etl",
			Name:      "pipeline_errors_total",
			Help:      "Pipeline runs aborted by a fatal error.",
		}),
		PipelineActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "municipio_etl",
			Name:      "pipeline_active",
			Help:      "1 while a pipeline run is in progress.",
		}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "municipio_etl",
			Name:      "stage_duration_seconds",
			Help:      "Duration of each pipeline stage.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"stage"}),
		GeometriesMerged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "municipio_etl",
			Name:      "geometries_merged_total",
			Help:      "Geometry features matched to a population value.",
		}),
		GeometriesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "municipio_etl",
			Name:      "geometries_dropped_total",
			Help:      "Geometry features dropped before rendering.",
		}),
		GeometriesExcluded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "municipio_etl",
			Name:      "geometries_excluded_total",
			Help:      "Invalid geometries excluded during dissolve.",
		}),
		FetchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "municipio_etl",
			Name:      "fetch_requests_total",
			Help:      "IBGE source requests by resource and outcome.",
		}, []string{"resource", "outcome"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "municipio_etl",
			Name:      "fetch_duration_seconds",
			Help:      "IBGE source request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"resource"}),
		MeshCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "municipio_etl",
			Name:      "mesh_cache_total",
			Help:      "Mesh cache lookups by result.",
		}, []string{"result"}),
	}
}
