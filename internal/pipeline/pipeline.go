// Package pipeline orchestrates one batch run: fetch the three sources,
// reconcile identifiers, join, analyze, dissolve, and only then write the
// artifacts. Sinks run last so a fatal error never leaves partial outputs.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/geodados/municipio-data-etl/internal/dataset"
	"github.com/geodados/municipio-data-etl/internal/domain"
	"github.com/geodados/municipio-data-etl/internal/geo"
	"github.com/geodados/municipio-data-etl/internal/observability"
	"github.com/geodados/municipio-data-etl/internal/stats"
)

// RegistrySource provides the municipality registry.
type RegistrySource interface {
	FetchRegistry(ctx context.Context) ([]domain.MunicipalityRecord, error)
}

// PopulationSource provides the population estimate rows.
type PopulationSource interface {
	FetchPopulation(ctx context.Context) ([]domain.PopulationRecord, error)
}

// GeometrySource provides the municipal mesh.
type GeometrySource interface {
	FetchGeometry(ctx context.Context) (geo.FeatureTable, error)
}

// TableSink writes the joined municipality table.
type TableSink interface {
	WriteTable(records []domain.JoinedRecord) error
}

// ReportSink writes the statistics report.
type ReportSink interface {
	WriteReport(report stats.Report) error
}

// SummarySink writes an optional combined artifact with both table and report.
type SummarySink interface {
	WriteSummary(records []domain.JoinedRecord, report stats.Report) error
}

// Renderer draws the graphic artifacts. Both methods report how many files
// they wrote.
type Renderer interface {
	RenderChoropleth(records []geo.GeometryRecord, boundaries []geo.BoundaryRecord, scale geo.Scale) (int, error)
	RenderCharts(records []domain.JoinedRecord) (int, error)
}

// Options tunes one pipeline run.
type Options struct {
	// GeometryCodeColumn overrides municipal-code column detection in the
	// mesh properties. Empty means detect by marker.
	GeometryCodeColumn string
	// ScaleMode selects the choropleth normalization.
	ScaleMode geo.ScaleMode
}

// RunSummary describes a completed run.
type RunSummary struct {
	FinishedAt      time.Time
	Duration        time.Duration
	Municipios      int
	ComPopulacao    int
	SemPopulacao    int
	Outliers        int
	MapasGerados    int
	GraficosGerados int
}

// Pipeline wires sources, transforms, and sinks for the batch run.
type Pipeline struct {
	registry   RegistrySource
	population PopulationSource
	geometry   GeometrySource
	table      TableSink
	report     ReportSink
	summary    SummarySink // optional
	renderer   Renderer
	opts       Options
	logger     *slog.Logger
	metrics    *observability.Metrics

	mu      sync.Mutex
	lastRun *RunSummary
}

// New creates a Pipeline. summary may be nil to skip the combined artifact.
func New(
	registry RegistrySource,
	population PopulationSource,
	geometry GeometrySource,
	table TableSink,
	report ReportSink,
	summary SummarySink,
	renderer Renderer,
	opts Options,
	logger *slog.Logger,
	metrics *observability.Metrics,
) *Pipeline {
	return &Pipeline{
		registry:   registry,
		population: population,
		geometry:   geometry,
		table:      table,
		report:     report,
		summary:    summary,
		renderer:   renderer,
		opts:       opts,
		logger:     logger,
		metrics:    metrics,
	}
}

// CheckReadiness returns nil once a run has completed.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.lastRun == nil {
		return errors.New("no completed pipeline run yet")
	}
	return nil
}

// LastRun returns the most recent run summary, or false before the first run.
func (p *Pipeline) LastRun() (RunSummary, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.lastRun == nil {
		return RunSummary{}, false
	}
	return *p.lastRun, true
}

// Run executes one batch run end to end.
func (p *Pipeline) Run(ctx context.Context) (RunSummary, error) {
	start := domain.Clock().Now()
	p.metrics.PipelineActive.Set(1)
	defer p.metrics.PipelineActive.Set(0)
	p.metrics.PipelineRuns.Inc()

	summary, err := p.run(ctx)
	if err != nil {
		p.metrics.PipelineErrors.Inc()
		return RunSummary{}, err
	}

	summary.FinishedAt = domain.Clock().Now()
	summary.Duration = summary.FinishedAt.Sub(start)

	p.mu.Lock()
	p.lastRun = &summary
	p.mu.Unlock()

	p.logger.Info("pipeline run completed",
		"duration", summary.Duration,
		"municipios", summary.Municipios,
		"com_populacao", summary.ComPopulacao,
		"sem_populacao", summary.SemPopulacao,
		"outliers", summary.Outliers,
	)
	return summary, nil
}

func (p *Pipeline) run(ctx context.Context) (RunSummary, error) {
	registry, popRows, mesh, err := p.fetch(ctx)
	if err != nil {
		return RunSummary{}, err
	}

	joined, joinStats, err := p.join(registry, popRows)
	if err != nil {
		return RunSummary{}, err
	}

	report := p.analyze(joined)

	merged, boundaries, scale, err := p.prepareGeometry(mesh, joined)
	if err != nil {
		return RunSummary{}, err
	}

	maps, charts, err := p.write(joined, report, merged, boundaries, scale)
	if err != nil {
		return RunSummary{}, err
	}

	return RunSummary{
		Municipios:      joinStats.LeftRows,
		ComPopulacao:    joinStats.Matched,
		SemPopulacao:    joinStats.LeftRows - joinStats.Matched,
		Outliers:        report.OutlierCount,
		MapasGerados:    maps,
		GraficosGerados: charts,
	}, nil
}

func (p *Pipeline) fetch(ctx context.Context) ([]domain.MunicipalityRecord, []domain.PopulationRecord, geo.FeatureTable, error) {
	defer p.observeStage("fetch")()

	registry, err := p.registry.FetchRegistry(ctx)
	if err != nil {
		return nil, nil, geo.FeatureTable{}, fmt.Errorf("fetch registry: %w", err)
	}
	p.metrics.RegistryRows.Add(float64(len(registry)))

	popRows, err := p.population.FetchPopulation(ctx)
	if err != nil {
		return nil, nil, geo.FeatureTable{}, fmt.Errorf("fetch population: %w", err)
	}
	p.metrics.PopulationRows.Add(float64(len(popRows)))

	mesh, err := p.geometry.FetchGeometry(ctx)
	if err != nil {
		return nil, nil, geo.FeatureTable{}, fmt.Errorf("fetch geometry: %w", err)
	}

	p.logger.Info("sources fetched",
		"registry_rows", len(registry),
		"population_rows", len(popRows),
		"mesh_features", len(mesh.Features),
	)
	return registry, popRows, mesh, nil
}

func (p *Pipeline) join(registry []domain.MunicipalityRecord, popRows []domain.PopulationRecord) ([]domain.JoinedRecord, dataset.JoinStats, error) {
	defer p.observeStage("join")()

	joined, joinStats, err := dataset.Join(registry, popRows)
	if err != nil {
		return nil, dataset.JoinStats{}, fmt.Errorf("join: %w", err)
	}

	p.metrics.JoinMatched.Add(float64(joinStats.Matched))
	p.metrics.JoinUnmatched.Add(float64(joinStats.Unmatched))
	p.metrics.NullKeys.Add(float64(joinStats.NullLeftKeys + joinStats.NullRightKeys))
	p.metrics.ParseFailures.Add(float64(joinStats.ParseFailures))

	p.logger.Info("join completed",
		"rows", joinStats.LeftRows,
		"matched", joinStats.Matched,
		"unmatched", joinStats.Unmatched,
		"null_keys", joinStats.NullLeftKeys+joinStats.NullRightKeys,
		"parse_failures", joinStats.ParseFailures,
	)
	return joined, joinStats, nil
}

func (p *Pipeline) analyze(joined []domain.JoinedRecord) stats.Report {
	defer p.observeStage("stats")()

	values := make([]*float64, len(joined))
	for i, r := range joined {
		values[i] = r.Population
	}
	report := stats.Analyze(values)

	p.logger.Info("statistics computed",
		"count", report.Count,
		"missing", report.Missing,
		"outliers", report.OutlierCount,
	)
	return report
}

func (p *Pipeline) prepareGeometry(mesh geo.FeatureTable, joined []domain.JoinedRecord) ([]geo.GeometryRecord, []geo.BoundaryRecord, geo.Scale, error) {
	defer p.observeStage("geo")()

	codeColumn, err := geo.ResolveCodeColumn(mesh.Columns, p.opts.GeometryCodeColumn)
	if err != nil {
		return nil, nil, geo.Scale{}, fmt.Errorf("resolve mesh code column: %w", err)
	}

	merged, mergeStats := geo.MergePopulation(mesh, codeColumn, joined)
	p.metrics.GeometriesMerged.Add(float64(mergeStats.Matched))
	p.metrics.GeometriesDropped.Add(float64(mergeStats.Dropped))

	boundaries, diags := geo.Dissolve(merged, func(r geo.GeometryRecord) string {
		return r.ID.StateCode()
	})
	for _, diag := range diags {
		p.logger.Warn("dissolve diagnostic", "error", diag)
	}
	p.metrics.GeometriesExcluded.Add(float64(len(diags)))

	scale, err := geo.ScaleFor(p.opts.ScaleMode, merged)
	if err != nil {
		var degenerate *domain.DegenerateScaleError
		if !errors.As(err, &degenerate) {
			return nil, nil, geo.Scale{}, fmt.Errorf("build color scale: %w", err)
		}
		// Non-positive minimums cannot be log scaled; the linear fallback
		// in scale is still usable.
		p.logger.Warn("log scale fell back to linear", "min", degenerate.Min)
	}

	p.logger.Info("geometry prepared",
		"code_column", codeColumn,
		"merged", mergeStats.Matched,
		"dropped", mergeStats.Dropped,
		"boundaries", len(boundaries),
		"excluded", len(diags),
	)
	return merged, boundaries, scale, nil
}

func (p *Pipeline) write(
	joined []domain.JoinedRecord,
	report stats.Report,
	merged []geo.GeometryRecord,
	boundaries []geo.BoundaryRecord,
	scale geo.Scale,
) (maps, charts int, err error) {
	sinkDone := p.observeStage("sink")
	if err := p.table.WriteTable(joined); err != nil {
		sinkDone()
		return 0, 0, fmt.Errorf("write table: %w", err)
	}
	if err := p.report.WriteReport(report); err != nil {
		sinkDone()
		return 0, 0, fmt.Errorf("write report: %w", err)
	}
	if p.summary != nil {
		if err := p.summary.WriteSummary(joined, report); err != nil {
			sinkDone()
			return 0, 0, fmt.Errorf("write summary workbook: %w", err)
		}
	}
	sinkDone()

	defer p.observeStage("render")()
	maps, err = p.renderer.RenderChoropleth(merged, boundaries, scale)
	if err != nil {
		return 0, 0, fmt.Errorf("render map: %w", err)
	}
	charts, err = p.renderer.RenderCharts(joined)
	if err != nil {
		return maps, 0, fmt.Errorf("render charts: %w", err)
	}
	return maps, charts, nil
}

// observeStage times a stage; call the returned func when the stage ends.
func (p *Pipeline) observeStage(stage string) func() {
	start := domain.Clock().Now()
	return func() {
		p.metrics.StageDuration.WithLabelValues(stage).Observe(domain.Clock().Since(start).Seconds())
	}
}
