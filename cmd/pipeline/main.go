package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	httpadapter "github.com/geodados/municipio-data-etl/internal/adapter/http"
	"github.com/geodados/municipio-data-etl/internal/adapter/ibge"
	"github.com/geodados/municipio-data-etl/internal/adapter/sink"
	"github.com/geodados/municipio-data-etl/internal/config"
	"github.com/geodados/municipio-data-etl/internal/geo"
	"github.com/geodados/municipio-data-etl/internal/observability"
	"github.com/geodados/municipio-data-etl/internal/pipeline"
	"github.com/geodados/municipio-data-etl/internal/render"
)

const (
	tableFile   = "pop_mun_final.csv"
	reportFile  = "relatorio_estatistico_pop.csv"
	summaryFile = "resumo_municipios.xlsx"

	// One cache slot per UF.
	meshCacheSize = 27

	shutdownTimeout = 10 * time.Second
)

func main() {
	// A missing .env is fine; the environment wins either way.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	client := ibge.NewClient(cfg.RegistryURL, cfg.EstimatesURL, cfg.MeshURL, cfg.FetchTimeout, logger, metrics)
	sources := &ibge.Sources{
		RegistryPath:       cfg.RegistryPath,
		EstimatesPath:      cfg.EstimatesPath,
		EstimatesSheet:     cfg.EstimatesSheet,
		EstimatesHeaderRow: cfg.EstimatesHeaderRow,
		MeshPath:           cfg.MeshPath,
		MeshUF:             cfg.MeshUF,
		Client:             client,
		Mesh:               ibge.NewCachedMeshFetcher(client, meshCacheSize, metrics),
		Logger:             logger,
	}

	renderer := &render.ArtifactRenderer{
		ChartsDir:       cfg.ChartsDir,
		Title:           "População Estimada dos Municípios",
		ColorScale:      cfg.ColorScale,
		DPI:             cfg.MapDPI,
		BoundaryOverlay: cfg.BoundaryOverlay,
		TopN:            cfg.TopN,
	}

	p := pipeline.New(
		sources, sources, sources,
		&sink.CSVTableSink{Path: filepath.Join(cfg.OutputDir, tableFile)},
		&sink.CSVReportSink{Path: filepath.Join(cfg.OutputDir, reportFile)},
		&sink.ExcelSummarySink{Path: filepath.Join(cfg.OutputDir, summaryFile)},
		renderer,
		pipeline.Options{
			GeometryCodeColumn: cfg.GeometryCodeColumn,
			ScaleMode:          geo.ScaleMode(cfg.ScaleMode),
		},
		logger,
		metrics,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var srv *httpadapter.Server
	if cfg.HTTPAddr != "" {
		srv = httpadapter.NewServer(cfg.HTTPAddr, p, runStatus(p), logger)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server error", "error", err)
			}
		}()
	}

	if _, err := p.Run(ctx); err != nil {
		logger.Error("pipeline run failed", "error", err)
		shutdown(srv, logger)
		os.Exit(1)
	}

	// With a listener configured, stay up for scraping until a signal lands.
	if srv != nil {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdown(srv, logger)
	}
	logger.Info("done")
}

func runStatus(p *pipeline.Pipeline) httpadapter.StatusFunc {
	return func() (httpadapter.RunStatus, bool) {
		summary, ok := p.LastRun()
		if !ok {
			return httpadapter.RunStatus{}, false
		}
		return httpadapter.RunStatus{
			FinishedAt:      summary.FinishedAt,
			Duration:        summary.Duration.String(),
			Municipios:      summary.Municipios,
			ComPopulacao:    summary.ComPopulacao,
			SemPopulacao:    summary.SemPopulacao,
			Outliers:        summary.Outliers,
			MapasGerados:    summary.MapasGerados,
			GraficosGerados: summary.GraficosGerados,
		}, true
	}
}

func shutdown(srv *httpadapter.Server, logger *slog.Logger) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
}
