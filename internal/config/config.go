// Package config loads pipeline settings from environment variables,
// applying defaults where unset.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Default IBGE endpoints. Paths take precedence: when a local file path is
// configured the corresponding URL is never contacted.
const (
	DefaultRegistryURL  = "https://servicodados.ibge.gov.br/api/v1/localidades/municipios"
	DefaultMeshURL      = "https://servicodados.ibge.gov.br/api/v3/malhas/estados/%s?formato=application/vnd.geo+json&intrarregiao=municipio"
	DefaultEstimatesURL = "https://ftp.ibge.gov.br/Estimativas_de_Populacao/Estimativas_2025/POP2025_20260113.xlsx"
)

// Config holds all pipeline settings.
type Config struct {
	// Sources. A non-empty *Path reads a local file; otherwise the URL is fetched.
	RegistryPath  string
	RegistryURL   string
	EstimatesPath string
	EstimatesURL  string
	MeshPath      string
	MeshURL       string
	MeshUF        string // state to map when fetching the mesh, e.g. "RR"

	// Estimates spreadsheet layout. HeaderRow is 1-based: the source sheet
	// carries its header on the second row.
	EstimatesSheet     string
	EstimatesHeaderRow int

	// Geometry code column override; empty means discover per candidate markers.
	GeometryCodeColumn string

	// Output locations and rendering parameters.
	OutputDir       string
	ChartsDir       string
	ColorScale      string
	ScaleMode       string // "log" or "linear"
	MapDPI          int
	BoundaryOverlay bool
	TopN            int

	HTTPAddr     string // metrics/health listener; empty disables it
	LogLevel     string
	LogFormat    string
	FetchTimeout time.Duration
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	fetchTimeout, err := parseDuration("FETCH_TIMEOUT", "60s")
	if err != nil {
		return nil, err
	}

	headerRow, err := parsePositiveInt("ESTIMATES_HEADER_ROW", 2)
	if err != nil {
		return nil, err
	}

	dpi, err := parsePositiveInt("MAP_DPI", 300)
	if err != nil {
		return nil, err
	}

	topN, err := parsePositiveInt("CHART_TOP_N", 10)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		RegistryPath:  os.Getenv("REGISTRY_PATH"),
		RegistryURL:   envOrDefault("REGISTRY_URL", DefaultRegistryURL),
		EstimatesPath: os.Getenv("ESTIMATES_PATH"),
		EstimatesURL:  envOrDefault("ESTIMATES_URL", DefaultEstimatesURL),
		MeshPath:      os.Getenv("MESH_PATH"),
		MeshURL:       envOrDefault("MESH_URL", DefaultMeshURL),
		MeshUF:        envOrDefault("MESH_UF", "RR"),

		EstimatesSheet:     envOrDefault("ESTIMATES_SHEET", "Municípios"),
		EstimatesHeaderRow: headerRow,

		GeometryCodeColumn: os.Getenv("GEOMETRY_CODE_COLUMN"),

		OutputDir:       envOrDefault("OUTPUT_DIR", "data/ready"),
		ChartsDir:       envOrDefault("CHARTS_DIR", "graficos"),
		ColorScale:      envOrDefault("COLOR_SCALE", "blue-red"),
		ScaleMode:       envOrDefault("SCALE_MODE", "log"),
		MapDPI:          dpi,
		BoundaryOverlay: envOrDefault("BOUNDARY_OVERLAY", "true") == "true",
		TopN:            topN,

		HTTPAddr:     os.Getenv("HTTP_ADDR"),
		LogLevel:     envOrDefault("LOG_LEVEL", "info"),
		LogFormat:    envOrDefault("LOG_FORMAT", "json"),
		FetchTimeout: fetchTimeout,
	}

	if cfg.ScaleMode != "log" && cfg.ScaleMode != "linear" {
		return nil, fmt.Errorf("invalid SCALE_MODE %q: must be log or linear", cfg.ScaleMode)
	}
	if cfg.MeshPath == "" && cfg.MeshUF == "" {
		return nil, errors.New("MESH_UF is required when MESH_PATH is not set")
	}
	if cfg.OutputDir == "" {
		return nil, errors.New("OUTPUT_DIR is required")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePositiveInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return n, nil
}
