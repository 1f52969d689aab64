// Package ibge fetches and decodes the pipeline's three IBGE sources: the
// localidades registry, the estimativas population spreadsheet, and the
// malhas municipal mesh.
package ibge

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/geodados/municipio-data-etl/internal/domain"
	"github.com/geodados/municipio-data-etl/internal/geo"
	"github.com/geodados/municipio-data-etl/internal/observability"
)

const userAgent = "municipio-data-etl/1.0 (+https://github.com/geodados/municipio-data-etl)"

// Client talks to the IBGE public endpoints. It is the Source Fetcher
// collaborator: it only retrieves and decodes, never transforms.
type Client struct {
	registryURL  string
	estimatesURL string
	meshURL      string // printf pattern with one %s verb for the UF
	httpClient   *http.Client
	logger       *slog.Logger
	metrics      *observability.Metrics
}

// NewClient creates a Client with the given endpoints and per-request timeout.
func NewClient(registryURL, estimatesURL, meshURL string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		registryURL:  registryURL,
		estimatesURL: estimatesURL,
		meshURL:      meshURL,
		httpClient:   &http.Client{Timeout: timeout},
		logger:       logger,
		metrics:      metrics,
	}
}

// FetchMunicipalities downloads and flattens the localidades registry.
func (c *Client) FetchMunicipalities(ctx context.Context) ([]domain.MunicipalityRecord, error) {
	body, err := c.get(ctx, "municipios", c.registryURL)
	if err != nil {
		return nil, err
	}

	var items []any
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("decode registry: %w", err)
	}

	records := ParseRegistry(items)
	c.logger.Info("registry fetched", "rows", len(records))
	return records, nil
}

// DownloadEstimates streams the estimates spreadsheet to dest. The download
// goes to a temporary file first so an interrupted transfer never leaves a
// partial spreadsheet behind.
func (c *Client) DownloadEstimates(ctx context.Context, dest string) error {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.estimatesURL, nil)
	if err != nil {
		return fmt.Errorf("build estimates request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.FetchRequests.WithLabelValues("estimativas", "error").Inc()
		return fmt.Errorf("download estimates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.metrics.FetchRequests.WithLabelValues("estimativas", "error").Inc()
		return fmt.Errorf("download estimates: unexpected status %d", resp.StatusCode)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create estimates dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".estimates-*")
	if err != nil {
		return fmt.Errorf("create estimates temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		c.metrics.FetchRequests.WithLabelValues("estimativas", "error").Inc()
		return fmt.Errorf("write estimates: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close estimates temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return fmt.Errorf("move estimates into place: %w", err)
	}

	c.metrics.FetchRequests.WithLabelValues("estimativas", "success").Inc()
	c.metrics.FetchDuration.WithLabelValues("estimativas").Observe(time.Since(start).Seconds())
	c.logger.Info("estimates downloaded", "dest", dest, "duration", time.Since(start))
	return nil
}

// FetchMesh downloads the municipal mesh GeoJSON for one state.
func (c *Client) FetchMesh(ctx context.Context, uf string) (geo.FeatureTable, error) {
	body, err := c.get(ctx, "malha", fmt.Sprintf(c.meshURL, uf))
	if err != nil {
		return geo.FeatureTable{}, err
	}

	table, err := ReadMesh(body)
	if err != nil {
		return geo.FeatureTable{}, fmt.Errorf("decode mesh for %s: %w", uf, err)
	}

	c.logger.Info("mesh fetched", "uf", uf, "features", len(table.Features))
	return table, nil
}

func (c *Client) get(ctx context.Context, resource, url string) ([]byte, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", resource, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.FetchRequests.WithLabelValues(resource, "error").Inc()
		return nil, fmt.Errorf("fetch %s: %w", resource, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.metrics.FetchRequests.WithLabelValues(resource, "error").Inc()
		return nil, fmt.Errorf("fetch %s: unexpected status %d", resource, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.FetchRequests.WithLabelValues(resource, "error").Inc()
		return nil, fmt.Errorf("read %s response: %w", resource, err)
	}

	c.metrics.FetchRequests.WithLabelValues(resource, "success").Inc()
	c.metrics.FetchDuration.WithLabelValues(resource).Observe(time.Since(start).Seconds())
	return body, nil
}
