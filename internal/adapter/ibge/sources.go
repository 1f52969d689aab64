package ibge

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/geodados/municipio-data-etl/internal/domain"
	"github.com/geodados/municipio-data-etl/internal/geo"
)

// Sources resolves each pipeline input either from a local file, when a path
// is configured, or from the IBGE endpoints. Local paths win so a run can be
// replayed against captured inputs without network access.
type Sources struct {
	RegistryPath string

	EstimatesPath      string
	EstimatesSheet     string
	EstimatesHeaderRow int

	MeshPath string
	MeshUF   string

	Client *Client
	Mesh   MeshFetcher
	Logger *slog.Logger
}

func (s *Sources) FetchRegistry(ctx context.Context) ([]domain.MunicipalityRecord, error) {
	if s.RegistryPath != "" {
		s.Logger.Info("reading registry from file", "path", s.RegistryPath)
		return ReadRegistryFile(s.RegistryPath)
	}
	return s.Client.FetchMunicipalities(ctx)
}

func (s *Sources) FetchPopulation(ctx context.Context) ([]domain.PopulationRecord, error) {
	path := s.EstimatesPath
	if path == "" {
		dir, err := os.MkdirTemp("", "estimativas-")
		if err != nil {
			return nil, fmt.Errorf("create estimates download dir: %w", err)
		}
		defer os.RemoveAll(dir)

		path = filepath.Join(dir, "estimativas.xlsx")
		if err := s.Client.DownloadEstimates(ctx, path); err != nil {
			return nil, err
		}
	} else {
		s.Logger.Info("reading estimates from file", "path", path)
	}
	return ReadEstimates(path, s.EstimatesSheet, s.EstimatesHeaderRow)
}

func (s *Sources) FetchGeometry(ctx context.Context) (geo.FeatureTable, error) {
	if s.MeshPath != "" {
		s.Logger.Info("reading mesh from file", "path", s.MeshPath)
		return ReadMeshFile(s.MeshPath)
	}
	return s.Mesh.FetchMesh(ctx, s.MeshUF)
}
