package ibge

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/geodados/municipio-data-etl/internal/domain"
)

// ParseRegistry flattens the nested localidades hierarchy into flat
// municipality records. Items missing a component (observed in practice for
// distrito estadual entries) produce records with empty fields rather than
// aborting the parse.
func ParseRegistry(items []any) []domain.MunicipalityRecord {
	records := make([]domain.MunicipalityRecord, 0, len(items))
	for _, item := range items {
		records = append(records, domain.MunicipalityRecord{
			ID:         domain.NormalizeCanonicalID(stringify(pathValue(item, "id"))),
			Name:       domain.PathString(item, "nome"),
			StateCode:  domain.PathString(item, "microrregiao", "mesorregiao", "UF", "sigla"),
			StateName:  domain.PathString(item, "microrregiao", "mesorregiao", "UF", "nome"),
			RegionName: domain.PathString(item, "microrregiao", "mesorregiao", "UF", "regiao", "nome"),
		})
	}
	return records
}

// ReadRegistryFile parses a localidades JSON dump from disk.
func ReadRegistryFile(path string) ([]domain.MunicipalityRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read registry file: %w", err)
	}
	var items []any
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode registry file %s: %w", path, err)
	}
	return ParseRegistry(items), nil
}

func pathValue(root any, keys ...string) any {
	v, _ := domain.PathValue(root, keys...)
	return v
}

// stringify renders a decoded JSON scalar without the float64 exponent
// notation encoding/json produces for large municipality codes.
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case json.Number:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}
