package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geodados/municipio-data-etl/internal/domain"
)

func municipality(id domain.CanonicalID, name string) domain.MunicipalityRecord {
	return domain.MunicipalityRecord{ID: id, Name: name, StateCode: "SP"}
}

func population(state, munic, text string) domain.PopulationRecord {
	return domain.PopulationRecord{
		StateCodeRaw:        state,
		MunicipalityCodeRaw: munic,
		PopulationText:      text,
		ID:                  domain.MakeCanonicalID(state, munic),
	}
}

func TestJoin(t *testing.T) {
	t.Run("left outer semantics", func(t *testing.T) {
		left := []domain.MunicipalityRecord{
			municipality("3500001", "Exemplo"),
			municipality("3500002", "Sem População"),
		}
		right := []domain.PopulationRecord{
			population("35", "00001", "1.234,5"),
		}

		out, stats, err := Join(left, right)
		require.NoError(t, err)
		require.Len(t, out, 2)

		require.NotNil(t, out[0].Population)
		assert.Equal(t, 1234.5, *out[0].Population)
		assert.Nil(t, out[1].Population)

		assert.Equal(t, 1, stats.Matched)
		assert.Equal(t, 1, stats.Unmatched)
	})

	t.Run("cardinality equals left for empty right", func(t *testing.T) {
		left := []domain.MunicipalityRecord{
			municipality("3500001", "A"),
			municipality("3500002", "B"),
			municipality("3500003", "C"),
		}

		out, stats, err := Join(left, nil)
		require.NoError(t, err)
		assert.Len(t, out, len(left))
		assert.Equal(t, 0, stats.Matched)
		assert.Equal(t, 3, stats.Unmatched)
		for _, rec := range out {
			assert.Nil(t, rec.Population)
		}
	})

	t.Run("empty left yields empty output", func(t *testing.T) {
		out, _, err := Join(nil, []domain.PopulationRecord{population("35", "1", "10")})
		require.NoError(t, err)
		assert.Empty(t, out)
	})

	t.Run("duplicate right keys abort", func(t *testing.T) {
		left := []domain.MunicipalityRecord{municipality("3500001", "A")}
		right := []domain.PopulationRecord{
			population("35", "00001", "100"),
			population("35", "00001", "200"),
		}

		_, _, err := Join(left, right)
		require.Error(t, err)

		var ambiguous *domain.AmbiguousJoinError
		require.ErrorAs(t, err, &ambiguous)
		assert.Equal(t, []domain.CanonicalID{"3500001"}, ambiguous.Keys)
	})

	t.Run("null keys excluded from matching", func(t *testing.T) {
		left := []domain.MunicipalityRecord{
			municipality(domain.NullID, "Sem Chave"),
			municipality("3500001", "A"),
		}
		right := []domain.PopulationRecord{
			population("", "", "999"), // null key, must not match anything
			population("35", "00001", "500"),
		}

		out, stats, err := Join(left, right)
		require.NoError(t, err)
		require.Len(t, out, 2)

		assert.Nil(t, out[0].Population)
		require.NotNil(t, out[1].Population)
		assert.Equal(t, 500.0, *out[1].Population)
		assert.Equal(t, 1, stats.NullLeftKeys)
		assert.Equal(t, 1, stats.NullRightKeys)
	})

	t.Run("unparseable population degrades to nil", func(t *testing.T) {
		left := []domain.MunicipalityRecord{municipality("3500001", "A")}
		right := []domain.PopulationRecord{population("35", "00001", "(veja nota)")}

		out, stats, err := Join(left, right)
		require.NoError(t, err)
		assert.Nil(t, out[0].Population)
		assert.Equal(t, 1, stats.Matched)
		assert.Equal(t, 1, stats.ParseFailures)
	})
}
