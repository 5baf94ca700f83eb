package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/climateledger/disclosure-export/internal/extract"
)

func TestUnionJoinsOnFieldName(t *testing.T) {
	t.Parallel()

	plain := extract.NewExtraction()
	plain.Set("total", "100", "Total", "CDP", "2021-07-01", "tCO2e")

	repeat := extract.NewExtraction()
	repeat.Set("reason_1", "De minimis", "Reason", "CDP", "2021-07-01", "")

	out := Union(plain, repeat)
	assert.Equal(t, []string{"total", "reason_1"}, out.Order)
	assert.Equal(t, "100", out.Values["total"])
	assert.Equal(t, "De minimis", out.Values["reason_1"])
}

func TestUnionFirstNonNullWins(t *testing.T) {
	t.Parallel()

	a := extract.NewExtraction()
	a.Set("shared", "from-a", "", "Source A", "", "")
	b := extract.NewExtraction()
	b.Set("shared", "from-b", "", "Source B", "", "")

	out := Union(a, b)
	require.Equal(t, 1, out.Len())
	assert.Equal(t, "from-a", out.Values["shared"])
	assert.Equal(t, "Source A", out.Sources["shared"])
}

func TestUnionNullFilledByLaterPart(t *testing.T) {
	t.Parallel()

	a := extract.NewExtraction()
	a.Set("shared", "", "", "", "", "")
	b := extract.NewExtraction()
	b.Set("shared", "from-b", "Desc B", "Source B", "2021-07-01", "")

	out := Union(a, b)
	assert.Equal(t, "from-b", out.Values["shared"])
	assert.Equal(t, "Source B", out.Sources["shared"])
}

func TestUnionIgnoresNilParts(t *testing.T) {
	t.Parallel()

	a := extract.NewExtraction()
	a.Set("x", "1", "", "", "", "")

	out := Union(nil, a, nil)
	assert.Equal(t, 1, out.Len())
}
