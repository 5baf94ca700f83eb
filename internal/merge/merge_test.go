package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/climateledger/disclosure-export/internal/extract"
	"github.com/climateledger/disclosure-export/internal/model"
)

func extraction(fields map[string][4]string, order ...string) *extract.Extraction {
	x := extract.NewExtraction()
	for _, name := range order {
		f := fields[name]
		x.Set(name, f[0], f[1], f[2], f[3], "")
	}
	return x
}

func TestApplyFirstSeenRowOrder(t *testing.T) {
	t.Parallel()

	tbl := model.NewWideTable("Emissions", model.YearRange{First: 2020, Last: 2021})

	y2020 := extraction(map[string][4]string{
		"field_a": {"1", "A", "CDP 2020", "2020-07-01"},
		"field_b": {"2", "B", "CDP 2020", "2020-07-01"},
	}, "field_a", "field_b")
	y2021 := extraction(map[string][4]string{
		"field_b": {"3", "B", "CDP 2021", "2021-07-01"},
		"field_c": {"4", "C", "CDP 2021", "2021-07-01"},
	}, "field_b", "field_c")

	Apply(tbl, 2020, y2020, Options{})
	Apply(tbl, 2021, y2021, Options{})

	var names []string
	for _, r := range tbl.Rows() {
		names = append(names, r.FieldName)
	}
	assert.Equal(t, []string{"field_a", "field_b", "field_c"}, names)

	b, ok := tbl.Row("field_b")
	require.True(t, ok)
	assert.Equal(t, "2", b.Cell(2020).Value)
	assert.Equal(t, "3", b.Cell(2021).Value)
}

func TestApplyKeepsFirstDescriptionAndUnit(t *testing.T) {
	t.Parallel()

	tbl := model.NewWideTable("Emissions", model.YearRange{First: 2020, Last: 2021})

	first := extract.NewExtraction()
	first.Set("field_a", "1", "Original description", "CDP 2020", "2020-07-01", "tCO2e")
	later := extract.NewExtraction()
	later.Set("field_a", "2", "Reworded description", "CDP 2021", "2021-07-01", "ktCO2e")

	Apply(tbl, 2020, first, Options{})
	Apply(tbl, 2021, later, Options{})

	row, ok := tbl.Row("field_a")
	require.True(t, ok)
	assert.Equal(t, "Original description", row.Description)
	assert.Equal(t, "tCO2e", row.Unit)
}

func TestApplyFillsEmptyDescriptionLater(t *testing.T) {
	t.Parallel()

	tbl := model.NewWideTable("Emissions", model.YearRange{First: 2020, Last: 2021})

	first := extract.NewExtraction()
	first.Set("field_a", "1", "", "CDP 2020", "2020-07-01", "")
	later := extract.NewExtraction()
	later.Set("field_a", "2", "Filled in later", "CDP 2021", "2021-07-01", "MWh")

	Apply(tbl, 2020, first, Options{})
	Apply(tbl, 2021, later, Options{})

	row, ok := tbl.Row("field_a")
	require.True(t, ok)
	assert.Equal(t, "Filled in later", row.Description)
	assert.Equal(t, "MWh", row.Unit)
}

func TestApplyRestatedFlag(t *testing.T) {
	t.Parallel()

	tbl := model.NewWideTable("Emissions", model.YearRange{First: 2020, Last: 2020})

	x := extract.NewExtraction()
	x.Set("nominal", "1", "", "CDP 2020", "2020-07-01", "")
	x.Set("overridden", "2", "", "CDP 2023 Restatement", "2023-06-15", "")
	x.Set("suppressed", model.LongDash, "", model.EnDash, model.EnDash, "")

	Apply(tbl, 2020, x, Options{Restated: true, NominalSource: "CDP 2020"})

	nominal, _ := tbl.Row("nominal")
	assert.Empty(t, nominal.Cell(2020).Restated)

	overridden, _ := tbl.Row("overridden")
	assert.Equal(t, "Yes", overridden.Cell(2020).Restated)

	// A dash source differs from the nominal one but is not a real
	// source, so it never flags.
	suppressed, _ := tbl.Row("suppressed")
	assert.Empty(t, suppressed.Cell(2020).Restated)
}

func TestApplyRestatedDisabled(t *testing.T) {
	t.Parallel()

	tbl := model.NewWideTable("Metadata", model.YearRange{First: 2020, Last: 2020})

	x := extract.NewExtraction()
	x.Set("field_a", "1", "", "Some Other Source", "2023-06-15", "")

	Apply(tbl, 2020, x, Options{Restated: false, NominalSource: "CDP 2020"})

	row, _ := tbl.Row("field_a")
	assert.Empty(t, row.Cell(2020).Restated)
}
