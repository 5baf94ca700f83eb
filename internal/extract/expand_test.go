package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/climateledger/disclosure-export/internal/catalog"
	"github.com/climateledger/disclosure-export/internal/model"
)

func TestExpandNumbersRecords(t *testing.T) {
	t.Parallel()

	e := New(testCatalog())
	sub := testSubmission(model.Record{
		"s1_emissions_exclusion_dict": model.List([]model.Record{
			{"exclusion_reason": model.Scalar("De minimis"), "exclusion_scope": model.Scalar("Site A")},
			{"exclusion_reason": model.Scalar("Divested"), "exclusion_scope": model.Scalar("Site B")},
		}),
	}, nil)

	x, err := e.Expand(context.Background(), "s1_emissions_exclusion_dict", sub)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"exclusion_reason_1", "exclusion_scope_1",
		"exclusion_reason_2", "exclusion_scope_2",
	}, x.Order)
	assert.Equal(t, "De minimis", x.Values["exclusion_reason_1"])
	assert.Equal(t, "Site B", x.Values["exclusion_scope_2"])
	assert.Equal(t, "Reason for exclusion", x.Descriptions["exclusion_reason_2"])
	assert.Equal(t, "CDP 2021", x.Sources["exclusion_reason_1"])
}

func TestExpandAbsentUsesDefaultTemplate(t *testing.T) {
	t.Parallel()

	e := New(testCatalog())
	sub := testSubmission(model.Record{}, nil)

	x, err := e.Expand(context.Background(), "s1_emissions_exclusion_dict", sub)
	require.NoError(t, err)

	assert.Equal(t, []string{"exclusion_reason_1", "exclusion_scope_1"}, x.Order)
	for _, name := range x.Order {
		assert.Equal(t, model.LongDash, x.Values[name])
		assert.Equal(t, model.EnDash, x.Sources[name])
		assert.Equal(t, model.EnDash, x.LastUpdated[name])
	}
}

func TestExpandSentinelUsesDefaultTemplate(t *testing.T) {
	t.Parallel()

	e := New(testCatalog())
	sub := testSubmission(model.Record{
		"s1_emissions_exclusion_dict": model.Scalar(model.NotApplicable),
	}, nil)

	x, err := e.Expand(context.Background(), "s1_emissions_exclusion_dict", sub)
	require.NoError(t, err)
	assert.Equal(t, []string{"exclusion_reason_1", "exclusion_scope_1"}, x.Order)
}

func TestExpandDefaultRespectsSchemaVersion(t *testing.T) {
	t.Parallel()

	e := New(testCatalog())
	sub := testSubmission(model.Record{}, nil)
	sub.SchemaVersion = "v2.1"

	x, err := e.Expand(context.Background(), "s1_emissions_exclusion_dict", sub)
	require.NoError(t, err)
	assert.Equal(t, []string{"exclusion_scope_1"}, x.Order)
}

func TestExpandUnknownFormIsFatal(t *testing.T) {
	t.Parallel()

	e := New(testCatalog())
	sub := testSubmission(model.Record{}, nil)

	_, err := e.Expand(context.Background(), "no_such_form_dict", sub)
	assert.ErrorIs(t, err, catalog.ErrTemplateNotFound)
}

func TestExpandSkipsBookkeepingKeys(t *testing.T) {
	t.Parallel()

	e := New(testCatalog())
	sub := testSubmission(model.Record{
		"s1_emissions_exclusion_dict": model.List([]model.Record{
			{
				"id":                      model.Scalar("row-9f3"),
				"object_id":               model.Scalar("obj-1"),
				"row_id":                  model.Scalar("7"),
				"exclusion_reason":        model.Scalar("De minimis"),
				"exclusion_reason_prompt": model.Scalar("Why excluded?"),
			},
		}),
	}, nil)

	x, err := e.Expand(context.Background(), "s1_emissions_exclusion_dict", sub)
	require.NoError(t, err)

	assert.Equal(t, []string{"exclusion_reason_1"}, x.Order)
	assert.Equal(t, "Why excluded?", x.Descriptions["exclusion_reason_1"],
		"the prompt is consumed as the description, not emitted as a column")
}

func TestExpandPercentUnitSuppressed(t *testing.T) {
	t.Parallel()

	e := New(testCatalog())
	sub := testSubmission(
		model.Record{
			"s1_emissions_exclusion_dict": model.List([]model.Record{
				{"coverage_pct": model.Scalar("85")},
			}),
		},
		model.Record{
			"s1_emissions_exclusion_dict": model.List([]model.Record{
				{"coverage_pct": model.Scalar("%")},
			}),
		},
	)

	x, err := e.Expand(context.Background(), "s1_emissions_exclusion_dict", sub)
	require.NoError(t, err)
	assert.Equal(t, "85", x.Values["coverage_pct_1"])
	assert.Equal(t, "", x.Units["coverage_pct_1"])
}

func TestExpandNestedNonScalarFailsClosed(t *testing.T) {
	t.Parallel()

	e := New(testCatalog())
	sub := testSubmission(model.Record{
		"s1_emissions_exclusion_dict": model.List([]model.Record{
			{
				"exclusion_reason": model.Scalar("De minimis"),
				"nested_junk":      model.Rec(model.Record{"x": model.Scalar("1")}),
			},
		}),
	}, nil)

	x, err := e.Expand(context.Background(), "s1_emissions_exclusion_dict", sub)
	require.NoError(t, err)
	assert.Equal(t, []string{"exclusion_reason_1"}, x.Order)
}

func TestExpandNormalizesNumbers(t *testing.T) {
	t.Parallel()

	e := New(testCatalog())
	sub := testSubmission(model.Record{
		"s1_emissions_exclusion_dict": model.List([]model.Record{
			{"coverage_pct": model.Scalar("8.64e5")},
		}),
	}, nil)

	x, err := e.Expand(context.Background(), "s1_emissions_exclusion_dict", sub)
	require.NoError(t, err)
	assert.Equal(t, "864000", x.Values["coverage_pct_1"])
}
