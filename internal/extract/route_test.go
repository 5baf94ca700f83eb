package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/climateledger/disclosure-export/internal/model"
)

func TestRouteCodedCategory(t *testing.T) {
	t.Parallel()

	e := New(testCatalog())

	r := e.Route(context.Background(), "100003", 1)
	assert.Equal(t, 3, r.Index)
	assert.Equal(t, "Fuel- and Energy-Related Activities", r.Label)
	assert.False(t, r.Other)
	assert.Equal(t, "_c3", r.KeySuffix())
}

func TestRouteOtherCategory(t *testing.T) {
	t.Parallel()

	e := New(testCatalog())

	r := e.Route(context.Background(), "100016", 4)
	assert.Equal(t, 16, r.Index)
	assert.True(t, r.Other)
	assert.Equal(t, "_other", r.KeySuffix())
}

func TestRoutePositionalFallback(t *testing.T) {
	t.Parallel()

	e := New(testCatalog())

	// A sentinel or unparseable code routes by record position. This
	// assumes the store returns records in their original order.
	for _, coded := range []string{"", model.Dash, model.LongDash, "not-a-code"} {
		r := e.Route(context.Background(), coded, 3)
		assert.Equal(t, 3, r.Index, "%q", coded)
		assert.False(t, r.Other)
		assert.Empty(t, r.Label)
	}

	r := e.Route(context.Background(), model.Dash, 16)
	assert.True(t, r.Other, "positional fallback still honors the Other bucket")
}

func TestRewriteKey(t *testing.T) {
	t.Parallel()

	r := CategoryRoute{Index: 3}
	assert.Equal(t, "s3_c3_emissions", r.RewriteKey("s3_emissions", "s3"))
	assert.Equal(t, "some_field_c3", r.RewriteKey("some_field", ""))
	assert.Equal(t, "unrelated_field_c3", r.RewriteKey("unrelated_field", "s3"))

	other := CategoryRoute{Index: 16, Other: true}
	assert.Equal(t, "s3_other_emissions", other.RewriteKey("s3_emissions", "s3"))
}

func TestExpandCategoriesRoutesRecords(t *testing.T) {
	t.Parallel()

	e := New(testCatalog())
	sub := testSubmission(model.Record{
		"s3_emissions_breakdown_dict": model.List([]model.Record{
			{"s3_category": model.Scalar("100001"), "s3_emissions": model.Scalar("1.2e3")},
			{"s3_category": model.Scalar("100016"), "s3_emissions": model.Scalar("50")},
		}),
	}, nil)

	x, err := e.ExpandCategories(context.Background(), "s3_emissions_breakdown_dict", "s3_category", "s3", sub)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"s3_c1_category", "s3_c1_emissions",
		"s3_other_category", "s3_other_emissions",
	}, x.Order)
	assert.Equal(t, "Purchased Goods and Services", x.Values["s3_c1_category"])
	assert.Equal(t, "1200", x.Values["s3_c1_emissions"])
	assert.Equal(t, "Other", x.Values["s3_other_category"])
	assert.Equal(t, "50", x.Values["s3_other_emissions"])
}

func TestExpandCategoriesUnknownCodeKeepsRawValue(t *testing.T) {
	t.Parallel()

	e := New(testCatalog())
	sub := testSubmission(model.Record{
		"s3_emissions_breakdown_dict": model.List([]model.Record{
			{"s3_category": model.Scalar("100042"), "s3_emissions": model.Scalar("10")},
		}),
	}, nil)

	x, err := e.ExpandCategories(context.Background(), "s3_emissions_breakdown_dict", "s3_category", "s3", sub)
	require.NoError(t, err)

	assert.Equal(t, "100042", x.Values["s3_c42_category"])
	assert.Equal(t, "10", x.Values["s3_c42_emissions"])
}

func TestExpandCategoriesSentinelFallsBackToPosition(t *testing.T) {
	t.Parallel()

	e := New(testCatalog())
	sub := testSubmission(model.Record{
		"s3_emissions_breakdown_dict": model.List([]model.Record{
			{"s3_category": model.Scalar(model.Dash), "s3_emissions": model.Scalar("5")},
			{"s3_category": model.Scalar(model.Dash), "s3_emissions": model.Scalar("6")},
		}),
	}, nil)

	x, err := e.ExpandCategories(context.Background(), "s3_emissions_breakdown_dict", "s3_category", "s3", sub)
	require.NoError(t, err)

	assert.Equal(t, "5", x.Values["s3_c1_emissions"])
	assert.Equal(t, "6", x.Values["s3_c2_emissions"])
}

func TestExpandCategoriesAbsentUsesDefaultTemplate(t *testing.T) {
	t.Parallel()

	e := New(testCatalog())
	sub := testSubmission(model.Record{}, nil)

	// The breakdown form has no template in this catalogue; an absent
	// sub-form is then a configuration error, same as Expand.
	_, err := e.ExpandCategories(context.Background(), "s3_emissions_breakdown_dict", "s3_category", "s3", sub)
	assert.Error(t, err)
}
