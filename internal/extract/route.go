package extract

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/climateledger/disclosure-export/internal/model"
)

// otherCategoryIndex is the reduced category number reserved for "Other";
// its key rewrite uses an _other suffix instead of a _c{N} index.
const otherCategoryIndex = 16

// CategoryRoute is the resolved bucket for one record of a
// multi-category sub-form.
type CategoryRoute struct {
	Index int
	Label string
	Other bool
}

// KeySuffix returns the discriminator appended to the group token.
func (r CategoryRoute) KeySuffix() string {
	if r.Other {
		return "_other"
	}
	return fmt.Sprintf("_c%d", r.Index)
}

// RewriteKey embeds the category discriminator into a field key by
// rewriting the group token. An empty group token appends the suffix.
func (r CategoryRoute) RewriteKey(key, groupToken string) string {
	if groupToken == "" || !strings.Contains(key, groupToken) {
		return key + r.KeySuffix()
	}
	return strings.Replace(key, groupToken, groupToken+r.KeySuffix(), 1)
}

// Route resolves a coded category value to its bucket. Category codes
// are offset by hundreds per protocol, so code mod 100 gives the 1-based
// category number. A sentinel or unparseable code falls back to the
// record's 1-based position, which assumes upstream never reorders
// records. Routing is a pure function of the code and catalogue state.
func (e *Extractor) Route(ctx context.Context, coded string, position int) CategoryRoute {
	code, err := strconv.Atoi(strings.TrimSpace(coded))
	if coded == "" || model.IsSentinel(coded) || err != nil {
		return CategoryRoute{Index: position, Other: position == otherCategoryIndex}
	}

	idx := code % 100
	label, lerr := e.cat.ChoiceLabel(ctx, code)
	if lerr != nil {
		zap.L().Warn("extract: choice label lookup failed",
			zap.Int("code", code),
			zap.Error(lerr),
		)
		label = ""
	}

	return CategoryRoute{Index: idx, Label: label, Other: idx == otherCategoryIndex}
}

// ExpandCategories flattens a multi-category repeatable sub-form. Each
// record is routed to its category bucket by categoryField and every
// other key is rewritten to embed the discriminator. Absent or malformed
// sub-forms fall back to the default-attribute template exactly as in
// Expand.
func (e *Extractor) ExpandCategories(ctx context.Context, formName, categoryField, groupToken string, sub *model.Submission) (*Extraction, error) {
	raw := sub.Field(formName)
	records, isList := raw.AsList()

	if raw.IsAbsent() || raw.IsSentinelValue() || !isList {
		return e.expandDefault(ctx, formName, sub)
	}

	unitRecords, _ := sub.UnitField(formName).AsList()

	out := NewExtraction()
	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		coded, _ := rec[categoryField].AsScalar()
		route := e.Route(ctx, coded, i+1)

		// The category's own column carries the resolved label when the
		// catalogue knows the code, else the raw code.
		labelValue := route.Label
		if labelValue == "" {
			labelValue = NormalizeNumeric(coded)
		}
		source, lastUpdated, _ := e.resolveProvenance(sub, categoryField, labelValue)
		out.Set(route.RewriteKey(categoryField, groupToken), labelValue,
			e.description(ctx, rec, categoryField), source, lastUpdated, "")

		var unitRec model.Record
		if i < len(unitRecords) {
			unitRec = unitRecords[i]
		}
		e.emitRecord(ctx, out, sub, rec, unitRec, func(base string) string {
			return route.RewriteKey(base, groupToken)
		}, func(base string) bool {
			return base == categoryField
		})
	}

	return out, nil
}
