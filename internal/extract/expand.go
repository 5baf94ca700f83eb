package extract

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/climateledger/disclosure-export/internal/model"
)

// bookkeepingKeys are record-internal identifiers that never become
// output columns.
var bookkeepingKeys = map[string]bool{
	"id":        true,
	"object_id": true,
	"row_id":    true,
}

func isBookkeepingKey(k string) bool {
	return bookkeepingKeys[k] || strings.HasSuffix(k, promptSuffix)
}

// Expand flattens a repeatable sub-form into numbered fields: every key
// of record i emits "<key>_<i+1>". A sub-form that is absent, a sentinel,
// or the wrong shape is replaced by the catalogue's default-attribute
// template so the sheet's column structure stays stable; an unknown form
// name there is a fatal configuration error.
func (e *Extractor) Expand(ctx context.Context, formName string, sub *model.Submission) (*Extraction, error) {
	raw := sub.Field(formName)
	records, isList := raw.AsList()

	if raw.IsAbsent() || raw.IsSentinelValue() || !isList {
		if !raw.IsAbsent() && !isList && !raw.IsSentinelValue() {
			zap.L().Warn("extract: sub-form has unexpected shape, substituting defaults",
				zap.String("form", formName),
				zap.Int("year", sub.ReportingYear),
			)
		}
		return e.expandDefault(ctx, formName, sub)
	}

	unitRecords, _ := sub.UnitField(formName).AsList()

	out := NewExtraction()
	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		counter := i + 1
		var unitRec model.Record
		if i < len(unitRecords) {
			unitRec = unitRecords[i]
		}
		e.emitRecord(ctx, out, sub, rec, unitRec, func(base string) string {
			return fmt.Sprintf("%s_%d", base, counter)
		}, nil)
	}

	return out, nil
}

// expandDefault emits the default-attribute template for a form as a
// single synthetic record: every template field numbered _1 and valued
// with the not-disclosed sentinel.
func (e *Extractor) expandDefault(ctx context.Context, formName string, sub *model.Submission) (*Extraction, error) {
	template, err := e.cat.DefaultTemplate(ctx, formName, sub.SchemaVersion)
	if err != nil {
		return nil, err
	}

	out := NewExtraction()
	for _, base := range template {
		source, lastUpdated, _ := e.resolveProvenance(sub, base, model.LongDash)
		desc := e.description(ctx, nil, base)
		unit := e.recordUnit(ctx, nil, base)
		out.Set(base+"_1", model.LongDash, desc, source, lastUpdated, unit)
	}
	return out, nil
}

// emitRecord flattens one sub-form record. rename maps a base key to its
// output field name; skip, when non-nil, suppresses keys entirely.
func (e *Extractor) emitRecord(
	ctx context.Context,
	out *Extraction,
	sub *model.Submission,
	rec, unitRec model.Record,
	rename func(base string) string,
	skip func(base string) bool,
) {
	keys := make([]string, 0, len(rec))
	for k := range rec {
		if isBookkeepingKey(k) {
			continue
		}
		if skip != nil && skip(k) {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, base := range keys {
		rawVal, ok := rec[base].AsScalar()
		if !ok {
			// Nested non-scalar inside a sub-form record: fail closed.
			continue
		}

		value := NormalizeNumeric(rawVal)
		source, lastUpdated, _ := e.resolveProvenance(sub, base, value)
		desc := e.description(ctx, rec, base)
		unit := e.recordUnit(ctx, unitRec, base)

		out.Set(rename(base), value, desc, source, lastUpdated, unit)
	}
}

// recordUnit resolves a sub-form field's unit from the positional unit
// record, falling back to the catalogue. Percent units are carried in the
// value string, not the unit column, so "%" renders empty.
func (e *Extractor) recordUnit(ctx context.Context, unitRec model.Record, base string) string {
	if unitRec != nil {
		if u, ok := unitRec[base].AsScalar(); ok && u != "" {
			if u == "%" {
				return ""
			}
			return u
		}
	}

	u, err := e.cat.FieldUnit(ctx, base)
	if err != nil {
		zap.L().Warn("extract: unit lookup failed",
			zap.String("field", base),
			zap.Error(err),
		)
		return ""
	}
	if u == "%" {
		return ""
	}
	return u
}
