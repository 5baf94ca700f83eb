package extract

import (
	"context"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/climateledger/disclosure-export/internal/catalog"
	"github.com/climateledger/disclosure-export/internal/model"
)

// promptSuffix marks the side-channel description embedded next to a
// field in the submission itself.
const promptSuffix = "_prompt"

// Extraction is the flat result of one extraction pass: parallel maps
// keyed by output field name, plus the emit order the merger uses to keep
// rows in first-seen order.
type Extraction struct {
	Order        []string
	Values       map[string]string
	Descriptions map[string]string
	Sources      map[string]string
	LastUpdated  map[string]string
	Units        map[string]string
}

// NewExtraction creates an empty extraction result.
func NewExtraction() *Extraction {
	return &Extraction{
		Values:       make(map[string]string),
		Descriptions: make(map[string]string),
		Sources:      make(map[string]string),
		LastUpdated:  make(map[string]string),
		Units:        make(map[string]string),
	}
}

// Set records one resolved field. First write of a name fixes its
// position in the emit order.
func (x *Extraction) Set(name, value, description, source, lastUpdated, unit string) {
	if _, seen := x.Values[name]; !seen {
		x.Order = append(x.Order, name)
	}
	x.Values[name] = value
	x.Descriptions[name] = description
	x.Sources[name] = source
	x.LastUpdated[name] = lastUpdated
	x.Units[name] = unit
}

// Len returns the number of emitted fields.
func (x *Extraction) Len() int { return len(x.Order) }

// FieldSpec names the flat fields one extraction pass pulls from a
// submission.
type FieldSpec struct {
	Fields []string
	// Strict zero-fills absent fields with the blank sentinel instead of
	// omitting them, so single-record sheets keep a stable field set.
	Strict bool
}

// Extractor resolves field values against a submission and the static
// catalogue.
type Extractor struct {
	cat catalog.Catalog
}

// New creates an Extractor over a catalogue.
func New(cat catalog.Catalog) *Extractor {
	return &Extractor{cat: cat}
}

// Extract pulls the named flat fields from a submission. Absent fields
// are skipped (or blank-filled under Strict); shape mismatches are
// treated as absence. It never fails for missing data; the only error it
// returns is a cancelled context.
func (e *Extractor) Extract(ctx context.Context, spec FieldSpec, sub *model.Submission) (*Extraction, error) {
	out := NewExtraction()

	for _, name := range spec.Fields {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		raw, ok := sub.Field(name).AsScalar()
		if !ok {
			if !sub.Field(name).IsAbsent() {
				zap.L().Warn("extract: unexpected field shape, treating as absent",
					zap.String("field", name),
					zap.Int("year", sub.ReportingYear),
				)
			}
			if !spec.Strict {
				continue
			}
			raw = model.Dash
		}

		value := NormalizeNumeric(raw)
		source, lastUpdated, _ := e.resolveProvenance(sub, name, value)
		desc := e.description(ctx, sub.Values, name)
		unit := e.unit(ctx, sub, name)

		out.Set(name, value, desc, source, lastUpdated, unit)
	}

	return out, nil
}

// resolveProvenance applies the restatement-precedence rule for one base
// field name: a restatement override wins outright; a not-disclosed value
// carries no provenance; otherwise the submission's nominal source and
// date apply.
func (e *Extractor) resolveProvenance(sub *model.Submission, base, value string) (source, lastUpdated string, restated bool) {
	if rs, ok := sub.RestatedFor(base); ok {
		return rs.Source, rs.ReportingDate, true
	}
	if value == model.LongDash {
		return model.EnDash, model.EnDash, false
	}
	return sub.DisclosureSource, sub.ReportingDate, false
}

// description resolves a field's short description: the in-submission
// prompt wins, then the static catalogue. Lookup failure degrades to ""
// with a warning; absence of a description is never an error.
func (e *Extractor) description(ctx context.Context, rec model.Record, base string) string {
	if rec != nil {
		if p, ok := rec[base+promptSuffix].AsScalar(); ok && p != "" {
			return p
		}
	}

	desc, err := e.cat.FieldDescription(ctx, base)
	if err != nil {
		zap.L().Warn("extract: description lookup failed",
			zap.String("field", base),
			zap.Error(err),
		)
		return ""
	}
	return desc
}

// unit resolves a plain field's unit: the submission's parallel unit
// tree first, then the catalogue. Templated units are resolved against
// sibling values in a second pass.
func (e *Extractor) unit(ctx context.Context, sub *model.Submission, name string) string {
	if u, ok := sub.UnitField(name).AsScalar(); ok && u != "" {
		return e.resolveUnitTemplate(u, sub)
	}

	u, err := e.cat.FieldUnit(ctx, name)
	if err != nil {
		zap.L().Warn("extract: unit lookup failed",
			zap.String("field", name),
			zap.Error(err),
		)
		return ""
	}
	return e.resolveUnitTemplate(u, sub)
}

// unitTemplateRe matches a "{other_field}" dynamic unit reference.
var unitTemplateRe = regexp.MustCompile(`\{([a-zA-Z0-9_]+)\}`)

// resolveUnitTemplate substitutes "{field}" references in a unit string
// with the sibling field's scalar value. Unresolvable references render
// as empty rather than leaking braces into the sheet.
func (e *Extractor) resolveUnitTemplate(unit string, sub *model.Submission) string {
	if !strings.Contains(unit, "{") {
		return unit
	}
	return unitTemplateRe.ReplaceAllStringFunc(unit, func(m string) string {
		ref := strings.Trim(m, "{}")
		if v, ok := sub.Field(ref).AsScalar(); ok && !model.IsSentinel(v) {
			return v
		}
		return ""
	})
}
