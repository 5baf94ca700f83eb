// Package catalog resolves the static schema lookups the export core
// depends on: field short descriptions, choice-code labels, unit strings,
// and the default-attribute templates used when a repeatable sub-form was
// never filled in.
package catalog

import (
	"context"

	"github.com/rotisserie/eris"
)

// ErrTemplateNotFound marks an unknown form name in the default-attribute
// catalogue. This is configuration drift, not data absence: the caller
// must abort the company's export rather than silently emit empty columns.
var ErrTemplateNotFound = eris.New("catalog: default template not found")

// Catalog is the read side of the static schema/choice cache.
//
// Description, Unit and ChoiceLabel misses are not errors: absence is
// representable and the methods return empty strings. A non-nil error
// means the upstream lookup itself failed and the caller may degrade to
// an empty result. DefaultTemplate is the exception: an unknown form name
// returns ErrTemplateNotFound and is fatal for the export.
type Catalog interface {
	// FieldDescription returns the short description for a field name,
	// or "" when the catalogue has no row for it.
	FieldDescription(ctx context.Context, name string) (string, error)

	// FieldUnit returns the unit string for a field name, or "". The
	// returned string may be "{other_field}"-templated; resolution
	// against sibling values is the extractor's job.
	FieldUnit(ctx context.Context, name string) (string, error)

	// ChoiceLabel returns the human label for a coded choice value,
	// or "" when unknown.
	ChoiceLabel(ctx context.Context, code int) (string, error)

	// DefaultTemplate returns the ordered base field names of the
	// default-attribute template for a form. schemaVersion "" selects
	// the catalogue default; a versioned lookup falls back to the
	// default before failing.
	DefaultTemplate(ctx context.Context, formName, schemaVersion string) ([]string, error)
}
