package catalog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/climateledger/disclosure-export/internal/db"
)

// PostgresCatalog resolves catalogue lookups against the schema tables.
// It is normally wrapped in a Cached so each distinct lookup hits the
// database once per process.
type PostgresCatalog struct {
	pool db.Pool
}

// NewPostgres creates a PostgresCatalog over an existing pool.
func NewPostgres(pool db.Pool) *PostgresCatalog {
	return &PostgresCatalog{pool: pool}
}

// FieldDescription implements Catalog. No row is not an error.
func (c *PostgresCatalog) FieldDescription(ctx context.Context, name string) (string, error) {
	var desc string
	err := c.pool.QueryRow(ctx,
		`SELECT description FROM schema_fields WHERE name = $1`, name,
	).Scan(&desc)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", eris.Wrapf(err, "catalog: field description %q", name)
	}
	return desc, nil
}

// FieldUnit implements Catalog. No row is not an error.
func (c *PostgresCatalog) FieldUnit(ctx context.Context, name string) (string, error) {
	var unit string
	err := c.pool.QueryRow(ctx,
		`SELECT COALESCE(unit, '') FROM schema_fields WHERE name = $1`, name,
	).Scan(&unit)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", eris.Wrapf(err, "catalog: field unit %q", name)
	}
	return unit, nil
}

// ChoiceLabel implements Catalog. No row is not an error.
func (c *PostgresCatalog) ChoiceLabel(ctx context.Context, code int) (string, error) {
	var label string
	err := c.pool.QueryRow(ctx,
		`SELECT label FROM choice_codes WHERE code = $1`, code,
	).Scan(&label)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", eris.Wrapf(err, "catalog: choice label %d", code)
	}
	return label, nil
}

// DefaultTemplate implements Catalog. The versioned row wins; the
// unversioned row is the fallback; no row at all is ErrTemplateNotFound.
func (c *PostgresCatalog) DefaultTemplate(ctx context.Context, formName, schemaVersion string) ([]string, error) {
	var fields []string
	err := c.pool.QueryRow(ctx,
		`SELECT fields FROM form_templates
		 WHERE form_name = $1 AND schema_version IN ($2, '')
		 ORDER BY schema_version DESC
		 LIMIT 1`, formName, schemaVersion,
	).Scan(&fields)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrTemplateNotFound, "form %q version %q", formName, schemaVersion)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "catalog: default template %q", formName)
	}
	return fields, nil
}
