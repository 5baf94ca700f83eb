package history

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/climateledger/disclosure-export/internal/db"
	"github.com/climateledger/disclosure-export/internal/model"
)

// PostgresProvider reads submission history and restatements from
// Postgres via pgx.
type PostgresProvider struct {
	pool    db.Pool
	closeFn func()
}

// NewPostgres creates a provider over an existing pool. closeFn, when
// non-nil, is invoked on Close.
func NewPostgres(pool db.Pool, closeFn func()) *PostgresProvider {
	return &PostgresProvider{pool: pool, closeFn: closeFn}
}

// Close releases the underlying pool.
func (p *PostgresProvider) Close() error {
	if p.closeFn != nil {
		p.closeFn()
	}
	return nil
}

// CompanyIDByName implements Provider. The name is normalized before
// lookup; no match returns "".
func (p *PostgresProvider) CompanyIDByName(ctx context.Context, name string) (string, error) {
	var id string
	err := p.pool.QueryRow(ctx,
		`SELECT id FROM companies WHERE name_normalized = $1`,
		NormalizeCompanyName(name),
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", eris.Wrapf(err, "history: resolve company %q", name)
	}
	return id, nil
}

// SubmissionHistory implements Provider: newest first, restatement
// overrides attached.
func (p *PostgresProvider) SubmissionHistory(ctx context.Context, companyID string) ([]model.YearSubmission, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, company_id, reporting_year, COALESCE(schema_version, ''),
		        COALESCE(disclosure_source, ''), COALESCE(reporting_date, ''),
		        created_on, field_values, field_units
		 FROM submissions
		 WHERE company_id = $1
		 ORDER BY reporting_year DESC`, companyID)
	if err != nil {
		return nil, eris.Wrapf(err, "history: submissions for %s", companyID)
	}
	defer rows.Close()

	var (
		subs []model.YearSubmission
		ids  []string
	)
	for rows.Next() {
		var (
			sub        model.Submission
			createdOn  time.Time
			valuesJSON []byte
			unitsJSON  []byte
		)
		if err := rows.Scan(&sub.ID, &sub.CompanyID, &sub.ReportingYear,
			&sub.SchemaVersion, &sub.DisclosureSource, &sub.ReportingDate,
			&createdOn, &valuesJSON, &unitsJSON); err != nil {
			return nil, eris.Wrap(err, "history: scan submission")
		}
		sub.CreatedOn = createdOn
		sub.Values = decodeTree(valuesJSON, sub.ID, "values")
		sub.Units = decodeTree(unitsJSON, sub.ID, "units")

		s := sub
		subs = append(subs, model.YearSubmission{Year: s.ReportingYear, Submission: &s})
		ids = append(ids, s.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "history: iterate submissions")
	}

	if len(ids) > 0 {
		recs, err := p.Restatements(ctx, ids)
		if err != nil {
			// Restatement store unavailability degrades to un-overridden
			// exports rather than failing the run.
			zap.L().Warn("history: restatement lookup failed",
				zap.String("company_id", companyID),
				zap.Error(err),
			)
		} else {
			AttachRestatements(subs, recs)
		}
	}

	return subs, nil
}

// Restatements implements Provider.
func (p *PostgresProvider) Restatements(ctx context.Context, submissionIDs []string) ([]model.RestatementRecord, error) {
	if len(submissionIDs) == 0 {
		return nil, nil
	}

	rows, err := p.pool.Query(ctx,
		`SELECT company_id, group_id, attribute_name,
		        COALESCE(data_source, ''), COALESCE(reporting_datetime, ''),
		        COALESCE(reason_for_restatement, '')
		 FROM restatements
		 WHERE group_id = ANY($1)
		 ORDER BY reporting_datetime DESC`, submissionIDs)
	if err != nil {
		return nil, eris.Wrap(err, "history: restatements")
	}
	defer rows.Close()

	var recs []model.RestatementRecord
	for rows.Next() {
		var r model.RestatementRecord
		if err := rows.Scan(&r.CompanyID, &r.GroupID, &r.AttributeName,
			&r.DataSource, &r.ReportingDate, &r.Reason); err != nil {
			return nil, eris.Wrap(err, "history: scan restatement")
		}
		recs = append(recs, r)
	}
	return recs, rows.Err()
}

// decodeTree decodes a submission's JSON value tree, degrading a
// malformed tree to empty rather than failing the export.
func decodeTree(data []byte, submissionID, which string) model.Record {
	if len(data) == 0 {
		return nil
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		zap.L().Warn("history: malformed submission tree",
			zap.String("submission_id", submissionID),
			zap.String("tree", which),
			zap.Error(err),
		)
		return nil
	}
	return model.DecodeTree(raw)
}
