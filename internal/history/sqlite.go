package history

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/climateledger/disclosure-export/internal/model"
)

// SQLiteProvider reads submission history from a local SQLite database,
// the single-operator deployment mode.
type SQLiteProvider struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteProvider, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteProvider{db: db}, nil
}

// Close implements Provider.
func (p *SQLiteProvider) Close() error { return p.db.Close() }

// CompanyIDByName implements Provider.
func (p *SQLiteProvider) CompanyIDByName(ctx context.Context, name string) (string, error) {
	var id string
	err := p.db.QueryRowContext(ctx,
		`SELECT id FROM companies WHERE name_normalized = ?`,
		NormalizeCompanyName(name),
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", eris.Wrapf(err, "sqlite: resolve company %q", name)
	}
	return id, nil
}

// SubmissionHistory implements Provider: newest first, restatement
// overrides attached.
func (p *SQLiteProvider) SubmissionHistory(ctx context.Context, companyID string) ([]model.YearSubmission, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT id, company_id, reporting_year, COALESCE(schema_version, ''),
		        COALESCE(disclosure_source, ''), COALESCE(reporting_date, ''),
		        created_on, field_values, field_units
		 FROM submissions
		 WHERE company_id = ?
		 ORDER BY reporting_year DESC`, companyID)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: submissions for %s", companyID)
	}
	defer rows.Close()

	var (
		subs []model.YearSubmission
		ids  []string
	)
	for rows.Next() {
		var (
			sub        model.Submission
			createdOn  string
			valuesJSON []byte
			unitsJSON  []byte
		)
		if err := rows.Scan(&sub.ID, &sub.CompanyID, &sub.ReportingYear,
			&sub.SchemaVersion, &sub.DisclosureSource, &sub.ReportingDate,
			&createdOn, &valuesJSON, &unitsJSON); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan submission")
		}
		if t, perr := time.Parse(time.RFC3339, createdOn); perr == nil {
			sub.CreatedOn = t
		}
		sub.Values = decodeTree(valuesJSON, sub.ID, "values")
		sub.Units = decodeTree(unitsJSON, sub.ID, "units")

		s := sub
		subs = append(subs, model.YearSubmission{Year: s.ReportingYear, Submission: &s})
		ids = append(ids, s.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate submissions")
	}

	if len(ids) > 0 {
		recs, err := p.Restatements(ctx, ids)
		if err != nil {
			zap.L().Warn("sqlite: restatement lookup failed",
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
func (p *SQLiteProvider) Restatements(ctx context.Context, submissionIDs []string) ([]model.RestatementRecord, error) {
	if len(submissionIDs) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(submissionIDs)), ",")
	args := make([]any, len(submissionIDs))
	for i, id := range submissionIDs {
		args[i] = id
	}

	rows, err := p.db.QueryContext(ctx,
		`SELECT company_id, group_id, attribute_name,
		        COALESCE(data_source, ''), COALESCE(reporting_datetime, ''),
		        COALESCE(reason_for_restatement, '')
		 FROM restatements
		 WHERE group_id IN (`+placeholders+`)
		 ORDER BY reporting_datetime DESC`, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: restatements")
	}
	defer rows.Close()

	var recs []model.RestatementRecord
	for rows.Next() {
		var r model.RestatementRecord
		if err := rows.Scan(&r.CompanyID, &r.GroupID, &r.AttributeName,
			&r.DataSource, &r.ReportingDate, &r.Reason); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan restatement")
		}
		recs = append(recs, r)
	}
	return recs, rows.Err()
}
