package workbook

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/climateledger/disclosure-export/internal/catalog"
	"github.com/climateledger/disclosure-export/internal/extract"
	"github.com/climateledger/disclosure-export/internal/history"
	"github.com/climateledger/disclosure-export/internal/merge"
	"github.com/climateledger/disclosure-export/internal/model"
)

// Fixed append-only sheets.
const (
	SheetRestatements   = "Restatements"
	SheetTargetProgress = "Target Progress"
)

var restatementColumns = []string{"Attribute", "Restated Value Source", "Reporting Date", "Reason for Restatement"}

var targetProgressColumns = []string{"Year", "Target", "Progress", "Narrative", "Source"}

// Workbook is the finished set of tables for one company, in sheet order.
type Workbook struct {
	CompanyID string
	Run       model.ExportRun
	Wide      []*model.WideTable
	Lists     []*model.ListTable
}

// Assembler drives the per-company export: one pass over the submission
// history, one extraction per field group per sheet per year, merged
// into running wide tables.
type Assembler struct {
	provider  history.Provider
	extractor *extract.Extractor
	schema    Schema
	years     model.YearRange
}

// New creates an Assembler.
func New(provider history.Provider, cat catalog.Catalog, schema Schema, years model.YearRange) *Assembler {
	return &Assembler{
		provider:  provider,
		extractor: extract.New(cat),
		schema:    schema,
		years:     years,
	}
}

// Assemble builds the full workbook for one company. The workbook is
// always produced, degrading empty sheets to placeholder rows; the only
// hard failures are an unavailable history store, a cancelled context,
// and a sub-form with no default-attribute template.
func (a *Assembler) Assemble(ctx context.Context, companyID string) (*Workbook, error) {
	run := model.ExportRun{
		ID:        uuid.NewString(),
		CompanyID: companyID,
		StartedAt: time.Now().UTC(),
		SheetRows: make(map[string]int),
	}

	subs, err := a.provider.SubmissionHistory(ctx, companyID)
	if err != nil {
		return nil, eris.Wrapf(err, "workbook: history for %s", companyID)
	}

	// History arrives newest first; reverse so first-seen row order (and
	// frozen descriptions/units) follow the oldest year's field set.
	ordered := make([]model.YearSubmission, len(subs))
	copy(ordered, subs)
	for i, j := 0, len(ordered)-1; i < j; i, j = i+1, j-1 {
		ordered[i], ordered[j] = ordered[j], ordered[i]
	}

	tables := make([]*model.WideTable, len(a.schema.Sheets))
	for i, sheet := range a.schema.Sheets {
		tables[i] = model.NewWideTable(sheet.Name, a.years)
		tables[i].Restated = sheet.Restated
	}

	progress := &model.ListTable{Sheet: SheetTargetProgress, Columns: targetProgressColumns}

	for _, ys := range ordered {
		if ys.Submission == nil {
			continue
		}
		if !a.years.Contains(ys.Year) {
			zap.L().Warn("workbook: reporting year outside supported range, skipping",
				zap.String("company_id", companyID),
				zap.Int("year", ys.Year),
			)
			continue
		}

		for i, sheet := range a.schema.Sheets {
			merged, err := a.extractSheet(ctx, sheet, ys.Submission)
			if err != nil {
				if errors.Is(err, catalog.ErrTemplateNotFound) || ctx.Err() != nil {
					return nil, eris.Wrapf(err, "workbook: sheet %q year %d", sheet.Name, ys.Year)
				}
				// Per-year, per-sheet isolation: this year contributes
				// nothing to this sheet, everything else continues.
				zap.L().Warn("workbook: sheet extraction degraded",
					zap.String("company_id", companyID),
					zap.String("sheet", sheet.Name),
					zap.Int("year", ys.Year),
					zap.Error(err),
				)
				run.Degraded = append(run.Degraded, fmt.Sprintf("%s/%d", sheet.Name, ys.Year))
				continue
			}

			merge.Apply(tables[i], ys.Year, merged, merge.Options{
				Restated:      sheet.Restated,
				NominalSource: ys.Submission.DisclosureSource,
			})
		}
	}

	// Append-only side lists run newest first: most recent events on top.
	for _, ys := range subs {
		a.appendTargetProgress(progress, ys)
	}
	restatements := a.buildRestatements(ctx, subs)

	for i := range tables {
		merge.Finalize(tables[i])
		sheet := a.schema.Sheets[i]
		run.SheetRows[sheet.Name] = tables[i].Len()
		if tables[i].Len() == 0 {
			applyPlaceholder(tables[i], sheet.Placeholder)
		}
	}
	run.SheetRows[SheetRestatements] = len(restatements.Rows)
	run.SheetRows[SheetTargetProgress] = len(progress.Rows)
	applyListPlaceholder(restatements, "No Restatement Data Available.")
	applyListPlaceholder(progress, "No Target Progress Data Available.")

	run.FinishedAt = time.Now().UTC()
	zap.L().Info("workbook: assembly complete",
		zap.String("run_id", run.ID),
		zap.String("company_id", companyID),
		zap.Int("years", len(ordered)),
		zap.Int("degraded", len(run.Degraded)),
	)

	return &Workbook{
		CompanyID: companyID,
		Run:       run,
		Wide:      tables,
		Lists:     []*model.ListTable{restatements, progress},
	}, nil
}

// extractSheet runs every field group of a sheet against one submission
// and unions the results on field name, first non-null winning.
func (a *Assembler) extractSheet(ctx context.Context, sheet SheetSchema, sub *model.Submission) (*extract.Extraction, error) {
	parts := make([]*extract.Extraction, 0, len(sheet.Groups))
	for _, g := range sheet.Groups {
		var (
			x   *extract.Extraction
			err error
		)
		switch g.Kind {
		case GroupPlain:
			x, err = a.extractor.Extract(ctx, extract.FieldSpec{Fields: g.Fields, Strict: g.Strict}, sub)
		case GroupRepeat:
			x, err = a.extractor.Expand(ctx, g.Form, sub)
		case GroupCategory:
			x, err = a.extractor.ExpandCategories(ctx, g.Form, g.CategoryField, g.GroupToken, sub)
		default:
			err = eris.Errorf("workbook: unknown group kind %q", g.Kind)
		}
		if err != nil {
			return nil, err
		}
		parts = append(parts, x)
	}
	return merge.Union(parts...), nil
}

// appendTargetProgress adds one row per target-progress record in the
// submission. A missing or malformed sub-form contributes nothing.
func (a *Assembler) appendTargetProgress(t *model.ListTable, ys model.YearSubmission) {
	if ys.Submission == nil {
		return
	}
	records, ok := ys.Submission.Field(a.schema.TargetProgressForm).AsList()
	if !ok {
		return
	}
	for _, rec := range records {
		target, _ := rec["target_name"].AsScalar()
		pct, _ := rec["progress_pct"].AsScalar()
		narrative, _ := rec["narrative"].AsScalar()
		t.Append([]string{
			strconv.Itoa(ys.Year),
			blankToDash(target),
			blankToDash(extract.NormalizeNumeric(pct)),
			blankToDash(narrative),
			blankToDash(ys.Submission.DisclosureSource),
		})
	}
}

// buildRestatements renders every restatement event as its own row,
// newest first. Store unavailability degrades to an empty sheet.
func (a *Assembler) buildRestatements(ctx context.Context, subs []model.YearSubmission) *model.ListTable {
	t := &model.ListTable{Sheet: SheetRestatements, Columns: restatementColumns}

	var ids []string
	for _, ys := range subs {
		if ys.Submission != nil {
			ids = append(ids, ys.Submission.ID)
		}
	}
	recs, err := a.provider.Restatements(ctx, ids)
	if err != nil {
		zap.L().Warn("workbook: restatement sheet degraded", zap.Error(err))
		return t
	}

	for _, rec := range recs {
		t.Append([]string{
			rec.AttributeName,
			blankToDash(rec.DataSource),
			blankToDash(rec.ReportingDate),
			blankToDash(rec.Reason),
		})
	}
	return t
}

// applyPlaceholder substitutes the required user-facing placeholder row
// for a sheet with no data rows at all.
func applyPlaceholder(t *model.WideTable, text string) {
	t.AppendRow(&model.WideFieldRow{
		Description: text,
		Cells:       make(map[int]*model.YearCell),
	})
}

func applyListPlaceholder(t *model.ListTable, text string) {
	if len(t.Rows) > 0 {
		return
	}
	row := make([]string, len(t.Columns))
	row[0] = text
	t.Append(row)
}

func blankToDash(s string) string {
	if s == "" {
		return model.Dash
	}
	return s
}
