// Package history supplies the submission history and restatement
// records the export core consumes. The core never mutates what it is
// given here.
package history

import (
	"context"
	"sort"

	"github.com/climateledger/disclosure-export/internal/model"
)

// Provider is the read side of the submission store and the restatement
// audit trail.
type Provider interface {
	// CompanyIDByName resolves a company identifier from a normalized
	// company name. Returns "" when unknown.
	CompanyIDByName(ctx context.Context, name string) (string, error)

	// SubmissionHistory returns a company's submissions newest first,
	// with restatement override maps already attached to the
	// submissions they originated from.
	SubmissionHistory(ctx context.Context, companyID string) ([]model.YearSubmission, error)

	// Restatements returns the restatement events recorded against the
	// given submissions, newest first.
	Restatements(ctx context.Context, submissionIDs []string) ([]model.RestatementRecord, error)

	Close() error
}

// AttachRestatements builds each submission's field-to-override map from
// the restatement events pointing at it via GroupID. Later events win
// when the same attribute was restated twice, so records must be passed
// newest first.
func AttachRestatements(subs []model.YearSubmission, recs []model.RestatementRecord) {
	byID := make(map[string]*model.Submission, len(subs))
	for _, ys := range subs {
		if ys.Submission != nil {
			byID[ys.Submission.ID] = ys.Submission
		}
	}

	for _, rec := range recs {
		sub, ok := byID[rec.GroupID]
		if !ok {
			continue
		}
		if sub.RestatedFields == nil {
			sub.RestatedFields = make(map[string]model.RestatedSource)
		}
		if _, exists := sub.RestatedFields[rec.AttributeName]; exists {
			// Newest-first input: the first event seen is the current one.
			continue
		}
		sub.RestatedFields[rec.AttributeName] = model.RestatedSource{
			Source:        rec.DataSource,
			ReportingDate: rec.ReportingDate,
		}
	}
}

// SortNewestFirst orders year submissions by reporting year descending.
func SortNewestFirst(subs []model.YearSubmission) {
	sort.SliceStable(subs, func(i, j int) bool {
		return subs[i].Year > subs[j].Year
	})
}
