package history

import (
	"context"
	"sort"

	"github.com/climateledger/disclosure-export/internal/model"
)

// Memory is an in-memory Provider used in tests and fixture-driven runs.
type Memory struct {
	names        map[string]string // normalized name -> company id
	submissions  map[string][]model.YearSubmission
	restatements map[string][]model.RestatementRecord // by group id
}

// NewMemory creates an empty in-memory provider.
func NewMemory() *Memory {
	return &Memory{
		names:        make(map[string]string),
		submissions:  make(map[string][]model.YearSubmission),
		restatements: make(map[string][]model.RestatementRecord),
	}
}

// AddCompany registers a company name for lookup.
func (m *Memory) AddCompany(id, name string) {
	m.names[NormalizeCompanyName(name)] = id
}

// AddSubmission appends a submission to a company's history.
func (m *Memory) AddSubmission(sub *model.Submission) {
	m.submissions[sub.CompanyID] = append(m.submissions[sub.CompanyID],
		model.YearSubmission{Year: sub.ReportingYear, Submission: sub})
}

// AddRestatement records a restatement event against its submission.
func (m *Memory) AddRestatement(rec model.RestatementRecord) {
	m.restatements[rec.GroupID] = append(m.restatements[rec.GroupID], rec)
}

// CompanyIDByName implements Provider.
func (m *Memory) CompanyIDByName(_ context.Context, name string) (string, error) {
	return m.names[NormalizeCompanyName(name)], nil
}

// SubmissionHistory implements Provider.
func (m *Memory) SubmissionHistory(ctx context.Context, companyID string) ([]model.YearSubmission, error) {
	subs := make([]model.YearSubmission, len(m.submissions[companyID]))
	copy(subs, m.submissions[companyID])
	SortNewestFirst(subs)

	var ids []string
	for _, ys := range subs {
		ids = append(ids, ys.Submission.ID)
	}
	recs, err := m.Restatements(ctx, ids)
	if err != nil {
		return nil, err
	}
	AttachRestatements(subs, recs)
	return subs, nil
}

// Restatements implements Provider. Records are returned newest first,
// matching the SQL providers' ordering, so AttachRestatements keeps the
// latest correction per attribute.
func (m *Memory) Restatements(_ context.Context, submissionIDs []string) ([]model.RestatementRecord, error) {
	var recs []model.RestatementRecord
	for _, id := range submissionIDs {
		recs = append(recs, m.restatements[id]...)
	}
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].ReportingDate > recs[j].ReportingDate
	})
	return recs, nil
}

// Close implements Provider.
func (m *Memory) Close() error { return nil }
