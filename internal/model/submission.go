package model

import "time"

// RestatedSource is the provenance override recorded when a field was
// restated after its original disclosure.
type RestatedSource struct {
	Source        string `json:"source"`
	ReportingDate string `json:"reporting_date"`
}

// Submission is one reporting year's disclosure as loaded from the
// submission store. Immutable once loaded: the export core only derives
// from it, never mutates it.
type Submission struct {
	ID               string                    `json:"id"`
	CompanyID        string                    `json:"company_id"`
	ReportingYear    int                       `json:"reporting_year"`
	SchemaVersion    string                    `json:"schema_version,omitempty"`
	Values           Record                    `json:"-"`
	Units            Record                    `json:"-"`
	RestatedFields   map[string]RestatedSource `json:"restated_fields,omitempty"`
	DisclosureSource string                    `json:"disclosure_source"`
	ReportingDate    string                    `json:"reporting_date"`
	CreatedOn        time.Time                 `json:"created_on"`
}

// Field looks up a top-level field in the value tree. The zero Value
// (absent) is returned when the field is missing.
func (s *Submission) Field(name string) Value {
	if s == nil || s.Values == nil {
		return Value{}
	}
	return s.Values[name]
}

// UnitField looks up a top-level field in the parallel unit tree.
func (s *Submission) UnitField(name string) Value {
	if s == nil || s.Units == nil {
		return Value{}
	}
	return s.Units[name]
}

// RestatedFor returns the restatement override for a field name, if any.
func (s *Submission) RestatedFor(name string) (RestatedSource, bool) {
	if s == nil || len(s.RestatedFields) == 0 {
		return RestatedSource{}, false
	}
	rs, ok := s.RestatedFields[name]
	return rs, ok
}

// YearSubmission pairs a reporting year with its submission as supplied by
// the history provider.
type YearSubmission struct {
	Year       int
	Submission *Submission
}
