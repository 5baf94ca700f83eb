package model

// RestatementRecord is one restatement event as supplied by the
// restatement store. Each event is its own output row; events are never
// year-merged.
type RestatementRecord struct {
	CompanyID     string `json:"company_id"`
	GroupID       string `json:"group_id"`
	AttributeName string `json:"attribute_name"`
	DataSource    string `json:"data_source"`
	ReportingDate string `json:"reporting_datetime"`
	Reason        string `json:"reason_for_restatement"`
}
