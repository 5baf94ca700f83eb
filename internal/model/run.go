package model

import "time"

// ExportRun records one workbook assembly for one company.
type ExportRun struct {
	ID         string         `json:"id"`
	CompanyID  string         `json:"company_id"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	OutputPath string         `json:"output_path,omitempty"`
	SheetRows  map[string]int `json:"sheet_rows"`
	// Degraded lists "sheet/year" pairs whose extraction failed and was
	// substituted with empty maps.
	Degraded []string `json:"degraded,omitempty"`
}
