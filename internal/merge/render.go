package merge

import "github.com/climateledger/disclosure-export/internal/model"

// Finalize is the post-merge rendering pass. It fills the full year
// domain so no cell is ever missing, then collapses empty columns:
// a Value_<year> column with no data anywhere renders the not-disclosed
// sentinel in every row (the whole year had no disclosure for the
// sheet), while an individually unanswered field renders the blank
// sentinel. Provenance cells with no real source render the en-dash.
func Finalize(t *model.WideTable) {
	for _, year := range t.Years.Years() {
		yearHasValue := false
		for _, row := range t.Rows() {
			if c, ok := row.Cells[year]; ok && c.Value != "" {
				yearHasValue = true
				break
			}
		}

		emptyValue := model.Dash
		if !yearHasValue {
			emptyValue = model.LongDash
		}

		for _, row := range t.Rows() {
			cell := row.Cell(year)
			if cell.Value == "" {
				cell.Value = emptyValue
			}
			if cell.Source == "" {
				cell.Source = model.EnDash
			}
			if cell.LastUpdated == "" {
				cell.LastUpdated = model.EnDash
			}
		}
	}
}
