// Package merge folds per-year extractions into year-indexed wide
// tables: one row per field name in first-seen order, one column group
// per reporting year.
package merge

import (
	"github.com/climateledger/disclosure-export/internal/extract"
	"github.com/climateledger/disclosure-export/internal/model"
)

// Options controls how one year's extraction lands in the table.
type Options struct {
	// Restated enables Restated_<year> flagging for the sheet.
	Restated bool
	// NominalSource is the submission's own disclosure source; a cell is
	// flagged restated when its resolved source differs from it and is
	// not a blank/dash sentinel.
	NominalSource string
}

// Apply merges one year's extraction into the table. New field names
// append rows at the end; a row's description and unit are captured on
// first sight and never overwritten afterwards unless previously empty.
func Apply(t *model.WideTable, year int, x *extract.Extraction, opts Options) {
	for _, name := range x.Order {
		row := t.EnsureRow(name)

		if row.Description == "" {
			row.Description = x.Descriptions[name]
		}
		if row.Unit == "" {
			row.Unit = x.Units[name]
		}

		cell := row.Cell(year)
		cell.Value = x.Values[name]
		cell.Source = x.Sources[name]
		cell.LastUpdated = x.LastUpdated[name]

		if opts.Restated && isRestatedSource(cell.Source, opts.NominalSource) {
			cell.Restated = "Yes"
		}
	}
}

// isRestatedSource is the single authoritative restated-flag rule: the
// resolved source must differ from the nominal disclosure source and
// must itself be a real source, not a blank or dash sentinel.
func isRestatedSource(resolved, nominal string) bool {
	return resolved != nominal && !model.IsBlankSource(resolved)
}
