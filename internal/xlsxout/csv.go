package xlsxout

import (
	"encoding/csv"
	"os"

	"github.com/rotisserie/eris"

	"github.com/climateledger/disclosure-export/internal/model"
)

// WriteTableCSV dumps a single wide table as CSV, for piping one sheet
// into downstream tools without a spreadsheet reader.
func WriteTableCSV(t *model.WideTable, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "xlsxout: create csv")
	}
	defer f.Close()

	w := csv.NewWriter(f)

	if err := w.Write(WideHeader(t)); err != nil {
		return eris.Wrap(err, "xlsxout: write csv header")
	}
	for _, r := range t.Rows() {
		if err := w.Write(WideRow(t, r)); err != nil {
			return eris.Wrap(err, "xlsxout: write csv row")
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return eris.Wrap(err, "xlsxout: flush csv")
	}
	return nil
}
