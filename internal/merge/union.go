package merge

import "github.com/climateledger/disclosure-export/internal/extract"

// Union outer-joins several same-year extractions on field name only,
// never on row position. When a field appears in more than one part, the
// first non-null value wins in the precedence order the parts were
// passed in.
func Union(parts ...*extract.Extraction) *extract.Extraction {
	out := extract.NewExtraction()

	for _, part := range parts {
		if part == nil {
			continue
		}
		for _, name := range part.Order {
			if _, seen := out.Values[name]; !seen {
				out.Set(name, part.Values[name], part.Descriptions[name],
					part.Sources[name], part.LastUpdated[name], part.Units[name])
				continue
			}
			// An earlier part already claimed the field; only a null can
			// be filled in by a later one.
			if out.Values[name] == "" && part.Values[name] != "" {
				out.Set(name, part.Values[name], part.Descriptions[name],
					part.Sources[name], part.LastUpdated[name], part.Units[name])
			}
		}
	}

	return out
}
