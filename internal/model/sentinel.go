package model

// Sentinel strings used across every sheet to distinguish the three null
// states of a disclosure field. These are data, not errors: a field holding
// one of these values was loaded successfully and must pass through every
// formatter unchanged.
const (
	// Dash marks a field that was blank or never asked in that year's form.
	Dash = "-"

	// LongDash marks a field the form asked for but the company did not
	// disclose. It is the only sentinel that suppresses Source/LastUpdated
	// propagation.
	LongDash = "—"

	// NotApplicable marks a field the company answered as not applicable.
	NotApplicable = "N/A"

	// EnDash is the blank rendering written into Source/LastUpdated cells
	// when no real provenance exists. It is not part of the value
	// vocabulary; it only ever appears in provenance columns.
	EnDash = "–"
)

// IsSentinel reports whether s is one of the three value sentinels.
func IsSentinel(s string) bool {
	switch s {
	case Dash, LongDash, NotApplicable:
		return true
	}
	return false
}

// IsBlankSource reports whether s is an empty or dash-like provenance value.
// The restated-flag rule treats these as "no real source".
func IsBlankSource(s string) bool {
	switch s {
	case "", Dash, LongDash, EnDash, NotApplicable:
		return true
	}
	return false
}
