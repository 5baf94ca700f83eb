// Package extract turns one year's raw submission tree into flat
// field-name-to-value maps with resolved provenance: plain field groups,
// repeatable sub-forms, and category-bucketed sub-forms.
package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/climateledger/disclosure-export/internal/model"
)

// numericRe matches plain and scientific-notation decimal strings after
// comma stripping. Deliberately excludes Inf/NaN/hex forms ParseFloat
// would otherwise accept.
var numericRe = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// NormalizeNumeric coerces numeric-looking strings to a canonical
// fixed-point decimal rendering: "8.64e5" becomes "864000", "1,200.50"
// becomes "1200.5". Sentinels and non-numeric strings pass through
// unchanged; absence and sentinels are data, never parse errors.
func NormalizeNumeric(s string) string {
	if s == "" || model.IsSentinel(s) {
		return s
	}

	trimmed := strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if !numericRe.MatchString(trimmed) {
		return s
	}

	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return s
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
