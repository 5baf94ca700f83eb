package history

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// legalSuffixes lists common legal entity suffixes stripped during
// company-name normalization.
var legalSuffixes = []string{
	" AG", " A.G.",
	" CO", " CO.",
	" CORP", " CORP.", " CORPORATION",
	" GMBH",
	" INC", " INC.", " INCORPORATED",
	" LLC", " L.L.C.",
	" LTD", " LTD.", " LIMITED",
	" NV", " N.V.",
	" PLC", " P.L.C.",
	" SA", " S.A.", " SE",
}

var multiSpaceRe = regexp.MustCompile(`\s{2,}`)

// diacriticStripper removes combining marks after NFD decomposition.
var diacriticStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeCompanyName standardizes a company name for lookup by folding
// diacritics, uppercasing, stripping legal suffixes and punctuation, and
// collapsing whitespace.
func NormalizeCompanyName(name string) string {
	s, _, err := transform.String(diacriticStripper, name)
	if err != nil {
		s = name
	}

	s = strings.ToUpper(strings.TrimSpace(s))

	for _, suffix := range legalSuffixes {
		s = strings.TrimSuffix(s, suffix)
	}

	s = strings.Map(func(r rune) rune {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == ' ', r == '&':
			return r
		default:
			return ' '
		}
	}, s)

	return strings.TrimSpace(multiSpaceRe.ReplaceAllString(s, " "))
}
