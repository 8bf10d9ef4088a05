package adapter

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var labelSeparators = strings.NewReplacer("_", " ", "-", " ")

// normalizeLabel tidies an error classification. Labels written entirely in
// lower case by older checkers ("network_error") are title-cased so they
// group with the canonical form ("Network Error"); any other label is only
// trimmed.
func normalizeLabel(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" || s != strings.ToLower(s) {
		return s
	}
	s = strings.Join(strings.Fields(labelSeparators.Replace(s)), " ")
	return cases.Title(language.English).String(s)
}
