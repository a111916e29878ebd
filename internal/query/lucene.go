package query

import "strings"

const europePMCSpecial = `\"+-!(){}[]^~*?:|/`

// EscapeEuropePMC backslash-escapes Europe PMC query metacharacters so user
// terms cannot change the query structure.
func EscapeEuropePMC(value string) string {
	var b strings.Builder
	b.Grow(len(value))
	for _, c := range value {
		if strings.ContainsRune(europePMCSpecial, c) {
			b.WriteByte('\\')
		}
		b.WriteRune(c)
	}
	return b.String()
}

// Phrase escapes a term and wraps it in quotes when it contains whitespace or
// a slash, so multi-word values match as phrases.
func Phrase(value string) string {
	escaped := EscapeEuropePMC(value)
	if strings.ContainsAny(value, " \t\n/") {
		return `"` + escaped + `"`
	}
	return escaped
}
