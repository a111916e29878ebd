package query

import (
	"fmt"
	"strings"

	"github.com/biomcp/biomcp/internal/domain"
)

const essieSpecial = `\"+-!(){}[]^~*?:/|`

// EscapeESSIE backslash-escapes ClinicalTrials.gov ESSIE metacharacters.
func EscapeESSIE(value string) string {
	var b strings.Builder
	b.Grow(len(value))
	for _, c := range value {
		if strings.ContainsRune(essieSpecial, c) {
			b.WriteByte('\\')
		}
		b.WriteRune(c)
	}
	return b.String()
}

// lineOfTherapyPatterns maps a treatment-line code to the OR-joined phrase
// alternatives searched inside eligibility criteria.
func lineOfTherapyPatterns(value string) (string, bool) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "1L":
		return `"first line" OR "first-line" OR "1st line" OR "frontline" OR "treatment naive" OR "previously untreated"`, true
	case "2L":
		return `"second line" OR "second-line" OR "2nd line" OR "one prior line" OR "1 prior line"`, true
	case "3L+":
		return `"third line" OR "third-line" OR "3rd line" OR "≥2 prior" OR "at least 2 prior" OR "heavily pretreated"`, true
	}
	return "", false
}

// BuildESSIEFragments converts the treatment-history filters into
// AREA[EligibilityCriteria] query fragments.
func BuildESSIEFragments(priorTherapy, progressionOn, lineOfTherapy string) ([]string, error) {
	var fragments []string

	if v := strings.TrimSpace(priorTherapy); v != "" {
		fragments = append(fragments, fmt.Sprintf(
			`AREA[EligibilityCriteria]("%s" AND (prior OR previous OR received))`, EscapeESSIE(v)))
	}
	if v := strings.TrimSpace(progressionOn); v != "" {
		fragments = append(fragments, fmt.Sprintf(
			`AREA[EligibilityCriteria]("%s" AND (progression OR resistant OR refractory))`, EscapeESSIE(v)))
	}
	if v := strings.TrimSpace(lineOfTherapy); v != "" {
		patterns, ok := lineOfTherapyPatterns(v)
		if !ok {
			return nil, domain.NewInvalidArgument(
				"Invalid --line-of-therapy value. Expected one of: 1L, 2L, 3L+")
		}
		fragments = append(fragments, fmt.Sprintf("AREA[EligibilityCriteria](%s)", patterns))
	}
	return fragments, nil
}
