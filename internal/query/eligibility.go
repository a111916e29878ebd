package query

import (
	"fmt"
	"regexp"
	"strings"
)

var exclusionHeaderRe = regexp.MustCompile(`(?mi)^\s*(?:Key\s+)?Exclusion\s+Criteria\s*:?\s*$`)

// SplitEligibilitySections splits free-text eligibility criteria at the
// exclusion header and lowercases both halves. Without a header the whole
// text is inclusion.
func SplitEligibilitySections(text string) (inclusion, exclusion string) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", ""
	}
	loc := exclusionHeaderRe.FindStringIndex(trimmed)
	if loc == nil {
		return strings.ToLower(trimmed), ""
	}
	return strings.ToLower(strings.TrimSpace(trimmed[:loc[0]])),
		strings.ToLower(strings.TrimSpace(trimmed[loc[1]:]))
}

// containsKeywordTokens reports whether every whitespace-separated token of
// keyword appears as a whole word in sectionText.
func containsKeywordTokens(sectionText, keyword string) bool {
	if sectionText == "" {
		return false
	}
	tokens := strings.Fields(keyword)
	if len(tokens) == 0 {
		return false
	}
	for _, token := range tokens {
		re, err := regexp.Compile(`\b` + regexp.QuoteMeta(token) + `\b`)
		if err != nil || !re.MatchString(sectionText) {
			return false
		}
	}
	return true
}

var exclusionCues = []string{
	"exclude",
	"excluded",
	"exclusion",
	"ineligible",
	"ineligibility",
	"not eligible",
	"not allowed",
	"not permitted",
	"must not",
}

func containsExclusionLanguage(text string) bool {
	for _, cue := range exclusionCues {
		if strings.Contains(text, cue) {
			return true
		}
	}
	return false
}

// keywordHasPositiveInclusionContext reports whether some inclusion segment
// (split on newline, period, semicolon) contains the keyword without negation
// language around it.
func keywordHasPositiveInclusionContext(inclusionText, keyword string) bool {
	for _, segment := range strings.FieldsFunc(inclusionText, func(r rune) bool {
		return r == '\n' || r == '.' || r == ';'
	}) {
		segment = strings.TrimSpace(segment)
		if segment == "" || !containsKeywordTokens(segment, keyword) {
			continue
		}
		if !containsExclusionLanguage(segment) {
			return true
		}
	}
	return false
}

// EligibilityKeywordInInclusion decides whether a study should be kept for a
// keyword: keep when the keyword appears in inclusion with positive context,
// drop when it only appears in exclusion (or only negated in inclusion), and
// keep when the criteria never mention it.
func EligibilityKeywordInInclusion(inclusionText, exclusionText, keyword string) bool {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if keyword == "" || exclusionText == "" {
		return true
	}

	inclusionHasKeyword := containsKeywordTokens(inclusionText, keyword)
	if inclusionHasKeyword && keywordHasPositiveInclusionContext(inclusionText, keyword) {
		return true
	}
	if containsKeywordTokens(exclusionText, keyword) {
		return false
	}
	if inclusionHasKeyword {
		return false
	}
	return true
}

// TruncateInlineText caps value at maxChars runes, appending the original
// length when truncated.
func TruncateInlineText(value string, maxChars int) string {
	runes := []rune(value)
	if len(runes) <= maxChars {
		return value
	}
	return fmt.Sprintf("%s\n\n(truncated, %d chars total)", string(runes[:maxChars]), len(runes))
}
