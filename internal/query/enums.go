// Package query holds the normalization and escaping helpers shared by the
// entity orchestrators: trial enum canonicalization, Lucene and ESSIE
// escaping, date validation, geo math, and eligibility-text analysis.
package query

import (
	"sort"
	"strings"

	"github.com/biomcp/biomcp/internal/domain"
)

// NormalizeEnumKey uppercases and squashes separators (' ', ',', '-', '_')
// into single underscores so user input like "active, not recruiting" keys
// into the canonical tables.
func NormalizeEnumKey(raw string) string {
	var b strings.Builder
	pendingSep := false
	for _, c := range strings.ToUpper(strings.TrimSpace(raw)) {
		switch {
		case c >= 'A' && c <= 'Z' || c >= '0' && c <= '9':
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(c)
		case c == ' ' || c == ',' || c == '-' || c == '_':
			pendingSep = true
		default:
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(c)
		}
	}
	return b.String()
}

var trialStatuses = map[string]string{
	"NOT_YET_RECRUITING":      "NOT_YET_RECRUITING",
	"RECRUITING":              "RECRUITING",
	"ENROLLING_BY_INVITATION": "ENROLLING_BY_INVITATION",
	"ACTIVE_NOT_RECRUITING":   "ACTIVE_NOT_RECRUITING",
	"COMPLETED":               "COMPLETED",
	"SUSPENDED":               "SUSPENDED",
	"TERMINATED":              "TERMINATED",
	"WITHDRAWN":               "WITHDRAWN",
	// Aliases.
	"ENROLLING": "ENROLLING_BY_INVITATION",
	"ACTIVE":    "ACTIVE_NOT_RECRUITING",
	"COMPLETE":  "COMPLETED",
}

// NormalizeStatus maps a user-supplied recruitment status (any case,
// comma/space/dash separated) to the ClinicalTrials.gov enum value.
func NormalizeStatus(raw string) (string, error) {
	if v, ok := trialStatuses[NormalizeEnumKey(raw)]; ok {
		return v, nil
	}
	return "", domain.NewInvalidArgument(
		"Unrecognized --status value %q. Expected one of: NOT_YET_RECRUITING, RECRUITING, ENROLLING_BY_INVITATION, ACTIVE_NOT_RECRUITING, COMPLETED, SUSPENDED, TERMINATED, WITHDRAWN. Aliases: active, comma/space forms.",
		raw)
}

var statusPriority = map[string]int{
	"RECRUITING":              0,
	"ACTIVE_NOT_RECRUITING":   1,
	"ENROLLING_BY_INVITATION": 2,
	"NOT_YET_RECRUITING":      3,
	"COMPLETED":               4,
	"UNKNOWN":                 5,
	"WITHDRAWN":               6,
	"TERMINATED":              7,
	"SUSPENDED":               8,
}

// StatusPriority ranks recruitment statuses for default result ordering.
// Unknown strings sort last.
func StatusPriority(status string) int {
	if p, ok := statusPriority[NormalizeEnumKey(status)]; ok {
		return p
	}
	return 9
}

// SortTrialsByStatusPriority orders rows most-actionable first (recruiting
// before active before completed), breaking ties by NCT ID for stable output.
func SortTrialsByStatusPriority(rows []domain.TrialSearchResult) {
	sort.SliceStable(rows, func(i, j int) bool {
		pi, pj := StatusPriority(rows[i].Status), StatusPriority(rows[j].Status)
		if pi != pj {
			return pi < pj
		}
		return rows[i].NCTID < rows[j].NCTID
	})
}

// NormalizePhase maps a user-supplied phase ("2", "1/2", "early1", "n/a") to
// the ClinicalTrials.gov enum value.
func NormalizePhase(raw string) (string, error) {
	key := NormalizeEnumKey(raw)
	compact := strings.NewReplacer("_", "", "/", "").Replace(key)
	switch compact {
	case "12", "EARLYPHASE1", "EARLY1":
		return "EARLY_PHASE1", nil
	case "NA":
		return "NA", nil
	case "1", "2", "3", "4":
		return "PHASE" + compact, nil
	case "PHASE1", "PHASE2", "PHASE3", "PHASE4":
		return compact, nil
	}
	if key == "EARLY_PHASE1" {
		return "EARLY_PHASE1", nil
	}
	return "", domain.NewInvalidArgument(
		"Unrecognized --phase value %q. Expected one of: NA, EARLY_PHASE1, PHASE1, PHASE2, PHASE3, PHASE4. Aliases: 1-4, 1/2, early_phase1, early1, n/a.",
		raw)
}

var articleTypes = map[string]string{
	"REVIEW":           "review",
	"RESEARCH":         "research-article",
	"RESEARCH_ARTICLE": "research-article",
	"CASE_REPORTS":     "case-reports",
	"META_ANALYSIS":    "meta-analysis",
	"METAANALYSIS":     "meta-analysis",
}

// NormalizeArticleType maps a publication-type filter to the Europe PMC
// PUB_TYPE value.
func NormalizeArticleType(raw string) (string, error) {
	if v, ok := articleTypes[NormalizeEnumKey(raw)]; ok {
		return v, nil
	}
	return "", domain.NewInvalidArgument(
		"--type must be one of: review, research, research-article, case-reports, meta-analysis")
}

// NormalizeSex maps a sex filter to the ctgov aggregation code: "f", "m", or
// empty when the value means no restriction (all/any/both).
func NormalizeSex(raw string) (string, error) {
	switch NormalizeEnumKey(raw) {
	case "FEMALE", "F":
		return "f", nil
	case "MALE", "M":
		return "m", nil
	case "ALL", "ANY", "BOTH":
		return "", nil
	}
	return "", domain.NewInvalidArgument(
		"Unrecognized --sex value %q. Expected one of: female, male, all.", raw)
}

// NormalizeSponsorType maps a sponsor class to the ctgov funderType code.
func NormalizeSponsorType(raw string) (string, error) {
	switch NormalizeEnumKey(raw) {
	case "NIH":
		return "nih", nil
	case "INDUSTRY":
		return "industry", nil
	case "FED", "FEDERAL":
		return "fed", nil
	case "OTHER":
		return "other", nil
	}
	return "", domain.NewInvalidArgument(
		"Unrecognized --sponsor-type value %q. Expected one of: nih, industry, fed, other.", raw)
}
