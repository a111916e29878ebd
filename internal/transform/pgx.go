package transform

import (
	"sort"
	"strings"

	"github.com/biomcp/biomcp/internal/domain"
	"github.com/biomcp/biomcp/internal/sources"
)

// PGxInteractionsFromPairs maps CPIC pair rows, uppercasing gene symbols and
// deduping on (gene, drug) case-insensitively.
func PGxInteractionsFromPairs(rows []sources.CPICPairRow) []domain.PGxInteraction {
	seen := map[string]bool{}
	var out []domain.PGxInteraction
	for _, row := range rows {
		gene := strings.ToUpper(strings.TrimSpace(row.GeneSymbol))
		drug := strings.TrimSpace(row.DrugName)
		if gene == "" || drug == "" {
			continue
		}
		key := gene + "|" + strings.ToLower(drug)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, domain.PGxInteraction{
			GeneSymbol:    gene,
			DrugName:      drug,
			CPICLevel:     row.CPICLevel,
			PGxTesting:    row.PGxTesting,
			GuidelineName: row.GuidelineName,
			GuidelineURL:  row.GuidelineURL,
		})
	}
	return out
}

// SortPGxInteractions orders pairs by CPIC level rank, then drug, then gene.
func SortPGxInteractions(rows []domain.PGxInteraction) {
	sort.SliceStable(rows, func(i, j int) bool {
		ri, rj := CPICLevelRank(rows[i].CPICLevel), CPICLevelRank(rows[j].CPICLevel)
		if ri != rj {
			return ri < rj
		}
		if rows[i].DrugName != rows[j].DrugName {
			return rows[i].DrugName < rows[j].DrugName
		}
		return rows[i].GeneSymbol < rows[j].GeneSymbol
	})
}

// PGxSearchRowsFromPairs maps pair rows into the search result shape with the
// same dedupe rule as PGxInteractionsFromPairs.
func PGxSearchRowsFromPairs(rows []sources.CPICPairRow) []domain.PGxSearchResult {
	var out []domain.PGxSearchResult
	for _, row := range PGxInteractionsFromPairs(rows) {
		out = append(out, domain.PGxSearchResult{
			GeneSymbol:    row.GeneSymbol,
			DrugName:      row.DrugName,
			CPICLevel:     row.CPICLevel,
			PGxTesting:    row.PGxTesting,
			GuidelineName: row.GuidelineName,
		})
	}
	return out
}

// PGxRecommendationsFromCPIC maps recommendation rows. Multi-gene guidelines
// carry per-gene lookup maps; preferredGene picks that gene's value when
// present, any non-empty value otherwise. Sorted by drug name, capped at 30.
func PGxRecommendationsFromCPIC(rows []sources.CPICRecommendationRow, preferredGene string) []domain.PGxRecommendation {
	var out []domain.PGxRecommendation
	for _, row := range rows {
		drug := strings.TrimSpace(row.DrugName)
		if drug == "" {
			continue
		}
		out = append(out, domain.PGxRecommendation{
			DrugName:       drug,
			Phenotype:      pickLookupValue(row.Phenotypes, preferredGene),
			ActivityScore:  pickLookupValue(row.ActivityScore, preferredGene),
			Implication:    pickLookupValue(row.Implications, preferredGene),
			Recommendation: strings.TrimSpace(row.DrugRecommendation),
			Classification: strings.TrimSpace(row.Classification),
			Population:     strings.TrimSpace(row.Population),
			GuidelineName:  row.GuidelineName,
			GuidelineURL:   row.GuidelineURL,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DrugName < out[j].DrugName })
	if len(out) > 30 {
		out = out[:30]
	}
	return out
}

func pickLookupValue(m map[string]string, preferredGene string) string {
	if preferredGene != "" {
		for k, v := range m {
			if strings.EqualFold(k, preferredGene) {
				if value := strings.TrimSpace(v); value != "" {
					return value
				}
				break
			}
		}
	}
	// Deterministic fallback: first non-empty value in key order.
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if value := strings.TrimSpace(m[k]); value != "" {
			return value
		}
	}
	return ""
}

// PGxFrequenciesFromCPIC maps frequency rows, picking the best available
// frequency statistic, then dedupes on (gene, allele, population) and sorts.
// Capped at 30.
func PGxFrequenciesFromCPIC(rows []sources.CPICFrequencyRow) []domain.PGxFrequency {
	var mapped []domain.PGxFrequency
	for _, row := range rows {
		gene := strings.TrimSpace(row.GeneSymbol)
		allele := strings.TrimSpace(row.Name)
		if gene == "" || allele == "" {
			continue
		}
		freq := row.FreqWeightedAvg
		if freq == nil {
			freq = row.FreqAvg
		}
		if freq == nil {
			freq = row.FreqMax
		}
		if freq == nil {
			freq = row.FreqMin
		}
		mapped = append(mapped, domain.PGxFrequency{
			GeneSymbol:      gene,
			Allele:          allele,
			PopulationGroup: row.PopulationGroup,
			SubjectCount:    row.SubjectCount,
			Frequency:       freq,
			MinFrequency:    row.FreqMin,
			MaxFrequency:    row.FreqMax,
		})
	}

	seen := map[string]bool{}
	var out []domain.PGxFrequency
	for _, row := range mapped {
		key := strings.ToUpper(row.GeneSymbol) + "|" + strings.ToUpper(row.Allele) + "|" + strings.ToLower(row.PopulationGroup)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, row)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].GeneSymbol != out[j].GeneSymbol {
			return out[i].GeneSymbol < out[j].GeneSymbol
		}
		if out[i].Allele != out[j].Allele {
			return out[i].Allele < out[j].Allele
		}
		return out[i].PopulationGroup < out[j].PopulationGroup
	})
	if len(out) > 30 {
		out = out[:30]
	}
	return out
}

// PGxGuidelinesFromCPIC maps guideline summary rows, sorted by name, capped
// at 20.
func PGxGuidelinesFromCPIC(rows []sources.CPICGuidelineSummaryRow) []domain.PGxGuideline {
	var out []domain.PGxGuideline
	for _, row := range rows {
		name := strings.TrimSpace(row.GuidelineName)
		if name == "" {
			continue
		}
		entry := domain.PGxGuideline{Name: name, URL: row.GuidelineURL}
		for _, g := range row.Genes {
			if symbol := strings.TrimSpace(g.Symbol); symbol != "" {
				entry.Genes = append(entry.Genes, symbol)
			}
		}
		for _, d := range row.Drugs {
			if value := strings.TrimSpace(d); value != "" {
				entry.Drugs = append(entry.Drugs, value)
			}
		}
		out = append(out, entry)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if len(out) > 20 {
		out = out[:20]
	}
	return out
}

// PGxGuidelinesFromPairs derives guideline stubs from pair rows for drug-mode
// queries, deduped by name case-insensitively.
func PGxGuidelinesFromPairs(rows []sources.CPICPairRow) []domain.PGxGuideline {
	seen := map[string]bool{}
	var out []domain.PGxGuideline
	for _, row := range rows {
		name := strings.TrimSpace(row.GuidelineName)
		if name == "" || seen[strings.ToLower(name)] {
			continue
		}
		seen[strings.ToLower(name)] = true
		out = append(out, domain.PGxGuideline{Name: name, URL: row.GuidelineURL})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// PGxAnnotationsFromPharmGKB maps PharmGKB clinical annotations.
func PGxAnnotationsFromPharmGKB(rows []sources.PharmGKBAnnotation) []domain.PGxAnnotation {
	var out []domain.PGxAnnotation
	for _, row := range rows {
		name := strings.TrimSpace(row.Summary)
		if name == "" {
			name = strings.TrimSpace(row.Phenotype)
		}
		if name == "" {
			continue
		}
		out = append(out, domain.PGxAnnotation{
			ID:       row.ID,
			Name:     name,
			Source:   "PharmGKB",
			Evidence: row.LevelOfEvidence,
			URL:      row.URL,
		})
	}
	return out
}

// CPICLevelRank orders CPIC evidence levels: A strongest through D, unknown
// last.
func CPICLevelRank(level string) int {
	value := strings.ToUpper(strings.TrimSpace(level))
	switch {
	case strings.HasPrefix(value, "A"):
		return 0
	case strings.HasPrefix(value, "B"):
		return 1
	case strings.HasPrefix(value, "C"):
		return 2
	case strings.HasPrefix(value, "D"):
		return 3
	default:
		return 4
	}
}
