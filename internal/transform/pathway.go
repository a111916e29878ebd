package transform

import (
	"regexp"
	"strings"

	"github.com/biomcp/biomcp/internal/domain"
	"github.com/biomcp/biomcp/internal/sources"
)

// PathwayFromReactomeHit projects one search hit.
func PathwayFromReactomeHit(hit sources.ReactomeHit) domain.PathwaySearchResult {
	return domain.PathwaySearchResult{ID: hit.ID, Name: strings.TrimSpace(hit.Name)}
}

// PathwayFromReactomeRecord builds the core pathway record. Participant genes,
// events, and enrichment are attached by the orchestrator.
func PathwayFromReactomeRecord(rec *sources.ReactomeRecord) *domain.Pathway {
	return &domain.Pathway{
		ID:      rec.StID,
		Name:    strings.TrimSpace(rec.DisplayName),
		Species: rec.SpeciesName,
		Summary: rec.Summary(),
	}
}

// PathwayEnrichmentFromGProfiler keeps the Reactome-sourced rows only.
func PathwayEnrichmentFromGProfiler(rows []sources.GProfilerRow) []domain.PathwayEnrichment {
	var out []domain.PathwayEnrichment
	for _, row := range rows {
		if row.Source == "" || row.Native == "" || row.Name == "" {
			continue
		}
		if !strings.EqualFold(row.Source, "REAC") {
			continue
		}
		p := row.PValue
		out = append(out, domain.PathwayEnrichment{
			Source: row.Source,
			ID:     row.Native,
			Name:   row.Name,
			PValue: &p,
		})
	}
	return out
}

var (
	geneTokenRe      = regexp.MustCompile(`\b[A-Z][A-Z0-9]{1,9}\b`)
	aaSubstitutionRe = regexp.MustCompile(`^[A-Z]\d{1,5}[A-Z*]$`)
	residueSiteRe    = regexp.MustCompile(`^[STY]\d{1,5}$`)
)

// Participant labels matching small molecules rather than gene products.
var nonGeneMolecules = map[string]bool{
	"ATP": true, "ADP": true, "GDP": true, "GTP": true,
	"DNA": true, "RNA": true, "H2O": true, "PI": true,
}

// Family labels Reactome uses for participant groups, expanded to the usual
// member genes.
var familyGeneExpansion = map[string][]string{
	"RAS":   {"HRAS", "KRAS", "NRAS"},
	"RAF":   {"ARAF", "BRAF", "RAF1"},
	"RAFS":  {"ARAF", "BRAF", "RAF1"},
	"MAP2K": {"MAP2K1", "MAP2K2"},
	"MAPK":  {"MAPK1", "MAPK3", "MAPK8", "MAPK9", "MAPK14"},
	"SPRED": {"SPRED1", "SPRED2", "SPRED3"},
	"GAP":   {"NF1", "RASA1", "RASA2"},
	"PP1":   {"PPP1CA", "PPP1CB", "PPP1CC"},
}

func looksLikeGeneSymbol(token string) bool {
	token = strings.TrimSpace(token)
	if len(token) < 2 || (token[0] >= '0' && token[0] <= '9') {
		return false
	}
	if aaSubstitutionRe.MatchString(token) || residueSiteRe.MatchString(token) {
		return false
	}
	return true
}

// ExtractGeneSymbols pulls gene symbols out of Reactome participant display
// names: uppercase tokens filtered against mutation notation, phospho-site
// notation, and small-molecule labels, with family labels expanded to member
// genes. First-seen order, capped at limit.
func ExtractGeneSymbols(lines []string, limit int) []string {
	var out []string
	seen := map[string]bool{}
	for _, line := range lines {
		for _, gene := range geneTokenRe.FindAllString(line, -1) {
			gene = strings.TrimSpace(gene)
			if gene == "" || !looksLikeGeneSymbol(gene) || nonGeneMolecules[gene] {
				continue
			}
			if expanded, ok := familyGeneExpansion[gene]; ok {
				for _, mapped := range expanded {
					if seen[mapped] {
						continue
					}
					seen[mapped] = true
					out = append(out, mapped)
					if len(out) >= limit {
						return out
					}
				}
				continue
			}
			if seen[gene] {
				continue
			}
			seen[gene] = true
			out = append(out, gene)
			if len(out) >= limit {
				return out
			}
		}
	}
	return out
}
