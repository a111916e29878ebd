package transform

import (
	"sort"
	"strings"

	"github.com/biomcp/biomcp/internal/domain"
	"github.com/biomcp/biomcp/internal/sources"
)

// ProteinFromUniProt builds the core protein record. Domains, interactions,
// and the structures page are attached by the orchestrator.
func ProteinFromUniProt(rec *sources.UniProtRecord) *domain.Protein {
	out := &domain.Protein{
		Accession:  rec.PrimaryAccession,
		EntryID:    rec.UniProtKBID,
		Name:       rec.DisplayName(),
		GeneSymbol: rec.PrimaryGeneSymbol(),
		Function:   rec.FunctionSummary(),
	}
	if rec.Organism != nil {
		out.Organism = rec.Organism.ScientificName
	}
	if rec.Sequence != nil {
		out.Length = rec.Sequence.Length
	}
	return out
}

// ProteinSearchRowFromUniProt projects one search result.
func ProteinSearchRowFromUniProt(rec *sources.UniProtRecord) domain.ProteinSearchResult {
	out := domain.ProteinSearchResult{
		Accession:  rec.PrimaryAccession,
		UniProtID:  rec.UniProtKBID,
		Name:       rec.DisplayName(),
		GeneSymbol: rec.PrimaryGeneSymbol(),
	}
	if rec.Organism != nil {
		out.Species = rec.Organism.ScientificName
	}
	return out
}

// ProteinDomainsFromInterPro maps InterPro entries.
func ProteinDomainsFromInterPro(rows []sources.InterProDomain) []domain.ProteinDomain {
	var out []domain.ProteinDomain
	for _, row := range rows {
		out = append(out, domain.ProteinDomain{
			Accession:  row.Accession,
			Name:       row.Name,
			DomainType: row.DomainType,
		})
	}
	return out
}

// ProteinInteractionsFromSTRING maps STRING partner rows, removing the query
// protein itself, deduping case-insensitively, and ordering by descending
// score then partner name.
func ProteinInteractionsFromSTRING(rows []sources.STRINGInteraction, self string, limit int) []domain.ProteinInteraction {
	selfLower := strings.ToLower(strings.TrimSpace(self))
	seen := map[string]bool{}
	var out []domain.ProteinInteraction
	for _, row := range rows {
		partner := strings.TrimSpace(row.PreferredNameB)
		if strings.EqualFold(partner, self) {
			partner = strings.TrimSpace(row.PreferredNameA)
		}
		key := strings.ToLower(partner)
		if partner == "" || key == selfLower || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, domain.ProteinInteraction{Partner: partner, Score: row.Score})
	}
	sort.SliceStable(out, func(i, j int) bool {
		si, sj := -1.0, -1.0
		if out[i].Score != nil {
			si = *out[i].Score
		}
		if out[j].Score != nil {
			sj = *out[j].Score
		}
		if si != sj {
			return si > sj
		}
		return out[i].Partner < out[j].Partner
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// GeneInteractionsFromSTRING is the gene-record flavor of the STRING mapping.
func GeneInteractionsFromSTRING(rows []sources.STRINGInteraction, self string, limit int) []domain.GeneInteraction {
	partners := ProteinInteractionsFromSTRING(rows, self, limit)
	var out []domain.GeneInteraction
	for _, p := range partners {
		out = append(out, domain.GeneInteraction{Partner: p.Partner, Score: p.Score})
	}
	return out
}
