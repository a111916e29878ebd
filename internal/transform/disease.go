package transform

import (
	"strings"

	"github.com/tidwall/gjson"

	"github.com/biomcp/biomcp/internal/domain"
)

// DiseaseFromMonarch builds the core disease record from a Monarch entity
// node. Association sections are attached by the orchestrator.
func DiseaseFromMonarch(node gjson.Result) *domain.Disease {
	out := &domain.Disease{
		ID:          node.Get("id").String(),
		Name:        strings.TrimSpace(node.Get("name").String()),
		Description: strings.TrimSpace(node.Get("description").String()),
	}
	if strings.HasPrefix(out.ID, "MONDO:") {
		out.MondoID = out.ID
	}
	seen := map[string]bool{}
	for _, syn := range node.Get("synonym").Array() {
		name := strings.TrimSpace(syn.String())
		if name == "" || seen[strings.ToLower(name)] || strings.EqualFold(name, out.Name) {
			continue
		}
		seen[strings.ToLower(name)] = true
		out.Synonyms = append(out.Synonyms, name)
	}
	return out
}

// DiseaseSearchRowsFromMonarch projects search hits.
func DiseaseSearchRowsFromMonarch(result gjson.Result) []domain.DiseaseSearchResult {
	var out []domain.DiseaseSearchResult
	for _, item := range result.Get("items").Array() {
		id := item.Get("id").String()
		name := strings.TrimSpace(item.Get("name").String())
		if id == "" || name == "" {
			continue
		}
		out = append(out, domain.DiseaseSearchResult{ID: id, Name: name})
	}
	return out
}

// PhenotypeSearchRowsFromMonarch projects phenotype search hits.
func PhenotypeSearchRowsFromMonarch(result gjson.Result) []domain.PhenotypeSearchResult {
	var out []domain.PhenotypeSearchResult
	for _, item := range result.Get("items").Array() {
		id := item.Get("id").String()
		name := strings.TrimSpace(item.Get("name").String())
		if id == "" || name == "" {
			continue
		}
		out = append(out, domain.PhenotypeSearchResult{ID: id, Name: name})
	}
	return out
}

// DiseaseAssociationsFromMonarch maps association edges. The disease sits on
// one end; the row carries the other end.
func DiseaseAssociationsFromMonarch(result gjson.Result, diseaseID string) []domain.DiseaseAssociation {
	var out []domain.DiseaseAssociation
	for _, item := range result.Get("items").Array() {
		id := item.Get("object").String()
		name := item.Get("object_label").String()
		if id == diseaseID {
			id = item.Get("subject").String()
			name = item.Get("subject_label").String()
		}
		if id == "" {
			continue
		}
		out = append(out, domain.DiseaseAssociation{
			ID:       id,
			Name:     strings.TrimSpace(name),
			Category: item.Get("category").String(),
			Taxon:    item.Get("object_taxon_label").String(),
		})
	}
	return out
}

// GwasAssociationsFromCatalog maps GWAS Catalog association rows.
func GwasAssociationsFromCatalog(result gjson.Result, rsid string) []domain.GwasAssociation {
	var out []domain.GwasAssociation
	for _, item := range result.Get("_embedded.associations").Array() {
		row := domain.GwasAssociation{
			RSID:     rsid,
			StudyID:  item.Get("study.accessionId").String(),
			PubmedID: item.Get("study.publicationInfo.pubmedId").String(),
			Trait:    item.Get("efoTraits.0.trait").String(),
		}
		if row.RSID == "" {
			row.RSID = item.Get("loci.0.strongestRiskAlleles.0.riskAlleleName").String()
		}
		if v := item.Get("pvalue"); v.Exists() {
			p := v.Float()
			row.PValue = &p
		}
		if v := item.Get("orPerCopyNum"); v.Exists() && v.Type == gjson.Number {
			or := v.Float()
			row.OddsRatio = &or
		}
		for _, gene := range item.Get("loci.0.authorReportedGenes.#.geneName").Array() {
			if name := strings.TrimSpace(gene.String()); name != "" {
				row.MappedGenes = append(row.MappedGenes, name)
			}
		}
		out = append(out, row)
	}
	return out
}

// CivicAssertionsFromGraphQL maps CIViC molecular-profile nodes with their
// accepted evidence items.
func CivicAssertionsFromGraphQL(profiles gjson.Result, limit int) []domain.CivicAssertion {
	var out []domain.CivicAssertion
	for _, profile := range profiles.Array() {
		name := strings.TrimSpace(profile.Get("name").String())
		evidence := profile.Get("evidenceItems.nodes").Array()
		if len(evidence) == 0 {
			if name != "" {
				out = append(out, domain.CivicAssertion{
					Name:    name,
					Summary: strings.TrimSpace(profile.Get("description").String()),
				})
			}
			continue
		}
		for _, item := range evidence {
			out = append(out, domain.CivicAssertion{
				Name:         name,
				Summary:      strings.TrimSpace(item.Get("description").String()),
				EvidenceType: item.Get("evidenceType").String(),
				Significance: item.Get("significance").String(),
				Disease:      item.Get("disease.name").String(),
			})
			if limit > 0 && len(out) >= limit {
				return out
			}
		}
		if limit > 0 && len(out) >= limit {
			return out
		}
	}
	return out
}
