package transform

import (
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/biomcp/biomcp/internal/domain"
	"github.com/biomcp/biomcp/internal/sources"
)

// GeneFromMyGene builds the core gene record from a MyGene.info hit. Section
// content (pathways, GO, interactions, ...) is attached by the orchestrator.
func GeneFromMyGene(hit *sources.MyGeneHit) *domain.Gene {
	out := &domain.Gene{
		Symbol:      strings.TrimSpace(hit.Symbol),
		Name:        strings.TrimSpace(hit.Name),
		EntrezID:    hit.EntrezGene.String(),
		HGNCID:      hit.HGNC.String(),
		Type:        hit.TypeOfGene,
		MapLocation: hit.MapLoc,
		Summary:     strings.TrimSpace(hit.Summary),
		Aliases:     hit.Alias,
	}
	if hit.Ensembl != nil {
		out.EnsemblID = hit.Ensembl.Gene
	}
	if hit.GenomicPos != nil {
		out.Chromosome = hit.GenomicPos.Chr
	}
	return out
}

// GeneSearchRowFromMyGene projects one search hit.
func GeneSearchRowFromMyGene(hit *sources.MyGeneHit, score *float64) domain.GeneSearchResult {
	out := domain.GeneSearchResult{
		Symbol:   strings.TrimSpace(hit.Symbol),
		Name:     strings.TrimSpace(hit.Name),
		EntrezID: hit.EntrezGene.String(),
		Type:     hit.TypeOfGene,
		Aliases:  hit.Alias,
		Score:    score,
	}
	if hit.GenomicPos != nil {
		out.Chromosome = hit.GenomicPos.Chr
	}
	return out
}

// GeneDiseasesFromOpenTargets maps the clinical context disease rows.
func GeneDiseasesFromOpenTargets(ctxt *sources.TargetClinicalContext) []domain.GeneDisease {
	if ctxt == nil {
		return nil
	}
	var out []domain.GeneDisease
	for _, d := range ctxt.Diseases {
		score := d.Score
		out = append(out, domain.GeneDisease{Name: d.Name, Score: &score})
	}
	return out
}

// GeneDrugsFromOpenTargets maps the clinical context known-drug rows.
func GeneDrugsFromOpenTargets(ctxt *sources.TargetClinicalContext) []domain.GeneDrug {
	if ctxt == nil {
		return nil
	}
	var out []domain.GeneDrug
	for _, d := range ctxt.Drugs {
		row := domain.GeneDrug{Name: d.Name, Mechanism: d.Mechanism, Disease: d.DiseaseName}
		if d.Phase > 0 {
			row.Phase = "Phase " + strconv.Itoa(d.Phase)
		}
		out = append(out, row)
	}
	return out
}

// GeneProteinFromUniProt maps the UniProt summary attached to gene results.
func GeneProteinFromUniProt(rec *sources.UniProtRecord) *domain.GeneProtein {
	if rec == nil || rec.PrimaryAccession == "" {
		return nil
	}
	out := &domain.GeneProtein{
		Accession: rec.PrimaryAccession,
		Name:      rec.DisplayName(),
		Function:  rec.FunctionSummary(),
	}
	if rec.Sequence != nil {
		out.Length = rec.Sequence.Length
	}
	return out
}

// EnrichmentTermsFromEnrichr extracts the top rows of one Enrichr library
// result. Each row is a positional array: rank, term name, p-value, and the
// overlapping gene list at index 5.
func EnrichmentTermsFromEnrichr(library string, value gjson.Result) []domain.EnrichmentTerm {
	var out []domain.EnrichmentTerm
	for _, row := range value.Get(library).Array() {
		cells := row.Array()
		if len(cells) < 3 {
			continue
		}
		name := strings.TrimSpace(cells[1].String())
		if name == "" {
			continue
		}
		term := domain.EnrichmentTerm{Library: library, Term: name}
		if cells[2].Type == gjson.Number {
			p := cells[2].Float()
			term.PValue = &p
		}
		if len(cells) > 5 {
			for _, g := range cells[5].Array() {
				if v := strings.TrimSpace(g.String()); v != "" {
					term.Genes = append(term.Genes, v)
				}
			}
		}
		out = append(out, term)
		if len(out) >= 5 {
			break
		}
	}
	return out
}

// CivicGeneAssertions maps a CIViC gene node to assertion rows, one per
// curated variant. A gene with no curated variants yields a single row
// carrying the gene-level description.
func CivicGeneAssertions(node gjson.Result) []domain.CivicAssertion {
	if !node.Exists() {
		return nil
	}
	geneName := strings.TrimSpace(node.Get("name").String())
	description := strings.TrimSpace(node.Get("description").String())

	var out []domain.CivicAssertion
	for _, v := range node.Get("variants.nodes").Array() {
		name := strings.TrimSpace(v.Get("name").String())
		if name == "" {
			continue
		}
		out = append(out, domain.CivicAssertion{Name: name})
	}
	if len(out) == 0 && geneName != "" {
		out = append(out, domain.CivicAssertion{Name: geneName, Summary: description})
	}
	return out
}
