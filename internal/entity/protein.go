package entity

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/biomcp/biomcp/internal/domain"
	"github.com/biomcp/biomcp/internal/sources"
	"github.com/biomcp/biomcp/internal/transform"
	"github.com/biomcp/biomcp/pkg/ids"
)

var proteinSectionNames = []string{"structures", "domains", "interactions"}

var proteinSectionAliases = map[string]string{
	"structure":   "structures",
	"domain":      "domains",
	"interaction": "interactions",
}

// GetProtein resolves a UniProt accession or gene symbol to the full record
// and attaches the requested sections. Domains and interactions fetch
// concurrently and fail open with a warning.
func (s *Service) GetProtein(ctx context.Context, id string, sections []string) (*domain.Protein, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.NewInvalidArgument("Protein ID is required. Example: biomcp get protein P15056")
	}
	include, err := parseSections("protein", sections, proteinSectionNames, proteinSectionAliases)
	if err != nil {
		return nil, err
	}

	accession := id
	if !ids.IsUniProtAccession(id) {
		accession, err = s.resolveProteinAccession(ctx, id)
		if err != nil {
			return nil, err
		}
	}

	rec, err := s.src.UniProt.GetRecord(ctx, accession)
	if err != nil {
		return nil, err
	}
	protein := transform.ProteinFromUniProt(rec)

	if includes(include, "structures") {
		structures := rec.StructureIDs()
		count := len(structures)
		protein.StructureCount = &count
		protein.Structures = rec.StructureSummaries(10)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(sectionConcurrency)
	if includes(include, "domains") {
		g.Go(func() error {
			rows, err := s.src.InterPro.Domains(gctx, protein.Accession, 25)
			if err != nil {
				s.log.WithError(err).Warn("InterPro unavailable for protein domains section")
				protein.Domains = []domain.ProteinDomain{}
				return nil
			}
			protein.Domains = transform.ProteinDomainsFromInterPro(rows)
			return nil
		})
	}
	if includes(include, "interactions") {
		g.Go(func() error {
			self := protein.GeneSymbol
			if self == "" {
				self = protein.Accession
			}
			rows, err := s.src.STRING.Interactions(gctx, self, 9606, 15)
			if err != nil {
				s.log.WithError(err).Warn("STRING unavailable for protein interactions section")
				protein.Interactions = []domain.ProteinInteraction{}
				return nil
			}
			protein.Interactions = transform.ProteinInteractionsFromSTRING(rows, self, 15)
			return nil
		})
	}
	_ = g.Wait()

	return protein, nil
}

// resolveProteinAccession maps a gene symbol to its UniProt accession via the
// MyGene cross-reference, with a UniProt search as backstop.
func (s *Service) resolveProteinAccession(ctx context.Context, symbol string) (string, error) {
	hit, err := s.src.MyGene.Get(ctx, symbol)
	if err == nil && hit.UniProt != nil {
		if accession := hit.UniProt.Accession(); accession != "" {
			return accession, nil
		}
	}
	accession, rerr := s.resolveUniProtAccession(ctx, "", strings.ToUpper(symbol))
	if rerr != nil {
		return "", rerr
	}
	if accession == "" {
		return "", domain.NewNotFound("protein", symbol,
			"Try searching: biomcp search protein -q "+quoted(symbol))
	}
	return accession, nil
}

// ProteinStructures returns one page of PDB structure summaries for an
// accession, sorted by ascending resolution with unresolved entries last.
func (s *Service) ProteinStructures(ctx context.Context, id string, limit, offset int) (domain.SearchPage[string], error) {
	var page domain.SearchPage[string]
	if limit < 1 || limit > maxStructureLimit {
		return page, domain.NewInvalidArgument("--limit must be between 1 and %d", maxStructureLimit)
	}
	if err := validateOffset(offset); err != nil {
		return page, err
	}
	id = strings.TrimSpace(id)

	accession := id
	if !ids.IsUniProtAccession(id) {
		resolved, err := s.resolveProteinAccession(ctx, id)
		if err != nil {
			return page, err
		}
		accession = resolved
	}
	rec, err := s.src.UniProt.GetRecord(ctx, accession)
	if err != nil {
		return page, err
	}

	total := len(rec.StructureIDs())
	all := rec.StructureSummaries(offset + limit)
	return domain.OffsetPage(sliceOffset(all, offset, limit), &total), nil
}

// SearchProteins queries UniProtKB. Results are restricted to human entries
// unless --all-species is set; cursor pagination follows UniProt's Link
// header and cannot be combined with a non-zero offset.
func (s *Service) SearchProteins(ctx context.Context, filters *domain.ProteinSearchFilters, limit, offset int) (domain.SearchPage[domain.ProteinSearchResult], error) {
	var page domain.SearchPage[domain.ProteinSearchResult]
	if err := validateLimit(limit); err != nil {
		return page, err
	}
	if err := validateOffset(offset); err != nil {
		return page, err
	}
	if filters.NextPage != "" && offset > 0 {
		return page, domain.NewInvalidArgument("Use either --offset or --next-page, not both")
	}

	queryTerm := strings.TrimSpace(filters.Query)
	if queryTerm == "" {
		return page, domain.NewInvalidArgument("Query is required. Example: biomcp search protein -q kinase")
	}

	terms := []string{sources.EscapeQueryValue(queryTerm)}
	if !filters.AllSpecies {
		terms = append(terms, "organism_id:9606")
	}
	if filters.Reviewed {
		terms = append(terms, "reviewed:true")
	}
	if v := strings.TrimSpace(filters.Disease); v != "" {
		terms = append(terms, fmt.Sprintf("cc_disease:%q", sources.EscapeQueryValue(v)))
	}
	if filters.Existence != nil {
		if *filters.Existence < 1 || *filters.Existence > 5 {
			return page, domain.NewInvalidArgument("--existence must be between 1 and 5")
		}
		terms = append(terms, fmt.Sprintf("existence:%d", *filters.Existence))
	}

	resp, err := s.src.UniProt.Search(ctx, strings.Join(terms, " AND "), limit, offset, filters.NextPage)
	if err != nil {
		return page, err
	}
	rows := make([]domain.ProteinSearchResult, 0, len(resp.Results))
	for i := range resp.Results {
		rows = append(rows, transform.ProteinSearchRowFromUniProt(&resp.Results[i]))
	}
	var next *string
	if resp.NextPageToken != "" {
		next = &resp.NextPageToken
	}
	return domain.CursorPage(rows, resp.Total, next), nil
}
