package entity

import (
	"context"
	"sort"
	"strings"

	"github.com/biomcp/biomcp/internal/domain"
	"github.com/biomcp/biomcp/internal/sources"
	"github.com/biomcp/biomcp/internal/transform"
	"github.com/biomcp/biomcp/pkg/ids"
)

var pgxSectionNames = []string{"recommendations", "frequencies", "guidelines", "annotations"}

var pgxSectionAliases = map[string]string{
	"recommendation": "recommendations",
	"frequency":      "frequencies",
	"guideline":      "guidelines",
	"annotation":     "annotations",
}

const (
	pgxAnnotationsUnavailableNote = "PharmGKB annotations unavailable; returned CPIC core content."
	pgxAnnotationsTimedOutNote    = "PharmGKB annotations timed out; returned CPIC core content."
)

// GetPGx resolves the query to gene mode or drug mode by probing the CPIC
// pair endpoints, then attaches the requested sections. Frequencies only
// exist in gene mode; PharmGKB annotations run under their own timeout and
// degrade to a note.
func (s *Service) GetPGx(ctx context.Context, queryTerm string, sections []string) (*domain.PGx, error) {
	queryTerm = strings.TrimSpace(queryTerm)
	if queryTerm == "" {
		return nil, domain.NewInvalidArgument("Gene or drug is required. Example: biomcp get pgx CYP2D6")
	}
	include, err := parseSections("pgx", sections, pgxSectionNames, pgxSectionAliases)
	if err != nil {
		return nil, err
	}

	record, pairs, err := s.resolvePGxMode(ctx, queryTerm)
	if err != nil {
		return nil, err
	}
	record.Interactions = transform.PGxInteractionsFromPairs(pairs)
	transform.SortPGxInteractions(record.Interactions)

	if includes(include, "recommendations") {
		var rows []sources.CPICRecommendationRow
		var err error
		if record.Gene != "" {
			rows, err = s.src.CPIC.RecommendationsByGene(ctx, record.Gene, 100)
		} else {
			rows, err = s.src.CPIC.RecommendationsByDrug(ctx, record.Drug, 100)
		}
		if err != nil {
			s.log.WithError(err).Warn("CPIC unavailable for pgx recommendations section")
			record.Recommendations = []domain.PGxRecommendation{}
		} else {
			record.Recommendations = transform.PGxRecommendationsFromCPIC(rows, record.Gene)
		}
	}

	if includes(include, "frequencies") && record.Gene != "" {
		rows, err := s.src.CPIC.FrequenciesByGene(ctx, record.Gene, 200)
		if err != nil {
			s.log.WithError(err).Warn("CPIC unavailable for pgx frequencies section")
			record.Frequencies = []domain.PGxFrequency{}
		} else {
			record.Frequencies = transform.PGxFrequenciesFromCPIC(rows)
		}
	}

	if includes(include, "guidelines") {
		record.Guidelines = s.fetchPGxGuidelines(ctx, record.Gene, pairs)
	}

	if includes(include, "annotations") {
		s.addPGxAnnotations(ctx, record)
	}

	return record, nil
}

// resolvePGxMode probes pairs-by-gene for HGNC-shaped queries first, then
// pairs-by-drug, then pairs-by-gene again for queries that did not look like
// a symbol, accepting whichever path returns rows.
func (s *Service) resolvePGxMode(ctx context.Context, queryTerm string) (*domain.PGx, []sources.CPICPairRow, error) {
	record := &domain.PGx{Query: queryTerm}
	upper := strings.ToUpper(queryTerm)
	lower := strings.ToLower(queryTerm)
	geneShaped := ids.IsGeneSymbol(upper)

	if geneShaped {
		pairs, err := s.src.CPIC.PairsByGene(ctx, upper, maxSearchLimit)
		if err != nil {
			return nil, nil, err
		}
		if len(pairs) > 0 {
			record.Gene = upper
			return record, pairs, nil
		}
	}

	pairs, err := s.src.CPIC.PairsByDrug(ctx, lower, maxSearchLimit)
	if err != nil {
		return nil, nil, err
	}
	if len(pairs) > 0 {
		record.Drug = lower
		return record, pairs, nil
	}

	if !geneShaped {
		pairs, err := s.src.CPIC.PairsByGene(ctx, upper, maxSearchLimit)
		if err != nil {
			return nil, nil, err
		}
		if len(pairs) > 0 {
			record.Gene = upper
			return record, pairs, nil
		}
	}

	return nil, nil, domain.NewNotFound("pgx", queryTerm,
		"Try searching: biomcp search pgx -g GENE or -d DRUG")
}

// fetchPGxGuidelines uses the CPIC guideline summary endpoint in gene mode
// and falls back to deriving guideline names from the pair rows when the
// summary is empty or unavailable.
func (s *Service) fetchPGxGuidelines(ctx context.Context, gene string, pairs []sources.CPICPairRow) []domain.PGxGuideline {
	if gene != "" {
		rows, err := s.src.CPIC.GuidelinesByGene(ctx, gene, 50)
		if err != nil {
			s.log.WithError(err).Warn("CPIC unavailable for pgx guidelines section")
		} else if out := transform.PGxGuidelinesFromCPIC(rows); len(out) > 0 {
			return out
		}
	}
	return transform.PGxGuidelinesFromPairs(pairs)
}

// addPGxAnnotations fetches PharmGKB label annotations under a timeout;
// degraded outcomes leave CPIC content intact and explain themselves in the
// annotations note.
func (s *Service) addPGxAnnotations(ctx context.Context, record *domain.PGx) {
	cctx, cancel := context.WithTimeout(ctx, pharmGKBTimeout)
	defer cancel()

	var rows []sources.PharmGKBAnnotation
	var err error
	if record.Gene != "" {
		rows, err = s.src.PharmGKB.AnnotationsByGene(cctx, record.Gene, 20)
	} else {
		rows, err = s.src.PharmGKB.AnnotationsByDrug(cctx, record.Drug, 20)
	}
	switch {
	case cctx.Err() == context.DeadlineExceeded:
		s.log.Warn("PharmGKB annotations timed out")
		record.Annotations = []domain.PGxAnnotation{}
		record.AnnotationsNote = pgxAnnotationsTimedOutNote
	case err != nil:
		s.log.WithError(err).Warn("PharmGKB unavailable for pgx annotations section")
		record.Annotations = []domain.PGxAnnotation{}
		record.AnnotationsNote = pgxAnnotationsUnavailableNote
	default:
		record.Annotations = transform.PGxAnnotationsFromPharmGKB(rows)
	}
}

// SearchPGx lists CPIC gene-drug pairs filtered by level and testing
// guidance, sorted by CPIC level then drug name.
func (s *Service) SearchPGx(ctx context.Context, filters *domain.PGxSearchFilters, limit, offset int) (domain.SearchPage[domain.PGxSearchResult], error) {
	var page domain.SearchPage[domain.PGxSearchResult]
	if err := validateLimit(limit); err != nil {
		return page, err
	}
	if err := validateOffset(offset); err != nil {
		return page, err
	}

	gene := strings.ToUpper(strings.TrimSpace(filters.Gene))
	drug := strings.ToLower(strings.TrimSpace(filters.Drug))
	if gene == "" && drug == "" {
		return page, domain.NewInvalidArgument("Either --gene or --drug is required. Example: biomcp search pgx -g CYP2D6")
	}

	var pairs []sources.CPICPairRow
	var err error
	if gene != "" {
		pairs, err = s.src.CPIC.PairsByGene(ctx, gene, 200)
	} else {
		pairs, err = s.src.CPIC.PairsByDrug(ctx, drug, 200)
	}
	if err != nil {
		return page, err
	}

	rows := transform.PGxSearchRowsFromPairs(pairs)
	filtered := rows[:0]
	for _, row := range rows {
		if drug != "" && gene != "" && !strings.EqualFold(row.DrugName, drug) {
			continue
		}
		if v := strings.TrimSpace(filters.CPICLevel); v != "" && !strings.EqualFold(row.CPICLevel, v) {
			continue
		}
		if v := strings.TrimSpace(filters.PGxTesting); v != "" && !strings.Contains(strings.ToLower(row.PGxTesting), strings.ToLower(v)) {
			continue
		}
		filtered = append(filtered, row)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		a, b := filtered[i], filtered[j]
		if ra, rb := transform.CPICLevelRank(a.CPICLevel), transform.CPICLevelRank(b.CPICLevel); ra != rb {
			return ra < rb
		}
		if a.DrugName != b.DrugName {
			return a.DrugName < b.DrugName
		}
		return a.GeneSymbol < b.GeneSymbol
	})

	total := len(filtered)
	return domain.OffsetPage(sliceOffset(filtered, offset, limit), &total), nil
}
