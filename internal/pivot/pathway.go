package pivot

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/biomcp/biomcp/internal/domain"
)

const (
	// Per-gene drug lookups for one pathway run with this parallelism.
	pathwayDrugConcurrency = 5

	// Gene budget for pathway fan-out: drugs aggregate across this many
	// participants, the trials fallback probes up to fallbackGeneLimit.
	pathwayGeneLimit  = 25
	fallbackGeneLimit = 10

	// How many drugs each per-gene lookup may contribute before the merge.
	maxPivotFanLimit = 25
)

// PathwayDrugs aggregates drugs targeting the pathway's participant genes.
// Lookups run concurrently per gene; drugs merge by case-insensitive name,
// first seen wins. A pathway with no extractable genes yields an empty page.
// The helper fails only when more than half of the attempted lookups fail.
func (s *Service) PathwayDrugs(ctx context.Context, id string, limit int) (domain.SearchPage[domain.DrugSearchResult], error) {
	var page domain.SearchPage[domain.DrugSearchResult]
	genes, err := s.entities.PathwayGenes(ctx, id, pathwayGeneLimit)
	if err != nil {
		return page, err
	}
	if len(genes) == 0 {
		return domain.OffsetPage([]domain.DrugSearchResult{}, domain.IntPtr(0)), nil
	}

	var (
		mu       sync.Mutex
		perGene  = make([][]domain.DrugSearchResult, len(genes))
		failures int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(pathwayDrugConcurrency)
	for i, gene := range genes {
		g.Go(func() error {
			res, err := s.entities.SearchDrugs(gctx, &domain.DrugSearchFilters{Target: gene}, maxPivotFanLimit, 0)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures++
				s.log.WithError(err).WithField("gene", gene).Warn("drug lookup failed during pathway aggregation")
				return nil
			}
			perGene[i] = res.Results
			return nil
		})
	}
	_ = g.Wait()

	if failures*2 > len(genes) {
		return page, domain.NewAPIError("pathway-drugs",
			"%d of %d gene lookups failed for pathway %s", failures, len(genes), id)
	}

	seen := make(map[string]bool)
	var merged []domain.DrugSearchResult
	for _, rows := range perGene {
		for _, row := range rows {
			key := strings.ToLower(strings.TrimSpace(row.Name))
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			merged = append(merged, row)
			if len(merged) == limit {
				return domain.OffsetPage(merged, nil), nil
			}
		}
	}
	return domain.OffsetPage(merged, domain.IntPtr(len(merged))), nil
}

// PathwayArticles lists literature mentioning the pathway by name.
func (s *Service) PathwayArticles(ctx context.Context, id string, limit, offset int) (domain.SearchPage[domain.ArticleSearchResult], error) {
	var page domain.SearchPage[domain.ArticleSearchResult]
	pathway, err := s.entities.GetPathway(ctx, id, nil)
	if err != nil {
		return page, err
	}
	return s.entities.SearchArticles(ctx, &domain.ArticleSearchFilters{Keyword: pathway.Name}, limit, offset)
}

// PathwayTrials searches trials with the pathway name as the condition. When
// the first page comes back empty, participant genes are retried one at a
// time as biomarker queries; the first non-empty result wins and the returned
// note records which gene matched as fallback_biomarker=<gene>.
func (s *Service) PathwayTrials(ctx context.Context, id string, limit, offset int) (domain.SearchPage[domain.TrialSearchResult], string, error) {
	var page domain.SearchPage[domain.TrialSearchResult]
	pathway, err := s.entities.GetPathway(ctx, id, nil)
	if err != nil {
		return page, "", err
	}

	page, err = s.entities.SearchTrials(ctx, &domain.TrialSearchFilters{Condition: pathway.Name}, limit, offset)
	if err != nil {
		return page, "", err
	}
	if len(page.Results) > 0 || offset != 0 {
		return page, "", nil
	}

	genes, err := s.entities.PathwayGenes(ctx, id, fallbackGeneLimit)
	if err != nil {
		s.log.WithError(err).Warn("Reactome participants unavailable for pathway trials fallback")
		return page, "", nil
	}
	for _, gene := range genes {
		fallback, err := s.entities.SearchTrials(ctx, &domain.TrialSearchFilters{Biomarker: gene}, limit, 0)
		if err != nil {
			s.log.WithError(err).WithField("gene", gene).Warn("biomarker fallback query failed during pathway trials")
			continue
		}
		if len(fallback.Results) > 0 {
			return fallback, "fallback_biomarker=" + gene, nil
		}
	}
	return page, "", nil
}
