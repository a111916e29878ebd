package entity

import (
	"context"
	"strings"

	"github.com/biomcp/biomcp/internal/domain"
	"github.com/biomcp/biomcp/internal/transform"
	"github.com/biomcp/biomcp/pkg/ids"
)

var pathwaySectionNames = []string{"genes", "events", "enrichment"}

var pathwaySectionAliases = map[string]string{
	"gene":         "genes",
	"participants": "genes",
	"event":        "events",
}

// GetPathway fetches the Reactome record and attaches the requested sections.
// Gene symbols come from parsing participant display names with the token
// heuristic in the transform layer; enrichment reruns those genes through
// g:Profiler and keeps Reactome-sourced rows.
func (s *Service) GetPathway(ctx context.Context, id string, sections []string) (*domain.Pathway, error) {
	id = strings.TrimSpace(id)
	if !ids.IsReactomeID(id) {
		return nil, domain.NewInvalidArgument(
			"Pathway ID must be a Reactome stable ID (R-HSA-<digits>). Example: biomcp get pathway R-HSA-5673001")
	}
	include, err := parseSections("pathway", sections, pathwaySectionNames, pathwaySectionAliases)
	if err != nil {
		return nil, err
	}

	rec, err := s.src.Reactome.GetPathway(ctx, id)
	if err != nil {
		return nil, err
	}
	pathway := transform.PathwayFromReactomeRecord(rec)

	needGenes := includes(include, "genes") || includes(include, "enrichment")
	if needGenes {
		genes, err := s.PathwayGenes(ctx, id, maxSearchLimit)
		if err != nil {
			s.log.WithError(err).Warn("Reactome participants unavailable for pathway genes section")
			genes = []string{}
		}
		if includes(include, "genes") {
			pathway.Genes = genes
		}
		if includes(include, "enrichment") && len(genes) > 0 {
			rows, err := s.src.GProfiler.EnrichGenes(ctx, genes, 20)
			if err != nil {
				s.log.WithError(err).Warn("g:Profiler unavailable for pathway enrichment section")
			} else {
				pathway.Enrichment = transform.PathwayEnrichmentFromGProfiler(rows)
			}
		}
	}

	if includes(include, "events") {
		events, err := s.src.Reactome.ContainedEvents(ctx, id, 50)
		if err != nil {
			s.log.WithError(err).Warn("Reactome unavailable for pathway events section")
			events = []string{}
		}
		pathway.Events = events
	}
	return pathway, nil
}

// PathwayGenes extracts up to limit gene symbols from the pathway's
// participant list. Shared with the pathway pivots.
func (s *Service) PathwayGenes(ctx context.Context, id string, limit int) ([]string, error) {
	lines, err := s.src.Reactome.Participants(ctx, id, 200)
	if err != nil {
		return nil, err
	}
	return transform.ExtractGeneSymbols(lines, limit), nil
}

// SearchPathways queries Reactome. --top-level lists the root pathway
// hierarchy instead of running a text query.
func (s *Service) SearchPathways(ctx context.Context, filters *domain.PathwaySearchFilters, limit, offset int) (domain.SearchPage[domain.PathwaySearchResult], error) {
	var page domain.SearchPage[domain.PathwaySearchResult]
	if err := validateLimit(limit); err != nil {
		return page, err
	}
	if err := validateOffset(offset); err != nil {
		return page, err
	}

	if filters.TopLevel {
		hits, err := s.src.Reactome.TopLevelPathways(ctx, offset+limit)
		if err != nil {
			return page, err
		}
		rows := make([]domain.PathwaySearchResult, 0, len(hits))
		for _, hit := range hits {
			rows = append(rows, transform.PathwayFromReactomeHit(hit))
		}
		return domain.OffsetPage(sliceOffset(rows, offset, limit), nil), nil
	}

	queryTerm := strings.TrimSpace(filters.Query)
	if queryTerm == "" {
		return page, domain.NewInvalidArgument("Query is required. Example: biomcp search pathway -q MAPK")
	}
	fetch := offset + limit
	if fetch > maxSearchLimit {
		fetch = maxSearchLimit
	}
	hits, total, err := s.src.Reactome.SearchPathways(ctx, queryTerm, fetch)
	if err != nil {
		return page, err
	}
	rows := make([]domain.PathwaySearchResult, 0, len(hits))
	for _, hit := range hits {
		rows = append(rows, transform.PathwayFromReactomeHit(hit))
	}
	return domain.OffsetPage(sliceOffset(rows, offset, limit), total), nil
}

// EnrichGenes profiles an arbitrary gene list through g:Profiler. Unlike the
// pathway enrichment section this keeps every annotation source, not only
// Reactome.
func (s *Service) EnrichGenes(ctx context.Context, genes []string, limit int) ([]domain.PathwayEnrichment, error) {
	cleaned := make([]string, 0, len(genes))
	for _, g := range genes {
		if v := strings.ToUpper(strings.TrimSpace(g)); v != "" {
			cleaned = append(cleaned, v)
		}
	}
	cleaned = dedupeFold(cleaned)
	if len(cleaned) == 0 {
		return nil, domain.NewInvalidArgument("At least one gene symbol is required. Example: biomcp enrich BRAF,KRAS")
	}
	if err := validateLimit(limit); err != nil {
		return nil, err
	}

	rows, err := s.src.GProfiler.EnrichGenes(ctx, cleaned, limit)
	if err != nil {
		return nil, err
	}
	out := make([]domain.PathwayEnrichment, 0, len(rows))
	for _, row := range rows {
		if strings.TrimSpace(row.Name) == "" {
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
	return out, nil
}
