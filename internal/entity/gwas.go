package entity

import (
	"context"
	"strings"

	"github.com/tidwall/gjson"
	"golang.org/x/sync/errgroup"

	"github.com/biomcp/biomcp/internal/domain"
	"github.com/biomcp/biomcp/internal/transform"
	"github.com/biomcp/biomcp/pkg/ids"
)

// SearchGwas lists GWAS Catalog associations for an rsID or a gene symbol.
// Trait and p-value filters apply client-side because the catalog's
// association feeds carry neither as query parameters.
func (s *Service) SearchGwas(ctx context.Context, filters *domain.GwasSearchFilters, limit, offset int) (domain.SearchPage[domain.GwasAssociation], error) {
	var page domain.SearchPage[domain.GwasAssociation]
	if err := validateLimit(limit); err != nil {
		return page, err
	}
	if err := validateOffset(offset); err != nil {
		return page, err
	}

	rsid := strings.ToLower(strings.TrimSpace(filters.RSID))
	gene := strings.ToUpper(strings.TrimSpace(filters.Gene))
	switch {
	case rsid == "" && gene == "":
		return page, domain.NewInvalidArgument("Either --rsid or --gene is required. Example: biomcp search gwas -r rs7329174")
	case rsid != "" && gene != "":
		return page, domain.NewInvalidArgument("Use either --rsid or --gene, not both")
	case rsid != "" && !ids.IsRSID(rsid):
		return page, domain.NewInvalidArgument("--rsid must be an rsID such as rs7329174")
	}

	// The feeds are unpaginated beyond size, so over-fetch and slice locally.
	fetch := offset + limit
	if fetch > 100 {
		fetch = 100
	}
	var result gjson.Result
	var err error
	if rsid != "" {
		result, err = s.src.GWASCatalog.AssociationsByRsID(ctx, rsid, fetch)
	} else {
		result, err = s.src.GWASCatalog.AssociationsByGene(ctx, gene, fetch)
	}
	if err != nil {
		return page, err
	}

	rows := transform.GwasAssociationsFromCatalog(result, rsid)
	s.backfillGwasTraits(ctx, result, rows)

	filtered := rows[:0]
	trait := strings.ToLower(strings.TrimSpace(filters.Trait))
	for _, row := range rows {
		if trait != "" && !strings.Contains(strings.ToLower(row.Trait), trait) {
			continue
		}
		if filters.MaxPValue != nil && (row.PValue == nil || *row.PValue > *filters.MaxPValue) {
			continue
		}
		filtered = append(filtered, row)
	}

	total := len(filtered)
	return domain.OffsetPage(sliceOffset(filtered, offset, limit), &total), nil
}

// backfillGwasTraits resolves the HAL efoTraits link for rows the embedded
// payload left without a trait name. Lookup failures leave the trait empty.
func (s *Service) backfillGwasTraits(ctx context.Context, result gjson.Result, rows []domain.GwasAssociation) {
	items := result.Get("_embedded.associations").Array()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(sectionConcurrency)
	for i := range rows {
		if rows[i].Trait != "" || i >= len(items) {
			continue
		}
		href := items[i].Get("_links.efoTraits.href").String()
		if href == "" {
			continue
		}
		i := i
		g.Go(func() error {
			traits, err := s.src.GWASCatalog.TraitForAssociation(gctx, href)
			if err != nil {
				s.log.WithError(err).Debug("GWAS Catalog trait lookup failed")
				return nil
			}
			rows[i].Trait = traits.Get("_embedded.efoTraits.0.trait").String()
			return nil
		})
	}
	_ = g.Wait()
}
