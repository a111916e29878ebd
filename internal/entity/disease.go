package entity

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/biomcp/biomcp/internal/domain"
	"github.com/biomcp/biomcp/internal/transform"
)

var diseaseSectionNames = []string{"genes", "phenotypes", "variants", "models"}

var diseaseSectionAliases = map[string]string{
	"gene":      "genes",
	"phenotype": "phenotypes",
	"variant":   "variants",
	"model":     "models",
}

// Monarch encodes each association flavor as a biolink category.
var diseaseAssociationCategories = map[string]string{
	"genes":      "biolink:CausalGeneToDiseaseAssociation",
	"phenotypes": "biolink:DiseaseToPhenotypicFeatureAssociation",
	"variants":   "biolink:VariantToDiseaseAssociation",
	"models":     "biolink:GenotypeToDiseaseAssociation",
}

// GetDisease resolves a CURIE (MONDO:, DOID:, OMIM:) or a disease name to a
// Monarch entity and attaches the requested association sections concurrently.
func (s *Service) GetDisease(ctx context.Context, id string, sections []string) (*domain.Disease, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.NewInvalidArgument("Disease ID or name is required. Example: biomcp get disease MONDO:0005105")
	}
	include, err := parseSections("disease", sections, diseaseSectionNames, diseaseSectionAliases)
	if err != nil {
		return nil, err
	}

	curie := id
	if !strings.Contains(id, ":") {
		curie, err = s.resolveDiseaseCURIE(ctx, id)
		if err != nil {
			return nil, err
		}
	}
	node, err := s.src.Monarch.GetEntity(ctx, curie)
	if err != nil {
		return nil, err
	}
	disease := transform.DiseaseFromMonarch(node)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(sectionConcurrency)
	for _, section := range include {
		category, ok := diseaseAssociationCategories[section]
		if !ok {
			continue
		}
		section := section
		g.Go(func() error {
			result, err := s.src.Monarch.Associations(gctx, disease.ID, category, 20)
			if err != nil {
				s.log.WithError(err).WithField("section", section).Warn("Monarch unavailable for disease association section")
				return nil
			}
			rows := transform.DiseaseAssociationsFromMonarch(result, disease.ID)
			switch section {
			case "genes":
				disease.Genes = rows
			case "phenotypes":
				disease.Phenotypes = rows
			case "variants":
				disease.Variants = rows
			case "models":
				disease.Models = rows
			}
			return nil
		})
	}
	_ = g.Wait()

	return disease, nil
}

// resolveDiseaseCURIE maps a free-text name to the best-matching disease node.
func (s *Service) resolveDiseaseCURIE(ctx context.Context, name string) (string, error) {
	result, err := s.src.Monarch.Search(ctx, name, "biolink:Disease", 1, 0)
	if err != nil {
		return "", err
	}
	rows := transform.DiseaseSearchRowsFromMonarch(result)
	if len(rows) == 0 {
		return "", domain.NewNotFound("disease", name,
			"Try searching: biomcp search disease -q "+quoted(name))
	}
	return rows[0].ID, nil
}

// SearchDiseases runs a category-scoped Monarch search. --category accepts a
// biolink class name for callers that want cross-category results.
func (s *Service) SearchDiseases(ctx context.Context, filters *domain.DiseaseSearchFilters, limit, offset int) (domain.SearchPage[domain.DiseaseSearchResult], error) {
	var page domain.SearchPage[domain.DiseaseSearchResult]
	if err := validateLimit(limit); err != nil {
		return page, err
	}
	if err := validateOffset(offset); err != nil {
		return page, err
	}
	queryTerm := strings.TrimSpace(filters.Query)
	if queryTerm == "" {
		return page, domain.NewInvalidArgument("Query is required. Example: biomcp search disease -q melanoma")
	}

	category := "biolink:Disease"
	if v := strings.TrimSpace(filters.Category); v != "" {
		if !strings.HasPrefix(v, "biolink:") {
			v = "biolink:" + v
		}
		category = v
	}
	result, err := s.src.Monarch.Search(ctx, queryTerm, category, limit, offset)
	if err != nil {
		return page, err
	}
	rows := transform.DiseaseSearchRowsFromMonarch(result)
	var total *int
	if v := result.Get("total"); v.Exists() {
		n := int(v.Int())
		total = &n
	}
	return domain.OffsetPage(rows, total), nil
}

// SearchPhenotypes searches the HPO phenotype subset of the Monarch graph.
func (s *Service) SearchPhenotypes(ctx context.Context, queryTerm string, limit, offset int) (domain.SearchPage[domain.PhenotypeSearchResult], error) {
	var page domain.SearchPage[domain.PhenotypeSearchResult]
	if err := validateLimit(limit); err != nil {
		return page, err
	}
	if err := validateOffset(offset); err != nil {
		return page, err
	}
	queryTerm = strings.TrimSpace(queryTerm)
	if queryTerm == "" {
		return page, domain.NewInvalidArgument("Query is required. Example: biomcp search phenotype -q ataxia")
	}

	result, err := s.src.Monarch.Search(ctx, queryTerm, "biolink:PhenotypicFeature", limit, offset)
	if err != nil {
		return page, err
	}
	rows := transform.PhenotypeSearchRowsFromMonarch(result)
	var total *int
	if v := result.Get("total"); v.Exists() {
		n := int(v.Int())
		total = &n
	}
	return domain.OffsetPage(rows, total), nil
}
