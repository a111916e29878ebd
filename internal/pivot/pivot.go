// Package pivot implements the cross-entity helpers: thin orchestrators that
// turn one entity's identifiers into another entity's search filters (gene to
// trials, pathway to drugs, variant to articles), plus the bounded-parallel
// batch executor. Pivots own no upstream access of their own; everything goes
// through the entity orchestrators.
package pivot

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/biomcp/biomcp/internal/domain"
	"github.com/biomcp/biomcp/internal/entity"
	"github.com/biomcp/biomcp/internal/query"
	"github.com/biomcp/biomcp/internal/transform"
	"github.com/biomcp/biomcp/pkg/ids"
)

// Service exposes the cross-entity pivots over one entity service.
type Service struct {
	entities *entity.Service
	log      *logrus.Logger
}

// New builds a pivot Service.
func New(entities *entity.Service, log *logrus.Logger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{entities: entities, log: log}
}

func requireGeneSymbol(symbol string) (string, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return "", domain.NewInvalidArgument("Gene symbol is required. Example: biomcp gene BRAF trials")
	}
	return symbol, nil
}

// GeneTrials lists trials whose indexed text mentions the gene symbol.
func (s *Service) GeneTrials(ctx context.Context, symbol string, limit, offset int) (domain.SearchPage[domain.TrialSearchResult], error) {
	symbol, err := requireGeneSymbol(symbol)
	if err != nil {
		return domain.SearchPage[domain.TrialSearchResult]{}, err
	}
	return s.entities.SearchTrials(ctx, &domain.TrialSearchFilters{Term: symbol}, limit, offset)
}

// GeneDrugs lists drugs with the gene among their annotated targets.
func (s *Service) GeneDrugs(ctx context.Context, symbol string, limit, offset int) (domain.SearchPage[domain.DrugSearchResult], error) {
	symbol, err := requireGeneSymbol(symbol)
	if err != nil {
		return domain.SearchPage[domain.DrugSearchResult]{}, err
	}
	return s.entities.SearchDrugs(ctx, &domain.DrugSearchFilters{Target: symbol}, limit, offset)
}

// GeneArticles lists literature annotated with the gene.
func (s *Service) GeneArticles(ctx context.Context, symbol string, limit, offset int) (domain.SearchPage[domain.ArticleSearchResult], error) {
	symbol, err := requireGeneSymbol(symbol)
	if err != nil {
		return domain.SearchPage[domain.ArticleSearchResult]{}, err
	}
	return s.entities.SearchArticles(ctx, &domain.ArticleSearchFilters{Gene: symbol}, limit, offset)
}

// GenePathways lists the Reactome pathways the gene participates in.
func (s *Service) GenePathways(ctx context.Context, symbol string) ([]domain.GenePathway, error) {
	symbol, err := requireGeneSymbol(symbol)
	if err != nil {
		return nil, err
	}
	gene, err := s.entities.GetGene(ctx, symbol, []string{"pathways"})
	if err != nil {
		return nil, err
	}
	return gene.Pathways, nil
}

// resolveGeneChange turns a variant identifier into a gene symbol plus short
// protein change. rsIDs and genomic HGVS resolve through the variant record;
// "GENE CHANGE" pairs parse directly.
func (s *Service) resolveGeneChange(ctx context.Context, id string) (gene, change string, err error) {
	parsed := ids.ParseVariantID(id)
	switch parsed.Kind {
	case ids.VariantGeneChange:
		return parsed.Gene, query.NormalizeProteinChange(parsed.Change), nil
	case ids.VariantInvalid:
		return "", "", domain.NewInvalidArgument(
			`Variant must be an rsID, genomic HGVS, or "GENE CHANGE" pair. Example: biomcp variant "BRAF V600E" trials`)
	}

	variant, err := s.entities.GetVariant(ctx, id, nil)
	if err != nil {
		return "", "", err
	}
	if variant.Gene == "" || variant.ProteinShort == "" {
		return "", "", domain.NewInvalidArgument(
			`No protein change is annotated for %s. Use the "GENE CHANGE" form instead, e.g. "BRAF V600E".`, strings.TrimSpace(id))
	}
	return variant.Gene, query.NormalizeProteinChange(variant.ProteinShort), nil
}

// VariantTrials lists trials whose eligibility text matches the variant's
// mutation string.
func (s *Service) VariantTrials(ctx context.Context, id string, source domain.TrialSource, limit, offset int) (domain.SearchPage[domain.TrialSearchResult], error) {
	var page domain.SearchPage[domain.TrialSearchResult]
	gene, change, err := s.resolveGeneChange(ctx, id)
	if err != nil {
		return page, err
	}
	return s.entities.SearchTrials(ctx, &domain.TrialSearchFilters{
		Mutation: gene + " " + change,
		Source:   source,
	}, limit, offset)
}

// VariantArticles lists literature mentioning the variant. rsIDs search as
// keywords; gene/change pairs combine the gene annotation with the change.
func (s *Service) VariantArticles(ctx context.Context, id string, limit, offset int) (domain.SearchPage[domain.ArticleSearchResult], error) {
	var page domain.SearchPage[domain.ArticleSearchResult]
	parsed := ids.ParseVariantID(id)
	switch parsed.Kind {
	case ids.VariantRSID:
		return s.entities.SearchArticles(ctx, &domain.ArticleSearchFilters{Keyword: parsed.RSID}, limit, offset)
	case ids.VariantHGVSGenomic:
		return s.entities.SearchArticles(ctx, &domain.ArticleSearchFilters{Keyword: parsed.HGVS}, limit, offset)
	case ids.VariantGeneChange:
		return s.entities.SearchArticles(ctx, &domain.ArticleSearchFilters{
			Gene:    parsed.Gene,
			Keyword: query.NormalizeProteinChange(parsed.Change),
		}, limit, offset)
	}
	return page, domain.NewInvalidArgument(
		`Variant must be an rsID, genomic HGVS, or "GENE CHANGE" pair. Example: biomcp variant "BRAF V600E" articles`)
}

// VariantOncoKB annotates the variant against OncoKB. Requires a configured
// token; the source client surfaces the remedy message when none is set.
func (s *Service) VariantOncoKB(ctx context.Context, id string) (*domain.OncoKBAnnotation, error) {
	gene, change, err := s.resolveGeneChange(ctx, id)
	if err != nil {
		return nil, err
	}
	doc, err := s.entities.Clients().OncoKB.AnnotateProteinChange(ctx, gene, change)
	if err != nil {
		return nil, err
	}
	return transform.OncoKBFromAnnotation(doc, gene, change), nil
}

// DrugTrials lists trials using the drug as an intervention.
func (s *Service) DrugTrials(ctx context.Context, name string, limit, offset int) (domain.SearchPage[domain.TrialSearchResult], error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.SearchPage[domain.TrialSearchResult]{}, domain.NewInvalidArgument(
			"Drug name is required. Example: biomcp drug imatinib trials")
	}
	return s.entities.SearchTrials(ctx, &domain.TrialSearchFilters{Intervention: name}, limit, offset)
}

// DrugAdverseEvents lists FAERS reports for the drug.
func (s *Service) DrugAdverseEvents(ctx context.Context, name string, limit, offset int) (domain.SearchPage[domain.AdverseEventSearchResult], error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.SearchPage[domain.AdverseEventSearchResult]{}, domain.NewInvalidArgument(
			"Drug name is required. Example: biomcp drug vemurafenib adverse-events")
	}
	return s.entities.SearchAdverseEvents(ctx, &domain.AdverseEventSearchFilters{Drug: name}, limit, offset)
}

func requireDiseaseName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", domain.NewInvalidArgument("Disease name is required. Example: biomcp disease melanoma trials")
	}
	return name, nil
}

// DiseaseTrials lists trials for the disease as a condition.
func (s *Service) DiseaseTrials(ctx context.Context, name string, limit, offset int) (domain.SearchPage[domain.TrialSearchResult], error) {
	name, err := requireDiseaseName(name)
	if err != nil {
		return domain.SearchPage[domain.TrialSearchResult]{}, err
	}
	return s.entities.SearchTrials(ctx, &domain.TrialSearchFilters{Condition: name}, limit, offset)
}

// DiseaseArticles lists literature annotated with the disease.
func (s *Service) DiseaseArticles(ctx context.Context, name string, limit, offset int) (domain.SearchPage[domain.ArticleSearchResult], error) {
	name, err := requireDiseaseName(name)
	if err != nil {
		return domain.SearchPage[domain.ArticleSearchResult]{}, err
	}
	return s.entities.SearchArticles(ctx, &domain.ArticleSearchFilters{Disease: name}, limit, offset)
}

// DiseaseDrugs lists drugs indicated for the disease.
func (s *Service) DiseaseDrugs(ctx context.Context, name string, limit, offset int) (domain.SearchPage[domain.DrugSearchResult], error) {
	name, err := requireDiseaseName(name)
	if err != nil {
		return domain.SearchPage[domain.DrugSearchResult]{}, err
	}
	return s.entities.SearchDrugs(ctx, &domain.DrugSearchFilters{Indication: name}, limit, offset)
}

// ArticleEntities returns the PubTator3 entity mentions for an article. An
// article resolvable only through Europe PMC carries no annotations; the
// result is then empty rather than an error.
func (s *Service) ArticleEntities(ctx context.Context, id string) (*domain.ArticleAnnotations, error) {
	article, err := s.entities.GetArticle(ctx, id, nil)
	if err != nil {
		return nil, err
	}
	if article.Annotations == nil {
		return &domain.ArticleAnnotations{}, nil
	}
	return article.Annotations, nil
}

// ProteinStructures pages through the PDB cross-references of a protein.
func (s *Service) ProteinStructures(ctx context.Context, id string, limit, offset int) (domain.SearchPage[string], error) {
	return s.entities.ProteinStructures(ctx, id, limit, offset)
}
