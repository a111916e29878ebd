package entity

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
	"golang.org/x/sync/errgroup"

	"github.com/biomcp/biomcp/internal/domain"
	"github.com/biomcp/biomcp/internal/sources"
	"github.com/biomcp/biomcp/internal/transform"
)

var drugSectionNames = []string{"label", "shortage", "approvals", "interactions"}

var drugSectionAliases = map[string]string{
	"labels":      "label",
	"shortages":   "shortage",
	"approval":    "approvals",
	"interaction": "interactions",
}

var (
	chemblIDPattern   = regexp.MustCompile(`^CHEMBL\d+$`)
	drugBankIDPattern = regexp.MustCompile(`^DB\d{5}$`)
)

// GetDrug resolves a drug name, ChEMBL ID, or DrugBank ID through MyChem and
// attaches the requested sections. Label and shortage come from openFDA and
// fail open; interactions come from the DrugBank block already on the hit.
func (s *Service) GetDrug(ctx context.Context, id string, sections []string) (*domain.Drug, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.NewInvalidArgument("Drug name or ID is required. Example: biomcp get drug imatinib")
	}
	include, err := parseSections("drug", sections, drugSectionNames, drugSectionAliases)
	if err != nil {
		return nil, err
	}

	hit, err := s.fetchDrugHit(ctx, id)
	if err != nil {
		return nil, err
	}
	drug := transform.DrugFromMyChem(hit)
	if drug.Name == "" {
		drug.Name = id
	}

	if includes(include, "interactions") {
		drug.Interactions = transform.DrugInteractionsFromMyChem(hit, 25)
	}

	name := drug.Name
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(sectionConcurrency)
	if includes(include, "label") {
		g.Go(func() error {
			search := fmt.Sprintf(`openfda.generic_name:%q OR openfda.brand_name:%q`, name, name)
			result, err := s.src.OpenFDA.Labels(gctx, search, 1)
			if err != nil {
				s.log.WithError(err).Warn("openFDA unavailable for drug label section")
				return nil
			}
			drug.Label = transform.DrugLabelFromOpenFDA(result)
			return nil
		})
	}
	if includes(include, "shortage") {
		g.Go(func() error {
			search := fmt.Sprintf(`generic_name:%q OR proprietary_name:%q`, name, name)
			result, err := s.src.OpenFDA.Shortages(gctx, search, 1)
			if err != nil {
				s.log.WithError(err).Warn("openFDA unavailable for drug shortage section")
				return nil
			}
			drug.Shortage = transform.DrugShortageFromOpenFDA(result)
			return nil
		})
	}
	if includes(include, "approvals") {
		g.Go(func() error {
			search := fmt.Sprintf(`openfda.generic_name:%q OR openfda.brand_name:%q`, name, name)
			result, err := s.src.OpenFDA.DrugsFDA(gctx, search, 10)
			if err != nil {
				s.log.WithError(err).Warn("openFDA unavailable for drug approvals section")
				return nil
			}
			drug.Approvals = transform.DrugApprovalsFromOpenFDA(result, 10)
			return nil
		})
	}
	_ = g.Wait()

	return drug, nil
}

// fetchDrugHit routes structured IDs to an exact field query; names go through
// the synonym-aware lookup.
func (s *Service) fetchDrugHit(ctx context.Context, id string) (gjson.Result, error) {
	upper := strings.ToUpper(id)
	var queryTerm string
	switch {
	case chemblIDPattern.MatchString(upper):
		queryTerm = fmt.Sprintf("chembl.molecule_chembl_id:%q", upper)
	case drugBankIDPattern.MatchString(upper):
		queryTerm = fmt.Sprintf("drugbank.id:%q", upper)
	default:
		return s.src.MyChem.Get(ctx, id)
	}

	resp, err := s.src.MyChem.Query(ctx, queryTerm, 1, 0)
	if err != nil {
		return gjson.Result{}, err
	}
	hits := resp.Get("hits").Array()
	if len(hits) == 0 {
		return gjson.Result{}, domain.NewNotFound("drug", id,
			"Try searching: biomcp search drug -q "+quoted(id))
	}
	return hits[0], nil
}

// SearchDrugs queries MyChem with name, target, and indication clauses.
func (s *Service) SearchDrugs(ctx context.Context, filters *domain.DrugSearchFilters, limit, offset int) (domain.SearchPage[domain.DrugSearchResult], error) {
	var page domain.SearchPage[domain.DrugSearchResult]
	if err := validateLimit(limit); err != nil {
		return page, err
	}
	if err := validateOffset(offset); err != nil {
		return page, err
	}

	var terms []string
	if v := strings.TrimSpace(filters.Query); v != "" {
		escaped := sources.EscapeQueryValue(v)
		terms = append(terms, fmt.Sprintf(
			`(chembl.pref_name:%q OR chembl.molecule_synonyms.molecule_synonym:%q OR drugbank.name:%q)`,
			escaped, escaped, escaped))
	}
	if v := strings.TrimSpace(filters.Target); v != "" {
		terms = append(terms, fmt.Sprintf("drugbank.targets.gene_name:%q", strings.ToUpper(v)))
	}
	if v := strings.TrimSpace(filters.Indication); v != "" {
		terms = append(terms, fmt.Sprintf("drugcentral.drug_use.indication.concept_name:%q", sources.EscapeQueryValue(v)))
	}
	if filters.Approved {
		terms = append(terms, "chembl.max_phase:4")
	}
	if len(terms) == 0 {
		return page, domain.NewInvalidArgument("Query requires at least one filter. Example: biomcp search drug -q imatinib")
	}

	resp, err := s.src.MyChem.Query(ctx, strings.Join(terms, " AND "), limit, offset)
	if err != nil {
		return page, err
	}
	hits := resp.Get("hits").Array()
	rows := make([]domain.DrugSearchResult, 0, len(hits))
	for _, hit := range hits {
		rows = append(rows, transform.DrugSearchRowFromMyChem(hit))
	}
	var total *int
	if v := resp.Get("total"); v.Exists() {
		n := int(v.Int())
		total = &n
	}
	return domain.OffsetPage(rows, total), nil
}
