package entity

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"golang.org/x/sync/errgroup"

	"github.com/biomcp/biomcp/internal/domain"
	"github.com/biomcp/biomcp/internal/query"
	"github.com/biomcp/biomcp/internal/sources"
	"github.com/biomcp/biomcp/internal/transform"
	"github.com/biomcp/biomcp/pkg/ids"
)

var variantSectionNames = []string{
	"clinvar", "population", "predictions", "conservation",
	"cosmic", "cgi", "civic", "cbioportal", "gwas", "predict",
}

var variantSectionAliases = map[string]string{
	"gnomad":      "population",
	"frequencies": "population",
	"alphagenome": "predict",
}

// GetVariant resolves the identifier (rsID, genomic HGVS, or "GENE change"),
// fetches the MyVariant document, and attaches the requested sections. The
// document-derived sections are pure transforms; CIViC, cBioPortal, GWAS, and
// AlphaGenome fan out to their own sources with warn-on-failure semantics.
func (s *Service) GetVariant(ctx context.Context, id string, sections []string) (*domain.Variant, error) {
	parsed := ids.ParseVariantID(id)
	if parsed.Kind == ids.VariantInvalid {
		return nil, domain.NewInvalidArgument(
			`Variant ID must be an rsID, genomic HGVS, or "GENE change" pair. Example: biomcp get variant rs113488022`)
	}
	include, err := parseSections("variant", sections, variantSectionNames, variantSectionAliases)
	if err != nil {
		return nil, err
	}

	doc, err := s.fetchVariantDoc(ctx, parsed, id)
	if err != nil {
		return nil, err
	}
	variant := transform.VariantFromMyVariant(doc)
	if variant.Gene == "" && parsed.Gene != "" {
		variant.Gene = parsed.Gene
	}
	if variant.ProteinShort == "" && parsed.Change != "" {
		variant.ProteinShort = query.NormalizeProteinChange(parsed.Change)
	}

	if includes(include, "clinvar") {
		variant.ClinVar = transform.ClinVarFromMyVariant(doc)
	}
	if includes(include, "population") {
		variant.Population = transform.PopulationFromMyVariant(doc)
	}
	if includes(include, "predictions") {
		variant.Predictions = transform.PredictionsFromMyVariant(doc)
	}
	if includes(include, "conservation") {
		variant.Conservation = transform.ConservationFromMyVariant(doc)
	}
	if includes(include, "cosmic") {
		variant.COSMIC = transform.CosmicFromMyVariant(doc)
	}
	if includes(include, "cgi") {
		variant.CGI = transform.CgiFromMyVariant(doc)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(sectionConcurrency)

	if includes(include, "civic") {
		g.Go(func() error {
			s.addVariantCivic(gctx, variant)
			return nil
		})
	}
	if includes(include, "cbioportal") {
		g.Go(func() error {
			s.addVariantCBioPortal(gctx, variant)
			return nil
		})
	}
	if includes(include, "gwas") {
		g.Go(func() error {
			if variant.RSID == "" {
				variant.GWAS = []domain.GwasAssociation{}
				return nil
			}
			result, err := s.src.GWASCatalog.AssociationsByRsID(gctx, variant.RSID, 10)
			if err != nil {
				s.log.WithError(err).Warn("GWAS Catalog unavailable for variant section")
				variant.GWAS = []domain.GwasAssociation{}
				return nil
			}
			variant.GWAS = transform.GwasAssociationsFromCatalog(result, variant.RSID)
			return nil
		})
	}
	if includes(include, "predict") {
		g.Go(func() error {
			s.addVariantPrediction(gctx, variant)
			return nil
		})
	}
	_ = g.Wait()

	return variant, nil
}

// fetchVariantDoc looks the variant up by the best-matching identifier. A
// "GENE change" pair goes through a protein-change query because MyVariant
// has no direct path for that shape.
func (s *Service) fetchVariantDoc(ctx context.Context, parsed ids.VariantID, raw string) (gjson.Result, error) {
	switch parsed.Kind {
	case ids.VariantRSID:
		return s.src.MyVariant.Get(ctx, parsed.RSID)
	case ids.VariantHGVSGenomic:
		return s.src.MyVariant.Get(ctx, parsed.HGVS)
	}

	change := query.NormalizeProteinChange(parsed.Change)
	queryTerm := fmt.Sprintf(`dbnsfp.genename:%s AND snpeff.ann.hgvs_p:"p.%s"`, parsed.Gene, change)
	resp, err := s.src.MyVariant.Query(ctx, queryTerm, 1, 0)
	if err != nil {
		return gjson.Result{}, err
	}
	hits := resp.Get("hits").Array()
	if len(hits) == 0 {
		return gjson.Result{}, domain.NewNotFound("variant", raw,
			fmt.Sprintf("Try searching: biomcp search variant -g %s", parsed.Gene))
	}
	return hits[0], nil
}

func (s *Service) addVariantCivic(ctx context.Context, variant *domain.Variant) {
	if variant.Gene == "" || variant.ProteinShort == "" {
		variant.CIViC = []domain.CivicAssertion{}
		return
	}
	cctx, cancel := context.WithTimeout(ctx, optionalEnrichmentTimeout)
	defer cancel()

	nodes, err := s.src.CIViC.VariantEvidence(cctx, variant.Gene, variant.ProteinShort)
	if err != nil {
		s.log.WithError(err).WithField("gene", variant.Gene).Warn("CIViC unavailable for variant section")
		variant.CIViC = []domain.CivicAssertion{}
		return
	}
	variant.CIViC = transform.CivicAssertionsFromGraphQL(nodes, 10)
}

func (s *Service) addVariantCBioPortal(ctx context.Context, variant *domain.Variant) {
	if variant.Gene == "" || variant.ProteinShort == "" {
		return
	}
	total, matching, err := s.src.CBioPortal.MutationSummary(ctx, variant.Gene, variant.ProteinShort)
	if err != nil {
		s.log.WithError(err).Warn("cBioPortal unavailable for variant section")
		return
	}
	counts := &domain.CBioPortalCounts{StudyCount: 1, SampleCount: matching, TopStudy: "msk_impact_2017"}
	if total > 0 {
		freq := float64(matching) / float64(total)
		counts.TopStudyFreq = &freq
	}
	variant.CBioPortal = counts
}

// addVariantPrediction runs AlphaGenome when a key is configured and the
// record carries the coordinates it needs; otherwise it attaches a note.
func (s *Service) addVariantPrediction(ctx context.Context, variant *domain.Variant) {
	if !s.src.AlphaGenome.HasKey() {
		variant.PredictNote = "AlphaGenome requires an API key. Set BIOMCP_ALPHAGENOME_API_KEY."
		return
	}
	if variant.Chromosome == "" || variant.Position == nil || variant.Ref == "" || variant.Alt == "" {
		variant.PredictNote = "AlphaGenome prediction needs chromosome, position, ref, and alt; the record is missing one of them."
		return
	}
	cctx, cancel := context.WithTimeout(ctx, optionalEnrichmentTimeout)
	defer cancel()

	result, err := s.src.AlphaGenome.PredictVariantEffects(cctx, &sources.AlphaGenomeRequest{
		Chromosome: "chr" + strings.TrimPrefix(variant.Chromosome, "chr"),
		Position:   *variant.Position,
		Reference:  variant.Ref,
		Alternate:  variant.Alt,
	})
	if err != nil {
		s.log.WithError(err).Warn("AlphaGenome unavailable for variant prediction")
		variant.PredictNote = "AlphaGenome prediction unavailable"
		return
	}
	for _, score := range result.Get("scores").Array() {
		name := strings.TrimSpace(score.Get("name").String())
		if name == "" {
			continue
		}
		row := domain.PredictionScore{Tool: "AlphaGenome " + name}
		if v := score.Get("score"); v.Type == gjson.Number {
			f := v.Float()
			row.Score = &f
		}
		variant.Predictions = append(variant.Predictions, row)
	}
}

// SearchVariants queries MyVariant with the server-expressible filters and
// re-checks consequence, impact, and score thresholds client-side.
func (s *Service) SearchVariants(ctx context.Context, filters *domain.VariantSearchFilters, limit, offset int) (domain.SearchPage[domain.VariantSearchResult], error) {
	var page domain.SearchPage[domain.VariantSearchResult]
	if err := validateLimit(limit); err != nil {
		return page, err
	}
	if err := validateOffset(offset); err != nil {
		return page, err
	}

	var terms []string
	if gene := strings.TrimSpace(filters.Gene); gene != "" {
		terms = append(terms, fmt.Sprintf("dbnsfp.genename:%q", strings.ToUpper(gene)))
	}
	if sig := strings.TrimSpace(filters.Significance); sig != "" {
		terms = append(terms, fmt.Sprintf("clinvar.rcv.clinical_significance:%q", sig))
	}
	if region := strings.TrimSpace(filters.Region); region != "" {
		chrom, start, end, err := parseRegionFilter(region)
		if err != nil {
			return page, err
		}
		terms = append(terms, fmt.Sprintf("chr%s:%d-%d", chrom, start, end))
	}
	if filters.MaxFreq != nil {
		terms = append(terms, fmt.Sprintf("gnomad_exome.af.af:<=%s",
			strconv.FormatFloat(*filters.MaxFreq, 'f', -1, 64)))
	}
	if len(terms) == 0 {
		return page, domain.NewInvalidArgument("Query requires at least one filter. Example: biomcp search variant -g BRAF")
	}

	clientSide := filters.Consequence != "" || filters.Impact != "" ||
		filters.MinCADD != nil || filters.MinREVEL != nil || filters.MinGERP != nil
	fetchLimit := limit
	if clientSide {
		fetchLimit = limit + offset
		if fetchLimit > maxSearchLimit {
			fetchLimit = maxSearchLimit
		}
	}

	resp, err := s.src.MyVariant.Query(ctx, strings.Join(terms, " AND "), fetchLimit, offset)
	if err != nil {
		return page, err
	}

	var rows []domain.VariantSearchResult
	for _, hit := range resp.Get("hits").Array() {
		row := transform.VariantSearchRowFromMyVariant(hit)
		if v := strings.TrimSpace(filters.Consequence); v != "" && !strings.EqualFold(row.Consequence, v) {
			continue
		}
		if v := strings.TrimSpace(filters.Impact); v != "" && !strings.EqualFold(row.Impact, v) {
			continue
		}
		if filters.MinCADD != nil && (row.CADDPhred == nil || *row.CADDPhred < *filters.MinCADD) {
			continue
		}
		if filters.MinREVEL != nil && (row.REVEL == nil || *row.REVEL < *filters.MinREVEL) {
			continue
		}
		if filters.MinGERP != nil {
			gerp := transform.VariantFromMyVariant(hit).GERP
			if gerp == nil || *gerp < *filters.MinGERP {
				continue
			}
		}
		rows = append(rows, row)
		if len(rows) >= limit {
			break
		}
	}

	var total *int
	if v := resp.Get("total"); v.Exists() {
		n := int(v.Int())
		total = &n
	}
	return domain.OffsetPage(rows, total), nil
}
