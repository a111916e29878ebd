package entity

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/biomcp/biomcp/internal/domain"
	"github.com/biomcp/biomcp/internal/sources"
	"github.com/biomcp/biomcp/internal/transform"
)

var geneSectionNames = []string{
	"pathways", "ontology", "diseases", "protein", "go", "interactions", "civic",
}

var geneSectionAliases = map[string]string{
	"pathway":     "pathways",
	"disease":     "diseases",
	"interaction": "interactions",
}

// Enrichr gene-set libraries behind the ontology and diseases sections.
var enrichrLibraries = map[string][]string{
	"ontology": {"GO_Biological_Process_2025", "GO_Molecular_Function_2025"},
	"diseases": {"DisGeNET", "OMIM_Disease"},
}

// GetGene fetches the MyGene base record and attaches the requested sections.
// The OpenTargets clinical context is always attempted; every section failure
// is logged and leaves the section empty rather than failing the record.
func (s *Service) GetGene(ctx context.Context, symbol string, sections []string) (*domain.Gene, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return nil, domain.NewInvalidArgument("Gene symbol is required. Example: biomcp get gene BRAF")
	}
	include, err := parseSections("gene", sections, geneSectionNames, geneSectionAliases)
	if err != nil {
		return nil, err
	}

	hit, err := s.src.MyGene.Get(ctx, symbol)
	if err != nil {
		return nil, err
	}
	gene := transform.GeneFromMyGene(hit)

	explicitAccession := ""
	if hit.UniProt != nil {
		explicitAccession = hit.UniProt.Accession()
	}

	if ctxt, err := s.src.OpenTargets.TargetContext(ctx, gene.Symbol, 5); err != nil {
		s.log.WithError(err).Warn("OpenTargets unavailable for gene clinical context")
	} else if ctxt != nil {
		gene.Diseases = transform.GeneDiseasesFromOpenTargets(ctxt)
		gene.Drugs = transform.GeneDrugsFromOpenTargets(ctxt)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(sectionConcurrency)

	if includes(include, "pathways") {
		g.Go(func() error {
			rows, _, err := s.src.Reactome.SearchPathways(gctx, gene.Symbol, 12)
			if err != nil {
				s.log.WithError(err).Warn("Reactome unavailable for gene pathways section")
				return nil
			}
			gene.Pathways = genePathwaysFromHits(rows)
			return nil
		})
	}
	if includes(include, "ontology") || includes(include, "diseases") {
		ontology := includes(include, "ontology")
		diseases := includes(include, "diseases")
		g.Go(func() error {
			ont, dis, err := s.enrichGene(gctx, gene.Symbol, ontology, diseases)
			if err != nil {
				s.log.WithError(err).Warn("Enrichr unavailable for gene enrichment sections")
				return nil
			}
			gene.Ontology = ont
			gene.DiseaseEnrichment = dis
			return nil
		})
	}
	if includes(include, "protein") {
		g.Go(func() error {
			protein, err := s.fetchGeneProtein(gctx, explicitAccession, gene.Symbol)
			if err != nil {
				s.log.WithError(err).Warn("UniProt unavailable for gene protein section")
				return nil
			}
			gene.Protein = protein
			return nil
		})
	}
	if includes(include, "go") {
		g.Go(func() error {
			terms, err := s.fetchGeneGO(gctx, explicitAccession, gene.Symbol)
			if err != nil {
				s.log.WithError(err).Warn("QuickGO unavailable for gene GO section")
				gene.GO = []domain.GOAnnotation{}
				return nil
			}
			gene.GO = terms
			return nil
		})
	}
	if includes(include, "interactions") {
		g.Go(func() error {
			rows, err := s.src.STRING.Interactions(gctx, gene.Symbol, 9606, 15)
			if err != nil {
				s.log.WithError(err).Warn("STRING unavailable for gene interactions section")
				gene.Interactions = []domain.GeneInteraction{}
				return nil
			}
			gene.Interactions = transform.GeneInteractionsFromSTRING(rows, gene.Symbol, 15)
			return nil
		})
	}
	if includes(include, "civic") {
		g.Go(func() error {
			s.addGeneCivic(gctx, gene)
			return nil
		})
	}
	_ = g.Wait()

	return gene, nil
}

func genePathwaysFromHits(rows []sources.ReactomeHit) []domain.GenePathway {
	var out []domain.GenePathway
	for _, row := range rows {
		id := strings.TrimSpace(row.ID)
		name := strings.TrimSpace(row.Name)
		if id == "" || name == "" {
			continue
		}
		dup := false
		for _, p := range out {
			if strings.EqualFold(p.ID, id) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, domain.GenePathway{ID: id, Name: name})
		}
	}
	return out
}

// enrichGene registers the symbol as an Enrichr list once and queries each
// requested library, keeping the top five terms per library.
func (s *Service) enrichGene(ctx context.Context, symbol string, ontology, diseases bool) (ont, dis []domain.EnrichmentTerm, err error) {
	listID, err := s.src.Enrichr.AddList(ctx, []string{symbol})
	if err != nil {
		return nil, nil, err
	}
	fetch := func(libraries []string) ([]domain.EnrichmentTerm, error) {
		var out []domain.EnrichmentTerm
		for _, lib := range libraries {
			value, err := s.src.Enrichr.Enrich(ctx, listID, lib)
			if err != nil {
				return nil, err
			}
			out = append(out, transform.EnrichmentTermsFromEnrichr(lib, value)...)
		}
		return out, nil
	}
	if ontology {
		if ont, err = fetch(enrichrLibraries["ontology"]); err != nil {
			return nil, nil, err
		}
	}
	if diseases {
		if dis, err = fetch(enrichrLibraries["diseases"]); err != nil {
			return nil, nil, err
		}
	}
	return ont, dis, nil
}

// resolveUniProtAccession prefers the explicit cross-reference from MyGene
// and falls back to a one-row UniProt symbol search.
func (s *Service) resolveUniProtAccession(ctx context.Context, explicit, symbol string) (string, error) {
	if v := strings.TrimSpace(explicit); v != "" {
		return v, nil
	}
	queryTerm := fmt.Sprintf("gene_exact:%s AND organism_id:9606", sources.EscapeQueryValue(symbol))
	page, err := s.src.UniProt.Search(ctx, queryTerm, 1, 0, "")
	if err != nil {
		return "", err
	}
	if len(page.Results) == 0 {
		return "", nil
	}
	return strings.TrimSpace(page.Results[0].PrimaryAccession), nil
}

func (s *Service) fetchGeneProtein(ctx context.Context, explicit, symbol string) (*domain.GeneProtein, error) {
	accession, err := s.resolveUniProtAccession(ctx, explicit, symbol)
	if err != nil {
		return nil, err
	}
	if accession == "" {
		return nil, nil
	}
	rec, err := s.src.UniProt.GetRecord(ctx, accession)
	if err != nil {
		return nil, err
	}
	return transform.GeneProteinFromUniProt(rec), nil
}

// fetchGeneGO lists QuickGO annotations for the gene's accession and
// backfills missing term names with a follow-up terms lookup. Rows dedupe by
// GO ID, first occurrence wins.
func (s *Service) fetchGeneGO(ctx context.Context, explicit, symbol string) ([]domain.GOAnnotation, error) {
	accession, err := s.resolveUniProtAccession(ctx, explicit, symbol)
	if err != nil {
		return nil, err
	}
	if accession == "" {
		return []domain.GOAnnotation{}, nil
	}

	rows, err := s.src.QuickGO.Annotations(ctx, accession, 20)
	if err != nil {
		return nil, err
	}

	var missing []string
	for _, row := range rows {
		id := strings.TrimSpace(row.GOID)
		if id != "" && strings.TrimSpace(row.GOName) == "" {
			missing = append(missing, id)
		}
	}
	type termInfo struct{ name, aspect string }
	termMap := make(map[string]termInfo)
	if len(missing) > 0 {
		terms, err := s.src.QuickGO.Terms(ctx, missing)
		if err != nil {
			s.log.WithError(err).Warn("QuickGO term lookup unavailable")
		} else {
			for _, term := range terms {
				id := strings.TrimSpace(term.ID)
				name := strings.TrimSpace(term.Name)
				if id == "" || name == "" {
					continue
				}
				termMap[id] = termInfo{name: name, aspect: strings.TrimSpace(term.Aspect)}
			}
		}
	}

	out := make([]domain.GOAnnotation, 0, len(rows))
	for _, row := range rows {
		id := strings.TrimSpace(row.GOID)
		if id == "" {
			continue
		}
		dup := false
		for _, existing := range out {
			if existing.ID == id {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		name := strings.TrimSpace(row.GOName)
		aspect := strings.TrimSpace(row.GOAspect)
		if info, ok := termMap[id]; ok {
			if name == "" {
				name = info.name
			}
			if aspect == "" {
				aspect = info.aspect
			}
		}
		if name == "" {
			name = id
		}
		out = append(out, domain.GOAnnotation{
			ID:       id,
			Name:     name,
			Aspect:   aspect,
			Evidence: strings.TrimSpace(row.EvidenceCode),
		})
	}
	return out, nil
}

// addGeneCivic attaches CIViC assertions under the optional-enrichment
// timeout; on timeout or failure the section is an explicit empty list with a
// note.
func (s *Service) addGeneCivic(ctx context.Context, gene *domain.Gene) {
	cctx, cancel := context.WithTimeout(ctx, optionalEnrichmentTimeout)
	defer cancel()

	node, err := s.src.CIViC.GeneEvidence(cctx, gene.Symbol)
	switch {
	case cctx.Err() != nil:
		s.log.WithField("symbol", gene.Symbol).Warn("CIViC gene section timed out")
		gene.CIViC = []domain.CivicAssertion{}
		gene.CIViCNote = "CIViC gene section timed out"
	case err != nil:
		s.log.WithError(err).WithField("symbol", gene.Symbol).Warn("CIViC unavailable for gene section")
		gene.CIViC = []domain.CivicAssertion{}
		gene.CIViCNote = "CIViC unavailable"
	default:
		gene.CIViC = transform.CivicGeneAssertions(node)
	}
}

// looksLikeSymbol reports whether the query is an HGNC-style token (upper
// case letters, digits, dashes, at least one letter).
func looksLikeSymbol(queryTerm string) bool {
	hasUpper := false
	for _, c := range queryTerm {
		switch {
		case c >= 'A' && c <= 'Z':
			hasUpper = true
		case c >= '0' && c <= '9', c == '-':
		default:
			return false
		}
	}
	return hasUpper
}

// mygeneQueryTerm targets symbol-shaped queries at the symbol field and
// escapes everything else for the default full-text search.
func mygeneQueryTerm(queryTerm string) string {
	if looksLikeSymbol(queryTerm) {
		return "symbol:" + queryTerm
	}
	return sources.EscapeQueryValue(queryTerm)
}

var geneTypes = map[string]string{
	"protein-coding": "protein-coding",
	"protein_coding": "protein-coding",
	"ncrna":          "ncRNA",
	"pseudo":         "pseudo",
	"pseudogene":     "pseudo",
}

func normalizeGeneType(raw string) (string, error) {
	if v, ok := geneTypes[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return v, nil
	}
	return "", domain.NewInvalidArgument("--type must be one of: protein-coding, ncrna, pseudo")
}

func normalizeGeneChromosome(raw string) (string, error) {
	v := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(raw)), "chr")
	switch v {
	case "x", "y", "mt":
		return strings.ToUpper(v), nil
	}
	if n, err := strconv.Atoi(v); err == nil && n >= 1 && n <= 22 {
		return strconv.Itoa(n), nil
	}
	return "", domain.NewInvalidArgument("--chromosome must be one of: 1-22, X, Y, MT")
}

var goIDDigits = regexp.MustCompile(`^\d{7}$`)

func normalizeGOID(raw string) (string, error) {
	v := strings.TrimSpace(raw)
	if len(v) == 10 && strings.EqualFold(v[:3], "GO:") && goIDDigits.MatchString(v[3:]) {
		return "GO:" + v[3:], nil
	}
	return "", domain.NewInvalidArgument("--go must be a GO ID in the form GO:0000000")
}

const regionExample = "(example: chr7:140424943-140624564)"

// parseRegionFilter parses chr:start-end into its normalized parts.
func parseRegionFilter(raw string) (chrom string, start, end int64, err error) {
	colon := strings.IndexByte(raw, ':')
	if colon < 0 {
		return "", 0, 0, domain.NewInvalidArgument("--region must use format chr:start-end %s", regionExample)
	}
	chrom, err = normalizeGeneChromosome(raw[:colon])
	if err != nil {
		return "", 0, 0, err
	}
	span := raw[colon+1:]
	dash := strings.IndexByte(span, '-')
	if dash < 0 {
		return "", 0, 0, domain.NewInvalidArgument("--region must use format chr:start-end %s", regionExample)
	}
	start, serr := strconv.ParseInt(strings.TrimSpace(span[:dash]), 10, 64)
	if serr != nil || start <= 0 {
		return "", 0, 0, domain.NewInvalidArgument("--region start must be a positive integer %s", regionExample)
	}
	end, eerr := strconv.ParseInt(strings.TrimSpace(span[dash+1:]), 10, 64)
	if eerr != nil || end <= 0 {
		return "", 0, 0, domain.NewInvalidArgument("--region end must be a positive integer %s", regionExample)
	}
	if start > end {
		return "", 0, 0, domain.NewInvalidArgument("--region requires positive coordinates with start <= end")
	}
	return chrom, start, end, nil
}

// SearchGenes queries MyGene with the normalized filter set. Type and
// chromosome constraints are also re-checked client-side because MyGene's
// field coverage is uneven across records.
func (s *Service) SearchGenes(ctx context.Context, filters *domain.GeneSearchFilters, limit, offset int) (domain.SearchPage[domain.GeneSearchResult], error) {
	var page domain.SearchPage[domain.GeneSearchResult]

	queryTerm := strings.TrimSpace(filters.Query)
	if queryTerm == "" {
		return page, domain.NewInvalidArgument("Query is required. Example: biomcp search gene -q BRAF")
	}
	if len(queryTerm) > 256 {
		return page, domain.NewInvalidArgument("Query is too long. Example: biomcp search gene -q BRAF")
	}
	if err := validateLimit(limit); err != nil {
		return page, err
	}
	if err := validateOffset(offset); err != nil {
		return page, err
	}

	geneType := strings.TrimSpace(filters.Type)
	chromosome := strings.TrimSpace(filters.Chrom)
	region := strings.TrimSpace(filters.Region)
	pathway := strings.TrimSpace(filters.Pathway)
	goTerm := strings.TrimSpace(filters.GO)

	switch {
	case len(geneType) > 64:
		return page, domain.NewInvalidArgument("--type is too long. Example: --type protein-coding")
	case len(chromosome) > 16:
		return page, domain.NewInvalidArgument("--chromosome is too long. Example: --chromosome 7")
	case len(pathway) > 128:
		return page, domain.NewInvalidArgument("--pathway is too long. Example: --pathway R-HSA-5673001")
	case len(goTerm) > 128:
		return page, domain.NewInvalidArgument("--go is too long. Example: --go GO:0004672")
	}

	normalizedType := ""
	if geneType != "" {
		v, err := normalizeGeneType(geneType)
		if err != nil {
			return page, err
		}
		normalizedType = v
	}
	normalizedChrom := ""
	if chromosome != "" {
		v, err := normalizeGeneChromosome(chromosome)
		if err != nil {
			return page, err
		}
		normalizedChrom = v
	}

	terms := []string{mygeneQueryTerm(queryTerm)}
	if normalizedType != "" {
		terms = append(terms, fmt.Sprintf("type_of_gene:%q", sources.EscapeQueryValue(normalizedType)))
	}
	if pathway != "" {
		escaped := sources.EscapeQueryValue(pathway)
		terms = append(terms, fmt.Sprintf(
			`(pathway.kegg.id:"%s" OR pathway.reactome.id:"%s" OR pathway.kegg.name:*%s*)`,
			escaped, escaped, escaped))
	}
	if goTerm != "" {
		normalizedGO, err := normalizeGOID(goTerm)
		if err != nil {
			return page, err
		}
		escaped := sources.EscapeQueryValue(normalizedGO)
		terms = append(terms, fmt.Sprintf(
			`(go.BP.id:"%s" OR go.CC.id:"%s" OR go.MF.id:"%s")`, escaped, escaped, escaped))
	}
	if region != "" {
		chrom, start, end, err := parseRegionFilter(region)
		if err != nil {
			return page, err
		}
		if normalizedChrom == "" {
			normalizedChrom = chrom
		}
		terms = append(terms, fmt.Sprintf(
			"(genomic_pos.chr:%s AND genomic_pos.start:[%d TO %d])", chrom, start, end))
	}

	fetchLimit := limit
	if normalizedChrom != "" || normalizedType != "" {
		fetchLimit = limit + offset
		if fetchLimit < limit {
			fetchLimit = limit
		}
		if fetchLimit > maxSearchLimit {
			fetchLimit = maxSearchLimit
		}
	}

	resp, err := s.src.MyGene.Search(ctx, strings.Join(terms, " AND "), fetchLimit, offset, normalizedChrom)
	if err != nil {
		return page, err
	}

	rows := make([]domain.GeneSearchResult, 0, len(resp.Hits))
	for i := range resp.Hits {
		hit := &resp.Hits[i]
		if normalizedType != "" && !strings.EqualFold(strings.TrimSpace(hit.TypeOfGene), normalizedType) {
			continue
		}
		if normalizedChrom != "" {
			actual := ""
			if hit.GenomicPos != nil {
				actual = strings.TrimSpace(hit.GenomicPos.Chr)
			}
			if !strings.EqualFold(actual, normalizedChrom) {
				continue
			}
		}
		rows = append(rows, transform.GeneSearchRowFromMyGene(hit, hit.Score))
		if len(rows) >= limit {
			break
		}
	}

	total := resp.Total
	return domain.OffsetPage(rows, &total), nil
}
