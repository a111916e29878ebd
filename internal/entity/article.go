package entity

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/biomcp/biomcp/internal/domain"
	"github.com/biomcp/biomcp/internal/query"
	"github.com/biomcp/biomcp/internal/sources"
	"github.com/biomcp/biomcp/internal/transform"
	"github.com/biomcp/biomcp/pkg/ids"
)

var articleSectionNames = []string{"fulltext"}

var articleSectionAliases = map[string]string{
	"full-text": "fulltext",
	"full_text": "fulltext",
}

const fullTextUnavailableNote = "Full text is not available from Europe PMC or PMC Open Access."

// GetArticle resolves a PMID, PMCID, or DOI to an article record. PubTator3
// is the primary metadata source; Europe PMC layers in bibliographic fields
// and serves as the fallback when PubTator3 has not indexed the article yet.
func (s *Service) GetArticle(ctx context.Context, id string, sections []string) (*domain.Article, error) {
	id = strings.TrimSpace(id)
	include, err := parseSections("article", sections, articleSectionNames, articleSectionAliases)
	if err != nil {
		return nil, err
	}

	pmid, seed, err := s.resolveArticleID(ctx, id)
	if err != nil {
		return nil, err
	}

	var article *domain.Article
	switch {
	case pmid != "":
		article, err = s.fetchArticleByPMID(ctx, pmid)
		if err != nil {
			return nil, err
		}
	case seed != nil:
		// Resolvable on Europe PMC but never assigned a PMID: fall back with
		// no annotations.
		article = transform.ArticleFromEuropePMC(seed)
	default:
		return nil, domain.NewNotFound("article", id,
			"Try searching: biomcp search article -k "+quoted(id))
	}

	if includes(include, "fulltext") {
		s.addArticleFullText(ctx, article)
	}
	return article, nil
}

// resolveArticleID classifies the identifier and resolves DOI/PMCID to a PMID
// via Europe PMC. When the article exists there without a PMID, the Europe
// PMC row is returned as a fallback seed.
func (s *Service) resolveArticleID(ctx context.Context, id string) (pmid string, seed *sources.EuropePMCResult, err error) {
	if _, ok := ids.ParsePMID(id); ok {
		return id, nil, nil
	}

	var field, value string
	switch {
	case ids.IsDOI(id):
		field, value = "DOI", id
	default:
		if pmcid, ok := ids.ParsePMCID(id); ok {
			field, value = "PMCID", pmcid
		} else {
			return "", nil, domain.NewInvalidArgument(
				"Article ID must be a PMID, PMCID, or DOI. Example: biomcp get article 35714098")
		}
	}

	resp, err := s.src.EuropePMC.SearchByID(ctx, field, value)
	if err != nil {
		return "", nil, err
	}
	if len(resp.ResultList.Result) == 0 {
		return "", nil, domain.NewNotFound("article", id,
			"Try searching: biomcp search article -k "+quoted(id))
	}
	row := resp.ResultList.Result[0]
	if strings.TrimSpace(row.PMID) != "" {
		return row.PMID, nil, nil
	}
	return "", &row, nil
}

// fetchArticleByPMID builds the record from PubTator3 bioc-json, falling back
// to Europe PMC on indexing-lag errors (400/404). Europe PMC metadata is
// merged into PubTator-sourced records to fill bibliographic gaps.
func (s *Service) fetchArticleByPMID(ctx context.Context, pmid string) (*domain.Article, error) {
	doc, status, err := s.src.PubTator.ExportBioCJSON(ctx, pmid)
	if sources.IsLagError(status, err) {
		s.log.WithField("pmid", pmid).Info("PubTator3 has not indexed this PMID yet; falling back to Europe PMC")
		resp, err := s.src.EuropePMC.SearchByPMID(ctx, pmid)
		if err != nil {
			return nil, err
		}
		if len(resp.ResultList.Result) == 0 {
			return nil, domain.NewNotFound("article", pmid,
				"Try searching: biomcp search article -k "+quoted(pmid))
		}
		return transform.ArticleFromEuropePMC(&resp.ResultList.Result[0]), nil
	}
	if err != nil {
		return nil, err
	}

	article := transform.ArticleFromPubTator(doc, pmid)
	if resp, err := s.src.EuropePMC.SearchByPMID(ctx, pmid); err != nil {
		s.log.WithError(err).Warn("Europe PMC unavailable for article metadata merge")
	} else if len(resp.ResultList.Result) > 0 {
		transform.MergeEuropePMC(article, &resp.ResultList.Result[0])
	}
	return article, nil
}

// addArticleFullText tries Europe PMC XML (PMC source first, then MED), then
// PMC Open Access, converts to plain text, and writes the result atomically
// under the cache directory. Failures attach a note instead of failing.
func (s *Service) addArticleFullText(ctx context.Context, article *domain.Article) {
	pmcid := strings.TrimSpace(article.PMCID)
	if pmcid == "" && article.PMID != "" {
		resolved, err := s.src.IDConv.PMCIDForPMID(ctx, article.PMID)
		if err != nil {
			s.log.WithError(err).Warn("ID converter unavailable for full-text lookup")
		} else {
			pmcid = resolved
			article.PMCID = resolved
		}
	}

	var raw []byte
	var err error
	switch {
	case pmcid != "":
		raw, err = s.src.EuropePMC.FullTextXML(ctx, "PMC", strings.TrimPrefix(pmcid, "PMC"))
		if err != nil || len(raw) == 0 {
			raw, err = s.src.PMCOA.FullTextXML(ctx, pmcid)
		}
	case article.PMID != "":
		raw, err = s.src.EuropePMC.FullTextXML(ctx, "MED", article.PMID)
	default:
		article.FullTextNote = fullTextUnavailableNote
		return
	}
	if err != nil || len(raw) == 0 {
		if err != nil {
			s.log.WithError(err).Warn("full text fetch failed")
		}
		article.FullTextNote = fullTextUnavailableNote
		return
	}

	text := transform.PlainTextFromXML(raw)
	if strings.TrimSpace(text) == "" {
		article.FullTextNote = fullTextUnavailableNote
		return
	}

	key := article.PMID
	if key == "" {
		key = pmcid
	}
	path, err := s.writeFullText(key, text)
	if err != nil {
		s.log.WithError(err).Warn("full text cache write failed")
		article.FullTextNote = "Full text was fetched but could not be written to the cache directory."
		return
	}
	article.FullTextPath = path
}

// writeFullText saves the extracted text via temp file + rename so concurrent
// readers never observe a partial file.
func (s *Service) writeFullText(key, text string) (string, error) {
	dir := filepath.Join(s.cacheDir, "fulltext")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	final := filepath.Join(dir, key+".txt")
	tmp, err := os.CreateTemp(filepath.Join(s.cacheDir, "tmp"), "fulltext-*")
	if err != nil {
		tmp, err = os.CreateTemp(dir, "fulltext-*")
		if err != nil {
			return "", err
		}
	}
	name := tmp.Name()
	if _, err := tmp.WriteString(text); err != nil {
		tmp.Close()
		os.Remove(name)
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return "", err
	}
	if err := os.Rename(name, final); err != nil {
		os.Remove(name)
		return "", err
	}
	return final, nil
}

// SearchArticles builds a Europe PMC query from the filters. When retracted
// publications are not excluded and the sort is by date, a page with no
// retracted row triggers one extra probe so retraction markers surface.
func (s *Service) SearchArticles(ctx context.Context, filters *domain.ArticleSearchFilters, limit, offset int) (domain.SearchPage[domain.ArticleSearchResult], error) {
	var page domain.SearchPage[domain.ArticleSearchResult]
	if err := validateLimit(limit); err != nil {
		return page, err
	}
	if err := validateOffset(offset); err != nil {
		return page, err
	}

	queryTerm, err := buildArticleQuery(filters)
	if err != nil {
		return page, err
	}

	sort := sources.EuropePMCSortRelevance
	switch filters.Sort {
	case domain.ArticleSortDate, "":
		sort = sources.EuropePMCSortDate
	case domain.ArticleSortCitations:
		sort = sources.EuropePMCSortCitations
	}

	pageSize := offset + limit
	if pageSize > 100 {
		pageSize = 100
	}
	resp, err := s.src.EuropePMC.Search(ctx, queryTerm, 1, pageSize, sort)
	if err != nil {
		return page, err
	}

	all := make([]domain.ArticleSearchResult, 0, len(resp.ResultList.Result))
	seen := make(map[string]bool)
	for i := range resp.ResultList.Result {
		row := &resp.ResultList.Result[i]
		if filters.NoPreprints && strings.EqualFold(row.Source, "PPR") {
			continue
		}
		if filters.ExcludeRetracted && row.IsRetracted() {
			continue
		}
		all = append(all, transform.ArticleSearchRowFromEuropePMC(row))
		seen[row.PMID] = true
	}
	rows := sliceOffset(all, offset, limit)

	if !filters.ExcludeRetracted && sort == sources.EuropePMCSortDate && len(rows) > 0 && !hasRetractedRow(rows) {
		if sub := s.retractionProbe(ctx, queryTerm, seen); sub != nil {
			rows[len(rows)-1] = *sub
		}
	}

	total := resp.HitCount
	return domain.OffsetPage(rows, &total), nil
}

func hasRetractedRow(rows []domain.ArticleSearchResult) bool {
	for _, row := range rows {
		if row.IsRetracted {
			return true
		}
	}
	return false
}

// retractionProbe reruns the query restricted to retracted publications and
// returns the first match not already on the page.
func (s *Service) retractionProbe(ctx context.Context, queryTerm string, seen map[string]bool) *domain.ArticleSearchResult {
	probe := "(" + queryTerm + `) AND PUB_TYPE:"retracted publication"`
	resp, err := s.src.EuropePMC.Search(ctx, probe, 1, 5, sources.EuropePMCSortDate)
	if err != nil {
		s.log.WithError(err).Warn("retraction probe failed")
		return nil
	}
	for i := range resp.ResultList.Result {
		row := &resp.ResultList.Result[i]
		if row.PMID == "" || seen[row.PMID] {
			continue
		}
		out := transform.ArticleSearchRowFromEuropePMC(row)
		return &out
	}
	return nil
}

func buildArticleQuery(filters *domain.ArticleSearchFilters) (string, error) {
	var terms []string
	// The escaped value is wrapped in plain quotes; fmt's %q would double the
	// escape backslashes.
	add := func(prefix, value string) {
		if v := strings.TrimSpace(value); v != "" {
			terms = append(terms, prefix+`"`+query.EscapeEuropePMC(v)+`"`)
		}
	}
	add("", filters.Gene)
	add("", filters.Disease)
	add("", filters.Drug)
	add("AUTH:", filters.Author)
	add("JOURNAL:", filters.Journal)
	if v := strings.TrimSpace(filters.ArticleType); v != "" {
		normalized, err := query.NormalizeArticleType(v)
		if err != nil {
			return "", err
		}
		terms = append(terms, `PUB_TYPE:"`+normalized+`"`)
	}
	if v := strings.TrimSpace(filters.Keyword); v != "" {
		terms = append(terms, query.Phrase(v))
	}

	from := strings.TrimSpace(filters.DateFrom)
	to := strings.TrimSpace(filters.DateTo)
	if from != "" {
		normalized, err := query.ValidateDate("--date-from", from)
		if err != nil {
			return "", err
		}
		from = normalized
	}
	if to != "" {
		normalized, err := query.ValidateDate("--date-to", to)
		if err != nil {
			return "", err
		}
		to = normalized
	}
	if from != "" && to != "" && from > to {
		return "", domain.NewInvalidArgument("--date-from must be on or before --date-to")
	}
	if from != "" || to != "" {
		if from == "" {
			from = "1900-01-01"
		}
		if to == "" {
			to = "3000-12-31"
		}
		terms = append(terms, fmt.Sprintf("FIRST_PDATE:[%s TO %s]", from, to))
	}

	if filters.OpenAccess {
		terms = append(terms, "OPEN_ACCESS:y")
	}
	if len(terms) == 0 {
		return "", domain.NewInvalidArgument("Query requires at least one filter. Example: biomcp search article -g BRAF")
	}
	return strings.Join(terms, " AND "), nil
}
