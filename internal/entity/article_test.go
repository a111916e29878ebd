package entity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biomcp/biomcp/internal/domain"
)

func TestBuildArticleQueryEscaping(t *testing.T) {
	queryTerm, err := buildArticleQuery(&domain.ArticleSearchFilters{
		Gene:    "HLA-B",
		Disease: "non-small cell lung cancer",
		Author:  "O'Brien J",
	})
	require.NoError(t, err)

	terms := strings.Split(queryTerm, " AND ")
	// Escaped values are quoted verbatim: a single backslash per
	// metacharacter, never doubled.
	assert.Contains(t, terms, `"HLA\-B"`)
	assert.Contains(t, terms, `"non\-small cell lung cancer"`)
	assert.Contains(t, terms, `AUTH:"O'Brien J"`)
}

func TestBuildArticleQueryArticleType(t *testing.T) {
	queryTerm, err := buildArticleQuery(&domain.ArticleSearchFilters{
		Gene:        "BRAF",
		ArticleType: "research",
	})
	require.NoError(t, err)
	assert.Contains(t, queryTerm, `PUB_TYPE:"research-article"`)

	_, err = buildArticleQuery(&domain.ArticleSearchFilters{
		Gene:        "BRAF",
		ArticleType: "editorial",
	})
	require.Error(t, err)
	assert.True(t, domain.IsInvalidArgument(err))
	assert.Contains(t, err.Error(), "review, research, research-article, case-reports, meta-analysis")
}

func TestBuildArticleQueryRequiresFilter(t *testing.T) {
	_, err := buildArticleQuery(&domain.ArticleSearchFilters{})
	require.Error(t, err)
	assert.True(t, domain.IsInvalidArgument(err))
}

func europePMCRow(pmid, title, pubType string) string {
	row := `{"pmid": "` + pmid + `", "id": "` + pmid + `", "source": "MED", "title": "` + title + `"`
	if pubType != "" {
		row += `, "pubTypeList": {"pubType": ["` + pubType + `"]}`
	}
	return row + `}`
}

func TestSearchArticlesRetractionBackfill(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if strings.Contains(r.URL.Query().Get("query"), "retracted publication") {
			_, _ = w.Write([]byte(`{"hitCount": 1, "resultList": {"result": [` +
				europePMCRow("999", "RETRACTED: BRAF inhibitor outcomes", "retracted publication") + `]}}`))
			return
		}
		_, _ = w.Write([]byte(`{"hitCount": 2, "resultList": {"result": [` +
			europePMCRow("111", "BRAF in melanoma", "") + `,` +
			europePMCRow("222", "BRAF resistance mechanisms", "") + `]}}`))
	}))
	defer srv.Close()
	s := newTestService(t, map[string]string{"EUROPEPMC": srv.URL})

	page, err := s.SearchArticles(context.Background(), &domain.ArticleSearchFilters{
		Gene: "BRAF",
		Sort: domain.ArticleSortDate,
	}, 2, 0)
	require.NoError(t, err)
	require.Len(t, page.Results, 2)

	// The last row is replaced so the retraction marker surfaces.
	assert.Equal(t, "111", page.Results[0].PMID)
	assert.Equal(t, "999", page.Results[1].PMID)
	assert.True(t, page.Results[1].IsRetracted)
}

func TestSearchArticlesExcludeRetractedSkipsBackfill(t *testing.T) {
	backfillQueried := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if strings.Contains(r.URL.Query().Get("query"), "retracted publication") {
			backfillQueried = true
		}
		_, _ = w.Write([]byte(`{"hitCount": 1, "resultList": {"result": [` +
			europePMCRow("111", "BRAF in melanoma", "") + `]}}`))
	}))
	defer srv.Close()
	s := newTestService(t, map[string]string{"EUROPEPMC": srv.URL})

	page, err := s.SearchArticles(context.Background(), &domain.ArticleSearchFilters{
		Gene:             "BRAF",
		Sort:             domain.ArticleSortDate,
		ExcludeRetracted: true,
	}, 2, 0)
	require.NoError(t, err)
	require.Len(t, page.Results, 1)
	assert.False(t, backfillQueried)
}
