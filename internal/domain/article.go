package domain

// Article is the rich record returned by article get. Metadata comes from
// PubTator3 layered with Europe PMC; PubTatorFallback marks records built
// entirely from Europe PMC after a PubTator3 indexing-lag error.
type Article struct {
	PMID             string              `json:"pmid,omitempty"`
	PMCID            string              `json:"pmcid,omitempty"`
	DOI              string              `json:"doi,omitempty"`
	Title            string              `json:"title"`
	Authors          []string            `json:"authors,omitempty"`
	Journal          string              `json:"journal,omitempty"`
	Date             string              `json:"date,omitempty"`
	CitationCount    *int64              `json:"citation_count,omitempty"`
	PublicationType  string              `json:"publication_type,omitempty"`
	OpenAccess       *bool               `json:"open_access,omitempty"`
	AbstractText     string              `json:"abstract_text,omitempty"`
	FullTextPath     string              `json:"full_text_path,omitempty"`
	FullTextNote     string              `json:"full_text_note,omitempty"`
	Annotations      *ArticleAnnotations `json:"annotations,omitempty"`
	PubTatorFallback bool                `json:"pubtator_fallback,omitempty"`
}

// ArticleAnnotations groups PubTator3 entity mentions by type.
type ArticleAnnotations struct {
	Genes     []AnnotationCount `json:"genes,omitempty"`
	Diseases  []AnnotationCount `json:"diseases,omitempty"`
	Chemicals []AnnotationCount `json:"chemicals,omitempty"`
	Mutations []AnnotationCount `json:"mutations,omitempty"`
}

// AnnotationCount is one mention string with its occurrence count.
type AnnotationCount struct {
	Text  string `json:"text"`
	Count int    `json:"count"`
}

// ArticleSearchResult is the lighter row returned by article search.
type ArticleSearchResult struct {
	PMID          string `json:"pmid"`
	Title         string `json:"title"`
	Journal       string `json:"journal,omitempty"`
	Date          string `json:"date,omitempty"`
	CitationCount *int64 `json:"citation_count,omitempty"`
	IsRetracted   bool   `json:"is_retracted"`
}

// ArticleSort orders article search results.
type ArticleSort string

const (
	ArticleSortDate      ArticleSort = "date"
	ArticleSortCitations ArticleSort = "citations"
	ArticleSortRelevance ArticleSort = "relevance"
)

// ArticleSearchFilters are the article search flags after trimming.
type ArticleSearchFilters struct {
	Gene             string
	Disease          string
	Drug             string
	Author           string
	Keyword          string
	DateFrom         string
	DateTo           string
	ArticleType      string
	Journal          string
	OpenAccess       bool
	NoPreprints      bool
	ExcludeRetracted bool
	Sort             ArticleSort
}
