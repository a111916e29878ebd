package transform

import (
	"bytes"
	"encoding/xml"
	"io"
	"sort"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/biomcp/biomcp/internal/domain"
	"github.com/biomcp/biomcp/internal/sources"
)

// ArticleFromPubTator builds an article from a PubTator3 BioC export. The
// document carries the title and abstract passages plus entity annotations.
func ArticleFromPubTator(doc gjson.Result, pmid string) *domain.Article {
	first := doc.Get("PubTator3.0")
	if !first.Exists() {
		first = doc.Get("documents.0")
	}
	if !first.Exists() {
		first = doc
	}

	out := &domain.Article{PMID: pmid}
	if id := first.Get("id").String(); id != "" {
		out.PMID = id
	}

	var abstractParts []string
	counts := map[string]map[string]int{}
	for _, passage := range first.Get("passages").Array() {
		kind := strings.ToLower(passage.Get("infons.type").String())
		if kind == "" {
			kind = strings.ToLower(passage.Get("infons.section_type").String())
		}
		text := strings.TrimSpace(passage.Get("text").String())
		switch {
		case strings.Contains(kind, "title") && out.Title == "":
			out.Title = text
		case strings.Contains(kind, "abstract") && text != "":
			abstractParts = append(abstractParts, text)
		}
		if out.Journal == "" {
			out.Journal = passage.Get("infons.journal").String()
		}
		if out.Date == "" {
			out.Date = passage.Get("infons.year").String()
		}
		for _, ann := range passage.Get("annotations").Array() {
			annType := ann.Get("infons.type").String()
			text := strings.TrimSpace(ann.Get("text").String())
			if annType == "" || text == "" {
				continue
			}
			if counts[annType] == nil {
				counts[annType] = map[string]int{}
			}
			counts[annType][text]++
		}
	}
	out.AbstractText = strings.Join(abstractParts, "\n\n")

	ann := &domain.ArticleAnnotations{
		Genes:     annotationCounts(counts["Gene"]),
		Diseases:  annotationCounts(counts["Disease"]),
		Chemicals: annotationCounts(counts["Chemical"]),
		Mutations: annotationCounts(counts["Mutation"]),
	}
	if len(ann.Genes)+len(ann.Diseases)+len(ann.Chemicals)+len(ann.Mutations) > 0 {
		out.Annotations = ann
	}
	return out
}

// annotationCounts sorts mention counts descending, ties alphabetical.
func annotationCounts(m map[string]int) []domain.AnnotationCount {
	if len(m) == 0 {
		return nil
	}
	out := make([]domain.AnnotationCount, 0, len(m))
	for text, count := range m {
		out = append(out, domain.AnnotationCount{Text: text, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Text < out[j].Text
	})
	return out
}

// ArticleFromEuropePMC builds an article entirely from a Europe PMC row, used
// when PubTator3 has not indexed the article yet.
func ArticleFromEuropePMC(row *sources.EuropePMCResult) *domain.Article {
	out := &domain.Article{PubTatorFallback: true}
	MergeEuropePMC(out, row)
	out.AbstractText = strings.TrimSpace(row.AbstractText)
	return out
}

// MergeEuropePMC layers Europe PMC metadata onto an article, filling gaps
// without overwriting PubTator content.
func MergeEuropePMC(article *domain.Article, row *sources.EuropePMCResult) {
	if row == nil {
		return
	}
	if article.PMID == "" {
		article.PMID = row.PMID
	}
	if article.PMCID == "" {
		article.PMCID = row.PMCID
	}
	if article.DOI == "" {
		article.DOI = row.DOI
	}
	if article.Title == "" {
		article.Title = strings.TrimSpace(row.Title)
	}
	if article.Journal == "" {
		article.Journal = row.JournalTitle
	}
	if len(article.Authors) == 0 && row.AuthorString != "" {
		article.Authors = splitAuthors(row.AuthorString)
	}
	if row.FirstPublicationDate != "" {
		article.Date = row.FirstPublicationDate
	} else if article.Date == "" {
		article.Date = row.PubYear.String()
	}
	if row.CitedByCount != nil {
		n := int64(*row.CitedByCount)
		article.CitationCount = &n
	}
	if types := row.PubTypes(); len(types) > 0 {
		article.PublicationType = strings.Join(types, "; ")
	}
	if row.IsOpenAccess != "" {
		open := strings.EqualFold(row.IsOpenAccess, "Y")
		article.OpenAccess = &open
	}
}

// ArticleSearchRowFromEuropePMC projects one search hit.
func ArticleSearchRowFromEuropePMC(row *sources.EuropePMCResult) domain.ArticleSearchResult {
	out := domain.ArticleSearchResult{
		PMID:        row.PMID,
		Title:       strings.TrimSpace(row.Title),
		Journal:     row.JournalTitle,
		IsRetracted: row.IsRetracted(),
	}
	if row.FirstPublicationDate != "" {
		out.Date = row.FirstPublicationDate
	} else {
		out.Date = row.PubYear.String()
	}
	if row.CitedByCount != nil {
		n := int64(*row.CitedByCount)
		out.CitationCount = &n
	}
	return out
}

// splitAuthors breaks an author string on commas, dropping a trailing period.
func splitAuthors(s string) []string {
	s = strings.TrimSuffix(strings.TrimSpace(s), ".")
	var out []string
	for _, part := range strings.Split(s, ",") {
		if name := strings.TrimSpace(part); name != "" {
			out = append(out, name)
		}
	}
	return out
}

// fullTextSkipElements are JATS containers whose text is noise in a plain-text
// rendering.
var fullTextSkipElements = map[string]bool{
	"ref-list":   true,
	"xref":       true,
	"table-wrap": true,
	"fig":        true,
	"front":      true,
}

// PlainTextFromXML renders full-text JATS/BioC XML as plain text: element
// text concatenated in document order, block boundaries as blank lines,
// reference lists and figure/table apparatus dropped.
func PlainTextFromXML(raw []byte) string {
	decoder := xml.NewDecoder(bytes.NewReader(raw))
	decoder.Strict = false

	var b strings.Builder
	skipDepth := 0
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if skipDepth > 0 {
				skipDepth++
				continue
			}
			if fullTextSkipElements[t.Name.Local] {
				skipDepth = 1
			}
		case xml.EndElement:
			if skipDepth > 0 {
				skipDepth--
				continue
			}
			switch t.Name.Local {
			case "p", "sec", "title", "abstract":
				b.WriteString("\n\n")
			}
		case xml.CharData:
			if skipDepth == 0 {
				b.Write(t)
			}
		}
	}

	// Collapse runs of blank lines left by nested block elements.
	lines := strings.Split(b.String(), "\n")
	var out []string
	blank := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		out = append(out, trimmed)
		blank = false
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
