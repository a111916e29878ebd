package sources

import (
	"context"
	"net/url"
	"strings"

	"github.com/biomcp/biomcp/internal/domain"
	"github.com/biomcp/biomcp/internal/httpx"
)

const europePMCAPI = "europepmc"

// EuropePMCSort selects the server-side ordering of search results.
type EuropePMCSort string

const (
	EuropePMCSortDate      EuropePMCSort = "P_PDATE_D desc"
	EuropePMCSortCitations EuropePMCSort = "CITED desc"
	EuropePMCSortRelevance EuropePMCSort = ""
)

// EuropePMCClient queries the Europe PMC REST API for article metadata and
// full-text XML.
type EuropePMCClient struct {
	h    *httpx.Client
	base string
	ttl  TTLs
}

// EuropePMCSearchResponse is the /search envelope.
type EuropePMCSearchResponse struct {
	HitCount   int `json:"hitCount"`
	ResultList struct {
		Result []EuropePMCResult `json:"result"`
	} `json:"resultList"`
}

// EuropePMCResult is one article row.
type EuropePMCResult struct {
	ID                   string     `json:"id"`
	Source               string     `json:"source"`
	PMID                 string     `json:"pmid"`
	PMCID                string     `json:"pmcid"`
	DOI                  string     `json:"doi"`
	Title                string     `json:"title"`
	AuthorString         string     `json:"authorString"`
	JournalTitle         string     `json:"journalTitle"`
	PubYear              FlexString `json:"pubYear"`
	FirstPublicationDate string     `json:"firstPublicationDate"`
	IsOpenAccess         string     `json:"isOpenAccess"`
	CitedByCount         *int       `json:"citedByCount"`
	AbstractText         string     `json:"abstractText"`
	PubTypeList          *struct {
		PubType FlexStrings `json:"pubType"`
	} `json:"pubTypeList"`
}

// PubTypes returns the publication type labels, empty when absent.
func (r *EuropePMCResult) PubTypes() []string {
	if r.PubTypeList == nil {
		return nil
	}
	return r.PubTypeList.PubType
}

// IsRetracted reports whether the row carries a retraction marker.
func (r *EuropePMCResult) IsRetracted() bool {
	for _, t := range r.PubTypes() {
		if strings.EqualFold(strings.TrimSpace(t), "retracted publication") {
			return true
		}
	}
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(r.Title)), "retracted:")
}

// Search runs one page of a query. Pages are 1-based.
func (c *EuropePMCClient) Search(ctx context.Context, queryTerm string, page, pageSize int, sort EuropePMCSort) (*EuropePMCSearchResponse, error) {
	q := url.Values{}
	q.Set("query", queryTerm)
	q.Set("format", "json")
	q.Set("resultType", "lite")
	q.Set("pageSize", itoa(pageSize))
	q.Set("page", itoa(page))
	if sort != "" {
		q.Set("sort", string(sort))
	}

	var resp EuropePMCSearchResponse
	if err := c.h.GetJSON(ctx, europePMCAPI, c.base+"/search", q, c.ttl.Search, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SearchByPMID looks up the MEDLINE row for one PMID.
func (c *EuropePMCClient) SearchByPMID(ctx context.Context, pmid string) (*EuropePMCSearchResponse, error) {
	return c.Search(ctx, "EXT_ID:"+strings.TrimSpace(pmid)+" AND SRC:MED", 1, 1, EuropePMCSortRelevance)
}

// SearchByID resolves a DOI or PMCID to its Europe PMC row.
func (c *EuropePMCClient) SearchByID(ctx context.Context, field, value string) (*EuropePMCSearchResponse, error) {
	return c.Search(ctx, field+":\""+strings.TrimSpace(value)+"\"", 1, 1, EuropePMCSortRelevance)
}

// FullTextXML downloads the full-text XML for an article. source is "PMC" or
// "MED". A 404 means the text is not served by Europe PMC.
func (c *EuropePMCClient) FullTextXML(ctx context.Context, source, id string) ([]byte, error) {
	resp, err := c.h.Do(ctx, httpx.Request{
		API:      europePMCAPI,
		URL:      c.base + "/" + url.PathEscape(source) + "/" + url.PathEscape(strings.TrimSpace(id)) + "/fullTextXML",
		Header:   map[string][]string{"Accept": {"application/xml"}},
		CacheTTL: c.ttl.Annotation,
	})
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == 404 {
		return nil, domain.NewNotFound("fulltext", id, "Full text not available from Europe PMC")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, domain.NewAPIError(europePMCAPI, "HTTP %d: %s", resp.StatusCode, httpx.BodyExcerpt(resp.Body))
	}
	return resp.Body, nil
}
