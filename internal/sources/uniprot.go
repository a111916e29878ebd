package sources

import (
	"context"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/biomcp/biomcp/internal/domain"
	"github.com/biomcp/biomcp/internal/httpx"
	"github.com/biomcp/biomcp/internal/query"
)

const uniProtAPI = "uniprot"

const uniProtSearchFields = "accession,id,protein_name,gene_names,organism_name,length,cc_function,xref_pdb,xref_alphafolddb"

// UniProtClient queries the UniProtKB REST API. Search pagination is
// cursor-based: the next-page token comes from the Link response header and
// is passed back verbatim (it may be a full URL).
type UniProtClient struct {
	h    *httpx.Client
	base string
	ttl  TTLs
}

// UniProtSearchPage is one page of search results with the header-derived
// total and cursor.
type UniProtSearchPage struct {
	Results       []UniProtRecord
	Total         *int
	NextPageToken string
}

// GetRecord fetches the full entry for an accession.
func (c *UniProtClient) GetRecord(ctx context.Context, accession string) (*UniProtRecord, error) {
	accession = strings.TrimSpace(accession)
	if accession == "" {
		return nil, domain.NewInvalidArgument("UniProt accession is required")
	}

	var record UniProtRecord
	status, err := c.h.GetJSONStatus(ctx, uniProtAPI,
		c.base+"/uniprotkb/"+url.PathEscape(accession)+".json", nil, c.ttl.Annotation, &record)
	if status == 404 {
		return nil, domain.NewNotFound("protein", accession,
			"Try searching: biomcp search protein -q "+accession)
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Search runs a uniprotkb search page. nextPage, when set, takes precedence
// over offset; a URL-shaped token is followed directly.
func (c *UniProtClient) Search(ctx context.Context, queryTerm string, limit, offset int, nextPage string) (*UniProtSearchPage, error) {
	queryTerm = strings.TrimSpace(queryTerm)
	if queryTerm == "" {
		return nil, domain.NewInvalidArgument("UniProt query is required")
	}

	size := limit
	if size < 1 {
		size = 1
	}
	if size > 25 {
		size = 25
	}

	req := httpx.Request{API: uniProtAPI, CacheTTL: c.ttl.Search}
	if token := strings.TrimSpace(nextPage); token != "" {
		validated, err := query.ValidateNextPageToken(token)
		if err != nil {
			return nil, err
		}
		if strings.HasPrefix(validated, "http://") || strings.HasPrefix(validated, "https://") {
			req.URL = validated
		} else {
			q := url.Values{}
			q.Set("query", queryTerm)
			q.Set("format", "json")
			q.Set("size", itoa(size))
			q.Set("cursor", validated)
			q.Set("fields", uniProtSearchFields)
			req.URL = c.base + "/uniprotkb/search"
			req.Query = q
		}
	} else {
		q := url.Values{}
		q.Set("query", queryTerm)
		q.Set("format", "json")
		q.Set("size", itoa(size))
		q.Set("offset", itoa(offset))
		q.Set("fields", uniProtSearchFields)
		req.URL = c.base + "/uniprotkb/search"
		req.Query = q
	}

	resp, err := c.h.Do(ctx, req)
	if err != nil {
		return nil, err
	}

	page := &UniProtSearchPage{}
	if v := resp.Header.Get("X-Total-Results"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			page.Total = &n
		}
	}
	page.NextPageToken = parseUniProtNextLink(resp.Header.Get("Link"))

	var parsed struct {
		Results []UniProtRecord `json:"results"`
	}
	if err := httpx.DecodeJSON(uniProtAPI, resp, &parsed); err != nil {
		return nil, err
	}
	page.Results = parsed.Results
	return page, nil
}

// parseUniProtNextLink pulls the rel="next" URL out of a Link header.
func parseUniProtNextLink(raw string) string {
	for _, part := range strings.Split(raw, ",") {
		piece := strings.TrimSpace(part)
		if !strings.Contains(piece, `rel="next"`) {
			continue
		}
		start := strings.IndexByte(piece, '<')
		if start < 0 {
			continue
		}
		end := strings.IndexByte(piece[start+1:], '>')
		if end < 0 {
			continue
		}
		if u := strings.TrimSpace(piece[start+1 : start+1+end]); u != "" {
			return u
		}
	}
	return ""
}

// UniProtRecord is the entry shape projected by uniProtSearchFields.
type UniProtRecord struct {
	PrimaryAccession   string                  `json:"primaryAccession"`
	UniProtKBID        string                  `json:"uniProtkbId"`
	ProteinDescription *UniProtProteinDesc     `json:"proteinDescription"`
	Genes              []UniProtGene           `json:"genes"`
	Organism           *UniProtOrganism        `json:"organism"`
	Sequence           *UniProtSequence        `json:"sequence"`
	Comments           []UniProtComment        `json:"comments"`
	CrossReferences    []UniProtCrossReference `json:"uniProtKBCrossReferences"`
}

type UniProtProteinDesc struct {
	RecommendedName *UniProtNameContainer  `json:"recommendedName"`
	SubmissionNames []UniProtNameContainer `json:"submissionNames"`
}

type UniProtNameContainer struct {
	FullName *UniProtTextValue `json:"fullName"`
}

type UniProtTextValue struct {
	Value string `json:"value"`
}

type UniProtGene struct {
	GeneName *UniProtTextValue `json:"geneName"`
}

type UniProtOrganism struct {
	ScientificName string `json:"scientificName"`
}

type UniProtSequence struct {
	Length *int `json:"length"`
}

type UniProtComment struct {
	CommentType string             `json:"commentType"`
	Texts       []UniProtTextValue `json:"texts"`
}

type UniProtCrossReference struct {
	Database   string                `json:"database"`
	ID         string                `json:"id"`
	Properties []UniProtCrossRefProp `json:"properties"`
}

type UniProtCrossRefProp struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// DisplayName resolves the human-readable protein name: recommended name,
// else first submission name, else the accession.
func (r *UniProtRecord) DisplayName() string {
	if d := r.ProteinDescription; d != nil {
		if d.RecommendedName != nil && d.RecommendedName.FullName != nil {
			if v := strings.TrimSpace(d.RecommendedName.FullName.Value); v != "" {
				return v
			}
		}
		if len(d.SubmissionNames) > 0 && d.SubmissionNames[0].FullName != nil {
			if v := strings.TrimSpace(d.SubmissionNames[0].FullName.Value); v != "" {
				return v
			}
		}
	}
	return r.PrimaryAccession
}

// PrimaryGeneSymbol returns the first gene name, if any.
func (r *UniProtRecord) PrimaryGeneSymbol() string {
	if len(r.Genes) > 0 && r.Genes[0].GeneName != nil {
		return strings.TrimSpace(r.Genes[0].GeneName.Value)
	}
	return ""
}

// FunctionSummary returns the first FUNCTION comment text.
func (r *UniProtRecord) FunctionSummary() string {
	for _, c := range r.Comments {
		if strings.EqualFold(strings.TrimSpace(c.CommentType), "function") && len(c.Texts) > 0 {
			return strings.TrimSpace(c.Texts[0].Value)
		}
	}
	return ""
}

// StructureIDs returns the deduplicated PDB and AlphaFoldDB identifiers.
func (r *UniProtRecord) StructureIDs() []string {
	var out []string
	seen := map[string]bool{}
	for _, x := range r.CrossReferences {
		db, id := strings.TrimSpace(x.Database), strings.TrimSpace(x.ID)
		if id == "" || (db != "PDB" && db != "AlphaFoldDB") || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// StructureSummaries formats up to limit structure lines: PDB entries as
// "ID (method, resolution)" sorted by ascending resolution (unresolved last,
// ID tiebreak), then AlphaFold models.
func (r *UniProtRecord) StructureSummaries(limit int) []string {
	if limit < 1 {
		limit = 1
	}

	type pdbRow struct {
		id       string
		method   string
		resText  string
		resValue *float64
	}
	var pdbRows []pdbRow
	var otherRows []string
	seen := map[string]bool{}

	for _, x := range r.CrossReferences {
		db, id := strings.TrimSpace(x.Database), strings.TrimSpace(x.ID)
		if id == "" || (db != "PDB" && db != "AlphaFoldDB") || seen[id] {
			continue
		}
		seen[id] = true

		if db == "PDB" {
			row := pdbRow{id: id, method: crossRefProperty(x, "Method")}
			resText := strings.TrimSpace(crossRefProperty(x, "Resolution"))
			if resText != "" && resText != "-" {
				row.resText = resText
				if v, ok := parseResolutionAngstrom(resText); ok {
					row.resValue = &v
				}
			}
			pdbRows = append(pdbRows, row)
		} else {
			otherRows = append(otherRows, id+" (AlphaFold model)")
		}
	}

	sort.SliceStable(pdbRows, func(i, j int) bool {
		a, b := pdbRows[i], pdbRows[j]
		switch {
		case a.resValue != nil && b.resValue != nil:
			return *a.resValue < *b.resValue
		case a.resValue != nil:
			return true
		case b.resValue != nil:
			return false
		default:
			return a.id < b.id
		}
	})

	var out []string
	for _, row := range pdbRows {
		var line string
		switch {
		case row.method != "" && row.resText != "":
			line = row.id + " (" + row.method + ", " + row.resText + ")"
		case row.method != "":
			line = row.id + " (" + row.method + ")"
		case row.resText != "":
			line = row.id + " (" + row.resText + ")"
		default:
			line = row.id
		}
		out = append(out, line)
		if len(out) >= limit {
			return out
		}
	}
	for _, row := range otherRows {
		out = append(out, row)
		if len(out) >= limit {
			break
		}
	}
	return out
}

func crossRefProperty(row UniProtCrossReference, key string) string {
	for _, p := range row.Properties {
		if strings.EqualFold(strings.TrimSpace(p.Key), key) {
			if v := strings.TrimSpace(p.Value); v != "" {
				return v
			}
		}
	}
	return ""
}

func parseResolutionAngstrom(value string) (float64, bool) {
	token := strings.TrimSpace(strings.TrimRight(strings.TrimSpace(value), "Aa"))
	fields := strings.Fields(token)
	if len(fields) == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(fields[0], 64)
	return v, err == nil
}
