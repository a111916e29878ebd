package sources

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/biomcp/biomcp/internal/domain"
	"github.com/biomcp/biomcp/internal/httpx"
)

const myGeneAPI = "mygene"

const myGeneFields = "symbol,name,entrezgene,HGNC,ensembl.gene,type_of_gene,genomic_pos,map_location,summary,alias,uniprot"

// MyGeneClient queries MyGene.info.
type MyGeneClient struct {
	h    *httpx.Client
	base string
	ttl  TTLs
}

// MyGeneQueryResponse is the /query envelope.
type MyGeneQueryResponse struct {
	Total int         `json:"total"`
	Hits  []MyGeneHit `json:"hits"`
}

// MyGeneHit is one gene record. Several fields arrive as either scalars or
// arrays depending on the gene, hence the flexible types.
type MyGeneHit struct {
	Score      *float64         `json:"_score"`
	Symbol     string           `json:"symbol"`
	Name       string           `json:"name"`
	EntrezGene FlexString       `json:"entrezgene"`
	HGNC       FlexString       `json:"HGNC"`
	Ensembl    *MyGeneEnsembl   `json:"ensembl"`
	TypeOfGene string           `json:"type_of_gene"`
	GenomicPos *MyGeneGenomePos `json:"genomic_pos"`
	MapLoc     string           `json:"map_location"`
	Summary    string           `json:"summary"`
	Alias      FlexStrings      `json:"alias"`
	UniProt    *MyGeneUniProt   `json:"uniprot"`
}

// MyGeneEnsembl may arrive as an object or an array of objects; only the
// first gene ID matters.
type MyGeneEnsembl struct {
	Gene string
}

func (e *MyGeneEnsembl) UnmarshalJSON(data []byte) error {
	type one struct {
		Gene string `json:"gene"`
	}
	s := strings.TrimSpace(string(data))
	if strings.HasPrefix(s, "[") {
		var many []one
		if err := json.Unmarshal(data, &many); err != nil {
			return err
		}
		if len(many) > 0 {
			e.Gene = many[0].Gene
		}
		return nil
	}
	var v one
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	e.Gene = v.Gene
	return nil
}

// MyGeneGenomePos may arrive as an object or an array; the first entry wins.
type MyGeneGenomePos struct {
	Chr   string
	Start *int64
	End   *int64
}

func (g *MyGeneGenomePos) UnmarshalJSON(data []byte) error {
	type one struct {
		Chr   FlexString `json:"chr"`
		Start *int64     `json:"start"`
		End   *int64     `json:"end"`
	}
	s := strings.TrimSpace(string(data))
	if strings.HasPrefix(s, "[") {
		var many []one
		if err := json.Unmarshal(data, &many); err != nil {
			return err
		}
		if len(many) > 0 {
			g.Chr, g.Start, g.End = many[0].Chr.String(), many[0].Start, many[0].End
		}
		return nil
	}
	var v one
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	g.Chr, g.Start, g.End = v.Chr.String(), v.Start, v.End
	return nil
}

// MyGeneUniProt carries the Swiss-Prot accession(s).
type MyGeneUniProt struct {
	SwissProt FlexStrings `json:"Swiss-Prot"`
}

// Accession returns the first Swiss-Prot accession, if any.
func (u *MyGeneUniProt) Accession() string {
	if u == nil || len(u.SwissProt) == 0 {
		return ""
	}
	return strings.TrimSpace(u.SwissProt[0])
}

// myGeneSpecial is the Lucene metacharacter set escaped in free-text values.
const myGeneSpecial = `+-=&|><!(){}[]^"~*?:\/`

// EscapeQueryValue backslash-escapes Lucene metacharacters for MyGene query
// strings.
func EscapeQueryValue(value string) string {
	var b strings.Builder
	b.Grow(len(value))
	for _, c := range value {
		if strings.ContainsRune(myGeneSpecial, c) {
			b.WriteByte('\\')
		}
		b.WriteRune(c)
	}
	return b.String()
}

// Get resolves a gene symbol or Entrez ID to its full annotation record. A
// symbol that matches nothing is a NotFound.
func (c *MyGeneClient) Get(ctx context.Context, symbol string) (*MyGeneHit, error) {
	q := url.Values{}
	q.Set("q", "symbol:"+EscapeQueryValue(strings.TrimSpace(symbol)))
	q.Set("species", "human")
	q.Set("fields", myGeneFields)
	q.Set("size", "1")

	var resp MyGeneQueryResponse
	if err := c.h.GetJSON(ctx, myGeneAPI, c.base+"/query", q, c.ttl.Annotation, &resp); err != nil {
		return nil, err
	}
	if len(resp.Hits) == 0 {
		return nil, domain.NewNotFound("gene", symbol,
			"Try searching: biomcp search gene -q "+strings.TrimSpace(symbol))
	}
	return &resp.Hits[0], nil
}

// Search runs a raw Lucene query with optional chromosome narrowing.
func (c *MyGeneClient) Search(ctx context.Context, queryTerm string, size, from int, chromosome string) (*MyGeneQueryResponse, error) {
	q := url.Values{}
	query := queryTerm
	if chromosome != "" {
		query += " AND genomic_pos.chr:" + chromosome
	}
	q.Set("q", query)
	q.Set("species", "human")
	q.Set("fields", myGeneFields)
	q.Set("size", itoa(size))
	q.Set("from", itoa(from))

	var resp MyGeneQueryResponse
	if err := c.h.GetJSON(ctx, myGeneAPI, c.base+"/query", q, c.ttl.Search, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
