// Package sources holds one adapter per upstream API. Every adapter goes
// through the shared httpx substrate, keeps its logical API name stable for
// errors and metrics, and honors a BIOMCP_<SOURCE>_BASE override so tests and
// air-gapped deployments can point it at a stub.
package sources

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/biomcp/biomcp/internal/config"
	"github.com/biomcp/biomcp/internal/httpx"
)

// TTLs carries the cache lifetimes shared by the adapters: long for
// annotation hubs, short for search endpoints.
type TTLs struct {
	Annotation time.Duration
	Search     time.Duration
}

// Clients bundles every upstream adapter over one substrate client.
type Clients struct {
	HTTP *httpx.Client
	TTL  TTLs

	MyGene         *MyGeneClient
	MyVariant      *MyVariantClient
	MyChem         *MyChemClient
	PubTator       *PubTatorClient
	ClinicalTrials *ClinicalTrialsClient
	NCICTS         *NCICTSClient
	UniProt        *UniProtClient
	InterPro       *InterProClient
	STRING         *STRINGClient
	QuickGO        *QuickGOClient
	Reactome       *ReactomeClient
	GProfiler      *GProfilerClient
	Enrichr        *EnrichrClient
	EuropePMC      *EuropePMCClient
	PMCOA          *PMCOAClient
	IDConv         *IDConvClient
	OpenFDA        *OpenFDAClient
	CPIC           *CPICClient
	PharmGKB       *PharmGKBClient
	Monarch        *MonarchClient
	GWASCatalog    *GWASCatalogClient
	CIViC          *CIViCClient
	OpenTargets    *OpenTargetsClient
	CBioPortal     *CBioPortalClient
	OncoKB         *OncoKBClient
	AlphaGenome    *AlphaGenomeClient
}

// New wires every adapter. Token-gated adapters (OncoKB, AlphaGenome) are
// still constructed; they fail per-call when their credential is missing.
func New(h *httpx.Client, cfg *config.Config) *Clients {
	ttl := TTLs{Annotation: cfg.AnnotationTTL, Search: cfg.SearchTTL}
	if ttl.Annotation == 0 {
		ttl.Annotation = 12 * time.Hour
	}
	if ttl.Search == 0 {
		ttl.Search = time.Hour
	}

	return &Clients{
		HTTP: h,
		TTL:  ttl,

		MyGene:         &MyGeneClient{h: h, base: config.BaseURL("mygene", "https://mygene.info/v3"), ttl: ttl},
		MyVariant:      &MyVariantClient{h: h, base: config.BaseURL("myvariant", "https://myvariant.info/v1"), ttl: ttl},
		MyChem:         &MyChemClient{h: h, base: config.BaseURL("mychem", "https://mychem.info/v1"), ttl: ttl},
		PubTator:       &PubTatorClient{h: h, base: config.BaseURL("pubtator", "https://www.ncbi.nlm.nih.gov/research/pubtator3-api"), ttl: ttl},
		ClinicalTrials: &ClinicalTrialsClient{h: h, base: config.BaseURL("ctgov", "https://clinicaltrials.gov/api/v2"), ttl: ttl},
		NCICTS:         &NCICTSClient{h: h, base: config.BaseURL("nci_cts", "https://clinicaltrialsapi.cancer.gov/api/v2"), ttl: ttl},
		UniProt:        &UniProtClient{h: h, base: config.BaseURL("uniprot", "https://rest.uniprot.org"), ttl: ttl},
		InterPro:       &InterProClient{h: h, base: config.BaseURL("interpro", "https://www.ebi.ac.uk/interpro/api"), ttl: ttl},
		STRING:         &STRINGClient{h: h, base: config.BaseURL("string", "https://string-db.org/api"), ttl: ttl},
		QuickGO:        &QuickGOClient{h: h, base: config.BaseURL("quickgo", "https://www.ebi.ac.uk/QuickGO/services"), ttl: ttl},
		Reactome:       &ReactomeClient{h: h, base: config.BaseURL("reactome", "https://reactome.org/ContentService"), ttl: ttl},
		GProfiler:      &GProfilerClient{h: h, base: config.BaseURL("gprofiler", "https://biit.cs.ut.ee/gprofiler/api"), ttl: ttl},
		Enrichr:        &EnrichrClient{h: h, base: config.BaseURL("enrichr", "https://maayanlab.cloud/Enrichr"), ttl: ttl},
		EuropePMC:      &EuropePMCClient{h: h, base: config.BaseURL("europepmc", "https://www.ebi.ac.uk/europepmc/webservices/rest"), ttl: ttl},
		PMCOA:          &PMCOAClient{h: h, base: config.BaseURL("pmc_oa", "https://www.ncbi.nlm.nih.gov/research/bionlp/RESTful/pmcoa.cgi"), ttl: ttl},
		IDConv:         &IDConvClient{h: h, base: config.BaseURL("idconv", "https://www.ncbi.nlm.nih.gov/pmc/utils/idconv/v1.0"), ttl: ttl, apiKey: cfg.NCBIAPIKey},
		OpenFDA:        &OpenFDAClient{h: h, base: config.BaseURL("openfda", "https://api.fda.gov"), ttl: ttl},
		CPIC:           &CPICClient{h: h, base: config.BaseURL("cpic", "https://api.cpicpgx.org/v1"), ttl: ttl},
		PharmGKB:       &PharmGKBClient{h: h, base: config.BaseURL("pharmgkb", "https://api.pharmgkb.org/v1"), ttl: ttl},
		Monarch:        &MonarchClient{h: h, base: config.BaseURL("monarch", "https://api.monarchinitiative.org/v3/api"), ttl: ttl},
		GWASCatalog:    &GWASCatalogClient{h: h, base: config.BaseURL("gwas", "https://www.ebi.ac.uk/gwas/rest/api"), ttl: ttl},
		CIViC:          &CIViCClient{h: h, base: config.BaseURL("civic", "https://civicdb.org/api/graphql"), ttl: ttl},
		OpenTargets:    &OpenTargetsClient{h: h, base: config.BaseURL("opentargets", "https://api.platform.opentargets.org/api/v4/graphql"), ttl: ttl},
		CBioPortal:     &CBioPortalClient{h: h, base: config.BaseURL("cbioportal", "https://www.cbioportal.org/api"), ttl: ttl},
		OncoKB:         &OncoKBClient{h: h, base: config.BaseURL("oncokb", "https://www.oncokb.org/api/v1"), ttl: ttl, token: cfg.OncoKBToken},
		AlphaGenome:    &AlphaGenomeClient{h: h, base: config.BaseURL("alphagenome", "https://api.alphagenome.google.com/v1"), ttl: ttl, apiKey: cfg.AlphaGenomeKey},
	}
}

// FlexString decodes JSON values that may arrive as a string or a number.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*f = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*f = FlexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

func (f FlexString) String() string { return string(f) }

// FlexStrings decodes JSON values that may arrive as a single string or an
// array of strings.
type FlexStrings []string

func (f *FlexStrings) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*f = nil
		return nil
	}
	if strings.HasPrefix(s, "[") {
		var vs []string
		if err := json.Unmarshal(data, &vs); err != nil {
			return err
		}
		*f = vs
		return nil
	}
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = []string{v}
	return nil
}

func itoa(n int) string { return strconv.Itoa(n) }

func floatString(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
