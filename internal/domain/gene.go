package domain

// Gene is the rich record returned by gene get.
type Gene struct {
	Symbol      string   `json:"symbol"`
	Name        string   `json:"name,omitempty"`
	EntrezID    string   `json:"entrez_id,omitempty"`
	HGNCID      string   `json:"hgnc_id,omitempty"`
	EnsemblID   string   `json:"ensembl_id,omitempty"`
	Type        string   `json:"type,omitempty"`
	Chromosome  string   `json:"chromosome,omitempty"`
	MapLocation string   `json:"map_location,omitempty"`
	Summary     string   `json:"summary,omitempty"`
	Aliases     []string `json:"aliases,omitempty"`

	Pathways          []GenePathway    `json:"pathways,omitempty"`
	Ontology          []EnrichmentTerm `json:"ontology,omitempty"`
	DiseaseEnrichment []EnrichmentTerm `json:"disease_enrichment,omitempty"`

	Diseases     []GeneDisease     `json:"diseases,omitempty"`
	Drugs        []GeneDrug        `json:"drugs,omitempty"`
	Protein      *GeneProtein      `json:"protein,omitempty"`
	GO           []GOAnnotation    `json:"go,omitempty"`
	Interactions []GeneInteraction `json:"interactions,omitempty"`
	CIViC        []CivicAssertion  `json:"civic,omitempty"`
	CIViCNote    string            `json:"civic_note,omitempty"`
}

// GenePathway is one Reactome pathway hit attached to a gene.
type GenePathway struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// EnrichmentTerm is one Enrichr term with its library of origin.
type EnrichmentTerm struct {
	Library string   `json:"library"`
	Term    string   `json:"term"`
	PValue  *float64 `json:"p_value,omitempty"`
	Genes   []string `json:"genes,omitempty"`
}

// GeneDisease is an OpenTargets disease association.
type GeneDisease struct {
	ID    string   `json:"id,omitempty"`
	Name  string   `json:"name"`
	Score *float64 `json:"score,omitempty"`
}

// GeneDrug is an OpenTargets known-drug row.
type GeneDrug struct {
	Name      string `json:"name"`
	Phase     string `json:"phase,omitempty"`
	Mechanism string `json:"mechanism,omitempty"`
	Disease   string `json:"disease,omitempty"`
}

// GeneProtein is the UniProt summary attached to a gene record.
type GeneProtein struct {
	Accession string `json:"accession"`
	Name      string `json:"name,omitempty"`
	Length    *int   `json:"length,omitempty"`
	Function  string `json:"function,omitempty"`
}

// GOAnnotation is one QuickGO annotation with its resolved term name.
type GOAnnotation struct {
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	Aspect   string `json:"aspect,omitempty"`
	Evidence string `json:"evidence,omitempty"`
}

// GeneInteraction is a STRING functional partner.
type GeneInteraction struct {
	Partner string   `json:"partner"`
	Score   *float64 `json:"score,omitempty"`
}

// CivicAssertion is a CIViC molecular-profile summary row.
type CivicAssertion struct {
	Name         string `json:"name"`
	Summary      string `json:"summary,omitempty"`
	EvidenceType string `json:"evidence_type,omitempty"`
	Significance string `json:"significance,omitempty"`
	Disease      string `json:"disease,omitempty"`
}

// GeneSearchResult is the lighter row returned by gene search.
type GeneSearchResult struct {
	Symbol     string   `json:"symbol"`
	Name       string   `json:"name,omitempty"`
	EntrezID   string   `json:"entrez_id,omitempty"`
	Type       string   `json:"type,omitempty"`
	Chromosome string   `json:"chromosome,omitempty"`
	Aliases    []string `json:"aliases,omitempty"`
	Score      *float64 `json:"score,omitempty"`
}

// GeneSearchFilters are the gene search flags after trimming.
type GeneSearchFilters struct {
	Query    string
	Type     string
	Chrom    string
	Pathway  string
	GO       string
	Region   string
	Species  string
	Summary  bool
	Ontology bool
}
