package domain

// Protein is the rich record returned by protein get.
type Protein struct {
	Accession      string               `json:"accession"`
	EntryID        string               `json:"entry_id,omitempty"`
	Name           string               `json:"name"`
	GeneSymbol     string               `json:"gene_symbol,omitempty"`
	Organism       string               `json:"organism,omitempty"`
	Length         *int                 `json:"length,omitempty"`
	Function       string               `json:"function,omitempty"`
	Structures     []string             `json:"structures,omitempty"`
	StructureCount *int                 `json:"structure_count,omitempty"`
	Domains        []ProteinDomain      `json:"domains,omitempty"`
	Interactions   []ProteinInteraction `json:"interactions,omitempty"`
}

// ProteinDomain is one InterPro entry.
type ProteinDomain struct {
	Accession  string `json:"accession"`
	Name       string `json:"name,omitempty"`
	DomainType string `json:"domain_type,omitempty"`
}

// ProteinInteraction is a STRING functional partner.
type ProteinInteraction struct {
	Partner string   `json:"partner"`
	Score   *float64 `json:"score,omitempty"`
}

// ProteinSearchResult is the lighter row returned by protein search.
type ProteinSearchResult struct {
	Accession  string `json:"accession"`
	UniProtID  string `json:"uniprot_id"`
	Name       string `json:"name"`
	GeneSymbol string `json:"gene_symbol,omitempty"`
	Species    string `json:"species,omitempty"`
}

// ProteinSearchFilters are the protein search flags after trimming.
type ProteinSearchFilters struct {
	Query      string
	Reviewed   bool
	Disease    string
	Existence  *int
	AllSpecies bool
	NextPage   string
}
