package domain

// Disease is the rich record returned by disease get, built from Monarch with
// optional gene/phenotype/model association sections.
type Disease struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	MondoID     string   `json:"mondo_id,omitempty"`
	Synonyms    []string `json:"synonyms,omitempty"`

	Genes      []DiseaseAssociation `json:"genes,omitempty"`
	Phenotypes []DiseaseAssociation `json:"phenotypes,omitempty"`
	Variants   []DiseaseAssociation `json:"variants,omitempty"`
	Models     []DiseaseAssociation `json:"models,omitempty"`
}

// DiseaseAssociation is one Monarch association row.
type DiseaseAssociation struct {
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	Category string `json:"category,omitempty"`
	Taxon    string `json:"taxon,omitempty"`
}

// DiseaseSearchResult is the lighter row returned by disease search.
type DiseaseSearchResult struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// DiseaseSearchFilters are the disease search flags after trimming.
type DiseaseSearchFilters struct {
	Query    string
	Category string
}

// Phenotype mirrors the Monarch phenotype surface used by phenotype search.
type PhenotypeSearchResult struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
