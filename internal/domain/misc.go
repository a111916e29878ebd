package domain

// OrganizationSearchResult is one trial site organization aggregated from NCI
// CTS trial sites.
type OrganizationSearchResult struct {
	Name       string `json:"name"`
	City       string `json:"city,omitempty"`
	Country    string `json:"country,omitempty"`
	TrialCount int    `json:"trial_count,omitempty"`
}

// OrganizationSearchFilters filter organization search.
type OrganizationSearchFilters struct {
	Name string
	City string
}

// InterventionSearchResult is one distinct intervention name with context.
type InterventionSearchResult struct {
	Name      string `json:"name"`
	Type      string `json:"type,omitempty"`
	NCTID     string `json:"nct_id,omitempty"`
	Condition string `json:"condition,omitempty"`
}

// InterventionSearchFilters filter intervention search.
type InterventionSearchFilters struct {
	Name      string
	Type      string
	Condition string
}

// BiomarkerSearchResult is one eligibility-derived biomarker mention.
type BiomarkerSearchResult struct {
	Name   string `json:"name"`
	NCTID  string `json:"nct_id,omitempty"`
	Title  string `json:"title,omitempty"`
	Status string `json:"status,omitempty"`
}

// BiomarkerSearchFilters filter biomarker search.
type BiomarkerSearchFilters struct {
	Name      string
	Condition string
}

// GwasSearchFilters filter GWAS Catalog search.
type GwasSearchFilters struct {
	RSID      string
	Gene      string
	Trait     string
	MaxPValue *float64
}
