package domain

// Pathway is the rich record returned by pathway get.
type Pathway struct {
	ID         string              `json:"id"`
	Name       string              `json:"name"`
	Species    string              `json:"species,omitempty"`
	Summary    string              `json:"summary,omitempty"`
	Genes      []string            `json:"genes,omitempty"`
	Events     []string            `json:"events,omitempty"`
	Enrichment []PathwayEnrichment `json:"enrichment,omitempty"`
}

// PathwayEnrichment is one g:Profiler enrichment row (Reactome-sourced only).
type PathwayEnrichment struct {
	Source string   `json:"source"`
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	PValue *float64 `json:"p_value,omitempty"`
}

// PathwaySearchResult is the lighter row returned by pathway search.
type PathwaySearchResult struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PathwaySearchFilters are the pathway search flags after trimming.
type PathwaySearchFilters struct {
	Query       string
	PathwayType string
	TopLevel    bool
}
