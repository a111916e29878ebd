package domain

// AdverseEvent is the rich record returned by adverse-event get: an OpenFDA
// FAERS profile for one drug.
type AdverseEvent struct {
	Drug         string          `json:"drug"`
	ReportCount  *int64          `json:"report_count,omitempty"`
	Reactions    []ReactionCount `json:"reactions,omitempty"`
	Outcomes     []ReactionCount `json:"outcomes,omitempty"`
	Concomitant  []ReactionCount `json:"concomitant,omitempty"`
	Guidance     string          `json:"guidance,omitempty"`
	SeriousRatio *float64        `json:"serious_ratio,omitempty"`
}

// ReactionCount is one aggregated FAERS term with its report count.
type ReactionCount struct {
	Term  string `json:"term"`
	Count int64  `json:"count"`
}

// AdverseEventSearchResult is the lighter row returned by adverse-event search.
type AdverseEventSearchResult struct {
	Drug        string `json:"drug"`
	Reaction    string `json:"reaction,omitempty"`
	Serious     *bool  `json:"serious,omitempty"`
	ReceiveDate string `json:"receive_date,omitempty"`
	Country     string `json:"country,omitempty"`
}

// AdverseEventSearchFilters are the adverse-event search flags after trimming.
type AdverseEventSearchFilters struct {
	Drug     string
	Reaction string
	Serious  bool
	Country  string
	DateFrom string
	DateTo   string
}
