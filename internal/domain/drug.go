package domain

// Drug is the rich record returned by drug get, built from MyChem with
// optional OpenFDA label/shortage and OpenTargets target sections.
type Drug struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	TradeNames        []string `json:"trade_names,omitempty"`
	DrugBankID        string   `json:"drugbank_id,omitempty"`
	ChemblID          string   `json:"chembl_id,omitempty"`
	Formula           string   `json:"formula,omitempty"`
	Description       string   `json:"description,omitempty"`
	MechanismOfAction string   `json:"mechanism_of_action,omitempty"`
	ApprovalStatus    string   `json:"approval_status,omitempty"`

	Label        *DrugLabel        `json:"label,omitempty"`
	Shortage     *DrugShortage     `json:"shortage,omitempty"`
	Approvals    []DrugApproval    `json:"approvals,omitempty"`
	Targets      []DrugTarget      `json:"targets,omitempty"`
	Indications  []string          `json:"indications,omitempty"`
	Interactions []DrugInteraction `json:"interactions,omitempty"`
}

// DrugApproval is one Drugs@FDA application row.
type DrugApproval struct {
	ApplicationNumber string `json:"application_number"`
	SponsorName       string `json:"sponsor_name,omitempty"`
	BrandName         string `json:"brand_name,omitempty"`
	MarketingStatus   string `json:"marketing_status,omitempty"`
}

// DrugLabel is the OpenFDA structured product label slice.
type DrugLabel struct {
	BoxedWarning     string   `json:"boxed_warning,omitempty"`
	IndicationsUsage string   `json:"indications_usage,omitempty"`
	Warnings         string   `json:"warnings,omitempty"`
	AdverseReactions string   `json:"adverse_reactions,omitempty"`
	Manufacturer     string   `json:"manufacturer,omitempty"`
	Route            []string `json:"route,omitempty"`
}

// DrugShortage is the OpenFDA drug-shortage slice.
type DrugShortage struct {
	Status      string `json:"status"`
	Reason      string `json:"reason,omitempty"`
	UpdatedDate string `json:"updated_date,omitempty"`
}

// DrugTarget is one OpenTargets mechanism row.
type DrugTarget struct {
	Gene       string `json:"gene"`
	Mechanism  string `json:"mechanism,omitempty"`
	ActionType string `json:"action_type,omitempty"`
}

// DrugInteraction is one drug-drug interaction row.
type DrugInteraction struct {
	Drug        string `json:"drug"`
	Description string `json:"description,omitempty"`
}

// DrugSearchResult is the lighter row returned by drug search.
type DrugSearchResult struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	TradeNames     []string `json:"trade_names,omitempty"`
	ApprovalStatus string   `json:"approval_status,omitempty"`
	DrugBankID     string   `json:"drugbank_id,omitempty"`
}

// DrugSearchFilters are the drug search flags after trimming.
type DrugSearchFilters struct {
	Query      string
	Target     string
	Indication string
	Approved   bool
}
