package domain

// Trial is the rich record returned by trial get.
type Trial struct {
	NCTID          string          `json:"nct_id"`
	Title          string          `json:"title,omitempty"`
	Status         string          `json:"status,omitempty"`
	Phases         []string        `json:"phases,omitempty"`
	StudyType      string          `json:"study_type,omitempty"`
	Conditions     []string        `json:"conditions,omitempty"`
	Interventions  []string        `json:"interventions,omitempty"`
	Sponsor        string          `json:"sponsor,omitempty"`
	Enrollment     *int            `json:"enrollment,omitempty"`
	BriefSummary   string          `json:"brief_summary,omitempty"`
	StartDate      string          `json:"start_date,omitempty"`
	CompletionDate string          `json:"completion_date,omitempty"`
	MinimumAge     string          `json:"minimum_age,omitempty"`
	MaximumAge     string          `json:"maximum_age,omitempty"`
	Eligibility    string          `json:"eligibility,omitempty"`
	Locations      []TrialLocation `json:"locations,omitempty"`
	Outcomes       []TrialOutcome  `json:"outcomes,omitempty"`
	Arms           []TrialArm      `json:"arms,omitempty"`
	References     []TrialRef      `json:"references,omitempty"`
}

// TrialLocation is one study site with its optional geo point.
type TrialLocation struct {
	Facility string   `json:"facility,omitempty"`
	Status   string   `json:"status,omitempty"`
	City     string   `json:"city,omitempty"`
	State    string   `json:"state,omitempty"`
	Zip      string   `json:"zip,omitempty"`
	Country  string   `json:"country,omitempty"`
	Lat      *float64 `json:"lat,omitempty"`
	Lon      *float64 `json:"lon,omitempty"`
}

// TrialOutcome is a primary or secondary outcome measure.
type TrialOutcome struct {
	Kind        string `json:"kind"`
	Measure     string `json:"measure"`
	Description string `json:"description,omitempty"`
	TimeFrame   string `json:"time_frame,omitempty"`
}

// TrialArm is one arm group.
type TrialArm struct {
	Label       string `json:"label"`
	Type        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
}

// TrialRef is one linked publication.
type TrialRef struct {
	PMID     string `json:"pmid,omitempty"`
	Type     string `json:"type,omitempty"`
	Citation string `json:"citation,omitempty"`
}

// TrialSearchResult is the lighter row returned by trial search.
type TrialSearchResult struct {
	NCTID         string   `json:"nct_id"`
	Title         string   `json:"title,omitempty"`
	Status        string   `json:"status,omitempty"`
	Phases        []string `json:"phases,omitempty"`
	StudyType     string   `json:"study_type,omitempty"`
	Conditions    []string `json:"conditions,omitempty"`
	Interventions []string `json:"interventions,omitempty"`
	Sponsor       string   `json:"sponsor,omitempty"`
	Enrollment    *int     `json:"enrollment,omitempty"`
	StartDate     string   `json:"start_date,omitempty"`
}

// TrialSource selects the upstream registry for trial operations.
type TrialSource string

const (
	TrialSourceCTGov TrialSource = "ctgov"
	TrialSourceNCI   TrialSource = "nci"
)

// TrialSearchFilters are the trial search flags after trimming. Geo filters
// must be fully specified (lat, lon, distance) or fully absent.
type TrialSearchFilters struct {
	Condition        string
	Intervention     string
	Term             string
	Status           string
	Phase            string
	StudyType        string
	Sex              string
	Sponsor          string
	SponsorType      string
	Age              *int
	ResultsAvailable bool
	Mutation         string
	Biomarker        string
	PriorTherapies   string
	ProgressionOn    string
	LineOfTherapy    string
	Facility         string
	Lat              *float64
	Lon              *float64
	Distance         *float64
	DateFrom         string
	DateTo           string
	NextPage         string
	Source           TrialSource
}

// HasEligibilityVerifiers reports whether any filter requires client-side
// eligibility verification against each candidate's criteria text.
func (f *TrialSearchFilters) HasEligibilityVerifiers() bool {
	return f.Mutation != "" || f.Biomarker != "" ||
		f.PriorTherapies != "" || f.ProgressionOn != ""
}

// HasGeoVerifier reports whether facility+geo post-verification is required.
func (f *TrialSearchFilters) HasGeoVerifier() bool {
	return f.Facility != "" && f.Lat != nil && f.Lon != nil && f.Distance != nil
}
