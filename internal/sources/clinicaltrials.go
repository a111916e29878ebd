package sources

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/biomcp/biomcp/internal/domain"
	"github.com/biomcp/biomcp/internal/httpx"
)

const ctgovAPI = "clinicaltrials.gov"

const ctgovSearchFields = "NCTId,BriefTitle,OverallStatus,Phase,StudyType,Condition,InterventionName,InterventionType,LeadSponsorName,EnrollmentCount,BriefSummary,StartDate,CompletionDate,MinimumAge,MaximumAge"

var ctgovGetFieldsBase = []string{
	"NCTId", "BriefTitle", "OverallStatus", "Phase", "StudyType",
	"Condition", "InterventionName", "LeadSponsorName", "EnrollmentCount",
	"BriefSummary", "StartDate", "CompletionDate", "MinimumAge", "MaximumAge",
}

var ctgovGetFieldsBySection = map[string][]string{
	"eligibility": {"EligibilityCriteria"},
	"locations": {
		"LocationFacility", "LocationCity", "LocationState", "LocationZip",
		"LocationCountry", "LocationStatus", "LocationContactName",
		"LocationContactPhone", "LocationContactEMail", "CentralContactName",
		"CentralContactPhone", "CentralContactEMail", "LocationGeoPoint",
	},
	"outcomes": {
		"PrimaryOutcomeMeasure", "PrimaryOutcomeDescription", "PrimaryOutcomeTimeFrame",
		"SecondaryOutcomeMeasure", "SecondaryOutcomeDescription", "SecondaryOutcomeTimeFrame",
	},
	"arms": {
		"ArmGroupLabel", "ArmGroupType", "ArmGroupDescription", "ArmGroupInterventionName",
		"InterventionType", "InterventionName", "InterventionDescription", "InterventionArmGroupLabel",
	},
	"references": {"ReferencePMID", "ReferenceType", "ReferenceCitation"},
}

// ClinicalTrialsClient queries the ClinicalTrials.gov v2 API.
type ClinicalTrialsClient struct {
	h    *httpx.Client
	base string
	ttl  TTLs
}

// CtGovSearchParams mirrors the /studies query surface the trial orchestrator
// uses. QueryTerm carries advanced ESSIE syntax joined by " AND ".
type CtGovSearchParams struct {
	Condition     string
	Intervention  string
	Facility      string
	Status        string
	AggFilters    string
	QueryTerm     string
	CountTotal    bool
	PageToken     string
	PageSize      int
	Lat, Lon      *float64
	DistanceMiles *float64
}

func buildGetFields(sections []string) string {
	fields := append([]string(nil), ctgovGetFieldsBase...)
	addAll := false
	for _, section := range sections {
		key := strings.ToLower(strings.TrimSpace(section))
		if key == "all" {
			addAll = true
			continue
		}
		fields = append(fields, ctgovGetFieldsBySection[key]...)
	}
	if addAll {
		for _, extra := range ctgovGetFieldsBySection {
			fields = append(fields, extra...)
		}
	}
	sort.Strings(fields)
	out := fields[:0]
	prev := ""
	for _, f := range fields {
		if f != prev {
			out = append(out, f)
		}
		prev = f
	}
	return strings.Join(out, ",")
}

// Search runs a /studies page query.
func (c *ClinicalTrialsClient) Search(ctx context.Context, params *CtGovSearchParams) (*CtGovSearchResponse, error) {
	q := url.Values{}
	set := func(key, value string) {
		if v := strings.TrimSpace(value); v != "" {
			q.Set(key, v)
		}
	}
	set("query.cond", params.Condition)
	set("query.intr", params.Intervention)
	set("query.locn", params.Facility)
	set("filter.overallStatus", params.Status)
	set("aggFilters", params.AggFilters)
	set("query.term", params.QueryTerm)
	if params.CountTotal {
		q.Set("countTotal", "true")
	}
	set("pageToken", params.PageToken)
	if params.Lat != nil && params.Lon != nil && params.DistanceMiles != nil {
		q.Set("filter.geo", fmt.Sprintf("distance(%v,%v,%vmi)", *params.Lat, *params.Lon, *params.DistanceMiles))
	}
	q.Set("pageSize", itoa(params.PageSize))
	q.Set("fields", ctgovSearchFields)

	var resp CtGovSearchResponse
	if err := c.h.GetJSON(ctx, ctgovAPI, c.base+"/studies", q, c.ttl.Search, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Get fetches one study with the field set implied by the requested sections.
func (c *ClinicalTrialsClient) Get(ctx context.Context, nctID string, sections []string) (*CtGovStudy, error) {
	q := url.Values{}
	q.Set("fields", buildGetFields(sections))

	var study CtGovStudy
	status, err := c.h.GetJSONStatus(ctx, ctgovAPI,
		c.base+"/studies/"+url.PathEscape(nctID), q, c.ttl.Annotation, &study)
	if status == 404 {
		return nil, domain.NewNotFound("trial", nctID,
			fmt.Sprintf("Try searching: biomcp search trial -c %q", nctID))
	}
	if err != nil {
		return nil, err
	}
	return &study, nil
}

// CtGovSearchResponse is the /studies envelope.
type CtGovSearchResponse struct {
	Studies       []CtGovStudy `json:"studies"`
	NextPageToken string       `json:"nextPageToken"`
	TotalCount    *int         `json:"totalCount"`
}

// CtGovStudy is the study record; every module is optional because the field
// projection controls what the API returns.
type CtGovStudy struct {
	ProtocolSection *CtGovProtocolSection `json:"protocolSection"`
}

type CtGovProtocolSection struct {
	IdentificationModule       *CtGovIdentificationModule       `json:"identificationModule"`
	StatusModule               *CtGovStatusModule               `json:"statusModule"`
	SponsorCollaboratorsModule *CtGovSponsorCollaboratorsModule `json:"sponsorCollaboratorsModule"`
	DescriptionModule          *CtGovDescriptionModule          `json:"descriptionModule"`
	ConditionsModule           *CtGovConditionsModule           `json:"conditionsModule"`
	DesignModule               *CtGovDesignModule               `json:"designModule"`
	ArmsInterventionsModule    *CtGovArmsInterventionsModule    `json:"armsInterventionsModule"`
	EligibilityModule          *CtGovEligibilityModule          `json:"eligibilityModule"`
	ContactsLocationsModule    *CtGovContactsLocationsModule    `json:"contactsLocationsModule"`
	OutcomesModule             *CtGovOutcomesModule             `json:"outcomesModule"`
	ReferencesModule           *CtGovReferencesModule           `json:"referencesModule"`
}

type CtGovIdentificationModule struct {
	NCTID      string `json:"nctId"`
	BriefTitle string `json:"briefTitle"`
}

type CtGovStatusModule struct {
	OverallStatus        string           `json:"overallStatus"`
	StartDateStruct      *CtGovDateStruct `json:"startDateStruct"`
	CompletionDateStruct *CtGovDateStruct `json:"completionDateStruct"`
}

type CtGovDateStruct struct {
	Date string `json:"date"`
}

type CtGovSponsorCollaboratorsModule struct {
	LeadSponsor *CtGovSponsor `json:"leadSponsor"`
}

type CtGovSponsor struct {
	Name string `json:"name"`
}

type CtGovDescriptionModule struct {
	BriefSummary string `json:"briefSummary"`
}

type CtGovConditionsModule struct {
	Conditions []string `json:"conditions"`
}

type CtGovDesignModule struct {
	Phases         []string             `json:"phases"`
	StudyType      string               `json:"studyType"`
	EnrollmentInfo *CtGovEnrollmentInfo `json:"enrollmentInfo"`
}

type CtGovEnrollmentInfo struct {
	Count *int `json:"count"`
}

type CtGovArmsInterventionsModule struct {
	Interventions []CtGovIntervention `json:"interventions"`
	ArmGroups     []CtGovArmGroup     `json:"armGroups"`
}

type CtGovIntervention struct {
	Name             string   `json:"name"`
	InterventionType string   `json:"type"`
	Description      string   `json:"description"`
	ArmGroupLabels   []string `json:"armGroupLabels"`
}

type CtGovArmGroup struct {
	Label             string   `json:"label"`
	ArmGroupType      string   `json:"type"`
	Description       string   `json:"description"`
	InterventionNames []string `json:"interventionNames"`
}

type CtGovEligibilityModule struct {
	EligibilityCriteria string `json:"eligibilityCriteria"`
	MinimumAge          string `json:"minimumAge"`
	MaximumAge          string `json:"maximumAge"`
}

type CtGovContactsLocationsModule struct {
	Locations []CtGovLocation `json:"locations"`
}

type CtGovLocation struct {
	Facility        string         `json:"facility"`
	Status          string         `json:"status"`
	City            string         `json:"city"`
	State           string         `json:"state"`
	Zip             string         `json:"zip"`
	Country         string         `json:"country"`
	Contacts        []CtGovContact `json:"contacts"`
	CentralContacts []CtGovContact `json:"centralContacts"`
	GeoPoint        *CtGovGeoPoint `json:"geoPoint"`
}

type CtGovContact struct {
	Name  string `json:"name"`
	Role  string `json:"role"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

type CtGovGeoPoint struct {
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
}

type CtGovOutcome struct {
	Measure     string `json:"measure"`
	Description string `json:"description"`
	TimeFrame   string `json:"timeFrame"`
}

type CtGovOutcomesModule struct {
	PrimaryOutcomes   []CtGovOutcome `json:"primaryOutcomes"`
	SecondaryOutcomes []CtGovOutcome `json:"secondaryOutcomes"`
}

type CtGovReference struct {
	PMID          string `json:"pmid"`
	ReferenceType string `json:"type"`
	Citation      string `json:"citation"`
}

type CtGovReferencesModule struct {
	References []CtGovReference `json:"references"`
}

// NCTID returns the study's identifier, empty when the projection omitted it.
func (s *CtGovStudy) NCTID() string {
	if s.ProtocolSection == nil || s.ProtocolSection.IdentificationModule == nil {
		return ""
	}
	return strings.TrimSpace(s.ProtocolSection.IdentificationModule.NCTID)
}

// EligibilityCriteria returns the trimmed criteria text, empty when absent.
func (s *CtGovStudy) EligibilityCriteria() string {
	if s.ProtocolSection == nil || s.ProtocolSection.EligibilityModule == nil {
		return ""
	}
	return strings.TrimSpace(s.ProtocolSection.EligibilityModule.EligibilityCriteria)
}

// Locations returns the study's location rows, nil when the projection
// omitted them.
func (s *CtGovStudy) Locations() []CtGovLocation {
	if s.ProtocolSection == nil || s.ProtocolSection.ContactsLocationsModule == nil {
		return nil
	}
	return s.ProtocolSection.ContactsLocationsModule.Locations
}
