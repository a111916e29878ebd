package transform

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/biomcp/biomcp/internal/sources"
)

func sampleStudy() *sources.CtGovStudy {
	enrollment := 120
	lat, lon := 42.36, -71.06
	return &sources.CtGovStudy{
		ProtocolSection: &sources.CtGovProtocolSection{
			IdentificationModule: &sources.CtGovIdentificationModule{
				NCTID: "NCT02576665", BriefTitle: "Dabrafenib in BRAF V600E melanoma",
			},
			StatusModule: &sources.CtGovStatusModule{
				OverallStatus:        "RECRUITING",
				StartDateStruct:      &sources.CtGovDateStruct{Date: "2016-01"},
				CompletionDateStruct: &sources.CtGovDateStruct{Date: "2026-06"},
			},
			SponsorCollaboratorsModule: &sources.CtGovSponsorCollaboratorsModule{
				LeadSponsor: &sources.CtGovSponsor{Name: "Novartis"},
			},
			ConditionsModule: &sources.CtGovConditionsModule{Conditions: []string{"Melanoma"}},
			DesignModule: &sources.CtGovDesignModule{
				Phases:         []string{"PHASE3"},
				StudyType:      "INTERVENTIONAL",
				EnrollmentInfo: &sources.CtGovEnrollmentInfo{Count: &enrollment},
			},
			ArmsInterventionsModule: &sources.CtGovArmsInterventionsModule{
				Interventions: []sources.CtGovIntervention{{Name: "Dabrafenib"}, {Name: "Trametinib"}},
				ArmGroups:     []sources.CtGovArmGroup{{Label: "Arm A", ArmGroupType: "EXPERIMENTAL"}},
			},
			EligibilityModule: &sources.CtGovEligibilityModule{
				EligibilityCriteria: "Inclusion Criteria:\n- BRAF V600E mutation\n\nExclusion Criteria:\n- Prior MEK inhibitor",
				MinimumAge:          "18 Years",
			},
			ContactsLocationsModule: &sources.CtGovContactsLocationsModule{
				Locations: []sources.CtGovLocation{{
					Facility: "Mass General", City: "Boston", Country: "United States",
					GeoPoint: &sources.CtGovGeoPoint{Lat: &lat, Lon: &lon},
				}},
			},
			OutcomesModule: &sources.CtGovOutcomesModule{
				PrimaryOutcomes:   []sources.CtGovOutcome{{Measure: "PFS", TimeFrame: "24 months"}},
				SecondaryOutcomes: []sources.CtGovOutcome{{Measure: "OS"}},
			},
			ReferencesModule: &sources.CtGovReferencesModule{},
		},
	}
}

func TestTrialFromCtGov(t *testing.T) {
	got := TrialFromCtGov(sampleStudy(), 0)
	assert.Equal(t, "NCT02576665", got.NCTID)
	assert.Equal(t, "RECRUITING", got.Status)
	assert.Equal(t, []string{"PHASE3"}, got.Phases)
	assert.Equal(t, "Novartis", got.Sponsor)
	assert.Equal(t, []string{"Dabrafenib", "Trametinib"}, got.Interventions)
	assert.Equal(t, "2026-06", got.CompletionDate)
	assert.Equal(t, "18 Years", got.MinimumAge)
	require.Len(t, got.Locations, 1)
	require.NotNil(t, got.Locations[0].Lat)
	assert.InDelta(t, 42.36, *got.Locations[0].Lat, 0.001)
	require.Len(t, got.Outcomes, 2)
	assert.Equal(t, "primary", got.Outcomes[0].Kind)
	assert.Equal(t, "secondary", got.Outcomes[1].Kind)
	require.Len(t, got.Arms, 1)
	assert.NotNil(t, got.References, "a projected references module yields a list even when empty")
	assert.Empty(t, got.References)
}

func TestTrialFromCtGovTruncatesEligibility(t *testing.T) {
	study := sampleStudy()
	long := strings.Repeat("criteria text ", 1000)
	study.ProtocolSection.EligibilityModule.EligibilityCriteria = long
	got := TrialFromCtGov(study, 100)
	assert.Contains(t, got.Eligibility, "(truncated,")
	assert.Less(t, len(got.Eligibility), len(long))
}

func TestTrialSearchRowFromNCI(t *testing.T) {
	hit := gjson.Parse(`{
		"nct_id": "NCT03155620",
		"brief_title": "Targeted therapy by biomarker",
		"current_trial_status": "Active",
		"phase": "II",
		"lead_org": "NCI",
		"diseases": [{"name": "Melanoma"}, {"name": ""}],
		"arms": [{"interventions": [{"name": "Vemurafenib"}]}]
	}`)
	got := TrialSearchRowFromNCI(hit)
	assert.Equal(t, "NCT03155620", got.NCTID)
	assert.Equal(t, "Active", got.Status)
	assert.Equal(t, []string{"II"}, got.Phases)
	assert.Equal(t, []string{"Melanoma"}, got.Conditions)
	assert.Equal(t, []string{"Vemurafenib"}, got.Interventions)
	assert.Equal(t, "NCI", got.Sponsor)
}

func TestTrialFromNCIEligibility(t *testing.T) {
	doc := gjson.Parse(`{
		"nct_id": "NCT03155620",
		"brief_title": "Trial",
		"eligibility": {"unstructured": [
			{"description": "Inclusion: measurable disease"},
			{"description": "Exclusion: prior therapy"}
		]},
		"sites": [{"org_name": "NIH Clinical Center", "org_coordinates": {"lat": 39.0, "lon": -77.1}}]
	}`)
	got := TrialFromNCI(doc, 0)
	assert.Equal(t, "Inclusion: measurable disease\nExclusion: prior therapy", got.Eligibility)
	require.Len(t, got.Locations, 1)
	assert.Equal(t, "NIH Clinical Center", got.Locations[0].Facility)
	require.NotNil(t, got.Locations[0].Lat)
}
