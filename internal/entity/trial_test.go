package entity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biomcp/biomcp/internal/domain"
)

func ctgovStudy(nctID, title, status string) string {
	return `{"protocolSection": {
		"identificationModule": {"nctId": "` + nctID + `", "briefTitle": "` + title + `"},
		"statusModule": {"overallStatus": "` + status + `"}
	}}`
}

func TestGetTrialValidatesNCTID(t *testing.T) {
	s := newTestService(t, nil)

	_, err := s.GetTrial(context.Background(), "4280705", nil, domain.TrialSourceCTGov)
	require.Error(t, err)
	assert.True(t, domain.IsInvalidArgument(err))
	assert.Contains(t, err.Error(), "NCT followed by 8 digits")
}

func TestGetTrialRejectsUnknownSection(t *testing.T) {
	s := newTestService(t, nil)

	_, err := s.GetTrial(context.Background(), "NCT04280705", []string{"sites"}, domain.TrialSourceCTGov)
	require.Error(t, err)
	assert.True(t, domain.IsInvalidArgument(err))
	assert.Contains(t, err.Error(), "locations")
}

func TestSearchTrialsCtGovParams(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{}
		for key := range r.URL.Query() {
			gotQuery[key] = r.URL.Query().Get(key)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"totalCount": 1, "studies": [` +
			ctgovStudy("NCT00000001", "Melanoma Study", "RECRUITING") + `]}`))
	}))
	defer srv.Close()
	s := newTestService(t, map[string]string{"CTGOV": srv.URL})

	page, err := s.SearchTrials(context.Background(), &domain.TrialSearchFilters{
		Condition:   "melanoma",
		Status:      "active",
		Phase:       "2",
		SponsorType: "industry",
	}, 10, 0)
	require.NoError(t, err)
	require.Len(t, page.Results, 1)
	require.NotNil(t, page.Total)
	assert.Equal(t, 1, *page.Total)

	assert.Equal(t, "melanoma", gotQuery["query.cond"])
	assert.Equal(t, "ACTIVE_NOT_RECRUITING", gotQuery["filter.overallStatus"])
	assert.Contains(t, gotQuery["query.term"], "AREA[Phase]PHASE2")
	assert.Contains(t, gotQuery["aggFilters"], "funderType:industry")
}

func TestBuildCtGovParamsQueryTerm(t *testing.T) {
	age := 65
	params, explicitStatus, err := buildCtGovParams(&domain.TrialSearchFilters{
		Phase:            "2",
		Sponsor:          "Merck",
		Mutation:         "BRAF (V600E)",
		StudyType:        "interventional",
		ResultsAvailable: true,
		Age:              &age,
		DateFrom:         "2024-01-01",
	})
	require.NoError(t, err)
	assert.False(t, explicitStatus)

	terms := strings.Split(params.QueryTerm, " AND ")
	assert.Contains(t, terms, "AREA[Phase]PHASE2")
	assert.Contains(t, terms, `AREA[LeadSponsorName]"Merck"`)
	// Escaped values are quoted verbatim: no doubled backslashes.
	assert.Contains(t, terms, `AREA[EligibilityCriteria]"BRAF \(V600E\)"`)
	assert.Contains(t, terms, `AREA[StudyType]"interventional"`)
	assert.Contains(t, terms, "AREA[ResultsFirstPostDate]RANGE[MIN,MAX]")
	assert.Contains(t, terms, "AREA[MinimumAge]RANGE[MIN,65 years]")
	assert.Contains(t, terms, "AREA[MaximumAge]RANGE[65 years,MAX]")
	assert.Contains(t, terms, "AREA[LastUpdatePostDate]RANGE[2024-01-01,MAX]")
	assert.Empty(t, params.AggFilters)
}

func TestSearchTrialsNCIParams(t *testing.T) {
	var gotQuery url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"total": 1, "data": [{"nct_id": "NCT00000001", "brief_title": "Melanoma Study"}]}`))
	}))
	defer srv.Close()
	s := newTestService(t, map[string]string{"NCI_CTS": srv.URL})

	page, err := s.SearchTrials(context.Background(), &domain.TrialSearchFilters{
		Source:    domain.TrialSourceNCI,
		Condition: "melanoma",
		Biomarker: "PD-L1",
		Mutation:  "BRAF V600E",
	}, 10, 0)
	require.NoError(t, err)
	require.Len(t, page.Results, 1)

	assert.Equal(t, []string{"melanoma"}, gotQuery["diseases.name._fulltext"])
	// Biomarker and mutation filters accumulate as separate values.
	assert.Equal(t, []string{"PD-L1", "BRAF V600E"}, gotQuery["biomarkers.name._fulltext"])
}

func TestSearchTrialsRejectsUnknownStatus(t *testing.T) {
	s := newTestService(t, nil)

	_, err := s.SearchTrials(context.Background(), &domain.TrialSearchFilters{Status: "paused"}, 10, 0)
	require.Error(t, err)
	assert.True(t, domain.IsInvalidArgument(err))
	assert.Contains(t, err.Error(), "RECRUITING")
}

func TestSearchTrialsStatusPrioritySort(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"totalCount": 3, "studies": [` +
			ctgovStudy("NCT00000001", "Completed Study", "COMPLETED") + `,` +
			ctgovStudy("NCT00000002", "Recruiting Study", "RECRUITING") + `,` +
			ctgovStudy("NCT00000003", "Terminated Study", "TERMINATED") + `]}`))
	}))
	defer srv.Close()
	s := newTestService(t, map[string]string{"CTGOV": srv.URL})

	page, err := s.SearchTrials(context.Background(), &domain.TrialSearchFilters{Condition: "melanoma"}, 10, 0)
	require.NoError(t, err)
	require.Len(t, page.Results, 3)
	assert.Equal(t, "NCT00000002", page.Results[0].NCTID)
	assert.Equal(t, "NCT00000001", page.Results[1].NCTID)
	assert.Equal(t, "NCT00000003", page.Results[2].NCTID)
}

func TestSearchTrialsMutationVerifier(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/studies/NCT00000001"):
			// Keyword in the inclusion half.
			_, _ = w.Write([]byte(`{"protocolSection": {
				"identificationModule": {"nctId": "NCT00000001"},
				"eligibilityModule": {"eligibilityCriteria": "Inclusion Criteria:\n- BRAF V600E mutation\nExclusion Criteria:\n- Pregnancy"}
			}}`))
		case strings.HasSuffix(r.URL.Path, "/studies/NCT00000002"):
			// Keyword only in the exclusion half.
			_, _ = w.Write([]byte(`{"protocolSection": {
				"identificationModule": {"nctId": "NCT00000002"},
				"eligibilityModule": {"eligibilityCriteria": "Inclusion Criteria:\n- Measurable disease\nExclusion Criteria:\n- BRAF V600E mutation"}
			}}`))
		default:
			_, _ = w.Write([]byte(`{"totalCount": 2, "studies": [` +
				ctgovStudy("NCT00000001", "Matching Study", "RECRUITING") + `,` +
				ctgovStudy("NCT00000002", "Excluded Study", "RECRUITING") + `]}`))
		}
	}))
	defer srv.Close()
	s := newTestService(t, map[string]string{"CTGOV": srv.URL})

	page, err := s.SearchTrials(context.Background(), &domain.TrialSearchFilters{Mutation: "BRAF V600E"}, 10, 0)
	require.NoError(t, err)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "NCT00000001", page.Results[0].NCTID)
	// Verified pages cannot trust the server's count.
	assert.Nil(t, page.Total)
}

func TestSearchTrialsNCIRestrictions(t *testing.T) {
	s := newTestService(t, nil)

	cases := []struct {
		name    string
		filters domain.TrialSearchFilters
		wantMsg string
	}{
		{"next page", domain.TrialSearchFilters{Source: domain.TrialSourceNCI, NextPage: "tok"},
			"--next-page is not supported"},
		{"dates", domain.TrialSearchFilters{Source: domain.TrialSourceNCI, DateFrom: "2024-01-01"},
			"--date-from/--date-to are not supported"},
		{"prior therapy", domain.TrialSearchFilters{Source: domain.TrialSourceNCI, PriorTherapies: "imatinib"},
			"--prior-therapy and --progression-on are not supported"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.SearchTrials(context.Background(), &tc.filters, 10, 0)
			require.Error(t, err)
			assert.True(t, domain.IsInvalidArgument(err))
			assert.Contains(t, err.Error(), tc.wantMsg)
		})
	}
}

func TestSearchTrialsRejectsOffsetWithToken(t *testing.T) {
	s := newTestService(t, nil)

	_, err := s.SearchTrials(context.Background(), &domain.TrialSearchFilters{NextPage: "tok"}, 10, 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "either --offset or --next-page")
}
