package entity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biomcp/biomcp/internal/domain"
)

func newFAERSServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/drug/event.json", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("count") {
		case "":
			_, _ = w.Write([]byte(`{
				"meta": {"results": {"total": 4021}},
				"results": [{
					"serious": "1",
					"receivedate": "20230115",
					"occurcountry": "US",
					"patient": {"reaction": [
						{"reactionmeddrapt": "Pyrexia"},
						{"reactionmeddrapt": "Rash"}
					]}
				}]
			}`))
		case "patient.reaction.reactionmeddrapt.exact":
			_, _ = w.Write([]byte(`{"results": [
				{"term": "PYREXIA", "count": 120},
				{"term": "RASH", "count": 95}
			]}`))
		case "patient.reaction.reactionoutcome":
			_, _ = w.Write([]byte(`{"results": [
				{"term": "1", "count": 60},
				{"term": "5", "count": 4}
			]}`))
		case "serious":
			_, _ = w.Write([]byte(`{"results": [
				{"term": "1", "count": 30},
				{"term": "2", "count": 70}
			]}`))
		case "patient.drug.medicinalproduct.exact":
			_, _ = w.Write([]byte(`{"results": [
				{"term": "VEMURAFENIB", "count": 4021},
				{"term": "COBIMETINIB", "count": 812}
			]}`))
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestGetAdverseEvent(t *testing.T) {
	srv := newFAERSServer(t)
	defer srv.Close()
	svc := newTestService(t, map[string]string{"OPENFDA": srv.URL})

	record, err := svc.GetAdverseEvent(context.Background(), "vemurafenib",
		[]string{"reactions", "outcomes", "concomitant", "serious"})
	require.NoError(t, err)
	require.NotNil(t, record.ReportCount)
	assert.Equal(t, int64(4021), *record.ReportCount)
	assert.Equal(t, faersGuidance, record.Guidance)

	require.Len(t, record.Reactions, 2)
	assert.Equal(t, "PYREXIA", record.Reactions[0].Term)
	assert.Equal(t, int64(120), record.Reactions[0].Count)

	require.Len(t, record.Outcomes, 2)
	assert.Equal(t, "Recovered/resolved", record.Outcomes[0].Term)
	assert.Equal(t, "Fatal", record.Outcomes[1].Term)

	// The queried drug drops out of the concomitant list.
	require.Len(t, record.Concomitant, 1)
	assert.Equal(t, "COBIMETINIB", record.Concomitant[0].Term)

	require.NotNil(t, record.SeriousRatio)
	assert.InDelta(t, 0.3, *record.SeriousRatio, 1e-9)
}

func TestGetAdverseEventNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error": {"code": "NOT_FOUND"}}`, http.StatusNotFound)
	}))
	defer srv.Close()
	svc := newTestService(t, map[string]string{"OPENFDA": srv.URL})

	_, err := svc.GetAdverseEvent(context.Background(), "nosuchdrug", nil)
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
}

func TestSearchAdverseEvents(t *testing.T) {
	var gotSearch string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSearch = r.URL.Query().Get("search")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"meta": {"results": {"total": 2}},
			"results": [{
				"serious": "1",
				"receivedate": "20230115",
				"occurcountry": "US",
				"patient": {"reaction": [{"reactionmeddrapt": "Pyrexia"}]}
			}]
		}`))
	}))
	defer srv.Close()
	svc := newTestService(t, map[string]string{"OPENFDA": srv.URL})

	page, err := svc.SearchAdverseEvents(context.Background(), &domain.AdverseEventSearchFilters{
		Drug:     "vemurafenib",
		Serious:  true,
		Country:  "us",
		DateFrom: "2023",
	}, 10, 0)
	require.NoError(t, err)
	assert.Contains(t, gotSearch, `patient.drug.medicinalproduct:"vemurafenib"`)
	assert.Contains(t, gotSearch, "serious:1")
	assert.Contains(t, gotSearch, `occurcountry:"US"`)
	assert.Contains(t, gotSearch, "receivedate:[20230101 TO 30001231]")
	require.Len(t, page.Results, 1)
	assert.Equal(t, "Pyrexia", page.Results[0].Reaction)
	require.NotNil(t, page.Results[0].Serious)
	assert.True(t, *page.Results[0].Serious)
}

func TestSearchAdverseEventsRequiresDrug(t *testing.T) {
	svc := newTestService(t, nil)
	_, err := svc.SearchAdverseEvents(context.Background(), &domain.AdverseEventSearchFilters{}, 10, 0)
	require.Error(t, err)
	assert.True(t, domain.IsInvalidArgument(err))
	assert.Contains(t, err.Error(), "--drug is required")
}

func TestFAERSDateClause(t *testing.T) {
	clause, err := faersDateClause("2020-03", "2021")
	require.NoError(t, err)
	assert.Equal(t, "receivedate:[20200301 TO 20211231]", clause)

	clause, err = faersDateClause("", "")
	require.NoError(t, err)
	assert.Empty(t, clause)

	_, err = faersDateClause("2022", "2021")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--date-from must be on or before --date-to")

	_, err = faersDateClause("03/2020", "")
	require.Error(t, err)
	assert.True(t, domain.IsInvalidArgument(err))
}

func TestExpandDate(t *testing.T) {
	assert.Equal(t, "2020-01-01", expandDate("2020", false))
	assert.Equal(t, "2020-12-31", expandDate("2020", true))
	assert.Equal(t, "2020-02-01", expandDate("2020-02", false))
	assert.Equal(t, "2020-02-29", expandDate("2020-02", true))
	assert.Equal(t, "2020-02-14", expandDate("2020-02-14", true))
}
