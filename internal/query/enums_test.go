package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biomcp/biomcp/internal/domain"
)

func TestNormalizeEnumKey(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"recruiting", "RECRUITING"},
		{"active, not recruiting", "ACTIVE_NOT_RECRUITING"},
		{"Not-Yet Recruiting", "NOT_YET_RECRUITING"},
		{"  enrolling_by_invitation  ", "ENROLLING_BY_INVITATION"},
		{"phase 2", "PHASE_2"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeEnumKey(tt.input), tt.input)
	}
}

func TestNormalizeStatus(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"recruiting", "RECRUITING", false},
		{"active", "ACTIVE_NOT_RECRUITING", false},
		{"active, not recruiting", "ACTIVE_NOT_RECRUITING", false},
		{"enrolling", "ENROLLING_BY_INVITATION", false},
		{"complete", "COMPLETED", false},
		{"done", "", true},
	}
	for _, tt := range tests {
		got, err := NormalizeStatus(tt.input)
		if tt.wantErr {
			require.Error(t, err, tt.input)
			assert.True(t, domain.IsInvalidArgument(err))
			continue
		}
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got)
	}
}

func TestNormalizePhase(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"2", "PHASE2", false},
		{"phase3", "PHASE3", false},
		{"1/2", "EARLY_PHASE1", false},
		{"early1", "EARLY_PHASE1", false},
		{"early_phase1", "EARLY_PHASE1", false},
		{"n/a", "NA", false},
		{"NA", "NA", false},
		{"5", "", true},
		{"phase five", "", true},
	}
	for _, tt := range tests {
		got, err := NormalizePhase(tt.input)
		if tt.wantErr {
			require.Error(t, err, tt.input)
			continue
		}
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got, tt.input)
	}
}

func TestNormalizeSex(t *testing.T) {
	got, err := NormalizeSex("Female")
	require.NoError(t, err)
	assert.Equal(t, "f", got)

	got, err = NormalizeSex("M")
	require.NoError(t, err)
	assert.Equal(t, "m", got)

	got, err = NormalizeSex("all")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = NormalizeSex("unknown")
	require.Error(t, err)
}

func TestNormalizeSponsorType(t *testing.T) {
	got, err := NormalizeSponsorType("federal")
	require.NoError(t, err)
	assert.Equal(t, "fed", got)

	got, err = NormalizeSponsorType("INDUSTRY")
	require.NoError(t, err)
	assert.Equal(t, "industry", got)

	_, err = NormalizeSponsorType("academic")
	require.Error(t, err)
}

func TestSortTrialsByStatusPriority(t *testing.T) {
	rows := []domain.TrialSearchResult{
		{NCTID: "NCT00000003", Status: "COMPLETED"},
		{NCTID: "NCT00000002", Status: "RECRUITING"},
		{NCTID: "NCT00000001", Status: "RECRUITING"},
		{NCTID: "NCT00000004", Status: "SUSPENDED"},
		{NCTID: "NCT00000005", Status: "something odd"},
	}
	SortTrialsByStatusPriority(rows)

	assert.Equal(t, "NCT00000001", rows[0].NCTID)
	assert.Equal(t, "NCT00000002", rows[1].NCTID)
	assert.Equal(t, "NCT00000003", rows[2].NCTID)
	assert.Equal(t, "NCT00000004", rows[3].NCTID)
	assert.Equal(t, "NCT00000005", rows[4].NCTID)
}
