package query

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitEligibilitySections(t *testing.T) {
	text := "Inclusion Criteria:\nMust have MSI-H disease\n\nExclusion Criteria:\nNo active CNS mets"
	inclusion, exclusion := SplitEligibilitySections(text)
	assert.Contains(t, inclusion, "must have msi-h disease")
	assert.Contains(t, exclusion, "no active cns mets")

	inclusion, exclusion = SplitEligibilitySections(
		"Inclusion:\nBRAF V600E mutation\n\nKey Exclusion Criteria:\nPrior anti-braf therapy")
	assert.Contains(t, inclusion, "braf v600e mutation")
	assert.Contains(t, exclusion, "prior anti-braf therapy")

	inclusion, exclusion = SplitEligibilitySections("Inclusion Criteria:\nPathogenic EGFR mutation")
	assert.Contains(t, inclusion, "pathogenic egfr mutation")
	assert.Empty(t, exclusion)
}

func TestEligibilityKeywordInInclusion(t *testing.T) {
	tests := []struct {
		name      string
		inclusion string
		exclusion string
		keyword   string
		want      bool
	}{
		{
			name:      "inclusion match keeps",
			inclusion: "must have msi-h disease",
			exclusion: "no untreated brain metastases",
			keyword:   "MSI-H",
			want:      true,
		},
		{
			name:      "exclusion-only match discards",
			inclusion: "must have metastatic colorectal cancer",
			exclusion: "exclusion includes msi-h tumors",
			keyword:   "MSI-H",
			want:      false,
		},
		{
			name:      "no exclusion section keeps",
			inclusion: "anything at all",
			exclusion: "",
			keyword:   "MSI-H",
			want:      true,
		},
		{
			name:      "unmentioned keyword keeps",
			inclusion: "metastatic solid tumor",
			exclusion: "pregnancy",
			keyword:   "BRAF",
			want:      true,
		},
		{
			name:      "negated inclusion-only mention discards",
			inclusion: "patients with msi-h tumors are not eligible",
			exclusion: "pregnancy",
			keyword:   "MSI-H",
			want:      false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EligibilityKeywordInInclusion(tt.inclusion, tt.exclusion, tt.keyword)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTruncateInlineText(t *testing.T) {
	short := "short criteria"
	assert.Equal(t, short, TruncateInlineText(short, 100))

	long := strings.Repeat("x", 120)
	got := TruncateInlineText(long, 100)
	assert.True(t, strings.HasPrefix(got, strings.Repeat("x", 100)))
	assert.Contains(t, got, "(truncated, 120 chars total)")
}

func TestHaversineMiles(t *testing.T) {
	// Boston to New York is roughly 190 miles.
	d := HaversineMiles(42.3601, -71.0589, 40.7128, -74.0060)
	assert.InDelta(t, 190, d, 5)

	assert.InDelta(t, 0, HaversineMiles(42.36, -71.06, 42.36, -71.06), 0.001)
}

func TestValidateGeo(t *testing.T) {
	f := func(v float64) *float64 { return &v }

	assert.NoError(t, ValidateGeo(nil, nil, nil))
	assert.NoError(t, ValidateGeo(f(42.36), f(-71.06), f(50)))

	err := ValidateGeo(nil, nil, f(50))
	assert.ErrorContains(t, err, "--distance requires both --lat and --lon")

	err = ValidateGeo(f(42.36), f(-71.06), nil)
	assert.ErrorContains(t, err, "--lat/--lon requires --distance")

	err = ValidateGeo(f(42.36), nil, f(50))
	assert.Error(t, err)
}

func TestNormalizeProteinChange(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"p.Val600Glu", "V600E"},
		{"V600E", "V600E"},
		{"p.V600E", "V600E"},
		{"Thr790Met", "T790M"},
		{"p.Ter123Arg", "*123R"},
		{"not a change", "not a change"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeProteinChange(tt.input), tt.input)
	}
}
