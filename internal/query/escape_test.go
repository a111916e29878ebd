package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscapeEuropePMC(t *testing.T) {
	assert.Equal(t, "BRAF", EscapeEuropePMC("BRAF"))
	assert.Equal(t, `non\-small cell`, EscapeEuropePMC("non-small cell"))
	assert.Equal(t, `query\:with\"quotes\"`, EscapeEuropePMC(`query:with"quotes"`))
	assert.Equal(t, `a\(b\)\[c\]\{d\}`, EscapeEuropePMC("a(b)[c]{d}"))
	assert.Equal(t, `her2\/neu`, EscapeEuropePMC("her2/neu"))
}

func TestPhrase(t *testing.T) {
	assert.Equal(t, "melanoma", Phrase("melanoma"))
	assert.Equal(t, `"non\-small cell lung cancer"`, Phrase("non-small cell lung cancer"))
	assert.Equal(t, `"her2\/neu"`, Phrase("her2/neu"))
}

func TestEscapeESSIE(t *testing.T) {
	assert.Equal(t, "osimertinib", EscapeESSIE("osimertinib"))
	assert.Equal(t, `anti\-PD\-1`, EscapeESSIE("anti-PD-1"))
	assert.Equal(t, `her2\/neu`, EscapeESSIE("her2/neu"))
}

func TestBuildESSIEFragments(t *testing.T) {
	fragments, err := BuildESSIEFragments("osimertinib", "", "")
	require.NoError(t, err)
	require.Len(t, fragments, 1)
	assert.Equal(t,
		`AREA[EligibilityCriteria]("osimertinib" AND (prior OR previous OR received))`,
		fragments[0])

	fragments, err = BuildESSIEFragments("", "imatinib", "2L")
	require.NoError(t, err)
	require.Len(t, fragments, 2)
	assert.Equal(t,
		`AREA[EligibilityCriteria]("imatinib" AND (progression OR resistant OR refractory))`,
		fragments[0])
	assert.Contains(t, fragments[1], `"second line" OR "second-line"`)

	_, err = BuildESSIEFragments("", "", "4L")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Expected one of: 1L, 2L, 3L+")
}

func TestValidateDate(t *testing.T) {
	for _, ok := range []string{"2024", "2024-06", "2024-06-15"} {
		got, err := ValidateDate("--date-from", ok)
		require.NoError(t, err, ok)
		assert.Equal(t, ok, got)
	}
	for _, bad := range []string{"24", "2024/06/15", "June 2024", "2024-13-40"} {
		_, err := ValidateDate("--date-from", bad)
		require.Error(t, err, bad)
	}
}

func TestValidateNextPageToken(t *testing.T) {
	got, err := ValidateNextPageToken("abcDEF123tokenvalue")
	require.NoError(t, err)
	assert.Equal(t, "abcDEF123tokenvalue", got)

	got, err = ValidateNextPageToken("https://rest.uniprot.org/uniprotkb/search?cursor=abc")
	require.NoError(t, err)
	assert.NotEmpty(t, got)

	for _, bad := range []string{"", "123456", "has space", "tab\there"} {
		_, err := ValidateNextPageToken(bad)
		require.Error(t, err, bad)
	}
}
