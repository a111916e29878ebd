package entity

import (
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biomcp/biomcp/internal/config"
	"github.com/biomcp/biomcp/internal/domain"
	"github.com/biomcp/biomcp/internal/httpx"
	"github.com/biomcp/biomcp/internal/sources"
)

// newTestService builds a Service whose named sources point at test servers.
// Keys are the logical source names from the BIOMCP_<SOURCE>_BASE scheme.
func newTestService(t *testing.T, bases map[string]string) *Service {
	t.Helper()
	for source, base := range bases {
		t.Setenv("BIOMCP_"+source+"_BASE", base)
	}
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	h, err := httpx.New(httpx.Config{
		CacheDir:     t.TempDir(),
		HostInterval: time.Millisecond,
		MaxRetries:   1,
	}, logger)
	require.NoError(t, err)
	return New(sources.New(h, &config.Config{}), t.TempDir(), logger)
}

func TestParseSections(t *testing.T) {
	names := []string{"label", "shortage"}
	aliases := map[string]string{"labels": "label"}

	include, err := parseSections("drug", []string{"Labels", "--json", "shortage", "label"}, names, aliases)
	require.NoError(t, err)
	assert.Equal(t, []string{"label", "shortage"}, include)

	include, err = parseSections("drug", []string{"all"}, names, aliases)
	require.NoError(t, err)
	assert.Equal(t, names, include)

	_, err = parseSections("drug", []string{"bogus"}, names, aliases)
	require.Error(t, err)
	assert.True(t, domain.IsInvalidArgument(err))
	assert.Contains(t, err.Error(), `Unknown section "bogus" for drug. Available: label, shortage, all`)
}

func TestSliceOffset(t *testing.T) {
	rows := []int{1, 2, 3, 4, 5}
	assert.Equal(t, []int{3, 4}, sliceOffset(rows, 2, 2))
	assert.Equal(t, []int{5}, sliceOffset(rows, 4, 10))
	assert.Nil(t, sliceOffset(rows, 5, 2))
}

func TestDedupeFold(t *testing.T) {
	assert.Equal(t, []string{"BRAF", "KRAS"}, dedupeFold([]string{"BRAF", "braf", "KRAS", " "}))
}

func TestValidateLimitBounds(t *testing.T) {
	assert.NoError(t, validateLimit(1))
	assert.NoError(t, validateLimit(50))
	err := validateLimit(51)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--limit must be between 1 and 50")
	assert.Error(t, validateLimit(0))

	err = validateOffset(-1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--offset must be zero or positive")
}
