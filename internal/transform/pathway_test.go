package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractGeneSymbols(t *testing.T) {
	lines := []string{
		"Phospho-BRAF [cytosol]",
		"RAS:GTP complex",
		"ATP",
		"MEK1 S218 phosphorylation",
		"p-T599,S602-BRAF V600E",
		"BRAF",
	}
	got := ExtractGeneSymbols(lines, 20)
	assert.Contains(t, got, "BRAF")
	assert.Contains(t, got, "HRAS")
	assert.Contains(t, got, "KRAS")
	assert.Contains(t, got, "NRAS")
	assert.Contains(t, got, "MEK1")
	assert.NotContains(t, got, "ATP", "small molecules are filtered")
	assert.NotContains(t, got, "V600E", "mutation notation is filtered")
	assert.NotContains(t, got, "S218", "phospho-site notation is filtered")
	assert.NotContains(t, got, "RAS", "family tokens expand instead of passing through")
	// First-seen order with no duplicates.
	assert.Equal(t, "BRAF", got[0])
	count := 0
	for _, g := range got {
		if g == "BRAF" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestExtractGeneSymbolsHonorsLimit(t *testing.T) {
	got := ExtractGeneSymbols([]string{"MAPK activation"}, 3)
	assert.Equal(t, []string{"MAPK1", "MAPK3", "MAPK8"}, got)
}

func TestLooksLikeGeneSymbol(t *testing.T) {
	tests := []struct {
		token string
		want  bool
	}{
		{"BRAF", true},
		{"TP53", true},
		{"MAP2K1", true},
		{"V600E", false},
		{"S218", false},
		{"T599", false},
		{"A", false},
		{"9P21", false},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			assert.Equal(t, tt.want, looksLikeGeneSymbol(tt.token))
		})
	}
}
