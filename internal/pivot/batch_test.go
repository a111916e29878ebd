package pivot

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biomcp/biomcp/internal/domain"
)

func newBatchGeneServer(t *testing.T, missing string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path != "/query" {
			// OpenTargets GraphQL lands here too; an empty document keeps the
			// optional clinical-context merge quiet.
			_, _ = w.Write([]byte(`{"data": {}}`))
			return
		}
		symbol := strings.TrimPrefix(r.URL.Query().Get("q"), "symbol:")
		if symbol == missing {
			_, _ = w.Write([]byte(`{"hits": []}`))
			return
		}
		_, _ = w.Write([]byte(`{"hits": [{"symbol": "` + symbol + `", "name": "test gene"}]}`))
	}))
}

func TestBatchGenesPreservesOrder(t *testing.T) {
	srv := newBatchGeneServer(t, "")
	defer srv.Close()
	p := newTestPivot(t, map[string]string{"MYGENE": srv.URL, "OPENTARGETS": srv.URL})

	results, err := p.Batch(context.Background(), "gene", []string{"BRAF", "TP53", "EGFR"}, nil)
	require.NoError(t, err)
	require.Len(t, results, 3)
	for i, want := range []string{"BRAF", "TP53", "EGFR"} {
		gene, ok := results[i].(*domain.Gene)
		require.True(t, ok)
		assert.Equal(t, want, gene.Symbol)
	}
}

func TestBatchFailsOnFirstError(t *testing.T) {
	srv := newBatchGeneServer(t, "TP53")
	defer srv.Close()
	p := newTestPivot(t, map[string]string{"MYGENE": srv.URL, "OPENTARGETS": srv.URL})

	results, err := p.Batch(context.Background(), "gene", []string{"BRAF", "TP53"}, nil)
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
	assert.Nil(t, results)
}

func TestBatchValidation(t *testing.T) {
	p := newTestPivot(t, nil)

	_, err := p.Batch(context.Background(), "gene", nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Batch IDs are required")

	eleven := make([]string, 11)
	for i := range eleven {
		eleven[i] = "BRAF"
	}
	_, err = p.Batch(context.Background(), "gene", eleven, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Batch is limited to 10 IDs")

	_, err = p.Batch(context.Background(), "chromosome", []string{"1"}, nil)
	require.Error(t, err)
	assert.True(t, domain.IsInvalidArgument(err))
	assert.Contains(t, err.Error(), `Unknown batch entity "chromosome"`)

	_, err = p.Batch(context.Background(), "adverse-event", []string{"vemurafenib"}, []string{"reactions"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Sections do not apply to adverse-event batches")
}
