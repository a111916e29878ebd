package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

const sampleVariantDoc = `{
	"_id": "chr7:g.140753336A>T",
	"dbsnp": {"rsid": "rs113488022"},
	"chrom": "7",
	"vcf": {"position": 140753336, "ref": "A", "alt": "T"},
	"dbnsfp": {
		"genename": ["BRAF", "BRAF"],
		"revel": {"score": 0.931},
		"gerp++": {"rs": 5.65},
		"sift": {"score": 0.0, "pred": "D"},
		"polyphen2": {"hdiv": {"score": 0.971, "pred": "D"}}
	},
	"cadd": {"phred": 32},
	"snpeff": {"ann": [{"genename": "BRAF", "effect": "missense_variant", "putative_impact": "MODERATE", "hgvs_p": "p.Val600Glu"}]},
	"clinvar": {
		"variant_id": "13961",
		"rcv": [
			{"clinical_significance": "Pathogenic", "review_status": "reviewed by expert panel", "conditions": {"name": "Melanoma"}},
			{"clinical_significance": "Pathogenic", "conditions": {"name": "melanoma"}}
		]
	},
	"gnomad_exome": {"af": {"af": 0.0000041, "af_eas": 0}, "ac": {"ac": 1}},
	"cosmic": {"cosmic_id": "COSM476", "tumor_site": "skin"},
	"cgi": [{"association": "Responsive", "drug": "Vemurafenib", "evidence_level": "FDA guidelines"}]
}`

func TestVariantFromMyVariant(t *testing.T) {
	doc := gjson.Parse(sampleVariantDoc)
	got := VariantFromMyVariant(doc)
	assert.Equal(t, "chr7:g.140753336A>T", got.ID)
	assert.Equal(t, "rs113488022", got.RSID)
	assert.Equal(t, "BRAF", got.Gene, "array-valued genename collapses to its first element")
	assert.Equal(t, "7", got.Chromosome)
	require.NotNil(t, got.Position)
	assert.EqualValues(t, 140753336, *got.Position)
	assert.Equal(t, "A", got.Ref)
	assert.Equal(t, "missense_variant", got.Consequence)
	assert.Equal(t, "MODERATE", got.Impact)
	assert.Equal(t, "Val600Glu", got.ProteinShort)
	require.NotNil(t, got.CADDPhred)
	assert.Equal(t, 32.0, *got.CADDPhred)
	require.NotNil(t, got.REVEL)
	assert.Equal(t, 0.931, *got.REVEL)
	require.NotNil(t, got.GERP)
	assert.Equal(t, 5.65, *got.GERP)
}

func TestClinVarFromMyVariant(t *testing.T) {
	got := ClinVarFromMyVariant(gjson.Parse(sampleVariantDoc))
	require.NotNil(t, got)
	assert.Equal(t, "Pathogenic", got.Significance)
	assert.Equal(t, "reviewed by expert panel", got.ReviewStatus)
	assert.Equal(t, "13961", got.VariationID)
	assert.Equal(t, []string{"Melanoma"}, got.Conditions, "condition names dedupe case-insensitively")

	assert.Nil(t, ClinVarFromMyVariant(gjson.Parse(`{"_id": "x"}`)))
}

func TestPopulationFromMyVariant(t *testing.T) {
	got := PopulationFromMyVariant(gjson.Parse(sampleVariantDoc))
	require.NotEmpty(t, got)
	assert.Equal(t, "gnomAD exomes", got[0].Source)
	assert.Equal(t, "overall", got[0].Population)
	require.NotNil(t, got[0].Frequency)
	assert.InDelta(t, 0.0000041, *got[0].Frequency, 1e-9)
	require.NotNil(t, got[0].Count)
	assert.EqualValues(t, 1, *got[0].Count)
	// A zero frequency is still a row; absence is not.
	found := false
	for _, row := range got {
		if row.Population == "East Asian" {
			found = true
			assert.Equal(t, 0.0, *row.Frequency)
		}
	}
	assert.True(t, found)
}

func TestPredictionsAndConservation(t *testing.T) {
	doc := gjson.Parse(sampleVariantDoc)
	preds := PredictionsFromMyVariant(doc)
	byTool := map[string]string{}
	for _, p := range preds {
		byTool[p.Tool] = p.Prediction
	}
	assert.Equal(t, "D", byTool["SIFT"])
	assert.Equal(t, "D", byTool["PolyPhen-2 HDIV"])
	assert.Contains(t, byTool, "REVEL")
	assert.Contains(t, byTool, "CADD phred")
	assert.NotContains(t, byTool, "FATHMM", "absent predictors are omitted")

	cons := ConservationFromMyVariant(doc)
	require.Len(t, cons, 1)
	assert.Equal(t, "GERP++", cons[0].Tool)
}

func TestCosmicAndCgiFromMyVariant(t *testing.T) {
	doc := gjson.Parse(sampleVariantDoc)
	cosmic := CosmicFromMyVariant(doc)
	require.NotNil(t, cosmic)
	assert.Equal(t, "COSM476", cosmic.ID)

	cgi := CgiFromMyVariant(doc)
	require.NotNil(t, cgi, "array-valued cgi block collapses to its first element")
	assert.Equal(t, "Vemurafenib", cgi.Drug)

	assert.Nil(t, CosmicFromMyVariant(gjson.Parse(`{}`)))
	assert.Nil(t, CgiFromMyVariant(gjson.Parse(`{"cgi": []}`)))
}
