package transform

import (
	"strings"

	"github.com/tidwall/gjson"

	"github.com/biomcp/biomcp/internal/domain"
)

// VariantFromMyVariant builds the core variant record from a MyVariant.info
// document. Section extractors below attach the optional slices.
func VariantFromMyVariant(doc gjson.Result) *domain.Variant {
	out := &domain.Variant{
		ID:   doc.Get("_id").String(),
		RSID: doc.Get("dbsnp.rsid").String(),
	}
	out.Gene = firstString(doc, "dbnsfp.genename", "snpeff.ann.0.genename", "snpeff.ann.genename", "clinvar.gene.symbol")
	out.Chromosome = firstString(doc, "chrom", "vcf.chrom", "hg19.chr")
	if pos := doc.Get("vcf.position"); pos.Exists() {
		p := pos.Int()
		out.Position = &p
	} else if pos := doc.Get("hg19.start"); pos.Exists() {
		p := pos.Int()
		out.Position = &p
	}
	out.Ref = doc.Get("vcf.ref").String()
	out.Alt = doc.Get("vcf.alt").String()
	out.HGVSGenomic = doc.Get("_id").String()
	out.HGVSProtein = firstString(doc, "snpeff.ann.0.hgvs_p", "snpeff.ann.hgvs_p", "dbnsfp.hgvsp")
	if out.HGVSProtein != "" {
		out.ProteinShort = strings.TrimPrefix(out.HGVSProtein, "p.")
	}
	out.Consequence = firstString(doc, "snpeff.ann.0.effect", "snpeff.ann.effect", "cadd.consequence")
	out.Impact = firstString(doc, "snpeff.ann.0.putative_impact", "snpeff.ann.putative_impact")
	out.CADDPhred = floatPtr(doc, "cadd.phred")
	out.REVEL = floatPtr(doc, "dbnsfp.revel.score", "dbnsfp.revel.rankscore")
	out.GERP = floatPtr(doc, "dbnsfp.gerp++.rs", "cadd.gerp.rs")
	return out
}

// VariantSearchRowFromMyVariant projects one query hit.
func VariantSearchRowFromMyVariant(hit gjson.Result) domain.VariantSearchResult {
	full := VariantFromMyVariant(hit)
	return domain.VariantSearchResult{
		ID:           full.ID,
		RSID:         full.RSID,
		Gene:         full.Gene,
		ProteinShort: full.ProteinShort,
		Consequence:  full.Consequence,
		Impact:       full.Impact,
		Significance: ClinVarFromMyVariantSignificance(hit),
		CADDPhred:    full.CADDPhred,
		REVEL:        full.REVEL,
	}
}

// ClinVarFromMyVariant extracts the ClinVar slice; nil when absent.
func ClinVarFromMyVariant(doc gjson.Result) *domain.ClinVarSummary {
	cv := doc.Get("clinvar")
	if !cv.Exists() {
		return nil
	}
	out := &domain.ClinVarSummary{
		Significance: ClinVarFromMyVariantSignificance(doc),
		ReviewStatus: cv.Get("rcv.0.review_status").String(),
		VariationID:  cv.Get("variant_id").String(),
	}
	if out.ReviewStatus == "" {
		out.ReviewStatus = cv.Get("rcv.review_status").String()
	}
	seen := map[string]bool{}
	for _, rcv := range normalizedArray(cv.Get("rcv")) {
		name := strings.TrimSpace(rcv.Get("conditions.name").String())
		if name == "" || seen[strings.ToLower(name)] {
			continue
		}
		seen[strings.ToLower(name)] = true
		out.Conditions = append(out.Conditions, name)
	}
	if out.Significance == "" && out.ReviewStatus == "" && len(out.Conditions) == 0 && out.VariationID == "" {
		return nil
	}
	return out
}

// ClinVarFromMyVariantSignificance pulls the aggregate clinical significance.
func ClinVarFromMyVariantSignificance(doc gjson.Result) string {
	if sig := doc.Get("clinvar.rcv.0.clinical_significance").String(); sig != "" {
		return sig
	}
	return doc.Get("clinvar.rcv.clinical_significance").String()
}

// PopulationFromMyVariant extracts gnomAD exome and genome frequency rows.
func PopulationFromMyVariant(doc gjson.Result) []domain.PopulationFreq {
	var out []domain.PopulationFreq
	add := func(source, prefix string) {
		node := doc.Get(prefix)
		if !node.Exists() {
			return
		}
		pops := []struct{ suffix, label string }{
			{"", "overall"},
			{"_afr", "African"},
			{"_amr", "Latino"},
			{"_asj", "Ashkenazi Jewish"},
			{"_eas", "East Asian"},
			{"_nfe", "European (non-Finnish)"},
			{"_fin", "European (Finnish)"},
			{"_sas", "South Asian"},
		}
		for _, p := range pops {
			v := node.Get("af.af" + p.suffix)
			if !v.Exists() {
				continue
			}
			f := v.Float()
			row := domain.PopulationFreq{Source: source, Population: p.label, Frequency: &f}
			if ac := node.Get("ac.ac" + p.suffix); ac.Exists() {
				n := ac.Int()
				row.Count = &n
			}
			out = append(out, row)
		}
	}
	add("gnomAD exomes", "gnomad_exome")
	add("gnomAD genomes", "gnomad_genome")
	return out
}

// dbNSFP predictor score paths, in display order.
var dbnsfpPredictors = []struct {
	tool       string
	score      string
	prediction string
}{
	{"SIFT", "dbnsfp.sift.score", "dbnsfp.sift.pred"},
	{"PolyPhen-2 HDIV", "dbnsfp.polyphen2.hdiv.score", "dbnsfp.polyphen2.hdiv.pred"},
	{"PolyPhen-2 HVAR", "dbnsfp.polyphen2.hvar.score", "dbnsfp.polyphen2.hvar.pred"},
	{"REVEL", "dbnsfp.revel.score", ""},
	{"MutationTaster", "dbnsfp.mutationtaster.score", "dbnsfp.mutationtaster.pred"},
	{"FATHMM", "dbnsfp.fathmm.score", "dbnsfp.fathmm.pred"},
	{"PROVEAN", "dbnsfp.provean.score", "dbnsfp.provean.pred"},
	{"MetaSVM", "dbnsfp.metasvm.score", "dbnsfp.metasvm.pred"},
	{"CADD phred", "cadd.phred", ""},
}

var dbnsfpConservation = []struct {
	tool  string
	score string
}{
	{"GERP++", "dbnsfp.gerp++.rs"},
	{"phyloP 100way vertebrate", "dbnsfp.phylop.100way_vertebrate.score"},
	{"phastCons 100way vertebrate", "dbnsfp.phastcons.100way_vertebrate.score"},
	{"SiPhy 29way", "dbnsfp.siphy_29way.logodds_score"},
}

// PredictionsFromMyVariant extracts dbNSFP predictor rows.
func PredictionsFromMyVariant(doc gjson.Result) []domain.PredictionScore {
	var out []domain.PredictionScore
	for _, p := range dbnsfpPredictors {
		row := domain.PredictionScore{Tool: p.tool}
		row.Score = firstFloat(doc, p.score)
		if p.prediction != "" {
			row.Prediction = firstScalarString(doc, p.prediction)
		}
		if row.Score != nil || row.Prediction != "" {
			out = append(out, row)
		}
	}
	return out
}

// ConservationFromMyVariant extracts conservation scores.
func ConservationFromMyVariant(doc gjson.Result) []domain.PredictionScore {
	var out []domain.PredictionScore
	for _, p := range dbnsfpConservation {
		if score := firstFloat(doc, p.score); score != nil {
			out = append(out, domain.PredictionScore{Tool: p.tool, Score: score})
		}
	}
	return out
}

// CosmicFromMyVariant extracts the COSMIC slice; nil when absent.
func CosmicFromMyVariant(doc gjson.Result) *domain.CosmicSummary {
	node := doc.Get("cosmic")
	if !node.Exists() {
		return nil
	}
	first := node
	if node.IsArray() {
		arr := node.Array()
		if len(arr) == 0 {
			return nil
		}
		first = arr[0]
	}
	out := &domain.CosmicSummary{
		ID:           first.Get("cosmic_id").String(),
		TumorSite:    first.Get("tumor_site").String(),
		Histology:    first.Get("histology").String(),
		MutationFreq: first.Get("mut_freq").String(),
	}
	if out.ID == "" && out.TumorSite == "" && out.Histology == "" && out.MutationFreq == "" {
		return nil
	}
	return out
}

// CgiFromMyVariant extracts the Cancer Genome Interpreter slice; nil when
// absent.
func CgiFromMyVariant(doc gjson.Result) *domain.CgiSummary {
	node := doc.Get("cgi")
	if !node.Exists() {
		return nil
	}
	first := node
	if node.IsArray() {
		arr := node.Array()
		if len(arr) == 0 {
			return nil
		}
		first = arr[0]
	}
	out := &domain.CgiSummary{
		Association: first.Get("association").String(),
		Drug:        first.Get("drug").String(),
		EvidenceLvl: first.Get("evidence_level").String(),
	}
	if out.Association == "" && out.Drug == "" && out.EvidenceLvl == "" {
		return nil
	}
	return out
}

// OncoKBFromAnnotation maps the byProteinChange annotation response.
func OncoKBFromAnnotation(doc gjson.Result, gene, alteration string) *domain.OncoKBAnnotation {
	out := &domain.OncoKBAnnotation{
		Gene:                   gene,
		Alteration:             alteration,
		Oncogenic:              doc.Get("oncogenic").String(),
		MutationEffect:         doc.Get("mutationEffect.knownEffect").String(),
		HighestSensitiveLevel:  doc.Get("highestSensitiveLevel").String(),
		HighestResistanceLevel: doc.Get("highestResistanceLevel").String(),
		VariantSummary:         doc.Get("variantSummary").String(),
		TumorTypeSummary:       doc.Get("tumorTypeSummary").String(),
	}
	for _, t := range doc.Get("treatments").Array() {
		row := domain.OncoKBTreatment{
			Level:      strings.TrimPrefix(t.Get("level").String(), "LEVEL_"),
			CancerType: t.Get("levelAssociatedCancerType.name").String(),
		}
		for _, d := range t.Get("drugs").Array() {
			if name := d.Get("drugName").String(); name != "" {
				row.Drugs = append(row.Drugs, name)
			}
		}
		if len(row.Drugs) > 0 {
			out.Treatments = append(out.Treatments, row)
		}
	}
	return out
}

// firstString returns the first non-empty string at the given paths. Array
// values collapse to their first element (MyVariant fields flip between
// scalar and array by record).
func firstString(doc gjson.Result, paths ...string) string {
	for _, path := range paths {
		if s := firstScalarString(doc, path); s != "" {
			return s
		}
	}
	return ""
}

func firstScalarString(doc gjson.Result, path string) string {
	v := doc.Get(path)
	if !v.Exists() {
		return ""
	}
	if v.IsArray() {
		arr := v.Array()
		if len(arr) == 0 {
			return ""
		}
		v = arr[0]
	}
	return strings.TrimSpace(v.String())
}

func firstFloat(doc gjson.Result, path string) *float64 {
	v := doc.Get(path)
	if !v.Exists() {
		return nil
	}
	if v.IsArray() {
		arr := v.Array()
		if len(arr) == 0 {
			return nil
		}
		v = arr[0]
	}
	if v.Type != gjson.Number {
		return nil
	}
	f := v.Float()
	return &f
}

func floatPtr(doc gjson.Result, paths ...string) *float64 {
	for _, path := range paths {
		if f := firstFloat(doc, path); f != nil {
			return f
		}
	}
	return nil
}

// normalizedArray returns node's elements, treating a lone object as a
// one-element array.
func normalizedArray(node gjson.Result) []gjson.Result {
	if !node.Exists() {
		return nil
	}
	if node.IsArray() {
		return node.Array()
	}
	return []gjson.Result{node}
}
