package domain

// Variant is the rich record returned by variant get. Section fields stay nil
// unless their section was requested; a failed optional enrichment leaves the
// field empty and logs a warning.
type Variant struct {
	ID           string   `json:"id"`
	RSID         string   `json:"rsid,omitempty"`
	Gene         string   `json:"gene,omitempty"`
	HGVSGenomic  string   `json:"hgvs_genomic,omitempty"`
	HGVSProtein  string   `json:"hgvs_protein,omitempty"`
	ProteinShort string   `json:"protein_short,omitempty"`
	Chromosome   string   `json:"chromosome,omitempty"`
	Position     *int64   `json:"position,omitempty"`
	Ref          string   `json:"ref,omitempty"`
	Alt          string   `json:"alt,omitempty"`
	Consequence  string   `json:"consequence,omitempty"`
	Impact       string   `json:"impact,omitempty"`
	CADDPhred    *float64 `json:"cadd_phred,omitempty"`
	REVEL        *float64 `json:"revel,omitempty"`
	GERP         *float64 `json:"gerp,omitempty"`

	ClinVar      *ClinVarSummary   `json:"clinvar,omitempty"`
	Population   []PopulationFreq  `json:"population,omitempty"`
	Predictions  []PredictionScore `json:"predictions,omitempty"`
	Conservation []PredictionScore `json:"conservation,omitempty"`
	COSMIC       *CosmicSummary    `json:"cosmic,omitempty"`
	CGI          *CgiSummary       `json:"cgi,omitempty"`
	CIViC        []CivicAssertion  `json:"civic,omitempty"`
	CBioPortal   *CBioPortalCounts `json:"cbioportal,omitempty"`
	GWAS         []GwasAssociation `json:"gwas,omitempty"`
	PredictNote  string            `json:"predict_note,omitempty"`
}

// ClinVarSummary is the ClinVar slice of a MyVariant document.
type ClinVarSummary struct {
	Significance string   `json:"significance,omitempty"`
	ReviewStatus string   `json:"review_status,omitempty"`
	Conditions   []string `json:"conditions,omitempty"`
	VariationID  string   `json:"variation_id,omitempty"`
}

// PopulationFreq is one population allele frequency row (gnomAD et al.).
type PopulationFreq struct {
	Source     string   `json:"source"`
	Population string   `json:"population"`
	Frequency  *float64 `json:"frequency,omitempty"`
	Count      *int64   `json:"count,omitempty"`
}

// PredictionScore is one in-silico predictor score (dbNSFP, AlphaGenome).
type PredictionScore struct {
	Tool       string   `json:"tool"`
	Score      *float64 `json:"score,omitempty"`
	Prediction string   `json:"prediction,omitempty"`
}

// CosmicSummary is the COSMIC slice of a variant record.
type CosmicSummary struct {
	ID           string `json:"id,omitempty"`
	TumorSite    string `json:"tumor_site,omitempty"`
	Histology    string `json:"histology,omitempty"`
	MutationFreq string `json:"mutation_freq,omitempty"`
}

// CgiSummary is the Cancer Genome Interpreter slice of a variant record.
type CgiSummary struct {
	Association string `json:"association,omitempty"`
	Drug        string `json:"drug,omitempty"`
	EvidenceLvl string `json:"evidence_level,omitempty"`
}

// CBioPortalCounts summarizes mutation counts across cBioPortal studies.
type CBioPortalCounts struct {
	StudyCount   int      `json:"study_count"`
	SampleCount  int      `json:"sample_count"`
	TopStudy     string   `json:"top_study,omitempty"`
	TopStudyFreq *float64 `json:"top_study_freq,omitempty"`
}

// GwasAssociation is one GWAS Catalog association row.
type GwasAssociation struct {
	RSID        string   `json:"rsid"`
	Trait       string   `json:"trait,omitempty"`
	PValue      *float64 `json:"p_value,omitempty"`
	OddsRatio   *float64 `json:"odds_ratio,omitempty"`
	StudyID     string   `json:"study_id,omitempty"`
	PubmedID    string   `json:"pubmed_id,omitempty"`
	MappedGenes []string `json:"mapped_genes,omitempty"`
}

// OncoKBAnnotation is the therapeutic annotation OncoKB returns for one
// gene/alteration pair.
type OncoKBAnnotation struct {
	Gene                   string            `json:"gene"`
	Alteration             string            `json:"alteration"`
	Oncogenic              string            `json:"oncogenic,omitempty"`
	MutationEffect         string            `json:"mutation_effect,omitempty"`
	HighestSensitiveLevel  string            `json:"highest_sensitive_level,omitempty"`
	HighestResistanceLevel string            `json:"highest_resistance_level,omitempty"`
	VariantSummary         string            `json:"variant_summary,omitempty"`
	TumorTypeSummary       string            `json:"tumor_type_summary,omitempty"`
	Treatments             []OncoKBTreatment `json:"treatments,omitempty"`
}

// OncoKBTreatment is one level-associated treatment row.
type OncoKBTreatment struct {
	Drugs      []string `json:"drugs"`
	Level      string   `json:"level,omitempty"`
	CancerType string   `json:"cancer_type,omitempty"`
}

// VariantSearchResult is the lighter row returned by variant search.
type VariantSearchResult struct {
	ID           string   `json:"id"`
	RSID         string   `json:"rsid,omitempty"`
	Gene         string   `json:"gene,omitempty"`
	ProteinShort string   `json:"protein_short,omitempty"`
	Consequence  string   `json:"consequence,omitempty"`
	Impact       string   `json:"impact,omitempty"`
	Significance string   `json:"significance,omitempty"`
	CADDPhred    *float64 `json:"cadd_phred,omitempty"`
	REVEL        *float64 `json:"revel,omitempty"`
}

// VariantSearchFilters are the variant search flags after trimming.
type VariantSearchFilters struct {
	Gene         string
	Significance string
	Consequence  string
	Impact       string
	MinCADD      *float64
	MinREVEL     *float64
	MinGERP      *float64
	MaxFreq      *float64
	Region       string
}
