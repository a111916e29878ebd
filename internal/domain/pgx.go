package domain

// PGx is the rich record returned by pgx get. The query resolves to gene mode,
// drug mode, or both, by probing CPIC pair endpoints.
type PGx struct {
	Query           string              `json:"query"`
	Gene            string              `json:"gene,omitempty"`
	Drug            string              `json:"drug,omitempty"`
	Interactions    []PGxInteraction    `json:"interactions,omitempty"`
	Recommendations []PGxRecommendation `json:"recommendations,omitempty"`
	Frequencies     []PGxFrequency      `json:"frequencies,omitempty"`
	Guidelines      []PGxGuideline      `json:"guidelines,omitempty"`
	Annotations     []PGxAnnotation     `json:"annotations,omitempty"`
	AnnotationsNote string              `json:"annotations_note,omitempty"`
}

// PGxInteraction is one CPIC gene-drug pair.
type PGxInteraction struct {
	GeneSymbol    string `json:"genesymbol"`
	DrugName      string `json:"drugname"`
	CPICLevel     string `json:"cpiclevel,omitempty"`
	PGxTesting    string `json:"pgxtesting,omitempty"`
	GuidelineName string `json:"guidelinename,omitempty"`
	GuidelineURL  string `json:"guidelineurl,omitempty"`
}

// PGxRecommendation is one CPIC dosing recommendation row.
type PGxRecommendation struct {
	DrugName       string `json:"drugname"`
	Phenotype      string `json:"phenotype,omitempty"`
	ActivityScore  string `json:"activity_score,omitempty"`
	Implication    string `json:"implication,omitempty"`
	Recommendation string `json:"recommendation,omitempty"`
	Classification string `json:"classification,omitempty"`
	Population     string `json:"population,omitempty"`
	GuidelineName  string `json:"guidelinename,omitempty"`
	GuidelineURL   string `json:"guidelineurl,omitempty"`
}

// PGxFrequency is one CPIC allele frequency row.
type PGxFrequency struct {
	GeneSymbol      string   `json:"genesymbol"`
	Allele          string   `json:"allele"`
	PopulationGroup string   `json:"population_group,omitempty"`
	SubjectCount    *int64   `json:"subject_count,omitempty"`
	Frequency       *float64 `json:"frequency,omitempty"`
	MinFrequency    *float64 `json:"min_frequency,omitempty"`
	MaxFrequency    *float64 `json:"max_frequency,omitempty"`
}

// PGxGuideline is one CPIC guideline summary.
type PGxGuideline struct {
	Name  string   `json:"name"`
	URL   string   `json:"url,omitempty"`
	Genes []string `json:"genes,omitempty"`
	Drugs []string `json:"drugs,omitempty"`
}

// PGxAnnotation is one PharmGKB label annotation.
type PGxAnnotation struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name"`
	Source   string `json:"source,omitempty"`
	Evidence string `json:"evidence,omitempty"`
	URL      string `json:"url,omitempty"`
}

// PGxSearchResult is the lighter row returned by pgx search.
type PGxSearchResult struct {
	GeneSymbol    string `json:"genesymbol"`
	DrugName      string `json:"drugname"`
	CPICLevel     string `json:"cpiclevel,omitempty"`
	PGxTesting    string `json:"pgxtesting,omitempty"`
	GuidelineName string `json:"guidelinename,omitempty"`
}

// PGxSearchFilters are the pgx search flags after trimming.
type PGxSearchFilters struct {
	Gene       string
	Drug       string
	CPICLevel  string
	PGxTesting string
}
