package main

import (
	"context"

	"github.com/biomcp/biomcp/internal/domain"
)

// limitFlags are shared by every search-shaped command.
type limitFlags struct {
	Limit  int `default:"10" help:"Maximum results to return."`
	Offset int `default:"0" help:"Results to skip."`
}

type searchCmd struct {
	Gene         searchGeneCmd         `cmd:"" help:"Search genes via MyGene.info."`
	Variant      searchVariantCmd      `cmd:"" help:"Search variants via MyVariant.info."`
	Article      searchArticleCmd      `cmd:"" help:"Search literature via PubTator3 and Europe PMC."`
	Trial        searchTrialCmd        `cmd:"" help:"Search clinical trials."`
	Drug         searchDrugCmd         `cmd:"" help:"Search drugs via MyChem.info."`
	Disease      searchDiseaseCmd      `cmd:"" help:"Search diseases via Monarch."`
	PGx          searchPGxCmd          `cmd:"" name:"pgx" help:"Search CPIC gene-drug pairs."`
	Gwas         searchGwasCmd         `cmd:"" help:"Search GWAS Catalog associations."`
	Phenotype    searchPhenotypeCmd    `cmd:"" help:"Search phenotypes via Monarch."`
	Pathway      searchPathwayCmd      `cmd:"" help:"Search Reactome pathways."`
	Protein      searchProteinCmd      `cmd:"" help:"Search proteins via UniProt."`
	Organization searchOrganizationCmd `cmd:"" help:"Search trial organizations via NCI CTS."`
	Intervention searchInterventionCmd `cmd:"" help:"Search trial interventions via NCI CTS."`
	Biomarker    searchBiomarkerCmd    `cmd:"" help:"Search eligibility biomarkers."`
	AdverseEvent searchAdverseEventCmd `cmd:"" name:"adverse-event" help:"Search FAERS adverse-event reports."`
}

type searchGeneCmd struct {
	Query      string `short:"q" help:"Symbol or free-text query."`
	Type       string `help:"Gene type filter, e.g. protein-coding, ncRNA."`
	Chromosome string `help:"Chromosome filter, e.g. 7."`
	Pathway    string `help:"Reactome pathway ID filter."`
	GO         string `name:"go" help:"GO term filter, e.g. GO:0006468."`
	Region     string `help:"Genomic region filter, e.g. chr7:140419127-140624564."`
	Species    string `help:"Species filter (default human)."`
	Summary    bool   `help:"Include gene summaries."`
	Ontology   bool   `help:"Include GO terms in results."`
	limitFlags
}

type searchVariantCmd struct {
	Gene         string   `short:"g" help:"Gene symbol."`
	Significance string   `help:"ClinVar significance filter, e.g. pathogenic."`
	Consequence  string   `help:"Molecular consequence filter."`
	Impact       string   `help:"Predicted impact filter."`
	MinCADD      *float64 `name:"min-cadd" help:"Minimum CADD phred score."`
	MinREVEL     *float64 `name:"min-revel" help:"Minimum REVEL score."`
	MinGERP      *float64 `name:"min-gerp" help:"Minimum GERP++ score."`
	MaxFreq      *float64 `name:"max-freq" help:"Maximum gnomAD allele frequency."`
	Region       string   `help:"Genomic region filter."`
	limitFlags
}

type searchArticleCmd struct {
	Gene             string `short:"g" help:"Gene annotation filter."`
	Disease          string `short:"d" help:"Disease annotation filter."`
	Drug             string `help:"Chemical annotation filter."`
	Author           string `help:"Author name filter."`
	Keyword          string `short:"k" help:"Free-text keyword."`
	DateFrom         string `name:"date-from" help:"Earliest publication date (YYYY-MM-DD)."`
	DateTo           string `name:"date-to" help:"Latest publication date (YYYY-MM-DD)."`
	Type             string `help:"Article type: review, research-article, case-reports, meta-analysis."`
	Journal          string `help:"Journal name filter."`
	OpenAccess       bool   `name:"open-access" help:"Only open-access articles."`
	NoPreprints      bool   `name:"no-preprints" help:"Exclude preprint servers."`
	ExcludeRetracted bool   `name:"exclude-retracted" help:"Exclude retracted publications."`
	Sort             string `enum:"relevance,date,citations" default:"relevance" help:"Result order."`
	limitFlags
}

type searchTrialCmd struct {
	Condition        string   `short:"c" help:"Condition or disease."`
	Intervention     string   `short:"i" help:"Intervention or drug."`
	Term             string   `help:"Free-text term."`
	Status           string   `help:"Recruiting status, e.g. recruiting, active, completed."`
	Phase            string   `help:"Trial phase, e.g. 1, 2, 3, 1/2."`
	StudyType        string   `name:"study-type" help:"Study type, e.g. interventional."`
	Sex              string   `help:"Eligible sex: f or m."`
	Sponsor          string   `help:"Lead sponsor name."`
	SponsorType      string   `name:"sponsor-type" help:"Sponsor class, e.g. industry, federal."`
	Age              *int     `help:"Participant age in years."`
	ResultsAvailable bool     `name:"results-available" help:"Only trials with posted results."`
	Mutation         string   `help:"Mutation eligibility filter, e.g. 'BRAF V600E'."`
	Biomarker        string   `help:"Biomarker eligibility filter."`
	PriorTherapies   string   `name:"prior-therapies" help:"Required prior therapies."`
	ProgressionOn    string   `name:"progression-on" help:"Progression on a prior therapy."`
	LineOfTherapy    string   `name:"line-of-therapy" help:"Line of therapy: 1L, 2L, or 3L+."`
	Facility         string   `help:"Facility name filter."`
	Lat              *float64 `help:"Facility latitude."`
	Lon              *float64 `help:"Facility longitude."`
	Distance         *float64 `help:"Facility distance in miles."`
	DateFrom         string   `name:"date-from" help:"Earliest start date."`
	DateTo           string   `name:"date-to" help:"Latest start date."`
	NextPage         string   `name:"next-page" help:"Opaque page token from a previous search."`
	Source           string   `enum:"ctgov,nci" default:"ctgov" help:"Trial registry."`
	limitFlags
}

type searchDrugCmd struct {
	Query      string `short:"q" help:"Drug name or free-text query."`
	Target     string `help:"Target gene symbol."`
	Indication string `help:"Indication filter."`
	Approved   bool   `help:"Only approved drugs."`
	limitFlags
}

type searchDiseaseCmd struct {
	Query    string `short:"q" help:"Disease name or free-text query."`
	Category string `help:"Monarch category filter."`
	limitFlags
}

type searchPGxCmd struct {
	Gene       string `short:"g" help:"Pharmacogene symbol, e.g. CYP2D6."`
	Drug       string `short:"d" help:"Drug name."`
	CPICLevel  string `name:"cpic-level" help:"CPIC level filter: A, B, C, or D."`
	PGxTesting string `name:"pgx-testing" help:"PGx testing level filter."`
	limitFlags
}

type searchGwasCmd struct {
	RSID      string   `name:"rsid" help:"Variant rsID."`
	Gene      string   `short:"g" help:"Mapped gene symbol."`
	Trait     string   `help:"Trait name."`
	MaxPValue *float64 `name:"max-p" help:"Maximum association p-value."`
	limitFlags
}

type searchPhenotypeCmd struct {
	Query string `short:"q" help:"Phenotype name query."`
	limitFlags
}

type searchPathwayCmd struct {
	Query    string `short:"q" help:"Pathway name query."`
	Type     string `help:"Pathway type filter."`
	TopLevel bool   `name:"top-level" help:"Only top-level Reactome pathways."`
	limitFlags
}

type searchProteinCmd struct {
	Query      string `short:"q" help:"Protein or gene name query."`
	Reviewed   bool   `default:"true" negatable:"" help:"Only reviewed (Swiss-Prot) entries."`
	Disease    string `help:"Disease involvement filter."`
	Existence  *int   `help:"Protein existence level, 1-5."`
	AllSpecies bool   `name:"all-species" help:"Search beyond human."`
	NextPage   string `name:"next-page" help:"Opaque page token from a previous search."`
	limitFlags
}

type searchOrganizationCmd struct {
	Name string `short:"n" help:"Organization name."`
	City string `help:"Organization city."`
	limitFlags
}

type searchInterventionCmd struct {
	Name      string `short:"n" help:"Intervention name."`
	Type      string `help:"Intervention type."`
	Condition string `short:"c" help:"Condition context."`
	limitFlags
}

type searchBiomarkerCmd struct {
	Name      string `short:"n" help:"Biomarker name, e.g. PD-L1."`
	Condition string `short:"c" help:"Condition context."`
	limitFlags
}

type searchAdverseEventCmd struct {
	Drug     string `short:"d" help:"Drug name."`
	Reaction string `help:"Reaction term filter."`
	Serious  bool   `help:"Only serious reports."`
	Country  string `help:"Reporting country filter."`
	DateFrom string `name:"date-from" help:"Earliest report date."`
	DateTo   string `name:"date-to" help:"Latest report date."`
	limitFlags
}

func (a *app) dispatchSearch(ctx context.Context, cmd string) error {
	s := &a.cli.Search
	switch cmd {
	case "search gene":
		c := &s.Gene
		page, err := a.entities.SearchGenes(ctx, &domain.GeneSearchFilters{
			Query:    c.Query,
			Type:     c.Type,
			Chrom:    c.Chromosome,
			Pathway:  c.Pathway,
			GO:       c.GO,
			Region:   c.Region,
			Species:  c.Species,
			Summary:  c.Summary,
			Ontology: c.Ontology,
		}, c.Limit, c.Offset)
		if err != nil {
			return err
		}
		return emitPage(a, page, c.Limit, c.Offset)
	case "search variant":
		c := &s.Variant
		page, err := a.entities.SearchVariants(ctx, &domain.VariantSearchFilters{
			Gene:         c.Gene,
			Significance: c.Significance,
			Consequence:  c.Consequence,
			Impact:       c.Impact,
			MinCADD:      c.MinCADD,
			MinREVEL:     c.MinREVEL,
			MinGERP:      c.MinGERP,
			MaxFreq:      c.MaxFreq,
			Region:       c.Region,
		}, c.Limit, c.Offset)
		if err != nil {
			return err
		}
		return emitPage(a, page, c.Limit, c.Offset)
	case "search article":
		c := &s.Article
		page, err := a.entities.SearchArticles(ctx, &domain.ArticleSearchFilters{
			Gene:             c.Gene,
			Disease:          c.Disease,
			Drug:             c.Drug,
			Author:           c.Author,
			Keyword:          c.Keyword,
			DateFrom:         c.DateFrom,
			DateTo:           c.DateTo,
			ArticleType:      c.Type,
			Journal:          c.Journal,
			OpenAccess:       c.OpenAccess,
			NoPreprints:      c.NoPreprints,
			ExcludeRetracted: c.ExcludeRetracted,
			Sort:             domain.ArticleSort(c.Sort),
		}, c.Limit, c.Offset)
		if err != nil {
			return err
		}
		return emitPage(a, page, c.Limit, c.Offset)
	case "search trial":
		c := &s.Trial
		page, err := a.entities.SearchTrials(ctx, &domain.TrialSearchFilters{
			Condition:        c.Condition,
			Intervention:     c.Intervention,
			Term:             c.Term,
			Status:           c.Status,
			Phase:            c.Phase,
			StudyType:        c.StudyType,
			Sex:              c.Sex,
			Sponsor:          c.Sponsor,
			SponsorType:      c.SponsorType,
			Age:              c.Age,
			ResultsAvailable: c.ResultsAvailable,
			Mutation:         c.Mutation,
			Biomarker:        c.Biomarker,
			PriorTherapies:   c.PriorTherapies,
			ProgressionOn:    c.ProgressionOn,
			LineOfTherapy:    c.LineOfTherapy,
			Facility:         c.Facility,
			Lat:              c.Lat,
			Lon:              c.Lon,
			Distance:         c.Distance,
			DateFrom:         c.DateFrom,
			DateTo:           c.DateTo,
			NextPage:         c.NextPage,
			Source:           domain.TrialSource(c.Source),
		}, c.Limit, c.Offset)
		if err != nil {
			return err
		}
		return emitPage(a, page, c.Limit, c.Offset)
	case "search drug":
		c := &s.Drug
		page, err := a.entities.SearchDrugs(ctx, &domain.DrugSearchFilters{
			Query:      c.Query,
			Target:     c.Target,
			Indication: c.Indication,
			Approved:   c.Approved,
		}, c.Limit, c.Offset)
		if err != nil {
			return err
		}
		return emitPage(a, page, c.Limit, c.Offset)
	case "search disease":
		c := &s.Disease
		page, err := a.entities.SearchDiseases(ctx, &domain.DiseaseSearchFilters{
			Query:    c.Query,
			Category: c.Category,
		}, c.Limit, c.Offset)
		if err != nil {
			return err
		}
		return emitPage(a, page, c.Limit, c.Offset)
	case "search pgx":
		c := &s.PGx
		page, err := a.entities.SearchPGx(ctx, &domain.PGxSearchFilters{
			Gene:       c.Gene,
			Drug:       c.Drug,
			CPICLevel:  c.CPICLevel,
			PGxTesting: c.PGxTesting,
		}, c.Limit, c.Offset)
		if err != nil {
			return err
		}
		return emitPage(a, page, c.Limit, c.Offset)
	case "search gwas":
		c := &s.Gwas
		page, err := a.entities.SearchGwas(ctx, &domain.GwasSearchFilters{
			RSID:      c.RSID,
			Gene:      c.Gene,
			Trait:     c.Trait,
			MaxPValue: c.MaxPValue,
		}, c.Limit, c.Offset)
		if err != nil {
			return err
		}
		return emitPage(a, page, c.Limit, c.Offset)
	case "search phenotype":
		c := &s.Phenotype
		page, err := a.entities.SearchPhenotypes(ctx, c.Query, c.Limit, c.Offset)
		if err != nil {
			return err
		}
		return emitPage(a, page, c.Limit, c.Offset)
	case "search pathway":
		c := &s.Pathway
		page, err := a.entities.SearchPathways(ctx, &domain.PathwaySearchFilters{
			Query:       c.Query,
			PathwayType: c.Type,
			TopLevel:    c.TopLevel,
		}, c.Limit, c.Offset)
		if err != nil {
			return err
		}
		return emitPage(a, page, c.Limit, c.Offset)
	case "search protein":
		c := &s.Protein
		page, err := a.entities.SearchProteins(ctx, &domain.ProteinSearchFilters{
			Query:      c.Query,
			Reviewed:   c.Reviewed,
			Disease:    c.Disease,
			Existence:  c.Existence,
			AllSpecies: c.AllSpecies,
			NextPage:   c.NextPage,
		}, c.Limit, c.Offset)
		if err != nil {
			return err
		}
		return emitPage(a, page, c.Limit, c.Offset)
	case "search organization":
		c := &s.Organization
		page, err := a.entities.SearchOrganizations(ctx, &domain.OrganizationSearchFilters{
			Name: c.Name,
			City: c.City,
		}, c.Limit, c.Offset)
		if err != nil {
			return err
		}
		return emitPage(a, page, c.Limit, c.Offset)
	case "search intervention":
		c := &s.Intervention
		page, err := a.entities.SearchInterventions(ctx, &domain.InterventionSearchFilters{
			Name:      c.Name,
			Type:      c.Type,
			Condition: c.Condition,
		}, c.Limit, c.Offset)
		if err != nil {
			return err
		}
		return emitPage(a, page, c.Limit, c.Offset)
	case "search biomarker":
		c := &s.Biomarker
		page, err := a.entities.SearchBiomarkers(ctx, &domain.BiomarkerSearchFilters{
			Name:      c.Name,
			Condition: c.Condition,
		}, c.Limit, c.Offset)
		if err != nil {
			return err
		}
		return emitPage(a, page, c.Limit, c.Offset)
	case "search adverse-event":
		c := &s.AdverseEvent
		page, err := a.entities.SearchAdverseEvents(ctx, &domain.AdverseEventSearchFilters{
			Drug:     c.Drug,
			Reaction: c.Reaction,
			Serious:  c.Serious,
			Country:  c.Country,
			DateFrom: c.DateFrom,
			DateTo:   c.DateTo,
		}, c.Limit, c.Offset)
		if err != nil {
			return err
		}
		return emitPage(a, page, c.Limit, c.Offset)
	default:
		return domain.NewInvalidArgument("Unknown search command %q", cmd)
	}
}
