package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/biomcp/biomcp/internal/domain"
	"github.com/biomcp/biomcp/internal/health"
)

// sectionsFlag is shared by every get-shaped command.
type sectionsFlag struct {
	Sections []string `short:"s" help:"Enrichment sections to include; 'all' for every section."`
}

// pagedCmd is a pivot listing with offset pagination.
type pagedCmd struct {
	limitFlags
}

type geneCmd struct {
	Node geneNode `arg:"" name:"symbol"`
}

type geneNode struct {
	Symbol   string       `arg:"" help:"Gene symbol, e.g. BRAF."`
	Get      geneGetCmd   `cmd:"" default:"withargs" help:"Fetch the gene record (default)."`
	Trials   pagedCmd     `cmd:"" help:"Trials mentioning the gene."`
	Drugs    pagedCmd     `cmd:"" help:"Drugs targeting the gene."`
	Articles pagedCmd     `cmd:"" help:"Literature annotated with the gene."`
	Pathways genePathways `cmd:"" help:"Reactome pathways containing the gene."`
}

type geneGetCmd struct {
	sectionsFlag
}

type genePathways struct{}

type variantCmd struct {
	Node variantNode `arg:"" name:"id"`
}

type variantNode struct {
	ID       string           `arg:"" name:"id" help:"rsID, genomic HGVS, or quoted \"GENE CHANGE\" pair."`
	Get      variantGetCmd    `cmd:"" default:"withargs" help:"Fetch the variant record (default)."`
	Trials   variantTrialsCmd `cmd:"" help:"Trials whose eligibility matches the variant."`
	Articles pagedCmd         `cmd:"" help:"Literature mentioning the variant."`
	Oncokb   variantOncoKBCmd `cmd:"" name:"oncokb" help:"OncoKB annotation (requires ONCOKB_TOKEN)."`
}

type variantGetCmd struct {
	sectionsFlag
}

type variantTrialsCmd struct {
	Source string `enum:"ctgov,nci" default:"ctgov" help:"Trial registry."`
	limitFlags
}

type variantOncoKBCmd struct{}

type drugCmd struct {
	Node drugNode `arg:"" name:"id"`
}

type drugNode struct {
	ID            string     `arg:"" name:"id" help:"Drug name, DrugBank ID, or ChEMBL ID."`
	Get           drugGetCmd `cmd:"" default:"withargs" help:"Fetch the drug record (default)."`
	Trials        pagedCmd   `cmd:"" help:"Trials using the drug as an intervention."`
	AdverseEvents pagedCmd   `cmd:"" name:"adverse-events" help:"FAERS reports for the drug."`
}

type drugGetCmd struct {
	sectionsFlag
}

type diseaseCmd struct {
	Node diseaseNode `arg:"" name:"id"`
}

type diseaseNode struct {
	ID       string        `arg:"" name:"id" help:"Disease name or Mondo CURIE."`
	Get      diseaseGetCmd `cmd:"" default:"withargs" help:"Fetch the disease record (default)."`
	Trials   pagedCmd      `cmd:"" help:"Trials with the disease as a condition."`
	Articles pagedCmd      `cmd:"" help:"Literature annotated with the disease."`
	Drugs    pagedCmd      `cmd:"" help:"Drugs indicated for the disease."`
}

type diseaseGetCmd struct {
	sectionsFlag
}

type trialCmd struct {
	Node trialNode `arg:"" name:"nct-id"`
}

type trialNode struct {
	ID  string      `arg:"" name:"nct-id" help:"NCT identifier, e.g. NCT04280705."`
	Get trialGetCmd `cmd:"" default:"withargs" help:"Fetch the trial record (default)."`
}

type trialGetCmd struct {
	Source string `enum:"ctgov,nci" default:"ctgov" help:"Trial registry."`
	sectionsFlag
}

type articleCmd struct {
	Node articleNode `arg:"" name:"id"`
}

type articleNode struct {
	ID       string             `arg:"" name:"id" help:"PMID, PMCID, or DOI."`
	Get      articleGetCmd      `cmd:"" default:"withargs" help:"Fetch the article record (default)."`
	Entities articleEntitiesCmd `cmd:"" help:"PubTator3 entity annotations of the article."`
}

type articleGetCmd struct {
	sectionsFlag
}

type articleEntitiesCmd struct{}

type pathwayCmd struct {
	Node pathwayNode `arg:"" name:"id"`
}

type pathwayNode struct {
	ID       string          `arg:"" name:"id" help:"Reactome stable ID, e.g. R-HSA-5673001."`
	Get      pathwayGetCmd   `cmd:"" default:"withargs" help:"Fetch the pathway record (default)."`
	Genes    pathwayGenesCmd `cmd:"" help:"Gene symbols participating in the pathway."`
	Drugs    pathwayDrugsCmd `cmd:"" help:"Drugs targeting the pathway's genes."`
	Articles pagedCmd        `cmd:"" help:"Literature about the pathway."`
	Trials   pagedCmd        `cmd:"" help:"Trials for the pathway, with biomarker fallback."`
}

type pathwayGetCmd struct {
	sectionsFlag
}

type pathwayGenesCmd struct {
	Limit int `default:"25" help:"Maximum gene symbols to return."`
}

type pathwayDrugsCmd struct {
	Limit int `default:"10" help:"Maximum drugs to return."`
}

type proteinCmd struct {
	Node proteinNode `arg:"" name:"id"`
}

type proteinNode struct {
	ID         string        `arg:"" name:"id" help:"UniProt accession or gene symbol."`
	Get        proteinGetCmd `cmd:"" default:"withargs" help:"Fetch the protein record (default)."`
	Structures pagedCmd      `cmd:"" help:"PDB and AlphaFold structure references."`
}

type proteinGetCmd struct {
	sectionsFlag
}

type pgxCmd struct {
	Node pgxNode `arg:"" name:"query"`
}

type pgxNode struct {
	ID  string    `arg:"" name:"query" help:"Pharmacogene symbol or drug name."`
	Get pgxGetCmd `cmd:"" default:"withargs" help:"Fetch the pharmacogenomic record (default)."`
}

type pgxGetCmd struct {
	sectionsFlag
}

type adverseEventCmd struct {
	Node adverseEventNode `arg:"" name:"drug"`
}

type adverseEventNode struct {
	ID  string             `arg:"" name:"drug" help:"Drug name."`
	Get adverseEventGetCmd `cmd:"" default:"withargs" help:"Fetch the adverse-event profile (default)."`
}

type adverseEventGetCmd struct {
	sectionsFlag
}

type batchCmd struct {
	Entity   string   `arg:"" help:"Entity name, e.g. gene, trial, drug."`
	IDs      string   `arg:"" name:"ids" help:"Comma-separated identifiers, at most 10."`
	Sections []string `short:"s" help:"Enrichment sections forwarded to every fetch."`
}

type enrichCmd struct {
	Genes string `arg:"" help:"Comma-separated gene symbols."`
	Limit int    `default:"20" help:"Maximum enrichment terms to return."`
}

type healthCmd struct {
	APIsOnly bool `name:"apis-only" help:"Skip the local cache-directory check."`
}

type listCmd struct{}

type mcpCmd struct{}

type serveHTTPCmd struct {
	Port int `help:"Listen port; defaults to the configured http_port."`
}

type versionCmd struct{}

func (a *app) dispatch(ctx context.Context, cmd string) error {
	if strings.HasPrefix(cmd, "search ") {
		return a.dispatchSearch(ctx, cmd)
	}
	c := a.cli
	switch cmd {
	case "gene <symbol>", "gene <symbol> get":
		record, err := a.entities.GetGene(ctx, c.Gene.Node.Symbol, c.Gene.Node.Get.Sections)
		if err != nil {
			return err
		}
		return a.emit(record)
	case "gene <symbol> trials":
		n := &c.Gene.Node
		page, err := a.pivots.GeneTrials(ctx, n.Symbol, n.Trials.Limit, n.Trials.Offset)
		if err != nil {
			return err
		}
		return emitPage(a, page, n.Trials.Limit, n.Trials.Offset)
	case "gene <symbol> drugs":
		n := &c.Gene.Node
		page, err := a.pivots.GeneDrugs(ctx, n.Symbol, n.Drugs.Limit, n.Drugs.Offset)
		if err != nil {
			return err
		}
		return emitPage(a, page, n.Drugs.Limit, n.Drugs.Offset)
	case "gene <symbol> articles":
		n := &c.Gene.Node
		page, err := a.pivots.GeneArticles(ctx, n.Symbol, n.Articles.Limit, n.Articles.Offset)
		if err != nil {
			return err
		}
		return emitPage(a, page, n.Articles.Limit, n.Articles.Offset)
	case "gene <symbol> pathways":
		pathways, err := a.pivots.GenePathways(ctx, c.Gene.Node.Symbol)
		if err != nil {
			return err
		}
		if pathways == nil {
			pathways = []domain.GenePathway{}
		}
		return a.emit(pathways)

	case "variant <id>", "variant <id> get":
		record, err := a.entities.GetVariant(ctx, c.Variant.Node.ID, c.Variant.Node.Get.Sections)
		if err != nil {
			return err
		}
		return a.emit(record)
	case "variant <id> trials":
		n := &c.Variant.Node
		page, err := a.pivots.VariantTrials(ctx, n.ID, domain.TrialSource(n.Trials.Source), n.Trials.Limit, n.Trials.Offset)
		if err != nil {
			return err
		}
		return emitPage(a, page, n.Trials.Limit, n.Trials.Offset)
	case "variant <id> articles":
		n := &c.Variant.Node
		page, err := a.pivots.VariantArticles(ctx, n.ID, n.Articles.Limit, n.Articles.Offset)
		if err != nil {
			return err
		}
		return emitPage(a, page, n.Articles.Limit, n.Articles.Offset)
	case "variant <id> oncokb":
		record, err := a.pivots.VariantOncoKB(ctx, c.Variant.Node.ID)
		if err != nil {
			return err
		}
		return a.emit(record)

	case "drug <id>", "drug <id> get":
		record, err := a.entities.GetDrug(ctx, c.Drug.Node.ID, c.Drug.Node.Get.Sections)
		if err != nil {
			return err
		}
		return a.emit(record)
	case "drug <id> trials":
		n := &c.Drug.Node
		page, err := a.pivots.DrugTrials(ctx, n.ID, n.Trials.Limit, n.Trials.Offset)
		if err != nil {
			return err
		}
		return emitPage(a, page, n.Trials.Limit, n.Trials.Offset)
	case "drug <id> adverse-events":
		n := &c.Drug.Node
		page, err := a.pivots.DrugAdverseEvents(ctx, n.ID, n.AdverseEvents.Limit, n.AdverseEvents.Offset)
		if err != nil {
			return err
		}
		return emitPage(a, page, n.AdverseEvents.Limit, n.AdverseEvents.Offset)

	case "disease <id>", "disease <id> get":
		record, err := a.entities.GetDisease(ctx, c.Disease.Node.ID, c.Disease.Node.Get.Sections)
		if err != nil {
			return err
		}
		return a.emit(record)
	case "disease <id> trials":
		n := &c.Disease.Node
		page, err := a.pivots.DiseaseTrials(ctx, n.ID, n.Trials.Limit, n.Trials.Offset)
		if err != nil {
			return err
		}
		return emitPage(a, page, n.Trials.Limit, n.Trials.Offset)
	case "disease <id> articles":
		n := &c.Disease.Node
		page, err := a.pivots.DiseaseArticles(ctx, n.ID, n.Articles.Limit, n.Articles.Offset)
		if err != nil {
			return err
		}
		return emitPage(a, page, n.Articles.Limit, n.Articles.Offset)
	case "disease <id> drugs":
		n := &c.Disease.Node
		page, err := a.pivots.DiseaseDrugs(ctx, n.ID, n.Drugs.Limit, n.Drugs.Offset)
		if err != nil {
			return err
		}
		return emitPage(a, page, n.Drugs.Limit, n.Drugs.Offset)

	case "trial <nct-id>", "trial <nct-id> get":
		n := &c.Trial.Node
		record, err := a.entities.GetTrial(ctx, n.ID, n.Get.Sections, domain.TrialSource(n.Get.Source))
		if err != nil {
			return err
		}
		return a.emit(record)

	case "article <id>", "article <id> get":
		record, err := a.entities.GetArticle(ctx, c.Article.Node.ID, c.Article.Node.Get.Sections)
		if err != nil {
			return err
		}
		return a.emit(record)
	case "article <id> entities":
		record, err := a.pivots.ArticleEntities(ctx, c.Article.Node.ID)
		if err != nil {
			return err
		}
		return a.emit(record)

	case "pathway <id>", "pathway <id> get":
		record, err := a.entities.GetPathway(ctx, c.Pathway.Node.ID, c.Pathway.Node.Get.Sections)
		if err != nil {
			return err
		}
		return a.emit(record)
	case "pathway <id> genes":
		n := &c.Pathway.Node
		genes, err := a.entities.PathwayGenes(ctx, n.ID, n.Genes.Limit)
		if err != nil {
			return err
		}
		if genes == nil {
			genes = []string{}
		}
		return a.emit(genes)
	case "pathway <id> drugs":
		n := &c.Pathway.Node
		page, err := a.pivots.PathwayDrugs(ctx, n.ID, n.Drugs.Limit)
		if err != nil {
			return err
		}
		return emitPage(a, page, n.Drugs.Limit, 0)
	case "pathway <id> articles":
		n := &c.Pathway.Node
		page, err := a.pivots.PathwayArticles(ctx, n.ID, n.Articles.Limit, n.Articles.Offset)
		if err != nil {
			return err
		}
		return emitPage(a, page, n.Articles.Limit, n.Articles.Offset)
	case "pathway <id> trials":
		n := &c.Pathway.Node
		page, note, err := a.pivots.PathwayTrials(ctx, n.ID, n.Trials.Limit, n.Trials.Offset)
		if err != nil {
			return err
		}
		results := page.Results
		if results == nil {
			results = []domain.TrialSearchResult{}
		}
		return a.emit(pageOut{
			Results:    results,
			Pagination: page.Meta(n.Trials.Offset, n.Trials.Limit),
			Note:       note,
		})

	case "protein <id>", "protein <id> get":
		record, err := a.entities.GetProtein(ctx, c.Protein.Node.ID, c.Protein.Node.Get.Sections)
		if err != nil {
			return err
		}
		return a.emit(record)
	case "protein <id> structures":
		n := &c.Protein.Node
		page, err := a.pivots.ProteinStructures(ctx, n.ID, n.Structures.Limit, n.Structures.Offset)
		if err != nil {
			return err
		}
		return emitPage(a, page, n.Structures.Limit, n.Structures.Offset)

	case "pgx <query>", "pgx <query> get":
		record, err := a.entities.GetPGx(ctx, c.PGx.Node.ID, c.PGx.Node.Get.Sections)
		if err != nil {
			return err
		}
		return a.emit(record)

	case "adverse-event <drug>", "adverse-event <drug> get":
		record, err := a.entities.GetAdverseEvent(ctx, c.AdverseEvent.Node.ID, c.AdverseEvent.Node.Get.Sections)
		if err != nil {
			return err
		}
		return a.emit(record)

	case "batch <entity> <ids>":
		records, err := a.pivots.Batch(ctx, c.Batch.Entity, splitList(c.Batch.IDs), c.Batch.Sections)
		if err != nil {
			return err
		}
		return a.emit(map[string]any{"results": records})

	case "enrich <genes>":
		terms, err := a.entities.EnrichGenes(ctx, splitList(c.Enrich.Genes), c.Enrich.Limit)
		if err != nil {
			return err
		}
		if terms == nil {
			terms = []domain.PathwayEnrichment{}
		}
		return a.emit(terms)

	case "health":
		report := health.Run(ctx, a.entities.Clients(), a.cfg.CacheDir, c.Health.APIsOnly, a.log)
		if a.cli.JSON {
			return a.emit(report)
		}
		_, err := fmt.Fprint(a.stdout, report.Markdown())
		return err

	case "mcp", "serve":
		return a.server.RunStdio(ctx)

	case "serve-http":
		port := c.ServeHTTP.Port
		if port == 0 {
			port = a.cfg.HTTPPort
		}
		return a.server.ServeHTTP(ctx, port)

	default:
		return domain.NewInvalidArgument("Unknown command %q", cmd)
	}
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// capability rows for the list command.
type capability struct {
	Domain     string   `json:"domain"`
	Operations []string `json:"operations"`
	Sections   []string `json:"sections,omitempty"`
}

var capabilities = []capability{
	{"gene", []string{"get", "search", "trials", "drugs", "articles", "pathways"},
		[]string{"summary", "clinical", "pathways", "enrichment", "protein", "go", "interactions", "civic"}},
	{"variant", []string{"get", "search", "trials", "articles", "oncokb"},
		[]string{"civic", "cbioportal", "prediction"}},
	{"article", []string{"get", "search", "entities"},
		[]string{"fulltext", "annotations"}},
	{"trial", []string{"get", "search"},
		[]string{"locations", "outcomes", "references", "eligibility"}},
	{"drug", []string{"get", "search", "trials", "adverse-events"},
		[]string{"labels", "shortages", "trials"}},
	{"disease", []string{"get", "search", "trials", "articles", "drugs"},
		[]string{"phenotypes", "genes", "models"}},
	{"pgx", []string{"get", "search"},
		[]string{"guidelines", "frequencies", "annotations"}},
	{"gwas", []string{"search"}, nil},
	{"phenotype", []string{"search"}, nil},
	{"pathway", []string{"get", "search", "genes", "drugs", "articles", "trials"},
		[]string{"participants", "enrichment"}},
	{"protein", []string{"get", "search", "structures"},
		[]string{"function", "structures", "domains", "interactions"}},
	{"organization", []string{"search"}, nil},
	{"intervention", []string{"search"}, nil},
	{"biomarker", []string{"search"}, nil},
	{"adverse-event", []string{"get", "search"}, nil},
}

func (listCmd) run(c *CLI, stdout, _ io.Writer) int {
	if c.JSON {
		if err := (&app{cli: c, stdout: stdout}).emit(capabilities); err != nil {
			return exitUpstream
		}
		return exitOK
	}
	fmt.Fprintln(stdout, "Domain | Operations | Sections")
	fmt.Fprintln(stdout, "-------|------------|---------")
	for _, row := range capabilities {
		fmt.Fprintf(stdout, "%s | %s | %s\n", row.Domain,
			strings.Join(row.Operations, ", "), strings.Join(row.Sections, ", "))
	}
	return exitOK
}
