// Package health probes upstream API connectivity and local cache
// writability. Probes are tiny real queries, run in parallel with per-probe
// timeouts, and always bypass the response cache so the report reflects live
// reachability.
package health

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/biomcp/biomcp/internal/httpx"
	"github.com/biomcp/biomcp/internal/sources"
)

const (
	overallTimeout = 10 * time.Second
	probeTimeout   = 5 * time.Second
)

// Check is one probe outcome.
type Check struct {
	Name      string `json:"name"`
	Affects   string `json:"affects"`
	OK        bool   `json:"ok"`
	LatencyMS int64  `json:"latency_ms"`
	Detail    string `json:"detail,omitempty"`
}

// Report is the full health snapshot.
type Report struct {
	Checks  []Check `json:"checks"`
	Healthy int     `json:"healthy"`
	Total   int     `json:"total"`
}

type probe struct {
	name    string
	affects string
	run     func(ctx context.Context, src *sources.Clients) error
}

var apiProbes = []probe{
	{"MyGene.info", "gene get/search", func(ctx context.Context, src *sources.Clients) error {
		_, err := src.MyGene.Get(ctx, "BRAF")
		return err
	}},
	{"MyVariant.info", "variant get/search", func(ctx context.Context, src *sources.Clients) error {
		_, err := src.MyVariant.Get(ctx, "rs113488022")
		return err
	}},
	{"MyChem.info", "drug get/search", func(ctx context.Context, src *sources.Clients) error {
		_, err := src.MyChem.Get(ctx, "imatinib")
		return err
	}},
	{"PubTator3", "article get/search, entity annotations", func(ctx context.Context, src *sources.Clients) error {
		_, err := src.PubTator.Search(ctx, "BRAF", 1)
		return err
	}},
	{"Europe PMC", "article search, full text", func(ctx context.Context, src *sources.Clients) error {
		_, err := src.EuropePMC.Search(ctx, "BRAF", 1, 1, sources.EuropePMCSortRelevance)
		return err
	}},
	{"ClinicalTrials.gov", "trial get/search", func(ctx context.Context, src *sources.Clients) error {
		_, err := src.ClinicalTrials.Search(ctx, &sources.CtGovSearchParams{Condition: "melanoma", PageSize: 1})
		return err
	}},
	{"NCI CTS", "trial --source nci, organizations, biomarkers", func(ctx context.Context, src *sources.Clients) error {
		_, err := src.NCICTS.Search(ctx, &sources.NCISearchParams{Size: 1})
		return err
	}},
	{"Reactome", "pathway get/search, gene pathways", func(ctx context.Context, src *sources.Clients) error {
		_, err := src.Reactome.GetPathway(ctx, "R-HSA-5673001")
		return err
	}},
	{"UniProt", "protein get/search, gene protein section", func(ctx context.Context, src *sources.Clients) error {
		_, err := src.UniProt.Search(ctx, "gene:BRAF AND organism_id:9606", 1, 0, "")
		return err
	}},
	{"OpenFDA", "drug labels/shortages, adverse events", func(ctx context.Context, src *sources.Clients) error {
		_, err := src.OpenFDA.Labels(ctx, `openfda.generic_name:"imatinib"`, 1)
		return err
	}},
	{"CPIC", "pgx get/search", func(ctx context.Context, src *sources.Clients) error {
		_, err := src.CPIC.PairsByGene(ctx, "CYP2D6", 1)
		return err
	}},
	{"Monarch", "disease get/search, phenotypes", func(ctx context.Context, src *sources.Clients) error {
		_, err := src.Monarch.Search(ctx, "melanoma", "biolink:Disease", 1, 0)
		return err
	}},
}

// Run executes every probe. apisOnly skips the local cache-directory check.
func Run(ctx context.Context, src *sources.Clients, cacheDir string, apisOnly bool, log *logrus.Logger) *Report {
	if log == nil {
		log = logrus.StandardLogger()
	}
	ctx, cancel := context.WithTimeout(httpx.WithNoCache(ctx), overallTimeout)
	defer cancel()

	checks := make([]Check, len(apiProbes))
	var g errgroup.Group
	for i, p := range apiProbes {
		g.Go(func() error {
			pctx, pcancel := context.WithTimeout(ctx, probeTimeout)
			defer pcancel()
			start := time.Now()
			err := p.run(pctx, src)
			check := Check{
				Name:      p.name,
				Affects:   p.affects,
				OK:        err == nil,
				LatencyMS: time.Since(start).Milliseconds(),
			}
			if err != nil {
				check.Detail = err.Error()
				log.WithError(err).WithField("check", p.name).Debug("health probe failed")
			}
			checks[i] = check
			return nil
		})
	}
	_ = g.Wait()

	if !apisOnly {
		checks = append(checks, cacheCheck(cacheDir))
	}

	report := &Report{Checks: checks, Total: len(checks)}
	for _, c := range checks {
		if c.OK {
			report.Healthy++
		}
	}
	return report
}

// cacheCheck verifies the cache directory accepts writes.
func cacheCheck(cacheDir string) Check {
	check := Check{Name: "Cache directory", Affects: "response caching, full-text storage"}
	start := time.Now()
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		check.Detail = err.Error()
		return check
	}
	f, err := os.CreateTemp(cacheDir, "healthcheck-*")
	if err != nil {
		check.Detail = err.Error()
		return check
	}
	name := f.Name()
	_, werr := f.WriteString("ok")
	cerr := f.Close()
	_ = os.Remove(name)
	if werr != nil {
		check.Detail = werr.Error()
		return check
	}
	if cerr != nil {
		check.Detail = cerr.Error()
		return check
	}
	check.OK = true
	check.LatencyMS = time.Since(start).Milliseconds()
	return check
}

// Markdown renders the report as the table the CLI prints.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("## BioMCP Health\n\n")
	b.WriteString("| Check | Status | Latency | Affects |\n")
	b.WriteString("|-------|--------|---------|---------|\n")
	for _, c := range r.Checks {
		status := "OK"
		if !c.OK {
			status = "FAIL"
			if c.Detail != "" {
				status = "FAIL: " + sanitizeCell(c.Detail)
			}
		}
		fmt.Fprintf(&b, "| %s | %s | %dms | %s |\n", c.Name, status, c.LatencyMS, c.Affects)
	}
	fmt.Fprintf(&b, "\n%d/%d checks healthy.\n", r.Healthy, r.Total)
	return b.String()
}

// sanitizeCell keeps error text from breaking the table layout.
func sanitizeCell(s string) string {
	s = strings.NewReplacer("|", "\\|", "\n", " ").Replace(s)
	if len(s) > 120 {
		s = s[:120] + "..."
	}
	return s
}
