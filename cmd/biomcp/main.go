// The biomcp command is a federated biomedical query engine: search and fetch
// genes, variants, drugs, trials, articles, pathways, proteins, and more from
// public APIs, pivot between them, or serve the same surface over MCP.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/sirupsen/logrus"

	"github.com/biomcp/biomcp/internal/config"
	"github.com/biomcp/biomcp/internal/domain"
	"github.com/biomcp/biomcp/internal/entity"
	"github.com/biomcp/biomcp/internal/httpx"
	"github.com/biomcp/biomcp/internal/mcpserver"
	"github.com/biomcp/biomcp/internal/pivot"
	"github.com/biomcp/biomcp/internal/sources"
	"github.com/biomcp/biomcp/internal/version"
)

const (
	exitOK          = 0
	exitBadRequest  = 1
	exitUpstream    = 2
	exitInterrupted = 130
)

// CLI is the full command tree.
type CLI struct {
	JSON    bool `short:"j" help:"Emit compact JSON on stdout."`
	NoCache bool `help:"Bypass the response cache for this invocation."`
	Verbose bool `short:"v" help:"Enable debug logging."`

	Search       searchCmd       `cmd:"" help:"Search one entity domain."`
	Gene         geneCmd         `cmd:"" help:"Fetch a gene record or pivot to its trials, drugs, articles, or pathways."`
	Variant      variantCmd      `cmd:"" help:"Fetch a variant record or pivot to its trials, articles, or OncoKB annotation."`
	Drug         drugCmd         `cmd:"" help:"Fetch a drug record or pivot to its trials or adverse events."`
	Disease      diseaseCmd      `cmd:"" help:"Fetch a disease record or pivot to its trials, articles, or drugs."`
	Trial        trialCmd        `cmd:"" help:"Fetch a clinical trial record."`
	Article      articleCmd      `cmd:"" help:"Fetch an article record or its entity annotations."`
	Pathway      pathwayCmd      `cmd:"" help:"Fetch a pathway record or pivot to its drugs, articles, or trials."`
	Protein      proteinCmd      `cmd:"" help:"Fetch a protein record or list its structures."`
	PGx          pgxCmd          `cmd:"" name:"pgx" help:"Fetch a pharmacogenomic record for a gene or drug."`
	AdverseEvent adverseEventCmd `cmd:"" name:"adverse-event" help:"Fetch the adverse-event profile for a drug."`
	Batch        batchCmd        `cmd:"" help:"Fetch up to 10 records of one entity in parallel."`
	Enrich       enrichCmd       `cmd:"" help:"Pathway enrichment for a gene list."`
	Health       healthCmd       `cmd:"" help:"Probe upstream API connectivity and cache writability."`
	List         listCmd         `cmd:"" help:"List the entity domains and their operations."`
	MCP          mcpCmd          `cmd:"" name:"mcp" help:"Serve MCP over stdio."`
	Serve        mcpCmd          `cmd:"" help:"Alias for mcp."`
	ServeHTTP    serveHTTPCmd    `cmd:"" name:"serve-http" help:"Serve MCP, health, and metrics over HTTP."`
	Version      versionCmd      `cmd:"" help:"Show version."`
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	var c CLI
	parser, err := kong.New(&c,
		kong.Name("biomcp"),
		kong.Description("Federated biomedical query engine."),
		kong.Writers(stdout, stderr),
		kong.UsageOnError(),
	)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUpstream
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitBadRequest
	}

	switch kctx.Command() {
	case "version":
		fmt.Fprintf(stdout, "biomcp %s\n", version.Version)
		return exitOK
	case "list":
		return c.List.run(&c, stdout, stderr)
	}

	a, err := newApp(&c, stdout, stderr)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUpstream
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if c.NoCache {
		ctx = httpx.WithNoCache(ctx)
	}

	if err := a.dispatch(ctx, kctx.Command()); err != nil {
		if ctx.Err() != nil || errors.Is(err, context.Canceled) {
			fmt.Fprintln(stderr, "interrupted")
			return exitInterrupted
		}
		fmt.Fprintln(stderr, err)
		if domain.IsInvalidArgument(err) || domain.IsNotFound(err) {
			return exitBadRequest
		}
		return exitUpstream
	}
	return exitOK
}

// app carries the wired services for one invocation.
type app struct {
	cli      *CLI
	cfg      *config.Config
	entities *entity.Service
	pivots   *pivot.Service
	server   *mcpserver.Server
	log      *logrus.Logger
	stdout   io.Writer
}

func newApp(c *CLI, stdout, stderr io.Writer) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.EnsureCacheDir(); err != nil {
		return nil, err
	}

	log := logrus.New()
	log.SetOutput(stderr)
	if cfg.LogFormat == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.WarnLevel
	}
	if c.Verbose {
		level = logrus.DebugLevel
	}
	log.SetLevel(level)

	h, err := httpx.New(httpx.Config{
		Timeout:        cfg.RequestTimeout,
		ConnectTimeout: cfg.ConnectTimeout,
		MaxBodyBytes:   cfg.MaxBodyBytes,
		CacheDir:       cfg.CacheDir,
		RedisURL:       cfg.RedisURL,
		HostInterval:   cfg.HostInterval,
		MaxRetries:     cfg.MaxRetries,
		UserAgent:      "biomcp/" + version.Version,
	}, log)
	if err != nil {
		return nil, err
	}

	entities := entity.New(sources.New(h, cfg), cfg.CacheDir, log)
	pivots := pivot.New(entities, log)
	return &app{
		cli:      c,
		cfg:      cfg,
		entities: entities,
		pivots:   pivots,
		server:   mcpserver.New(entities, pivots, cfg.CacheDir, version.Version, log),
		log:      log,
		stdout:   stdout,
	}, nil
}

// emit writes one value to stdout: compact JSON under --json, indented
// otherwise. Nothing reaches stdout on error paths.
func (a *app) emit(v any) error {
	if a.cli.JSON {
		return json.NewEncoder(a.stdout).Encode(v)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = fmt.Fprintln(a.stdout, string(data))
	return err
}

// pageOut is the CLI search output envelope.
type pageOut struct {
	Results    any                   `json:"results"`
	Pagination domain.PaginationMeta `json:"pagination"`
	Note       string                `json:"note,omitempty"`
}

func emitPage[T any](a *app, page domain.SearchPage[T], limit, offset int) error {
	results := page.Results
	if results == nil {
		results = []T{}
	}
	return a.emit(pageOut{Results: results, Pagination: page.Meta(offset, limit)})
}
