// Package mcpserver exposes the query engine over the Model Context Protocol:
// a stdio transport for local clients and a streamable HTTP transport mounted
// in the gin server alongside health and metrics endpoints. The tool surface
// is deliberately small: search, fetch, and think.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/biomcp/biomcp/internal/domain"
	"github.com/biomcp/biomcp/internal/entity"
	"github.com/biomcp/biomcp/internal/pivot"
	"github.com/biomcp/biomcp/internal/sources"
)

const (
	defaultToolLimit = 10
	maxToolLimit     = 50
)

// Server bundles the MCP tool handlers over the entity and pivot services.
type Server struct {
	entities *entity.Service
	pivots   *pivot.Service
	src      *sources.Clients
	cacheDir string
	version  string
	log      *logrus.Logger

	mcpOnce   sync.Once
	mcpServer *mcp.Server

	thoughtMu sync.Mutex
	thoughts  []string
}

// New builds a Server. version ends up in the MCP implementation info.
func New(entities *entity.Service, pivots *pivot.Service, cacheDir, version string, log *logrus.Logger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Server{
		entities: entities,
		pivots:   pivots,
		src:      entities.Clients(),
		cacheDir: cacheDir,
		version:  version,
		log:      log,
	}
}

// MCPServer returns the shared MCP server with all tools registered.
func (s *Server) MCPServer() *mcp.Server {
	s.mcpOnce.Do(func() {
		srv := mcp.NewServer(&mcp.Implementation{Name: "biomcp", Version: s.version}, nil)
		mcp.AddTool(srv, &mcp.Tool{
			Name: "search",
			Description: "Search biomedical entities. domain selects the entity type " +
				"(gene, variant, article, trial, drug, disease, pgx, gwas, phenotype, " +
				"pathway, protein, organization, intervention, biomarker, adverse-event); " +
				"the remaining fields are that domain's filters. Set pivot plus id to list " +
				"a record's cross-entity neighbors, e.g. domain=gene pivot=trials id=BRAF.",
		}, s.handleSearch)
		mcp.AddTool(srv, &mcp.Tool{
			Name: "fetch",
			Description: "Fetch one biomedical record by identifier. domain selects the " +
				"entity type; sections requests optional enrichment sections ('all' for every section).",
		}, s.handleFetch)
		mcp.AddTool(srv, &mcp.Tool{
			Name: "think",
			Description: "Record one step of sequential reasoning while planning " +
				"multi-step biomedical queries. Thoughts are kept in memory for the session.",
		}, s.handleThink)
		s.mcpServer = srv
	})
	return s.mcpServer
}

// RunStdio serves MCP over stdin/stdout until the context ends.
func (s *Server) RunStdio(ctx context.Context) error {
	s.log.WithField("version", s.version).Info("starting MCP stdio server")
	if err := s.MCPServer().Run(ctx, &mcp.StdioTransport{}); err != nil {
		return fmt.Errorf("MCP server failed: %w", err)
	}
	return nil
}

// SearchParams is the input of the search tool. Domain decides which filters
// apply; irrelevant fields are ignored.
type SearchParams struct {
	Domain       string `json:"domain"`
	Pivot        string `json:"pivot,omitempty"`
	ID           string `json:"id,omitempty"`
	Query        string `json:"query,omitempty"`
	Gene         string `json:"gene,omitempty"`
	Disease      string `json:"disease,omitempty"`
	Drug         string `json:"drug,omitempty"`
	Condition    string `json:"condition,omitempty"`
	Intervention string `json:"intervention,omitempty"`
	Target       string `json:"target,omitempty"`
	RSID         string `json:"rsid,omitempty"`
	Trait        string `json:"trait,omitempty"`
	Name         string `json:"name,omitempty"`
	Limit        int    `json:"limit,omitempty"`
	Offset       int    `json:"offset,omitempty"`
}

// FetchParams is the input of the fetch tool.
type FetchParams struct {
	Domain   string   `json:"domain"`
	ID       string   `json:"id,omitempty"`
	IDs      []string `json:"ids,omitempty"`
	Sections []string `json:"sections,omitempty"`
	Source   string   `json:"source,omitempty"`
}

// ThinkParams is the input of the think tool.
type ThinkParams struct {
	Thought           string `json:"thought"`
	ThoughtNumber     int    `json:"thought_number,omitempty"`
	NextThoughtNeeded bool   `json:"next_thought_needed,omitempty"`
}

// searchEnvelope is the structured search tool output.
type searchEnvelope struct {
	Results    any                   `json:"results"`
	Pagination domain.PaginationMeta `json:"pagination"`
	Note       string                `json:"note,omitempty"`
}

func envelope[T any](page domain.SearchPage[T], limit, offset int) searchEnvelope {
	results := page.Results
	if results == nil {
		results = []T{}
	}
	return searchEnvelope{Results: results, Pagination: page.Meta(offset, limit)}
}

func (s *Server) handleSearch(ctx context.Context, _ *mcp.CallToolRequest, params SearchParams) (*mcp.CallToolResult, any, error) {
	limit := params.Limit
	if limit == 0 {
		limit = defaultToolLimit
	}
	if limit > maxToolLimit {
		limit = maxToolLimit
	}
	offset := params.Offset
	s.log.WithFields(logrus.Fields{"tool": "search", "domain": params.Domain, "pivot": params.Pivot}).Debug("tool invoked")

	if params.Pivot != "" {
		out, err := s.pivotSearch(ctx, params, limit, offset)
		if err != nil {
			return errorResult(err), nil, nil
		}
		return jsonResult(out), out, nil
	}

	var (
		out searchEnvelope
		err error
	)
	switch strings.ToLower(strings.TrimSpace(params.Domain)) {
	case "gene":
		var page domain.SearchPage[domain.GeneSearchResult]
		page, err = s.entities.SearchGenes(ctx, &domain.GeneSearchFilters{Query: params.Query}, limit, offset)
		out = envelope(page, limit, offset)
	case "variant":
		gene := params.Gene
		if gene == "" {
			gene = params.Query
		}
		var page domain.SearchPage[domain.VariantSearchResult]
		page, err = s.entities.SearchVariants(ctx, &domain.VariantSearchFilters{Gene: gene}, limit, offset)
		out = envelope(page, limit, offset)
	case "article":
		var page domain.SearchPage[domain.ArticleSearchResult]
		page, err = s.entities.SearchArticles(ctx, &domain.ArticleSearchFilters{
			Gene:    params.Gene,
			Disease: params.Disease,
			Drug:    params.Drug,
			Keyword: params.Query,
		}, limit, offset)
		out = envelope(page, limit, offset)
	case "trial":
		var page domain.SearchPage[domain.TrialSearchResult]
		page, err = s.entities.SearchTrials(ctx, &domain.TrialSearchFilters{
			Condition:    params.Condition,
			Intervention: params.Intervention,
			Term:         params.Query,
		}, limit, offset)
		out = envelope(page, limit, offset)
	case "drug":
		var page domain.SearchPage[domain.DrugSearchResult]
		page, err = s.entities.SearchDrugs(ctx, &domain.DrugSearchFilters{
			Query:      params.Query,
			Target:     params.Target,
			Indication: params.Disease,
		}, limit, offset)
		out = envelope(page, limit, offset)
	case "disease":
		var page domain.SearchPage[domain.DiseaseSearchResult]
		page, err = s.entities.SearchDiseases(ctx, &domain.DiseaseSearchFilters{Query: params.Query}, limit, offset)
		out = envelope(page, limit, offset)
	case "pgx":
		var page domain.SearchPage[domain.PGxSearchResult]
		page, err = s.entities.SearchPGx(ctx, &domain.PGxSearchFilters{Gene: params.Gene, Drug: params.Drug}, limit, offset)
		out = envelope(page, limit, offset)
	case "gwas":
		var page domain.SearchPage[domain.GwasAssociation]
		page, err = s.entities.SearchGwas(ctx, &domain.GwasSearchFilters{
			RSID:  params.RSID,
			Gene:  params.Gene,
			Trait: params.Trait,
		}, limit, offset)
		out = envelope(page, limit, offset)
	case "phenotype":
		var page domain.SearchPage[domain.PhenotypeSearchResult]
		page, err = s.entities.SearchPhenotypes(ctx, params.Query, limit, offset)
		out = envelope(page, limit, offset)
	case "pathway":
		var page domain.SearchPage[domain.PathwaySearchResult]
		page, err = s.entities.SearchPathways(ctx, &domain.PathwaySearchFilters{Query: params.Query}, limit, offset)
		out = envelope(page, limit, offset)
	case "protein":
		var page domain.SearchPage[domain.ProteinSearchResult]
		page, err = s.entities.SearchProteins(ctx, &domain.ProteinSearchFilters{Query: params.Query}, limit, offset)
		out = envelope(page, limit, offset)
	case "organization":
		name := params.Name
		if name == "" {
			name = params.Query
		}
		var page domain.SearchPage[domain.OrganizationSearchResult]
		page, err = s.entities.SearchOrganizations(ctx, &domain.OrganizationSearchFilters{Name: name}, limit, offset)
		out = envelope(page, limit, offset)
	case "intervention":
		name := params.Name
		if name == "" {
			name = params.Query
		}
		var page domain.SearchPage[domain.InterventionSearchResult]
		page, err = s.entities.SearchInterventions(ctx, &domain.InterventionSearchFilters{
			Name:      name,
			Condition: params.Condition,
		}, limit, offset)
		out = envelope(page, limit, offset)
	case "biomarker":
		name := params.Name
		if name == "" {
			name = params.Query
		}
		var page domain.SearchPage[domain.BiomarkerSearchResult]
		page, err = s.entities.SearchBiomarkers(ctx, &domain.BiomarkerSearchFilters{
			Name:      name,
			Condition: params.Condition,
		}, limit, offset)
		out = envelope(page, limit, offset)
	case "adverse-event":
		drug := params.Drug
		if drug == "" {
			drug = params.Query
		}
		var page domain.SearchPage[domain.AdverseEventSearchResult]
		page, err = s.entities.SearchAdverseEvents(ctx, &domain.AdverseEventSearchFilters{Drug: drug}, limit, offset)
		out = envelope(page, limit, offset)
	default:
		err = domain.NewInvalidArgument(
			"Unknown search domain %q. Available: gene, variant, article, trial, drug, disease, pgx, gwas, phenotype, pathway, protein, organization, intervention, biomarker, adverse-event",
			params.Domain)
	}
	if err != nil {
		return errorResult(err), nil, nil
	}
	return jsonResult(out), out, nil
}

// pivotSearch handles search calls that start from one record and list its
// cross-entity neighbors. The record identifier rides in params.ID.
func (s *Server) pivotSearch(ctx context.Context, params SearchParams, limit, offset int) (searchEnvelope, error) {
	key := strings.ToLower(strings.TrimSpace(params.Domain)) + "/" + strings.ToLower(strings.TrimSpace(params.Pivot))
	switch key {
	case "gene/trials":
		page, err := s.pivots.GeneTrials(ctx, params.ID, limit, offset)
		return envelope(page, limit, offset), err
	case "gene/drugs":
		page, err := s.pivots.GeneDrugs(ctx, params.ID, limit, offset)
		return envelope(page, limit, offset), err
	case "gene/articles":
		page, err := s.pivots.GeneArticles(ctx, params.ID, limit, offset)
		return envelope(page, limit, offset), err
	case "gene/pathways":
		pathways, err := s.pivots.GenePathways(ctx, params.ID)
		if err != nil {
			return searchEnvelope{}, err
		}
		page := domain.OffsetPage(pathways, domain.IntPtr(len(pathways)))
		return envelope(page, limit, offset), nil
	case "variant/trials":
		source := domain.TrialSourceCTGov
		page, err := s.pivots.VariantTrials(ctx, params.ID, source, limit, offset)
		return envelope(page, limit, offset), err
	case "variant/articles":
		page, err := s.pivots.VariantArticles(ctx, params.ID, limit, offset)
		return envelope(page, limit, offset), err
	case "drug/trials":
		page, err := s.pivots.DrugTrials(ctx, params.ID, limit, offset)
		return envelope(page, limit, offset), err
	case "drug/adverse-events":
		page, err := s.pivots.DrugAdverseEvents(ctx, params.ID, limit, offset)
		return envelope(page, limit, offset), err
	case "disease/trials":
		page, err := s.pivots.DiseaseTrials(ctx, params.ID, limit, offset)
		return envelope(page, limit, offset), err
	case "disease/articles":
		page, err := s.pivots.DiseaseArticles(ctx, params.ID, limit, offset)
		return envelope(page, limit, offset), err
	case "disease/drugs":
		page, err := s.pivots.DiseaseDrugs(ctx, params.ID, limit, offset)
		return envelope(page, limit, offset), err
	case "pathway/drugs":
		page, err := s.pivots.PathwayDrugs(ctx, params.ID, limit)
		return envelope(page, limit, 0), err
	case "pathway/articles":
		page, err := s.pivots.PathwayArticles(ctx, params.ID, limit, offset)
		return envelope(page, limit, offset), err
	case "pathway/trials":
		page, note, err := s.pivots.PathwayTrials(ctx, params.ID, limit, offset)
		env := envelope(page, limit, offset)
		env.Note = note
		return env, err
	case "protein/structures":
		page, err := s.pivots.ProteinStructures(ctx, params.ID, limit, offset)
		return envelope(page, limit, offset), err
	default:
		return searchEnvelope{}, domain.NewInvalidArgument(
			"Unknown pivot %q for domain %q. Available: gene trials|drugs|articles|pathways, variant trials|articles, drug trials|adverse-events, disease trials|articles|drugs, pathway drugs|articles|trials, protein structures",
			params.Pivot, params.Domain)
	}
}

func (s *Server) handleFetch(ctx context.Context, _ *mcp.CallToolRequest, params FetchParams) (*mcp.CallToolResult, any, error) {
	s.log.WithFields(logrus.Fields{"tool": "fetch", "domain": params.Domain}).Debug("tool invoked")

	if len(params.IDs) > 0 {
		records, err := s.pivots.Batch(ctx, strings.ToLower(strings.TrimSpace(params.Domain)), params.IDs, params.Sections)
		if err != nil {
			return errorResult(err), nil, nil
		}
		out := map[string]any{"results": records}
		return jsonResult(out), out, nil
	}

	var (
		record any
		err    error
	)
	switch strings.ToLower(strings.TrimSpace(params.Domain)) {
	case "gene":
		record, err = s.entities.GetGene(ctx, params.ID, params.Sections)
	case "variant":
		record, err = s.entities.GetVariant(ctx, params.ID, params.Sections)
	case "article":
		record, err = s.entities.GetArticle(ctx, params.ID, params.Sections)
	case "trial":
		source := domain.TrialSourceCTGov
		if strings.EqualFold(params.Source, string(domain.TrialSourceNCI)) {
			source = domain.TrialSourceNCI
		}
		record, err = s.entities.GetTrial(ctx, params.ID, params.Sections, source)
	case "drug":
		record, err = s.entities.GetDrug(ctx, params.ID, params.Sections)
	case "disease":
		record, err = s.entities.GetDisease(ctx, params.ID, params.Sections)
	case "pgx":
		record, err = s.entities.GetPGx(ctx, params.ID, params.Sections)
	case "pathway":
		record, err = s.entities.GetPathway(ctx, params.ID, params.Sections)
	case "protein":
		record, err = s.entities.GetProtein(ctx, params.ID, params.Sections)
	case "adverse-event":
		record, err = s.entities.GetAdverseEvent(ctx, params.ID, params.Sections)
	default:
		err = domain.NewInvalidArgument(
			"Unknown fetch domain %q. Available: gene, variant, article, trial, drug, disease, pgx, pathway, protein, adverse-event",
			params.Domain)
	}
	if err != nil {
		return errorResult(err), nil, nil
	}
	return jsonResult(record), record, nil
}

func (s *Server) handleThink(_ context.Context, _ *mcp.CallToolRequest, params ThinkParams) (*mcp.CallToolResult, any, error) {
	if strings.TrimSpace(params.Thought) == "" {
		return errorResult(domain.NewInvalidArgument("Thought text is required")), nil, nil
	}
	s.thoughtMu.Lock()
	s.thoughts = append(s.thoughts, params.Thought)
	count := len(s.thoughts)
	s.thoughtMu.Unlock()

	out := map[string]any{
		"recorded":            true,
		"thought_count":       count,
		"next_thought_needed": params.NextThoughtNeeded,
	}
	return jsonResult(out), out, nil
}

func jsonResult(v any) *mcp.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("failed to encode result: %w", err))
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}
}

func errorResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}},
	}
}
