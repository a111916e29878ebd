package pivot

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/biomcp/biomcp/internal/domain"
)

// Batch fan-out is capped so one command cannot hammer an upstream.
const batchMaxIDs = 10

var batchEntityNames = []string{
	"adverse-event", "article", "disease", "drug", "gene",
	"pathway", "pgx", "protein", "trial", "variant",
}

// Batch fetches up to batchMaxIDs records of one entity type in parallel.
// Results come back in input order. The batch is all-or-nothing: the first
// failing fetch cancels the rest and becomes the batch error. Sections apply
// to every get call identically; adverse-event records have count sections
// that only make sense per drug, so those batches reject sections.
func (s *Service) Batch(ctx context.Context, entityName string, idList, sections []string) ([]any, error) {
	entityName = strings.ToLower(strings.TrimSpace(entityName))
	fetch, err := s.batchFetcher(entityName, sections)
	if err != nil {
		return nil, err
	}

	cleaned := make([]string, 0, len(idList))
	for _, id := range idList {
		if v := strings.TrimSpace(id); v != "" {
			cleaned = append(cleaned, v)
		}
	}
	if len(cleaned) == 0 {
		return nil, domain.NewInvalidArgument("Batch IDs are required. Example: biomcp batch gene BRAF,TP53")
	}
	if len(cleaned) > batchMaxIDs {
		return nil, domain.NewInvalidArgument("Batch is limited to %d IDs", batchMaxIDs)
	}

	results := make([]any, len(cleaned))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range cleaned {
		g.Go(func() error {
			record, err := fetch(gctx, id)
			if err != nil {
				return err
			}
			results[i] = record
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) batchFetcher(entityName string, sections []string) (func(context.Context, string) (any, error), error) {
	if entityName == "adverse-event" && len(sections) > 0 {
		return nil, domain.NewInvalidArgument("Sections do not apply to adverse-event batches")
	}
	switch entityName {
	case "gene":
		return func(ctx context.Context, id string) (any, error) {
			return s.entities.GetGene(ctx, id, sections)
		}, nil
	case "variant":
		return func(ctx context.Context, id string) (any, error) {
			return s.entities.GetVariant(ctx, id, sections)
		}, nil
	case "drug":
		return func(ctx context.Context, id string) (any, error) {
			return s.entities.GetDrug(ctx, id, sections)
		}, nil
	case "trial":
		return func(ctx context.Context, id string) (any, error) {
			return s.entities.GetTrial(ctx, id, sections, domain.TrialSourceCTGov)
		}, nil
	case "article":
		return func(ctx context.Context, id string) (any, error) {
			return s.entities.GetArticle(ctx, id, sections)
		}, nil
	case "pathway":
		return func(ctx context.Context, id string) (any, error) {
			return s.entities.GetPathway(ctx, id, sections)
		}, nil
	case "protein":
		return func(ctx context.Context, id string) (any, error) {
			return s.entities.GetProtein(ctx, id, sections)
		}, nil
	case "disease":
		return func(ctx context.Context, id string) (any, error) {
			return s.entities.GetDisease(ctx, id, sections)
		}, nil
	case "pgx":
		return func(ctx context.Context, id string) (any, error) {
			return s.entities.GetPGx(ctx, id, sections)
		}, nil
	case "adverse-event":
		return func(ctx context.Context, id string) (any, error) {
			return s.entities.GetAdverseEvent(ctx, id, nil)
		}, nil
	}
	return nil, domain.NewInvalidArgument(
		"Unknown batch entity %q. Available: %s", entityName, strings.Join(batchEntityNames, ", "))
}
