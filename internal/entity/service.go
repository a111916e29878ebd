// Package entity implements the per-entity get and search orchestrators: it
// validates arguments, composes source-client calls, applies section-gated
// enrichment with bounded concurrency, and assembles records with pagination
// metadata. Optional enrichments never fail the primary record; they log a
// warning and leave the section empty or annotated with a note.
package entity

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/biomcp/biomcp/internal/domain"
	"github.com/biomcp/biomcp/internal/sources"
)

const (
	maxSearchLimit    = 50
	maxStructureLimit = 100

	// Hard character cap for inline eligibility text on trial records.
	eligibilityInlineLimit = 12000

	// Optional enrichments (CIViC, AlphaGenome) run under this wall-clock
	// timeout so they cannot stall the record.
	optionalEnrichmentTimeout = 8 * time.Second

	// PharmGKB is slower than the other annotation sources and gets a
	// slightly longer leash.
	pharmGKBTimeout = 10 * time.Second

	// Bounded parallelism for section enrichment and post-filter verifiers.
	sectionConcurrency  = 6
	verifierConcurrency = 8
)

// Service exposes every entity orchestrator over one set of source clients.
type Service struct {
	src      *sources.Clients
	log      *logrus.Logger
	cacheDir string
}

// New builds a Service. cacheDir is the root cache directory; full-text
// extraction writes under its fulltext/ subdirectory.
func New(src *sources.Clients, cacheDir string, log *logrus.Logger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{src: src, log: log, cacheDir: cacheDir}
}

// Clients exposes the underlying source bundle for callers (health checks,
// pivots) that need direct adapter access.
func (s *Service) Clients() *sources.Clients { return s.src }

func validateLimit(limit int) error {
	if limit < 1 || limit > maxSearchLimit {
		return domain.NewInvalidArgument("--limit must be between 1 and %d", maxSearchLimit)
	}
	return nil
}

func validateOffset(offset int) error {
	if offset < 0 {
		return domain.NewInvalidArgument("--offset must be zero or positive")
	}
	return nil
}

// parseSections normalizes a user-supplied section list against the entity's
// accepted names. Inline "--json"/"-j" tokens are stripped (they may arrive
// mixed with sections from loosely parsed argument lists), "all" expands to
// the full canonical set, and unknown tokens produce an InvalidArgument that
// enumerates the valid names. The returned list preserves first-mention order
// and never repeats a section.
func parseSections(entityName string, raw, names []string, aliases map[string]string) ([]string, error) {
	valid := make(map[string]bool, len(names))
	for _, n := range names {
		valid[n] = true
	}

	var include []string
	seen := make(map[string]bool)
	all := false
	for _, token := range raw {
		section := strings.ToLower(strings.TrimSpace(token))
		if section == "" || section == "--json" || section == "-j" {
			continue
		}
		if section == "all" {
			all = true
			continue
		}
		if canonical, ok := aliases[section]; ok {
			section = canonical
		}
		if !valid[section] {
			return nil, domain.NewInvalidArgument(
				"Unknown section %q for %s. Available: %s, all",
				section, entityName, strings.Join(names, ", "))
		}
		if !seen[section] {
			seen[section] = true
			include = append(include, section)
		}
	}
	if all {
		return append([]string(nil), names...), nil
	}
	return include, nil
}

func includes(sections []string, name string) bool {
	for _, s := range sections {
		if s == name {
			return true
		}
	}
	return false
}

// sliceOffset applies client-side offset pagination to an over-fetched list.
func sliceOffset[T any](rows []T, offset, limit int) []T {
	if offset >= len(rows) {
		return nil
	}
	rows = rows[offset:]
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows
}

// dedupeFold keeps the first occurrence of each case-insensitive key.
func dedupeFold(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := values[:0]
	for _, v := range values {
		key := strings.ToLower(strings.TrimSpace(v))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v)
	}
	return out
}

// sortedKeys is used where map iteration order would otherwise leak into
// output.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func quoted(value string) string {
	return fmt.Sprintf("%q", strings.TrimSpace(value))
}
