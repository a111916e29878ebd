package entity

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/biomcp/biomcp/internal/domain"
	"github.com/biomcp/biomcp/internal/query"
	"github.com/biomcp/biomcp/internal/transform"
)

var adverseEventSectionNames = []string{"reactions", "outcomes", "concomitant", "serious"}

var adverseEventSectionAliases = map[string]string{
	"reaction": "reactions",
	"outcome":  "outcomes",
}

const faersGuidance = "FAERS reports are spontaneous and unverified; report counts do not establish causality or incidence."

// reactionoutcome is MedDRA-coded in FAERS.
var faersOutcomeLabels = map[string]string{
	"1": "Recovered/resolved",
	"2": "Recovering/resolving",
	"3": "Not recovered/not resolved",
	"4": "Recovered with sequelae",
	"5": "Fatal",
	"6": "Unknown",
}

// GetAdverseEvent builds a FAERS profile for one drug: total report count plus
// the requested count aggregations. All aggregations run concurrently and
// fail open.
func (s *Service) GetAdverseEvent(ctx context.Context, drug string, sections []string) (*domain.AdverseEvent, error) {
	drug = strings.TrimSpace(drug)
	if drug == "" {
		return nil, domain.NewInvalidArgument("Drug name is required. Example: biomcp get adverse-event vemurafenib")
	}
	include, err := parseSections("adverse-event", sections, adverseEventSectionNames, adverseEventSectionAliases)
	if err != nil {
		return nil, err
	}

	search := faersDrugClause(drug)
	result, err := s.src.OpenFDA.AdverseEvents(ctx, search, 1, 0)
	if err != nil {
		return nil, err
	}
	record := &domain.AdverseEvent{Drug: drug, Guidance: faersGuidance}
	if total := result.Get("meta.results.total"); total.Exists() {
		n := total.Int()
		record.ReportCount = &n
	}
	if record.ReportCount == nil || *record.ReportCount == 0 {
		return nil, domain.NewNotFound("adverse-event", drug,
			"Try searching: biomcp search adverse-event -d "+quoted(drug))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(sectionConcurrency)
	if includes(include, "reactions") {
		g.Go(func() error {
			counts, err := s.src.OpenFDA.AdverseEventCounts(gctx, search, "patient.reaction.reactionmeddrapt.exact", 10)
			if err != nil {
				s.log.WithError(err).Warn("openFDA unavailable for adverse-event reactions section")
				return nil
			}
			record.Reactions = transform.ReactionCountsFromOpenFDA(counts, 10)
			return nil
		})
	}
	if includes(include, "outcomes") {
		g.Go(func() error {
			counts, err := s.src.OpenFDA.AdverseEventCounts(gctx, search, "patient.reaction.reactionoutcome", 6)
			if err != nil {
				s.log.WithError(err).Warn("openFDA unavailable for adverse-event outcomes section")
				return nil
			}
			rows := transform.ReactionCountsFromOpenFDA(counts, 6)
			for i, row := range rows {
				if label, ok := faersOutcomeLabels[row.Term]; ok {
					rows[i].Term = label
				}
			}
			record.Outcomes = rows
			return nil
		})
	}
	if includes(include, "concomitant") {
		g.Go(func() error {
			counts, err := s.src.OpenFDA.AdverseEventCounts(gctx, search, "patient.drug.medicinalproduct.exact", 15)
			if err != nil {
				s.log.WithError(err).Warn("openFDA unavailable for adverse-event concomitant section")
				return nil
			}
			rows := transform.ReactionCountsFromOpenFDA(counts, 15)
			kept := rows[:0]
			for _, row := range rows {
				if strings.EqualFold(row.Term, drug) {
					continue
				}
				kept = append(kept, row)
				if len(kept) >= 10 {
					break
				}
			}
			record.Concomitant = kept
			return nil
		})
	}
	if includes(include, "serious") {
		g.Go(func() error {
			counts, err := s.src.OpenFDA.AdverseEventCounts(gctx, search, "serious", 2)
			if err != nil {
				s.log.WithError(err).Warn("openFDA unavailable for adverse-event serious section")
				return nil
			}
			var serious, total int64
			for _, row := range transform.ReactionCountsFromOpenFDA(counts, 2) {
				total += row.Count
				if row.Term == "1" {
					serious += row.Count
				}
			}
			if total > 0 {
				ratio := float64(serious) / float64(total)
				record.SeriousRatio = &ratio
			}
			return nil
		})
	}
	_ = g.Wait()

	return record, nil
}

// SearchAdverseEvents lists individual FAERS case reports matching the
// filters, one row per reported reaction term.
func (s *Service) SearchAdverseEvents(ctx context.Context, filters *domain.AdverseEventSearchFilters, limit, offset int) (domain.SearchPage[domain.AdverseEventSearchResult], error) {
	var page domain.SearchPage[domain.AdverseEventSearchResult]
	if err := validateLimit(limit); err != nil {
		return page, err
	}
	if err := validateOffset(offset); err != nil {
		return page, err
	}
	drug := strings.TrimSpace(filters.Drug)
	if drug == "" {
		return page, domain.NewInvalidArgument("--drug is required. Example: biomcp search adverse-event -d vemurafenib")
	}

	clauses := []string{faersDrugClause(drug)}
	if v := strings.TrimSpace(filters.Reaction); v != "" {
		clauses = append(clauses, fmt.Sprintf("patient.reaction.reactionmeddrapt:%q", v))
	}
	if filters.Serious {
		clauses = append(clauses, "serious:1")
	}
	if v := strings.TrimSpace(filters.Country); v != "" {
		clauses = append(clauses, fmt.Sprintf("occurcountry:%q", strings.ToUpper(v)))
	}
	dateClause, err := faersDateClause(filters.DateFrom, filters.DateTo)
	if err != nil {
		return page, err
	}
	if dateClause != "" {
		clauses = append(clauses, dateClause)
	}

	result, err := s.src.OpenFDA.AdverseEvents(ctx, strings.Join(clauses, " AND "), limit, offset)
	if err != nil {
		return page, err
	}
	rows := transform.AdverseEventSearchRowsFromOpenFDA(result, drug, limit)
	var total *int
	if v := result.Get("meta.results.total"); v.Exists() {
		n := int(v.Int())
		total = &n
	}
	return domain.OffsetPage(rows, total), nil
}

func faersDrugClause(drug string) string {
	return fmt.Sprintf("(patient.drug.medicinalproduct:%q OR patient.drug.openfda.generic_name:%q)", drug, drug)
}

// faersDateClause converts the shared YYYY[-MM[-DD]] date flags to the
// receivedate range FAERS expects (YYYYMMDD, inclusive).
func faersDateClause(from, to string) (string, error) {
	from = strings.TrimSpace(from)
	to = strings.TrimSpace(to)
	if from == "" && to == "" {
		return "", nil
	}
	if from != "" {
		normalized, err := query.ValidateDate("--date-from", from)
		if err != nil {
			return "", err
		}
		from = normalized
	} else {
		from = "1900-01-01"
	}
	if to != "" {
		normalized, err := query.ValidateDate("--date-to", to)
		if err != nil {
			return "", err
		}
		to = normalized
	} else {
		to = "3000-12-31"
	}
	from = expandDate(from, false)
	to = expandDate(to, true)
	if from > to {
		return "", domain.NewInvalidArgument("--date-from must be on or before --date-to")
	}
	compact := func(d string) string { return strings.ReplaceAll(d, "-", "") }
	return fmt.Sprintf("receivedate:[%s TO %s]", compact(from), compact(to)), nil
}

// expandDate pads a YYYY or YYYY-MM value to a full date, toward the start or
// end of the period.
func expandDate(d string, end bool) string {
	switch len(d) {
	case 4:
		if end {
			return d + "-12-31"
		}
		return d + "-01-01"
	case 7:
		if end {
			t, err := time.Parse("2006-01", d)
			if err != nil {
				return d + "-28"
			}
			return t.AddDate(0, 1, -1).Format("2006-01-02")
		}
		return d + "-01"
	default:
		return d
	}
}
