package entity

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/biomcp/biomcp/internal/domain"
	"github.com/biomcp/biomcp/internal/query"
	"github.com/biomcp/biomcp/internal/sources"
	"github.com/biomcp/biomcp/internal/transform"
	"github.com/biomcp/biomcp/pkg/ids"
)

var trialSectionNames = []string{"eligibility", "locations", "outcomes", "arms", "references"}

var trialSectionAliases = map[string]string{
	"location":  "locations",
	"outcome":   "outcomes",
	"arm":       "arms",
	"reference": "references",
}

// Server pages are bounded; the search loop stops after this many even when
// verifiers keep rejecting candidates.
const maxTrialSearchPages = 20

// GetTrial fetches one study from the selected registry. The ClinicalTrials.gov
// field projection is derived from the requested sections; NCI CTS always
// returns its full document.
func (s *Service) GetTrial(ctx context.Context, nctID string, sections []string, source domain.TrialSource) (*domain.Trial, error) {
	nctID = strings.ToUpper(strings.TrimSpace(nctID))
	if !ids.IsNCT(nctID) {
		return nil, domain.NewInvalidArgument(
			"NCT ID must be NCT followed by 8 digits. Example: biomcp get trial NCT04280705")
	}
	include, err := parseSections("trial", sections, trialSectionNames, trialSectionAliases)
	if err != nil {
		return nil, err
	}

	if source == domain.TrialSourceNCI {
		doc, err := s.src.NCICTS.Get(ctx, nctID)
		if err != nil {
			return nil, err
		}
		return transform.TrialFromNCI(doc, eligibilityInlineLimit), nil
	}

	study, err := s.src.ClinicalTrials.Get(ctx, nctID, include)
	if err != nil {
		return nil, err
	}
	return transform.TrialFromCtGov(study, eligibilityInlineLimit), nil
}

// SearchTrials dispatches to the selected registry. ClinicalTrials.gov is
// cursor-paginated: the loop walks pages, applies the facility-geo and
// eligibility post-verifiers, and accumulates rows until the page fills.
func (s *Service) SearchTrials(ctx context.Context, filters *domain.TrialSearchFilters, limit, offset int) (domain.SearchPage[domain.TrialSearchResult], error) {
	var page domain.SearchPage[domain.TrialSearchResult]
	if err := validateLimit(limit); err != nil {
		return page, err
	}
	if err := validateOffset(offset); err != nil {
		return page, err
	}
	if filters.NextPage != "" && offset > 0 {
		return page, domain.NewInvalidArgument("Use either --offset or --next-page, not both")
	}
	if err := query.ValidateGeo(filters.Lat, filters.Lon, filters.Distance); err != nil {
		return page, err
	}

	if filters.Source == domain.TrialSourceNCI {
		return s.searchTrialsNCI(ctx, filters, limit, offset)
	}
	return s.searchTrialsCtGov(ctx, filters, limit, offset)
}

func (s *Service) searchTrialsNCI(ctx context.Context, filters *domain.TrialSearchFilters, limit, offset int) (domain.SearchPage[domain.TrialSearchResult], error) {
	var page domain.SearchPage[domain.TrialSearchResult]
	switch {
	case filters.NextPage != "":
		return page, domain.NewInvalidArgument("--next-page is not supported with --source nci; use --offset")
	case filters.DateFrom != "" || filters.DateTo != "":
		return page, domain.NewInvalidArgument("--date-from/--date-to are not supported with --source nci")
	case filters.HasEligibilityVerifiers() && filters.Mutation == "" && filters.Biomarker == "":
		return page, domain.NewInvalidArgument("--prior-therapy and --progression-on are not supported with --source nci")
	}

	params := &sources.NCISearchParams{Size: limit, From: offset}
	if v := strings.TrimSpace(filters.Condition); v != "" {
		params.Diseases = []string{v}
	}
	if v := strings.TrimSpace(filters.Intervention); v != "" {
		params.Interventions = []string{v}
	}
	if v := strings.TrimSpace(filters.Biomarker); v != "" {
		params.Biomarkers = []string{v}
	}
	if v := strings.TrimSpace(filters.Mutation); v != "" {
		params.Biomarkers = append(params.Biomarkers, v)
	}
	params.SitesOrgName = strings.TrimSpace(filters.Facility)
	if filters.Status != "" {
		normalized, err := query.NormalizeStatus(filters.Status)
		if err != nil {
			return page, err
		}
		params.RecruitmentStatus = normalized
	}
	if filters.Phase != "" {
		normalized, err := query.NormalizePhase(filters.Phase)
		if err != nil {
			return page, err
		}
		params.Phase = nciPhase(normalized)
	}
	params.Latitude, params.Longitude, params.Distance = filters.Lat, filters.Lon, filters.Distance

	resp, err := s.src.NCICTS.Search(ctx, params)
	if err != nil {
		return page, err
	}
	rows := make([]domain.TrialSearchResult, 0, limit)
	for _, hit := range resp.Hits() {
		rows = append(rows, transform.TrialSearchRowFromNCI(hit))
		if len(rows) >= limit {
			break
		}
	}
	return domain.OffsetPage(rows, resp.Total), nil
}

// nciPhase maps the canonical ClinicalTrials.gov phase enum onto the NCI CTS
// roman-style values.
func nciPhase(canonical string) string {
	switch canonical {
	case "EARLY_PHASE1":
		return "I"
	case "PHASE1":
		return "I"
	case "PHASE2":
		return "II"
	case "PHASE3":
		return "III"
	case "PHASE4":
		return "IV"
	}
	return canonical
}

func (s *Service) searchTrialsCtGov(ctx context.Context, filters *domain.TrialSearchFilters, limit, offset int) (domain.SearchPage[domain.TrialSearchResult], error) {
	var page domain.SearchPage[domain.TrialSearchResult]

	params, explicitStatus, err := buildCtGovParams(filters)
	if err != nil {
		return page, err
	}
	if filters.NextPage != "" {
		token, err := query.ValidateNextPageToken(filters.NextPage)
		if err != nil {
			return page, err
		}
		params.PageToken = token
	}

	verifiersActive := filters.HasGeoVerifier() || filters.HasEligibilityVerifiers()
	needed := offset + limit
	pageSize := needed
	if verifiersActive {
		// Over-fetch: verifiers reject an unknown share of each page.
		pageSize = needed * 2
	}
	if pageSize > maxSearchLimit {
		pageSize = maxSearchLimit
	}
	params.PageSize = pageSize
	params.CountTotal = true

	var accepted []domain.TrialSearchResult
	var total *int
	nextToken := ""
	stoppedMidPage := false

	for fetched := 0; fetched < maxTrialSearchPages; fetched++ {
		resp, err := s.src.ClinicalTrials.Search(ctx, params)
		if err != nil {
			return page, err
		}
		// The server count does not reflect post-verification, so it is only
		// meaningful when no verifier runs.
		if total == nil && !verifiersActive {
			total = resp.TotalCount
		}

		candidates := make([]*sources.CtGovStudy, 0, len(resp.Studies))
		for i := range resp.Studies {
			candidates = append(candidates, &resp.Studies[i])
		}
		kept, err := s.verifyTrialCandidates(ctx, filters, candidates)
		if err != nil {
			return page, err
		}
		consumedAll := true
		for _, study := range kept {
			if len(accepted) >= needed {
				consumedAll = false
				break
			}
			accepted = append(accepted, transform.TrialSearchRowFromCtGov(study))
		}

		nextToken = resp.NextPageToken
		if len(accepted) >= needed {
			// Stopping before the server page is exhausted invalidates the
			// cursor for the caller.
			stoppedMidPage = !consumedAll
			break
		}
		if nextToken == "" {
			break
		}
		params.PageToken = nextToken
	}

	if !explicitStatus {
		query.SortTrialsByStatusPriority(accepted)
	}
	rows := sliceOffset(accepted, offset, limit)

	var next *string
	if nextToken != "" && !stoppedMidPage && len(accepted) >= needed {
		next = &nextToken
	}
	return domain.CursorPage(rows, total, next), nil
}

// buildCtGovParams converts the filter struct into /studies query parameters,
// normalizing enums and assembling the advanced ESSIE query term.
func buildCtGovParams(filters *domain.TrialSearchFilters) (*sources.CtGovSearchParams, bool, error) {
	params := &sources.CtGovSearchParams{
		Condition:    strings.TrimSpace(filters.Condition),
		Intervention: strings.TrimSpace(filters.Intervention),
		Facility:     strings.TrimSpace(filters.Facility),
	}
	params.Lat, params.Lon, params.DistanceMiles = filters.Lat, filters.Lon, filters.Distance

	explicitStatus := false
	if filters.Status != "" {
		normalized, err := query.NormalizeStatus(filters.Status)
		if err != nil {
			return nil, false, err
		}
		params.Status = normalized
		explicitStatus = true
	}

	var agg []string
	if filters.Sex != "" {
		normalized, err := query.NormalizeSex(filters.Sex)
		if err != nil {
			return nil, false, err
		}
		if normalized != "" {
			agg = append(agg, "sex:"+normalized)
		}
	}
	if filters.SponsorType != "" {
		normalized, err := query.NormalizeSponsorType(filters.SponsorType)
		if err != nil {
			return nil, false, err
		}
		agg = append(agg, "funderType:"+normalized)
	}
	params.AggFilters = strings.Join(agg, ",")

	var terms []string
	if v := strings.TrimSpace(filters.Term); v != "" {
		terms = append(terms, v)
	}
	if filters.Phase != "" {
		normalized, err := query.NormalizePhase(filters.Phase)
		if err != nil {
			return nil, false, err
		}
		terms = append(terms, "AREA[Phase]"+normalized)
	}
	if v := strings.TrimSpace(filters.Sponsor); v != "" {
		terms = append(terms, `AREA[LeadSponsorName]"`+query.EscapeESSIE(v)+`"`)
	}
	if v := strings.TrimSpace(filters.Mutation); v != "" {
		terms = append(terms, `AREA[EligibilityCriteria]"`+query.EscapeESSIE(v)+`"`)
	}
	if v := strings.TrimSpace(filters.Biomarker); v != "" {
		terms = append(terms, `AREA[EligibilityCriteria]"`+query.EscapeESSIE(v)+`"`)
	}
	if v := strings.TrimSpace(filters.StudyType); v != "" {
		terms = append(terms, `AREA[StudyType]"`+query.EscapeESSIE(v)+`"`)
	}
	if filters.ResultsAvailable {
		terms = append(terms, "AREA[ResultsFirstPostDate]RANGE[MIN,MAX]")
	}
	fragments, err := query.BuildESSIEFragments(filters.PriorTherapies, filters.ProgressionOn, filters.LineOfTherapy)
	if err != nil {
		return nil, false, err
	}
	terms = append(terms, fragments...)

	if filters.Age != nil {
		if *filters.Age < 0 || *filters.Age > 120 {
			return nil, false, domain.NewInvalidArgument("--age must be between 0 and 120")
		}
		terms = append(terms,
			fmt.Sprintf("AREA[MinimumAge]RANGE[MIN,%d years]", *filters.Age),
			fmt.Sprintf("AREA[MaximumAge]RANGE[%d years,MAX]", *filters.Age))
	}

	from, to := strings.TrimSpace(filters.DateFrom), strings.TrimSpace(filters.DateTo)
	if from != "" {
		if from, err = query.ValidateDate("--date-from", from); err != nil {
			return nil, false, err
		}
	}
	if to != "" {
		if to, err = query.ValidateDate("--date-to", to); err != nil {
			return nil, false, err
		}
	}
	if from != "" && to != "" && from > to {
		return nil, false, domain.NewInvalidArgument("--date-from must be on or before --date-to")
	}
	if from != "" || to != "" {
		lo, hi := from, to
		if lo == "" {
			lo = "MIN"
		}
		if hi == "" {
			hi = "MAX"
		}
		terms = append(terms, fmt.Sprintf("AREA[LastUpdatePostDate]RANGE[%s,%s]", lo, hi))
	}

	params.QueryTerm = strings.Join(terms, " AND ")
	return params, explicitStatus, nil
}

// verifyTrialCandidates applies the facility-geo and eligibility-inclusion
// post-verifiers with bounded concurrency, preserving candidate order.
// Candidates whose detail fetch fails are kept (fail open).
func (s *Service) verifyTrialCandidates(ctx context.Context, filters *domain.TrialSearchFilters, candidates []*sources.CtGovStudy) ([]*sources.CtGovStudy, error) {
	geo := filters.HasGeoVerifier()
	eligibility := filters.HasEligibilityVerifiers()
	if !geo && !eligibility {
		return candidates, nil
	}

	var sections []string
	if geo {
		sections = append(sections, "locations")
	}
	if eligibility {
		sections = append(sections, "eligibility")
	}
	keywords := eligibilityKeywords(filters)

	keep := make([]bool, len(candidates))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(verifierConcurrency)
	for i, candidate := range candidates {
		nctID := candidate.NCTID()
		if nctID == "" {
			continue
		}
		g.Go(func() error {
			detail, err := s.src.ClinicalTrials.Get(gctx, nctID, sections)
			if err != nil {
				s.log.WithError(err).WithField("nct_id", nctID).Warn("verifier detail fetch failed; keeping candidate")
				mu.Lock()
				keep[i] = true
				mu.Unlock()
				return nil
			}
			ok := true
			if geo {
				ok = verifyFacilityGeo(detail, filters)
			}
			if ok && eligibility {
				ok = verifyEligibilityKeywords(detail, keywords)
			}
			mu.Lock()
			keep[i] = ok
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := candidates[:0]
	for i, candidate := range candidates {
		if keep[i] {
			out = append(out, candidate)
		}
	}
	return out, nil
}

func eligibilityKeywords(filters *domain.TrialSearchFilters) []string {
	var out []string
	for _, v := range []string{filters.Mutation, filters.Biomarker, filters.PriorTherapies, filters.ProgressionOn} {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// verifyFacilityGeo requires at least one location that both name-matches the
// facility (case-insensitive, whitespace-normalized substring) and lies
// within the haversine distance of the origin.
func verifyFacilityGeo(study *sources.CtGovStudy, filters *domain.TrialSearchFilters) bool {
	want := query.NormalizeFacilityText(filters.Facility)
	for _, loc := range study.Locations() {
		if !strings.Contains(query.NormalizeFacilityText(loc.Facility), want) {
			continue
		}
		if loc.GeoPoint == nil || loc.GeoPoint.Lat == nil || loc.GeoPoint.Lon == nil {
			continue
		}
		miles := query.HaversineMiles(*filters.Lat, *filters.Lon, *loc.GeoPoint.Lat, *loc.GeoPoint.Lon)
		if miles <= *filters.Distance {
			return true
		}
	}
	return false
}

// verifyEligibilityKeywords checks each keyword against the inclusion and
// exclusion halves of the criteria text. Missing criteria fail open.
func verifyEligibilityKeywords(study *sources.CtGovStudy, keywords []string) bool {
	criteria := study.EligibilityCriteria()
	if strings.TrimSpace(criteria) == "" {
		return true
	}
	inclusion, exclusion := query.SplitEligibilitySections(criteria)
	for _, keyword := range keywords {
		if !query.EligibilityKeywordInInclusion(inclusion, exclusion, keyword) {
			return false
		}
	}
	return true
}
