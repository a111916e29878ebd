package entity

import (
	"context"
	"sort"
	"strings"

	"github.com/biomcp/biomcp/internal/domain"
	"github.com/biomcp/biomcp/internal/sources"
)

// SearchOrganizations aggregates NCI CTS trial sites into per-organization
// rows with trial counts. Name and city filters are case-insensitive
// substrings; each trial counts once per organization.
func (s *Service) SearchOrganizations(ctx context.Context, filters *domain.OrganizationSearchFilters, limit, offset int) (domain.SearchPage[domain.OrganizationSearchResult], error) {
	var page domain.SearchPage[domain.OrganizationSearchResult]
	if err := validateLimit(limit); err != nil {
		return page, err
	}
	if err := validateOffset(offset); err != nil {
		return page, err
	}
	name := strings.TrimSpace(filters.Name)
	if name == "" {
		return page, domain.NewInvalidArgument(`--name is required. Example: biomcp search organization -n "MD Anderson"`)
	}
	city := strings.ToLower(strings.TrimSpace(filters.City))

	resp, err := s.src.NCICTS.Search(ctx, &sources.NCISearchParams{
		SitesOrgName: name,
		Size:         maxSearchLimit,
	})
	if err != nil {
		return page, err
	}

	nameFold := strings.ToLower(name)
	byOrg := map[string]*domain.OrganizationSearchResult{}
	for _, hit := range resp.Hits() {
		seenInTrial := map[string]bool{}
		for _, site := range hit.Get("sites").Array() {
			orgName := strings.TrimSpace(site.Get("org_name").String())
			if orgName == "" || !strings.Contains(strings.ToLower(orgName), nameFold) {
				continue
			}
			orgCity := strings.TrimSpace(site.Get("org_city").String())
			if city != "" && !strings.Contains(strings.ToLower(orgCity), city) {
				continue
			}
			key := strings.ToLower(orgName)
			if seenInTrial[key] {
				continue
			}
			seenInTrial[key] = true
			row, ok := byOrg[key]
			if !ok {
				row = &domain.OrganizationSearchResult{
					Name:    orgName,
					City:    orgCity,
					Country: strings.TrimSpace(site.Get("org_country").String()),
				}
				byOrg[key] = row
			}
			row.TrialCount++
		}
	}

	rows := make([]domain.OrganizationSearchResult, 0, len(byOrg))
	for _, row := range byOrg {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].TrialCount != rows[j].TrialCount {
			return rows[i].TrialCount > rows[j].TrialCount
		}
		return rows[i].Name < rows[j].Name
	})

	total := len(rows)
	return domain.OffsetPage(sliceOffset(rows, offset, limit), &total), nil
}

// SearchInterventions lists distinct intervention names from matching trials
// on ClinicalTrials.gov, each with the trial it first appeared in.
func (s *Service) SearchInterventions(ctx context.Context, filters *domain.InterventionSearchFilters, limit, offset int) (domain.SearchPage[domain.InterventionSearchResult], error) {
	var page domain.SearchPage[domain.InterventionSearchResult]
	if err := validateLimit(limit); err != nil {
		return page, err
	}
	if err := validateOffset(offset); err != nil {
		return page, err
	}
	name := strings.TrimSpace(filters.Name)
	condition := strings.TrimSpace(filters.Condition)
	if name == "" && condition == "" {
		return page, domain.NewInvalidArgument("Either --name or --condition is required. Example: biomcp search intervention -n pembrolizumab")
	}

	resp, err := s.src.ClinicalTrials.Search(ctx, &sources.CtGovSearchParams{
		Intervention: name,
		Condition:    condition,
		PageSize:     maxSearchLimit,
	})
	if err != nil {
		return page, err
	}

	nameFold := strings.ToLower(name)
	typeFold := strings.ToLower(strings.TrimSpace(filters.Type))
	seen := map[string]bool{}
	var rows []domain.InterventionSearchResult
	for i := range resp.Studies {
		study := &resp.Studies[i]
		if study.ProtocolSection == nil || study.ProtocolSection.ArmsInterventionsModule == nil {
			continue
		}
		var firstCondition string
		if m := study.ProtocolSection.ConditionsModule; m != nil && len(m.Conditions) > 0 {
			firstCondition = m.Conditions[0]
		}
		for _, intervention := range study.ProtocolSection.ArmsInterventionsModule.Interventions {
			iname := strings.TrimSpace(intervention.Name)
			if iname == "" || seen[strings.ToLower(iname)] {
				continue
			}
			if nameFold != "" && !strings.Contains(strings.ToLower(iname), nameFold) {
				continue
			}
			if typeFold != "" && !strings.EqualFold(intervention.InterventionType, typeFold) {
				continue
			}
			seen[strings.ToLower(iname)] = true
			rows = append(rows, domain.InterventionSearchResult{
				Name:      iname,
				Type:      intervention.InterventionType,
				NCTID:     study.NCTID(),
				Condition: firstCondition,
			})
		}
	}

	total := len(rows)
	return domain.OffsetPage(sliceOffset(rows, offset, limit), &total), nil
}

// SearchBiomarkers lists trial biomarker mentions from the NCI CTS registry,
// one row per trial whose biomarker list matches the name.
func (s *Service) SearchBiomarkers(ctx context.Context, filters *domain.BiomarkerSearchFilters, limit, offset int) (domain.SearchPage[domain.BiomarkerSearchResult], error) {
	var page domain.SearchPage[domain.BiomarkerSearchResult]
	if err := validateLimit(limit); err != nil {
		return page, err
	}
	if err := validateOffset(offset); err != nil {
		return page, err
	}
	name := strings.TrimSpace(filters.Name)
	if name == "" {
		return page, domain.NewInvalidArgument("--name is required. Example: biomcp search biomarker -n \"BRAF V600E\"")
	}

	resp, err := s.src.NCICTS.Search(ctx, &sources.NCISearchParams{
		Biomarkers: []string{name},
		Diseases:   []string{strings.TrimSpace(filters.Condition)},
		Size:       maxSearchLimit,
	})
	if err != nil {
		return page, err
	}

	nameFold := strings.ToLower(name)
	var rows []domain.BiomarkerSearchResult
	for _, hit := range resp.Hits() {
		matched := ""
		for _, biomarker := range hit.Get("biomarkers").Array() {
			bname := strings.TrimSpace(biomarker.Get("name").String())
			if bname != "" && strings.Contains(strings.ToLower(bname), nameFold) {
				matched = bname
				break
			}
		}
		if matched == "" {
			continue
		}
		rows = append(rows, domain.BiomarkerSearchResult{
			Name:   matched,
			NCTID:  hit.Get("nct_id").String(),
			Title:  strings.TrimSpace(hit.Get("brief_title").String()),
			Status: hit.Get("current_trial_status").String(),
		})
	}

	total := len(rows)
	return domain.OffsetPage(sliceOffset(rows, offset, limit), &total), nil
}
