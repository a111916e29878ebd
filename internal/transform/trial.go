// Package transform holds the pure conversion functions from upstream
// payloads to domain records. Nothing here performs I/O.
package transform

import (
	"strings"

	"github.com/tidwall/gjson"

	"github.com/biomcp/biomcp/internal/domain"
	"github.com/biomcp/biomcp/internal/query"
	"github.com/biomcp/biomcp/internal/sources"
)

// TrialSearchRowFromCtGov projects a study into the search row shape.
func TrialSearchRowFromCtGov(study *sources.CtGovStudy) domain.TrialSearchResult {
	out := domain.TrialSearchResult{NCTID: study.NCTID()}
	ps := study.ProtocolSection
	if ps == nil {
		return out
	}
	if ps.IdentificationModule != nil {
		out.Title = strings.TrimSpace(ps.IdentificationModule.BriefTitle)
	}
	if ps.StatusModule != nil {
		out.Status = ps.StatusModule.OverallStatus
		if ps.StatusModule.StartDateStruct != nil {
			out.StartDate = ps.StatusModule.StartDateStruct.Date
		}
	}
	if ps.DesignModule != nil {
		out.Phases = ps.DesignModule.Phases
		out.StudyType = ps.DesignModule.StudyType
		if ps.DesignModule.EnrollmentInfo != nil {
			out.Enrollment = ps.DesignModule.EnrollmentInfo.Count
		}
	}
	if ps.ConditionsModule != nil {
		out.Conditions = ps.ConditionsModule.Conditions
	}
	if ps.ArmsInterventionsModule != nil {
		for _, iv := range ps.ArmsInterventionsModule.Interventions {
			if name := strings.TrimSpace(iv.Name); name != "" {
				out.Interventions = append(out.Interventions, name)
			}
		}
	}
	if ps.SponsorCollaboratorsModule != nil && ps.SponsorCollaboratorsModule.LeadSponsor != nil {
		out.Sponsor = ps.SponsorCollaboratorsModule.LeadSponsor.Name
	}
	return out
}

// TrialFromCtGov builds the rich trial record. Section content (eligibility,
// locations, outcomes, arms, references) appears only when the study's field
// projection carried it.
func TrialFromCtGov(study *sources.CtGovStudy, eligibilityLimit int) *domain.Trial {
	row := TrialSearchRowFromCtGov(study)
	out := &domain.Trial{
		NCTID:         row.NCTID,
		Title:         row.Title,
		Status:        row.Status,
		Phases:        row.Phases,
		StudyType:     row.StudyType,
		Conditions:    row.Conditions,
		Interventions: row.Interventions,
		Sponsor:       row.Sponsor,
		Enrollment:    row.Enrollment,
		StartDate:     row.StartDate,
	}

	ps := study.ProtocolSection
	if ps == nil {
		return out
	}
	if ps.DescriptionModule != nil {
		out.BriefSummary = strings.TrimSpace(ps.DescriptionModule.BriefSummary)
	}
	if ps.StatusModule != nil && ps.StatusModule.CompletionDateStruct != nil {
		out.CompletionDate = ps.StatusModule.CompletionDateStruct.Date
	}
	if ps.EligibilityModule != nil {
		out.MinimumAge = ps.EligibilityModule.MinimumAge
		out.MaximumAge = ps.EligibilityModule.MaximumAge
		criteria := strings.TrimSpace(ps.EligibilityModule.EligibilityCriteria)
		if eligibilityLimit > 0 {
			criteria = query.TruncateInlineText(criteria, eligibilityLimit)
		}
		out.Eligibility = criteria
	}
	for _, loc := range study.Locations() {
		entry := domain.TrialLocation{
			Facility: loc.Facility,
			Status:   loc.Status,
			City:     loc.City,
			State:    loc.State,
			Zip:      loc.Zip,
			Country:  loc.Country,
		}
		if loc.GeoPoint != nil {
			entry.Lat = loc.GeoPoint.Lat
			entry.Lon = loc.GeoPoint.Lon
		}
		out.Locations = append(out.Locations, entry)
	}
	if ps.OutcomesModule != nil {
		for _, o := range ps.OutcomesModule.PrimaryOutcomes {
			out.Outcomes = append(out.Outcomes, domain.TrialOutcome{
				Kind: "primary", Measure: o.Measure, Description: o.Description, TimeFrame: o.TimeFrame,
			})
		}
		for _, o := range ps.OutcomesModule.SecondaryOutcomes {
			out.Outcomes = append(out.Outcomes, domain.TrialOutcome{
				Kind: "secondary", Measure: o.Measure, Description: o.Description, TimeFrame: o.TimeFrame,
			})
		}
	}
	if ps.ArmsInterventionsModule != nil {
		for _, arm := range ps.ArmsInterventionsModule.ArmGroups {
			out.Arms = append(out.Arms, domain.TrialArm{
				Label: arm.Label, Type: arm.ArmGroupType, Description: arm.Description,
			})
		}
	}
	if ps.ReferencesModule != nil {
		// A requested references section always yields a list, even when the
		// study cites nothing.
		out.References = []domain.TrialRef{}
		for _, ref := range ps.ReferencesModule.References {
			out.References = append(out.References, domain.TrialRef{
				PMID: ref.PMID, Type: ref.ReferenceType, Citation: ref.Citation,
			})
		}
	}
	return out
}

// TrialSearchRowFromNCI projects one NCI CTS row.
func TrialSearchRowFromNCI(hit gjson.Result) domain.TrialSearchResult {
	out := domain.TrialSearchResult{
		NCTID:     hit.Get("nct_id").String(),
		Title:     strings.TrimSpace(hit.Get("brief_title").String()),
		Status:    hit.Get("current_trial_status").String(),
		StudyType: hit.Get("primary_purpose").String(),
		StartDate: hit.Get("start_date").String(),
	}
	if phase := hit.Get("phase").String(); phase != "" {
		out.Phases = []string{phase}
	}
	for _, d := range hit.Get("diseases.#.name").Array() {
		if name := strings.TrimSpace(d.String()); name != "" {
			out.Conditions = append(out.Conditions, name)
		}
	}
	for _, arm := range hit.Get("arms").Array() {
		for _, iv := range arm.Get("interventions.#.name").Array() {
			if name := strings.TrimSpace(iv.String()); name != "" {
				out.Interventions = append(out.Interventions, name)
			}
		}
	}
	out.Sponsor = hit.Get("lead_org").String()
	return out
}

// TrialFromNCI builds the rich trial record from one NCI CTS document.
func TrialFromNCI(doc gjson.Result, eligibilityLimit int) *domain.Trial {
	row := TrialSearchRowFromNCI(doc)
	out := &domain.Trial{
		NCTID:         row.NCTID,
		Title:         row.Title,
		Status:        row.Status,
		Phases:        row.Phases,
		StudyType:     row.StudyType,
		Conditions:    row.Conditions,
		Interventions: row.Interventions,
		Sponsor:       row.Sponsor,
		StartDate:     row.StartDate,
		BriefSummary:  strings.TrimSpace(doc.Get("brief_summary").String()),
	}
	var criteria []string
	for _, part := range doc.Get("eligibility.unstructured.#.description").Array() {
		if text := strings.TrimSpace(part.String()); text != "" {
			criteria = append(criteria, text)
		}
	}
	if len(criteria) > 0 {
		out.Eligibility = strings.Join(criteria, "\n")
	} else if text := strings.TrimSpace(doc.Get("eligibility").String()); text != "" {
		out.Eligibility = text
	}
	if eligibilityLimit > 0 && out.Eligibility != "" {
		out.Eligibility = query.TruncateInlineText(out.Eligibility, eligibilityLimit)
	}
	for _, site := range doc.Get("sites").Array() {
		entry := domain.TrialLocation{
			Facility: site.Get("org_name").String(),
			Status:   site.Get("recruitment_status").String(),
			City:     site.Get("org_city").String(),
			State:    site.Get("org_state_or_province").String(),
			Zip:      site.Get("org_postal_code").String(),
			Country:  site.Get("org_country").String(),
		}
		if lat := site.Get("org_coordinates.lat"); lat.Exists() {
			v := lat.Float()
			entry.Lat = &v
		}
		if lon := site.Get("org_coordinates.lon"); lon.Exists() {
			v := lon.Float()
			entry.Lon = &v
		}
		out.Locations = append(out.Locations, entry)
	}
	return out
}
