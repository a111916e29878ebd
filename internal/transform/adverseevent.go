package transform

import (
	"strings"

	"github.com/tidwall/gjson"

	"github.com/biomcp/biomcp/internal/domain"
)

// ReactionCountsFromOpenFDA maps one openFDA count aggregation into term
// rows. The feed already orders by descending count.
func ReactionCountsFromOpenFDA(result gjson.Result, limit int) []domain.ReactionCount {
	var out []domain.ReactionCount
	for _, row := range result.Get("results").Array() {
		term := strings.TrimSpace(row.Get("term").String())
		if term == "" {
			continue
		}
		out = append(out, domain.ReactionCount{Term: term, Count: row.Get("count").Int()})
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

// AdverseEventSearchRowsFromOpenFDA projects FAERS case reports into search
// rows: one row per reported reaction term.
func AdverseEventSearchRowsFromOpenFDA(result gjson.Result, drug string, limit int) []domain.AdverseEventSearchResult {
	var out []domain.AdverseEventSearchResult
	for _, report := range result.Get("results").Array() {
		var serious *bool
		if v := report.Get("serious"); v.Exists() {
			flag := v.String() == "1"
			serious = &flag
		}
		receiveDate := report.Get("receivedate").String()
		country := report.Get("occurcountry").String()
		reactions := report.Get("patient.reaction.#.reactionmeddrapt").Array()
		if len(reactions) == 0 {
			out = append(out, domain.AdverseEventSearchResult{
				Drug: drug, Serious: serious, ReceiveDate: receiveDate, Country: country,
			})
		}
		for _, reaction := range reactions {
			out = append(out, domain.AdverseEventSearchResult{
				Drug:        drug,
				Reaction:    reaction.String(),
				Serious:     serious,
				ReceiveDate: receiveDate,
				Country:     country,
			})
			if limit > 0 && len(out) >= limit {
				return out
			}
		}
		if limit > 0 && len(out) >= limit {
			return out
		}
	}
	return out
}
