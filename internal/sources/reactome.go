package sources

import (
	"context"
	"net/url"
	"strings"

	"github.com/biomcp/biomcp/internal/domain"
	"github.com/biomcp/biomcp/internal/httpx"
)

const reactomeAPI = "reactome"

// ReactomeClient queries the Reactome ContentService.
type ReactomeClient struct {
	h    *httpx.Client
	base string
	ttl  TTLs
}

// ReactomeHit is one pathway search row.
type ReactomeHit struct {
	ID      string
	Name    string
	Species string
}

// ReactomeRecord is the pathway detail shape.
type ReactomeRecord struct {
	StID        string `json:"stId"`
	DisplayName string `json:"displayName"`
	SpeciesName string `json:"speciesName"`
	IsInDisease bool   `json:"isInDisease"`
	HasDiagram  bool   `json:"hasDiagram"`
	Summation   []struct {
		Text string `json:"text"`
	} `json:"summation"`
}

// Summary returns the first summation text, if any.
func (r *ReactomeRecord) Summary() string {
	if len(r.Summation) > 0 {
		return strings.TrimSpace(r.Summation[0].Text)
	}
	return ""
}

type reactomeSearchResponse struct {
	Results []struct {
		Entries []struct {
			StID    string      `json:"stId"`
			Name    string      `json:"name"`
			Species FlexStrings `json:"species"`
		} `json:"entries"`
	} `json:"results"`
	FoundEntries *int `json:"foundEntries"`
}

// stripHighlights removes the search-result emphasis tags Reactome embeds in
// entry names.
func stripHighlights(s string) string {
	return strings.NewReplacer("<span class=\"highlighting\" >", "", "</span>", "").Replace(s)
}

// SearchPathways runs a human-pathway search. The returned total reflects
// the server-side match count when provided.
func (c *ReactomeClient) SearchPathways(ctx context.Context, queryTerm string, limit int) ([]ReactomeHit, *int, error) {
	q := url.Values{}
	q.Set("query", queryTerm)
	q.Set("species", "Homo sapiens")
	q.Set("types", "Pathway")
	q.Set("cluster", "true")
	q.Set("rows", itoa(limit))

	var resp reactomeSearchResponse
	if err := c.h.GetJSON(ctx, reactomeAPI, c.base+"/search/query", q, c.ttl.Search, &resp); err != nil {
		return nil, nil, err
	}

	var hits []ReactomeHit
	for _, result := range resp.Results {
		for _, entry := range result.Entries {
			if len(hits) >= limit {
				break
			}
			species := ""
			if len(entry.Species) > 0 {
				species = entry.Species[0]
			}
			hits = append(hits, ReactomeHit{
				ID:      strings.TrimSpace(entry.StID),
				Name:    strings.TrimSpace(stripHighlights(entry.Name)),
				Species: species,
			})
		}
	}
	return hits, resp.FoundEntries, nil
}

// TopLevelPathways lists the human top-level pathway hierarchy roots.
func (c *ReactomeClient) TopLevelPathways(ctx context.Context, limit int) ([]ReactomeHit, error) {
	var rows []struct {
		StID        string `json:"stId"`
		DisplayName string `json:"displayName"`
		SpeciesName string `json:"speciesName"`
	}
	if err := c.h.GetJSON(ctx, reactomeAPI, c.base+"/data/pathways/top/9606", nil, c.ttl.Annotation, &rows); err != nil {
		return nil, err
	}

	var hits []ReactomeHit
	for _, row := range rows {
		if len(hits) >= limit {
			break
		}
		hits = append(hits, ReactomeHit{
			ID:      strings.TrimSpace(row.StID),
			Name:    strings.TrimSpace(row.DisplayName),
			Species: strings.TrimSpace(row.SpeciesName),
		})
	}
	return hits, nil
}

// GetPathway fetches one pathway by stable ID.
func (c *ReactomeClient) GetPathway(ctx context.Context, stID string) (*ReactomeRecord, error) {
	stID = strings.TrimSpace(stID)

	var record ReactomeRecord
	status, err := c.h.GetJSONStatus(ctx, reactomeAPI,
		c.base+"/data/query/"+url.PathEscape(stID), nil, c.ttl.Annotation, &record)
	if status == 404 {
		return nil, domain.NewNotFound("pathway", stID,
			"Try searching: biomcp search pathway -q "+stID)
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Participants lists the display names of a pathway's participating physical
// entities, capped at limit lines.
func (c *ReactomeClient) Participants(ctx context.Context, stID string, limit int) ([]string, error) {
	var rows []struct {
		DisplayName string `json:"displayName"`
	}
	err := c.h.GetJSON(ctx, reactomeAPI,
		c.base+"/data/participants/"+url.PathEscape(strings.TrimSpace(stID))+"/participatingPhysicalEntities",
		nil, c.ttl.Annotation, &rows)
	if err != nil {
		return nil, err
	}

	var lines []string
	for _, row := range rows {
		if len(lines) >= limit {
			break
		}
		if v := strings.TrimSpace(row.DisplayName); v != "" {
			lines = append(lines, v)
		}
	}
	return lines, nil
}

// ContainedEvents lists the display names of a pathway's contained events.
func (c *ReactomeClient) ContainedEvents(ctx context.Context, stID string, limit int) ([]string, error) {
	var rows []struct {
		StID        string `json:"stId"`
		DisplayName string `json:"displayName"`
	}
	err := c.h.GetJSON(ctx, reactomeAPI,
		c.base+"/data/pathway/"+url.PathEscape(strings.TrimSpace(stID))+"/containedEvents",
		nil, c.ttl.Annotation, &rows)
	if err != nil {
		return nil, err
	}

	var events []string
	for _, row := range rows {
		if len(events) >= limit {
			break
		}
		name := strings.TrimSpace(row.DisplayName)
		if name == "" {
			continue
		}
		if id := strings.TrimSpace(row.StID); id != "" {
			events = append(events, name+" ("+id+")")
		} else {
			events = append(events, name)
		}
	}
	return events, nil
}
