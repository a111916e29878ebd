package domain

// PaginationMeta is attached to every search response. Exactly one pagination
// mode is in play per source: offset (client slices) or cursor (opaque token
// passed verbatim to the next request).
type PaginationMeta struct {
	Offset        int     `json:"offset"`
	Limit         int     `json:"limit"`
	Returned      int     `json:"returned"`
	Total         *int    `json:"total,omitempty"`
	HasMore       bool    `json:"has_more"`
	NextPageToken *string `json:"next_page_token,omitempty"`
}

// SearchPage is one page of search results plus the raw pagination facts the
// source exposed. Meta converts it into user-facing PaginationMeta.
type SearchPage[T any] struct {
	Results       []T
	Total         *int
	NextPageToken *string
}

// OffsetPage builds a page for an offset-paginated source.
func OffsetPage[T any](results []T, total *int) SearchPage[T] {
	return SearchPage[T]{Results: results, Total: total}
}

// CursorPage builds a page for a cursor-paginated source.
func CursorPage[T any](results []T, total *int, next *string) SearchPage[T] {
	return SearchPage[T]{Results: results, Total: total, NextPageToken: next}
}

// Meta derives pagination metadata for the request that produced this page.
func (p SearchPage[T]) Meta(offset, limit int) PaginationMeta {
	returned := len(p.Results)
	meta := PaginationMeta{
		Offset:        offset,
		Limit:         limit,
		Returned:      returned,
		Total:         p.Total,
		NextPageToken: p.NextPageToken,
	}
	switch {
	case p.NextPageToken != nil && *p.NextPageToken != "":
		meta.HasMore = true
	case p.Total != nil:
		meta.HasMore = offset+returned < *p.Total
	default:
		meta.HasMore = returned == limit && limit > 0
	}
	return meta
}

// IntPtr is a convenience for optional totals.
func IntPtr(v int) *int { return &v }

// StrPtr is a convenience for optional tokens.
func StrPtr(v string) *string { return &v }
