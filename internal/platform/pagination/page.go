package pagination

import (
	"fmt"
	"net/url"
	"strconv"
)

// MaxLimit caps the page size clients may request.
const MaxLimit = 100

// Params embeds into huma input structs. A zero Limit disables paging.
type Params struct {
	Cursor string `query:"cursor" doc:"Opaque cursor from the previous page's Link header"`
	Limit  int    `query:"limit" doc:"Maximum items per page. Omit to get every item." minimum:"0" maximum:"100"`
}

// Paged reports whether the client asked for a page.
func (p Params) Paged() bool {
	return p.Limit > 0 || p.Cursor != ""
}

// Page is one slice of an ordered result set.
type Page[T any] struct {
	Items []T
	// Next is the cursor for the following page, empty on the last page.
	Next string
	// Link is the RFC 8288 header value pointing at the following page.
	Link string
}

// Apply cuts items, already in their final order, to the page p selects.
// key identifies an item and must be unique. path and query build the Link
// header; query is not modified.
func Apply[T any](items []T, p Params, kind string, key func(T) string, path string, query url.Values) (Page[T], error) {
	if !p.Paged() {
		return Page[T]{Items: items}, nil
	}
	limit := p.Limit
	if limit <= 0 || limit > MaxLimit {
		limit = MaxLimit
	}

	cur, err := DecodeCursor(p.Cursor, kind)
	if err != nil {
		return Page[T]{}, err
	}
	start := 0
	if cur.Key != "" {
		start = -1
		for i, item := range items {
			if key(item) == cur.Key {
				start = i + 1
				break
			}
		}
		if start < 0 {
			return Page[T]{}, ErrInvalidCursor
		}
	}

	end := min(start+limit, len(items))
	page := Page[T]{Items: items[start:end]}
	if end < len(items) {
		page.Next = Cursor{Kind: kind, Key: key(items[end-1])}.Encode()
		page.Link = nextLink(path, query, page.Next, limit)
	}
	return page, nil
}

func nextLink(path string, query url.Values, cursor string, limit int) string {
	q := make(url.Values, len(query)+2)
	for k, vals := range query {
		q[k] = append([]string(nil), vals...)
	}
	q.Set("cursor", cursor)
	q.Set("limit", strconv.Itoa(limit))
	return fmt.Sprintf("<%s?%s>; rel=\"next\"", path, q.Encode())
}
