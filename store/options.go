package store

import (
	"net/url"
	"strconv"
)

// ListOptions describes one fetch: filter criteria, ordering and an optional
// pagination window. Empty filter values are skipped when building the query.
type ListOptions struct {
	Filters  map[string]string
	Ordering string
	Limit    int
	Offset   int
}

// Query builds the URL query for a list request
func (o ListOptions) Query() url.Values {
	query := url.Values{}
	for key, value := range o.Filters {
		if key == "" || value == "" {
			continue
		}
		query.Set(key, value)
	}
	if o.Ordering != "" {
		query.Set("ordering", o.Ordering)
	}
	if o.Limit > 0 {
		query.Set("limit", strconv.Itoa(o.Limit))
		if o.Offset > 0 {
			query.Set("offset", strconv.Itoa(o.Offset))
		}
	}
	return query
}

// Pagination mirrors the server's envelope state after a paginated fetch.
// It is nil on a store whose last fetch returned a flat array.
type Pagination struct {
	Count    int
	Next     *string
	Previous *string
}
