package models

// Page is the paginated list envelope returned by list endpoints when the
// request carries a limit: {count, next, previous, results}. List endpoints
// without a limit return a flat JSON array instead.
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}
