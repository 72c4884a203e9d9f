package utils

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// ListQuery is the parsed query of a list endpoint: exact-match column
// filters, an optional ordering column and an optional pagination window.
// Paginated is true only when the request carried a limit, which is what
// switches the response from a flat array to the count/next/previous/results
// envelope.
type ListQuery struct {
	Filters   map[string]string
	Ordering  string
	Limit     int
	Offset    int
	Paginated bool
}

// reservedParams are query keys that are never treated as column filters
var reservedParams = map[string]bool{
	"ordering": true,
	"limit":    true,
	"offset":   true,
}

// ParseListQuery extracts filters, ordering and pagination from the request
// query. Only keys in allowedFilters become filters; empty values are
// skipped. Ordering accepts a leading "-" for descending and is ignored
// unless the column is in allowedFilters.
func ParseListQuery(c *gin.Context, allowedFilters map[string]bool) ListQuery {
	parsed := ListQuery{Filters: map[string]string{}}

	for key, values := range c.Request.URL.Query() {
		if reservedParams[key] || len(values) == 0 || values[0] == "" {
			continue
		}
		if allowedFilters[key] {
			parsed.Filters[key] = values[0]
		}
	}

	if ordering := c.Query("ordering"); ordering != "" {
		column := strings.TrimPrefix(ordering, "-")
		if allowedFilters[column] || column == "id" || column == "created_at" || column == "updated_at" {
			parsed.Ordering = ordering
		}
	}

	if limitParam := c.Query("limit"); limitParam != "" {
		if limit, err := strconv.Atoi(limitParam); err == nil && limit > 0 {
			parsed.Limit = limit
			parsed.Paginated = true
		}
	}
	if offsetParam := c.Query("offset"); offsetParam != "" {
		if offset, err := strconv.Atoi(offsetParam); err == nil && offset > 0 {
			parsed.Offset = offset
		}
	}

	return parsed
}

// OrderClause converts the ordering value into a SQL ORDER BY fragment
func (q ListQuery) OrderClause() string {
	if q.Ordering == "" {
		return "id"
	}
	if strings.HasPrefix(q.Ordering, "-") {
		return strings.TrimPrefix(q.Ordering, "-") + " DESC"
	}
	return q.Ordering
}
