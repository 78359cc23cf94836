package utils

import (
	"math"
	"net/http"
	"strconv"
	"strings"
)

// Pagination is a 1-based page request.
type Pagination struct {
	Page  int64
	Limit int64
}

func (p Pagination) Skip() int64 {
	return (p.Page - 1) * p.Limit
}

// Pages returns how many pages of p.Limit cover total items.
func (p Pagination) Pages(total int64) int64 {
	if p.Limit <= 0 {
		return 0
	}
	return (total + p.Limit - 1) / p.Limit
}

// ParsePagination reads ?page= and ?limit=, falling back to page 1 and
// defLimit, and capping limit at maxLimit.
func ParsePagination(r *http.Request, defLimit, maxLimit int64) Pagination {
	q := r.URL.Query()

	page, _ := strconv.ParseInt(q.Get("page"), 10, 64)
	if page < 1 {
		page = 1
	}

	limit, _ := strconv.ParseInt(q.Get("limit"), 10, 64)
	if limit < 1 {
		limit = defLimit
	}
	if maxLimit > 0 && limit > maxLimit {
		limit = maxLimit
	}
	if limit > 0 && page > math.MaxInt64/limit {
		page = math.MaxInt64 / limit
	}

	return Pagination{Page: page, Limit: limit}
}

// ParseBool reads an optional boolean query parameter. Missing or
// unparseable values yield nil.
func ParseBool(r *http.Request, key string) *bool {
	b, err := strconv.ParseBool(r.URL.Query().Get(key))
	if err != nil {
		return nil
	}
	return &b
}

func ContainsIgnoreCase(str, substr string) bool {
	return strings.Contains(strings.ToLower(str), strings.ToLower(substr))
}
