package query

import (
	"fmt"
	"math"
	"regexp"
	"strings"
)

// limitToken detects an author-written LIMIT clause.
var limitToken = regexp.MustCompile(`(?i)\bLIMIT\b`)

// PageRequest asks for one bounded page of a query's result. A
// PageSize of zero or less disables pagination for the request.
type PageRequest struct {
	Page     int
	PageSize int
}

// PagePlan is the planner's decision for one statement. When Paginated
// is set, CountQuery computes the exact unpaginated row count and Query
// selects the requested slice; otherwise Query is the statement to run
// as-is. Source always holds the cleaned original statement, which the
// executor falls back to when counting fails.
type PagePlan struct {
	Paginated  bool
	CountQuery string
	Query      string
	Source     string
}

// Plan classifies sql and produces the page plan for req.
//
// Only read queries (leading keyword SELECT or WITH) are paginated.
// The slice query appends LIMIT/OFFSET directly unless the statement
// already carries its own LIMIT, in which case it is nested in a
// subquery so the author's bound stays in effect.
func Plan(sql string, req PageRequest) (PagePlan, error) {
	sql = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(sql), ";"))

	if !isReadQuery(sql) || req.PageSize <= 0 {
		return PagePlan{Query: sql, Source: sql}, nil
	}

	offset, err := pageOffset(req)
	if err != nil {
		return PagePlan{}, err
	}

	plan := PagePlan{
		Paginated:  true,
		CountQuery: fmt.Sprintf("SELECT COUNT(*) FROM (%s) AS count_subquery", sql),
		Source:     sql,
	}
	if limitToken.MatchString(sql) {
		plan.Query = fmt.Sprintf("SELECT * FROM (%s) AS paginated_subquery LIMIT %d OFFSET %d", sql, req.PageSize, offset)
	} else {
		plan.Query = fmt.Sprintf("%s LIMIT %d OFFSET %d", sql, req.PageSize, offset)
	}
	return plan, nil
}

func isReadQuery(sql string) bool {
	upper := strings.ToUpper(sql)
	return strings.HasPrefix(upper, "SELECT") || strings.HasPrefix(upper, "WITH")
}

// pageOffset computes page*size, rejecting negative pages and products
// that would overflow int64.
func pageOffset(req PageRequest) (int64, error) {
	if req.Page < 0 {
		return 0, fmt.Errorf("%w: page %d", ErrInvalidPage, req.Page)
	}
	page, size := int64(req.Page), int64(req.PageSize)
	if page > 0 && size > math.MaxInt64/page {
		return 0, fmt.Errorf("%w: page %d with page size %d overflows", ErrInvalidPage, req.Page, req.PageSize)
	}
	return page * size, nil
}
