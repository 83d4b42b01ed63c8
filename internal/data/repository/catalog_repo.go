package repository

import (
	"fmt"
	"strings"
)

// searchFilter builds an ILIKE filter over columns for a free-text search term.
// An empty term matches everything.
func searchFilter(search string, columns ...string) (string, []any) {
	search = strings.TrimSpace(search)
	if search == "" {
		return "TRUE", nil
	}

	clauses := make([]string, len(columns))
	for i, col := range columns {
		clauses[i] = fmt.Sprintf("%s ILIKE $1", col)
	}
	return "(" + strings.Join(clauses, " OR ") + ")", []any{"%" + search + "%"}
}

// withCondition narrows a filter built by searchFilter with a fixed condition.
func withCondition(filter, condition string) string {
	if condition == "" {
		return filter
	}
	return filter + " AND " + condition
}

// pageArgs appends LIMIT/OFFSET placeholders after the filter arguments.
func pageArgs(args []any, limit, offset int) (string, []any) {
	n := len(args)
	return fmt.Sprintf(" LIMIT $%d OFFSET $%d", n+1, n+2), append(args, limit, offset)
}
