package automate

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const (
	// DefaultPageSize is used when a query does not set one.
	DefaultPageSize = 25

	// MaxPageSize is the largest page size callers should request.
	MaxPageSize = 1000

	// fetchAllPageSize is the page size used when walking every page.
	fetchAllPageSize = 1000
)

// ListQuery holds the parameters of one list request.
//
// Condition is passed to the server verbatim. The remote filter grammar has
// two limitations callers must work around:
//   - relational comparisons on timestamp fields (LastContact > '...') are
//     rejected with a server error, so date filtering has to happen after
//     retrieval;
//   - some fields that are returned by the API are not filterable and are
//     rejected with a 400.
type ListQuery struct {
	Condition string
	PageSize  int
	Page      int
	OrderBy   string

	// Fields requests server-side projection. Each name is sent as its own
	// includedFields parameter.
	Fields []string
}

// Values encodes the query as URL parameters.
func (q ListQuery) Values() url.Values {
	pageSize := q.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	page := q.Page
	if page <= 0 {
		page = 1
	}

	v := url.Values{}
	v.Set("pageSize", strconv.Itoa(pageSize))
	v.Set("page", strconv.Itoa(page))
	if q.Condition != "" {
		v.Set("condition", q.Condition)
	}
	if q.OrderBy != "" {
		v.Set("orderBy", q.OrderBy)
	}
	for _, f := range q.Fields {
		v.Add("includedFields", f)
	}
	return v
}

// fetchAllPages walks every page of path and returns the records in order.
// A page shorter than the requested size is taken as the last one; there is
// no upper bound on the number of pages.
func (c *Client) fetchAllPages(ctx context.Context, op, path, condition string, fields []string) ([]Record, error) {
	all := []Record{}

	for page := 1; ; page++ {
		records, err := c.list(ctx, op, path, ListQuery{
			Condition: condition,
			PageSize:  fetchAllPageSize,
			Page:      page,
			Fields:    fields,
		})
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page, err)
		}

		all = append(all, records...)

		if len(records) < fetchAllPageSize {
			c.logger.Debug("fetched all pages",
				"operation", op,
				"pages", page,
				"records", len(all),
			)
			return all, nil
		}
	}
}

// Quote renders s as a single-quoted condition literal.
func Quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// Equals renders an equality predicate. Strings are quoted, everything else
// is formatted as-is.
func Equals(field string, value any) string {
	switch v := value.(type) {
	case string:
		return field + "=" + Quote(v)
	default:
		return fmt.Sprintf("%s=%v", field, v)
	}
}

// Like renders a substring predicate.
func Like(field, substr string) string {
	return field + " like " + Quote("%"+substr+"%")
}

// And joins the non-empty predicates with "and".
func And(conditions ...string) string {
	parts := make([]string, 0, len(conditions))
	for _, c := range conditions {
		if c = strings.TrimSpace(c); c != "" {
			parts = append(parts, c)
		}
	}
	if len(parts) <= 1 {
		return strings.Join(parts, "")
	}
	return "(" + strings.Join(parts, ") and (") + ")"
}
