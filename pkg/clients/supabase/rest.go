package supabase

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
)

// RestClient talks to the PostgREST rows API of a project.
type RestClient struct {
	httpClient *resty.Client
	tokens     TokenSource
}

// NewRestClient builds a rows client. A nil token source falls back to the anon key.
func NewRestClient(baseURL, anonKey string, tokens TokenSource) *RestClient {
	if tokens == nil {
		tokens = staticToken(anonKey)
	}
	return &RestClient{
		httpClient: newHTTPClient(baseURL, restPath, anonKey),
		tokens:     tokens,
	}
}

// From starts a query against a table.
func (c *RestClient) From(table string) *Query {
	return &Query{client: c, table: table, params: url.Values{}}
}

// Query is a chainable filter/order/limit builder for a single table.
type Query struct {
	client  *RestClient
	table   string
	params  url.Values
	filters int
	orders  []string
}

// Select sets the projected columns, including joined column paths
// such as "*, inventory_categories(category_name)".
func (q *Query) Select(columns string) *Query {
	q.params.Set("select", columns)
	return q
}

// Eq filters rows where column equals value.
func (q *Query) Eq(column string, value any) *Query {
	q.params.Add(column, "eq."+formatValue(value))
	q.filters++
	return q
}

// Order appends an ordering clause.
func (q *Query) Order(column string, ascending bool) *Query {
	dir := "desc"
	if ascending {
		dir = "asc"
	}
	q.orders = append(q.orders, column+"."+dir)
	q.params.Set("order", strings.Join(q.orders, ","))
	return q
}

// Limit caps the number of returned rows.
func (q *Query) Limit(n int) *Query {
	q.params.Set("limit", strconv.Itoa(n))
	return q
}

// Find decodes the matching rows into dest, which must point to a slice.
func (q *Query) Find(ctx context.Context, dest any) error {
	_, err := q.do(ctx, http.MethodGet, nil, dest, false)
	return err
}

// FindWithCount decodes the matching rows and returns the exact total count.
func (q *Query) FindWithCount(ctx context.Context, dest any) (int64, error) {
	return q.do(ctx, http.MethodGet, nil, dest, true)
}

// Insert writes one row (or a slice of rows). A non-nil dest receives the stored representation.
func (q *Query) Insert(ctx context.Context, row any, dest any) error {
	_, err := q.do(ctx, http.MethodPost, row, dest, false)
	return err
}

// Update patches the filtered rows. A non-nil dest receives the updated rows.
func (q *Query) Update(ctx context.Context, patch any, dest any) error {
	if q.filters == 0 {
		return ErrMissingFilter
	}
	_, err := q.do(ctx, http.MethodPatch, patch, dest, false)
	return err
}

// Delete removes the filtered rows.
func (q *Query) Delete(ctx context.Context) error {
	if q.filters == 0 {
		return ErrMissingFilter
	}
	_, err := q.do(ctx, http.MethodDelete, nil, nil, false)
	return err
}

func (q *Query) do(ctx context.Context, method string, body any, dest any, count bool) (int64, error) {
	apiErr := new(APIError)

	req := q.client.httpClient.R().
		SetContext(ctx).
		SetAuthToken(q.client.tokens.AccessToken()).
		SetQueryParamsFromValues(q.params).
		SetError(apiErr)

	var prefer []string
	if method != http.MethodGet && method != http.MethodDelete {
		if dest != nil {
			prefer = append(prefer, "return=representation")
		} else {
			prefer = append(prefer, "return=minimal")
		}
	}
	if count {
		prefer = append(prefer, "count=exact")
	}
	if len(prefer) > 0 {
		req.SetHeader("Prefer", strings.Join(prefer, ","))
	}
	if body != nil {
		req.SetBody(body)
	}
	if dest != nil {
		req.SetResult(dest)
	}

	resp, err := req.Execute(method, "/"+q.table)
	if err != nil {
		return 0, fmt.Errorf("%s %s: %w", strings.ToLower(method), q.table, err)
	}
	if resp.IsError() {
		return 0, fmt.Errorf("%s %s: %w", strings.ToLower(method), q.table, apiErrorFrom(resp, apiErr))
	}

	if !count {
		return 0, nil
	}
	total, err := parseContentRange(resp.Header().Get("Content-Range"))
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", q.table, err)
	}
	return total, nil
}

// parseContentRange reads the total from "0-24/3573" or "*/0".
func parseContentRange(value string) (int64, error) {
	idx := strings.LastIndex(value, "/")
	if idx < 0 || idx == len(value)-1 {
		return 0, fmt.Errorf("malformed content-range %q", value)
	}
	total := value[idx+1:]
	if total == "*" {
		return 0, fmt.Errorf("content-range %q has no exact count", value)
	}
	return strconv.ParseInt(total, 10, 64)
}

func formatValue(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
