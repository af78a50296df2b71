package pricing

import (
	"context"
	"fmt"
	"sort"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

const defaultBaseURL = "https://api.relist.app/v1"

// minComparables is the smallest sample the estimator trusts. Fewer comps
// than this and a single outlier dominates the estimate.
const minComparables = 3

// QueryGenerator distills a listing title into a short comparison search
// query. Optional; the raw title is used when nil or when it returns "".
type QueryGenerator interface {
	GeneratePriceSearchQuery(ctx context.Context, title string) (string, error)
}

// ClientOpts configures the search client.
type ClientOpts struct {
	BaseURL string
	Queries QueryGenerator
}

// Client searches a marketplace for comparable listings and derives a price
// estimate from their asking prices.
type Client struct {
	httpClient *resty.Client
	queries    QueryGenerator
}

// NewClient creates a search client.
func NewClient(opts ClientOpts) *Client {
	baseURL := defaultBaseURL
	if opts.BaseURL != "" {
		baseURL = opts.BaseURL
	}
	return &Client{
		httpClient: resty.New().
			SetBaseURL(baseURL).
			SetHeader("Accept", "application/json"),
		queries: opts.Queries,
	}
}

// SearchResult is the response from the search API.
type SearchResult struct {
	Docs []SearchDoc `json:"docs"`
}

// SearchDoc is a single comparable listing.
type SearchDoc struct {
	ID      string       `json:"id"`
	Heading string       `json:"heading"`
	Price   *SearchPrice `json:"price,omitempty"`
}

// SearchPrice contains price info.
type SearchPrice struct {
	Amount float64 `json:"amount"`
}

// Estimate summarizes comparable asking prices.
type Estimate struct {
	Count  int     `json:"count"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Median float64 `json:"median"`
}

// Search queries for comparable listings.
func (c *Client) Search(ctx context.Context, query string, rows int) (*SearchResult, error) {
	if rows <= 0 {
		rows = 20
	}

	result := &SearchResult{}
	res, err := c.httpClient.NewRequest().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":    query,
			"rows": fmt.Sprintf("%d", rows),
		}).
		SetResult(result).
		Get("/search")
	if err != nil {
		return nil, err
	}
	if res.IsError() {
		return nil, fmt.Errorf("search failed: %s (status: %d)", res.Request.URL, res.StatusCode())
	}

	return result, nil
}

// EstimatePrice returns the median asking price of comparable listings for
// the given title, or an error when too few comparables were found.
func (c *Client) EstimatePrice(ctx context.Context, title string) (float64, error) {
	est, err := c.Estimate(ctx, title)
	if err != nil {
		return 0, err
	}
	return est.Median, nil
}

// Estimate searches for comparables and summarizes their prices. At least
// minComparables priced results are required.
func (c *Client) Estimate(ctx context.Context, title string) (*Estimate, error) {
	query := title
	if c.queries != nil {
		q, err := c.queries.GeneratePriceSearchQuery(ctx, title)
		if err != nil {
			log.Warn().Err(err).Str("title", title).Msg("price query generation failed, using raw title")
		} else if q != "" {
			query = q
		}
	}

	result, err := c.Search(ctx, query, 20)
	if err != nil {
		return nil, fmt.Errorf("comparable search failed: %w", err)
	}

	var prices []float64
	for _, doc := range result.Docs {
		if doc.Price != nil && doc.Price.Amount > 0 {
			prices = append(prices, doc.Price.Amount)
		}
	}
	if len(prices) < minComparables {
		return nil, fmt.Errorf("not enough comparables: got %d, need %d", len(prices), minComparables)
	}

	sort.Float64s(prices)
	median := prices[len(prices)/2]
	if len(prices)%2 == 0 {
		median = (prices[len(prices)/2-1] + prices[len(prices)/2]) / 2
	}

	est := &Estimate{
		Count:  len(prices),
		Min:    prices[0],
		Max:    prices[len(prices)-1],
		Median: median,
	}

	log.Info().
		Str("query", query).
		Int("count", est.Count).
		Float64("median", est.Median).
		Float64("min", est.Min).
		Float64("max", est.Max).
		Msg("price estimate from comparables")

	return est, nil
}
