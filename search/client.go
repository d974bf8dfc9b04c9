package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"encoding/json"

	"pantryfinder"
)

const (
	defaultEndpoint = "https://api.search.brave.com/res/v1/web/search"
	defaultCount    = 10
	maxCount        = 20

	defaultSafeSearch = "moderate"
)

// ErrUnavailable means the upstream search API errored or timed out. It is
// terminal for the current attempt; the convergence loop decides whether the
// session continues, never this client.
var ErrUnavailable = errors.New("search unavailable")

// Request is one web-search call.
type Request struct {
	Query     string
	Count     int
	Offset    int
	Freshness string // e.g. FreshnessPastMonth; empty for no recency filter
}

// Result is a single search hit.
type Result struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

// Response is one page of results for a query.
type Response struct {
	Results       []Result `json:"results"`
	OriginalQuery string   `json:"original_query"`
}

type Client struct {
	apiKey     string
	endpoint   string
	count      int
	safeSearch string
	httpClient pantryfinder.HTTPClient
}

type ClientOpts struct {
	APIKey     string
	Endpoint   string
	Count      int
	SafeSearch string
	HTTPClient pantryfinder.HTTPClient
}

// NewClient validates configuration up front so a missing credential fails
// before any network call is attempted.
func NewClient(opts ClientOpts) (*Client, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("missing search API credential")
	}
	if opts.HTTPClient == nil {
		return nil, fmt.Errorf("missing HTTP client")
	}
	if opts.Endpoint == "" {
		opts.Endpoint = defaultEndpoint
	}
	if opts.Count <= 0 {
		opts.Count = defaultCount
	}
	if opts.Count > maxCount {
		opts.Count = maxCount
	}
	if opts.SafeSearch == "" {
		opts.SafeSearch = defaultSafeSearch
	}

	return &Client{
		apiKey:     opts.APIKey,
		endpoint:   opts.Endpoint,
		count:      opts.Count,
		safeSearch: opts.SafeSearch,
		httpClient: opts.HTTPClient,
	}, nil
}

// Brave wire format: results nested under "web", echo of the query under
// "query".
type wireResult struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

type wireResponse struct {
	Web struct {
		Results []wireResult `json:"results"`
	} `json:"web"`
	Query struct {
		Original string `json:"original"`
	} `json:"query"`
}

// Search issues one web search. Any upstream failure maps to ErrUnavailable
// with no partial results; retrying is the caller's concern.
func (c *Client) Search(ctx context.Context, sr Request) (Response, error) {
	slog.Info("SEARCH_CLIENT: Invoked", "query", sr.Query, "offset", sr.Offset)

	count := sr.Count
	if count <= 0 {
		count = c.count
	}
	if count > maxCount {
		count = maxCount
	}

	params := url.Values{}
	params.Set("q", sr.Query)
	params.Set("count", strconv.Itoa(count))
	params.Set("offset", strconv.Itoa(sr.Offset))
	params.Set("safesearch", c.safeSearch)
	if sr.Freshness != "" {
		params.Set("freshness", sr.Freshness)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return Response{}, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return Response{}, fmt.Errorf("%w: %s: %s", ErrUnavailable, resp.Status, string(body))
	}

	var wr wireResponse
	if err := json.Unmarshal(body, &wr); err != nil {
		return Response{}, fmt.Errorf("%w: malformed response: %v", ErrUnavailable, err)
	}

	out := Response{
		Results:       make([]Result, 0, len(wr.Web.Results)),
		OriginalQuery: wr.Query.Original,
	}
	for _, r := range wr.Web.Results {
		out.Results = append(out.Results, Result(r))
	}

	slog.Info("SEARCH_CLIENT: Response received", "results", len(out.Results))
	return out, nil
}
