// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pubmed queries the NCBI E-utilities API and returns normalized
// article records. Searches run in two phases against the Entrez history
// server: esearch posts the query and yields a WebEnv/QueryKey handle,
// then efetch pages through the matched records in bounded batches.
package pubmed

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pdiddy/pubmed-insight/internal/httputil"
	"github.com/pdiddy/pubmed-insight/pkg/types"
)

// E-utilities endpoints. Declared as vars so tests can substitute an
// httptest server.
var (
	esearchBase = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/esearch.fcgi"
	efetchBase  = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/efetch.fcgi"
)

// toolName identifies this client to NCBI alongside the caller email.
const toolName = "pubmed-insight"

// recognizedSorts lists the esearch sort keys PubMed accepts. Anything
// else is dropped so the service default ordering applies.
var recognizedSorts = map[string]bool{
	"relevance":    true,
	"pub_date":     true,
	"Author":       true,
	"JournalName":  true,
	"first_author": true,
}

// Query holds the parameters for one search invocation. Dates are
// validated upstream; the term is passed through to PubMed's
// advanced-search grammar untouched.
type Query struct {
	Term     string
	FromDate string // YYYY/MM/DD
	ToDate   string // YYYY/MM/DD
	Limit    int
	OrderBy  string
	Email    string
	APIKey   string
}

// Client fetches article records from PubMed.
type Client struct {
	HTTP *http.Client
	Cfg  types.SearchConfig
}

// NewClient builds a Client from config, with an HTTP client bounded by
// the configured timeout.
func NewClient(cfg types.SearchConfig) *Client {
	return &Client{
		HTTP: &http.Client{Timeout: cfg.Timeout},
		Cfg:  cfg,
	}
}

// Search runs the full esearch/efetch flow and returns up to q.Limit
// records in the order PubMed returned them. A query matching nothing
// returns an empty slice and no error.
func (c *Client) Search(ctx context.Context, q Query) ([]types.ArticleRecord, error) {
	hist, err := c.esearch(ctx, q)
	if err != nil {
		return nil, err
	}
	if hist.count == 0 {
		return nil, nil
	}

	batchSize := c.Cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}

	want := hist.count
	if q.Limit > 0 && want > q.Limit {
		want = q.Limit
	}

	var records []types.ArticleRecord
	for start := 0; start < want; start += batchSize {
		if start > 0 && c.Cfg.BatchDelay > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.Cfg.BatchDelay):
			}
		}

		toFetch := batchSize
		if remaining := want - start; remaining < toFetch {
			toFetch = remaining
		}

		batch, err := c.efetch(ctx, q, hist, start, toFetch)
		if err != nil {
			return nil, err
		}
		records = append(records, batch...)
	}
	return records, nil
}

// history is the Entrez history-server handle returned by esearch.
type history struct {
	webEnv   string
	queryKey string
	count    int
}

// esearch JSON structures. Count is a string in the E-utilities response.
type esearchResponse struct {
	Result esearchResult `json:"esearchresult"`
}

type esearchResult struct {
	Count    string   `json:"count"`
	IDList   []string `json:"idlist"`
	WebEnv   string   `json:"webenv"`
	QueryKey string   `json:"querykey"`
	Error    string   `json:"ERROR"`
}

// esearch posts the query to the history server and returns the handle.
func (c *Client) esearch(ctx context.Context, q Query) (history, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = 8
	}

	params := url.Values{
		"db":         {"pubmed"},
		"term":       {buildTerm(q)},
		"retmax":     {strconv.Itoa(limit)},
		"usehistory": {"y"},
		"retmode":    {"json"},
	}
	if recognizedSorts[q.OrderBy] {
		params.Set("sort", q.OrderBy)
	}
	addIdentity(params, q)

	body, err := c.get(ctx, esearchBase+"?"+params.Encode())
	if err != nil {
		return history{}, fmt.Errorf("esearch request: %w", err)
	}

	var er esearchResponse
	if err := json.Unmarshal(body, &er); err != nil {
		return history{}, fmt.Errorf("parsing esearch response: %w", err)
	}
	if er.Result.Error != "" {
		return history{}, fmt.Errorf("esearch rejected query: %s", er.Result.Error)
	}

	count, err := strconv.Atoi(er.Result.Count)
	if err != nil {
		return history{}, fmt.Errorf("parsing esearch count %q: %w", er.Result.Count, err)
	}

	return history{
		webEnv:   er.Result.WebEnv,
		queryKey: er.Result.QueryKey,
		count:    count,
	}, nil
}

// efetch retrieves one page of full records from the history server.
func (c *Client) efetch(ctx context.Context, q Query, hist history, start, count int) ([]types.ArticleRecord, error) {
	params := url.Values{
		"db":        {"pubmed"},
		"WebEnv":    {hist.webEnv},
		"query_key": {hist.queryKey},
		"retstart":  {strconv.Itoa(start)},
		"retmax":    {strconv.Itoa(count)},
		"retmode":   {"xml"},
	}
	addIdentity(params, q)

	body, err := c.get(ctx, efetchBase+"?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("efetch request: %w", err)
	}

	var set pubmedArticleSet
	if err := xml.Unmarshal(body, &set); err != nil {
		return nil, fmt.Errorf("parsing efetch response: %w", err)
	}

	var records []types.ArticleRecord
	for _, a := range set.Articles {
		r := a.toRecord()
		// A record without a PMID cannot be cited or deduplicated; skip it.
		if r.PMID == "" {
			continue
		}
		records = append(records, r)
	}
	return records, nil
}

// get performs a retried GET and returns the response body.
func (c *Client) get(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.Cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, c.HTTP, req, c.Cfg.MaxRetries)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("E-utilities returned HTTP %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

// buildTerm appends the publication-date range filter to the query term.
func buildTerm(q Query) string {
	term := q.Term
	if q.FromDate != "" && q.ToDate != "" {
		term += fmt.Sprintf(" AND (%q[Date - Publication] : %q[Date - Publication])", q.FromDate, q.ToDate)
	}
	return term
}

// addIdentity attaches the NCBI identification parameters.
func addIdentity(params url.Values, q Query) {
	params.Set("tool", toolName)
	if q.Email != "" {
		params.Set("email", q.Email)
	}
	if q.APIKey != "" {
		params.Set("api_key", q.APIKey)
	}
}
