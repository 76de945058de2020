// Copyright 2025 The medlit authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package pubmed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/medlit/medlit/core"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"
	defaultTool    = "medlit"

	// defaultRequestInterval keeps us under the E-utilities limit of
	// three requests per second for unauthenticated clients.
	defaultRequestInterval = 340 * time.Millisecond

	defaultMaxResults = 10
	maxResultsCap     = 50

	// efetchChunkSize bounds the number of IDs per efetch URL.
	efetchChunkSize = 50

	defaultMaxAttempts = 3
	defaultRetryDelay  = 500 * time.Millisecond
)

// Sentinel errors for option validation.
var (
	ErrHTTPClientRequired = errors.New("http client is required")
	ErrGateRequired       = errors.New("gate is required")
	ErrLoggerRequired     = errors.New("logger is required")
	ErrBaseURLRequired    = errors.New("base URL is required")
	ErrInvalidMaxResults  = errors.New("max results must be between 1 and 50")
)

// Gate paces outbound requests. *rate.Limiter satisfies it.
type Gate interface {
	Wait(ctx context.Context) error
}

// Retriever searches the literature and returns parsed article records.
type Retriever interface {
	// Search runs the query end to end: ID search, record fetch, parse.
	// Records that fail validation are dropped and counted in the result.
	Search(ctx context.Context, query core.Query) (*core.ResultSet, error)
}

// Client talks to the NCBI E-utilities API.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	tool        string
	email       string
	apiKey      string
	maxResults  int
	gate        Gate
	maxAttempts int
	retryDelay  time.Duration
	logger      *slog.Logger
}

// Option configures a Client.
type Option func(*Client) error

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		if hc == nil {
			return ErrHTTPClientRequired
		}
		c.httpClient = hc
		return nil
	}
}

// WithBaseURL overrides the E-utilities endpoint. Used in tests.
func WithBaseURL(u string) Option {
	return func(c *Client) error {
		if u == "" {
			return ErrBaseURLRequired
		}
		c.baseURL = strings.TrimSuffix(u, "/")
		return nil
	}
}

// WithTool sets the tool name reported to NCBI.
func WithTool(tool string) Option {
	return func(c *Client) error {
		c.tool = tool
		return nil
	}
}

// WithEmail sets the contact email reported to NCBI.
func WithEmail(email string) Option {
	return func(c *Client) error {
		c.email = email
		return nil
	}
}

// WithAPIKey sets the NCBI API key, which raises the server-side rate cap.
func WithAPIKey(key string) Option {
	return func(c *Client) error {
		c.apiKey = key
		return nil
	}
}

// WithMaxResults bounds how many articles a search returns.
func WithMaxResults(n int) Option {
	return func(c *Client) error {
		if n < 1 || n > maxResultsCap {
			return ErrInvalidMaxResults
		}
		c.maxResults = n
		return nil
	}
}

// WithGate replaces the request pacing gate.
func WithGate(g Gate) Option {
	return func(c *Client) error {
		if g == nil {
			return ErrGateRequired
		}
		c.gate = g
		return nil
	}
}

// WithRetryPolicy sets the retry attempt count and base backoff delay for
// transient failures.
func WithRetryPolicy(maxAttempts int, baseDelay time.Duration) Option {
	return func(c *Client) error {
		if maxAttempts <= 0 {
			return ErrInvalidMaxAttempts
		}
		c.maxAttempts = maxAttempts
		c.retryDelay = baseDelay
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) error {
		if logger == nil {
			return ErrLoggerRequired
		}
		c.logger = logger
		return nil
	}
}

// NewClient creates a PubMed retriever.
//
// Returns Retriever interface to enforce abstraction.
func NewClient(opts ...Option) (Retriever, error) {
	c := &Client{
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		baseURL:     defaultBaseURL,
		tool:        defaultTool,
		maxResults:  defaultMaxResults,
		gate:        rate.NewLimiter(rate.Every(defaultRequestInterval), 1),
		maxAttempts: defaultMaxAttempts,
		retryDelay:  defaultRetryDelay,
		logger:      slog.Default().With("component", "pubmed"),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Search implements Retriever.
func (c *Client) Search(ctx context.Context, query core.Query) (*core.ResultSet, error) {
	if err := core.ValidateQuery(query); err != nil {
		return nil, err
	}

	ids, err := c.searchIDs(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		c.logger.Info("search returned no results", "query", query.Normalized())
		return &core.ResultSet{Query: query}, nil
	}

	articles, dropped, err := c.fetchArticles(ctx, ids)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("search complete", "query", query.Normalized(), "articles", len(articles), "dropped", dropped)
	return &core.ResultSet{Query: query, Articles: articles, Dropped: dropped}, nil
}

// esearchEnvelope is the JSON shape of an esearch response.
type esearchEnvelope struct {
	Result esearchResult `json:"esearchresult"`
	Error  string        `json:"error"`
}

type esearchResult struct {
	Count  string   `json:"count"`
	IDList []string `json:"idlist"`
}

// searchIDs pages through esearch until maxResults IDs are collected or the
// result set is exhausted.
func (c *Client) searchIDs(ctx context.Context, query core.Query) ([]string, error) {
	var ids []string
	retstart := 0

	for len(ids) < c.maxResults {
		params := c.termParams(query)
		params.Set("db", "pubmed")
		params.Set("retmode", "json")
		params.Set("retstart", strconv.Itoa(retstart))
		params.Set("retmax", strconv.Itoa(c.maxResults-len(ids)))

		body, err := c.getWithRetry(ctx, "esearch.fcgi", params)
		if err != nil {
			return nil, err
		}

		var envelope esearchEnvelope
		if err := json.Unmarshal(body, &envelope); err != nil {
			return nil, &RetrievalError{
				Kind: RetrievalTransient,
				Err:  fmt.Errorf("decoding esearch response: %w", err),
			}
		}
		if envelope.Error != "" {
			return nil, &RetrievalError{
				Kind: RetrievalMalformedQuery,
				Err:  errors.New(envelope.Error),
			}
		}

		page := envelope.Result.IDList
		if len(page) == 0 {
			break
		}
		ids = append(ids, page...)
		retstart += len(page)

		total, convErr := strconv.Atoi(envelope.Result.Count)
		if convErr != nil || retstart >= total {
			break
		}
	}

	if len(ids) > c.maxResults {
		ids = ids[:c.maxResults]
	}
	return ids, nil
}

// termParams builds the search term and date filter parameters for a query.
func (c *Client) termParams(query core.Query) url.Values {
	params := url.Values{}

	term := query.Normalized()
	if query.Journal != "" {
		term = fmt.Sprintf("%s AND %q[Journal]", term, query.Journal)
	}
	params.Set("term", term)

	if !query.From.IsZero() {
		params.Set("mindate", query.From.Format("2006/01/02"))
		params.Set("datetype", "pdat")
	}
	if !query.To.IsZero() {
		params.Set("maxdate", query.To.Format("2006/01/02"))
		params.Set("datetype", "pdat")
	}
	return params
}

// fetchArticles retrieves and parses full records for the given IDs,
// preserving the server's relevance order.
func (c *Client) fetchArticles(ctx context.Context, ids []string) ([]core.ArticleRecord, int, error) {
	var articles []core.ArticleRecord
	dropped := 0

	for start := 0; start < len(ids); start += efetchChunkSize {
		end := start + efetchChunkSize
		if end > len(ids) {
			end = len(ids)
		}

		params := url.Values{}
		params.Set("db", "pubmed")
		params.Set("retmode", "xml")
		params.Set("id", strings.Join(ids[start:end], ","))

		body, err := c.getWithRetry(ctx, "efetch.fcgi", params)
		if err != nil {
			return nil, 0, err
		}

		parsed, chunkDropped, err := parseArticles(body, c.logger)
		if err != nil {
			return nil, 0, err
		}
		articles = append(articles, parsed...)
		dropped += chunkDropped
	}
	return articles, dropped, nil
}

// getWithRetry issues a GET, retrying transient failures with backoff.
func (c *Client) getWithRetry(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	var body []byte
	err := retryWithBackoff(ctx, func() error {
		var opErr error
		body, opErr = c.get(ctx, endpoint, params)
		return opErr
	}, c.maxAttempts, c.retryDelay)
	return body, err
}

// get issues one paced GET request and classifies failures.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	if err := c.gate.Wait(ctx); err != nil {
		return nil, err
	}

	params.Set("tool", c.tool)
	if c.email != "" {
		params.Set("email", c.email)
	}
	if c.apiKey != "" {
		params.Set("api_key", c.apiKey)
	}

	reqURL := c.baseURL + "/" + endpoint + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &RetrievalError{Kind: RetrievalTransient, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, &RetrievalError{Kind: RetrievalTransient, Err: err}
		}
		return body, nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &RetrievalError{
			Kind: RetrievalQuotaExceeded,
			Err:  fmt.Errorf("%s returned status 429", endpoint),
		}
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, &RetrievalError{
			Kind: RetrievalTransient,
			Err:  fmt.Errorf("%s returned status %d", endpoint, resp.StatusCode),
		}
	default:
		return nil, &RetrievalError{
			Kind: RetrievalMalformedQuery,
			Err:  fmt.Errorf("%s returned status %d", endpoint, resp.StatusCode),
		}
	}
}
