package catalog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/time/rate"

	"github.com/alexandrebha/cybook/circulation"
)

const (
	// DefaultBaseURL is the SRU endpoint of the BnF general catalog.
	DefaultBaseURL = "http://catalogue.bnf.fr/api/SRU"

	// DefaultTimeout bounds every request, including reading the body.
	DefaultTimeout = 5 * time.Second

	defaultRequestInterval = 200 * time.Millisecond
	defaultBurst           = 5
	defaultMaxRecords      = 20
	maxResponseBytes       = 8 << 20

	opLookup = "lookup"
	opSearch = "search"
)

// Client is a rate-limited BnF SRU client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      Cache
	maxRecords int
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client to another SRU endpoint, e.g. a test server.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithHTTPClient replaces the HTTP client. Its Timeout is used as-is.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithRateLimit allows one request per interval with the given burst.
func WithRateLimit(interval time.Duration, burst int) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Every(interval), burst)
	}
}

// WithCache enables read-through caching of Lookup results.
func WithCache(cache Cache) Option {
	return func(c *Client) {
		c.cache = cache
	}
}

// WithMaxRecords limits the number of records a Search returns.
func WithMaxRecords(maxRecords int) Option {
	return func(c *Client) {
		if maxRecords > 0 {
			c.maxRecords = maxRecords
		}
	}
}

// WithLogger sets the logger for request tracing at debug level and cache problems at warn level.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a client for DefaultBaseURL with DefaultTimeout and a default rate limit.
func New(options ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Every(defaultRequestInterval), defaultBurst),
		maxRecords: defaultMaxRecords,
		logger:     slog.New(slog.DiscardHandler),
	}

	for _, option := range options {
		option(c)
	}

	return c
}

// Lookup resolves a catalog identifier (ISBN) to the metadata of the first matching record.
// ErrNotFound if the catalog has no record for it.
func (c *Client) Lookup(ctx context.Context, id string) (circulation.Metadata, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return circulation.Metadata{}, wrapError(opLookup, id, ErrEmptyQuery)
	}

	if !validIdentifier(id) {
		return circulation.Metadata{}, wrapError(opLookup, id, ErrInvalidIdentifier)
	}

	if metadata, ok := c.fromCache(ctx, id); ok {
		return metadata, nil
	}

	query := `bib.isbn adj "` + id + `"`

	records, err := c.searchRetrieve(ctx, query, 1)
	if err != nil {
		return circulation.Metadata{}, wrapError(opLookup, id, err)
	}

	if len(records) == 0 {
		return circulation.Metadata{}, wrapError(opLookup, id, ErrNotFound)
	}

	metadata := records[0]
	if metadata.ISBN == "" {
		metadata.ISBN = id
	}

	if metadata.HasTitle() {
		c.toCache(ctx, id, metadata)
	}

	return metadata, nil
}

// validIdentifier reports whether id can be quoted in a CQL term as is.
func validIdentifier(id string) bool {
	return !strings.ContainsFunc(id, func(r rune) bool {
		return r == '"' || r == '\\' || unicode.IsControl(r)
	})
}

// Search runs a free SRU query and returns every record that has a title.
// The query is NFC-normalized so that decomposed accents match the catalog's indexing.
func (c *Client) Search(ctx context.Context, query string) ([]circulation.Metadata, error) {
	query = norm.NFC.String(strings.TrimSpace(query))
	if query == "" {
		return nil, wrapError(opSearch, query, ErrEmptyQuery)
	}

	records, err := c.searchRetrieve(ctx, query, c.maxRecords)
	if err != nil {
		return nil, wrapError(opSearch, query, err)
	}

	result := make([]circulation.Metadata, 0, len(records))
	for _, metadata := range records {
		if metadata.HasTitle() {
			result = append(result, metadata)
		}
	}

	return result, nil
}

func (c *Client) searchRetrieve(ctx context.Context, query string, maxRecords int) ([]circulation.Metadata, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	params := url.Values{}
	params.Set("version", "1.2")
	params.Set("operation", "searchRetrieve")
	params.Set("query", query)
	params.Set("maximumRecords", strconv.Itoa(maxRecords))

	requestURL := c.baseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/xml")

	c.logger.DebugContext(ctx, "catalog request", "query", query)

	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	c.logger.DebugContext(ctx, "catalog response",
		"query", query,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if err := statusError(resp.StatusCode); err != nil {
		return nil, err
	}

	return ParseRecords(body)
}

func statusError(statusCode int) error {
	switch {
	case statusCode == http.StatusOK:
		return nil
	case statusCode == http.StatusNotFound:
		return ErrNotFound
	case statusCode == http.StatusTooManyRequests:
		return ErrRateLimited
	case statusCode == http.StatusBadRequest:
		return ErrBadRequest
	case statusCode >= http.StatusInternalServerError:
		return ErrServer
	default:
		return fmt.Errorf("unexpected status %d", statusCode)
	}
}

func (c *Client) fromCache(ctx context.Context, id string) (circulation.Metadata, bool) {
	if c.cache == nil {
		return circulation.Metadata{}, false
	}

	metadata, ok, err := c.cache.Get(ctx, id)
	if err != nil {
		c.logger.WarnContext(ctx, "catalog cache read failed", "id", id, "error", err)
		return circulation.Metadata{}, false
	}

	return metadata, ok
}

func (c *Client) toCache(ctx context.Context, id string, metadata circulation.Metadata) {
	if c.cache == nil {
		return
	}

	if err := c.cache.Set(ctx, id, metadata); err != nil {
		c.logger.WarnContext(ctx, "catalog cache write failed", "id", id, "error", err)
	}
}
