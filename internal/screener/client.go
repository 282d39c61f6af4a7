package screener

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
	"unicode/utf8"
)

// DefaultUserAgents is the rotation list used when none is configured.
// Attempt n sends userAgents[n % len(userAgents)].
var DefaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0",
}

// ErrNotFound reports a page the upstream does not have.
var ErrNotFound = errors.New("not found")

// Company is one candidate from the upstream search API.
type Company struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Code string `json:"code,omitempty"`
	URL  string `json:"url,omitempty"`
}

// PagePath returns the path of the candidate's company page.
func (c Company) PagePath() string {
	if c.Code != "" {
		return "/company/" + url.PathEscape(c.Code) + "/"
	}
	if c.URL != "" {
		return c.URL
	}
	return "/company/" + url.PathEscape(c.Name) + "/"
}

// Options tunes a Client. Zero values fall back to defaults.
type Options struct {
	Timeout          time.Duration
	Retries          int
	UserAgents       []string
	MaxPageBytes     int64
	MaxDocumentBytes int64
	StatsWindow      time.Duration
}

// Client talks to the upstream financial-data site.
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgents []string
	retries    int
	maxPage    int64
	maxDoc     int64
	backoff    func(attempt int) time.Duration
	log        *slog.Logger

	// Stats aggregates per-attempt fetch latencies and outcomes.
	Stats *FetchStats
}

func NewClient(baseURL string, opts Options, log *slog.Logger) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.Retries <= 0 {
		opts.Retries = 3
	}
	if len(opts.UserAgents) == 0 {
		opts.UserAgents = DefaultUserAgents
	}
	if opts.MaxPageBytes <= 0 {
		opts.MaxPageBytes = 10 << 20
	}
	if opts.MaxDocumentBytes <= 0 {
		opts.MaxDocumentBytes = 40 << 20
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		userAgents: opts.UserAgents,
		retries:    opts.Retries,
		maxPage:    opts.MaxPageBytes,
		maxDoc:     opts.MaxDocumentBytes,
		backoff:    Backoff,
		log:        log,
		Stats:      NewFetchStats(opts.StatsWindow),
	}
}

// Search queries the upstream company search API. Candidates without an id
// are discarded.
func (c *Client) Search(ctx context.Context, query string) ([]Company, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("v", strconv.Itoa(utf8.RuneCountInString(query)))
	params.Set("fts", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/company/search/?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgents[0])

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search companies: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("search companies: status %d: %s", resp.StatusCode, string(respBody))
	}

	var raw []Company
	if err := json.NewDecoder(io.LimitReader(resp.Body, c.maxPage)).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode search results: %w", err)
	}

	companies := make([]Company, 0, len(raw))
	for _, cand := range raw {
		if cand.ID == 0 {
			continue
		}
		companies = append(companies, cand)
	}
	return companies, nil
}

// FetchPage retrieves a company page as markup. The path is joined to the
// configured base URL.
func (c *Client) FetchPage(ctx context.Context, path string) (string, error) {
	body, err := c.fetchWithRetry(ctx, c.baseURL+path, c.maxPage)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// FetchDocument retrieves a filing by absolute URL.
func (c *Client) FetchDocument(ctx context.Context, rawURL string) ([]byte, error) {
	return c.fetchWithRetry(ctx, rawURL, c.maxDoc)
}

func (c *Client) fetchWithRetry(ctx context.Context, fullURL string, maxBytes int64) ([]byte, error) {
	var lastErr error
	for attempt := range c.retries {
		var body []byte
		body, lastErr = c.fetchOnce(ctx, fullURL, attempt, maxBytes)
		if lastErr == nil {
			return body, nil
		}
		if !IsRetryable(lastErr) {
			return nil, lastErr
		}
		c.log.Warn("transient fetch failure", "url", fullURL, "attempt", attempt, "error", lastErr)
		if attempt < c.retries-1 {
			if err := sleepCtx(ctx, c.backoff(attempt)); err != nil {
				return nil, err
			}
		}
	}
	return nil, fmt.Errorf("fetch %s: attempts exhausted: %w", fullURL, lastErr)
}

func (c *Client) fetchOnce(ctx context.Context, fullURL string, attempt int, maxBytes int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgents[attempt%len(c.userAgents)])

	start := time.Now()
	body, err := c.do(req, maxBytes)
	c.Stats.Record(time.Since(start).Milliseconds(), err == nil)
	return body, err
}

func (c *Client) do(req *http.Request, maxBytes int64) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &RetryableError{Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("fetch %s: %w", req.URL, ErrNotFound)
	}
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &RetryableError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("fetch %s: status %d: %s", req.URL, resp.StatusCode, string(respBody))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes))
	if err != nil {
		return nil, &RetryableError{Message: err.Error()}
	}
	return body, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
