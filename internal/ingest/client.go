package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mauv0809/sales-dashboard/internal/models"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout  = 60 * time.Second
	defaultPageSize = 1000
	maxAttempts     = 3
)

// Client reads orders from a Supabase project through its PostgREST API.
type Client struct {
	baseURL    string
	apiKey     string
	table      string
	loc        *time.Location
	pageSize   int
	backoff    time.Duration
	httpClient *http.Client
	limiter    *rate.Limiter
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithPageSize sets how many rows are requested per page.
func WithPageSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// WithRateLimit sets the number of requests per second.
func WithRateLimit(perSecond float64) Option {
	return func(c *Client) {
		if perSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// WithBackoff sets the base delay between retries.
func WithBackoff(d time.Duration) Option {
	return func(c *Client) { c.backoff = d }
}

// NewClient creates a client for the project at baseURL (e.g.
// https://xyz.supabase.co) reading table.
func NewClient(baseURL, apiKey, table string, loc *time.Location, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		apiKey:   apiKey,
		table:    table,
		loc:      loc,
		pageSize: defaultPageSize,
		backoff:  time.Second,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(5), 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchOrders returns the orders processed within [from, to], normalized to
// the client's time zone.
func (c *Client) FetchOrders(ctx context.Context, from, to time.Time) ([]models.Order, error) {
	rows, err := c.FetchRows(ctx, Range{From: from, To: to})
	if err != nil {
		return nil, fmt.Errorf("fetching orders: %w", err)
	}
	return ParseOrders(rows, c.loc), nil
}

// FetchRows reads every row in r, following pages until a short page.
func (c *Client) FetchRows(ctx context.Context, r Range) ([]Row, error) {
	var all []Row
	for offset := 0; ; offset += c.pageSize {
		page, err := c.fetchPage(ctx, r, offset)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)

		if len(page) < c.pageSize {
			break
		}
		log.Printf("Fetching next page of %s (offset %d)", c.table, offset+c.pageSize)
	}
	return all, nil
}

// fetchPage fetches a single page of rows.
func (c *Client) fetchPage(ctx context.Context, r Range, offset int) ([]Row, error) {
	u, err := url.Parse(fmt.Sprintf("%s/rest/v1/%s", c.baseURL, url.PathEscape(c.table)))
	if err != nil {
		return nil, fmt.Errorf("invalid table url: %w", err)
	}

	q := url.Values{}
	q.Set("select", "*")
	// processed_at has no zone and holds UTC; an offset in the literal would be dropped.
	q.Add(ColProcessedAt, "gte."+r.From.UTC().Format(time.RFC3339Nano))
	q.Add(ColProcessedAt, "lte."+r.To.UTC().Format(time.RFC3339Nano))
	q.Set("order", ColProcessedAt+".asc,"+ColID+".asc")
	u.RawQuery = q.Encode()

	pageRange := fmt.Sprintf("%d-%d", offset, offset+c.pageSize-1)

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			backoff := c.backoff * time.Duration(1<<attempt)
			log.Printf("Retry attempt %d after %v", attempt, backoff)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		rows, err := c.doRequest(ctx, u.String(), pageRange)
		if err == nil {
			return rows, nil
		}
		lastErr = err

		// Don't retry on context cancellation
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !retryable(err) {
			return nil, err
		}

		log.Printf("Request failed (attempt %d): %v", attempt+1, lastErr)
	}

	return nil, fmt.Errorf("all retries failed: %w", lastErr)
}

// statusError is a non-success response.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.code, e.body)
}

func retryable(err error) bool {
	se, ok := err.(*statusError)
	if !ok {
		return true
	}
	return se.code == http.StatusTooManyRequests || se.code >= 500
}

func (c *Client) doRequest(ctx context.Context, urlStr, pageRange string) ([]Row, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Range-Unit", "items")
	req.Header.Set("Range", pageRange)

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	// 206 is returned for a partial range, 416 when the offset is past the end.
	switch httpResp.StatusCode {
	case http.StatusOK, http.StatusPartialContent:
	case http.StatusRequestedRangeNotSatisfiable:
		return nil, nil
	default:
		return nil, &statusError{code: httpResp.StatusCode, body: string(body)}
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var rows []Row
	if err := dec.Decode(&rows); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}
	return rows, nil
}
