package cms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	defaultBlockPageSize = 10
	defaultListPageSize  = 100
	maxListPageSize      = 100
	defaultMaxAttempts   = 3
	defaultHTTPTimeout   = 15 * time.Second
	requestIDHeader      = "X-Request-Id"
)

// Client fetches blog content from the CMS gateway API. Transient failures
// are retried with exponential backoff before an error reaches the caller.
type Client struct {
	baseURL       string
	httpClient    *http.Client
	logger        zerolog.Logger
	blockPageSize int
	listPageSize  int
	maxAttempts   int
}

// ClientOption mutates client configuration.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithLogger injects a logger for retry and failure diagnostics.
func WithLogger(logger zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithBlockPageSize sets how many blocks one incremental load requests.
func WithBlockPageSize(size int) ClientOption {
	return func(c *Client) {
		if size > 0 {
			c.blockPageSize = size
		}
	}
}

// WithListPageSize sets the article index page size, capped at the API limit.
func WithListPageSize(size int) ClientOption {
	return func(c *Client) {
		if size > 0 {
			c.listPageSize = min(size, maxListPageSize)
		}
	}
}

// WithMaxAttempts bounds how often one call hits the network.
func WithMaxAttempts(attempts int) ClientOption {
	return func(c *Client) {
		if attempts > 0 {
			c.maxAttempts = attempts
		}
	}
}

// NewClient creates a client for the gateway at baseURL.
func NewClient(baseURL string, options ...ClientOption) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("content api base url required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("parse content api base url: %w", err)
	}
	client := &Client{
		baseURL:       baseURL,
		httpClient:    &http.Client{Timeout: defaultHTTPTimeout},
		logger:        zerolog.Nop(),
		blockPageSize: defaultBlockPageSize,
		listPageSize:  defaultListPageSize,
		maxAttempts:   defaultMaxAttempts,
	}
	for _, option := range options {
		option(client)
	}
	return client, nil
}

// BlockPageSize returns the configured incremental page size.
func (c *Client) BlockPageSize() int { return c.blockPageSize }

// Articles returns the article index, newest first.
func (c *Client) Articles(ctx context.Context) ([]ArticleSummary, error) {
	query := url.Values{"limit": {strconv.Itoa(c.listPageSize)}}
	var payload struct {
		Articles []ArticleSummary `json:"articles"`
	}
	if err := c.getJSON(ctx, "/api/articles", query, &payload); err != nil {
		return nil, fmt.Errorf("fetch article list: %w", err)
	}
	return payload.Articles, nil
}

// Categories returns the category index.
func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	var payload struct {
		Categories []Category `json:"categories"`
	}
	if err := c.getJSON(ctx, "/api/categories", nil, &payload); err != nil {
		return nil, fmt.Errorf("fetch categories: %w", err)
	}
	return payload.Categories, nil
}

// ArticleBlocks returns one page of an article's content stream, resuming
// from cursor when non-empty. A pageSize of zero means the configured
// default.
func (c *Client) ArticleBlocks(ctx context.Context, articleID, cursor string, pageSize int) (BlockPage, error) {
	if strings.TrimSpace(articleID) == "" {
		return BlockPage{}, errors.New("fetch article blocks: article id required")
	}
	if pageSize <= 0 {
		pageSize = c.blockPageSize
	}
	query := url.Values{"limit": {strconv.Itoa(pageSize)}}
	if cursor != "" {
		query.Set("cursor", cursor)
	}
	var page BlockPage
	path := "/api/articles/" + url.PathEscape(articleID) + "/blocks"
	if err := c.getJSON(ctx, path, query, &page); err != nil {
		return BlockPage{}, fmt.Errorf("fetch article blocks: %w", err)
	}
	return page, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	requestID := uuid.NewString()

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set(requestIDHeader, requestID)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode >= 500:
			return apiError(resp)
		case resp.StatusCode >= 400:
			return backoff.Permanent(apiError(resp))
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return backoff.Permanent(fmt.Errorf("decode content api response: %w", err))
		}
		return nil
	}

	notify := func(err error, delay time.Duration) {
		c.logger.Warn().
			Err(err).
			Str("request_id", requestID).
			Str("endpoint", path).
			Dur("retry_in", delay).
			Msg("content api call retrying")
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(newBackOff(), uint64(c.maxAttempts-1)),
		ctx,
	)
	return backoff.RetryNotify(operation, policy, notify)
}

func newBackOff() backoff.BackOff {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 200 * time.Millisecond
	policy.MaxInterval = 2 * time.Second
	policy.MaxElapsedTime = 0
	return policy
}

func apiError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	detail := strings.TrimSpace(string(body))
	if detail == "" {
		return fmt.Errorf("content api error: %s", resp.Status)
	}
	return fmt.Errorf("content api error: %s (%s)", resp.Status, detail)
}

// IsTimeout reports whether err came from a deadline or transport timeout,
// the only error family callers treat differently from a generic failure.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
