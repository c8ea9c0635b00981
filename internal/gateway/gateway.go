// Package gateway issues the remote CRUD calls against the users API.
//
// Every call is fire-once: there are no retries, no client-side timeouts and
// no idempotency keys. Cancellation comes only from the caller's context.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/rail44/roster/internal/log"
	"github.com/rail44/roster/internal/row"
)

const (
	defaultResource = "users"
	maxBodyBytes    = 10 << 20
)

// Client is the remote gateway for one users endpoint.
type Client struct {
	baseURL    string
	resource   string
	httpClient *http.Client
	reporter   Reporter
	logger     log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the transport. The default is http.DefaultClient.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithReporter publishes every failure to r in addition to returning it.
func WithReporter(r Reporter) Option {
	return func(c *Client) {
		c.reporter = r
	}
}

// WithResource changes the collection path segment (default "users").
func WithResource(name string) Option {
	return func(c *Client) {
		c.resource = strings.Trim(name, "/")
	}
}

// WithLogger replaces the component logger, e.g. with one carrying more attrs.
func WithLogger(l log.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// New creates a client for endpoint, which must be an absolute http(s) URL.
func New(endpoint string, opts ...Option) (*Client, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid endpoint %q: want an absolute http(s) URL", endpoint)
	}

	c := &Client{
		baseURL:    strings.TrimSuffix(endpoint, "/"),
		resource:   defaultResource,
		httpClient: http.DefaultClient,
		logger:     log.Named("gateway"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Endpoint returns the base URL.
func (c *Client) Endpoint() string {
	return c.baseURL
}

// List fetches the whole collection in server order.
func (c *Client) List(ctx context.Context) ([]row.Row, error) {
	body, err := c.do(ctx, OpList, "", http.MethodGet, nil)
	if err != nil {
		return nil, err
	}
	rows, err := row.DecodeList(body)
	if err != nil {
		return nil, c.fail(ctx, &RequestFailed{Op: OpList, Err: err})
	}
	c.logger.Debug("listed users", slog.Int("count", len(rows)))
	return rows, nil
}

// Get fetches one record.
func (c *Client) Get(ctx context.Context, id string) (row.Row, error) {
	return c.one(ctx, OpGet, id, http.MethodGet, nil)
}

// Create posts a complete record, including its client-chosen id, and
// returns the server's echo.
func (c *Client) Create(ctx context.Context, r row.Row) (row.Row, error) {
	return c.one(ctx, OpCreate, "", http.MethodPost, r)
}

// UpdateFields sends only the given fields and returns the echo.
func (c *Client) UpdateFields(ctx context.Context, id string, fields row.Row) (row.Row, error) {
	return c.one(ctx, OpUpdate, id, http.MethodPatch, fields)
}

// Delete removes one record.
func (c *Client) Delete(ctx context.Context, id string) error {
	_, err := c.do(ctx, OpDelete, id, http.MethodDelete, nil)
	return err
}

func (c *Client) one(ctx context.Context, op Op, id, method string, payload row.Row) (row.Row, error) {
	body, err := c.do(ctx, op, id, method, payload)
	if err != nil {
		return nil, err
	}
	r, err := row.Decode(body)
	if err != nil {
		return nil, c.fail(ctx, &RequestFailed{Op: op, ID: id, Err: err})
	}
	return r, nil
}

func (c *Client) url(id string) string {
	u := c.baseURL + "/" + c.resource
	if id != "" {
		u += "/" + url.PathEscape(id)
	}
	return u
}

// do sends one request and returns the response body of a 2xx reply.
func (c *Client) do(ctx context.Context, op Op, id, method string, payload row.Row) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, c.fail(ctx, &RequestFailed{Op: op, ID: id, Err: fmt.Errorf("failed to marshal request: %w", err)})
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(id), reader)
	if err != nil {
		return nil, c.fail(ctx, &RequestFailed{Op: op, ID: id, Err: err})
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	}

	c.logger.Debug("sending request",
		slog.String("op", string(op)),
		slog.String("method", method),
		slog.String("url", req.URL.String()),
		slog.String("request_id", requestID))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.fail(ctx, &RequestFailed{Op: op, ID: id, Err: err})
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, c.fail(ctx, &RequestFailed{Op: op, ID: id, Status: resp.StatusCode, Err: err})
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.fail(ctx, &RequestFailed{
			Op:     op,
			ID:     id,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("unexpected status: %s", strings.TrimSpace(string(body))),
		})
	}
	return body, nil
}

// fail logs err and publishes it. Requests cut short by the caller's
// cancellation are only logged at debug level: nobody is waiting for them.
func (c *Client) fail(ctx context.Context, err *RequestFailed) *RequestFailed {
	if ctx.Err() != nil && errors.Is(err.Err, ctx.Err()) {
		c.logger.Debug("request canceled", slog.String("op", string(err.Op)), slog.String("id", err.ID))
		return err
	}

	c.logger.Error("request failed", slog.String("op", string(err.Op)), slog.String("error", err.Error()))
	if c.reporter != nil {
		c.reporter.Report(err)
	}
	return err
}
