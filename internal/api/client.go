// Package api implements the typed REST client for the inventory backend.
//
// Every method issues exactly one HTTP request. There are no client-side
// retries, no caching, and no pagination; a request, once sent, runs to
// completion or failure. Any non-2xx response becomes a *StatusError whose
// message is the response body text, so workspaces can surface it verbatim.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/stockdeck/internal/logging"
)

// StatusError is a non-2xx backend response. Detail carries the trimmed
// response body when the server sent one.
type StatusError struct {
	Status int
	Detail string
}

// Error returns the body text when present, else a generic fallback.
func (e *StatusError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("server returned status %d", e.Status)
}

// Client talks to the inventory backend.
type Client struct {
	base *url.URL
	http *http.Client
	log  *logging.Logger
}

// New creates a client for the backend at base. A zero timeout disables the
// client-side bound entirely, matching the browser original.
func New(base string, timeout time.Duration, log *logging.Logger) (*Client, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid backend host %q: %w", base, err)
	}
	if !u.IsAbs() {
		return nil, fmt.Errorf("backend host must be an absolute URL, got %q", base)
	}
	if log == nil {
		log = logging.NewNop()
	}
	return &Client{
		base: u,
		http: &http.Client{Timeout: timeout},
		log:  log.Named("api"),
	}, nil
}

// BaseURL returns the backend base URL the client was built with.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// endpoint joins path (and optional query) onto the base URL.
func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + path
	if query != nil {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// do issues one request. A non-nil body is JSON-encoded. When out is
// non-nil, a 2xx response body is decoded into it; decode failures on an
// empty body are ignored since several endpoints return no payload.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	endpoint := c.endpoint(path, query)
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-Id", requestID)

	c.log.Debug("request",
		zap.String("method", method),
		zap.String("url", endpoint),
		zap.String("request_id", requestID))

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach backend: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(resp.Body)
		c.log.Warn("request failed",
			zap.String("method", method),
			zap.String("url", endpoint),
			zap.Int("status", resp.StatusCode),
			zap.String("request_id", requestID))
		return &StatusError{Status: resp.StatusCode, Detail: strings.TrimSpace(string(detail))}
	}

	if out == nil {
		return nil
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Login authenticates the user. Servers that omit a user payload still count
// as success; the caller falls back to the submitted email.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodPost, "/api/login", nil, req, &user); err != nil {
		return nil, err
	}
	if user.Email == "" && user.UserID == "" {
		return nil, nil
	}
	return &user, nil
}

// Register creates an account and returns the server's confirmation.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (Confirmation, error) {
	var conf Confirmation
	err := c.do(ctx, http.MethodPost, "/api/register", nil, req, &conf)
	return conf, err
}

// ListStocks fetches every stock visible to the client. Ownership filtering
// happens client-side.
func (c *Client) ListStocks(ctx context.Context) ([]Stock, error) {
	var stocks []Stock
	if err := c.do(ctx, http.MethodGet, "/api/stocks", nil, nil, &stocks); err != nil {
		return nil, err
	}
	return stocks, nil
}

// CreateStock creates a stock and returns the server's confirmation.
func (c *Client) CreateStock(ctx context.Context, req CreateStockRequest) (Confirmation, error) {
	var conf Confirmation
	err := c.do(ctx, http.MethodPost, "/api/stocks", nil, req, &conf)
	return conf, err
}

// RenameStock updates the stock's name.
func (c *Client) RenameStock(ctx context.Context, stockID string, req CreateStockRequest) error {
	return c.do(ctx, http.MethodPut, "/api/stocks/"+url.PathEscape(stockID), nil, req, nil)
}

// DeleteStock removes a stock.
func (c *Client) DeleteStock(ctx context.Context, stockID string) error {
	return c.do(ctx, http.MethodDelete, "/api/stocks/"+url.PathEscape(stockID), nil, nil, nil)
}

// ListProducts fetches products, filtered server-side by stock when stockID
// is non-empty.
func (c *Client) ListProducts(ctx context.Context, stockID string) ([]Product, error) {
	var query url.Values
	if stockID != "" {
		query = url.Values{"stockId": {stockID}}
	}
	var products []Product
	if err := c.do(ctx, http.MethodGet, "/api/products", query, nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// CreateProduct adds a product to a stock. The backend uses PUT for creation
// on this resource.
func (c *Client) CreateProduct(ctx context.Context, req CreateProductRequest) (Confirmation, error) {
	var conf Confirmation
	err := c.do(ctx, http.MethodPut, "/api/products", nil, req, &conf)
	return conf, err
}

// DeleteProduct removes a product.
func (c *Client) DeleteProduct(ctx context.Context, productID string) error {
	return c.do(ctx, http.MethodDelete, "/api/products/"+url.PathEscape(productID), nil, nil, nil)
}

// ListCategories fetches categories, filtered server-side by stock when
// stockID is non-empty.
func (c *Client) ListCategories(ctx context.Context, stockID string) ([]Category, error) {
	var query url.Values
	if stockID != "" {
		query = url.Values{"stockId": {stockID}}
	}
	var categories []Category
	if err := c.do(ctx, http.MethodGet, "/api/categories", query, nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// CreateCategories creates the whole batch in one request.
func (c *Client) CreateCategories(ctx context.Context, batch []CreateCategoryRequest) error {
	return c.do(ctx, http.MethodPost, "/api/categories", nil, batch, nil)
}

// DeleteCategory removes a category. idOrName is the CategoryID when the
// server assigned one, else the category name stands in as identity.
func (c *Client) DeleteCategory(ctx context.Context, idOrName string) error {
	return c.do(ctx, http.MethodDelete, "/api/categories/"+url.PathEscape(idOrName), nil, nil, nil)
}

// Health probes the backend's health endpoint.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil, nil)
}
