package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kayung-developer/QuantumEdge/order"
)

// ErrNotFound marks a 404 from the status endpoint. The tracking store does
// not branch on it, but operators want it distinguishable in logs.
var ErrNotFound = fmt.Errorf("order not found")

// APIError carries a non-2xx response from the trade API.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("trade api status %d", e.StatusCode)
	}
	return fmt.Sprintf("trade api status %d: %s", e.StatusCode, e.Detail)
}

// CreateOrderRequest is the POST /trade/order body.
type CreateOrderRequest struct {
	Exchange      string      `json:"exchange"`
	Symbol        string      `json:"symbol"`
	OrderType     string      `json:"order_type"` // MARKET / LIMIT
	Side          string      `json:"side"`       // BUY / SELL
	Quantity      float64     `json:"quantity"`
	Price         float64     `json:"price,omitempty"`
	IsPaperTrade  bool        `json:"is_paper_trade"`
	IsAlgorithmic bool        `json:"is_algorithmic"`
	AlgoParams    *AlgoParams `json:"algo_params,omitempty"`
	ClientOrderID string      `json:"client_order_id,omitempty"`
}

// AlgoParams configures a TWAP parent: the backend splits it into
// NumChildren slices over DurationMinutes.
type AlgoParams struct {
	DurationMinutes int `json:"duration_minutes"`
	NumChildren     int `json:"num_children"`
}

// Client talks to the QuantumEdge trade API. HTTPClient is injectable so
// tests can point it at httptest; no real network calls are made by default.
type Client struct {
	BaseURL    string
	AuthToken  string
	HTTPClient *http.Client
	Limiter    RateLimiter
}

// NewDefaultHTTPClient provides an http.Client with a sane timeout.
func NewDefaultHTTPClient() *http.Client {
	return &http.Client{Timeout: 10 * time.Second}
}

// CreateOrder submits a new order via POST /trade/order. The backend replies
// 202 with the order's initial record (status pending_submit).
func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (order.Order, error) {
	var o order.Order
	body, err := json.Marshal(req)
	if err != nil {
		return o, err
	}
	if err := c.do(ctx, http.MethodPost, "/trade/order", bytes.NewReader(body), &o); err != nil {
		return o, err
	}
	if o.ID == "" {
		return o, fmt.Errorf("create order: empty id in response")
	}
	return o, nil
}

// GetOrder fetches the current record via GET /trade/order/{id}. This is the
// poll target; one call per non-terminal order per tick.
func (c *Client) GetOrder(ctx context.Context, id string) (order.Order, error) {
	var o order.Order
	if id == "" {
		return o, fmt.Errorf("order id required")
	}
	err := c.do(ctx, http.MethodGet, "/trade/order/"+id, nil, &o)
	return o, err
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out interface{}) error {
	if c == nil || c.HTTPClient == nil {
		return fmt.Errorf("http client not set")
	}
	if c.Limiter != nil {
		c.Limiter.Wait()
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.AuthToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.AuthToken)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Detail: readDetail(resp.Body)}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// readDetail pulls the backend's {"detail": "..."} error body when present.
func readDetail(r io.Reader) string {
	var e struct {
		Detail string `json:"detail"`
	}
	if err := json.NewDecoder(io.LimitReader(r, 4096)).Decode(&e); err != nil {
		return ""
	}
	return e.Detail
}
