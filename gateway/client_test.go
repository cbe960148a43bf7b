package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kayung-developer/QuantumEdge/order"
)

func TestClientCreateOrder(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/trade/order" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Fatalf("missing auth header, got %q", got)
		}
		var req CreateOrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("bad body: %v", err)
		}
		if req.Symbol != "BTCUSDT" || req.Side != "BUY" {
			t.Fatalf("request not forwarded: %+v", req)
		}
		w.WriteHeader(http.StatusAccepted)
		io.WriteString(w, `{"id":"ord-1","symbol":"BTCUSDT","side":"BUY","order_type":"LIMIT","quantity_requested":0.5,"status":"pending_submit"}`)
	}))
	defer ts.Close()

	cli := &Client{BaseURL: ts.URL, AuthToken: "tok", HTTPClient: ts.Client()}
	o, err := cli.CreateOrder(context.Background(), CreateOrderRequest{
		Exchange: "Binance", Symbol: "BTCUSDT", OrderType: "LIMIT", Side: "BUY", Quantity: 0.5, Price: 50000,
	})
	if err != nil {
		t.Fatalf("create err: %v", err)
	}
	if o.ID != "ord-1" || o.Status != order.StatusPendingSubmit {
		t.Fatalf("unexpected order %+v", o)
	}
}

func TestClientGetOrder(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/trade/order/ord-2" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		io.WriteString(w, `{"id":"ord-2","status":"filled","quantity_requested":10,"quantity_filled":10,"average_fill_price":101.5}`)
	}))
	defer ts.Close()

	cli := &Client{BaseURL: ts.URL, HTTPClient: ts.Client()}
	o, err := cli.GetOrder(context.Background(), "ord-2")
	if err != nil {
		t.Fatalf("get err: %v", err)
	}
	if o.Status != order.StatusFilled || o.QtyFilled != 10 || o.AvgFillPrice != 101.5 {
		t.Fatalf("unexpected order %+v", o)
	}
}

func TestClientGetOrderNotFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"detail":"Order not found."}`)
	}))
	defer ts.Close()

	cli := &Client{BaseURL: ts.URL, HTTPClient: ts.Client()}
	if _, err := cli.GetOrder(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestClientSurfacesAPIErrorDetail(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"detail":"Price is required for LIMIT orders."}`)
	}))
	defer ts.Close()

	cli := &Client{BaseURL: ts.URL, HTTPClient: ts.Client()}
	_, err := cli.CreateOrder(context.Background(), CreateOrderRequest{Symbol: "BTCUSDT"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest || apiErr.Detail == "" {
		t.Fatalf("detail not captured: %+v", apiErr)
	}
}
