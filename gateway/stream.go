package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/kayung-developer/QuantumEdge/metrics"
	"github.com/kayung-developer/QuantumEdge/order"
)

// StreamHandler receives each pushed order record. Handlers must not block;
// the store's apply path is cheap enough to call inline.
type StreamHandler func(order.Order)

// Stream subscribes to the backend's order update push channel. Polling
// remains the source of truth; the stream just shortens the latency between
// a fill and the UI seeing it. Disconnects reconnect with exponential
// backoff until the context is canceled.
type Stream struct {
	Endpoint  string // e.g. wss://api.quantumedge.io/ws/orders
	AuthToken string
	Dialer    *websocket.Dialer
	Logger    *zap.Logger
	Handler   StreamHandler
}

type streamMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Run blocks until ctx is canceled, reconnecting on any read or dial error.
func (s *Stream) Run(ctx context.Context) error {
	if s.Endpoint == "" {
		return fmt.Errorf("stream endpoint required")
	}
	dialer := s.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	logger := s.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = time.Second
	bo.MaxInterval = 30 * time.Second
	bo.MaxElapsedTime = 0 // reconnect forever

	for {
		err := s.readLoop(ctx, dialer, bo)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		wait := bo.NextBackOff()
		metrics.IncStreamReconnect()
		logger.Warn("order stream disconnected, reconnecting",
			zap.Error(err),
			zap.Duration("backoff", wait))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

func (s *Stream) readLoop(ctx context.Context, dialer *websocket.Dialer, bo *backoff.ExponentialBackOff) error {
	header := http.Header{}
	if s.AuthToken != "" {
		header.Set("Authorization", "Bearer "+s.AuthToken)
	}
	conn, resp, err := dialer.DialContext(ctx, s.Endpoint, header)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("dial %s: status %d: %w", s.Endpoint, resp.StatusCode, err)
		}
		return err
	}
	defer conn.Close()
	bo.Reset()

	// Unblock ReadMessage when the context ends.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		s.dispatch(message)
	}
}

func (s *Stream) dispatch(message []byte) {
	if s.Handler == nil {
		return
	}
	var msg streamMessage
	if err := json.Unmarshal(message, &msg); err != nil || msg.Event == "" {
		// Bare order record without an envelope.
		var o order.Order
		if err := json.Unmarshal(message, &o); err == nil && o.ID != "" {
			s.Handler(o)
		}
		return
	}
	if msg.Event != "order_update" {
		return
	}
	var o order.Order
	if err := json.Unmarshal(msg.Data, &o); err == nil && o.ID != "" {
		s.Handler(o)
	}
}
