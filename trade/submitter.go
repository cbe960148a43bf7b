// Package trade implements the order submission flow: validate the request,
// post it to the trade API, and hand the accepted record to the tracking
// store exactly once.
package trade

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kayung-developer/QuantumEdge/gateway"
	"github.com/kayung-developer/QuantumEdge/metrics"
	"github.com/kayung-developer/QuantumEdge/order"
)

// Creator is the slice of the gateway the submitter needs.
type Creator interface {
	CreateOrder(ctx context.Context, req gateway.CreateOrderRequest) (order.Order, error)
}

// Tracker is the slice of the store the submitter needs.
type Tracker interface {
	Add(o order.Order) bool
}

// Submitter posts new orders and registers the server's response with the
// tracker. Validation mirrors the backend's pre-submission rules so obvious
// mistakes fail before any network round trip.
type Submitter struct {
	Client  Creator
	Tracker Tracker
	Logger  *zap.Logger
}

// Submit validates and posts req. On acceptance the server-assigned record
// is added to the tracker and returned.
func (s *Submitter) Submit(ctx context.Context, req gateway.CreateOrderRequest) (order.Order, error) {
	if err := Validate(&req); err != nil {
		return order.Order{}, err
	}
	if req.ClientOrderID == "" {
		req.ClientOrderID = uuid.NewString()
	}

	o, err := s.Client.CreateOrder(ctx, req)
	if err != nil {
		metrics.IncOrderSubmitted("rejected")
		if s.Logger != nil {
			s.Logger.Warn("order submission failed",
				zap.String("symbol", req.Symbol),
				zap.String("side", req.Side),
				zap.Error(err))
		}
		return order.Order{}, err
	}

	metrics.IncOrderSubmitted("accepted")
	if s.Tracker != nil {
		s.Tracker.Add(o)
	}
	if s.Logger != nil {
		s.Logger.Info("order submitted",
			zap.String("order_id", o.ID),
			zap.String("symbol", o.Symbol),
			zap.String("side", o.Side),
			zap.Float64("quantity", o.QtyRequested),
			zap.Bool("paper", o.IsPaperTrade),
			zap.Bool("algorithmic", o.IsAlgorithmic))
	}
	return o, nil
}

// Validate normalizes and checks a create request in place.
func Validate(req *gateway.CreateOrderRequest) error {
	req.Symbol = strings.ToUpper(strings.TrimSpace(req.Symbol))
	req.Side = strings.ToUpper(strings.TrimSpace(req.Side))
	req.OrderType = strings.ToUpper(strings.TrimSpace(req.OrderType))

	if req.Symbol == "" {
		return fmt.Errorf("symbol is required")
	}
	if req.Side != "BUY" && req.Side != "SELL" {
		return fmt.Errorf("side must be BUY or SELL, got %q", req.Side)
	}
	if req.OrderType != "MARKET" && req.OrderType != "LIMIT" {
		return fmt.Errorf("order type must be MARKET or LIMIT, got %q", req.OrderType)
	}
	if req.Quantity <= 0 {
		return fmt.Errorf("quantity must be positive")
	}
	if req.OrderType == "LIMIT" && req.Price <= 0 {
		return fmt.Errorf("price is required for LIMIT orders")
	}
	if req.IsAlgorithmic {
		if req.AlgoParams == nil {
			return fmt.Errorf("algo params required for algorithmic orders")
		}
		if req.AlgoParams.DurationMinutes <= 0 || req.AlgoParams.NumChildren <= 0 {
			return fmt.Errorf("algo params must have positive duration and child count")
		}
	}
	return nil
}
