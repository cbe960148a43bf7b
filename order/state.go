package order

import "time"

// Status represents the lifecycle state of an orchestrated order as reported
// by the QuantumEdge backend. Values mirror the wire format.
type Status string

const (
	// Non-terminal states.
	StatusPendingSubmit Status = "pending_submit"
	StatusSubmitted     Status = "submitted"
	StatusAccepted      Status = "accepted"
	StatusPartialFilled Status = "partially_filled"

	// Terminal states.
	StatusFilled   Status = "filled"
	StatusCanceled Status = "canceled"
	StatusRejected Status = "rejected"
	StatusExpired  Status = "expired"
	StatusError    Status = "error"
)

// Terminal reports whether the status is an end-of-life state. Terminal
// orders are never polled again.
func (s Status) Terminal() bool {
	switch s {
	case StatusFilled, StatusCanceled, StatusRejected, StatusExpired, StatusError:
		return true
	default:
		return false
	}
}

// Active reports whether the order may still change server-side.
func (s Status) Active() bool {
	return s != "" && !s.Terminal()
}

// Order is the client-side view of an orchestrated order. Field names follow
// the backend's JSON schema; a status response replaces the record wholesale.
type Order struct {
	ID              string  `json:"id"`
	Exchange        string  `json:"exchange"`
	Symbol          string  `json:"symbol"`
	ExchangeOrderID string  `json:"exchange_order_id,omitempty"`
	OrderType       string  `json:"order_type"` // MARKET / LIMIT
	Side            string  `json:"side"`       // BUY / SELL
	QtyRequested    float64 `json:"quantity_requested"`
	QtyFilled       float64 `json:"quantity_filled"`
	Price           float64 `json:"price,omitempty"`
	AvgFillPrice    float64 `json:"average_fill_price,omitempty"`
	Status          Status  `json:"status"`
	FailureReason   string  `json:"failure_reason,omitempty"`

	// TWAP parent/child linkage; grouping is a read-side projection only.
	ParentOrderID string `json:"parent_order_id,omitempty"`
	IsAlgorithmic bool   `json:"is_algorithmic"`

	IsPaperTrade bool `json:"is_paper_trade"`

	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// RemainingQty returns the still-unfilled part of the requested quantity.
func (o Order) RemainingQty() float64 {
	r := o.QtyRequested - o.QtyFilled
	if r < 0 {
		return 0
	}
	return r
}
