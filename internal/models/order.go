package models

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

type OrderType string
type OrderSide string
type OrderStatus string

const (
	OrderTypeLimit  OrderType = "limit"
	OrderTypeMarket OrderType = "market"

	OrderSideBuy  OrderSide = "BUY"
	OrderSideSell OrderSide = "SELL"

	OrderStatusOpen        OrderStatus = "OPEN"
	OrderStatusCancelled   OrderStatus = "CANCELLED"
	OrderStatusFilled      OrderStatus = "FILLED"
	OrderStatusPartialFill OrderStatus = "PARTIAL_FILL"
	OrderStatusCancelling  OrderStatus = "CANCELLING"
)

// UnmarshalJSON rejects status tags outside the exchange's closed set, so a
// contract change surfaces as a decode error instead of a silent default.
func (s *OrderStatus) UnmarshalJSON(data []byte) error {
	var tag string
	if err := json.Unmarshal(data, &tag); err != nil {
		return fmt.Errorf("order status must be a string: %v", err)
	}

	switch OrderStatus(tag) {
	case OrderStatusOpen, OrderStatusCancelled, OrderStatusFilled,
		OrderStatusPartialFill, OrderStatusCancelling:
		*s = OrderStatus(tag)
		return nil
	}
	return fmt.Errorf("unknown order status %q", tag)
}

// Terminal reports whether no further status transition is expected.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusFilled || s == OrderStatusCancelled
}

// ValidTransition reports whether an order may move from old to new.
// A terminal status never regresses to a non-terminal one; a response
// claiming otherwise is a data-consistency error.
func ValidTransition(old, new OrderStatus) bool {
	return !old.Terminal() || new.Terminal()
}

// OrderRecord is the exchange's view of a placed order. Quantity fields are
// decimal strings on the wire.
type OrderRecord struct {
	OrderID     string          `json:"order_id"`
	AccountID   string          `json:"account_id"`
	OrderSymbol string          `json:"order_symbol"`
	OrderSide   OrderSide       `json:"order_side"`
	Status      OrderStatus     `json:"status"`
	CreateTime  uint64          `json:"createTime"`
	Type        OrderType       `json:"type"`
	OrderPrice  decimal.Decimal `json:"order_price"`
	OrderSize   decimal.Decimal `json:"order_size"`
	Executed    decimal.Decimal `json:"executed"`
	StopPrice   decimal.Decimal `json:"stop_price"`
	Avg         decimal.Decimal `json:"avg"`
}

// CancelResult echoes the identifiers of a cancelled order.
type CancelResult struct {
	OrderID     string `json:"order_id"`
	OrderSymbol string `json:"order_symbol"`
}
