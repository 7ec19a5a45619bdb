package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderConfirmed OrderStatus = "CONFIRMED"
	OrderShipped   OrderStatus = "SHIPPED"
	OrderDelivered OrderStatus = "DELIVERED"
	OrderCancelled OrderStatus = "CANCELLED"
)

func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch OrderStatus(s) {
	case OrderPending, OrderConfirmed, OrderShipped, OrderDelivered, OrderCancelled:
		return OrderStatus(s), true
	}
	return "", false
}

// CanTransitionTo enforces the one-directional order lifecycle:
// PENDING -> CONFIRMED -> SHIPPED -> DELIVERED, with CANCELLED reachable
// from PENDING or CONFIRMED only.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	switch s {
	case OrderPending:
		return next == OrderConfirmed || next == OrderCancelled
	case OrderConfirmed:
		return next == OrderShipped || next == OrderCancelled
	case OrderShipped:
		return next == OrderDelivered
	}
	return false
}

type Order struct {
	ID             int             `json:"id"`
	OrderNumber    string          `json:"order_number"`
	UserID         int             `json:"user_id"`
	AddressID      int             `json:"address_id"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	Tax            decimal.Decimal `json:"tax"`
	ShippingCost   decimal.Decimal `json:"shipping_cost"`
	Discount       decimal.Decimal `json:"discount"`
	Total          decimal.Decimal `json:"total"`
	PaymentMethod  string          `json:"payment_method"`
	Status         OrderStatus     `json:"status"`
	IdempotencyKey string          `json:"-"`
	Notes          *string         `json:"notes,omitempty"`
	Items          []OrderItem     `json:"items,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	ConfirmedAt    *time.Time      `json:"confirmed_at,omitempty"`
	ShippedAt      *time.Time      `json:"shipped_at,omitempty"`
	DeliveredAt    *time.Time      `json:"delivered_at,omitempty"`
}

// OrderItem freezes the unit price at order time. It must never change
// after creation.
type OrderItem struct {
	ID          int             `json:"id"`
	OrderID     int             `json:"order_id"`
	ProductID   int             `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

type TransactionStatus string

const (
	TransactionPending TransactionStatus = "PENDING"
	TransactionPaid    TransactionStatus = "PAID"
	TransactionFailed  TransactionStatus = "FAILED"
)

// PaymentTransaction is the initial payment record created atomically with
// its order. Settlement currency is fixed to BDT in this domain.
type PaymentTransaction struct {
	ID         int               `json:"id"`
	OrderID    int               `json:"order_id"`
	Amount     decimal.Decimal   `json:"amount"`
	Currency   string            `json:"currency"`
	Status     TransactionStatus `json:"status"`
	GatewayRef string            `json:"gateway_ref,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}

const TransactionCurrency = "BDT"
