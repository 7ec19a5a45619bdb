package models

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// CartOwner identifies who a cart belongs to: exactly one of UserID or
// GuestSessionID is set, never both, never neither.
type CartOwner struct {
	UserID         *int
	GuestSessionID *string
}

func UserOwner(userID int) CartOwner {
	return CartOwner{UserID: &userID}
}

func GuestOwner(sessionID string) CartOwner {
	return CartOwner{GuestSessionID: &sessionID}
}

func (o CartOwner) Valid() bool {
	return (o.UserID != nil) != (o.GuestSessionID != nil)
}

// Key returns a stable string identity for cache keys and logs.
func (o CartOwner) Key() string {
	if o.UserID != nil {
		return "user:" + strconv.Itoa(*o.UserID)
	}
	if o.GuestSessionID != nil {
		return "guest:" + *o.GuestSessionID
	}
	return ""
}

type Cart struct {
	ID             int        `json:"id"`
	UserID         *int       `json:"user_id,omitempty"`
	GuestSessionID *string    `json:"guest_session_id,omitempty"`
	Version        int        `json:"version"`
	ExpiresAt      time.Time  `json:"expires_at"`
	Items          []CartItem `json:"items,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (c *Cart) Owner() CartOwner {
	return CartOwner{UserID: c.UserID, GuestSessionID: c.GuestSessionID}
}

func (c *Cart) Expired(now time.Time) bool {
	return !c.ExpiresAt.After(now)
}

// CartItem is one line of a cart. UnitPrice is a snapshot captured at
// add-time; it is refreshed on read when the catalog price moved, unlike an
// OrderItem price which is frozen forever.
type CartItem struct {
	ID        int             `json:"id"`
	CartID    int             `json:"cart_id"`
	ProductID int             `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// CartItemView is a cart line as returned to clients: the line total is
// always computed from the current catalog price, and PriceChanged marks
// lines whose snapshot no longer matched the catalog at read time.
type CartItemView struct {
	ID           int             `json:"id"`
	ProductID    int             `json:"product_id"`
	ProductName  string          `json:"product_name"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	LineTotal    decimal.Decimal `json:"line_total"`
	PriceChanged bool            `json:"price_changed,omitempty"`
	OldUnitPrice decimal.Decimal `json:"old_unit_price,omitempty"`
}

type CartView struct {
	ID           int             `json:"id"`
	Items        []CartItemView  `json:"items"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	Tax          decimal.Decimal `json:"tax"`
	ShippingCost decimal.Decimal `json:"shipping_cost"`
	Discount     decimal.Decimal `json:"discount"`
	Total        decimal.Decimal `json:"total"`
	ExpiresAt    time.Time       `json:"expires_at"`
}

// MergeResult reports what the guest-to-user cart merge did.
type MergeResult struct {
	CartID  int   `json:"cart_id"`
	Merged  int   `json:"merged_items"`
	Moved   int   `json:"moved_items"`
	Clamped []int `json:"clamped_product_ids,omitempty"`
}
