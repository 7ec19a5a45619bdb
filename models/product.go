package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	IsActive    bool            `json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// StockCheck is the result of a pure availability read. It never mutates
// stock; actual decrement happens only inside an order transaction.
type StockCheck struct {
	ProductID    int  `json:"product_id"`
	Available    bool `json:"available"`
	CurrentStock int  `json:"current_stock"`
}
