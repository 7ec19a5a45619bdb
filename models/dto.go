package models

import "github.com/shopspring/decimal"

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	FullName string `json:"full_name" binding:"required,min=3"`
	Phone    string `json:"phone" binding:"omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AddItemRequest struct {
	ProductID int `json:"product_id" binding:"required,min=1"`
	Quantity  int `json:"quantity" binding:"required,min=1"`
}

type UpdateItemRequest struct {
	Quantity *int `json:"quantity" binding:"required,min=0"`
}

type CreateAddressRequest struct {
	Label      string `json:"label" binding:"required"`
	Line1      string `json:"line1" binding:"required"`
	Line2      string `json:"line2"`
	City       string `json:"city" binding:"required"`
	PostalCode string `json:"postal_code"`
	Phone      string `json:"phone"`
}

type OrderItemRequest struct {
	ProductID int `json:"product_id" binding:"required,min=1"`
	Quantity  int `json:"quantity" binding:"required,min=1"`
}

// CreateOrderRequest carries checkout input. Subtotal and Total are accepted
// for wire compatibility but always ignored: the server recomputes totals
// from items and current catalog prices. Empty Items means "check out my
// cart".
type CreateOrderRequest struct {
	AddressID      int                `json:"address_id" binding:"required,min=1"`
	PaymentMethod  string             `json:"payment_method" binding:"required"`
	Items          []OrderItemRequest `json:"items"`
	IdempotencyKey string             `json:"idempotency_key"`
	Subtotal       decimal.Decimal    `json:"subtotal"`
	Total          decimal.Decimal    `json:"total"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Notes  string `json:"notes"`
}

type CreateProductRequest struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price" binding:"required"`
	Stock       int             `json:"stock" binding:"min=0"`
	IsActive    bool            `json:"is_active"`
}

type UpdateProductRequest struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock"`
	IsActive    *bool            `json:"is_active"`
}

type OrderFilter struct {
	UserID int
	Status OrderStatus
	Page   int
	Limit  int
}
