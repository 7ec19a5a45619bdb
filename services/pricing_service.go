package services

import (
	"context"

	"shop-backend/models"

	"github.com/shopspring/decimal"
)

// PricedLine is the pricing engine's input: one cart or order line.
type PricedLine struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

type Totals struct {
	Subtotal     decimal.Decimal
	Tax          decimal.Decimal
	ShippingCost decimal.Decimal
	Discount     decimal.Decimal
	Total        decimal.Decimal
}

// PricingEngine computes line and aggregate totals with exact decimal
// arithmetic. It is pure: no I/O, no mutation.
type PricingEngine struct {
	taxRate               decimal.Decimal
	shippingFee           decimal.Decimal
	freeShippingThreshold decimal.Decimal
}

func NewPricingEngine(taxRate, shippingFee, freeShippingThreshold decimal.Decimal) *PricingEngine {
	return &PricingEngine{
		taxRate:               taxRate,
		shippingFee:           shippingFee,
		freeShippingThreshold: freeShippingThreshold,
	}
}

func (e *PricingEngine) LineTotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}

// Totals computes subtotal, tax, shipping, and total in that fixed order so
// rounding stays reproducible. Tax is rounded half-up to 2 decimal places;
// discount is subtracted last.
func (e *PricingEngine) Totals(lines []PricedLine, discount decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(e.LineTotal(line.UnitPrice, line.Quantity))
	}

	tax := subtotal.Mul(e.taxRate).Round(2)

	shipping := e.shippingFee
	if e.freeShippingThreshold.IsPositive() && subtotal.GreaterThanOrEqual(e.freeShippingThreshold) {
		shipping = decimal.Zero
	}

	total := subtotal.Add(tax).Add(shipping).Sub(discount)

	return Totals{
		Subtotal:     subtotal,
		Tax:          tax,
		ShippingCost: shipping,
		Discount:     discount,
		Total:        total,
	}
}

// DiscountProvider is the external coupon/promotion collaborator. The
// engine only subtracts what it returns.
type DiscountProvider interface {
	Discount(ctx context.Context, owner models.CartOwner, subtotal decimal.Decimal) (decimal.Decimal, error)
}

// NoDiscount is the default provider when no promotion system is wired.
type NoDiscount struct{}

func (NoDiscount) Discount(context.Context, models.CartOwner, decimal.Decimal) (decimal.Decimal, error) {
	return decimal.Zero, nil
}
