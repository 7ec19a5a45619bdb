package services

import (
	"context"
	"errors"
	"log"
	"time"

	"shop-backend/models"
	"shop-backend/repositories"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// CartService owns cart and cart-item lifecycle. Every mutation runs inside
// a transaction that holds the cart row lock, so writes to one cart are
// serialized while different carts mutate fully in parallel. Reads are
// lock-free and see the latest committed state.
type CartService struct {
	store     repositories.Store
	carts     repositories.CartRepository
	products  repositories.ProductRepository
	pricing   *PricingEngine
	discounts DiscountProvider
	cache     CartCache
	ttl       time.Duration
	maxItems  int
}

func NewCartService(
	store repositories.Store,
	carts repositories.CartRepository,
	products repositories.ProductRepository,
	pricing *PricingEngine,
	discounts DiscountProvider,
	cache CartCache,
	ttl time.Duration,
	maxItems int,
) *CartService {
	return &CartService{
		store:     store,
		carts:     carts,
		products:  products,
		pricing:   pricing,
		discounts: discounts,
		cache:     cache,
		ttl:       ttl,
		maxItems:  maxItems,
	}
}

// GetOrCreateCart is idempotent: an owner with a live cart gets it back,
// never a duplicate.
func (s *CartService) GetOrCreateCart(ctx context.Context, owner models.CartOwner) (*models.Cart, error) {
	if !owner.Valid() {
		return nil, models.NewValidationError("cart owner must be exactly one of user or guest session")
	}

	cart, err := s.carts.GetByOwner(ctx, s.store, owner)
	if err == nil {
		return cart, nil
	}
	var notFound *models.NotFoundError
	if !errors.As(err, &notFound) {
		return nil, engineError(err)
	}

	cart, err = s.carts.Create(ctx, s.store, owner, time.Now().Add(s.ttl))
	if err == nil {
		return cart, nil
	}

	// A concurrent first-add won the unique index race; return its cart.
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		cart, err = s.carts.GetByOwner(ctx, s.store, owner)
		if err == nil {
			return cart, nil
		}
	}
	return nil, engineError(err)
}

// AddItem upserts a product into the owner's cart: adding an already
// present product sums quantities instead of inserting a second row. The
// stock check here is soft; availability is re-verified at order time.
func (s *CartService) AddItem(ctx context.Context, owner models.CartOwner, productID, quantity int) (*models.CartItem, error) {
	if quantity < 1 {
		return nil, models.NewValidationError("quantity must be a positive integer")
	}

	cart, err := s.GetOrCreateCart(ctx, owner)
	if err != nil {
		return nil, err
	}

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return nil, engineError(err)
	}
	defer tx.Rollback(ctx)

	if _, err := s.carts.Lock(ctx, tx, cart.ID); err != nil {
		return nil, engineError(err)
	}

	product, err := s.products.GetByID(ctx, tx, productID)
	if err != nil {
		return nil, engineError(err)
	}

	item, err := s.carts.UpsertItem(ctx, tx, cart.ID, productID, quantity, product.Price)
	if err != nil {
		return nil, engineError(err)
	}

	if item.Quantity > product.Stock {
		return nil, &models.InsufficientStockError{
			ProductID: productID,
			Requested: item.Quantity,
			Available: product.Stock,
		}
	}

	if s.maxItems > 0 {
		count, err := s.carts.CountItems(ctx, tx, cart.ID)
		if err != nil {
			return nil, engineError(err)
		}
		if count > s.maxItems {
			return nil, models.NewValidationError("cart item limit of %d reached", s.maxItems)
		}
	}

	if err := s.carts.Touch(ctx, tx, cart.ID, time.Now().Add(s.ttl)); err != nil {
		return nil, engineError(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, engineError(err)
	}

	s.invalidate(ctx, owner)
	return item, nil
}

// UpdateItem replaces an item's quantity; quantity 0 deletes the row.
func (s *CartService) UpdateItem(ctx context.Context, owner models.CartOwner, itemID, quantity int) (*models.CartItem, error) {
	if quantity < 0 {
		return nil, models.NewValidationError("quantity must not be negative")
	}

	cart, err := s.carts.GetByOwner(ctx, s.store, owner)
	if err != nil {
		return nil, engineError(err)
	}

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return nil, engineError(err)
	}
	defer tx.Rollback(ctx)

	if _, err := s.carts.Lock(ctx, tx, cart.ID); err != nil {
		return nil, engineError(err)
	}

	item, err := s.carts.GetItem(ctx, tx, cart.ID, itemID)
	if err != nil {
		return nil, engineError(err)
	}

	if quantity == 0 {
		if err := s.carts.DeleteItem(ctx, tx, item.ID); err != nil {
			return nil, engineError(err)
		}
		if err := tx.Commit(ctx); err != nil {
			return nil, engineError(err)
		}
		s.invalidate(ctx, owner)
		return nil, nil
	}

	product, err := s.products.GetByID(ctx, tx, item.ProductID)
	if err != nil {
		return nil, engineError(err)
	}
	if quantity > product.Stock {
		return nil, &models.InsufficientStockError{
			ProductID: item.ProductID,
			Requested: quantity,
			Available: product.Stock,
		}
	}

	if err := s.carts.SetItemQuantity(ctx, tx, item.ID, quantity); err != nil {
		return nil, engineError(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, engineError(err)
	}

	item.Quantity = quantity
	s.invalidate(ctx, owner)
	return item, nil
}

func (s *CartService) RemoveItem(ctx context.Context, owner models.CartOwner, itemID int) error {
	_, err := s.UpdateItem(ctx, owner, itemID, 0)
	return err
}

// Clear destroys the owner's cart entirely.
func (s *CartService) Clear(ctx context.Context, owner models.CartOwner) error {
	cart, err := s.carts.GetByOwner(ctx, s.store, owner)
	if err != nil {
		return engineError(err)
	}

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return engineError(err)
	}
	defer tx.Rollback(ctx)

	if _, err := s.carts.Lock(ctx, tx, cart.ID); err != nil {
		return engineError(err)
	}
	if err := s.carts.Delete(ctx, tx, cart.ID); err != nil {
		return engineError(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return engineError(err)
	}

	s.invalidate(ctx, owner)
	return nil
}

// GetCart assembles the owner's cart with live totals. When a line's price
// snapshot no longer matches the catalog, the line total is recomputed from
// the current price, the snapshot is refreshed, and the line is flagged so
// the caller can surface the change.
func (s *CartService) GetCart(ctx context.Context, owner models.CartOwner) (*models.CartView, error) {
	if view, err := s.cache.Get(ctx, owner.Key()); err == nil {
		// Expiry is not a mutation, so nothing invalidated this entry; a
		// cached view must not outlive its cart.
		if view.ExpiresAt.After(time.Now()) {
			return view, nil
		}
		s.invalidate(ctx, owner)
	} else if !errors.Is(err, ErrCacheMiss) {
		log.Printf("cart cache get error: %v", err)
	}

	cart, err := s.carts.GetByOwner(ctx, s.store, owner)
	if err != nil {
		return nil, engineError(err)
	}

	items, err := s.carts.ListItems(ctx, s.store, cart.ID)
	if err != nil {
		return nil, engineError(err)
	}

	view := &models.CartView{
		ID:        cart.ID,
		Items:     make([]models.CartItemView, 0, len(items)),
		ExpiresAt: cart.ExpiresAt,
	}
	lines := make([]PricedLine, 0, len(items))

	for _, item := range items {
		iv := models.CartItemView{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		}

		product, err := s.products.GetByID(ctx, s.store, item.ProductID)
		if err == nil {
			iv.ProductName = product.Name
			if !product.Price.Equal(item.UnitPrice) {
				iv.PriceChanged = true
				iv.OldUnitPrice = item.UnitPrice
				iv.UnitPrice = product.Price
				if err := s.carts.RefreshItemPrice(ctx, s.store, item.ID, product.Price); err != nil {
					log.Printf("failed to refresh price snapshot for cart item %d: %v", item.ID, err)
				}
			}
		}

		iv.LineTotal = s.pricing.LineTotal(iv.UnitPrice, iv.Quantity)
		view.Items = append(view.Items, iv)
		lines = append(lines, PricedLine{UnitPrice: iv.UnitPrice, Quantity: iv.Quantity})
	}

	subtotal := s.pricing.Totals(lines, decimal.Zero).Subtotal
	discount, err := s.discounts.Discount(ctx, owner, subtotal)
	if err != nil {
		log.Printf("discount provider error, applying none: %v", err)
		discount = decimal.Zero
	}

	totals := s.pricing.Totals(lines, discount)
	view.Subtotal = totals.Subtotal
	view.Tax = totals.Tax
	view.ShippingCost = totals.ShippingCost
	view.Discount = totals.Discount
	view.Total = totals.Total

	if err := s.cache.Set(ctx, owner.Key(), view); err != nil {
		log.Printf("cart cache set error: %v", err)
	}
	return view, nil
}

func (s *CartService) invalidate(ctx context.Context, owner models.CartOwner) {
	if err := s.cache.Delete(ctx, owner.Key()); err != nil {
		log.Printf("cart cache invalidate error: %v", err)
	}
}
