package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"shop-backend/models"
	"shop-backend/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// OrderNotifier is the fire-and-forget notification collaborator. Its
// failure must never roll back or fail an order.
type OrderNotifier interface {
	NotifyOrderCreated(order *models.Order, email string)
}

// OrderService assembles orders from carts or explicit item lists and
// commits them atomically: stock decrement, order, order items, and the
// initial payment record either all land or none do.
type OrderService struct {
	store     repositories.Store
	orders    repositories.OrderRepository
	products  repositories.ProductRepository
	users     repositories.UserRepository
	carts     repositories.CartRepository
	pricing   *PricingEngine
	discounts DiscountProvider
	cache     CartCache
	notifier  OrderNotifier
}

func NewOrderService(
	store repositories.Store,
	orders repositories.OrderRepository,
	products repositories.ProductRepository,
	users repositories.UserRepository,
	carts repositories.CartRepository,
	pricing *PricingEngine,
	discounts DiscountProvider,
	cache CartCache,
	notifier OrderNotifier,
) *OrderService {
	return &OrderService{
		store:     store,
		orders:    orders,
		products:  products,
		users:     users,
		carts:     carts,
		pricing:   pricing,
		discounts: discounts,
		cache:     cache,
		notifier:  notifier,
	}
}

type orderLine struct {
	product  *models.Product
	quantity int
}

// CreateOrder validates, prices, and commits a multi-item order. Client
// supplied subtotal/total are ignored; the server recomputes everything
// from current catalog prices, which are frozen into the order items at
// this instant. A request with no items checks out the user's cart and
// clears it inside the same transaction.
func (s *OrderService) CreateOrder(ctx context.Context, userID int, req models.CreateOrderRequest) (*models.Order, error) {
	user, err := s.users.FindByID(ctx, s.store, userID)
	if err != nil {
		return nil, engineError(err)
	}

	address, err := s.users.GetAddress(ctx, s.store, req.AddressID)
	if err != nil {
		return nil, engineError(err)
	}
	if address.UserID != userID {
		return nil, models.NewNotFoundError("address")
	}

	if req.PaymentMethod == "" {
		return nil, models.NewValidationError("payment method is required")
	}

	if req.IdempotencyKey != "" {
		existing, err := s.orders.GetByIdempotencyKey(ctx, s.store, userID, req.IdempotencyKey)
		if err == nil {
			return existing, nil
		}
		var notFound *models.NotFoundError
		if !errors.As(err, &notFound) {
			return nil, engineError(err)
		}
	}

	owner := models.UserOwner(userID)
	fromCart := len(req.Items) == 0

	var sourceCart *models.Cart
	requested := map[int]int{}
	order := []int{}

	if fromCart {
		sourceCart, err = s.carts.GetByOwner(ctx, s.store, owner)
		var notFound *models.NotFoundError
		if errors.As(err, &notFound) {
			return nil, models.NewValidationError("cart is empty")
		}
		if err != nil {
			return nil, engineError(err)
		}
		items, err := s.carts.ListItems(ctx, s.store, sourceCart.ID)
		if err != nil {
			return nil, engineError(err)
		}
		if len(items) == 0 {
			return nil, models.NewValidationError("cart is empty")
		}
		for _, item := range items {
			requested[item.ProductID] += item.Quantity
			order = append(order, item.ProductID)
		}
	} else {
		for _, item := range req.Items {
			if item.Quantity < 1 {
				return nil, models.NewValidationError("item quantity must be a positive integer")
			}
			if _, seen := requested[item.ProductID]; !seen {
				order = append(order, item.ProductID)
			}
			requested[item.ProductID] += item.Quantity
		}
	}

	// Availability pre-check: any failing item aborts with zero mutation.
	lines := make([]orderLine, 0, len(order))
	for _, productID := range order {
		quantity := requested[productID]
		product, err := s.products.GetByID(ctx, s.store, productID)
		if err != nil {
			return nil, engineError(err)
		}
		check, err := s.products.CheckAvailable(ctx, s.store, productID, quantity)
		if err != nil {
			return nil, engineError(err)
		}
		if !check.Available {
			return nil, &models.InsufficientStockError{
				ProductID: productID,
				Requested: quantity,
				Available: check.CurrentStock,
			}
		}
		lines = append(lines, orderLine{product: product, quantity: quantity})
	}

	priced := make([]PricedLine, len(lines))
	for i, line := range lines {
		priced[i] = PricedLine{UnitPrice: line.product.Price, Quantity: line.quantity}
	}
	subtotal := s.pricing.Totals(priced, decimal.Zero).Subtotal
	discount, err := s.discounts.Discount(ctx, owner, subtotal)
	if err != nil {
		log.Printf("discount provider error, applying none: %v", err)
		discount = decimal.Zero
	}
	totals := s.pricing.Totals(priced, discount)

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return nil, engineError(err)
	}
	defer tx.Rollback(ctx)

	if sourceCart != nil {
		if _, err := s.carts.Lock(ctx, tx, sourceCart.ID); err != nil {
			return nil, engineError(err)
		}
	}

	// Conditional decrement per product, in ascending product order so two
	// concurrent multi-item orders cannot deadlock on opposing row-lock
	// sequences. A racing order that consumed the stock first fails this
	// and rolls back the whole unit.
	decrements := append([]orderLine(nil), lines...)
	sort.Slice(decrements, func(i, j int) bool {
		return decrements[i].product.ID < decrements[j].product.ID
	})
	for _, line := range decrements {
		if _, err := s.products.DecrementIfAvailable(ctx, tx, line.product.ID, line.quantity); err != nil {
			return nil, engineError(err)
		}
	}

	newOrder := &models.Order{
		OrderNumber:    generateOrderNumber(),
		UserID:         userID,
		AddressID:      address.ID,
		Subtotal:       totals.Subtotal,
		Tax:            totals.Tax,
		ShippingCost:   totals.ShippingCost,
		Discount:       totals.Discount,
		Total:          totals.Total,
		PaymentMethod:  req.PaymentMethod,
		Status:         models.OrderPending,
		IdempotencyKey: req.IdempotencyKey,
	}

	if err := s.orders.Insert(ctx, tx, newOrder); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && req.IdempotencyKey != "" {
			// A concurrent retry with the same key committed first.
			tx.Rollback(ctx)
			existing, getErr := s.orders.GetByIdempotencyKey(ctx, s.store, userID, req.IdempotencyKey)
			if getErr == nil {
				return existing, nil
			}
		}
		return nil, engineError(err)
	}

	orderItems := make([]models.OrderItem, len(lines))
	for i, line := range lines {
		orderItems[i] = models.OrderItem{
			ProductID:   line.product.ID,
			ProductName: line.product.Name,
			Quantity:    line.quantity,
			UnitPrice:   line.product.Price,
		}
	}
	if err := s.orders.InsertItems(ctx, tx, newOrder.ID, orderItems); err != nil {
		return nil, engineError(err)
	}

	payment := &models.PaymentTransaction{
		OrderID:  newOrder.ID,
		Amount:   totals.Total,
		Currency: models.TransactionCurrency,
		Status:   models.TransactionPending,
	}
	if err := s.orders.InsertTransaction(ctx, tx, payment); err != nil {
		return nil, engineError(err)
	}

	// Clearing the source cart inside the same unit makes a crash between
	// order-commit and cart-clear impossible.
	if sourceCart != nil {
		if err := s.carts.ClearItems(ctx, tx, sourceCart.ID); err != nil {
			return nil, engineError(err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, engineError(err)
	}

	newOrder.Items = orderItems
	if sourceCart != nil {
		if err := s.cache.Delete(ctx, owner.Key()); err != nil {
			log.Printf("cart cache invalidate error: %v", err)
		}
	}

	if s.notifier != nil {
		go s.notifier.NotifyOrderCreated(newOrder, user.Email)
	}

	return newOrder, nil
}

func (s *OrderService) GetOrder(ctx context.Context, requesterID int, isAdmin bool, orderID int) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, s.store, orderID)
	if err != nil {
		return nil, engineError(err)
	}
	if order.UserID != requesterID && !isAdmin {
		return nil, &models.AccessDeniedError{}
	}
	return order, nil
}

func (s *OrderService) ListOrders(ctx context.Context, requesterID int, isAdmin bool, filter models.OrderFilter) ([]models.Order, int, error) {
	if !isAdmin {
		filter.UserID = requesterID
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 10
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}

	orders, total, err := s.orders.List(ctx, s.store, filter)
	if err != nil {
		return nil, 0, engineError(err)
	}
	return orders, total, nil
}

// UpdateStatus advances an order through its one-directional lifecycle and
// stamps the matching timestamp. Illegal transitions are rejected.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID int, newStatus string, notes string) (*models.Order, error) {
	status, ok := models.ParseOrderStatus(strings.ToUpper(strings.TrimSpace(newStatus)))
	if !ok {
		return nil, models.NewValidationError("unknown order status %q", newStatus)
	}

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return nil, engineError(err)
	}
	defer tx.Rollback(ctx)

	current, err := s.orders.LockStatus(ctx, tx, orderID)
	if err != nil {
		return nil, engineError(err)
	}
	if !current.CanTransitionTo(status) {
		return nil, models.NewValidationError("cannot transition order from %s to %s", current, status)
	}

	var notesPtr *string
	if notes != "" {
		notesPtr = &notes
	}
	if err := s.orders.UpdateStatus(ctx, tx, orderID, status, notesPtr, time.Now()); err != nil {
		return nil, engineError(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, engineError(err)
	}

	order, err := s.orders.GetByID(ctx, s.store, orderID)
	if err != nil {
		return nil, engineError(err)
	}
	return order, nil
}

func generateOrderNumber() string {
	return fmt.Sprintf("ORD-%d-%s", time.Now().Unix(),
		strings.ToUpper(uuid.NewString()[:8]))
}
