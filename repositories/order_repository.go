package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"shop-backend/models"

	"github.com/jackc/pgx/v5"
)

type OrderRepository interface {
	Insert(ctx context.Context, db DBTX, order *models.Order) error
	InsertItems(ctx context.Context, db DBTX, orderID int, items []models.OrderItem) error
	InsertTransaction(ctx context.Context, db DBTX, t *models.PaymentTransaction) error
	GetByID(ctx context.Context, db DBTX, orderID int) (*models.Order, error)
	GetByIdempotencyKey(ctx context.Context, db DBTX, userID int, key string) (*models.Order, error)
	List(ctx context.Context, db DBTX, filter models.OrderFilter) ([]models.Order, int, error)
	UpdateStatus(ctx context.Context, db DBTX, orderID int, status models.OrderStatus, notes *string, stampedAt time.Time) error
	LockStatus(ctx context.Context, db DBTX, orderID int) (models.OrderStatus, error)
}

type PgxOrderRepository struct{}

func NewOrderRepository() *PgxOrderRepository {
	return &PgxOrderRepository{}
}

const orderColumns = `id, order_number, user_id, address_id, subtotal, tax, shipping_cost, discount,
	total, payment_method, status, notes, created_at, confirmed_at, shipped_at, delivered_at`

func scanOrder(row pgx.Row) (*models.Order, error) {
	var o models.Order
	err := row.Scan(&o.ID, &o.OrderNumber, &o.UserID, &o.AddressID, &o.Subtotal, &o.Tax,
		&o.ShippingCost, &o.Discount, &o.Total, &o.PaymentMethod, &o.Status, &o.Notes,
		&o.CreatedAt, &o.ConfirmedAt, &o.ShippedAt, &o.DeliveredAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.NewNotFoundError("order")
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *PgxOrderRepository) Insert(ctx context.Context, db DBTX, order *models.Order) error {
	query := `
		INSERT INTO orders (order_number, user_id, address_id, subtotal, tax, shipping_cost,
			discount, total, payment_method, status, idempotency_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at
	`
	var key *string
	if order.IdempotencyKey != "" {
		key = &order.IdempotencyKey
	}
	return db.QueryRow(ctx, query,
		order.OrderNumber, order.UserID, order.AddressID, order.Subtotal, order.Tax,
		order.ShippingCost, order.Discount, order.Total, order.PaymentMethod, order.Status,
		key, time.Now(),
	).Scan(&order.ID, &order.CreatedAt)
}

func (r *PgxOrderRepository) InsertItems(ctx context.Context, db DBTX, orderID int, items []models.OrderItem) error {
	for i := range items {
		err := db.QueryRow(ctx,
			`INSERT INTO order_items (order_id, product_id, quantity, unit_price)
			 VALUES ($1, $2, $3, $4) RETURNING id`,
			orderID, items[i].ProductID, items[i].Quantity, items[i].UnitPrice,
		).Scan(&items[i].ID)
		if err != nil {
			return err
		}
		items[i].OrderID = orderID
	}
	return nil
}

func (r *PgxOrderRepository) InsertTransaction(ctx context.Context, db DBTX, t *models.PaymentTransaction) error {
	return db.QueryRow(ctx,
		`INSERT INTO transactions (order_id, amount, currency, status, gateway_ref, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at`,
		t.OrderID, t.Amount, t.Currency, t.Status, t.GatewayRef, time.Now(),
	).Scan(&t.ID, &t.CreatedAt)
}

func (r *PgxOrderRepository) GetByID(ctx context.Context, db DBTX, orderID int) (*models.Order, error) {
	order, err := scanOrder(db.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, orderID))
	if err != nil {
		return nil, err
	}
	order.Items, err = r.listItems(ctx, db, orderID)
	return order, err
}

func (r *PgxOrderRepository) GetByIdempotencyKey(ctx context.Context, db DBTX, userID int, key string) (*models.Order, error) {
	order, err := scanOrder(db.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE user_id = $1 AND idempotency_key = $2`,
		userID, key))
	if err != nil {
		return nil, err
	}
	order.Items, err = r.listItems(ctx, db, order.ID)
	return order, err
}

func (r *PgxOrderRepository) listItems(ctx context.Context, db DBTX, orderID int) ([]models.OrderItem, error) {
	rows, err := db.Query(ctx,
		`SELECT oi.id, oi.order_id, oi.product_id, COALESCE(p.name, ''), oi.quantity, oi.unit_price
		 FROM order_items oi
		 LEFT JOIN products p ON p.id = oi.product_id
		 WHERE oi.order_id = $1 ORDER BY oi.id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.OrderItem{}
	for rows.Next() {
		var it models.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.Quantity, &it.UnitPrice); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *PgxOrderRepository) List(ctx context.Context, db DBTX, filter models.OrderFilter) ([]models.Order, int, error) {
	conditions := []string{}
	args := []any{}

	if filter.UserID > 0 {
		args = append(args, filter.UserID)
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := db.QueryRow(ctx, "SELECT COUNT(*) FROM orders"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	args = append(args, filter.Limit, offset)
	query := fmt.Sprintf("SELECT "+orderColumns+" FROM orders"+where+
		" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		var o models.Order
		if err := rows.Scan(&o.ID, &o.OrderNumber, &o.UserID, &o.AddressID, &o.Subtotal, &o.Tax,
			&o.ShippingCost, &o.Discount, &o.Total, &o.PaymentMethod, &o.Status, &o.Notes,
			&o.CreatedAt, &o.ConfirmedAt, &o.ShippedAt, &o.DeliveredAt); err != nil {
			return nil, 0, err
		}
		orders = append(orders, o)
	}
	return orders, total, rows.Err()
}

// LockStatus reads the current status under the order row lock so a status
// transition cannot race another one.
func (r *PgxOrderRepository) LockStatus(ctx context.Context, db DBTX, orderID int) (models.OrderStatus, error) {
	var status models.OrderStatus
	err := db.QueryRow(ctx, `SELECT status FROM orders WHERE id = $1 FOR UPDATE`, orderID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", models.NewNotFoundError("order")
	}
	return status, err
}

func (r *PgxOrderRepository) UpdateStatus(ctx context.Context, db DBTX, orderID int, status models.OrderStatus, notes *string, stampedAt time.Time) error {
	stamp := ""
	switch status {
	case models.OrderConfirmed:
		stamp = ", confirmed_at = $4"
	case models.OrderShipped:
		stamp = ", shipped_at = $4"
	case models.OrderDelivered:
		stamp = ", delivered_at = $4"
	}

	query := `UPDATE orders SET status = $1, notes = COALESCE($2, notes)` + stamp + ` WHERE id = $3`
	args := []any{status, notes, orderID}
	if stamp != "" {
		args = append(args, stampedAt)
	}

	tag, err := db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.NewNotFoundError("order")
	}
	return nil
}
