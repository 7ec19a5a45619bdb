package repositories

import (
	"context"
	"errors"
	"time"

	"shop-backend/models"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// CartRepository owns Cart and CartItem persistence. Mutating methods are
// meant to run inside a transaction that holds the cart row lock (Lock or
// LockByOwner), which serializes writers per cart while leaving reads and
// other carts fully parallel.
type CartRepository interface {
	GetByOwner(ctx context.Context, db DBTX, owner models.CartOwner) (*models.Cart, error)
	GetByID(ctx context.Context, db DBTX, cartID int) (*models.Cart, error)
	Create(ctx context.Context, db DBTX, owner models.CartOwner, expiresAt time.Time) (*models.Cart, error)
	Lock(ctx context.Context, db DBTX, cartID int) (*models.Cart, error)
	LockByOwner(ctx context.Context, db DBTX, owner models.CartOwner) (*models.Cart, error)
	Touch(ctx context.Context, db DBTX, cartID int, expiresAt time.Time) error
	Delete(ctx context.Context, db DBTX, cartID int) error
	DeleteExpired(ctx context.Context, db DBTX, now time.Time) (int64, error)

	ListItems(ctx context.Context, db DBTX, cartID int) ([]models.CartItem, error)
	CountItems(ctx context.Context, db DBTX, cartID int) (int, error)
	GetItem(ctx context.Context, db DBTX, cartID, itemID int) (*models.CartItem, error)
	UpsertItem(ctx context.Context, db DBTX, cartID, productID, quantity int, unitPrice decimal.Decimal) (*models.CartItem, error)
	SetItemQuantity(ctx context.Context, db DBTX, itemID, quantity int) error
	RefreshItemPrice(ctx context.Context, db DBTX, itemID int, unitPrice decimal.Decimal) error
	MoveItem(ctx context.Context, db DBTX, itemID, toCartID int) error
	DeleteItem(ctx context.Context, db DBTX, itemID int) error
	ClearItems(ctx context.Context, db DBTX, cartID int) error
}

type PgxCartRepository struct{}

func NewCartRepository() *PgxCartRepository {
	return &PgxCartRepository{}
}

const cartColumns = `id, user_id, guest_session_id, version, expires_at, created_at, updated_at`

func scanCart(row pgx.Row) (*models.Cart, error) {
	var c models.Cart
	err := row.Scan(&c.ID, &c.UserID, &c.GuestSessionID, &c.Version, &c.ExpiresAt, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.NewNotFoundError("cart")
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func ownerClause(owner models.CartOwner) (string, any) {
	if owner.UserID != nil {
		return "user_id = $1", *owner.UserID
	}
	return "guest_session_id = $1", *owner.GuestSessionID
}

// GetByOwner returns the owner's non-expired cart. Expired carts are
// invisible to reads whether or not the sweep removed them yet.
func (r *PgxCartRepository) GetByOwner(ctx context.Context, db DBTX, owner models.CartOwner) (*models.Cart, error) {
	clause, arg := ownerClause(owner)
	row := db.QueryRow(ctx,
		`SELECT `+cartColumns+` FROM carts WHERE `+clause+` AND expires_at > $2`,
		arg, time.Now())
	return scanCart(row)
}

func (r *PgxCartRepository) GetByID(ctx context.Context, db DBTX, cartID int) (*models.Cart, error) {
	row := db.QueryRow(ctx,
		`SELECT `+cartColumns+` FROM carts WHERE id = $1 AND expires_at > $2`,
		cartID, time.Now())
	return scanCart(row)
}

// Create removes any expired leftover cart for the owner first, so the
// one-cart-per-owner unique index never trips on a stale row.
func (r *PgxCartRepository) Create(ctx context.Context, db DBTX, owner models.CartOwner, expiresAt time.Time) (*models.Cart, error) {
	clause, arg := ownerClause(owner)
	if _, err := db.Exec(ctx,
		`DELETE FROM carts WHERE `+clause+` AND expires_at <= $2`, arg, time.Now()); err != nil {
		return nil, err
	}

	now := time.Now()
	row := db.QueryRow(ctx,
		`INSERT INTO carts (user_id, guest_session_id, version, expires_at, created_at, updated_at)
		 VALUES ($1, $2, 0, $3, $4, $4)
		 RETURNING `+cartColumns,
		owner.UserID, owner.GuestSessionID, expiresAt, now)
	return scanCart(row)
}

// Lock takes the cart row lock for the duration of the enclosing
// transaction and bumps the version counter, serializing writers per cart.
func (r *PgxCartRepository) Lock(ctx context.Context, db DBTX, cartID int) (*models.Cart, error) {
	row := db.QueryRow(ctx,
		`SELECT `+cartColumns+` FROM carts WHERE id = $1 AND expires_at > $2 FOR UPDATE`,
		cartID, time.Now())
	cart, err := scanCart(row)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(ctx,
		`UPDATE carts SET version = version + 1, updated_at = $1 WHERE id = $2`,
		time.Now(), cartID); err != nil {
		return nil, err
	}
	cart.Version++
	return cart, nil
}

func (r *PgxCartRepository) LockByOwner(ctx context.Context, db DBTX, owner models.CartOwner) (*models.Cart, error) {
	clause, arg := ownerClause(owner)
	row := db.QueryRow(ctx,
		`SELECT `+cartColumns+` FROM carts WHERE `+clause+` AND expires_at > $2 FOR UPDATE`,
		arg, time.Now())
	cart, err := scanCart(row)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(ctx,
		`UPDATE carts SET version = version + 1, updated_at = $1 WHERE id = $2`,
		time.Now(), cart.ID); err != nil {
		return nil, err
	}
	cart.Version++
	return cart, nil
}

// Touch slides the expiry window on activity.
func (r *PgxCartRepository) Touch(ctx context.Context, db DBTX, cartID int, expiresAt time.Time) error {
	_, err := db.Exec(ctx,
		`UPDATE carts SET expires_at = $1, updated_at = $2 WHERE id = $3`,
		expiresAt, time.Now(), cartID)
	return err
}

func (r *PgxCartRepository) Delete(ctx context.Context, db DBTX, cartID int) error {
	if _, err := db.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return err
	}
	_, err := db.Exec(ctx, `DELETE FROM carts WHERE id = $1`, cartID)
	return err
}

func (r *PgxCartRepository) DeleteExpired(ctx context.Context, db DBTX, now time.Time) (int64, error) {
	if _, err := db.Exec(ctx,
		`DELETE FROM cart_items WHERE cart_id IN (SELECT id FROM carts WHERE expires_at <= $1)`, now); err != nil {
		return 0, err
	}
	tag, err := db.Exec(ctx, `DELETE FROM carts WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const cartItemColumns = `id, cart_id, product_id, quantity, unit_price, created_at, updated_at`

func (r *PgxCartRepository) ListItems(ctx context.Context, db DBTX, cartID int) ([]models.CartItem, error) {
	rows, err := db.Query(ctx,
		`SELECT `+cartItemColumns+` FROM cart_items WHERE cart_id = $1 ORDER BY id`, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.CartItem{}
	for rows.Next() {
		var it models.CartItem
		if err := rows.Scan(&it.ID, &it.CartID, &it.ProductID, &it.Quantity, &it.UnitPrice, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *PgxCartRepository) CountItems(ctx context.Context, db DBTX, cartID int) (int, error) {
	var n int
	err := db.QueryRow(ctx, `SELECT COUNT(*) FROM cart_items WHERE cart_id = $1`, cartID).Scan(&n)
	return n, err
}

func (r *PgxCartRepository) GetItem(ctx context.Context, db DBTX, cartID, itemID int) (*models.CartItem, error) {
	var it models.CartItem
	err := db.QueryRow(ctx,
		`SELECT `+cartItemColumns+` FROM cart_items WHERE id = $1 AND cart_id = $2`,
		itemID, cartID).Scan(&it.ID, &it.CartID, &it.ProductID, &it.Quantity, &it.UnitPrice, &it.CreatedAt, &it.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.NewNotFoundError("cart item")
	}
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// UpsertItem adds a product to a cart, summing quantities when the
// (cart_id, product_id) pair already exists. The unique index makes the
// upsert race-free even without the cart lock.
func (r *PgxCartRepository) UpsertItem(ctx context.Context, db DBTX, cartID, productID, quantity int, unitPrice decimal.Decimal) (*models.CartItem, error) {
	now := time.Now()
	var it models.CartItem
	err := db.QueryRow(ctx,
		`INSERT INTO cart_items (cart_id, product_id, quantity, unit_price, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $5)
		 ON CONFLICT (cart_id, product_id)
		 DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity,
		               unit_price = EXCLUDED.unit_price,
		               updated_at = EXCLUDED.updated_at
		 RETURNING `+cartItemColumns,
		cartID, productID, quantity, unitPrice, now).
		Scan(&it.ID, &it.CartID, &it.ProductID, &it.Quantity, &it.UnitPrice, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *PgxCartRepository) SetItemQuantity(ctx context.Context, db DBTX, itemID, quantity int) error {
	tag, err := db.Exec(ctx,
		`UPDATE cart_items SET quantity = $1, updated_at = $2 WHERE id = $3`,
		quantity, time.Now(), itemID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.NewNotFoundError("cart item")
	}
	return nil
}

func (r *PgxCartRepository) RefreshItemPrice(ctx context.Context, db DBTX, itemID int, unitPrice decimal.Decimal) error {
	_, err := db.Exec(ctx,
		`UPDATE cart_items SET unit_price = $1, updated_at = $2 WHERE id = $3`,
		unitPrice, time.Now(), itemID)
	return err
}

func (r *PgxCartRepository) MoveItem(ctx context.Context, db DBTX, itemID, toCartID int) error {
	tag, err := db.Exec(ctx,
		`UPDATE cart_items SET cart_id = $1, updated_at = $2 WHERE id = $3`,
		toCartID, time.Now(), itemID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.NewNotFoundError("cart item")
	}
	return nil
}

func (r *PgxCartRepository) DeleteItem(ctx context.Context, db DBTX, itemID int) error {
	tag, err := db.Exec(ctx, `DELETE FROM cart_items WHERE id = $1`, itemID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.NewNotFoundError("cart item")
	}
	return nil
}

func (r *PgxCartRepository) ClearItems(ctx context.Context, db DBTX, cartID int) error {
	_, err := db.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID)
	return err
}
