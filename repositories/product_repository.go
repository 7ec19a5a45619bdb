package repositories

import (
	"context"
	"errors"
	"time"

	"shop-backend/models"

	"github.com/jackc/pgx/v5"
)

// ProductRepository is the catalog read surface plus the stock ledger: the
// authoritative per-product quantity and its atomic decrement.
type ProductRepository interface {
	GetByID(ctx context.Context, db DBTX, id int) (*models.Product, error)
	List(ctx context.Context, db DBTX, page, limit int) ([]models.Product, int, error)
	Create(ctx context.Context, db DBTX, product *models.Product) error
	Update(ctx context.Context, db DBTX, product *models.Product) error
	Deactivate(ctx context.Context, db DBTX, id int) error

	CheckAvailable(ctx context.Context, db DBTX, productID, quantity int) (models.StockCheck, error)
	DecrementIfAvailable(ctx context.Context, db DBTX, productID, quantity int) (int, error)
}

type PgxProductRepository struct{}

func NewProductRepository() *PgxProductRepository {
	return &PgxProductRepository{}
}

func (r *PgxProductRepository) GetByID(ctx context.Context, db DBTX, id int) (*models.Product, error) {
	query := `SELECT id, name, description, price, stock, is_active, created_at, updated_at
	          FROM products WHERE id = $1 AND is_active = true`

	var p models.Product
	err := db.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.NewNotFoundError("product")
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PgxProductRepository) List(ctx context.Context, db DBTX, page, limit int) ([]models.Product, int, error) {
	offset := (page - 1) * limit

	var total int
	if err := db.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE is_active = true`).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT id, name, description, price, stock, is_active, created_at, updated_at
	          FROM products WHERE is_active = true ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, err
		}
		products = append(products, p)
	}
	return products, total, rows.Err()
}

func (r *PgxProductRepository) Create(ctx context.Context, db DBTX, product *models.Product) error {
	query := `
		INSERT INTO products (name, description, price, stock, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	now := time.Now()
	return db.QueryRow(ctx, query,
		product.Name, product.Description, product.Price, product.Stock, product.IsActive, now, now,
	).Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)
}

func (r *PgxProductRepository) Update(ctx context.Context, db DBTX, product *models.Product) error {
	query := `UPDATE products SET name = $1, description = $2, price = $3, stock = $4,
	          is_active = $5, updated_at = $6 WHERE id = $7`
	tag, err := db.Exec(ctx, query,
		product.Name, product.Description, product.Price, product.Stock,
		product.IsActive, time.Now(), product.ID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.NewNotFoundError("product")
	}
	return nil
}

func (r *PgxProductRepository) Deactivate(ctx context.Context, db DBTX, id int) error {
	tag, err := db.Exec(ctx, `UPDATE products SET is_active = false, updated_at = $1 WHERE id = $2`, time.Now(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.NewNotFoundError("product")
	}
	return nil
}

// CheckAvailable is a pure read with no side effect.
func (r *PgxProductRepository) CheckAvailable(ctx context.Context, db DBTX, productID, quantity int) (models.StockCheck, error) {
	var stock int
	err := db.QueryRow(ctx, `SELECT stock FROM products WHERE id = $1 AND is_active = true`, productID).Scan(&stock)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.StockCheck{}, models.NewNotFoundError("product")
	}
	if err != nil {
		return models.StockCheck{}, err
	}
	return models.StockCheck{
		ProductID:    productID,
		Available:    stock >= quantity,
		CurrentStock: stock,
	}, nil
}

// DecrementIfAvailable decrements stock as a single conditional update, not
// a read-then-write pair, so concurrent decrements of the same product
// cannot race. It returns the new stock, or InsufficientStockError without
// having decremented anything.
func (r *PgxProductRepository) DecrementIfAvailable(ctx context.Context, db DBTX, productID, quantity int) (int, error) {
	var newStock int
	err := db.QueryRow(ctx,
		`UPDATE products SET stock = stock - $1, updated_at = $2
		 WHERE id = $3 AND is_active = true AND stock >= $1
		 RETURNING stock`,
		quantity, time.Now(), productID,
	).Scan(&newStock)
	if err == nil {
		return newStock, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, err
	}

	// Condition failed: distinguish missing product from insufficient stock.
	check, checkErr := r.CheckAvailable(ctx, db, productID, quantity)
	if checkErr != nil {
		return 0, checkErr
	}
	return 0, &models.InsufficientStockError{
		ProductID: productID,
		Requested: quantity,
		Available: check.CurrentStock,
	}
}
