package repositories

import (
	"context"
	"errors"
	"time"

	"shop-backend/models"

	"github.com/jackc/pgx/v5"
)

type UserRepository interface {
	FindByID(ctx context.Context, db DBTX, id int) (*models.User, error)
	FindByEmail(ctx context.Context, db DBTX, email string) (*models.User, error)
	Create(ctx context.Context, db DBTX, user *models.User) error

	GetAddress(ctx context.Context, db DBTX, addressID int) (*models.Address, error)
	ListAddresses(ctx context.Context, db DBTX, userID int) ([]models.Address, error)
	CreateAddress(ctx context.Context, db DBTX, address *models.Address) error
}

type PgxUserRepository struct{}

func NewUserRepository() *PgxUserRepository {
	return &PgxUserRepository{}
}

const userColumns = `id, email, password, role, full_name, phone, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.Password, &u.Role, &u.FullName, &u.Phone, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.NewNotFoundError("user")
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *PgxUserRepository) FindByID(ctx context.Context, db DBTX, id int) (*models.User, error) {
	return scanUser(db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *PgxUserRepository) FindByEmail(ctx context.Context, db DBTX, email string) (*models.User, error) {
	return scanUser(db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (r *PgxUserRepository) Create(ctx context.Context, db DBTX, user *models.User) error {
	now := time.Now()
	return db.QueryRow(ctx,
		`INSERT INTO users (email, password, role, full_name, phone, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $6)
		 RETURNING id, created_at, updated_at`,
		user.Email, user.Password, user.Role, user.FullName, user.Phone, now,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

const addressColumns = `id, user_id, label, line1, line2, city, postal_code, phone, created_at`

func (r *PgxUserRepository) GetAddress(ctx context.Context, db DBTX, addressID int) (*models.Address, error) {
	var a models.Address
	err := db.QueryRow(ctx,
		`SELECT `+addressColumns+` FROM addresses WHERE id = $1`, addressID).
		Scan(&a.ID, &a.UserID, &a.Label, &a.Line1, &a.Line2, &a.City, &a.PostalCode, &a.Phone, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.NewNotFoundError("address")
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *PgxUserRepository) ListAddresses(ctx context.Context, db DBTX, userID int) ([]models.Address, error) {
	rows, err := db.Query(ctx,
		`SELECT `+addressColumns+` FROM addresses WHERE user_id = $1 ORDER BY id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	addresses := []models.Address{}
	for rows.Next() {
		var a models.Address
		if err := rows.Scan(&a.ID, &a.UserID, &a.Label, &a.Line1, &a.Line2, &a.City, &a.PostalCode, &a.Phone, &a.CreatedAt); err != nil {
			return nil, err
		}
		addresses = append(addresses, a)
	}
	return addresses, rows.Err()
}

func (r *PgxUserRepository) CreateAddress(ctx context.Context, db DBTX, address *models.Address) error {
	return db.QueryRow(ctx,
		`INSERT INTO addresses (user_id, label, line1, line2, city, postal_code, phone, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at`,
		address.UserID, address.Label, address.Line1, address.Line2, address.City,
		address.PostalCode, address.Phone, time.Now(),
	).Scan(&address.ID, &address.CreatedAt)
}
