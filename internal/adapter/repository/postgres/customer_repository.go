package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/turf45/courtbook/internal/core/domain"
)

type CustomerRepository struct {
	db *sql.DB
}

func NewCustomerRepository(db *sql.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

func (r *CustomerRepository) GetByID(ctx context.Context, customerID uuid.UUID) (*domain.Customer, error) {
	return r.getOne(ctx, `SELECT id, name, phone, email, created_at FROM customers WHERE id = $1`, customerID, customerID.String())
}

func (r *CustomerRepository) FindByPhone(ctx context.Context, phone string) (*domain.Customer, error) {
	return r.getOne(ctx, `SELECT id, name, phone, email, created_at FROM customers WHERE phone = $1`, phone, phone)
}

func (r *CustomerRepository) getOne(ctx context.Context, query string, arg any, label string) (*domain.Customer, error) {
	var c domain.Customer
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &domain.NotFoundError{Resource: "customer", ID: label}
		}
		return nil, err
	}
	return &c, nil
}

// Create inserts a customer. When a concurrent request already created the
// same phone number, c is filled from the existing row instead.
func (r *CustomerRepository) Create(ctx context.Context, c *domain.Customer) error {
	query := `
	INSERT INTO customers (id, name, phone, email, created_at)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (phone) DO NOTHING
	`

	result, err := r.db.ExecContext(ctx, query, c.ID, c.Name, c.Phone, c.Email, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert customer: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}

	existing, err := r.FindByPhone(ctx, c.Phone)
	if err != nil {
		return err
	}
	*c = *existing
	return nil
}
