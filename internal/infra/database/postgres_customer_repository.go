package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"payment_reminder_bot/internal/domain/customer"
)

var ErrCustomerNotFound = errors.New("customer not found")

const customerColumns = `id, name, phone, whatsapp_number, whatsapp_enabled, created_at, updated_at`

type PostgresCustomerRepository struct {
	db *sql.DB
}

func NewPostgresCustomerRepository(db *sql.DB) *PostgresCustomerRepository {
	return &PostgresCustomerRepository{db: db}
}

func (r *PostgresCustomerRepository) GetByID(ctx context.Context, id string) (*customer.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`
	c := &customer.Customer{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Name, &c.Phone, &c.WhatsAppNumber, &c.WhatsAppEnabled, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("error getting customer by ID: %w", err)
	}
	return c, nil
}

func (r *PostgresCustomerRepository) ListAll(ctx context.Context) ([]*customer.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers ORDER BY name, id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing customers: %w", err)
	}
	defer rows.Close()

	customers := make([]*customer.Customer, 0)
	for rows.Next() {
		c := &customer.Customer{}
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.WhatsAppNumber, &c.WhatsAppEnabled, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("error scanning customer: %w", err)
		}
		customers = append(customers, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating customers: %w", err)
	}
	return customers, nil
}
