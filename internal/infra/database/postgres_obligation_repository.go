package database

import (
	"context"
	"database/sql"
	"fmt"

	"payment_reminder_bot/internal/domain/obligation"

	"github.com/lib/pq"
)

// PostgresObligationRepository reads installments and debts joined with their customers.
type PostgresObligationRepository struct {
	db *sql.DB
}

func NewPostgresObligationRepository(db *sql.DB) *PostgresObligationRepository {
	return &PostgresObligationRepository{db: db}
}

func (r *PostgresObligationRepository) ListInstallments(ctx context.Context, statuses []string) ([]obligation.InstallmentRecord, error) {
	query := `SELECT i.id, i.product_name, i.monthly_amount, i.next_payment_date, i.status, i.whatsapp_number,
                     c.id, c.name, c.phone, c.whatsapp_number, c.whatsapp_enabled, c.created_at, c.updated_at
               FROM installments i
               JOIN customers c ON c.id = i.customer_id
               WHERE i.status = ANY($1)
               ORDER BY i.next_payment_date NULLS LAST, i.id`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(statuses))
	if err != nil {
		return nil, fmt.Errorf("error listing installments: %w", err)
	}
	defer rows.Close()

	records := make([]obligation.InstallmentRecord, 0)
	for rows.Next() {
		var rec obligation.InstallmentRecord
		c := &rec.Customer
		if err := rows.Scan(
			&rec.ID, &rec.ProductName, &rec.MonthlyAmount, &rec.NextPaymentDate, &rec.Status, &rec.WhatsAppNumber,
			&c.ID, &c.Name, &c.Phone, &c.WhatsAppNumber, &c.WhatsAppEnabled, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("error scanning installment: %w", err)
		}
		records = append(records, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating installments: %w", err)
	}
	return records, nil
}

func (r *PostgresObligationRepository) ListUnsettledDebts(ctx context.Context, settledStatuses []string) ([]obligation.DebtRecord, error) {
	query := `SELECT d.id, d.description, d.amount, d.due_date, d.status,
                     c.id, c.name, c.phone, c.whatsapp_number, c.whatsapp_enabled, c.created_at, c.updated_at
               FROM debts d
               JOIN customers c ON c.id = d.customer_id
               WHERE d.due_date IS NOT NULL AND NOT (d.status = ANY($1))
               ORDER BY d.due_date, d.id`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(settledStatuses))
	if err != nil {
		return nil, fmt.Errorf("error listing debts: %w", err)
	}
	defer rows.Close()

	records := make([]obligation.DebtRecord, 0)
	for rows.Next() {
		var rec obligation.DebtRecord
		c := &rec.Customer
		if err := rows.Scan(
			&rec.ID, &rec.Description, &rec.Amount, &rec.DueDate, &rec.Status,
			&c.ID, &c.Name, &c.Phone, &c.WhatsAppNumber, &c.WhatsAppEnabled, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("error scanning debt: %w", err)
		}
		records = append(records, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating debts: %w", err)
	}
	return records, nil
}
