// internal/domain/obligation/repository.go
package obligation

import (
	"context"
	"database/sql"

	"payment_reminder_bot/internal/domain/customer"

	"github.com/shopspring/decimal"
)

// InstallmentRecord is one installment row joined with its owning customer.
type InstallmentRecord struct {
	ID              string
	ProductName     string
	MonthlyAmount   decimal.Decimal
	NextPaymentDate sql.NullTime
	Status          string
	WhatsAppNumber  sql.NullString // per-installment override of the customer's number
	Customer        customer.Customer
}

// DebtRecord is one debt row joined with its owning customer.
type DebtRecord struct {
	ID          string
	Description sql.NullString
	Amount      decimal.Decimal
	DueDate     sql.NullTime
	Status      string
	Customer    customer.Customer
}

// Repository defines the read operations the resolver needs from the record store.
// Implementations may pre-filter but callers apply the exact eligibility rules.
type Repository interface {
	// ListInstallments returns installments whose status is one of the given stored values,
	// ordered by next payment date.
	ListInstallments(ctx context.Context, statuses []string) ([]InstallmentRecord, error)
	// ListUnsettledDebts returns debts with a due date whose status is not one of the
	// given stored values, ordered by due date.
	ListUnsettledDebts(ctx context.Context, settledStatuses []string) ([]DebtRecord, error)
}
