package app

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"payment_reminder_bot/internal/domain/obligation"

	"github.com/sirupsen/logrus"
)

// ResolutionError reports that the record store could not be read. No partial
// result accompanies it.
type ResolutionError struct {
	Op  string
	Err error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve obligations: %s: %v", e.Op, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// ObligationResolver selects the installments and debts that need a reminder today.
type ObligationResolver struct {
	repo     obligation.Repository
	location *time.Location
	logger   *logrus.Entry
}

// NewObligationResolver creates a resolver. Calendar days are counted in loc;
// a nil loc means UTC.
func NewObligationResolver(repo obligation.Repository, loc *time.Location, logger *logrus.Entry) *ObligationResolver {
	if loc == nil {
		loc = time.UTC
	}
	return &ObligationResolver{repo: repo, location: loc, logger: logger}
}

// Resolve returns due-soon installments followed by overdue debts. Customers who
// opted out of messaging are left out. It only reads from the store.
func (r *ObligationResolver) Resolve(ctx context.Context, now time.Time, windowDays int) ([]obligation.Obligation, error) {
	if windowDays < 0 {
		windowDays = 0
	}
	today := civilDate(now.In(r.location))

	installments, err := r.repo.ListInstallments(ctx, obligation.StoredValues(obligation.StatusActive, obligation.StatusOverdue))
	if err != nil {
		return nil, &ResolutionError{Op: "list installments", Err: err}
	}
	debts, err := r.repo.ListUnsettledDebts(ctx, obligation.StoredValues(obligation.StatusCompleted))
	if err != nil {
		return nil, &ResolutionError{Op: "list debts", Err: err}
	}

	var due, overdue []obligation.Obligation
	for _, rec := range installments {
		if ob, ok := installmentDue(rec, today, windowDays); ok {
			due = append(due, ob)
		}
	}
	for _, rec := range debts {
		if ob, ok := debtOverdue(rec, today); ok {
			overdue = append(overdue, ob)
		}
	}
	sort.SliceStable(due, func(i, j int) bool { return due[i].ReferenceDate.Before(due[j].ReferenceDate) })
	sort.SliceStable(overdue, func(i, j int) bool { return overdue[i].ReferenceDate.Before(overdue[j].ReferenceDate) })

	r.logger.WithFields(logrus.Fields{
		"today":        today.Format(time.DateOnly),
		"window_days":  windowDays,
		"installments": len(due),
		"debts":        len(overdue),
	}).Debug("Resolved obligations")

	return append(due, overdue...), nil
}

func installmentDue(rec obligation.InstallmentRecord, today time.Time, windowDays int) (obligation.Obligation, bool) {
	if !rec.Customer.MessagingEnabled() || !rec.NextPaymentDate.Valid {
		return obligation.Obligation{}, false
	}
	next := civilDate(rec.NextPaymentDate.Time)
	daysLeft := daysBetween(today, next)

	switch obligation.ParseStatus(rec.Status) {
	case obligation.StatusOverdue:
	case obligation.StatusActive:
		if daysLeft < 0 || daysLeft > windowDays {
			return obligation.Obligation{}, false
		}
	default:
		return obligation.Obligation{}, false
	}

	phone := strings.TrimSpace(rec.WhatsAppNumber.String)
	if !rec.WhatsAppNumber.Valid || phone == "" {
		phone = rec.Customer.ContactNumber()
	}
	return obligation.Obligation{
		ID:               rec.ID,
		Kind:             obligation.KindInstallmentDue,
		CustomerID:       rec.Customer.ID,
		CustomerName:     rec.Customer.Name,
		CustomerPhone:    phone,
		MessagingEnabled: true,
		Description:      rec.ProductName,
		Amount:           rec.MonthlyAmount,
		ReferenceDate:    next,
		DayOffset:        -daysLeft,
	}, true
}

func debtOverdue(rec obligation.DebtRecord, today time.Time) (obligation.Obligation, bool) {
	if !rec.Customer.MessagingEnabled() || !rec.DueDate.Valid {
		return obligation.Obligation{}, false
	}
	if obligation.ParseStatus(rec.Status) == obligation.StatusCompleted {
		return obligation.Obligation{}, false
	}
	due := civilDate(rec.DueDate.Time)
	daysOverdue := daysBetween(due, today)
	if daysOverdue < 1 {
		return obligation.Obligation{}, false
	}
	return obligation.Obligation{
		ID:               rec.ID,
		Kind:             obligation.KindDebtOverdue,
		CustomerID:       rec.Customer.ID,
		CustomerName:     rec.Customer.Name,
		CustomerPhone:    rec.Customer.ContactNumber(),
		MessagingEnabled: true,
		Description:      rec.Description.String,
		Amount:           rec.Amount,
		ReferenceDate:    due,
		DayOffset:        daysOverdue,
	}, true
}

// civilDate drops the clock part of t, keeping its calendar date as UTC midnight.
func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// daysBetween counts whole calendar days from a to b; both must be civil dates.
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}
