// internal/domain/obligation/obligation.go
package obligation

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Kind tags an Obligation as either an upcoming installment or an overdue debt.
type Kind string

const (
	KindInstallmentDue Kind = "INSTALLMENT_DUE"
	KindDebtOverdue    Kind = "DEBT_OVERDUE"
)

// Status is the normalized lifecycle status of an installment or debt.
type Status string

const (
	StatusActive    Status = "active"
	StatusOverdue   Status = "overdue"
	StatusCompleted Status = "completed"
	StatusUnknown   Status = ""
)

// Legacy status values written by the original shop UI.
const (
	legacyActive    = "نشط"
	legacyOverdue   = "متأخر"
	legacyCompleted = "مكتمل"
)

// ParseStatus maps a stored status (canonical or legacy) to a Status.
func ParseStatus(raw string) Status {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(StatusActive), legacyActive:
		return StatusActive
	case string(StatusOverdue), legacyOverdue:
		return StatusOverdue
	case string(StatusCompleted), legacyCompleted:
		return StatusCompleted
	default:
		return StatusUnknown
	}
}

// StoredValues returns every stored spelling of the given statuses, used for
// store-side filtering.
func StoredValues(statuses ...Status) []string {
	out := make([]string, 0, len(statuses)*2)
	for _, s := range statuses {
		switch s {
		case StatusActive:
			out = append(out, string(StatusActive), legacyActive)
		case StatusOverdue:
			out = append(out, string(StatusOverdue), legacyOverdue)
		case StatusCompleted:
			out = append(out, string(StatusCompleted), legacyCompleted)
		}
	}
	return out
}

// Obligation is a due or overdue payment eligible for a reminder.
type Obligation struct {
	ID               string
	Kind             Kind
	CustomerID       string
	CustomerName     string
	CustomerPhone    string
	MessagingEnabled bool
	Description      string // product name for installments, debt description for debts
	Amount           decimal.Decimal
	Currency         string
	ReferenceDate    time.Time // next payment date or due date, date-only
	// DayOffset is positive when the obligation is overdue and negative or zero
	// while it is still upcoming.
	DayOffset int
}

// DaysUntilDue is the number of days left before the reference date.
func (o Obligation) DaysUntilDue() int {
	return -o.DayOffset
}

// DaysOverdue is the number of days past the reference date.
func (o Obligation) DaysOverdue() int {
	return o.DayOffset
}
