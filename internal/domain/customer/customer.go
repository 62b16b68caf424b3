package customer

import (
	"database/sql"
	"strings"
	"time"
)

// Customer represents a customer of the shop as stored in the record store.
type Customer struct {
	ID              string
	Name            string
	Phone           sql.NullString
	WhatsAppNumber  sql.NullString
	WhatsAppEnabled sql.NullBool // NULL means the customer never opted out
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// MessagingEnabled reports whether reminders may be sent to the customer.
// A customer without an explicit preference is treated as enabled.
func (c Customer) MessagingEnabled() bool {
	if !c.WhatsAppEnabled.Valid {
		return true
	}
	return c.WhatsAppEnabled.Bool
}

// ContactNumber returns the WhatsApp number when set, falling back to the phone.
func (c Customer) ContactNumber() string {
	if n := strings.TrimSpace(c.WhatsAppNumber.String); c.WhatsAppNumber.Valid && n != "" {
		return n
	}
	if c.Phone.Valid {
		return strings.TrimSpace(c.Phone.String)
	}
	return ""
}
