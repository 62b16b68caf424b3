package telegram

import (
	"errors"
	"fmt"
	"strings"

	"payment_reminder_bot/internal/app"
	"payment_reminder_bot/internal/domain/customer"
	"payment_reminder_bot/internal/domain/messaging"
	"payment_reminder_bot/internal/domain/obligation"
	"payment_reminder_bot/internal/domain/reminder"
	"payment_reminder_bot/internal/domain/settings"
	idb "payment_reminder_bot/internal/infra/database"
)

// maxListLines keeps replies under Telegram's message size limit.
const maxListLines = 40

func formatObligations(obs []obligation.Obligation) string {
	if len(obs) == 0 {
		return "No reminders are due right now."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Eligible reminders: %d\n", len(obs))
	for i, ob := range obs {
		if i == maxListLines {
			fmt.Fprintf(&b, "\n... and %d more", len(obs)-maxListLines)
			break
		}
		when := fmt.Sprintf("due in %d days", ob.DaysUntilDue())
		switch {
		case ob.Kind == obligation.KindDebtOverdue || ob.DayOffset > 0:
			when = fmt.Sprintf("%d days overdue", ob.DaysOverdue())
		case ob.DayOffset == 0:
			when = "due today"
		}
		phone := ob.CustomerPhone
		if phone == "" {
			phone = "no phone"
		}
		fmt.Fprintf(&b, "\n%s | %s (%s) | %s %s | %s",
			ob.ID, ob.CustomerName, phone, reminder.FormatAmount(ob.Amount), ob.Currency, when)
	}
	return b.String()
}

func formatCustomers(customers []*customer.Customer) string {
	if len(customers) == 0 {
		return "No customers found."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Customers: %d\n", len(customers))
	for i, c := range customers {
		if i == maxListLines {
			fmt.Fprintf(&b, "\n... and %d more", len(customers)-maxListLines)
			break
		}
		status := "messaging on"
		if !c.MessagingEnabled() {
			status = "opted out"
		}
		number := c.ContactNumber()
		if number == "" {
			number = "no phone"
		}
		fmt.Fprintf(&b, "\n%s | %s | %s | %s", c.ID, c.Name, number, status)
	}
	return b.String()
}

func formatSettings(s settings.Settings) string {
	var b strings.Builder
	b.WriteString("Current settings:\n")
	fmt.Fprintf(&b, "\n%s = %t", settings.KeyGatewayEnabled, s.Enabled)
	fmt.Fprintf(&b, "\n%s = %s", settings.KeyGatewayURL, valueOrUnset(s.GatewayURL))
	fmt.Fprintf(&b, "\n%s = %s", settings.KeyAPIKey, valueOrUnset(s.MaskedAPIKey()))
	fmt.Fprintf(&b, "\n%s = %s", settings.KeySenderNumber, valueOrUnset(s.SenderNumber))
	fmt.Fprintf(&b, "\n%s = %d", settings.KeyReminderDays, s.ReminderWindowDays)
	fmt.Fprintf(&b, "\n%s = %s", settings.KeyLanguage, s.Language)
	fmt.Fprintf(&b, "\n%s = %s", settings.KeyCurrency, s.Currency)
	if err := s.Validate(); err != nil {
		fmt.Fprintf(&b, "\n\nSending is not possible yet: %s", strings.ReplaceAll(err.Error(), "\n", "; "))
	}
	return b.String()
}

func valueOrUnset(v string) string {
	if v == "" {
		return "(not set)"
	}
	return v
}

// describeError turns a service error into an operator-facing message.
func describeError(err error) string {
	var de *messaging.DeliveryError
	if errors.As(err, &de) {
		switch de.Kind {
		case messaging.KindValidation:
			return "Cannot send: " + strings.ReplaceAll(unwrapText(de), "\n", "; ")
		case messaging.KindUnauthorized:
			return "The gateway rejected the API key (401). Update " + settings.KeyAPIKey + " with /set."
		case messaging.KindRateLimited:
			return "The gateway rate limit was reached. Try again later."
		case messaging.KindNetwork:
			return "Could not reach the gateway: " + unwrapText(de)
		case messaging.KindAllCandidatesFailed:
			return fmt.Sprintf("The gateway rejected every request format (status %d): %s", de.Status, de.Body)
		default:
			return fmt.Sprintf("The gateway returned an error (status %d): %s", de.Status, de.Body)
		}
	}

	var re *app.ResolutionError
	switch {
	case errors.As(err, &re):
		return "Could not read customers and payments from the database. Try again later."
	case errors.Is(err, app.ErrBatchAlreadyRunning):
		return "A reminder batch is already running. Use /status or /cancel."
	case errors.Is(err, app.ErrNoBatchRunning):
		return "No reminder batch is running."
	case errors.Is(err, app.ErrNoTargets):
		return "There are no reminders to send right now."
	case errors.Is(err, app.ErrObligationNotFound):
		return "That installment or debt is not due for a reminder. Use /eligible to see the list."
	case errors.Is(err, app.ErrNoRecipient):
		return "No phone number to send to."
	case errors.Is(err, idb.ErrCustomerNotFound):
		return "Customer not found. Use /customers to see the list."
	case errors.Is(err, settings.ErrUnknownKey):
		return "Unknown setting. Valid keys: " + strings.Join(settings.Keys, ", ")
	default:
		return "Error: " + err.Error()
	}
}

func unwrapText(de *messaging.DeliveryError) string {
	if de.Err != nil {
		return de.Err.Error()
	}
	return de.Error()
}

// looksLikePhone reports whether s is made only of phone-number characters.
func looksLikePhone(s string) bool {
	digits := 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '+' || r == '-' || r == ' ' || r == '(' || r == ')':
		default:
			return false
		}
	}
	return digits > 0
}

// splitFirst splits a command payload into its first word and the rest.
func splitFirst(payload string) (string, string) {
	payload = strings.TrimSpace(payload)
	i := strings.IndexAny(payload, " \n\t")
	if i < 0 {
		return payload, ""
	}
	return payload[:i], strings.TrimSpace(payload[i+1:])
}
