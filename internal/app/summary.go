package app

import (
	"fmt"
	"strings"
	"time"

	"payment_reminder_bot/internal/domain/reminder"
)

// maxSummaryFailures caps the failure lines in an operator summary.
const maxSummaryFailures = 20

var stateLabels = map[reminder.BatchState]string{
	reminder.StateIdle:         "not started",
	reminder.StateRunning:      "running",
	reminder.StateCompleted:    "completed",
	reminder.StateCancelled:    "cancelled by operator",
	reminder.StateAbortedFatal: "aborted after a fatal gateway error",
}

// FormatBatchSummary renders a batch result for the operator chat.
func FormatBatchSummary(r reminder.BatchResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Reminder batch %s: %s\n", shortID(r.ID), stateLabels[r.State])
	fmt.Fprintf(&b, "Sent: %d, failed: %d", r.Succeeded, r.Failed)
	if skipped := r.Skipped(); skipped > 0 {
		fmt.Fprintf(&b, ", not attempted: %d", skipped)
	}
	fmt.Fprintf(&b, " (of %d)", r.Total)
	if !r.StartedAt.IsZero() && !r.FinishedAt.IsZero() {
		fmt.Fprintf(&b, "\nDuration: %s", r.FinishedAt.Sub(r.StartedAt).Round(time.Second))
	}

	if len(r.Failures) > 0 {
		b.WriteString("\n\nFailures:")
		for i, f := range r.Failures {
			if i == maxSummaryFailures {
				fmt.Fprintf(&b, "\n... and %d more", len(r.Failures)-maxSummaryFailures)
				break
			}
			name := f.Target.Obligation.CustomerName
			if name == "" {
				name = f.Target.Recipient
			}
			fmt.Fprintf(&b, "\n- %s: %s", name, f.Reason)
		}
	}
	return b.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
