package reminder

import (
	"time"

	"payment_reminder_bot/internal/domain/obligation"
)

// Target is one obligation paired with its recipient, queued for a single send.
type Target struct {
	Recipient  string // raw phone, normalized by the delivery client
	Obligation obligation.Obligation
	// MessageOverride replaces the rendered template when non-empty.
	MessageOverride string
}

// Text returns the message to send for this target.
func (t Target) Text(language string) string {
	if t.MessageOverride != "" {
		return t.MessageOverride
	}
	return RenderFor(t.Obligation, language)
}

// BatchState is the lifecycle state of a bulk run.
type BatchState string

const (
	StateIdle         BatchState = "IDLE"
	StateRunning      BatchState = "RUNNING"
	StateCompleted    BatchState = "COMPLETED"
	StateCancelled    BatchState = "CANCELLED"
	StateAbortedFatal BatchState = "ABORTED_FATAL"
)

// Failure records why one target was not delivered.
type Failure struct {
	Target Target
	Reason string
}

// BatchResult is the outcome of one bulk run. It is not modified after it is returned.
type BatchResult struct {
	ID         string
	Total      int
	Succeeded  int
	Failed     int
	Failures   []Failure
	State      BatchState
	StartedAt  time.Time
	FinishedAt time.Time
}

// Aborted reports whether the batch stopped before reaching every target.
func (r BatchResult) Aborted() bool {
	return r.State == StateCancelled || r.State == StateAbortedFatal
}

// Skipped is the number of targets never attempted.
func (r BatchResult) Skipped() int {
	return r.Total - r.Succeeded - r.Failed
}
