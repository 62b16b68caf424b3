package messaging

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed delivery.
type ErrorKind int

const (
	KindValidation          ErrorKind = iota + 1 // missing settings or recipient, no request sent
	KindShapeRejected                            // 422, next candidate may succeed
	KindRateLimited                              // 429 after bounded retries
	KindUnauthorized                             // 401, aborts a batch
	KindFatal                                    // any other non-2xx status, aborts a batch
	KindNetwork                                  // connection-level failure
	KindAllCandidatesFailed                      // every candidate rejected the request shape
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindShapeRejected:
		return "shape_rejected"
	case KindRateLimited:
		return "rate_limited"
	case KindUnauthorized:
		return "unauthorized"
	case KindFatal:
		return "fatal"
	case KindNetwork:
		return "network"
	case KindAllCandidatesFailed:
		return "all_candidates_failed"
	default:
		return "unknown"
	}
}

// DeliveryError is the classified result of a failed send.
type DeliveryError struct {
	Kind      ErrorKind
	Status    int    // HTTP status of the last exchange, 0 when none happened
	Body      string // response body of the last exchange
	Candidate string // request candidate that produced the error
	Err       error
}

func (e *DeliveryError) Error() string {
	msg := "delivery failed: " + e.Kind.String()
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.Candidate != "" {
		msg += " via " + e.Candidate
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// Fatal reports whether the error must stop a whole batch.
func (e *DeliveryError) Fatal() bool {
	return e.Kind == KindUnauthorized || e.Kind == KindFatal
}

// NewValidationError wraps err as a validation failure.
func NewValidationError(err error) *DeliveryError {
	return &DeliveryError{Kind: KindValidation, Err: err}
}

// KindOf returns the classification of err, or 0 when err is not a DeliveryError.
func KindOf(err error) ErrorKind {
	var de *DeliveryError
	if errors.As(err, &de) {
		return de.Kind
	}
	return 0
}

// IsFatal reports whether err should abort a batch.
func IsFatal(err error) bool {
	var de *DeliveryError
	return errors.As(err, &de) && de.Fatal()
}

// IsRateLimited reports whether err is a rate-limit classification.
func IsRateLimited(err error) bool {
	return KindOf(err) == KindRateLimited
}
