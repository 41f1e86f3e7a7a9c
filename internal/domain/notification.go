package domain

import "time"

// NotificationKind enum for user-facing notifications.
type NotificationKind string

const (
	NotificationFetchFailure       NotificationKind = "fetch_failure"
	NotificationValidationRejected NotificationKind = "validation_rejection"
	NotificationInvariantViolation NotificationKind = "invariant_violation"
)

// Notification event raised for the UI layer instead of a thrown fault.
type Notification struct {
	Timestamp time.Time        `json:"ts"`
	SessionID string           `json:"session_id"`
	Kind      NotificationKind `json:"kind"`
	// Reason machine readable cause, e.g. "negative" for a rejected amount.
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message"`
}
