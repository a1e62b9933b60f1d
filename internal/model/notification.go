package model

import "time"

// NotificationType classifies a notification for styling.
type NotificationType string

const (
	NotificationInfo    NotificationType = "info"
	NotificationSuccess NotificationType = "success"
	NotificationError   NotificationType = "error"
)

// Notification is a short-lived message surfaced to the user about the
// outcome of an operation.
type Notification struct {
	// ID is unique for the lifetime of the process.
	ID uint64 `json:"id"`

	// Message is the human-readable notification text.
	Message string `json:"message"`

	// Type selects the visual treatment.
	Type NotificationType `json:"type"`

	// CreatedAt is when the notification was enqueued.
	CreatedAt time.Time `json:"created_at"`
}
