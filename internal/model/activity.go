package model

import "time"

// Activity is a persisted record of a notification, kept after the
// notification itself has expired.
type Activity struct {
	ID             string           `json:"id" db:"id"`
	NotificationID uint64           `json:"notification_id" db:"notification_id"`
	Message        string           `json:"message" db:"message"`
	Type           NotificationType `json:"type" db:"type"`
	CreatedAt      time.Time        `json:"created_at" db:"created_at"`
}
