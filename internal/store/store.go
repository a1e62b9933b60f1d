package store

import (
	"context"
	"time"

	"github.com/nhle/careboard/internal/model"
)

// ActivityFilter controls filtering and pagination for activity queries.
type ActivityFilter struct {
	Type  *model.NotificationType
	Since *time.Time
	Limit int
}

// Store defines the persistence interface for the local activity log.
type Store interface {
	RecordActivity(ctx context.Context, n model.Notification) error
	GetActivity(ctx context.Context, filter ActivityFilter) ([]model.Activity, error)
	PruneActivity(ctx context.Context, before time.Time) (int64, error)
}
