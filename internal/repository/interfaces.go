package repository

import "context"

// Store exposes the repository for each aggregate the dashboard persists.
type Store interface {
	Settings() SettingRepository
	OrderStatusLogs() OrderStatusLogRepository
}

// SettingRepository handles the local key/value store.
type SettingRepository interface {
	Get(ctx context.Context, key string) (*Setting, error)
	Upsert(ctx context.Context, setting *Setting) error
	ListByCategory(ctx context.Context, category string) ([]Setting, error)
	Delete(ctx context.Context, key string) error
}

// OrderStatusLogRepository appends and reads the status audit trail.
type OrderStatusLogRepository interface {
	Append(ctx context.Context, entry *OrderStatusLog) error
	ListByOrder(ctx context.Context, orderID string, limit int) ([]*OrderStatusLog, error)
	LastByOrder(ctx context.Context, orderID string) (*OrderStatusLog, error)
	CountBackward(ctx context.Context) (int64, error)
}
