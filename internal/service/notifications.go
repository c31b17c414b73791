package service

import (
	"context"
	"errors"
	"time"

	"github.com/creamcroissant/ovenboard/internal/notification"
	"github.com/creamcroissant/ovenboard/internal/repository"
)

// NotificationService is the view-facing surface of the ledger.
type NotificationService interface {
	List(ctx context.Context, filter notification.Filter) []notification.Notification
	Add(ctx context.Context, draft notification.Draft) notification.Notification
	MarkRead(ctx context.Context, id string)
	MarkAllRead(ctx context.Context, module notification.Module)
	UnreadCount(ctx context.Context, module notification.Module) int
	Delete(ctx context.Context, id string)
	ClearAll(ctx context.Context)
	Subscribe() (<-chan notification.Change, func())
}

type notificationService struct {
	ledger *notification.Ledger
}

// NewNotificationService wraps the shared ledger.
func NewNotificationService(ledger *notification.Ledger) NotificationService {
	return &notificationService{ledger: ledger}
}

func (s *notificationService) List(ctx context.Context, filter notification.Filter) []notification.Notification {
	return s.ledger.List(filter)
}

func (s *notificationService) Add(ctx context.Context, draft notification.Draft) notification.Notification {
	return s.ledger.Add(ctx, draft)
}

func (s *notificationService) MarkRead(ctx context.Context, id string) {
	s.ledger.MarkRead(ctx, id)
}

func (s *notificationService) MarkAllRead(ctx context.Context, module notification.Module) {
	s.ledger.MarkAllRead(ctx, module)
}

func (s *notificationService) UnreadCount(ctx context.Context, module notification.Module) int {
	return s.ledger.UnreadCount(module)
}

func (s *notificationService) Delete(ctx context.Context, id string) {
	s.ledger.Delete(ctx, id)
}

func (s *notificationService) ClearAll(ctx context.Context) {
	s.ledger.ClearAll(ctx)
}

func (s *notificationService) Subscribe() (<-chan notification.Change, func()) {
	return s.ledger.Bus().Subscribe()
}

// LedgerSettingKey is the single well-known key the ledger persists under.
const LedgerSettingKey = "notifications.ledger"

// NewLedgerStore adapts the settings repository into the ledger's
// key-value store contract.
func NewLedgerStore(settings repository.SettingRepository) notification.Store {
	return &ledgerSettingStore{settings: settings, now: time.Now}
}

type ledgerSettingStore struct {
	settings repository.SettingRepository
	now      func() time.Time
}

func (s *ledgerSettingStore) Load(ctx context.Context) ([]byte, bool, error) {
	setting, err := s.settings.Get(ctx, LedgerSettingKey)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return []byte(setting.Value), true, nil
}

func (s *ledgerSettingStore) Save(ctx context.Context, data []byte) error {
	return s.settings.Upsert(ctx, &repository.Setting{
		Key:       LedgerSettingKey,
		Value:     string(data),
		Category:  "notifications",
		UpdatedAt: s.now().Unix(),
	})
}
