package services

import (
	"context"
	"fmt"

	"budgap/internal/ledger"
)

// defaultFeedLimit bounds the notification feed when the caller does not
// choose a limit.
const defaultFeedLimit = 50

// NotificationService reads and acknowledges the notification feed.
// Notifications themselves are created by the alert path.
type NotificationService struct {
	store ledger.NotificationStore
}

func NewNotificationService(store ledger.NotificationStore) *NotificationService {
	return &NotificationService{store: store}
}

// Feed returns the latest notifications plus the unread counter.
func (s *NotificationService) Feed(ctx context.Context, owner string, limit int) (*NotificationFeed, error) {
	if limit <= 0 {
		limit = defaultFeedLimit
	}

	items, err := s.store.ListNotifications(ctx, owner, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	unread, err := s.store.UnreadCount(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("count unread: %w", err)
	}

	return &NotificationFeed{Notifications: items, UnreadCount: unread}, nil
}

// MarkRead acknowledges one notification. For budget alerts this re-arms
// the dedup key, so the next qualifying expense write alerts again.
func (s *NotificationService) MarkRead(ctx context.Context, owner, id string) error {
	return s.store.MarkNotificationRead(ctx, owner, id)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, owner string) error {
	return s.store.MarkAllNotificationsRead(ctx, owner)
}
