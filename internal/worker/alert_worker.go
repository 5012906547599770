// Package worker delivers alert events published by the engine. The worker
// binary consumes the alert queue and hands each event to a Deliverer.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"budgap/internal/amqp"
	"budgap/internal/core"
	"budgap/internal/ledger"
)

// Deliverer pushes a resolved notification to an outbound channel. The
// default implementation only logs; mail or push integrations plug in here.
type Deliverer interface {
	Deliver(ctx context.Context, event *amqp.AlertEventMessage, n *core.Notification) error
}

// LogDeliverer writes delivered notifications to the structured log.
type LogDeliverer struct{}

func (LogDeliverer) Deliver(ctx context.Context, event *amqp.AlertEventMessage, n *core.Notification) error {
	slog.InfoContext(ctx, "Alert delivered",
		"notification_id", n.ID,
		"owner_id", n.OwnerID,
		"kind", event.Kind,
		"type", n.Type,
		"title", n.Title)
	return nil
}

// AlertWorker resolves queued alert events against the notification store
// and forwards them to the deliverer.
type AlertWorker struct {
	store     ledger.NotificationStore
	deliverer Deliverer
}

func NewAlertWorker(store ledger.NotificationStore, deliverer Deliverer) *AlertWorker {
	if deliverer == nil {
		deliverer = LogDeliverer{}
	}
	return &AlertWorker{store: store, deliverer: deliverer}
}

// HandleAlertEvent processes one queued event. An event whose notification
// no longer exists is dropped, not retried: the record is the source of
// truth and it is gone.
func (w *AlertWorker) HandleAlertEvent(ctx context.Context, event *amqp.AlertEventMessage) error {
	slog.InfoContext(ctx, "Processing alert event",
		"notification_id", event.NotificationID,
		"owner_id", event.OwnerID,
		"kind", event.Kind)

	n, err := w.findNotification(ctx, event.OwnerID, event.NotificationID)
	if err != nil {
		return fmt.Errorf("resolve notification: %w", err)
	}
	if n == nil {
		slog.WarnContext(ctx, "Dropping event for missing notification",
			"notification_id", event.NotificationID)
		return nil
	}

	if err := w.deliverer.Deliver(ctx, event, n); err != nil {
		return fmt.Errorf("deliver notification: %w", err)
	}
	return nil
}

// findNotification scans the owner's feed for the id. The store has no
// point lookup; events reference recent records so the scan stays short.
func (w *AlertWorker) findNotification(ctx context.Context, owner, id string) (*core.Notification, error) {
	items, err := w.store.ListNotifications(ctx, owner, 0)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].ID == id {
			return &items[i], nil
		}
	}
	return nil, nil
}
