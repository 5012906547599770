package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"budgap/internal/amqp"
	"budgap/internal/core"
	"budgap/internal/ledger"
)

// AlertService watches expense writes and raises budget-threshold warnings.
//
// Dedup: one unread warning per (budget, month) at a time, keyed by
// budget:<id>:<year>-<month>. Acknowledging the notification re-arms the
// alert. Concurrent writes can still race past the check; the design
// tolerates over-alerting, never under-alerting.
type AlertService struct {
	store      ledger.Store
	budgets    *BudgetService
	amqpClient *amqp.Client
}

func NewAlertService(store ledger.Store, budgets *BudgetService, amqpClient *amqp.Client) *AlertService {
	return &AlertService{
		store:      store,
		budgets:    budgets,
		amqpClient: amqpClient,
	}
}

// HandleExpenseWrite re-evaluates every active budget covering the written
// transaction's category and month. Income and categoryless transactions are
// a no-op.
func (s *AlertService) HandleExpenseWrite(ctx context.Context, t *core.Transaction) error {
	if t.Type != core.Expense || t.CategoryID == "" {
		return nil
	}

	budgets, err := s.store.FindActiveBudgets(ctx, t.OwnerID, t.CategoryID, t.Date.Year(), t.Date.Month())
	if err != nil {
		return fmt.Errorf("find budgets for alert: %w", err)
	}
	if len(budgets) == 0 {
		return nil
	}

	idx, err := loadCategoryIndex(ctx, s.store, t.OwnerID)
	if err != nil {
		return fmt.Errorf("load categories: %w", err)
	}

	for i := range budgets {
		if err := s.evaluateAndNotify(ctx, &budgets[i], idx); err != nil {
			return err
		}
	}
	return nil
}

func (s *AlertService) evaluateAndNotify(ctx context.Context, b *core.Budget, idx categoryIndex) error {
	status, err := s.budgets.evaluate(ctx, b, idx)
	if err != nil {
		return err
	}
	if !status.IsWarning {
		return nil
	}

	key := dedupeKey(b)
	if _, err := s.store.FindUnreadByDedupeKey(ctx, b.OwnerID, key); err == nil {
		slog.DebugContext(ctx, "Alert suppressed, unread notification exists",
			"budget_id", b.ID, "dedupe_key", key)
		return nil
	} else if !errors.Is(err, core.ErrNotFound) {
		return fmt.Errorf("check alert dedupe: %w", err)
	}

	name := b.Name
	if status.Category != nil {
		name = status.Category.Name
	}
	raw := core.RawPercent(status.Spent, b.Amount)

	n := core.Notification{
		ID:      uuid.NewString(),
		OwnerID: b.OwnerID,
		Title:   fmt.Sprintf("Budget %q alert: %d%%", name, int(math.Floor(raw))),
		Message: fmt.Sprintf("You have spent %s of your %s budget for %s this month.",
			status.Spent.StringFixed(2), b.Amount.StringFixed(2), name),
		Type:      core.NotifyWarning,
		DedupeKey: key,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.InsertNotification(ctx, &n); err != nil {
		return fmt.Errorf("insert alert notification: %w", err)
	}

	slog.InfoContext(ctx, "Budget alert raised",
		"budget_id", b.ID,
		"notification_id", n.ID,
		"spent_cents", status.Spent.Cents(),
		"limit_cents", b.Amount.Cents())

	s.publish(ctx, n.ID, n.OwnerID, amqp.KindBudgetAlert)
	return nil
}

// NotifyGoalCompleted emits the one success notification for a goal's
// completion edge.
func (s *AlertService) NotifyGoalCompleted(ctx context.Context, g *core.Goal) error {
	n := core.Notification{
		ID:      uuid.NewString(),
		OwnerID: g.OwnerID,
		Title:   fmt.Sprintf("Goal %q completed", g.Name),
		Message: fmt.Sprintf("You reached your target of %s. Congratulations!",
			g.Target.StringFixed(2)),
		Type:      core.NotifySuccess,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.InsertNotification(ctx, &n); err != nil {
		return fmt.Errorf("insert goal notification: %w", err)
	}

	slog.InfoContext(ctx, "Goal completion notification created",
		"goal_id", g.ID, "notification_id", n.ID)

	s.publish(ctx, n.ID, n.OwnerID, amqp.KindGoalCompleted)
	return nil
}

// publish is best effort. The broker being down never blocks or fails alert
// generation.
func (s *AlertService) publish(ctx context.Context, notificationID, ownerID, kind string) {
	if s.amqpClient == nil {
		return
	}
	if err := s.amqpClient.PublishAlertEvent(ctx, notificationID, ownerID, kind); err != nil {
		slog.ErrorContext(ctx, "Failed to publish alert event",
			"notification_id", notificationID,
			"kind", kind,
			"error", err)
	}
}

func dedupeKey(b *core.Budget) string {
	return fmt.Sprintf("budget:%s:%d-%d", b.ID, b.Year, b.Month)
}
