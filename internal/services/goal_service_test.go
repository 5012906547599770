package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"budgap/internal/core"
	"budgap/internal/document"
	"budgap/internal/ledger"
)

func TestGoalDepositTruncatesAndCompletes(t *testing.T) {
	store := document.New()
	alerts := NewAlertService(store, NewBudgetService(store), nil)
	svc := NewGoalService(store, alerts)
	ctx := context.Background()

	g, err := svc.Create(ctx, core.Goal{
		OwnerID: "o",
		Name:    "Vacation",
		Target:  core.MoneyFromCents(100000),
		Current: core.MoneyFromCents(80000),
	})
	if err != nil {
		t.Fatalf("create goal: %v", err)
	}

	result, err := svc.Deposit(ctx, "o", g.ID, core.MoneyFromCents(50000))
	if err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if result.NewAmount.Cents() != 100000 {
		t.Fatalf("expected clamp to 100000 cents, got %d", result.NewAmount.Cents())
	}
	if result.Status != core.GoalCompleted {
		t.Fatalf("expected completed status, got %s", result.Status)
	}

	// The completion edge emits exactly one success notification.
	feed, err := NewNotificationService(store).Feed(ctx, "o", 0)
	if err != nil {
		t.Fatalf("feed: %v", err)
	}
	if len(feed.Notifications) != 1 || feed.Notifications[0].Type != core.NotifySuccess {
		t.Fatalf("expected one success notification, got %+v", feed.Notifications)
	}
}

func TestGoalDepositPartialKeepsActive(t *testing.T) {
	store := document.New()
	svc := NewGoalService(store, nil)
	ctx := context.Background()

	g, err := svc.Create(ctx, core.Goal{
		OwnerID: "o",
		Name:    "Emergency fund",
		Target:  core.MoneyFromCents(100000),
		Current: core.MoneyFromCents(20000),
	})
	if err != nil {
		t.Fatalf("create goal: %v", err)
	}

	result, err := svc.Deposit(ctx, "o", g.ID, core.MoneyFromCents(30000))
	if err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if result.NewAmount.Cents() != 50000 {
		t.Fatalf("expected 50000 cents, got %d", result.NewAmount.Cents())
	}
	if result.Status != core.GoalActive {
		t.Fatalf("expected status unchanged, got %s", result.Status)
	}
}

func TestGoalDepositRejectsNonPositiveAmount(t *testing.T) {
	store := document.New()
	svc := NewGoalService(store, nil)
	ctx := context.Background()

	g, err := svc.Create(ctx, core.Goal{
		OwnerID: "o",
		Name:    "Car",
		Target:  core.MoneyFromCents(500000),
	})
	if err != nil {
		t.Fatalf("create goal: %v", err)
	}

	if _, err := svc.Deposit(ctx, "o", g.ID, core.Zero()); !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for zero deposit, got %v", err)
	}
}

func TestGoalDepositRefusedWhenCompleted(t *testing.T) {
	store := document.New()
	svc := NewGoalService(store, nil)
	ctx := context.Background()

	g, err := svc.Create(ctx, core.Goal{
		OwnerID: "o",
		Name:    "Done",
		Target:  core.MoneyFromCents(10000),
		Current: core.MoneyFromCents(5000),
	})
	if err != nil {
		t.Fatalf("create goal: %v", err)
	}
	if _, err := svc.Deposit(ctx, "o", g.ID, core.MoneyFromCents(5000)); err != nil {
		t.Fatalf("completing deposit: %v", err)
	}

	_, err = svc.Deposit(ctx, "o", g.ID, core.MoneyFromCents(100))
	if !errors.Is(err, core.ErrGoalCompleted) {
		t.Fatalf("expected ErrGoalCompleted, got %v", err)
	}
}

func TestGoalDepositConcurrentClampAndSingleCompletion(t *testing.T) {
	store := document.New()
	alerts := NewAlertService(store, NewBudgetService(store), nil)
	svc := NewGoalService(store, alerts)
	ctx := context.Background()

	g, err := svc.Create(ctx, core.Goal{
		OwnerID: "o",
		Name:    "House",
		Target:  core.MoneyFromCents(100000),
	})
	if err != nil {
		t.Fatalf("create goal: %v", err)
	}

	// Enough deposits to overshoot the target several times over. Losers of
	// the race either get clamped or refused, never overfill.
	var wg sync.WaitGroup
	errs := make([]error, 10)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Deposit(ctx, "o", g.ID, core.MoneyFromCents(30000))
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil && !errors.Is(err, core.ErrGoalCompleted) {
			t.Fatalf("deposit %d: %v", i, err)
		}
	}

	final, err := store.GetGoal(ctx, "o", g.ID)
	if err != nil {
		t.Fatalf("get goal: %v", err)
	}
	if final.Current.Cents() != 100000 {
		t.Fatalf("balance must clamp at the target, got %d cents", final.Current.Cents())
	}
	if final.Status != core.GoalCompleted {
		t.Fatalf("expected completed status, got %s", final.Status)
	}

	// The completion edge fires once no matter how the deposits interleave.
	feed, err := NewNotificationService(store).Feed(ctx, "o", 0)
	if err != nil {
		t.Fatalf("feed: %v", err)
	}
	success := 0
	for _, n := range feed.Notifications {
		if n.Type == core.NotifySuccess {
			success++
		}
	}
	if success != 1 {
		t.Fatalf("expected exactly one completion notification, got %d", success)
	}
}

func TestGoalEditRecomputesStatus(t *testing.T) {
	store := document.New()
	svc := NewGoalService(store, nil)
	ctx := context.Background()

	g, err := svc.Create(ctx, core.Goal{
		OwnerID: "o",
		Name:    "Bike",
		Target:  core.MoneyFromCents(40000),
		Current: core.MoneyFromCents(10000),
	})
	if err != nil {
		t.Fatalf("create goal: %v", err)
	}

	current := core.MoneyFromCents(40000)
	updated, err := svc.Edit(ctx, "o", g.ID, ledger.GoalPatch{Current: &current})
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if updated.Status != core.GoalCompleted {
		t.Fatalf("expected edit to flip status to completed, got %s", updated.Status)
	}
}

func TestGoalViewProgress(t *testing.T) {
	store := document.New()
	svc := NewGoalService(store, nil)
	ctx := context.Background()

	g, err := svc.Create(ctx, core.Goal{
		OwnerID: "o",
		Name:    "Laptop",
		Target:  core.MoneyFromCents(300000),
		Current: core.MoneyFromCents(100000),
	})
	if err != nil {
		t.Fatalf("create goal: %v", err)
	}

	view, err := svc.Get(ctx, "o", g.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if view.Progress != 33.3 {
		t.Fatalf("expected progress 33.3, got %v", view.Progress)
	}
	if view.Remaining.Cents() != 200000 {
		t.Fatalf("expected remaining 200000 cents, got %d", view.Remaining.Cents())
	}
}
