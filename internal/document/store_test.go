package document

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"budgap/internal/core"
	"budgap/internal/ledger"
)

func mustDate(t *testing.T, s string) core.Date {
	t.Helper()
	d, err := core.ParseDate(s)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return d
}

func TestSeedsDefaultCategories(t *testing.T) {
	s := New()
	cats, err := s.ListCategories(context.Background(), "owner", "")
	if err != nil {
		t.Fatalf("list categories: %v", err)
	}
	if len(cats) != 15 {
		t.Fatalf("expected 15 default categories, got %d", len(cats))
	}
	for _, c := range cats {
		if !c.IsDefault {
			t.Fatalf("category %s should be a default", c.ID)
		}
	}

	expenses, err := s.ListCategories(context.Background(), "owner", core.Expense)
	if err != nil {
		t.Fatalf("list expense categories: %v", err)
	}
	if len(expenses) != 10 {
		t.Fatalf("expected 10 expense defaults, got %d", len(expenses))
	}
}

func TestDefaultCategoryImmutable(t *testing.T) {
	s := New()
	name := "Mine"
	_, err := s.UpdateCategory(context.Background(), "owner", "cat_food", ledger.CategoryPatch{Name: &name})
	if !errors.Is(err, core.ErrDefaultCategoryImmutable) {
		t.Fatalf("update default: expected ErrDefaultCategoryImmutable, got %v", err)
	}
	if err := s.DeleteCategory(context.Background(), "owner", "cat_food"); !errors.Is(err, core.ErrDefaultCategoryImmutable) {
		t.Fatalf("delete default: expected ErrDefaultCategoryImmutable, got %v", err)
	}
}

func TestTransactionOwnerScoping(t *testing.T) {
	s := New()
	ctx := context.Background()
	tx := &core.Transaction{
		ID:          "tx1",
		OwnerID:     "alice",
		Type:        core.Expense,
		Amount:      core.MoneyFromCents(1250),
		Description: "Lunch",
		Date:        mustDate(t, "2025-08-10"),
	}
	if err := s.InsertTransaction(ctx, tx); err != nil {
		t.Fatalf("insert: %v", err)
	}

	if _, err := s.GetTransaction(ctx, "bob", "tx1"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("cross-owner get: expected ErrNotFound, got %v", err)
	}
	if err := s.DeleteTransaction(ctx, "bob", "tx1"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("cross-owner delete: expected ErrNotFound, got %v", err)
	}

	got, err := s.GetTransaction(ctx, "alice", "tx1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Description != "Lunch" {
		t.Fatalf("unexpected transaction: %+v", got)
	}
}

func TestQueryTransactionsFiltersAndCounts(t *testing.T) {
	s := New()
	ctx := context.Background()
	base := time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC)
	rows := []core.Transaction{
		{ID: "a", OwnerID: "o", Type: core.Expense, Amount: core.MoneyFromCents(5000), Description: "Groceries", CategoryID: "cat_food", Date: mustDate(t, "2025-08-01"), CreatedAt: base},
		{ID: "b", OwnerID: "o", Type: core.Expense, Amount: core.MoneyFromCents(12000), Description: "Rent share", CategoryID: "cat_housing", Date: mustDate(t, "2025-08-15"), CreatedAt: base.Add(time.Minute)},
		{ID: "c", OwnerID: "o", Type: core.Income, Amount: core.MoneyFromCents(300000), Description: "Salary", Date: mustDate(t, "2025-08-01"), CreatedAt: base.Add(2 * time.Minute)},
		{ID: "d", OwnerID: "other", Type: core.Expense, Amount: core.MoneyFromCents(999), Description: "Not mine", Date: mustDate(t, "2025-08-02"), CreatedAt: base},
	}
	for i := range rows {
		if err := s.InsertTransaction(ctx, &rows[i]); err != nil {
			t.Fatalf("insert %s: %v", rows[i].ID, err)
		}
	}

	items, total, err := s.QueryTransactions(ctx, "o",
		ledger.TransactionFilter{Type: core.Expense}, ledger.Sort{}, ledger.Page{Limit: 1})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if total != 2 {
		t.Fatalf("expected total 2, got %d", total)
	}
	if len(items) != 1 || items[0].ID != "b" {
		t.Fatalf("expected page [b], got %+v", items)
	}
}

func TestApplyDepositClampsAndFlagsCompletion(t *testing.T) {
	s := New()
	ctx := context.Background()
	g := &core.Goal{
		ID:      "g1",
		OwnerID: "o",
		Name:    "Vacation",
		Target:  core.MoneyFromCents(100000),
		Current: core.MoneyFromCents(80000),
		Status:  core.GoalActive,
	}
	if err := s.InsertGoal(ctx, g); err != nil {
		t.Fatalf("insert goal: %v", err)
	}

	got, completedNow, err := s.ApplyDeposit(ctx, "o", "g1", core.MoneyFromCents(50000))
	if err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if !completedNow {
		t.Fatalf("expected completion edge on clamping deposit")
	}
	if got.Status != core.GoalCompleted {
		t.Fatalf("expected completed status, got %s", got.Status)
	}
	if got.Current.Cents() != 100000 {
		t.Fatalf("expected balance clamped to 100000 cents, got %d", got.Current.Cents())
	}

	// A further deposit must not re-raise the completion edge.
	_, completedNow, err = s.ApplyDeposit(ctx, "o", "g1", core.MoneyFromCents(100))
	if err != nil {
		t.Fatalf("second deposit: %v", err)
	}
	if completedNow {
		t.Fatalf("completion edge fired twice")
	}
}

func TestApplyDepositParallelStaysClamped(t *testing.T) {
	s := New()
	ctx := context.Background()
	g := &core.Goal{
		ID:      "g1",
		OwnerID: "o",
		Name:    "House",
		Target:  core.MoneyFromCents(100000),
		Status:  core.GoalActive,
	}
	if err := s.InsertGoal(ctx, g); err != nil {
		t.Fatalf("insert goal: %v", err)
	}

	var wg sync.WaitGroup
	var completions int32
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, completedNow, err := s.ApplyDeposit(ctx, "o", "g1", core.MoneyFromCents(30000))
			if err != nil {
				t.Errorf("deposit: %v", err)
				return
			}
			if completedNow {
				atomic.AddInt32(&completions, 1)
			}
		}()
	}
	wg.Wait()

	got, err := s.GetGoal(ctx, "o", "g1")
	if err != nil {
		t.Fatalf("get goal: %v", err)
	}
	if got.Current.Cents() != 100000 {
		t.Fatalf("expected balance clamped to 100000 cents, got %d", got.Current.Cents())
	}
	if got.Status != core.GoalCompleted {
		t.Fatalf("expected completed status, got %s", got.Status)
	}
	if completions != 1 {
		t.Fatalf("completion edge fired %d times, want exactly once", completions)
	}
}

func TestPartialDepositKeepsGoalActive(t *testing.T) {
	s := New()
	ctx := context.Background()
	g := &core.Goal{
		ID:      "g2",
		OwnerID: "o",
		Name:    "Emergency fund",
		Target:  core.MoneyFromCents(50000),
		Current: core.MoneyFromCents(20000),
		Status:  core.GoalActive,
	}
	if err := s.InsertGoal(ctx, g); err != nil {
		t.Fatalf("insert goal: %v", err)
	}

	got, completedNow, err := s.ApplyDeposit(ctx, "o", "g2", core.MoneyFromCents(20000))
	if err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if completedNow || got.Status != core.GoalActive {
		t.Fatalf("expected goal still active, got status=%s completedNow=%v", got.Status, completedNow)
	}
	if got.Current.Cents() != 40000 {
		t.Fatalf("expected 40000 cents, got %d", got.Current.Cents())
	}
}

func TestNotificationDedupeLifecycle(t *testing.T) {
	s := New()
	ctx := context.Background()
	key := "budget:b1:2025-8"
	n := &core.Notification{
		ID:        "n1",
		OwnerID:   "o",
		Title:     "Budget alert",
		Message:   "over threshold",
		Type:      core.NotifyWarning,
		DedupeKey: key,
		CreatedAt: time.Now(),
	}
	if err := s.InsertNotification(ctx, n); err != nil {
		t.Fatalf("insert: %v", err)
	}

	found, err := s.FindUnreadByDedupeKey(ctx, "o", key)
	if err != nil {
		t.Fatalf("find unread: %v", err)
	}
	if found.ID != "n1" {
		t.Fatalf("expected n1, got %s", found.ID)
	}

	if err := s.MarkNotificationRead(ctx, "o", "n1"); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if _, err := s.FindUnreadByDedupeKey(ctx, "o", key); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("after mark read: expected ErrNotFound, got %v", err)
	}

	count, err := s.UnreadCount(ctx, "o")
	if err != nil || count != 0 {
		t.Fatalf("unread count: got %d err=%v", count, err)
	}
}

func TestListBudgetsFiltersPeriodAndActive(t *testing.T) {
	s := New()
	ctx := context.Background()
	budgets := []core.Budget{
		{ID: "b1", OwnerID: "o", CategoryID: "cat_food", Name: "Food", Amount: core.MoneyFromCents(50000), Period: core.PeriodMonthly, Month: 8, Year: 2025, IsActive: true},
		{ID: "b2", OwnerID: "o", CategoryID: "cat_food", Name: "Food old", Amount: core.MoneyFromCents(50000), Period: core.PeriodMonthly, Month: 7, Year: 2025, IsActive: true},
		{ID: "b3", OwnerID: "o", CategoryID: "cat_tech", Name: "Tech", Amount: core.MoneyFromCents(20000), Period: core.PeriodMonthly, Month: 8, Year: 2025, IsActive: false},
	}
	for i := range budgets {
		if err := s.InsertBudget(ctx, &budgets[i]); err != nil {
			t.Fatalf("insert %s: %v", budgets[i].ID, err)
		}
	}

	all, err := s.ListBudgets(ctx, "o", 2025, 8, false)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 budgets for 2025-08, got %d", len(all))
	}

	active, err := s.ListBudgets(ctx, "o", 2025, 8, true)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 1 || active[0].ID != "b1" {
		t.Fatalf("expected [b1], got %+v", active)
	}

	scoped, err := s.FindActiveBudgets(ctx, "o", "cat_food", 2025, 8)
	if err != nil {
		t.Fatalf("find active: %v", err)
	}
	if len(scoped) != 1 || scoped[0].ID != "b1" {
		t.Fatalf("expected [b1] for cat_food, got %+v", scoped)
	}
}
