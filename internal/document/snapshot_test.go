package document

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"budgap/internal/core"
	"budgap/internal/ledger"
)

func TestSnapshotRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "budgap.json")
	ctx := context.Background()

	src := New()
	tx := &core.Transaction{
		ID:          "t1",
		OwnerID:     "o",
		Type:        core.Expense,
		Amount:      core.MoneyFromCents(1500),
		Description: "coffee",
		Date:        mustDate(t, "2025-08-10"),
		CategoryID:  "cat_food",
		Tags:        []string{"morning"},
	}
	if err := src.InsertTransaction(ctx, tx); err != nil {
		t.Fatalf("insert transaction: %v", err)
	}
	g := &core.Goal{ID: "g1", OwnerID: "o", Name: "Trip", Target: core.MoneyFromCents(50000), Status: core.GoalActive}
	if err := src.InsertGoal(ctx, g); err != nil {
		t.Fatalf("insert goal: %v", err)
	}

	if err := src.SaveSnapshot(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	dst := New()
	if err := dst.LoadSnapshot(path); err != nil {
		t.Fatalf("load: %v", err)
	}

	got, err := dst.GetTransaction(ctx, "o", "t1")
	if err != nil {
		t.Fatalf("get transaction: %v", err)
	}
	if got.Amount.Cents() != 1500 || got.Date.String() != "2025-08-10" {
		t.Fatalf("transaction did not survive the round trip: %+v", got)
	}
	if len(got.Tags) != 1 || got.Tags[0] != "morning" {
		t.Fatalf("tags did not survive: %v", got.Tags)
	}
	if _, err := dst.GetGoal(ctx, "o", "g1"); err != nil {
		t.Fatalf("goal did not survive: %v", err)
	}

	cats, err := dst.ListCategories(ctx, "o", "")
	if err != nil {
		t.Fatalf("list categories: %v", err)
	}
	if len(cats) != 15 {
		t.Fatalf("expected the default registry after load, got %d", len(cats))
	}
}

func TestLoadSnapshotMissingFileKeepsDefaults(t *testing.T) {
	s := New()
	if err := s.LoadSnapshot(filepath.Join(t.TempDir(), "absent.json")); err != nil {
		t.Fatalf("missing snapshot must not error, got %v", err)
	}
	cats, err := s.ListCategories(context.Background(), "o", "")
	if err != nil {
		t.Fatalf("list categories: %v", err)
	}
	if len(cats) != 15 {
		t.Fatalf("expected seeded defaults, got %d", len(cats))
	}
}

func TestLoadSnapshotRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{nope"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := New().LoadSnapshot(path); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestSnapshotPreservesQuerySemantics(t *testing.T) {
	path := filepath.Join(t.TempDir(), "budgap.json")
	ctx := context.Background()

	src := New()
	for i, date := range []string{"2025-08-01", "2025-08-02", "2025-08-03"} {
		tx := &core.Transaction{
			ID:          "t" + string(rune('a'+i)),
			OwnerID:     "o",
			Type:        core.Expense,
			Amount:      core.MoneyFromCents(int64(1000 * (i + 1))),
			Description: "seed",
			Date:        mustDate(t, date),
		}
		if err := src.InsertTransaction(ctx, tx); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	if err := src.SaveSnapshot(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	dst := New()
	if err := dst.LoadSnapshot(path); err != nil {
		t.Fatalf("load: %v", err)
	}
	items, total, err := dst.QueryTransactions(ctx, "o", ledger.TransactionFilter{},
		ledger.Sort{Field: ledger.SortDate, Asc: true}, ledger.Page{Limit: 2})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if total != 3 || len(items) != 2 || items[0].ID != "ta" {
		t.Fatalf("unexpected query result after load: total=%d items=%v", total, items)
	}
}
