package ledger

import (
	"testing"
	"time"

	"budgap/internal/core"
)

func tx(id string, typ core.TransactionType, amount float64, date string, opts func(*core.Transaction)) core.Transaction {
	d, err := core.ParseDate(date)
	if err != nil {
		panic(err)
	}
	t := core.Transaction{
		ID:          id,
		OwnerID:     "u1",
		Type:        typ,
		Amount:      core.MoneyFromFloat(amount),
		Description: "entry " + id,
		Date:        d,
		CreatedAt:   d.Time,
	}
	if opts != nil {
		opts(&t)
	}
	return t
}

func sample() []core.Transaction {
	return []core.Transaction{
		tx("a", core.Expense, 50, "2026-08-01", func(t *core.Transaction) {
			t.CategoryID = "cat_food"
			t.Description = "Supermarket run"
			t.PaymentMethod = "card"
		}),
		tx("b", core.Expense, 120, "2026-08-15", func(t *core.Transaction) {
			t.CategoryID = "cat_housing"
			t.Notes = "electricity bill"
			t.PaymentMethod = "transfer"
		}),
		tx("c", core.Income, 3000, "2026-08-01", func(t *core.Transaction) {
			t.Description = "Salary"
			t.PaymentMethod = "transfer"
		}),
		tx("d", core.Expense, 9.99, "2026-07-28", func(t *core.Transaction) {
			t.CategoryID = "cat_food"
			t.Description = "Bakery"
			t.PaymentMethod = "cash"
		}),
	}
}

func ids(items []core.Transaction) []string {
	out := make([]string, len(items))
	for i, t := range items {
		out[i] = t.ID
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestMatchTransaction(t *testing.T) {
	tests := []struct {
		name   string
		filter TransactionFilter
		want   []string
	}{
		{name: "no constraints", filter: TransactionFilter{}, want: []string{"a", "b", "c", "d"}},
		{name: "by type", filter: TransactionFilter{Type: core.Income}, want: []string{"c"}},
		{name: "by category", filter: TransactionFilter{CategoryID: "cat_food"}, want: []string{"a", "d"}},
		{name: "by payment method", filter: TransactionFilter{PaymentMethod: "cash"}, want: []string{"d"}},
		{
			name: "by date range inclusive",
			filter: TransactionFilter{
				StartDate: core.NewDate(2026, 8, 1),
				EndDate:   core.NewDate(2026, 8, 15),
			},
			want: []string{"a", "b", "c"},
		},
		{name: "search description case-insensitive", filter: TransactionFilter{Search: "SUPER"}, want: []string{"a"}},
		{name: "search matches notes", filter: TransactionFilter{Search: "electricity"}, want: []string{"b"}},
		{name: "search no match", filter: TransactionFilter{Search: "zzz"}, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, item := range sample() {
				if MatchTransaction(item, tt.filter) {
					got = append(got, item.ID)
				}
			}
			if !equalIDs(got, tt.want) && !(len(got) == 0 && len(tt.want) == 0) {
				t.Errorf("matched %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSortTransactions(t *testing.T) {
	tests := []struct {
		name string
		sort Sort
		want []string
	}{
		{name: "default date desc", sort: Sort{}, want: []string{"b", "c", "a", "d"}},
		{name: "date asc", sort: Sort{Field: SortDate, Asc: true}, want: []string{"d", "a", "c", "b"}},
		{name: "amount desc", sort: Sort{Field: SortAmount}, want: []string{"c", "b", "a", "d"}},
		{name: "description asc", sort: Sort{Field: SortDescription, Asc: true}, want: []string{"d", "c", "a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := sample()
			SortTransactions(items, tt.sort)
			if got := ids(items); !equalIDs(got, tt.want) {
				t.Errorf("order %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSortTransactionsDateTieBreak(t *testing.T) {
	early := tx("x", core.Expense, 10, "2026-08-01", func(tr *core.Transaction) {
		tr.CreatedAt = time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	})
	late := tx("y", core.Expense, 20, "2026-08-01", func(tr *core.Transaction) {
		tr.CreatedAt = time.Date(2026, 8, 1, 18, 0, 0, 0, time.UTC)
	})

	items := []core.Transaction{early, late}
	SortTransactions(items, Sort{Field: SortDate})
	if got := ids(items); !equalIDs(got, []string{"y", "x"}) {
		t.Errorf("same-day order %v, want newest created first", got)
	}
}

func TestPaginate(t *testing.T) {
	items := sample()
	tests := []struct {
		name string
		page Page
		want int
	}{
		{name: "zero limit returns all", page: Page{}, want: 4},
		{name: "limit", page: Page{Limit: 2}, want: 2},
		{name: "offset", page: Page{Limit: 2, Offset: 3}, want: 1},
		{name: "offset past end", page: Page{Limit: 2, Offset: 10}, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := len(Paginate(items, tt.page)); got != tt.want {
				t.Errorf("len = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestApplyQuery(t *testing.T) {
	page, total := ApplyQuery(sample(), TransactionFilter{Type: core.Expense}, Sort{}, Page{Limit: 2})
	if total != 3 {
		t.Errorf("total = %d, want 3", total)
	}
	if got := ids(page); !equalIDs(got, []string{"b", "a"}) {
		t.Errorf("page = %v, want [b a]", got)
	}
}
