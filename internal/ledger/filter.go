package ledger

import (
	"sort"
	"strings"

	"budgap/internal/core"
)

// MatchTransaction reports whether t satisfies every constraint in f.
func MatchTransaction(t core.Transaction, f TransactionFilter) bool {
	if f.Type != "" && t.Type != f.Type {
		return false
	}
	if f.CategoryID != "" && t.CategoryID != f.CategoryID {
		return false
	}
	if f.PaymentMethod != "" && t.PaymentMethod != f.PaymentMethod {
		return false
	}
	if !t.Date.In(f.StartDate, f.EndDate) {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(t.Description), needle) &&
			!strings.Contains(strings.ToLower(t.Notes), needle) {
			return false
		}
	}
	return true
}

// SortTransactions orders items in place. Ties on the primary field fall
// back to creation time in the same direction, then to id, so both store
// adapters page identically.
func SortTransactions(items []core.Transaction, s Sort) {
	field := s.Field
	if field == "" {
		field = SortDate
	}
	sort.SliceStable(items, func(i, j int) bool {
		c := compareTransactions(items[i], items[j], field)
		if c == 0 {
			c = items[i].CreatedAt.Compare(items[j].CreatedAt)
		}
		if c == 0 {
			c = strings.Compare(items[i].ID, items[j].ID)
		}
		if s.Asc {
			return c < 0
		}
		return c > 0
	})
}

func compareTransactions(a, b core.Transaction, field SortField) int {
	switch field {
	case SortAmount:
		return a.Amount.Cmp(b.Amount.Decimal)
	case SortDescription:
		return strings.Compare(a.Description, b.Description)
	case SortCreatedAt:
		return a.CreatedAt.Compare(b.CreatedAt)
	default:
		return a.Date.Time.Compare(b.Date.Time)
	}
}

// Paginate cuts one page out of items. A zero limit returns the whole
// remainder.
func Paginate(items []core.Transaction, p Page) []core.Transaction {
	if p.Offset >= len(items) {
		return nil
	}
	items = items[p.Offset:]
	if p.Limit > 0 && p.Limit < len(items) {
		items = items[:p.Limit]
	}
	return items
}

// ApplyQuery runs the full filter/sort/page contract in process. Adapters
// that fetch everything (document store) delegate here so their semantics
// cannot drift from the SQL adapter's.
func ApplyQuery(items []core.Transaction, f TransactionFilter, s Sort, p Page) ([]core.Transaction, int) {
	matched := make([]core.Transaction, 0, len(items))
	for _, t := range items {
		if MatchTransaction(t, f) {
			matched = append(matched, t)
		}
	}
	SortTransactions(matched, s)
	total := len(matched)
	return Paginate(matched, p), total
}
