package services

import (
	"context"

	"budgap/internal/core"
	"budgap/internal/ledger"
)

// scanPageSize bounds each store round trip when an aggregation has to walk
// a whole window.
const scanPageSize = 500

// forEachTransaction streams every transaction matching filter through fn,
// paging underneath so no single fetch is unbounded.
func forEachTransaction(ctx context.Context, store ledger.TransactionStore, owner string, filter ledger.TransactionFilter, fn func(core.Transaction)) error {
	offset := 0
	for {
		items, total, err := store.QueryTransactions(ctx, owner, filter,
			ledger.Sort{Field: ledger.SortDate, Asc: true},
			ledger.Page{Limit: scanPageSize, Offset: offset})
		if err != nil {
			return err
		}
		for _, t := range items {
			fn(t)
		}
		offset += len(items)
		if offset >= total || len(items) == 0 {
			return nil
		}
	}
}

// sumWindow totals income and expenses inside [from, to]. Zero bounds are
// open, so a zero window sums the whole ledger.
func sumWindow(ctx context.Context, store ledger.TransactionStore, owner string, from, to core.Date) (income, expenses core.Money, err error) {
	income, expenses = core.Zero(), core.Zero()
	err = forEachTransaction(ctx, store, owner,
		ledger.TransactionFilter{StartDate: from, EndDate: to},
		func(t core.Transaction) {
			switch t.Type {
			case core.Income:
				income = income.Add(t.Amount)
			case core.Expense:
				expenses = expenses.Add(t.Amount)
			}
		})
	return income, expenses, err
}

// sumCategoryExpenses totals one category's expense spend for a calendar
// month. This is the budget engine's ledger window.
func sumCategoryExpenses(ctx context.Context, store ledger.TransactionStore, owner, categoryID string, year, month int) (core.Money, error) {
	from, to := core.MonthWindow(year, month)
	spent := core.Zero()
	err := forEachTransaction(ctx, store, owner,
		ledger.TransactionFilter{Type: core.Expense, CategoryID: categoryID, StartDate: from, EndDate: to},
		func(t core.Transaction) {
			spent = spent.Add(t.Amount)
		})
	if err != nil {
		return core.Zero(), err
	}
	return spent, nil
}

// categoryIndex loads the owner's visible categories once and resolves weak
// references from there. Unknown ids resolve to nil.
type categoryIndex map[string]core.Category

func loadCategoryIndex(ctx context.Context, store ledger.CategoryStore, owner string) (categoryIndex, error) {
	cats, err := store.ListCategories(ctx, owner, "")
	if err != nil {
		return nil, err
	}
	idx := make(categoryIndex, len(cats))
	for _, c := range cats {
		idx[c.ID] = c
	}
	return idx, nil
}

func (idx categoryIndex) ref(id string) *CategoryRef {
	if id == "" {
		return nil
	}
	c, ok := idx[id]
	if !ok {
		return nil
	}
	return categoryRef(&c)
}

// bucketDisplay resolves the display fields for a bucket keyed by category
// id, falling back to the shared uncategorized identity for dangling or
// absent references.
func (idx categoryIndex) bucketDisplay(id string) (name, color, icon string) {
	if c, ok := idx[id]; ok && id != "" {
		return c.Name, c.Color, c.Icon
	}
	return core.UncategorizedName, core.UncategorizedColor, core.UncategorizedIcon
}

func transactionView(t core.Transaction, idx categoryIndex) TransactionView {
	return TransactionView{
		ID:            t.ID,
		Type:          t.Type,
		Amount:        t.Amount,
		Currency:      t.Currency,
		Description:   t.Description,
		Notes:         t.Notes,
		Date:          t.Date,
		Category:      idx.ref(t.CategoryID),
		PaymentMethod: t.PaymentMethod,
		CreatedAt:     t.CreatedAt,
	}
}
