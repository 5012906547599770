// Package document is the in-process ledger backend. It keeps every record
// in memory and answers queries by fetching everything and delegating to the
// shared filter/sort/page helpers, so its results match the SQL adapter's
// row for row.
package document

import (
	"context"
	"sync"
	"time"

	"budgap/internal/core"
	"budgap/internal/ledger"
)

type Store struct {
	mu            sync.Mutex
	transactions  map[string]core.Transaction
	budgets       map[string]core.Budget
	goals         map[string]core.Goal
	categories    map[string]core.Category
	notifications map[string]core.Notification
}

var _ ledger.Store = (*Store)(nil)

func New() *Store {
	s := &Store{
		transactions:  make(map[string]core.Transaction),
		budgets:       make(map[string]core.Budget),
		goals:         make(map[string]core.Goal),
		categories:    make(map[string]core.Category),
		notifications: make(map[string]core.Notification),
	}
	for _, c := range defaultCategories() {
		s.categories[c.ID] = c
	}
	return s
}

// defaultCategories mirrors the seed migration so both backends expose the
// same shared registry.
func defaultCategories() []core.Category {
	seed := []struct {
		id, name    string
		typ         core.TransactionType
		color, icon string
	}{
		{"cat_salary", "Salaire", core.Income, "#10b981", "briefcase"},
		{"cat_freelance", "Freelance", core.Income, "#06b6d4", "laptop"},
		{"cat_investment", "Investissements", core.Income, "#8b5cf6", "trending-up"},
		{"cat_rental", "Location", core.Income, "#f59e0b", "home"},
		{"cat_other_income", "Autres revenus", core.Income, "#6366f1", "plus-circle"},
		{"cat_housing", "Logement", core.Expense, "#ef4444", "home"},
		{"cat_food", "Alimentation", core.Expense, "#f97316", "shopping-cart"},
		{"cat_transport", "Transport", core.Expense, "#eab308", "car"},
		{"cat_health", "Santé", core.Expense, "#ec4899", "heart"},
		{"cat_entertainment", "Loisirs", core.Expense, "#a855f7", "music"},
		{"cat_education", "Éducation", core.Expense, "#3b82f6", "book"},
		{"cat_clothing", "Vêtements", core.Expense, "#14b8a6", "shopping-bag"},
		{"cat_tech", "Technologie", core.Expense, "#64748b", "smartphone"},
		{"cat_utilities", "Factures", core.Expense, "#84cc16", "zap"},
		{"cat_other_expense", "Autres dépenses", core.Expense, "#6b7280", "more-horizontal"},
	}
	out := make([]core.Category, 0, len(seed))
	for _, c := range seed {
		out = append(out, core.Category{
			ID:        c.id,
			Name:      c.name,
			Type:      c.typ,
			Color:     c.color,
			Icon:      c.icon,
			IsDefault: true,
		})
	}
	return out
}

func cloneTags(tags []string) []string {
	if tags == nil {
		return nil
	}
	return append([]string(nil), tags...)
}

func (s *Store) InsertTransaction(_ context.Context, t *core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.transactions[t.ID]; ok {
		return core.ErrConflict
	}
	stored := *t
	stored.Tags = cloneTags(t.Tags)
	s.transactions[t.ID] = stored
	return nil
}

func (s *Store) GetTransaction(_ context.Context, owner, id string) (*core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transactions[id]
	if !ok || t.OwnerID != owner {
		return nil, core.ErrNotFound
	}
	t.Tags = cloneTags(t.Tags)
	return &t, nil
}

func (s *Store) UpdateTransaction(_ context.Context, owner, id string, patch ledger.TransactionPatch) (*core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transactions[id]
	if !ok || t.OwnerID != owner {
		return nil, core.ErrNotFound
	}
	ledger.ApplyTransactionPatch(&t, patch)
	t.UpdatedAt = time.Now().UTC()
	s.transactions[id] = t
	out := t
	out.Tags = cloneTags(t.Tags)
	return &out, nil
}

func (s *Store) DeleteTransaction(_ context.Context, owner, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transactions[id]
	if !ok || t.OwnerID != owner {
		return core.ErrNotFound
	}
	delete(s.transactions, id)
	return nil
}

func (s *Store) QueryTransactions(_ context.Context, owner string, filter ledger.TransactionFilter, sortBy ledger.Sort, page ledger.Page) ([]core.Transaction, int, error) {
	s.mu.Lock()
	all := make([]core.Transaction, 0, len(s.transactions))
	for _, t := range s.transactions {
		if t.OwnerID == owner {
			t.Tags = cloneTags(t.Tags)
			all = append(all, t)
		}
	}
	s.mu.Unlock()

	items, total := ledger.ApplyQuery(all, filter, sortBy, page)
	return items, total, nil
}

func (s *Store) ListRecurringTemplates(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Transaction
	for _, t := range s.transactions {
		if t.IsRecurring {
			t.Tags = cloneTags(t.Tags)
			out = append(out, t)
		}
	}
	ledger.SortTransactions(out, ledger.Sort{Field: ledger.SortCreatedAt, Asc: true})
	return out, nil
}

func (s *Store) MarkRecurringRun(_ context.Context, id string, ranAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transactions[id]
	if !ok || !t.IsRecurring {
		return core.ErrNotFound
	}
	t.LastRecurredAt = ranAt
	s.transactions[id] = t
	return nil
}

func (s *Store) InsertBudget(_ context.Context, b *core.Budget) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.budgets[b.ID]; ok {
		return core.ErrConflict
	}
	s.budgets[b.ID] = *b
	return nil
}

func (s *Store) GetBudget(_ context.Context, owner, id string) (*core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.budgets[id]
	if !ok || b.OwnerID != owner {
		return nil, core.ErrNotFound
	}
	return &b, nil
}

func (s *Store) UpdateBudget(_ context.Context, owner, id string, patch ledger.BudgetPatch) (*core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.budgets[id]
	if !ok || b.OwnerID != owner {
		return nil, core.ErrNotFound
	}
	ledger.ApplyBudgetPatch(&b, patch)
	b.UpdatedAt = time.Now().UTC()
	s.budgets[id] = b
	return &b, nil
}

func (s *Store) DeleteBudget(_ context.Context, owner, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.budgets[id]
	if !ok || b.OwnerID != owner {
		return core.ErrNotFound
	}
	delete(s.budgets, id)
	return nil
}

func (s *Store) ListBudgets(_ context.Context, owner string, year, month int, activeOnly bool) ([]core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Budget
	for _, b := range s.budgets {
		if b.OwnerID != owner || b.Year != year || b.Month != month {
			continue
		}
		if activeOnly && !b.IsActive {
			continue
		}
		out = append(out, b)
	}
	sortBudgets(out)
	return out, nil
}

func (s *Store) FindActiveBudgets(_ context.Context, owner, categoryID string, year, month int) ([]core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Budget
	for _, b := range s.budgets {
		if b.OwnerID == owner && b.CategoryID == categoryID &&
			b.Year == year && b.Month == month && b.IsActive {
			out = append(out, b)
		}
	}
	sortBudgets(out)
	return out, nil
}

func (s *Store) InsertGoal(_ context.Context, g *core.Goal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.goals[g.ID]; ok {
		return core.ErrConflict
	}
	s.goals[g.ID] = *g
	return nil
}

func (s *Store) GetGoal(_ context.Context, owner, id string) (*core.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.goals[id]
	if !ok || g.OwnerID != owner {
		return nil, core.ErrNotFound
	}
	return &g, nil
}

func (s *Store) ListGoals(_ context.Context, owner string) ([]core.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Goal
	for _, g := range s.goals {
		if g.OwnerID == owner {
			out = append(out, g)
		}
	}
	sortGoals(out)
	return out, nil
}

func (s *Store) UpdateGoal(_ context.Context, owner, id string, patch ledger.GoalPatch) (*core.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.goals[id]
	if !ok || g.OwnerID != owner {
		return nil, core.ErrNotFound
	}
	ledger.ApplyGoalPatch(&g, patch)
	g.UpdatedAt = time.Now().UTC()
	s.goals[id] = g
	return &g, nil
}

func (s *Store) DeleteGoal(_ context.Context, owner, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.goals[id]
	if !ok || g.OwnerID != owner {
		return core.ErrNotFound
	}
	delete(s.goals, id)
	return nil
}

// ApplyDeposit clamps the balance to the target under the store lock, which
// serializes concurrent deposits against the same goal.
func (s *Store) ApplyDeposit(_ context.Context, owner, id string, amount core.Money) (*core.Goal, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.goals[id]
	if !ok || g.OwnerID != owner {
		return nil, false, core.ErrNotFound
	}

	wasCompleted := g.Status == core.GoalCompleted
	g.Current = g.Current.Add(amount).Min(g.Target)
	if g.Current.Cmp(g.Target.Decimal) >= 0 {
		g.Status = core.GoalCompleted
	}
	g.UpdatedAt = time.Now().UTC()
	s.goals[id] = g

	completedNow := !wasCompleted && g.Status == core.GoalCompleted
	return &g, completedNow, nil
}

func (s *Store) InsertCategory(_ context.Context, c *core.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[c.ID]; ok {
		return core.ErrConflict
	}
	s.categories[c.ID] = *c
	return nil
}

func (s *Store) GetCategory(_ context.Context, owner, id string) (*core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories[id]
	if !ok || (!c.IsDefault && c.OwnerID != owner) {
		return nil, core.ErrNotFound
	}
	return &c, nil
}

func (s *Store) ListCategories(_ context.Context, owner string, typ core.TransactionType) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Category
	for _, c := range s.categories {
		if !c.IsDefault && c.OwnerID != owner {
			continue
		}
		if typ != "" && c.Type != typ {
			continue
		}
		out = append(out, c)
	}
	sortCategories(out)
	return out, nil
}

func (s *Store) UpdateCategory(_ context.Context, owner, id string, patch ledger.CategoryPatch) (*core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories[id]
	if !ok || (!c.IsDefault && c.OwnerID != owner) {
		return nil, core.ErrNotFound
	}
	if c.IsDefault {
		return nil, core.ErrDefaultCategoryImmutable
	}
	ledger.ApplyCategoryPatch(&c, patch)
	s.categories[id] = c
	return &c, nil
}

func (s *Store) DeleteCategory(_ context.Context, owner, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories[id]
	if !ok || (!c.IsDefault && c.OwnerID != owner) {
		return core.ErrNotFound
	}
	if c.IsDefault {
		return core.ErrDefaultCategoryImmutable
	}
	delete(s.categories, id)
	return nil
}

func (s *Store) InsertNotification(_ context.Context, n *core.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.notifications[n.ID]; ok {
		return core.ErrConflict
	}
	s.notifications[n.ID] = *n
	return nil
}

func (s *Store) ListNotifications(_ context.Context, owner string, limit int) ([]core.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Notification
	for _, n := range s.notifications {
		if n.OwnerID == owner {
			out = append(out, n)
		}
	}
	sortNotifications(out)
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) UnreadCount(_ context.Context, owner string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, n := range s.notifications {
		if n.OwnerID == owner && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (s *Store) FindUnreadByDedupeKey(_ context.Context, owner, key string) (*core.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var found *core.Notification
	for _, n := range s.notifications {
		if n.OwnerID != owner || n.DedupeKey != key || n.IsRead {
			continue
		}
		n := n
		if found == nil || n.CreatedAt.After(found.CreatedAt) {
			found = &n
		}
	}
	if found == nil {
		return nil, core.ErrNotFound
	}
	return found, nil
}

func (s *Store) MarkNotificationRead(_ context.Context, owner, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notifications[id]
	if !ok || n.OwnerID != owner {
		return core.ErrNotFound
	}
	n.IsRead = true
	s.notifications[id] = n
	return nil
}

func (s *Store) MarkAllNotificationsRead(_ context.Context, owner string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, n := range s.notifications {
		if n.OwnerID == owner && !n.IsRead {
			n.IsRead = true
			s.notifications[id] = n
		}
	}
	return nil
}
