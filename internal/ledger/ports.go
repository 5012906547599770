// Package ledger defines the persistence ports the engines depend on, and
// the filter/sort/page contract every adapter must honor.
//
// Whether filtering happens server-side (SQL) or in process after a full
// fetch is an adapter decision; callers only see the contract.
package ledger

import (
	"context"
	"time"

	"budgap/internal/core"
)

// Sortable transaction fields.
const (
	SortDate        SortField = "date"
	SortAmount      SortField = "amount"
	SortDescription SortField = "description"
	SortCreatedAt   SortField = "created_at"
)

type (
	SortField string

	// TransactionFilter narrows a transaction query. Zero values mean
	// "no constraint". Search matches description or notes,
	// case-insensitive, substring semantics.
	TransactionFilter struct {
		Type          core.TransactionType
		CategoryID    string
		StartDate     core.Date
		EndDate       core.Date
		PaymentMethod string
		Search        string
	}

	// Sort orders query results. The zero value sorts by date descending.
	Sort struct {
		Field SortField
		Asc   bool
	}

	// Page bounds query results. A zero Limit returns everything.
	Page struct {
		Limit  int
		Offset int
	}

	// TransactionPatch is a partial update with explicit optional fields.
	// Nil pointers leave the stored value untouched.
	TransactionPatch struct {
		Type              *core.TransactionType
		Amount            *core.Money
		Currency          *string
		Description       *string
		Notes             *string
		Date              *core.Date
		CategoryID        *string
		PaymentMethod     *string
		ReceiptRef        *string
		IsRecurring       *bool
		RecurringInterval *core.RecurringInterval
		Tags              *[]string
	}

	// BudgetPatch is a partial budget update.
	BudgetPatch struct {
		Name           *string
		Amount         *core.Money
		AlertThreshold *float64
		IsActive       *bool
	}

	// GoalPatch is a partial goal update. Current may be set directly here;
	// the deposit clamp applies only to deposits.
	GoalPatch struct {
		Name        *string
		Description *string
		Target      *core.Money
		Current     *core.Money
		Currency    *string
		TargetDate  *core.Date
		Color       *string
		Icon        *string
		Status      *core.GoalStatus
	}

	// CategoryPatch is a partial category update.
	CategoryPatch struct {
		Name  *string
		Color *string
		Icon  *string
	}
)

// TransactionStore persists ledger entries. Every read and write is scoped
// to the owner; an id that exists under another owner behaves as absent.
type TransactionStore interface {
	InsertTransaction(ctx context.Context, tx *core.Transaction) error
	GetTransaction(ctx context.Context, owner, id string) (*core.Transaction, error)
	UpdateTransaction(ctx context.Context, owner, id string, patch TransactionPatch) (*core.Transaction, error)
	DeleteTransaction(ctx context.Context, owner, id string) error

	// QueryTransactions returns the filtered, sorted page of entries plus
	// the total count of entries matching the filter.
	QueryTransactions(ctx context.Context, owner string, filter TransactionFilter, sort Sort, page Page) ([]core.Transaction, int, error)
}

// RecurringStore exposes recurring templates for materialization. Templates
// are ordinary transactions flagged as recurring; materialized copies are
// not.
type RecurringStore interface {
	ListRecurringTemplates(ctx context.Context) ([]core.Transaction, error)
	MarkRecurringRun(ctx context.Context, id string, ranAt time.Time) error
}

// BudgetStore persists budgets, owner-scoped like TransactionStore.
type BudgetStore interface {
	InsertBudget(ctx context.Context, b *core.Budget) error
	GetBudget(ctx context.Context, owner, id string) (*core.Budget, error)
	UpdateBudget(ctx context.Context, owner, id string, patch BudgetPatch) (*core.Budget, error)
	DeleteBudget(ctx context.Context, owner, id string) error

	// ListBudgets returns the owner's budgets for a (year, month),
	// optionally restricted to active ones.
	ListBudgets(ctx context.Context, owner string, year, month int, activeOnly bool) ([]core.Budget, error)

	// FindActiveBudgets returns active budgets scoped to one category and
	// period. More than one can exist; see the uniqueness note in DESIGN.md.
	FindActiveBudgets(ctx context.Context, owner, categoryID string, year, month int) ([]core.Budget, error)
}

// GoalStore persists savings goals.
type GoalStore interface {
	InsertGoal(ctx context.Context, g *core.Goal) error
	GetGoal(ctx context.Context, owner, id string) (*core.Goal, error)
	ListGoals(ctx context.Context, owner string) ([]core.Goal, error)
	UpdateGoal(ctx context.Context, owner, id string, patch GoalPatch) (*core.Goal, error)
	DeleteGoal(ctx context.Context, owner, id string) error

	// ApplyDeposit atomically clamps current_amount to the target. The
	// read-modify-write must be serialized per goal so concurrent deposits
	// cannot lose updates. completedNow is true only on the transition
	// edge from a non-completed status.
	ApplyDeposit(ctx context.Context, owner, id string, amount core.Money) (g *core.Goal, completedNow bool, err error)
}

// CategoryStore persists the category registry: shared defaults plus the
// owner's own categories.
type CategoryStore interface {
	InsertCategory(ctx context.Context, c *core.Category) error

	// GetCategory resolves an id visible to the owner, including shared
	// defaults.
	GetCategory(ctx context.Context, owner, id string) (*core.Category, error)
	ListCategories(ctx context.Context, owner string, typ core.TransactionType) ([]core.Category, error)

	// UpdateCategory and DeleteCategory only reach owner-created
	// categories; defaults are immutable and behave as absent here.
	UpdateCategory(ctx context.Context, owner, id string, patch CategoryPatch) (*core.Category, error)
	DeleteCategory(ctx context.Context, owner, id string) error
}

// NotificationStore persists notifications. Records are write-once except
// for the read flag.
type NotificationStore interface {
	InsertNotification(ctx context.Context, n *core.Notification) error
	ListNotifications(ctx context.Context, owner string, limit int) ([]core.Notification, error)
	UnreadCount(ctx context.Context, owner string) (int, error)

	// FindUnreadByDedupeKey returns the unread notification carrying the
	// key, or core.ErrNotFound. Budget alerts use this to suppress
	// repeats until acknowledged.
	FindUnreadByDedupeKey(ctx context.Context, owner, key string) (*core.Notification, error)
	MarkNotificationRead(ctx context.Context, owner, id string) error
	MarkAllNotificationsRead(ctx context.Context, owner string) error
}

// Store is the full persistence surface a backend must provide.
type Store interface {
	TransactionStore
	RecurringStore
	BudgetStore
	GoalStore
	CategoryStore
	NotificationStore
}

// Valid reports whether f is one of the sortable fields.
func (f SortField) Valid() bool {
	switch f {
	case SortDate, SortAmount, SortDescription, SortCreatedAt:
		return true
	}
	return false
}
