package services

import (
	"time"

	"budgap/internal/core"
)

// Wire-contract shapes. The engine is consumed as a library; these structs
// are what an API layer serializes directly.

// CategoryRef is the joined category display block. Nil means the reference
// dangles or was never set.
type CategoryRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

// BudgetStatus is one evaluated budget: the stored fields plus the derived
// consumption numbers.
type BudgetStatus struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	Amount         core.Money        `json:"amount"`
	Period         core.BudgetPeriod `json:"period"`
	Month          int               `json:"month"`
	Year           int               `json:"year"`
	AlertThreshold float64           `json:"alertThreshold"`
	Category       *CategoryRef      `json:"category"`
	Spent          core.Money        `json:"spent"`
	Remaining      core.Money        `json:"remaining"`
	Percentage     float64           `json:"percentage"`
	IsExceeded     bool              `json:"isExceeded"`
	IsWarning      bool              `json:"isWarning"`
	CreatedAt      time.Time         `json:"createdAt"`
}

// GoalView is one goal with derived progress.
type GoalView struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	TargetAmount  core.Money      `json:"targetAmount"`
	CurrentAmount core.Money      `json:"currentAmount"`
	Currency      string          `json:"currency"`
	TargetDate    core.Date       `json:"targetDate"`
	Color         string          `json:"color"`
	Icon          string          `json:"icon"`
	Status        core.GoalStatus `json:"status"`
	Progress      float64         `json:"progress"`
	Remaining     core.Money      `json:"remaining"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// DepositResult is the outcome of one goal deposit.
type DepositResult struct {
	NewAmount core.Money      `json:"newAmount"`
	Status    core.GoalStatus `json:"status"`
}

// MonthlySummary totals one calendar month.
type MonthlySummary struct {
	Income      core.Money `json:"income"`
	Expenses    core.Money `json:"expenses"`
	Balance     core.Money `json:"balance"`
	SavingsRate float64    `json:"savingsRate"`
}

// Totals is the all-time counterpart of MonthlySummary.
type Totals struct {
	Income   core.Money `json:"income"`
	Expenses core.Money `json:"expenses"`
	Balance  core.Money `json:"balance"`
}

// TrendPoint is one month in a trend series.
type TrendPoint struct {
	Month    int        `json:"month"`
	Year     int        `json:"year"`
	Income   core.Money `json:"income"`
	Expenses core.Money `json:"expenses"`
	Balance  core.Money `json:"balance"`
}

// CategoryBucket is one category's share of a window, without percentage.
type CategoryBucket struct {
	Name  string     `json:"name"`
	Color string     `json:"color"`
	Icon  string     `json:"icon"`
	Total core.Money `json:"total"`
	Count int        `json:"count"`
}

// BreakdownBucket adds the bucket's share of the grand total.
type BreakdownBucket struct {
	CategoryBucket
	Percentage float64 `json:"percentage"`
}

// BreakdownResponse is the category-breakdown contract.
type BreakdownResponse struct {
	Breakdown []BreakdownBucket `json:"breakdown"`
	Total     core.Money        `json:"total"`
}

// SummaryByCategory splits one month's buckets by transaction type.
type SummaryByCategory struct {
	Income   []CategoryBucket `json:"income"`
	Expenses []CategoryBucket `json:"expenses"`
}

// TransactionView is a transaction joined with its category display fields.
type TransactionView struct {
	ID            string               `json:"id"`
	Type          core.TransactionType `json:"type"`
	Amount        core.Money           `json:"amount"`
	Currency      string               `json:"currency"`
	Description   string               `json:"description"`
	Notes         string               `json:"notes,omitempty"`
	Date          core.Date            `json:"date"`
	Category      *CategoryRef         `json:"category"`
	PaymentMethod string               `json:"paymentMethod"`
	CreatedAt     time.Time            `json:"createdAt"`
}

// Dashboard is the composite summary.
type Dashboard struct {
	Monthly            MonthlySummary    `json:"monthly"`
	Total              Totals            `json:"total"`
	HealthScore        int               `json:"healthScore"`
	MonthlyTrend       []TrendPoint      `json:"monthlyTrend"`
	TopCategories      []CategoryBucket  `json:"topCategories"`
	BudgetAlerts       []BudgetStatus    `json:"budgetAlerts"`
	RecentTransactions []TransactionView `json:"recentTransactions"`
	Goals              []GoalView        `json:"goals"`
}

// YearlyRollup is the twelve-month trend plus totals and breakdown for one
// year.
type YearlyRollup struct {
	Year      int               `json:"year"`
	Months    []TrendPoint      `json:"months"`
	Totals    Totals            `json:"totals"`
	Breakdown []BreakdownBucket `json:"breakdown"`
}

// ExportData is the engine-level export assembly. File formatting is the
// consumer's job.
type ExportData struct {
	Transactions []TransactionView `json:"transactions"`
	Summary      Totals            `json:"summary"`
	GeneratedAt  time.Time         `json:"generatedAt"`
}

// Backup is a full snapshot of one owner's data.
type Backup struct {
	Transactions  []core.Transaction  `json:"transactions"`
	Budgets       []core.Budget       `json:"budgets"`
	Goals         []core.Goal         `json:"goals"`
	Categories    []core.Category     `json:"categories"`
	Notifications []core.Notification `json:"notifications"`
	GeneratedAt   time.Time           `json:"generatedAt"`
}

// NotificationFeed is the notification list with its unread counter.
type NotificationFeed struct {
	Notifications []core.Notification `json:"notifications"`
	UnreadCount   int                 `json:"unreadCount"`
}

func goalView(g *core.Goal) GoalView {
	return GoalView{
		ID:            g.ID,
		Name:          g.Name,
		Description:   g.Description,
		TargetAmount:  g.Target,
		CurrentAmount: g.Current,
		Currency:      g.Currency,
		TargetDate:    g.TargetDate,
		Color:         g.Color,
		Icon:          g.Icon,
		Status:        g.Status,
		Progress:      g.Progress(),
		Remaining:     g.Remaining(),
		CreatedAt:     g.CreatedAt,
		UpdatedAt:     g.UpdatedAt,
	}
}

func categoryRef(c *core.Category) *CategoryRef {
	if c == nil {
		return nil
	}
	return &CategoryRef{ID: c.ID, Name: c.Name, Color: c.Color, Icon: c.Icon}
}
