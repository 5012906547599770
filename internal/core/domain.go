package core

import (
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	Daily   RecurringInterval = "daily"
	Weekly  RecurringInterval = "weekly"
	Monthly RecurringInterval = "monthly"
	Yearly  RecurringInterval = "yearly"
)

const (
	GoalActive    GoalStatus = "active"
	GoalCompleted GoalStatus = "completed"
	GoalPaused    GoalStatus = "paused"
	GoalCancelled GoalStatus = "cancelled"
)

const (
	NotifyInfo    NotificationType = "info"
	NotifyWarning NotificationType = "warning"
	NotifySuccess NotificationType = "success"
	NotifyError   NotificationType = "error"
)

const (
	PeriodMonthly BudgetPeriod = "monthly"
	PeriodWeekly  BudgetPeriod = "weekly"
	PeriodYearly  BudgetPeriod = "yearly"
)

// Display fallback for transactions whose category is absent or was deleted.
const (
	UncategorizedName  = "Uncategorized"
	UncategorizedColor = "#9ca3af"
	UncategorizedIcon  = "tag"
)

// DefaultAlertThreshold is the budget consumption percentage that triggers a
// warning when the caller does not choose one.
const DefaultAlertThreshold = 80.0

const maxDescriptionLen = 255

type (
	TransactionType   string
	RecurringInterval string
	GoalStatus        string
	NotificationType  string
	BudgetPeriod      string

	// Transaction is a single ledger entry. CategoryID is a weak reference:
	// it may be empty or point at a category that no longer exists.
	Transaction struct {
		ID                string
		OwnerID           string
		Type              TransactionType
		Amount            Money
		Currency          string
		Description       string
		Notes             string
		Date              Date
		CategoryID        string
		PaymentMethod     string
		ReceiptRef        string
		IsRecurring       bool
		RecurringInterval RecurringInterval
		LastRecurredAt    time.Time
		Tags              []string
		CreatedAt         time.Time
		UpdatedAt         time.Time
	}

	// Category maps a category id to display and typing information.
	// OwnerID is empty for shared defaults, which are immutable.
	Category struct {
		ID        string
		OwnerID   string
		Name      string
		Type      TransactionType
		Color     string
		Icon      string
		IsDefault bool
		CreatedAt time.Time
	}

	// Budget limits expense spend for one (category, month, year) window.
	Budget struct {
		ID             string
		OwnerID        string
		CategoryID     string
		Name           string
		Amount         Money
		Period         BudgetPeriod
		Month          int
		Year           int
		AlertThreshold float64
		IsActive       bool
		CreatedAt      time.Time
		UpdatedAt      time.Time
	}

	// Goal is a savings goal advanced by deposits.
	Goal struct {
		ID          string
		OwnerID     string
		Name        string
		Description string
		Target      Money
		Current     Money
		Currency    string
		TargetDate  Date
		Color       string
		Icon        string
		Status      GoalStatus
		CreatedAt   time.Time
		UpdatedAt   time.Time
	}

	// Notification is write-once except for the read flag. DedupeKey is set
	// on budget alerts so the generator can suppress repeats while one is
	// still unread.
	Notification struct {
		ID        string
		OwnerID   string
		Title     string
		Message   string
		Type      NotificationType
		DedupeKey string
		IsRead    bool
		CreatedAt time.Time
	}
)

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

func (ri RecurringInterval) Valid() bool {
	switch ri {
	case Daily, Weekly, Monthly, Yearly:
		return true
	}
	return false
}

func (s GoalStatus) Valid() bool {
	switch s {
	case GoalActive, GoalCompleted, GoalPaused, GoalCancelled:
		return true
	}
	return false
}

func (p BudgetPeriod) Valid() bool {
	switch p {
	case PeriodMonthly, PeriodWeekly, PeriodYearly:
		return true
	}
	return false
}

func (t Transaction) Validate() error {
	if !t.Type.Valid() {
		return Invalid("type", "must be income or expense")
	}
	if err := t.Amount.Validate(); err != nil {
		return Invalid("amount", "must be a positive amount")
	}
	desc := strings.TrimSpace(t.Description)
	if desc == "" {
		return Invalid("description", "must not be empty")
	}
	if len(t.Description) > maxDescriptionLen {
		return Invalid("description", "must be at most 255 characters")
	}
	if err := t.Date.Validate(); err != nil {
		return Invalid("date", "must be a valid calendar date")
	}
	if t.IsRecurring && !t.RecurringInterval.Valid() {
		return Invalid("recurring_interval", "must be daily, weekly, monthly or yearly")
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return Invalid("name", "must not be empty")
	}
	if !c.Type.Valid() {
		return Invalid("type", "must be income or expense")
	}
	return nil
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.Name) == "" {
		return Invalid("name", "must not be empty")
	}
	if b.CategoryID == "" {
		return Invalid("category_id", "must reference a category")
	}
	if err := b.Amount.Validate(); err != nil {
		return Invalid("amount", "must be a positive amount")
	}
	if !b.Period.Valid() {
		return Invalid("period", "must be monthly, weekly or yearly")
	}
	if b.Month < 1 || b.Month > 12 {
		return Invalid("month", "must be between 1 and 12")
	}
	if b.Year < 1 {
		return Invalid("year", "must be a calendar year")
	}
	if b.AlertThreshold < 0 || b.AlertThreshold > 100 {
		return Invalid("alert_threshold", "must be between 0 and 100")
	}
	return nil
}

func (g Goal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return Invalid("name", "must not be empty")
	}
	if err := g.Target.Validate(); err != nil {
		return Invalid("target_amount", "must be a positive amount")
	}
	if g.Current.IsNegative() {
		return Invalid("current_amount", "must not be negative")
	}
	if !g.Status.Valid() {
		return Invalid("status", "must be active, completed, paused or cancelled")
	}
	return nil
}

// Progress returns the display progress percentage, 1-decimal, capped at 100.
// A zero target yields 0.
func (g Goal) Progress() float64 {
	return CappedPercent(g.Current, g.Target)
}

// Remaining returns the amount still missing to reach the target, never
// negative.
func (g Goal) Remaining() Money {
	r := g.Target.Sub(g.Current)
	if r.IsNegative() {
		return Zero()
	}
	return r
}
