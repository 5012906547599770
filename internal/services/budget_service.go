package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"budgap/internal/core"
	"budgap/internal/ledger"
)

// BudgetService owns budget lifecycle and the spend-vs-limit evaluation.
// Evaluation is ephemeral: every call recomputes from current ledger state.
type BudgetService struct {
	store ledger.Store
}

func NewBudgetService(store ledger.Store) *BudgetService {
	return &BudgetService{store: store}
}

// Create validates and persists a budget. One active budget per (category,
// month, year) per owner; a second one is refused with ErrConflict.
func (s *BudgetService) Create(ctx context.Context, b core.Budget) (*core.Budget, error) {
	if b.AlertThreshold == 0 {
		b.AlertThreshold = core.DefaultAlertThreshold
	}
	if b.Period == "" {
		b.Period = core.PeriodMonthly
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.store.GetCategory(ctx, b.OwnerID, b.CategoryID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.Invalid("category_id", "must reference a visible category")
		}
		return nil, fmt.Errorf("resolve category: %w", err)
	}

	existing, err := s.store.FindActiveBudgets(ctx, b.OwnerID, b.CategoryID, b.Year, b.Month)
	if err != nil {
		return nil, fmt.Errorf("check existing budgets: %w", err)
	}
	if len(existing) > 0 {
		return nil, core.ErrConflict
	}

	now := time.Now().UTC()
	b.ID = uuid.NewString()
	b.IsActive = true
	b.CreatedAt = now
	b.UpdatedAt = now

	if err := s.store.InsertBudget(ctx, &b); err != nil {
		return nil, fmt.Errorf("insert budget: %w", err)
	}

	slog.InfoContext(ctx, "Budget created",
		"id", b.ID,
		"category_id", b.CategoryID,
		"period", fmt.Sprintf("%d-%02d", b.Year, b.Month))
	return &b, nil
}

func (s *BudgetService) Get(ctx context.Context, owner, id string) (*core.Budget, error) {
	return s.store.GetBudget(ctx, owner, id)
}

func (s *BudgetService) Update(ctx context.Context, owner, id string, patch ledger.BudgetPatch) (*core.Budget, error) {
	if patch.Amount != nil {
		if err := patch.Amount.Validate(); err != nil {
			return nil, core.Invalid("amount", "must be a positive amount")
		}
	}
	if patch.AlertThreshold != nil && (*patch.AlertThreshold < 0 || *patch.AlertThreshold > 100) {
		return nil, core.Invalid("alert_threshold", "must be between 0 and 100")
	}
	return s.store.UpdateBudget(ctx, owner, id, patch)
}

func (s *BudgetService) Delete(ctx context.Context, owner, id string) error {
	return s.store.DeleteBudget(ctx, owner, id)
}

// Evaluate recomputes one budget's consumption from the ledger.
func (s *BudgetService) Evaluate(ctx context.Context, owner, id string) (*BudgetStatus, error) {
	b, err := s.store.GetBudget(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	idx, err := loadCategoryIndex(ctx, s.store, owner)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	return s.evaluate(ctx, b, idx)
}

// List returns the owner's budgets for one period, each evaluated.
func (s *BudgetService) List(ctx context.Context, owner string, year, month int, activeOnly bool) ([]BudgetStatus, error) {
	budgets, err := s.store.ListBudgets(ctx, owner, year, month, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	idx, err := loadCategoryIndex(ctx, s.store, owner)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}

	statuses := make([]BudgetStatus, 0, len(budgets))
	for i := range budgets {
		status, err := s.evaluate(ctx, &budgets[i], idx)
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, *status)
	}
	return statuses, nil
}

// evaluate derives the consumption numbers for one budget.
//
// The displayed percentage is capped at 100 but both flags come from the
// uncapped comparison: a budget at 150% is exceeded and warning even though
// it displays as 100.0. A zero-amount budget evaluates to 0% and never
// warns.
func (s *BudgetService) evaluate(ctx context.Context, b *core.Budget, idx categoryIndex) (*BudgetStatus, error) {
	spent, err := sumCategoryExpenses(ctx, s.store, b.OwnerID, b.CategoryID, b.Year, b.Month)
	if err != nil {
		return nil, fmt.Errorf("sum budget window: %w", err)
	}

	remaining := b.Amount.Sub(spent)
	if remaining.IsNegative() {
		remaining = core.Zero()
	}
	raw := core.RawPercent(spent, b.Amount)

	return &BudgetStatus{
		ID:             b.ID,
		Name:           b.Name,
		Amount:         b.Amount,
		Period:         b.Period,
		Month:          b.Month,
		Year:           b.Year,
		AlertThreshold: b.AlertThreshold,
		Category:       idx.ref(b.CategoryID),
		Spent:          spent,
		Remaining:      remaining,
		Percentage:     core.CappedPercent(spent, b.Amount),
		IsExceeded:     spent.GreaterThanM(b.Amount),
		IsWarning:      b.Amount.IsPositive() && raw >= b.AlertThreshold,
		CreatedAt:      b.CreatedAt,
	}, nil
}
