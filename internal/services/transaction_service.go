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

// TransactionService orchestrates ledger writes: validation, persistence,
// then the alert pass for expense writes.
type TransactionService struct {
	store  ledger.Store
	alerts *AlertService
}

func NewTransactionService(store ledger.Store, alerts *AlertService) *TransactionService {
	return &TransactionService{store: store, alerts: alerts}
}

func (s *TransactionService) Create(ctx context.Context, t core.Transaction) (*core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, t.OwnerID, t.CategoryID, t.Type); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	t.ID = uuid.NewString()
	t.CreatedAt = now
	t.UpdatedAt = now

	if err := s.store.InsertTransaction(ctx, &t); err != nil {
		return nil, fmt.Errorf("insert transaction: %w", err)
	}

	s.triggerAlerts(ctx, &t)
	return &t, nil
}

func (s *TransactionService) Get(ctx context.Context, owner, id string) (*core.Transaction, error) {
	return s.store.GetTransaction(ctx, owner, id)
}

func (s *TransactionService) Update(ctx context.Context, owner, id string, patch ledger.TransactionPatch) (*core.Transaction, error) {
	// Resolve the patch against the current record first so validation sees
	// the final state.
	current, err := s.store.GetTransaction(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	next := *current
	ledger.ApplyTransactionPatch(&next, patch)
	if err := next.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, owner, next.CategoryID, next.Type); err != nil {
		return nil, err
	}

	updated, err := s.store.UpdateTransaction(ctx, owner, id, patch)
	if err != nil {
		return nil, fmt.Errorf("update transaction: %w", err)
	}

	s.triggerAlerts(ctx, updated)
	return updated, nil
}

func (s *TransactionService) Delete(ctx context.Context, owner, id string) error {
	return s.store.DeleteTransaction(ctx, owner, id)
}

// Query validates the sort field and passes the contract through to the
// store.
func (s *TransactionService) Query(ctx context.Context, owner string, filter ledger.TransactionFilter, sortBy ledger.Sort, page ledger.Page) ([]core.Transaction, int, error) {
	if sortBy.Field != "" && !sortBy.Field.Valid() {
		return nil, 0, core.Invalid("sort", "must be date, amount, description or created_at")
	}
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, 0, core.Invalid("type", "must be income or expense")
	}
	return s.store.QueryTransactions(ctx, owner, filter, sortBy, page)
}

// checkCategory enforces that an assigned category is visible to the owner
// and typed like the transaction. An empty id is always fine.
func (s *TransactionService) checkCategory(ctx context.Context, owner, categoryID string, typ core.TransactionType) error {
	if categoryID == "" {
		return nil
	}
	c, err := s.store.GetCategory(ctx, owner, categoryID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.Invalid("category_id", "must reference a visible category")
		}
		return fmt.Errorf("resolve category: %w", err)
	}
	if c.Type != typ {
		return core.Invalid("category_id", "category type must match transaction type")
	}
	return nil
}

// triggerAlerts runs the alert pass. Alert failures are logged, never
// surfaced: the write already succeeded.
func (s *TransactionService) triggerAlerts(ctx context.Context, t *core.Transaction) {
	if s.alerts == nil {
		return
	}
	if err := s.alerts.HandleExpenseWrite(ctx, t); err != nil {
		slog.ErrorContext(ctx, "Alert evaluation failed",
			"transaction_id", t.ID, "error", err)
	}
}
