package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"budgap/internal/core"
	"budgap/internal/ledger"
)

const budgetColumns = `id, owner_id, category_id, name, amount_cents, period, month, year,
	alert_threshold, is_active, created_at, updated_at`

func scanBudget(row rowScanner) (core.Budget, error) {
	var (
		b           core.Budget
		amountCents int64
		createdAt   int64
		updatedAt   int64
	)
	err := row.Scan(&b.ID, &b.OwnerID, &b.CategoryID, &b.Name, &amountCents, &b.Period,
		&b.Month, &b.Year, &b.AlertThreshold, &b.IsActive, &createdAt, &updatedAt)
	if err != nil {
		return b, err
	}
	b.Amount = core.MoneyFromCents(amountCents)
	b.CreatedAt = fromMsec(createdAt)
	b.UpdatedAt = fromMsec(updatedAt)
	return b, nil
}

func (r *SQLiteRepository) InsertBudget(ctx context.Context, b *core.Budget) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO budgets (id, owner_id, category_id, name, amount_cents, period, month, year,
			alert_threshold, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.OwnerID, b.CategoryID, b.Name, b.Amount.Cents(), b.Period, b.Month, b.Year,
		b.AlertThreshold, b.IsActive, msec(b.CreatedAt), msec(b.UpdatedAt))
	if err != nil {
		return fmt.Errorf("insert budget: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetBudget(ctx context.Context, owner, id string) (*core.Budget, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+budgetColumns+` FROM budgets WHERE id = ? AND owner_id = ?`, id, owner)
	b, err := scanBudget(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get budget: %w", err)
	}
	return &b, nil
}

func (r *SQLiteRepository) UpdateBudget(ctx context.Context, owner, id string, patch ledger.BudgetPatch) (*core.Budget, error) {
	b, err := r.GetBudget(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	ledger.ApplyBudgetPatch(b, patch)
	b.UpdatedAt = time.Now().UTC()

	_, err = r.db.ExecContext(ctx, `
		UPDATE budgets SET name = ?, amount_cents = ?, alert_threshold = ?, is_active = ?, updated_at = ?
		WHERE id = ? AND owner_id = ?`,
		b.Name, b.Amount.Cents(), b.AlertThreshold, b.IsActive, msec(b.UpdatedAt), id, owner)
	if err != nil {
		return nil, fmt.Errorf("update budget: %w", err)
	}
	return b, nil
}

func (r *SQLiteRepository) DeleteBudget(ctx context.Context, owner, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM budgets WHERE id = ? AND owner_id = ?`, id, owner)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) ListBudgets(ctx context.Context, owner string, year, month int, activeOnly bool) ([]core.Budget, error) {
	query := `SELECT ` + budgetColumns + ` FROM budgets WHERE owner_id = ? AND year = ? AND month = ?`
	if activeOnly {
		query += ` AND is_active = 1`
	}
	query += ` ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, owner, year, month)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var budgets []core.Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

func (r *SQLiteRepository) FindActiveBudgets(ctx context.Context, owner, categoryID string, year, month int) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+budgetColumns+` FROM budgets
		WHERE owner_id = ? AND category_id = ? AND year = ? AND month = ? AND is_active = 1
		ORDER BY created_at, id`,
		owner, categoryID, year, month)
	if err != nil {
		return nil, fmt.Errorf("find active budgets: %w", err)
	}
	defer rows.Close()

	var budgets []core.Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}
