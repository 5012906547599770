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

const goalColumns = `id, owner_id, name, COALESCE(description, ''), target_cents, current_cents,
	currency, COALESCE(target_date, ''), color, icon, status, created_at, updated_at`

func scanGoal(row rowScanner) (core.Goal, error) {
	var (
		g            core.Goal
		targetCents  int64
		currentCents int64
		targetDate   string
		createdAt    int64
		updatedAt    int64
	)
	err := row.Scan(&g.ID, &g.OwnerID, &g.Name, &g.Description, &targetCents, &currentCents,
		&g.Currency, &targetDate, &g.Color, &g.Icon, &g.Status, &createdAt, &updatedAt)
	if err != nil {
		return g, err
	}
	g.Target = core.MoneyFromCents(targetCents)
	g.Current = core.MoneyFromCents(currentCents)
	if targetDate != "" {
		if g.TargetDate, err = core.ParseDate(targetDate); err != nil {
			return g, fmt.Errorf("stored target date %q: %w", targetDate, err)
		}
	}
	g.CreatedAt = fromMsec(createdAt)
	g.UpdatedAt = fromMsec(updatedAt)
	return g, nil
}

func goalTargetDate(g *core.Goal) any {
	if g.TargetDate.IsZero() {
		return nil
	}
	return g.TargetDate.String()
}

func (r *SQLiteRepository) InsertGoal(ctx context.Context, g *core.Goal) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO goals (id, owner_id, name, description, target_cents, current_cents,
			currency, target_date, color, icon, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.OwnerID, g.Name, nullable(g.Description), g.Target.Cents(), g.Current.Cents(),
		g.Currency, goalTargetDate(g), g.Color, g.Icon, g.Status,
		msec(g.CreatedAt), msec(g.UpdatedAt))
	if err != nil {
		return fmt.Errorf("insert goal: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetGoal(ctx context.Context, owner, id string) (*core.Goal, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+goalColumns+` FROM goals WHERE id = ? AND owner_id = ?`, id, owner)
	g, err := scanGoal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get goal: %w", err)
	}
	return &g, nil
}

func (r *SQLiteRepository) ListGoals(ctx context.Context, owner string) ([]core.Goal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+goalColumns+` FROM goals WHERE owner_id = ? ORDER BY created_at, id`, owner)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	var goals []core.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

func (r *SQLiteRepository) UpdateGoal(ctx context.Context, owner, id string, patch ledger.GoalPatch) (*core.Goal, error) {
	g, err := r.GetGoal(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	ledger.ApplyGoalPatch(g, patch)
	g.UpdatedAt = time.Now().UTC()

	_, err = r.db.ExecContext(ctx, `
		UPDATE goals SET name = ?, description = ?, target_cents = ?, current_cents = ?,
			currency = ?, target_date = ?, color = ?, icon = ?, status = ?, updated_at = ?
		WHERE id = ? AND owner_id = ?`,
		g.Name, nullable(g.Description), g.Target.Cents(), g.Current.Cents(),
		g.Currency, goalTargetDate(g), g.Color, g.Icon, g.Status, msec(g.UpdatedAt),
		id, owner)
	if err != nil {
		return nil, fmt.Errorf("update goal: %w", err)
	}
	return g, nil
}

func (r *SQLiteRepository) DeleteGoal(ctx context.Context, owner, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM goals WHERE id = ? AND owner_id = ?`, id, owner)
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// ApplyDeposit adds amount to the goal's current balance inside a single
// transaction. The balance is clamped at the target and the status flips to
// completed when it gets there; completedNow reports whether this deposit
// caused the flip.
func (r *SQLiteRepository) ApplyDeposit(ctx context.Context, owner, id string, amount core.Money) (*core.Goal, bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("begin deposit: %w", err)
	}
	defer tx.Rollback()

	var prevStatus string
	err = tx.QueryRowContext(ctx,
		`SELECT status FROM goals WHERE id = ? AND owner_id = ?`, id, owner).Scan(&prevStatus)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, core.ErrNotFound
	}
	if err != nil {
		return nil, false, fmt.Errorf("read goal status: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE goals SET
			current_cents = MIN(current_cents + ?, target_cents),
			status = CASE WHEN MIN(current_cents + ?, target_cents) >= target_cents
				THEN 'completed' ELSE status END,
			updated_at = ?
		WHERE id = ? AND owner_id = ?`,
		amount.Cents(), amount.Cents(), msec(time.Now().UTC()), id, owner)
	if err != nil {
		return nil, false, fmt.Errorf("apply deposit: %w", err)
	}

	row := tx.QueryRowContext(ctx,
		`SELECT `+goalColumns+` FROM goals WHERE id = ? AND owner_id = ?`, id, owner)
	g, err := scanGoal(row)
	if err != nil {
		return nil, false, fmt.Errorf("reload goal: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("commit deposit: %w", err)
	}

	completedNow := prevStatus != string(core.GoalCompleted) && g.Status == core.GoalCompleted
	return &g, completedNow, nil
}
