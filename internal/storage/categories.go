package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"budgap/internal/core"
	"budgap/internal/ledger"
)

const categoryColumns = `id, COALESCE(owner_id, ''), name, type, color, icon, is_default, created_at`

func scanCategory(row rowScanner) (core.Category, error) {
	var (
		c         core.Category
		createdAt int64
	)
	err := row.Scan(&c.ID, &c.OwnerID, &c.Name, &c.Type, &c.Color, &c.Icon,
		&c.IsDefault, &createdAt)
	if err != nil {
		return c, err
	}
	c.CreatedAt = fromMsec(createdAt)
	return c, nil
}

func (r *SQLiteRepository) InsertCategory(ctx context.Context, c *core.Category) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO categories (id, owner_id, name, type, color, icon, is_default, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, nullable(c.OwnerID), c.Name, c.Type, c.Color, c.Icon, c.IsDefault,
		msec(c.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

// GetCategory resolves owner-created categories and the shared defaults.
func (r *SQLiteRepository) GetCategory(ctx context.Context, owner, id string) (*core.Category, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = ? AND (owner_id = ? OR is_default = 1)`,
		id, owner)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	return &c, nil
}

// ListCategories returns defaults first, then the owner's categories, each
// block sorted by name. An empty typ returns both income and expense
// categories.
func (r *SQLiteRepository) ListCategories(ctx context.Context, owner string, typ core.TransactionType) ([]core.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories
		WHERE (owner_id = ? OR is_default = 1)`
	args := []any{owner}
	if typ != "" {
		query += ` AND type = ?`
		args = append(args, typ)
	}
	query += ` ORDER BY is_default DESC, name`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []core.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *SQLiteRepository) UpdateCategory(ctx context.Context, owner, id string, patch ledger.CategoryPatch) (*core.Category, error) {
	c, err := r.GetCategory(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	if c.IsDefault {
		return nil, core.ErrDefaultCategoryImmutable
	}
	ledger.ApplyCategoryPatch(c, patch)

	_, err = r.db.ExecContext(ctx, `
		UPDATE categories SET name = ?, color = ?, icon = ?
		WHERE id = ? AND owner_id = ?`,
		c.Name, c.Color, c.Icon, id, owner)
	if err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) DeleteCategory(ctx context.Context, owner, id string) error {
	c, err := r.GetCategory(ctx, owner, id)
	if err != nil {
		return err
	}
	if c.IsDefault {
		return core.ErrDefaultCategoryImmutable
	}

	res, err := r.db.ExecContext(ctx,
		`DELETE FROM categories WHERE id = ? AND owner_id = ? AND is_default = 0`, id, owner)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}
