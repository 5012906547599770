// Package storage implements the ledger ports on SQLite. Filtering,
// sorting and paging happen server-side in SQL; the document package is the
// in-process counterpart.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"budgap/internal/core"
	"budgap/internal/ledger"

	_ "modernc.org/sqlite"
)

// SQLiteRepository implements ledger.Store backed by a single SQLite file.
type SQLiteRepository struct {
	db *sql.DB
}

var _ ledger.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply %s: %w", pragma, err)
		}
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// nullable converts empty strings to NULL so optional columns stay NULL in
// the schema.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func msec(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromMsec(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

func encodeTags(tags []string) (any, error) {
	if len(tags) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("encode tags: %w", err)
	}
	return string(b), nil
}

func decodeTags(raw string) ([]string, error) {
	if raw == "" {
		return nil, nil
	}
	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	return tags, nil
}

const transactionColumns = `id, owner_id, COALESCE(category_id, ''), type, amount_cents, currency,
	description, COALESCE(notes, ''), date, payment_method, COALESCE(receipt_ref, ''),
	is_recurring, COALESCE(recurring_interval, ''), last_recurred_at, COALESCE(tags, ''),
	created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t                 core.Transaction
		amountCents       int64
		date              string
		recurringInterval string
		rawTags           string
		lastRecurred      int64
		createdAt         int64
		updatedAt         int64
	)
	err := row.Scan(&t.ID, &t.OwnerID, &t.CategoryID, &t.Type, &amountCents, &t.Currency,
		&t.Description, &t.Notes, &date, &t.PaymentMethod, &t.ReceiptRef,
		&t.IsRecurring, &recurringInterval, &lastRecurred, &rawTags,
		&createdAt, &updatedAt)
	if err != nil {
		return t, err
	}
	t.Amount = core.MoneyFromCents(amountCents)
	if t.Date, err = core.ParseDate(date); err != nil {
		return t, fmt.Errorf("stored date %q: %w", date, err)
	}
	t.RecurringInterval = core.RecurringInterval(recurringInterval)
	t.LastRecurredAt = fromMsec(lastRecurred)
	if t.Tags, err = decodeTags(rawTags); err != nil {
		return t, err
	}
	t.CreatedAt = fromMsec(createdAt)
	t.UpdatedAt = fromMsec(updatedAt)
	return t, nil
}

func (r *SQLiteRepository) InsertTransaction(ctx context.Context, t *core.Transaction) error {
	tags, err := encodeTags(t.Tags)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO transactions (id, owner_id, category_id, type, amount_cents, currency,
			description, notes, date, payment_method, receipt_ref,
			is_recurring, recurring_interval, last_recurred_at, tags, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.OwnerID, nullable(t.CategoryID), t.Type, t.Amount.Cents(), t.Currency,
		t.Description, nullable(t.Notes), t.Date.String(), t.PaymentMethod, nullable(t.ReceiptRef),
		t.IsRecurring, nullable(string(t.RecurringInterval)), msec(t.LastRecurredAt), tags,
		msec(t.CreatedAt), msec(t.UpdatedAt))
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", t.ID,
		"type", t.Type,
		"amount_cents", t.Amount.Cents(),
		"date", t.Date.String())
	return nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, owner, id string) (*core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = ? AND owner_id = ?`, id, owner)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return &t, nil
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, owner, id string, patch ledger.TransactionPatch) (*core.Transaction, error) {
	t, err := r.GetTransaction(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	ledger.ApplyTransactionPatch(t, patch)
	t.UpdatedAt = time.Now().UTC()

	tags, err := encodeTags(t.Tags)
	if err != nil {
		return nil, err
	}
	_, err = r.db.ExecContext(ctx, `
		UPDATE transactions SET category_id = ?, type = ?, amount_cents = ?, currency = ?,
			description = ?, notes = ?, date = ?, payment_method = ?, receipt_ref = ?,
			is_recurring = ?, recurring_interval = ?, tags = ?, updated_at = ?
		WHERE id = ? AND owner_id = ?`,
		nullable(t.CategoryID), t.Type, t.Amount.Cents(), t.Currency,
		t.Description, nullable(t.Notes), t.Date.String(), t.PaymentMethod, nullable(t.ReceiptRef),
		t.IsRecurring, nullable(string(t.RecurringInterval)), tags, msec(t.UpdatedAt),
		id, owner)
	if err != nil {
		return nil, fmt.Errorf("update transaction: %w", err)
	}
	return t, nil
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, owner, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND owner_id = ?`, id, owner)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

var sortColumns = map[ledger.SortField]string{
	ledger.SortDate:        "date",
	ledger.SortAmount:      "amount_cents",
	ledger.SortDescription: "description",
	ledger.SortCreatedAt:   "created_at",
}

func (r *SQLiteRepository) QueryTransactions(ctx context.Context, owner string, filter ledger.TransactionFilter, sortBy ledger.Sort, page ledger.Page) ([]core.Transaction, int, error) {
	where := []string{"owner_id = ?"}
	args := []any{owner}

	if filter.Type != "" {
		where = append(where, "type = ?")
		args = append(args, filter.Type)
	}
	if filter.CategoryID != "" {
		where = append(where, "category_id = ?")
		args = append(args, filter.CategoryID)
	}
	if !filter.StartDate.IsZero() {
		where = append(where, "date >= ?")
		args = append(args, filter.StartDate.String())
	}
	if !filter.EndDate.IsZero() {
		where = append(where, "date <= ?")
		args = append(args, filter.EndDate.String())
	}
	if filter.PaymentMethod != "" {
		where = append(where, "payment_method = ?")
		args = append(args, filter.PaymentMethod)
	}
	if filter.Search != "" {
		where = append(where, "(description LIKE ? OR notes LIKE ?)")
		pattern := "%" + filter.Search + "%"
		args = append(args, pattern, pattern)
	}
	whereClause := strings.Join(where, " AND ")

	var total int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE `+whereClause, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	column, ok := sortColumns[sortBy.Field]
	if !ok {
		column = "date"
	}
	dir := "DESC"
	if sortBy.Asc {
		dir = "ASC"
	}
	query := fmt.Sprintf(`SELECT %s FROM transactions WHERE %s ORDER BY %s %s, created_at %s, id %s`,
		transactionColumns, whereClause, column, dir, dir, dir)

	queryArgs := args
	if page.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		queryArgs = append(queryArgs, page.Limit, page.Offset)
	} else if page.Offset > 0 {
		query += " LIMIT -1 OFFSET ?"
		queryArgs = append(queryArgs, page.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, queryArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var items []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan transaction: %w", err)
		}
		items = append(items, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate transactions: %w", err)
	}
	return items, total, nil
}

func (r *SQLiteRepository) ListRecurringTemplates(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE is_recurring = 1 ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list recurring templates: %w", err)
	}
	defer rows.Close()

	var items []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recurring template: %w", err)
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

func (r *SQLiteRepository) MarkRecurringRun(ctx context.Context, id string, ranAt time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET last_recurred_at = ? WHERE id = ? AND is_recurring = 1`,
		msec(ranAt), id)
	if err != nil {
		return fmt.Errorf("mark recurring run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark recurring run: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}
