package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"budgap/internal/core"
)

const notificationColumns = `id, owner_id, title, message, type,
	COALESCE(dedupe_key, ''), is_read, created_at`

func scanNotification(row rowScanner) (core.Notification, error) {
	var (
		n         core.Notification
		createdAt int64
	)
	err := row.Scan(&n.ID, &n.OwnerID, &n.Title, &n.Message, &n.Type,
		&n.DedupeKey, &n.IsRead, &createdAt)
	if err != nil {
		return n, err
	}
	n.CreatedAt = fromMsec(createdAt)
	return n, nil
}

func (r *SQLiteRepository) InsertNotification(ctx context.Context, n *core.Notification) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO notifications (id, owner_id, title, message, type, dedupe_key, is_read, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.OwnerID, n.Title, n.Message, n.Type,
		nullable(n.DedupeKey), n.IsRead, msec(n.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListNotifications(ctx context.Context, owner string, limit int) ([]core.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications
		WHERE owner_id = ? ORDER BY created_at DESC, id DESC`
	args := []any{owner}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var items []core.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		items = append(items, n)
	}
	return items, rows.Err()
}

func (r *SQLiteRepository) UnreadCount(ctx context.Context, owner string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE owner_id = ? AND is_read = 0`, owner).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return count, nil
}

func (r *SQLiteRepository) FindUnreadByDedupeKey(ctx context.Context, owner, key string) (*core.Notification, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+notificationColumns+` FROM notifications
		WHERE owner_id = ? AND dedupe_key = ? AND is_read = 0
		ORDER BY created_at DESC LIMIT 1`, owner, key)
	n, err := scanNotification(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find unread notification: %w", err)
	}
	return &n, nil
}

func (r *SQLiteRepository) MarkNotificationRead(ctx context.Context, owner, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = 1 WHERE id = ? AND owner_id = ?`, id, owner)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) MarkAllNotificationsRead(ctx context.Context, owner string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = 1 WHERE owner_id = ? AND is_read = 0`, owner)
	if err != nil {
		return fmt.Errorf("mark all notifications read: %w", err)
	}
	return nil
}
