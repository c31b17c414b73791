package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/creamcroissant/ovenboard/internal/repository"
)

// orderStatusLogRepo persists observed status changes for auditing.
type orderStatusLogRepo struct {
	db *sql.DB
}

func (r *orderStatusLogRepo) Append(ctx context.Context, entry *repository.OrderStatusLog) error {
	if entry == nil {
		return errors.New("status log entry is nil")
	}
	if strings.TrimSpace(entry.OrderID) == "" {
		return fmt.Errorf("status log order id is required")
	}
	changedAt := entry.ChangedAt
	if changedAt == 0 {
		changedAt = time.Now().Unix()
	}
	const stmt = `INSERT INTO order_status_log(order_id, from_status, to_status, backward, changed_at)
                  VALUES(?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, stmt,
		entry.OrderID,
		entry.FromStatus,
		entry.ToStatus,
		boolToInt(entry.Backward),
		changedAt,
	)
	if err != nil {
		return err
	}
	if id, err := res.LastInsertId(); err == nil {
		entry.ID = id
	}
	entry.ChangedAt = changedAt
	return nil
}

func (r *orderStatusLogRepo) ListByOrder(ctx context.Context, orderID string, limit int) ([]*repository.OrderStatusLog, error) {
	query := `SELECT id, order_id, from_status, to_status, backward, changed_at
              FROM order_status_log WHERE order_id = ? ORDER BY changed_at DESC, id DESC`
	args := []any{orderID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*repository.OrderStatusLog
	for rows.Next() {
		entry, err := scanStatusLog(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (r *orderStatusLogRepo) LastByOrder(ctx context.Context, orderID string) (*repository.OrderStatusLog, error) {
	const query = `SELECT id, order_id, from_status, to_status, backward, changed_at
                   FROM order_status_log WHERE order_id = ? ORDER BY changed_at DESC, id DESC LIMIT 1`
	row := r.db.QueryRowContext(ctx, query, orderID)
	entry, err := scanStatusLog(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return entry, nil
}

func (r *orderStatusLogRepo) CountBackward(ctx context.Context) (int64, error) {
	const query = `SELECT COUNT(1) FROM order_status_log WHERE backward = 1`
	var count int64
	if err := r.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

type statusLogScanner interface {
	Scan(dest ...any) error
}

func scanStatusLog(scanner statusLogScanner) (*repository.OrderStatusLog, error) {
	var (
		entry    repository.OrderStatusLog
		backward int64
	)
	if err := scanner.Scan(&entry.ID, &entry.OrderID, &entry.FromStatus, &entry.ToStatus, &backward, &entry.ChangedAt); err != nil {
		return nil, err
	}
	entry.Backward = backward == 1
	return &entry, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
