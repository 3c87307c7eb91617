package shared

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ActivityKind classifies activity log entries.
type ActivityKind string

const (
	ActivitySale     ActivityKind = "sale"
	ActivityPurchase ActivityKind = "purchase"
	ActivityVoucher  ActivityKind = "voucher"
	ActivityWaste    ActivityKind = "waste"
	ActivitySystem   ActivityKind = "system"
)

// ActivityEntry represents a record stored in activity_logs.
type ActivityEntry struct {
	ID      int64        `json:"id"`
	Action  string       `json:"action"`
	Details string       `json:"details,omitempty"`
	Kind    ActivityKind `json:"kind"`
	At      time.Time    `json:"at"`
}

// ActivityLogger writes records into activity_logs.
type ActivityLogger struct {
	pool *pgxpool.Pool
}

// NewActivityLogger returns a new ActivityLogger.
func NewActivityLogger(pool *pgxpool.Pool) *ActivityLogger {
	return &ActivityLogger{pool: pool}
}

// Record persists the log entry.
func (l *ActivityLogger) Record(ctx context.Context, entry ActivityEntry) error {
	if l == nil {
		return errors.New("activity logger not initialised")
	}
	if entry.Action == "" || entry.Kind == "" {
		return errors.New("activity log requires action and kind")
	}
	var at any
	if !entry.At.IsZero() {
		at = entry.At
	}
	_, err := l.pool.Exec(ctx, `INSERT INTO activity_logs (action, details, kind, occurred_at) VALUES ($1, $2, $3, COALESCE($4, NOW()))`, entry.Action, entry.Details, entry.Kind, at)
	return err
}

// Recent returns the newest entries, most recent first.
func (l *ActivityLogger) Recent(ctx context.Context, limit int) ([]ActivityEntry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := l.pool.Query(ctx, `SELECT id, action, details, kind, occurred_at FROM activity_logs ORDER BY occurred_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []ActivityEntry
	for rows.Next() {
		var e ActivityEntry
		if err := rows.Scan(&e.ID, &e.Action, &e.Details, &e.Kind, &e.At); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
