// Package notify stores in-app notifications raised by mutations and jobs.
package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Notification is one feed entry. Severity is success, warning, error,
// or info.
type Notification struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Severity  string    `json:"severity"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists notifications. Notify is fire-and-forget: a failed write is
// logged and swallowed so it can never fail the mutation that raised it.
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewStore constructs Store.
func NewStore(pool *pgxpool.Pool, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{pool: pool, logger: logger}
}

// normalizeSeverity coerces unknown severities to "info" so the feed only
// ever carries the four levels clients render.
func normalizeSeverity(severity string) string {
	switch severity {
	case "success", "warning", "error", "info":
		return severity
	}
	return "info"
}

// Notify appends a notification to the feed.
func (s *Store) Notify(ctx context.Context, title, message, severity string) {
	_, err := s.pool.Exec(ctx, `INSERT INTO notifications (id, title, message, severity, read, created_at)
VALUES ($1, $2, $3, $4, FALSE, NOW())`, uuid.New(), title, message, normalizeSeverity(severity))
	if err != nil {
		s.logger.Warn("notification write failed",
			slog.String("title", title),
			slog.Any("error", err))
	}
}

// Recent returns the newest notifications, capped at limit.
func (s *Store) Recent(ctx context.Context, limit int) ([]Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx, `SELECT id, title, message, severity, read, created_at FROM notifications ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var feed []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.Title, &n.Message, &n.Severity, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		feed = append(feed, n)
	}
	return feed, rows.Err()
}

// MarkRead flags one notification as read.
func (s *Store) MarkRead(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `UPDATE notifications SET read = TRUE WHERE id = $1`, id)
	return err
}

// MarkAllRead flags the whole feed as read.
func (s *Store) MarkAllRead(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `UPDATE notifications SET read = TRUE WHERE read = FALSE`)
	return err
}
