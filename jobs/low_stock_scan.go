package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	jobmetrics "github.com/mizan-erp/mizan/internal/jobs"
)

// LowStockScanJob flags qat categories at or below their low-stock threshold.
type LowStockScanJob struct {
	Pool     *pgxpool.Pool
	Notifier Notifier
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
}

// NewLowStockScanJob initialises the scan handler.
func NewLowStockScanJob(pool *pgxpool.Pool, notifier Notifier, logger *slog.Logger, metrics *jobmetrics.Metrics) *LowStockScanJob {
	return &LowStockScanJob{Pool: pool, Notifier: notifier, Logger: logger, Metrics: metrics}
}

// Handle executes the scan.
func (j *LowStockScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Pool == nil {
		return errors.New("low stock scan: handler not configured")
	}

	tracker := j.Metrics.Track(TaskLowStockScan)
	var resultErr error
	defer func() { resultErr = tracker.End(resultErr) }()

	logger := j.logger()
	start := time.Now()
	logger.Info("starting low stock scan")

	rows, err := j.Pool.Query(ctx, `SELECT name, stock, low_stock_threshold FROM categories WHERE stock <= low_stock_threshold ORDER BY name`)
	if err != nil {
		resultErr = err
		logger.Error("scan failed", slog.Any("error", err))
		return resultErr
	}
	defer rows.Close()

	var flagged []string
	for rows.Next() {
		var name string
		var stock, threshold float64
		if err := rows.Scan(&name, &stock, &threshold); err != nil {
			resultErr = err
			return resultErr
		}
		flagged = append(flagged, fmt.Sprintf("%s (%.0f)", name, stock))
		logger.Warn("low stock",
			slog.String("qat_type", name),
			slog.Float64("stock", stock),
			slog.Float64("threshold", threshold),
		)
	}
	if err := rows.Err(); err != nil {
		resultErr = err
		return resultErr
	}

	j.Metrics.SetLowStock(len(flagged))
	if j.Notifier != nil && len(flagged) > 0 {
		j.Notifier.Notify(ctx, "Low stock", strings.Join(flagged, ", "), "warning")
	}

	logger.Info("completed low stock scan",
		slog.Int("flagged", len(flagged)),
		slog.Duration("duration", time.Since(start)),
	)
	return resultErr
}

func (j *LowStockScanJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskLowStockScan))
	}
	return slog.Default().With(slog.String("job", TaskLowStockScan))
}
