package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hibiken/asynq"

	"github.com/mizan-erp/mizan/internal/finance"
	jobmetrics "github.com/mizan-erp/mizan/internal/jobs"
	"github.com/mizan-erp/mizan/internal/ledger"
)

// Recapper computes the per-currency budget summary.
type Recapper interface {
	Budget(ctx context.Context) (map[ledger.Currency]finance.BudgetSummary, error)
}

// Notifier appends to the in-app notification feed.
type Notifier interface {
	Notify(ctx context.Context, title, message, severity string)
}

// DailyRecapJob posts a daily position summary to the notification feed.
type DailyRecapJob struct {
	Finance  Recapper
	Notifier Notifier
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
}

// NewDailyRecapJob initialises the recap handler.
func NewDailyRecapJob(financeSvc Recapper, notifier Notifier, logger *slog.Logger, metrics *jobmetrics.Metrics) *DailyRecapJob {
	return &DailyRecapJob{Finance: financeSvc, Notifier: notifier, Logger: logger, Metrics: metrics}
}

// Handle executes the recap.
func (j *DailyRecapJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Finance == nil {
		return errors.New("daily recap: handler not configured")
	}
	var payload DailyRecapPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}

	tracker := j.Metrics.Track(TaskDailyRecap)
	var resultErr error
	defer func() { resultErr = tracker.End(resultErr) }()

	logger := j.logger()
	start := time.Now()
	logger.Info("starting daily recap")

	summaries, err := j.Finance.Budget(ctx)
	if err != nil {
		resultErr = err
		logger.Error("recap failed", slog.Any("error", err))
		return resultErr
	}

	currencies := ledger.Currencies()
	if payload.Currency != "" {
		currencies = []ledger.Currency{ledger.Currency(payload.Currency)}
	}

	var parts []string
	for _, currency := range currencies {
		summary, ok := summaries[currency]
		if !ok {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: cash %.0f, net %.0f", currency, summary.Cash, summary.Net))
		logger.Info("daily position",
			slog.String("currency", string(currency)),
			slog.Float64("cash", summary.Cash),
			slog.Float64("assets", summary.Assets),
			slog.Float64("liabilities", summary.Liabilities),
			slog.Float64("net", summary.Net),
		)
	}

	if j.Notifier != nil && len(parts) > 0 {
		j.Notifier.Notify(ctx, "Daily recap", strings.Join(parts, " | "), "success")
	}

	logger.Info("completed daily recap", slog.Duration("duration", time.Since(start)))
	return resultErr
}

func (j *DailyRecapJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskDailyRecap))
	}
	return slog.Default().With(slog.String("job", TaskDailyRecap))
}
