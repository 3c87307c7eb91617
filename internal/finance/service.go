package finance

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/mizan-erp/mizan/internal/ledger"
	"github.com/mizan-erp/mizan/internal/parties"
)

// EntrySource provides the ledger collections the calculators fold over.
type EntrySource interface {
	Sales(ctx context.Context) ([]ledger.Sale, error)
	Purchases(ctx context.Context) ([]ledger.Purchase, error)
	Vouchers(ctx context.Context) ([]ledger.Voucher, error)
	Expenses(ctx context.Context) ([]ledger.Expense, error)
}

// PartySource provides the directories.
type PartySource interface {
	ListCustomers(ctx context.Context) ([]parties.Customer, error)
	ListSuppliers(ctx context.Context) ([]parties.Supplier, error)
}

const budgetCacheKey = "mizan:budget"

// Service loads consistent snapshots and serves the derived reports. The
// budget summary is cached briefly in Redis and deduplicated in flight, so
// a burst of dashboard loads computes it once.
type Service struct {
	entries   EntrySource
	directory PartySource
	rates     *RatesStore
	rdb       *redis.Client
	logger    *slog.Logger
	group     singleflight.Group
	cacheTTL  time.Duration
}

// NewService builds Service. rdb may be nil to disable budget caching.
func NewService(entries EntrySource, directory PartySource, rates *RatesStore, rdb *redis.Client, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		entries:   entries,
		directory: directory,
		rates:     rates,
		rdb:       rdb,
		logger:    logger,
		cacheTTL:  30 * time.Second,
	}
}

// LoadSnapshot reads all collections concurrently.
func (s *Service) LoadSnapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { snap.Customers, err = s.directory.ListCustomers(ctx); return })
	g.Go(func() (err error) { snap.Suppliers, err = s.directory.ListSuppliers(ctx); return })
	g.Go(func() (err error) { snap.Sales, err = s.entries.Sales(ctx); return })
	g.Go(func() (err error) { snap.Purchases, err = s.entries.Purchases(ctx); return })
	g.Go(func() (err error) { snap.Vouchers, err = s.entries.Vouchers(ctx); return })
	g.Go(func() (err error) { snap.Expenses, err = s.entries.Expenses(ctx); return })
	if err := g.Wait(); err != nil {
		return Snapshot{}, fmt.Errorf("finance: load snapshot: %w", err)
	}
	return snap, nil
}

// Budget returns the per-currency summary, served from cache when fresh.
func (s *Service) Budget(ctx context.Context) (map[ledger.Currency]BudgetSummary, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, budgetCacheKey).Bytes(); err == nil {
			var summaries map[ledger.Currency]BudgetSummary
			if json.Unmarshal(cached, &summaries) == nil {
				return summaries, nil
			}
		}
	}

	result, err, _ := s.group.Do(budgetCacheKey, func() (any, error) {
		snap, err := s.LoadSnapshot(ctx)
		if err != nil {
			return nil, err
		}
		summaries := GlobalBudget(snap)
		if s.rdb != nil {
			if payload, err := json.Marshal(summaries); err == nil {
				if err := s.rdb.Set(ctx, budgetCacheKey, payload, s.cacheTTL).Err(); err != nil {
					s.logger.Warn("budget cache write failed", slog.Any("error", err))
				}
			}
		}
		return summaries, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(map[ledger.Currency]BudgetSummary), nil
}

// InvalidateBudget drops the cached summary after a mutation.
func (s *Service) InvalidateBudget(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, budgetCacheKey).Err(); err != nil {
		s.logger.Warn("budget cache invalidation failed", slog.Any("error", err))
	}
}

// Balances returns a person's balance in every currency.
func (s *Service) Balances(ctx context.Context, personID uuid.UUID, personType ledger.PersonType) (map[ledger.Currency]float64, error) {
	snap, err := s.LoadSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	return PersonBalances(personID, personType, snap), nil
}

// PersonStatement builds the statement plus the person's closing balance in
// the requested currency.
func (s *Service) PersonStatement(ctx context.Context, personID uuid.UUID, personType ledger.PersonType, currency ledger.Currency) ([]StatementRow, float64, error) {
	snap, err := s.LoadSnapshot(ctx)
	if err != nil {
		return nil, 0, err
	}
	rows := Statement(personID, personType, currency, snap)
	return rows, PersonBalance(personID, personType, currency, snap), nil
}

// Rates returns the display exchange rates.
func (s *Service) Rates(ctx context.Context) (ExchangeRates, error) {
	if s.rates == nil {
		return DefaultRates(), nil
	}
	return s.rates.Get(ctx)
}

// UpdateRates saves new display exchange rates.
func (s *Service) UpdateRates(ctx context.Context, rates ExchangeRates) error {
	if s.rates == nil {
		return nil
	}
	return s.rates.Set(ctx, rates)
}
