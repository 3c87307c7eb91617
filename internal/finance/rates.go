package finance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/mizan-erp/mizan/internal/shared"
)

// ExchangeRates converts SAR and OMR amounts to YER for display only. The
// calculators never convert between currencies.
type ExchangeRates struct {
	SARToYER float64 `json:"sar_to_yer"`
	OMRToYER float64 `json:"omr_to_yer"`
}

// DefaultRates is the fallback before any rate has been saved.
func DefaultRates() ExchangeRates {
	return ExchangeRates{SARToYER: 430, OMRToYER: 425}
}

const ratesCacheKey = "mizan:rates"

// RatesStore persists display exchange rates in the exchange_rates table
// and caches them in Redis.
type RatesStore struct {
	pool *pgxpool.Pool
	rdb  *redis.Client
	ttl  time.Duration
}

// NewRatesStore constructs RatesStore. rdb may be nil to disable caching.
func NewRatesStore(pool *pgxpool.Pool, rdb *redis.Client) *RatesStore {
	return &RatesStore{pool: pool, rdb: rdb, ttl: 5 * time.Minute}
}

// Get returns the saved rates, falling back to defaults when none exist.
func (s *RatesStore) Get(ctx context.Context) (ExchangeRates, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, ratesCacheKey).Bytes(); err == nil {
			var rates ExchangeRates
			if json.Unmarshal(cached, &rates) == nil {
				return rates, nil
			}
		}
	}

	var rates ExchangeRates
	err := s.pool.QueryRow(ctx, `SELECT sar_to_yer, omr_to_yer FROM exchange_rates WHERE id = 1`).Scan(&rates.SARToYER, &rates.OMRToYER)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return DefaultRates(), nil
		}
		return ExchangeRates{}, fmt.Errorf("finance: load rates: %w", err)
	}

	if s.rdb != nil {
		if payload, err := json.Marshal(rates); err == nil {
			s.rdb.Set(ctx, ratesCacheKey, payload, s.ttl)
		}
	}
	return rates, nil
}

// Set saves new rates and invalidates the cache.
func (s *RatesStore) Set(ctx context.Context, rates ExchangeRates) error {
	if rates.SARToYER <= 0 || rates.OMRToYER <= 0 {
		return fmt.Errorf("%w: exchange rates must be positive", shared.ErrValidation)
	}
	_, err := s.pool.Exec(ctx, `INSERT INTO exchange_rates (id, sar_to_yer, omr_to_yer, updated_at)
VALUES (1, $1, $2, NOW())
ON CONFLICT (id) DO UPDATE SET sar_to_yer = EXCLUDED.sar_to_yer, omr_to_yer = EXCLUDED.omr_to_yer, updated_at = NOW()`,
		rates.SARToYER, rates.OMRToYER)
	if err != nil {
		return fmt.Errorf("finance: save rates: %w", err)
	}
	if s.rdb != nil {
		s.rdb.Del(ctx, ratesCacheKey)
	}
	return nil
}
