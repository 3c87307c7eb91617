package finance

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/mizan-erp/mizan/internal/ledger"
	"github.com/mizan-erp/mizan/internal/parties"
)

type stubEntrySource struct {
	sales     []ledger.Sale
	purchases []ledger.Purchase
	vouchers  []ledger.Voucher
	expenses  []ledger.Expense
	calls     int
}

func (s *stubEntrySource) Sales(context.Context) ([]ledger.Sale, error) {
	s.calls++
	return s.sales, nil
}
func (s *stubEntrySource) Purchases(context.Context) ([]ledger.Purchase, error) {
	return s.purchases, nil
}
func (s *stubEntrySource) Vouchers(context.Context) ([]ledger.Voucher, error) {
	return s.vouchers, nil
}
func (s *stubEntrySource) Expenses(context.Context) ([]ledger.Expense, error) {
	return s.expenses, nil
}

type stubPartySource struct {
	customers []parties.Customer
	suppliers []parties.Supplier
}

func (s *stubPartySource) ListCustomers(context.Context) ([]parties.Customer, error) {
	return s.customers, nil
}
func (s *stubPartySource) ListSuppliers(context.Context) ([]parties.Supplier, error) {
	return s.suppliers, nil
}

func TestBudgetServedFromCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	ahmed := parties.Customer{ID: uuid.New(), Name: "Ahmed"}
	entries := &stubEntrySource{
		sales: []ledger.Sale{creditSale(ahmed.ID, ledger.CurrencyYER, 5000, day(1))},
	}
	svc := NewService(entries, &stubPartySource{customers: []parties.Customer{ahmed}}, nil, client, nil)

	first, err := svc.Budget(context.Background())
	require.NoError(t, err)
	require.Equal(t, 5000.0, first[ledger.CurrencyYER].CustomerDebts)
	require.Equal(t, 1, entries.calls)

	// Within the TTL the snapshot must not be reloaded.
	second, err := svc.Budget(context.Background())
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, entries.calls)

	svc.InvalidateBudget(context.Background())
	_, err = svc.Budget(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, entries.calls)
}

func TestBudgetWithoutRedis(t *testing.T) {
	ahmed := parties.Customer{ID: uuid.New(), Name: "Ahmed"}
	entries := &stubEntrySource{
		sales: []ledger.Sale{cashSale(ahmed.ID, ledger.CurrencyYER, 700, day(1))},
	}
	svc := NewService(entries, &stubPartySource{customers: []parties.Customer{ahmed}}, nil, nil, nil)

	summaries, err := svc.Budget(context.Background())
	require.NoError(t, err)
	require.Equal(t, 700.0, summaries[ledger.CurrencyYER].Cash)

	// Every call recomputes when no cache is configured.
	_, err = svc.Budget(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, entries.calls)
}

func TestPersonStatementClosingBalance(t *testing.T) {
	ahmed := parties.Customer{ID: uuid.New(), Name: "Ahmed"}
	entries := &stubEntrySource{
		sales:    []ledger.Sale{creditSale(ahmed.ID, ledger.CurrencyYER, 5000, day(1))},
		vouchers: []ledger.Voucher{receipt(ahmed.ID, ledger.CurrencyYER, 2000, day(2))},
	}
	svc := NewService(entries, &stubPartySource{customers: []parties.Customer{ahmed}}, nil, nil, nil)

	rows, balance, err := svc.PersonStatement(context.Background(), ahmed.ID, ledger.PersonCustomer, ledger.CurrencyYER)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, 3000.0, balance)
	require.Equal(t, balance, rows[0].Running)
}
