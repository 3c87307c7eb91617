package finance

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/mizan-erp/mizan/internal/ledger"
	"github.com/mizan-erp/mizan/internal/parties"
)

func day(n int) time.Time {
	return time.Date(2026, time.March, n, 0, 0, 0, 0, time.UTC)
}

func creditSale(customerID uuid.UUID, currency ledger.Currency, total float64, date time.Time) ledger.Sale {
	return ledger.Sale{
		ID: uuid.New(), CustomerID: customerID, QatType: "Hamdani",
		Quantity: 1, UnitPrice: total, Total: total,
		Status: ledger.StatusCredit, Currency: currency, Date: date,
	}
}

func cashSale(customerID uuid.UUID, currency ledger.Currency, total float64, date time.Time) ledger.Sale {
	s := creditSale(customerID, currency, total, date)
	s.Status = ledger.StatusCash
	return s
}

func receipt(customerID uuid.UUID, currency ledger.Currency, amount float64, date time.Time) ledger.Voucher {
	return ledger.Voucher{
		ID: uuid.New(), Type: ledger.VoucherReceipt, PersonID: customerID,
		PersonType: ledger.PersonCustomer, Amount: amount, Currency: currency, Date: date,
	}
}

func TestBudgetCurrencyIsolation(t *testing.T) {
	customer := parties.Customer{ID: uuid.New(), Name: "Ahmed"}
	snap := Snapshot{
		Customers: []parties.Customer{customer},
		Sales: []ledger.Sale{
			creditSale(customer.ID, ledger.CurrencyYER, 5000, day(1)),
			creditSale(customer.ID, ledger.CurrencySAR, 300, day(2)),
		},
	}

	summaries := GlobalBudget(snap)
	require.Equal(t, 5000.0, summaries[ledger.CurrencyYER].CustomerDebts)
	require.Equal(t, 300.0, summaries[ledger.CurrencySAR].CustomerDebts)
	require.Equal(t, 0.0, summaries[ledger.CurrencyOMR].CustomerDebts)

	// Dropping every YER entry must not move the SAR summary.
	yerFree := snap
	yerFree.Sales = snap.Sales[1:]
	require.Equal(t, summaries[ledger.CurrencySAR], GlobalBudget(yerFree)[ledger.CurrencySAR])
}

func TestCashCreditPartition(t *testing.T) {
	customer := parties.Customer{ID: uuid.New(), Name: "Ahmed"}
	snap := Snapshot{
		Customers: []parties.Customer{customer},
		Sales: []ledger.Sale{
			cashSale(customer.ID, ledger.CurrencyYER, 1000, day(1)),
			creditSale(customer.ID, ledger.CurrencyYER, 2000, day(2)),
		},
	}

	balance := CustomerBalance(customer.ID, ledger.CurrencyYER, snap.Sales, nil)
	require.Equal(t, 2000.0, balance)

	summary := GlobalBudget(snap)[ledger.CurrencyYER]
	require.Equal(t, 1000.0, summary.Cash)
	require.Equal(t, 2000.0, summary.CustomerDebts)
	require.Equal(t, 3000.0, summary.Net)
}

func TestReturnedEntriesExcludedEverywhere(t *testing.T) {
	customer := parties.Customer{ID: uuid.New(), Name: "Ahmed"}
	returned := cashSale(customer.ID, ledger.CurrencyYER, 9999, day(1))
	returned.IsReturned = true
	snap := Snapshot{
		Customers: []parties.Customer{customer},
		Sales:     []ledger.Sale{returned, creditSale(customer.ID, ledger.CurrencyYER, 100, day(2))},
	}

	require.Equal(t, 100.0, CustomerBalance(customer.ID, ledger.CurrencyYER, snap.Sales, nil))
	require.Equal(t, 0.0, GlobalBudget(snap)[ledger.CurrencyYER].Cash)
	require.Len(t, Statement(customer.ID, ledger.PersonCustomer, ledger.CurrencyYER, snap), 1)
}

func TestSupplierBalanceSymmetry(t *testing.T) {
	supplier := parties.Supplier{ID: uuid.New(), Name: "Saleh"}
	snap := Snapshot{
		Suppliers: []parties.Supplier{supplier},
		Purchases: []ledger.Purchase{{
			ID: uuid.New(), SupplierID: supplier.ID, QatType: "Shami",
			Quantity: 10, UnitPrice: 40, Total: 400,
			Status: ledger.StatusCredit, Currency: ledger.CurrencySAR, Date: day(1),
		}},
		Vouchers: []ledger.Voucher{{
			ID: uuid.New(), Type: ledger.VoucherPayment, PersonID: supplier.ID,
			PersonType: ledger.PersonSupplier, Amount: 150, Currency: ledger.CurrencySAR, Date: day(2),
		}},
	}

	require.Equal(t, 250.0, SupplierBalance(supplier.ID, ledger.CurrencySAR, snap.Purchases, snap.Vouchers))

	summary := GlobalBudget(snap)[ledger.CurrencySAR]
	require.Equal(t, 250.0, summary.SupplierDebts)
	require.Equal(t, -150.0, summary.Cash)
	require.Equal(t, -400.0, summary.Net)
}

func TestStatementReplayMatchesBalance(t *testing.T) {
	customer := parties.Customer{ID: uuid.New(), Name: "Ahmed"}
	snap := Snapshot{
		Customers: []parties.Customer{customer},
		Sales: []ledger.Sale{
			creditSale(customer.ID, ledger.CurrencyYER, 5000, day(1)),
			cashSale(customer.ID, ledger.CurrencyYER, 1200, day(2)),
			creditSale(customer.ID, ledger.CurrencyYER, 800, day(4)),
		},
		Vouchers: []ledger.Voucher{receipt(customer.ID, ledger.CurrencyYER, 2000, day(3))},
	}

	rows := Statement(customer.ID, ledger.PersonCustomer, ledger.CurrencyYER, snap)
	require.Len(t, rows, 4)

	// Rows are presented newest first but the running balance was fixed on
	// the ascending pass.
	require.False(t, rows[0].Date.Before(rows[len(rows)-1].Date))

	var replayed float64
	for i := len(rows) - 1; i >= 0; i-- {
		replayed += rows[i].Debit - rows[i].Credit
		require.Equal(t, replayed, rows[i].Running)
	}
	require.Equal(t, CustomerBalance(customer.ID, ledger.CurrencyYER, snap.Sales, snap.Vouchers), rows[0].Running)
}

func TestStatementSupplierRunningBalance(t *testing.T) {
	supplier := parties.Supplier{ID: uuid.New(), Name: "Saleh"}
	snap := Snapshot{
		Suppliers: []parties.Supplier{supplier},
		Purchases: []ledger.Purchase{{
			ID: uuid.New(), SupplierID: supplier.ID, QatType: "Shami",
			Quantity: 5, UnitPrice: 100, Total: 500,
			Status: ledger.StatusCredit, Currency: ledger.CurrencyOMR, Date: day(1),
		}},
		Vouchers: []ledger.Voucher{{
			ID: uuid.New(), Type: ledger.VoucherPayment, PersonID: supplier.ID,
			PersonType: ledger.PersonSupplier, Amount: 200, Currency: ledger.CurrencyOMR, Date: day(2),
		}},
	}

	rows := Statement(supplier.ID, ledger.PersonSupplier, ledger.CurrencyOMR, snap)
	require.Len(t, rows, 2)
	require.Equal(t, 300.0, rows[0].Running)
	require.Equal(t, SupplierBalance(supplier.ID, ledger.CurrencyOMR, snap.Purchases, snap.Vouchers), rows[0].Running)
}

// Records a credit sale, a partial receipt, then returns the sale: the
// voucher lingers, flipping the customer into credit.
func TestSaleReturnLeavesVoucherStanding(t *testing.T) {
	ahmed := parties.Customer{ID: uuid.New(), Name: "Ahmed"}
	sale := ledger.Sale{
		ID: uuid.New(), CustomerID: ahmed.ID, QatType: "X",
		Quantity: 5, UnitPrice: 1000, Total: 5000,
		Status: ledger.StatusCredit, Currency: ledger.CurrencyYER, Date: day(1),
	}
	voucher := receipt(ahmed.ID, ledger.CurrencyYER, 2000, day(2))

	snap := Snapshot{
		Customers: []parties.Customer{ahmed},
		Sales:     []ledger.Sale{sale},
	}
	require.Equal(t, 5000.0, CustomerBalance(ahmed.ID, ledger.CurrencyYER, snap.Sales, snap.Vouchers))

	snap.Vouchers = []ledger.Voucher{voucher}
	require.Equal(t, 3000.0, CustomerBalance(ahmed.ID, ledger.CurrencyYER, snap.Sales, snap.Vouchers))

	snap.Sales[0].IsReturned = true
	require.Equal(t, -2000.0, CustomerBalance(ahmed.ID, ledger.CurrencyYER, snap.Sales, snap.Vouchers))

	summary := GlobalBudget(snap)[ledger.CurrencyYER]
	require.Equal(t, 2000.0, summary.CustomerCredits)
	require.Equal(t, 0.0, summary.CustomerDebts)
}

func TestMalformedEntriesContributeNothing(t *testing.T) {
	customer := parties.Customer{ID: uuid.New(), Name: "Ahmed"}
	snap := Snapshot{
		Customers: []parties.Customer{customer},
		Sales: []ledger.Sale{
			creditSale(customer.ID, ledger.CurrencyYER, 5000, day(1)),
			creditSale(customer.ID, "", 9999, day(2)),
			creditSale(customer.ID, "USD", 7777, day(3)),
		},
		Vouchers: []ledger.Voucher{
			receipt(customer.ID, "", 1234, day(4)),
		},
		Expenses: []ledger.Expense{
			{ID: uuid.New(), Title: "rent", Amount: 500, Currency: "", Date: day(5)},
		},
	}

	// Records from a degraded load default to zero contribution; reports
	// stay available instead of failing.
	summaries := GlobalBudget(snap)
	require.Equal(t, 5000.0, summaries[ledger.CurrencyYER].CustomerDebts)
	require.Equal(t, 0.0, summaries[ledger.CurrencyYER].Cash)
	for _, currency := range ledger.Currencies() {
		require.Equal(t, 0.0, summaries[currency].CustomerCredits)
	}

	require.Equal(t, 5000.0, CustomerBalance(customer.ID, ledger.CurrencyYER, snap.Sales, snap.Vouchers))

	rows := Statement(customer.ID, ledger.PersonCustomer, ledger.CurrencyYER, snap)
	require.Len(t, rows, 1)
	require.Equal(t, 5000.0, rows[0].Running)
}
