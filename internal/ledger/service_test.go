package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/mizan-erp/mizan/internal/shared"
)

type memRepo struct {
	sales     []Sale
	purchases []Purchase
	vouchers  []Voucher
	expenses  []Expense
	waste     []Waste
	balances  []OpeningBalance
	templates []ExpenseTemplate
	stock     map[string]float64
}

func newMemRepo() *memRepo {
	return &memRepo{stock: map[string]float64{}}
}

func (m *memRepo) adjustStock(qatType string, delta float64) (bool, error) {
	current, ok := m.stock[qatType]
	if !ok {
		return false, fmt.Errorf("%w: category %q", shared.ErrNotFound, qatType)
	}
	next := current + delta
	if next < 0 {
		m.stock[qatType] = 0
		return true, nil
	}
	m.stock[qatType] = next
	return false, nil
}

func (m *memRepo) ListSales(context.Context) ([]Sale, error)         { return m.sales, nil }
func (m *memRepo) ListPurchases(context.Context) ([]Purchase, error) { return m.purchases, nil }
func (m *memRepo) ListVouchers(context.Context) ([]Voucher, error)   { return m.vouchers, nil }
func (m *memRepo) ListExpenses(context.Context) ([]Expense, error)   { return m.expenses, nil }
func (m *memRepo) ListWaste(context.Context) ([]Waste, error)        { return m.waste, nil }
func (m *memRepo) ListOpeningBalances(context.Context) ([]OpeningBalance, error) {
	return m.balances, nil
}
func (m *memRepo) ListExpenseTemplates(context.Context) ([]ExpenseTemplate, error) {
	return m.templates, nil
}

func (m *memRepo) CreateSale(_ context.Context, s Sale) (Sale, bool, error) {
	clamped, err := m.adjustStock(s.QatType, -s.Quantity)
	if err != nil {
		return Sale{}, false, err
	}
	s.CreatedAt = time.Now()
	m.sales = append(m.sales, s)
	return s, clamped, nil
}

func (m *memRepo) CreatePurchase(_ context.Context, p Purchase) (Purchase, error) {
	if _, err := m.adjustStock(p.QatType, p.Quantity); err != nil {
		return Purchase{}, err
	}
	p.CreatedAt = time.Now()
	m.purchases = append(m.purchases, p)
	return p, nil
}

func (m *memRepo) CreateVoucher(_ context.Context, v Voucher) (Voucher, error) {
	v.CreatedAt = time.Now()
	m.vouchers = append(m.vouchers, v)
	return v, nil
}

func (m *memRepo) UpdateVoucher(_ context.Context, id uuid.UUID, amount float64, notes string) (Voucher, error) {
	for i := range m.vouchers {
		if m.vouchers[i].ID != id {
			continue
		}
		v := &m.vouchers[i]
		v.EditHistory = append(v.EditHistory, VoucherEdit{
			Date:           time.Now(),
			PreviousAmount: v.Amount,
			PreviousNotes:  v.Notes,
		})
		v.Amount = amount
		v.Notes = notes
		return *v, nil
	}
	return Voucher{}, shared.ErrNotFound
}

func (m *memRepo) CreateExpense(_ context.Context, e Expense) (Expense, error) {
	e.CreatedAt = time.Now()
	m.expenses = append(m.expenses, e)
	return e, nil
}

func (m *memRepo) CreateWaste(_ context.Context, w Waste) (Waste, bool, error) {
	clamped, err := m.adjustStock(w.QatType, -w.Quantity)
	if err != nil {
		return Waste{}, false, err
	}
	w.CreatedAt = time.Now()
	m.waste = append(m.waste, w)
	return w, clamped, nil
}

func (m *memRepo) CreateOpeningBalance(_ context.Context, b OpeningBalance) (OpeningBalance, error) {
	b.CreatedAt = time.Now()
	m.balances = append(m.balances, b)
	return b, nil
}

func (m *memRepo) CreateExpenseTemplate(_ context.Context, t ExpenseTemplate) (ExpenseTemplate, error) {
	t.CreatedAt = time.Now()
	m.templates = append(m.templates, t)
	return t, nil
}

func (m *memRepo) ReturnSale(_ context.Context, id uuid.UUID) (Sale, error) {
	for i, s := range m.sales {
		if s.ID != id {
			continue
		}
		if s.IsReturned {
			return Sale{}, fmt.Errorf("%w: sale %s already returned", shared.ErrConflict, id)
		}
		now := time.Now()
		m.sales[i].IsReturned = true
		m.sales[i].ReturnedAt = &now
		if _, err := m.adjustStock(s.QatType, s.Quantity); err != nil {
			return Sale{}, err
		}
		return m.sales[i], nil
	}
	return Sale{}, fmt.Errorf("%w: sale %s", shared.ErrNotFound, id)
}

func (m *memRepo) ReturnPurchase(_ context.Context, id uuid.UUID) (Purchase, bool, error) {
	for i, p := range m.purchases {
		if p.ID != id {
			continue
		}
		if p.IsReturned {
			return Purchase{}, false, fmt.Errorf("%w: purchase %s already returned", shared.ErrConflict, id)
		}
		now := time.Now()
		m.purchases[i].IsReturned = true
		m.purchases[i].ReturnedAt = &now
		clamped, err := m.adjustStock(p.QatType, -p.Quantity)
		if err != nil {
			return Purchase{}, false, err
		}
		return m.purchases[i], clamped, nil
	}
	return Purchase{}, false, fmt.Errorf("%w: purchase %s", shared.ErrNotFound, id)
}

func (m *memRepo) DeleteSale(_ context.Context, id uuid.UUID) error {
	for i, s := range m.sales {
		if s.ID == id {
			m.sales = append(m.sales[:i], m.sales[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: sale %s", shared.ErrNotFound, id)
}

func (m *memRepo) DeletePurchase(_ context.Context, id uuid.UUID) error {
	for i, p := range m.purchases {
		if p.ID == id {
			m.purchases = append(m.purchases[:i], m.purchases[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: purchase %s", shared.ErrNotFound, id)
}

func (m *memRepo) DeleteVoucher(_ context.Context, id uuid.UUID) error {
	for i, v := range m.vouchers {
		if v.ID == id {
			m.vouchers = append(m.vouchers[:i], m.vouchers[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: voucher %s", shared.ErrNotFound, id)
}

func (m *memRepo) DeleteExpense(_ context.Context, id uuid.UUID) error {
	for i, e := range m.expenses {
		if e.ID == id {
			m.expenses = append(m.expenses[:i], m.expenses[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: expense %s", shared.ErrNotFound, id)
}

func (m *memRepo) DeleteWaste(_ context.Context, id uuid.UUID) error {
	for i, w := range m.waste {
		if w.ID == id {
			m.waste = append(m.waste[:i], m.waste[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: waste %s", shared.ErrNotFound, id)
}

type memDirectory struct {
	customers map[uuid.UUID]string
	suppliers map[uuid.UUID]string
}

func (d *memDirectory) CustomerName(_ context.Context, id uuid.UUID) (string, error) {
	name, ok := d.customers[id]
	if !ok {
		return "", fmt.Errorf("%w: customer %s", shared.ErrNotFound, id)
	}
	return name, nil
}

func (d *memDirectory) SupplierName(_ context.Context, id uuid.UUID) (string, error) {
	name, ok := d.suppliers[id]
	if !ok {
		return "", fmt.Errorf("%w: supplier %s", shared.ErrNotFound, id)
	}
	return name, nil
}

func newTestService(repo *memRepo, dir *memDirectory) *Service {
	return NewService(repo, dir, nil, nil, slog.Default())
}

func TestRecordSaleValidation(t *testing.T) {
	repo := newMemRepo()
	repo.stock["Hamdani"] = 10
	customerID := uuid.New()
	svc := newTestService(repo, &memDirectory{customers: map[uuid.UUID]string{customerID: "Ali"}})

	_, err := svc.RecordSale(context.Background(), CreateSaleRequest{
		CustomerID: customerID, QatType: "Hamdani", Quantity: 0, UnitPrice: 100,
		Status: StatusCash, Currency: CurrencyYER,
	})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.RecordSale(context.Background(), CreateSaleRequest{
		CustomerID: customerID, QatType: "Hamdani", Quantity: 2, UnitPrice: 100,
		Status: StatusCash, Currency: "USD",
	})
	require.ErrorIs(t, err, shared.ErrValidation)

	// Rejected requests must leave stock and the ledger untouched.
	require.Empty(t, repo.sales)
	require.Equal(t, 10.0, repo.stock["Hamdani"])
}

func TestRecordSaleSnapshotsNameAndTotal(t *testing.T) {
	repo := newMemRepo()
	repo.stock["Hamdani"] = 10
	customerID := uuid.New()
	svc := newTestService(repo, &memDirectory{customers: map[uuid.UUID]string{customerID: "Ali"}})

	sale, err := svc.RecordSale(context.Background(), CreateSaleRequest{
		CustomerID: customerID, QatType: "Hamdani", Quantity: 3, UnitPrice: 500,
		Status: StatusCredit, Currency: CurrencyYER,
	})
	require.NoError(t, err)
	require.Equal(t, "Ali", sale.CustomerName)
	require.Equal(t, 1500.0, sale.Total)
	require.Equal(t, 7.0, repo.stock["Hamdani"])
}

func TestRecordSaleClampsStockAtZero(t *testing.T) {
	repo := newMemRepo()
	repo.stock["Shami"] = 2
	customerID := uuid.New()
	svc := newTestService(repo, &memDirectory{customers: map[uuid.UUID]string{customerID: "Ali"}})

	_, err := svc.RecordSale(context.Background(), CreateSaleRequest{
		CustomerID: customerID, QatType: "Shami", Quantity: 5, UnitPrice: 100,
		Status: StatusCash, Currency: CurrencyYER,
	})
	require.NoError(t, err)
	require.Equal(t, 0.0, repo.stock["Shami"])
}

func TestReturnSaleRestoresStockOnce(t *testing.T) {
	repo := newMemRepo()
	repo.stock["Hamdani"] = 10
	customerID := uuid.New()
	svc := newTestService(repo, &memDirectory{customers: map[uuid.UUID]string{customerID: "Ali"}})

	sale, err := svc.RecordSale(context.Background(), CreateSaleRequest{
		CustomerID: customerID, QatType: "Hamdani", Quantity: 4, UnitPrice: 250,
		Status: StatusCredit, Currency: CurrencyYER,
	})
	require.NoError(t, err)
	require.Equal(t, 6.0, repo.stock["Hamdani"])

	returned, err := svc.ReturnSale(context.Background(), sale.ID)
	require.NoError(t, err)
	require.True(t, returned.IsReturned)
	require.NotNil(t, returned.ReturnedAt)
	require.Equal(t, 10.0, repo.stock["Hamdani"])

	// A second return must be rejected and must not re-apply the stock change.
	_, err = svc.ReturnSale(context.Background(), sale.ID)
	require.ErrorIs(t, err, shared.ErrConflict)
	require.Equal(t, 10.0, repo.stock["Hamdani"])
}

func TestReturnPurchaseClampsStock(t *testing.T) {
	repo := newMemRepo()
	repo.stock["Hamdani"] = 0
	supplierID := uuid.New()
	svc := newTestService(repo, &memDirectory{suppliers: map[uuid.UUID]string{supplierID: "Saleh"}})

	purchase, err := svc.RecordPurchase(context.Background(), CreatePurchaseRequest{
		SupplierID: supplierID, QatType: "Hamdani", Quantity: 5, UnitPrice: 300,
		Status: StatusCredit, Currency: CurrencySAR,
	})
	require.NoError(t, err)
	require.Equal(t, 5.0, repo.stock["Hamdani"])

	// Sell most of the received stock, then return the purchase: the
	// reversal would go negative and must clamp at zero instead.
	repo.stock["Hamdani"] = 2
	returned, err := svc.ReturnPurchase(context.Background(), purchase.ID)
	require.NoError(t, err)
	require.True(t, returned.IsReturned)
	require.Equal(t, 0.0, repo.stock["Hamdani"])
}

func TestRecordVoucherResolvesPersonByType(t *testing.T) {
	repo := newMemRepo()
	customerID := uuid.New()
	supplierID := uuid.New()
	svc := newTestService(repo, &memDirectory{
		customers: map[uuid.UUID]string{customerID: "Ali"},
		suppliers: map[uuid.UUID]string{supplierID: "Saleh"},
	})

	receipt, err := svc.RecordVoucher(context.Background(), CreateVoucherRequest{
		Type: VoucherReceipt, PersonID: customerID, PersonType: PersonCustomer,
		Amount: 2000, Currency: CurrencyYER,
	})
	require.NoError(t, err)
	require.Equal(t, "Ali", receipt.PersonName)

	payment, err := svc.RecordVoucher(context.Background(), CreateVoucherRequest{
		Type: VoucherPayment, PersonID: supplierID, PersonType: PersonSupplier,
		Amount: 900, Currency: CurrencySAR,
	})
	require.NoError(t, err)
	require.Equal(t, "Saleh", payment.PersonName)

	// A customer id looked up in the supplier directory must fail.
	_, err = svc.RecordVoucher(context.Background(), CreateVoucherRequest{
		Type: VoucherReceipt, PersonID: customerID, PersonType: PersonSupplier,
		Amount: 100, Currency: CurrencyYER,
	})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestEditVoucherKeepsHistory(t *testing.T) {
	repo := newMemRepo()
	customerID := uuid.New()
	svc := newTestService(repo, &memDirectory{
		customers: map[uuid.UUID]string{customerID: "Ali"},
	})

	voucher, err := svc.RecordVoucher(context.Background(), CreateVoucherRequest{
		Type: VoucherReceipt, PersonID: customerID, PersonType: PersonCustomer,
		Amount: 2000, Currency: CurrencyYER, Notes: "first instalment",
	})
	require.NoError(t, err)

	_, err = svc.EditVoucher(context.Background(), voucher.ID, UpdateVoucherRequest{Amount: -5})
	require.ErrorIs(t, err, shared.ErrValidation)

	edited, err := svc.EditVoucher(context.Background(), voucher.ID, UpdateVoucherRequest{
		Amount: 2500, Notes: "corrected after recount",
	})
	require.NoError(t, err)
	require.Equal(t, 2500.0, edited.Amount)
	require.Len(t, edited.EditHistory, 1)
	require.Equal(t, 2000.0, edited.EditHistory[0].PreviousAmount)
	require.Equal(t, "first instalment", edited.EditHistory[0].PreviousNotes)

	_, err = svc.EditVoucher(context.Background(), uuid.New(), UpdateVoucherRequest{Amount: 10})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestRecordWasteRejectsShortReason(t *testing.T) {
	repo := newMemRepo()
	repo.stock["Shami"] = 8
	svc := newTestService(repo, &memDirectory{})

	_, err := svc.RecordWaste(context.Background(), CreateWasteRequest{
		QatType: "Shami", Quantity: 2, EstimatedLoss: 500, Reason: "bad",
	})
	require.ErrorIs(t, err, shared.ErrValidation)
	require.Equal(t, 8.0, repo.stock["Shami"])

	record, err := svc.RecordWaste(context.Background(), CreateWasteRequest{
		QatType: "Shami", Quantity: 2, EstimatedLoss: 500, Reason: "wilted overnight",
	})
	require.NoError(t, err)
	require.Equal(t, 2.0, record.Quantity)
	require.Equal(t, 6.0, repo.stock["Shami"])
}

func TestRecordOpeningBalance(t *testing.T) {
	repo := newMemRepo()
	customerID := uuid.New()
	svc := newTestService(repo, &memDirectory{customers: map[uuid.UUID]string{customerID: "Ali"}})

	_, err := svc.RecordOpeningBalance(context.Background(), CreateOpeningBalanceRequest{
		PersonID: customerID, PersonType: PersonCustomer, BalanceType: "sideways",
		Amount: 100, Currency: CurrencyYER,
	})
	require.ErrorIs(t, err, shared.ErrValidation)

	balance, err := svc.RecordOpeningBalance(context.Background(), CreateOpeningBalanceRequest{
		PersonID: customerID, PersonType: PersonCustomer, BalanceType: BalanceDebit,
		Amount: 3000, Currency: CurrencyYER,
	})
	require.NoError(t, err)
	require.Equal(t, BalanceDebit, balance.BalanceType)
	require.Len(t, repo.balances, 1)
}

func TestMutationsDropDerivedCaches(t *testing.T) {
	repo := newMemRepo()
	repo.stock["Hamdani"] = 10
	customerID := uuid.New()
	svc := newTestService(repo, &memDirectory{customers: map[uuid.UUID]string{customerID: "Ali"}})

	invalidations := 0
	svc.SetCacheInvalidator(func(context.Context) { invalidations++ })

	_, err := svc.RecordSale(context.Background(), CreateSaleRequest{
		CustomerID: customerID, QatType: "Hamdani", Quantity: 0, UnitPrice: 100,
		Status: StatusCash, Currency: CurrencyYER,
	})
	require.ErrorIs(t, err, shared.ErrValidation)
	require.Zero(t, invalidations, "rejected writes must not touch caches")

	sale, err := svc.RecordSale(context.Background(), CreateSaleRequest{
		CustomerID: customerID, QatType: "Hamdani", Quantity: 2, UnitPrice: 100,
		Status: StatusCash, Currency: CurrencyYER,
	})
	require.NoError(t, err)
	require.Equal(t, 1, invalidations)

	_, err = svc.ReturnSale(context.Background(), sale.ID)
	require.NoError(t, err)
	require.Equal(t, 2, invalidations)

	require.NoError(t, svc.DeleteSale(context.Background(), sale.ID))
	require.Equal(t, 3, invalidations)
}
