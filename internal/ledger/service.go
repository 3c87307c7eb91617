package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mizan-erp/mizan/internal/shared"
)

// Repository abstracts persistence for ledger entries. Entry creation and
// the matching stock movement happen inside one database transaction; a
// failed persist must leave stock untouched.
type Repository interface {
	ListSales(ctx context.Context) ([]Sale, error)
	ListPurchases(ctx context.Context) ([]Purchase, error)
	ListVouchers(ctx context.Context) ([]Voucher, error)
	ListExpenses(ctx context.Context) ([]Expense, error)
	ListWaste(ctx context.Context) ([]Waste, error)
	ListOpeningBalances(ctx context.Context) ([]OpeningBalance, error)
	ListExpenseTemplates(ctx context.Context) ([]ExpenseTemplate, error)

	// CreateSale persists the sale and decrements stock for its qat type,
	// clamped at zero. The returned flag reports whether clamping occurred.
	CreateSale(ctx context.Context, s Sale) (Sale, bool, error)
	// CreatePurchase persists the purchase and increments stock.
	CreatePurchase(ctx context.Context, p Purchase) (Purchase, error)
	CreateVoucher(ctx context.Context, v Voucher) (Voucher, error)
	// UpdateVoucher rewrites amount and notes, appending the previous values
	// to the voucher's edit history.
	UpdateVoucher(ctx context.Context, id uuid.UUID, amount float64, notes string) (Voucher, error)
	CreateExpense(ctx context.Context, e Expense) (Expense, error)
	// CreateWaste persists the record and decrements stock, clamped at zero.
	CreateWaste(ctx context.Context, w Waste) (Waste, bool, error)
	CreateOpeningBalance(ctx context.Context, b OpeningBalance) (OpeningBalance, error)
	CreateExpenseTemplate(ctx context.Context, t ExpenseTemplate) (ExpenseTemplate, error)

	// ReturnSale flags the sale returned and restores its quantity to stock
	// in one transaction. Already-returned sales yield shared.ErrConflict.
	ReturnSale(ctx context.Context, id uuid.UUID) (Sale, error)
	// ReturnPurchase flags the purchase returned and removes its quantity
	// from stock, clamped at zero.
	ReturnPurchase(ctx context.Context, id uuid.UUID) (Purchase, bool, error)

	DeleteSale(ctx context.Context, id uuid.UUID) error
	DeletePurchase(ctx context.Context, id uuid.UUID) error
	DeleteVoucher(ctx context.Context, id uuid.UUID) error
	DeleteExpense(ctx context.Context, id uuid.UUID) error
	DeleteWaste(ctx context.Context, id uuid.UUID) error
}

// PartyDirectory resolves person names for creation-time snapshots.
type PartyDirectory interface {
	CustomerName(ctx context.Context, id uuid.UUID) (string, error)
	SupplierName(ctx context.Context, id uuid.UUID) (string, error)
}

// Notifier is the fire-and-forget toast side channel. Failures never fail
// the mutation.
type Notifier interface {
	Notify(ctx context.Context, title, message, severity string)
}

// ActivityRecorder appends to the activity log.
type ActivityRecorder interface {
	Record(ctx context.Context, entry shared.ActivityEntry) error
}

// Service is the transaction mutator: the single write path that keeps
// entries, stock, and the activity trail consistent.
type Service struct {
	repo       Repository
	directory  PartyDirectory
	notifier   Notifier
	activity   ActivityRecorder
	invalidate func(context.Context)
	logger     *slog.Logger
	now        func() time.Time
}

// NewService builds Service.
func NewService(repo Repository, directory PartyDirectory, notifier Notifier, activity ActivityRecorder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:      repo,
		directory: directory,
		notifier:  notifier,
		activity:  activity,
		logger:    logger,
		now:       time.Now,
	}
}

// SetCacheInvalidator registers a hook run after every successful mutation
// that changes report inputs, so cached summaries are dropped immediately
// instead of aging out.
func (s *Service) SetCacheInvalidator(fn func(context.Context)) {
	s.invalidate = fn
}

func (s *Service) invalidateCaches(ctx context.Context) {
	if s.invalidate == nil {
		return
	}
	s.invalidate(ctx)
}

func (s *Service) notify(ctx context.Context, title, message, severity string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, title, message, severity)
}

func (s *Service) logActivity(ctx context.Context, action, details string, kind shared.ActivityKind) {
	if s.activity == nil {
		return
	}
	if err := s.activity.Record(ctx, shared.ActivityEntry{Action: action, Details: details, Kind: kind}); err != nil {
		s.logger.Warn("activity log write failed", slog.Any("error", err))
	}
}

func (s *Service) entryDate(date time.Time) time.Time {
	if date.IsZero() {
		return s.now()
	}
	return date
}

func validStatus(status EntryStatus) bool {
	return status == StatusCash || status == StatusCredit
}

// RecordSale validates and persists a sale, decrementing the qat category's
// stock atomically with the insert.
func (s *Service) RecordSale(ctx context.Context, req CreateSaleRequest) (Sale, error) {
	if req.Quantity <= 0 {
		return Sale{}, fmt.Errorf("%w: quantity must be positive", shared.ErrValidation)
	}
	if req.UnitPrice < 0 {
		return Sale{}, fmt.Errorf("%w: unit price must not be negative", shared.ErrValidation)
	}
	if !ValidCurrency(req.Currency) {
		return Sale{}, fmt.Errorf("%w: unsupported currency %q", shared.ErrValidation, req.Currency)
	}
	if !validStatus(req.Status) {
		return Sale{}, fmt.Errorf("%w: status must be cash or credit", shared.ErrValidation)
	}
	if strings.TrimSpace(req.QatType) == "" {
		return Sale{}, fmt.Errorf("%w: qat type required", shared.ErrValidation)
	}

	customerName, err := s.directory.CustomerName(ctx, req.CustomerID)
	if err != nil {
		return Sale{}, fmt.Errorf("ledger: resolve customer: %w", err)
	}

	sale := Sale{
		ID:           uuid.New(),
		CustomerID:   req.CustomerID,
		CustomerName: customerName,
		QatType:      strings.TrimSpace(req.QatType),
		Quantity:     req.Quantity,
		UnitPrice:    req.UnitPrice,
		Total:        req.Quantity * req.UnitPrice,
		Status:       req.Status,
		Currency:     req.Currency,
		Notes:        req.Notes,
		Date:         s.entryDate(req.Date),
	}

	saved, clamped, err := s.repo.CreateSale(ctx, sale)
	if err != nil {
		return Sale{}, fmt.Errorf("ledger: create sale: %w", err)
	}
	if clamped {
		s.logger.Warn("stock clamped at zero",
			slog.String("qat_type", saved.QatType),
			slog.String("sale_id", saved.ID.String()))
	}

	s.invalidateCaches(ctx)
	s.logActivity(ctx, "sale recorded", fmt.Sprintf("sold %s to %s", saved.QatType, saved.CustomerName), shared.ActivitySale)
	s.notify(ctx, "Sale recorded", fmt.Sprintf("%s: %.0f %s", saved.CustomerName, saved.Total, saved.Currency), "success")
	return saved, nil
}

// RecordPurchase validates and persists a purchase, incrementing stock.
func (s *Service) RecordPurchase(ctx context.Context, req CreatePurchaseRequest) (Purchase, error) {
	if req.Quantity <= 0 {
		return Purchase{}, fmt.Errorf("%w: quantity must be positive", shared.ErrValidation)
	}
	if req.UnitPrice < 0 {
		return Purchase{}, fmt.Errorf("%w: unit price must not be negative", shared.ErrValidation)
	}
	if !ValidCurrency(req.Currency) {
		return Purchase{}, fmt.Errorf("%w: unsupported currency %q", shared.ErrValidation, req.Currency)
	}
	if !validStatus(req.Status) {
		return Purchase{}, fmt.Errorf("%w: status must be cash or credit", shared.ErrValidation)
	}
	if strings.TrimSpace(req.QatType) == "" {
		return Purchase{}, fmt.Errorf("%w: qat type required", shared.ErrValidation)
	}

	supplierName, err := s.directory.SupplierName(ctx, req.SupplierID)
	if err != nil {
		return Purchase{}, fmt.Errorf("ledger: resolve supplier: %w", err)
	}

	purchase := Purchase{
		ID:           uuid.New(),
		SupplierID:   req.SupplierID,
		SupplierName: supplierName,
		QatType:      strings.TrimSpace(req.QatType),
		Quantity:     req.Quantity,
		UnitPrice:    req.UnitPrice,
		Total:        req.Quantity * req.UnitPrice,
		Status:       req.Status,
		Currency:     req.Currency,
		Notes:        req.Notes,
		Date:         s.entryDate(req.Date),
	}

	saved, err := s.repo.CreatePurchase(ctx, purchase)
	if err != nil {
		return Purchase{}, fmt.Errorf("ledger: create purchase: %w", err)
	}

	s.invalidateCaches(ctx)
	s.logActivity(ctx, "purchase recorded", fmt.Sprintf("bought %s from %s", saved.QatType, saved.SupplierName), shared.ActivityPurchase)
	s.notify(ctx, "Purchase recorded", fmt.Sprintf("%s: %.0f %s", saved.SupplierName, saved.Total, saved.Currency), "success")
	return saved, nil
}

// RecordVoucher validates and persists a receipt or payment voucher.
// Vouchers have no inventory effect.
func (s *Service) RecordVoucher(ctx context.Context, req CreateVoucherRequest) (Voucher, error) {
	if req.Amount <= 0 {
		return Voucher{}, fmt.Errorf("%w: amount must be positive", shared.ErrValidation)
	}
	if !ValidCurrency(req.Currency) {
		return Voucher{}, fmt.Errorf("%w: unsupported currency %q", shared.ErrValidation, req.Currency)
	}
	if req.Type != VoucherReceipt && req.Type != VoucherPayment {
		return Voucher{}, fmt.Errorf("%w: voucher type must be receipt or payment", shared.ErrValidation)
	}

	var personName string
	var err error
	switch req.PersonType {
	case PersonCustomer:
		personName, err = s.directory.CustomerName(ctx, req.PersonID)
	case PersonSupplier:
		personName, err = s.directory.SupplierName(ctx, req.PersonID)
	default:
		return Voucher{}, fmt.Errorf("%w: person type must be customer or supplier", shared.ErrValidation)
	}
	if err != nil {
		return Voucher{}, fmt.Errorf("ledger: resolve person: %w", err)
	}

	voucher := Voucher{
		ID:         uuid.New(),
		Type:       req.Type,
		PersonID:   req.PersonID,
		PersonName: personName,
		PersonType: req.PersonType,
		Amount:     req.Amount,
		Currency:   req.Currency,
		Notes:      req.Notes,
		Date:       s.entryDate(req.Date),
	}

	saved, err := s.repo.CreateVoucher(ctx, voucher)
	if err != nil {
		return Voucher{}, fmt.Errorf("ledger: create voucher: %w", err)
	}

	s.invalidateCaches(ctx)
	s.logActivity(ctx, "voucher issued", fmt.Sprintf("%s voucher for %s", saved.Type, saved.PersonName), shared.ActivityVoucher)
	s.notify(ctx, "Voucher issued", fmt.Sprintf("%s: %.0f %s", saved.PersonName, saved.Amount, saved.Currency), "success")
	return saved, nil
}

// EditVoucher changes a voucher's amount and notes. Prior values stay
// retrievable through the edit history.
func (s *Service) EditVoucher(ctx context.Context, id uuid.UUID, req UpdateVoucherRequest) (Voucher, error) {
	if req.Amount <= 0 {
		return Voucher{}, fmt.Errorf("%w: amount must be positive", shared.ErrValidation)
	}
	saved, err := s.repo.UpdateVoucher(ctx, id, req.Amount, req.Notes)
	if err != nil {
		return Voucher{}, fmt.Errorf("ledger: update voucher: %w", err)
	}
	s.invalidateCaches(ctx)
	s.logActivity(ctx, "voucher edited", fmt.Sprintf("%s voucher for %s now %.0f %s", saved.Type, saved.PersonName, saved.Amount, saved.Currency), shared.ActivityVoucher)
	return saved, nil
}

// RecordExpense persists a cash-out expense.
func (s *Service) RecordExpense(ctx context.Context, req CreateExpenseRequest) (Expense, error) {
	if req.Amount <= 0 {
		return Expense{}, fmt.Errorf("%w: amount must be positive", shared.ErrValidation)
	}
	if !ValidCurrency(req.Currency) {
		return Expense{}, fmt.Errorf("%w: unsupported currency %q", shared.ErrValidation, req.Currency)
	}
	if len(strings.TrimSpace(req.Title)) < 2 {
		return Expense{}, fmt.Errorf("%w: expense title too short", shared.ErrValidation)
	}

	expense := Expense{
		ID:       uuid.New(),
		Title:    strings.TrimSpace(req.Title),
		Category: req.Category,
		Amount:   req.Amount,
		Currency: req.Currency,
		Notes:    req.Notes,
		Date:     s.entryDate(req.Date),
	}

	saved, err := s.repo.CreateExpense(ctx, expense)
	if err != nil {
		return Expense{}, fmt.Errorf("ledger: create expense: %w", err)
	}

	s.invalidateCaches(ctx)
	s.logActivity(ctx, "expense recorded", saved.Title, shared.ActivitySystem)
	s.notify(ctx, "Expense recorded", fmt.Sprintf("%s: %.0f %s", saved.Title, saved.Amount, saved.Currency), "success")
	return saved, nil
}

// RecordExpenseTemplate saves a recurring expense template.
func (s *Service) RecordExpenseTemplate(ctx context.Context, req CreateExpenseTemplateRequest) (ExpenseTemplate, error) {
	if req.Amount <= 0 {
		return ExpenseTemplate{}, fmt.Errorf("%w: amount must be positive", shared.ErrValidation)
	}
	if !ValidCurrency(req.Currency) {
		return ExpenseTemplate{}, fmt.Errorf("%w: unsupported currency %q", shared.ErrValidation, req.Currency)
	}
	tmpl := ExpenseTemplate{
		ID:        uuid.New(),
		Title:     strings.TrimSpace(req.Title),
		Category:  req.Category,
		Amount:    req.Amount,
		Currency:  req.Currency,
		Frequency: req.Frequency,
	}
	saved, err := s.repo.CreateExpenseTemplate(ctx, tmpl)
	if err != nil {
		return ExpenseTemplate{}, fmt.Errorf("ledger: create expense template: %w", err)
	}
	return saved, nil
}

// RecordWaste persists a spoiled-stock record and decrements stock.
func (s *Service) RecordWaste(ctx context.Context, req CreateWasteRequest) (Waste, error) {
	if req.Quantity <= 0 {
		return Waste{}, fmt.Errorf("%w: quantity must be positive", shared.ErrValidation)
	}
	if req.EstimatedLoss < 0 {
		return Waste{}, fmt.Errorf("%w: estimated loss must not be negative", shared.ErrValidation)
	}
	if len(strings.TrimSpace(req.Reason)) < 5 {
		return Waste{}, fmt.Errorf("%w: waste reason too short", shared.ErrValidation)
	}

	waste := Waste{
		ID:            uuid.New(),
		QatType:       strings.TrimSpace(req.QatType),
		Quantity:      req.Quantity,
		EstimatedLoss: req.EstimatedLoss,
		Reason:        strings.TrimSpace(req.Reason),
		Date:          s.entryDate(req.Date),
	}

	saved, clamped, err := s.repo.CreateWaste(ctx, waste)
	if err != nil {
		return Waste{}, fmt.Errorf("ledger: create waste: %w", err)
	}
	if clamped {
		s.logger.Warn("stock clamped at zero",
			slog.String("qat_type", saved.QatType),
			slog.String("waste_id", saved.ID.String()))
	}

	s.logActivity(ctx, "waste recorded", saved.QatType, shared.ActivityWaste)
	s.notify(ctx, "Waste recorded", fmt.Sprintf("%s: quantity %.0f written off", saved.QatType, saved.Quantity), "warning")
	return saved, nil
}

// RecordOpeningBalance stores a pre-system position. Opening balances live
// in their own ledger and are not folded into computed balances.
func (s *Service) RecordOpeningBalance(ctx context.Context, req CreateOpeningBalanceRequest) (OpeningBalance, error) {
	if req.Amount <= 0 {
		return OpeningBalance{}, fmt.Errorf("%w: amount must be positive", shared.ErrValidation)
	}
	if !ValidCurrency(req.Currency) {
		return OpeningBalance{}, fmt.Errorf("%w: unsupported currency %q", shared.ErrValidation, req.Currency)
	}
	if req.BalanceType != BalanceDebit && req.BalanceType != BalanceCredit {
		return OpeningBalance{}, fmt.Errorf("%w: balance type must be debit or credit", shared.ErrValidation)
	}

	var err error
	switch req.PersonType {
	case PersonCustomer:
		_, err = s.directory.CustomerName(ctx, req.PersonID)
	case PersonSupplier:
		_, err = s.directory.SupplierName(ctx, req.PersonID)
	default:
		return OpeningBalance{}, fmt.Errorf("%w: person type must be customer or supplier", shared.ErrValidation)
	}
	if err != nil {
		return OpeningBalance{}, fmt.Errorf("ledger: resolve person: %w", err)
	}

	balance := OpeningBalance{
		ID:          uuid.New(),
		PersonID:    req.PersonID,
		PersonType:  req.PersonType,
		BalanceType: req.BalanceType,
		Amount:      req.Amount,
		Currency:    req.Currency,
		Notes:       req.Notes,
		Date:        s.entryDate(req.Date),
	}

	saved, err := s.repo.CreateOpeningBalance(ctx, balance)
	if err != nil {
		return OpeningBalance{}, fmt.Errorf("ledger: create opening balance: %w", err)
	}
	s.notify(ctx, "Opening balance saved", fmt.Sprintf("%.0f %s (%s)", saved.Amount, saved.Currency, saved.BalanceType), "success")
	return saved, nil
}

// ReturnSale reverses a sale: the entry is flagged returned and its quantity
// restored to stock in one transaction. A second return of the same sale is
// rejected with shared.ErrConflict and never re-applies the stock change.
func (s *Service) ReturnSale(ctx context.Context, id uuid.UUID) (Sale, error) {
	returned, err := s.repo.ReturnSale(ctx, id)
	if err != nil {
		return Sale{}, fmt.Errorf("ledger: return sale: %w", err)
	}
	s.invalidateCaches(ctx)
	s.logActivity(ctx, "sale returned", fmt.Sprintf("reversed sale %s", id), shared.ActivitySale)
	s.notify(ctx, "Sale returned", fmt.Sprintf("%s: quantity %.0f restored to stock", returned.QatType, returned.Quantity), "success")
	return returned, nil
}

// ReturnPurchase reverses a purchase, removing its quantity from stock.
func (s *Service) ReturnPurchase(ctx context.Context, id uuid.UUID) (Purchase, error) {
	returned, clamped, err := s.repo.ReturnPurchase(ctx, id)
	if err != nil {
		return Purchase{}, fmt.Errorf("ledger: return purchase: %w", err)
	}
	if clamped {
		s.logger.Warn("stock clamped at zero",
			slog.String("qat_type", returned.QatType),
			slog.String("purchase_id", returned.ID.String()))
	}
	s.invalidateCaches(ctx)
	s.logActivity(ctx, "purchase returned", fmt.Sprintf("reversed purchase %s", id), shared.ActivityPurchase)
	s.notify(ctx, "Purchase returned", fmt.Sprintf("%s: quantity %.0f removed from stock", returned.QatType, returned.Quantity), "success")
	return returned, nil
}

// Sales lists all sales, newest first per repository ordering.
func (s *Service) Sales(ctx context.Context) ([]Sale, error) { return s.repo.ListSales(ctx) }

// Purchases lists all purchases.
func (s *Service) Purchases(ctx context.Context) ([]Purchase, error) {
	return s.repo.ListPurchases(ctx)
}

// Vouchers lists all vouchers.
func (s *Service) Vouchers(ctx context.Context) ([]Voucher, error) { return s.repo.ListVouchers(ctx) }

// Expenses lists all expenses.
func (s *Service) Expenses(ctx context.Context) ([]Expense, error) { return s.repo.ListExpenses(ctx) }

// WasteRecords lists all waste entries.
func (s *Service) WasteRecords(ctx context.Context) ([]Waste, error) { return s.repo.ListWaste(ctx) }

// OpeningBalances lists all opening balances.
func (s *Service) OpeningBalances(ctx context.Context) ([]OpeningBalance, error) {
	return s.repo.ListOpeningBalances(ctx)
}

// ExpenseTemplates lists all templates.
func (s *Service) ExpenseTemplates(ctx context.Context) ([]ExpenseTemplate, error) {
	return s.repo.ListExpenseTemplates(ctx)
}

// DeleteSale removes a sale record without touching stock.
func (s *Service) DeleteSale(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteSale(ctx, id); err != nil {
		return err
	}
	s.invalidateCaches(ctx)
	return nil
}

// DeletePurchase removes a purchase record without touching stock.
func (s *Service) DeletePurchase(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeletePurchase(ctx, id); err != nil {
		return err
	}
	s.invalidateCaches(ctx)
	return nil
}

// DeleteVoucher removes a voucher record.
func (s *Service) DeleteVoucher(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteVoucher(ctx, id); err != nil {
		return err
	}
	s.invalidateCaches(ctx)
	return nil
}

// DeleteExpense removes an expense record.
func (s *Service) DeleteExpense(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteExpense(ctx, id); err != nil {
		return err
	}
	s.invalidateCaches(ctx)
	return nil
}

// DeleteWaste removes a waste record.
func (s *Service) DeleteWaste(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteWaste(ctx, id)
}
