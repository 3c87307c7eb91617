package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mizan-erp/mizan/internal/platform/db"
	"github.com/mizan-erp/mizan/internal/shared"
)

// PGRepository persists ledger entries in PostgreSQL. Entry inserts and the
// matching stock movement share one repeatable-read transaction.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs PGRepository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const saleColumns = `id, customer_id, customer_name, qat_type, quantity, unit_price, total, status, currency, COALESCE(notes, ''), date, is_returned, returned_at, created_at`

func scanSale(row pgx.Row) (Sale, error) {
	var s Sale
	err := row.Scan(&s.ID, &s.CustomerID, &s.CustomerName, &s.QatType, &s.Quantity, &s.UnitPrice, &s.Total,
		&s.Status, &s.Currency, &s.Notes, &s.Date, &s.IsReturned, &s.ReturnedAt, &s.CreatedAt)
	return s, err
}

// ListSales returns all sales, newest first.
func (r *PGRepository) ListSales(ctx context.Context) ([]Sale, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+saleColumns+` FROM sales ORDER BY date DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var sales []Sale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		sales = append(sales, s)
	}
	return sales, rows.Err()
}

const purchaseColumns = `id, supplier_id, supplier_name, qat_type, quantity, unit_price, total, status, currency, COALESCE(notes, ''), date, is_returned, returned_at, created_at`

func scanPurchase(row pgx.Row) (Purchase, error) {
	var p Purchase
	err := row.Scan(&p.ID, &p.SupplierID, &p.SupplierName, &p.QatType, &p.Quantity, &p.UnitPrice, &p.Total,
		&p.Status, &p.Currency, &p.Notes, &p.Date, &p.IsReturned, &p.ReturnedAt, &p.CreatedAt)
	return p, err
}

// ListPurchases returns all purchases, newest first.
func (r *PGRepository) ListPurchases(ctx context.Context) ([]Purchase, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+purchaseColumns+` FROM purchases ORDER BY date DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var purchases []Purchase
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, err
		}
		purchases = append(purchases, p)
	}
	return purchases, rows.Err()
}

// ListVouchers returns all vouchers, newest first.
func (r *PGRepository) ListVouchers(ctx context.Context) ([]Voucher, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, type, person_id, person_name, person_type, amount, currency, COALESCE(notes, ''), date, COALESCE(edit_history, '[]'::jsonb), created_at FROM vouchers ORDER BY date DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var vouchers []Voucher
	for rows.Next() {
		var v Voucher
		if err := rows.Scan(&v.ID, &v.Type, &v.PersonID, &v.PersonName, &v.PersonType, &v.Amount, &v.Currency, &v.Notes, &v.Date, &v.EditHistory, &v.CreatedAt); err != nil {
			return nil, err
		}
		vouchers = append(vouchers, v)
	}
	return vouchers, rows.Err()
}

// ListExpenses returns all expenses, newest first.
func (r *PGRepository) ListExpenses(ctx context.Context) ([]Expense, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, title, category, amount, currency, COALESCE(notes, ''), date, created_at FROM expenses ORDER BY date DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var expenses []Expense
	for rows.Next() {
		var e Expense
		if err := rows.Scan(&e.ID, &e.Title, &e.Category, &e.Amount, &e.Currency, &e.Notes, &e.Date, &e.CreatedAt); err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

// ListWaste returns all waste records, newest first.
func (r *PGRepository) ListWaste(ctx context.Context) ([]Waste, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, qat_type, quantity, estimated_loss, reason, date, created_at FROM waste ORDER BY date DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var records []Waste
	for rows.Next() {
		var w Waste
		if err := rows.Scan(&w.ID, &w.QatType, &w.Quantity, &w.EstimatedLoss, &w.Reason, &w.Date, &w.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, w)
	}
	return records, rows.Err()
}

// ListOpeningBalances returns all opening balances.
func (r *PGRepository) ListOpeningBalances(ctx context.Context) ([]OpeningBalance, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, person_id, person_type, balance_type, amount, currency, COALESCE(notes, ''), date, created_at FROM opening_balances ORDER BY date DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var balances []OpeningBalance
	for rows.Next() {
		var b OpeningBalance
		if err := rows.Scan(&b.ID, &b.PersonID, &b.PersonType, &b.BalanceType, &b.Amount, &b.Currency, &b.Notes, &b.Date, &b.CreatedAt); err != nil {
			return nil, err
		}
		balances = append(balances, b)
	}
	return balances, rows.Err()
}

// ListExpenseTemplates returns all recurring-expense templates.
func (r *PGRepository) ListExpenseTemplates(ctx context.Context) ([]ExpenseTemplate, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, title, category, amount, currency, frequency, created_at FROM expense_templates ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var templates []ExpenseTemplate
	for rows.Next() {
		var t ExpenseTemplate
		if err := rows.Scan(&t.ID, &t.Title, &t.Category, &t.Amount, &t.Currency, &t.Frequency, &t.CreatedAt); err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

// adjustStock applies a clamped delta to the named category inside tx and
// reports whether clamping occurred. The row is locked for the duration of
// the transaction.
func adjustStock(ctx context.Context, tx pgx.Tx, qatType string, delta float64) (bool, error) {
	var stock float64
	err := tx.QueryRow(ctx, `SELECT stock FROM categories WHERE name = $1 FOR UPDATE`, qatType).Scan(&stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, fmt.Errorf("%w: category %q", shared.ErrNotFound, qatType)
		}
		return false, err
	}
	newStock := stock + delta
	clamped := false
	if newStock < 0 {
		newStock = 0
		clamped = true
	}
	if _, err := tx.Exec(ctx, `UPDATE categories SET stock = $2 WHERE name = $1`, qatType, newStock); err != nil {
		return false, err
	}
	return clamped, nil
}

func (r *PGRepository) withTx(ctx context.Context, fn func(pgx.Tx) error) error {
	return db.WithTx(ctx, r.pool, fn)
}

// CreateSale inserts the sale and decrements stock in one transaction.
func (r *PGRepository) CreateSale(ctx context.Context, s Sale) (Sale, bool, error) {
	var clamped bool
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `INSERT INTO sales (id, customer_id, customer_name, qat_type, quantity, unit_price, total, status, currency, notes, date, is_returned, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, FALSE, NOW()) RETURNING created_at`,
			s.ID, s.CustomerID, s.CustomerName, s.QatType, s.Quantity, s.UnitPrice, s.Total, s.Status, s.Currency, s.Notes, s.Date).Scan(&s.CreatedAt)
		if err != nil {
			return err
		}
		clamped, err = adjustStock(ctx, tx, s.QatType, -s.Quantity)
		return err
	})
	if err != nil {
		return Sale{}, false, err
	}
	return s, clamped, nil
}

// CreatePurchase inserts the purchase and increments stock in one transaction.
func (r *PGRepository) CreatePurchase(ctx context.Context, p Purchase) (Purchase, error) {
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `INSERT INTO purchases (id, supplier_id, supplier_name, qat_type, quantity, unit_price, total, status, currency, notes, date, is_returned, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, FALSE, NOW()) RETURNING created_at`,
			p.ID, p.SupplierID, p.SupplierName, p.QatType, p.Quantity, p.UnitPrice, p.Total, p.Status, p.Currency, p.Notes, p.Date).Scan(&p.CreatedAt)
		if err != nil {
			return err
		}
		_, err = adjustStock(ctx, tx, p.QatType, p.Quantity)
		return err
	})
	if err != nil {
		return Purchase{}, err
	}
	return p, nil
}

// CreateVoucher inserts a voucher.
func (r *PGRepository) CreateVoucher(ctx context.Context, v Voucher) (Voucher, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO vouchers (id, type, person_id, person_name, person_type, amount, currency, notes, date, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW()) RETURNING created_at`,
		v.ID, v.Type, v.PersonID, v.PersonName, v.PersonType, v.Amount, v.Currency, v.Notes, v.Date).Scan(&v.CreatedAt)
	if err != nil {
		return Voucher{}, err
	}
	return v, nil
}

// UpdateVoucher rewrites a voucher's amount and notes, pushing the previous
// values onto its edit history.
func (r *PGRepository) UpdateVoucher(ctx context.Context, id uuid.UUID, amount float64, notes string) (Voucher, error) {
	var updated Voucher
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		v := Voucher{ID: id}
		err := tx.QueryRow(ctx, `SELECT type, person_id, person_name, person_type, amount, currency, COALESCE(notes, ''), date, COALESCE(edit_history, '[]'::jsonb), created_at FROM vouchers WHERE id = $1 FOR UPDATE`, id).
			Scan(&v.Type, &v.PersonID, &v.PersonName, &v.PersonType, &v.Amount, &v.Currency, &v.Notes, &v.Date, &v.EditHistory, &v.CreatedAt)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("%w: voucher %s", shared.ErrNotFound, id)
			}
			return err
		}
		v.EditHistory = append(v.EditHistory, VoucherEdit{
			Date:           time.Now().UTC(),
			PreviousAmount: v.Amount,
			PreviousNotes:  v.Notes,
		})
		if _, err := tx.Exec(ctx, `UPDATE vouchers SET amount = $2, notes = $3, edit_history = $4 WHERE id = $1`, id, amount, notes, v.EditHistory); err != nil {
			return err
		}
		v.Amount = amount
		v.Notes = notes
		updated = v
		return nil
	})
	if err != nil {
		return Voucher{}, err
	}
	return updated, nil
}

// CreateExpense inserts an expense.
func (r *PGRepository) CreateExpense(ctx context.Context, e Expense) (Expense, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO expenses (id, title, category, amount, currency, notes, date, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, NOW()) RETURNING created_at`,
		e.ID, e.Title, e.Category, e.Amount, e.Currency, e.Notes, e.Date).Scan(&e.CreatedAt)
	if err != nil {
		return Expense{}, err
	}
	return e, nil
}

// CreateWaste inserts the record and decrements stock in one transaction.
func (r *PGRepository) CreateWaste(ctx context.Context, w Waste) (Waste, bool, error) {
	var clamped bool
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `INSERT INTO waste (id, qat_type, quantity, estimated_loss, reason, date, created_at)
VALUES ($1, $2, $3, $4, $5, $6, NOW()) RETURNING created_at`,
			w.ID, w.QatType, w.Quantity, w.EstimatedLoss, w.Reason, w.Date).Scan(&w.CreatedAt)
		if err != nil {
			return err
		}
		clamped, err = adjustStock(ctx, tx, w.QatType, -w.Quantity)
		return err
	})
	if err != nil {
		return Waste{}, false, err
	}
	return w, clamped, nil
}

// CreateOpeningBalance inserts an opening balance.
func (r *PGRepository) CreateOpeningBalance(ctx context.Context, b OpeningBalance) (OpeningBalance, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO opening_balances (id, person_id, person_type, balance_type, amount, currency, notes, date, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW()) RETURNING created_at`,
		b.ID, b.PersonID, b.PersonType, b.BalanceType, b.Amount, b.Currency, b.Notes, b.Date).Scan(&b.CreatedAt)
	if err != nil {
		return OpeningBalance{}, err
	}
	return b, nil
}

// CreateExpenseTemplate inserts a template.
func (r *PGRepository) CreateExpenseTemplate(ctx context.Context, t ExpenseTemplate) (ExpenseTemplate, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO expense_templates (id, title, category, amount, currency, frequency, created_at)
VALUES ($1, $2, $3, $4, $5, $6, NOW()) RETURNING created_at`,
		t.ID, t.Title, t.Category, t.Amount, t.Currency, t.Frequency).Scan(&t.CreatedAt)
	if err != nil {
		return ExpenseTemplate{}, err
	}
	return t, nil
}

// ReturnSale flags the sale returned and restores its quantity to stock in
// one transaction. Already-returned sales yield shared.ErrConflict without
// touching stock.
func (r *PGRepository) ReturnSale(ctx context.Context, id uuid.UUID) (Sale, error) {
	var returned Sale
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		sale, err := scanSale(tx.QueryRow(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("%w: sale %s", shared.ErrNotFound, id)
			}
			return err
		}
		if sale.IsReturned {
			return fmt.Errorf("%w: sale %s already returned", shared.ErrConflict, id)
		}
		err = tx.QueryRow(ctx, `UPDATE sales SET is_returned = TRUE, returned_at = NOW() WHERE id = $1 RETURNING returned_at`, id).Scan(&sale.ReturnedAt)
		if err != nil {
			return err
		}
		sale.IsReturned = true
		if _, err := adjustStock(ctx, tx, sale.QatType, sale.Quantity); err != nil {
			return err
		}
		returned = sale
		return nil
	})
	if err != nil {
		return Sale{}, err
	}
	return returned, nil
}

// ReturnPurchase flags the purchase returned and removes its quantity from
// stock, clamped at zero, in one transaction.
func (r *PGRepository) ReturnPurchase(ctx context.Context, id uuid.UUID) (Purchase, bool, error) {
	var returned Purchase
	var clamped bool
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		purchase, err := scanPurchase(tx.QueryRow(ctx, `SELECT `+purchaseColumns+` FROM purchases WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("%w: purchase %s", shared.ErrNotFound, id)
			}
			return err
		}
		if purchase.IsReturned {
			return fmt.Errorf("%w: purchase %s already returned", shared.ErrConflict, id)
		}
		err = tx.QueryRow(ctx, `UPDATE purchases SET is_returned = TRUE, returned_at = NOW() WHERE id = $1 RETURNING returned_at`, id).Scan(&purchase.ReturnedAt)
		if err != nil {
			return err
		}
		purchase.IsReturned = true
		clamped, err = adjustStock(ctx, tx, purchase.QatType, -purchase.Quantity)
		if err != nil {
			return err
		}
		returned = purchase
		return nil
	})
	if err != nil {
		return Purchase{}, false, err
	}
	return returned, clamped, nil
}

func (r *PGRepository) deleteByID(ctx context.Context, table string, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM `+table+` WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s %s", shared.ErrNotFound, table, id)
	}
	return nil
}

// DeleteSale removes a sale row.
func (r *PGRepository) DeleteSale(ctx context.Context, id uuid.UUID) error {
	return r.deleteByID(ctx, "sales", id)
}

// DeletePurchase removes a purchase row.
func (r *PGRepository) DeletePurchase(ctx context.Context, id uuid.UUID) error {
	return r.deleteByID(ctx, "purchases", id)
}

// DeleteVoucher removes a voucher row.
func (r *PGRepository) DeleteVoucher(ctx context.Context, id uuid.UUID) error {
	return r.deleteByID(ctx, "vouchers", id)
}

// DeleteExpense removes an expense row.
func (r *PGRepository) DeleteExpense(ctx context.Context, id uuid.UUID) error {
	return r.deleteByID(ctx, "expenses", id)
}

// DeleteWaste removes a waste row.
func (r *PGRepository) DeleteWaste(ctx context.Context, id uuid.UUID) error {
	return r.deleteByID(ctx, "waste", id)
}
