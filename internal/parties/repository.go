package parties

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mizan-erp/mizan/internal/shared"
)

// PGRepository provides PostgreSQL backed persistence for the directories.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const uniqueViolation = "23505"

func mapPGError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", shared.ErrDuplicate, pgErr.ConstraintName)
	}
	return err
}

// ListCustomers returns all customers ordered by name.
func (r *PGRepository) ListCustomers(ctx context.Context) ([]Customer, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, phone, COALESCE(address, ''), created_at FROM customers ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var customers []Customer
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.Address, &c.CreatedAt); err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

// GetCustomer fetches one customer by id.
func (r *PGRepository) GetCustomer(ctx context.Context, id uuid.UUID) (Customer, error) {
	var c Customer
	err := r.pool.QueryRow(ctx, `SELECT id, name, phone, COALESCE(address, ''), created_at FROM customers WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.Phone, &c.Address, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Customer{}, fmt.Errorf("%w: customer %s", shared.ErrNotFound, id)
		}
		return Customer{}, err
	}
	return c, nil
}

// CreateCustomer inserts a customer.
func (r *PGRepository) CreateCustomer(ctx context.Context, c Customer) (Customer, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO customers (id, name, phone, address, created_at)
VALUES ($1, $2, $3, $4, NOW()) RETURNING created_at`, c.ID, c.Name, c.Phone, c.Address).Scan(&c.CreatedAt)
	if err != nil {
		return Customer{}, mapPGError(err)
	}
	return c, nil
}

// DeleteCustomer removes a customer row.
func (r *PGRepository) DeleteCustomer(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: customer %s", shared.ErrNotFound, id)
	}
	return nil
}

// CustomerEntryCount reports how many ledger rows reference the customer.
func (r *PGRepository) CustomerEntryCount(ctx context.Context, id uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT
  (SELECT COUNT(*) FROM sales WHERE customer_id = $1) +
  (SELECT COUNT(*) FROM vouchers WHERE person_id = $1) +
  (SELECT COUNT(*) FROM opening_balances WHERE person_id = $1)`, id).Scan(&count)
	return count, err
}

// ListSuppliers returns all suppliers ordered by name.
func (r *PGRepository) ListSuppliers(ctx context.Context) ([]Supplier, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, phone, COALESCE(region, ''), created_at FROM suppliers ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var suppliers []Supplier
	for rows.Next() {
		var s Supplier
		if err := rows.Scan(&s.ID, &s.Name, &s.Phone, &s.Region, &s.CreatedAt); err != nil {
			return nil, err
		}
		suppliers = append(suppliers, s)
	}
	return suppliers, rows.Err()
}

// GetSupplier fetches one supplier by id.
func (r *PGRepository) GetSupplier(ctx context.Context, id uuid.UUID) (Supplier, error) {
	var s Supplier
	err := r.pool.QueryRow(ctx, `SELECT id, name, phone, COALESCE(region, ''), created_at FROM suppliers WHERE id = $1`, id).
		Scan(&s.ID, &s.Name, &s.Phone, &s.Region, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Supplier{}, fmt.Errorf("%w: supplier %s", shared.ErrNotFound, id)
		}
		return Supplier{}, err
	}
	return s, nil
}

// CreateSupplier inserts a supplier.
func (r *PGRepository) CreateSupplier(ctx context.Context, s Supplier) (Supplier, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO suppliers (id, name, phone, region, created_at)
VALUES ($1, $2, $3, $4, NOW()) RETURNING created_at`, s.ID, s.Name, s.Phone, s.Region).Scan(&s.CreatedAt)
	if err != nil {
		return Supplier{}, mapPGError(err)
	}
	return s, nil
}

// DeleteSupplier removes a supplier row.
func (r *PGRepository) DeleteSupplier(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM suppliers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: supplier %s", shared.ErrNotFound, id)
	}
	return nil
}

// SupplierEntryCount reports how many ledger rows reference the supplier.
func (r *PGRepository) SupplierEntryCount(ctx context.Context, id uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT
  (SELECT COUNT(*) FROM purchases WHERE supplier_id = $1) +
  (SELECT COUNT(*) FROM vouchers WHERE person_id = $1) +
  (SELECT COUNT(*) FROM opening_balances WHERE person_id = $1)`, id).Scan(&count)
	return count, err
}
