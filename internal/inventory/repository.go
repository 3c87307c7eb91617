package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mizan-erp/mizan/internal/shared"
)

// PGRepository persists categories in PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs PGRepository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// List returns all categories ordered by name.
func (r *PGRepository) List(ctx context.Context) ([]Category, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, stock, price, currency, low_stock_threshold, created_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var categories []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Stock, &c.Price, &c.Currency, &c.LowStockThreshold, &c.CreatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// GetByName fetches one category by its exact name.
func (r *PGRepository) GetByName(ctx context.Context, name string) (Category, error) {
	var c Category
	err := r.pool.QueryRow(ctx, `SELECT id, name, stock, price, currency, low_stock_threshold, created_at FROM categories WHERE name = $1`, name).
		Scan(&c.ID, &c.Name, &c.Stock, &c.Price, &c.Currency, &c.LowStockThreshold, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Category{}, fmt.Errorf("%w: category %q", shared.ErrNotFound, name)
		}
		return Category{}, err
	}
	return c, nil
}

// Create inserts a category.
func (r *PGRepository) Create(ctx context.Context, c Category) (Category, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO categories (id, name, stock, price, currency, low_stock_threshold, created_at)
VALUES ($1, $2, $3, $4, $5, $6, NOW()) RETURNING created_at`,
		c.ID, c.Name, c.Stock, c.Price, c.Currency, c.LowStockThreshold).Scan(&c.CreatedAt)
	if err != nil {
		return Category{}, err
	}
	return c, nil
}

// Delete removes a category row.
func (r *PGRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: category %s", shared.ErrNotFound, id)
	}
	return nil
}

// EntryCount reports how many ledger rows reference the category name.
func (r *PGRepository) EntryCount(ctx context.Context, name string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT
  (SELECT COUNT(*) FROM sales WHERE qat_type = $1) +
  (SELECT COUNT(*) FROM purchases WHERE qat_type = $1) +
  (SELECT COUNT(*) FROM waste WHERE qat_type = $1)`, name).Scan(&count)
	return count, err
}
