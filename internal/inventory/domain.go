// Package inventory tracks qat categories and their stock levels. Stock is
// the one piece of mutable shared state outside the append-only ledger.
package inventory

import (
	"time"

	"github.com/google/uuid"

	"github.com/mizan-erp/mizan/internal/ledger"
)

// Category is a qat variety held in stock.
type Category struct {
	ID                uuid.UUID       `json:"id"`
	Name              string          `json:"name"`
	Stock             float64         `json:"stock"`
	Price             float64         `json:"price"`
	Currency          ledger.Currency `json:"currency"`
	LowStockThreshold float64         `json:"low_stock_threshold"`
	CreatedAt         time.Time       `json:"created_at"`
}

// LowStock reports whether the category sits at or below its threshold.
func (c Category) LowStock() bool {
	return c.Stock <= c.LowStockThreshold
}

// CreateCategoryRequest carries a new category registration.
type CreateCategoryRequest struct {
	Name              string          `json:"name" validate:"required,min=1,max=100"`
	Stock             float64         `json:"stock" validate:"gte=0"`
	Price             float64         `json:"price" validate:"gte=0"`
	Currency          ledger.Currency `json:"currency" validate:"required"`
	LowStockThreshold float64         `json:"low_stock_threshold" validate:"gte=0"`
}
