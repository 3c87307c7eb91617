package ledger

import (
	"time"

	"github.com/google/uuid"
)

// CreateSaleRequest carries a new sale entry. Total is always computed
// server-side from quantity and unit price.
type CreateSaleRequest struct {
	CustomerID uuid.UUID   `json:"customer_id" validate:"required"`
	QatType    string      `json:"qat_type" validate:"required"`
	Quantity   float64     `json:"quantity" validate:"required,gt=0"`
	UnitPrice  float64     `json:"unit_price" validate:"gte=0"`
	Status     EntryStatus `json:"status" validate:"required"`
	Currency   Currency    `json:"currency" validate:"required"`
	Notes      string      `json:"notes,omitempty"`
	Date       time.Time   `json:"date"`
}

// CreatePurchaseRequest carries a new purchase entry.
type CreatePurchaseRequest struct {
	SupplierID uuid.UUID   `json:"supplier_id" validate:"required"`
	QatType    string      `json:"qat_type" validate:"required"`
	Quantity   float64     `json:"quantity" validate:"required,gt=0"`
	UnitPrice  float64     `json:"unit_price" validate:"gte=0"`
	Status     EntryStatus `json:"status" validate:"required"`
	Currency   Currency    `json:"currency" validate:"required"`
	Notes      string      `json:"notes,omitempty"`
	Date       time.Time   `json:"date"`
}

// CreateVoucherRequest carries a new receipt or payment voucher.
type CreateVoucherRequest struct {
	Type       VoucherType `json:"type" validate:"required"`
	PersonID   uuid.UUID   `json:"person_id" validate:"required"`
	PersonType PersonType  `json:"person_type" validate:"required"`
	Amount     float64     `json:"amount" validate:"required,gt=0"`
	Currency   Currency    `json:"currency" validate:"required"`
	Notes      string      `json:"notes,omitempty"`
	Date       time.Time   `json:"date"`
}

// UpdateVoucherRequest amends a voucher's amount and notes. The previous
// values are preserved in the voucher's edit history.
type UpdateVoucherRequest struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
	Notes  string  `json:"notes,omitempty"`
}

// CreateExpenseRequest carries a new expense entry.
type CreateExpenseRequest struct {
	Title    string    `json:"title" validate:"required,min=2"`
	Category string    `json:"category" validate:"required"`
	Amount   float64   `json:"amount" validate:"required,gt=0"`
	Currency Currency  `json:"currency" validate:"required"`
	Notes    string    `json:"notes,omitempty"`
	Date     time.Time `json:"date"`
}

// CreateExpenseTemplateRequest predefines a recurring expense.
type CreateExpenseTemplateRequest struct {
	Title     string           `json:"title" validate:"required,min=2"`
	Category  string           `json:"category" validate:"required"`
	Amount    float64          `json:"amount" validate:"required,gt=0"`
	Currency  Currency         `json:"currency" validate:"required"`
	Frequency ExpenseFrequency `json:"frequency" validate:"required"`
}

// CreateWasteRequest carries a spoiled-stock record.
type CreateWasteRequest struct {
	QatType       string    `json:"qat_type" validate:"required"`
	Quantity      float64   `json:"quantity" validate:"required,gt=0"`
	EstimatedLoss float64   `json:"estimated_loss" validate:"gte=0"`
	Reason        string    `json:"reason" validate:"required,min=5"`
	Date          time.Time `json:"date"`
}

// CreateOpeningBalanceRequest records a pre-system position for a person.
type CreateOpeningBalanceRequest struct {
	PersonID    uuid.UUID   `json:"person_id" validate:"required"`
	PersonType  PersonType  `json:"person_type" validate:"required"`
	BalanceType BalanceType `json:"balance_type" validate:"required"`
	Amount      float64     `json:"amount" validate:"required,gt=0"`
	Currency    Currency    `json:"currency" validate:"required"`
	Notes       string      `json:"notes,omitempty"`
	Date        time.Time   `json:"date"`
}
