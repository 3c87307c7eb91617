// Package ledger holds the bookkeeping entry model and the write path that
// keeps entries and qat stock consistent.
package ledger

import (
	"time"

	"github.com/google/uuid"
)

// Currency enumerates the three currencies the agency trades in. Balances
// are never summed across currencies.
type Currency string

const (
	CurrencyYER Currency = "YER"
	CurrencySAR Currency = "SAR"
	CurrencyOMR Currency = "OMR"
)

// Currencies lists every supported currency in display order.
func Currencies() []Currency {
	return []Currency{CurrencyYER, CurrencySAR, CurrencyOMR}
}

// ValidCurrency reports whether c is one of the supported currencies.
func ValidCurrency(c Currency) bool {
	switch c {
	case CurrencyYER, CurrencySAR, CurrencyOMR:
		return true
	}
	return false
}

// EntryStatus marks how a sale or purchase was settled.
type EntryStatus string

const (
	// StatusCash entries are settled at the moment of recording and flow
	// into cash-on-hand, never into a person's balance.
	StatusCash EntryStatus = "cash"
	// StatusCredit entries remain open against the person until offset by
	// vouchers.
	StatusCredit EntryStatus = "credit"
)

// VoucherType distinguishes cash-in receipts from cash-out payments.
type VoucherType string

const (
	VoucherReceipt VoucherType = "receipt"
	VoucherPayment VoucherType = "payment"
)

// PersonType tags which directory a voucher or opening balance refers to.
type PersonType string

const (
	PersonCustomer PersonType = "customer"
	PersonSupplier PersonType = "supplier"
)

// BalanceType marks the direction of an opening balance.
type BalanceType string

const (
	BalanceDebit  BalanceType = "debit"
	BalanceCredit BalanceType = "credit"
)

// Sale records an outbound transaction. CustomerName and Total are snapshots
// taken at creation time; renaming the customer later must not rewrite them.
type Sale struct {
	ID           uuid.UUID   `json:"id"`
	CustomerID   uuid.UUID   `json:"customer_id"`
	CustomerName string      `json:"customer_name"`
	QatType      string      `json:"qat_type"`
	Quantity     float64     `json:"quantity"`
	UnitPrice    float64     `json:"unit_price"`
	Total        float64     `json:"total"`
	Status       EntryStatus `json:"status"`
	Currency     Currency    `json:"currency"`
	Notes        string      `json:"notes,omitempty"`
	Date         time.Time   `json:"date"`
	IsReturned   bool        `json:"is_returned"`
	ReturnedAt   *time.Time  `json:"returned_at,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
}

// Purchase records inbound stock from a supplier, symmetric to Sale.
type Purchase struct {
	ID           uuid.UUID   `json:"id"`
	SupplierID   uuid.UUID   `json:"supplier_id"`
	SupplierName string      `json:"supplier_name"`
	QatType      string      `json:"qat_type"`
	Quantity     float64     `json:"quantity"`
	UnitPrice    float64     `json:"unit_price"`
	Total        float64     `json:"total"`
	Status       EntryStatus `json:"status"`
	Currency     Currency    `json:"currency"`
	Notes        string      `json:"notes,omitempty"`
	Date         time.Time   `json:"date"`
	IsReturned   bool        `json:"is_returned"`
	ReturnedAt   *time.Time  `json:"returned_at,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
}

// VoucherEdit keeps the pre-edit amount and notes for audit.
type VoucherEdit struct {
	Date           time.Time `json:"date"`
	PreviousAmount float64   `json:"previous_amount"`
	PreviousNotes  string    `json:"previous_notes"`
}

// Voucher records a cash movement against a person. The Type/PersonType pair
// is orthogonal: calculators honour whatever combination is stored.
type Voucher struct {
	ID          uuid.UUID     `json:"id"`
	Type        VoucherType   `json:"type"`
	PersonID    uuid.UUID     `json:"person_id"`
	PersonName  string        `json:"person_name"`
	PersonType  PersonType    `json:"person_type"`
	Amount      float64       `json:"amount"`
	Currency    Currency      `json:"currency"`
	Notes       string        `json:"notes,omitempty"`
	Date        time.Time     `json:"date"`
	EditHistory []VoucherEdit `json:"edit_history,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
}

// Expense is a pure cash-out entry not tied to any person.
type Expense struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Category  string    `json:"category"`
	Amount    float64   `json:"amount"`
	Currency  Currency  `json:"currency"`
	Notes     string    `json:"notes,omitempty"`
	Date      time.Time `json:"date"`
	CreatedAt time.Time `json:"created_at"`
}

// ExpenseFrequency schedules a recurring expense template.
type ExpenseFrequency string

const (
	FrequencyDaily   ExpenseFrequency = "daily"
	FrequencyWeekly  ExpenseFrequency = "weekly"
	FrequencyMonthly ExpenseFrequency = "monthly"
	FrequencyYearly  ExpenseFrequency = "yearly"
)

// ExpenseTemplate predefines a recurring expense for quick entry.
type ExpenseTemplate struct {
	ID        uuid.UUID        `json:"id"`
	Title     string           `json:"title"`
	Category  string           `json:"category"`
	Amount    float64          `json:"amount"`
	Currency  Currency         `json:"currency"`
	Frequency ExpenseFrequency `json:"frequency"`
	CreatedAt time.Time        `json:"created_at"`
}

// Waste records spoiled stock. It decrements inventory and feeds loss
// reporting, but never a person's balance.
type Waste struct {
	ID            uuid.UUID `json:"id"`
	QatType       string    `json:"qat_type"`
	Quantity      float64   `json:"quantity"`
	EstimatedLoss float64   `json:"estimated_loss"`
	Reason        string    `json:"reason"`
	Date          time.Time `json:"date"`
	CreatedAt     time.Time `json:"created_at"`
}

// OpeningBalance is a manually entered pre-system position for a person.
// It is tracked as its own ledger and not folded into computed balances.
type OpeningBalance struct {
	ID          uuid.UUID   `json:"id"`
	PersonID    uuid.UUID   `json:"person_id"`
	PersonType  PersonType  `json:"person_type"`
	BalanceType BalanceType `json:"balance_type"`
	Amount      float64     `json:"amount"`
	Currency    Currency    `json:"currency"`
	Notes       string      `json:"notes,omitempty"`
	Date        time.Time   `json:"date"`
	CreatedAt   time.Time   `json:"created_at"`
}
