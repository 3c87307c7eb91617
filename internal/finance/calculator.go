// Package finance derives balances, the budget summary, and account
// statements from ledger snapshots. Every calculation here is a pure fold
// over in-memory collections; nothing in this package writes.
package finance

import (
	"github.com/google/uuid"

	"github.com/mizan-erp/mizan/internal/ledger"
)

// CustomerBalance computes what a customer owes in one currency: the sum of
// their non-returned credit sales minus the sum of their receipt vouchers.
// Positive means the customer owes the agency; negative means the agency
// owes the customer. Cash-status sales never enter a balance, and records
// in any other currency contribute nothing.
func CustomerBalance(customerID uuid.UUID, currency ledger.Currency, sales []ledger.Sale, vouchers []ledger.Voucher) float64 {
	var debt float64
	for _, s := range sales {
		if s.CustomerID != customerID || s.Currency != currency {
			continue
		}
		if s.Status != ledger.StatusCredit || s.IsReturned {
			continue
		}
		debt += s.Total
	}
	var paid float64
	for _, v := range vouchers {
		if v.PersonID != customerID || v.Currency != currency {
			continue
		}
		if v.Type != ledger.VoucherReceipt {
			continue
		}
		paid += v.Amount
	}
	return debt - paid
}

// SupplierBalance mirrors CustomerBalance: non-returned credit purchases
// minus payment vouchers. Positive means the agency owes the supplier.
func SupplierBalance(supplierID uuid.UUID, currency ledger.Currency, purchases []ledger.Purchase, vouchers []ledger.Voucher) float64 {
	var owed float64
	for _, p := range purchases {
		if p.SupplierID != supplierID || p.Currency != currency {
			continue
		}
		if p.Status != ledger.StatusCredit || p.IsReturned {
			continue
		}
		owed += p.Total
	}
	var paid float64
	for _, v := range vouchers {
		if v.PersonID != supplierID || v.Currency != currency {
			continue
		}
		if v.Type != ledger.VoucherPayment {
			continue
		}
		paid += v.Amount
	}
	return owed - paid
}

// PersonBalance dispatches on person type.
func PersonBalance(personID uuid.UUID, personType ledger.PersonType, currency ledger.Currency, snap Snapshot) float64 {
	switch personType {
	case ledger.PersonCustomer:
		return CustomerBalance(personID, currency, snap.Sales, snap.Vouchers)
	case ledger.PersonSupplier:
		return SupplierBalance(personID, currency, snap.Purchases, snap.Vouchers)
	}
	return 0
}

// PersonBalances computes one balance per supported currency.
func PersonBalances(personID uuid.UUID, personType ledger.PersonType, snap Snapshot) map[ledger.Currency]float64 {
	balances := make(map[ledger.Currency]float64, len(ledger.Currencies()))
	for _, currency := range ledger.Currencies() {
		balances[currency] = PersonBalance(personID, personType, currency, snap)
	}
	return balances
}
