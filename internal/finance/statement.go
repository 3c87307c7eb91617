package finance

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/mizan-erp/mizan/internal/ledger"
)

// StatementRow is one dated line of a person's account statement. Running
// carries the balance after the row was applied in chronological order and
// keeps its value when rows are presented newest first.
type StatementRow struct {
	Date    time.Time `json:"date"`
	Kind    string    `json:"kind"`
	Details string    `json:"details"`
	Debit   float64   `json:"debit"`
	Credit  float64   `json:"credit"`
	Running float64   `json:"running_balance"`
}

// Statement builds a person's account statement for one currency.
//
// Returned entries are omitted as if they never existed. Cash-status entries
// are shown for completeness but carry their amount in both columns, so they
// never move the running balance: replaying all rows chronologically always
// lands on the person's computed balance.
func Statement(personID uuid.UUID, personType ledger.PersonType, currency ledger.Currency, snap Snapshot) []StatementRow {
	if personType != ledger.PersonCustomer && personType != ledger.PersonSupplier {
		return nil
	}

	var rows []StatementRow
	for _, ev := range ledger.CollectEvents(snap.Sales, snap.Purchases, snap.Vouchers, nil) {
		if ev.Currency() != currency {
			continue
		}
		switch ev.Kind {
		case ledger.EventSale:
			s := ev.Sale
			if personType != ledger.PersonCustomer || s.CustomerID != personID || s.IsReturned {
				continue
			}
			row := StatementRow{
				Date:    s.Date,
				Kind:    "sale",
				Details: fmt.Sprintf("%s x %.0f @ %.0f", s.QatType, s.Quantity, s.UnitPrice),
				Debit:   s.Total,
			}
			if s.Status == ledger.StatusCash {
				row.Kind = "sale (cash)"
				row.Credit = s.Total
			}
			rows = append(rows, row)
		case ledger.EventPurchase:
			p := ev.Purchase
			if personType != ledger.PersonSupplier || p.SupplierID != personID || p.IsReturned {
				continue
			}
			row := StatementRow{
				Date:    p.Date,
				Kind:    "purchase",
				Details: fmt.Sprintf("%s x %.0f @ %.0f", p.QatType, p.Quantity, p.UnitPrice),
				Credit:  p.Total,
			}
			if p.Status == ledger.StatusCash {
				row.Kind = "purchase (cash)"
				row.Debit = p.Total
			}
			rows = append(rows, row)
		case ledger.EventVoucher:
			v := ev.Voucher
			if v.PersonID != personID {
				continue
			}
			if personType == ledger.PersonCustomer && v.Type == ledger.VoucherReceipt {
				rows = append(rows, StatementRow{
					Date:    v.Date,
					Kind:    "receipt",
					Details: v.Notes,
					Credit:  v.Amount,
				})
			}
			if personType == ledger.PersonSupplier && v.Type == ledger.VoucherPayment {
				rows = append(rows, StatementRow{
					Date:    v.Date,
					Kind:    "payment",
					Details: v.Notes,
					Debit:   v.Amount,
				})
			}
		case ledger.EventExpense:
			// Expenses are not tied to a person and never appear on a
			// statement.
		}
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Date.Before(rows[j].Date) })

	// The running balance is fixed on the ascending pass and must never be
	// recomputed after the display reversal.
	var running float64
	for i := range rows {
		if personType == ledger.PersonCustomer {
			running += rows[i].Debit - rows[i].Credit
		} else {
			running += rows[i].Credit - rows[i].Debit
		}
		rows[i].Running = running
	}

	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
	return rows
}
