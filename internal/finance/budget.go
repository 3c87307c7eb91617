package finance

import (
	"log/slog"

	"github.com/mizan-erp/mizan/internal/ledger"
	"github.com/mizan-erp/mizan/internal/parties"
)

// BudgetSummary is the agency-wide position in one currency.
//
// Assets are claims in the agency's favour (customer debts plus supplier
// overpayments); liabilities are claims against it. Cash is the running
// cash-on-hand from settled activity only.
type BudgetSummary struct {
	Currency        ledger.Currency `json:"currency"`
	CustomerDebts   float64         `json:"customer_debts"`
	CustomerCredits float64         `json:"customer_credits"`
	SupplierDebts   float64         `json:"supplier_debts"`
	SupplierCredits float64         `json:"supplier_credits"`
	Assets          float64         `json:"assets"`
	Liabilities     float64         `json:"liabilities"`
	Cash            float64         `json:"cash"`
	Net             float64         `json:"net"`
}

// Snapshot is one consistent read of everything the calculators fold over.
type Snapshot struct {
	Customers []parties.Customer
	Suppliers []parties.Supplier
	Sales     []ledger.Sale
	Purchases []ledger.Purchase
	Vouchers  []ledger.Voucher
	Expenses  []ledger.Expense
}

// GlobalBudget computes the summary for every currency independently.
// Amounts in different currencies are never mixed or converted. Entries
// carrying an unrecognized currency contribute nothing; they are reported
// as anomalies instead of failing the report.
func GlobalBudget(snap Snapshot) map[ledger.Currency]BudgetSummary {
	events := ledger.CollectEvents(snap.Sales, snap.Purchases, snap.Vouchers, snap.Expenses)
	for _, ev := range events {
		if !ledger.ValidCurrency(ev.Currency()) {
			slog.Warn("entry with unrecognized currency skipped",
				slog.String("kind", string(ev.Kind)),
				slog.String("currency", string(ev.Currency())))
		}
	}

	summaries := make(map[ledger.Currency]BudgetSummary, len(ledger.Currencies()))
	for _, currency := range ledger.Currencies() {
		summaries[currency] = budgetFor(currency, snap, events)
	}
	return summaries
}

func budgetFor(currency ledger.Currency, snap Snapshot, events []ledger.Event) BudgetSummary {
	sum := BudgetSummary{Currency: currency}

	for _, c := range snap.Customers {
		balance := CustomerBalance(c.ID, currency, snap.Sales, snap.Vouchers)
		if balance > 0 {
			sum.CustomerDebts += balance
		} else {
			sum.CustomerCredits += -balance
		}
	}
	for _, s := range snap.Suppliers {
		balance := SupplierBalance(s.ID, currency, snap.Purchases, snap.Vouchers)
		if balance > 0 {
			sum.SupplierDebts += balance
		} else {
			sum.SupplierCredits += -balance
		}
	}

	for _, ev := range events {
		if ev.Currency() != currency {
			continue
		}
		switch ev.Kind {
		case ledger.EventSale:
			if ev.Sale.Status == ledger.StatusCash && !ev.Sale.IsReturned {
				sum.Cash += ev.Sale.Total
			}
		case ledger.EventPurchase:
			if ev.Purchase.Status == ledger.StatusCash && !ev.Purchase.IsReturned {
				sum.Cash -= ev.Purchase.Total
			}
		case ledger.EventVoucher:
			switch ev.Voucher.Type {
			case ledger.VoucherReceipt:
				sum.Cash += ev.Voucher.Amount
			case ledger.VoucherPayment:
				sum.Cash -= ev.Voucher.Amount
			}
		case ledger.EventExpense:
			sum.Cash -= ev.Expense.Amount
		}
	}

	sum.Assets = sum.CustomerDebts + sum.SupplierCredits
	sum.Liabilities = sum.SupplierDebts + sum.CustomerCredits
	sum.Net = sum.Cash + sum.Assets - sum.Liabilities
	return sum
}
