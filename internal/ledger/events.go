package ledger

import "time"

// EventKind discriminates Event.
type EventKind string

// Event kinds.
const (
	EventSale     EventKind = "sale"
	EventPurchase EventKind = "purchase"
	EventVoucher  EventKind = "voucher"
	EventExpense  EventKind = "expense"
)

// Event is the tagged union over dated financial entries. Exactly one
// payload pointer is set, matching Kind; folds switch on Kind exhaustively
// rather than inspecting payload fields.
type Event struct {
	Kind     EventKind
	Sale     *Sale
	Purchase *Purchase
	Voucher  *Voucher
	Expense  *Expense
}

// Date returns the entry date of the underlying record.
func (e Event) Date() time.Time {
	switch e.Kind {
	case EventSale:
		return e.Sale.Date
	case EventPurchase:
		return e.Purchase.Date
	case EventVoucher:
		return e.Voucher.Date
	case EventExpense:
		return e.Expense.Date
	}
	return time.Time{}
}

// Currency returns the currency of the underlying record.
func (e Event) Currency() Currency {
	switch e.Kind {
	case EventSale:
		return e.Sale.Currency
	case EventPurchase:
		return e.Purchase.Currency
	case EventVoucher:
		return e.Voucher.Currency
	case EventExpense:
		return e.Expense.Currency
	}
	return ""
}

// CollectEvents merges the per-kind slices into one event stream, in input
// order. Callers sort when they need chronology.
func CollectEvents(sales []Sale, purchases []Purchase, vouchers []Voucher, expenses []Expense) []Event {
	events := make([]Event, 0, len(sales)+len(purchases)+len(vouchers)+len(expenses))
	for i := range sales {
		events = append(events, Event{Kind: EventSale, Sale: &sales[i]})
	}
	for i := range purchases {
		events = append(events, Event{Kind: EventPurchase, Purchase: &purchases[i]})
	}
	for i := range vouchers {
		events = append(events, Event{Kind: EventVoucher, Voucher: &vouchers[i]})
	}
	for i := range expenses {
		events = append(events, Event{Kind: EventExpense, Expense: &expenses[i]})
	}
	return events
}
