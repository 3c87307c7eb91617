package ledger

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestCollectEventsTagsEveryKind(t *testing.T) {
	at := time.Date(2026, time.March, 7, 0, 0, 0, 0, time.UTC)
	sales := []Sale{{ID: uuid.New(), Currency: CurrencyYER, Date: at}}
	purchases := []Purchase{{ID: uuid.New(), Currency: CurrencySAR, Date: at.AddDate(0, 0, 1)}}
	vouchers := []Voucher{{ID: uuid.New(), Currency: CurrencyOMR, Date: at.AddDate(0, 0, 2)}}
	expenses := []Expense{{ID: uuid.New(), Currency: CurrencyYER, Date: at.AddDate(0, 0, 3)}}

	events := CollectEvents(sales, purchases, vouchers, expenses)
	require.Len(t, events, 4)

	kinds := map[EventKind]Event{}
	for _, ev := range events {
		kinds[ev.Kind] = ev
	}
	require.Len(t, kinds, 4)

	require.Equal(t, CurrencyYER, kinds[EventSale].Currency())
	require.Equal(t, at, kinds[EventSale].Date())
	require.Equal(t, CurrencySAR, kinds[EventPurchase].Currency())
	require.Equal(t, CurrencyOMR, kinds[EventVoucher].Currency())
	require.Equal(t, at.AddDate(0, 0, 3), kinds[EventExpense].Date())
}
