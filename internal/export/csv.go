// Package export serialises reporting output to CSV for sharing.
package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/mizan-erp/mizan/internal/finance"
)

// WriteBudgetCSV serialises the per-currency budget summaries.
func WriteBudgetCSV(w io.Writer, summaries []finance.BudgetSummary) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"Currency", "Customer Debts", "Customer Credits", "Supplier Debts", "Supplier Credits", "Assets", "Liabilities", "Cash", "Net"}); err != nil {
		return err
	}
	for _, s := range summaries {
		if err := writer.Write([]string{
			string(s.Currency),
			formatFloat(s.CustomerDebts),
			formatFloat(s.CustomerCredits),
			formatFloat(s.SupplierDebts),
			formatFloat(s.SupplierCredits),
			formatFloat(s.Assets),
			formatFloat(s.Liabilities),
			formatFloat(s.Cash),
			formatFloat(s.Net),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteStatementCSV serialises an account statement, rows in the order the
// generator produced them.
func WriteStatementCSV(w io.Writer, rows []finance.StatementRow) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"Date", "Kind", "Details", "Debit", "Credit", "Balance"}); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writer.Write([]string{
			row.Date.Format("2006-01-02"),
			row.Kind,
			row.Details,
			formatFloat(row.Debit),
			formatFloat(row.Credit),
			formatFloat(row.Running),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
