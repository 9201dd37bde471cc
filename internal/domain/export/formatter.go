// Package export flattens a structured statement into a typed cell matrix and
// serializes it to spreadsheet and CSV sinks.
package export

import (
	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/bank-statement-converter/internal/domain/statement"
)

// TransactionHeader is the fixed five-column transaction header row.
var TransactionHeader = []any{"Date", "Description", "Paid Out", "Paid In", "Balance"}

// NoDataSentinel is the single-cell matrix returned when no transactions were
// extracted. An empty-looking table reads like silent failure; this does not.
const NoDataSentinel = "No transaction data could be extracted from this document"

// Format flattens a structured document into an ordered row matrix: header
// key/value rows, a blank separator, the fixed transaction header, one row
// per transaction with numeric cells kept numeric, then footer key/value
// rows. With no transactions it returns the single-cell sentinel matrix.
func Format(doc *statement.Document) [][]any {
	if doc == nil || len(doc.Transactions) == 0 {
		return [][]any{{NoDataSentinel}}
	}

	var rows [][]any

	if doc.Header != nil {
		h := doc.Header
		rows = appendKV(rows, "Bank Name:", h.BankName)
		rows = appendKV(rows, "Account Number:", h.AccountNumber)
		rows = appendKV(rows, "Account Holder:", h.AccountHolderName)
		rows = appendKV(rows, "Statement Period:", h.StatementPeriod)
		rows = appendKV(rows, "Statement Date:", h.StatementDate)
		rows = appendKV(rows, "Opening Balance:", h.OpeningBalance)
		if len(rows) > 0 {
			rows = append(rows, []any{})
		}
	}

	rows = append(rows, TransactionHeader)
	for _, tx := range doc.Transactions {
		rows = append(rows, []any{
			tx.Date,
			tx.Description,
			amount(tx.Debit),
			amount(tx.Credit),
			nullAmount(tx.Balance),
		})
	}

	if doc.Footer != nil {
		f := doc.Footer
		var footerRows [][]any
		footerRows = appendAmountKV(footerRows, "Closing Balance:", f.ClosingBalance)
		footerRows = appendAmountKV(footerRows, "Total Debits:", f.TotalDebits)
		footerRows = appendAmountKV(footerRows, "Total Credits:", f.TotalCredits)
		footerRows = appendAmountKV(footerRows, "Total Withdrawals:", f.TotalWithdrawals)
		footerRows = appendAmountKV(footerRows, "Total Deposits:", f.TotalDeposits)
		footerRows = appendKV(footerRows, "Summary:", f.Summary)
		if len(footerRows) > 0 {
			rows = append(rows, []any{})
			rows = append(rows, footerRows...)
		}
	}

	return rows
}

func appendKV(rows [][]any, label, value string) [][]any {
	if value == "" {
		return rows
	}
	return append(rows, []any{label, value})
}

func appendAmountKV(rows [][]any, label string, d decimal.NullDecimal) [][]any {
	if !d.Valid {
		return rows
	}
	return append(rows, []any{label, d.Decimal})
}

func amount(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return *d
}

func nullAmount(d decimal.NullDecimal) any {
	if !d.Valid {
		return nil
	}
	return d.Decimal
}
