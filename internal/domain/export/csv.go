package export

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/bank-statement-converter/internal/domain/statement"
)

type csvTransaction struct {
	Date        string `csv:"Date"`
	Description string `csv:"Description"`
	PaidOut     string `csv:"Paid Out"`
	PaidIn      string `csv:"Paid In"`
	Balance     string `csv:"Balance"`
}

// WriteCSV serializes the transaction list as CSV with the same five columns
// as the spreadsheet table. Amounts are rendered exactly as extracted, with
// no rounding; absent amounts become empty fields.
func WriteCSV(txs []statement.Transaction, w io.Writer) error {
	rows := make([]csvTransaction, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, csvTransaction{
			Date:        tx.Date,
			Description: tx.Description,
			PaidOut:     csvAmount(tx.Debit),
			PaidIn:      csvAmount(tx.Credit),
			Balance:     csvNullAmount(tx.Balance),
		})
	}
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

func csvAmount(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.String()
}

func csvNullAmount(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.String()
}
