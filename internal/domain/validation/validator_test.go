package validation

import (
	"fmt"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/bank-statement-converter/internal/domain/statement"
)

func amt(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func bal(s string) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: decimal.RequireFromString(s), Valid: true}
}

func tx(date, desc, debit, credit, balance string) statement.Transaction {
	t := statement.Transaction{Date: date, Description: desc}
	if debit != "" {
		t.Debit = amt(debit)
	}
	if credit != "" {
		t.Credit = amt(credit)
	}
	if balance != "" {
		t.Balance = bal(balance)
	}
	return t
}

func TestValidate_Completeness(t *testing.T) {
	t.Run("all transactions complete", func(t *testing.T) {
		res := Validate([]statement.Transaction{
			tx("2024-02-03", "Coffee", "24.50", "", "39975.50"),
			tx("2024-02-04", "Salary", "", "1200.00", "41175.50"),
		}, nil, Options{})

		assert.True(t, res.IsValid)
		assert.Empty(t, res.Issues)
	})

	t.Run("missing date", func(t *testing.T) {
		res := Validate([]statement.Transaction{
			tx("", "Coffee", "24.50", "", ""),
		}, nil, Options{})

		assert.False(t, res.IsValid)
		require.Len(t, res.Issues, 1)
		assert.Contains(t, res.Issues[0], "no date")
	})

	t.Run("missing description", func(t *testing.T) {
		res := Validate([]statement.Transaction{
			tx("2024-02-03", "   ", "24.50", "", ""),
		}, nil, Options{})

		assert.False(t, res.IsValid)
		require.Len(t, res.Issues, 1)
		assert.Contains(t, res.Issues[0], "no description")
	})

	t.Run("validity is independent of footer presence", func(t *testing.T) {
		gofakeit.Seed(11)

		for i := 0; i < 50; i++ {
			n := gofakeit.Number(1, 10)
			txs := make([]statement.Transaction, n)
			for j := range txs {
				txs[j] = tx(
					gofakeit.Date().Format("2006-01-02"),
					gofakeit.Company(),
					fmt.Sprintf("%.2f", gofakeit.Price(1, 5000)),
					"", "",
				)
			}
			footer := &statement.Footer{ClosingBalance: bal("1.00")}

			assert.True(t, Validate(txs, nil, Options{}).IsValid)
			assert.True(t, Validate(txs, footer, Options{}).IsValid)

			broken := make([]statement.Transaction, n)
			copy(broken, txs)
			broken[gofakeit.Number(0, n-1)].Date = ""
			assert.False(t, Validate(broken, nil, Options{}).IsValid)
			assert.False(t, Validate(broken, footer, Options{}).IsValid)
		}
	})
}

func TestValidate_Totals(t *testing.T) {
	txs := []statement.Transaction{
		tx("2024-02-03", "A", "10.00", "", ""),
		tx("2024-02-04", "B", "15.25", "", ""),
		tx("2024-02-05", "C", "", "100.00", "74.75"),
	}

	t.Run("exact totals produce no warnings", func(t *testing.T) {
		footer := &statement.Footer{
			TotalDebits:    bal("25.25"),
			TotalCredits:   bal("100.00"),
			ClosingBalance: bal("74.75"),
		}
		res := Validate(txs, footer, Options{})

		assert.True(t, res.IsValid)
		assert.Empty(t, res.AccuracyWarnings)
	})

	t.Run("within tolerance passes", func(t *testing.T) {
		footer := &statement.Footer{TotalDebits: bal("25.26")}
		res := Validate(txs, footer, Options{})
		assert.Empty(t, res.AccuracyWarnings)
	})

	t.Run("perturbing beyond tolerance warns exactly once", func(t *testing.T) {
		footer := &statement.Footer{TotalDebits: bal("25.27")}
		res := Validate(txs, footer, Options{})

		assert.True(t, res.IsValid, "warnings never affect validity")
		require.Len(t, res.AccuracyWarnings, 1)
		assert.Contains(t, res.AccuracyWarnings[0], "total debits")
	})

	t.Run("withdrawals are reconciled like total debits", func(t *testing.T) {
		footer := &statement.Footer{TotalWithdrawals: bal("99.99")}
		res := Validate(txs, footer, Options{})
		require.Len(t, res.AccuracyWarnings, 1)
		assert.Contains(t, res.AccuracyWarnings[0], "total withdrawals")
	})

	t.Run("both debit figures are reconciled when both declared", func(t *testing.T) {
		footer := &statement.Footer{
			TotalDebits:      bal("25.25"),
			TotalWithdrawals: bal("99.99"),
		}
		res := Validate(txs, footer, Options{})
		require.Len(t, res.AccuracyWarnings, 1)
		assert.Contains(t, res.AccuracyWarnings[0], "total withdrawals")

		footer.TotalDebits = bal("30.00")
		res = Validate(txs, footer, Options{})
		assert.Len(t, res.AccuracyWarnings, 2)
	})

	t.Run("closing balance checked against last running balance", func(t *testing.T) {
		footer := &statement.Footer{ClosingBalance: bal("80.00")}
		res := Validate(txs, footer, Options{})
		require.Len(t, res.AccuracyWarnings, 1)
		assert.Contains(t, res.AccuracyWarnings[0], "closing balance")
	})

	t.Run("custom tolerance", func(t *testing.T) {
		footer := &statement.Footer{TotalDebits: bal("25.75")}
		res := Validate(txs, footer, Options{Tolerance: decimal.NewFromFloat(1.00)})
		assert.Empty(t, res.AccuracyWarnings)
	})

	t.Run("nil footer skips reconciliation", func(t *testing.T) {
		res := Validate(txs, nil, Options{})
		assert.Empty(t, res.AccuracyWarnings)
	})
}

func TestValidate_DateGaps(t *testing.T) {
	t.Run("gap over thirty days warns", func(t *testing.T) {
		res := Validate([]statement.Transaction{
			tx("2024-01-01", "A", "1.00", "", ""),
			tx("2024-02-15", "B", "1.00", "", ""),
		}, nil, Options{})

		assert.True(t, res.IsValid)
		require.Len(t, res.AccuracyWarnings, 1)
		assert.Contains(t, res.AccuracyWarnings[0], "potential missing transactions between 2024-01-01 and 2024-02-15")
	})

	t.Run("gap warns on newest-first statements too", func(t *testing.T) {
		res := Validate([]statement.Transaction{
			tx("2024-03-01", "B", "1.00", "", ""),
			tx("2024-01-01", "A", "1.00", "", ""),
		}, nil, Options{})

		assert.True(t, res.IsValid)
		require.Len(t, res.AccuracyWarnings, 1)
		assert.Contains(t, res.AccuracyWarnings[0], "potential missing transactions between 2024-01-01 and 2024-03-01")
	})

	t.Run("gap of exactly thirty days passes", func(t *testing.T) {
		res := Validate([]statement.Transaction{
			tx("2024-01-01", "A", "1.00", "", ""),
			tx("2024-01-31", "B", "1.00", "", ""),
		}, nil, Options{})
		assert.Empty(t, res.AccuracyWarnings)
	})

	t.Run("custom gap", func(t *testing.T) {
		res := Validate([]statement.Transaction{
			tx("2024-01-01", "A", "1.00", "", ""),
			tx("2024-01-10", "B", "1.00", "", ""),
		}, nil, Options{MaxDateGap: 5 * 24 * time.Hour})
		require.Len(t, res.AccuracyWarnings, 1)
	})

	t.Run("unparseable dates are skipped", func(t *testing.T) {
		res := Validate([]statement.Transaction{
			tx("03/02/2024", "A", "1.00", "", ""),
			tx("2024-06-01", "B", "1.00", "", ""),
		}, nil, Options{})
		assert.Empty(t, res.AccuracyWarnings)
	})
}

func TestValidate_Precision(t *testing.T) {
	t.Run("more than two decimal places warns", func(t *testing.T) {
		res := Validate([]statement.Transaction{
			tx("2024-02-03", "A", "24.505", "", ""),
		}, nil, Options{})

		assert.True(t, res.IsValid)
		require.Len(t, res.AccuracyWarnings, 1)
		assert.Contains(t, res.AccuracyWarnings[0], "more than two decimal places")
	})

	t.Run("two decimal places is clean", func(t *testing.T) {
		res := Validate([]statement.Transaction{
			tx("2024-02-03", "A", "24.50", "", "100.00"),
		}, nil, Options{})
		assert.Empty(t, res.AccuracyWarnings)
	})

	t.Run("footer precision is checked too", func(t *testing.T) {
		footer := &statement.Footer{ClosingBalance: bal("74.7501")}
		res := Validate(nil, footer, Options{})
		require.NotEmpty(t, res.AccuracyWarnings)
		assert.Contains(t, res.AccuracyWarnings[0], "closing balance")
	})
}
