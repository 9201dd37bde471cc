// Package validation checks a structured statement for completeness and
// internal consistency. It is pure: no I/O, no clocks, no logging. Hosts
// decide how to present the findings.
package validation

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/bank-statement-converter/internal/domain/statement"
)

// DefaultTolerance is the absolute difference below which two monetary
// amounts are considered equal. Footer totals on real statements are often
// off by a rounding penny.
var DefaultTolerance = decimal.NewFromFloat(0.01)

// DefaultMaxDateGap is the largest gap between consecutive transactions that
// passes without a warning.
const DefaultMaxDateGap = 30 * 24 * time.Hour

const dateLayout = "2006-01-02"

// Options tunes the consistency checks. The zero value uses the defaults.
type Options struct {
	// Tolerance overrides DefaultTolerance when positive.
	Tolerance decimal.Decimal
	// MaxDateGap overrides DefaultMaxDateGap when positive.
	MaxDateGap time.Duration
}

func (o Options) tolerance() decimal.Decimal {
	if o.Tolerance.IsPositive() {
		return o.Tolerance
	}
	return DefaultTolerance
}

func (o Options) maxDateGap() time.Duration {
	if o.MaxDateGap > 0 {
		return o.MaxDateGap
	}
	return DefaultMaxDateGap
}

// Result partitions the findings. Issues make the document invalid and block
// conversion in strict hosts; accuracy warnings flag figures worth a manual
// check but never block.
type Result struct {
	IsValid          bool
	Issues           []string
	AccuracyWarnings []string
}

// Validate runs every check against the transaction list and footer. footer
// may be nil; reconciliation checks then simply do not apply. IsValid holds
// exactly when every transaction carries a date and a description.
func Validate(txs []statement.Transaction, footer *statement.Footer, opts Options) Result {
	var r Result

	for i, tx := range txs {
		if !tx.HasDate() {
			r.Issues = append(r.Issues, fmt.Sprintf("transaction %d has no date", i+1))
		}
		if !tx.HasDescription() {
			r.Issues = append(r.Issues, fmt.Sprintf("transaction %d has no description", i+1))
		}
	}

	checkPrecision(txs, footer, &r)
	checkDateGaps(txs, opts.maxDateGap(), &r)
	checkTotals(txs, footer, opts.tolerance(), &r)

	r.IsValid = len(r.Issues) == 0
	return r
}

// checkPrecision warns about amounts carrying more than two decimal places.
// These usually come from a misread decimal point, not a real statement.
func checkPrecision(txs []statement.Transaction, footer *statement.Footer, r *Result) {
	warn := func(label string, d decimal.Decimal) {
		if d.Exponent() < -2 {
			r.AccuracyWarnings = append(r.AccuracyWarnings,
				fmt.Sprintf("%s %s has more than two decimal places", label, d.String()))
		}
	}
	for i, tx := range txs {
		if tx.Debit != nil {
			warn(fmt.Sprintf("transaction %d debit", i+1), *tx.Debit)
		}
		if tx.Credit != nil {
			warn(fmt.Sprintf("transaction %d credit", i+1), *tx.Credit)
		}
		if tx.Balance.Valid {
			warn(fmt.Sprintf("transaction %d balance", i+1), tx.Balance.Decimal)
		}
	}
	if footer == nil {
		return
	}
	if footer.ClosingBalance.Valid {
		warn("closing balance", footer.ClosingBalance.Decimal)
	}
	if footer.TotalDebits.Valid {
		warn("total debits", footer.TotalDebits.Decimal)
	}
	if footer.TotalCredits.Valid {
		warn("total credits", footer.TotalCredits.Decimal)
	}
}

// checkDateGaps warns when chronologically adjacent dates are further apart
// than maxGap. Statements list rows newest-first as often as oldest-first, so
// the parseable dates are sorted before comparing. Unparseable dates are
// skipped; the missing-date issue already covers empty ones.
func checkDateGaps(txs []statement.Transaction, maxGap time.Duration, r *Result) {
	type dated struct {
		t   time.Time
		raw string
	}
	var dates []dated
	for _, tx := range txs {
		t, err := time.Parse(dateLayout, tx.Date)
		if err != nil {
			continue
		}
		dates = append(dates, dated{t: t, raw: tx.Date})
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].t.Before(dates[j].t) })

	for i := 1; i < len(dates); i++ {
		if dates[i].t.Sub(dates[i-1].t) > maxGap {
			r.AccuracyWarnings = append(r.AccuracyWarnings,
				fmt.Sprintf("potential missing transactions between %s and %s", dates[i-1].raw, dates[i].raw))
		}
	}
}

// checkTotals reconciles the summed transaction amounts against the footer
// figures. Statements label the same totals differently ("withdrawals" vs
// "total debits", "deposits" vs "total credits"); every declared figure is
// reconciled since a misread can corrupt one and not the other.
func checkTotals(txs []statement.Transaction, footer *statement.Footer, tol decimal.Decimal, r *Result) {
	if footer == nil {
		return
	}

	var sumDebits, sumCredits decimal.Decimal
	for _, tx := range txs {
		if tx.Debit != nil {
			sumDebits = sumDebits.Add(*tx.Debit)
		}
		if tx.Credit != nil {
			sumCredits = sumCredits.Add(*tx.Credit)
		}
	}

	compare := func(label string, declared, computed decimal.Decimal) {
		if declared.Sub(computed).Abs().GreaterThan(tol) {
			r.AccuracyWarnings = append(r.AccuracyWarnings,
				fmt.Sprintf("%s %s does not match computed %s", label, declared.String(), computed.String()))
		}
	}

	if footer.TotalDebits.Valid {
		compare("declared total debits", footer.TotalDebits.Decimal, sumDebits)
	}
	if footer.TotalWithdrawals.Valid {
		compare("declared total withdrawals", footer.TotalWithdrawals.Decimal, sumDebits)
	}
	if footer.TotalCredits.Valid {
		compare("declared total credits", footer.TotalCredits.Decimal, sumCredits)
	}
	if footer.TotalDeposits.Valid {
		compare("declared total deposits", footer.TotalDeposits.Decimal, sumCredits)
	}

	if footer.ClosingBalance.Valid {
		if last, ok := lastBalance(txs); ok {
			compare("declared closing balance", footer.ClosingBalance.Decimal, last)
		}
	}
}

func lastBalance(txs []statement.Transaction) (decimal.Decimal, bool) {
	for i := len(txs) - 1; i >= 0; i-- {
		if txs[i].Balance.Valid {
			return txs[i].Balance.Decimal, true
		}
	}
	return decimal.Decimal{}, false
}
