// Package statement defines the typed data model produced by structuring a
// bank-statement document. All monetary values use shopspring decimals so the
// exact printed precision survives through validation and export.
package statement

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Transaction is a single statement line. Debit and Credit are nil when the
// source column is empty; Balance is always carried, null when illegible.
type Transaction struct {
	Date        string              `json:"date"`
	Description string              `json:"description"`
	Debit       *decimal.Decimal    `json:"debit,omitempty"`
	Credit      *decimal.Decimal    `json:"credit,omitempty"`
	Balance     decimal.NullDecimal `json:"balance"`
}

// HasDate reports whether the transaction carries a non-empty date.
func (t Transaction) HasDate() bool {
	return strings.TrimSpace(t.Date) != ""
}

// HasDescription reports whether the transaction carries a non-empty description.
func (t Transaction) HasDescription() bool {
	return strings.TrimSpace(t.Description) != ""
}

// Header holds statement metadata. Every field is optional; presence depends
// on source legibility.
type Header struct {
	BankName          string `json:"bankName,omitempty"`
	AccountNumber     string `json:"accountNumber,omitempty"`
	AccountHolderName string `json:"accountHolderName,omitempty"`
	StatementPeriod   string `json:"statementPeriod,omitempty"`
	StatementDate     string `json:"statementDate,omitempty"`
	OpeningBalance    string `json:"openingBalance,omitempty"`
}

// IsZero reports whether no header field is populated.
func (h Header) IsZero() bool {
	return h == Header{}
}

// Footer holds statement summary totals. Debit/withdrawal and credit/deposit
// naming both occur in the wild; the validator checks whichever is present.
type Footer struct {
	ClosingBalance   decimal.NullDecimal `json:"closingBalance"`
	TotalDebits      decimal.NullDecimal `json:"totalDebits"`
	TotalCredits     decimal.NullDecimal `json:"totalCredits"`
	TotalWithdrawals decimal.NullDecimal `json:"totalWithdrawals"`
	TotalDeposits    decimal.NullDecimal `json:"totalDeposits"`
	Summary          string              `json:"summary,omitempty"`
}

// IsZero reports whether no footer field is populated.
func (f Footer) IsZero() bool {
	return !f.ClosingBalance.Valid && !f.TotalDebits.Valid && !f.TotalCredits.Valid &&
		!f.TotalWithdrawals.Valid && !f.TotalDeposits.Valid && f.Summary == ""
}

// Document is the structured form of one statement. It is owned by the
// pipeline invocation that produced it and is not shared across invocations.
type Document struct {
	Header       *Header       `json:"header,omitempty"`
	Transactions []Transaction `json:"transactions"`
	Footer       *Footer       `json:"footer,omitempty"`
}
