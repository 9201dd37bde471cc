package structuring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/bank-statement-converter/internal/domain/statement"
)

// money decodes a JSON amount that may arrive as a number, a formatted string
// ("1,234.56", "£1,234.56", "(45.00)") or null. Models do not reliably honor
// the numeric schema, so the decoder meets them halfway.
type money struct {
	decimal.NullDecimal
}

func (m *money) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		m.Valid = false
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		return m.parse(s)
	}

	var d decimal.Decimal
	if err := json.Unmarshal(data, &d); err != nil {
		return err
	}
	m.Decimal, m.Valid = d, true
	return nil
}

func (m *money) parse(s string) error {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "null") || s == "-" {
		m.Valid = false
		return nil
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	if strings.HasSuffix(s, "-") {
		negative = true
		s = strings.TrimSuffix(s, "-")
	}

	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '-':
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		m.Valid = false
		return nil
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return fmt.Errorf("parse amount %q: %w", s, err)
	}
	if negative {
		d = d.Neg()
	}
	m.Decimal, m.Valid = d, true
	return nil
}

func (m money) ptr() *decimal.Decimal {
	if !m.Valid {
		return nil
	}
	d := m.Decimal
	return &d
}

type wireHeader struct {
	BankName          string `json:"bankName"`
	AccountNumber     string `json:"accountNumber"`
	AccountHolderName string `json:"accountHolderName"`
	StatementPeriod   string `json:"statementPeriod"`
	StatementDate     string `json:"statementDate"`
	OpeningBalance    string `json:"openingBalance"`
}

type wireTransaction struct {
	Date        string `json:"date"`
	Description string `json:"description"`
	Debit       money  `json:"debit"`
	Credit      money  `json:"credit"`
	Balance     money  `json:"balance"`
}

type wireFooter struct {
	ClosingBalance   money  `json:"closingBalance"`
	TotalDebits      money  `json:"totalDebits"`
	TotalCredits     money  `json:"totalCredits"`
	TotalWithdrawals money  `json:"totalWithdrawals"`
	TotalDeposits    money  `json:"totalDeposits"`
	Summary          string `json:"summary"`
}

type wireDocument struct {
	Header       *wireHeader       `json:"header"`
	Transactions []wireTransaction `json:"transactions"`
	Footer       *wireFooter       `json:"footer"`
}

// decodeDocument parses the model response into the domain document. Code
// fences around the JSON are tolerated.
func decodeDocument(content string) (*statement.Document, error) {
	content = stripCodeFence(content)

	var wire wireDocument
	if err := json.Unmarshal([]byte(content), &wire); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	doc := &statement.Document{
		Transactions: make([]statement.Transaction, 0, len(wire.Transactions)),
	}
	if wire.Header != nil {
		h := statement.Header{
			BankName:          strings.TrimSpace(wire.Header.BankName),
			AccountNumber:     strings.TrimSpace(wire.Header.AccountNumber),
			AccountHolderName: strings.TrimSpace(wire.Header.AccountHolderName),
			StatementPeriod:   strings.TrimSpace(wire.Header.StatementPeriod),
			StatementDate:     strings.TrimSpace(wire.Header.StatementDate),
			OpeningBalance:    strings.TrimSpace(wire.Header.OpeningBalance),
		}
		if !h.IsZero() {
			doc.Header = &h
		}
	}
	for _, tx := range wire.Transactions {
		doc.Transactions = append(doc.Transactions, statement.Transaction{
			Date:        strings.TrimSpace(tx.Date),
			Description: tx.Description,
			Debit:       tx.Debit.ptr(),
			Credit:      tx.Credit.ptr(),
			Balance:     tx.Balance.NullDecimal,
		})
	}
	if wire.Footer != nil {
		f := statement.Footer{
			ClosingBalance:   wire.Footer.ClosingBalance.NullDecimal,
			TotalDebits:      wire.Footer.TotalDebits.NullDecimal,
			TotalCredits:     wire.Footer.TotalCredits.NullDecimal,
			TotalWithdrawals: wire.Footer.TotalWithdrawals.NullDecimal,
			TotalDeposits:    wire.Footer.TotalDeposits.NullDecimal,
			Summary:          strings.TrimSpace(wire.Footer.Summary),
		}
		if !f.IsZero() {
			doc.Footer = &f
		}
	}
	return doc, nil
}

// stripCodeFence removes a surrounding ```json ... ``` block if present.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 {
		s = s[idx+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
