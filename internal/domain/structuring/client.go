// Package structuring turns raw statement text into the typed document model
// through a schema-bound LLM call. The schema binding is advisory, not a hard
// guarantee, so the client cleanses whatever comes back before handing it on.
package structuring

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tmc/langchaingo/llms"

	"github.com/FACorreiaa/bank-statement-converter/internal/domain/statement"
)

// ErrNoOutput indicates the structuring capability returned nothing usable.
var ErrNoOutput = errors.New("structuring model returned no usable output")

const structuringPrompt = `You are a bank statement parser. Convert the statement text below into JSON
matching exactly this schema:

{
  "header": {
    "bankName": "", "accountNumber": "", "accountHolderName": "",
    "statementPeriod": "", "statementDate": "", "openingBalance": ""
  },
  "transactions": [
    {"date": "YYYY-MM-DD", "description": "", "debit": 0.00, "credit": 0.00, "balance": 0.00}
  ],
  "footer": {
    "closingBalance": 0.00, "totalDebits": 0.00, "totalCredits": 0.00,
    "totalWithdrawals": 0.00, "totalDeposits": 0.00, "summary": ""
  }
}

Rules:
- Preserve monetary precision exactly as printed. Never round or reformat amounts.
- Infer the calendar year of every transaction from the statement period and
  always emit dates as YYYY-MM-DD.
- Map columns by the meaning of their header label, not their position:
  "Withdrawals", "Paid Out", "Money Out", "Debit" are all debits;
  "Deposits", "Paid In", "Money In", "Credit" are all credits.
- Always include the "balance" key on every transaction; use null when the
  statement does not print a running balance for that row.
- Never merge or drop transaction rows.
- Do not emit "balance brought forward" or "balance carried forward" lines as
  transactions.
- Omit header or footer fields that are not present in the statement.
- Output only the JSON object, nothing else.

Statement text:
`

// Client sends raw text to the structuring capability and cleanses the result.
type Client struct {
	model     llms.Model
	maxTokens int
	logger    *slog.Logger
}

// NewClient wraps an LLM as a structuring capability.
func NewClient(model llms.Model, maxTokens int, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{model: model, maxTokens: maxTokens, logger: logger}
}

// Structure converts raw statement text into a statement.Document. Any
// transaction the model returns without a non-empty date or description is
// filtered out rather than failing the call; a completely empty response is
// ErrNoOutput.
func (c *Client) Structure(ctx context.Context, rawText string) (*statement.Document, error) {
	opts := []llms.CallOption{
		llms.WithTemperature(0),
		llms.WithJSONMode(),
	}
	if c.maxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(c.maxTokens))
	}

	resp, err := c.model.GenerateContent(ctx, []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, structuringPrompt+rawText),
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("structuring call: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, ErrNoOutput
	}
	content := strings.TrimSpace(resp.Choices[0].Content)
	if content == "" {
		return nil, ErrNoOutput
	}

	doc, err := decodeDocument(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoOutput, err)
	}

	doc.Transactions = c.cleanse(doc.Transactions)
	return doc, nil
}

// cleanse drops transactions missing a non-empty date or description. The
// model is instructed not to produce them, but the instruction is advisory.
func (c *Client) cleanse(txs []statement.Transaction) []statement.Transaction {
	kept := make([]statement.Transaction, 0, len(txs))
	dropped := 0
	for _, tx := range txs {
		if !tx.HasDate() || !tx.HasDescription() {
			dropped++
			continue
		}
		tx.Description = cleanDescription(tx.Description)
		kept = append(kept, tx)
	}
	if dropped > 0 {
		c.logger.Warn("dropped non-conforming transactions from model response",
			"dropped", dropped, "kept", len(kept))
	}
	return kept
}

// cleanDescription trims and collapses runs of whitespace.
func cleanDescription(s string) string {
	s = strings.TrimSpace(s)
	for strings.Contains(s, "  ") {
		s = strings.ReplaceAll(s, "  ", " ")
	}
	return s
}
