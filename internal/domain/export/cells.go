package export

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CellType is the semantic type the sink uses to pick serialization.
type CellType int

const (
	TypeString CellType = iota
	TypeNumber
	TypeDate
)

// AmountFormat is the number format applied to monetary columns.
const AmountFormat = "#,##0.00"

// DateFormat is the display format applied to date cells.
const DateFormat = "yyyy-mm-dd"

const (
	maxColumnWidth     = 50
	defaultMinColWidth = 10
)

// transactionColWidths are the fixed minimum widths of the five known
// transaction columns, in characters.
var transactionColWidths = []float64{12, 40, 14, 14, 14}

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// footerLabels end the transaction block when they appear in the first
// column below the header.
var footerLabels = map[string]struct{}{
	"closing balance": {},
	"total debits":    {},
	"total credits":   {},
	"summary":         {},
}

// Cell is one typed cell. Value is string, decimal.Decimal, time.Time or nil;
// it is never mutated after TypeCells hands the sheet to a sink.
type Cell struct {
	Value        any
	Type         CellType
	NumberFormat string
}

// TableBounds locates the transaction block inside a flattened row matrix.
// Rows are zero-based; EndRow is exclusive.
type TableBounds struct {
	HeaderRow int
	StartRow  int
	EndRow    int
}

// TypedSheet is the sink-ready form of a row matrix.
type TypedSheet struct {
	Rows      [][]Cell
	Widths    []float64
	Bounds    TableBounds
	FreezeRow int
}

// DeriveBounds re-derives the transaction block from a flattened matrix. The
// header is the first row whose first cell case-insensitively equals "date";
// the block ends at the first subsequent row whose first cell is empty or a
// known footer label. A matrix without such a header is treated as all table,
// first row as header.
func DeriveBounds(rows [][]any) TableBounds {
	header := -1
	for i, row := range rows {
		if firstCellString(row) == "date" {
			header = i
			break
		}
	}
	if header < 0 {
		return TableBounds{HeaderRow: 0, StartRow: 1, EndRow: len(rows)}
	}

	end := len(rows)
	for i := header + 1; i < len(rows); i++ {
		first := firstCellString(rows[i])
		if first == "" {
			end = i
			break
		}
		if _, ok := footerLabels[first]; ok {
			end = i
			break
		}
	}
	return TableBounds{HeaderRow: header, StartRow: header + 1, EndRow: end}
}

func firstCellString(row []any) string {
	if len(row) == 0 {
		return ""
	}
	s, ok := row[0].(string)
	if !ok {
		return ""
	}
	return strings.ToLower(strings.TrimSuffix(strings.TrimSpace(s), ":"))
}

// TypeCells assigns semantic types, number formats and layout to a flattened
// matrix. Inside the table bounds, first-column values matching YYYY-MM-DD
// become date cells and columns 2 through 4 become two-decimal numeric cells.
// Values are otherwise passed through untouched.
func TypeCells(rows [][]any) TypedSheet {
	bounds := DeriveBounds(rows)

	typed := make([][]Cell, len(rows))
	for i, row := range rows {
		cells := make([]Cell, len(row))
		inTable := i >= bounds.StartRow && i < bounds.EndRow
		for j, v := range row {
			cells[j] = typeCell(v, j, inTable)
		}
		typed[i] = cells
	}

	return TypedSheet{
		Rows:      typed,
		Widths:    columnWidths(typed),
		Bounds:    bounds,
		FreezeRow: bounds.HeaderRow + 1,
	}
}

func typeCell(v any, col int, inTable bool) Cell {
	if v == nil {
		return Cell{}
	}
	if !inTable {
		if d, ok := v.(decimal.Decimal); ok {
			return Cell{Value: d, Type: TypeNumber, NumberFormat: AmountFormat}
		}
		return Cell{Value: v, Type: TypeString}
	}

	switch col {
	case 0:
		if s, ok := v.(string); ok && datePattern.MatchString(s) {
			if t, err := time.Parse("2006-01-02", s); err == nil {
				return Cell{Value: t, Type: TypeDate, NumberFormat: DateFormat}
			}
		}
		return Cell{Value: v, Type: TypeString}
	case 2, 3, 4:
		return Cell{Value: v, Type: TypeNumber, NumberFormat: AmountFormat}
	default:
		return Cell{Value: v, Type: TypeString}
	}
}

// columnWidths sizes each column to its widest rendered content, clamped
// between the column's minimum and maxColumnWidth.
func columnWidths(rows [][]Cell) []float64 {
	var widths []float64
	for _, row := range rows {
		for j, c := range row {
			for len(widths) <= j {
				widths = append(widths, minWidth(len(widths)))
			}
			if w := float64(len(renderCell(c))); w > widths[j] {
				widths[j] = w
			}
		}
	}
	for j := range widths {
		if widths[j] > maxColumnWidth {
			widths[j] = maxColumnWidth
		}
	}
	return widths
}

func minWidth(col int) float64 {
	if col < len(transactionColWidths) {
		return transactionColWidths[col]
	}
	return defaultMinColWidth
}

func renderCell(c Cell) string {
	switch v := c.Value.(type) {
	case nil:
		return ""
	case string:
		return v
	case decimal.Decimal:
		return v.StringFixed(2)
	case time.Time:
		return v.Format("2006-01-02")
	default:
		return fmt.Sprint(v)
	}
}
