package export

import (
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// SheetName is the single worksheet every workbook carries.
const SheetName = "Statement"

// WriteXLSX serializes a typed sheet into an xlsx workbook. The sheet's
// types, number formats, column widths and freeze row are applied as
// spreadsheet metadata; values are written untouched.
func WriteXLSX(sheet TypedSheet, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	amountStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: ptr(AmountFormat)})
	if err != nil {
		return fmt.Errorf("amount style: %w", err)
	}
	dateStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: ptr(DateFormat)})
	if err != nil {
		return fmt.Errorf("date style: %w", err)
	}

	for i, row := range sheet.Rows {
		for j, c := range row {
			if c.Value == nil {
				continue
			}
			axis, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return fmt.Errorf("cell %d,%d: %w", i, j, err)
			}
			if err := f.SetCellValue(SheetName, axis, cellValue(c)); err != nil {
				return fmt.Errorf("set %s: %w", axis, err)
			}
			switch c.Type {
			case TypeNumber:
				err = f.SetCellStyle(SheetName, axis, axis, amountStyle)
			case TypeDate:
				err = f.SetCellStyle(SheetName, axis, axis, dateStyle)
			}
			if err != nil {
				return fmt.Errorf("style %s: %w", axis, err)
			}
		}
	}

	for j, width := range sheet.Widths {
		col, err := excelize.ColumnNumberToName(j + 1)
		if err != nil {
			return fmt.Errorf("column %d: %w", j, err)
		}
		if err := f.SetColWidth(SheetName, col, col, width); err != nil {
			return fmt.Errorf("width %s: %w", col, err)
		}
	}

	if sheet.FreezeRow > 0 {
		err := f.SetPanes(SheetName, &excelize.Panes{
			Freeze:      true,
			YSplit:      sheet.FreezeRow,
			TopLeftCell: fmt.Sprintf("A%d", sheet.FreezeRow+1),
			ActivePane:  "bottomLeft",
		})
		if err != nil {
			return fmt.Errorf("freeze panes: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// cellValue maps domain value types onto what excelize serializes natively.
func cellValue(c Cell) any {
	switch v := c.Value.(type) {
	case decimal.Decimal:
		f, _ := v.Float64()
		return f
	case time.Time:
		return v
	default:
		return v
	}
}

func ptr[T any](v T) *T { return &v }
