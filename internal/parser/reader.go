package parser

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// ReadFirstSheet 读取工作簿第一个工作表，保留单元格原始类型
func ReadFirstSheet(path string) (*Grid, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	sheet := sheets[0]

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}

	grid := &Grid{Sheet: sheet, Rows: make([][]Cell, len(rows))}
	for r, row := range rows {
		cells := make([]Cell, len(row))
		for c, raw := range row {
			if raw == "" {
				continue
			}
			axis, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return nil, err
			}
			typ, err := f.GetCellType(sheet, axis)
			if err != nil {
				return nil, fmt.Errorf("failed to read cell type %s: %w", axis, err)
			}
			cells[c] = typedCell(typ, raw)
		}
		grid.Rows[r] = cells
	}

	return grid, nil
}

// typedCell 按 xlsx 单元格类型转换原值
func typedCell(typ excelize.CellType, raw string) Cell {
	switch typ {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeError:
		return StringCell(raw)
	case excelize.CellTypeBool:
		if raw == "1" || strings.EqualFold(raw, "true") {
			return StringCell("TRUE")
		}
		return StringCell("FALSE")
	case excelize.CellTypeDate:
		if t, ok := parseISODate(raw); ok {
			return DateCell(t)
		}
		return StringCell(raw)
	}

	// 数字或公式缓存值
	if n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
		return NumberCell(strings.TrimSpace(raw), n)
	}
	return StringCell(raw)
}

var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999",
	"2006-01-02",
}

func parseISODate(raw string) (time.Time, bool) {
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
