package parser

import (
	"strings"
	"time"
)

// CellKind 单元格取值类型
type CellKind int

const (
	CellEmpty CellKind = iota
	CellString
	CellNumber
	CellDate
)

// Cell 表格中的一个原始单元格
type Cell struct {
	Kind   CellKind
	Text   string    // 原始文本（数字为 xlsx 中存储的原值）
	Number float64   // CellNumber
	Time   time.Time // CellDate
}

// StringCell 字符串单元格
func StringCell(s string) Cell {
	if s == "" {
		return Cell{}
	}
	return Cell{Kind: CellString, Text: s}
}

// NumberCell 数字单元格
func NumberCell(raw string, n float64) Cell {
	return Cell{Kind: CellNumber, Text: raw, Number: n}
}

// DateCell 日期单元格
func DateCell(t time.Time) Cell {
	return Cell{Kind: CellDate, Text: t.Format(time.RFC3339), Time: t}
}

// IsBlank 空单元格或纯空白字符串
func (c Cell) IsBlank() bool {
	switch c.Kind {
	case CellEmpty:
		return true
	case CellString:
		return strings.TrimSpace(c.Text) == ""
	}
	return false
}

// Grid 工作表原始网格，第 0 行为表头
type Grid struct {
	Sheet string
	Rows  [][]Cell
}

// Width 最宽一行的列数
func (g *Grid) Width() int {
	w := 0
	for _, r := range g.Rows {
		if len(r) > w {
			w = len(r)
		}
	}
	return w
}
