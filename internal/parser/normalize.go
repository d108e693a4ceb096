package parser

import (
	"fmt"
	"strings"

	"assetreport/internal/model"
)

// 序号列、id 列不属于业务数据
const serialHeader = "序号"

// Normalize 将网格对齐到业务列：去掉序号 / id 列，裁剪尾部空列，要求列数完全一致
// 返回不含表头的数据行；整行为空的数据行被跳过
func Normalize(grid *Grid, businessCols []string) ([][]Cell, error) {
	width := grid.Width()
	rows := make([][]Cell, len(grid.Rows))
	for i, r := range grid.Rows {
		padded := make([]Cell, width)
		copy(padded, r)
		rows[i] = padded
	}

	if len(rows) > 0 {
		keep := make([]int, 0, width)
		for c, h := range rows[0] {
			name := NormalizeColumnName(h.Text)
			if name == serialHeader || strings.EqualFold(name, model.IdentityColumn) {
				continue
			}
			keep = append(keep, c)
		}
		if len(keep) != width {
			for i, r := range rows {
				projected := make([]Cell, len(keep))
				for j, c := range keep {
					projected[j] = r[c]
				}
				rows[i] = projected
			}
			width = len(keep)
		}
	}

	var data [][]Cell
	if len(rows) > 1 {
		data = rows[1:]
	}

	// 多出的尾部列只有在所有数据行都为空时才能丢弃
	for width > len(businessCols) && columnBlank(data, width-1) {
		width--
	}

	if width != len(businessCols) {
		return nil, model.NewValidationError(model.ErrColumnCountMismatch,
			fmt.Sprintf("列数不匹配：表格 %d 列，数据表 %d 列（%s）", width, len(businessCols), strings.Join(businessCols, ", ")))
	}

	out := make([][]Cell, 0, len(data))
	for _, r := range data {
		r = r[:width]
		if rowBlank(r) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func columnBlank(rows [][]Cell, col int) bool {
	for _, r := range rows {
		if !r[col].IsBlank() {
			return false
		}
	}
	return true
}

func rowBlank(r []Cell) bool {
	for _, c := range r {
		if !c.IsBlank() {
			return false
		}
	}
	return true
}
