package parser

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"assetreport/internal/model"
)

// Coercer 将单元格转换为入库文本；日期列按表配置格式化
type Coercer struct {
	Formats map[string]model.DateFormat
}

// NewCoercer 使用表配置创建转换器
func NewCoercer(spec model.TableSpec) Coercer {
	return Coercer{Formats: spec.DateFormats}
}

// Coerce 转换单个单元格。空值返回 nil；日期无法识别时原样返回并给出告警，不会报错
func (c Coercer) Coerce(column string, cell Cell) (*string, string) {
	if cell.IsBlank() {
		return nil, ""
	}

	format, isDate := c.Formats[column]
	if !isDate {
		v := plainText(cell)
		return &v, ""
	}

	if t, ok := ExtractDate(cell); ok {
		v := FormatDate(t, format)
		return &v, ""
	}

	v := plainText(cell)
	return &v, fmt.Sprintf("列 %s 的值 %q 无法识别为日期，已按原值保存", column, v)
}

// plainText 非日期列的文本表示
func plainText(cell Cell) string {
	switch cell.Kind {
	case CellNumber:
		if d, err := decimal.NewFromString(cell.Text); err == nil {
			return d.String()
		}
		return strconv.FormatFloat(cell.Number, 'f', -1, 64)
	case CellDate:
		if cell.Time.Hour() == 0 && cell.Time.Minute() == 0 && cell.Time.Second() == 0 {
			return cell.Time.Format("2006-01-02")
		}
		return cell.Time.Format(time.DateTime)
	}
	return strings.TrimSpace(cell.Text)
}
