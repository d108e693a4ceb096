package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/width"

	"assetreport/internal/model"
)

// 电子表格日期序列号的有效区间（开区间）
const (
	minDateSerial = 1
	maxDateSerial = 200000
)

var (
	ymdSeparated = regexp.MustCompile(`^(\d{4})[-./](\d{1,2})[-./](\d{1,2})(?:[ T]\S.*)?$`)
	ymdCompact   = regexp.MustCompile(`^(\d{4})(\d{2})(\d{2})$`)
	ymSeparated  = regexp.MustCompile(`^(\d{4})[-./](\d{1,2})$`)
	ymCompact    = regexp.MustCompile(`^(\d{4})(\d{2})$`)
)

// ExtractDate 从单元格中识别日期；只有年月时日默认为 1
func ExtractDate(cell Cell) (time.Time, bool) {
	switch cell.Kind {
	case CellNumber:
		if cell.Number > minDateSerial && cell.Number < maxDateSerial {
			t, err := excelize.ExcelDateToTime(cell.Number, false)
			if err == nil {
				return t, true
			}
		}
		// 序列号范围外的数字按文本识别，如 20240315、202403
		return parseDateString(cell.Text)
	case CellDate:
		return cell.Time, true
	case CellString:
		return parseDateString(cell.Text)
	}
	return time.Time{}, false
}

// parseDateString 识别 2024-03-15 / 2024.3.15 / 2024/03/15 / 20240315 / 2024年3月15日 / 2024-03 / 202403 / 2024年3月
func parseDateString(s string) (time.Time, bool) {
	s = width.Narrow.String(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "年", "-")
	s = strings.ReplaceAll(s, "月", "-")
	s = strings.ReplaceAll(s, "日", "")
	s = strings.TrimRight(strings.TrimSpace(s), "-./")

	for _, re := range []*regexp.Regexp{ymdSeparated, ymdCompact} {
		if m := re.FindStringSubmatch(s); m != nil {
			return buildDate(m[1], m[2], m[3])
		}
	}
	for _, re := range []*regexp.Regexp{ymSeparated, ymCompact} {
		if m := re.FindStringSubmatch(s); m != nil {
			return buildDate(m[1], m[2], "1")
		}
	}
	return time.Time{}, false
}

func buildDate(ys, ms, ds string) (time.Time, bool) {
	y, _ := strconv.Atoi(ys)
	m, _ := strconv.Atoi(ms)
	d, _ := strconv.Atoi(ds)
	if m < 1 || m > 12 || d < 1 || d > 31 {
		return time.Time{}, false
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	// 2024-02-30 之类的日期会被 time.Date 进位，视为无效
	if t.Day() != d {
		return time.Time{}, false
	}
	return t, true
}

// FormatDate 按目标格式输出日期
func FormatDate(t time.Time, format model.DateFormat) string {
	switch format {
	case model.DateFormatYM:
		return fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month()))
	case model.DateFormatYMZh:
		return fmt.Sprintf("%04d年%02d月", t.Year(), int(t.Month()))
	case model.DateFormatYMDZh:
		return fmt.Sprintf("%04d年%02d月%02d日", t.Year(), int(t.Month()), t.Day())
	default:
		return fmt.Sprintf("%04d-%02d-%02d", t.Year(), int(t.Month()), t.Day())
	}
}
