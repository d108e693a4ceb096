package parser

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"assetreport/internal/model"
)

func row(values ...string) []Cell {
	out := make([]Cell, len(values))
	for i, v := range values {
		out[i] = StringCell(v)
	}
	return out
}

func TestNormalize_StripsSerialAndIDColumns(t *testing.T) {
	t.Parallel()

	grid := &Grid{Rows: [][]Cell{
		row("序号", "a", " ID ", "b", "c"),
		row("1", "x", "9", "y", "z"),
	}}

	data, err := Normalize(grid, []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if len(data) != 1 || len(data[0]) != 3 {
		t.Fatalf("unexpected shape: %v", data)
	}
	if data[0][0].Text != "x" || data[0][1].Text != "y" || data[0][2].Text != "z" {
		t.Fatalf("unexpected row: %+v", data[0])
	}
}

func TestNormalize_PopsBlankTrailingColumns(t *testing.T) {
	t.Parallel()

	grid := &Grid{Rows: [][]Cell{
		row("a", "b", "c", "备注", ""),
		row("1", "2", "3", "", " "),
		row("4", "5", "6"),
	}}

	data, err := Normalize(grid, []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if len(data) != 2 {
		t.Fatalf("rows = %d, want 2", len(data))
	}
	for _, r := range data {
		if len(r) != 3 {
			t.Fatalf("width = %d, want 3", len(r))
		}
	}
}

func TestNormalize_NonBlankExtraColumnFails(t *testing.T) {
	t.Parallel()

	grid := &Grid{Rows: [][]Cell{
		row("a", "b", "c", "d", "e"),
		row("1", "2", "3", "", ""),
		row("4", "5", "6", "7", "8"),
	}}

	_, err := Normalize(grid, []string{"a", "b", "c"})
	if !errors.Is(err, model.ErrColumnCountMismatch) {
		t.Fatalf("err = %v, want ErrColumnCountMismatch", err)
	}
	if !model.IsValidation(err) {
		t.Fatalf("err should be a validation error")
	}
}

func TestNormalize_TooFewColumnsFails(t *testing.T) {
	t.Parallel()

	grid := &Grid{Rows: [][]Cell{row("a", "b"), row("1", "2")}}
	if _, err := Normalize(grid, []string{"a", "b", "c"}); !errors.Is(err, model.ErrColumnCountMismatch) {
		t.Fatalf("err = %v, want ErrColumnCountMismatch", err)
	}
}

func TestNormalize_SkipsBlankRows(t *testing.T) {
	t.Parallel()

	grid := &Grid{Rows: [][]Cell{
		row("a", "b"),
		row("", " "),
		row("1", ""),
		nil,
	}}

	data, err := Normalize(grid, []string{"a", "b"})
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if len(data) != 1 || data[0][0].Text != "1" || data[0][1].Kind != CellEmpty {
		t.Fatalf("unexpected data: %+v", data)
	}
}

func TestCoerce_DateColumns(t *testing.T) {
	t.Parallel()

	c := Coercer{Formats: map[string]model.DateFormat{
		"ym":    model.DateFormatYM,
		"ymd":   model.DateFormatYMD,
		"ym_zh": model.DateFormatYMZh,
	}}

	cases := []struct {
		column string
		cell   Cell
		want   string
	}{
		{"ym", NumberCell("45366", 45366), "2024-03"},
		{"ym_zh", NumberCell("45366", 45366), "2024年03月"},
		{"ymd", NumberCell("45366", 45366), "2024-03-15"},
		{"ymd", DateCell(time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC)), "2023-12-01"},
		{"ymd", StringCell(" 2024.3.5 "), "2024-03-05"},
		{"ymd", StringCell("2024/03/05 10:30:00"), "2024-03-05"},
		{"ymd", StringCell("20240305"), "2024-03-05"},
		{"ymd", NumberCell("20240305", 20240305), "2024-03-05"},
		{"ymd", StringCell("2024年3月5日"), "2024-03-05"},
		{"ymd", StringCell("２０２４年３月５日"), "2024-03-05"},
		{"ymd", StringCell("2024-03"), "2024-03-01"},
		{"ym", StringCell("2024年3月"), "2024-03"},
		{"ym", StringCell("202411"), "2024-11"},
		{"ym_zh", StringCell("2024-11"), "2024年11月"},
	}

	for _, tc := range cases {
		got, warn := c.Coerce(tc.column, tc.cell)
		if warn != "" {
			t.Fatalf("%s %+v: unexpected warning %q", tc.column, tc.cell, warn)
		}
		if got == nil || *got != tc.want {
			t.Fatalf("%s %+v: got %v, want %s", tc.column, tc.cell, got, tc.want)
		}
	}
}

func TestCoerce_UnparseableDatePassesThroughWithWarning(t *testing.T) {
	t.Parallel()

	c := Coercer{Formats: map[string]model.DateFormat{"d": model.DateFormatYMD}}
	for _, raw := range []string{"待定", "2024-13-01", "2024-02-30"} {
		got, warn := c.Coerce("d", StringCell("  "+raw+" "))
		if got == nil || *got != raw {
			t.Fatalf("%q: got %v, want pass-through", raw, got)
		}
		if warn == "" {
			t.Fatalf("%q: expected warning", raw)
		}
	}
}

func TestCoerce_PlainColumns(t *testing.T) {
	t.Parallel()

	c := Coercer{}
	if got, _ := c.Coerce("a", StringCell("  hello ")); got == nil || *got != "hello" {
		t.Fatalf("trim: got %v", got)
	}
	if got, _ := c.Coerce("a", StringCell("   ")); got != nil {
		t.Fatalf("blank should be nil, got %q", *got)
	}
	if got, _ := c.Coerce("a", Cell{}); got != nil {
		t.Fatalf("empty should be nil")
	}
	if got, _ := c.Coerce("a", NumberCell("1234.50", 1234.5)); got == nil || *got != "1234.5" {
		t.Fatalf("number: got %v", got)
	}
	if got, _ := c.Coerce("a", NumberCell("600000", 600000)); got == nil || *got != "600000" {
		t.Fatalf("integer: got %v", got)
	}
}

func TestReadFirstSheet_TypedCells(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "upload.xlsx")
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	if err := f.SetSheetRow(sheet, "A1", &[]any{"名称", "金额", "日期"}); err != nil {
		t.Fatalf("SetSheetRow: %v", err)
	}
	if err := f.SetSheetRow(sheet, "A2", &[]any{"甲", 12.5, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)}); err != nil {
		t.Fatalf("SetSheetRow: %v", err)
	}
	if err := f.SetSheetRow(sheet, "A3", &[]any{"乙"}); err != nil {
		t.Fatalf("SetSheetRow: %v", err)
	}
	// 第二个工作表不应被读取
	if _, err := f.NewSheet("Other"); err != nil {
		t.Fatalf("NewSheet: %v", err)
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
	f.Close()

	grid, err := ReadFirstSheet(path)
	if err != nil {
		t.Fatalf("ReadFirstSheet() error = %v", err)
	}
	if len(grid.Rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(grid.Rows))
	}
	if grid.Rows[1][0].Kind != CellString || grid.Rows[1][0].Text != "甲" {
		t.Fatalf("string cell = %+v", grid.Rows[1][0])
	}
	if grid.Rows[1][1].Kind != CellNumber || grid.Rows[1][1].Number != 12.5 {
		t.Fatalf("number cell = %+v", grid.Rows[1][1])
	}

	data, err := Normalize(grid, []string{"name", "amount", "date"})
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	c := Coercer{Formats: map[string]model.DateFormat{"date": model.DateFormatYMD}}
	got, warn := c.Coerce("date", data[0][2])
	if warn != "" || got == nil || *got != "2024-03-15" {
		t.Fatalf("date = %v (warning %q)", got, warn)
	}
	if v, _ := c.Coerce("date", data[1][2]); v != nil {
		t.Fatalf("missing cell should coerce to nil")
	}
}

func TestNormalizeColumnName(t *testing.T) {
	t.Parallel()

	if got := NormalizeColumnName(" 序\n号　"); got != "序号" {
		t.Fatalf("got %q", got)
	}
}
