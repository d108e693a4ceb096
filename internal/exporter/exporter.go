package exporter

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"assetreport/internal/model"
	"assetreport/internal/store"
)

// Exporter 数据表导出器
type Exporter struct {
	store *store.Store
}

// NewExporter 创建导出器
func NewExporter(store *store.Store) *Exporter {
	return &Exporter{store: store}
}

// ExportOptions 导出选项
type ExportOptions struct {
	Table  model.TableSpec
	Status string // 同列表过滤：空为全部，normal 为未标记
}

// Export 导出整张表
func (e *Exporter) Export(ctx context.Context, opts ExportOptions) (*excelize.File, error) {
	cols, err := e.store.BusinessColumns(ctx, opts.Table.Name)
	if err != nil {
		return nil, err
	}
	rows, err := e.store.AllRows(ctx, opts.Table.Name, cols, opts.Status)
	if err != nil {
		return nil, err
	}
	return ExportTable(opts.Table, cols, rows)
}

// ExportTable 写出工作簿：第一行为中文表头，最后一列为状态
func ExportTable(spec model.TableSpec, cols []string, rows []model.PersistedRow) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := spec.Label
	if sheet == "" {
		sheet = spec.Name
	}
	if len([]rune(sheet)) > 31 {
		sheet = string([]rune(sheet)[:31])
	}
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		_ = f.Close()
		return nil, err
	}

	if err := writeRows(f, sheet, spec, cols, rows); err != nil {
		_ = f.Close()
		return nil, err
	}

	f.SetActiveSheet(0)
	return f, nil
}

func writeRows(f *excelize.File, sheet string, spec model.TableSpec, cols []string, rows []model.PersistedRow) error {
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#DDEBF7"}},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("创建表头样式失败: %w", err)
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return err
	}
	if err := sw.SetColWidth(1, len(cols)+2, 16); err != nil {
		return err
	}

	header := make([]any, 0, len(cols)+2)
	header = append(header, excelize.Cell{StyleID: headerStyle, Value: "ID"})
	for _, c := range cols {
		header = append(header, excelize.Cell{StyleID: headerStyle, Value: spec.LabelFor(c)})
	}
	header = append(header, excelize.Cell{StyleID: headerStyle, Value: "状态"})
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}

	for i, r := range rows {
		values := make([]any, 0, len(cols)+2)
		values = append(values, r.ID)
		for _, c := range cols {
			if v := r.Value(c); v != nil {
				values = append(values, *v)
			} else {
				values = append(values, nil)
			}
		}
		values = append(values, r.Status.Label())

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, values); err != nil {
			return err
		}
	}

	return sw.Flush()
}
