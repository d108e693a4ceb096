package importer

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"assetreport/internal/logging"
	"assetreport/internal/metrics"
	"assetreport/internal/model"
	"assetreport/internal/parser"
	"assetreport/internal/store"
)

// Coordinator 追加上传协调器：表校验 -> 读取并对齐表格 -> 事务内逐行判重写入 -> 提交后触发派生表重建
type Coordinator struct {
	store    *store.Store
	tables   map[string]model.TableSpec
	log      *logrus.Entry
	onCommit func(table string)
}

// Option 协调器选项
type Option func(*Coordinator)

// WithTables 替换受管表配置（默认 model.Registry）
func WithTables(tables map[string]model.TableSpec) Option {
	return func(c *Coordinator) { c.tables = tables }
}

// WithLogger 指定日志
func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *Coordinator) { c.log = logging.Component(logger, "importer") }
}

// WithOnCommit 事务提交后的回调（用于触发派生表重建），不得阻塞
func WithOnCommit(fn func(table string)) Option {
	return func(c *Coordinator) { c.onCommit = fn }
}

// NewCoordinator 创建导入协调器
func NewCoordinator(st *store.Store, opts ...Option) *Coordinator {
	c := &Coordinator{
		store:  st,
		tables: model.Registry,
		log:    logging.Component(nil, "importer"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AppendOptions 追加上传选项
type AppendOptions struct {
	TableName string
	FilePath  string
	Filename  string // 原始文件名，仅用于日志
}

// Lookup 校验表名并返回表配置
func (c *Coordinator) Lookup(table string) (model.TableSpec, error) {
	if !model.ValidTableName(table) {
		return model.TableSpec{}, model.NewValidationError(model.ErrInvalidTableName, "无效的表名: "+table)
	}
	spec, ok := c.tables[table]
	if !ok {
		return model.TableSpec{}, model.NewValidationError(model.ErrUnsupportedTable, "不支持的数据表: "+table)
	}
	return spec, nil
}

// Append 执行一次追加上传。校验失败不做任何写入；事务中任一行出错整批回滚
func (c *Coordinator) Append(ctx context.Context, opts AppendOptions) (*model.UploadResult, error) {
	start := time.Now()
	table := opts.TableName
	if opts.Filename == "" {
		opts.Filename = filepath.Base(opts.FilePath)
	}
	log := c.log.WithFields(logrus.Fields{"table": table, "file": opts.Filename})

	spec, err := c.Lookup(table)
	if err != nil {
		metrics.UploadRequests.WithLabelValues(table, metrics.ResultRejected).Inc()
		return nil, err
	}

	cols, rows, err := c.prepare(ctx, table, opts.FilePath)
	if err != nil {
		metrics.UploadRequests.WithLabelValues(table, metrics.ResultRejected).Inc()
		log.WithError(err).Warn("upload rejected")
		return nil, err
	}

	logID, err := c.store.CreateUploadLog(ctx, table, opts.Filename)
	if err != nil {
		log.WithError(err).Warn("failed to create upload log")
	}

	result, err := c.write(ctx, spec, cols, rows, log)
	if err != nil {
		metrics.UploadRequests.WithLabelValues(table, metrics.ResultFailed).Inc()
		log.WithError(err).Error("upload rolled back")
		c.finishLog(ctx, logID, model.UploadFailure, nil, err.Error(), log)
		return nil, err
	}

	c.finishLog(ctx, logID, model.UploadSuccess, result, "", log)
	metrics.RecordUpload(table, result.InsertedUnique, result.InsertedAsRepeat, result.UpdatedToRepeat, result.IgnoredFullDuplicate)

	log.WithFields(logrus.Fields{
		"processed": result.ProcessedRows,
		"unique":    result.InsertedUnique,
		"repeat":    result.InsertedAsRepeat,
		"updated":   result.UpdatedToRepeat,
		"ignored":   result.IgnoredFullDuplicate,
		"warnings":  len(result.Warnings),
		"elapsed":   time.Since(start).String(),
	}).Info("upload committed")

	if c.onCommit != nil {
		c.onCommit(table)
	}
	return result, nil
}

// prepare 事务开始前完成全部校验：业务列、表格读取、列对齐
func (c *Coordinator) prepare(ctx context.Context, table, path string) ([]string, [][]parser.Cell, error) {
	cols, err := c.store.BusinessColumns(ctx, table)
	if err != nil {
		return nil, nil, err
	}

	grid, err := parser.ReadFirstSheet(path)
	if err != nil {
		return nil, nil, model.NewValidationError(errors.Wrap(model.ErrUnreadableSheet, err.Error()), "无法读取上传的表格文件")
	}

	rows, err := parser.Normalize(grid, cols)
	if err != nil {
		return nil, nil, err
	}
	return cols, rows, nil
}

// write 单事务内逐行转换、判重、写入
func (c *Coordinator) write(ctx context.Context, spec model.TableSpec, cols []string, rows [][]parser.Cell, log *logrus.Entry) (*model.UploadResult, error) {
	table := spec.Name
	keyCols, keyIdx := resolveKeyColumns(spec.KeyColumns, cols)
	if keyCols == nil {
		log.WithField("keyColumns", spec.KeyColumns).Warn("key columns not found in table, partial duplicate check disabled")
	}

	tx, err := c.store.Begin(ctx)
	if err != nil {
		return nil, &model.TransactionError{Table: table, Err: err}
	}
	defer tx.Rollback()

	result := &model.UploadResult{Table: table}
	cls := newClassifier(tx, table, cols, keyCols, keyIdx, result)
	coercer := parser.NewCoercer(spec)

	for i, row := range rows {
		values := make([]*string, len(cols))
		for j, col := range cols {
			v, warn := coercer.Coerce(col, row[j])
			if warn != "" {
				result.AddWarning(fmt.Sprintf("第 %d 行: %s", i+1, warn))
			}
			values[j] = v
		}

		if err := cls.classify(ctx, values); err != nil {
			return nil, errors.WithStack(&model.TransactionError{Table: table, Row: i + 1, Err: err})
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.WithStack(&model.TransactionError{Table: table, Err: err})
	}

	result.Rows = cls.affected.Rows()
	return result, nil
}

// resolveKeyColumns 关键列全部存在于业务列时返回列名和下标，否则返回 nil
func resolveKeyColumns(keyCols, cols []string) ([]string, []int) {
	if len(keyCols) == 0 {
		return nil, nil
	}
	idx := make([]int, len(keyCols))
	for i, k := range keyCols {
		_, pos, ok := lo.FindIndexOf(cols, func(c string) bool { return c == k })
		if !ok {
			return nil, nil
		}
		idx[i] = pos
	}
	return keyCols, idx
}

func (c *Coordinator) finishLog(ctx context.Context, id int64, status model.UploadLogStatus, result *model.UploadResult, msg string, log *logrus.Entry) {
	if id == 0 {
		return
	}
	if err := c.store.FinishUploadLog(ctx, id, status, result, msg); err != nil {
		log.WithError(err).Warn("failed to finish upload log")
	}
}

// Message 上传结果提示语
func Message(r *model.UploadResult) string {
	return fmt.Sprintf("上传成功：处理 %d 行，新增 %d 行，重复新增 %d 行，标记重复 %d 行，完全重复忽略 %d 行",
		r.ProcessedRows, r.InsertedUnique, r.InsertedAsRepeat, r.UpdatedToRepeat, r.IgnoredFullDuplicate)
}
