package importer

import (
	"context"

	"assetreport/internal/model"
	"assetreport/internal/store"
)

// classifier 在上传事务内逐行判重并写入
// 每一行都能看到本次上传中前面已插入的行
type classifier struct {
	tx       *store.Tx
	table    string
	cols     []string
	keyCols  []string // nil 表示关键列配置无效，只做完全重复判断
	keyIdx   []int
	result   *model.UploadResult
	affected *model.AffectedRows
}

func newClassifier(tx *store.Tx, table string, cols, keyCols []string, keyIdx []int, result *model.UploadResult) *classifier {
	return &classifier{
		tx:       tx,
		table:    table,
		cols:     cols,
		keyCols:  keyCols,
		keyIdx:   keyIdx,
		result:   result,
		affected: model.NewAffectedRows(),
	}
}

// classify 判定一行：完全重复跳过；部分重复以 repeat 插入并标记已有行；否则正常插入
func (c *classifier) classify(ctx context.Context, values []*string) error {
	c.result.ProcessedRows++

	dup, err := c.tx.HasFullDuplicate(ctx, c.table, c.cols, values)
	if err != nil {
		return err
	}
	if dup {
		c.result.IgnoredFullDuplicate++
		return nil
	}

	var matches []model.PersistedRow
	if c.keyCols != nil {
		keyValues := make([]*string, len(c.keyIdx))
		for i, idx := range c.keyIdx {
			keyValues[i] = values[idx]
		}
		matches, err = c.tx.FindByKeys(ctx, c.table, c.cols, c.keyCols, keyValues)
		if err != nil {
			return err
		}
	}

	if len(matches) == 0 {
		if err := c.insert(ctx, values, nil); err != nil {
			return err
		}
		c.result.InsertedUnique++
		return nil
	}

	for _, m := range matches {
		switch {
		case m.Status != nil && *m.Status == model.StatusDelete:
			// 已删除的行保持不变，但返回给调用方
			c.affected.Put(m)
		case m.Status != nil && *m.Status == model.StatusRepeat:
			c.affected.Put(m)
		default:
			if err := c.tx.MarkRepeat(ctx, c.table, m.ID); err != nil {
				return err
			}
			c.result.UpdatedToRepeat++
			c.affected.Put(m.WithStatus(model.StatusPtr(model.StatusRepeat)))
		}
	}

	if err := c.insert(ctx, values, model.StatusPtr(model.StatusRepeat)); err != nil {
		return err
	}
	c.result.InsertedAsRepeat++
	return nil
}

func (c *classifier) insert(ctx context.Context, values []*string, status *model.Status) error {
	id, err := c.tx.InsertRow(ctx, c.table, c.cols, values, status)
	if err != nil {
		return err
	}
	c.affected.Put(model.PersistedRow{
		ID:      id,
		Columns: c.cols,
		Values:  values,
		Status:  status,
	})
	return nil
}
