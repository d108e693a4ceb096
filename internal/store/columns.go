package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"assetreport/internal/model"
)

// BusinessColumns 按物理顺序返回表的业务列（排除 id、status，大小写不敏感）
// 每次上传都实时读取，不做缓存
func (s *Store) BusinessColumns(ctx context.Context, table string) ([]string, error) {
	if !model.ValidTableName(table) {
		return nil, model.NewValidationError(model.ErrInvalidTableName, "无效的表名: "+table)
	}

	rows, err := s.db.QueryContext(ctx, s.dialect.BusinessColumnsQuery(), table)
	if err != nil {
		return nil, fmt.Errorf("failed to query columns of %s: %w", table, err)
	}
	defer rows.Close()

	var all []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan column name: %w", err)
		}
		all = append(all, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", table, err)
	}

	cols := lo.Filter(all, func(c string, _ int) bool {
		return !strings.EqualFold(c, model.IdentityColumn) && !strings.EqualFold(c, model.StatusColumn)
	})
	if len(cols) == 0 {
		return nil, model.NewNotFoundError(model.ErrSchemaNotFound, "表不存在或没有业务列: "+table)
	}
	return cols, nil
}
