package store

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	"assetreport/internal/model"
)

// StatusNormal 列表过滤：未标记状态的行
const StatusNormal = "normal"

// ListOptions 分页查询参数
type ListOptions struct {
	Page           int
	PageSize       int
	Status         string // 空表示全部，normal 表示 status 为空
	Keyword        string // 对 KeywordColumns 做 LIKE 匹配
	KeywordColumns []string
}

// RowPage 分页结果
type RowPage struct {
	Rows     []model.PersistedRow `json:"rows"`
	Total    int64                `json:"total"`
	Page     int                  `json:"page"`
	PageSize int                  `json:"pageSize"`
}

// StatusCount 状态分组计数
type StatusCount struct {
	Status *model.Status `json:"status"`
	Label  string        `json:"label"`
	Count  int64         `json:"count"`
}

func (o ListOptions) normalized() ListOptions {
	if o.Page < 1 {
		o.Page = 1
	}
	if o.PageSize < 1 {
		o.PageSize = 20
	}
	if o.PageSize > 500 {
		o.PageSize = 500
	}
	return o
}

func (o ListOptions) predicate() Predicate {
	var preds []Predicate
	switch o.Status {
	case "":
	case StatusNormal:
		preds = append(preds, IsNull(model.StatusColumn))
	default:
		preds = append(preds, Eq(model.StatusColumn, o.Status))
	}
	if o.Keyword != "" && len(o.KeywordColumns) > 0 {
		pattern := "%" + o.Keyword + "%"
		preds = append(preds, Or(lo.Map(o.KeywordColumns, func(c string, _ int) Predicate {
			return Like(c, pattern)
		})...))
	}
	if len(preds) == 0 {
		return nil
	}
	return And(preds...)
}

// ListRows 分页查询表数据，按 id 升序
func (s *Store) ListRows(ctx context.Context, table string, cols []string, opts ListOptions) (*RowPage, error) {
	opts = opts.normalized()
	where := opts.predicate()

	count := NewBuilder(s.dialect).Raw("SELECT COUNT(1) FROM ").Ident(table).Where(where)
	var total int64
	if err := s.db.QueryRowContext(ctx, count.String(), count.Args()...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count rows of %s: %w", table, err)
	}

	b := NewBuilder(s.dialect).
		Raw("SELECT ").Idents(selectColumns(cols)).
		Raw(" FROM ").Ident(table).
		Where(where).
		Raw(" ORDER BY ").Ident(model.IdentityColumn)
	query := s.dialect.Paginate(b.String(), opts.PageSize, (opts.Page-1)*opts.PageSize)

	rows, err := s.db.QueryContext(ctx, query, b.Args()...)
	if err != nil {
		return nil, fmt.Errorf("failed to list rows of %s: %w", table, err)
	}
	list, err := scanRows(rows, cols)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []model.PersistedRow{}
	}

	return &RowPage{Rows: list, Total: total, Page: opts.Page, PageSize: opts.PageSize}, nil
}

// AllRows 读取全部行（导出使用），status 同 ListOptions.Status
func (s *Store) AllRows(ctx context.Context, table string, cols []string, status string) ([]model.PersistedRow, error) {
	b := NewBuilder(s.dialect).
		Raw("SELECT ").Idents(selectColumns(cols)).
		Raw(" FROM ").Ident(table).
		Where(ListOptions{Status: status}.predicate()).
		Raw(" ORDER BY ").Ident(model.IdentityColumn)

	rows, err := s.db.QueryContext(ctx, b.String(), b.Args()...)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows of %s: %w", table, err)
	}
	return scanRows(rows, cols)
}

// GetRow 按 id 查询一行
func (s *Store) GetRow(ctx context.Context, table string, cols []string, id int64) (*model.PersistedRow, error) {
	b := NewBuilder(s.dialect).
		Raw("SELECT ").Idents(selectColumns(cols)).
		Raw(" FROM ").Ident(table).
		Where(Eq(model.IdentityColumn, id))

	rows, err := s.db.QueryContext(ctx, b.String(), b.Args()...)
	if err != nil {
		return nil, fmt.Errorf("failed to query row %d of %s: %w", id, table, err)
	}
	list, err := scanRows(rows, cols)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, model.NewNotFoundError(model.ErrRowNotFound, fmt.Sprintf("记录不存在: %s#%d", table, id))
	}
	return &list[0], nil
}

// UpdateStatus 更新行状态，status 为 nil 表示清除标记；不做物理删除
func (s *Store) UpdateStatus(ctx context.Context, table string, cols []string, id int64, status *model.Status) (*model.PersistedRow, error) {
	row, err := s.GetRow(ctx, table, cols, id)
	if err != nil {
		return nil, err
	}

	var st any
	if status != nil {
		st = string(*status)
	}
	b := NewBuilder(s.dialect).
		Raw("UPDATE ").Ident(table).
		Raw(" SET ").Ident(model.StatusColumn).Raw(" = ").Arg(st).
		Where(Eq(model.IdentityColumn, id))

	if _, err := s.db.ExecContext(ctx, b.String(), b.Args()...); err != nil {
		return nil, fmt.Errorf("failed to update status of %s#%d: %w", table, id, err)
	}

	updated := row.WithStatus(status)
	return &updated, nil
}

// StatusSummary 按状态分组计数（图表使用）
func (s *Store) StatusSummary(ctx context.Context, table string) ([]StatusCount, error) {
	b := NewBuilder(s.dialect).
		Raw("SELECT ").Ident(model.StatusColumn).Raw(", COUNT(1) FROM ").Ident(table).
		Raw(" GROUP BY ").Ident(model.StatusColumn)

	rows, err := s.db.QueryContext(ctx, b.String())
	if err != nil {
		return nil, fmt.Errorf("failed to summarize %s: %w", table, err)
	}
	defer rows.Close()

	var out []StatusCount
	for rows.Next() {
		var raw any
		var n int64
		if err := rows.Scan(&raw, &n); err != nil {
			return nil, fmt.Errorf("failed to scan summary: %w", err)
		}
		var st *model.Status
		if t := toText(raw); t != nil && *t != "" {
			st = model.StatusPtr(model.Status(*t))
		}
		out = append(out, StatusCount{Status: st, Label: st.Label(), Count: n})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read summary: %w", err)
	}
	return out, nil
}
