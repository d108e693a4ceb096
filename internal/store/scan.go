package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"

	"assetreport/internal/model"
)

// selectColumns id + 业务列 + status
func selectColumns(cols []string) []string {
	out := make([]string, 0, len(cols)+2)
	out = append(out, model.IdentityColumn)
	out = append(out, cols...)
	return append(out, model.StatusColumn)
}

// scanRows 扫描 selectColumns 顺序的结果集
func scanRows(rows *sql.Rows, cols []string) ([]model.PersistedRow, error) {
	defer rows.Close()

	var out []model.PersistedRow
	for rows.Next() {
		raw := make([]any, len(cols)+2)
		ptrs := make([]any, len(raw))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		row, err := toPersistedRow(raw, cols)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}
	return out, nil
}

func toPersistedRow(raw []any, cols []string) (model.PersistedRow, error) {
	idText := toText(raw[0])
	if idText == nil {
		return model.PersistedRow{}, fmt.Errorf("row without id")
	}
	id, err := cast.ToInt64E(*idText)
	if err != nil {
		return model.PersistedRow{}, fmt.Errorf("invalid row id %q: %w", *idText, err)
	}

	row := model.PersistedRow{
		ID:      id,
		Columns: cols,
		Values:  make([]*string, len(cols)),
	}
	for i := range cols {
		row.Values[i] = toText(raw[i+1])
	}
	if s := toText(raw[len(raw)-1]); s != nil && *s != "" {
		st := model.Status(strings.TrimSpace(*s))
		row.Status = &st
	}
	return row, nil
}

// toText 驱动返回值统一转为文本，NULL 返回 nil
func toText(v any) *string {
	switch t := v.(type) {
	case nil:
		return nil
	case time.Time:
		s := t.Format("2006-01-02")
		return &s
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		s = fmt.Sprint(v)
	}
	return &s
}
