package model

import (
	"bytes"
	"encoding/json"
)

// PersistedRow 目标表中的一行（业务列 + id + status）
type PersistedRow struct {
	ID      int64
	Columns []string  // 业务列，顺序与 Values 对应
	Values  []*string // nil 表示 NULL
	Status  *Status
}

// Value 按列名取值
func (r *PersistedRow) Value(column string) *string {
	for i, c := range r.Columns {
		if c == column {
			return r.Values[i]
		}
	}
	return nil
}

// WithStatus 返回状态替换后的副本
func (r PersistedRow) WithStatus(s *Status) PersistedRow {
	r.Status = s
	return r
}

// MarshalJSON 输出扁平对象：{"id":1,"col_a":"x",...,"status":null}，保持列顺序
func (r PersistedRow) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"id":`)
	id, _ := json.Marshal(r.ID)
	buf.Write(id)

	for i, col := range r.Columns {
		if col == "id" || col == "status" {
			continue
		}
		key, err := json.Marshal(col)
		if err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		buf.Write(key)
		buf.WriteByte(':')
		var v []byte
		if i < len(r.Values) && r.Values[i] != nil {
			v, err = json.Marshal(*r.Values[i])
			if err != nil {
				return nil, err
			}
		} else {
			v = []byte("null")
		}
		buf.Write(v)
	}

	buf.WriteString(`,"status":`)
	if r.Status == nil {
		buf.WriteString("null")
	} else {
		s, _ := json.Marshal(string(*r.Status))
		buf.Write(s)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// AffectedRows 按首次出现顺序记录受影响行，同 id 后写覆盖前写
type AffectedRows struct {
	order []int64
	byID  map[int64]PersistedRow
}

// NewAffectedRows 创建受影响行集合
func NewAffectedRows() *AffectedRows {
	return &AffectedRows{byID: make(map[int64]PersistedRow)}
}

// Put 记录一行
func (a *AffectedRows) Put(row PersistedRow) {
	if _, ok := a.byID[row.ID]; !ok {
		a.order = append(a.order, row.ID)
	}
	a.byID[row.ID] = row
}

// Rows 返回有序行列表
func (a *AffectedRows) Rows() []PersistedRow {
	out := make([]PersistedRow, 0, len(a.order))
	for _, id := range a.order {
		out = append(out, a.byID[id])
	}
	return out
}
