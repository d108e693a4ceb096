package model

import "strings"

// Status 行状态（软标记，不做物理删除）
type Status string

const (
	StatusRepeat Status = "repeat" // 疑似重复
	StatusDelete Status = "delete" // 软删除
	StatusKept   Status = "kept"   // 人工确认保留
)

// ParseStatus 解析状态值，空字符串视为 null（未标记）
func ParseStatus(raw *string) (*Status, error) {
	if raw == nil {
		return nil, nil
	}
	v := strings.TrimSpace(*raw)
	if v == "" {
		return nil, nil
	}
	switch s := Status(v); s {
	case StatusRepeat, StatusDelete, StatusKept:
		return &s, nil
	}
	return nil, NewValidationError(ErrInvalidStatus, "无效的状态值: "+v)
}

// StatusPtr 返回状态指针
func StatusPtr(s Status) *Status {
	return &s
}

// Label 状态中文名
func (s *Status) Label() string {
	if s == nil {
		return "正常"
	}
	switch *s {
	case StatusRepeat:
		return "重复"
	case StatusDelete:
		return "已删除"
	case StatusKept:
		return "保留"
	}
	return string(*s)
}
