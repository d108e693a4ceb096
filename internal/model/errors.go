package model

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrInvalidTableName    = errors.New("invalid table name")
	ErrUnsupportedTable    = errors.New("unsupported table")
	ErrSchemaNotFound      = errors.New("table does not exist or has no business columns")
	ErrColumnCountMismatch = errors.New("column count mismatch")
	ErrInvalidStatus       = errors.New("invalid status")
	ErrInvalidRowID        = errors.New("invalid row id")
	ErrRowNotFound         = errors.New("row not found")
	ErrUnreadableSheet     = errors.New("unreadable spreadsheet")
	ErrUnknownDerivedTable = errors.New("unknown derived table")
)

// ValidationError 请求参数或数据格式不合法（HTTP 400，不做任何写入）
type ValidationError struct {
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// NewValidationError 创建校验错误
func NewValidationError(err error, message string) error {
	return errors.WithStack(&ValidationError{Message: message, Err: err})
}

// NotFoundError 表或行不存在（HTTP 404）
type NotFoundError struct {
	Message string
	Err     error
}

func (e *NotFoundError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *NotFoundError) Unwrap() error { return e.Err }

// NewNotFoundError 创建不存在错误
func NewNotFoundError(err error, message string) error {
	return errors.WithStack(&NotFoundError{Message: message, Err: err})
}

// TransactionError 上传事务内的数据库错误，整批回滚（HTTP 500）
type TransactionError struct {
	Table string
	Row   int // 出错的数据行序号（从 1 开始），0 表示非行级
	Err   error
}

func (e *TransactionError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("transaction on %s aborted at row %d: %v", e.Table, e.Row, e.Err)
	}
	return fmt.Sprintf("transaction on %s aborted: %v", e.Table, e.Err)
}

func (e *TransactionError) Unwrap() error { return e.Err }

// DownstreamSyncError 派生表重建失败，只记录日志
type DownstreamSyncError struct {
	Table string
	Err   error
}

func (e *DownstreamSyncError) Error() string {
	return fmt.Sprintf("rebuild of %s failed: %v", e.Table, e.Err)
}

func (e *DownstreamSyncError) Unwrap() error { return e.Err }

// IsValidation 是否为校验错误
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsNotFound 是否为不存在错误
func IsNotFound(err error) bool {
	var n *NotFoundError
	return errors.As(err, &n)
}
