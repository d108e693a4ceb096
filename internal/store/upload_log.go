package store

import (
	"context"
	"fmt"
	"time"

	"assetreport/internal/model"
)

// CreateUploadLog 创建上传日志，返回 upload_log_id
func (s *Store) CreateUploadLog(ctx context.Context, table, filename string) (int64, error) {
	query, returnsID := s.dialect.InsertQuery("upload_logs", []string{"table_name", "filename", "status", "started_at"})
	args := []any{table, filename, string(model.UploadProcessing), time.Now()}

	if returnsID {
		var id int64
		if err := s.db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
			return 0, fmt.Errorf("failed to create upload log: %w", err)
		}
		return id, nil
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to create upload log: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get upload log id: %w", err)
	}
	return id, nil
}

// FinishUploadLog 完成上传日志更新，result 为 nil 时只记录状态和错误
func (s *Store) FinishUploadLog(ctx context.Context, id int64, status model.UploadLogStatus, result *model.UploadResult, errorMessage string) error {
	if result == nil {
		result = &model.UploadResult{}
	}

	b := NewBuilder(s.dialect).Raw("UPDATE upload_logs SET ")
	sets := []struct {
		col string
		val any
	}{
		{"status", string(status)},
		{"processed_rows", result.ProcessedRows},
		{"inserted_unique", result.InsertedUnique},
		{"inserted_as_repeat", result.InsertedAsRepeat},
		{"updated_to_repeat", result.UpdatedToRepeat},
		{"ignored_full_duplicate", result.IgnoredFullDuplicate},
		{"error_message", errorMessage},
		{"completed_at", time.Now()},
	}
	for i, set := range sets {
		if i > 0 {
			b.Raw(", ")
		}
		b.Ident(set.col).Raw(" = ").Arg(set.val)
	}
	b.Where(Eq("id", id))

	if _, err := s.db.ExecContext(ctx, b.String(), b.Args()...); err != nil {
		return fmt.Errorf("failed to update upload log: %w", err)
	}
	return nil
}

// UploadLog 上传日志记录
type UploadLog struct {
	ID                   int64  `json:"id"`
	Table                string `json:"table"`
	Filename             string `json:"filename"`
	Status               string `json:"status"`
	ProcessedRows        int    `json:"processedRows"`
	InsertedUnique       int    `json:"insertedUnique"`
	InsertedAsRepeat     int    `json:"insertedAsRepeat"`
	UpdatedToRepeat      int    `json:"updatedToRepeat"`
	IgnoredFullDuplicate int    `json:"ignoredFullDuplicate"`
	ErrorMessage         string `json:"errorMessage,omitempty"`
}

// RecentUploadLogs 最近的上传日志（按 id 倒序）
func (s *Store) RecentUploadLogs(ctx context.Context, table string, limit int) ([]UploadLog, error) {
	b := NewBuilder(s.dialect).
		Raw(`SELECT id, table_name, filename, status, processed_rows, inserted_unique,
			inserted_as_repeat, updated_to_repeat, ignored_full_duplicate, error_message FROM upload_logs`)
	if table != "" {
		b.Where(Eq("table_name", table))
	}
	b.Raw(" ORDER BY id DESC")
	query := s.dialect.Paginate(b.String(), limit, 0)

	rows, err := s.db.QueryContext(ctx, query, b.Args()...)
	if err != nil {
		return nil, fmt.Errorf("failed to query upload logs: %w", err)
	}
	defer rows.Close()

	logs := []UploadLog{}
	for rows.Next() {
		var l UploadLog
		var errMsg any
		if err := rows.Scan(&l.ID, &l.Table, &l.Filename, &l.Status, &l.ProcessedRows, &l.InsertedUnique,
			&l.InsertedAsRepeat, &l.UpdatedToRepeat, &l.IgnoredFullDuplicate, &errMsg); err != nil {
			return nil, fmt.Errorf("failed to scan upload log: %w", err)
		}
		if t := toText(errMsg); t != nil {
			l.ErrorMessage = *t
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
