package model

// MaxUploadWarnings 上传结果中保留的告警条数上限
const MaxUploadWarnings = 50

// UploadResult 一次追加上传的汇总
type UploadResult struct {
	Table                string         `json:"table"`
	ProcessedRows        int            `json:"processedRows"`
	InsertedUnique       int            `json:"insertedUnique"`
	InsertedAsRepeat     int            `json:"insertedAsRepeat"`
	UpdatedToRepeat      int            `json:"updatedToRepeat"`
	IgnoredFullDuplicate int            `json:"ignoredFullDuplicate"`
	Warnings             []string       `json:"warnings,omitempty"`
	Rows                 []PersistedRow `json:"-"`
}

// AddWarning 追加告警（超过上限后丢弃）
func (r *UploadResult) AddWarning(msg string) {
	if len(r.Warnings) < MaxUploadWarnings {
		r.Warnings = append(r.Warnings, msg)
	}
}

// Inserted 新增行数
func (r *UploadResult) Inserted() int {
	return r.InsertedUnique + r.InsertedAsRepeat
}

// UploadLogStatus 上传日志状态
type UploadLogStatus string

const (
	UploadProcessing UploadLogStatus = "processing"
	UploadSuccess    UploadLogStatus = "success"
	UploadFailure    UploadLogStatus = "failure"
)
