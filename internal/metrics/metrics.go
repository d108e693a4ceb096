package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// UploadRequests 上传请求数，result 为 success / rejected / failed
	UploadRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "assetreport",
		Name:      "upload_requests_total",
		Help:      "Spreadsheet append uploads by table and result.",
	}, []string{"table", "result"})

	// ClassifiedRows 上传行分类结果
	ClassifiedRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "assetreport",
		Name:      "classified_rows_total",
		Help:      "Uploaded rows by duplicate classification outcome.",
	}, []string{"table", "outcome"})

	// DerivedRebuilds 派生表重建次数
	DerivedRebuilds = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "assetreport",
		Name:      "derived_rebuilds_total",
		Help:      "Derived table rebuilds by table and result.",
	}, []string{"table", "result"})

	// DerivedRebuildDuration 派生表重建耗时
	DerivedRebuildDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "assetreport",
		Name:      "derived_rebuild_duration_seconds",
		Help:      "Duration of derived table rebuilds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"table"})
)

// 行分类结果标签
const (
	OutcomeUnique         = "unique"
	OutcomeInsertedRepeat = "inserted_repeat"
	OutcomeUpdatedRepeat  = "updated_repeat"
	OutcomeFullDuplicate  = "full_duplicate"
)

// 请求结果标签
const (
	ResultSuccess  = "success"
	ResultRejected = "rejected"
	ResultFailed   = "failed"
)

// RecordUpload 记录一次上传的分类计数
func RecordUpload(table string, unique, insertedRepeat, updatedRepeat, fullDuplicate int) {
	UploadRequests.WithLabelValues(table, ResultSuccess).Inc()
	ClassifiedRows.WithLabelValues(table, OutcomeUnique).Add(float64(unique))
	ClassifiedRows.WithLabelValues(table, OutcomeInsertedRepeat).Add(float64(insertedRepeat))
	ClassifiedRows.WithLabelValues(table, OutcomeUpdatedRepeat).Add(float64(updatedRepeat))
	ClassifiedRows.WithLabelValues(table, OutcomeFullDuplicate).Add(float64(fullDuplicate))
}
