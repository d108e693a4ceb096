package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"assetreport/internal/derived"
	"assetreport/internal/exporter"
	"assetreport/internal/importer"
	"assetreport/internal/logging"
	"assetreport/internal/store"
)

// Deps 处理器依赖
type Deps struct {
	Store          *store.Store
	Importer       *importer.Coordinator
	Rebuilder      *derived.Rebuilder
	Exporter       *exporter.Exporter
	UploadDir      string
	MaxUploadBytes int64
	Logger         logrus.FieldLogger
}

// Handler V1 API 处理器
type Handler struct {
	store          *store.Store
	importer       *importer.Coordinator
	rebuilder      *derived.Rebuilder
	exporter       *exporter.Exporter
	uploadDir      string
	maxUploadBytes int64
	log            *logrus.Entry
}

// NewHandler 创建 V1 API 处理器
func NewHandler(d Deps) *Handler {
	h := &Handler{
		store:          d.Store,
		importer:       d.Importer,
		rebuilder:      d.Rebuilder,
		exporter:       d.Exporter,
		uploadDir:      d.UploadDir,
		maxUploadBytes: d.MaxUploadBytes,
		log:            logging.Component(d.Logger, "api"),
	}
	if h.importer == nil {
		h.importer = importer.NewCoordinator(d.Store, importer.WithLogger(d.Logger))
	}
	if h.exporter == nil {
		h.exporter = exporter.NewExporter(d.Store)
	}
	return h
}

// RegisterRoutes 注册 V1 API 路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	// 系统状态
	router.GET("/status", h.GetStatus)
	router.POST("/login", h.Login)

	// 表信息
	router.GET("/tables", h.ListTables)
	router.GET("/tables/:tableName/columns", h.GetColumns)

	// 追加上传
	router.POST("/upload/append", h.AppendUpload)
	router.POST("/adminupload/append", h.AppendUpload)
	router.GET("/upload/logs", h.ListUploadLogs)

	// 后台管理
	router.GET("/adminpage/:tableName", h.ListRows)
	router.PUT("/adminpage/status/:tableName/:rowId", h.UpdateStatus)

	// 图表与导出
	router.GET("/charts/:tableName/status", h.StatusChart)
	router.GET("/export/:tableName", h.Export)

	// 派生表重建
	router.POST("/sync/:derivedName", h.Sync)
}
