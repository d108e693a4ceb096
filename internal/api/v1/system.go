package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"assetreport/internal/model"
)

// StatusResponse 系统状态响应
type StatusResponse struct {
	Status        string   `json:"status"`
	Driver        string   `json:"driver"`        // 数据库驱动
	Tables        []string `json:"tables"`        // 受管表
	DerivedTables []string `json:"derivedTables"` // 派生表
	Database      string   `json:"database"`      // ok / 错误信息
}

// GetStatus 获取系统状态
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	resp := StatusResponse{
		Status:   "ok",
		Driver:   h.store.Dialect().Name(),
		Tables:   model.TableNames(),
		Database: "ok",
	}
	for _, d := range model.DerivedTables {
		resp.DerivedTables = append(resp.DerivedTables, d.Name)
	}

	if err := h.store.DB().PingContext(c.Request.Context()); err != nil {
		resp.Status = "degraded"
		resp.Database = err.Error()
	}

	c.JSON(http.StatusOK, resp)
}
