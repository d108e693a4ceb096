package v1

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"assetreport/internal/model"
)

// statusRequest status 为 null 或 "" 表示清除标记
type statusRequest struct {
	Status *string `json:"status"`
}

// UpdateStatus 更新行状态（软删除 / 标记重复 / 保留）
// PUT /api/adminpage/status/:tableName/:rowId
func (h *Handler) UpdateStatus(c *gin.Context) {
	table := c.Param("tableName")
	if _, err := h.importer.Lookup(table); err != nil {
		respondError(c, err)
		return
	}

	id, err := strconv.ParseInt(c.Param("rowId"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, model.ErrInvalidRowID, "无效的行 ID: "+c.Param("rowId"))
		return
	}

	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, model.ErrInvalidStatus, "请求体格式错误")
		return
	}
	status, err := model.ParseStatus(req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	ctx := c.Request.Context()
	cols, err := h.store.BusinessColumns(ctx, table)
	if err != nil {
		respondError(c, err)
		return
	}
	row, err := h.store.UpdateStatus(ctx, table, cols, id, status)
	if err != nil {
		respondError(c, err)
		return
	}

	if h.rebuilder != nil {
		h.rebuilder.Trigger(table)
	}

	c.JSON(http.StatusOK, gin.H{"message": "状态已更新", "data": row})
}
