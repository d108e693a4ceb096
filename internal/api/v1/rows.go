package v1

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"assetreport/internal/model"
	"assetreport/internal/store"
)

// parseStatusFilter 列表过滤参数：空、normal 或合法状态值
func parseStatusFilter(raw string) (string, error) {
	if raw == "" || raw == store.StatusNormal {
		return raw, nil
	}
	if _, err := model.ParseStatus(&raw); err != nil {
		return "", err
	}
	return raw, nil
}

// ListRows 分页查询表数据
// GET /api/adminpage/:tableName?page=&pageSize=&status=&keyword=
func (h *Handler) ListRows(c *gin.Context) {
	table := c.Param("tableName")
	spec, err := h.importer.Lookup(table)
	if err != nil {
		respondError(c, err)
		return
	}

	status, err := parseStatusFilter(c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))

	ctx := c.Request.Context()
	cols, err := h.store.BusinessColumns(ctx, table)
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.store.ListRows(ctx, table, cols, store.ListOptions{
		Page:           page,
		PageSize:       pageSize,
		Status:         status,
		Keyword:        c.Query("keyword"),
		KeywordColumns: lo.Intersect(cols, spec.KeyColumns),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// StatusChart 按状态分组计数
// GET /api/charts/:tableName/status
func (h *Handler) StatusChart(c *gin.Context) {
	table := c.Param("tableName")
	if _, err := h.importer.Lookup(table); err != nil {
		respondError(c, err)
		return
	}

	counts, err := h.store.StatusSummary(c.Request.Context(), table)
	if err != nil {
		respondError(c, err)
		return
	}
	if counts == nil {
		counts = []store.StatusCount{}
	}
	c.JSON(http.StatusOK, gin.H{"data": counts})
}
