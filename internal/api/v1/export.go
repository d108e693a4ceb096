package v1

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"assetreport/internal/exporter"
)

// Export 导出整张表为 Excel
// GET /api/export/:tableName?status=
func (h *Handler) Export(c *gin.Context) {
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

	f, err := h.exporter.Export(c.Request.Context(), exporter.ExportOptions{Table: spec, Status: status})
	if err != nil {
		respondError(c, err)
		return
	}
	defer f.Close()

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", contentDisposition(spec.Name, spec.Label, time.Now()))
	c.Status(http.StatusOK)
	if err := f.Write(c.Writer); err != nil {
		h.log.WithError(err).WithField("table", table).Error("failed to write export")
	}
}

// contentDisposition ASCII 文件名兜底，filename* 提供中文文件名
func contentDisposition(name, label string, now time.Time) string {
	date := now.Format("20060102")
	ascii := fmt.Sprintf("%s-%s.xlsx", name, date)
	if label == "" {
		label = name
	}
	utf8Name := url.PathEscape(fmt.Sprintf("%s_%s.xlsx", label, date))
	return fmt.Sprintf("attachment; filename=%q; filename*=UTF-8''%s", ascii, utf8Name)
}
