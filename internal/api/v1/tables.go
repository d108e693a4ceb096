package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"assetreport/internal/model"
)

// TableInfo 受管表信息
type TableInfo struct {
	Name           string   `json:"name"`
	Label          string   `json:"label"`
	KeyColumns     []string `json:"keyColumns"`
	KeyDescription string   `json:"keyDescription"`
	Derived        []string `json:"derived,omitempty"` // 以该表为数据源的派生表
}

// ColumnInfo 业务列信息
type ColumnInfo struct {
	Name       string `json:"name"`
	Label      string `json:"label"`
	DateFormat string `json:"dateFormat,omitempty"`
	Key        bool   `json:"key"`
}

// ListTables 受管表列表
// GET /api/tables
func (h *Handler) ListTables(c *gin.Context) {
	tables := make([]TableInfo, 0, len(model.Registry))
	for _, name := range model.TableNames() {
		spec := model.Registry[name]
		info := TableInfo{
			Name:           spec.Name,
			Label:          spec.Label,
			KeyColumns:     spec.KeyColumns,
			KeyDescription: spec.KeyDescription,
		}
		for _, d := range model.DerivedTables {
			if d.DependsOn(name) {
				info.Derived = append(info.Derived, d.Name)
			}
		}
		tables = append(tables, info)
	}
	c.JSON(http.StatusOK, gin.H{"data": tables})
}

// GetColumns 表的业务列（实时读取数据库结构）
// GET /api/tables/:tableName/columns
func (h *Handler) GetColumns(c *gin.Context) {
	table := c.Param("tableName")
	spec, err := h.importer.Lookup(table)
	if err != nil {
		respondError(c, err)
		return
	}

	cols, err := h.store.BusinessColumns(c.Request.Context(), table)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]ColumnInfo, len(cols))
	for i, col := range cols {
		out[i] = ColumnInfo{Name: col, Label: spec.LabelFor(col)}
		if f, ok := spec.DateFormatFor(col); ok {
			out[i].DateFormat = string(f)
		}
		for _, k := range spec.KeyColumns {
			if k == col {
				out[i].Key = true
			}
		}
	}
	c.JSON(http.StatusOK, gin.H{"data": out})
}
