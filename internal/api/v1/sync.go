package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Sync 手动触发派生表重建（异步）
// POST /api/sync/:derivedName
func (h *Handler) Sync(c *gin.Context) {
	if h.rebuilder == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "派生表同步未启用"})
		return
	}

	name := c.Param("derivedName")
	if err := h.rebuilder.TriggerDerived(name); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "已开始重建", "table": name})
}
