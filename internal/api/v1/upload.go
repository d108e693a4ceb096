package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"assetreport/internal/importer"
)

var errMissingFile = errors.New("missing upload file")

// AppendUpload 追加上传表格
// POST /api/upload/append?tableName=xxx
// POST /api/adminupload/append?tableName=xxx
func (h *Handler) AppendUpload(c *gin.Context) {
	table := c.Query("tableName")
	if table == "" {
		table = c.PostForm("tableName")
	}
	if _, err := h.importer.Lookup(table); err != nil {
		respondError(c, err)
		return
	}

	uploadedFile, err := c.FormFile("file")
	if err != nil {
		badRequest(c, errMissingFile, "未找到上传文件")
		return
	}
	if h.maxUploadBytes > 0 && uploadedFile.Size > h.maxUploadBytes {
		badRequest(c, errMissingFile, fmt.Sprintf("文件过大，上限 %d MB", h.maxUploadBytes>>20))
		return
	}

	ext := strings.ToLower(filepath.Ext(uploadedFile.Filename))
	if ext == "" {
		ext = ".xlsx"
	}
	tempFilePath := filepath.Join(h.uploadDir, uuid.NewString()+ext)

	// 清理临时文件，保存失败时也可能留下部分写入的文件
	defer os.Remove(tempFilePath)

	if err := c.SaveUploadedFile(uploadedFile, tempFilePath); err != nil {
		respondError(c, fmt.Errorf("保存文件失败: %w", err))
		return
	}

	// 客户端断开不影响已开始的上传事务
	ctx := context.WithoutCancel(c.Request.Context())
	result, err := h.importer.Append(ctx, importer.AppendOptions{
		TableName: table,
		FilePath:  tempFilePath,
		Filename:  uploadedFile.Filename,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": importer.Message(result),
		"data":    result.Rows,
		"summary": result,
	})
}

// ListUploadLogs 最近上传记录
// GET /api/upload/logs?tableName=&limit=
func (h *Handler) ListUploadLogs(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 || limit > 200 {
		limit = 20
	}
	logs, err := h.store.RecentUploadLogs(c.Request.Context(), c.Query("tableName"), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": logs})
}
