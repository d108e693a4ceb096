package v1

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"assetreport/internal/model"
)

// respondError 错误映射：校验错误 400，不存在 404，其余 500 并附带驱动信息和堆栈
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)

	var validation *model.ValidationError
	if errors.As(err, &validation) {
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Message, "detail": err.Error()})
		return
	}

	var notFound *model.NotFoundError
	if errors.As(err, &notFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": notFound.Message})
		return
	}

	message := "服务器内部错误"
	var txErr *model.TransactionError
	if errors.As(err, &txErr) {
		message = "写入失败，本次上传已全部回滚"
	}
	c.JSON(http.StatusInternalServerError, gin.H{
		"error":  message,
		"detail": err.Error(),
		"stack":  fmt.Sprintf("%+v", err),
	})
}

func badRequest(c *gin.Context, err error, message string) {
	respondError(c, model.NewValidationError(err, message))
}
