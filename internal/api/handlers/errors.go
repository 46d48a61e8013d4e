package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"catmatch/internal/service"
)

// respondError 將服務錯誤轉成 HTTP 回應
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch service.KindOf(err) {
	case service.KindValidation, service.KindQuotaExceeded:
		status = http.StatusBadRequest
	case service.KindForbidden:
		status = http.StatusForbidden
	case service.KindNotFound:
		status = http.StatusNotFound
	case service.KindConflict:
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.JSON(status, gin.H{
		"error": service.PublicMessage(err),
		"code":  service.CodeOf(err),
	})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg, "code": service.CodeValidation})
}

// parseID 解析路徑參數中的 ID
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		badRequest(c, "無效的 "+name)
		return 0, false
	}
	return uint(id), true
}
