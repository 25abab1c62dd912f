package meal

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"meal-analyzer/internal/pkg/common"
)

// requestID 取出或補上請求 ID
func requestID(c *gin.Context) string {
	id := c.GetHeader("X-Request-ID")
	if id == "" {
		id = common.GenerateUUID()
		c.Header("X-Request-ID", id)
	}
	return id
}

// getImageType 獲取圖片類型（用於日誌記錄）
func getImageType(image string) string {
	if image == "" {
		return "empty"
	}
	if strings.HasPrefix(image, "http://") || strings.HasPrefix(image, "https://") {
		return "url"
	}
	if strings.HasPrefix(image, "data:image/") {
		parts := strings.Split(image, ";base64,")
		if len(parts) == 2 {
			return "base64_data_uri_" + strings.TrimPrefix(parts[0], "data:image/")
		}
		return "invalid_data_uri"
	}
	if _, err := base64.StdEncoding.DecodeString(image); err == nil {
		return "base64"
	}
	return "unknown_format"
}

// respondError 將解析錯誤映射為 HTTP 狀態碼
// 資料完整性故障與檢索層故障是硬錯誤；其餘一律視為服務暫時不可用
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrDataIntegrity):
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Catalog index and base table are out of sync",
			"code":  common.ErrCodeDataIntegrity,
		})
	case errors.Is(err, common.ErrEmbeddingUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Embedding service unavailable",
			"code":  common.ErrCodeServiceUnavailable,
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
			"code":  common.ErrCodeInternalError,
		})
	}
}
