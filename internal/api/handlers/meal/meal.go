package meal

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	mealService "meal-analyzer/internal/core/meal"
	"meal-analyzer/internal/core/nutrition"
	"meal-analyzer/internal/pkg/common"
)

// AnalyzeMealRequest 餐點圖片分析請求
// image: base64 或 URL
type AnalyzeMealRequest struct {
	Image           string `json:"image" binding:"required"`   // base64 encoded image 或 image URL
	DescriptionHint string `json:"description_hint,omitempty"` // 可選，使用者對圖片的簡述
}

// AnalyzeMealResponse 餐點分析回應
// 未比對的食材單獨列出；有啟用後備時附上 LLM 估計值
type AnalyzeMealResponse struct {
	Meal               nutrition.AnalysisMeal     `json:"meal"`
	EstimatedNutrients *common.EstimatedNutrients `json:"estimated_nutrients,omitempty"`
}

// HandleAnalyzeMeal 處理 /meal 餐點圖片分析 API
func HandleAnalyzeMeal(svc *mealService.MealService) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := requestID(c)

		common.LogInfo("開始處理餐點分析請求",
			zap.String("request_id", reqID),
			zap.String("client_ip", c.ClientIP()),
		)

		var req AnalyzeMealRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			common.LogError("請求格式無效",
				zap.Error(err),
				zap.String("request_id", reqID),
			)
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
			return
		}

		if getImageType(req.Image) == "unknown_format" {
			common.LogError("圖片格式無效",
				zap.String("request_id", reqID),
				zap.Int("image_length", len(req.Image)),
			)
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid image format"})
			return
		}

		analyzed, err := svc.AnalyzeImage(c.Request.Context(), req.Image, req.DescriptionHint)
		if err != nil {
			common.LogError("餐點分析失敗",
				zap.Error(err),
				zap.String("request_id", reqID),
				zap.String("image_type", getImageType(req.Image)),
			)
			respondError(c, err)
			return
		}

		response := AnalyzeMealResponse{Meal: analyzed}

		// 有未比對的食材時向 LLM 要一份估計值；失敗不影響主結果
		if len(analyzed.Unmatched) > 0 {
			estimated, err := svc.EstimateUnmatched(c.Request.Context(), analyzed.Unmatched)
			if err != nil {
				common.LogWarn("未比對食材的營養估計失敗",
					zap.Error(err),
					zap.String("request_id", reqID),
					zap.Int("unmatched_count", len(analyzed.Unmatched)),
				)
			} else {
				response.EstimatedNutrients = estimated
			}
		}

		common.LogInfo("餐點分析完成",
			zap.String("request_id", reqID),
			zap.String("meal", analyzed.Name),
			zap.Int("matched", len(analyzed.Ingredients)),
			zap.Int("unmatched", len(analyzed.Unmatched)),
		)
		c.JSON(http.StatusOK, response)
	}
}
