package meal

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	mealService "meal-analyzer/internal/core/meal"
	"meal-analyzer/internal/pkg/common"
)

// AnalyzeIngredientsRequest 食材清單重新分析請求
// 使用者在前端編輯過食材後重新計算整餐營養
type AnalyzeIngredientsRequest struct {
	Name        string                       `json:"name"`
	Ingredients []common.ExtractedIngredient `json:"ingredients" binding:"required,min=1,dive"`
}

// HandleAnalyzeIngredients 處理 /ingredients 食材清單分析 API
func HandleAnalyzeIngredients(svc *mealService.MealService) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := requestID(c)

		var req AnalyzeIngredientsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			common.LogError("請求格式無效",
				zap.Error(err),
				zap.String("request_id", reqID),
			)
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
			return
		}

		analyzed, err := svc.AnalyzeIngredients(c.Request.Context(), req.Name, req.Ingredients)
		if err != nil {
			common.LogError("食材清單分析失敗",
				zap.Error(err),
				zap.String("request_id", reqID),
				zap.Int("ingredient_count", len(req.Ingredients)),
			)
			respondError(c, err)
			return
		}

		response := AnalyzeMealResponse{Meal: analyzed}
		if len(analyzed.Unmatched) > 0 {
			estimated, err := svc.EstimateUnmatched(c.Request.Context(), analyzed.Unmatched)
			if err != nil {
				common.LogWarn("未比對食材的營養估計失敗",
					zap.Error(err),
					zap.String("request_id", reqID),
				)
			} else {
				response.EstimatedNutrients = estimated
			}
		}

		common.LogInfo("食材清單分析完成",
			zap.String("request_id", reqID),
			zap.Int("matched", len(analyzed.Ingredients)),
			zap.Int("unmatched", len(analyzed.Unmatched)),
		)
		c.JSON(http.StatusOK, response)
	}
}
