package meal

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	mealService "meal-analyzer/internal/core/meal"
	"meal-analyzer/internal/core/nutrition"
	"meal-analyzer/internal/pkg/common"
)

// SearchFoodRequest 單一食材解析請求
type SearchFoodRequest struct {
	Term            string  `json:"term" binding:"required"`
	QuantityInGrams float64 `json:"quantity_in_grams" binding:"required,gt=0"`
}

// SearchFoodResponse 單一食材解析回應
// matched 為 false 時 ingredient 為空、unmatched 帶原始請求內容
type SearchFoodResponse struct {
	Matched    bool                           `json:"matched"`
	Ingredient *nutrition.AnalysisIngredient  `json:"ingredient,omitempty"`
	Unmatched  *nutrition.UnmatchedIngredient `json:"unmatched,omitempty"`
}

// HandleSearchFood 處理 /search 單一食材解析 API
func HandleSearchFood(svc *mealService.MealService) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := requestID(c)

		var req SearchFoodRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			common.LogError("請求格式無效",
				zap.Error(err),
				zap.String("request_id", reqID),
			)
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
			return
		}

		resolution, err := svc.ResolveIngredient(c.Request.Context(), req.Term, req.QuantityInGrams)
		if err != nil {
			common.LogError("食材解析失敗",
				zap.Error(err),
				zap.String("request_id", reqID),
				zap.String("term", req.Term),
			)
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, SearchFoodResponse{
			Matched:    resolution.Matched(),
			Ingredient: resolution.Ingredient,
			Unmatched:  resolution.Unmatched,
		})
	}
}
