package procurement

import (
	"net/http"

	"nutrition-planner/internal/api/handlers"
	"nutrition-planner/internal/core/catalog"
	procCore "nutrition-planner/internal/core/procurement"
	"nutrition-planner/internal/infrastructure/storage"
	"nutrition-planner/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler 採購清單處理器
type Handler struct {
	store      *storage.Store
	aggregator *procCore.Aggregator
	threshold  float64
}

// NewHandler 創建採購處理器
func NewHandler(store *storage.Store, threshold float64) *Handler {
	return &Handler{
		store:      store,
		aggregator: procCore.NewAggregator(),
		threshold:  threshold,
	}
}

type aggregateRequest struct {
	PlanIDs []string `json:"plan_ids" binding:"required,min=1"`
}

// Aggregate 跨計畫彙總採購清單
// 任一 plan_id 不存在即回 NOT_FOUND；
// 計畫內無法對應目錄的餐次則靜默略過
func (h *Handler) Aggregate(c *gin.Context) {
	var req aggregateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.RespondError(c, common.WrapError(common.ErrInvalidRequest, err))
		return
	}

	ctx := c.Request.Context()
	var entries []procCore.MealEntry
	for _, planID := range req.PlanIDs {
		weekly, err := h.store.GetPlan(ctx, planID)
		if err != nil {
			handlers.RespondError(c, err)
			return
		}
		for _, slot := range weekly.MealEntries() {
			entries = append(entries, procCore.MealEntry{
				RecipeID: slot.RecipeID,
				NameHint: slot.Name,
				Portion:  slot.Portion,
			})
		}
	}

	recipes, err := h.store.ListRecipes(ctx)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	index := catalog.BuildNameIndex(recipes, h.threshold)

	ingredients := h.aggregator.Aggregate(entries, recipes, index)

	common.LogInfo("採購清單已產出",
		zap.Int("plans", len(req.PlanIDs)),
		zap.Int("ingredients", len(ingredients)),
	)
	c.JSON(http.StatusOK, gin.H{
		"plan_count":  len(req.PlanIDs),
		"ingredients": ingredients,
	})
}
