package plan

import (
	"fmt"
	"net/http"
	"time"

	"nutrition-planner/internal/api/handlers"
	planCore "nutrition-planner/internal/core/plan"
	"nutrition-planner/internal/infrastructure/storage"
	"nutrition-planner/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler 一週計畫處理器
type Handler struct {
	store   *storage.Store
	planSvc *planCore.Service
}

// NewHandler 創建計畫處理器
func NewHandler(store *storage.Store, planSvc *planCore.Service) *Handler {
	return &Handler{store: store, planSvc: planSvc}
}

type generateRequest struct {
	PatientIDs []string `json:"patient_ids" binding:"required,min=1"`
	WeekStart  string   `json:"week_start"` // YYYY-MM-DD，缺省為下週一
	Strategy   string   `json:"strategy"`   // rule_based | llm
}

// Generate 為一或多位病患生成一週計畫
// 任一病患失敗即整個請求失敗，不回傳部分結果；
// 成功生成的計畫取代同病患同週的既有計畫
func (h *Handler) Generate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.RespondError(c, common.WrapError(common.ErrInvalidRequest, err))
		return
	}

	weekStart, err := resolveWeekStart(req.WeekStart)
	if err != nil {
		handlers.RespondError(c, common.WrapError(common.ErrInvalidRequest, err))
		return
	}

	ctx := c.Request.Context()
	recipes, err := h.store.ListRecipes(ctx)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	rules, err := h.store.ListDiseaseRules(ctx)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}

	plans := make([]*planCore.WeeklyPlan, 0, len(req.PatientIDs))
	for _, patientID := range req.PatientIDs {
		patient, err := h.store.GetPatient(ctx, patientID)
		if err != nil {
			handlers.RespondError(c, err)
			return
		}

		result, err := h.planSvc.GeneratePlan(ctx, patient.ID, &patient.Profile, recipes, rules, weekStart, req.Strategy)
		if err != nil {
			common.LogWarn("計畫生成失敗",
				zap.String("patient_id", patientID),
				zap.Error(err),
			)
			handlers.RespondError(c, err)
			return
		}
		if err := h.store.SavePlan(ctx, result); err != nil {
			handlers.RespondError(c, err)
			return
		}
		plans = append(plans, result)
	}

	c.JSON(http.StatusCreated, gin.H{
		"plans": plans,
		"count": len(plans),
	})
}

// List 列出計畫，可用 patient_id 過濾
func (h *Handler) List(c *gin.Context) {
	plans, err := h.store.ListPlans(c.Request.Context(), c.Query("patient_id"))
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"plans": plans,
		"count": len(plans),
	})
}

// Get 取得單一計畫
func (h *Handler) Get(c *gin.Context) {
	result, err := h.store.GetPlan(c.Request.Context(), c.Param("id"))
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Delete 刪除計畫
func (h *Handler) Delete(c *gin.Context) {
	if err := h.store.DeletePlan(c.Request.Context(), c.Param("id")); err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// resolveWeekStart 解析週起始日，缺省為下週一
func resolveWeekStart(raw string) (time.Time, error) {
	if raw == "" {
		return nextMonday(time.Now()), nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("week_start 必須為 YYYY-MM-DD: %w", err)
	}
	return t, nil
}

// nextMonday 下一個週一（今天是週一則取下週）
func nextMonday(from time.Time) time.Time {
	offset := (int(time.Monday) - int(from.Weekday()) + 7) % 7
	if offset == 0 {
		offset = 7
	}
	day := from.AddDate(0, 0, offset)
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
}
