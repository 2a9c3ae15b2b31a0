package patient

import (
	"encoding/json"
	"net/http"

	"nutrition-planner/internal/api/handlers"
	"nutrition-planner/internal/core/catalog"
	"nutrition-planner/internal/infrastructure/storage"
	"nutrition-planner/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler 病患 CRUD 處理器
type Handler struct {
	store *storage.Store
}

// NewHandler 創建病患處理器
func NewHandler(store *storage.Store) *Handler {
	return &Handler{store: store}
}

// patientRequest 病患請求體
// 同時接受新舊兩種欄位形態，邊界一次正規化為 PatientConstraints，
// 內部元件不再分支判斷輸入形態
type patientRequest struct {
	Name                string          `json:"name" binding:"required"`
	Age                 int             `json:"age"`
	Gender              string          `json:"gender"`
	MedicalConditions   []string        `json:"medical_conditions"`
	Conditions          []string        `json:"conditions"` // 舊欄位名
	Allergies           []string        `json:"allergies"`
	DietaryRestrictions json.RawMessage `json:"dietary_restrictions"`
	CalorieTarget       int             `json:"calorie_target"`
	DailyCalorieTarget  int             `json:"daily_calorie_target"` // 舊欄位名
}

// toConstraints 邊界正規化
func (r *patientRequest) toConstraints() catalog.PatientConstraints {
	conditions := r.MedicalConditions
	if len(conditions) == 0 {
		conditions = r.Conditions
	}

	target := r.CalorieTarget
	if target == 0 {
		target = r.DailyCalorieTarget
	}

	return catalog.PatientConstraints{
		Name:                r.Name,
		Age:                 r.Age,
		Gender:              r.Gender,
		MedicalConditions:   catalog.TrimList(conditions),
		Allergies:           catalog.TrimList(r.Allergies),
		DietaryRestrictions: parseRestrictions(r.DietaryRestrictions),
		CalorieTarget:       target,
	}
}

// parseRestrictions 飲食限制可為物件陣列或純字串陣列
func parseRestrictions(raw json.RawMessage) []catalog.DietaryRestriction {
	if len(raw) == 0 {
		return nil
	}

	var structured []catalog.DietaryRestriction
	if err := json.Unmarshal(raw, &structured); err == nil {
		return structured
	}

	var names []string
	if err := json.Unmarshal(raw, &names); err == nil {
		out := make([]catalog.DietaryRestriction, 0, len(names))
		for _, name := range catalog.TrimList(names) {
			out = append(out, catalog.DietaryRestriction{Type: name})
		}
		return out
	}
	return nil
}

// Create 新增病患
func (h *Handler) Create(c *gin.Context) {
	var req patientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.RespondError(c, common.WrapError(common.ErrInvalidRequest, err))
		return
	}

	patient, err := h.store.CreatePatient(c.Request.Context(), req.toConstraints())
	if err != nil {
		handlers.RespondError(c, err)
		return
	}

	common.LogInfo("病患已建立",
		zap.String("patient_id", patient.ID),
	)
	c.JSON(http.StatusCreated, patient)
}

// List 列出全部病患
func (h *Handler) List(c *gin.Context) {
	patients, err := h.store.ListPatients(c.Request.Context())
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"patients": patients,
		"count":    len(patients),
	})
}

// Get 取得單一病患
func (h *Handler) Get(c *gin.Context) {
	patient, err := h.store.GetPatient(c.Request.Context(), c.Param("id"))
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, patient)
}

// Update 更新病患限制條件
func (h *Handler) Update(c *gin.Context) {
	var req patientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.RespondError(c, common.WrapError(common.ErrInvalidRequest, err))
		return
	}

	patient, err := h.store.UpdatePatient(c.Request.Context(), c.Param("id"), req.toConstraints())
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, patient)
}

// Delete 刪除病患
func (h *Handler) Delete(c *gin.Context) {
	if err := h.store.DeletePatient(c.Request.Context(), c.Param("id")); err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
