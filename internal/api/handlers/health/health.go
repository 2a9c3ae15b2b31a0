package health

import (
	"net/http"
	"runtime"
	"time"

	"nutrition-planner/internal/core/ai"
	"nutrition-planner/internal/infrastructure/config"
	"nutrition-planner/internal/infrastructure/storage"

	"github.com/gin-gonic/gin"
)

// Handler 健康檢查處理器
type Handler struct {
	cfg   *config.Config
	store *storage.Store
	llm   *ai.Service
}

// NewHandler 創建健康檢查處理器
func NewHandler(cfg *config.Config, store *storage.Store, llm *ai.Service) *Handler {
	return &Handler{cfg: cfg, store: store, llm: llm}
}

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime"`
	Cache     map[string]interface{} `json:"cache,omitempty"`
}

// HealthCheck 健康檢查
func (h *Handler) HealthCheck(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   h.cfg.App.Version,
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
	}
	if h.llm != nil {
		response.Cache = h.llm.CacheStats(c.Request.Context())
	}

	c.JSON(http.StatusOK, response)
}

// ReadinessCheck 就緒檢查：資料庫可達即就緒
func (h *Handler) ReadinessCheck(c *gin.Context) {
	if err := h.store.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}

// LivenessCheck 存活檢查
func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
