package api

import (
	"context"
	"net/http"
	"time"

	healthHandler "nutrition-planner/internal/api/handlers/health"
	patientHandler "nutrition-planner/internal/api/handlers/patient"
	planHandler "nutrition-planner/internal/api/handlers/plan"
	procurementHandler "nutrition-planner/internal/api/handlers/procurement"
	recipeHandler "nutrition-planner/internal/api/handlers/recipe"
	"nutrition-planner/internal/api/middleware"
	"nutrition-planner/internal/core/ai"
	planCore "nutrition-planner/internal/core/plan"
	"nutrition-planner/internal/core/safety"
	"nutrition-planner/internal/infrastructure/config"
	"nutrition-planner/internal/infrastructure/storage"
	"nutrition-planner/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// 請求超時（LLM 計畫生成含重試可能耗時較久）
	timeoutDuration = 120 * time.Second
	// 請求體大小限制 (4MB，批次匯入目錄足夠)
	maxBodySize = 4 << 20
)

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, store *storage.Store, llmSvc *ai.Service) (*gin.Engine, error) {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// 基礎中間件
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(requestid.New())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.Use(middleware.BodySizeLimit(maxBodySize))

	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}

	// 請求超時與請求 ID 注入
	router.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeoutDuration)
		defer cancel()
		ctx = context.WithValue(ctx, ai.RequestIDKey, requestid.Get(c))
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if ctx.Err() == context.DeadlineExceeded {
			common.LogError("Request timeout",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", requestid.Get(c)),
				zap.Duration("timeout", timeoutDuration),
			)
			c.AbortWithStatusJSON(http.StatusGatewayTimeout, gin.H{
				"error": "Request timeout",
				"code":  "REQUEST_TIMEOUT",
			})
		}
	})

	// 初始化服務
	filter := safety.NewFilter()

	// *ai.Service 為 nil 時不可直接塞進介面，否則介面非 nil 而指標為 nil
	var source planCore.ProposalSource
	if llmSvc != nil {
		source = llmSvc
	}
	planSvc := planCore.NewService(cfg.Plan, filter, source)

	healthH := healthHandler.NewHandler(cfg, store, llmSvc)
	patientH := patientHandler.NewHandler(store)
	recipeH := recipeHandler.NewHandler(store)
	planH := planHandler.NewHandler(store, planSvc)
	procurementH := procurementHandler.NewHandler(store, cfg.Plan.MatchThreshold)

	// 健康檢查路由
	router.GET("/health", healthH.HealthCheck)
	router.GET("/ready", healthH.ReadinessCheck)
	router.GET("/live", healthH.LivenessCheck)

	// API 路由組
	api := router.Group("/api/v1")
	{
		patientGroup := api.Group("/patients")
		{
			patientGroup.POST("", patientH.Create)
			patientGroup.GET("", patientH.List)
			patientGroup.GET("/:id", patientH.Get)
			patientGroup.PUT("/:id", patientH.Update)
			patientGroup.DELETE("/:id", patientH.Delete)
		}

		recipeGroup := api.Group("/recipes")
		{
			recipeGroup.POST("/import", recipeH.Import)
			recipeGroup.GET("", recipeH.List)
			recipeGroup.GET("/rules", recipeH.ListRules)
		}

		planGroup := api.Group("/plans")
		{
			planGroup.POST("/generate", planH.Generate)
			planGroup.GET("", planH.List)
			planGroup.GET("/:id", planH.Get)
			planGroup.DELETE("/:id", planH.Delete)
		}

		api.POST("/procurement/aggregate", procurementH.Aggregate)
	}

	common.LogInfo("Router setup completed successfully",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.Bool("llm_enabled", llmSvc != nil),
		zap.Duration("timeout", timeoutDuration),
		zap.Int64("max_body_size", maxBodySize),
	)
	return router, nil
}
