package plan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"nutrition-planner/internal/core/catalog"
	"nutrition-planner/internal/core/safety"
	"nutrition-planner/internal/infrastructure/config"
	"nutrition-planner/internal/pkg/common"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProposalSource 計畫提案來源（LLM 供應商邊界）
// 重試與退避由供應商實作負責，此層只看最終結果
type ProposalSource interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Service 一週計畫生成的協調器
// 安全過濾 → 骨架生成（LLM 或規則式）→ 對照安全子集解析
// 任一階段失敗即整體失敗，絕不降級為 best-effort 輸出
type Service struct {
	cfg      config.PlanConfig
	filter   *safety.Filter
	resolver *Resolver
	source   ProposalSource
}

// NewService 創建計畫服務
// source 可為 nil，此時 llm 策略的請求一律失敗而非退回規則式
func NewService(cfg config.PlanConfig, filter *safety.Filter, source ProposalSource) *Service {
	return &Service{
		cfg:      cfg,
		filter:   filter,
		resolver: NewResolver(cfg.MatchThreshold),
		source:   source,
	}
}

// GeneratePlan 為單一病患生成一週計畫
func (s *Service) GeneratePlan(ctx context.Context, patientID string, patient *catalog.PatientConstraints, recipes []catalog.Recipe, rules []catalog.DiseaseRule, weekStart time.Time, strategy string) (*WeeklyPlan, error) {
	if strategy == "" {
		strategy = StrategyRuleBased
	}

	safe := s.filter.SafeRecipes(patient, rules, recipes)
	if len(safe) < s.cfg.MinSafeRecipes {
		return nil, common.WrapError(common.ErrInsufficientSafeCatalog,
			fmt.Errorf("安全食譜僅 %d 道，低於下限 %d；請擴充目錄或放寬限制", len(safe), s.cfg.MinSafeRecipes))
	}

	calorieTarget := patient.CalorieTarget
	if calorieTarget <= 0 {
		calorieTarget = s.cfg.DefaultCalorieTarget
	}

	var skeleton []DaySkeleton
	var err error
	switch strategy {
	case StrategyLLM:
		skeleton, err = s.proposeSkeleton(ctx, patient, safe, calorieTarget)
		if err != nil {
			return nil, err
		}
	case StrategyRuleBased:
		skeleton = BuildTemplateSkeleton(patient, safe, s.cfg.DefaultCalorieTarget)
	default:
		return nil, common.WrapError(common.ErrInvalidRequest, fmt.Errorf("未知的計畫策略 %q", strategy))
	}

	days, err := s.resolver.Resolve(weekStart, skeleton, safe)
	if err != nil {
		return nil, err
	}

	totals := SumDays(days)
	result := &WeeklyPlan{
		ID:                uuid.NewString(),
		PatientID:         patientID,
		WeekStart:         weekStart.Format("2006-01-02"),
		Strategy:          strategy,
		Days:              days,
		Totals:            totals,
		AvgCaloriesPerDay: totals.Calories / 7,
		GeneratedAt:       time.Now().UTC(),
	}

	common.LogInfo("一週計畫生成完成",
		zap.String("plan_id", result.ID),
		zap.String("patient_id", patientID),
		zap.String("strategy", strategy),
		zap.Int("safe_recipes", len(safe)),
		zap.Float64("avg_calories_per_day", result.AvgCaloriesPerDay),
	)
	return result, nil
}

// proposeSkeleton 向 LLM 取得七日骨架
// 供應商缺席或失敗一律回傳錯誤，不退回規則式策略
func (s *Service) proposeSkeleton(ctx context.Context, patient *catalog.PatientConstraints, safe []catalog.Recipe, calorieTarget int) ([]DaySkeleton, error) {
	if s.source == nil {
		return nil, common.WrapError(common.ErrProviderError, errors.New("LLM 供應商未啟用"))
	}

	prompt, err := BuildPlanPrompt(patient, safe, calorieTarget)
	if err != nil {
		return nil, common.WrapError(common.ErrInternalError, err)
	}

	content, err := s.source.Complete(ctx, prompt)
	if err != nil {
		if _, ok := common.AsCustomError(err); ok {
			return nil, err
		}
		return nil, common.WrapError(common.ErrProviderError, err)
	}

	return ParseSkeleton(content)
}
