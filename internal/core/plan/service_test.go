package plan

import (
	"context"
	"errors"
	"testing"

	"nutrition-planner/internal/core/catalog"
	"nutrition-planner/internal/core/safety"
	"nutrition-planner/internal/infrastructure/config"
	"nutrition-planner/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	content string
	err     error
	calls   int
}

func (f *fakeSource) Complete(ctx context.Context, prompt string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.content, nil
}

func testPlanConfig() config.PlanConfig {
	return config.PlanConfig{
		MatchThreshold:       0.8,
		MinSafeRecipes:       3,
		DefaultCalorieTarget: 2000,
	}
}

func TestGeneratePlanRuleBased(t *testing.T) {
	svc := NewService(testPlanConfig(), safety.NewFilter(), nil)
	patient := &catalog.PatientConstraints{Name: "Alice", CalorieTarget: 2000}

	result, err := svc.GeneratePlan(context.Background(), "p1", patient, safeTestRecipes(), nil, mondayUTC(), "")
	require.NoError(t, err)

	assert.Equal(t, "p1", result.PatientID)
	assert.Equal(t, StrategyRuleBased, result.Strategy)
	assert.Equal(t, "2025-06-02", result.WeekStart)
	require.Len(t, result.Days, 7)
	assert.NotEmpty(t, result.ID)
	assert.InDelta(t, result.Totals.Calories/7, result.AvgCaloriesPerDay, 1e-9)
}

func TestGeneratePlanInsufficientSafeCatalog(t *testing.T) {
	svc := NewService(testPlanConfig(), safety.NewFilter(), nil)
	// 過敏原把整個目錄濾光
	patient := &catalog.PatientConstraints{Allergies: []string{"a"}}
	recipes := []catalog.Recipe{
		{ExternalID: "r1", Name: "Anything", Allergens: []string{"a"}},
	}

	_, err := svc.GeneratePlan(context.Background(), "p1", patient, recipes, nil, mondayUTC(), StrategyRuleBased)
	require.Error(t, err)
	ce, ok := common.AsCustomError(err)
	require.True(t, ok)
	assert.Equal(t, common.ErrCodeInsufficientSafeCatalog, ce.Code)
}

func TestGeneratePlanLLM(t *testing.T) {
	source := &fakeSource{content: sevenDaysWithID("b1")}
	svc := NewService(testPlanConfig(), safety.NewFilter(), source)
	patient := &catalog.PatientConstraints{CalorieTarget: 2000}

	result, err := svc.GeneratePlan(context.Background(), "p1", patient, safeTestRecipes(), nil, mondayUTC(), StrategyLLM)
	require.NoError(t, err)
	assert.Equal(t, StrategyLLM, result.Strategy)
	assert.Len(t, result.Days, 7)
	assert.Equal(t, 1, source.calls)
}

func TestGeneratePlanLLMWithoutProvider(t *testing.T) {
	svc := NewService(testPlanConfig(), safety.NewFilter(), nil)
	patient := &catalog.PatientConstraints{}

	// 供應商缺席不得退回規則式策略
	_, err := svc.GeneratePlan(context.Background(), "p1", patient, safeTestRecipes(), nil, mondayUTC(), StrategyLLM)
	require.Error(t, err)
	ce, ok := common.AsCustomError(err)
	require.True(t, ok)
	assert.Equal(t, common.ErrCodeProviderError, ce.Code)
}

func TestGeneratePlanProviderFailure(t *testing.T) {
	source := &fakeSource{err: errors.New("connection refused")}
	svc := NewService(testPlanConfig(), safety.NewFilter(), source)
	patient := &catalog.PatientConstraints{}

	_, err := svc.GeneratePlan(context.Background(), "p1", patient, safeTestRecipes(), nil, mondayUTC(), StrategyLLM)
	require.Error(t, err)
	ce, ok := common.AsCustomError(err)
	require.True(t, ok)
	assert.Equal(t, common.ErrCodeProviderError, ce.Code)
}

func TestGeneratePlanMalformedProposal(t *testing.T) {
	source := &fakeSource{content: `{"days": "not an array"}`}
	svc := NewService(testPlanConfig(), safety.NewFilter(), source)
	patient := &catalog.PatientConstraints{}

	_, err := svc.GeneratePlan(context.Background(), "p1", patient, safeTestRecipes(), nil, mondayUTC(), StrategyLLM)
	require.Error(t, err)
	ce, ok := common.AsCustomError(err)
	require.True(t, ok)
	assert.Equal(t, common.ErrCodeMalformedProposal, ce.Code)
}

func TestGeneratePlanUnknownStrategy(t *testing.T) {
	svc := NewService(testPlanConfig(), safety.NewFilter(), nil)
	patient := &catalog.PatientConstraints{}

	_, err := svc.GeneratePlan(context.Background(), "p1", patient, safeTestRecipes(), nil, mondayUTC(), "magic")
	require.Error(t, err)
	ce, ok := common.AsCustomError(err)
	require.True(t, ok)
	assert.Equal(t, common.ErrCodeInvalidRequest, ce.Code)
}

func TestGeneratePlanLLMProposesUnsafeRecipe(t *testing.T) {
	// 提案引用的 ID 不在安全子集內 → 整體失敗
	source := &fakeSource{content: sevenDaysWithID("unsafe-id")}
	svc := NewService(testPlanConfig(), safety.NewFilter(), source)
	patient := &catalog.PatientConstraints{}

	_, err := svc.GeneratePlan(context.Background(), "p1", patient, safeTestRecipes(), nil, mondayUTC(), StrategyLLM)
	require.Error(t, err)
	ce, ok := common.AsCustomError(err)
	require.True(t, ok)
	assert.Equal(t, common.ErrCodeUnresolvableSlot, ce.Code)
}

func sevenDaysWithID(id string) string {
	day := `{"breakfast":{"recipe_id":"` + id + `","portion":1},"lunch":{"recipe_id":"l1","portion":1},"dinner":{"recipe_id":"d1","portion":1}}`
	out := `{"days":[` + day
	for i := 1; i < 7; i++ {
		out += "," + day
	}
	return out + `]}`
}
