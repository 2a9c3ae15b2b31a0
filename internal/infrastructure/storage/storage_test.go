package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"nutrition-planner/internal/core/catalog"
	"nutrition-planner/internal/core/plan"
	"nutrition-planner/internal/pkg/common"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestPatientCRUD(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	profile := catalog.PatientConstraints{
		Name:              "Alice",
		Age:               54,
		Gender:            "female",
		MedicalConditions: []string{"hypertension"},
		Allergies:         []string{"peanuts"},
		CalorieTarget:     1800,
	}

	created, err := store.CreatePatient(ctx, profile)
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	got, err := store.GetPatient(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, profile, got.Profile)

	profile.CalorieTarget = 1600
	updated, err := store.UpdatePatient(ctx, created.ID, profile)
	require.NoError(t, err)
	assert.Equal(t, 1600, updated.Profile.CalorieTarget)

	patients, err := store.ListPatients(ctx)
	require.NoError(t, err)
	assert.Len(t, patients, 1)

	require.NoError(t, store.DeletePatient(ctx, created.ID))

	_, err = store.GetPatient(ctx, created.ID)
	require.Error(t, err)
	ce, ok := common.AsCustomError(err)
	require.True(t, ok)
	assert.Equal(t, common.ErrCodeNotFound, ce.Code)
}

func TestPatientNotFound(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.GetPatient(ctx, "missing")
	ce, ok := common.AsCustomError(err)
	require.True(t, ok)
	assert.Equal(t, common.ErrCodeNotFound, ce.Code)

	_, err = store.UpdatePatient(ctx, "missing", catalog.PatientConstraints{Name: "x"})
	ce, ok = common.AsCustomError(err)
	require.True(t, ok)
	assert.Equal(t, common.ErrCodeNotFound, ce.Code)

	err = store.DeletePatient(ctx, "missing")
	ce, ok = common.AsCustomError(err)
	require.True(t, ok)
	assert.Equal(t, common.ErrCodeNotFound, ce.Code)
}

func TestRecipeUpsert(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	q := 0.2
	recipes := []catalog.Recipe{
		{
			ExternalID:         "r1",
			Name:               "Oatmeal",
			MealType:           "breakfast",
			CaloriesPerServing: 300,
			Tags:               []string{"vegetarian"},
			Ingredients: []catalog.IngredientLine{
				{Name: "Oats", Quantity: &q, Unit: "kg"},
			},
		},
		{ExternalID: "", Name: "skipped"}, // 無 ExternalID 略過
	}

	count, err := store.UpsertRecipes(ctx, recipes)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// 重複匯入同一 ExternalID 覆蓋而非新增
	recipes[0].Name = "Overnight Oatmeal"
	count, err = store.UpsertRecipes(ctx, recipes[:1])
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	got, err := store.ListRecipes(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Overnight Oatmeal", got[0].Name)
	require.NotNil(t, got[0].Ingredients[0].Quantity)
	assert.InDelta(t, 0.2, *got[0].Ingredients[0].Quantity, 1e-9)
}

func TestDiseaseRules(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rules := []catalog.DiseaseRule{
		{Name: "Hypertension", ProhibitedTags: []string{"High-Sodium"}},
		{Name: "Type 2 Diabetes", ProhibitedTags: []string{"high-sugar"}},
	}
	count, err := store.ReplaceDiseaseRules(ctx, rules)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	got, err := store.ListDiseaseRules(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	// 標籤在寫入時已折成小寫
	assert.Equal(t, []string{"high-sodium"}, got[0].ProhibitedTags)
}

func TestPlanSaveReplacesSameWeek(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	patient, err := store.CreatePatient(ctx, catalog.PatientConstraints{Name: "Bob"})
	require.NoError(t, err)

	makePlan := func() *plan.WeeklyPlan {
		return &plan.WeeklyPlan{
			ID:          uuid.NewString(),
			PatientID:   patient.ID,
			WeekStart:   "2025-06-02",
			Strategy:    plan.StrategyRuleBased,
			Days:        make([]plan.DayPlan, 7),
			GeneratedAt: time.Now().UTC(),
		}
	}

	first := makePlan()
	require.NoError(t, store.SavePlan(ctx, first))

	second := makePlan()
	require.NoError(t, store.SavePlan(ctx, second))

	// 同病患同週只保留最新計畫
	plans, err := store.ListPlans(ctx, patient.ID)
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, second.ID, plans[0].ID)

	_, err = store.GetPlan(ctx, first.ID)
	ce, ok := common.AsCustomError(err)
	require.True(t, ok)
	assert.Equal(t, common.ErrCodeNotFound, ce.Code)

	got, err := store.GetPlan(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, "2025-06-02", got.WeekStart)
	assert.Len(t, got.Days, 7)

	require.NoError(t, store.DeletePlan(ctx, second.ID))
	err = store.DeletePlan(ctx, second.ID)
	ce, ok = common.AsCustomError(err)
	require.True(t, ok)
	assert.Equal(t, common.ErrCodeNotFound, ce.Code)
}

func TestDeletePatientRemovesPlans(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	patient, err := store.CreatePatient(ctx, catalog.PatientConstraints{Name: "Cara"})
	require.NoError(t, err)

	p := &plan.WeeklyPlan{
		ID:          uuid.NewString(),
		PatientID:   patient.ID,
		WeekStart:   "2025-06-02",
		Strategy:    plan.StrategyRuleBased,
		Days:        make([]plan.DayPlan, 7),
		GeneratedAt: time.Now().UTC(),
	}
	require.NoError(t, store.SavePlan(ctx, p))
	require.NoError(t, store.DeletePatient(ctx, patient.ID))

	plans, err := store.ListPlans(ctx, patient.ID)
	require.NoError(t, err)
	assert.Empty(t, plans)
}
