package plan

import (
	"testing"
	"time"

	"nutrition-planner/internal/core/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mondayUTC() time.Time {
	return time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
}

func TestSelectProfile(t *testing.T) {
	tests := []struct {
		name    string
		patient catalog.PatientConstraints
		want    string
	}{
		{
			name:    "vegan wins over vegetarian",
			patient: catalog.PatientConstraints{DietaryRestrictions: []catalog.DietaryRestriction{{Type: "vegetarian"}, {Type: "Vegan"}}},
			want:    "vegan",
		},
		{
			name:    "vegetarian",
			patient: catalog.PatientConstraints{DietaryRestrictions: []catalog.DietaryRestriction{{Type: "vegetarian"}}},
			want:    "vegetarian",
		},
		{
			name:    "diabetic from condition",
			patient: catalog.PatientConstraints{MedicalConditions: []string{"Type 2 Diabetes"}},
			want:    "diabetic",
		},
		{
			name:    "low sodium from hypertension",
			patient: catalog.PatientConstraints{MedicalConditions: []string{"Hypertension"}},
			want:    "low_sodium",
		},
		{
			name:    "low sodium from restriction",
			patient: catalog.PatientConstraints{DietaryRestrictions: []catalog.DietaryRestriction{{Type: "low_sodium"}}},
			want:    "low_sodium",
		},
		{
			name:    "standard default",
			patient: catalog.PatientConstraints{},
			want:    "standard",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, selectProfile(&tt.patient).name)
		})
	}
}

func TestBuildTemplateSkeletonResolvable(t *testing.T) {
	safe := safeTestRecipes()
	patient := &catalog.PatientConstraints{CalorieTarget: 2000}

	skeleton := BuildTemplateSkeleton(patient, safe, 2000)
	require.Len(t, skeleton, 7)

	// 規則式骨架必須完整可解析：與解析器串起來不得失敗
	r := NewResolver(0.8)
	days, err := r.Resolve(mondayUTC(), skeleton, safe)
	require.NoError(t, err)
	assert.Len(t, days, 7)
}

func TestBuildTemplateSkeletonPrefersTaggedRecipes(t *testing.T) {
	safe := []catalog.Recipe{
		{ExternalID: "b1", Name: "Bacon Omelette", MealType: "breakfast", CaloriesPerServing: 400},
		{ExternalID: "b2", Name: "Tofu Scramble", MealType: "breakfast", CaloriesPerServing: 350, Tags: []string{"vegan"}},
		{ExternalID: "l1", Name: "Lentil Bowl", MealType: "lunch", CaloriesPerServing: 500, Tags: []string{"vegan"}},
		{ExternalID: "d1", Name: "Vegetable Curry", MealType: "dinner", CaloriesPerServing: 550, Tags: []string{"vegan"}},
	}
	patient := &catalog.PatientConstraints{
		DietaryRestrictions: []catalog.DietaryRestriction{{Type: "vegan"}},
		CalorieTarget:       1800,
	}

	skeleton := BuildTemplateSkeleton(patient, safe, 2000)
	for _, day := range skeleton {
		assert.Equal(t, "b2", day.Breakfast.RecipeID)
	}
}

func TestBuildTemplateSkeletonRotatesPool(t *testing.T) {
	safe := append(safeTestRecipes(),
		catalog.Recipe{ExternalID: "b2", Name: "Pancakes", MealType: "breakfast", CaloriesPerServing: 450},
	)
	patient := &catalog.PatientConstraints{CalorieTarget: 2000}

	skeleton := BuildTemplateSkeleton(patient, safe, 2000)
	assert.NotEqual(t, skeleton[0].Breakfast.RecipeID, skeleton[1].Breakfast.RecipeID)
}

func TestPortionFor(t *testing.T) {
	recipe := &catalog.Recipe{CaloriesPerServing: 500}

	// 目標 500 kcal → 份量 1.0
	assert.Equal(t, 1.0, portionFor(recipe, 500))
	// 超出上下限截斷
	assert.Equal(t, maxPortion, portionFor(recipe, 5000))
	assert.Equal(t, minPortion, portionFor(recipe, 10))
	// 無熱量資料回退 1.0
	assert.Equal(t, 1.0, portionFor(&catalog.Recipe{}, 500))
}
