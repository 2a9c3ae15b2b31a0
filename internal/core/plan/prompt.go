package plan

import (
	"fmt"
	"strings"

	"nutrition-planner/internal/core/catalog"
	"nutrition-planner/internal/pkg/common"
)

// promptRecipe 提示詞中的精簡食譜條目
// 只帶規劃所需欄位，避免提示詞超出 token 上限
type promptRecipe struct {
	RecipeID string   `json:"recipe_id"`
	Name     string   `json:"meal_name"`
	MealType string   `json:"meal_type,omitempty"`
	Calories float64  `json:"calories_per_serving"`
	ProteinG float64  `json:"protein_g"`
	CarbsG   float64  `json:"carbs_g"`
	FatG     float64  `json:"fat_g"`
	Tags     []string `json:"tags,omitempty"`
}

// BuildPlanPrompt 組裝七日計畫生成的提示詞
// 只把安全子集交給模型，模型沒有機會引用不安全食譜
func BuildPlanPrompt(patient *catalog.PatientConstraints, safeRecipes []catalog.Recipe, calorieTarget int) (string, error) {
	compact := make([]promptRecipe, 0, len(safeRecipes))
	for i := range safeRecipes {
		r := &safeRecipes[i]
		compact = append(compact, promptRecipe{
			RecipeID: r.ExternalID,
			Name:     r.Name,
			MealType: r.MealType,
			Calories: r.CaloriesPerServing,
			ProteinG: r.ProteinG,
			CarbsG:   r.CarbsG,
			FatG:     r.FatG,
			Tags:     r.Tags,
		})
	}
	catalogJSON, err := common.ToJSON(compact)
	if err != nil {
		return "", err
	}

	var restrictions []string
	for _, r := range patient.DietaryRestrictions {
		if r.Type != "" {
			restrictions = append(restrictions, r.Type)
		}
	}

	var b strings.Builder
	b.WriteString("You are a clinical meal-planning assistant. Create a 7-day meal plan for the patient below.\n\n")
	b.WriteString("Patient profile:\n")
	fmt.Fprintf(&b, "- Age: %d, Gender: %s\n", patient.Age, patient.Gender)
	fmt.Fprintf(&b, "- Medical conditions: %s\n", joinOrNone(patient.MedicalConditions))
	fmt.Fprintf(&b, "- Allergies: %s\n", joinOrNone(patient.Allergies))
	fmt.Fprintf(&b, "- Dietary restrictions: %s\n", joinOrNone(restrictions))
	fmt.Fprintf(&b, "- Daily calorie target: %d kcal\n\n", calorieTarget)
	b.WriteString("You may ONLY use meals from this catalog. Reference each meal by its recipe_id.\n")
	b.WriteString("Catalog (JSON):\n")
	b.WriteString(catalogJSON)
	b.WriteString("\n\n")
	b.WriteString("Rules:\n")
	b.WriteString("- Exactly 7 days, no more, no fewer.\n")
	b.WriteString("- Every day has breakfast, lunch and dinner; snacks are optional.\n")
	fmt.Fprintf(&b, "- Keep each day's total calories close to %d kcal by choosing portions between 0.5 and 3.0.\n", calorieTarget)
	b.WriteString("- Vary the meals across the week.\n\n")
	b.WriteString("Respond with JSON only, no commentary, in exactly this shape:\n")
	b.WriteString(`{"days":[{"breakfast":{"recipe_id":"...","portion":1.0},"lunch":{"recipe_id":"...","portion":1.0},"dinner":{"recipe_id":"...","portion":1.0},"snacks":[{"recipe_id":"...","portion":0.5}]}]}`)
	return b.String(), nil
}

func joinOrNone(values []string) string {
	trimmed := catalog.TrimList(values)
	if len(trimmed) == 0 {
		return "none"
	}
	return strings.Join(trimmed, ", ")
}
