package plan

import (
	"time"

	"nutrition-planner/internal/core/catalog"
)

// 計畫生成策略
const (
	StrategyRuleBased = "rule_based"
	StrategyLLM       = "llm"
)

// NutritionTotals 營養總和（每餐、每日、每週共用）
type NutritionTotals struct {
	Calories float64 `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
}

// Add 累加另一組營養值
func (n *NutritionTotals) Add(other NutritionTotals) {
	n.Calories += other.Calories
	n.ProteinG += other.ProteinG
	n.CarbsG += other.CarbsG
	n.FatG += other.FatG
}

// Meal 已解析的單一餐次，營養值已按份量倍數換算
type Meal struct {
	RecipeID  string          `json:"recipe_id"`
	Name      string          `json:"name"`
	MealType  string          `json:"meal_type,omitempty"`
	Portion   float64         `json:"portion"`
	Nutrition NutritionTotals `json:"nutrition"`
}

// DayPlan 一日計畫：三正餐加可變數量的點心
type DayPlan struct {
	Date      string          `json:"date"` // YYYY-MM-DD
	Breakfast *Meal           `json:"breakfast"`
	Lunch     *Meal           `json:"lunch"`
	Dinner    *Meal           `json:"dinner"`
	Snacks    []Meal          `json:"snacks,omitempty"`
	Totals    NutritionTotals `json:"totals"`
}

// WeeklyPlan 一週計畫與彙總營養
type WeeklyPlan struct {
	ID                string          `json:"id"`
	PatientID         string          `json:"patient_id"`
	WeekStart         string          `json:"week_start"` // YYYY-MM-DD
	Strategy          string          `json:"strategy"`
	Days              []DayPlan       `json:"days"`
	Totals            NutritionTotals `json:"totals"`
	AvgCaloriesPerDay float64         `json:"avg_calories_per_day"`
	GeneratedAt       time.Time       `json:"generated_at"`
}

// materializeMeal 將食譜與份量展開為完整餐次紀錄
func materializeMeal(recipe *catalog.Recipe, portion float64) *Meal {
	return &Meal{
		RecipeID: recipe.ExternalID,
		Name:     recipe.Name,
		MealType: recipe.MealType,
		Portion:  portion,
		Nutrition: NutritionTotals{
			Calories: recipe.CaloriesPerServing * portion,
			ProteinG: recipe.ProteinG * portion,
			CarbsG:   recipe.CarbsG * portion,
			FatG:     recipe.FatG * portion,
		},
	}
}

// SumDays 計算一週的營養總和
func SumDays(days []DayPlan) NutritionTotals {
	var totals NutritionTotals
	for i := range days {
		totals.Add(days[i].Totals)
	}
	return totals
}

// MealEntries 將一週計畫攤平為採購彙總用的餐次列表
func (p *WeeklyPlan) MealEntries() []SlotRef {
	var entries []SlotRef
	appendMeal := func(m *Meal) {
		if m == nil {
			return
		}
		entries = append(entries, SlotRef{RecipeID: m.RecipeID, Name: m.Name, Portion: m.Portion})
	}
	for i := range p.Days {
		day := &p.Days[i]
		appendMeal(day.Breakfast)
		appendMeal(day.Lunch)
		appendMeal(day.Dinner)
		for j := range day.Snacks {
			appendMeal(&day.Snacks[j])
		}
	}
	return entries
}
