package plan

import (
	"math"
	"strings"

	"nutrition-planner/internal/core/catalog"
	"nutrition-planner/internal/pkg/common"

	"go.uber.org/zap"
)

// dietProfile 規則式策略的飲食配置
// 啟動時建表一次，之後唯讀共用
type dietProfile struct {
	name          string
	preferredTags []string
}

var dietProfiles = map[string]dietProfile{
	"standard":   {name: "standard"},
	"vegetarian": {name: "vegetarian", preferredTags: []string{"vegetarian", "vegan"}},
	"vegan":      {name: "vegan", preferredTags: []string{"vegan"}},
	"low_sodium": {name: "low_sodium", preferredTags: []string{"low-sodium", "low_sodium"}},
	"diabetic":   {name: "diabetic", preferredTags: []string{"diabetic-friendly", "low-sugar", "low-gi"}},
}

// 各餐次佔每日熱量目標的比例
var mealCalorieShares = map[string]float64{
	"breakfast": 0.25,
	"lunch":     0.35,
	"dinner":    0.35,
	"snack":     0.05,
}

// 份量倍數的合理範圍，超出即截斷
const (
	minPortion = 0.5
	maxPortion = 3.0
)

// selectProfile 依病患限制挑選飲食配置
// 優先序：vegan > vegetarian > diabetic > low_sodium > standard
func selectProfile(patient *catalog.PatientConstraints) dietProfile {
	restrictions := make(map[string]bool)
	for _, r := range patient.DietaryRestrictions {
		restrictions[strings.ToLower(strings.TrimSpace(r.Type))] = true
	}

	switch {
	case restrictions["vegan"]:
		return dietProfiles["vegan"]
	case restrictions["vegetarian"]:
		return dietProfiles["vegetarian"]
	}

	conditions := catalog.LowerList(patient.MedicalConditions)
	for _, cond := range conditions {
		if strings.Contains(cond, "diabet") {
			return dietProfiles["diabetic"]
		}
	}
	for _, cond := range conditions {
		if strings.Contains(cond, "hypertension") {
			return dietProfiles["low_sodium"]
		}
	}
	if restrictions["low_sodium"] {
		return dietProfiles["low_sodium"]
	}
	return dietProfiles["standard"]
}

// BuildTemplateSkeleton 以規則式策略產出七日骨架
// 只從安全子集挑選；同餐次按日輪替以避免整週重複同一道菜
func BuildTemplateSkeleton(patient *catalog.PatientConstraints, safeRecipes []catalog.Recipe, defaultCalorieTarget int) []DaySkeleton {
	target := float64(patient.CalorieTarget)
	if target <= 0 {
		target = float64(defaultCalorieTarget)
	}

	profile := selectProfile(patient)
	pools := map[string][]*catalog.Recipe{
		"breakfast": slotPool(safeRecipes, "breakfast", profile),
		"lunch":     slotPool(safeRecipes, "lunch", profile),
		"dinner":    slotPool(safeRecipes, "dinner", profile),
		"snack":     slotPool(safeRecipes, "snack", profile),
	}

	common.LogInfo("規則式骨架生成",
		zap.String("profile", profile.name),
		zap.Float64("calorie_target", target),
		zap.Int("breakfast_pool", len(pools["breakfast"])),
		zap.Int("lunch_pool", len(pools["lunch"])),
		zap.Int("dinner_pool", len(pools["dinner"])),
		zap.Int("snack_pool", len(pools["snack"])),
	)

	skeleton := make([]DaySkeleton, 0, 7)
	for day := 0; day < 7; day++ {
		d := DaySkeleton{
			Breakfast: templateSlot(pools["breakfast"], day, target*mealCalorieShares["breakfast"]),
			Lunch:     templateSlot(pools["lunch"], day, target*mealCalorieShares["lunch"]),
			Dinner:    templateSlot(pools["dinner"], day, target*mealCalorieShares["dinner"]),
		}
		if snack := templateSlot(pools["snack"], day, target*mealCalorieShares["snack"]); snack != nil {
			d.Snacks = []SlotRef{*snack}
		}
		skeleton = append(skeleton, d)
	}
	return skeleton
}

// slotPool 建立某餐次的候選池
// 先取餐別相符且帶偏好標籤者，退而求餐別相符，再退而求整個安全子集
// 點心池允許為空（點心非必要餐次）
func slotPool(safeRecipes []catalog.Recipe, mealType string, profile dietProfile) []*catalog.Recipe {
	var byType, preferred []*catalog.Recipe
	for i := range safeRecipes {
		r := &safeRecipes[i]
		if !strings.EqualFold(strings.TrimSpace(r.MealType), mealType) {
			continue
		}
		byType = append(byType, r)
		if hasAnyTag(r, profile.preferredTags) {
			preferred = append(preferred, r)
		}
	}

	if len(preferred) > 0 {
		return preferred
	}
	if len(byType) > 0 {
		return byType
	}
	if mealType == "snack" {
		return nil
	}

	fallback := make([]*catalog.Recipe, 0, len(safeRecipes))
	for i := range safeRecipes {
		fallback = append(fallback, &safeRecipes[i])
	}
	return fallback
}

func hasAnyTag(r *catalog.Recipe, tags []string) bool {
	if len(tags) == 0 {
		return false
	}
	for _, have := range r.Tags {
		for _, want := range tags {
			if have == want {
				return true
			}
		}
	}
	return false
}

// templateSlot 由候選池輪替取菜並按熱量目標調整份量
func templateSlot(pool []*catalog.Recipe, day int, targetCalories float64) *SlotRef {
	if len(pool) == 0 {
		return nil
	}
	recipe := pool[day%len(pool)]
	return &SlotRef{
		RecipeID: recipe.ExternalID,
		Portion:  portionFor(recipe, targetCalories),
	}
}

// portionFor 份量 = 餐次熱量目標 / 每份熱量，截斷於合理範圍並取兩位小數
func portionFor(recipe *catalog.Recipe, targetCalories float64) float64 {
	if recipe.CaloriesPerServing <= 0 || targetCalories <= 0 {
		return 1.0
	}
	ratio := targetCalories / recipe.CaloriesPerServing
	ratio = math.Max(minPortion, math.Min(maxPortion, ratio))
	return math.Round(ratio*100) / 100
}
