package catalog

import (
	"strings"
)

// Recipe 食譜目錄條目（匯入後即唯讀）
type Recipe struct {
	ID                 string           `json:"id"`
	ExternalID         string           `json:"recipe_id"` // 穩定業務鍵，目錄內唯一
	Name               string           `json:"meal_name"`
	MealType           string           `json:"meal_type,omitempty"`
	CaloriesPerServing float64          `json:"calories_per_serving"`
	ProteinG           float64          `json:"protein_g"`
	CarbsG             float64          `json:"carbs_g"`
	FatG               float64          `json:"fat_g"`
	Tags               []string         `json:"tags"`      // 小寫，疾病規則比對用
	Allergens          []string         `json:"allergens"` // 小寫
	Ingredients        []IngredientLine `json:"ingredients"`
}

// IngredientLine 食譜內的單一食材行
// Quantity 為 nil 表示來源未提供數量，彙總時略過該行
type IngredientLine struct {
	Name     string   `json:"name"`
	Quantity *float64 `json:"quantity,omitempty"`
	Unit     string   `json:"unit,omitempty"`
	Raw      string   `json:"raw,omitempty"` // 原始來源字串，顯示備援
}

// DiseaseRule 疾病規則：病症名稱對應禁止標籤
type DiseaseRule struct {
	Name           string   `json:"name"`
	ProhibitedTags []string `json:"prohibited_tags"`
}

// DietaryRestriction 飲食限制
type DietaryRestriction struct {
	Type     string `json:"type"`
	Severity string `json:"severity,omitempty"`
}

// PatientConstraints 規劃輸入的病患限制條件（邊界正規化後的唯一形態）
type PatientConstraints struct {
	Name                string               `json:"name"`
	Age                 int                  `json:"age"`
	Gender              string               `json:"gender"`
	MedicalConditions   []string             `json:"medical_conditions"`
	Allergies           []string             `json:"allergies"`
	DietaryRestrictions []DietaryRestriction `json:"dietary_restrictions"`
	CalorieTarget       int                  `json:"calorie_target"`
}

// LowerList 去除空白並轉小寫，空項剔除
func LowerList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// TrimList 去除空白，空項剔除（保留大小寫）
func TrimList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Normalize 將匯入的食譜欄位整理為目錄的不變式：
// 標籤與過敏原一律小寫，"none" 過敏原視為空
func (r *Recipe) Normalize() {
	r.ExternalID = strings.TrimSpace(r.ExternalID)
	r.Name = strings.TrimSpace(r.Name)
	r.Tags = LowerList(r.Tags)

	allergens := make([]string, 0, len(r.Allergens))
	for _, a := range LowerList(r.Allergens) {
		if a == "none" {
			continue
		}
		allergens = append(allergens, a)
	}
	r.Allergens = allergens

	for i := range r.Ingredients {
		r.Ingredients[i].Name = strings.TrimSpace(r.Ingredients[i].Name)
		r.Ingredients[i].Unit = strings.TrimSpace(r.Ingredients[i].Unit)
	}
}

// ByExternalID 以 ExternalID 建立查找表
func ByExternalID(recipes []Recipe) map[string]*Recipe {
	m := make(map[string]*Recipe, len(recipes))
	for i := range recipes {
		m[recipes[i].ExternalID] = &recipes[i]
	}
	return m
}
