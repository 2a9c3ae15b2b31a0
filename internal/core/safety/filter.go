package safety

import (
	"strings"

	"nutrition-planner/internal/core/catalog"
	"nutrition-planner/internal/pkg/common"

	"go.uber.org/zap"
)

// Filter 依病患限制過濾食譜目錄
// 所有判斷皆保守：任何模糊情況一律排除，寧可失敗也不輸出不安全食譜
type Filter struct{}

// NewFilter 創建安全過濾器
func NewFilter() *Filter {
	return &Filter{}
}

// containsEither 雙向子字串比對（不分大小寫的呼叫端先行轉小寫）
// "diabetes" 可命中規則 "Type 2 Diabetes"，反之亦然。
// 此寬鬆行為是既定的安全相關語義，勿改為精確比對
func containsEither(a, b string) bool {
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// ProhibitedTags 由病患病症與疾病規則計算禁止標籤集合
func (f *Filter) ProhibitedTags(conditions []string, rules []catalog.DiseaseRule) map[string]bool {
	prohibited := make(map[string]bool)

	for _, cond := range conditions {
		condLower := strings.ToLower(strings.TrimSpace(cond))
		if condLower == "" {
			continue
		}
		for _, rule := range rules {
			ruleName := strings.ToLower(rule.Name)
			if !containsEither(condLower, ruleName) {
				continue
			}
			common.LogDebug("病症命中疾病規則",
				zap.String("condition", cond),
				zap.String("rule", rule.Name),
				zap.Strings("prohibited_tags", rule.ProhibitedTags),
			)
			for _, tag := range catalog.LowerList(rule.ProhibitedTags) {
				prohibited[tag] = true
			}
		}
	}
	return prohibited
}

// IsRecipeSafe 檢查單一食譜對病患是否安全
// 三段式檢查：禁止標籤、過敏原欄位、食材名稱
func (f *Filter) IsRecipeSafe(recipe *catalog.Recipe, prohibitedTags map[string]bool, allergyTerms []string) bool {
	// 疾病標籤檢查
	for _, tag := range recipe.Tags {
		if prohibitedTags[strings.ToLower(tag)] {
			return false
		}
	}

	// 過敏原欄位檢查（雙向子字串，非僅集合相等）
	for _, allergen := range recipe.Allergens {
		for _, term := range allergyTerms {
			if containsEither(strings.ToLower(allergen), term) {
				return false
			}
		}
	}

	// 食材名稱檢查
	for _, ing := range recipe.Ingredients {
		name := strings.ToLower(ing.Name)
		if name == "" {
			continue
		}
		for _, term := range allergyTerms {
			if containsEither(name, term) {
				return false
			}
		}
	}

	return true
}

// SafeRecipes 計算病患可用的安全食譜子集
// 空結果不是錯誤，由呼叫端決定是否視為安全食譜不足
func (f *Filter) SafeRecipes(patient *catalog.PatientConstraints, rules []catalog.DiseaseRule, allRecipes []catalog.Recipe) []catalog.Recipe {
	prohibited := f.ProhibitedTags(patient.MedicalConditions, rules)
	allergyTerms := catalog.LowerList(patient.Allergies)

	safe := make([]catalog.Recipe, 0, len(allRecipes))
	for i := range allRecipes {
		if f.IsRecipeSafe(&allRecipes[i], prohibited, allergyTerms) {
			safe = append(safe, allRecipes[i])
		}
	}

	common.LogInfo("安全過濾完成",
		zap.Int("total", len(allRecipes)),
		zap.Int("safe", len(safe)),
		zap.Int("prohibited_tags", len(prohibited)),
		zap.Int("allergy_terms", len(allergyTerms)),
	)
	return safe
}
